package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/realestate-cinematic/cinematic-backend/internal/projects/domain"
)

// SchemaHandler serves the static field manifest used by collection viewers.
func SchemaHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		domain.CollectionName: domain.ProjectSchema,
	})
}
