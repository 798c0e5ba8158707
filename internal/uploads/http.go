package uploads

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// FormField is the multipart field carrying the files.
const FormField = "files"

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("/upload", h.upload)
}

func (h *Handler) upload(c *gin.Context) {
	var names []string
	if form, err := c.MultipartForm(); err == nil {
		for _, fh := range form.File[FormField] {
			names = append(names, fh.Filename)
		}
	}

	urls, err := h.svc.References(names)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "No files uploaded"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"urls": urls})
}
