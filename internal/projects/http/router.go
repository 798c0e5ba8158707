package http

import "github.com/gin-gonic/gin"

// Register attaches project routes to the /api group. renderMW runs only on
// the render route.
func (h *Handler) Register(rg *gin.RouterGroup, renderMW ...gin.HandlerFunc) {
	rg.POST("/projects", h.create)
	rg.GET("/projects", h.list)
	rg.GET("/projects/:id", h.get)
	rg.PUT("/projects/:id", h.update)

	rg.POST("/render", append(renderMW, h.render)...)
}
