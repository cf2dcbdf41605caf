package handlers

import (
	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
)

// NewRouter wires the handlers and middleware into a gin engine.
func NewRouter(h *Handler, logger *log.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(RequestLogger(logger))

	r.GET("/health", h.Health)

	api := r.Group("/api")
	{
		api.GET("/qr", h.QRCodeHandler)

		v1 := api.Group("/v1")
		v1.POST("/qr", h.CreateQR)
		v1.GET("/links/:code/qr", h.ShortLinkQR)
	}
	return r
}
