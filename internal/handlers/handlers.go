package handlers

import (
	"context"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
)

// ServiceName is reported by the health endpoint.
const ServiceName = "qrbrand"

// QRService renders QR images. *service.QRService satisfies it.
type QRService interface {
	GenerateForURL(ctx context.Context, url string) ([]byte, error)
	GenerateShortLink(ctx context.Context, code string) ([]byte, error)
}

// Handler holds the dependencies of the HTTP handlers.
type Handler struct {
	qr     QRService
	logger *log.Logger
}

// New returns a new Handler instance.
func New(qr QRService, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.Default()
	}
	return &Handler{qr: qr, logger: logger}
}

// Health reports that the process is up.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": ServiceName})
}
