package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cristianadrielbraun/qrbrand/internal/qr"
)

// Error codes returned in the "error" field of JSON error bodies.
const (
	codeInvalidURL      = "invalid_url"
	codeInvalidCode     = "invalid_code"
	codeContentTooLarge = "content_too_large"
	codeQRError         = "qr_error"
	codeInternal        = "internal_error"
)

// errorResponse is the body of every failed request.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func abortWithError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, errorResponse{Error: code, Message: message})
}

// abortWithQRError maps an engine or service failure to a response.
func (h *Handler) abortWithQRError(c *gin.Context, err error) {
	var qerr *qr.Error
	switch {
	case errors.As(err, &qerr) && qerr.Kind == qr.KindContentTooLarge:
		abortWithError(c, http.StatusUnprocessableEntity, codeContentTooLarge, qerr.Message)
	case errors.As(err, &qerr):
		h.logger.Error("qr generation failed", "kind", qerr.Kind, "err", err, "request_id", requestID(c))
		abortWithError(c, http.StatusInternalServerError, codeQRError, "failed to generate QR code")
	default:
		h.logger.Error("request failed", "err", err, "request_id", requestID(c))
		abortWithError(c, http.StatusInternalServerError, codeInternal, "")
	}
}
