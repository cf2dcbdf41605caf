package handlers

import (
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
)

// maxURLLength caps accepted URLs to avoid abuse.
const maxURLLength = 4096

var shortCodePattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// normalizeHTTPURL validates and normalizes a URL string for QR generation.
// It ensures an http/https scheme, a non-empty hostname, and returns a cleaned absolute URL.
func normalizeHTTPURL(s string) (string, error) {
	v := strings.TrimSpace(s)
	if v == "" {
		return "", fmt.Errorf("URL parameter is required")
	}
	// If missing scheme, default to https
	if !strings.Contains(v, "://") {
		v = "https://" + v
	}
	if len(v) > maxURLLength {
		return "", fmt.Errorf("URL is too long")
	}
	u, err := url.ParseRequestURI(v)
	if err != nil {
		return "", fmt.Errorf("invalid URL: %v", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("only http and https URLs are supported")
	}
	if u.Host == "" {
		return "", fmt.Errorf("URL must include a valid host")
	}
	return u.String(), nil
}

// QRCodeHandler renders a QR code for the url query parameter.
func (h *Handler) QRCodeHandler(c *gin.Context) {
	normalizedURL, err := normalizeHTTPURL(c.Query("url"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, codeInvalidURL, err.Error())
		return
	}
	h.renderURL(c, normalizedURL)
}

type createQRRequest struct {
	URL string `json:"url"`
}

// CreateQR renders a QR code for the URL in a JSON body: {"url": "..."}.
func (h *Handler) CreateQR(c *gin.Context) {
	var req createQRRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, codeInvalidURL, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	normalizedURL, err := normalizeHTTPURL(req.URL)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, codeInvalidURL, err.Error())
		return
	}
	h.renderURL(c, normalizedURL)
}

// ShortLinkQR renders the QR code pointing at a short link.
func (h *Handler) ShortLinkQR(c *gin.Context) {
	code := c.Param("code")
	if !shortCodePattern.MatchString(code) {
		abortWithError(c, http.StatusBadRequest, codeInvalidCode, "short code must be 1-64 letters, digits, '-' or '_'")
		return
	}

	png, err := h.qr.GenerateShortLink(c.Request.Context(), code)
	if err != nil {
		h.abortWithQRError(c, err)
		return
	}
	h.logger.Debug("qr served", "code", code, "bytes", len(png), "request_id", requestID(c))
	writePNG(c, png)
}

func (h *Handler) renderURL(c *gin.Context, target string) {
	png, err := h.qr.GenerateForURL(c.Request.Context(), target)
	if err != nil {
		h.abortWithQRError(c, err)
		return
	}
	h.logger.Debug("qr served", "url", target, "bytes", len(png), "request_id", requestID(c))
	writePNG(c, png)
}

func writePNG(c *gin.Context, png []byte) {
	c.Header("Cache-Control", "public, max-age=3600") // Cache for 1 hour
	c.Data(http.StatusOK, "image/png", png)
}
