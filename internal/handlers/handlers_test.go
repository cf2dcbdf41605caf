package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cristianadrielbraun/qrbrand/internal/qr"
	"github.com/cristianadrielbraun/qrbrand/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeService struct {
	urls  []string
	codes []string
	err   error
}

func (f *fakeService) GenerateForURL(ctx context.Context, url string) ([]byte, error) {
	f.urls = append(f.urls, url)
	if f.err != nil {
		return nil, f.err
	}
	return []byte("png:" + url), nil
}

func (f *fakeService) GenerateShortLink(ctx context.Context, code string) ([]byte, error) {
	f.codes = append(f.codes, code)
	if f.err != nil {
		return nil, f.err
	}
	return []byte("png:" + code), nil
}

func newTestRouter(svc QRService) *gin.Engine {
	logger := log.NewWithOptions(io.Discard, log.Options{})
	return NewRouter(New(svc, logger), logger)
}

func do(r http.Handler, method, target string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var resp errorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), "body: %s", w.Body.String())
	return resp
}

func TestNormalizeHTTPURL(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "https://example.com", want: "https://example.com"},
		{in: "  example.com/path?q=1 ", want: "https://example.com/path?q=1"},
		{in: "http://example.com:8080/x", want: "http://example.com:8080/x"},
		{in: "", wantErr: true},
		{in: "   ", wantErr: true},
		{in: "ftp://example.com", wantErr: true},
		{in: "https://", wantErr: true},
		{in: "https://example.com/" + strings.Repeat("a", maxURLLength), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := normalizeHTTPURL(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHealth(t *testing.T) {
	w := do(newTestRouter(&fakeService{}), http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","service":"qrbrand"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
}

func TestQRCodeHandler(t *testing.T) {
	svc := &fakeService{}
	w := do(newTestRouter(svc), http.MethodGet, "/api/qr?url=example.com", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, "public, max-age=3600", w.Header().Get("Cache-Control"))
	assert.Equal(t, "png:https://example.com", w.Body.String())
	assert.Equal(t, []string{"https://example.com"}, svc.urls)
}

func TestQRCodeHandlerBadURL(t *testing.T) {
	for _, target := range []string{"/api/qr", "/api/qr?url=ftp://x.org", "/api/qr?url=https://"} {
		svc := &fakeService{}
		w := do(newTestRouter(svc), http.MethodGet, target, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, target)
		assert.Equal(t, codeInvalidURL, decodeError(t, w).Error)
		assert.Empty(t, svc.urls, "service must not be called for %s", target)
	}
}

func TestCreateQR(t *testing.T) {
	svc := &fakeService{}
	w := do(newTestRouter(svc), http.MethodPost, "/api/v1/qr", strings.NewReader(`{"url":"https://example.com/a"}`))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, "png:https://example.com/a", w.Body.String())
}

func TestCreateQRBadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", "url=https://example.com"},
		{"missing url", `{}`},
		{"bad scheme", `{"url":"javascript:alert(1)"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(newTestRouter(&fakeService{}), http.MethodPost, "/api/v1/qr", strings.NewReader(tt.body))
			assert.Equal(t, http.StatusBadRequest, w.Code)
			resp := decodeError(t, w)
			assert.Equal(t, codeInvalidURL, resp.Error)
			assert.NotEmpty(t, resp.Message)
		})
	}
}

func TestShortLinkQR(t *testing.T) {
	svc := &fakeService{}
	w := do(newTestRouter(svc), http.MethodGet, "/api/v1/links/Ab3kP9x/qr", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "png:Ab3kP9x", w.Body.String())
	assert.Equal(t, []string{"Ab3kP9x"}, svc.codes)

	long := strings.Repeat("a", 65)
	w = do(newTestRouter(svc), http.MethodGet, "/api/v1/links/"+long+"/qr", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, codeInvalidCode, decodeError(t, w).Error)

	w = do(newTestRouter(svc), http.MethodGet, "/api/v1/links/a.b/qr", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Len(t, svc.codes, 1)
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"content too large", &qr.Error{Kind: qr.KindContentTooLarge, Message: "data too long"}, http.StatusUnprocessableEntity, codeContentTooLarge},
		{"encoding", &qr.Error{Kind: qr.KindEncoding, Message: "bad buffer"}, http.StatusInternalServerError, codeQRError},
		{"other", errors.New("disk on fire"), http.StatusInternalServerError, codeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(newTestRouter(&fakeService{err: tt.err}), http.MethodGet, "/api/qr?url=example.com", nil)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.code, decodeError(t, w).Error)
		})
	}
}

func TestInternalErrorsDoNotLeakCause(t *testing.T) {
	cause := errors.New("open /srv/qrbrand/cache/ab/cdef.bin: permission denied")
	errs := []error{
		&qr.Error{Kind: qr.KindEncoding, Message: "write png", Cause: cause},
		&qr.Error{Kind: qr.KindLogoPreparation, Reason: qr.ReasonIO, Message: "read logo", Cause: cause},
		cause,
	}
	for _, err := range errs {
		var buf bytes.Buffer
		logger := log.NewWithOptions(&buf, log.Options{})
		r := NewRouter(New(&fakeService{err: err}, logger), logger)

		w := do(r, http.MethodGet, "/api/qr?url=example.com", nil)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "/srv/qrbrand")
		assert.NotContains(t, w.Body.String(), "permission denied")
		assert.Contains(t, buf.String(), "permission denied", "cause belongs in the log")
	}
}

func TestRequestIDIsPropagated(t *testing.T) {
	r := newTestRouter(&fakeService{})
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func TestRequestLoggerWritesLine(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{})
	r := NewRouter(New(&fakeService{}, logger), logger)

	do(r, http.MethodGet, "/api/qr", nil)
	out := buf.String()
	assert.Contains(t, out, "/api/qr")
	assert.Contains(t, out, "400")
}

func TestEndToEndWithEngine(t *testing.T) {
	logger := log.NewWithOptions(io.Discard, log.Options{})
	gen, err := qr.NewGenerator(256, "", qr.WithLogger(logger))
	require.NoError(t, err)
	svc := service.NewQRService(gen, "https://s.example", service.WithLogger(logger))
	r := NewRouter(New(svc, logger), logger)

	w := do(r, http.MethodGet, "/api/v1/links/Ab3kP9x/qr", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("\x89PNG\r\n\x1a\n")))

	body := `{"url":"https://example.com/` + strings.Repeat("x", 3000) + `"}`
	w = do(r, http.MethodPost, "/api/v1/qr", strings.NewReader(body))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, codeContentTooLarge, decodeError(t, w).Error)
}
