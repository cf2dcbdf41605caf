// Package service turns short codes and URLs into branded QR images.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/cristianadrielbraun/qrbrand/internal/cache"
)

// DefaultCacheTTL is how long rendered images stay in the cache.
const DefaultCacheTTL = 24 * time.Hour

// Generator renders content to PNG bytes. *qr.Generator satisfies it.
type Generator interface {
	Generate(content string) ([]byte, error)
	// Fingerprint must change whenever the generator's output would change.
	Fingerprint() string
}

// QRService builds short-link URLs and renders them through the engine.
type QRService struct {
	gen     Generator
	baseURL string
	cache   cache.Cache
	ttl     time.Duration
	logger  *log.Logger
}

// Option configures a QRService.
type Option func(*QRService)

// WithCache stores rendered images in c.
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(s *QRService) {
		s.cache = c
		s.ttl = ttl
	}
}

// WithLogger sets the service logger.
func WithLogger(l *log.Logger) Option {
	return func(s *QRService) { s.logger = l }
}

// NewQRService creates a service that links short codes under baseURL.
func NewQRService(gen Generator, baseURL string, opts ...Option) *QRService {
	s := &QRService{
		gen:     gen,
		baseURL: strings.TrimRight(baseURL, "/"),
		cache:   cache.NewNullCache(),
		ttl:     DefaultCacheTTL,
		logger:  log.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ShortLinkURL returns the public URL of a short code.
func (s *QRService) ShortLinkURL(code string) string {
	return s.baseURL + "/" + code
}

// GenerateShortLink renders the QR image for a short code.
func (s *QRService) GenerateShortLink(ctx context.Context, code string) ([]byte, error) {
	return s.GenerateForURL(ctx, s.ShortLinkURL(code))
}

// GenerateForURL renders the QR image for a raw URL, without shortening.
//
// Cache failures are logged and otherwise ignored. Engine errors are
// returned as-is so callers can inspect their kind.
func (s *QRService) GenerateForURL(ctx context.Context, url string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := cache.Key(s.gen.Fingerprint(), url)
	data, hit, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("cache read failed", "key", key, "err", err)
	} else if hit {
		s.logger.Debug("cache hit", "url", url)
		return data, nil
	}

	start := time.Now()
	data, err = s.gen.Generate(url)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("qr generated", "url", url, "bytes", len(data), "took", time.Since(start).Round(time.Microsecond))

	if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
		s.logger.Warn("cache write failed", "key", key, "err", err)
	}
	return data, nil
}

// Close releases the cache backend.
func (s *QRService) Close() error {
	if err := s.cache.Close(); err != nil {
		return fmt.Errorf("close cache: %w", err)
	}
	return nil
}
