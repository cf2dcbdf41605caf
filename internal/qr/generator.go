package qr

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/charmbracelet/log"
)

// Generator renders branded QR codes at a fixed size.
//
// A Generator is immutable once built and safe for concurrent use. The
// prepared logo is owned by the generator and only read by Generate, so
// copies of a Generator share it.
type Generator struct {
	size        int
	encoder     MatrixEncoder
	logo        *image.NRGBA // scaled for size; nil when unbranded
	padding     int
	fingerprint string
}

// Option configures a Generator.
type Option func(*options)

type options struct {
	encoder   MatrixEncoder
	safeArea  float64
	padding   int
	logger    *log.Logger
	logoImage image.Image
}

// WithEncoder replaces the default yeqown matrix encoder.
func WithEncoder(e MatrixEncoder) Option {
	return func(o *options) { o.encoder = e }
}

// WithSafeArea sets the maximum logo size as a fraction of the canvas, in (0, 1].
func WithSafeArea(fraction float64) Option {
	return func(o *options) { o.safeArea = fraction }
}

// WithBackingPadding sets the light margin around the logo, in pixels.
func WithBackingPadding(px int) Option {
	return func(o *options) { o.padding = px }
}

// WithLogger sets the logger used while preparing the generator.
func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithLogoImage brands the generator with an already decoded logo.
// It takes precedence over a logo path.
func WithLogoImage(img image.Image) Option {
	return func(o *options) { o.logoImage = img }
}

// NewGenerator builds a generator producing size x size images. If logoPath
// is not empty the logo is loaded and scaled now; any failure aborts
// construction.
func NewGenerator(size int, logoPath string, opts ...Option) (*Generator, error) {
	o := options{
		encoder:  YeqownEncoder{},
		safeArea: DefaultSafeArea,
		padding:  DefaultBackingPadding,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = log.Default()
	}

	if size <= 0 {
		return nil, newError(KindInvalidConfig, "size must be positive, got %d", size)
	}
	if o.encoder == nil {
		return nil, newError(KindInvalidConfig, "matrix encoder is required")
	}
	if math.IsNaN(o.safeArea) || o.safeArea <= 0 || o.safeArea > 1 {
		return nil, newError(KindInvalidConfig, "safe area must be in (0, 1], got %v", o.safeArea)
	}
	if o.padding < 0 {
		return nil, newError(KindInvalidConfig, "backing padding must not be negative, got %d", o.padding)
	}

	g := &Generator{size: size, encoder: o.encoder, padding: o.padding}

	src := o.logoImage
	if src == nil && logoPath != "" {
		loaded, err := LoadLogo(logoPath)
		if err != nil {
			return nil, err
		}
		src = loaded
	}
	if src != nil {
		g.logo = fitLogo(src, size, o.safeArea)
		if g.logo == nil {
			o.logger.Warn("canvas too small for a logo, rendering unbranded", "size", size)
		} else {
			sb, lb := src.Bounds(), g.logo.Bounds()
			o.logger.Debug("logo prepared",
				"path", logoPath,
				"source", fmt.Sprintf("%dx%d", sb.Dx(), sb.Dy()),
				"scaled", fmt.Sprintf("%dx%d", lb.Dx(), lb.Dy()))
		}
	}

	g.fingerprint = g.computeFingerprint()
	return g, nil
}

// Generate encodes content at level H, renders it and returns PNG bytes.
func (g *Generator) Generate(content string) ([]byte, error) {
	m, err := g.encoder.Encode(content, LevelH)
	var qerr *Error
	switch {
	case errors.As(err, &qerr):
		return nil, err
	case err != nil:
		return nil, wrapError(KindContentTooLarge, err, "content of %d bytes could not be encoded", len(content))
	case m == nil || m.Size() == 0:
		return nil, newError(KindEncoding, "encoder %T returned an empty matrix", g.encoder)
	}
	img := Rasterize(m, g.size)
	paintLogo(img, g.logo, g.padding)
	return EncodePNG(img)
}

// Size returns the side length of generated images in pixels.
func (g *Generator) Size() int { return g.size }

// HasLogo reports whether generated images carry a logo.
func (g *Generator) HasLogo() bool { return g.logo != nil }

// Fingerprint identifies the generator's output: two generators with the
// same fingerprint produce identical bytes for identical content.
func (g *Generator) Fingerprint() string { return g.fingerprint }

func (g *Generator) computeFingerprint() string {
	h := sha256.New()
	var hdr [16]byte
	binary.BigEndian.PutUint64(hdr[:8], uint64(g.size))
	binary.BigEndian.PutUint64(hdr[8:], uint64(g.padding))
	h.Write(hdr[:])
	fmt.Fprintf(h, "%T%v", g.encoder, g.encoder)
	if g.logo != nil {
		b := g.logo.Bounds()
		fmt.Fprintf(h, "|%dx%d|", b.Dx(), b.Dy())
		h.Write(g.logo.Pix)
	}
	return hex.EncodeToString(h.Sum(nil))
}
