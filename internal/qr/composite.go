package qr

import (
	"image"
	"image/draw"

	"github.com/disintegration/imaging"
)

const (
	// DefaultSafeArea caps the logo's longer side as a fraction of the
	// canvas's shorter side. It is validated against level H by the
	// decodability tests, not derived from it; re-run them if it changes.
	DefaultSafeArea = 0.20
	// DefaultBackingPadding is the light margin painted around the logo, in pixels.
	DefaultBackingPadding = 4
)

// logoBox returns the logo's footprint on a canvas whose shorter side is
// canvasMin. Logos are only ever shrunk, keeping aspect ratio. A zero box
// means the canvas is too small to carry a logo at all.
func logoBox(canvasMin, lw, lh int, fraction float64) (int, int) {
	limit := int(float64(canvasMin) * fraction)
	if limit < 1 || lw <= 0 || lh <= 0 {
		return 0, 0
	}
	long := max(lw, lh)
	if long <= limit {
		return lw, lh
	}
	return max(1, lw*limit/long), max(1, lh*limit/long)
}

// fitLogo scales logo for a canvas whose shorter side is canvasMin.
// It returns nil when nothing should be drawn.
func fitLogo(logo image.Image, canvasMin int, fraction float64) *image.NRGBA {
	b := logo.Bounds()
	w, h := logoBox(canvasMin, b.Dx(), b.Dy(), fraction)
	if w == 0 {
		return nil
	}
	if w == b.Dx() && h == b.Dy() {
		return imaging.Clone(logo)
	}
	return imaging.Resize(logo, w, h, imaging.Lanczos)
}

// Overlay composites logo onto a copy of dst and returns the copy.
// dst is left untouched.
func Overlay(dst *image.RGBA, logo image.Image, fraction float64, padding int) *image.RGBA {
	out := image.NewRGBA(dst.Bounds())
	draw.Draw(out, out.Bounds(), dst, dst.Bounds().Min, draw.Src)

	b := out.Bounds()
	scaled := fitLogo(logo, min(b.Dx(), b.Dy()), fraction)
	paintLogo(out, scaled, padding)
	return out
}

// paintLogo draws an already scaled logo at the centre of dst over a light
// backing patch. Logo pixels falling outside dst are dropped.
func paintLogo(dst *image.RGBA, logo *image.NRGBA, padding int) {
	if logo == nil {
		return
	}
	db := dst.Bounds()
	lb := logo.Bounds()
	lw, lh := lb.Dx(), lb.Dy()
	x0 := db.Min.X + (db.Dx()-lw)/2
	y0 := db.Min.Y + (db.Dy()-lh)/2

	backing := image.Rect(x0-padding, y0-padding, x0+lw+padding, y0+lh+padding)
	fillRect(dst, backing, lightModule)

	for ly := 0; ly < lh; ly++ {
		qy := y0 + ly
		if qy < db.Min.Y || qy >= db.Max.Y {
			continue
		}
		for lx := 0; lx < lw; lx++ {
			qx := x0 + lx
			if qx < db.Min.X || qx >= db.Max.X {
				continue
			}
			si := logo.PixOffset(lb.Min.X+lx, lb.Min.Y+ly)
			a := logo.Pix[si+3]
			if a == 0 {
				continue
			}
			di := dst.PixOffset(qx, qy)
			alpha := float64(a) / 255
			for c := 0; c < 3; c++ {
				dst.Pix[di+c] = blend(dst.Pix[di+c], logo.Pix[si+c], alpha)
			}
			dst.Pix[di+3] = 255
		}
	}
}

// blend returns (1-alpha)*bg + alpha*fg, truncated to 8 bits.
func blend(bg, fg uint8, alpha float64) uint8 {
	v := float64(bg) + alpha*(float64(fg)-float64(bg))
	if v >= 255 {
		return 255
	}
	if v <= 0 {
		return 0
	}
	return uint8(v)
}
