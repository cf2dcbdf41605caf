package qr

import (
	"bytes"
	"image"
	"image/png"
)

// alphaImage hides the opacity of the wrapped image from the PNG encoder,
// which would otherwise drop the alpha channel for fully opaque canvases.
type alphaImage struct {
	*image.RGBA
}

func (alphaImage) Opaque() bool { return false }

// EncodePNG serializes img as an 8-bit RGBA PNG without ancillary chunks.
func EncodePNG(img *image.RGBA) ([]byte, error) {
	if img == nil {
		return nil, newError(KindEncoding, "nil image")
	}
	b := img.Bounds()
	if b.Empty() {
		return nil, newError(KindEncoding, "empty image bounds %v", b)
	}
	if img.Stride < 4*b.Dx() || len(img.Pix) < img.Stride*(b.Dy()-1)+4*b.Dx() {
		return nil, newError(KindEncoding, "pixel buffer of %d bytes (stride %d) does not cover %dx%d",
			len(img.Pix), img.Stride, b.Dx(), b.Dy())
	}

	var buf bytes.Buffer
	buf.Grow(b.Dx() * b.Dy())
	enc := png.Encoder{CompressionLevel: png.DefaultCompression}
	if err := enc.Encode(&buf, alphaImage{img}); err != nil {
		return nil, wrapError(KindEncoding, err, "failed to encode PNG")
	}
	return buf.Bytes(), nil
}
