package qr

import (
	"bytes"
	"image"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodePNGKeepsAlphaChannel(t *testing.T) {
	img := Rasterize(mustEncode(t, "rgba"), 64)
	require.True(t, img.Opaque())

	data, err := EncodePNG(img)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(data, pngSignature))

	// IHDR starts right after the signature: length(4) type(4) w(4) h(4) depth(1) color(1).
	assert.Equal(t, "IHDR", string(data[12:16]))
	assert.Equal(t, byte(8), data[24], "bit depth")
	assert.Equal(t, byte(6), data[25], "color type must be truecolor with alpha")

	decoded, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.IsType(t, &image.NRGBA{}, decoded)
	assert.Equal(t, img.Pix, toRGBA(decoded).Pix)
}

func TestEncodePNGOffsetBounds(t *testing.T) {
	img := image.NewRGBA(image.Rect(10, 10, 20, 30))
	data, err := EncodePNG(img)
	require.NoError(t, err)

	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Width)
	assert.Equal(t, 20, cfg.Height)
}

func TestEncodePNGRejectsBrokenImages(t *testing.T) {
	short := image.NewRGBA(image.Rect(0, 0, 8, 8))
	short.Pix = short.Pix[:10]

	narrow := image.NewRGBA(image.Rect(0, 0, 8, 8))
	narrow.Stride = 4

	tests := []struct {
		name string
		img  *image.RGBA
	}{
		{"nil", nil},
		{"empty", image.NewRGBA(image.Rectangle{})},
		{"short buffer", short},
		{"narrow stride", narrow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := EncodePNG(tt.img)
			assert.Nil(t, data)
			assert.True(t, IsKind(err, KindEncoding), "got %v", err)
		})
	}
}
