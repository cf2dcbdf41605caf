package qr

import (
	"bytes"
	"image"
	"image/draw"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// LogoWorkingSize is the longer side, in pixels, vector logos are rendered at.
const LogoWorkingSize = 200

// LoadLogo reads a logo file and normalizes it to a straight-alpha RGBA buffer.
// SVG files are rasterized at LogoWorkingSize on white; bitmap formats keep
// their native dimensions.
func LoadLogo(path string) (*image.NRGBA, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".svg" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, logoError(ReasonIO, err, "failed to read SVG file %s", path)
		}
		return renderSVG(data)
	}

	if _, err := imaging.FormatFromFilename(path); err != nil {
		return nil, logoError(ReasonUnsupportedFormat, err, "unsupported logo format %q, use PNG, JPEG or SVG", ext)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, logoError(ReasonIO, err, "failed to read logo file %s", path)
	}
	return decodeRaster(data)
}

func decodeRaster(data []byte) (*image.NRGBA, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, logoError(ReasonParse, err, "failed to decode logo image")
	}
	return imaging.Clone(img), nil
}

// renderSVG rasterizes an SVG document so its longer side is LogoWorkingSize pixels.
func renderSVG(data []byte) (*image.NRGBA, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data), oksvg.IgnoreErrorMode)
	if err != nil {
		return nil, logoError(ReasonParse, err, "failed to parse SVG")
	}
	w, h := icon.ViewBox.W, icon.ViewBox.H
	if w <= 0 || h <= 0 {
		return nil, logoError(ReasonParse, nil, "SVG has no usable size (%gx%g)", w, h)
	}

	scale := LogoWorkingSize / math.Max(w, h)
	sw := max(1, int(w*scale))
	sh := max(1, int(h*scale))

	canvas := image.NewRGBA(image.Rect(0, 0, sw, sh))
	draw.Draw(canvas, canvas.Bounds(), &image.Uniform{C: lightModule}, image.Point{}, draw.Src)

	icon.SetTarget(0, 0, float64(sw), float64(sh))
	scanner := rasterx.NewScannerGV(sw, sh, canvas, canvas.Bounds())
	icon.Draw(rasterx.NewDasher(sw, sh, scanner), 1.0)

	return imaging.Clone(canvas), nil
}
