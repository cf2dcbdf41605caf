package qr

import (
	"image"
	"image/color"
	"image/draw"
)

// QuietZone is the light border required around the symbol, in modules.
const QuietZone = 4

var (
	darkModule  = color.RGBA{0, 0, 0, 255}
	lightModule = color.RGBA{255, 255, 255, 255}
)

// Rasterize renders m onto an opaque size x size RGBA canvas.
//
// Every module covers the same whole number of pixels, chosen as the largest
// scale at which the matrix plus quiet zone still fits; leftover pixels are
// split evenly around the symbol and stay light. Canvases too small for one
// pixel per module fall back to nearest-neighbour sampling so the output
// size is still exact.
func Rasterize(m *Matrix, size int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: lightModule}, image.Point{}, draw.Src)

	n := m.Size()
	total := n + 2*QuietZone
	scale := size / total
	if scale == 0 {
		rasterizeSampled(img, m, size, total)
		return img
	}

	offset := (size - n*scale) / 2
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			if !m.Dark(x, y) {
				continue
			}
			px := offset + x*scale
			py := offset + y*scale
			fillRect(img, image.Rect(px, py, px+scale, py+scale), darkModule)
		}
	}
	return img
}

// rasterizeSampled maps each pixel back to the module under it.
func rasterizeSampled(img *image.RGBA, m *Matrix, size, total int) {
	n := m.Size()
	for py := 0; py < size; py++ {
		my := py*total/size - QuietZone
		if my < 0 || my >= n {
			continue
		}
		for px := 0; px < size; px++ {
			mx := px*total/size - QuietZone
			if mx < 0 || mx >= n {
				continue
			}
			if m.Dark(mx, my) {
				img.SetRGBA(px, py, darkModule)
			}
		}
	}
}

func fillRect(img *image.RGBA, r image.Rectangle, c color.RGBA) {
	draw.Draw(img, r.Intersect(img.Bounds()), &image.Uniform{C: c}, image.Point{}, draw.Src)
}
