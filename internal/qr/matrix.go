package qr

import (
	"fmt"
	"unicode/utf8"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode/decoder"
	"github.com/makiuchi-d/gozxing/qrcode/encoder"
	"github.com/yeqown/go-qrcode/v2"
)

// Level is a QR error-correction level.
type Level int

const (
	LevelL Level = iota // ~7% recoverable
	LevelM              // ~15%
	LevelQ              // ~25%
	LevelH              // ~30%
)

func (l Level) String() string {
	switch l {
	case LevelL:
		return "L"
	case LevelM:
		return "M"
	case LevelQ:
		return "Q"
	case LevelH:
		return "H"
	}
	return fmt.Sprintf("Level(%d)", int(l))
}

// Matrix is an immutable square grid of QR modules, without quiet zone.
type Matrix struct {
	size int
	dark []bool
}

// NewMatrix builds a matrix from row-major module values.
// It panics if len(dark) is not size*size.
func NewMatrix(size int, dark []bool) *Matrix {
	if size <= 0 || len(dark) != size*size {
		panic(fmt.Sprintf("qr: matrix of side %d needs %d modules, got %d", size, size*size, len(dark)))
	}
	cells := make([]bool, len(dark))
	copy(cells, dark)
	return &Matrix{size: size, dark: cells}
}

// Size returns the side length in modules.
func (m *Matrix) Size() int { return m.size }

// Dark reports whether the module at column x, row y is dark.
func (m *Matrix) Dark(x, y int) bool {
	return m.dark[y*m.size+x]
}

// MatrixEncoder turns text into a module matrix.
type MatrixEncoder interface {
	Encode(content string, level Level) (*Matrix, error)
}

// YeqownEncoder encodes with github.com/yeqown/go-qrcode.
type YeqownEncoder struct{}

var yeqownLevels = map[Level]qrcode.EncodeOption{
	LevelL: qrcode.WithErrorCorrectionLevel(qrcode.ErrorCorrectionLow),
	LevelM: qrcode.WithErrorCorrectionLevel(qrcode.ErrorCorrectionMedium),
	LevelQ: qrcode.WithErrorCorrectionLevel(qrcode.ErrorCorrectionQuart),
	LevelH: qrcode.WithErrorCorrectionLevel(qrcode.ErrorCorrectionHighest),
}

// Encode implements MatrixEncoder.
func (YeqownEncoder) Encode(content string, level Level) (*Matrix, error) {
	opt, ok := yeqownLevels[level]
	if !ok {
		return nil, newError(KindInvalidConfig, "unknown error correction level %v", level)
	}
	qrc, err := qrcode.NewWith(content, opt)
	if err != nil {
		return nil, wrapError(KindContentTooLarge, err, "content of %d bytes does not fit at level %v", len(content), level)
	}
	capture := &matrixCapture{}
	if err := qrc.Save(capture); err != nil {
		return nil, wrapError(KindContentTooLarge, err, "failed to build matrix")
	}
	return capture.matrix, nil
}

// matrixCapture is a qrcode.Writer that keeps the module grid in memory
// instead of drawing it.
type matrixCapture struct {
	matrix *Matrix
}

func (c *matrixCapture) Write(mat qrcode.Matrix) error {
	n := mat.Width()
	if n <= 0 || mat.Height() != n {
		return fmt.Errorf("unexpected matrix shape %dx%d", n, mat.Height())
	}
	dark := make([]bool, n*n)
	mat.Iterate(qrcode.IterDirection_ROW, func(x int, y int, v qrcode.QRValue) {
		dark[y*n+x] = v.IsSet()
	})
	c.matrix = &Matrix{size: n, dark: dark}
	return nil
}

func (c *matrixCapture) Close() error { return nil }

// ZXingEncoder encodes with the gozxing port of ZXing.
//
// Some inputs make gozxing emit symbols its own decoder rejects, so every
// matrix is decoded back before it is returned. When that check fails the
// content is re-encoded with Fallback (YeqownEncoder if nil).
type ZXingEncoder struct {
	Fallback MatrixEncoder
}

var zxingLevels = map[Level]decoder.ErrorCorrectionLevel{
	LevelL: decoder.ErrorCorrectionLevel_L,
	LevelM: decoder.ErrorCorrectionLevel_M,
	LevelQ: decoder.ErrorCorrectionLevel_Q,
	LevelH: decoder.ErrorCorrectionLevel_H,
}

// Encode implements MatrixEncoder.
func (e ZXingEncoder) Encode(content string, level Level) (*Matrix, error) {
	m, err := zxingMatrix(content, level)
	if err != nil {
		return nil, err
	}
	if verifyMatrix(m, content) == nil {
		return m, nil
	}
	fallback := e.Fallback
	if fallback == nil {
		fallback = YeqownEncoder{}
	}
	return fallback.Encode(content, level)
}

// zxingMatrix runs the gozxing encoder without any verification.
func zxingMatrix(content string, level Level) (*Matrix, error) {
	ecl, ok := zxingLevels[level]
	if !ok {
		return nil, newError(KindInvalidConfig, "unknown error correction level %v", level)
	}
	hints := map[gozxing.EncodeHintType]interface{}{}
	if !isLatin1(content) {
		hints[gozxing.EncodeHintType_CHARACTER_SET] = "UTF-8"
	}
	code, err := encoder.Encoder_encode(content, ecl, hints)
	if err != nil {
		return nil, wrapError(KindContentTooLarge, err, "content of %d bytes does not fit at level %v", len(content), level)
	}
	bm := code.GetMatrix()
	n := bm.GetWidth()
	if n <= 0 || bm.GetHeight() != n {
		return nil, newError(KindContentTooLarge, "unexpected matrix shape %dx%d", n, bm.GetHeight())
	}
	dark := make([]bool, n*n)
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			dark[y*n+x] = bm.Get(x, y) == 1
		}
	}
	return &Matrix{size: n, dark: dark}, nil
}

// verifyMatrix decodes m with the ZXing decoder and checks it yields content.
func verifyMatrix(m *Matrix, content string) error {
	n := m.Size()
	bits, err := gozxing.NewBitMatrix(n, n)
	if err != nil {
		return err
	}
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			if m.Dark(x, y) {
				bits.Set(x, y)
			}
		}
	}
	res, err := decoder.NewDecoder().Decode(bits, nil)
	if err != nil {
		return err
	}
	if got := res.GetText(); got != content {
		return fmt.Errorf("decoded %q, want %q", got, content)
	}
	return nil
}

func isLatin1(s string) bool {
	for _, r := range s {
		if r == utf8.RuneError || r > 0xFF {
			return false
		}
	}
	return true
}
