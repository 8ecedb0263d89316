package pdftable

import (
	"fmt"
	"strconv"
	"strings"
)

// FontWeight selects the regular or bold face of the table font.
type FontWeight int

const (
	WeightNormal FontWeight = iota
	WeightBold
)

func (w FontWeight) String() string {
	if w == WeightBold {
		return "bold"
	}
	return "normal"
}

// ParseFontWeight accepts "normal", "bold" and the one-letter forms "" and "B".
func ParseFontWeight(s string) (FontWeight, error) {
	switch strings.ToLower(s) {
	case "", "normal", "regular":
		return WeightNormal, nil
	case "b", "bold":
		return WeightBold, nil
	}
	return WeightNormal, fmt.Errorf("%w: font weight %q", ErrInvalidParam, s)
}

// Face is a font weight at a size in points.
type Face struct {
	Weight FontWeight
	Size   float64
}

// Color is an RGB color.
type Color struct {
	R, G, B uint8
}

var (
	White = Color{255, 255, 255}
	Black = Color{0, 0, 0}
)

// Hex formats the color as #RRGGBB.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// ParseHex parses "#RRGGBB", "RRGGBB" or the short "#RGB" form.
func ParseHex(s string) (Color, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return Color{}, fmt.Errorf("%w: color %q", ErrInvalidParam, s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("%w: color %q", ErrInvalidParam, s)
	}
	return Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

// MustHex is ParseHex for constant colors; it panics on malformed input.
func MustHex(s string) Color {
	c, err := ParseHex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Canvas is the page-drawing surface a table renders onto. A canvas starts
// with one open page; NewPage closes it and opens the next. Coordinates are
// points from the top-left corner of the page. Text y is the baseline.
//
// Drawing methods do not return errors. An implementation that can fail keeps
// the first error and reports it from Finalize.
type Canvas interface {
	DrawText(x, y float64, text string, face Face, color Color)
	DrawLine(x1, y1, x2, y2, width float64, color Color)
	FillRect(x, y, w, h float64, color Color)
	NewPage()
	Finalize() ([]byte, error)
}
