package pdftable

import (
	"fmt"
	"strings"
)

// Edges holds one value per side of a box, in points. It is used for page
// margins, cell padding and border widths.
type Edges struct {
	Top, Right, Bottom, Left float64
}

// Uniform creates Edges with the same value on all sides.
func Uniform(v float64) Edges {
	return Edges{Top: v, Right: v, Bottom: v, Left: v}
}

// Horizontal returns Left + Right.
func (e Edges) Horizontal() float64 { return e.Left + e.Right }

// Vertical returns Top + Bottom.
func (e Edges) Vertical() float64 { return e.Top + e.Bottom }

// Size is a page size in points.
type Size struct {
	Wd, Ht float64
}

// Page sizes in points.
var (
	SizeA3      = Size{Wd: 841.89, Ht: 1190.55}
	SizeA4      = Size{Wd: 595.28, Ht: 841.89}
	SizeA5      = Size{Wd: 420.94, Ht: 595.28}
	SizeLetter  = Size{Wd: 612, Ht: 792}
	SizeLegal   = Size{Wd: 612, Ht: 1008}
	SizeTabloid = Size{Wd: 792, Ht: 1224}
)

// Page size and orientation names accepted by WithPageSize and WithOrientation.
const (
	PageSizeA3      = "A3"
	PageSizeA4      = "A4"
	PageSizeA5      = "A5"
	PageSizeLetter  = "Letter"
	PageSizeLegal   = "Legal"
	PageSizeTabloid = "Tabloid"

	OrientationPortrait  = "portrait"
	OrientationLandscape = "landscape"
)

// LookupSize returns the named page size. Names are case-insensitive.
func LookupSize(name string) (Size, bool) {
	switch strings.ToLower(name) {
	case "a3":
		return SizeA3, true
	case "a4":
		return SizeA4, true
	case "a5":
		return SizeA5, true
	case "letter":
		return SizeLetter, true
	case "legal":
		return SizeLegal, true
	case "tabloid":
		return SizeTabloid, true
	}
	return Size{}, false
}

// Page is the geometry of every page a table is laid out on. Coordinates
// handed to a Canvas use a top-left origin with y growing downwards.
type Page struct {
	Width   float64
	Height  float64
	Margins Edges
}

// PrintableWidth is the page width minus left and right margins.
func (p Page) PrintableWidth() float64 {
	return p.Width - p.Margins.Horizontal()
}

// PrintableHeight is the page height minus top and bottom margins.
func (p Page) PrintableHeight() float64 {
	return p.Height - p.Margins.Vertical()
}

// Validate checks that the printable area is positive in both axes.
func (p Page) Validate() error {
	if p.PrintableWidth() <= 0 || p.PrintableHeight() <= 0 {
		return fmt.Errorf("%w: page %gx%g with margins %+v", ErrInvalidPage, p.Width, p.Height, p.Margins)
	}
	return nil
}
