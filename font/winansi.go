package font

import (
	"golang.org/x/text/encoding/charmap"

	"github.com/lvillar/pdftable"
)

// WinAnsi restricts p to runes representable in the Windows-1252 code page,
// the encoding of simple PDF fonts. Layout with this provider fails before
// anything is drawn when a cell holds text the PDF canvas could not encode.
func WinAnsi(p Provider) Provider {
	return winAnsi{inner: p}
}

type winAnsi struct {
	inner Provider
}

func (w winAnsi) WidthOf(r rune, face pdftable.Face) (float64, error) {
	if !Encodable(r) {
		return 0, &pdftable.MeasurementError{Rune: r, Face: face, Err: pdftable.ErrUnencodable}
	}
	return w.inner.WidthOf(r, face)
}

func (w winAnsi) StringWidth(s string, face pdftable.Face) (float64, error) {
	for _, r := range s {
		if !Encodable(r) {
			return 0, &pdftable.MeasurementError{Rune: r, Face: face, Err: pdftable.ErrUnencodable}
		}
	}
	return StringWidth(w.inner, s, face)
}

// Encodable reports whether r has a Windows-1252 code.
func Encodable(r rune) bool {
	_, ok := charmap.Windows1252.EncodeRune(r)
	return ok
}
