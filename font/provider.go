// Package font supplies the glyph metrics the table engine measures text with.
//
// A Provider answers one question: how wide is a rune in a given face. SFNT
// reads advances from TrueType/OpenType data, GoFonts bundles the Go fonts so
// the engine works without any font files, Shaper measures whole strings with
// HarfBuzz shaping, and Fixed gives every rune the same advance for tests.
// WinAnsi restricts any provider to the runes a simple PDF font can encode.
//
// Providers never substitute a fallback width: a rune that cannot be measured
// produces a *pdftable.MeasurementError.
package font

import (
	"unicode"

	"github.com/lvillar/pdftable"
)

// Provider reports the advance width of a rune in points.
type Provider interface {
	WidthOf(r rune, face pdftable.Face) (float64, error)
}

// StringMeasurer is implemented by providers that measure whole strings
// differently from the sum of their rune advances, e.g. with kerning.
type StringMeasurer interface {
	StringWidth(s string, face pdftable.Face) (float64, error)
}

// StringWidth measures s with p, using p's own string measurement when it
// has one.
func StringWidth(p Provider, s string, face pdftable.Face) (float64, error) {
	if sm, ok := p.(StringMeasurer); ok {
		return sm.StringWidth(s, face)
	}
	return sumAdvances(p, s, face)
}

func sumAdvances(p Provider, s string, face pdftable.Face) (float64, error) {
	total := 0.0
	for _, r := range s {
		w, err := p.WidthOf(r, face)
		if err != nil {
			return 0, err
		}
		total += w
	}
	return total, nil
}

// Fixed gives every printable rune the same advance, Advance ems (0.5 when
// zero). Bold runes use BoldAdvance when set. Control characters have no
// glyph.
type Fixed struct {
	Advance     float64
	BoldAdvance float64
}

func (f Fixed) WidthOf(r rune, face pdftable.Face) (float64, error) {
	if unicode.IsControl(r) {
		return 0, &pdftable.MeasurementError{Rune: r, Face: face, Err: pdftable.ErrGlyphMissing}
	}
	adv := f.Advance
	if face.Weight == pdftable.WeightBold && f.BoldAdvance > 0 {
		adv = f.BoldAdvance
	}
	if adv == 0 {
		adv = 0.5
	}
	return adv * face.Size, nil
}
