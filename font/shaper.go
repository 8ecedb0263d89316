package font

import (
	"bytes"
	"sort"
	"sync"
	"unicode"

	"github.com/go-text/typesetting/di"
	gofont "github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"github.com/pkg/errors"
	"golang.org/x/image/math/fixed"

	"github.com/lvillar/pdftable"
)

// Shaper measures strings by shaping them with HarfBuzz, so kerning and
// ligatures are reflected in line widths. Single runes are measured by the
// underlying SFNT provider, which also rejects runes without a glyph.
type Shaper struct {
	metrics *SFNT

	mu     sync.Mutex
	shaper shaping.HarfbuzzShaper
	faces  [2]*gofont.Face
}

// NewShaper builds a shaping provider over the same font programs as s.
func NewShaper(s *SFNT) (*Shaper, error) {
	sh := &Shaper{metrics: s}
	for _, w := range []pdftable.FontWeight{pdftable.WeightNormal, pdftable.WeightBold} {
		if w == pdftable.WeightBold && s.SameFace() {
			sh.faces[w] = sh.faces[pdftable.WeightNormal]
			continue
		}
		f, err := gofont.ParseTTF(bytes.NewReader(s.face(w).data))
		if err != nil {
			return nil, errors.Wrapf(err, "font: shaping face %s", w)
		}
		sh.faces[w] = f
	}
	return sh, nil
}

// WidthOf implements Provider.
func (s *Shaper) WidthOf(r rune, face pdftable.Face) (float64, error) {
	return s.metrics.WidthOf(r, face)
}

// StringWidth implements StringMeasurer.
func (s *Shaper) StringWidth(text string, face pdftable.Face) (float64, error) {
	runes := []rune(text)
	if len(runes) == 0 {
		return 0, nil
	}
	for _, r := range runes {
		if _, err := s.metrics.WidthOf(r, face); err != nil {
			return 0, err
		}
	}

	total := 0.0
	for _, g := range s.shape(runes, face.Weight) {
		total += float64(g.XAdvance) / 64.0
	}
	return total * face.Size / 1000, nil
}

// Spacing returns, for each rune of text, the adjustment in 1/1000 em that
// makes text drawn with plain glyph advances end where the shaped text ends.
// Entry i applies after rune i; a positive value moves what follows to the
// left, as in a PDF TJ array. Ligature clusters carry their adjustment on
// their last rune.
func (s *Shaper) Spacing(text string, weight pdftable.FontWeight) ([]float64, error) {
	runes := []rune(text)
	adj := make([]float64, len(runes))
	if len(runes) == 0 {
		return adj, nil
	}
	plain := make([]float64, len(runes))
	for i, r := range runes {
		a, ok := s.metrics.Advance(r, weight)
		if !ok {
			return nil, &pdftable.MeasurementError{Rune: r, Face: pdftable.Face{Weight: weight}, Err: pdftable.ErrGlyphMissing}
		}
		plain[i] = a
	}

	shaped := make(map[int]float64)
	for _, g := range s.shape(runes, weight) {
		shaped[g.ClusterIndex] += float64(g.XAdvance) / 64.0
	}
	starts := make([]int, 0, len(shaped))
	for c := range shaped {
		starts = append(starts, c)
	}
	sort.Ints(starts)
	for k, start := range starts {
		end := len(runes)
		if k+1 < len(starts) {
			end = starts[k+1]
		}
		sum := 0.0
		for i := start; i < end; i++ {
			sum += plain[i]
		}
		adj[end-1] = sum - shaped[start]
	}
	return adj, nil
}

// shape runs HarfBuzz at 1000 units per em, so advances come out in
// 1/1000 em (26.6 fixed point).
func (s *Shaper) shape(runes []rune, weight pdftable.FontWeight) []shaping.Glyph {
	f := s.faces[pdftable.WeightNormal]
	if weight == pdftable.WeightBold {
		f = s.faces[pdftable.WeightBold]
	}
	input := shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: di.DirectionLTR,
		Face:      f,
		Size:      fixed.Int26_6(1000 * 64),
		Script:    detectScript(runes),
		Language:  language.DefaultLanguage(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shaper.Shape(input).Glyphs
}

func detectScript(runes []rune) language.Script {
	for _, r := range runes {
		switch {
		case unicode.Is(unicode.Greek, r):
			return language.Greek
		case unicode.Is(unicode.Cyrillic, r):
			return language.Cyrillic
		}
	}
	return language.Latin
}
