package font

import (
	"strings"
	"sync"

	"github.com/pkg/errors"
	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"

	"github.com/lvillar/pdftable"
)

// SFNT measures runes with the advance widths of a TrueType/OpenType font.
// It holds a regular and a bold face and is safe for concurrent use.
type SFNT struct {
	faces [2]*face
}

// Program describes an embeddable font program. Metrics are in 1/1000 em,
// with the PDF convention of y growing upwards.
type Program struct {
	Name        string
	Data        []byte
	Ascent      float64
	Descent     float64
	CapHeight   float64
	ItalicAngle float64
	BBox        [4]float64
}

type face struct {
	name       string
	data       []byte
	font       *sfnt.Font
	unitsPerEm sfnt.Units

	mu       sync.Mutex
	buf      sfnt.Buffer
	advances map[rune]float64
}

// NewSFNT parses the regular and bold font programs. bold may be nil, in
// which case the regular face also serves bold text.
func NewSFNT(regular, bold []byte) (*SFNT, error) {
	reg, err := parseFace("regular", regular)
	if err != nil {
		return nil, err
	}
	s := &SFNT{faces: [2]*face{reg, reg}}
	if len(bold) > 0 {
		b, err := parseFace("bold", bold)
		if err != nil {
			return nil, err
		}
		s.faces[pdftable.WeightBold] = b
	}
	return s, nil
}

var goFonts = sync.OnceValues(func() (*SFNT, error) {
	return NewSFNT(goregular.TTF, gobold.TTF)
})

// GoFonts returns a provider backed by the bundled Go Regular and Go Bold
// fonts. The result is shared.
func GoFonts() (*SFNT, error) {
	return goFonts()
}

func parseFace(label string, data []byte) (*face, error) {
	if len(data) == 0 {
		return nil, errors.Errorf("font: %s font data is empty", label)
	}
	f, err := sfnt.Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "font: parse %s font", label)
	}
	upem := f.UnitsPerEm()
	if upem == 0 {
		return nil, errors.Errorf("font: %s font has zero unitsPerEm", label)
	}
	fc := &face{
		data:       data,
		font:       f,
		unitsPerEm: upem,
		advances:   make(map[rune]float64),
	}
	name, _ := f.Name(&fc.buf, sfnt.NameIDPostScript)
	name = strings.Map(func(r rune) rune {
		if r <= ' ' || r > '~' || strings.ContainsRune("()<>[]{}/%#", r) {
			return -1
		}
		return r
	}, name)
	if name == "" {
		name = "CustomTT-" + label
	}
	fc.name = name
	return fc, nil
}

// WidthOf implements Provider.
func (s *SFNT) WidthOf(r rune, f pdftable.Face) (float64, error) {
	adv, err := s.face(f.Weight).advance(r)
	if err != nil {
		return 0, &pdftable.MeasurementError{Rune: r, Face: f, Err: err}
	}
	return adv * f.Size / 1000, nil
}

// Advance returns the advance of r in 1/1000 em, and false when the font has
// no glyph for it.
func (s *SFNT) Advance(r rune, weight pdftable.FontWeight) (float64, bool) {
	adv, err := s.face(weight).advance(r)
	return adv, err == nil
}

// Program returns the font program and descriptor metrics for a weight.
func (s *SFNT) Program(weight pdftable.FontWeight) *Program {
	fc := s.face(weight)
	fc.mu.Lock()
	defer fc.mu.Unlock()

	ppem := fixed.Int26_6(fc.unitsPerEm << 6)
	p := &Program{Name: fc.name, Data: fc.data}
	if m, err := fc.font.Metrics(&fc.buf, ppem, xfont.HintingNone); err == nil {
		p.Ascent = fc.scale(m.Ascent)
		p.Descent = -fc.scale(m.Descent)
		p.CapHeight = fc.scale(m.CapHeight)
		if p.CapHeight == 0 {
			p.CapHeight = p.Ascent
		}
	}
	if b, err := fc.font.Bounds(&fc.buf, ppem, xfont.HintingNone); err == nil {
		p.BBox = [4]float64{fc.scale(b.Min.X), -fc.scale(b.Max.Y), fc.scale(b.Max.X), -fc.scale(b.Min.Y)}
	}
	if post := fc.font.PostTable(); post != nil {
		p.ItalicAngle = post.ItalicAngle
	}
	return p
}

// SameFace reports whether bold text is drawn with the regular program.
func (s *SFNT) SameFace() bool {
	return s.faces[pdftable.WeightNormal] == s.faces[pdftable.WeightBold]
}

func (s *SFNT) face(w pdftable.FontWeight) *face {
	if w == pdftable.WeightBold {
		return s.faces[pdftable.WeightBold]
	}
	return s.faces[pdftable.WeightNormal]
}

func (fc *face) advance(r rune) (float64, error) {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	if w, ok := fc.advances[r]; ok {
		return w, nil
	}
	idx, err := fc.font.GlyphIndex(&fc.buf, r)
	if err != nil {
		return 0, err
	}
	if idx == 0 {
		return 0, pdftable.ErrGlyphMissing
	}
	ppem := fixed.Int26_6(fc.unitsPerEm << 6)
	adv, err := fc.font.GlyphAdvance(&fc.buf, idx, ppem, xfont.HintingNone)
	if err != nil {
		return 0, err
	}
	w := fc.scale(adv)
	fc.advances[r] = w
	return w, nil
}

func (fc *face) scale(v fixed.Int26_6) float64 {
	return float64(v) * 1000.0 / (64.0 * float64(fc.unitsPerEm))
}
