// Package text fits cell content into a width: greedy word wrapping,
// single-line ellipsizing and clipping, measured with a font.Provider.
package text

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/lvillar/pdftable"
	"github.com/lvillar/pdftable/font"
)

// Overflow is the policy for text wider than its cell.
type Overflow int

const (
	// Wrap breaks text on whitespace into as many lines as needed.
	Wrap Overflow = iota
	// Ellipsize keeps a single line, truncated with Ellipsis to fit.
	Ellipsize
	// Clip keeps a single line as-is; the canvas clips what overflows.
	Clip
)

func (o Overflow) String() string {
	switch o {
	case Ellipsize:
		return "ellipsize"
	case Clip:
		return "clip"
	default:
		return "wrap"
	}
}

// ParseOverflow accepts "wrap" (also "linebreak"), "ellipsize" and "clip"
// (also "visible", "hidden").
func ParseOverflow(s string) (Overflow, error) {
	switch strings.ToLower(s) {
	case "", "wrap", "linebreak":
		return Wrap, nil
	case "ellipsize", "ellipsis":
		return Ellipsize, nil
	case "clip", "visible", "hidden":
		return Clip, nil
	}
	return Wrap, fmt.Errorf("%w: overflow %q", pdftable.ErrInvalidParam, s)
}

// Ellipsis is appended to truncated text.
const Ellipsis = "..."

// Measurer measures and fits text. The zero value is not usable; create one
// with NewMeasurer.
type Measurer struct {
	fonts font.Provider
}

// NewMeasurer returns a Measurer using p for glyph widths.
func NewMeasurer(p font.Provider) *Measurer {
	return &Measurer{fonts: p}
}

// Width returns the width of a single line of text.
func (m *Measurer) Width(s string, face pdftable.Face) (float64, error) {
	return font.StringWidth(m.fonts, s, face)
}

// Measure fits text into maxWidth under the overflow policy and returns the
// lines to draw. The result is always at least one line, and identical inputs
// always produce identical lines.
func (m *Measurer) Measure(s string, face pdftable.Face, maxWidth float64, overflow Overflow) ([]string, error) {
	s = normalize(s)
	switch overflow {
	case Ellipsize:
		line, err := m.ellipsize(singleLine(s), face, maxWidth)
		if err != nil {
			return nil, err
		}
		return []string{line}, nil
	case Clip:
		line := singleLine(s)
		// Measured anyway so unmeasurable runes fail here, not in the canvas.
		if _, err := m.Width(line, face); err != nil {
			return nil, err
		}
		return []string{line}, nil
	default:
		return m.wrap(s, face, maxWidth)
	}
}

func normalize(s string) string {
	s = norm.NFC.String(s)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.ReplaceAll(s, "\t", " ")
}

func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func (m *Measurer) wrap(s string, face pdftable.Face, maxWidth float64) ([]string, error) {
	var lines []string
	for _, para := range strings.Split(s, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}

		line := words[0]
		if _, err := m.Width(line, face); err != nil {
			return nil, err
		}
		for _, word := range words[1:] {
			candidate := line + " " + word
			w, err := m.Width(candidate, face)
			if err != nil {
				return nil, err
			}
			if w <= maxWidth+epsilon {
				line = candidate
				continue
			}
			lines = append(lines, line)
			line = word
		}
		lines = append(lines, line)
	}
	return lines, nil
}

func (m *Measurer) ellipsize(s string, face pdftable.Face, maxWidth float64) (string, error) {
	full, err := m.Width(s, face)
	if err != nil {
		return "", err
	}
	if full <= maxWidth+epsilon {
		return s, nil
	}

	markW, err := m.Width(Ellipsis, face)
	if err != nil {
		return "", err
	}
	if markW > maxWidth+epsilon {
		dot, err := m.Width(".", face)
		if err != nil {
			return "", err
		}
		n := 0
		for n < len(Ellipsis) && float64(n+1)*dot <= maxWidth+epsilon {
			n++
		}
		return Ellipsis[:n], nil
	}

	// Binary search the longest rune prefix that fits with the marker.
	runes := []rune(s)
	lo, hi := 0, len(runes)
	for lo < hi {
		mid := (lo + hi + 1) / 2
		w, err := m.Width(strings.TrimRight(string(runes[:mid]), " ")+Ellipsis, face)
		if err != nil {
			return "", err
		}
		if w <= maxWidth+epsilon {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return strings.TrimRight(string(runes[:lo]), " ") + Ellipsis, nil
}

// Widest returns the width of the widest '\n'-separated line of s, without
// any wrapping.
func (m *Measurer) Widest(s string, face pdftable.Face) (float64, error) {
	widest := 0.0
	for _, line := range strings.Split(normalize(s), "\n") {
		line = singleLine(line)
		if line == "" {
			continue
		}
		w, err := m.Width(line, face)
		if err != nil {
			return 0, err
		}
		if w > widest {
			widest = w
		}
	}
	return widest, nil
}

// epsilon absorbs float noise when comparing summed widths to a limit.
const epsilon = 1e-9
