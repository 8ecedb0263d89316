// Package canvas provides pdftable.Canvas implementations: Recorder keeps
// every call for inspection, PDF writes a PDF document with embedded
// TrueType fonts.
package canvas

import (
	"bytes"
	"fmt"

	"github.com/lvillar/pdftable"
)

// OpKind identifies a recorded canvas call.
type OpKind int

const (
	OpText OpKind = iota
	OpLine
	OpRect
	OpNewPage
)

func (k OpKind) String() string {
	switch k {
	case OpText:
		return "text"
	case OpLine:
		return "line"
	case OpRect:
		return "rect"
	case OpNewPage:
		return "newpage"
	default:
		return fmt.Sprintf("OpKind(%d)", int(k))
	}
}

// Op is one recorded call. Lines use X, Y, X2, Y2 and Width; rectangles use
// X, Y, W and H; text uses X, Y (the baseline), Text and Face.
type Op struct {
	Kind   OpKind
	Page   int // zero-based page the call was made on
	X, Y   float64
	X2, Y2 float64
	W, H   float64
	Width  float64
	Text   string
	Face   pdftable.Face
	Color  pdftable.Color
}

// Recorder is a Canvas that records calls instead of drawing them.
type Recorder struct {
	Ops    []Op
	page   int
	closed bool
}

// NewRecorder returns an empty recorder with one open page.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) record(op Op) {
	if r.closed {
		return
	}
	op.Page = r.page
	r.Ops = append(r.Ops, op)
}

func (r *Recorder) DrawText(x, y float64, text string, face pdftable.Face, color pdftable.Color) {
	r.record(Op{Kind: OpText, X: x, Y: y, Text: text, Face: face, Color: color})
}

func (r *Recorder) DrawLine(x1, y1, x2, y2, width float64, color pdftable.Color) {
	r.record(Op{Kind: OpLine, X: x1, Y: y1, X2: x2, Y2: y2, Width: width, Color: color})
}

func (r *Recorder) FillRect(x, y, w, h float64, color pdftable.Color) {
	r.record(Op{Kind: OpRect, X: x, Y: y, W: w, H: h, Color: color})
}

func (r *Recorder) NewPage() {
	if r.closed {
		return
	}
	r.record(Op{Kind: OpNewPage})
	r.page++
}

// Finalize returns a plain-text listing of the recorded calls, one per line.
// The recorder ignores calls made after it.
func (r *Recorder) Finalize() ([]byte, error) {
	if r.closed {
		return nil, pdftable.NewOpError("Finalize", pdftable.ErrClosed)
	}
	r.closed = true

	var buf bytes.Buffer
	for _, op := range r.Ops {
		switch op.Kind {
		case OpText:
			fmt.Fprintf(&buf, "%d text %.2f %.2f %s %g %s %q\n", op.Page, op.X, op.Y, op.Face.Weight, op.Face.Size, op.Color.Hex(), op.Text)
		case OpLine:
			fmt.Fprintf(&buf, "%d line %.2f %.2f %.2f %.2f %g %s\n", op.Page, op.X, op.Y, op.X2, op.Y2, op.Width, op.Color.Hex())
		case OpRect:
			fmt.Fprintf(&buf, "%d rect %.2f %.2f %.2f %.2f %s\n", op.Page, op.X, op.Y, op.W, op.H, op.Color.Hex())
		case OpNewPage:
			fmt.Fprintf(&buf, "%d newpage\n", op.Page)
		}
	}
	return buf.Bytes(), nil
}

// Pages returns the number of pages drawn on so far.
func (r *Recorder) Pages() int {
	return r.page + 1
}

// Texts returns the text drawn on page n, in call order.
func (r *Recorder) Texts(n int) []string {
	var out []string
	for _, op := range r.Ops {
		if op.Kind == OpText && op.Page == n {
			out = append(out, op.Text)
		}
	}
	return out
}

// Filter returns the recorded calls of one kind.
func (r *Recorder) Filter(kind OpKind) []Op {
	var out []Op
	for _, op := range r.Ops {
		if op.Kind == kind {
			out = append(out, op)
		}
	}
	return out
}
