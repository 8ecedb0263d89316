package pdftable

import (
	"errors"
	"fmt"
)

// Sentinel errors for common layout and rendering failure conditions.
var (
	ErrInvalidPage  = errors.New("pdftable: printable area must be positive")
	ErrInvalidTable = errors.New("pdftable: invalid table")
	ErrInvalidParam = errors.New("pdftable: invalid parameter")
	ErrGlyphMissing = errors.New("pdftable: font has no glyph for rune")
	ErrUnencodable  = errors.New("pdftable: rune cannot be encoded")
	ErrClosed       = errors.New("pdftable: canvas is finalized")
)

// LayoutErrorKind classifies a LayoutError.
type LayoutErrorKind int

const (
	// ColumnOverflow means fixed and content-based columns (or pinned auto
	// minimums) need more width than the page offers. Fatal.
	ColumnOverflow LayoutErrorKind = iota + 1
	// DegenerateRow means a single row is taller than an empty page. The row is
	// placed alone on its own page; the error is reported as a warning.
	DegenerateRow
)

func (k LayoutErrorKind) String() string {
	switch k {
	case ColumnOverflow:
		return "ColumnOverflow"
	case DegenerateRow:
		return "DegenerateRow"
	default:
		return fmt.Sprintf("LayoutErrorKind(%d)", int(k))
	}
}

// LayoutError reports a geometry problem found while laying out a table.
// Need and Available are in points; Row is the body row index for
// DegenerateRow and -1 otherwise.
type LayoutError struct {
	Kind      LayoutErrorKind
	Need      float64
	Available float64
	Row       int
}

func (e *LayoutError) Error() string {
	switch e.Kind {
	case ColumnOverflow:
		return fmt.Sprintf("pdftable: %s: columns need %.2fpt, only %.2fpt available", e.Kind, e.Need, e.Available)
	case DegenerateRow:
		return fmt.Sprintf("pdftable: %s: body row %d is %.2fpt tall, page holds %.2fpt", e.Kind, e.Row, e.Need, e.Available)
	default:
		return fmt.Sprintf("pdftable: %s", e.Kind)
	}
}

// IsLayoutError reports whether err is a LayoutError of the given kind.
func IsLayoutError(err error, kind LayoutErrorKind) bool {
	var le *LayoutError
	return errors.As(err, &le) && le.Kind == kind
}

// MeasurementError reports a rune the font-metrics provider could not measure.
// There is no fallback glyph: a silently substituted width would corrupt the
// layout.
type MeasurementError struct {
	Rune rune
	Face Face
	Err  error
}

func (e *MeasurementError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("pdftable: measuring %q (U+%04X) at %gpt %s: %v", e.Rune, e.Rune, e.Face.Size, e.Face.Weight, e.Err)
	}
	return fmt.Sprintf("pdftable: measuring %q (U+%04X) at %gpt %s", e.Rune, e.Rune, e.Face.Size, e.Face.Weight)
}

func (e *MeasurementError) Unwrap() error {
	return e.Err
}

// OpError represents an error that occurred during a specific operation.
// It wraps an underlying error and includes the operation name for context.
type OpError struct {
	Op  string // operation name, e.g. "Finalize", "DrawText"
	Err error  // underlying error
}

func (e *OpError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("pdftable.%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("pdftable.%s: unknown error", e.Op)
}

func (e *OpError) Unwrap() error {
	return e.Err
}

// NewOpError creates a new OpError wrapping the given error with operation context.
func NewOpError(op string, err error) *OpError {
	return &OpError{Op: op, Err: err}
}
