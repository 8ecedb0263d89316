// Package tabledef provides a declarative table definition format for
// rendering paginated PDF tables.
//
// A definition can be written as JSON (with comments and trailing commas),
// YAML, a GitHub-flavoured Markdown table or an HTML <table>. Styles use
// the same names as the table package: fontSize, fontStyle, halign, valign,
// fillColor, textColor, cellPadding, lineWidth, lineColor, overflow,
// minCellHeight and lineHeightFactor.
//
// Example YAML:
//
//	page: {size: A4, margin: 40}
//	startY: 100
//	headStyles: {fontStyle: bold, fillColor: "#ECECEC"}
//	columns:
//	  - {header: Name}
//	  - {header: Qty, width: content}
//	  - {header: Price, width: 80, styles: {halign: right}}
//	body:
//	  - [Item 1, 1, "2.30"]
//	  - [Item 2, 3, "6.60"]
//	foot:
//	  - [{content: "TOTAL:", colSpan: 2, styles: {halign: right}}, "8.90"]
//	hook: |
//	  function hook(cell) {
//	    if (cell.section == "foot") return {top: {width: 1, color: "#202020"}};
//	  }
package tabledef

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/lvillar/pdftable"
	"github.com/lvillar/pdftable/table"
)

// Definition is a complete table document.
type Definition struct {
	Title  string    `json:"title,omitempty" yaml:"title,omitempty"`
	Page   *PageDef  `json:"page,omitempty" yaml:"page,omitempty"`
	Margin *EdgesDef `json:"margin,omitempty" yaml:"margin,omitempty"` // overrides the page margins for the table
	StartY *float64  `json:"startY,omitempty" yaml:"startY,omitempty"`

	Styles     *StyleDef `json:"styles,omitempty" yaml:"styles,omitempty"`
	HeadStyles *StyleDef `json:"headStyles,omitempty" yaml:"headStyles,omitempty"`
	BodyStyles *StyleDef `json:"bodyStyles,omitempty" yaml:"bodyStyles,omitempty"`
	FootStyles *StyleDef `json:"footStyles,omitempty" yaml:"footStyles,omitempty"`

	Columns []ColumnDef `json:"columns,omitempty" yaml:"columns,omitempty"`
	Head    [][]CellDef `json:"head,omitempty" yaml:"head,omitempty"`
	Body    [][]CellDef `json:"body,omitempty" yaml:"body,omitempty"`
	Foot    [][]CellDef `json:"foot,omitempty" yaml:"foot,omitempty"`

	Frame    *FrameDef `json:"frame,omitempty" yaml:"frame,omitempty"`
	ShowHead string    `json:"showHead,omitempty" yaml:"showHead,omitempty"` // everyPage, firstPage, never
	ShowFoot string    `json:"showFoot,omitempty" yaml:"showFoot,omitempty"` // lastPage, everyPage, never

	// Hook is JavaScript source defining function hook(cell). See ScriptHook.
	Hook string `json:"hook,omitempty" yaml:"hook,omitempty"`
}

// PageDef describes the page geometry. Width and Height, when both set,
// take precedence over Size.
type PageDef struct {
	Size        string    `json:"size,omitempty" yaml:"size,omitempty"`               // A3, A4, A5, Letter, Legal, Tabloid
	Orientation string    `json:"orientation,omitempty" yaml:"orientation,omitempty"` // portrait, landscape
	Width       float64   `json:"width,omitempty" yaml:"width,omitempty"`
	Height      float64   `json:"height,omitempty" yaml:"height,omitempty"`
	Margin      *EdgesDef `json:"margin,omitempty" yaml:"margin,omitempty"`
}

// ColumnDef describes one column. Header, when set on any column and no
// head rows are given, produces a single head row.
type ColumnDef struct {
	Header   string    `json:"header,omitempty" yaml:"header,omitempty"`
	Width    WidthDef  `json:"width,omitempty" yaml:"width,omitempty"`
	MinWidth float64   `json:"minWidth,omitempty" yaml:"minWidth,omitempty"`
	Styles   *StyleDef `json:"styles,omitempty" yaml:"styles,omitempty"`
}

// StyleDef is a partial style. Colors are "#RRGGBB" strings.
type StyleDef struct {
	FontSize         *float64  `json:"fontSize,omitempty" yaml:"fontSize,omitempty"`
	FontStyle        string    `json:"fontStyle,omitempty" yaml:"fontStyle,omitempty"` // normal, bold
	HAlign           string    `json:"halign,omitempty" yaml:"halign,omitempty"`
	VAlign           string    `json:"valign,omitempty" yaml:"valign,omitempty"`
	FillColor        string    `json:"fillColor,omitempty" yaml:"fillColor,omitempty"`
	TextColor        string    `json:"textColor,omitempty" yaml:"textColor,omitempty"`
	CellPadding      *EdgesDef `json:"cellPadding,omitempty" yaml:"cellPadding,omitempty"`
	LineWidth        *EdgesDef `json:"lineWidth,omitempty" yaml:"lineWidth,omitempty"`
	LineColor        string    `json:"lineColor,omitempty" yaml:"lineColor,omitempty"`
	Overflow         string    `json:"overflow,omitempty" yaml:"overflow,omitempty"` // wrap, ellipsize, clip
	MinCellHeight    *float64  `json:"minCellHeight,omitempty" yaml:"minCellHeight,omitempty"`
	LineHeightFactor *float64  `json:"lineHeightFactor,omitempty" yaml:"lineHeightFactor,omitempty"`
}

// FrameDef overrides the table frame. Unset fields keep table.DefaultFrame.
type FrameDef struct {
	LeftAccent        *float64 `json:"leftAccent,omitempty" yaml:"leftAccent,omitempty"`
	RightAccent       *float64 `json:"rightAccent,omitempty" yaml:"rightAccent,omitempty"`
	EdgeColor         string   `json:"edgeColor,omitempty" yaml:"edgeColor,omitempty"`
	TerminalRule      *float64 `json:"terminalRule,omitempty" yaml:"terminalRule,omitempty"`
	TerminalRuleColor string   `json:"terminalRuleColor,omitempty" yaml:"terminalRuleColor,omitempty"`
	Sections          []string `json:"sections,omitempty" yaml:"sections,omitempty"` // head, body, foot
}

// EdgesDef is a box of four values. It decodes from a single number, which
// sets all sides, or from an object with top, right, bottom and left keys.
// Missing keys are zero.
type EdgesDef struct {
	Top    float64 `json:"top" yaml:"top"`
	Right  float64 `json:"right" yaml:"right"`
	Bottom float64 `json:"bottom" yaml:"bottom"`
	Left   float64 `json:"left" yaml:"left"`
}

// Edges converts e to pdftable.Edges.
func (e EdgesDef) Edges() pdftable.Edges {
	return pdftable.Edges{Top: e.Top, Right: e.Right, Bottom: e.Bottom, Left: e.Left}
}

func (e *EdgesDef) UnmarshalJSON(b []byte) error {
	var v float64
	if err := json.Unmarshal(b, &v); err == nil {
		*e = EdgesDef{v, v, v, v}
		return nil
	}
	type plain EdgesDef
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return errors.Wrap(err, "edges must be a number or an object")
	}
	*e = EdgesDef(p)
	return nil
}

func (e *EdgesDef) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode {
		var v float64
		if err := n.Decode(&v); err != nil {
			return errors.Wrapf(err, "line %d: edges must be a number or a mapping", n.Line)
		}
		*e = EdgesDef{v, v, v, v}
		return nil
	}
	type plain EdgesDef
	var p plain
	if err := n.Decode(&p); err != nil {
		return err
	}
	*e = EdgesDef(p)
	return nil
}

// WidthDef is a column width: a number of points, "auto" or "content".
// The zero value is auto.
type WidthDef struct {
	table.WidthHint
}

func (w *WidthDef) UnmarshalJSON(b []byte) error {
	s := string(bytes.TrimSpace(b))
	if s == "null" {
		*w = WidthDef{}
		return nil
	}
	if unq, err := strconv.Unquote(s); err == nil {
		s = unq
	}
	h, err := table.ParseWidthHint(s)
	if err != nil {
		return err
	}
	w.WidthHint = h
	return nil
}

func (w WidthDef) MarshalJSON() ([]byte, error) {
	if w.Kind == table.WidthFixed {
		return json.Marshal(w.Value)
	}
	return json.Marshal(w.String())
}

func (w *WidthDef) UnmarshalYAML(n *yaml.Node) error {
	h, err := table.ParseWidthHint(n.Value)
	if err != nil {
		return errors.Wrapf(err, "line %d", n.Line)
	}
	w.WidthHint = h
	return nil
}

func (w WidthDef) MarshalYAML() (any, error) {
	if w.Kind == table.WidthFixed {
		return w.Value, nil
	}
	return w.String(), nil
}

// CellDef is one cell. It decodes from a plain string or number, which
// becomes the content, or from an object with content, colSpan and styles.
type CellDef struct {
	Content string    `json:"content" yaml:"content"`
	ColSpan int       `json:"colSpan,omitempty" yaml:"colSpan,omitempty"`
	Styles  *StyleDef `json:"styles,omitempty" yaml:"styles,omitempty"`
}

func (c *CellDef) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || string(b) == "null":
		*c = CellDef{}
		return nil
	case b[0] == '{':
		type plain CellDef
		var p plain
		if err := json.Unmarshal(b, &p); err != nil {
			return err
		}
		*c = CellDef(p)
		return nil
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*c = CellDef{Content: s}
		return nil
	default:
		// Numbers and booleans keep their literal text.
		*c = CellDef{Content: string(b)}
		return nil
	}
}

func (c CellDef) MarshalJSON() ([]byte, error) {
	if c.ColSpan <= 1 && c.Styles == nil {
		return json.Marshal(c.Content)
	}
	type plain CellDef
	return json.Marshal(plain(c))
}

func (c *CellDef) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.ScalarNode:
		if n.Tag == "!!null" {
			*c = CellDef{}
			return nil
		}
		*c = CellDef{Content: n.Value}
		return nil
	case yaml.MappingNode:
		type plain CellDef
		var p plain
		if err := n.Decode(&p); err != nil {
			return err
		}
		*c = CellDef(p)
		return nil
	default:
		return errors.Errorf("line %d: a cell must be a scalar or a mapping", n.Line)
	}
}
