package tabledef

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/tidwall/jsonc"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	mdtext "github.com/yuin/goldmark/text"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"gopkg.in/yaml.v3"

	"github.com/lvillar/pdftable"
	"github.com/lvillar/pdftable/table"
)

// Format is a definition source format.
type Format string

const (
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

// ParseFormat accepts a format name or a common file extension.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "json", "jsonc":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "html", "htm":
		return FormatHTML, nil
	}
	return "", errors.Wrapf(pdftable.ErrInvalidParam, "unknown definition format %q", s)
}

// DetectFormat guesses the format of data from its first characters:
// JSON starts with a brace or a comment, HTML with a tag, and Markdown has
// a line starting with a pipe. Anything else is taken as YAML.
func DetectFormat(data []byte) Format {
	s := bytes.TrimSpace(data)
	switch {
	case bytes.HasPrefix(s, []byte("{")), bytes.HasPrefix(s, []byte("//")), bytes.HasPrefix(s, []byte("/*")):
		return FormatJSON
	case bytes.HasPrefix(s, []byte("<")):
		return FormatHTML
	case bytes.HasPrefix(s, []byte("|")), bytes.Contains(s, []byte("\n|")):
		return FormatMarkdown
	}
	return FormatYAML
}

// Parse decodes data in the given format.
func Parse(data []byte, format Format) (*Definition, error) {
	switch format {
	case FormatJSON:
		return ParseJSON(data)
	case FormatYAML:
		return ParseYAML(data)
	case FormatMarkdown:
		return ParseMarkdown(data)
	case FormatHTML:
		return ParseHTML(data)
	}
	return nil, errors.Wrapf(pdftable.ErrInvalidParam, "unknown definition format %q", format)
}

// Load reads a definition file, choosing the format from its extension.
func Load(path string) (*Definition, error) {
	format, err := ParseFormat(filepath.Ext(path))
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	def, err := Parse(data, format)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return def, nil
}

// ParseJSON decodes a JSON definition. Comments and trailing commas are
// allowed.
func ParseJSON(data []byte) (*Definition, error) {
	var def Definition
	if err := json.Unmarshal(jsonc.ToJSON(data), &def); err != nil {
		return nil, errors.Wrap(err, "parsing table definition")
	}
	return &def, nil
}

// ParseYAML decodes a YAML definition.
func ParseYAML(data []byte) (*Definition, error) {
	var def Definition
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&def); err != nil {
		return nil, errors.Wrap(err, "parsing table definition")
	}
	return &def, nil
}

var markdown = goldmark.New(goldmark.WithExtensions(extension.Table))

// ParseMarkdown reads the first GFM table in a Markdown document. The
// header row becomes the head, column alignments become column halign
// styles, and a heading just before the table becomes the title. A cell
// that is entirely strong text is bold.
func ParseMarkdown(data []byte) (*Definition, error) {
	doc := markdown.Parser().Parse(mdtext.NewReader(data))

	var (
		def     Definition
		heading string
		found   *extast.Table
	)
	for n := doc.FirstChild(); n != nil && found == nil; n = n.NextSibling() {
		switch n := n.(type) {
		case *ast.Heading:
			heading = inlineText(n, data)
		case *extast.Table:
			found = n
		default:
			heading = ""
		}
	}
	if found == nil {
		return nil, errors.Wrap(pdftable.ErrInvalidTable, "markdown: no table found")
	}
	def.Title = heading

	for _, a := range found.Alignments {
		var col ColumnDef
		switch a {
		case extast.AlignRight:
			col.Styles = &StyleDef{HAlign: "right"}
		case extast.AlignCenter:
			col.Styles = &StyleDef{HAlign: "center"}
		}
		def.Columns = append(def.Columns, col)
	}

	for r := found.FirstChild(); r != nil; r = r.NextSibling() {
		var row []CellDef
		for c := r.FirstChild(); c != nil; c = c.NextSibling() {
			if c.Kind() != extast.KindTableCell {
				continue
			}
			cell := CellDef{Content: inlineText(c, data)}
			if isStrong(c) {
				cell.Styles = &StyleDef{FontStyle: "bold"}
			}
			row = append(row, cell)
		}
		switch r.Kind() {
		case extast.KindTableHeader:
			def.Head = append(def.Head, row)
		case extast.KindTableRow:
			def.Body = append(def.Body, row)
		}
	}
	return &def, nil
}

func inlineText(n ast.Node, src []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n := n.(type) {
		case *ast.Text:
			b.Write(n.Segment.Value(src))
			if n.SoftLineBreak() || n.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(n.Value)
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(b.String())
}

func isStrong(cell ast.Node) bool {
	if cell.ChildCount() != 1 {
		return false
	}
	e, ok := cell.FirstChild().(*ast.Emphasis)
	return ok && e.Level == 2
}

// ParseHTML reads the first <table> in an HTML document. thead, tbody and
// tfoot map to the table sections; rows outside them are body rows. It
// understands colspan, align, bgcolor, <col width>, and the text-align,
// font-weight, color, background-color and width style properties. A
// <caption> becomes the title and th cells are bold.
func ParseHTML(data []byte) (*Definition, error) {
	root, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, "parsing html")
	}
	tbl := findElement(root, atom.Table)
	if tbl == nil {
		return nil, errors.Wrap(pdftable.ErrInvalidTable, "html: no table found")
	}

	var def Definition
	for c := tbl.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.DataAtom {
		case atom.Caption:
			def.Title = textContent(c)
		case atom.Colgroup:
			for col := c.FirstChild; col != nil; col = col.NextSibling {
				if col.DataAtom == atom.Col {
					def.Columns = append(def.Columns, htmlColumn(col)...)
				}
			}
		case atom.Col:
			def.Columns = append(def.Columns, htmlColumn(c)...)
		case atom.Thead:
			def.Head = append(def.Head, htmlRows(c)...)
		case atom.Tbody:
			def.Body = append(def.Body, htmlRows(c)...)
		case atom.Tfoot:
			def.Foot = append(def.Foot, htmlRows(c)...)
		case atom.Tr:
			def.Body = append(def.Body, htmlRow(c))
		}
	}
	return &def, nil
}

func htmlColumn(n *html.Node) []ColumnDef {
	var col ColumnDef
	w := attr(n, "width")
	if v := cssProperty(attr(n, "style"), "width"); v != "" {
		w = v
	}
	if v, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(w), "pt"), 64); err == nil && v > 0 {
		col.Width = WidthDef{table.Fixed(v)}
	}
	if a := attr(n, "align"); a != "" {
		col.Styles = &StyleDef{HAlign: a}
	}
	span := 1
	if s, err := strconv.Atoi(attr(n, "span")); err == nil && s > 1 {
		span = s
	}
	out := make([]ColumnDef, span)
	for i := range out {
		out[i] = col
	}
	return out
}

func htmlRows(section *html.Node) [][]CellDef {
	var rows [][]CellDef
	for tr := section.FirstChild; tr != nil; tr = tr.NextSibling {
		if tr.Type == html.ElementNode && tr.DataAtom == atom.Tr {
			rows = append(rows, htmlRow(tr))
		}
	}
	return rows
}

func htmlRow(tr *html.Node) []CellDef {
	var row []CellDef
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || (c.DataAtom != atom.Td && c.DataAtom != atom.Th) {
			continue
		}
		cell := CellDef{Content: textContent(c)}
		if n, err := strconv.Atoi(attr(c, "colspan")); err == nil && n > 1 {
			cell.ColSpan = n
		}

		var st StyleDef
		style := attr(c, "style")
		st.HAlign = firstNonEmpty(cssProperty(style, "text-align"), attr(c, "align"))
		st.VAlign = firstNonEmpty(cssProperty(style, "vertical-align"), attr(c, "valign"))
		st.FillColor = hexOnly(firstNonEmpty(cssProperty(style, "background-color"), attr(c, "bgcolor")))
		st.TextColor = hexOnly(cssProperty(style, "color"))
		switch fw := cssProperty(style, "font-weight"); {
		case fw == "bold" || fw == "700":
			st.FontStyle = "bold"
		case fw == "normal" || fw == "400":
			st.FontStyle = "normal"
		case c.DataAtom == atom.Th:
			st.FontStyle = "bold"
		}
		if st != (StyleDef{}) {
			cell.Styles = &st
		}
		row = append(row, cell)
	}
	return row
}

func findElement(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, a); found != nil {
			return found
		}
	}
	return nil
}

// textContent collapses whitespace inside each line; <br> starts a new line.
func textContent(n *html.Node) string {
	var lines []string
	var cur strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch {
		case n.Type == html.TextNode:
			cur.WriteString(n.Data)
		case n.Type == html.ElementNode && n.DataAtom == atom.Br:
			lines = append(lines, cur.String())
			cur.Reset()
		case n.Type == html.ElementNode && (n.DataAtom == atom.Script || n.DataAtom == atom.Style):
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	lines = append(lines, cur.String())
	for i, l := range lines {
		lines[i] = strings.Join(strings.Fields(l), " ")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// cssProperty returns the value of prop in an inline style attribute.
func cssProperty(style, prop string) string {
	for _, decl := range strings.Split(style, ";") {
		k, v, ok := strings.Cut(decl, ":")
		if ok && strings.EqualFold(strings.TrimSpace(k), prop) {
			return strings.ToLower(strings.TrimSpace(v))
		}
	}
	return ""
}

func hexOnly(s string) string {
	if _, err := pdftable.ParseHex(s); err != nil || !strings.HasPrefix(s, "#") {
		return ""
	}
	return s
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
