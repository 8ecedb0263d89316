package canvas

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zlib"
	"github.com/pkg/errors"
	"github.com/zeebo/blake3"
	"golang.org/x/text/encoding/charmap"

	"github.com/lvillar/pdftable"
	"github.com/lvillar/pdftable/font"
)

// PDF is a Canvas writing a PDF 1.7 document. Text is drawn with the regular
// and bold faces of an SFNT provider, embedded as TrueType simple fonts with
// WinAnsi encoding, so it accepts the runes font.WinAnsi accepts.
//
// Drawing calls never fail; the first problem is kept and returned by
// Finalize. A PDF is not safe for concurrent use.
type PDF struct {
	page     pdftable.Page
	fonts    *font.SFNT
	compress bool
	title    string
	producer string
	spacer   Spacer

	pages  []*bytes.Buffer
	used   [2]bool
	err    error
	closed bool
}

// PDFOption configures a PDF canvas.
type PDFOption func(*PDF)

// WithCompression turns Flate compression of content and font streams on or
// off. It is on by default.
func WithCompression(on bool) PDFOption {
	return func(p *PDF) { p.compress = on }
}

// WithTitle sets the document title in the Info dictionary.
func WithTitle(title string) PDFOption {
	return func(p *PDF) { p.title = title }
}

// Spacer supplies per-rune adjustments, in 1/1000 em, for text measured
// with shaping. font.Shaper implements it.
type Spacer interface {
	Spacing(text string, weight pdftable.FontWeight) ([]float64, error)
}

// WithSpacing draws text with the adjustments of sp in a TJ array, so a line
// measured with kerning is drawn at its measured width.
func WithSpacing(sp Spacer) PDFOption {
	return func(p *PDF) { p.spacer = sp }
}

// WithProducer sets the Producer entry of the Info dictionary.
func WithProducer(producer string) PDFOption {
	return func(p *PDF) { p.producer = producer }
}

// NewPDF returns a PDF canvas with one open page of the given geometry. A
// nil fonts uses the bundled Go fonts.
func NewPDF(page pdftable.Page, fonts *font.SFNT, opts ...PDFOption) (*PDF, error) {
	if page.Width <= 0 || page.Height <= 0 {
		return nil, errors.Wrapf(pdftable.ErrInvalidPage, "canvas: page %gx%g", page.Width, page.Height)
	}
	if fonts == nil {
		gf, err := font.GoFonts()
		if err != nil {
			return nil, err
		}
		fonts = gf
	}
	p := &PDF{
		page:     page,
		fonts:    fonts,
		compress: true,
		producer: "pdftable",
		pages:    []*bytes.Buffer{{}},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

func (p *PDF) fail(op string, err error) {
	if p.err == nil {
		p.err = pdftable.NewOpError(op, err)
	}
}

func (p *PDF) content() *bytes.Buffer {
	return p.pages[len(p.pages)-1]
}

// flip converts a top-left y to PDF user space.
func (p *PDF) flip(y float64) float64 {
	return p.page.Height - y
}

func (p *PDF) DrawText(x, y float64, text string, face pdftable.Face, color pdftable.Color) {
	if p.closed || p.err != nil {
		return
	}
	enc, err := p.encode(text, face)
	if err != nil {
		p.fail("DrawText", err)
		return
	}
	show := "(" + escape(enc) + ") Tj"
	if p.spacer != nil {
		adj, err := p.spacer.Spacing(text, face.Weight)
		if err != nil {
			p.fail("DrawText", err)
			return
		}
		show = spaced(enc, adj)
	}
	fmt.Fprintf(p.content(), "BT /%s %s Tf %s rg %s %s Td %s ET\n",
		fontResource(face.Weight), num(face.Size), rgb(color), num(x), num(p.flip(y)), show)
	if face.Weight == pdftable.WeightBold {
		p.used[pdftable.WeightBold] = true
	} else {
		p.used[pdftable.WeightNormal] = true
	}
}

func (p *PDF) DrawLine(x1, y1, x2, y2, width float64, color pdftable.Color) {
	if p.closed || p.err != nil {
		return
	}
	fmt.Fprintf(p.content(), "%s w %s RG %s %s m %s %s l S\n",
		num(width), rgb(color), num(x1), num(p.flip(y1)), num(x2), num(p.flip(y2)))
}

func (p *PDF) FillRect(x, y, w, h float64, color pdftable.Color) {
	if p.closed || p.err != nil {
		return
	}
	fmt.Fprintf(p.content(), "%s rg %s %s %s %s re f\n",
		rgb(color), num(x), num(p.flip(y+h)), num(w), num(h))
}

func (p *PDF) NewPage() {
	if p.closed || p.err != nil {
		return
	}
	p.pages = append(p.pages, &bytes.Buffer{})
}

// encode maps text to Windows-1252 bytes, rejecting runes that have no code
// or no glyph in the face.
func (p *PDF) encode(text string, face pdftable.Face) ([]byte, error) {
	out := make([]byte, 0, len(text))
	for _, r := range text {
		b, ok := charmap.Windows1252.EncodeRune(r)
		if !ok {
			return nil, &pdftable.MeasurementError{Rune: r, Face: face, Err: pdftable.ErrUnencodable}
		}
		if _, ok := p.fonts.Advance(r, face.Weight); !ok {
			return nil, &pdftable.MeasurementError{Rune: r, Face: face, Err: pdftable.ErrGlyphMissing}
		}
		out = append(out, b)
	}
	return out, nil
}

// Finalize assembles the document. The canvas accepts no calls afterwards.
func (p *PDF) Finalize() ([]byte, error) {
	if p.closed {
		return nil, pdftable.NewOpError("Finalize", pdftable.ErrClosed)
	}
	p.closed = true
	if p.err != nil {
		return nil, p.err
	}

	w := &objectWriter{}
	w.buf.WriteString("%PDF-1.7\n%\xE2\xE3\xCF\xD3\n")

	// Fixed numbering: 1 catalog, 2 page tree, 3 info, then fonts, then two
	// objects (content, page) per page.
	const catalogNum, pagesNum, infoNum = 1, 2, 3
	next := 4

	var fontDict strings.Builder
	for weight, used := range p.used {
		if !used {
			continue
		}
		fontNum, err := p.writeFont(w, next, pdftable.FontWeight(weight))
		if err != nil {
			return nil, pdftable.NewOpError("Finalize", err)
		}
		fmt.Fprintf(&fontDict, "/%s %d 0 R ", fontResource(pdftable.FontWeight(weight)), fontNum)
		next = fontNum + 1
	}
	resources := "<< >>"
	if fontDict.Len() > 0 {
		resources = "<< /Font << " + fontDict.String() + ">> >>"
	}

	kids := make([]string, 0, len(p.pages))
	for _, content := range p.pages {
		contentNum, pageNum := next, next+1
		next += 2
		if err := w.stream(contentNum, "", content.Bytes(), p.compress); err != nil {
			return nil, pdftable.NewOpError("Finalize", err)
		}
		w.object(pageNum, fmt.Sprintf("<< /Type /Page /Parent %d 0 R /MediaBox [0 0 %s %s] /Resources %s /Contents %d 0 R >>",
			pagesNum, num(p.page.Width), num(p.page.Height), resources, contentNum))
		kids = append(kids, fmt.Sprintf("%d 0 R", pageNum))
	}

	w.object(pagesNum, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(kids)))
	w.object(catalogNum, fmt.Sprintf("<< /Type /Catalog /Pages %d 0 R >>", pagesNum))
	info := "<< /Producer (" + escape(latin(p.producer)) + ")"
	if p.title != "" {
		info += " /Title (" + escape(latin(p.title)) + ")"
	}
	w.object(infoNum, info+" >>")

	// The document ID is derived from the body so identical drawings give
	// identical files.
	sum := blake3.Sum256(w.buf.Bytes())
	id := fmt.Sprintf("%X", sum[:16])
	w.finish(next, fmt.Sprintf("/Root %d 0 R /Info %d 0 R /ID [<%s> <%s>]", catalogNum, infoNum, id, id))
	return w.buf.Bytes(), nil
}

// writeFont writes the font program, descriptor and font dictionary starting
// at object n and returns the number of the font dictionary.
func (p *PDF) writeFont(w *objectWriter, n int, weight pdftable.FontWeight) (int, error) {
	prog := p.fonts.Program(weight)
	fileNum, descNum, fontNum := n, n+1, n+2

	if err := w.stream(fileNum, fmt.Sprintf("/Length1 %d", len(prog.Data)), prog.Data, p.compress); err != nil {
		return 0, errors.Wrapf(err, "embedding %s", prog.Name)
	}

	flags := 32
	if weight == pdftable.WeightBold {
		flags |= 1 << 18
	}
	w.object(descNum, fmt.Sprintf("<< /Type /FontDescriptor /FontName /%s /Flags %d /FontBBox [%s %s %s %s] /ItalicAngle %s /Ascent %s /Descent %s /CapHeight %s /StemV 80 /FontFile2 %d 0 R >>",
		prog.Name, flags, num(prog.BBox[0]), num(prog.BBox[1]), num(prog.BBox[2]), num(prog.BBox[3]),
		num(prog.ItalicAngle), num(prog.Ascent), num(prog.Descent), num(prog.CapHeight), fileNum))

	widths := make([]string, 0, 224)
	for code := 32; code <= 255; code++ {
		adv, ok := p.fonts.Advance(charmap.Windows1252.DecodeByte(byte(code)), weight)
		if !ok {
			adv = 0
		}
		widths = append(widths, num(math.Round(adv)))
	}
	w.object(fontNum, fmt.Sprintf("<< /Type /Font /Subtype /TrueType /BaseFont /%s /FirstChar 32 /LastChar 255 /Widths [%s] /Encoding /WinAnsiEncoding /FontDescriptor %d 0 R >>",
		prog.Name, strings.Join(widths, " "), descNum))
	return fontNum, nil
}

// objectWriter serialises indirect objects and remembers their offsets for
// the cross-reference table.
type objectWriter struct {
	buf     bytes.Buffer
	offsets map[int]int
}

func (w *objectWriter) begin(n int) {
	if w.offsets == nil {
		w.offsets = make(map[int]int)
	}
	w.offsets[n] = w.buf.Len()
	fmt.Fprintf(&w.buf, "%d 0 obj\n", n)
}

func (w *objectWriter) object(n int, body string) {
	w.begin(n)
	w.buf.WriteString(body)
	w.buf.WriteString("\nendobj\n")
}

func (w *objectWriter) stream(n int, extra string, data []byte, compress bool) error {
	filter := ""
	if compress {
		var z bytes.Buffer
		zw, err := zlib.NewWriterLevel(&z, zlib.BestCompression)
		if err != nil {
			return errors.Wrap(err, "zlib writer")
		}
		if _, err := zw.Write(data); err != nil {
			return errors.Wrap(err, "compressing stream")
		}
		if err := zw.Close(); err != nil {
			return errors.Wrap(err, "compressing stream")
		}
		data = z.Bytes()
		filter = " /Filter /FlateDecode"
	}
	if extra != "" {
		extra = " " + extra
	}
	w.begin(n)
	fmt.Fprintf(&w.buf, "<< /Length %d%s%s >>\nstream\n", len(data), filter, extra)
	w.buf.Write(data)
	w.buf.WriteString("\nendstream\nendobj\n")
	return nil
}

// finish writes the xref table for objects 1..size-1 and the trailer.
func (w *objectWriter) finish(size int, trailer string) {
	xref := w.buf.Len()
	fmt.Fprintf(&w.buf, "xref\n0 %d\n0000000000 65535 f \n", size)
	for i := 1; i < size; i++ {
		if off, ok := w.offsets[i]; ok {
			fmt.Fprintf(&w.buf, "%010d 00000 n \n", off)
		} else {
			w.buf.WriteString("0000000000 65535 f \n")
		}
	}
	fmt.Fprintf(&w.buf, "trailer\n<< /Size %d %s >>\nstartxref\n%d\n%%%%EOF\n", size, trailer, xref)
}

func fontResource(w pdftable.FontWeight) string {
	if w == pdftable.WeightBold {
		return "F2"
	}
	return "F1"
}

func num(v float64) string {
	return strconv.FormatFloat(math.Round(v*1000)/1000, 'f', -1, 64)
}

func rgb(c pdftable.Color) string {
	return num(float64(c.R)/255) + " " + num(float64(c.G)/255) + " " + num(float64(c.B)/255)
}

// latin encodes s to Windows-1252, dropping runes without a code.
func latin(s string) []byte {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		if b, ok := charmap.Windows1252.EncodeRune(r); ok {
			out = append(out, b)
		}
	}
	return out
}

// spaced builds a text-showing operator from single-byte codes and one
// adjustment per code. Without any non-zero adjustment it is a plain Tj.
func spaced(enc []byte, adj []float64) string {
	var sb strings.Builder
	start := 0
	for i := range enc {
		if i == len(enc)-1 || i >= len(adj) {
			break
		}
		if math.Abs(adj[i]) >= 0.0005 {
			fmt.Fprintf(&sb, "(%s) %s ", escape(enc[start:i+1]), num(adj[i]))
			start = i + 1
		}
	}
	if sb.Len() == 0 {
		return "(" + escape(enc) + ") Tj"
	}
	return "[" + sb.String() + "(" + escape(enc[start:]) + ")] TJ"
}

// escape escapes a PDF literal string.
func escape(b []byte) string {
	var sb strings.Builder
	for _, c := range b {
		switch c {
		case '\\', '(', ')':
			sb.WriteByte('\\')
			sb.WriteByte(c)
		case '\r':
			sb.WriteString(`\r`)
		case '\n':
			sb.WriteString(`\n`)
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}
