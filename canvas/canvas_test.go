package canvas_test

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/klauspost/compress/zlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lvillar/pdftable"
	"github.com/lvillar/pdftable/canvas"
)

var (
	a4     = pdftable.Page{Width: 595.28, Height: 841.89, Margins: pdftable.Uniform(40)}
	face9  = pdftable.Face{Size: 9}
	bold12 = pdftable.Face{Weight: pdftable.WeightBold, Size: 12}
)

func TestRecorder(t *testing.T) {
	r := canvas.NewRecorder()
	r.FillRect(10, 20, 30, 40, pdftable.White)
	r.DrawLine(0, 0, 10, 0, 0.5, pdftable.Black)
	r.DrawText(12, 30, "Name", face9, pdftable.Black)
	r.NewPage()
	r.DrawText(12, 30, "Item 1", face9, pdftable.Black)

	assert.Equal(t, 2, r.Pages())
	assert.Equal(t, []string{"Name"}, r.Texts(0))
	assert.Equal(t, []string{"Item 1"}, r.Texts(1))
	require.Len(t, r.Filter(canvas.OpLine), 1)
	assert.Equal(t, 0.5, r.Filter(canvas.OpLine)[0].Width)

	out, err := r.Finalize()
	require.NoError(t, err)
	assert.Contains(t, string(out), `0 text 12.00 30.00 normal 9 #000000 "Name"`)
	assert.Contains(t, string(out), "0 newpage")

	r.DrawText(0, 0, "late", face9, pdftable.Black)
	assert.Len(t, r.Filter(canvas.OpText), 2)
	_, err = r.Finalize()
	assert.ErrorIs(t, err, pdftable.ErrClosed)
}

// readBack checks the cross-reference table of a PDF written by canvas.PDF
// and returns the decoded page content streams.
func readBack(t *testing.T, data []byte) []string {
	t.Helper()
	require.True(t, bytes.HasPrefix(data, []byte("%PDF-1.7\n")))
	require.True(t, bytes.HasSuffix(data, []byte("%%EOF\n")))

	m := regexp.MustCompile(`startxref\n(\d+)\n`).FindSubmatch(data)
	require.NotNil(t, m, "startxref")
	xref, err := strconv.Atoi(string(m[1]))
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(data[xref:], []byte("xref\n")))

	entries := regexp.MustCompile(`(\d{10}) 00000 n `).FindAllSubmatch(data[xref:], -1)
	require.NotEmpty(t, entries)
	for i, e := range entries {
		off, err := strconv.Atoi(string(e[1]))
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(data[off:], []byte(fmt.Sprintf("%d 0 obj", i+1))), "object %d offset", i+1)
	}

	var pages []string
	contents := regexp.MustCompile(`/Contents (\d+) 0 R`).FindAllSubmatch(data, -1)
	for _, c := range contents {
		n := string(c[1])
		start := bytes.Index(data, []byte("\n"+n+" 0 obj\n"))
		require.GreaterOrEqual(t, start, 0)
		obj := data[start:]
		s := bytes.Index(obj, []byte("stream\n")) + len("stream\n")
		e := bytes.Index(obj, []byte("\nendstream"))
		zr, err := zlib.NewReader(bytes.NewReader(obj[s:e]))
		require.NoError(t, err)
		raw, err := io.ReadAll(zr)
		require.NoError(t, err)
		pages = append(pages, string(raw))
	}
	return pages
}

func TestPDFPages(t *testing.T) {
	p, err := canvas.NewPDF(a4, nil, canvas.WithTitle("Delivery note"))
	require.NoError(t, err)

	p.FillRect(40, 40, 100, 28, pdftable.MustHex("#ECECEC"))
	p.DrawLine(40, 40, 40, 68, 0.5, pdftable.MustHex("#DBDBDB"))
	p.DrawText(48, 57, "Name (net)", bold12, pdftable.MustHex("#202020"))
	p.NewPage()
	p.DrawText(48, 57, "Prix 2,30 €", face9, pdftable.Black)

	data, err := p.Finalize()
	require.NoError(t, err)

	assert.Contains(t, string(data), "/Count 2")
	assert.Contains(t, string(data), "/Subtype /TrueType")
	assert.Contains(t, string(data), "/Encoding /WinAnsiEncoding")
	assert.Contains(t, string(data), "/Title (Delivery note)")
	assert.Contains(t, string(data), "/ID [<")
	assert.Equal(t, 2, strings.Count(string(data), "/FontFile2"))

	pages := readBack(t, data)
	require.Len(t, pages, 2)
	assert.Contains(t, pages[0], `(Name \(net\)) Tj`)
	assert.Contains(t, pages[0], "/F2 12 Tf")
	assert.Contains(t, pages[0], "re f")
	// y is flipped: 841.89 - 57
	assert.Contains(t, pages[0], "48 784.89 Td")
	assert.Contains(t, pages[1], "/F1 9 Tf")
	assert.Contains(t, pages[1], "\x80")
}

func TestPDFDeterministic(t *testing.T) {
	render := func() []byte {
		p, err := canvas.NewPDF(a4, nil)
		require.NoError(t, err)
		p.DrawText(40, 60, "Item 1", face9, pdftable.Black)
		data, err := p.Finalize()
		require.NoError(t, err)
		return data
	}
	assert.Equal(t, render(), render())
}

func TestPDFUnencodableText(t *testing.T) {
	p, err := canvas.NewPDF(a4, nil)
	require.NoError(t, err)

	p.DrawText(40, 60, "Ωmega", face9, pdftable.Black)
	p.DrawText(40, 80, "fine", face9, pdftable.Black)

	_, err = p.Finalize()
	require.Error(t, err)
	assert.ErrorIs(t, err, pdftable.ErrUnencodable)

	var op *pdftable.OpError
	require.ErrorAs(t, err, &op)
	assert.Equal(t, "DrawText", op.Op)

	_, err = p.Finalize()
	assert.ErrorIs(t, err, pdftable.ErrClosed)
}

func TestPDFUncompressed(t *testing.T) {
	p, err := canvas.NewPDF(a4, nil, canvas.WithCompression(false))
	require.NoError(t, err)
	p.DrawLine(0, 10, 100, 10, 1, pdftable.Black)

	data, err := p.Finalize()
	require.NoError(t, err)
	assert.NotContains(t, string(data), "/FlateDecode")
	assert.Contains(t, string(data), "1 w 0 0 0 RG 0 831.89 m 100 831.89 l S")
	assert.NotContains(t, string(data), "/Font <<")
}

func TestNewPDFRejectsEmptyPage(t *testing.T) {
	_, err := canvas.NewPDF(pdftable.Page{}, nil)
	assert.ErrorIs(t, err, pdftable.ErrInvalidPage)
}

type fixedSpacing []float64

func (s fixedSpacing) Spacing(string, pdftable.FontWeight) ([]float64, error) { return s, nil }

func TestPDFSpacing(t *testing.T) {
	draw := func(sp canvas.Spacer, text string) string {
		p, err := canvas.NewPDF(a4, nil, canvas.WithCompression(false), canvas.WithSpacing(sp))
		require.NoError(t, err)
		p.DrawText(10, 20, text, face9, pdftable.Black)
		data, err := p.Finalize()
		require.NoError(t, err)
		return string(data)
	}

	assert.Contains(t, draw(fixedSpacing{80, 0, -12.5, 40}, "AVA)"), "[(A) 80 (VA) -12.5 (\\))] TJ")
	// The adjustment after the last rune moves nothing and is dropped.
	assert.Contains(t, draw(fixedSpacing{0, 0, 0, 0, 30}, "Total"), "(Total) Tj")
}
