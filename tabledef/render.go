package tabledef

import (
	"io"

	"github.com/pkg/errors"

	"github.com/lvillar/pdftable/canvas"
	"github.com/lvillar/pdftable/table"
)

// Layout builds the definition and lays it out without drawing.
func Layout(def *Definition, opts ...Option) (*table.Placement, error) {
	o := buildOptions(opts)
	t, page, err := Build(def, opts...)
	if err != nil {
		return nil, err
	}
	p, _, _, err := o.provider()
	if err != nil {
		return nil, err
	}
	return table.Layout(t, page, table.WithLogger(o.logger), table.WithFonts(p))
}

// Render builds the definition, renders it onto a PDF canvas and writes
// the finished document to w. Nothing is written if layout fails.
func Render(w io.Writer, def *Definition, opts ...Option) (*table.Result, error) {
	o := buildOptions(opts)
	t, page, err := Build(def, opts...)
	if err != nil {
		return nil, err
	}
	p, fonts, sh, err := o.provider()
	if err != nil {
		return nil, err
	}

	pdfOpts := []canvas.PDFOption{canvas.WithCompression(o.compress)}
	if sh != nil {
		pdfOpts = append(pdfOpts, canvas.WithSpacing(sh))
	}
	if def.Title != "" {
		pdfOpts = append(pdfOpts, canvas.WithTitle(def.Title))
	}
	c, err := canvas.NewPDF(page, fonts, pdfOpts...)
	if err != nil {
		return nil, err
	}

	res, err := t.Render(c, page, table.WithLogger(o.logger), table.WithFonts(p))
	if err != nil {
		return nil, err
	}
	data, err := c.Finalize()
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		return nil, errors.Wrap(err, "writing pdf")
	}
	return res, nil
}
