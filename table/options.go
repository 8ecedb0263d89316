package table

import (
	"io"
	"log/slog"

	"github.com/lvillar/pdftable/font"
)

// Option configures Layout and Render.
type Option func(*options)

type options struct {
	logger *slog.Logger
	fonts  font.Provider
}

// WithLogger sets the logger receiving column widths and page breaks at
// Debug and degenerate rows at Warn. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithFonts sets the font-metrics provider text is measured with. The
// default is the bundled Go fonts restricted to WinAnsi, which matches what
// the PDF canvas can draw.
func WithFonts(p font.Provider) Option {
	return func(o *options) {
		o.fonts = p
	}
}

func buildOptions(opts []Option) (*options, error) {
	o := &options{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(o)
	}
	if o.fonts == nil {
		gf, err := font.GoFonts()
		if err != nil {
			return nil, err
		}
		o.fonts = font.WinAnsi(gf)
	}
	return o, nil
}
