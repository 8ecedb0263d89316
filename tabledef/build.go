package tabledef

import (
	"io"
	"log/slog"
	"time"

	"github.com/pkg/errors"

	"github.com/lvillar/pdftable"
	"github.com/lvillar/pdftable/font"
	"github.com/lvillar/pdftable/table"
	"github.com/lvillar/pdftable/text"
)

// Option configures Build, Layout and Render.
type Option func(*options)

type options struct {
	page        *pdftable.Page
	logger      *slog.Logger
	fonts       *font.SFNT
	shaping     bool
	hookTimeout time.Duration
	compress    bool
}

// WithPage sets the page used when a definition has no page section, and
// the base a partial page section is applied to.
func WithPage(p pdftable.Page) Option {
	return func(o *options) {
		o.page = &p
	}
}

// WithLogger sets the logger passed to the layout engine.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithFonts sets the regular and bold font programs used for measuring and
// embedding. The default is the bundled Go fonts.
func WithFonts(f *font.SFNT) Option {
	return func(o *options) {
		o.fonts = f
	}
}

// WithShaping measures line widths with a text shaper, so kerning is
// taken into account. Render then draws each line with the shaper's
// spacing, keeping drawn widths equal to measured ones.
func WithShaping(on bool) Option {
	return func(o *options) {
		o.shaping = on
	}
}

// WithHookTimeout bounds a single call of a scripted border hook.
// The default is one second.
func WithHookTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.hookTimeout = d
		}
	}
}

// WithCompression toggles Flate compression of PDF streams (default on).
func WithCompression(on bool) Option {
	return func(o *options) {
		o.compress = on
	}
}

func buildOptions(opts []Option) *options {
	o := &options{
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		hookTimeout: time.Second,
		compress:    true,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// provider returns the metrics provider matching what the PDF canvas can
// draw: the configured fonts restricted to WinAnsi. With shaping on, the
// shaper is returned too so the canvas can draw at the shaped widths.
func (o *options) provider() (font.Provider, *font.SFNT, *font.Shaper, error) {
	fonts := o.fonts
	if fonts == nil {
		gf, err := font.GoFonts()
		if err != nil {
			return nil, nil, nil, err
		}
		fonts = gf
	}
	if !o.shaping {
		return font.WinAnsi(fonts), fonts, nil, nil
	}
	sh, err := font.NewShaper(fonts)
	if err != nil {
		return nil, nil, nil, err
	}
	return font.WinAnsi(sh), fonts, sh, nil
}

// Build converts a definition into a table and the page it is laid out on.
func Build(def *Definition, opts ...Option) (*table.Table, pdftable.Page, error) {
	o := buildOptions(opts)
	page, err := buildPage(def.Page, o.page)
	if err != nil {
		return nil, pdftable.Page{}, err
	}

	t := table.New()
	if err := applyStyles(t, def); err != nil {
		return nil, pdftable.Page{}, err
	}

	if len(def.Columns) > 0 {
		cols := make([]table.Column, len(def.Columns))
		for i, c := range def.Columns {
			st, err := c.Styles.style()
			if err != nil {
				return nil, pdftable.Page{}, errors.Wrapf(err, "columns[%d].styles", i)
			}
			cols[i] = table.Column{Width: c.Width.WidthHint, MinWidth: c.MinWidth, Style: st}
		}
		t.SetColumns(cols...)
	}

	head := def.Head
	if len(head) == 0 {
		head = headerRow(def.Columns)
	}
	sections := []struct {
		name string
		rows [][]CellDef
		add  func() *table.Row
	}{
		{"head", head, t.AddHeadRow},
		{"body", def.Body, t.AddRow},
		{"foot", def.Foot, t.AddFootRow},
	}
	for _, sec := range sections {
		for i, cells := range sec.rows {
			row := sec.add()
			for j, c := range cells {
				st, err := c.Styles.style()
				if err != nil {
					return nil, pdftable.Page{}, errors.Wrapf(err, "%s[%d][%d].styles", sec.name, i, j)
				}
				row.AddCell(c.Content).SetColspan(c.ColSpan).SetStyle(st)
			}
		}
	}

	if def.Frame != nil {
		f, err := def.Frame.frame()
		if err != nil {
			return nil, pdftable.Page{}, errors.Wrap(err, "frame")
		}
		t.SetFrame(f)
	}
	if def.ShowHead != "" {
		p, err := table.ParseHeadPolicy(def.ShowHead)
		if err != nil {
			return nil, pdftable.Page{}, errors.Wrap(err, "showHead")
		}
		t.SetShowHead(p)
	}
	if def.ShowFoot != "" {
		p, err := table.ParseFootPolicy(def.ShowFoot)
		if err != nil {
			return nil, pdftable.Page{}, errors.Wrap(err, "showFoot")
		}
		t.SetShowFoot(p)
	}
	if def.Margin != nil {
		t.SetMargin(def.Margin.Edges())
	}
	if def.StartY != nil {
		t.SetStartY(*def.StartY)
	}
	if def.Hook != "" {
		h, err := NewScriptHook(def.Hook, o.hookTimeout)
		if err != nil {
			return nil, pdftable.Page{}, err
		}
		t.SetBorderHook(h.Hook)
	}
	return t, page, nil
}

func headerRow(cols []ColumnDef) [][]CellDef {
	var row []CellDef
	named := false
	for _, c := range cols {
		row = append(row, CellDef{Content: c.Header})
		named = named || c.Header != ""
	}
	if !named {
		return nil
	}
	return [][]CellDef{row}
}

func applyStyles(t *table.Table, def *Definition) error {
	st, err := def.Styles.style()
	if err != nil {
		return errors.Wrap(err, "styles")
	}
	t.SetStyle(st)
	for sec, sd := range map[table.Section]*StyleDef{
		table.SectionHead: def.HeadStyles,
		table.SectionBody: def.BodyStyles,
		table.SectionFoot: def.FootStyles,
	} {
		st, err := sd.style()
		if err != nil {
			return errors.Wrapf(err, "%sStyles", sec)
		}
		t.SetSectionStyle(sec, st)
	}
	return nil
}

func buildPage(def *PageDef, base *pdftable.Page) (pdftable.Page, error) {
	if base == nil {
		p, err := pdftable.NewPage()
		if err != nil {
			return pdftable.Page{}, err
		}
		base = &p
	}
	if def == nil {
		if err := base.Validate(); err != nil {
			return pdftable.Page{}, err
		}
		return *base, nil
	}

	margins := base.Margins
	if def.Margin != nil {
		margins = def.Margin.Edges()
	}
	opts := []pdftable.Option{pdftable.WithMargins(margins.Top, margins.Right, margins.Bottom, margins.Left)}
	switch {
	case def.Width > 0 && def.Height > 0:
		// An explicit size is taken as given.
		return newPage(append(opts,
			pdftable.WithPageSizeCustom(def.Width, def.Height),
			pdftable.WithOrientation(orientationOf(def.Width, def.Height)))...)
	case def.Size != "":
		opts = append(opts, pdftable.WithPageSize(def.Size))
	default:
		opts = append(opts, pdftable.WithPageSizeCustom(base.Width, base.Height))
	}
	orientation := def.Orientation
	if orientation == "" {
		orientation = orientationOf(base.Width, base.Height)
	}
	return newPage(append(opts, pdftable.WithOrientation(orientation))...)
}

func newPage(opts ...pdftable.Option) (pdftable.Page, error) {
	p, err := pdftable.NewPage(opts...)
	if err != nil {
		return pdftable.Page{}, errors.Wrap(err, "page")
	}
	return p, nil
}

func orientationOf(w, h float64) string {
	if w > h {
		return pdftable.OrientationLandscape
	}
	return pdftable.OrientationPortrait
}

func (s *StyleDef) style() (table.Style, error) {
	var st table.Style
	if s == nil {
		return st, nil
	}
	if s.FontSize != nil {
		if *s.FontSize <= 0 {
			return st, errors.Wrapf(pdftable.ErrInvalidParam, "fontSize %g", *s.FontSize)
		}
		st.FontSize = table.Ptr(*s.FontSize)
	}
	if s.FontStyle != "" {
		w, err := pdftable.ParseFontWeight(s.FontStyle)
		if err != nil {
			return st, err
		}
		st.FontWeight = &w
	}
	if s.HAlign != "" {
		a, err := table.ParseHAlign(s.HAlign)
		if err != nil {
			return st, err
		}
		st.HAlign = &a
	}
	if s.VAlign != "" {
		a, err := table.ParseVAlign(s.VAlign)
		if err != nil {
			return st, err
		}
		st.VAlign = &a
	}
	for _, c := range []struct {
		src string
		dst **pdftable.Color
	}{
		{s.FillColor, &st.FillColor},
		{s.TextColor, &st.TextColor},
		{s.LineColor, &st.LineColor},
	} {
		if c.src == "" {
			continue
		}
		col, err := pdftable.ParseHex(c.src)
		if err != nil {
			return st, err
		}
		*c.dst = &col
	}
	if s.CellPadding != nil {
		st.Padding = table.Ptr(s.CellPadding.Edges())
	}
	if s.LineWidth != nil {
		st.LineWidths = table.Ptr(s.LineWidth.Edges())
	}
	if s.Overflow != "" {
		ov, err := text.ParseOverflow(s.Overflow)
		if err != nil {
			return st, err
		}
		st.Overflow = &ov
	}
	st.MinCellHeight = s.MinCellHeight
	st.LineHeightFactor = s.LineHeightFactor
	return st, nil
}

func (f *FrameDef) frame() (table.Frame, error) {
	fr := table.DefaultFrame()
	if f.LeftAccent != nil {
		fr.LeftAccentWidth = *f.LeftAccent
	}
	if f.RightAccent != nil {
		fr.RightAccentWidth = *f.RightAccent
	}
	if f.TerminalRule != nil {
		fr.TerminalRuleWidth = *f.TerminalRule
	}
	if f.EdgeColor != "" {
		c, err := pdftable.ParseHex(f.EdgeColor)
		if err != nil {
			return fr, err
		}
		fr.EdgeColor = c
	}
	if f.TerminalRuleColor != "" {
		c, err := pdftable.ParseHex(f.TerminalRuleColor)
		if err != nil {
			return fr, err
		}
		fr.TerminalRuleColor = c
	}
	if f.Sections != nil {
		fr.Sections = []table.Section{}
		for _, s := range f.Sections {
			sec, err := table.ParseSection(s)
			if err != nil {
				return fr, err
			}
			fr.Sections = append(fr.Sections, sec)
		}
	}
	return fr, nil
}
