package table_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lvillar/pdftable"
	"github.com/lvillar/pdftable/font"
	"github.com/lvillar/pdftable/table"
	"github.com/lvillar/pdftable/text"
)

func TestResolveDefaults(t *testing.T) {
	r := table.Resolve()
	assert.Equal(t, 9.0, r.FontSize)
	assert.Equal(t, pdftable.WeightNormal, r.FontWeight)
	assert.Equal(t, table.AlignLeft, r.HAlign)
	assert.Equal(t, table.AlignMiddle, r.VAlign)
	assert.Equal(t, pdftable.White, r.FillColor)
	assert.Equal(t, pdftable.Black, r.TextColor)
	assert.Equal(t, pdftable.Uniform(5), r.Padding)
	assert.Equal(t, pdftable.Edges{}, r.LineWidths)
	assert.Equal(t, text.Wrap, r.Overflow)
	assert.Equal(t, 1.15, r.LineHeightFactor)
}

func TestResolveLaterLayerWins(t *testing.T) {
	tableLayer := table.Style{FontSize: table.Ptr(10.0), Padding: table.Ptr(pdftable.Uniform(8))}
	section := table.Style{FontWeight: table.Ptr(pdftable.WeightBold), FontSize: table.Ptr(11.0)}
	column := table.Style{HAlign: table.Ptr(table.AlignRight)}
	cell := table.Style{Padding: table.Ptr(pdftable.Edges{Left: 2})}

	r := table.Resolve(tableLayer, section, column, cell)
	assert.Equal(t, 11.0, r.FontSize)
	assert.Equal(t, pdftable.WeightBold, r.FontWeight)
	assert.Equal(t, table.AlignRight, r.HAlign)
	// Padding is replaced as a whole, not per edge.
	assert.Equal(t, pdftable.Edges{Left: 2}, r.Padding)
}

func TestTableResolveStyle(t *testing.T) {
	tb := table.New().
		SetStyle(table.Style{TextColor: table.Ptr(pdftable.MustHex("#202020"))}).
		SetSectionStyle(table.SectionHead, table.Style{FontWeight: table.Ptr(pdftable.WeightBold)}).
		SetColumns(
			table.Column{},
			table.Column{Style: table.Style{HAlign: table.Ptr(table.AlignRight)}},
		)
	head := tb.AddHeadRow()
	head.AddCell("Name")
	qty := head.AddCell("Qty").SetFillColor(pdftable.MustHex("#ECECEC"))

	r := tb.ResolveStyle(qty, 1, table.SectionHead)
	assert.Equal(t, pdftable.WeightBold, r.FontWeight)
	assert.Equal(t, table.AlignRight, r.HAlign)
	assert.Equal(t, pdftable.MustHex("#ECECEC"), r.FillColor)
	assert.Equal(t, pdftable.MustHex("#202020"), r.TextColor)

	body := tb.ResolveStyle(nil, 0, table.SectionBody)
	assert.Equal(t, pdftable.WeightNormal, body.FontWeight)
	assert.Equal(t, table.AlignLeft, body.HAlign)
}

func TestColumnsInferredFromRows(t *testing.T) {
	tb := table.New()
	tb.AddRow().AddCells("a", "b")
	tb.AddFootRow().AddCell("total").SetColspan(3)
	assert.Len(t, tb.Columns(), 3)

	tb.SetColumnWidths(50, 0)
	cols := tb.Columns()
	require.Len(t, cols, 2)
	assert.Equal(t, table.Fixed(50), cols[0].Width)
	assert.Equal(t, table.Auto(), cols[1].Width)
}

func TestParsers(t *testing.T) {
	h, err := table.ParseHAlign("R")
	require.NoError(t, err)
	assert.Equal(t, table.AlignRight, h)
	_, err = table.ParseHAlign("justify")
	assert.ErrorIs(t, err, pdftable.ErrInvalidParam)

	v, err := table.ParseVAlign("top")
	require.NoError(t, err)
	assert.Equal(t, table.AlignTop, v)

	s, err := table.ParseSection("tfoot")
	require.NoError(t, err)
	assert.Equal(t, table.SectionFoot, s)

	w, err := table.ParseWidthHint("120.5")
	require.NoError(t, err)
	assert.Equal(t, table.Fixed(120.5), w)
	w, err = table.ParseWidthHint("content")
	require.NoError(t, err)
	assert.Equal(t, table.Content(), w)
	_, err = table.ParseWidthHint("-3")
	assert.ErrorIs(t, err, pdftable.ErrInvalidParam)

	hp, err := table.ParseHeadPolicy("firstPage")
	require.NoError(t, err)
	assert.Equal(t, table.HeadFirstPage, hp)
	fp, err := table.ParseFootPolicy("everyPage")
	require.NoError(t, err)
	assert.Equal(t, table.FootEveryPage, fp)
}

func autos(n int) []table.Column {
	return make([]table.Column, n)
}

func sum(ws []float64) float64 {
	s := 0.0
	for _, w := range ws {
		s += w
	}
	return s
}

func TestDistributeWidths(t *testing.T) {
	tests := []struct {
		name      string
		cols      []table.Column
		content   []float64
		available float64
		want      []float64
	}{
		{"even split", autos(2), nil, 100, []float64{50, 50}},
		{"leftover to the left", autos(3), nil, 100, []float64{34, 33, 33}},
		{"two leftovers", autos(4), nil, 10, []float64{3, 3, 2, 2}},
		{"fraction to the last", []table.Column{{Width: table.Fixed(50)}, {}, {}}, nil, 100.5, []float64{50, 25, 25.5}},
		{"auto minimum pinned", []table.Column{{}, {MinWidth: 60}, {}}, nil, 100, []float64{20, 60, 20}},
		{"content raised to minimum", []table.Column{{Width: table.Content(), MinWidth: 25}, {}}, []float64{10, 0}, 100, []float64{25, 75}},
		{"content measured", []table.Column{{Width: table.Content()}, {}}, []float64{42, 0}, 100, []float64{42, 58}},
		{"fixed only", []table.Column{{Width: table.Fixed(30)}, {Width: table.Fixed(40)}}, nil, 100, []float64{30, 40}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := table.DistributeWidths(tc.cols, tc.content, tc.available)
			require.NoError(t, err)
			assert.InDeltaSlice(t, tc.want, got, 1e-9)
		})
	}
}

func TestDistributeWidthsSumExactly(t *testing.T) {
	for n := 1; n <= 7; n++ {
		for available := 0.0; available < 600; available += 0.37 {
			cols := append([]table.Column{{Width: table.Fixed(12.5)}}, autos(n)...)
			got, err := table.DistributeWidths(cols, nil, available+12.5)
			require.NoError(t, err)
			assert.InDelta(t, available+12.5, sum(got), 1e-9, "n=%d available=%g", n, available)

			share := math.Floor(available / float64(n))
			for _, w := range got[1:] {
				assert.GreaterOrEqual(t, w, share-1e-6)
				assert.LessOrEqual(t, w, share+1+1e-6)
			}
		}
	}
}

func TestDistributeWidthsFloorOrCeil(t *testing.T) {
	for n := 1; n <= 9; n++ {
		for available := 0; available <= 300; available++ {
			got, err := table.DistributeWidths(autos(n), nil, float64(available))
			require.NoError(t, err)
			assert.Equal(t, float64(available), sum(got))

			lo := math.Floor(float64(available) / float64(n))
			for _, w := range got {
				assert.True(t, w == lo || w == lo+1, "n=%d available=%d width=%g", n, available, w)
			}
		}
	}
}

func TestDistributeWidthsOverflow(t *testing.T) {
	_, err := table.DistributeWidths([]table.Column{{Width: table.Fixed(80)}, {Width: table.Fixed(30)}, {}}, nil, 100)
	require.Error(t, err)
	assert.True(t, pdftable.IsLayoutError(err, pdftable.ColumnOverflow))

	var le *pdftable.LayoutError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, 110.0, le.Need)
	assert.Equal(t, 100.0, le.Available)

	_, err = table.DistributeWidths([]table.Column{{MinWidth: 60}, {MinWidth: 60}}, nil, 100)
	assert.True(t, pdftable.IsLayoutError(err, pdftable.ColumnOverflow))
}

func TestDistributeWidthsFractionalMinimums(t *testing.T) {
	tests := []struct {
		name      string
		min       float64
		available float64
		want      []float64
	}{
		// The even share 10.53 clears 10.5; only the whole-point split does not.
		{"just above the minimum", 10.5, 31.6, []float64{10.6, 10.5, 10.5}},
		{"minimum above the floored share", 33.2, 100, []float64{33.6, 33.2, 33.2}},
		{"minimum below every split width", 9.5, 31.6, []float64{11, 10, 10.6}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cols := []table.Column{{MinWidth: tc.min}, {MinWidth: tc.min}, {MinWidth: tc.min}}
			got, err := table.DistributeWidths(cols, nil, tc.available)
			require.NoError(t, err)
			assert.InDeltaSlice(t, tc.want, got, 1e-9)
			assert.InDelta(t, tc.available, sum(got), 1e-9)
			for _, w := range got {
				assert.GreaterOrEqual(t, w, tc.min-1e-9)
			}
		})
	}
}

func TestSizerContentColumn(t *testing.T) {
	tb := table.New().SetColumns(table.Column{Width: table.Content()}, table.Column{})
	tb.AddHeadRow().AddCells("ab", "Name")
	tb.AddRow().AddCells("abcd", "x")
	tb.AddRow().AddCells("a\nabc", "y")
	// Spanning cells are not measured.
	tb.AddFootRow().AddCell("a very long total line").SetColspan(2)

	s := &table.Sizer{Measurer: text.NewMeasurer(font.Fixed{})}
	widths, err := s.Size(tb, 260)
	require.NoError(t, err)
	// 4 runes at 4.5pt plus 5pt padding each side.
	assert.InDeltaSlice(t, []float64{28, 232}, widths, 1e-9)
}

func TestSizerNoColumns(t *testing.T) {
	s := &table.Sizer{Measurer: text.NewMeasurer(font.Fixed{})}
	_, err := s.Size(table.New(), 100)
	assert.ErrorIs(t, err, pdftable.ErrInvalidTable)
}

func TestRowBuilder(t *testing.T) {
	tb := table.New()
	rb := &table.RowBuilder{Table: tb, Measurer: text.NewMeasurer(font.Fixed{})}
	widths := []float64{40, 100, 100}

	row := &table.Row{}
	row.AddCell("aaa bbb ccc")
	row.AddCell("total").SetColspan(2)
	built, err := rb.Build(row, table.SectionBody, 0, widths)
	require.NoError(t, err)
	require.Len(t, built.Cells, 2)

	first := built.Cells[0]
	assert.Equal(t, []string{"aaa", "bbb", "ccc"}, first.Lines)
	assert.InDelta(t, 3*9*1.15+10, first.Height, 1e-9)

	spanned := built.Cells[1]
	assert.Equal(t, 1, spanned.Column)
	assert.Equal(t, 2, spanned.ColSpan)
	assert.Equal(t, 200.0, spanned.Width)
	assert.Equal(t, []float64{22.5}, spanned.LineWidths)
	assert.Equal(t, first.Height, built.Height)
}

func TestRowBuilderPadsShortRows(t *testing.T) {
	tb := table.New().SetSectionStyle(table.SectionBody, table.Style{MinCellHeight: table.Ptr(28.0)})
	rb := &table.RowBuilder{Table: tb, Measurer: text.NewMeasurer(font.Fixed{})}

	row := &table.Row{}
	row.AddCell("only")
	built, err := rb.Build(row, table.SectionBody, 3, []float64{50, 50, 50})
	require.NoError(t, err)
	require.Len(t, built.Cells, 3)
	assert.Equal(t, 2, built.Cells[2].Column)
	assert.Equal(t, []string{""}, built.Cells[2].Lines)
	assert.Equal(t, 28.0, built.Height)
	assert.Equal(t, 3, built.Index)
}

func TestRowBuilderRejectsWideRows(t *testing.T) {
	tb := table.New()
	rb := &table.RowBuilder{Table: tb, Measurer: text.NewMeasurer(font.Fixed{})}

	row := &table.Row{}
	row.AddCells("a", "b")
	row.AddCell("c").SetColspan(2)
	_, err := rb.Build(row, table.SectionFoot, 0, []float64{50, 50, 50})
	assert.ErrorIs(t, err, pdftable.ErrInvalidTable)
}

func TestRowBuilderMeasurementError(t *testing.T) {
	tb := table.New()
	rb := &table.RowBuilder{Table: tb, Measurer: text.NewMeasurer(font.WinAnsi(font.Fixed{}))}

	row := &table.Row{}
	row.AddCell("Ωmega")
	_, err := rb.Build(row, table.SectionBody, 0, []float64{100})
	var me *pdftable.MeasurementError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, 'Ω', me.Rune)
}
