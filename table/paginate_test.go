package table_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lvillar/pdftable"
	"github.com/lvillar/pdftable/table"
)

func rows(sec table.Section, heights ...float64) []table.BuiltRow {
	out := make([]table.BuiltRow, len(heights))
	for i, h := range heights {
		out[i] = table.BuiltRow{Section: sec, Index: i, Height: h}
	}
	return out
}

func indexes(rs []table.BuiltRow) []int {
	out := make([]int, len(rs))
	for i, r := range rs {
		out[i] = r.Index
	}
	return out
}

func TestPaginateSplit(t *testing.T) {
	head := rows(table.SectionHead, 10)
	foot := rows(table.SectionFoot, 10)
	body := rows(table.SectionBody, 20, 20, 20, 20, 20)

	pages, warnings := table.Paginate(head, body, foot, 100)
	assert.Empty(t, warnings)
	require.Len(t, pages, 2)

	// 10 + 4*20 + 10 reserved = 100 fits exactly; the fifth row does not.
	assert.Len(t, pages[0].Head, 1)
	assert.Equal(t, []int{0, 1, 2, 3}, indexes(pages[0].Body))
	assert.Empty(t, pages[0].Foot)
	assert.Equal(t, 90.0, pages[0].Height)

	assert.Len(t, pages[1].Head, 1)
	assert.Equal(t, []int{4}, indexes(pages[1].Body))
	assert.Len(t, pages[1].Foot, 1)
	assert.Equal(t, 40.0, pages[1].Height)
}

func TestPaginateSinglePage(t *testing.T) {
	head := rows(table.SectionHead, 10)
	foot := rows(table.SectionFoot, 10)
	body := rows(table.SectionBody, 20, 20, 20)

	pages, warnings := table.Paginate(head, body, foot, 100)
	assert.Empty(t, warnings)
	require.Len(t, pages, 1)

	all := pages[0].Rows()
	require.Len(t, all, 5)
	assert.Equal(t, table.SectionHead, all[0].Section)
	assert.Equal(t, []int{0, 1, 2}, indexes(all[1:4]))
	assert.Equal(t, table.SectionFoot, all[4].Section)
}

func TestPaginateEmptyBody(t *testing.T) {
	pages, warnings := table.Paginate(rows(table.SectionHead, 10), nil, rows(table.SectionFoot, 10), 100)
	assert.Empty(t, warnings)
	require.Len(t, pages, 1)
	assert.Len(t, pages[0].Head, 1)
	assert.Empty(t, pages[0].Body)
	assert.Len(t, pages[0].Foot, 1)
}

func TestPaginateDegenerateRow(t *testing.T) {
	head := rows(table.SectionHead, 10)
	foot := rows(table.SectionFoot, 10)
	body := rows(table.SectionBody, 20, 150, 20)

	pages, warnings := table.Paginate(head, body, foot, 100)
	require.Len(t, pages, 3)
	assert.Equal(t, []int{0}, indexes(pages[0].Body))
	assert.Equal(t, []int{1}, indexes(pages[1].Body))
	assert.Equal(t, []int{2}, indexes(pages[2].Body))
	assert.Len(t, pages[2].Foot, 1)

	require.Len(t, warnings, 1)
	assert.True(t, pdftable.IsLayoutError(warnings[0], pdftable.DegenerateRow))
	var le *pdftable.LayoutError
	require.ErrorAs(t, warnings[0], &le)
	assert.Equal(t, 1, le.Row)
	assert.Equal(t, 150.0, le.Need)
	assert.Equal(t, 80.0, le.Available)
}

func TestPaginateDegenerateLastRowKeepsFoot(t *testing.T) {
	pages, warnings := table.Paginate(nil, rows(table.SectionBody, 150), rows(table.SectionFoot, 10), 100)
	require.Len(t, pages, 1)
	assert.Len(t, warnings, 1)
	assert.Len(t, pages[0].Foot, 1)
	assert.Equal(t, 160.0, pages[0].Height)
}

func TestPaginateShortFirstPage(t *testing.T) {
	head := rows(table.SectionHead, 10)
	foot := rows(table.SectionFoot, 10)

	t.Run("row moves to the next page", func(t *testing.T) {
		pages, warnings := table.Paginator{PageHeight: 100, FirstPageHeight: 25}.Paginate(head, rows(table.SectionBody, 20, 20), foot)
		assert.Empty(t, warnings)
		require.Len(t, pages, 2)

		assert.Len(t, pages[0].Head, 1)
		assert.Empty(t, pages[0].Body)
		assert.LessOrEqual(t, pages[0].Height, 25.0)

		assert.Equal(t, []int{0, 1}, indexes(pages[1].Body))
		assert.Len(t, pages[1].Foot, 1)
		assert.Equal(t, 60.0, pages[1].Height)
	})

	t.Run("row too tall for any page stays", func(t *testing.T) {
		pages, warnings := table.Paginator{PageHeight: 100, FirstPageHeight: 25}.Paginate(head, rows(table.SectionBody, 95), foot)
		require.Len(t, pages, 1)
		assert.Equal(t, []int{0}, indexes(pages[0].Body))

		require.Len(t, warnings, 1)
		var le *pdftable.LayoutError
		require.ErrorAs(t, warnings[0], &le)
		assert.Equal(t, pdftable.DegenerateRow, le.Kind)
		assert.Equal(t, 80.0, le.Available)
	})

	t.Run("head on first page only", func(t *testing.T) {
		// 85 misses the 80 left under the head but fits a headless page.
		pages, warnings := table.Paginator{PageHeight: 100, ShowHead: table.HeadFirstPage}.Paginate(head, rows(table.SectionBody, 85, 20), foot)
		assert.Empty(t, warnings)
		require.Len(t, pages, 3)
		assert.Empty(t, pages[0].Body)
		assert.Equal(t, []int{0}, indexes(pages[1].Body))
		assert.Empty(t, pages[1].Head)
		assert.Equal(t, []int{1}, indexes(pages[2].Body))
		for _, pg := range pages {
			assert.LessOrEqual(t, pg.Height, 100.0)
		}
	})
}

func TestPaginatorPolicies(t *testing.T) {
	head := rows(table.SectionHead, 10)
	foot := rows(table.SectionFoot, 10)
	body := rows(table.SectionBody, 20, 20, 20, 20, 20)

	t.Run("head on first page only", func(t *testing.T) {
		pages, _ := table.Paginator{PageHeight: 100, ShowHead: table.HeadFirstPage}.Paginate(head, body, foot)
		require.Len(t, pages, 2)
		assert.Len(t, pages[0].Head, 1)
		assert.Empty(t, pages[1].Head)
	})

	t.Run("head never", func(t *testing.T) {
		pages, _ := table.Paginator{PageHeight: 100, ShowHead: table.HeadNever}.Paginate(head, body, foot)
		require.Len(t, pages, 2)
		assert.Empty(t, pages[0].Head)
		// Without the head, 4*20 + 10 reserved leaves no room for a fifth row.
		assert.Len(t, pages[0].Body, 4)
	})

	t.Run("foot on every page", func(t *testing.T) {
		pages, _ := table.Paginator{PageHeight: 100, ShowFoot: table.FootEveryPage}.Paginate(head, body, foot)
		require.Len(t, pages, 2)
		assert.Len(t, pages[0].Foot, 1)
		assert.Len(t, pages[1].Foot, 1)
		assert.Equal(t, 100.0, pages[0].Height)
	})

	t.Run("foot never frees its reserve", func(t *testing.T) {
		short := rows(table.SectionBody, 18, 18, 18, 18, 18)
		pages, _ := table.Paginator{PageHeight: 100, ShowFoot: table.FootNever}.Paginate(head, short, foot)
		require.Len(t, pages, 1)
		assert.Len(t, pages[0].Body, 5)
		assert.Empty(t, pages[0].Foot)
	})

	t.Run("shorter first page", func(t *testing.T) {
		pages, _ := table.Paginator{PageHeight: 100, FirstPageHeight: 60}.Paginate(head, body, foot)
		require.Len(t, pages, 2)
		assert.Equal(t, []int{0, 1}, indexes(pages[0].Body))
		assert.Equal(t, []int{2, 3, 4}, indexes(pages[1].Body))
	})
}
