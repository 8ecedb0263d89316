package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	ltable "github.com/charmbracelet/lipgloss/table"

	"github.com/lvillar/pdftable/tabledef"
)

var (
	labelStyle   = lipgloss.NewStyle().Bold(true)
	headerStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	numberStyle  = cellStyle.Align(lipgloss.Right)
	borderStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

// summaryReport renders a layout summary as a page table followed by the
// column widths, the final y and any warnings.
func summaryReport(s tabledef.Summary) string {
	t := ltable.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers("Page", "Top", "Bottom", "Head", "Body rows", "Foot").
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == ltable.HeaderRow:
				return headerStyle
			case col == 4:
				return cellStyle
			default:
				return numberStyle
			}
		})
	for _, p := range s.Pages {
		t.Row(
			strconv.Itoa(p.Page),
			points(p.Top),
			points(p.Bottom),
			strconv.Itoa(p.HeadRows),
			rowRange(p.BodyRows),
			strconv.Itoa(p.FootRows),
		)
	}

	widths := make([]string, len(s.Widths))
	for i, w := range s.Widths {
		widths[i] = points(w)
	}

	var b strings.Builder
	b.WriteString(t.String())
	fmt.Fprintf(&b, "\n%s %s", labelStyle.Render("Widths:"), strings.Join(widths, ", "))
	fmt.Fprintf(&b, "\n%s %s", labelStyle.Render("Final y:"), points(s.FinalY))
	for _, w := range s.Warnings {
		b.WriteString("\n" + warningStyle.Render("warning: "+w))
	}
	return b.String()
}

func measureReport(lines []string, widths []float64) string {
	t := ltable.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers("#", "Line", "Width").
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == ltable.HeaderRow:
				return headerStyle
			case col == 1:
				return cellStyle
			default:
				return numberStyle
			}
		})
	for i, l := range lines {
		t.Row(strconv.Itoa(i+1), l, points(widths[i]))
	}
	return t.String()
}

func points(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// rowRange prints consecutive row indexes as "first-last".
func rowRange(rows []int) string {
	if len(rows) == 0 {
		return "none"
	}
	contiguous := true
	for i := 1; i < len(rows); i++ {
		if rows[i] != rows[i-1]+1 {
			contiguous = false
			break
		}
	}
	if contiguous {
		if len(rows) == 1 {
			return strconv.Itoa(rows[0])
		}
		return fmt.Sprintf("%d-%d", rows[0], rows[len(rows)-1])
	}
	parts := make([]string, len(rows))
	for i, r := range rows {
		parts[i] = strconv.Itoa(r)
	}
	return strings.Join(parts, ",")
}
