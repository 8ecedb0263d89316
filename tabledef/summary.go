package tabledef

import "github.com/lvillar/pdftable/table"

// Summary is a compact description of a placement, for reports.
type Summary struct {
	Pages    []PageSummary `json:"pages"`
	Widths   []float64     `json:"widths"`
	FinalY   float64       `json:"finalY"`
	Warnings []string      `json:"warnings,omitempty"`
}

// PageSummary describes one page. BodyRows holds body row indexes.
type PageSummary struct {
	Page     int     `json:"page"` // 1-based
	Top      float64 `json:"top"`
	Bottom   float64 `json:"bottom"`
	HeadRows int     `json:"headRows"`
	BodyRows []int   `json:"bodyRows"`
	FootRows int     `json:"footRows"`
}

// Summarize reduces a placement to its page breaks and widths.
func Summarize(p *table.Placement) Summary {
	s := Summary{Widths: p.Widths, FinalY: p.FinalY}
	for _, w := range p.Warnings {
		s.Warnings = append(s.Warnings, w.Error())
	}
	for n, page := range p.Pages {
		ps := PageSummary{Page: n + 1, Top: page.Top, Bottom: page.Bottom, BodyRows: []int{}}
		for _, c := range page.Cells {
			// Every row has a cell starting at column 0.
			if c.Column != 0 {
				continue
			}
			switch c.Position.Section {
			case table.SectionHead:
				ps.HeadRows++
			case table.SectionBody:
				ps.BodyRows = append(ps.BodyRows, c.Position.Row)
			case table.SectionFoot:
				ps.FootRows++
			}
		}
		s.Pages = append(s.Pages, ps)
	}
	return s
}
