package table

import (
	"fmt"
	"strings"

	"github.com/lvillar/pdftable"
)

// HeadPolicy decides on which pages head rows are drawn.
type HeadPolicy int

const (
	HeadEveryPage HeadPolicy = iota
	HeadFirstPage
	HeadNever
)

func (p HeadPolicy) String() string {
	switch p {
	case HeadFirstPage:
		return "firstPage"
	case HeadNever:
		return "never"
	default:
		return "everyPage"
	}
}

// ParseHeadPolicy accepts "everyPage", "firstPage" and "never".
func ParseHeadPolicy(s string) (HeadPolicy, error) {
	switch strings.ToLower(s) {
	case "", "everypage", "every", "true":
		return HeadEveryPage, nil
	case "firstpage", "first":
		return HeadFirstPage, nil
	case "never", "false":
		return HeadNever, nil
	}
	return HeadEveryPage, fmt.Errorf("%w: showHead %q", pdftable.ErrInvalidParam, s)
}

// FootPolicy decides on which pages foot rows are drawn.
type FootPolicy int

const (
	FootLastPage FootPolicy = iota
	FootEveryPage
	FootNever
)

func (p FootPolicy) String() string {
	switch p {
	case FootEveryPage:
		return "everyPage"
	case FootNever:
		return "never"
	default:
		return "lastPage"
	}
}

// ParseFootPolicy accepts "lastPage", "everyPage" and "never".
func ParseFootPolicy(s string) (FootPolicy, error) {
	switch strings.ToLower(s) {
	case "", "lastpage", "last":
		return FootLastPage, nil
	case "everypage", "every", "true":
		return FootEveryPage, nil
	case "never", "false":
		return FootNever, nil
	}
	return FootLastPage, fmt.Errorf("%w: showFoot %q", pdftable.ErrInvalidParam, s)
}

// PageRows are the rows placed on one page, top to bottom.
type PageRows struct {
	Head   []BuiltRow
	Body   []BuiltRow
	Foot   []BuiltRow
	Height float64
}

// Rows returns head, body and foot rows in drawing order.
func (p PageRows) Rows() []BuiltRow {
	rows := make([]BuiltRow, 0, len(p.Head)+len(p.Body)+len(p.Foot))
	rows = append(rows, p.Head...)
	rows = append(rows, p.Body...)
	return append(rows, p.Foot...)
}

// Paginator splits body rows into pages.
type Paginator struct {
	PageHeight      float64 // printable height of every page
	FirstPageHeight float64 // printable height of the first page; 0 means PageHeight
	ShowHead        HeadPolicy
	ShowFoot        FootPolicy
}

// Paginate splits body rows into pages of printableHeight with the default
// policies: head on every page, foot on the last.
func Paginate(head, body, foot []BuiltRow, printableHeight float64) ([]PageRows, []error) {
	return Paginator{PageHeight: printableHeight}.Paginate(head, body, foot)
}

type pageState int

const (
	stateIdle pageState = iota
	stateAccumulating
	statePageFull
)

// continuationRoom is the body height available on an empty page after the
// first.
func (p Paginator) continuationRoom(headH, reserve float64) float64 {
	room := p.PageHeight - reserve
	if p.ShowHead == HeadEveryPage {
		room -= headH
	}
	return room
}

// Paginate places body rows page by page. Every page opens with the head
// rows its HeadPolicy allows and keeps room for the foot rows unless the foot
// is never drawn. A body row goes on the current page when it fits within
// that room; otherwise the page is closed and the row retried on the next.
//
// A row that only misses the room left on the first page moves to the next
// page. A row too tall for an empty page is placed alone and reported with a
// DegenerateRow *pdftable.LayoutError in the returned warnings. The last page
// always ends with the foot rows, even if they overflow it. An empty body
// still yields one page.
func (p Paginator) Paginate(head, body, foot []BuiltRow) ([]PageRows, []error) {
	headH, footH := totalHeight(head), totalHeight(foot)
	reserve := footH
	if p.ShowFoot == FootNever {
		reserve = 0
	}

	var (
		pages    []PageRows
		warnings []error
		cur      PageRows
		used     float64
		limit    float64
		next     int
		state    = stateIdle
	)
	for {
		switch state {
		case stateIdle:
			cur, used = PageRows{}, 0
			limit = p.PageHeight
			if len(pages) == 0 && p.FirstPageHeight > 0 {
				limit = p.FirstPageHeight
			}
			if p.ShowHead == HeadEveryPage || (p.ShowHead == HeadFirstPage && len(pages) == 0) {
				cur.Head = head
				used = headH
			}
			state = stateAccumulating

		case stateAccumulating:
			if next == len(body) {
				if p.ShowFoot != FootNever {
					cur.Foot = foot
					used += footH
				}
				cur.Height = used
				return append(pages, cur), warnings
			}
			row := body[next]
			if used+row.Height+reserve <= limit+epsilon {
				cur.Body = append(cur.Body, row)
				used += row.Height
				next++
				continue
			}
			if len(cur.Body) == 0 {
				// A shortened first page, or one carrying a head later pages
				// drop, gives way to a fresh page the row fits on.
				room := limit - used - reserve
				fresh := p.continuationRoom(headH, reserve)
				if row.Height <= fresh+epsilon && room < fresh-epsilon {
					state = statePageFull
					continue
				}
				warnings = append(warnings, &pdftable.LayoutError{
					Kind:      pdftable.DegenerateRow,
					Need:      row.Height,
					Available: max(room, fresh),
					Row:       row.Index,
				})
				cur.Body = append(cur.Body, row)
				used += row.Height
				next++
				continue
			}
			state = statePageFull

		case statePageFull:
			if p.ShowFoot == FootEveryPage {
				cur.Foot = foot
				used += footH
			}
			cur.Height = used
			pages = append(pages, cur)
			state = stateIdle
		}
	}
}
