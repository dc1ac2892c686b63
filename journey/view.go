package journey

import (
	"math"
	"sort"
	"strings"
	"time"

	"journeylens/api/models"
)

const (
	DefaultPageSize = 20
	PreviewLength   = 5
)

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ParseSortOrder accepts "asc" or "desc" in any case; anything else yields
// the initial descending order.
func ParseSortOrder(s string) SortOrder {
	if strings.EqualFold(strings.TrimSpace(s), string(SortAsc)) {
		return SortAsc
	}
	return SortDesc
}

func (o SortOrder) Toggle() SortOrder {
	if o == SortAsc {
		return SortDesc
	}
	return SortAsc
}

// Query selects a window over an aggregate set.
type Query struct {
	SearchTerm string
	Sort       SortOrder
	Page       int
	PageSize   int
}

// Touchpoint is a classified path entry ready for display.
type Touchpoint struct {
	Channel   string    `json:"channel"`
	Timestamp time.Time `json:"timestamp"`
	Category  Category  `json:"category"`
}

// Item is one row of a window: the aggregate plus a bounded path preview.
type Item struct {
	models.JourneyAggregate
	Index     int          `json:"index"`
	Preview   []Touchpoint `json:"preview"`
	Truncated bool         `json:"truncated"`
}

// Window is the visible slice of the collection after filter, sort and
// pagination. TotalPages is 0 when nothing matches; Page is then 1.
type Window struct {
	Items      []Item    `json:"items"`
	Page       int       `json:"page"`
	PageSize   int       `json:"pageSize"`
	TotalPages int       `json:"totalPages"`
	MatchCount int       `json:"matchCount"`
	Sort       SortOrder `json:"sort"`
	SearchTerm string    `json:"searchTerm"`
}

// Filter keeps aggregates whose session ID contains term, case-insensitively.
// A blank or whitespace-only term keeps everything; any other term is matched
// as typed. The result is a new slice in input order.
func Filter(set []models.JourneyAggregate, term string) []models.JourneyAggregate {
	blank := strings.TrimSpace(term) == ""
	needle := strings.ToLower(term)
	out := make([]models.JourneyAggregate, 0, len(set))
	for _, a := range set {
		if blank || strings.Contains(strings.ToLower(a.SessionID), needle) {
			out = append(out, a)
		}
	}
	return out
}

// Sort orders a copy of set by CreatedAt. Ties break on SessionID ascending,
// then on position in set.
func Sort(set []models.JourneyAggregate, order SortOrder) []models.JourneyAggregate {
	out := make([]models.JourneyAggregate, len(set))
	copy(out, set)
	sort.SliceStable(out, func(i, k int) bool {
		a, b := out[i], out[k]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			if order == SortAsc {
				return a.CreatedAt.Before(b.CreatedAt)
			}
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.SessionID < b.SessionID
	})
	return out
}

// TotalPages is ceil(matchCount/pageSize), 0 for an empty match.
func TotalPages(matchCount, pageSize int) int {
	if matchCount <= 0 || pageSize <= 0 {
		return 0
	}
	return int(math.Ceil(float64(matchCount) / float64(pageSize)))
}

// ClampPage pulls page into [1, max(totalPages, 1)].
func ClampPage(page, totalPages int) int {
	if page > totalPages {
		page = totalPages
	}
	if page < 1 {
		page = 1
	}
	return page
}

// View filters, sorts and paginates set. Out-of-range pages are clamped.
func View(set []models.JourneyAggregate, q Query) Window {
	pageSize := q.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	order := q.Sort
	if order != SortAsc {
		order = SortDesc
	}

	sorted := Sort(Filter(set, q.SearchTerm), order)
	total := TotalPages(len(sorted), pageSize)
	page := ClampPage(q.Page, total)

	start := (page - 1) * pageSize
	end := min(start+pageSize, len(sorted))

	items := make([]Item, 0, max(end-start, 0))
	for i := start; i < end; i++ {
		preview, truncated := Preview(sorted[i].Path)
		items = append(items, Item{
			JourneyAggregate: sorted[i],
			Index:            i,
			Preview:          preview,
			Truncated:        truncated,
		})
	}

	return Window{
		Items:      items,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: total,
		MatchCount: len(sorted),
		Sort:       order,
		SearchTerm: q.SearchTerm,
	}
}

// Preview returns the first PreviewLength entries of path and whether the
// path is longer than that.
func Preview(path []models.RawTouchpointEvent) ([]Touchpoint, bool) {
	n := min(len(path), PreviewLength)
	return touchpoints(path[:n]), len(path) > PreviewLength
}

func touchpoints(path []models.RawTouchpointEvent) []Touchpoint {
	out := make([]Touchpoint, len(path))
	for i, tp := range path {
		out[i] = Touchpoint{
			Channel:   tp.Channel,
			Timestamp: tp.Timestamp,
			Category:  Classify(tp.Channel),
		}
	}
	return out
}
