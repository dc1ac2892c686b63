package journey

import (
	"fmt"
	"maps"
)

type Column string

const (
	ColumnID             Column = "id"
	ColumnCreatedAt      Column = "createdAt"
	ColumnPath           Column = "path"
	ColumnTotalValue     Column = "totalValue"
	ColumnAvgTicket      Column = "avgTicket"
	ColumnSales          Column = "sales"
	ColumnJourneyCount   Column = "journeyCount"
	ColumnPercentage     Column = "percentage"
	ColumnConversionTime Column = "conversionTime"
	ColumnTouchpoints    Column = "touchpoints"
)

var allColumns = []Column{
	ColumnID, ColumnCreatedAt, ColumnPath, ColumnTotalValue, ColumnAvgTicket,
	ColumnSales, ColumnJourneyCount, ColumnPercentage, ColumnConversionTime,
	ColumnTouchpoints,
}

type ViewMode string

const (
	ModeTable ViewMode = "table"
	ModeCards ViewMode = "cards"
)

// DetailState is the disclosure window of the journey open in detail view.
type DetailState struct {
	SessionID       string `json:"sessionId"`
	TouchpointCount int    `json:"touchpointCount"`
	VisibleCount    int    `json:"visibleCount"`
}

// ViewState is everything the dashboard remembers about how the collection
// is being looked at. It is a value: Reduce never mutates its input.
type ViewState struct {
	Page       int             `json:"page"`
	Sort       SortOrder       `json:"sort"`
	SearchTerm string          `json:"searchTerm"`
	Columns    map[Column]bool `json:"columns"`
	Mode       ViewMode        `json:"mode"`
	ShowStats  bool            `json:"showStats"`
	Detail     *DetailState    `json:"detail,omitempty"`
}

func InitialViewState() ViewState {
	cols := make(map[Column]bool, len(allColumns))
	for _, c := range allColumns {
		cols[c] = true
	}
	return ViewState{
		Page:      1,
		Sort:      SortDesc,
		Columns:   cols,
		Mode:      ModeTable,
		ShowStats: true,
	}
}

// Query returns the collection query this state describes.
func (s ViewState) Query() Query {
	return Query{SearchTerm: s.SearchTerm, Sort: s.Sort, Page: s.Page, PageSize: DefaultPageSize}
}

type ActionType string

const (
	ActionSetSearch    ActionType = "setSearch"
	ActionToggleSort   ActionType = "toggleSort"
	ActionSetPage      ActionType = "setPage"
	ActionNextPage     ActionType = "nextPage"
	ActionPrevPage     ActionType = "prevPage"
	ActionToggleColumn ActionType = "toggleColumn"
	ActionSetMode      ActionType = "setMode"
	ActionToggleStats  ActionType = "toggleStats"
	ActionOpenDetail   ActionType = "openDetail"
	ActionCloseDetail  ActionType = "closeDetail"
	ActionRevealMore   ActionType = "revealMore"
)

// Action is one user interaction. Only the fields relevant to Type are read.
type Action struct {
	Type            ActionType `json:"type"`
	SearchTerm      string     `json:"searchTerm,omitempty"`
	Page            int        `json:"page,omitempty"`
	Column          Column     `json:"column,omitempty"`
	Mode            ViewMode   `json:"mode,omitempty"`
	SessionID       string     `json:"sessionId,omitempty"`
	TouchpointCount int        `json:"touchpointCount,omitempty"`
}

// Reduce applies a to s and returns the new state. Page bounds are not
// known here; View clamps them when the window is computed.
func Reduce(s ViewState, a Action) (ViewState, error) {
	next := s
	next.Columns = maps.Clone(s.Columns)
	if s.Detail != nil {
		d := *s.Detail
		next.Detail = &d
	}

	switch a.Type {
	case ActionSetSearch:
		next.SearchTerm = a.SearchTerm
		next.Page = 1
	case ActionToggleSort:
		next.Sort = s.Sort.Toggle()
	case ActionSetPage:
		next.Page = max(a.Page, 1)
	case ActionNextPage:
		next.Page = s.Page + 1
	case ActionPrevPage:
		next.Page = max(s.Page-1, 1)
	case ActionToggleColumn:
		if _, ok := next.Columns[a.Column]; !ok {
			return s, fmt.Errorf("unknown column %q", a.Column)
		}
		next.Columns[a.Column] = !next.Columns[a.Column]
	case ActionSetMode:
		if a.Mode != ModeTable && a.Mode != ModeCards {
			return s, fmt.Errorf("unknown view mode %q", a.Mode)
		}
		next.Mode = a.Mode
	case ActionToggleStats:
		next.ShowStats = !s.ShowStats
	case ActionOpenDetail:
		if a.SessionID == "" {
			return s, fmt.Errorf("openDetail requires a sessionId")
		}
		next.Detail = &DetailState{
			SessionID:       a.SessionID,
			TouchpointCount: a.TouchpointCount,
			VisibleCount:    min(InitialVisible, max(a.TouchpointCount, 0)),
		}
	case ActionCloseDetail:
		next.Detail = nil
	case ActionRevealMore:
		if next.Detail == nil {
			return s, fmt.Errorf("revealMore with no open detail")
		}
		next.Detail.VisibleCount = nextVisible(next.Detail.VisibleCount, next.Detail.TouchpointCount)
	default:
		return s, fmt.Errorf("unknown action %q", a.Type)
	}
	return next, nil
}
