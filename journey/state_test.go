package journey

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reduce(t *testing.T, s ViewState, actions ...Action) ViewState {
	t.Helper()
	for _, a := range actions {
		var err error
		s, err = Reduce(s, a)
		require.NoError(t, err, "action %s", a.Type)
	}
	return s
}

func TestInitialViewState(t *testing.T) {
	s := InitialViewState()
	assert.Equal(t, 1, s.Page)
	assert.Equal(t, SortDesc, s.Sort)
	assert.Equal(t, ModeTable, s.Mode)
	assert.Len(t, s.Columns, len(allColumns))
	assert.Nil(t, s.Detail)
}

func TestReduce_SearchResetsPage(t *testing.T) {
	s := reduce(t, InitialViewState(),
		Action{Type: ActionSetPage, Page: 3},
		Action{Type: ActionSetSearch, SearchTerm: "abc"},
	)
	assert.Equal(t, 1, s.Page)
	assert.Equal(t, "abc", s.SearchTerm)
}

func TestReduce_Paging(t *testing.T) {
	s := reduce(t, InitialViewState(), Action{Type: ActionPrevPage})
	assert.Equal(t, 1, s.Page)
	s = reduce(t, s, Action{Type: ActionNextPage}, Action{Type: ActionNextPage})
	assert.Equal(t, 3, s.Page)
	s = reduce(t, s, Action{Type: ActionSetPage, Page: -2})
	assert.Equal(t, 1, s.Page)
}

func TestReduce_DoesNotMutateInput(t *testing.T) {
	before := InitialViewState()
	after := reduce(t, before, Action{Type: ActionToggleColumn, Column: ColumnSales})
	assert.True(t, before.Columns[ColumnSales])
	assert.False(t, after.Columns[ColumnSales])

	opened := reduce(t, after, Action{Type: ActionOpenDetail, SessionID: "s", TouchpointCount: 250})
	revealed := reduce(t, opened, Action{Type: ActionRevealMore})
	assert.Equal(t, 100, opened.Detail.VisibleCount)
	assert.Equal(t, 250, revealed.Detail.VisibleCount)
}

func TestReduce_DetailLifecycle(t *testing.T) {
	s := reduce(t, InitialViewState(), Action{Type: ActionOpenDetail, SessionID: "s", TouchpointCount: 250})
	require.NotNil(t, s.Detail)

	var seen []int
	for i := 0; i < 3; i++ {
		seen = append(seen, s.Detail.VisibleCount)
		s = reduce(t, s, Action{Type: ActionRevealMore})
	}
	assert.Equal(t, []int{100, 250, 250}, seen)

	s = reduce(t, s, Action{Type: ActionCloseDetail})
	assert.Nil(t, s.Detail)

	s = reduce(t, s, Action{Type: ActionOpenDetail, SessionID: "s", TouchpointCount: 250})
	assert.Equal(t, 100, s.Detail.VisibleCount)
}

func TestReduce_Errors(t *testing.T) {
	s := InitialViewState()
	for _, a := range []Action{
		{Type: "bogus"},
		{Type: ActionToggleColumn, Column: "nope"},
		{Type: ActionSetMode, Mode: "grid"},
		{Type: ActionOpenDetail},
		{Type: ActionRevealMore},
	} {
		got, err := Reduce(s, a)
		assert.Error(t, err, "action %s", a.Type)
		assert.Equal(t, s.Page, got.Page)
	}
}

func TestReduce_SortAndMode(t *testing.T) {
	s := reduce(t, InitialViewState(),
		Action{Type: ActionToggleSort},
		Action{Type: ActionSetMode, Mode: ModeCards},
		Action{Type: ActionToggleStats},
	)
	assert.Equal(t, SortAsc, s.Sort)
	assert.Equal(t, ModeCards, s.Mode)
	assert.False(t, s.ShowStats)
	assert.Equal(t, Query{Sort: SortAsc, Page: 1, PageSize: DefaultPageSize}, s.Query())
}
