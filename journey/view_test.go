package journey

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"journeylens/api/models"
)

func ids(set []models.JourneyAggregate) []string {
	out := make([]string, len(set))
	for i, a := range set {
		out[i] = a.SessionID
	}
	return out
}

func itemIDs(items []Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.SessionID
	}
	return out
}

func TestView_FortyFiveJourneysThreePages(t *testing.T) {
	set := NewAggregator(fixedAttributor{}).Aggregate(rawJourneys(45))

	w := View(set, Query{Page: 3, PageSize: 20, Sort: SortDesc})
	assert.Equal(t, 3, w.TotalPages)
	assert.Equal(t, 45, w.MatchCount)
	assert.Equal(t, 3, w.Page)
	require.Len(t, w.Items, 5)
	// Descending by creation: page 3 holds the five oldest sessions.
	assert.Equal(t, []string{"sess-004", "sess-003", "sess-002", "sess-001", "sess-000"}, itemIDs(w.Items))
	assert.Equal(t, 40, w.Items[0].Index)
}

func TestView_DefaultsToPageSizeTwenty(t *testing.T) {
	set := NewAggregator(fixedAttributor{}).Aggregate(rawJourneys(25))
	w := View(set, Query{Page: 1})
	assert.Equal(t, DefaultPageSize, w.PageSize)
	assert.Len(t, w.Items, 20)
	assert.Equal(t, SortDesc, w.Sort)
}

func TestView_ClampsOutOfRangePages(t *testing.T) {
	set := NewAggregator(fixedAttributor{}).Aggregate(rawJourneys(45))

	high := View(set, Query{Page: 99})
	assert.Equal(t, 3, high.Page)
	assert.Len(t, high.Items, 5)

	low := View(set, Query{Page: -4})
	assert.Equal(t, 1, low.Page)
	assert.Len(t, low.Items, 20)
}

func TestView_EmptyMatch(t *testing.T) {
	set := NewAggregator(fixedAttributor{}).Aggregate(rawJourneys(10))
	w := View(set, Query{SearchTerm: "no-such-session", Page: 4})
	assert.Equal(t, 0, w.MatchCount)
	assert.Equal(t, 0, w.TotalPages)
	assert.Equal(t, 1, w.Page)
	assert.Empty(t, w.Items)
	assert.NotNil(t, w.Items)
}

func TestFilter(t *testing.T) {
	set := []models.JourneyAggregate{{SessionID: "Alpha-1"}, {SessionID: "beta-2"}, {SessionID: "ALPHA-3"}}

	t.Run("blank term keeps everything unchanged", func(t *testing.T) {
		for _, term := range []string{"", "   ", "\t"} {
			if diff := cmp.Diff(set, Filter(set, term)); diff != "" {
				t.Errorf("Filter(%q) mismatch (-want +got):\n%s", term, diff)
			}
		}
	})

	t.Run("case-insensitive substring", func(t *testing.T) {
		assert.Equal(t, []string{"Alpha-1", "ALPHA-3"}, ids(Filter(set, "alpha")))
		assert.Equal(t, []string{"beta-2"}, ids(Filter(set, "BETA")))
		assert.Equal(t, []string{"beta-2"}, ids(Filter(set, "a-2")))
	})

	t.Run("surrounding whitespace is part of the term", func(t *testing.T) {
		assert.Empty(t, Filter(set, " BETA "))
		assert.Empty(t, Filter(set, "beta-2 "))
	})

	t.Run("no match", func(t *testing.T) {
		assert.Empty(t, Filter(set, "gamma"))
	})
}

func TestSort_TieBreakAndRoundTrip(t *testing.T) {
	same := baseTime
	set := []models.JourneyAggregate{
		{SessionID: "c", CreatedAt: same},
		{SessionID: "a", CreatedAt: same.Add(time.Hour)},
		{SessionID: "b", CreatedAt: same},
		{SessionID: "d", CreatedAt: same.Add(-time.Hour)},
	}

	desc := Sort(set, SortDesc)
	assert.Equal(t, []string{"a", "b", "c", "d"}, ids(desc))

	asc := Sort(desc, SortAsc)
	assert.Equal(t, []string{"d", "b", "c", "a"}, ids(asc))

	back := Sort(asc, SortDesc)
	assert.Equal(t, ids(desc), ids(back))

	// Input is untouched.
	assert.Equal(t, []string{"c", "a", "b", "d"}, ids(set))
}

func TestView_ResortRoundTripOverFilteredSet(t *testing.T) {
	set := NewAggregator(fixedAttributor{}).Aggregate(rawJourneys(30))
	q := Query{SearchTerm: "sess-01", Page: 1}

	first := View(set, q)
	q.Sort = SortAsc
	View(set, q)
	q.Sort = SortDesc
	again := View(set, q)
	assert.Equal(t, itemIDs(first.Items), itemIDs(again.Items))
}

func TestPreview(t *testing.T) {
	short, truncated := Preview(longPath(5))
	assert.Len(t, short, 5)
	assert.False(t, truncated)

	long, truncated := Preview(longPath(10_000))
	assert.Len(t, long, PreviewLength)
	assert.True(t, truncated)
	assert.Equal(t, "ch-0", long[0].Channel)
	assert.Equal(t, CategoryDefault, long[0].Category)

	empty, truncated := Preview(nil)
	assert.Empty(t, empty)
	assert.False(t, truncated)
}

func TestTotalPagesAndClamp(t *testing.T) {
	assert.Equal(t, 0, TotalPages(0, 20))
	assert.Equal(t, 1, TotalPages(1, 20))
	assert.Equal(t, 1, TotalPages(20, 20))
	assert.Equal(t, 2, TotalPages(21, 20))
	assert.Equal(t, 1, ClampPage(5, 0))
	assert.Equal(t, 2, ClampPage(5, 2))
	assert.Equal(t, 1, ClampPage(0, 2))
}

func TestParseSortOrder(t *testing.T) {
	assert.Equal(t, SortAsc, ParseSortOrder("ASC"))
	assert.Equal(t, SortDesc, ParseSortOrder("desc"))
	assert.Equal(t, SortDesc, ParseSortOrder(""))
	assert.Equal(t, SortAsc, SortDesc.Toggle())
	assert.Equal(t, SortDesc, SortAsc.Toggle())
}
