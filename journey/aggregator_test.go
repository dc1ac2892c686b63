package journey

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"journeylens/api/models"
)

func TestAggregate_OnePerJourneyOrderedByValue(t *testing.T) {
	raw := []models.RawJourney{
		rawJourney("a", 0, "google"),
		rawJourney("b", 0, "google", "facebook"),
		rawJourney("c", 0, "organic", "mailbiz", "google"),
	}
	agg := NewAggregator(fixedAttributor{
		"a": {TotalValue: 10, Sales: 2},
		"b": {TotalValue: 300, Sales: 3},
		"c": {TotalValue: 50, Sales: 0},
	})

	out := agg.Aggregate(raw)
	require.Len(t, out, 3)
	assert.Equal(t, []string{"b", "c", "a"}, []string{out[0].SessionID, out[1].SessionID, out[2].SessionID})

	b := out[0]
	assert.Equal(t, 100.0, b.AvgTicket)
	assert.Equal(t, 2, b.TouchpointCount)
	assert.Equal(t, raw[1].Duration, b.AvgDuration)
	assert.Equal(t, raw[1].StartTime, b.CreatedAt)
	assert.Equal(t, 1, b.JourneyCount)
}

func TestAggregate_PathIsShared(t *testing.T) {
	raw := []models.RawJourney{rawJourney("a", 0, "google", "organic")}
	out := NewAggregator(fixedAttributor{}).Aggregate(raw)
	require.Len(t, out, 1)
	assert.Same(t, &raw[0].Touchpoints[0], &out[0].Path[0])
}

func TestAggregate_ZeroSalesGivesZeroTicket(t *testing.T) {
	out := NewAggregator(fixedAttributor{"a": {TotalValue: 999, Sales: 0}}).
		Aggregate([]models.RawJourney{rawJourney("a", 0, "google")})
	require.Len(t, out, 1)
	assert.Equal(t, 0.0, out[0].AvgTicket)
	assert.False(t, math.IsNaN(out[0].AvgTicket))
}

func TestAggregate_NonFiniteValuesAreZeroed(t *testing.T) {
	out := NewAggregator(fixedAttributor{"a": {TotalValue: math.NaN(), Sales: -3}}).
		Aggregate([]models.RawJourney{rawJourney("a", 0, "google")})
	require.Len(t, out, 1)
	assert.Equal(t, 0.0, out[0].TotalValue)
	assert.Equal(t, 0, out[0].Sales)
	assert.Equal(t, 0.0, out[0].AvgTicket)
}

func TestAggregate_RandomAttributionInvariants(t *testing.T) {
	attr := NewRandomAttributor(rand.New(rand.NewPCG(1, 2)))
	out := NewAggregator(attr).Aggregate(rawJourneys(200))
	require.Len(t, out, 200)

	var sum float64
	for i, a := range out {
		sum += a.Percentage
		assert.GreaterOrEqual(t, a.TotalValue, 0.0)
		assert.Less(t, a.TotalValue, DefaultMaxValue)
		assert.GreaterOrEqual(t, a.Sales, 0)
		assert.Less(t, a.Sales, DefaultMaxSales)
		if a.Sales == 0 {
			assert.Equal(t, 0.0, a.AvgTicket)
		}
		if i > 0 {
			assert.GreaterOrEqual(t, out[i-1].TotalValue, a.TotalValue)
		}
	}
	assert.InEpsilon(t, 100.0, sum, 1e-6)
}

func TestWithPercentages(t *testing.T) {
	t.Run("sums to 100 for several sizes", func(t *testing.T) {
		for _, n := range []int{1, 3, 7, 45, 1000} {
			out := NewAggregator(fixedAttributor{}).Aggregate(rawJourneys(n))
			var sum float64
			for _, a := range out {
				sum += a.Percentage
			}
			assert.InEpsilon(t, 100.0, sum, 1e-6, "n=%d", n)
		}
	})

	t.Run("empty set", func(t *testing.T) {
		assert.Empty(t, WithPercentages(nil))
	})

	t.Run("does not mutate input", func(t *testing.T) {
		in := []models.JourneyAggregate{{SessionID: "a", Percentage: 100}}
		grown := WithPercentages(append(in, models.JourneyAggregate{SessionID: "b"}))
		assert.Equal(t, 100.0, in[0].Percentage)
		assert.Equal(t, 50.0, grown[0].Percentage)
		assert.Equal(t, 50.0, grown[1].Percentage)
	})
}

func TestTableAttributor(t *testing.T) {
	attr := NewTableAttributor([]models.SessionRevenue{{SessionID: "a", TotalValue: 42.5, Sales: 2}})
	assert.Equal(t, Attribution{TotalValue: 42.5, Sales: 2}, attr.Attribute(models.RawJourney{SessionID: "a"}))
	assert.Equal(t, Attribution{}, attr.Attribute(models.RawJourney{SessionID: "missing"}))
}

func TestSummarize(t *testing.T) {
	assert.Equal(t, Summary{}, Summarize(nil))

	s := Summarize([]models.JourneyAggregate{
		{TotalValue: 100, Sales: 4, AvgDuration: 1000},
		{TotalValue: 300, Sales: 0, AvgDuration: 3000},
	})
	assert.Equal(t, 400.0, s.TotalValue)
	assert.Equal(t, 4, s.TotalSales)
	assert.Equal(t, 2, s.TotalJourneys)
	assert.Equal(t, 2000.0, s.AvgDuration)
	assert.Equal(t, 100.0, s.AvgTicket)

	zero := Summarize([]models.JourneyAggregate{{TotalValue: 10}})
	assert.Equal(t, 0.0, zero.AvgTicket)
}
