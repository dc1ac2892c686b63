package journey

import (
	"math"
	"sort"

	"journeylens/api/models"
)

// Aggregator turns raw journeys into aggregate records.
type Aggregator struct {
	attributor Attributor
}

func NewAggregator(attributor Attributor) *Aggregator {
	if attributor == nil {
		attributor = NewRandomAttributor(nil)
	}
	return &Aggregator{attributor: attributor}
}

// Aggregate builds one aggregate per raw journey, ordered by descending
// TotalValue, with percentages computed over the full result. The input is
// never modified; each aggregate's Path aliases the raw touchpoints.
func (a *Aggregator) Aggregate(raw []models.RawJourney) []models.JourneyAggregate {
	out := make([]models.JourneyAggregate, 0, len(raw))
	for _, j := range raw {
		attr := a.attributor.Attribute(j)
		value := finite(attr.TotalValue)
		sales := attr.Sales
		if sales < 0 {
			sales = 0
		}
		out = append(out, models.JourneyAggregate{
			SessionID:       j.SessionID,
			CreatedAt:       j.StartTime,
			Path:            j.Touchpoints,
			TotalValue:      value,
			Sales:           sales,
			AvgTicket:       safeDiv(value, float64(sales)),
			TouchpointCount: len(j.Touchpoints),
			AvgDuration:     j.Duration,
			JourneyCount:    1,
		})
	}

	sort.SliceStable(out, func(i, k int) bool {
		return out[i].TotalValue > out[k].TotalValue
	})
	return WithPercentages(out)
}

// WithPercentages returns a copy of set in which every element's Percentage
// is its share of the set's size. It must be re-run whenever membership
// changes; the input slice is left untouched.
func WithPercentages(set []models.JourneyAggregate) []models.JourneyAggregate {
	out := make([]models.JourneyAggregate, len(set))
	copy(out, set)
	share := safeDiv(100, float64(len(out)))
	for i := range out {
		out[i].Percentage = share
	}
	return out
}

// safeDiv resolves zero denominators and non-finite results to 0.
func safeDiv(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return finite(num / den)
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
