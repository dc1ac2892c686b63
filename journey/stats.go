package journey

import "journeylens/api/models"

// Summary holds the dashboard's headline totals over an aggregate set.
type Summary struct {
	TotalValue    float64 `json:"totalValue"`
	TotalSales    int     `json:"totalSales"`
	TotalJourneys int     `json:"totalJourneys"`
	AvgDuration   float64 `json:"avgDuration"`
	AvgTicket     float64 `json:"avgTicket"`
}

// Summarize totals an aggregate set. All ratios are 0 on an empty set.
func Summarize(set []models.JourneyAggregate) Summary {
	var s Summary
	var durations float64
	for _, a := range set {
		s.TotalValue += a.TotalValue
		s.TotalSales += a.Sales
		durations += float64(a.AvgDuration)
	}
	s.TotalJourneys = len(set)
	s.AvgDuration = safeDiv(durations, float64(len(set)))
	s.AvgTicket = safeDiv(s.TotalValue, float64(s.TotalSales))
	return s
}
