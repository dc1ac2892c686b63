package journey

import (
	"math/rand/v2"
	"sync"

	"journeylens/api/models"
)

// Attribution is the revenue assigned to a single journey.
type Attribution struct {
	TotalValue float64
	Sales      int
}

// Attributor decides how much revenue a journey produced. Swapping the
// implementation changes the accounting rule without touching aggregation.
type Attributor interface {
	Attribute(j models.RawJourney) Attribution
}

// AttributorFunc adapts a plain function to Attributor.
type AttributorFunc func(j models.RawJourney) Attribution

func (f AttributorFunc) Attribute(j models.RawJourney) Attribution { return f(j) }

const (
	DefaultMaxValue = 1_000_000.0
	DefaultMaxSales = 5000
)

// RandomAttributor is the placeholder rule used until real revenue data is
// available: value in [0, MaxValue), sales in [0, MaxSales).
type RandomAttributor struct {
	MaxValue float64
	MaxSales int

	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomAttributor returns a placeholder attributor. A nil rng uses a
// randomly seeded source.
func NewRandomAttributor(rng *rand.Rand) *RandomAttributor {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &RandomAttributor{
		MaxValue: DefaultMaxValue,
		MaxSales: DefaultMaxSales,
		rng:      rng,
	}
}

func (a *RandomAttributor) Attribute(models.RawJourney) Attribution {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := Attribution{TotalValue: a.rng.Float64() * a.MaxValue}
	if a.MaxSales > 0 {
		out.Sales = a.rng.IntN(a.MaxSales)
	}
	return out
}

// TableAttributor attributes revenue from a precomputed per-session table,
// typically loaded from purchase events. Unknown sessions get zero.
type TableAttributor struct {
	table map[string]Attribution
}

func NewTableAttributor(rows []models.SessionRevenue) *TableAttributor {
	table := make(map[string]Attribution, len(rows))
	for _, r := range rows {
		table[r.SessionID] = Attribution{TotalValue: r.TotalValue, Sales: r.Sales}
	}
	return &TableAttributor{table: table}
}

func (a *TableAttributor) Attribute(j models.RawJourney) Attribution {
	return a.table[j.SessionID]
}
