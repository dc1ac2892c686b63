package journey

import "journeylens/api/models"

const (
	InitialVisible  = 100
	RevealIncrement = 200
	HeavyThreshold  = 1000
)

// Disclosure reveals one journey's full path in fixed-size chunks.
// The zero value is closed.
type Disclosure struct {
	journey *models.JourneyAggregate
	visible int
}

// Open starts a disclosure at the initial window, discarding any previous
// progress.
func (d *Disclosure) Open(j *models.JourneyAggregate) {
	d.journey = j
	d.visible = min(InitialVisible, len(j.Path))
}

// Restore reopens j at a previously reported visible count, clamped to the
// valid range. Used when the caller holds the window size.
func (d *Disclosure) Restore(j *models.JourneyAggregate, visible int) {
	d.Open(j)
	if visible > d.visible {
		d.visible = min(visible, len(j.Path))
	}
}

func (d *Disclosure) Close() {
	d.journey = nil
	d.visible = 0
}

func (d *Disclosure) IsOpen() bool { return d.journey != nil }

func (d *Disclosure) Journey() *models.JourneyAggregate { return d.journey }

func (d *Disclosure) VisibleCount() int { return d.visible }

func (d *Disclosure) total() int {
	if d.journey == nil {
		return 0
	}
	return len(d.journey.Path)
}

// CanRevealMore reports whether RevealMore would change anything.
func (d *Disclosure) CanRevealMore() bool {
	return d.journey != nil && d.visible < d.total()
}

// NextChunk is how many touchpoints the next RevealMore would add.
func (d *Disclosure) NextChunk() int {
	return min(RevealIncrement, d.total()-d.visible)
}

// RevealMore grows the window by RevealIncrement, capped at the path length.
// It reports false, and does nothing, once everything is visible.
func (d *Disclosure) RevealMore() bool {
	if !d.CanRevealMore() {
		return false
	}
	d.visible = nextVisible(d.visible, d.total())
	return true
}

func nextVisible(visible, total int) int {
	return min(visible+RevealIncrement, total)
}

// Heavy flags journeys long enough that consumers should pick a lighter
// rendering strategy.
func (d *Disclosure) Heavy() bool {
	return d.total() > HeavyThreshold
}

// Visible materialises only the revealed prefix of the path.
func (d *Disclosure) Visible() []Touchpoint {
	if d.journey == nil {
		return nil
	}
	return touchpoints(d.journey.Path[:d.visible])
}

// DisclosureView is the serialisable snapshot of an open disclosure.
type DisclosureView struct {
	SessionID       string       `json:"sessionId"`
	TouchpointCount int          `json:"touchpointCount"`
	VisibleCount    int          `json:"visibleCount"`
	CanRevealMore   bool         `json:"canRevealMore"`
	NextChunk       int          `json:"nextChunk"`
	Heavy           bool         `json:"heavy"`
	Touchpoints     []Touchpoint `json:"touchpoints"`
}

func (d *Disclosure) Snapshot() DisclosureView {
	if d.journey == nil {
		return DisclosureView{}
	}
	return DisclosureView{
		SessionID:       d.journey.SessionID,
		TouchpointCount: d.total(),
		VisibleCount:    d.visible,
		CanRevealMore:   d.CanRevealMore(),
		NextChunk:       d.NextChunk(),
		Heavy:           d.Heavy(),
		Touchpoints:     d.Visible(),
	}
}
