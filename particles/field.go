// Package particles simulates the dashboard's animated background: a fixed
// set of drifting points joined by fading edges when they come close.
//
// A Field is driven by one goroutine at a time; Loop provides that goroutine.
package particles

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
)

const (
	DefaultCount  = 50
	EdgeThreshold = 150.0

	maxSpeed   = 0.25
	minRadius  = 1.0
	radiusSpan = 2.0
)

var (
	ErrNoHost         = errors.New("particles: host has no drawable area")
	ErrAlreadyStarted = errors.New("particles: field already initialized")
)

type Vec struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Point struct {
	Pos    Vec     `json:"pos"`
	Vel    Vec     `json:"vel"`
	Radius float64 `json:"radius"`
}

// Size describes the host: the viewport and the height of the content the
// field sits behind.
type Size struct {
	ViewportWidth  float64 `json:"viewportWidth"`
	ViewportHeight float64 `json:"viewportHeight"`
	ContentHeight  float64 `json:"contentHeight"`
}

// Bounds is the drawing surface size for a host: full viewport width, and
// tall enough to cover scrollable content.
func (s Size) Bounds() (width, height float64) {
	return s.ViewportWidth, math.Max(s.ViewportHeight, s.ContentHeight)
}

type State int

const (
	Uninitialized State = iota
	Running
	Stopped
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Running:
		return "running"
	case Stopped:
		return "stopped"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

type Field struct {
	state  State
	count  int
	width  float64
	height float64
	points []Point
	rng    *rand.Rand
	theme  ThemeSource
}

type Option func(*Field)

// WithCount overrides the number of points.
func WithCount(n int) Option {
	return func(f *Field) { f.count = n }
}

func WithRand(rng *rand.Rand) Option {
	return func(f *Field) { f.rng = rng }
}

// WithTheme sets where the light/dark flag is read from each frame.
func WithTheme(t ThemeSource) Option {
	return func(f *Field) { f.theme = t }
}

func NewField(opts ...Option) *Field {
	f := &Field{count: DefaultCount}
	for _, opt := range opts {
		opt(f)
	}
	if f.rng == nil {
		f.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if f.theme == nil {
		f.theme = lightTheme{}
	}
	return f
}

// Init sizes the surface for host and scatters the points across it.
func (f *Field) Init(host Size) error {
	if f.state != Uninitialized {
		return ErrAlreadyStarted
	}
	w, h := host.Bounds()
	if w <= 0 || h <= 0 {
		return ErrNoHost
	}
	f.width, f.height = w, h
	f.points = make([]Point, f.count)
	for i := range f.points {
		f.points[i] = Point{
			Pos:    Vec{X: f.rng.Float64() * w, Y: f.rng.Float64() * h},
			Vel:    Vec{X: (f.rng.Float64() - 0.5) * 2 * maxSpeed, Y: (f.rng.Float64() - 0.5) * 2 * maxSpeed},
			Radius: minRadius + f.rng.Float64()*radiusSpan,
		}
	}
	f.state = Running
	return nil
}

// Resize changes the surface bounds. Points keep their positions and may sit
// outside the new bounds until their motion brings them back.
func (f *Field) Resize(host Size) {
	if f.state != Running {
		return
	}
	w, h := host.Bounds()
	if w <= 0 || h <= 0 {
		return
	}
	f.width, f.height = w, h
}

// Step advances every point by its velocity. A point beyond a wall and still
// moving outward has that axis's velocity inverted. Positions are not
// clamped, so a point may overshoot for a tick.
func (f *Field) Step() {
	if f.state != Running {
		return
	}
	for i := range f.points {
		p := &f.points[i]
		p.Pos.X += p.Vel.X
		p.Pos.Y += p.Vel.Y
		p.Vel.X = reflect(p.Pos.X, p.Vel.X, f.width)
		p.Vel.Y = reflect(p.Pos.Y, p.Vel.Y, f.height)
	}
}

func reflect(pos, vel, bound float64) float64 {
	if (pos < 0 && vel < 0) || (pos > bound && vel > 0) {
		return -vel
	}
	return vel
}

// Edge joins two points closer than EdgeThreshold. Strength falls linearly
// from 1 at distance 0 to 0 at the threshold.
type Edge struct {
	I, J     int
	Distance float64
	Strength float64
}

// Edges checks every unordered pair of points.
func (f *Field) Edges() []Edge {
	var out []Edge
	for i := 0; i < len(f.points); i++ {
		for j := i + 1; j < len(f.points); j++ {
			dx := f.points[j].Pos.X - f.points[i].Pos.X
			dy := f.points[j].Pos.Y - f.points[i].Pos.Y
			d := math.Sqrt(dx*dx + dy*dy)
			if d < EdgeThreshold {
				out = append(out, Edge{I: i, J: j, Distance: d, Strength: 1 - d/EdgeThreshold})
			}
		}
	}
	return out
}

// Tick runs one frame: step, then draw.
func (f *Field) Tick(s Surface) {
	f.Step()
	f.Draw(s)
}

// Stop tears the field down. It cannot be restarted.
func (f *Field) Stop() {
	f.state = Stopped
	f.points = nil
}

func (f *Field) State() State { return f.state }

func (f *Field) Bounds() (width, height float64) { return f.width, f.height }

// Points returns a copy of the current points.
func (f *Field) Points() []Point {
	out := make([]Point, len(f.points))
	copy(out, f.points)
	return out
}

// SetPoint replaces point i. Used to place points deterministically.
func (f *Field) SetPoint(i int, p Point) {
	f.points[i] = p
}
