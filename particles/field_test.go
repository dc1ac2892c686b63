package particles

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestField(t *testing.T, opts ...Option) *Field {
	t.Helper()
	f := NewField(append([]Option{WithRand(rand.New(rand.NewPCG(7, 11)))}, opts...)...)
	require.NoError(t, f.Init(Size{ViewportWidth: 800, ViewportHeight: 600}))
	return f
}

func TestField_InitScattersPointsWithinBounds(t *testing.T) {
	f := newTestField(t)
	assert.Equal(t, Running, f.State())

	pts := f.Points()
	require.Len(t, pts, DefaultCount)
	for _, p := range pts {
		assert.True(t, p.Pos.X >= 0 && p.Pos.X <= 800, "x=%v", p.Pos.X)
		assert.True(t, p.Pos.Y >= 0 && p.Pos.Y <= 600, "y=%v", p.Pos.Y)
		assert.True(t, p.Vel.X >= -maxSpeed && p.Vel.X < maxSpeed, "vx=%v", p.Vel.X)
		assert.True(t, p.Vel.Y >= -maxSpeed && p.Vel.Y < maxSpeed, "vy=%v", p.Vel.Y)
		assert.True(t, p.Radius >= minRadius && p.Radius < minRadius+radiusSpan, "r=%v", p.Radius)
	}
}

func TestField_InitErrors(t *testing.T) {
	f := NewField()
	assert.ErrorIs(t, f.Init(Size{}), ErrNoHost)
	assert.Equal(t, Uninitialized, f.State())

	require.NoError(t, f.Init(Size{ViewportWidth: 10, ViewportHeight: 10}))
	assert.ErrorIs(t, f.Init(Size{ViewportWidth: 10, ViewportHeight: 10}), ErrAlreadyStarted)
}

func TestField_ReflectsAtRightWall(t *testing.T) {
	f := newTestField(t, WithCount(1))
	f.SetPoint(0, Point{Pos: Vec{X: 805, Y: 300}, Vel: Vec{X: 0.2, Y: 0}, Radius: 1})

	f.Step()
	p := f.Points()[0]
	assert.Less(t, p.Vel.X, 0.0)
	assert.InDelta(t, 805.2, p.Pos.X, 1e-9)

	prev := p.Pos.X
	for i := 0; i < 100; i++ {
		f.Step()
		cur := f.Points()[0].Pos.X
		assert.Less(t, cur, prev)
		prev = cur
	}
	assert.Less(t, prev, 800.0)
}

func TestField_ReflectsAtLeftAndTopWalls(t *testing.T) {
	f := newTestField(t, WithCount(1))
	f.SetPoint(0, Point{Pos: Vec{X: 0.1, Y: 0.1}, Vel: Vec{X: -0.2, Y: -0.2}, Radius: 1})

	f.Step()
	p := f.Points()[0]
	assert.Greater(t, p.Vel.X, 0.0)
	assert.Greater(t, p.Vel.Y, 0.0)
	// Not clamped: the overshoot stays for this tick.
	assert.Less(t, p.Pos.X, 0.0)
	assert.Less(t, p.Pos.Y, 0.0)
}

func TestField_PointsStayNearBoundsOverTime(t *testing.T) {
	f := newTestField(t)
	for i := 0; i < 20_000; i++ {
		f.Step()
	}
	for _, p := range f.Points() {
		assert.True(t, p.Pos.X > -maxSpeed && p.Pos.X < 800+maxSpeed, "x=%v", p.Pos.X)
		assert.True(t, p.Pos.Y > -maxSpeed && p.Pos.Y < 600+maxSpeed, "y=%v", p.Pos.Y)
	}
}

func TestField_ResizeKeepsPositions(t *testing.T) {
	f := newTestField(t)
	before := f.Points()

	f.Resize(Size{ViewportWidth: 300, ViewportHeight: 200, ContentHeight: 1500})
	w, h := f.Bounds()
	assert.Equal(t, 300.0, w)
	assert.Equal(t, 1500.0, h)
	assert.Equal(t, before, f.Points())

	f.Resize(Size{ViewportWidth: 300, ViewportHeight: 900, ContentHeight: 100})
	_, h = f.Bounds()
	assert.Equal(t, 900.0, h)

	f.Resize(Size{})
	w, _ = f.Bounds()
	assert.Equal(t, 300.0, w)
}

func TestField_ShrinkThenRecover(t *testing.T) {
	f := newTestField(t, WithCount(1))
	f.SetPoint(0, Point{Pos: Vec{X: 700, Y: 100}, Vel: Vec{X: 0.25, Y: 0}, Radius: 1})
	f.Resize(Size{ViewportWidth: 400, ViewportHeight: 600})

	for i := 0; i < 2000; i++ {
		f.Step()
	}
	x := f.Points()[0].Pos.X
	assert.True(t, x >= -maxSpeed && x <= 400+maxSpeed, "x=%v", x)
}

func TestField_Edges(t *testing.T) {
	f := newTestField(t, WithCount(3))
	f.SetPoint(0, Point{Pos: Vec{X: 0, Y: 0}})
	f.SetPoint(1, Point{Pos: Vec{X: 0, Y: 75}})
	f.SetPoint(2, Point{Pos: Vec{X: 0, Y: 150}})

	edges := f.Edges()
	require.Len(t, edges, 2)

	assert.Equal(t, 0, edges[0].I)
	assert.Equal(t, 1, edges[0].J)
	assert.InDelta(t, 75, edges[0].Distance, 1e-9)
	assert.InDelta(t, 0.5, edges[0].Strength, 1e-9)

	// 0-2 sits exactly on the threshold and is excluded.
	assert.Equal(t, 1, edges[1].I)
	assert.Equal(t, 2, edges[1].J)
	assert.InDelta(t, 0.5, edges[1].Strength, 1e-9)
}

func TestField_StopIsTerminal(t *testing.T) {
	f := newTestField(t)
	f.Stop()
	assert.Equal(t, Stopped, f.State())
	assert.Empty(t, f.Points())

	f.Step()
	f.Resize(Size{ViewportWidth: 1, ViewportHeight: 1})
	assert.ErrorIs(t, f.Init(Size{ViewportWidth: 1, ViewportHeight: 1}), ErrAlreadyStarted)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "uninitialized", Uninitialized.String())
	assert.Equal(t, "running", Running.String())
	assert.Equal(t, "stopped", Stopped.String())
	assert.Equal(t, "State(9)", State(9).String())
}
