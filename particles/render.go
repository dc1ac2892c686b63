package particles

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ThemeSource reports the current light/dark flag. theme.Flag satisfies it.
type ThemeSource interface {
	IsDark() bool
}

type lightTheme struct{}

func (lightTheme) IsDark() bool { return false }

type Color struct {
	R, G, B uint8
	A       float64
}

func (c Color) String() string {
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", c.R, c.G, c.B, trimFloat(c.A))
}

func (c Color) withAlpha(a float64) Color {
	c.A = a
	return c
}

func trimFloat(v float64) string {
	s := strings.TrimRight(strconv.FormatFloat(v, 'f', 4, 64), "0")
	s = strings.TrimSuffix(s, ".")
	if s == "" || s == "-" {
		return "0"
	}
	return s
}

// Palette is the colour scheme for one theme. Edge colours take EdgeAlpha
// scaled by the edge's strength.
type Palette struct {
	Point     Color
	Edge      Color
	EdgeAlpha float64
}

var (
	lightPalette = Palette{
		Point:     Color{R: 59, G: 130, B: 246, A: 0.4},
		Edge:      Color{R: 59, G: 130, B: 246},
		EdgeAlpha: 0.15,
	}
	darkPalette = Palette{
		Point:     Color{R: 96, G: 165, B: 250, A: 0.5},
		Edge:      Color{R: 96, G: 165, B: 250},
		EdgeAlpha: 0.2,
	}
)

func PaletteFor(dark bool) Palette {
	if dark {
		return darkPalette
	}
	return lightPalette
}

const lineWidth = 1.0

// Surface is a 2D drawing context.
type Surface interface {
	Clear(width, height float64)
	FillCircle(center Vec, radius float64, c Color)
	StrokeLine(from, to Vec, c Color, width float64)
}

// Draw renders the current points and edges onto s. The theme is sampled
// here, every call. A nil surface draws nothing.
func (f *Field) Draw(s Surface) {
	if s == nil || f.state != Running {
		return
	}
	pal := PaletteFor(f.theme.IsDark())

	s.Clear(f.width, f.height)
	for _, p := range f.points {
		s.FillCircle(p.Pos, p.Radius, pal.Point)
	}
	for _, e := range f.Edges() {
		s.StrokeLine(f.points[e.I].Pos, f.points[e.J].Pos, pal.Edge.withAlpha(pal.EdgeAlpha*e.Strength), lineWidth)
	}
}

type Circle struct {
	Center Vec     `json:"c"`
	Radius float64 `json:"r"`
	Color  string  `json:"fill"`
}

type Line struct {
	From  Vec     `json:"a"`
	To    Vec     `json:"b"`
	Color string  `json:"stroke"`
	Width float64 `json:"w"`
}

// Frame is one recorded frame, ready to be serialised to a client.
type Frame struct {
	Seq     uint64   `json:"seq"`
	Width   float64  `json:"width"`
	Height  float64  `json:"height"`
	Circles []Circle `json:"circles"`
	Lines   []Line   `json:"lines"`
}

// Recorder is a Surface that captures draw calls into a Frame.
type Recorder struct {
	frame Frame
	seq   uint64
}

func (r *Recorder) Clear(width, height float64) {
	r.seq++
	r.frame = Frame{
		Seq:     r.seq,
		Width:   width,
		Height:  height,
		Circles: r.frame.Circles[:0],
		Lines:   r.frame.Lines[:0],
	}
}

func (r *Recorder) FillCircle(center Vec, radius float64, c Color) {
	r.frame.Circles = append(r.frame.Circles, Circle{Center: center, Radius: radius, Color: c.String()})
}

func (r *Recorder) StrokeLine(from, to Vec, c Color, width float64) {
	r.frame.Lines = append(r.frame.Lines, Line{From: from, To: to, Color: c.String(), Width: width})
}

// Frame returns the last recorded frame. Its slices are reused by the next
// Clear, so callers that keep it must copy.
func (r *Recorder) Frame() Frame { return r.frame }

// Grid is a Surface that rasterises a frame into a character grid.
type Grid struct {
	cols, rows int
	sx, sy     float64
	cells      [][]rune
}

func NewGrid(cols, rows int) *Grid {
	g := &Grid{cols: cols, rows: rows}
	g.cells = make([][]rune, rows)
	for i := range g.cells {
		g.cells[i] = make([]rune, cols)
	}
	return g
}

func (g *Grid) Clear(width, height float64) {
	g.sx = float64(g.cols) / math.Max(width, 1)
	g.sy = float64(g.rows) / math.Max(height, 1)
	for _, row := range g.cells {
		for i := range row {
			row[i] = ' '
		}
	}
}

func (g *Grid) set(x, y float64, r rune, override bool) {
	col, row := int(x*g.sx), int(y*g.sy)
	if col < 0 || row < 0 || col >= g.cols || row >= g.rows {
		return
	}
	if override || g.cells[row][col] == ' ' {
		g.cells[row][col] = r
	}
}

func (g *Grid) FillCircle(center Vec, _ float64, _ Color) {
	g.set(center.X, center.Y, '●', true)
}

func (g *Grid) StrokeLine(from, to Vec, c Color, _ float64) {
	dx := (to.X - from.X) * g.sx
	dy := (to.Y - from.Y) * g.sy
	steps := int(math.Max(math.Abs(dx), math.Abs(dy)))
	if steps == 0 {
		return
	}
	mark := '·'
	if c.A >= 0.1 {
		mark = '•'
	}
	for i := 1; i < steps; i++ {
		t := float64(i) / float64(steps)
		g.set(from.X+(to.X-from.X)*t, from.Y+(to.Y-from.Y)*t, mark, false)
	}
}

func (g *Grid) String() string {
	var b strings.Builder
	for i, row := range g.cells {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(string(row))
	}
	return b.String()
}
