package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"journeylens/api/particles"
	"journeylens/api/theme"
)

var fieldOpts struct {
	width, height float64
	cols, rows    int
	frames        int
	count         int
	seed          uint64
	dark          bool
	animate       bool
}

var fieldCmd = &cobra.Command{
	Use:   "field",
	Short: "Run the background particle field headless and print it",
	Long: `Simulates the particle field for --frames steps on a --width x --height
host and prints the result as a character grid. With --animate, redraws
each frame at 60 fps instead.`,
	Args: cobra.NoArgs,
	RunE: runField,
}

func init() {
	f := fieldCmd.Flags()
	f.Float64Var(&fieldOpts.width, "width", 1280, "host viewport width in px")
	f.Float64Var(&fieldOpts.height, "height", 720, "host viewport height in px")
	f.IntVar(&fieldOpts.cols, "cols", 80, "grid columns")
	f.IntVar(&fieldOpts.rows, "rows", 24, "grid rows")
	f.IntVar(&fieldOpts.frames, "frames", 120, "frames to simulate")
	f.IntVar(&fieldOpts.count, "particles", particles.DefaultCount, "number of particles")
	f.Uint64Var(&fieldOpts.seed, "seed", 0, "seed for particle placement (0 picks one)")
	f.BoolVar(&fieldOpts.dark, "dark", false, "use the dark palette")
	f.BoolVar(&fieldOpts.animate, "animate", false, "redraw every frame")
}

func newCLIField(seed uint64, count int, dark bool) *particles.Field {
	opts := []particles.Option{particles.WithCount(count), particles.WithTheme(theme.NewFlag(dark))}
	if seed != 0 {
		opts = append(opts, particles.WithRand(rand.New(rand.NewPCG(seed, seed))))
	}
	return particles.NewField(opts...)
}

// simulateField steps a fresh field frames times and returns the last grid.
func simulateField(field *particles.Field, host particles.Size, grid *particles.Grid, frames int) error {
	if err := field.Init(host); err != nil {
		return err
	}
	defer field.Stop()
	for i := 0; i < frames; i++ {
		field.Step()
	}
	field.Draw(grid)
	return nil
}

func runField(cmd *cobra.Command, args []string) error {
	if fieldOpts.cols <= 0 || fieldOpts.rows <= 0 {
		return errors.New("--cols and --rows must be positive")
	}
	host := particles.Size{ViewportWidth: fieldOpts.width, ViewportHeight: fieldOpts.height}
	field := newCLIField(fieldOpts.seed, fieldOpts.count, fieldOpts.dark)
	grid := particles.NewGrid(fieldOpts.cols, fieldOpts.rows)
	style := NewStyles(fieldOpts.dark).Field
	out := cmd.OutOrStdout()

	if !fieldOpts.animate {
		if err := simulateField(field, host, grid, fieldOpts.frames); err != nil {
			return fmt.Errorf("particle field: %w", err)
		}
		fmt.Fprintln(out, style.Render(grid.String()))
		return nil
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	loop := particles.NewLoop(field, grid, particles.LoopConfig{
		Host:     host,
		Interval: particles.DefaultFrameInterval,
		Logger:   logger,
		OnFrame: func(seq uint64) error {
			// Move the cursor home and repaint.
			fmt.Fprint(out, "\x1b[H\x1b[2J"+style.Render(grid.String())+"\n")
			if int(seq) >= fieldOpts.frames {
				cancel()
			}
			return nil
		},
	})
	start := time.Now()
	if err := loop.Run(ctx); err != nil {
		return err
	}
	logger.Debug("particle field finished", zap.Duration("took", time.Since(start)))
	return nil
}
