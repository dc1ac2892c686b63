// Package theme holds the process-wide light/dark flag. Readers sample it on
// every use instead of caching, so a change shows up on the next frame.
package theme

import (
	"fmt"
	"strings"
	"sync/atomic"
)

const (
	Light = "light"
	Dark  = "dark"
)

type Flag struct {
	dark atomic.Bool
}

func NewFlag(dark bool) *Flag {
	f := &Flag{}
	f.dark.Store(dark)
	return f
}

func (f *Flag) IsDark() bool { return f.dark.Load() }

func (f *Flag) Set(dark bool) { f.dark.Store(dark) }

// Toggle flips the flag and returns the new value.
func (f *Flag) Toggle() bool {
	for {
		old := f.dark.Load()
		if f.dark.CompareAndSwap(old, !old) {
			return !old
		}
	}
}

func (f *Flag) Name() string { return Name(f.IsDark()) }

func Name(dark bool) string {
	if dark {
		return Dark
	}
	return Light
}

// Parse accepts "light" or "dark".
func Parse(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case Dark:
		return true, nil
	case Light:
		return false, nil
	default:
		return false, fmt.Errorf("unknown theme %q (want %q or %q)", s, Light, Dark)
	}
}
