// Copyright (c) 2022 Stephan Lukits. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package canvas

import (
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"golang.org/x/exp/slices"
)

// Testing augments a canvas created by [Test] with features for
// testing like firing terminal events or getting the current screen
// content as string.  Event firing methods return after the fired event
// was handled by the canvas, i.e. after it was queued for
// [Canvas.Recv] respectively after the canvas was closed by a quit key.
// NOTE do not use a Testing instance concurrently.
type Testing struct {
	c      *Canvas
	lib    tcell.SimulationScreen
	t      *testing.T
	pumped chan tcell.Event

	// Timeout defines how long an event firing method waits for the
	// event being handled.  It defaults to 200ms.
	Timeout time.Duration
}

// Test creates a canvas on a simulation screen of 80x25 cells together
// with its testing harness.  The canvas is closed at the end of given
// test.
func Test(t *testing.T) (*Canvas, *Testing) {
	t.Helper()
	lib, err := simulationScreen()
	if err != nil {
		t.Fatalf("test: init sim: %v", err)
	}
	c := newCanvas(lib)
	tt := &Testing{c: c, lib: lib, t: t,
		pumped:  make(chan tcell.Event, 16),
		Timeout: 200 * time.Millisecond}
	c.pumped = func(ev tcell.Event) {
		select {
		case tt.pumped <- ev:
		default:
		}
	}
	go c.pump()
	t.Cleanup(c.Close)
	return c, tt
}

func (tt *Testing) waitFor(what string) {
	tt.t.Helper()
	select {
	case <-tt.pumped:
	case <-time.After(tt.Timeout):
		tt.t.Fatalf("test: %s: timed out", what)
	}
}

// FireResize resizes the simulation screen and returns after the
// resize event was handled.
func (tt *Testing) FireResize(width, height int) *Canvas {
	tt.t.Helper()
	tt.lib.SetSize(width, height)
	if err := tt.lib.PostEvent(
		tcell.NewEventResize(width, height)); err != nil {
		tt.t.Fatalf("test: fire resize: %v", err)
	}
	tt.waitFor("fire resize")
	return tt.c
}

// FireKey injects given key press and returns after it was handled.
// Note ctrl-c and ctrl-d close the canvas.
func (tt *Testing) FireKey(k tcell.Key, r rune, m ...tcell.ModMask) *Canvas {
	tt.t.Helper()
	mod := tcell.ModNone
	if len(m) > 0 {
		mod = m[0]
	}
	tt.lib.InjectKey(k, r, mod)
	tt.waitFor("fire key")
	return tt.c
}

// FireFocus posts a gained-focus event and returns after it was
// handled.
func (tt *Testing) FireFocus() *Canvas {
	tt.t.Helper()
	if err := tt.lib.PostEvent(tcell.NewEventFocus(true)); err != nil {
		tt.t.Fatalf("test: fire focus: %v", err)
	}
	tt.waitFor("fire focus")
	return tt.c
}

// Cell returns the rune and style displayed at given position.
func (tt *Testing) Cell(x, y int) (rune, tcell.Style) {
	cc, w, h := tt.contents()
	if x < 0 || y < 0 || x >= w || y >= h {
		return 0, tcell.StyleDefault
	}
	c := cc[cellIdx(x, y, w)]
	if len(c.Runes) == 0 {
		return ' ', c.Style
	}
	return c.Runes[0], c.Style
}

// String returns the test-screen's content as string with line breaks
// where a new screen line starts.  Empty lines at the end of the screen
// are not returned and empty cells at the end of a line are trimmed.
// I.e.
//
//	+-------------+
//	|             |
//	|   content   |   => "content"
//	|             |
//	+-------------+
func (tt *Testing) String() string {
	b, w, h := tt.contents()
	sb := &strings.Builder{}
	for i := 0; i < h; i++ {
		line := ""
		for j := 0; j < w; j++ {
			cell := b[cellIdx(j, i, w)]
			if len(cell.Runes) == 0 {
				line += " "
				continue
			}
			line += string(cell.Runes[0])
		}
		if len(strings.TrimSpace(line)) == 0 {
			sb.WriteString("\n")
			continue
		}
		sb.WriteString(strings.TrimRight(
			line, " \t\r") + "\n")
	}
	return strings.TrimLeft(
		strings.TrimRight(sb.String(), " \t\r\n"), "\n")
}

// contents returns a copy of the simulation screen's cells taken while
// no canvas method writes to the screen.
func (tt *Testing) contents() ([]tcell.SimCell, int, int) {
	tt.c.mutex.Lock()
	defer tt.c.mutex.Unlock()
	cc, w, h := tt.lib.GetContents()
	return slices.Clone(cc), w, h
}

func cellIdx(x, y, w int) int {
	return y*w + x
}
