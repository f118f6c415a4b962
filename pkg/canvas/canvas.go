// Copyright (c) 2022 Stephan Lukits. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package canvas provides a tcell backed terminal canvas hosting the
// components of a tiles layout.  A Canvas is an event source, a value
// store and a shared screen:
//
//	c, err := canvas.New()
//	if err != nil {
//	    log.Fatalf("can't open canvas: %v", err)
//	}
//	defer c.Close()
//	c.Subscribe("!layout-add")
//	for {
//	    ev, err := c.Recv(ctx)
//	    if err != nil {
//	        return err // canvas.ErrClosed after ctrl-c or ctrl-d
//	    }
//	    // handle ev
//	    ev.Done(true)
//	}
//
// Terminal events (resize, focus, keys) and posted events are queued
// in an unbounded FIFO which [Canvas.Recv] pops from.  Values set
// through [Canvas.Set] are reported as [ValueUpdated] events if the
// canvas watches them and are forwarded to attached [Peer]s which
// registered for them.  Cells are drawn on behalf of an owner; clearing
// an owner's cells leaves the cells of other owners untouched.
package canvas

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/slukits/ints"
	"github.com/slukits/tiles"
	"golang.org/x/exp/slices"
)

// ErrClosed is returned by operations on a closed canvas.
var ErrClosed = errors.New("canvas: closed")

// LayoutOwner owns the cells drawn through [Canvas.SetCharColoured].
const LayoutOwner tiles.ComponentID = ""

// Canvas is a terminal screen shared by a layout and its components.
// Its methods are safe for concurrent use; [Canvas.Recv] is expected to
// be called by a single consumer.
type Canvas struct {
	lib       tcell.Screen
	queue     *queue
	closed    chan struct{}
	closeOnce sync.Once
	store     *store

	mutex sync.Mutex
	log   *log.Logger
	subs  []string
	owned map[tiles.ComponentID]*ints.Set
	owner map[int]tiles.ComponentID

	// pumped is called after each tcell event was handled.
	pumped func(tcell.Event)
}

// New opens the terminal and starts reporting its events.  It fails if
// tcell can't create or initialize the terminal screen.
func New() (*Canvas, error) {
	lib, err := terminalScreen()
	if err != nil {
		return nil, err
	}
	c := newCanvas(lib)
	go c.pump()
	return c, nil
}

// Sim creates a canvas on a tcell simulation screen which is returned
// alongside.  See [Test] for a canvas with a testing harness.
func Sim() (*Canvas, tcell.SimulationScreen, error) {
	lib, err := simulationScreen()
	if err != nil {
		return nil, nil, err
	}
	c := newCanvas(lib)
	go c.pump()
	return c, lib, nil
}

func newCanvas(lib tcell.Screen) *Canvas {
	return &Canvas{
		lib:    lib,
		queue:  newQueue(),
		closed: make(chan struct{}),
		store:  newStore(),
		log:    log.Default(),
		owned:  map[tiles.ComponentID]*ints.Set{},
		owner:  map[int]tiles.ComponentID{},
	}
}

// SetLogger sets the logger a canvas reports refused and dropped
// events to.  It defaults to log.Default().
func (c *Canvas) SetLogger(l *log.Logger) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.log = l
}

func (c *Canvas) logf(format string, args ...interface{}) {
	c.mutex.Lock()
	l := c.log
	c.mutex.Unlock()
	l.Printf(format, args...)
}

// Close finalizes the screen and acknowledges all pending events
// unsuccessfully.  Blocking operations return [ErrClosed] afterwards.
// Close is idempotent.
func (c *Canvas) Close() {
	c.closeOnce.Do(func() {
		close(c.closed)
		c.mutex.Lock()
		c.lib.Fini()
		c.mutex.Unlock()
		for _, e := range c.queue.drain() {
			e.Done(false)
		}
	})
}

// Closed returns a channel which is closed once the canvas is closed.
func (c *Canvas) Closed() <-chan struct{} { return c.closed }

func (c *Canvas) isClosed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}

// Subscribe adds given message tags to the tags posted messages are
// accepted for.
func (c *Canvas) Subscribe(tags ...string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	for _, t := range tags {
		if slices.Contains(c.subs, t) {
			continue
		}
		c.subs = append(c.subs, t)
	}
}

// IsSubscribed returns true if messages with given tag are accepted.
func (c *Canvas) IsSubscribed(tag string) bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return slices.Contains(c.subs, tag)
}

// Post queues given event for [Canvas.Recv].  A [Message] whose tag is
// not subscribed is refused as is any event posted to a closed canvas;
// a refused event is acknowledged with false and Post returns false.
func (c *Canvas) Post(ev Event) bool {
	if c.isClosed() {
		ev.Done(false)
		return false
	}
	if m, ok := ev.(*Message); ok && !c.IsSubscribed(m.Tag) {
		c.logf("canvas: refused message %s: not subscribed", m.Tag)
		ev.Done(false)
		return false
	}
	c.queue.push(ev)
	return true
}

// Recv blocks until an event is available, given context is done or
// the canvas is closed.
func (c *Canvas) Recv(ctx context.Context) (Event, error) {
	return c.queue.pop(ctx, c.closed)
}

// Pending returns the number of queued events.
func (c *Canvas) Pending() int { return c.queue.len() }

// TermSize returns the current size of the terminal.
func (c *Canvas) TermSize() (width, height int) {
	return c.lib.Size()
}

// SetCharColoured draws given rune at given position on behalf of the
// [LayoutOwner].
func (c *Canvas) SetCharColoured(x, y uint32, r rune, fg, bg tcell.Color) {
	c.Draw(LayoutOwner, int(x), int(y), r, fg, bg)
}

// Draw draws given rune at given position on behalf of given owner.
// Positions outside the screen are ignored.
func (c *Canvas) Draw(
	owner tiles.ComponentID, x, y int, r rune, fg, bg tcell.Color,
) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	w, h := c.lib.Size()
	if x < 0 || y < 0 || x >= w || y >= h {
		return
	}
	idx := y*w + x
	c.lib.SetContent(x, y, r, nil,
		tcell.StyleDefault.Foreground(fg).Background(bg))
	if c.owned[owner] == nil {
		c.owned[owner] = &ints.Set{}
	}
	c.owned[owner].Add(idx)
	c.owner[idx] = owner
}

// Clear blanks all cells currently owned by given owner.
func (c *Canvas) Clear(owner tiles.ComponentID) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	ii, ok := c.owned[owner]
	if !ok {
		return
	}
	delete(c.owned, owner)
	w, _ := c.lib.Size()
	if w == 0 {
		return
	}
	for _, idx := range ii.ToSlice() {
		if o, ok := c.owner[idx]; !ok || o != owner {
			continue
		}
		delete(c.owner, idx)
		c.lib.SetContent(idx%w, idx/w, ' ', nil, tcell.StyleDefault)
	}
}

// ClearAll blanks the cells of the [LayoutOwner].
func (c *Canvas) ClearAll() { c.Clear(LayoutOwner) }

// RenderAll makes all drawn cells visible.
func (c *Canvas) RenderAll() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.isClosed() {
		return
	}
	c.lib.Show()
}

func (c *Canvas) pump() {
	for {
		ev := c.lib.PollEvent()
		if ev == nil {
			return
		}
		c.handle(ev)
		if c.pumped != nil {
			c.pumped(ev)
		}
	}
}

func (c *Canvas) handle(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		w, h := ev.Size()
		c.resize()
		c.queue.push(&Resize{Width: uint32(w), Height: uint32(h)})
	case *tcell.EventFocus:
		if ev.Focused {
			c.queue.push(&Focused{})
		}
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyCtrlC || ev.Key() == tcell.KeyCtrlD {
			c.Close()
			return
		}
		c.queue.push(&Key{Key: ev.Key(), Rune: ev.Rune(),
			Mod: ev.Modifiers()})
	}
}

// resize blanks the screen and forgets all cell ownership since cell
// indices depend on the screen width.
func (c *Canvas) resize() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.owned = map[tiles.ComponentID]*ints.Set{}
	c.owner = map[int]tiles.ComponentID{}
	c.lib.Clear()
	c.lib.Sync()
}
