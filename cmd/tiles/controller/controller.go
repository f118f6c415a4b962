// Copyright (c) 2022 Stephan Lukits. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

/*
Package controller runs the control loop of a tiles layout.  The loop
applies the layout requests components send, draws the layout's borders,
publishes to each component its allocated rectangle and waits until each
of them confirmed that it rendered into its rectangle.  Only then the
next event is processed:

	ctrl := controller.New(c, nil)
	if err := ctrl.Run(ctx); err != nil {
	    log.Fatal(err)
	}

Events which arrive while confirmations are awaited are deferred and
processed in their order of arrival before any event received later.
*/
package controller

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/slukits/tiles"
	"github.com/slukits/tiles/pkg/canvas"
	"golang.org/x/sync/errgroup"
)

// Message tags of layout requests the controller subscribes to.
const (
	TagAdd    = "!layout-add"
	TagSet    = "!layout-set"
	TagRemove = "!layout-remove"
)

// Value labels the controller communicates through.
const (
	// LabelAllocated holds a component's allocated [tiles.Rect].
	LabelAllocated = "!layout-allocated-rect"
	// LabelConfirm is set by a component once it rendered into its
	// allocated rectangle.
	LabelConfirm = "!layout-render-confirm"
	// LabelReady is broadcast once the controller accepts requests.
	LabelReady = "!layout-ready"
)

// Host provides the event source, value store and screen a controller
// works with.  A [canvas.Canvas] is a Host.
type Host interface {
	Subscribe(tags ...string)
	Recv(ctx context.Context) (canvas.Event, error)
	Broadcast(ctx context.Context, tag string, value any) error
	Watch(ctx context.Context, label string, id tiles.ComponentID) error
	Set(ctx context.Context, label string, id tiles.ComponentID,
		value any) error
	TermSize() (width, height int)
	ClearAll()
	RenderAll()
	tiles.Drawer
}

// Controller owns a layout and reconciles it with its components.
type Controller struct {
	host     Host
	log      *log.Logger
	deferred []canvas.Event

	mu     sync.Mutex
	layout tiles.Layout
	screen tiles.Rect
}

// New creates a controller for given host with an empty layout.  A nil
// logger defaults to log.Default().
func New(h Host, logger *log.Logger) *Controller {
	if logger == nil {
		logger = log.Default()
	}
	return &Controller{host: h, log: logger}
}

// Layout returns a string representation of the current layout.
func (c *Controller) Layout() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.layout.String()
}

// Screen returns the screen rectangle the layout is computed for.
func (c *Controller) Screen() tiles.Rect {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.screen
}

func (c *Controller) setScreen(width, height int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.screen = tiles.Rect{Width: uint32(max(width, 0)),
		Height: uint32(max(height, 0))}
}

// Run announces the controller's readiness and processes events until
// the host is closed or given context is done which is not considered
// an error.  Any other host failure ends Run with a wrapped error.
func (c *Controller) Run(ctx context.Context) error {
	defer func() {
		for _, ev := range c.deferred {
			ev.Done(false)
		}
		c.deferred = nil
	}()
	c.host.Subscribe(TagAdd, TagSet, TagRemove)
	c.setScreen(c.host.TermSize())
	if err := c.host.Broadcast(ctx, LabelReady, nil); err != nil {
		return c.stopped(ctx, fmt.Errorf("controller: ready: %w", err))
	}
	for {
		ev, err := c.next(ctx)
		if err != nil {
			return c.stopped(ctx, fmt.Errorf("controller: recv: %w", err))
		}
		if err := c.process(ctx, ev); err != nil {
			ev.Done(false)
			return c.stopped(ctx, err)
		}
	}
}

func (c *Controller) stopped(ctx context.Context, err error) error {
	if errors.Is(err, canvas.ErrClosed) || ctx.Err() != nil {
		c.log.Printf("controller: stopped: %v", err)
		return nil
	}
	return err
}

// next pops the oldest deferred event or receives a new one.
func (c *Controller) next(ctx context.Context) (canvas.Event, error) {
	if len(c.deferred) > 0 {
		ev := c.deferred[0]
		c.deferred = c.deferred[1:]
		return ev, nil
	}
	return c.host.Recv(ctx)
}

// process handles given event to completion, i.e. a layout changing
// event is acknowledged after all components confirmed their
// rendering.
func (c *Controller) process(ctx context.Context, ev canvas.Event) error {
	switch ev := ev.(type) {
	case *canvas.Message:
		changed, err := c.apply(ctx, ev)
		if err != nil {
			return err
		}
		if !changed {
			ev.Done(true)
			return nil
		}
	case *canvas.Focused:
		c.setScreen(c.host.TermSize())
	case *canvas.Resize:
		c.setScreen(int(ev.Width), int(ev.Height))
	default:
		ev.Done(true)
		return nil
	}
	if err := c.reconcile(ctx); err != nil {
		return err
	}
	ev.Done(true)
	return nil
}

// apply executes the layout request of given message and reports if
// the layout was changed.  Components which enter the layout are
// watched for render confirmations.
func (c *Controller) apply(
	ctx context.Context, m *canvas.Message,
) (bool, error) {
	req, err := tiles.ParseRequest(m.Content)
	if err != nil {
		c.log.Printf("controller: ignore %s from %q: %v", m.Tag, m.Sender,
			err)
		return false, nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	switch r := req.(type) {
	case tiles.Add:
		if !r.Apply(&c.layout) {
			c.log.Printf("controller: ignore add at %v", r.At)
			return false, nil
		}
		if r.Component != nil {
			if err := c.watch(ctx, *r.Component); err != nil {
				return false, err
			}
		}
	case tiles.Remove:
		n, ok := c.layout.Get(r.At)
		if !ok {
			c.log.Printf("controller: ignore remove at %v", r.At)
			return false, nil
		}
		if err := c.watch(ctx, tiles.Components(n)...); err != nil {
			return false, err
		}
		if !r.Apply(&c.layout) {
			c.log.Printf("controller: ignore remove at %v", r.At)
			return false, nil
		}
	case tiles.SetLayout:
		if !r.Apply(&c.layout) {
			c.log.Printf("controller: ignore setlayout at %v", r.At)
			return false, nil
		}
		if err := c.watch(ctx, c.layout.Components()...); err != nil {
			return false, err
		}
	}
	c.log.Printf("controller: %s from %q: %s", m.Tag, m.Sender, &c.layout)
	return true, nil
}

// watch makes the host report render confirmations of given components.
func (c *Controller) watch(
	ctx context.Context, ids ...tiles.ComponentID,
) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, id := range ids {
		id := id
		g.Go(func() error {
			if err := c.host.Watch(ctx, LabelConfirm, id); err != nil {
				return fmt.Errorf("controller: watch %q: %w", id, err)
			}
			return nil
		})
	}
	return g.Wait()
}

// reconcile redraws the layout, publishes the allocated rectangles and
// waits for the render confirmations of their components.
func (c *Controller) reconcile(ctx context.Context) error {
	c.mu.Lock()
	c.host.ClearAll()
	aa := c.layout.Areas(c.screen, c.host)
	c.host.RenderAll()
	c.mu.Unlock()

	g, gctx := errgroup.WithContext(ctx)
	unconfirmed := map[tiles.ComponentID]bool{}
	for _, a := range aa {
		a := a
		unconfirmed[a.Component] = true
		g.Go(func() error {
			err := c.host.Set(gctx, LabelAllocated, a.Component, a.Rect)
			if err != nil {
				return fmt.Errorf("controller: publish %s: %w", a, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return c.awaitConfirmations(ctx, unconfirmed)
}

// awaitConfirmations receives events until each of given components
// confirmed its rendering.  Other events are deferred.
func (c *Controller) awaitConfirmations(
	ctx context.Context, unconfirmed map[tiles.ComponentID]bool,
) error {
	for len(unconfirmed) > 0 {
		ev, err := c.host.Recv(ctx)
		if err != nil {
			return fmt.Errorf("controller: await confirmation: %w", err)
		}
		v, ok := ev.(*canvas.ValueUpdated)
		if ok && v.Label == LabelConfirm && unconfirmed[v.Discrim] {
			delete(unconfirmed, v.Discrim)
			ev.Done(true)
			continue
		}
		c.deferred = append(c.deferred, ev)
	}
	return nil
}
