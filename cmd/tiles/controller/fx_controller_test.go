// Copyright (c) 2022 Stephan Lukits. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package controller_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/slukits/gounit"
	"github.com/slukits/tiles"
	"github.com/slukits/tiles/cmd/tiles/controller"
	"github.com/slukits/tiles/pkg/canvas"
	"golang.org/x/exp/slices"
)

// hostMock is a test canvas recording the watches and publications of
// a controller.  A set watchErr fails watch requests.
type hostMock struct {
	*canvas.Canvas
	published chan tiles.Area

	mu       sync.Mutex
	watched  []string
	watchErr error
}

func (h *hostMock) Watch(
	ctx context.Context, label string, id tiles.ComponentID,
) error {
	h.mu.Lock()
	h.watched = append(h.watched, fmt.Sprintf("%s/%s", label, id))
	err := h.watchErr
	h.mu.Unlock()
	if err != nil {
		return err
	}
	return h.Canvas.Watch(ctx, label, id)
}

func (h *hostMock) Set(
	ctx context.Context, label string, id tiles.ComponentID, value any,
) error {
	if r, ok := value.(tiles.Rect); ok && label == controller.LabelAllocated {
		h.published <- tiles.Area{Rect: r, Component: id}
	}
	return h.Canvas.Set(ctx, label, id, value)
}

// Watched returns the sorted watch requests of the controller.
func (h *hostMock) Watched() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	ww := append([]string{}, h.watched...)
	slices.Sort(ww)
	return fmt.Sprint(ww)
}

func (h *hostMock) failWatch(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.watchErr = err
}

// readyPeer records the broadcasts of a canvas.
type readyPeer struct{ ready chan string }

func (p *readyPeer) Value(string, tiles.ComponentID, json.RawMessage) {}

func (p *readyPeer) Broadcast(tag string, value json.RawMessage) {
	p.ready <- fmt.Sprintf("%s=%s", tag, value)
}

// fixture runs a controller on a test canvas.
type fixture struct {
	t       *gounit.T
	c       *canvas.Canvas
	tt      *canvas.Testing
	host    *hostMock
	ctrl    *controller.Controller
	ready   string
	stopped chan struct{}
	err     error
}

// fxController starts a controller on a test canvas and returns after
// the controller announced its readiness.
func fxController(t *gounit.T) *fixture {
	t.GoT().Helper()
	c, tt := canvas.Test(t.GoT())
	h := &hostMock{Canvas: c, published: make(chan tiles.Area, 64)}
	p := &readyPeer{ready: make(chan string, 1)}
	c.Attach(p)
	fx := &fixture{t: t, c: c, tt: tt, host: h,
		ctrl:    controller.New(h, log.New(io.Discard, "", 0)),
		stopped: make(chan struct{})}
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		defer close(fx.stopped)
		fx.err = fx.ctrl.Run(ctx)
	}()
	t.GoT().Cleanup(func() {
		cancel()
		<-fx.stopped
	})
	select {
	case fx.ready = <-p.ready:
	case <-time.After(time.Second):
		t.Fatal("fx: controller not ready within a second")
	}
	return fx
}

// post posts a message with given tag and request and returns a
// channel reporting its acknowledgement.
func (fx *fixture) post(tag string, request any) chan bool {
	fx.t.GoT().Helper()
	ack := make(chan bool, 1)
	fx.c.Post(canvas.NewMessage(tag, fx.content(request), "test",
		func(ok bool) { ack <- ok }))
	return ack
}

// content returns given string request as is and json-encodes any other.
func (fx *fixture) content(request any) []byte {
	fx.t.GoT().Helper()
	if r, ok := request.(string); ok {
		return []byte(r)
	}
	bb, err := json.Marshal(request)
	fx.t.FatalOn(err)
	return bb
}

// postAs posts like post but reports given name to given recorder once
// the message was acknowledged.
func (fx *fixture) postAs(
	acks chan string, name, tag string, request any,
) {
	fx.t.GoT().Helper()
	fx.c.Post(canvas.NewMessage(tag, fx.content(request), "test",
		func(ok bool) { acks <- fmt.Sprintf("%s:%v", name, ok) }))
}

// ackOrder waits for n acknowledgements of given recorder and returns
// them in the order they arrived.
func (fx *fixture) ackOrder(acks chan string, n int) string {
	fx.t.GoT().Helper()
	aa := []string{}
	for i := 0; i < n; i++ {
		select {
		case a := <-acks:
			aa = append(aa, a)
		case <-time.After(time.Second):
			fx.t.Fatalf("fx: acknowledgement %d of %d missing", i+1, n)
		}
	}
	return fmt.Sprint(aa)
}

// acked waits for given acknowledgement failing the test if it doesn't
// arrive within a second.
func (fx *fixture) acked(ack chan bool) bool {
	fx.t.GoT().Helper()
	select {
	case ok := <-ack:
		return ok
	case <-time.After(time.Second):
		fx.t.Fatal("fx: no acknowledgement within a second")
	}
	return false
}

// pending reports true if given acknowledgement doesn't arrive within
// 50 milliseconds.
func (fx *fixture) pending(ack chan bool) bool {
	select {
	case <-ack:
		return false
	case <-time.After(50 * time.Millisecond):
		return true
	}
}

// confirm sets the render confirmations of given components.
func (fx *fixture) confirm(ids ...tiles.ComponentID) {
	fx.t.GoT().Helper()
	for _, id := range ids {
		fx.t.FatalOn(fx.c.Set(context.Background(),
			controller.LabelConfirm, id, true))
	}
}

// publications waits for n allocated rectangle publications and
// returns them sorted.
func (fx *fixture) publications(n int) string {
	fx.t.GoT().Helper()
	aa := []string{}
	for i := 0; i < n; i++ {
		select {
		case a := <-fx.host.published:
			aa = append(aa, a.String())
		case <-time.After(time.Second):
			fx.t.Fatalf("fx: publication %d of %d missing", i+1, n)
		}
	}
	slices.Sort(aa)
	return fmt.Sprint(aa)
}

// nothingPublished reports true if there is no publication within 50
// milliseconds.
func (fx *fixture) nothingPublished() bool {
	select {
	case <-fx.host.published:
		return false
	case <-time.After(50 * time.Millisecond):
		return true
	}
}

// stop waits for the controller's Run to return and reports its error.
func (fx *fixture) stop() error {
	fx.t.GoT().Helper()
	select {
	case <-fx.stopped:
		return fx.err
	case <-time.After(time.Second):
		fx.t.Fatal("fx: controller didn't stop within a second")
	}
	return nil
}

func add(split tiles.Direction, c1 uint32, id string, at ...tiles.Direction) tiles.Add {
	return tiles.Add{
		At:          at,
		Split:       split,
		Constraint1: tiles.Rule(tiles.Length(c1)),
		Constraint2: tiles.Rule(tiles.Max(100)),
		Component:   tiles.Ref(id),
	}
}

// horizontal creates a horizontal split of components a and b where a
// has a width of w.
func horizontal(a, b string, w uint32) *tiles.Horizontal {
	return &tiles.Horizontal{
		Left:            &tiles.Single{Component: tiles.Ref(a)},
		Right:           &tiles.Single{Component: tiles.Ref(b)},
		LeftConstraint:  tiles.Rule(tiles.Length(w)),
		RightConstraint: tiles.Rule(tiles.Max(100)),
	}
}
