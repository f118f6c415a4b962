// Copyright (c) 2022 Stephan Lukits. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package canvas_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/slukits/gounit"
	"github.com/slukits/tiles"
	"github.com/slukits/tiles/pkg/canvas"
)

// ScreenFactory mocks up tcell's screen creation errors.
type ScreenFactory struct {
	Fail, FailInit bool
}

func (f *ScreenFactory) NewScreen() (tcell.Screen, error) {
	if f.Fail {
		return nil, errors.New("screen factory mock: creation failed")
	}
	if f.FailInit {
		return tcell.NewSimulationScreen("no-such-charset"), nil
	}
	return tcell.NewSimulationScreen("UTF-8"), nil
}

func (f *ScreenFactory) NewSimulationScreen(s string) tcell.SimulationScreen {
	if f.FailInit {
		return tcell.NewSimulationScreen("no-such-charset")
	}
	return tcell.NewSimulationScreen(s)
}

// recv receives the next event of given canvas failing given test if
// none arrives within a second.
func recv(t *gounit.T, c *canvas.Canvas) canvas.Event {
	t.GoT().Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	ev, err := c.Recv(ctx)
	t.FatalOn(err)
	return ev
}

// acks records the acknowledgements of events.
type acks struct {
	mutex sync.Mutex
	ll    []string
}

func (a *acks) listener(name string) func(bool) {
	return func(ok bool) {
		a.mutex.Lock()
		defer a.mutex.Unlock()
		a.ll = append(a.ll, fmt.Sprintf("%s:%v", name, ok))
	}
}

func (a *acks) String() string {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	return fmt.Sprint(a.ll)
}

// peerMock records the values and broadcasts reported to a peer.
type peerMock struct {
	mutex      sync.Mutex
	values     []string
	broadcasts []string
}

func (p *peerMock) Value(
	label string, id tiles.ComponentID, value json.RawMessage,
) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.values = append(p.values,
		fmt.Sprintf("%s/%s=%s", label, id, value))
}

func (p *peerMock) Broadcast(tag string, value json.RawMessage) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.broadcasts = append(p.broadcasts, fmt.Sprintf("%s=%s", tag, value))
}

func (p *peerMock) Values() string {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return fmt.Sprint(p.values)
}

func (p *peerMock) Broadcasts() string {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return fmt.Sprint(p.broadcasts)
}
