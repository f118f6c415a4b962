// Copyright (c) 2022 Stephan Lukits. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package canvas

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/slukits/tiles"
	"golang.org/x/exp/maps"
)

// Peer is a remote participant of a canvas, e.g. a component connected
// through a gateway.  Its methods are called synchronously and must not
// block.
type Peer interface {
	// Value reports that a value the peer watches was set.
	Value(label string, id tiles.ComponentID, value json.RawMessage)
	// Broadcast reports a broadcast notification.
	Broadcast(tag string, value json.RawMessage)
}

type valueKey struct {
	label string
	id    tiles.ComponentID
}

// store holds the values set on a canvas and who watches them.
type store struct {
	mutex   sync.Mutex
	values  map[valueKey]json.RawMessage
	watched map[valueKey]bool
	peers   map[Peer]map[valueKey]bool
}

func newStore() *store {
	return &store{
		values:  map[valueKey]json.RawMessage{},
		watched: map[valueKey]bool{},
		peers:   map[Peer]map[valueKey]bool{},
	}
}

// ErrEncodeFmt reports a value which can't be JSON encoded.
var ErrEncodeFmt = "canvas: encode %s: %w"

// Watch makes the canvas report a [ValueUpdated] event each time the
// value of given label and component is set.  Watch is idempotent.
func (c *Canvas) Watch(
	ctx context.Context, label string, id tiles.ComponentID,
) error {
	if err := c.usable(ctx); err != nil {
		return err
	}
	c.store.mutex.Lock()
	defer c.store.mutex.Unlock()
	c.store.watched[valueKey{label: label, id: id}] = true
	return nil
}

// IsWatched returns true if the canvas watches given label and
// component.
func (c *Canvas) IsWatched(label string, id tiles.ComponentID) bool {
	c.store.mutex.Lock()
	defer c.store.mutex.Unlock()
	return c.store.watched[valueKey{label: label, id: id}]
}

// Set stores the JSON encoding of given value under given label and
// component and notifies its watchers.
func (c *Canvas) Set(
	ctx context.Context, label string, id tiles.ComponentID, value any,
) error {
	if err := c.usable(ctx); err != nil {
		return err
	}
	bb, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf(ErrEncodeFmt, label, err)
	}
	k := valueKey{label: label, id: id}
	c.store.mutex.Lock()
	c.store.values[k] = bb
	watched := c.store.watched[k]
	peers := []Peer{}
	for p, kk := range c.store.peers {
		if kk[k] {
			peers = append(peers, p)
		}
	}
	c.store.mutex.Unlock()

	if watched {
		c.queue.push(&ValueUpdated{Label: label, Discrim: id, Value: bb})
	}
	for _, p := range peers {
		p.Value(label, id, bb)
	}
	return nil
}

// Value returns the JSON encoded value stored under given label and
// component.
func (c *Canvas) Value(
	label string, id tiles.ComponentID,
) (json.RawMessage, bool) {
	c.store.mutex.Lock()
	defer c.store.mutex.Unlock()
	v, ok := c.store.values[valueKey{label: label, id: id}]
	return v, ok
}

// Attach registers given peer for broadcasts; the returned function
// detaches it again, dropping all its watches.
func (c *Canvas) Attach(p Peer) (detach func()) {
	c.store.mutex.Lock()
	defer c.store.mutex.Unlock()
	if _, ok := c.store.peers[p]; !ok {
		c.store.peers[p] = map[valueKey]bool{}
	}
	return func() {
		c.store.mutex.Lock()
		defer c.store.mutex.Unlock()
		delete(c.store.peers, p)
	}
}

// WatchFor makes the canvas report values set under given label and
// component to given attached peer.  It fails if p is not attached.
func (c *Canvas) WatchFor(p Peer, label string, id tiles.ComponentID) error {
	c.store.mutex.Lock()
	defer c.store.mutex.Unlock()
	kk, ok := c.store.peers[p]
	if !ok {
		return ErrDetached
	}
	kk[valueKey{label: label, id: id}] = true
	return nil
}

// ErrDetached is returned by [Canvas.WatchFor] for a peer which is not
// attached.
var ErrDetached = errors.New("canvas: peer not attached")

// Broadcast reports the JSON encoding of given value under given tag to
// all attached peers.
func (c *Canvas) Broadcast(ctx context.Context, tag string, value any) error {
	if err := c.usable(ctx); err != nil {
		return err
	}
	bb, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf(ErrEncodeFmt, tag, err)
	}
	c.store.mutex.Lock()
	peers := maps.Keys(c.store.peers)
	c.store.mutex.Unlock()
	for _, p := range peers {
		p.Broadcast(tag, bb)
	}
	return nil
}

func (c *Canvas) usable(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.isClosed() {
		return ErrClosed
	}
	return nil
}
