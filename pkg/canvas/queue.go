// Copyright (c) 2022 Stephan Lukits. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package canvas

import (
	"context"
	"sync"
)

// queue is an unbounded FIFO of events with a single consumer.  Pushing
// never blocks.
type queue struct {
	mutex  sync.Mutex
	ee     []Event
	signal chan struct{}
}

func newQueue() *queue {
	return &queue{signal: make(chan struct{}, 1)}
}

func (q *queue) push(e Event) {
	q.mutex.Lock()
	q.ee = append(q.ee, e)
	q.mutex.Unlock()
	select {
	case q.signal <- struct{}{}:
	default:
	}
}

func (q *queue) len() int {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	return len(q.ee)
}

func (q *queue) tryPop() (Event, bool) {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	if len(q.ee) == 0 {
		return nil, false
	}
	e := q.ee[0]
	q.ee[0] = nil
	q.ee = q.ee[1:]
	return e, true
}

// pop blocks until an event is available, given context is done or
// given closed channel is closed.
func (q *queue) pop(ctx context.Context, closed <-chan struct{}) (
	Event, error,
) {
	for {
		select {
		case <-closed:
			return nil, ErrClosed
		default:
		}
		if e, ok := q.tryPop(); ok {
			return e, nil
		}
		select {
		case <-q.signal:
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-closed:
			return nil, ErrClosed
		}
	}
}

// drain removes and returns all queued events.
func (q *queue) drain() []Event {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	ee := q.ee
	q.ee = nil
	return ee
}
