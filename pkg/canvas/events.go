// Copyright (c) 2022 Stephan Lukits. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package canvas

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/slukits/tiles"
)

// Event is reported by [Canvas.Recv].  Its receiver acknowledges it
// by calling Done once it is done with it.
type Event interface {
	Done(ok bool)
}

// Ack runs an acknowledgement at most once.  It is embedded by every
// event type; the zero value acknowledges into the void.
type Ack struct {
	once  sync.Once
	mutex sync.Mutex
	fn    func(ok bool)
}

// OnDone sets the listener which is called by the first Done call.
func (a *Ack) OnDone(listener func(ok bool)) {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	a.fn = listener
}

// Done reports to a set listener if the event was handled successfully.
// Only the first call has an effect.
func (a *Ack) Done(ok bool) {
	a.once.Do(func() {
		a.mutex.Lock()
		fn := a.fn
		a.mutex.Unlock()
		if fn != nil {
			fn(ok)
		}
	})
}

// Message is a tagged payload sent by a component.
type Message struct {
	Ack
	Tag     string
	Content json.RawMessage
	Sender  tiles.ComponentID
}

// NewMessage creates a message whose acknowledgement is reported to
// given listener which may be nil.
func NewMessage(
	tag string, content []byte, sender tiles.ComponentID,
	listener func(ok bool),
) *Message {
	m := &Message{Tag: tag, Content: content, Sender: sender}
	m.OnDone(listener)
	return m
}

func (m *Message) String() string {
	return fmt.Sprintf("message[%s from %q]", m.Tag, m.Sender)
}

// Resize reports the new size of the terminal.
type Resize struct {
	Ack
	Width, Height uint32
}

func (r *Resize) String() string {
	return fmt.Sprintf("resize[%dx%d]", r.Width, r.Height)
}

// Focused reports that the terminal gained the focus.
type Focused struct{ Ack }

func (f *Focused) String() string { return "focused" }

// ValueUpdated reports that a watched value was set.
type ValueUpdated struct {
	Ack
	Label   string
	Discrim tiles.ComponentID
	Value   json.RawMessage
}

func (v *ValueUpdated) String() string {
	return fmt.Sprintf("value-updated[%s of %q]", v.Label, v.Discrim)
}

// Key reports a key press which isn't a quit key.
type Key struct {
	Ack
	Key  tcell.Key
	Rune rune
	Mod  tcell.ModMask
}

func (k *Key) String() string {
	return "key[" + tcell.NewEventKey(k.Key, k.Rune, k.Mod).Name() + "]"
}
