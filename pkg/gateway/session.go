// Copyright (c) 2022 Stephan Lukits. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/slukits/tiles"
	"github.com/slukits/tiles/pkg/canvas"
)

const (
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingPeriod   = 54 * time.Second
	maxFrameSize = 1 << 20
	sendBuffer   = 256
)

// session is a connected component.  It is a [canvas.Peer] of the
// gateway's canvas.
type session struct {
	id     tiles.ComponentID
	conn   *websocket.Conn
	server *Server
	detach func()
	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	send   chan []byte
	closed bool
}

func newSession(
	id tiles.ComponentID, conn *websocket.Conn, s *Server,
) *session {
	ctx, cancel := context.WithCancel(context.Background())
	ss := &session{
		id:     id,
		conn:   conn,
		server: s,
		ctx:    ctx,
		cancel: cancel,
		send:   make(chan []byte, sendBuffer),
	}
	ss.detach = s.canvas.Attach(ss)
	return ss
}

// Value sends a value frame.
func (ss *session) Value(
	label string, id tiles.ComponentID, value json.RawMessage,
) {
	ss.enqueue(Frame{Type: FrameValue, Label: label, Discrim: id,
		Value: value})
}

// Broadcast sends a broadcast frame.
func (ss *session) Broadcast(tag string, value json.RawMessage) {
	ss.enqueue(Frame{Type: FrameBroadcast, Tag: tag, Value: value})
}

// enqueue hands given frame to the write pump.  Frames to a closed
// session are discarded, frames to a session whose send buffer is full
// are dropped.
func (ss *session) enqueue(f Frame) {
	bb, err := json.Marshal(f)
	if err != nil {
		ss.server.logf("encode %s frame for %q: %v", f.Type, ss.id, err)
		return
	}
	ss.mu.Lock()
	defer ss.mu.Unlock()
	if ss.closed {
		return
	}
	select {
	case ss.send <- bb:
	default:
		ss.server.logf("dropped %s frame for %q: send buffer full",
			f.Type, ss.id)
	}
}

func (ss *session) close() {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	if ss.closed {
		return
	}
	ss.closed = true
	ss.cancel()
	close(ss.send)
}

func (ss *session) readPump() {
	defer func() {
		ss.close()
		ss.server.unregister(ss)
		ss.conn.Close()
	}()

	ss.conn.SetReadLimit(maxFrameSize)
	ss.conn.SetReadDeadline(time.Now().Add(pongWait))
	ss.conn.SetPongHandler(func(string) error {
		ss.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		mt, bb, err := ss.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway, websocket.CloseNormalClosure,
				websocket.CloseAbnormalClosure) {
				ss.server.logf("read %q: %v", ss.id, err)
			}
			return
		}
		if mt != websocket.TextMessage {
			continue
		}
		var f Frame
		if err := json.Unmarshal(bb, &f); err != nil {
			ss.enqueue(errorFrame(fmt.Sprintf("malformed frame: %v", err)))
			continue
		}
		ss.handle(f)
	}
}

func (ss *session) handle(f Frame) {
	c := ss.server.canvas
	switch f.Type {
	case FrameMessage:
		if f.Tag == "" {
			ss.enqueue(errorFrame("message frame without tag"))
			return
		}
		seq := f.Seq
		c.Post(canvas.NewMessage(f.Tag, f.Content, ss.id, func(ok bool) {
			ss.enqueue(doneFrame(seq, ok))
		}))
	case FrameWatch:
		if f.Label == "" {
			ss.enqueue(errorFrame("watch frame without label"))
			return
		}
		id := f.Discrim
		if id == "" {
			id = ss.id
		}
		if err := c.WatchFor(ss, f.Label, id); err != nil {
			ss.enqueue(errorFrame(err.Error()))
		}
	case FrameSet:
		if f.Label == "" {
			ss.enqueue(errorFrame("set frame without label"))
			return
		}
		value := f.Value
		if len(value) == 0 {
			value = json.RawMessage("null")
		}
		if err := c.Set(ss.ctx, f.Label, ss.id, value); err != nil {
			ss.enqueue(errorFrame(err.Error()))
		}
	case FrameDraw:
		for _, cell := range f.Cells {
			fg, bg := cell.Colours()
			c.Draw(ss.id, cell.X, cell.Y, cell.Rune(), fg, bg)
		}
	case FrameClear:
		c.Clear(ss.id)
	case FrameRender:
		c.RenderAll()
	default:
		ss.enqueue(errorFrame(fmt.Sprintf("unknown frame type %q", f.Type)))
	}
}

func (ss *session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		ss.conn.Close()
	}()

	for {
		select {
		case bb, ok := <-ss.send:
			ss.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				ss.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := ss.conn.WriteMessage(
				websocket.TextMessage, bb); err != nil {
				return
			}
		case <-ticker.C:
			ss.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := ss.conn.WriteMessage(
				websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
