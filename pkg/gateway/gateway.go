// Copyright (c) 2022 Stephan Lukits. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

/*
Package gateway connects out-of-process components to a canvas through
websockets.  Each connection is one component session:

	gw := gateway.New(c, nil)
	defer gw.Close()
	http.Handle("/tiles", gw)

A component connects with an optional "id" query parameter naming its
component ID, e.g. ws://127.0.0.1:7878/tiles?id=A; a connection without
id gets a random one.  The gateway greets with a hello frame reporting
the ID, forwards the component's messages to the canvas and reports the
values it watches back to it:

	<- {"type":"hello","discrim":"A"}
	-> {"type":"watch","label":"!layout-allocated-rect"}
	-> {"type":"message","tag":"!layout-add","content":{...},"seq":1}
	<- {"type":"done","seq":1,"ok":true}
	<- {"type":"value","label":"!layout-allocated-rect","discrim":"A",
	    "value":{"x":1,"y":1,"width":10,"height":3}}
	-> {"type":"draw","cells":[{"x":1,"y":1,"char":"a"}]}
	-> {"type":"render"}
	-> {"type":"set","label":"!layout-render-confirm","value":true}

A component's cells are cleared once it disconnects.
*/
package gateway

import (
	"context"
	"errors"
	"log"
	"net/http"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/slukits/tiles"
	"github.com/slukits/tiles/pkg/canvas"
)

// Canvas is the part of a [canvas.Canvas] a gateway needs.
type Canvas interface {
	Post(canvas.Event) bool
	Attach(canvas.Peer) (detach func())
	WatchFor(p canvas.Peer, label string, id tiles.ComponentID) error
	Set(ctx context.Context, label string, id tiles.ComponentID,
		value any) error
	Draw(owner tiles.ComponentID, x, y int, r rune, fg, bg tcell.Color)
	Clear(owner tiles.ComponentID)
	RenderAll()
}

// ErrDuplicate is reported to a connecting component whose ID is in
// use by a connected component.
var ErrDuplicate = errors.New("gateway: component id in use")

// ErrClosed is reported to a component connecting to a closed gateway.
var ErrClosed = errors.New("gateway: closed")

// Server upgrades http requests to component sessions.
type Server struct {
	canvas   Canvas
	upgrader websocket.Upgrader

	mu       sync.RWMutex
	log      *log.Logger
	sessions map[tiles.ComponentID]*session
	closed   bool

	// upgraded is called after a connection was upgraded and before
	// its session is registered.
	upgraded func()
}

// New creates a gateway to given canvas.  The originAllowed function
// validates the Origin header of upgrade requests; requests without
// Origin header are always accepted, with a nil originAllowed only
// those.
func New(c Canvas, originAllowed func(string) bool) *Server {
	return &Server{
		canvas:   c,
		log:      log.Default(),
		sessions: map[tiles.ComponentID]*session{},
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				if originAllowed != nil {
					return originAllowed(origin)
				}
				return false
			},
		},
	}
}

// SetLogger sets the logger connection events and errors are reported
// to.  It defaults to log.Default().
func (s *Server) SetLogger(l *log.Logger) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log = l
}

func (s *Server) logf(format string, args ...interface{}) {
	s.mu.RLock()
	l := s.log
	s.mu.RUnlock()
	l.Printf("[gateway] "+format, args...)
}

// Count returns the number of connected components.
func (s *Server) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// ServeHTTP upgrades given request to a component session.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := tiles.ComponentID(r.URL.Query().Get("id"))
	if id == "" {
		id = tiles.ComponentID(uuid.NewString())
	}
	if err := s.reserve(id); err != nil {
		s.logf("refused %q: %v", id, err)
		status := http.StatusConflict
		if errors.Is(err, ErrClosed) {
			status = http.StatusServiceUnavailable
		}
		http.Error(w, err.Error(), status)
		return
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.release(id)
		s.logf("upgrade %q: %v", id, err)
		return
	}
	if s.upgraded != nil {
		s.upgraded()
	}
	ss := newSession(id, conn, s)
	s.mu.Lock()
	s.sessions[id] = ss
	closed := s.closed
	s.mu.Unlock()
	if closed {
		s.logf("refused %q: %v", id, ErrClosed)
		ss.close()
		go ss.writePump()
		go ss.readPump()
		return
	}
	s.logf("component %q connected", id)

	ss.enqueue(Frame{Type: FrameHello, Discrim: id})
	go ss.writePump()
	go ss.readPump()
}

// reserve claims given id for a new session.
func (s *Server) reserve(id tiles.ComponentID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if _, ok := s.sessions[id]; ok {
		return ErrDuplicate
	}
	s.sessions[id] = nil
	return nil
}

func (s *Server) release(id tiles.ComponentID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// unregister removes given session and its traces from the canvas.
func (s *Server) unregister(ss *session) {
	s.mu.Lock()
	if s.sessions[ss.id] == ss {
		delete(s.sessions, ss.id)
	}
	s.mu.Unlock()
	ss.detach()
	s.canvas.Clear(ss.id)
	s.canvas.RenderAll()
	s.logf("component %q disconnected", ss.id)
}

// Close disconnects all components and refuses new connections.
func (s *Server) Close() {
	s.mu.Lock()
	s.closed = true
	ss := make([]*session, 0, len(s.sessions))
	for _, sn := range s.sessions {
		if sn != nil {
			ss = append(ss, sn)
		}
	}
	s.mu.Unlock()
	for _, sn := range ss {
		sn.close()
	}
}
