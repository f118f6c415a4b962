// Copyright (c) 2022 Stephan Lukits. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package gateway_test

import (
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	. "github.com/slukits/gounit"
	"github.com/slukits/tiles/pkg/canvas"
	"github.com/slukits/tiles/pkg/gateway"
)

// fixture bundles a test canvas with a gateway served to it.
type fixture struct {
	c   *canvas.Canvas
	tt  *canvas.Testing
	gw  *gateway.Server
	srv *httptest.Server
}

func fxGateway(t *T) *fixture {
	c, tt := canvas.Test(t.GoT())
	gw := gateway.New(c, nil)
	gw.SetLogger(log.New(io.Discard, "", 0))
	srv := httptest.NewServer(gw)
	t.GoT().Cleanup(func() {
		gw.Close()
		srv.Close()
	})
	return &fixture{c: c, tt: tt, gw: gw, srv: srv}
}

func (fx *fixture) url(id string) string {
	u := "ws" + strings.TrimPrefix(fx.srv.URL, "http") + "/"
	if id == "" {
		return u
	}
	return u + "?id=" + url.QueryEscape(id)
}

// client is a component connected to a fixture's gateway.
type client struct {
	t      *T
	conn   *websocket.Conn
	frames chan gateway.Frame
}

// dial connects a component with given id to given fixture's gateway
// and consumes the hello frame.
func (fx *fixture) dial(t *T, id string) (*client, gateway.Frame) {
	t.GoT().Helper()
	conn, _, err := websocket.DefaultDialer.Dial(fx.url(id), nil)
	t.FatalOn(err)
	cl := &client{t: t, conn: conn, frames: make(chan gateway.Frame, 64)}
	go func() {
		defer close(cl.frames)
		for {
			var f gateway.Frame
			if err := conn.ReadJSON(&f); err != nil {
				return
			}
			cl.frames <- f
		}
	}()
	t.GoT().Cleanup(func() { conn.Close() })
	return cl, cl.next()
}

// dialStatus tries to connect and returns the http status of the
// refused handshake.
func (fx *fixture) dialStatus(t *T, id string) int {
	conn, resp, err := websocket.DefaultDialer.Dial(fx.url(id), nil)
	if err == nil {
		conn.Close()
		return http.StatusSwitchingProtocols
	}
	if resp == nil {
		t.Fatalf("dial: %v", err)
	}
	return resp.StatusCode
}

func (cl *client) send(frame string) {
	cl.t.GoT().Helper()
	t := cl.t
	t.FatalOn(cl.conn.WriteMessage(websocket.TextMessage, []byte(frame)))
}

// next returns the next frame sent by the gateway failing the test if
// none arrives within a second.
func (cl *client) next() gateway.Frame {
	cl.t.GoT().Helper()
	select {
	case f, ok := <-cl.frames:
		if !ok {
			cl.t.Fatal("client: connection closed")
		}
		return f
	case <-time.After(time.Second):
		cl.t.Fatal("client: no frame within a second")
	}
	return gateway.Frame{}
}

// sync returns after all previously sent frames were handled by the
// gateway returning the frames it sent in the mean time.  It leverages
// that unknown frame types are answered with an error frame.
func (cl *client) sync() []gateway.Frame {
	cl.t.GoT().Helper()
	cl.send(`{"type":"sync"}`)
	ff := []gateway.Frame{}
	for {
		f := cl.next()
		if f.Type == gateway.FrameError &&
			strings.Contains(f.Message, `"sync"`) {
			return ff
		}
		ff = append(ff, f)
	}
}

func within(t *T, cond func() bool) bool {
	return t.Within((&TimeStepper{}).SetDuration(time.Second), cond)
}
