// Copyright (c) 2022 Stephan Lukits. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package gateway

import (
	"encoding/json"
	"strings"
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"
	"github.com/slukits/tiles"
)

// Frame types sent by the gateway.
const (
	FrameHello     = "hello"
	FrameValue     = "value"
	FrameBroadcast = "broadcast"
	FrameDone      = "done"
	FrameError     = "error"
)

// Frame types sent by a component.
const (
	FrameMessage = "message"
	FrameWatch   = "watch"
	FrameSet     = "set"
	FrameDraw    = "draw"
	FrameClear   = "clear"
	FrameRender  = "render"
)

// Frame is a JSON text frame exchanged with a component.  Its Type
// determines which of the other fields are set.
type Frame struct {
	Type    string            `json:"type"`
	Discrim tiles.ComponentID `json:"discrim,omitempty"`
	Label   string            `json:"label,omitempty"`
	Tag     string            `json:"tag,omitempty"`
	Value   json.RawMessage   `json:"value,omitempty"`
	Content json.RawMessage   `json:"content,omitempty"`
	Seq     uint64            `json:"seq,omitempty"`
	OK      *bool             `json:"ok,omitempty"`
	Message string            `json:"message,omitempty"`
	Cells   []Cell            `json:"cells,omitempty"`
}

// Cell is a character a component draws at a screen position.  Colours
// are given by their name or #rrggbb code; a missing or unknown colour
// is the terminal's default.
type Cell struct {
	X    int    `json:"x"`
	Y    int    `json:"y"`
	Char string `json:"char"`
	Fg   string `json:"fg,omitempty"`
	Bg   string `json:"bg,omitempty"`
}

// Rune returns the first rune of the cell's char or a blank.
func (c Cell) Rune() rune {
	if c.Char == "" {
		return ' '
	}
	r, _ := utf8.DecodeRuneInString(c.Char)
	return r
}

// Colours returns the cell's foreground and background colour.
func (c Cell) Colours() (fg, bg tcell.Color) {
	return colour(c.Fg), colour(c.Bg)
}

func colour(name string) tcell.Color {
	if name == "" {
		return tcell.ColorDefault
	}
	return tcell.GetColor(strings.ToLower(name))
}

func doneFrame(seq uint64, ok bool) Frame {
	return Frame{Type: FrameDone, Seq: seq, OK: &ok}
}

func errorFrame(msg string) Frame {
	return Frame{Type: FrameError, Message: msg}
}
