// Copyright (c) 2022 Stephan Lukits. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tiles

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
)

// Rect is a screen rectangle in cells.
type Rect struct {
	X      uint32 `json:"x"`
	Y      uint32 `json:"y"`
	Width  uint32 `json:"width"`
	Height uint32 `json:"height"`
}

func (r Rect) String() string {
	return fmt.Sprintf("(%d,%d %dx%d)", r.X, r.Y, r.Width, r.Height)
}

// Area is the rectangle allocated to a component.
type Area struct {
	Rect      Rect
	Component ComponentID
}

func (a Area) String() string {
	return string(a.Component) + a.Rect.String()
}

// Drawer is the capability to set a coloured character at a screen
// position; it is what [Layout.Areas] draws borders with.
type Drawer interface {
	SetCharColoured(x, y uint32, r rune, fg, bg tcell.Color)
}

// Areas computes the rectangle of every component of l within given
// screen rectangle and draws the borders of bordered leaves through d.
// d may be nil in which case nothing is drawn.  Areas are returned in
// left/top first order.  A bordered leaf whose region is too small for
// an interior gets the zero rectangle.
func (l *Layout) Areas(screen Rect, d Drawer) []Area {
	return areas(l.Root(), screen, d, nil)
}

func areas(n Node, screen Rect, d Drawer, out []Area) []Area {
	switch n := n.(type) {
	case *Single:
		return singleAreas(n, screen, d, out)
	case *Vertical:
		top := min(n.TopConstraint.Eval(screen.Height), screen.Height)
		bottom := min(n.BottomConstraint.Eval(screen.Height),
			screen.Height-top)
		out = areas(orNone(n.Top), Rect{X: screen.X, Y: screen.Y,
			Width: screen.Width, Height: top}, d, out)
		return areas(orNone(n.Bottom), Rect{X: screen.X, Y: screen.Y + top,
			Width: screen.Width, Height: bottom}, d, out)
	case *Horizontal:
		left := min(n.LeftConstraint.Eval(screen.Width), screen.Width)
		right := min(n.RightConstraint.Eval(screen.Width),
			screen.Width-left)
		out = areas(orNone(n.Left), Rect{X: screen.X, Y: screen.Y,
			Width: left, Height: screen.Height}, d, out)
		return areas(orNone(n.Right), Rect{X: screen.X + left, Y: screen.Y,
			Width: right, Height: screen.Height}, d, out)
	}
	return out
}

func singleAreas(n *Single, screen Rect, d Drawer, out []Area) []Area {
	if n.Border == nil {
		if n.Component != nil {
			out = append(out, Area{Rect: screen, Component: *n.Component})
		}
		return out
	}
	if screen.Width <= 1 || screen.Height <= 1 {
		if n.Component != nil {
			out = append(out, Area{Component: *n.Component})
		}
		return out
	}
	if d != nil {
		drawBorder(*n.Border, screen, d)
	}
	if n.Component == nil {
		return out
	}
	if screen.Width <= 2 || screen.Height <= 2 {
		return append(out, Area{Component: *n.Component})
	}
	return append(out, Area{Component: *n.Component, Rect: Rect{
		X: screen.X + 1, Y: screen.Y + 1,
		Width: screen.Width - 2, Height: screen.Height - 2,
	}})
}

// drawBorder draws the perimeter of given rectangle which must be at
// least two cells wide and high.
func drawBorder(b Border, r Rect, d Drawer) {
	gg, fg, bg := b.Glyphs(), b.Colour, tcell.ColorReset
	right, bottom := r.X+r.Width-1, r.Y+r.Height-1
	d.SetCharColoured(r.X, r.Y, gg.TopLeft, fg, bg)
	d.SetCharColoured(right, r.Y, gg.TopRight, fg, bg)
	d.SetCharColoured(right, bottom, gg.BottomRight, fg, bg)
	d.SetCharColoured(r.X, bottom, gg.BottomLeft, fg, bg)
	for x := r.X + 1; x < right; x++ {
		d.SetCharColoured(x, r.Y, gg.Top, fg, bg)
		d.SetCharColoured(x, bottom, gg.Bottom, fg, bg)
	}
	for y := r.Y + 1; y < bottom; y++ {
		d.SetCharColoured(r.X, y, gg.Left, fg, bg)
		d.SetCharColoured(right, y, gg.Right, fg, bg)
	}
}
