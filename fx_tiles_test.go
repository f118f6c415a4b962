// Copyright (c) 2022 Stephan Lukits. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tiles_test

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/slukits/tiles"
)

// drawerMock records the cells a layout draws.
type drawerMock struct {
	cells map[[2]uint32]cellMock
	calls int
}

type cellMock struct {
	r      rune
	fg, bg tcell.Color
}

func (d *drawerMock) SetCharColoured(
	x, y uint32, r rune, fg, bg tcell.Color,
) {
	if d.cells == nil {
		d.cells = map[[2]uint32]cellMock{}
	}
	d.calls++
	d.cells[[2]uint32{x, y}] = cellMock{r: r, fg: fg, bg: bg}
}

// String renders the drawn cells of a w x h screen; cells which were
// not drawn are rendered as '.'.
func (d *drawerMock) screen(w, h uint32) string {
	b := strings.Builder{}
	for y := uint32(0); y < h; y++ {
		for x := uint32(0); x < w; x++ {
			c, ok := d.cells[[2]uint32{x, y}]
			if !ok {
				b.WriteRune('.')
				continue
			}
			b.WriteRune(c.r)
		}
		if y+1 < h {
			b.WriteRune('\n')
		}
	}
	return b.String()
}

func (d *drawerMock) coordinates() string {
	cc := []string{}
	for c := range d.cells {
		cc = append(cc, fmt.Sprintf("%d:%d", c[0], c[1]))
	}
	sort.Strings(cc)
	return strings.Join(cc, " ")
}

func leaf(id string) *tiles.Single {
	return &tiles.Single{Component: tiles.Ref(id)}
}

func bordered(id string, k tiles.BorderKind) *tiles.Single {
	return &tiles.Single{Component: tiles.Ref(id), Border: &tiles.Border{
		Colour: tcell.ColorRed, Kind: k}}
}

func length(v uint32) tiles.Constraint {
	return tiles.Rule(tiles.Length(v))
}

func upTo(v uint32) tiles.Constraint { return tiles.Rule(tiles.Max(v)) }

// fxHorizontal returns a layout splitting A and B side by side.
func fxHorizontal() *tiles.Layout {
	return tiles.NewLayout(&tiles.Horizontal{
		Left: leaf("A"), Right: leaf("B"),
		LeftConstraint: length(5), RightConstraint: upTo(100),
	})
}

// fxNested returns a layout with A on the left and B above C on the
// right.
func fxNested() *tiles.Layout {
	return tiles.NewLayout(&tiles.Horizontal{
		Left:  leaf("A"),
		Right: &tiles.Vertical{
			Top: leaf("B"), Bottom: leaf("C"),
			TopConstraint: length(3), BottomConstraint: upTo(100),
		},
		LeftConstraint: length(5), RightConstraint: upTo(100),
	})
}

func areasString(aa []tiles.Area) string {
	ss := make([]string, len(aa))
	for i, a := range aa {
		ss[i] = a.String()
	}
	return strings.Join(ss, " ")
}
