// Copyright (c) 2022 Stephan Lukits. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tiles

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"
	"golang.org/x/exp/slices"
)

// BorderKind selects the glyph set of a [Border].
type BorderKind uint8

const (
	Normal BorderKind = iota
	Rounded
	Double
	Thick
	// Custom borders draw the glyphs of [Border.Custom].
	Custom
)

var borderKindNames = [...]string{
	"normal", "rounded", "double", "thick", "custom"}

func (k BorderKind) String() string {
	if int(k) >= len(borderKindNames) {
		return fmt.Sprintf("BorderKind(%d)", uint8(k))
	}
	return borderKindNames[k]
}

// BorderSet holds the eight glyphs a border is drawn with.
type BorderSet struct {
	Left        rune
	TopLeft     rune
	Top         rune
	TopRight    rune
	Right       rune
	BottomRight rune
	Bottom      rune
	BottomLeft  rune
}

var borderSets = [...]BorderSet{
	Normal: {
		Left: '│', TopLeft: '┌', Top: '─', TopRight: '┐',
		Right: '│', BottomRight: '┘', Bottom: '─', BottomLeft: '└',
	},
	Rounded: {
		Left: '│', TopLeft: '╭', Top: '─', TopRight: '╮',
		Right: '│', BottomRight: '╯', Bottom: '─', BottomLeft: '╰',
	},
	Double: {
		Left: '║', TopLeft: '╔', Top: '═', TopRight: '╗',
		Right: '║', BottomRight: '╝', Bottom: '═', BottomLeft: '╚',
	},
	Thick: {
		Left: '┃', TopLeft: '┏', Top: '━', TopRight: '┓',
		Right: '┃', BottomRight: '┛', Bottom: '━', BottomLeft: '┗',
	},
}

// Border decorates a leaf region with a one cell wide frame drawn in
// Colour on the terminal's default background.
type Border struct {
	Colour tcell.Color
	Kind   BorderKind

	// Custom is drawn iff Kind is Custom.
	Custom BorderSet
}

// Glyphs returns the glyphs b is drawn with.  An unknown kind falls
// back to the normal set.
func (b Border) Glyphs() BorderSet {
	if b.Kind == Custom {
		return b.Custom
	}
	if int(b.Kind) >= len(borderSets) {
		return borderSets[Normal]
	}
	return borderSets[b.Kind]
}

func (b Border) String() string {
	return b.Kind.String() + " " + colourName(b.Colour)
}

type borderJSON struct {
	Colour      string `json:"colour"`
	Type        string `json:"type"`
	Left        string `json:"left,omitempty"`
	TopLeft     string `json:"topleft,omitempty"`
	Top         string `json:"top,omitempty"`
	TopRight    string `json:"topright,omitempty"`
	Right       string `json:"right,omitempty"`
	BottomRight string `json:"bottomright,omitempty"`
	Bottom      string `json:"bottom,omitempty"`
	BottomLeft  string `json:"bottomleft,omitempty"`
}

// MarshalJSON flattens the kind into the border object; the glyphs of
// a custom border are encoded next to its type.
func (b Border) MarshalJSON() ([]byte, error) {
	bj := borderJSON{Colour: colourName(b.Colour), Type: b.Kind.String()}
	if b.Kind == Custom {
		bj.Left, bj.TopLeft = string(b.Custom.Left), string(b.Custom.TopLeft)
		bj.Top, bj.TopRight = string(b.Custom.Top), string(b.Custom.TopRight)
		bj.Right = string(b.Custom.Right)
		bj.BottomRight = string(b.Custom.BottomRight)
		bj.Bottom = string(b.Custom.Bottom)
		bj.BottomLeft = string(b.Custom.BottomLeft)
	}
	return json.Marshal(bj)
}

func (b *Border) UnmarshalJSON(bb []byte) error {
	bj := borderJSON{}
	if err := json.Unmarshal(bb, &bj); err != nil {
		return fmt.Errorf("tiles: border: %w", err)
	}
	colour, err := parseColour(bj.Colour)
	if err != nil {
		return err
	}
	kind := -1
	for i, n := range borderKindNames {
		if n == bj.Type {
			kind = i
		}
	}
	if kind < 0 {
		return fmt.Errorf(ErrBorderFmt, "type", bj.Type)
	}
	*b = Border{Colour: colour, Kind: BorderKind(kind)}
	if b.Kind != Custom {
		return nil
	}
	for _, g := range []struct {
		name string
		src  string
		dst  *rune
	}{
		{"left", bj.Left, &b.Custom.Left},
		{"topleft", bj.TopLeft, &b.Custom.TopLeft},
		{"top", bj.Top, &b.Custom.Top},
		{"topright", bj.TopRight, &b.Custom.TopRight},
		{"right", bj.Right, &b.Custom.Right},
		{"bottomright", bj.BottomRight, &b.Custom.BottomRight},
		{"bottom", bj.Bottom, &b.Custom.Bottom},
		{"bottomleft", bj.BottomLeft, &b.Custom.BottomLeft},
	} {
		if utf8.RuneCountInString(g.src) != 1 {
			return fmt.Errorf(ErrBorderFmt, g.name, g.src)
		}
		*g.dst, _ = utf8.DecodeRuneInString(g.src)
	}
	return nil
}

// ErrBorderFmt reports an invalid border field, e.g. a custom glyph
// which is not exactly one character.
var ErrBorderFmt = "tiles: invalid border %s: %q"

// ErrColourFmt reports a colour name tcell doesn't know.
var ErrColourFmt = "tiles: unknown colour: %q"

// colourNames maps a colour to its name; of several names of the same
// colour the lexicographically smallest wins.
var colourNames = func() map[tcell.Color]string {
	nn := make([]string, 0, len(tcell.ColorNames))
	for n := range tcell.ColorNames {
		nn = append(nn, n)
	}
	slices.Sort(nn)
	mm := map[tcell.Color]string{}
	for i := len(nn) - 1; i >= 0; i-- {
		mm[tcell.ColorNames[nn[i]]] = nn[i]
	}
	return mm
}()

func colourName(c tcell.Color) string {
	switch c {
	case tcell.ColorReset:
		return "reset"
	case tcell.ColorDefault:
		return "default"
	}
	if n, ok := colourNames[c]; ok {
		return n
	}
	return strings.ToLower(c.CSS())
}

// parseColour decodes a W3C colour name or a #rrggbb value; "reset" and
// "" select the terminal's default colours.
func parseColour(name string) (tcell.Color, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	switch name {
	case "", "reset":
		return tcell.ColorReset, nil
	case "default":
		return tcell.ColorDefault, nil
	}
	c := tcell.GetColor(name)
	if c == tcell.ColorDefault {
		return c, fmt.Errorf(ErrColourFmt, name)
	}
	return c, nil
}
