// Copyright (c) 2022 Stephan Lukits. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tiles

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Direction is a step of a [Path] or the side at which [Layout.Add]
// splits off a new region.
type Direction uint8

const (
	Up Direction = iota
	Down
	Left
	Right
)

var directionNames = [...]string{"up", "down", "left", "right"}

func (d Direction) String() string {
	if int(d) >= len(directionNames) {
		return fmt.Sprintf("Direction(%d)", uint8(d))
	}
	return directionNames[d]
}

// Horizontal reports true for Left and Right, i.e. the directions
// stepping into or splitting along a horizontal split.
func (d Direction) Horizontal() bool { return d == Left || d == Right }

// Vertical reports true for Up and Down.
func (d Direction) Vertical() bool { return d == Up || d == Down }

// MarshalJSON encodes a direction as its lower case name.
func (d Direction) MarshalJSON() ([]byte, error) {
	if int(d) >= len(directionNames) {
		return nil, fmt.Errorf(ErrDirectionFmt, d.String())
	}
	return json.Marshal(directionNames[d])
}

// UnmarshalJSON decodes a direction name case-insensitively.
func (d *Direction) UnmarshalJSON(bb []byte) error {
	var name string
	if err := json.Unmarshal(bb, &name); err != nil {
		return fmt.Errorf("tiles: direction: %w", err)
	}
	for i, n := range directionNames {
		if strings.EqualFold(n, name) {
			*d = Direction(i)
			return nil
		}
	}
	return fmt.Errorf(ErrDirectionFmt, name)
}

// ErrDirectionFmt reports a direction name or value which is none of
// up, down, left or right.
var ErrDirectionFmt = "tiles: unknown direction: %s"

// Path addresses a node of a [Layout] by the directions leading from the
// root to it.  The empty path addresses the root.
type Path []Direction

func (p Path) String() string {
	ss := make([]string, len(p))
	for i, d := range p {
		ss[i] = d.String()
	}
	return "[" + strings.Join(ss, " ") + "]"
}
