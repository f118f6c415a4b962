// Copyright (c) 2022 Stephan Lukits. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tiles

import (
	"encoding/json"
	"strings"
)

// ComponentID identifies a component of the canvas.  It is an opaque
// token which is only compared for equality.
type ComponentID string

// Ref returns a pointer to the ComponentID id.
func Ref(id string) *ComponentID {
	cid := ComponentID(id)
	return &cid
}

// Node is one of the node types [None], [*Single], [*Horizontal] or
// [*Vertical] of a layout tree.  A node is owned by the tree it is in
// which replaces its subtrees wholesale on mutation; nodes have no
// parent references.
type Node interface {
	node()
	String() string
}

// None is the empty region.
type None struct{}

// Single is a leaf region optionally displaying a component and
// optionally decorated by a border.
type Single struct {
	Component *ComponentID
	Border    *Border
}

// Horizontal splits a region side by side.  Left gets the width
// LeftConstraint evaluates to, Right gets at most what remains.
type Horizontal struct {
	Left, Right                     Node
	LeftConstraint, RightConstraint Constraint
}

// Vertical splits a region one above the other.  Top gets the height
// TopConstraint evaluates to, Bottom gets at most what remains.
type Vertical struct {
	Top, Bottom                     Node
	TopConstraint, BottomConstraint Constraint
}

func (None) node()        {}
func (*Single) node()     {}
func (*Horizontal) node() {}
func (*Vertical) node()   {}

func (None) String() string { return "none" }

func (s *Single) String() string {
	b := strings.Builder{}
	b.WriteString("single(")
	if s.Component == nil {
		b.WriteString("-")
	} else {
		b.WriteString(string(*s.Component))
	}
	if s.Border != nil {
		b.WriteString(", " + s.Border.String())
	}
	b.WriteString(")")
	return b.String()
}

func (h *Horizontal) String() string {
	return "horizontal[" + h.LeftConstraint.String() + " " +
		h.RightConstraint.String() + "](" + orNone(h.Left).String() +
		", " + orNone(h.Right).String() + ")"
}

func (v *Vertical) String() string {
	return "vertical[" + v.TopConstraint.String() + " " +
		v.BottomConstraint.String() + "](" + orNone(v.Top).String() +
		", " + orNone(v.Bottom).String() + ")"
}

// orNone replaces a nil node by None.
func orNone(n Node) Node {
	if n == nil {
		return None{}
	}
	return n
}

// Layout is a split tree partitioning a screen into component regions.
// The zero value is an empty layout.  A Layout is not safe for
// concurrent use; it is meant to be owned by a single control loop.
type Layout struct {
	root Node
}

// NewLayout returns a layout with given root; a nil root is None.
func NewLayout(root Node) *Layout {
	return &Layout{root: orNone(root)}
}

// Root returns the root node of l.
func (l *Layout) Root() Node { return orNone(l.root) }

func (l *Layout) String() string { return l.Root().String() }

// slot returns a pointer to the node slot addressed by given path or
// nil if at some step the path doesn't match the axis of the split it
// steps into.  slot never writes to l; the returned slot may hold nil.
func (l *Layout) slot(at Path) *Node {
	s := &l.root
	for _, d := range at {
		switch n := (*s).(type) {
		case *Horizontal:
			switch d {
			case Left:
				s = &n.Left
			case Right:
				s = &n.Right
			default:
				return nil
			}
		case *Vertical:
			switch d {
			case Up:
				s = &n.Top
			case Down:
				s = &n.Bottom
			default:
				return nil
			}
		default:
			return nil
		}
	}
	return s
}

// Add splits the node addressed by at along the axis of given split
// direction.  A new leaf with given component and border becomes the
// first slot for Up and Left and the second slot for Down and Right
// while the addressed subtree takes the other slot.  c1 always sizes
// the first (left or top) slot and c2 the second one.  Add reports
// false without changing l if at is not a valid path.
func (l *Layout) Add(
	at Path, split Direction, c1, c2 Constraint,
	component *ComponentID, border *Border,
) bool {
	s := l.slot(at)
	if s == nil {
		return false
	}
	leaf, old := &Single{Component: component, Border: border}, orNone(*s)
	switch split {
	case Up:
		*s = &Vertical{Top: leaf, Bottom: old,
			TopConstraint: c1, BottomConstraint: c2}
	case Down:
		*s = &Vertical{Top: old, Bottom: leaf,
			TopConstraint: c1, BottomConstraint: c2}
	case Left:
		*s = &Horizontal{Left: leaf, Right: old,
			LeftConstraint: c1, RightConstraint: c2}
	case Right:
		*s = &Horizontal{Left: old, Right: leaf,
			LeftConstraint: c1, RightConstraint: c2}
	default:
		return false
	}
	return true
}

// Remove removes the node addressed by at.  Removing the root empties
// the layout; otherwise the split containing the addressed node
// collapses into the addressed node's sibling.  Remove reports false
// without changing l if at is not a valid path.
func (l *Layout) Remove(at Path) bool {
	if len(at) == 0 {
		l.root = None{}
		return true
	}
	s := l.slot(at[:len(at)-1])
	if s == nil {
		return false
	}
	switch n := (*s).(type) {
	case *Horizontal:
		switch at[len(at)-1] {
		case Left:
			*s = orNone(n.Right)
		case Right:
			*s = orNone(n.Left)
		default:
			return false
		}
	case *Vertical:
		switch at[len(at)-1] {
		case Up:
			*s = orNone(n.Bottom)
		case Down:
			*s = orNone(n.Top)
		default:
			return false
		}
	default:
		return false
	}
	return true
}

// Set replaces the subtree addressed by at with given node which is
// owned by l afterwards.  Set reports false without changing l if at is
// not a valid path.
func (l *Layout) Set(at Path, n Node) bool {
	s := l.slot(at)
	if s == nil {
		return false
	}
	*s = orNone(n)
	return true
}

// Get returns the node addressed by at.  The returned node remains
// owned by l.  Get reports false if at is not a valid path.
func (l *Layout) Get(at Path) (Node, bool) {
	n := l.Root()
	for _, d := range at {
		switch s := n.(type) {
		case *Horizontal:
			switch d {
			case Left:
				n = s.Left
			case Right:
				n = s.Right
			default:
				return nil, false
			}
		case *Vertical:
			switch d {
			case Up:
				n = s.Top
			case Down:
				n = s.Bottom
			default:
				return nil, false
			}
		default:
			return nil, false
		}
		n = orNone(n)
	}
	return n, true
}

// Components returns the component of every leaf of l which has one;
// left respectively top subtrees come first.
func (l *Layout) Components() []ComponentID {
	return Components(l.Root())
}

// Components returns the components of the leaves of given subtree
// in left/top first order.
func Components(n Node) []ComponentID {
	return components(n, nil)
}

func components(n Node, out []ComponentID) []ComponentID {
	switch n := n.(type) {
	case *Single:
		if n.Component != nil {
			out = append(out, *n.Component)
		}
	case *Horizontal:
		out = components(n.Left, out)
		out = components(n.Right, out)
	case *Vertical:
		out = components(n.Top, out)
		out = components(n.Bottom, out)
	}
	return out
}

// MarshalJSON encodes the tree of l as nested node objects.
func (l *Layout) MarshalJSON() ([]byte, error) {
	return encodeNode(l.Root())
}

// UnmarshalJSON replaces the tree of l by the decoded node objects.
func (l *Layout) UnmarshalJSON(bb []byte) error {
	n, err := DecodeNode(bb)
	if err != nil {
		return err
	}
	l.root = n
	return nil
}

var _ json.Marshaler = (*Layout)(nil)
