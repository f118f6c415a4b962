// Copyright (c) 2022 Stephan Lukits. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tiles

import (
	"encoding/json"
	"errors"
	"fmt"
)

const (
	nodeNone       = "none"
	nodeSingle     = "single"
	nodeHorizontal = "split horizontal"
	nodeVertical   = "split vertical"
)

// nodeJSON is the union of the fields of all node types discriminated
// by Type.
type nodeJSON struct {
	Type    string       `json:"type"`
	Discrim *ComponentID `json:"discrim,omitempty"`
	Border  *Border      `json:"border,omitempty"`

	LeftConstraint  *Constraint     `json:"left_constraint,omitempty"`
	Left            json.RawMessage `json:"left,omitempty"`
	RightConstraint *Constraint     `json:"right_constraint,omitempty"`
	Right           json.RawMessage `json:"right,omitempty"`

	TopConstraint    *Constraint     `json:"top_constraint,omitempty"`
	Top              json.RawMessage `json:"top,omitempty"`
	BottomConstraint *Constraint     `json:"bottom_constraint,omitempty"`
	Bottom           json.RawMessage `json:"bottom,omitempty"`
}

func (n None) MarshalJSON() ([]byte, error)        { return encodeNode(n) }
func (n *Single) MarshalJSON() ([]byte, error)     { return encodeNode(n) }
func (n *Horizontal) MarshalJSON() ([]byte, error) { return encodeNode(n) }
func (n *Vertical) MarshalJSON() ([]byte, error)   { return encodeNode(n) }

func encodeNode(n Node) ([]byte, error) {
	var err error
	nj := nodeJSON{}
	switch n := orNone(n).(type) {
	case None:
		nj.Type = nodeNone
	case *Single:
		nj.Type, nj.Discrim, nj.Border = nodeSingle, n.Component, n.Border
	case *Horizontal:
		nj.Type = nodeHorizontal
		nj.LeftConstraint, nj.RightConstraint =
			&n.LeftConstraint, &n.RightConstraint
		if nj.Left, err = encodeNode(n.Left); err != nil {
			return nil, err
		}
		if nj.Right, err = encodeNode(n.Right); err != nil {
			return nil, err
		}
	case *Vertical:
		nj.Type = nodeVertical
		nj.TopConstraint, nj.BottomConstraint =
			&n.TopConstraint, &n.BottomConstraint
		if nj.Top, err = encodeNode(n.Top); err != nil {
			return nil, err
		}
		if nj.Bottom, err = encodeNode(n.Bottom); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf(ErrNodeFmt, fmt.Sprintf("%T", n))
	}
	return json.Marshal(nj)
}

// ErrNodeFmt reports an unknown node type.
var ErrNodeFmt = "tiles: unknown layout node type: %s"

// ErrNodeIncomplete is returned by [DecodeNode] for a split which lacks
// a child or a constraint.
var ErrNodeIncomplete = errors.New("tiles: incomplete split")

// DecodeNode decodes a JSON node object discriminated by its "type"
// field into a layout tree.
func DecodeNode(bb []byte) (Node, error) {
	nj := nodeJSON{}
	if err := json.Unmarshal(bb, &nj); err != nil {
		return nil, fmt.Errorf("tiles: node: %w", err)
	}
	switch nj.Type {
	case nodeNone:
		return None{}, nil
	case nodeSingle:
		return &Single{Component: nj.Discrim, Border: nj.Border}, nil
	case nodeHorizontal:
		if nj.LeftConstraint == nil || nj.RightConstraint == nil {
			return nil, fmt.Errorf("%w: %s", ErrNodeIncomplete, nj.Type)
		}
		left, right, err := decodeChildren(nj.Type, nj.Left, nj.Right)
		if err != nil {
			return nil, err
		}
		return &Horizontal{Left: left, Right: right,
			LeftConstraint:  *nj.LeftConstraint,
			RightConstraint: *nj.RightConstraint}, nil
	case nodeVertical:
		if nj.TopConstraint == nil || nj.BottomConstraint == nil {
			return nil, fmt.Errorf("%w: %s", ErrNodeIncomplete, nj.Type)
		}
		top, bottom, err := decodeChildren(nj.Type, nj.Top, nj.Bottom)
		if err != nil {
			return nil, err
		}
		return &Vertical{Top: top, Bottom: bottom,
			TopConstraint:    *nj.TopConstraint,
			BottomConstraint: *nj.BottomConstraint}, nil
	}
	return nil, fmt.Errorf(ErrNodeFmt, fmt.Sprintf("%q", nj.Type))
}

func decodeChildren(typ string, first, second json.RawMessage) (
	Node, Node, error,
) {
	if len(first) == 0 || len(second) == 0 {
		return nil, nil, fmt.Errorf("%w: %s", ErrNodeIncomplete, typ)
	}
	n1, err := DecodeNode(first)
	if err != nil {
		return nil, nil, err
	}
	n2, err := DecodeNode(second)
	if err != nil {
		return nil, nil, err
	}
	return n1, n2, nil
}
