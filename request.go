// Copyright (c) 2022 Stephan Lukits. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tiles

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrRequest is wrapped by every error [ParseRequest] returns.
var ErrRequest = errors.New("tiles: malformed request")

// Request is one of the structural edit requests [Add], [Remove] or
// [SetLayout] a component may send to the layout engine.
type Request interface {
	request()
	// Apply applies the request to given layout and reports if the
	// layout changed.
	Apply(*Layout) bool
}

// Add requests a [Layout.Add].
type Add struct {
	At          Path         `json:"at"`
	Split       Direction    `json:"split"`
	Constraint1 Constraint   `json:"constraint_1"`
	Constraint2 Constraint   `json:"constraint_2"`
	Component   *ComponentID `json:"component,omitempty"`
	Border      *Border      `json:"border,omitempty"`
}

// Remove requests a [Layout.Remove].
type Remove struct {
	At Path `json:"at"`
}

// SetLayout requests a [Layout.Set].
type SetLayout struct {
	At     Path `json:"at"`
	Layout Node `json:"layout"`
}

func (Add) request()       {}
func (Remove) request()    {}
func (SetLayout) request() {}

// Apply applies r to l and reports whether l changed.
func (r Add) Apply(l *Layout) bool {
	return l.Add(r.At, r.Split, r.Constraint1, r.Constraint2,
		r.Component, r.Border)
}

// Apply applies r to l and reports whether l changed.
func (r Remove) Apply(l *Layout) bool { return l.Remove(r.At) }

// Apply applies r to l and reports whether l changed.
func (r SetLayout) Apply(l *Layout) bool { return l.Set(r.At, r.Layout) }

const (
	reqAdd       = "add"
	reqRemove    = "remove"
	reqSetLayout = "setlayout"
)

type requestJSON struct {
	Type string `json:"type"`
}

// ParseRequest decodes a JSON request object discriminated by its
// "type" field which is one of "add", "remove" or "setlayout".  A
// missing "at" addresses the root.
func ParseRequest(bb []byte) (Request, error) {
	rj := requestJSON{}
	if err := json.Unmarshal(bb, &rj); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequest, err)
	}
	switch rj.Type {
	case reqAdd:
		r := struct {
			Add
			Split       *Direction  `json:"split"`
			Constraint1 *Constraint `json:"constraint_1"`
			Constraint2 *Constraint `json:"constraint_2"`
		}{}
		if err := json.Unmarshal(bb, &r); err != nil {
			return nil, fmt.Errorf("%w: add: %v", ErrRequest, err)
		}
		if r.Split == nil || r.Constraint1 == nil || r.Constraint2 == nil {
			return nil, fmt.Errorf(
				"%w: add: split and both constraints are required",
				ErrRequest)
		}
		r.Add.Split = *r.Split
		r.Add.Constraint1, r.Add.Constraint2 = *r.Constraint1, *r.Constraint2
		return r.Add, nil
	case reqRemove:
		r := Remove{}
		if err := json.Unmarshal(bb, &r); err != nil {
			return nil, fmt.Errorf("%w: remove: %v", ErrRequest, err)
		}
		return r, nil
	case reqSetLayout:
		r := struct {
			At     Path            `json:"at"`
			Layout json.RawMessage `json:"layout"`
		}{}
		if err := json.Unmarshal(bb, &r); err != nil {
			return nil, fmt.Errorf("%w: setlayout: %v", ErrRequest, err)
		}
		if len(r.Layout) == 0 {
			return nil, fmt.Errorf("%w: setlayout: missing layout",
				ErrRequest)
		}
		n, err := DecodeNode(r.Layout)
		if err != nil {
			return nil, fmt.Errorf("%w: setlayout: %v", ErrRequest, err)
		}
		return SetLayout{At: r.At, Layout: n}, nil
	}
	return nil, fmt.Errorf("%w: unknown type %q", ErrRequest, rj.Type)
}

// MarshalJSON encodes r including its type discriminator.
func (r Add) MarshalJSON() ([]byte, error) {
	type add Add
	if r.At == nil {
		r.At = Path{}
	}
	return json.Marshal(struct {
		Type string `json:"type"`
		add
	}{reqAdd, add(r)})
}

// MarshalJSON encodes r including its type discriminator.
func (r Remove) MarshalJSON() ([]byte, error) {
	type remove Remove
	if r.At == nil {
		r.At = Path{}
	}
	return json.Marshal(struct {
		Type string `json:"type"`
		remove
	}{reqRemove, remove(r)})
}

// MarshalJSON encodes r including its type discriminator.
func (r SetLayout) MarshalJSON() ([]byte, error) {
	if r.At == nil {
		r.At = Path{}
	}
	return json.Marshal(struct {
		Type   string `json:"type"`
		At     Path   `json:"at"`
		Layout Node   `json:"layout"`
	}{reqSetLayout, r.At, orNone(r.Layout)})
}
