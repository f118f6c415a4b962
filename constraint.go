// Copyright (c) 2022 Stephan Lukits. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tiles

import (
	"encoding/json"
	"fmt"
	"math"
)

// Kind selects how a [Variant] evaluates an available length.
type Kind uint8

const (
	// KindMax caps the available length at the variant's value.
	KindMax Kind = iota
	// KindMin takes all of the available length if it is at least the
	// variant's value and nothing otherwise.
	KindMin
	// KindLength takes exactly the variant's value if it is available
	// and nothing otherwise.
	KindLength
	// KindPercentage takes the given percentage of the available
	// length rounded to the nearest integer.
	KindPercentage
)

var kindNames = [...]string{"max", "min", "length", "percentage"}

func (k Kind) String() string {
	if int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
	return kindNames[k]
}

// Variant is a sizing rule of a [Kind] with a value.
type Variant struct {
	Kind  Kind
	Value uint32
}

// Max returns a variant evaluating to min(available, v).
func Max(v uint32) Variant { return Variant{Kind: KindMax, Value: v} }

// Min returns a variant evaluating to the available length if it is at
// least v, to zero otherwise.
func Min(v uint32) Variant { return Variant{Kind: KindMin, Value: v} }

// Length returns a variant evaluating to v if v is available, to zero
// otherwise.
func Length(v uint32) Variant { return Variant{Kind: KindLength, Value: v} }

// Percentage returns a variant evaluating to v percent of the available
// length.
func Percentage(v uint32) Variant {
	return Variant{Kind: KindPercentage, Value: v}
}

// Eval returns the length v claims of given available length.  The
// result never exceeds available.
func (v Variant) Eval(available uint32) uint32 {
	switch v.Kind {
	case KindMax:
		if v.Value < available {
			return v.Value
		}
		return available
	case KindMin:
		if v.Value <= available {
			return available
		}
		return 0
	case KindLength:
		if v.Value <= available {
			return v.Value
		}
		return 0
	case KindPercentage:
		product := uint64(available) * uint64(v.Value)
		p := product / 100
		if product%100 >= 50 {
			p++
		}
		if p >= uint64(available) {
			return available
		}
		return uint32(p)
	}
	return 0
}

func (v Variant) String() string {
	return fmt.Sprintf("%s(%d)", v.Kind, v.Value)
}

type variantJSON struct {
	Type  string `json:"type"`
	Value uint32 `json:"value"`
}

func (v Variant) MarshalJSON() ([]byte, error) {
	if int(v.Kind) >= len(kindNames) {
		return nil, fmt.Errorf(ErrVariantFmt, v.Kind.String())
	}
	return json.Marshal(variantJSON{Type: kindNames[v.Kind], Value: v.Value})
}

func (v *Variant) UnmarshalJSON(bb []byte) error {
	vj := variantJSON{}
	if err := json.Unmarshal(bb, &vj); err != nil {
		return fmt.Errorf("tiles: variant: %w", err)
	}
	for i, n := range kindNames {
		if n == vj.Type {
			*v = Variant{Kind: Kind(i), Value: vj.Value}
			return nil
		}
	}
	return fmt.Errorf(ErrVariantFmt, vj.Type)
}

// ErrVariantFmt reports an unknown constraint variant type.
var ErrVariantFmt = "tiles: unknown constraint variant: %s"

// Constraint sizes a split slot.  Its Base variant is evaluated against
// the slot's available length; the optional offsets are evaluated
// against the base's result and added respectively subtracted.  The
// subtraction saturates at zero.
type Constraint struct {
	Base      Variant     `json:"base"`
	OffsetPos *Constraint `json:"offset_pos,omitempty"`
	OffsetNeg *Constraint `json:"offset_neg,omitempty"`
}

// Rule returns a constraint without offsets.
func Rule(base Variant) Constraint { return Constraint{Base: base} }

// Plus returns a copy of c with given positive offset.
func (c Constraint) Plus(o Constraint) Constraint {
	c.OffsetPos = &o
	return c
}

// Minus returns a copy of c with given negative offset.
func (c Constraint) Minus(o Constraint) Constraint {
	c.OffsetNeg = &o
	return c
}

// Eval evaluates c against given length.
func (c Constraint) Eval(length uint32) uint32 {
	base := c.Base.Eval(length)
	sum := uint64(base)
	if c.OffsetPos != nil {
		sum += uint64(c.OffsetPos.Eval(base))
	}
	if c.OffsetNeg != nil {
		neg := uint64(c.OffsetNeg.Eval(base))
		if neg >= sum {
			return 0
		}
		sum -= neg
	}
	if sum > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(sum)
}

func (c Constraint) String() string {
	s := c.Base.String()
	if c.OffsetPos != nil {
		s += "+(" + c.OffsetPos.String() + ")"
	}
	if c.OffsetNeg != nil {
		s += "-(" + c.OffsetNeg.String() + ")"
	}
	return s
}
