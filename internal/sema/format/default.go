// Copyright 2017 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package format

import (
	"github.com/google/fortsema/internal/sema/types"
)

// Type returns the type a value is cast to when it is written with the data
// descriptor d, or nil if d is not a data descriptor.
func Type(d *Desc) *types.Type {
	if !d.IsData() {
		return nil
	}
	switch d.Kind {
	case Integer, Binary, Octal, Hex:
		return types.DefaultInteger
	case Double:
		return types.DoublePrecision
	case Fixed, Exp, Eng, Sci, General:
		return types.DefaultReal
	case Logical:
		return types.DefaultLogical
	}
	if d.W > 0 {
		return types.NewCharacter(1, d.W)
	}
	return types.DefaultCharacter
}

// Compatible reports whether a scalar of type t can be transferred with a
// data descriptor of kind k without conversion.  COMPLEX values are
// transferred as two REAL halves.
func Compatible(k Kind, t *types.Type) bool {
	t = t.Base()
	switch k {
	case Integer, Binary, Octal, Hex:
		return t.IsInteger()
	case Fixed, Exp, Double, Eng, Sci:
		return t.IsReal() || t.IsComplex()
	case General:
		return t.IsScalar()
	case Logical:
		return t.IsLogical()
	case Character:
		return t.IsCharacter()
	}
	return false
}

// Default field widths for integer descriptors, keyed by KIND byte size.
var intWidths = map[int]int{1: 4, 2: 6, 4: 11, 8: 20, 16: 40}

// SetDefault returns a copy of d with an omitted field width filled in from
// the type t of the I/O list element it transfers.  Descriptors that already
// carry a width, and those whose kind is not compatible with t, are returned
// unchanged.
func SetDefault(d *Desc, t *types.Type) *Desc {
	r := d.Clone()
	if !d.IsData() || d.W > 0 || t == nil || !Compatible(d.Kind, t) {
		return r
	}
	t = t.Base()
	switch d.Kind {
	case Integer:
		if w, ok := intWidths[t.Size]; ok {
			r.W = w
		}
	case Binary:
		r.W = 8 * t.Size
	case Octal:
		r.W = (8*t.Size + 2) / 3
	case Hex:
		r.W = 2 * t.Size
	case Fixed, Exp, Double, Eng, Sci, General:
		if !t.IsReal() && !t.IsComplex() {
			break
		}
		if t.Size >= types.DefaultDoubleSize {
			r.W, r.D, r.HasD = 25, 16, true
			if d.Kind != Fixed && d.Kind != Double {
				r.E = 3
			}
		} else {
			r.W, r.D, r.HasD = 15, 7, true
			if d.Kind != Fixed && d.Kind != Double {
				r.E = 2
			}
		}
	case Logical:
		r.W = 2
	case Character:
		r.W = t.Len
	}
	return r
}
