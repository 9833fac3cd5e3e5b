// Copyright 2016 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

// Package typeval holds typed compile-time constants and the constant
// expression evaluator used for initializers, array bounds, CHARACTER
// lengths and PARAMETER values.
package typeval

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/google/fortsema/internal/sema/types"
	"github.com/pkg/errors"
)

// ErrCast is returned when a constant can not be converted to a type.
var ErrCast = errors.New("invalid constant conversion")

// Value is a constant of a scalar type.  Only the field matching the kind of
// Type is meaningful.
type Value struct {
	Type *types.Type

	I int64      // INTEGER, BYTE
	F float64    // REAL
	C complex128 // COMPLEX
	B bool       // LOGICAL
	S string     // CHARACTER
}

func Int(i int64) *Value          { return &Value{Type: types.DefaultInteger, I: i} }
func Real(f float64) *Value       { return &Value{Type: types.DefaultReal, F: f} }
func Double(f float64) *Value     { return &Value{Type: types.DoublePrecision, F: f} }
func Complex(c complex128) *Value { return &Value{Type: types.DefaultComplex, C: c} }
func Logical(b bool) *Value       { return &Value{Type: types.DefaultLogical, B: b} }
func Character(s string) *Value   { return &Value{Type: types.NewCharacter(1, len(s)), S: s} }

// Typed returns a copy of v with its type replaced by t.
func Typed(t *types.Type, v *Value) *Value {
	r := *v
	r.Type = t
	return &r
}

// AsInt returns v as an integer, and false if v is not an INTEGER or BYTE
// constant.
func (v *Value) AsInt() (int64, bool) {
	if v == nil || !v.Type.IsInteger() {
		return 0, false
	}
	return v.I, true
}

func (v *Value) String() string {
	if v == nil {
		return "<nil>"
	}
	switch v.Type.Kind {
	case types.Integer, types.Byte:
		return strconv.FormatInt(v.I, 10)
	case types.Real:
		s := strconv.FormatFloat(v.F, 'G', -1, 64)
		if !strings.ContainsAny(s, ".E") {
			s += "."
		}
		if v.Type.Size >= types.DefaultDoubleSize {
			if strings.Contains(s, "E") {
				return strings.Replace(s, "E", "D", 1)
			}
			return s + "D0"
		}
		return s
	case types.Complex:
		return fmt.Sprintf("(%s, %s)", Typed(types.NewScalar(types.Real, v.Type.Size), &Value{F: real(v.C)}),
			Typed(types.NewScalar(types.Real, v.Type.Size), &Value{F: imag(v.C)}))
	case types.Logical:
		if v.B {
			return ".TRUE."
		}
		return ".FALSE."
	case types.Character:
		return "'" + strings.ReplaceAll(v.S, "'", "''") + "'"
	}
	return fmt.Sprintf("<%s constant>", v.Type)
}

// Equal reports whether a and b are the same constant of the same type.
func Equal(a, b *Value) bool {
	if a == nil || b == nil {
		return a == b
	}
	if !types.Equal(a.Type, b.Type) {
		return false
	}
	switch a.Type.Kind {
	case types.Integer, types.Byte:
		return a.I == b.I
	case types.Real:
		return a.F == b.F || (math.IsNaN(a.F) && math.IsNaN(b.F))
	case types.Complex:
		return a.C == b.C
	case types.Logical:
		return a.B == b.B
	case types.Character:
		return a.S == b.S
	}
	return false
}

// Cast converts v to the scalar type t.  Numeric constants convert between
// INTEGER, BYTE, REAL and COMPLEX; CHARACTER constants are blank padded or
// truncated to the length of t.  Integer results must fit in the KIND size of
// t.
func Cast(v *Value, t *types.Type) (*Value, error) {
	if v == nil || t == nil {
		return nil, errors.Wrap(ErrCast, "missing value or type")
	}
	if t.IsArray() {
		t = t.Base()
	}
	r := &Value{Type: t}
	switch t.Kind {
	case types.Integer, types.Byte:
		switch v.Type.Kind {
		case types.Integer, types.Byte:
			r.I = v.I
		case types.Real, types.Complex:
			f := v.F
			if v.Type.Kind == types.Complex {
				f = real(v.C)
			}
			// float64(math.MaxInt64) rounds up to 2**63.
			if math.IsNaN(f) || f < math.MinInt64 || f >= math.MaxInt64 {
				return nil, errors.Wrapf(ErrCast, "%s has no INTEGER value", v)
			}
			r.I = int64(f)
		default:
			return nil, errors.Wrapf(ErrCast, "can't convert %s to %s", v.Type, t)
		}
		bits := 8 * uint(t.Size)
		if bits < 64 {
			lo, hi := -int64(1)<<(bits-1), int64(1)<<(bits-1)-1
			if r.I < lo || r.I > hi {
				return nil, errors.Wrapf(ErrCast, "%d overflows %s", r.I, t)
			}
		}
	case types.Real:
		switch v.Type.Kind {
		case types.Integer, types.Byte:
			r.F = float64(v.I)
		case types.Real:
			r.F = v.F
		case types.Complex:
			r.F = real(v.C)
		default:
			return nil, errors.Wrapf(ErrCast, "can't convert %s to %s", v.Type, t)
		}
		if t.Size < types.DefaultDoubleSize {
			r.F = float64(float32(r.F))
		}
	case types.Complex:
		switch v.Type.Kind {
		case types.Integer, types.Byte:
			r.C = complex(float64(v.I), 0)
		case types.Real:
			r.C = complex(v.F, 0)
		case types.Complex:
			r.C = v.C
		default:
			return nil, errors.Wrapf(ErrCast, "can't convert %s to %s", v.Type, t)
		}
		if t.Size < types.DefaultDoubleSize {
			r.C = complex128(complex64(r.C))
		}
	case types.Logical:
		if v.Type.Kind != types.Logical {
			return nil, errors.Wrapf(ErrCast, "can't convert %s to %s", v.Type, t)
		}
		r.B = v.B
	case types.Character:
		if v.Type.Kind != types.Character {
			return nil, errors.Wrapf(ErrCast, "can't convert %s to %s", v.Type, t)
		}
		r.S = v.S
		switch {
		case t.Len == 0:
			r.Type = t.WithLen(len(v.S))
		case len(v.S) > t.Len:
			r.S = v.S[:t.Len]
		case len(v.S) < t.Len:
			r.S = v.S + strings.Repeat(" ", t.Len-len(v.S))
		}
	default:
		return nil, errors.Wrapf(ErrCast, "can't convert to non-scalar type %s", t)
	}
	return r, nil
}
