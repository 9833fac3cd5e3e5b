// Copyright 2021 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package typeval

import (
	"math"
	"math/cmplx"
	"strings"

	"github.com/google/fortsema/internal/sema/ast"
	"github.com/google/fortsema/internal/sema/types"
	"github.com/pkg/errors"
)

var (
	// ErrNotConstant is returned by Fold for expressions that can not be
	// evaluated at compile time.
	ErrNotConstant = errors.New("expression is not constant")

	// ErrDivideByZero is returned by Fold for a constant division by zero.
	ErrDivideByZero = errors.New("divide by zero")
)

// Constants resolves named constants during folding.
type Constants interface {
	Constant(name string) (*Value, bool)
}

// Fold evaluates the constant expression n.  Names are resolved through c,
// which may be nil.
func Fold(n ast.Node, c Constants) (*Value, error) {
	switch n := n.(type) {
	case *ast.IntLit:
		return Cast(&Value{Type: types.DefaultInteger.WithSize(8), I: n.I}, n.Type())
	case *ast.RealLit:
		return &Value{Type: n.Type(), F: n.F}, nil
	case *ast.ComplexLit:
		return &Value{Type: n.Type(), C: complex(n.Re, n.Im)}, nil
	case *ast.StringLit:
		return Character(n.S), nil
	case *ast.LogicalLit:
		return Logical(n.B), nil
	case *ast.IDTerm:
		if c != nil {
			if v, ok := c.Constant(n.Name); ok {
				return v, nil
			}
		}
		return nil, errors.Wrapf(ErrNotConstant, "`%s' is not a named constant", n.Name)
	case *ast.ConvExpr:
		v, err := Fold(n.N, c)
		if err != nil {
			return nil, err
		}
		if n.Type() == nil {
			return v, nil
		}
		return Cast(v, n.Type())
	case *ast.UnaryExpr:
		v, err := Fold(n.Expr, c)
		if err != nil {
			return nil, err
		}
		return unary(n.Op, v)
	case *ast.BinaryExpr:
		l, err := Fold(n.LHS, c)
		if err != nil {
			return nil, err
		}
		r, err := Fold(n.RHS, c)
		if err != nil {
			return nil, err
		}
		return binary(n.Op, l, r)
	case *ast.SubstringExpr:
		v, err := Fold(n.LHS, c)
		if err != nil {
			return nil, err
		}
		if !v.Type.IsCharacter() {
			return nil, errors.Wrapf(ErrNotConstant, "substring of non-CHARACTER %s", v.Type)
		}
		first, last := int64(1), int64(len(v.S))
		if n.First != nil {
			if first, err = FoldInt(n.First, c); err != nil {
				return nil, err
			}
		}
		if n.Last != nil {
			if last, err = FoldInt(n.Last, c); err != nil {
				return nil, err
			}
		}
		if first < 1 || last > int64(len(v.S)) || first > last+1 {
			return nil, errors.Errorf("substring (%d:%d) out of range of %s", first, last, v)
		}
		return Character(v.S[first-1 : last]), nil
	}
	return nil, ErrNotConstant
}

// FoldInt evaluates n, which must be an INTEGER constant expression.
func FoldInt(n ast.Node, c Constants) (int64, error) {
	v, err := Fold(n, c)
	if err != nil {
		return 0, err
	}
	i, ok := v.AsInt()
	if !ok {
		return 0, errors.Wrapf(ErrNotConstant, "%s is not an INTEGER constant", v)
	}
	return i, nil
}

func unary(op ast.Op, v *Value) (*Value, error) {
	switch op {
	case ast.Plus:
		if v.Type.IsNumeric() {
			return v, nil
		}
	case ast.Minus:
		r := *v
		switch v.Type.Kind {
		case types.Integer, types.Byte:
			r.I = -v.I
			return &r, nil
		case types.Real:
			r.F = -v.F
			return &r, nil
		case types.Complex:
			r.C = -v.C
			return &r, nil
		}
	case ast.Not:
		if v.Type.IsLogical() {
			return Logical(!v.B), nil
		}
	}
	return nil, errors.Errorf("invalid operand %s for unary %s", v.Type, op)
}

// Promote returns the type both operands of a numeric operation are
// converted to.
func Promote(a, b *types.Type) *types.Type {
	rank := func(t *types.Type) int {
		switch t.Kind {
		case types.Byte:
			return 0
		case types.Integer:
			return 1
		case types.Real:
			return 2
		case types.Complex:
			return 3
		}
		return -1
	}
	hi, lo := a, b
	if rank(b) > rank(a) {
		hi, lo = b, a
	}
	if rank(hi) == rank(lo) || (hi.Kind == types.Complex && lo.Kind == types.Real) {
		if lo.Size > hi.Size {
			return hi.WithSize(lo.Size)
		}
	}
	return hi
}

func binary(op ast.Op, l, r *Value) (*Value, error) {
	switch {
	case op == ast.Concat:
		if !l.Type.IsCharacter() || !r.Type.IsCharacter() {
			return nil, errors.Errorf("invalid operands %s and %s for %s", l.Type, r.Type, op)
		}
		return Character(l.S + r.S), nil

	case op.IsLogical():
		if !l.Type.IsLogical() || !r.Type.IsLogical() {
			return nil, errors.Errorf("invalid operands %s and %s for %s", l.Type, r.Type, op)
		}
		switch op {
		case ast.And:
			return Logical(l.B && r.B), nil
		case ast.Or:
			return Logical(l.B || r.B), nil
		case ast.Eqv:
			return Logical(l.B == r.B), nil
		case ast.Neqv:
			return Logical(l.B != r.B), nil
		}

	case op.IsComparison() && l.Type.IsCharacter() && r.Type.IsCharacter():
		// Shorter operands compare as if blank padded.
		a, b := l.S, r.S
		if len(a) < len(b) {
			a += strings.Repeat(" ", len(b)-len(a))
		} else {
			b += strings.Repeat(" ", len(a)-len(b))
		}
		return Logical(compare(op, strings.Compare(a, b))), nil
	}

	if !l.Type.IsNumeric() || !r.Type.IsNumeric() {
		return nil, errors.Errorf("invalid operands %s and %s for %s", l.Type, r.Type, op)
	}
	t := Promote(l.Type, r.Type)
	a, err := Cast(l, t)
	if err != nil {
		return nil, err
	}
	b, err := Cast(r, t)
	if err != nil {
		return nil, err
	}
	if op.IsComparison() {
		switch t.Kind {
		case types.Complex:
			if op != ast.Eq && op != ast.Ne {
				return nil, errors.Errorf("COMPLEX operands can't be ordered with %s", op)
			}
			return Logical((a.C == b.C) == (op == ast.Eq)), nil
		case types.Real:
			return Logical(compare(op, cmpFloat(a.F, b.F))), nil
		}
		return Logical(compare(op, cmpInt(a.I, b.I))), nil
	}

	res := &Value{Type: t}
	switch t.Kind {
	case types.Integer, types.Byte:
		switch op {
		case ast.Plus:
			res.I = a.I + b.I
		case ast.Minus:
			res.I = a.I - b.I
		case ast.Mul:
			res.I = a.I * b.I
		case ast.Div:
			if b.I == 0 {
				return nil, ErrDivideByZero
			}
			res.I = a.I / b.I
		case ast.Pow:
			p, err := ipow(a.I, b.I)
			if err != nil {
				return nil, err
			}
			res.I = p
		default:
			return nil, errors.Errorf("invalid operator %s for %s", op, t)
		}
	case types.Real:
		switch op {
		case ast.Plus:
			res.F = a.F + b.F
		case ast.Minus:
			res.F = a.F - b.F
		case ast.Mul:
			res.F = a.F * b.F
		case ast.Div:
			if b.F == 0 {
				return nil, ErrDivideByZero
			}
			res.F = a.F / b.F
		case ast.Pow:
			if r.Type.IsInteger() {
				res.F = math.Pow(a.F, float64(r.I))
			} else {
				res.F = math.Pow(a.F, b.F)
			}
		default:
			return nil, errors.Errorf("invalid operator %s for %s", op, t)
		}
	case types.Complex:
		switch op {
		case ast.Plus:
			res.C = a.C + b.C
		case ast.Minus:
			res.C = a.C - b.C
		case ast.Mul:
			res.C = a.C * b.C
		case ast.Div:
			if b.C == 0 {
				return nil, ErrDivideByZero
			}
			res.C = a.C / b.C
		case ast.Pow:
			res.C = cmplx.Pow(a.C, b.C)
		default:
			return nil, errors.Errorf("invalid operator %s for %s", op, t)
		}
	}
	return Cast(res, t)
}

// ipow raises x to the integer power n, truncating for negative n as
// integer division does.
func ipow(x, n int64) (int64, error) {
	if n < 0 {
		switch x {
		case 0:
			return 0, ErrDivideByZero
		case 1:
			return 1, nil
		case -1:
			if n%2 == 0 {
				return 1, nil
			}
			return -1, nil
		}
		return 0, nil
	}
	r := int64(1)
	for ; n > 0; n-- {
		r *= x
	}
	return r, nil
}

func cmpInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compare(op ast.Op, c int) bool {
	switch op {
	case ast.Eq:
		return c == 0
	case ast.Ne:
		return c != 0
	case ast.Lt:
		return c < 0
	case ast.Le:
		return c <= 0
	case ast.Gt:
		return c > 0
	case ast.Ge:
		return c >= 0
	}
	return false
}
