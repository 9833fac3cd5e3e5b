// Copyright 2016 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package spec

import (
	"github.com/google/fortsema/internal/sema/ast"
	"github.com/google/fortsema/internal/sema/typeval"
	"github.com/google/fortsema/internal/sema/types"
	"github.com/pkg/errors"
)

// ErrBounds is returned for array bounds that do not describe an array.
var ErrBounds = errors.New("invalid array bounds")

// ResolveShape folds the bound expressions of an array declarator.  Each
// dimension is either an upper bound expression or an *ast.RangeExpr.  Only
// the last dimension may be assumed size.
func ResolveShape(dims []ast.Node, c typeval.Constants) (*types.Shape, error) {
	if len(dims) == 0 {
		return nil, errors.Wrap(ErrBounds, "array has no dimensions")
	}
	s := &types.Shape{Dims: make([]types.Dim, 0, len(dims))}
	for i, n := range dims {
		d := types.Dim{Lower: 1}
		r, ok := n.(*ast.RangeExpr)
		if !ok {
			r = &ast.RangeExpr{Upper: n}
		}
		if r.Lower != nil {
			l, err := typeval.FoldInt(r.Lower, c)
			if err != nil {
				return nil, errors.Wrapf(err, "lower bound of dimension %d", i+1)
			}
			d.Lower = int(l)
		}
		switch {
		case r.Star:
			if i != len(dims)-1 {
				return nil, errors.Wrapf(ErrBounds, "only the last dimension may be assumed size")
			}
			d.Assumed = true
		case r.Upper == nil:
			return nil, errors.Wrapf(ErrBounds, "dimension %d has no upper bound", i+1)
		default:
			u, err := typeval.FoldInt(r.Upper, c)
			if err != nil {
				return nil, errors.Wrapf(err, "upper bound of dimension %d", i+1)
			}
			d.Upper = int(u)
			if d.Upper < d.Lower {
				return nil, errors.Wrapf(ErrBounds, "dimension %d has upper bound %d below lower bound %d", i+1, d.Upper, d.Lower)
			}
		}
		s.Dims = append(s.Dims, d)
	}
	return s, nil
}

// ResolveLen folds a CHARACTER length expression, which must be a
// non-negative INTEGER constant.
func ResolveLen(n ast.Node, c typeval.Constants) (int, error) {
	l, err := typeval.FoldInt(n, c)
	if err != nil {
		return 0, errors.Wrap(err, "CHARACTER length")
	}
	if l < 0 {
		return 0, errors.Wrapf(ErrLength, "CHARACTER length %d is negative", l)
	}
	return int(l), nil
}
