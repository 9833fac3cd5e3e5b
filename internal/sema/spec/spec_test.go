// Copyright 2016 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package spec

import (
	"testing"

	"github.com/google/fortsema/internal/sema/ast"
	"github.com/google/fortsema/internal/sema/position"
	"github.com/google/fortsema/internal/sema/typeval"
	"github.com/google/fortsema/internal/sema/types"
	"github.com/google/fortsema/internal/testutil"
	"github.com/pkg/errors"
)

func shape(bounds ...int) *types.Shape {
	s := &types.Shape{}
	for i := 0; i+1 < len(bounds); i += 2 {
		s.Dims = append(s.Dims, types.Dim{Lower: bounds[i], Upper: bounds[i+1]})
	}
	return s
}

func with(f func(s *Spec)) *Spec {
	s := New("A", position.Position{})
	f(s)
	return s
}

var mergeTests = []struct {
	name    string
	a, b    *Spec
	want    *Spec // nil for an error
	wantErr error
}{
	{
		"type then dimension",
		with(func(s *Spec) { s.Type = types.DefaultInteger }),
		with(func(s *Spec) { s.Shape = shape(1, 10) }),
		with(func(s *Spec) { s.Type = types.DefaultInteger; s.Shape = shape(1, 10) }),
		nil,
	},
	{
		"same shape twice",
		with(func(s *Spec) { s.Shape = shape(1, 10, 0, 2) }),
		with(func(s *Spec) { s.Shape = shape(1, 10, 0, 2) }),
		with(func(s *Spec) { s.Shape = shape(1, 10, 0, 2) }),
		nil,
	},
	{
		"different bounds",
		with(func(s *Spec) { s.Shape = shape(1, 10) }),
		with(func(s *Spec) { s.Shape = shape(0, 9) }),
		nil,
		ErrShapeConflict,
	},
	{
		"different rank",
		with(func(s *Spec) { s.Shape = shape(1, 10) }),
		with(func(s *Spec) { s.Shape = shape(1, 10, 1, 1) }),
		nil,
		ErrShapeConflict,
	},
	{
		"explicit type replaces implicit",
		NewImplicit("A", position.Position{}, types.DefaultReal),
		with(func(s *Spec) { s.Type = types.DefaultLogical }),
		with(func(s *Spec) { s.Type = types.DefaultLogical }),
		nil,
	},
	{
		"implicit does not replace explicit",
		with(func(s *Spec) { s.Type = types.DefaultLogical }),
		NewImplicit("A", position.Position{}, types.DefaultReal),
		with(func(s *Spec) { s.Type = types.DefaultLogical }),
		nil,
	},
	{
		"two explicit types",
		with(func(s *Spec) { s.Type = types.DefaultInteger }),
		with(func(s *Spec) { s.Type = types.DefaultReal }),
		nil,
		ErrTypeConflict,
	},
	{
		"character length last writer wins",
		with(func(s *Spec) { s.Type = types.NewCharacter(1, 5) }),
		with(func(s *Spec) { s.Len, s.LenSet = 8, true }),
		with(func(s *Spec) { s.Type = types.NewCharacter(1, 5); s.Len, s.LenSet = 8, true }),
		nil,
	},
	{
		"negative length",
		with(func(s *Spec) { s.Type = types.NewCharacter(1, 5) }),
		with(func(s *Spec) { s.Len, s.LenSet = -1, true }),
		nil,
		ErrLength,
	},
	{
		"attributes combine",
		with(func(s *Spec) { s.Static = true }),
		with(func(s *Spec) { s.Volatile = true }),
		with(func(s *Spec) { s.Static = true; s.Volatile = true }),
		nil,
	},
	{
		"static then automatic",
		with(func(s *Spec) { s.Static = true }),
		with(func(s *Spec) { s.Automatic = true }),
		nil,
		ErrAttrConflict,
	},
	{
		"intrinsic then external",
		with(func(s *Spec) { s.Intrinsic = true }),
		with(func(s *Spec) { s.External = true }),
		nil,
		ErrAttrConflict,
	},
	{
		"common then volatile",
		with(func(s *Spec) { s.Common, s.InCommon = "BLK", true }),
		with(func(s *Spec) { s.Volatile = true }),
		nil,
		ErrAttrConflict,
	},
	{
		"two common blocks",
		with(func(s *Spec) { s.Common, s.InCommon = "BLK", true }),
		with(func(s *Spec) { s.InCommon = true }),
		nil,
		ErrCommonConflict,
	},
}

func TestMerge(t *testing.T) {
	for _, tc := range mergeTests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			a := tc.a.Clone()
			err := Merge(a, tc.b)
			if tc.want == nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("Merge error = %v, want %v", err, tc.wantErr)
				}
				testutil.ExpectNoDiff(t, tc.a, a)
				return
			}
			testutil.FatalIfErr(t, err)
			testutil.ExpectNoDiff(t, tc.want, a)
		})
	}
}

// Compatible merges give the same result in either order; incompatible ones
// fail in either order.
func TestMergeOrderIndependent(t *testing.T) {
	for _, tc := range mergeTests {
		if tc.a.Implicit || tc.b.Implicit || tc.a.LenSet || tc.b.LenSet {
			continue
		}
		ab, ba := tc.a.Clone(), tc.b.Clone()
		errAB, errBA := Merge(ab, tc.b), Merge(ba, tc.a)
		if (errAB == nil) != (errBA == nil) {
			t.Errorf("%s: Merge(a, b) = %v but Merge(b, a) = %v", tc.name, errAB, errBA)
			continue
		}
		if errAB == nil {
			testutil.ExpectNoDiff(t, ab, ba)
		}
	}
}

func TestCheck(t *testing.T) {
	s := with(func(s *Spec) { s.Static = true; s.Automatic = true })
	if err := s.Check(); !errors.Is(err, ErrAttrConflict) {
		t.Errorf("Check() = %v", err)
	}
	s = with(func(s *Spec) { s.InCommon = true; s.External = true })
	if err := s.Check(); !errors.Is(err, ErrAttrConflict) {
		t.Errorf("Check() = %v", err)
	}
	s = with(func(s *Spec) { s.InCommon = true; s.Type = types.DefaultReal })
	testutil.FatalIfErr(t, s.Check())
}

func TestScalarType(t *testing.T) {
	s := with(func(s *Spec) { s.Type = types.DefaultCharacter; s.Len, s.LenSet = 12, true })
	if got := s.ScalarType(); !types.Equal(got, types.NewCharacter(1, 12)) {
		t.Errorf("ScalarType() = %s", got)
	}
	s = with(func(s *Spec) { s.Type = types.DefaultInteger; s.Len, s.LenSet = 12, true })
	if got := s.ScalarType(); !types.Equal(got, types.DefaultInteger) {
		t.Errorf("ScalarType() = %s", got)
	}
}

func TestResolveShape(t *testing.T) {
	c := consts{"N": typeval.Int(4)}
	lit := func(i int64) ast.Node { return &ast.IntLit{I: i} }
	got, err := ResolveShape([]ast.Node{
		lit(3),
		&ast.RangeExpr{Lower: lit(0), Upper: &ast.IDTerm{Name: "N"}},
		&ast.RangeExpr{Lower: lit(-1), Star: true},
	}, c)
	testutil.FatalIfErr(t, err)
	want := types.NewShape(types.Dim{Lower: 1, Upper: 3}, types.Dim{Lower: 0, Upper: 4}, types.Dim{Lower: -1, Assumed: true})
	testutil.ExpectNoDiff(t, want, got)

	for _, dims := range [][]ast.Node{
		nil,
		{&ast.RangeExpr{Star: true}, lit(2)},
		{&ast.RangeExpr{Lower: lit(5), Upper: lit(1)}},
		{&ast.IDTerm{Name: "M"}},
	} {
		if _, err := ResolveShape(dims, c); err == nil {
			t.Errorf("ResolveShape(%v) succeeded", dims)
		}
	}
}

func TestResolveLen(t *testing.T) {
	n, err := ResolveLen(&ast.BinaryExpr{Op: ast.Mul, LHS: &ast.IntLit{I: 2}, RHS: &ast.IntLit{I: 5}}, nil)
	testutil.FatalIfErr(t, err)
	if n != 10 {
		t.Errorf("ResolveLen = %d", n)
	}
	if _, err := ResolveLen(&ast.UnaryExpr{Op: ast.Minus, Expr: &ast.IntLit{I: 1}}, nil); !errors.Is(err, ErrLength) {
		t.Errorf("negative length error = %v", err)
	}
	if _, err := ResolveLen(&ast.IDTerm{Name: "X"}, nil); !errors.Is(err, typeval.ErrNotConstant) {
		t.Errorf("non-constant length error = %v", err)
	}
}

type consts map[string]*typeval.Value

func (c consts) Constant(name string) (*typeval.Value, bool) {
	v, ok := c[name]
	return v, ok
}
