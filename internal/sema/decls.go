// Copyright 2016 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package sema

import (
	"github.com/golang/glog"
	"github.com/google/fortsema/internal/sema/ast"
	"github.com/google/fortsema/internal/sema/position"
	"github.com/google/fortsema/internal/sema/spec"
	"github.com/google/fortsema/internal/sema/symbol"
	"github.com/google/fortsema/internal/sema/typeval"
	"github.com/google/fortsema/internal/sema/types"
)

// constants returns the named constants visible to constant expressions.
func (c *checker) constants() typeval.Constants {
	if c.scope == nil {
		return nil
	}
	return c.scope
}

// typeOf returns the scalar type named by a type specification.
func (c *checker) typeOf(ts *ast.TypeSpec) (*types.Type, error) {
	switch ts.Kind {
	case types.Character:
		l := 1
		switch {
		case ts.LenStar:
			l = 0
		case ts.Len != nil:
			var err error
			if l, err = spec.ResolveLen(ts.Len, c.constants()); err != nil {
				return nil, c.errs.Errorf(&ts.P, "%s", err)
			}
		}
		return types.NewCharacter(ts.Size, l), nil
	case types.Logical, types.Integer, types.Real, types.Complex, types.Byte:
		t := types.NewScalar(ts.Kind, ts.Size)
		switch {
		case ts.Kind == types.Complex && t.Size != 4 && t.Size != 8 && t.Size != 16:
		case ts.Kind == types.Byte && t.Size != 1:
		case t.Size != 1 && t.Size != 2 && t.Size != 4 && t.Size != 8 && t.Size != 16:
		default:
			return t, nil
		}
		return nil, c.errs.Errorf(&ts.P, "KIND %d not supported for %s", t.Size, ts.Kind)
	}
	return nil, c.errs.Errorf(&ts.P, "%s is not a scalar type", ts.Kind)
}

func (c *checker) checkImplicit(n *ast.ImplicitStmt) {
	if n.None {
		if err := c.scope.Implicit.None(); err != nil {
			c.errs.Errorf(&n.P, "%s", err)
		}
		return
	}
	for _, r := range n.Rules {
		t, err := c.typeOf(r.Spec)
		if err != nil {
			continue
		}
		for _, lr := range r.Ranges {
			if err := c.scope.Implicit.Set(lr.First, lr.Last, t); err != nil {
				c.errs.Errorf(&n.P, "%s", err)
			}
		}
	}
}

// entitySpec returns the overlay contributed by an entity of a declaration
// statement: its bounds and its length or KIND override.  t is the type
// given by the statement, or nil.
func (c *checker) entitySpec(e *ast.Entity, t *types.Type) (*spec.Spec, error) {
	sp := spec.New(e.Name, e.P)
	sp.Type = t
	switch {
	case e.LenStar:
		if t != nil && !t.IsCharacter() {
			return nil, c.errs.Errorf(&e.P, "Assumed length `*(*)' of non-CHARACTER `%s'", e.Name)
		}
		sp.Len, sp.LenSet = 0, true
	case e.Len != nil:
		l, err := spec.ResolveLen(e.Len, c.constants())
		if err != nil {
			return nil, c.errs.Errorf(&e.P, "%s", err)
		}
		if t != nil && !t.IsCharacter() {
			// `INTEGER A*2' overrides the KIND of the statement.
			sp.Type = t.WithSize(l)
			break
		}
		sp.Len, sp.LenSet = l, true
	}
	if len(e.Dims) > 0 {
		shape, err := spec.ResolveShape(e.Dims, c.constants())
		if err != nil {
			return nil, c.errs.Errorf(&e.P, "Bad array bounds for `%s': %s", e.Name, err)
		}
		sp.Shape = shape
	}
	return sp, nil
}

func (c *checker) checkTypeDecl(n *ast.TypeDecl) {
	t, err := c.typeOf(n.Spec)
	if err != nil {
		return
	}
	for _, e := range n.Entities {
		sp, err := c.entitySpec(e, t)
		if err != nil {
			continue
		}
		if err := c.scope.MergeSpec(sp); err != nil {
			continue
		}
		if e.Init == nil && e.InitList == nil {
			continue
		}
		d, err := c.local(e.Name, e.P)
		if err != nil {
			continue
		}
		if e.Init != nil {
			c.scope.Init(d, e.Init)
			continue
		}
		values, err := c.dataValues(e.InitList)
		if err != nil {
			continue
		}
		c.scope.InitArray(d, nil, values)
	}
}

func (c *checker) checkDimension(n *ast.DimensionStmt) {
	for _, e := range n.Entities {
		if len(e.Dims) == 0 {
			c.errs.Errorf(&e.P, "DIMENSION of `%s' has no bounds", e.Name)
			continue
		}
		if sp, err := c.entitySpec(e, nil); err == nil {
			c.scope.MergeSpec(sp)
		}
	}
}

func (c *checker) checkAttr(n *ast.AttrStmt) {
	for _, e := range n.Entities {
		sp := spec.New(e.Name, e.P)
		switch n.Attr {
		case ast.Static, ast.Save:
			sp.Static = true
		case ast.Automatic:
			sp.Automatic = true
		case ast.Volatile:
			sp.Volatile = true
		case ast.Intrinsic:
			sp.Intrinsic = true
		case ast.External:
			sp.External = true
		}
		c.scope.MergeSpec(sp)
	}
}

func (c *checker) checkCommon(n *ast.CommonStmt) {
	for _, g := range n.Groups {
		for _, e := range g.Entities {
			if err := c.scope.AddToCommon(g.Name, e.Name, e.P); err != nil {
				continue
			}
			if len(e.Dims) == 0 {
				continue
			}
			if sp, err := c.entitySpec(e, nil); err == nil {
				c.scope.MergeSpec(sp)
			}
		}
	}
}

func (c *checker) checkParameter(n *ast.ParameterStmt) {
	for _, a := range n.Assigns {
		v, err := typeval.Fold(a.Value, c.scope)
		if err != nil {
			c.errs.Errorf(&a.P, "PARAMETER `%s' value is not constant: %s", a.Name, err)
			continue
		}
		c.scope.DefineParameter(a.Name, a.P, v)
	}
}

// local returns the declaration of name in the current unit, building it
// from its pending specification if needed.  Host declarations are not
// considered: only local objects can be initialized.
func (c *checker) local(name string, pos position.Position) (*symbol.Decl, error) {
	if d, ok := c.scope.Decls.Find(name); ok {
		return d, nil
	}
	glog.V(2).Infof("Finalizing %s for initialization", name)
	return c.scope.ResolveImplicit(name, pos, nil)
}
