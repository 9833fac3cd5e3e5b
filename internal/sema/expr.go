// Copyright 2016 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package sema

import (
	"github.com/golang/glog"
	"github.com/google/fortsema/internal/sema/ast"
	"github.com/google/fortsema/internal/sema/io"
	"github.com/google/fortsema/internal/sema/spec"
	"github.com/google/fortsema/internal/sema/symbol"
	"github.com/google/fortsema/internal/sema/typeval"
	"github.com/google/fortsema/internal/sema/types"
)

func (c *checker) checkID(n *ast.IDTerm) {
	if n.Type() != nil {
		return
	}
	if v, ok := c.scope.Constant(n.Name); ok {
		if n.Lvalue {
			c.errs.Errorf(&n.P, "Can't assign to PARAMETER `%s'", n.Name)
		}
		n.SetType(v.Type)
		return
	}
	d, err := c.scope.Use(n.Name, n.P)
	if err != nil {
		return
	}
	glog.V(2).Infof("Resolved %s to %s", n.Name, d)
	n.SetType(d.Type)
}

// callee returns the declaration for a reference to id as a
// function (or subroutine, if function is not set).  A name not declared
// anywhere becomes an EXTERNAL procedure of the current unit.
func (c *checker) callee(id *ast.IDTerm, function bool) (*symbol.Decl, error) {
	name := id.Name
	if d, ok := c.scope.Decls.Find(name); ok {
		return d, nil
	}
	sp, pending := c.scope.Pending(name)
	if !pending {
		if d, ok := c.scope.Lookup(name); ok {
			return d, nil
		}
		sp = spec.New(name, id.P)
	}
	if pending && sp.Shape != nil {
		return c.scope.ResolveImplicit(name, id.P, nil)
	}
	sp = sp.Clone()
	sp.External = !sp.Intrinsic
	return c.scope.Build(sp, nil, true, function)
}

// checkIndexed types an array element reference or function call, and its
// subscripts or arguments.
func (c *checker) checkIndexed(n *ast.IndexedExpr) ast.Node {
	d, err := c.callee(n.LHS, true)
	if err != nil {
		return n
	}
	d.Use()
	n.LHS.SetType(d.Type)
	for i, x := range n.Index {
		n.Index[i] = ast.Walk(c, x)
	}
	switch {
	case d.IsArray():
		if r := d.Type.Shape.Rank(); len(n.Index) != r {
			c.errs.Errorf(&n.P, "Wrong number of subscripts for `%s': %d, want %d", n.LHS.Name, len(n.Index), r)
			return n
		}
		for _, x := range n.Index {
			if t := x.Type(); t != nil && !t.IsInteger() {
				c.errs.Errorf(x.Pos(), "Subscript of `%s' must be INTEGER, not %s", n.LHS.Name, t)
				return n
			}
		}
		n.SetType(d.Type.Subtype)
	case d.Type.Kind == types.Function:
		n.SetType(d.Type.Subtype)
	default:
		c.errs.Errorf(&n.P, "`%s' is not an array or a FUNCTION", n.LHS.Name)
	}
	return n
}

func (c *checker) resolveCall(n *ast.CallStmt) {
	d, err := c.callee(n.Name, false)
	if err != nil {
		return
	}
	if d.Type.Kind != types.Subroutine {
		c.errs.Errorf(&n.P, "CALL of `%s', which is not a SUBROUTINE", n.Name.Name)
		return
	}
	d.Use()
	n.Name.SetType(d.Type)
}

func (c *checker) checkSubstring(n *ast.SubstringExpr) {
	t := n.LHS.Type()
	if t == nil {
		return
	}
	if !t.IsCharacter() {
		c.errs.Errorf(&n.P, "Substring of non-CHARACTER %s", t)
		return
	}
	for _, b := range []ast.Node{n.First, n.Last} {
		if b != nil && b.Type() != nil && !b.Type().IsInteger() {
			c.errs.Errorf(b.Pos(), "Substring bound must be INTEGER, not %s", b.Type())
			return
		}
	}
	first, last := int64(1), int64(t.Len)
	var err error
	if n.First != nil {
		if first, err = typeval.FoldInt(n.First, c.scope); err != nil {
			n.SetType(t.WithLen(0))
			return
		}
	}
	if n.Last != nil {
		if last, err = typeval.FoldInt(n.Last, c.scope); err != nil {
			n.SetType(t.WithLen(0))
			return
		}
	}
	if t.Len > 0 && (first < 1 || last > int64(t.Len) || first > last) {
		c.errs.Errorf(&n.P, "Substring (%d:%d) out of range of %s", first, last, t)
		return
	}
	n.SetType(t.WithLen(int(last - first + 1)))
}

func (c *checker) checkUnary(n *ast.UnaryExpr) {
	t := n.Expr.Type()
	if t == nil {
		return
	}
	if n.Op == ast.Not {
		if !t.IsLogical() {
			c.errs.Errorf(&n.P, "Invalid operand %s for %s", t, n.Op)
			return
		}
		n.SetType(t)
		return
	}
	if !t.IsNumeric() {
		c.errs.Errorf(&n.P, "Invalid operand %s for unary %s", t, n.Op)
		return
	}
	n.SetType(t)
}

func (c *checker) checkBinary(n *ast.BinaryExpr) ast.Node {
	lt, rt := n.LHS.Type(), n.RHS.Type()
	if lt == nil || rt == nil {
		return n
	}
	invalid := func() ast.Node {
		c.errs.Errorf(n.Pos(), "Invalid operands %s and %s for %s", lt, rt, n.Op)
		return n
	}
	switch {
	case n.Op == ast.Concat:
		if !lt.IsCharacter() || !rt.IsCharacter() || lt.Size != rt.Size {
			return invalid()
		}
		l := 0
		if lt.Len > 0 && rt.Len > 0 {
			l = lt.Len + rt.Len
		}
		n.SetType(lt.WithLen(l))
	case n.Op.IsLogical():
		if !lt.IsLogical() || !rt.IsLogical() {
			return invalid()
		}
		n.SetType(types.DefaultLogical)
	case n.Op.IsComparison():
		switch {
		case lt.IsCharacter() && rt.IsCharacter():
		case lt.IsNumeric() && rt.IsNumeric():
			if lt.IsComplex() || rt.IsComplex() {
				if n.Op != ast.Eq && n.Op != ast.Ne {
					return invalid()
				}
			}
		default:
			return invalid()
		}
		n.SetType(types.DefaultLogical)
	default:
		if !lt.IsNumeric() || !rt.IsNumeric() {
			return invalid()
		}
		n.SetType(typeval.Promote(lt, rt))
	}
	return n
}

// convert wraps n in a conversion to t if its type differs.
func convert(n ast.Node, t *types.Type) ast.Node {
	if types.Equal(n.Type(), t) {
		return n
	}
	cv := &ast.ConvExpr{N: n}
	cv.SetType(t)
	return cv
}

func (c *checker) checkAssign(n *ast.AssignStmt) {
	lt, rt := n.LHS.Type(), n.RHS.Type()
	if lt == nil || rt == nil {
		return
	}
	switch {
	case lt.IsComposite():
		c.errs.Errorf(&n.P, "Can't assign to array %s", lt)
	case lt.IsNumeric() && rt.IsNumeric():
		n.RHS = convert(n.RHS, lt)
	case lt.Kind != rt.Kind || (lt.IsCharacter() && lt.Size != rt.Size):
		c.errs.Errorf(&n.P, "Can't assign %s to %s", rt, lt)
	}
}

// checkIO checks the control list of a data transfer statement, then the
// I/O list against the FORMAT statement it names.
func (c *checker) checkIO(n *ast.IOStmt) {
	ctl, err := io.CheckControl(n, c.scope, &c.errs)
	if err != nil {
		return
	}
	for _, e := range n.List {
		if e.Type() == nil {
			if _, ok := e.(*ast.ImpliedDo); !ok {
				// An element that failed to type has already been reported.
				return
			}
		}
	}
	if err := io.ValidateDefaults(n, ctl, c.unit, &c.errs); err != nil {
		return
	}
	io.Validate(n, ctl, c.unit, &c.errs)
}
