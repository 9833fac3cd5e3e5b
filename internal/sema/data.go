// Copyright 2016 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package sema

import (
	"strings"

	"github.com/google/fortsema/internal/sema/ast"
	"github.com/google/fortsema/internal/sema/position"
	"github.com/google/fortsema/internal/sema/symbol"
	"github.com/google/fortsema/internal/sema/typeval"
)

// maxDataIterations bounds the number of targets an implied-DO in a DATA
// statement may expand to.
const maxDataIterations = 1 << 20

// dataValues expands the repeat counts of a DATA value list.
func (c *checker) dataValues(list []*ast.DataValue) ([]ast.Node, error) {
	var r []ast.Node
	for _, v := range list {
		n := int64(1)
		if v.Repeat != nil {
			var err error
			if n, err = typeval.FoldInt(v.Repeat, c.scope); err != nil {
				return nil, c.errs.Errorf(v.Value.Pos(), "DATA repeat count is not an INTEGER constant: %s", err)
			}
			if n <= 0 {
				return nil, c.errs.Errorf(v.Value.Pos(), "DATA repeat count %d must be positive", n)
			}
			if n > maxDataIterations {
				return nil, c.errs.Errorf(v.Value.Pos(), "DATA repeat count %d too large", n)
			}
		}
		for i := int64(0); i < n; i++ {
			r = append(r, v.Value)
		}
	}
	return r, nil
}

// doConstants resolves the variable of an implied-DO to its current value,
// and every other name through the enclosing constants.
type doConstants struct {
	outer         typeval.Constants
	name          string
	value         *typeval.Value
	caseSensitive bool
}

func (d *doConstants) Constant(name string) (*typeval.Value, bool) {
	if name == d.name || (!d.caseSensitive && strings.EqualFold(name, d.name)) {
		return d.value, true
	}
	return d.outer.Constant(name)
}

// dataTarget is one target of a DATA statement, with the constants its
// subscripts are folded with.
type dataTarget struct {
	n ast.Node
	c typeval.Constants
}

// expandTargets flattens the implied-DO lists among targets.
func (c *checker) expandTargets(targets []ast.Node, consts typeval.Constants, r []dataTarget) ([]dataTarget, error) {
	for _, t := range targets {
		do, ok := t.(*ast.ImpliedDo)
		if !ok {
			r = append(r, dataTarget{t, consts})
			continue
		}
		start, err := typeval.FoldInt(do.Start, consts)
		if err != nil {
			return nil, c.errs.Errorf(&do.P, "Implied-DO start in DATA is not constant: %s", err)
		}
		end, err := typeval.FoldInt(do.End, consts)
		if err != nil {
			return nil, c.errs.Errorf(&do.P, "Implied-DO end in DATA is not constant: %s", err)
		}
		step := int64(1)
		if do.Step != nil {
			if step, err = typeval.FoldInt(do.Step, consts); err != nil {
				return nil, c.errs.Errorf(&do.P, "Implied-DO step in DATA is not constant: %s", err)
			}
		}
		if step == 0 {
			return nil, c.errs.Errorf(&do.P, "Implied-DO step in DATA is zero")
		}
		for i := start; (step > 0 && i <= end) || (step < 0 && i >= end); i += step {
			if len(r) > maxDataIterations {
				return nil, c.errs.Errorf(&do.P, "Implied-DO in DATA expands to too many targets")
			}
			inner := &doConstants{consts, do.Var.Name, typeval.Int(i), c.caseSensitive}
			if r, err = c.expandTargets(do.Body, inner, r); err != nil {
				return nil, err
			}
		}
	}
	return r, nil
}

func (c *checker) checkData(n *ast.DataStmt) {
	for _, set := range n.Sets {
		values, err := c.dataValues(set.Values)
		if err != nil {
			continue
		}
		targets, err := c.expandTargets(set.Targets, c.scope, nil)
		if err != nil {
			continue
		}
		next := 0
		for _, t := range targets {
			if next >= len(values) {
				c.errs.Errorf(&n.P, "Not enough values in DATA statement")
				break
			}
			used, err := c.dataTarget(t, values[next:])
			if err != nil && used == 0 {
				// Skip the value the target would have taken.
				used = 1
			}
			next += used
		}
		if next < len(values) && len(targets) > 0 {
			c.errs.Errorf(values[next].Pos(), "Too many values in DATA statement")
		}
	}
}

// dataTarget initializes one target from the start of values, and returns
// the number of values used.
func (c *checker) dataTarget(t dataTarget, values []ast.Node) (int, error) {
	switch n := t.n.(type) {
	case *ast.IDTerm:
		d, err := c.local(n.Name, n.P)
		if err != nil {
			return 0, err
		}
		if !d.IsComposite() {
			return 1, c.scope.Init(d, values[0])
		}
		count, ok := d.ElemCount()
		if !ok {
			return 0, c.errs.Errorf(&n.P, "Can't initialize array `%s' of unknown size", n.Name)
		}
		if count > len(values) {
			return len(values), c.errs.Errorf(&n.P, "Not enough values in DATA statement")
		}
		return count, c.scope.InitArray(d, nil, values[:count])

	case *ast.IndexedExpr:
		d, offset, err := c.element(n, t.c)
		if err != nil {
			return 0, err
		}
		return 1, c.scope.InitAt(d, offset, values[0])

	case *ast.SubstringExpr:
		switch l := n.LHS.(type) {
		case *ast.IDTerm:
			d, err := c.local(l.Name, l.P)
			if err != nil {
				return 0, err
			}
			return 1, c.scope.InitSubstring(d, values[0], c.folded(n.First, t.c), c.folded(n.Last, t.c))
		case *ast.IndexedExpr:
			d, offset, err := c.element(l, t.c)
			if err != nil {
				return 0, err
			}
			return 1, c.scope.InitSubstringAt(d, offset, values[0], c.folded(n.First, t.c), c.folded(n.Last, t.c))
		}
	}
	return 0, c.errs.Errorf(t.n.Pos(), "Invalid DATA statement target")
}

// element returns the array and element offset named by an array element
// reference whose subscripts are constant.
func (c *checker) element(n *ast.IndexedExpr, consts typeval.Constants) (*symbol.Decl, int, error) {
	d, err := c.local(n.LHS.Name, n.LHS.P)
	if err != nil {
		return nil, 0, err
	}
	if !d.IsArray() {
		return nil, 0, c.errs.Errorf(&n.P, "`%s' is not an array", n.LHS.Name)
	}
	subs := make([]int, 0, len(n.Index))
	for _, x := range n.Index {
		v, err := typeval.FoldInt(x, consts)
		if err != nil {
			return nil, 0, c.errs.Errorf(x.Pos(), "DATA subscript of `%s' is not constant: %s", n.LHS.Name, err)
		}
		subs = append(subs, int(v))
	}
	if len(subs) != d.Type.Shape.Rank() {
		return nil, 0, c.errs.Errorf(&n.P, "Wrong number of subscripts for `%s': %d, want %d", n.LHS.Name, len(subs), d.Type.Shape.Rank())
	}
	offset, ok := d.Type.Shape.Offset(subs)
	if !ok {
		return nil, 0, c.errs.Errorf(&n.P, "DATA subscript of `%s' out of bounds", n.LHS.Name)
	}
	return d, offset, nil
}

// folded replaces a bound expression by its constant value, so that
// implied-DO variables are resolved.  Bounds that can't be folded are
// returned as they are, for the initializer to report.
func (c *checker) folded(n ast.Node, consts typeval.Constants) ast.Node {
	if n == nil {
		return nil
	}
	v, err := typeval.FoldInt(n, consts)
	if err != nil {
		return n
	}
	return &ast.IntLit{P: *positionOf(n), I: v}
}

func positionOf(n ast.Node) *position.Position {
	if p := n.Pos(); p != nil {
		return p
	}
	return &position.Position{}
}
