// Copyright 2017 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package io

import (
	"github.com/golang/glog"
	"github.com/google/fortsema/internal/sema/ast"
	"github.com/google/fortsema/internal/sema/errors"
	"github.com/google/fortsema/internal/sema/format"
	"github.com/google/fortsema/internal/sema/types"
)

// Formats finds the FORMAT statements of a scope by label.
type Formats interface {
	FormatStmt(label int) (*format.Statement, bool)
}

// ElemCount returns the number of scalar elements transferred by list, and
// false if that is not known statically.
func ElemCount(list []ast.Node) (int, bool) {
	c := 0
	for _, n := range list {
		if _, ok := n.(*ast.ImpliedDo); ok {
			return 0, false
		}
		t := n.Type()
		if t == nil {
			return 0, false
		}
		e, ok := t.ElemCount()
		if !ok {
			return 0, false
		}
		c += e
	}
	return c, true
}

// ListHasComplex returns the number of extra data descriptors needed by the
// COMPLEX elements of list, each of which takes two.
func ListHasComplex(list []ast.Node) (int, bool) {
	c := 0
	for _, n := range list {
		t := n.Type()
		if t == nil {
			return 0, false
		}
		if !t.Base().IsComplex() {
			continue
		}
		e, ok := t.ElemCount()
		if !ok {
			return 0, false
		}
		c += e
	}
	return c, true
}

// castable reports whether a value of type from can be converted to to.
func castable(from, to *types.Type) bool {
	switch {
	case from == nil || to == nil:
		return false
	case from.IsNumeric() && to.IsNumeric():
		return true
	}
	return from.Kind == to.Kind
}

// CompareTypes checks the element n of type t against the descriptors of l
// starting at *offset, advancing *offset past the descriptors it uses.  A
// descriptor of the wrong kind is warned about.  On output a scalar element
// is converted to the type the descriptor expects, and the converted node
// is returned; otherwise n is returned.
func CompareTypes(ctl *Control, n ast.Node, t *types.Type, l *format.List, offset *int, errs *errors.ErrorList) (ast.Node, error) {
	next := func() *format.Desc {
		if *offset >= len(l.Descs) {
			return nil
		}
		d := l.Descs[*offset]
		*offset++
		return d
	}

	if t.IsComplex() {
		for i := 0; i < 2; i++ {
			d := next()
			if d == nil {
				return n, nil
			}
			if !format.Compatible(d.Kind, t) {
				errs.Warnf(n.Pos(), "Trying to format a %s output with a %s FORMAT descriptor", t, d.Kind)
			}
		}
		return n, nil
	}

	d := next()
	if d == nil {
		return n, nil
	}
	if !format.Compatible(d.Kind, t) {
		errs.Warnf(n.Pos(), "Trying to format a %s output with a %s FORMAT descriptor", t, d.Kind)
		if ctl.IsInput() || !t.IsScalar() {
			return n, nil
		}
		dt := format.Type(d)
		if !castable(t, dt) {
			return n, nil
		}
		glog.Infof("%s: converting %s to %s for %s descriptor", n.Pos(), t, dt, d.Kind)
		c := &ast.ConvExpr{N: n}
		c.SetType(dt)
		return c, nil
	}
	if d.Kind == format.Character && t.Base().Size != 1 {
		return n, errs.Errorf(n.Pos(), "CHARACTER type KIND not supported in %s", ctl.Kind)
	}
	return n, nil
}

// compareList checks every element of list against l.  When replace is set,
// converted output elements replace the originals in list.
func compareList(ctl *Control, list []ast.Node, l *format.List, replace bool, errs *errors.ErrorList) error {
	offset := 0
	for i, n := range list {
		t := n.Type()
		count, _ := t.ElemCount()
		if t.IsScalar() {
			count = 1
		}
		for j := 0; j < count; j++ {
			r, err := CompareTypes(ctl, n, t.Base(), l, &offset, errs)
			if err != nil {
				return err
			}
			if replace && r != n && t.IsScalar() {
				list[i] = r
			}
		}
	}
	return nil
}

// lookup resolves the FORMAT statement named by the control list, if any.
// It returns nil without error for transfers whose format is not a
// statement label.
func lookup(stmt *ast.IOStmt, ctl *Control, fs Formats, errs *errors.ErrorList) (*format.Statement, error) {
	if !ctl.HasLabel {
		return nil, nil
	}
	st, ok := fs.FormatStmt(ctl.Label)
	if !ok {
		return nil, errs.Errorf(&stmt.P, "FORMAT label must point to a FORMAT statement")
	}
	return st, nil
}

// Validate matches the I/O list of stmt against the FORMAT statement its
// control list names.  Length mismatches are warned about.  Output elements
// that need a conversion to match their descriptors are replaced in
// stmt.List.
func Validate(stmt *ast.IOStmt, ctl *Control, fs Formats, errs *errors.ErrorList) error {
	st, err := lookup(stmt, ctl, fs, errs)
	if st == nil {
		return err
	}
	pos := ctl.pos(stmt)
	data := format.DataCount(st.Format())

	n, ok := ElemCount(stmt.List)
	if !ok {
		glog.V(2).Infof("%s: I/O list length not constant, skipping FORMAT check", pos)
		return nil
	}
	if n == 0 {
		if data > 0 {
			errs.Warnf(pos, "No IO list in formatted IO statement")
		}
		return nil
	}
	extra, ok := ListHasComplex(stmt.List)
	if !ok {
		return nil
	}
	n += extra

	switch {
	case data == 0:
		errs.Warnf(pos, "No data edit descriptors in FORMAT list")
		return nil
	case n < data:
		errs.Warnf(pos, "IO list shorter than FORMAT list, last FORMAT data descriptors will be ignored")
	case n%data != 0:
		errs.Warnf(pos, "IO list length is not a multiple of FORMAT list length")
	}
	return compareList(ctl, stmt.List, st.Expand(n), true, errs)
}

// ValidateDefaults specializes the FORMAT statement named by the control
// list for the I/O list of stmt, then checks the list against the
// specialization.  A specialization the list does not fit is discarded, and
// no further specialization is attempted for that statement.
func ValidateDefaults(stmt *ast.IOStmt, ctl *Control, fs Formats, errs *errors.ErrorList) error {
	st, err := lookup(stmt, ctl, fs, errs)
	if st == nil || !st.DefaultPossible {
		return err
	}
	elems, ok := scalarTypes(stmt.List)
	if !ok || len(elems) == 0 {
		return nil
	}
	pos := ctl.pos(stmt)
	if !st.CheckDefault(pos, elems, errs) || st.Default == nil {
		return nil
	}
	if format.DataCount(st.Default) == 0 {
		return nil
	}

	var scratch errors.ErrorList
	if err := compareList(ctl, stmt.List, st.Expand(len(elems)), false, &scratch); err != nil || len(scratch) > 0 {
		glog.Infof("FORMAT %d: specialization %s does not fit the I/O list at %s, discarding", st.Label, st.Default, pos)
		st.DiscardDefault()
	}
	return nil
}

// scalarTypes flattens the types of list to one entry per data edit
// descriptor it consumes.  A COMPLEX element takes two, its REAL parts.
func scalarTypes(list []ast.Node) ([]*types.Type, bool) {
	if _, ok := ElemCount(list); !ok {
		return nil, false
	}
	var r []*types.Type
	for _, n := range list {
		t := n.Type()
		b := t.Base()
		parts := []*types.Type{b}
		if b.IsComplex() {
			part := types.NewScalar(types.Real, b.Size)
			parts = []*types.Type{part, part}
		}
		c, _ := t.ElemCount()
		for i := 0; i < c; i++ {
			r = append(r, parts...)
		}
	}
	return r, true
}
