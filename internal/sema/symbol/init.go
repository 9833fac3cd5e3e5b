// Copyright 2017 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package symbol

import (
	"github.com/golang/glog"
	"github.com/google/fortsema/internal/sema/ast"
	"github.com/google/fortsema/internal/sema/position"
	"github.com/google/fortsema/internal/sema/typeval"
	"github.com/google/fortsema/internal/sema/types"
	"github.com/pkg/errors"
)

// Init initializes the scalar declaration d with the constant expression
// expr.  Initializing again with an equal value is accepted with a warning.
func (s *Scope) Init(d *Decl, expr ast.Node) error {
	pos := expr.Pos()
	if d.Used {
		return s.errs.Errorf(pos, "Can't initialize declaration after use.")
	}
	if d.IsComposite() {
		return s.errs.Errorf(pos, "Can't initialize non-scalar declaration with expression.")
	}
	return s.setValue(d, &d.init, d.Type, expr)
}

// InitAt initializes the element at the column-major offset of the array d.
// An offset outside the array is warned about and the value discarded.
func (s *Scope) InitAt(d *Decl, offset int, expr ast.Node) error {
	slot, t, err := s.element(d, offset, expr.Pos())
	if err != nil || slot == nil {
		return err
	}
	return s.setValue(d, slot, t, expr)
}

// InitArray distributes exprs over the elements of d in column-major order.
// Extra values are dropped with a warning.  A scalar d takes exactly one
// value.  Initializing a section given by slice is not supported.
func (s *Scope) InitArray(d *Decl, slice *types.Shape, exprs []ast.Node) error {
	if len(exprs) == 0 {
		return nil
	}
	pos := exprs[0].Pos()
	if slice != nil {
		return s.errs.Errorf(pos, "Initialization of array section of `%s' not supported", d.Name)
	}
	if !d.IsComposite() {
		if len(exprs) > 1 {
			return s.errs.Errorf(pos, "Too many initializers for scalar `%s'", d.Name)
		}
		return s.Init(d, exprs[0])
	}
	n, ok := d.ElemCount()
	if !ok {
		return s.errs.Errorf(pos, "Can't initialize `%s' of unknown size", d.Name)
	}
	if len(exprs) > n {
		s.errs.Warnf(pos, "Array initializer too large, truncating.")
		exprs = exprs[:n]
	}
	for i, e := range exprs {
		if err := s.InitAt(d, i, e); err != nil {
			return err
		}
	}
	return nil
}

// InitSubstring initializes bytes first through last of the CHARACTER
// declaration d.  first and last are constant expressions, and default to
// the whole string when nil.
func (s *Scope) InitSubstring(d *Decl, expr, first, last ast.Node) error {
	pos := expr.Pos()
	if d.Used {
		return s.errs.Errorf(pos, "Can't initialize declaration after use.")
	}
	if d.IsComposite() {
		return s.errs.Errorf(pos, "Can't initialize non-scalar declaration with expression.")
	}
	return s.setSubstring(d, &d.init, d.Type, expr, first, last)
}

// InitSubstringAt is InitSubstring for one element of the CHARACTER array d.
func (s *Scope) InitSubstringAt(d *Decl, offset int, expr, first, last ast.Node) error {
	slot, t, err := s.element(d, offset, expr.Pos())
	if err != nil || slot == nil {
		return err
	}
	return s.setSubstring(d, slot, t, expr, first, last)
}

// element returns the initializer slot for offset within d, allocating the
// element slots on first use.  A nil slot with a nil error means the offset
// was out of range and has been warned about.
func (s *Scope) element(d *Decl, offset int, pos *position.Position) (*initializer, *types.Type, error) {
	if d.Used {
		return nil, nil, s.errs.Errorf(pos, "Can't initialize declaration after use.")
	}
	t := d.elemType()
	if t == nil {
		return nil, nil, s.errs.Errorf(pos, "Can't initialize elements of non-array `%s'", d.Name)
	}
	n, ok := d.ElemCount()
	if !ok {
		return nil, nil, s.errs.Errorf(pos, "Can't initialize elements of `%s' of unknown size", d.Name)
	}
	if offset < 0 || offset >= n {
		s.errs.Warnf(pos, "Initializer offset %d out of range of `%s', ignored", offset, d.Name)
		return nil, nil, nil
	}
	if d.elems == nil {
		d.elems = make([]initializer, n)
	}
	return &d.elems[offset], t, nil
}

func (s *Scope) constant(expr ast.Node) (*typeval.Value, error) {
	v, err := typeval.Fold(expr, s)
	if err != nil {
		if errors.Is(err, typeval.ErrNotConstant) {
			return nil, s.errs.Errorf(expr.Pos(), "Initializer element not constant.")
		}
		return nil, s.errs.Errorf(expr.Pos(), "%s", err)
	}
	return v, nil
}

func (s *Scope) setValue(d *Decl, slot *initializer, t *types.Type, expr ast.Node) error {
	pos := expr.Pos()
	v, err := s.constant(expr)
	if err != nil {
		return err
	}
	c, err := typeval.Cast(v, t)
	if err != nil {
		return s.errs.Errorf(pos, "%s", err)
	}
	switch old := (*slot).(type) {
	case nil:
		*slot = valueInit{c}
		glog.V(2).Infof("Initialized %s = %s", d.Name, c)
	case valueInit:
		if !typeval.Equal(old.v, c) {
			return s.errs.Errorf(pos, "Conflicting initialization of `%s': %s was initialized to %s", d.Name, c, old.v)
		}
		s.errs.Warnf(pos, "Duplicate initialization.")
	case *substringInit:
		return s.errs.Errorf(pos, "Can't mix substring and whole value initialization of `%s'", d.Name)
	}
	return nil
}

func (s *Scope) setSubstring(d *Decl, slot *initializer, t *types.Type, expr, first, last ast.Node) error {
	pos := expr.Pos()
	if !t.IsCharacter() {
		return s.errs.Errorf(pos, "Substring initialization of non-CHARACTER `%s'", d.Name)
	}
	if t.Len <= 0 {
		return s.errs.Errorf(pos, "Substring initialization of assumed length `%s'", d.Name)
	}
	lo, hi := int64(1), int64(t.Len)
	var err error
	if first != nil {
		if lo, err = typeval.FoldInt(first, s); err != nil {
			return s.errs.Errorf(first.Pos(), "Substring start must be an INTEGER constant: %s", err)
		}
	}
	if last != nil {
		if hi, err = typeval.FoldInt(last, s); err != nil {
			return s.errs.Errorf(last.Pos(), "Substring end must be an INTEGER constant: %s", err)
		}
	}
	switch {
	case lo < 1:
		return s.errs.Errorf(pos, "Substring start %d of `%s' out of range, substrings start at 1", lo, d.Name)
	case lo > hi:
		return s.errs.Errorf(pos, "Substring (%d:%d) of `%s' is reversed", lo, hi, d.Name)
	case hi > int64(t.Len):
		return s.errs.Errorf(pos, "Substring end %d out of range of `%s' of length %d", hi, d.Name, t.Len)
	case lo == hi:
		s.errs.Warnf(pos, "Empty substring (%d:%d) of `%s' ignored", lo, hi, d.Name)
		return nil
	}

	v, err := s.constant(expr)
	if err != nil {
		return err
	}
	n := int(hi - lo + 1)
	c, err := typeval.Cast(v, t.WithLen(n))
	if err != nil {
		return s.errs.Errorf(pos, "%s", err)
	}

	var sub *substringInit
	switch old := (*slot).(type) {
	case nil:
		if n == t.Len {
			*slot = valueInit{typeval.Typed(t, c)}
			return nil
		}
		sub = newSubstringInit(t.Len)
	case *substringInit:
		sub = old
	case valueInit:
		return s.errs.Errorf(pos, "Can't mix substring and whole value initialization of `%s'", d.Name)
	}

	start := int(lo - 1)
	overlap := false
	for i := 0; i < n; i++ {
		b := uint(start + i)
		if !sub.mask.Test(b) {
			continue
		}
		if sub.buf[b] != c.S[i] {
			return s.errs.Errorf(pos, "Substring initializer of `%s' has a different value at offset %d", d.Name, b+1)
		}
		overlap = true
	}
	for i := 0; i < n; i++ {
		sub.buf[start+i] = c.S[i]
		sub.mask.Set(uint(start + i))
	}
	*slot = sub
	if overlap {
		s.errs.Warnf(pos, "Overlapping substring initialization of `%s'", d.Name)
	}
	glog.V(2).Infof("Initialized %s(%d:%d) = %s", d.Name, lo, hi, c)
	return nil
}
