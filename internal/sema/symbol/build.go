// Copyright 2017 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package symbol

import (
	"github.com/golang/glog"
	"github.com/google/fortsema/internal/sema/position"
	"github.com/google/fortsema/internal/sema/spec"
	"github.com/google/fortsema/internal/sema/types"
)

// Build turns the overlay sp into a declaration of s.  shape, if not nil, is
// an array shape given alongside the overlay.  isProcedure selects a
// procedure declaration, which is a function if isFunction is set and a
// subroutine otherwise.  On success the declaration is added to s.Decls,
// bound into its COMMON block if it has one, and any pending overlay for its
// name is dropped.
func (s *Scope) Build(sp *spec.Spec, shape *types.Shape, isProcedure, isFunction bool) (*Decl, error) {
	pos := &sp.Pos
	if err := sp.Check(); err != nil {
		return nil, s.errs.Errorf(pos, "%s", err)
	}

	d := &Decl{
		Name:      sp.Name,
		Pos:       sp.Pos,
		Static:    sp.Static,
		Automatic: sp.Automatic,
		Volatile:  sp.Volatile,
		Intrinsic: sp.Intrinsic,
		External:  sp.External,
	}

	if isProcedure {
		switch {
		case sp.Static || sp.Automatic || sp.Volatile:
			return nil, s.errs.Errorf(pos, "Procedure `%s' can't be STATIC, AUTOMATIC or VOLATILE", sp.Name)
		case sp.InCommon:
			return nil, s.errs.Errorf(pos, "Procedure `%s' can't be in COMMON", sp.Name)
		case sp.Shape != nil || shape != nil:
			return nil, s.errs.Errorf(pos, "Procedure `%s' can't have array bounds", sp.Name)
		}
		if !isFunction {
			if sp.HasExplicitType() || sp.LenSet {
				return nil, s.errs.Errorf(pos, "SUBROUTINE `%s' can't have a type, kind or length", sp.Name)
			}
			d.Type = types.NewSubroutine()
		} else {
			rt, err := s.scalarType(sp)
			if err != nil {
				return nil, err
			}
			d.Type = types.NewFunction(rt)
		}
	} else {
		if sp.Intrinsic || sp.External {
			return nil, s.errs.Errorf(pos, "INTRINSIC or EXTERNAL `%s' must be a procedure", sp.Name)
		}
		t, err := s.scalarType(sp)
		if err != nil {
			return nil, err
		}
		switch {
		case sp.Shape != nil && shape != nil:
			if !sp.Shape.Equal(shape) {
				return nil, s.errs.Errorf(pos, "Conflicting array bounds for `%s': %s and %s", sp.Name, sp.Shape, shape)
			}
			s.errs.Warnf(pos, "Duplicate array bounds for `%s'", sp.Name)
		case sp.Shape != nil:
			shape = sp.Shape
		}
		if shape != nil {
			t = types.NewArray(t, shape)
		}
		d.Type = t
	}

	if alt, err := s.Decls.Add(d); err != nil {
		return nil, s.redeclared(pos, sp.Name, alt)
	}
	if sp.InCommon {
		s.Common(sp.Common, sp.Pos).bind(sp.Slot, d)
	}
	s.dropSpec(sp.Name)
	declsBuilt.Add(1)
	glog.V(2).Infof("Built declaration %s in scope %q", d, s.Name)
	return d, nil
}

// scalarType returns the scalar type given by sp, falling back to the
// implicit typing table.
func (s *Scope) scalarType(sp *spec.Spec) (*types.Type, error) {
	if t := sp.ScalarType(); t != nil {
		return t, nil
	}
	t, ok := s.Implicit.LookupName(sp.Name)
	if !ok {
		return nil, s.errs.Errorf(&sp.Pos, "No IMPLICIT type for `%s'", sp.Name)
	}
	if t.IsCharacter() && sp.LenSet {
		t = t.WithLen(sp.Len)
	}
	return t, nil
}

// ResolveImplicit declares name from its pending overlay, or from the
// implicit typing table if it has none.  A name marked INTRINSIC or
// EXTERNAL becomes a procedure: a function if it was given a type, else a
// subroutine.
func (s *Scope) ResolveImplicit(name string, pos position.Position, shape *types.Shape) (*Decl, error) {
	sp, ok := s.Pending(name)
	if !ok {
		sp = spec.New(name, pos)
		if t, ok := s.Implicit.LookupName(name); ok {
			sp = spec.NewImplicit(name, pos, t)
		}
	}
	if sp.IsProcedure() {
		return s.Build(sp, shape, true, sp.HasExplicitType())
	}
	return s.Build(sp, shape, false, false)
}

// Use returns the declaration of name for a reference from executable code,
// declaring it implicitly if needed, and locks its initializers.  A name
// specified in s shadows a host declaration of the same name.
func (s *Scope) Use(name string, pos position.Position) (*Decl, error) {
	d, ok := s.Decls.Find(name)
	if _, pending := s.Pending(name); !ok && !pending && s.Host != nil {
		d, ok = s.Host.Find(name)
	}
	if !ok {
		var err error
		if d, err = s.ResolveImplicit(name, pos, nil); err != nil {
			return nil, err
		}
	}
	d.Use()
	return d, nil
}

// FinalizePending builds every pending overlay, in the order the names were
// first mentioned.  It returns the first error, after trying every name.
func (s *Scope) FinalizePending() error {
	var first error
	for _, name := range s.PendingNames() {
		sp, _ := s.Pending(name)
		if _, err := s.ResolveImplicit(name, sp.Pos, nil); err != nil {
			// A failed overlay is not retried.
			s.dropSpec(name)
			if first == nil {
				first = err
			}
		}
	}
	return first
}
