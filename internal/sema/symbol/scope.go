// Copyright 2017 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package symbol

import (
	"expvar"

	"github.com/golang/glog"
	"github.com/google/fortsema/internal/sema/errors"
	"github.com/google/fortsema/internal/sema/implicit"
	"github.com/google/fortsema/internal/sema/position"
	"github.com/google/fortsema/internal/sema/spec"
	"github.com/google/fortsema/internal/sema/typeval"
	"github.com/google/fortsema/internal/sema/types"
	"golang.org/x/exp/slices"
)

var declsBuilt = expvar.NewInt("decls_built_total")

// Scope is one lexical unit: a main program, subprogram body, or the global
// scope holding the procedures of a compilation.  A scope owns its
// declarations, and through them the bodies of any procedures it declares.
type Scope struct {
	Name string

	Decls    *DeclList
	Implicit *implicit.Table

	// Host exposes the declarations of an enclosing scope, or is nil.
	Host Finder

	errs *errors.ErrorList

	specs     map[string]*spec.Spec // pending overlays by key
	specOrder []string              // keys of specs in first-mention order

	params  map[string]*typeval.Value
	commons map[string]*CommonBlock
	blocks  []*CommonBlock
}

// NewScope returns an empty scope with the default implicit typing table.
// Diagnostics are recorded in errs.
func NewScope(name string, caseSensitive bool, errs *errors.ErrorList) *Scope {
	glog.V(2).Infof("Created new scope %q", name)
	return &Scope{
		Name:     name,
		Decls:    NewDeclList(caseSensitive),
		Implicit: implicit.New(),
		errs:     errs,
		specs:    make(map[string]*spec.Spec),
		params:   make(map[string]*typeval.Value),
		commons:  make(map[string]*CommonBlock),
	}
}

// Errors returns the diagnostics sink of s.
func (s *Scope) Errors() *errors.ErrorList { return s.errs }

func (s *Scope) key(name string) string { return s.Decls.Key(name) }

// Lookup finds name among the declarations of s, then of its host.
func (s *Scope) Lookup(name string) (*Decl, bool) {
	if d, ok := s.Decls.Find(name); ok {
		return d, true
	}
	if s.Host != nil {
		return s.Host.Find(name)
	}
	return nil, false
}

// Constant implements typeval.Constants for the PARAMETERs of s.
func (s *Scope) Constant(name string) (*typeval.Value, bool) {
	v, ok := s.params[s.key(name)]
	return v, ok
}

// Pending returns the overlay accumulated for name, if it has not yet been
// built into a declaration.
func (s *Scope) Pending(name string) (*spec.Spec, bool) {
	sp, ok := s.specs[s.key(name)]
	return sp, ok
}

// PendingNames returns the names with pending overlays, in the order they
// were first mentioned.
func (s *Scope) PendingNames() []string {
	r := make([]string, 0, len(s.specOrder))
	for _, k := range s.specOrder {
		r = append(r, s.specs[k].Name)
	}
	return r
}

func (s *Scope) redeclared(pos *position.Position, name string, alt *Decl) error {
	return s.errs.Errorf(pos, "Redeclaration of `%s' previously declared at %s", name, &alt.Pos)
}

// MergeSpec merges incoming into the pending overlay of its name, creating
// the overlay if there is none.  A name that has already been built into a
// declaration can't be respecified.
func (s *Scope) MergeSpec(incoming *spec.Spec) error {
	if alt, ok := s.Decls.Find(incoming.Name); ok {
		return s.redeclared(&incoming.Pos, incoming.Name, alt)
	}
	k := s.key(incoming.Name)
	existing, ok := s.specs[k]
	if !ok {
		if err := incoming.Check(); err != nil {
			return s.errs.Errorf(&incoming.Pos, "%s", err)
		}
		s.specs[k] = incoming.Clone()
		s.specOrder = append(s.specOrder, k)
		return nil
	}
	if err := spec.Merge(existing, incoming); err != nil {
		return s.errs.Errorf(&incoming.Pos, "%s", err)
	}
	return nil
}

func (s *Scope) dropSpec(name string) {
	k := s.key(name)
	if _, ok := s.specs[k]; !ok {
		return
	}
	delete(s.specs, k)
	if i := slices.Index(s.specOrder, k); i >= 0 {
		s.specOrder = slices.Delete(s.specOrder, i, i+1)
	}
}

// Common returns the COMMON block called name, creating it if needed.
func (s *Scope) Common(name string, pos position.Position) *CommonBlock {
	k := s.key(name)
	if b, ok := s.commons[k]; ok {
		return b
	}
	b := newCommonBlock(name, pos)
	s.commons[k] = b
	s.blocks = append(s.blocks, b)
	return b
}

// Blocks returns the COMMON blocks of s in the order first mentioned.
func (s *Scope) Blocks() []*CommonBlock { return s.blocks }

// AddToCommon reserves a slot in the named block for name and merges the
// membership into its overlay.
func (s *Scope) AddToCommon(block string, name string, pos position.Position) error {
	b := s.Common(block, pos)
	sp := spec.New(name, pos)
	sp.Common, sp.InCommon = block, true
	sp.Slot = len(b.names)
	if err := s.MergeSpec(sp); err != nil {
		return err
	}
	b.AddName(name)
	return nil
}

// DefineParameter records a named constant.  The value is converted to the
// type the name has, explicitly or implicitly, at this point.
func (s *Scope) DefineParameter(name string, pos position.Position, v *typeval.Value) error {
	k := s.key(name)
	if _, ok := s.params[k]; ok {
		return s.errs.Errorf(&pos, "Redefinition of PARAMETER `%s'", name)
	}
	if alt, ok := s.Decls.Find(name); ok {
		return s.redeclared(&pos, name, alt)
	}
	var t *types.Type
	if sp, ok := s.specs[k]; ok && sp.HasExplicitType() {
		if sp.Shape != nil {
			return s.errs.Errorf(&pos, "PARAMETER `%s' can't be an array", name)
		}
		t = sp.ScalarType()
	} else if it, ok := s.Implicit.LookupName(name); ok {
		t = it
	} else {
		return s.errs.Errorf(&pos, "No IMPLICIT type for PARAMETER `%s'", name)
	}
	c, err := typeval.Cast(v, t)
	if err != nil {
		return s.errs.Errorf(&pos, "PARAMETER `%s': %s", name, err)
	}
	glog.V(2).Infof("PARAMETER %s = %s", name, c)
	s.params[k] = c
	return nil
}
