// Copyright 2017 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

// Package symbol implements declarations and the scopes that own them: the
// declaration lists, the builder that turns accumulated specifications into
// declarations, implicit declaration on first use, COMMON block storage,
// and the resolver for constant initializers.
package symbol

import (
	"fmt"
	"strings"

	"github.com/bits-and-blooms/bitset"
	"github.com/google/fortsema/internal/sema/position"
	"github.com/google/fortsema/internal/sema/typeval"
	"github.com/google/fortsema/internal/sema/types"
)

// Decl is a resolved symbol.
type Decl struct {
	Name string
	Pos  position.Position
	Type *types.Type

	Static    bool
	Automatic bool
	Volatile  bool
	Intrinsic bool
	External  bool

	// Used is set once the declaration is referenced by executable code,
	// after which it can no longer be initialized.
	Used bool

	// Body is the scope of a procedure's body, owned by this declaration, or
	// nil.
	Body *Scope

	// Common is the COMMON block this declaration is stored in, or nil.
	Common *CommonBlock

	init  initializer   // scalar declarations
	elems []initializer // composite declarations, allocated on first use

	owner *DeclList
}

// initializer is the initial value of one scalar slot: either a whole
// value, or for CHARACTER slots the bytes assembled from substring
// initializers so far.
type initializer interface {
	complete() bool
}

// valueInit is a slot initialized with a whole constant.
type valueInit struct {
	v *typeval.Value
}

func (valueInit) complete() bool { return true }

// substringInit is a CHARACTER slot initialized by byte ranges.  mask
// records which bytes of buf have been written.
type substringInit struct {
	buf  []byte
	mask *bitset.BitSet
}

func newSubstringInit(n int) *substringInit {
	return &substringInit{buf: make([]byte, n), mask: bitset.New(uint(n))}
}

func (s *substringInit) complete() bool {
	return s.mask.Count() == uint(len(s.buf))
}

// IsArray reports whether d is an array.
func (d *Decl) IsArray() bool { return d.Type.IsArray() }

// IsComposite reports whether d is an array or structure.
func (d *Decl) IsComposite() bool { return d.Type.IsComposite() }

// IsProcedure reports whether d is a function or subroutine.
func (d *Decl) IsProcedure() bool { return d.Type.IsProcedure() }

// ElemCount returns the number of scalar elements of d, and false if the
// number is not known statically.
func (d *Decl) ElemCount() (int, bool) { return d.Type.ElemCount() }

// Size returns the storage size of d in bytes, and false if it is not known
// statically.
func (d *Decl) Size() (int, bool) { return d.Type.ByteSize() }

// BaseType returns the innermost non-array type of d.
func (d *Decl) BaseType() *types.Type { return d.Type.Base() }

// Use marks d as referenced by executable code.
func (d *Decl) Use() { d.Used = true }

// HasInitializer reports whether any part of d has been initialized, and
// whether every element, and every byte of substring initialized elements,
// has been.
func (d *Decl) HasInitializer() (present, complete bool) {
	if !d.IsComposite() {
		if d.init == nil {
			return false, false
		}
		return true, d.init.complete()
	}
	complete = len(d.elems) > 0
	for _, e := range d.elems {
		if e == nil {
			complete = false
			continue
		}
		present = true
		if !e.complete() {
			complete = false
		}
	}
	return present, present && complete
}

// InitialValue returns the complete initial value of a scalar declaration.
func (d *Decl) InitialValue() (*typeval.Value, bool) {
	if d.IsComposite() {
		return nil, false
	}
	return slotValue(d.init, d.Type)
}

// ElementValue returns the complete initial value of the element at the
// given column-major offset of a composite declaration.
func (d *Decl) ElementValue(offset int) (*typeval.Value, bool) {
	if !d.IsComposite() || offset < 0 || offset >= len(d.elems) {
		return nil, false
	}
	return slotValue(d.elems[offset], d.elemType())
}

func slotValue(i initializer, t *types.Type) (*typeval.Value, bool) {
	switch i := i.(type) {
	case valueInit:
		return i.v, true
	case *substringInit:
		if !i.complete() {
			return nil, false
		}
		return &typeval.Value{Type: t, S: string(i.buf)}, true
	}
	return nil, false
}

// elemType returns the type of one element of a composite declaration.
func (d *Decl) elemType() *types.Type {
	if d.IsArray() {
		return d.Type.Subtype
	}
	return nil
}

func (d *Decl) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s", d.Type, d.Name)
	for _, a := range []struct {
		set  bool
		name string
	}{
		{d.Static, "STATIC"},
		{d.Automatic, "AUTOMATIC"},
		{d.Volatile, "VOLATILE"},
		{d.Intrinsic, "INTRINSIC"},
		{d.External, "EXTERNAL"},
	} {
		if a.set {
			b.WriteString(" " + a.name)
		}
	}
	if v, ok := d.InitialValue(); ok {
		fmt.Fprintf(&b, " = %s", v)
	}
	return b.String()
}
