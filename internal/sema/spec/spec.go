// Copyright 2016 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

// Package spec accumulates what the specification statements of a scope say
// about a name before the name is finalized into a declaration.  Separate
// statements such as `DIMENSION A(10)' and `INTEGER A' contribute to the
// same Spec through Merge, which rejects contradictory contributions.
package spec

import (
	"fmt"
	"strings"

	"github.com/golang/glog"
	"github.com/google/fortsema/internal/sema/position"
	"github.com/google/fortsema/internal/sema/types"
	"github.com/pkg/errors"
)

var (
	ErrTypeConflict   = errors.New("conflicting types")
	ErrShapeConflict  = errors.New("conflicting array bounds")
	ErrAttrConflict   = errors.New("conflicting attributes")
	ErrCommonConflict = errors.New("conflicting COMMON membership")
	ErrLength         = errors.New("invalid CHARACTER length")
)

// Spec is the overlay of attributes known about one name.
type Spec struct {
	Name string
	Pos  position.Position // first contributing statement

	// Type is the scalar type, or nil if none has been given.  Implicit is
	// set when Type was taken from the implicit typing table rather than a
	// type declaration.
	Type     *types.Type
	Implicit bool

	// Shape holds the array bounds, or nil for a scalar.
	Shape *types.Shape

	// Len is the CHARACTER length given by a `*len' suffix, valid when LenSet
	// is set.  A Len of 0 is the assumed length `*(*)'.
	Len    int
	LenSet bool

	Static    bool
	Automatic bool
	Volatile  bool
	Intrinsic bool
	External  bool

	// Common names the COMMON block holding this name, valid when InCommon
	// is set; the empty name is blank COMMON.  Slot is the position of the
	// name within the block.
	Common   string
	InCommon bool
	Slot     int
}

// New returns an empty overlay for name.
func New(name string, pos position.Position) *Spec {
	return &Spec{Name: name, Pos: pos}
}

// NewImplicit returns an overlay for name typed by the implicit typing table.
func NewImplicit(name string, pos position.Position, t *types.Type) *Spec {
	return &Spec{Name: name, Pos: pos, Type: t, Implicit: true}
}

// Clone returns a shallow copy of s.  Types and shapes are immutable.
func (s *Spec) Clone() *Spec {
	r := *s
	return &r
}

// HasExplicitType reports whether a type declaration has named a type for s.
func (s *Spec) HasExplicitType() bool {
	return s.Type != nil && !s.Implicit
}

// IsProcedure reports whether s names an INTRINSIC or EXTERNAL procedure.
func (s *Spec) IsProcedure() bool {
	return s.Intrinsic || s.External
}

// ScalarType returns the type of a scalar with these attributes, applying a
// `*len' suffix to CHARACTER types.
func (s *Spec) ScalarType() *types.Type {
	if s.Type == nil {
		return nil
	}
	if s.Type.IsCharacter() && s.LenSet {
		return s.Type.WithLen(s.Len)
	}
	return s.Type
}

// sameType compares scalar types ignoring CHARACTER length, which is merged
// separately.
func sameType(a, b *types.Type) bool {
	if a.IsCharacter() && b.IsCharacter() {
		return a.Size == b.Size
	}
	return types.Equal(a, b)
}

// Check reports any attribute combination in s that is never legal.
func (s *Spec) Check() error {
	if s.Static && s.Automatic {
		return errors.Wrapf(ErrAttrConflict, "`%s' can't be both STATIC and AUTOMATIC", s.Name)
	}
	if s.Intrinsic && s.External {
		return errors.Wrapf(ErrAttrConflict, "`%s' can't be both INTRINSIC and EXTERNAL", s.Name)
	}
	if s.InCommon {
		for _, a := range []struct {
			set  bool
			name string
		}{
			{s.Static, "STATIC"},
			{s.Automatic, "AUTOMATIC"},
			{s.Volatile, "VOLATILE"},
			{s.Intrinsic, "INTRINSIC"},
			{s.External, "EXTERNAL"},
		} {
			if a.set {
				return errors.Wrapf(ErrAttrConflict, "COMMON member `%s' can't be %s", s.Name, a.name)
			}
		}
	}
	if s.LenSet && s.Len < 0 {
		return errors.Wrapf(ErrLength, "`%s' has negative length %d", s.Name, s.Len)
	}
	return nil
}

// Merge combines the attributes of incoming into existing.  On failure
// existing is left unchanged.
func Merge(existing, incoming *Spec) error {
	r := existing.Clone()

	if incoming.Type != nil {
		switch {
		case incoming.Implicit:
			if r.Type == nil {
				r.Type, r.Implicit = incoming.Type, true
			}
		case r.HasExplicitType() && !sameType(r.Type, incoming.Type):
			return errors.Wrapf(ErrTypeConflict, "`%s' declared %s, previously %s", existing.Name, incoming.Type, r.Type)
		default:
			r.Type, r.Implicit = incoming.Type, false
		}
	}

	if incoming.Shape != nil {
		if r.Shape != nil && !r.Shape.Equal(incoming.Shape) {
			return errors.Wrapf(ErrShapeConflict, "`%s' dimensioned %s, previously %s", existing.Name, incoming.Shape, r.Shape)
		}
		r.Shape = incoming.Shape
	}

	// The last writer supplying a length wins.
	if incoming.LenSet {
		if incoming.Len < 0 {
			return errors.Wrapf(ErrLength, "`%s' has negative length %d", existing.Name, incoming.Len)
		}
		r.Len, r.LenSet = incoming.Len, true
	} else if incoming.HasExplicitType() && incoming.Type.IsCharacter() {
		r.Len, r.LenSet = incoming.Type.Len, true
	}

	r.Static = r.Static || incoming.Static
	r.Automatic = r.Automatic || incoming.Automatic
	r.Volatile = r.Volatile || incoming.Volatile
	r.Intrinsic = r.Intrinsic || incoming.Intrinsic
	r.External = r.External || incoming.External

	if incoming.InCommon {
		if r.InCommon {
			return errors.Wrapf(ErrCommonConflict, "`%s' is already in COMMON %s", existing.Name, blockName(r.Common))
		}
		r.Common, r.Slot, r.InCommon = incoming.Common, incoming.Slot, true
	}

	if err := r.Check(); err != nil {
		return err
	}
	glog.V(2).Infof("merged spec %s", r)
	*existing = *r
	return nil
}

func blockName(n string) string {
	if n == "" {
		return "//"
	}
	return "/" + n + "/"
}

func (s *Spec) String() string {
	var b strings.Builder
	b.WriteString(s.Name)
	if t := s.ScalarType(); t != nil {
		fmt.Fprintf(&b, " %s", t)
		if s.Implicit {
			b.WriteString(" (implicit)")
		}
	}
	if s.Shape != nil {
		b.WriteString(s.Shape.String())
	}
	for _, a := range []struct {
		set  bool
		name string
	}{
		{s.Static, "STATIC"},
		{s.Automatic, "AUTOMATIC"},
		{s.Volatile, "VOLATILE"},
		{s.Intrinsic, "INTRINSIC"},
		{s.External, "EXTERNAL"},
	} {
		if a.set {
			b.WriteString(" " + a.name)
		}
	}
	if s.InCommon {
		fmt.Fprintf(&b, " COMMON %s[%d]", blockName(s.Common), s.Slot)
	}
	return b.String()
}
