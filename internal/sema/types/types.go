// Copyright 2016 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

// Package types describes the types of Fortran program objects: scalars
// with a KIND byte size, CHARACTER strings with a length, arrays of those,
// and procedure types.  Types are immutable once constructed and compare
// structurally with Equal.
package types

import (
	"fmt"
	"strings"
)

// Kind enumerates the classes of Type.
type Kind int

const (
	Logical Kind = iota
	Integer
	Real
	Complex
	Byte
	Character
	Array
	Structure
	Function
	Subroutine
)

func (k Kind) String() string {
	switch k {
	case Logical:
		return "LOGICAL"
	case Integer:
		return "INTEGER"
	case Real:
		return "REAL"
	case Complex:
		return "COMPLEX"
	case Byte:
		return "BYTE"
	case Character:
		return "CHARACTER"
	case Array:
		return "ARRAY"
	case Structure:
		return "STRUCTURE"
	case Function:
		return "FUNCTION"
	case Subroutine:
		return "SUBROUTINE"
	default:
		panic("unexpected type kind")
	}
}

// Default KIND sizes in bytes.
const (
	DefaultLogicalSize   = 4
	DefaultIntegerSize   = 4
	DefaultRealSize      = 4
	DefaultDoubleSize    = 8
	DefaultComplexSize   = 4 // per component
	DefaultCharacterSize = 1 // per character
)

// Type represents the type of a Fortran program object.
type Type struct {
	Kind Kind

	// Size is the KIND byte width of a scalar.  For COMPLEX it is the width of
	// each component, for CHARACTER the width of one character.
	Size int

	// Len is the length of a CHARACTER type, or 0 if the length is assumed
	// or not yet known.
	Len int

	// Subtype is the element type of an Array, or the result type of a
	// Function.
	Subtype *Type

	// Shape holds the dimensions of an Array.
	Shape *Shape

	// Members holds the member types of a Structure.
	Members []*Type
}

var (
	DefaultLogical   = &Type{Kind: Logical, Size: DefaultLogicalSize}
	DefaultInteger   = &Type{Kind: Integer, Size: DefaultIntegerSize}
	DefaultReal      = &Type{Kind: Real, Size: DefaultRealSize}
	DoublePrecision  = &Type{Kind: Real, Size: DefaultDoubleSize}
	DefaultComplex   = &Type{Kind: Complex, Size: DefaultComplexSize}
	DoubleComplex    = &Type{Kind: Complex, Size: DefaultDoubleSize}
	DefaultByte      = &Type{Kind: Byte, Size: 1}
	DefaultCharacter = &Type{Kind: Character, Size: DefaultCharacterSize, Len: 1}
)

// NewScalar returns a scalar type of kind k with the given KIND byte size.  A
// size of zero selects the default size for k.
func NewScalar(k Kind, size int) *Type {
	if size == 0 {
		size = DefaultSize(k)
	}
	return &Type{Kind: k, Size: size}
}

// NewCharacter returns a CHARACTER type of the given length.  A length of
// zero denotes an assumed length.
func NewCharacter(size, length int) *Type {
	if size == 0 {
		size = DefaultCharacterSize
	}
	return &Type{Kind: Character, Size: size, Len: length}
}

// NewArray returns an array of the given element type and shape.
func NewArray(elem *Type, shape *Shape) *Type {
	return &Type{Kind: Array, Subtype: elem, Shape: shape}
}

// NewFunction returns the type of a function with the given result type.
func NewFunction(result *Type) *Type {
	return &Type{Kind: Function, Subtype: result}
}

// NewSubroutine returns the type of a subroutine.
func NewSubroutine() *Type {
	return &Type{Kind: Subroutine}
}

// NewStructure returns a structure type with the given member types.
func NewStructure(members ...*Type) *Type {
	return &Type{Kind: Structure, Members: members}
}

// DefaultSize returns the default KIND byte size for a scalar kind.
func DefaultSize(k Kind) int {
	switch k {
	case Logical:
		return DefaultLogicalSize
	case Integer:
		return DefaultIntegerSize
	case Real:
		return DefaultRealSize
	case Complex:
		return DefaultComplexSize
	case Byte, Character:
		return 1
	}
	return 0
}

// WithLen returns a copy of the CHARACTER type t with length n.
func (t *Type) WithLen(n int) *Type {
	r := *t
	r.Len = n
	return &r
}

// WithSize returns a copy of the scalar type t with KIND byte size n.
func (t *Type) WithSize(n int) *Type {
	r := *t
	r.Size = n
	return &r
}

func (t *Type) IsLogical() bool   { return t != nil && t.Kind == Logical }
func (t *Type) IsCharacter() bool { return t != nil && t.Kind == Character }
func (t *Type) IsComplex() bool   { return t != nil && t.Kind == Complex }
func (t *Type) IsReal() bool      { return t != nil && t.Kind == Real }
func (t *Type) IsArray() bool     { return t != nil && t.Kind == Array }

// IsInteger reports whether t is an INTEGER or BYTE type.
func (t *Type) IsInteger() bool {
	return t != nil && (t.Kind == Integer || t.Kind == Byte)
}

// IsNumeric reports whether t is an INTEGER, BYTE, REAL or COMPLEX type.
func (t *Type) IsNumeric() bool {
	if t == nil {
		return false
	}
	switch t.Kind {
	case Integer, Byte, Real, Complex:
		return true
	}
	return false
}

// IsScalar reports whether t is a single value rather than an aggregate or
// procedure.
func (t *Type) IsScalar() bool {
	if t == nil {
		return false
	}
	switch t.Kind {
	case Array, Structure, Function, Subroutine:
		return false
	}
	return true
}

// IsComposite reports whether t has elements, i.e. is an Array or Structure.
func (t *Type) IsComposite() bool {
	return t != nil && (t.Kind == Array || t.Kind == Structure)
}

// IsProcedure reports whether t is a Function or Subroutine.
func (t *Type) IsProcedure() bool {
	return t != nil && (t.Kind == Function || t.Kind == Subroutine)
}

// Base returns the innermost non-array type of t.
func (t *Type) Base() *Type {
	for t != nil && t.Kind == Array {
		t = t.Subtype
	}
	return t
}

// ElemCount returns the number of scalar elements in t, and false if that
// number can not be determined statically.
func (t *Type) ElemCount() (int, bool) {
	if t == nil {
		return 0, false
	}
	switch t.Kind {
	case Array:
		n, ok := t.Shape.Count()
		if !ok {
			return 0, false
		}
		m, ok := t.Subtype.ElemCount()
		if !ok {
			return 0, false
		}
		return n * m, true
	case Structure:
		c := 0
		for _, m := range t.Members {
			n, ok := m.ElemCount()
			if !ok {
				return 0, false
			}
			c += n
		}
		return c, true
	case Function, Subroutine:
		return 0, true
	}
	return 1, true
}

// ByteSize returns the storage size of t in bytes, and false if it can not be
// determined statically.
func (t *Type) ByteSize() (int, bool) {
	if t == nil {
		return 0, false
	}
	switch t.Kind {
	case Complex:
		return 2 * t.Size, true
	case Character:
		if t.Len == 0 {
			return 0, false
		}
		return t.Size * t.Len, true
	case Array:
		n, ok := t.Shape.Count()
		if !ok {
			return 0, false
		}
		s, ok := t.Subtype.ByteSize()
		if !ok {
			return 0, false
		}
		return n * s, true
	case Structure:
		c := 0
		for _, m := range t.Members {
			s, ok := m.ByteSize()
			if !ok {
				return 0, false
			}
			c += s
		}
		return c, true
	case Function, Subroutine:
		return 0, false
	}
	return t.Size, true
}

// Equal reports whether a and b are structurally the same type.
func Equal(a, b *Type) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	if a.Kind != b.Kind || a.Size != b.Size || a.Len != b.Len {
		return false
	}
	if !Equal(a.Subtype, b.Subtype) {
		return false
	}
	if (a.Shape == nil) != (b.Shape == nil) {
		return false
	}
	if a.Shape != nil && !a.Shape.Equal(b.Shape) {
		return false
	}
	if len(a.Members) != len(b.Members) {
		return false
	}
	for i := range a.Members {
		if !Equal(a.Members[i], b.Members[i]) {
			return false
		}
	}
	return true
}

func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	switch t.Kind {
	case Character:
		switch {
		case t.Size != DefaultCharacterSize:
			return fmt.Sprintf("CHARACTER(KIND=%d)*%s", t.Size, lenString(t.Len))
		case t.Len == 1:
			return "CHARACTER"
		}
		return "CHARACTER*" + lenString(t.Len)
	case Byte:
		return "BYTE"
	case Array:
		return t.Subtype.String() + t.Shape.String()
	case Structure:
		m := make([]string, 0, len(t.Members))
		for _, x := range t.Members {
			m = append(m, x.String())
		}
		return "STRUCTURE(" + strings.Join(m, ", ") + ")"
	case Function:
		return t.Subtype.String() + " FUNCTION"
	case Subroutine:
		return "SUBROUTINE"
	case Complex:
		// COMPLEX*n spells the size of both components.
		if t.Size != DefaultComplexSize {
			return fmt.Sprintf("COMPLEX*%d", 2*t.Size)
		}
		return "COMPLEX"
	}
	if t.Size == DefaultSize(t.Kind) {
		return t.Kind.String()
	}
	return fmt.Sprintf("%s*%d", t.Kind, t.Size)
}

func lenString(n int) string {
	if n == 0 {
		return "(*)"
	}
	return fmt.Sprint(n)
}
