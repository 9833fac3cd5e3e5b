// Copyright 2016 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

// Package implicit implements the per-scope table mapping the first letter of
// an identifier to the type it has when it is not explicitly declared.
package implicit

import (
	"strings"

	"github.com/golang/glog"
	"github.com/google/fortsema/internal/sema/types"
	"github.com/pkg/errors"
)

var (
	// ErrConflict is returned when an IMPLICIT rule maps a letter already
	// mapped to a different type in the same scope.
	ErrConflict = errors.New("conflicting IMPLICIT rules")

	// ErrNone is returned when IMPLICIT NONE is combined with other IMPLICIT
	// rules in the same scope.
	ErrNone = errors.New("IMPLICIT NONE combined with IMPLICIT rules")

	// ErrLetter is returned for a range that is not a pair of letters in
	// alphabetical order.
	ErrLetter = errors.New("invalid IMPLICIT letter range")
)

// Table is an implicit typing table.  The zero value has no mappings.
type Table struct {
	types    [26]*types.Type
	explicit [26]bool // set by an IMPLICIT statement in this scope
	none     bool
}

// New returns a table with the program defaults: names starting with I
// through N are INTEGER, all others REAL.
func New() *Table {
	t := &Table{}
	for i := range t.types {
		if i >= 'I'-'A' && i <= 'N'-'A' {
			t.types[i] = types.DefaultInteger
		} else {
			t.types[i] = types.DefaultReal
		}
	}
	return t
}

func index(c byte) (int, bool) {
	switch {
	case c >= 'A' && c <= 'Z':
		return int(c - 'A'), true
	case c >= 'a' && c <= 'z':
		return int(c - 'a'), true
	}
	return 0, false
}

// None marks the table as IMPLICIT NONE, removing every mapping.
func (t *Table) None() error {
	for _, e := range t.explicit {
		if e {
			return ErrNone
		}
	}
	t.none = true
	t.types = [26]*types.Type{}
	return nil
}

// IsNone reports whether IMPLICIT NONE is in effect.
func (t *Table) IsNone() bool { return t.none }

// Set maps every letter from first to last inclusive to typ.  Mapping a
// letter that an earlier call mapped to a different type fails, and leaves
// the table unchanged.
func (t *Table) Set(first, last byte, typ *types.Type) error {
	if t.none {
		return ErrNone
	}
	i, ok := index(first)
	j, ok2 := index(last)
	if !ok || !ok2 || i > j {
		return errors.Wrapf(ErrLetter, "%c-%c", first, last)
	}
	for k := i; k <= j; k++ {
		if t.explicit[k] && !types.Equal(t.types[k], typ) {
			return errors.Wrapf(ErrConflict, "letter %c is already %s", 'A'+k, t.types[k])
		}
	}
	for k := i; k <= j; k++ {
		t.types[k] = typ
		t.explicit[k] = true
	}
	glog.V(2).Infof("IMPLICIT %s (%c-%c)", typ, 'A'+i, 'A'+j)
	return nil
}

// Lookup returns the type of names starting with letter c, and false if
// there is none.
func (t *Table) Lookup(c byte) (*types.Type, bool) {
	i, ok := index(c)
	if !ok || t.types[i] == nil {
		return nil, false
	}
	return t.types[i], true
}

// LookupName returns the implicit type of name.
func (t *Table) LookupName(name string) (*types.Type, bool) {
	if name == "" {
		return nil, false
	}
	return t.Lookup(name[0])
}

func (t *Table) String() string {
	if t.none {
		return "IMPLICIT NONE"
	}
	var b strings.Builder
	for i := 0; i < len(t.types); {
		j := i
		for j+1 < len(t.types) && types.Equal(t.types[j+1], t.types[i]) {
			j++
		}
		if b.Len() > 0 {
			b.WriteString(", ")
		}
		if i == j {
			b.WriteString(string(rune('A'+i)) + ": " + t.types[i].String())
		} else {
			b.WriteString(string(rune('A'+i)) + "-" + string(rune('A'+j)) + ": " + t.types[i].String())
		}
		i = j + 1
	}
	return b.String()
}
