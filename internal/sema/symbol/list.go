// Copyright 2017 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package symbol

import (
	"strings"

	"github.com/pkg/errors"
)

// ErrRedeclared is returned when a name is added to a list that already
// holds a declaration with an equal name.
var ErrRedeclared = errors.New("redeclaration")

// Finder is implemented by both kinds of declaration list.
type Finder interface {
	// Find returns the declaration named name.
	Find(name string) (*Decl, bool)
	// Decls returns the declarations in insertion order.
	Decls() []*Decl
	Len() int
}

// table is an insertion ordered set of declarations indexed by name.
type table struct {
	caseSensitive bool
	decls         []*Decl
	index         map[string]*Decl
}

func newTable(caseSensitive bool) table {
	return table{caseSensitive: caseSensitive, index: make(map[string]*Decl)}
}

// Key returns the form of name used to compare names under the case rule.
func (t *table) Key(name string) string {
	if t.caseSensitive {
		return name
	}
	return strings.ToUpper(name)
}

func (t *table) CaseSensitive() bool { return t.caseSensitive }

func (t *table) Find(name string) (*Decl, bool) {
	d, ok := t.index[t.Key(name)]
	return d, ok
}

func (t *table) Decls() []*Decl { return t.decls }

func (t *table) Len() int { return len(t.decls) }

func (t *table) insert(d *Decl) (*Decl, error) {
	k := t.Key(d.Name)
	if alt, ok := t.index[k]; ok {
		return alt, errors.Wrapf(ErrRedeclared, "`%s'", d.Name)
	}
	t.index[k] = d
	t.decls = append(t.decls, d)
	return nil, nil
}

// DeclList is a declaration list that owns its declarations.  A declaration
// is owned by at most one DeclList.
type DeclList struct {
	table
}

// NewDeclList returns an empty owning list comparing names case sensitively
// or not.
func NewDeclList(caseSensitive bool) *DeclList {
	return &DeclList{newTable(caseSensitive)}
}

// Add takes ownership of d.  If the list already holds a declaration with an
// equal name, it is returned with an ErrRedeclared error.
func (l *DeclList) Add(d *Decl) (*Decl, error) {
	if d.owner != nil {
		panic("symbol: declaration " + d.Name + " is already owned by another list")
	}
	alt, err := l.insert(d)
	if err != nil {
		return alt, err
	}
	d.owner = l
	return nil, nil
}

// DeclRefList is a view of declarations owned elsewhere, used to expose the
// members of a COMMON block or the symbols of a host scope.  It must not
// outlive the lists owning its declarations.
type DeclRefList struct {
	table
}

// NewDeclRefList returns an empty reference list.
func NewDeclRefList(caseSensitive bool) *DeclRefList {
	return &DeclRefList{newTable(caseSensitive)}
}

// AddRef adds a reference to d without taking ownership.
func (l *DeclRefList) AddRef(d *Decl) (*Decl, error) {
	return l.insert(d)
}

// RefsOf returns a reference list viewing every declaration of f.
func RefsOf(f Finder, caseSensitive bool) (*DeclRefList, error) {
	r := NewDeclRefList(caseSensitive)
	for _, d := range f.Decls() {
		if _, err := r.AddRef(d); err != nil {
			return nil, err
		}
	}
	return r, nil
}
