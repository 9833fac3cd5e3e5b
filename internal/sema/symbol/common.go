// Copyright 2017 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package symbol

import (
	"fmt"

	"github.com/google/fortsema/internal/sema/position"
)

// CommonBlock is a named storage area shared by the declarations listed in
// COMMON statements.  Members occupy consecutive slots in the order they
// were listed; a slot is bound to its declaration when the declaration is
// built.
type CommonBlock struct {
	Name string // empty for blank COMMON
	Pos  position.Position

	names []string
	decls []*Decl
}

func newCommonBlock(name string, pos position.Position) *CommonBlock {
	return &CommonBlock{Name: name, Pos: pos}
}

// AddName reserves the next slot for name and returns its index.
func (b *CommonBlock) AddName(name string) int {
	b.names = append(b.names, name)
	b.decls = append(b.decls, nil)
	return len(b.names) - 1
}

// bind stores d in its reserved slot.  Slots are only reserved by the scope
// that builds their declarations, so a bad slot is a programming error.
func (b *CommonBlock) bind(slot int, d *Decl) {
	if slot < 0 || slot >= len(b.decls) {
		panic(fmt.Sprintf("symbol: COMMON %s has no slot %d for %s", b, slot, d.Name))
	}
	if b.decls[slot] != nil {
		panic(fmt.Sprintf("symbol: COMMON %s slot %d already holds %s", b, slot, b.decls[slot].Name))
	}
	b.decls[slot] = d
	d.Common = b
}

// Len returns the number of slots.
func (b *CommonBlock) Len() int { return len(b.names) }

// Members returns the declarations bound so far, in slot order.
func (b *CommonBlock) Members() []*Decl {
	r := make([]*Decl, 0, len(b.decls))
	for _, d := range b.decls {
		if d != nil {
			r = append(r, d)
		}
	}
	return r
}

// Offset returns the byte offset of slot within the block, and false if it
// depends on a member that is unbound or of unknown size.
func (b *CommonBlock) Offset(slot int) (int, bool) {
	if slot < 0 || slot > len(b.decls) {
		return 0, false
	}
	o := 0
	for _, d := range b.decls[:slot] {
		if d == nil {
			return 0, false
		}
		s, ok := d.Size()
		if !ok {
			return 0, false
		}
		o += s
	}
	return o, true
}

// SlotOf returns the slot holding d.
func (b *CommonBlock) SlotOf(d *Decl) (int, bool) {
	for i, x := range b.decls {
		if x == d {
			return i, true
		}
	}
	return 0, false
}

// Size returns the total size of the block in bytes.
func (b *CommonBlock) Size() (int, bool) {
	return b.Offset(len(b.decls))
}

// Refs returns a non-owning view of the bound members.
func (b *CommonBlock) Refs(caseSensitive bool) (*DeclRefList, error) {
	r := NewDeclRefList(caseSensitive)
	for _, d := range b.Members() {
		if _, err := r.AddRef(d); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (b *CommonBlock) String() string {
	return "/" + b.Name + "/"
}
