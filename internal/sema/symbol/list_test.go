// Copyright 2017 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package symbol

import (
	"strings"
	"testing"
	"testing/quick"

	"github.com/google/fortsema/internal/sema/position"
	"github.com/google/fortsema/internal/sema/types"
	"github.com/google/fortsema/internal/testutil"
	"github.com/pkg/errors"
)

func newDecl(name string) *Decl {
	return &Decl{Name: name, Type: types.DefaultInteger}
}

func TestDeclListCaseRule(t *testing.T) {
	ci := NewDeclList(false)
	_, err := ci.Add(newDecl("Foo"))
	testutil.FatalIfErr(t, err)
	alt, err := ci.Add(newDecl("FOO"))
	if !errors.Is(err, ErrRedeclared) {
		t.Errorf("case insensitive Add(FOO) error = %v, want ErrRedeclared", err)
	}
	if alt == nil || alt.Name != "Foo" {
		t.Errorf("Add(FOO) returned %v, want the existing Foo", alt)
	}
	if d, ok := ci.Find("fOO"); !ok || d.Name != "Foo" {
		t.Errorf("Find(fOO) = %v, %v", d, ok)
	}

	cs := NewDeclList(true)
	_, err = cs.Add(newDecl("Foo"))
	testutil.FatalIfErr(t, err)
	_, err = cs.Add(newDecl("FOO"))
	testutil.FatalIfErr(t, err)
	if cs.Len() != 2 {
		t.Errorf("case sensitive list has %d entries, want 2", cs.Len())
	}
	if _, ok := cs.Find("foo"); ok {
		t.Error("case sensitive Find(foo) found a declaration")
	}
}

func TestDeclListQuick(t *testing.T) {
	check := func(raw []byte) bool {
		if len(raw) == 0 {
			return true
		}
		name := asciiName(raw)
		ci := NewDeclList(false)
		if _, err := ci.Add(newDecl(name)); err != nil {
			return false
		}
		d, ok := ci.Find(strings.ToLower(name))
		if !ok || d.Name != name {
			return false
		}
		_, err := ci.Add(newDecl(strings.ToUpper(name)))
		return errors.Is(err, ErrRedeclared)
	}
	if err := quick.Check(check, nil); err != nil {
		t.Error(err)
	}
}

// asciiName maps raw to a mixed case name of ASCII letters.
func asciiName(raw []byte) string {
	b := make([]byte, len(raw))
	for i, c := range raw {
		b[i] = 'A' + c%26
		if c&0x80 != 0 {
			b[i] += 'a' - 'A'
		}
	}
	return string(b)
}

func TestDeclListOrder(t *testing.T) {
	l := NewDeclList(false)
	for _, n := range []string{"Z", "A", "M"} {
		_, err := l.Add(newDecl(n))
		testutil.FatalIfErr(t, err)
	}
	var got []string
	for _, d := range l.Decls() {
		got = append(got, d.Name)
	}
	testutil.ExpectNoDiff(t, []string{"Z", "A", "M"}, got)
}

func TestDeclListOwnership(t *testing.T) {
	d := newDecl("X")
	refs := NewDeclRefList(false)
	_, err := refs.AddRef(d)
	testutil.FatalIfErr(t, err)
	if d.owner != nil {
		t.Fatal("AddRef took ownership")
	}

	owner := NewDeclList(false)
	_, err = owner.Add(d)
	testutil.FatalIfErr(t, err)

	other := NewDeclList(false)
	defer func() {
		if recover() == nil {
			t.Error("adding an owned declaration to a second list did not panic")
		}
	}()
	other.Add(d)
}

func TestRefsOf(t *testing.T) {
	l := NewDeclList(false)
	for _, n := range []string{"A", "B"} {
		_, err := l.Add(newDecl(n))
		testutil.FatalIfErr(t, err)
	}
	r, err := RefsOf(l, false)
	testutil.FatalIfErr(t, err)
	if r.Len() != 2 {
		t.Fatalf("RefsOf has %d entries", r.Len())
	}
	a, _ := l.Find("A")
	if got, ok := r.Find("a"); !ok || got != a {
		t.Errorf("ref Find(a) = %v, want the owned declaration", got)
	}
}

func TestCommonBlock(t *testing.T) {
	b := newCommonBlock("BLK", position.Position{})
	a := &Decl{Name: "A", Type: types.NewScalar(types.Integer, 2)}
	x := &Decl{Name: "X", Type: types.NewArray(types.DefaultReal, types.NewShape(types.Dim{Lower: 1, Upper: 3}))}
	c := &Decl{Name: "C", Type: types.NewCharacter(1, 5)}
	for _, d := range []*Decl{a, x, c} {
		b.bind(b.AddName(d.Name), d)
	}
	for i, want := range []int{0, 2, 14} {
		if got, ok := b.Offset(i); !ok || got != want {
			t.Errorf("Offset(%d) = %d, %v, want %d", i, got, ok, want)
		}
	}
	if got, ok := b.Size(); !ok || got != 19 {
		t.Errorf("Size() = %d, %v, want 19", got, ok)
	}
	if slot, ok := b.SlotOf(x); !ok || slot != 1 {
		t.Errorf("SlotOf(X) = %d, %v", slot, ok)
	}
	if x.Common != b {
		t.Error("bind did not set Common")
	}
	if b.String() != "/BLK/" {
		t.Errorf("String() = %q", b.String())
	}

	defer func() {
		if recover() == nil {
			t.Error("rebinding a slot did not panic")
		}
	}()
	b.bind(0, newDecl("Y"))
}

func TestCommonBlockUnbound(t *testing.T) {
	b := newCommonBlock("", position.Position{})
	b.AddName("A")
	slot := b.AddName("B")
	b.bind(slot, newDecl("B"))
	if _, ok := b.Offset(1); ok {
		t.Error("Offset past an unbound slot succeeded")
	}
	if got := len(b.Members()); got != 1 {
		t.Errorf("Members() has %d entries, want 1", got)
	}
}
