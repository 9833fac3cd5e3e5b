// Copyright 2016 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package implicit

import (
	"testing"
	"testing/quick"

	"github.com/google/fortsema/internal/sema/types"
	"github.com/pkg/errors"
)

func TestDefaults(t *testing.T) {
	tab := New()
	for _, tc := range []struct {
		name string
		want *types.Type
	}{
		{"I", types.DefaultInteger},
		{"n", types.DefaultInteger},
		{"KOUNT", types.DefaultInteger},
		{"X", types.DefaultReal},
		{"alpha", types.DefaultReal},
		{"Z", types.DefaultReal},
	} {
		got, ok := tab.LookupName(tc.name)
		if !ok || !types.Equal(got, tc.want) {
			t.Errorf("LookupName(%q) = %s, %v, want %s", tc.name, got, ok, tc.want)
		}
	}
	if _, ok := tab.LookupName("_x"); ok {
		t.Error("non-letter name has an implicit type")
	}
	if got := tab.String(); got != "A-H: REAL, I-N: INTEGER, O-Z: REAL" {
		t.Errorf("String() = %q", got)
	}
}

func TestNone(t *testing.T) {
	tab := New()
	if err := tab.None(); err != nil {
		t.Fatal(err)
	}
	if _, ok := tab.Lookup('I'); ok {
		t.Error("IMPLICIT NONE table has a mapping")
	}
	if err := tab.Set('A', 'C', types.DefaultLogical); !errors.Is(err, ErrNone) {
		t.Errorf("Set after None error = %v", err)
	}

	tab = New()
	if err := tab.Set('A', 'A', types.DefaultLogical); err != nil {
		t.Fatal(err)
	}
	if err := tab.None(); !errors.Is(err, ErrNone) {
		t.Errorf("None after Set error = %v", err)
	}
}

func TestSetOverridesDefaults(t *testing.T) {
	tab := New()
	if err := tab.Set('I', 'K', types.DoublePrecision); err != nil {
		t.Fatal(err)
	}
	if got, _ := tab.Lookup('j'); !types.Equal(got, types.DoublePrecision) {
		t.Errorf("Lookup(j) = %s", got)
	}
	if got, _ := tab.Lookup('L'); !types.Equal(got, types.DefaultInteger) {
		t.Errorf("Lookup(L) = %s", got)
	}
	if err := tab.Set('K', 'A', types.DefaultReal); !errors.Is(err, ErrLetter) {
		t.Errorf("reversed range error = %v", err)
	}
	if err := tab.Set('1', 'A', types.DefaultReal); !errors.Is(err, ErrLetter) {
		t.Errorf("non-letter range error = %v", err)
	}
}

// letterRange maps two arbitrary bytes onto an ordered pair of letters.
func letterRange(a, b uint8) (byte, byte) {
	x, y := 'A'+a%26, 'A'+b%26
	if x > y {
		x, y = y, x
	}
	return x, y
}

func TestOverlappingRangesQuick(t *testing.T) {
	check := func(a, b, c, d uint8) bool {
		f1, l1 := letterRange(a, b)
		f2, l2 := letterRange(c, d)
		overlap := f1 <= l2 && f2 <= l1

		tab := New()
		if err := tab.Set(f1, l1, types.DefaultLogical); err != nil {
			return false
		}
		// Different types conflict only where the ranges overlap.
		err := tab.Set(f2, l2, types.DoublePrecision)
		if overlap != errors.Is(err, ErrConflict) {
			return false
		}
		if err != nil {
			// A failed Set leaves the table unchanged.
			got, _ := tab.Lookup(f1)
			return types.Equal(got, types.DefaultLogical)
		}
		// The same type may always be mapped again.
		return tab.Set(f1, l1, types.DefaultLogical) == nil
	}
	if err := quick.Check(check, nil); err != nil {
		t.Error(err)
	}
}
