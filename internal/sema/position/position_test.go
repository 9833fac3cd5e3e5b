// Copyright 2021 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package position_test

import (
	"testing"

	"github.com/google/fortsema/internal/sema/position"
	"github.com/google/fortsema/internal/testutil"
)

func TestString(t *testing.T) {
	for _, tc := range []struct {
		p    position.Position
		want string
	}{
		{position.Position{Filename: "a.f", Line: 0, Startcol: 6}, "a.f:1:7"},
		{position.Position{Filename: "a.f", Line: 2, Startcol: 6, Endcol: 9}, "a.f:3:7-10"},
		{position.Position{Filename: "a.f", Line: 2, Startcol: 6, Endcol: 3, EndLine: 4}, "a.f:3:7-5:4"},
	} {
		if got := tc.p.String(); got != tc.want {
			t.Errorf("String() = %q, want %q", got, tc.want)
		}
	}
}

func TestMerge(t *testing.T) {
	a := &position.Position{Filename: "a.f", Line: 1, Startcol: 6, Endcol: 8}
	b := &position.Position{Filename: "a.f", Line: 1, Startcol: 10, Endcol: 14}
	testutil.ExpectNoDiff(t, &position.Position{Filename: "a.f", Line: 1, Startcol: 6, Endcol: 14}, position.Merge(a, b))
	testutil.ExpectNoDiff(t, &position.Position{Filename: "a.f", Line: 1, Startcol: 6, Endcol: 14}, position.Merge(b, a))

	c := &position.Position{Filename: "a.f", Line: 3, Startcol: 6, Endcol: 7}
	testutil.ExpectNoDiff(t, &position.Position{Filename: "a.f", Line: 1, Startcol: 6, Endcol: 7, EndLine: 3}, position.Merge(a, c))

	other := &position.Position{Filename: "b.f", Line: 0}
	testutil.ExpectNoDiff(t, a, position.Merge(a, other))
	testutil.ExpectNoDiff(t, a, position.Merge(a, nil))
	testutil.ExpectNoDiff(t, b, position.Merge(nil, b))
}
