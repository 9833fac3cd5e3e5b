// Copyright 2019 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package errors_test

import (
	"testing"

	"github.com/google/fortsema/internal/sema/errors"
	"github.com/google/fortsema/internal/sema/position"
)

func TestNilErrorPosition(t *testing.T) {
	e := errors.ErrorList{}
	e.Add(nil, "error")
	r := e.Error()
	expected := ":1:1: error"
	if r != expected {
		t.Errorf("want %q, got %q", expected, r)
	}
}

func TestWarningsAreNotErrors(t *testing.T) {
	e := errors.ErrorList{}
	pos := &position.Position{Filename: "w.f", Line: 3, Startcol: 6}
	e.Warnf(pos, "Duplicate initialization.")
	if e.HasErrors() {
		t.Errorf("warning counted as error: %v", e)
	}
	if err := e.Err(); err != nil {
		t.Errorf("Err() = %v, want nil", err)
	}
	if got, want := e.Error(), "w.f:4:7: warning: Duplicate initialization."; got != want {
		t.Errorf("want %q, got %q", want, got)
	}
}

func TestErrorfRecordsAndReturns(t *testing.T) {
	e := errors.ErrorList{}
	pos := &position.Position{Filename: "e.f", Line: 0, Startcol: 6, Endcol: 8}
	err := e.Errorf(pos, "Redeclaration of `%s'", "X")
	e.Warnf(pos, "other")
	if len(e) != 2 || len(e.Errors()) != 1 || len(e.Warnings()) != 1 {
		t.Fatalf("unexpected list %v", e)
	}
	d, ok := errors.AsDiagnostic(err)
	if !ok {
		t.Fatalf("AsDiagnostic(%v) failed", err)
	}
	if d != e[0] {
		t.Errorf("returned error is not the recorded diagnostic")
	}
	if got, want := e.Err().Error(), "e.f:1:7-9: Redeclaration of `X'"; got != want {
		t.Errorf("want %q, got %q", want, got)
	}
}
