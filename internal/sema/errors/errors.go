// Copyright 2015 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

// Package errors implements the diagnostics sink for the semantic pass.  Hard
// errors and warnings are recorded against a source position; a compilation
// unit that has recorded any hard error is never emitted as valid.
package errors

import (
	"expvar"
	"fmt"
	"strings"

	"github.com/golang/glog"
	"github.com/google/fortsema/internal/sema/position"
	"github.com/pkg/errors"
)

// Diagnostics counts every diagnostic recorded, keyed by severity.
var Diagnostics = expvar.NewMap("diagnostics_total")

// Severity classifies a diagnostic.
type Severity int

const (
	Error   Severity = iota // compilation cannot produce a valid program
	Warning                 // compilation continues
)

func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	default:
		panic("unexpected severity")
	}
}

// A Diagnostic is a single message attached to a source position.
type Diagnostic struct {
	Pos      position.Position
	Msg      string
	Severity Severity
}

func (d *Diagnostic) Error() string {
	if d.Severity == Warning {
		return d.Pos.String() + ": warning: " + d.Msg
	}
	return d.Pos.String() + ": " + d.Msg
}

// ErrorList contains the diagnostics recorded for one compilation.
type ErrorList []*Diagnostic

func (p *ErrorList) add(pos *position.Position, sev Severity, msg string) *Diagnostic {
	d := &Diagnostic{Msg: msg, Severity: sev}
	if pos != nil {
		d.Pos = *pos
	}
	Diagnostics.Add(sev.String(), 1)
	*p = append(*p, d)
	return d
}

// Add appends an error at a position to the list of errors.
func (p *ErrorList) Add(pos *position.Position, msg string) {
	p.add(pos, Error, msg)
}

// Errorf records a hard error at pos and returns it, so that callers can
// propagate it without recording it a second time.
func (p *ErrorList) Errorf(pos *position.Position, format string, args ...interface{}) error {
	return p.add(pos, Error, fmt.Sprintf(format, args...))
}

// Warnf records a warning at pos.
func (p *ErrorList) Warnf(pos *position.Position, format string, args ...interface{}) {
	d := p.add(pos, Warning, fmt.Sprintf(format, args...))
	glog.V(1).Info(d.Error())
}

// Append puts an ErrorList on the end of this ErrorList.
func (p *ErrorList) Append(l ErrorList) {
	*p = append(*p, l...)
}

// Errors returns only the hard errors in the list.
func (p ErrorList) Errors() ErrorList {
	var r ErrorList
	for _, d := range p {
		if d.Severity == Error {
			r = append(r, d)
		}
	}
	return r
}

// Warnings returns only the warnings in the list.
func (p ErrorList) Warnings() ErrorList {
	var r ErrorList
	for _, d := range p {
		if d.Severity == Warning {
			r = append(r, d)
		}
	}
	return r
}

// HasErrors reports whether any hard error was recorded.
func (p ErrorList) HasErrors() bool {
	for _, d := range p {
		if d.Severity == Error {
			return true
		}
	}
	return false
}

// Err returns the hard errors as an error, or nil if there are none.
func (p ErrorList) Err() error {
	if e := p.Errors(); len(e) > 0 {
		return e
	}
	return nil
}

// ErrorList implements the error interface.
func (p ErrorList) Error() string {
	switch len(p) {
	case 0:
		return "no errors"
	case 1:
		return p[0].Error()
	}
	var r strings.Builder
	for i, e := range p {
		if i > 0 {
			r.WriteString("\n")
		}
		r.WriteString(e.Error())
	}
	return r.String()
}

// AsDiagnostic unwraps err to the Diagnostic recorded for it, if any.
func AsDiagnostic(err error) (*Diagnostic, bool) {
	var d *Diagnostic
	if errors.As(err, &d) {
		return d, true
	}
	return nil, false
}

func Errorf(format string, args ...interface{}) error {
	return errors.Errorf(format, args...)
}

func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}
