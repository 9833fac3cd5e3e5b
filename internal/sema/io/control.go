// Copyright 2017 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

// Package io checks data transfer statements: their control lists, and the
// agreement between an I/O list and the FORMAT statement it is transferred
// with.  Expressions in the statement must already be typed.
package io

import (
	"strings"

	"github.com/google/fortsema/internal/sema/ast"
	"github.com/google/fortsema/internal/sema/errors"
	"github.com/google/fortsema/internal/sema/position"
	"github.com/google/fortsema/internal/sema/typeval"
)

// Control is a checked control list.
type Control struct {
	Kind ast.IOKind

	// Unit is the unit expression, nil if Stdout.
	Unit   ast.Node
	Stdout bool

	// Format is the FMT expression.  ListDirected is set for `*'.  A
	// constant INTEGER format is a statement label, held in Label.
	Format       ast.Node
	Formatted    bool
	ListDirected bool
	Label        int
	HasLabel     bool

	IOStat  ast.Node
	Rec     ast.Node
	Advance ast.Node

	// Err is the label branched to on error, valid when HasErr is set.
	Err    int
	HasErr bool
}

var paramNames = []string{"UNIT", "FMT", "IOSTAT", "REC", "ERR", "ADVANCE"}

// CheckControl validates the control list of stmt.  Named constants used in
// it are resolved through c.
func CheckControl(stmt *ast.IOStmt, c typeval.Constants, errs *errors.ErrorList) (*Control, error) {
	ctl := &Control{Kind: stmt.Kind}
	in := stmt.Kind.String()
	pos := &stmt.P

	params := make(map[string]*ast.IOParam)
	for i, p := range stmt.Params {
		name := strings.ToUpper(p.Name)
		if name == "" {
			switch {
			case stmt.Kind == ast.Print:
				if i > 0 {
					return nil, errs.Errorf(&p.P, "Un-named parameter %d has no meaning in %s.", i, in)
				}
				name = "FMT"
			case i >= 2:
				return nil, errs.Errorf(&p.P, "Un-named parameter %d has no meaning in %s.", i, in)
			case i == 0:
				name = "UNIT"
			default:
				if params["UNIT"] == nil {
					return nil, errs.Errorf(&p.P, "Un-named format parameter only valid after UNIT in %s.", in)
				}
				name = "FMT"
			}
		} else if stmt.Kind == ast.Print {
			return nil, errs.Errorf(&p.P, "Named parameter %s has no meaning in %s.", p.Name, in)
		}
		known := false
		for _, n := range paramNames {
			if n == name {
				known = true
			}
		}
		if !known {
			return nil, errs.Errorf(&p.P, "Unrecognized parameter %d name '%s' in %s.", i, p.Name, in)
		}
		if params[name] != nil {
			return nil, errs.Errorf(&p.P, "Re-definition of %s in %s.", name, in)
		}
		params[name] = p
	}

	if stmt.Kind == ast.Print {
		ctl.Stdout = true
	} else if u := params["UNIT"]; u == nil {
		return nil, errs.Errorf(pos, "No UNIT defined in %s.", in)
	} else if u.Asterisk {
		ctl.Stdout = true
	} else {
		t := u.Value.Type()
		switch {
		case t.IsCharacter():
		case t.IsInteger():
			if v, err := typeval.FoldInt(u.Value, c); err == nil && v < 0 {
				return nil, errs.Errorf(pos, "UNIT must be a positive INTEGER or a CHARACTER expression in %s", in)
			}
		default:
			return nil, errs.Errorf(pos, "UNIT must be a positive INTEGER or a CHARACTER expression in %s", in)
		}
		ctl.Unit = u.Value
	}

	if f := params["FMT"]; f != nil {
		ctl.Formatted = true
		if f.Asterisk {
			ctl.ListDirected = true
		} else {
			t := f.Value.Type()
			switch {
			case t.IsInteger():
				if l, ok := f.Value.(*ast.IntLit); ok {
					ctl.Label, ctl.HasLabel = int(l.I), true
				}
			case t.IsCharacter():
			default:
				return nil, errs.Errorf(pos, "Format (FMT) must be a label or character string in %s", in)
			}
			ctl.Format = f.Value
		}
	}

	if a := params["ADVANCE"]; a != nil {
		switch {
		case ctl.Stdout:
			return nil, errs.Errorf(pos, "ADVANCE specifier can only be used with an external UNIT in %s", in)
		case !ctl.Formatted || ctl.ListDirected:
			return nil, errs.Errorf(pos, "ADVANCE specifier can only be used with formatted transfer in %s", in)
		case a.Asterisk || !a.Value.Type().IsCharacter():
			return nil, errs.Errorf(pos, "ADVANCE must be a CHARACTER expression in %s", in)
		}
		if v, err := typeval.Fold(a.Value, c); err == nil {
			if s := strings.ToUpper(strings.TrimSpace(v.S)); s != "YES" && s != "NO" {
				return nil, errs.Errorf(pos, "ADVANCE must be YES/NO in %s", in)
			}
		}
		ctl.Advance = a.Value
	}

	if s := params["IOSTAT"]; s != nil {
		if s.Asterisk || !isVariable(s.Value) {
			return nil, errs.Errorf(pos, "IOSTAT must be a variable in %s", in)
		}
		if !s.Value.Type().IsInteger() {
			return nil, errs.Errorf(pos, "IOSTAT must be of type INTEGER in %s", in)
		}
		ctl.IOStat = s.Value
	}

	if r := params["REC"]; r != nil {
		if ctl.ListDirected {
			return nil, errs.Errorf(pos, "REC specifier not compatible with list-directed data transfer in %s", in)
		}
		if r.Asterisk || !r.Value.Type().IsInteger() {
			return nil, errs.Errorf(pos, "REC must be of type INTEGER in %s", in)
		}
		ctl.Rec = r.Value
	}

	if e := params["ERR"]; e != nil {
		l, ok := e.Value.(*ast.IntLit)
		if e.Asterisk || !ok || l.I <= 0 {
			return nil, errs.Errorf(pos, "ERR must be a statement label in %s", in)
		}
		ctl.Err, ctl.HasErr = int(l.I), true
	}
	return ctl, nil
}

func isVariable(n ast.Node) bool {
	switch n.(type) {
	case *ast.IDTerm, *ast.IndexedExpr, *ast.SubstringExpr:
		return true
	}
	return false
}

// IsInput reports whether the statement transfers data into its list.
func (c *Control) IsInput() bool { return c.Kind == ast.Read }

func (c *Control) pos(stmt *ast.IOStmt) *position.Position {
	if c.Format != nil {
		return c.Format.Pos()
	}
	return &stmt.P
}
