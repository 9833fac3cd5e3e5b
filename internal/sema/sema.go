// Copyright 2016 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

// Package sema performs the semantic check of a parsed source file.  It
// walks each program unit in statement order, feeding specification
// statements to the symbol tables of the unit, resolving names in
// executable statements, and checking data transfer statements against the
// FORMAT statements they use.
package sema

import (
	"github.com/golang/glog"
	"github.com/google/fortsema/internal/sema/ast"
	"github.com/google/fortsema/internal/sema/errors"
	"github.com/google/fortsema/internal/sema/format"
	"github.com/google/fortsema/internal/sema/spec"
	"github.com/google/fortsema/internal/sema/symbol"
	"github.com/google/fortsema/internal/sema/types"
	"github.com/kylelemons/godebug/pretty"
)

const mainName = "MAIN"

// Program is the result of checking a source file.
type Program struct {
	Name string

	// Global holds the procedures declared by the file.  The scope of each
	// SUBROUTINE and FUNCTION unit is the Body of its declaration here.
	Global *symbol.Scope

	// Units in source order.
	Units []*Unit

	// Diagnostics holds every error and warning recorded during the check.
	Diagnostics errors.ErrorList
}

// Unit returns the checked program unit called name.
func (p *Program) Unit(name string) (*Unit, bool) {
	for _, u := range p.Units {
		if p.Global.Decls.Key(u.Name) == p.Global.Decls.Key(name) {
			return u, true
		}
	}
	return nil, false
}

// Unit is one checked program unit.
type Unit struct {
	Name  string
	Kind  ast.UnitKind
	Scope *symbol.Scope

	// Decl is the procedure declaration of a SUBROUTINE or FUNCTION unit in
	// the global scope, or nil.
	Decl *symbol.Decl

	formats map[int]*format.Statement
}

// FormatStmt returns the FORMAT statement of u with the given label.
func (u *Unit) FormatStmt(label int) (*format.Statement, bool) {
	s, ok := u.formats[label]
	return s, ok
}

// checker holds the state of a semantic check.
type checker struct {
	prog *Program
	errs errors.ErrorList

	host  symbol.Finder // global procedures, as seen from a unit
	unit  *Unit         // the current unit
	scope *symbol.Scope // the scope of the current unit

	// inExec is set once the current unit has reached its first executable
	// statement.
	inExec bool

	caseSensitive bool
	noImplicit    bool
	cacheEntries  int
	dumpScopes    bool
}

// Check performs the semantic check of file.  It returns the checked
// program, and an error holding the hard errors found, if any.  Warnings
// are available in Program.Diagnostics.
func Check(file *ast.File, options ...Option) (*Program, error) {
	c := &checker{}
	if err := c.setOptions(options); err != nil {
		return nil, err
	}
	c.prog = &Program{Name: file.Name}
	c.prog.Global = symbol.NewScope(file.Name, c.caseSensitive, &c.errs)

	ast.Walk(c, file)

	c.prog.Diagnostics = c.errs
	if c.dumpScopes {
		glog.Infof("%s scopes:\n%s", file.Name, pretty.Sprint(c.prog.dump()))
	}
	if c.errs.HasErrors() {
		return c.prog, c.errs.Err()
	}
	return c.prog, nil
}

// declareProcedures adds a declaration for every SUBROUTINE and FUNCTION
// unit of file to the global scope, so that every unit can see every
// procedure regardless of source order.
func (c *checker) declareProcedures(file *ast.File) {
	for _, u := range file.Units {
		if u.Kind != ast.Subroutine && u.Kind != ast.Function {
			continue
		}
		sp := spec.New(u.Name, u.P)
		sp.External = true
		if u.Result != nil {
			t, err := c.typeOf(u.Result)
			if err != nil {
				continue
			}
			sp.Type = t
		}
		c.prog.Global.Build(sp, nil, true, u.Kind == ast.Function)
	}
	host, err := symbol.RefsOf(c.prog.Global.Decls, c.caseSensitive)
	if err != nil {
		// The global list already enforces unique names.
		panic(err)
	}
	c.host = host
}

func (c *checker) startUnit(n *ast.Unit) {
	name := n.Name
	if name == "" {
		name = mainName
	}
	u := &Unit{Name: name, Kind: n.Kind, formats: make(map[int]*format.Statement)}
	if n.Kind == ast.Subroutine || n.Kind == ast.Function {
		if d, ok := c.prog.Global.Decls.Find(n.Name); ok && d.Pos == n.P && d.Body == nil {
			u.Decl = d
		}
	}
	u.Scope = symbol.NewScope(name, c.caseSensitive, &c.errs)
	u.Scope.Host = c.host
	if u.Decl != nil {
		u.Decl.Body = u.Scope
	}
	if c.noImplicit {
		u.Scope.Implicit.None()
	}
	c.prog.Units = append(c.prog.Units, u)
	c.unit, c.scope, c.inExec = u, u.Scope, false

	if n.Kind == ast.Function {
		// The function name is also the result variable inside the body.
		sp := spec.New(n.Name, n.P)
		if u.Decl != nil && u.Decl.Type.Subtype != nil && n.Result != nil {
			sp.Type = u.Decl.Type.Subtype
		}
		c.scope.MergeSpec(sp)
	}

	for _, s := range n.Stmts {
		f, ok := s.(*ast.FormatStmt)
		if !ok {
			continue
		}
		if alt, ok := u.formats[f.Label]; ok {
			c.errs.Errorf(&f.P, "Duplicate FORMAT label %d, previously defined at %s", f.Label, &alt.Pos)
			continue
		}
		u.formats[f.Label] = format.NewStatement(f.P, f.Label, f.Descs, c.cacheEntries)
	}
	glog.V(2).Infof("Started %s unit %s with %d FORMAT statements", n.Kind, name, len(u.formats))
}

func (c *checker) endUnit(n *ast.Unit) {
	c.scope.FinalizePending()
	if u := c.unit; u.Decl != nil && n.Kind == ast.Function {
		// A type declared for the result variable in the body types the
		// function as seen by its callers.
		if r, ok := c.scope.Decls.Find(n.Name); ok && r.Type.IsScalar() && n.Result == nil {
			u.Decl.Type = types.NewFunction(r.Type)
		}
	}
	c.unit, c.scope = nil, nil
}

// endSpecification finalizes the pending specifications of the current
// unit at its first executable statement.
func (c *checker) endSpecification() {
	if c.inExec {
		return
	}
	c.inExec = true
	c.scope.FinalizePending()
}

// VisitBefore handles the specification statements of a unit, and resolves
// the names in executable statements before their children are typed.
func (c *checker) VisitBefore(node ast.Node) (ast.Visitor, ast.Node) {
	switch n := node.(type) {
	case *ast.File:
		c.declareProcedures(n)
		return c, n

	case *ast.Unit:
		c.startUnit(n)
		return c, n

	case *ast.ImplicitStmt:
		c.checkImplicit(n)
		return nil, n

	case *ast.TypeDecl:
		c.checkTypeDecl(n)
		return nil, n

	case *ast.DimensionStmt:
		c.checkDimension(n)
		return nil, n

	case *ast.AttrStmt:
		c.checkAttr(n)
		return nil, n

	case *ast.CommonStmt:
		c.checkCommon(n)
		return nil, n

	case *ast.ParameterStmt:
		c.checkParameter(n)
		return nil, n

	case *ast.DataStmt:
		c.checkData(n)
		return nil, n

	case *ast.FormatStmt:
		// Collected when the unit started.
		return nil, n

	case *ast.AssignStmt:
		c.endSpecification()
		if id, ok := n.LHS.(*ast.IDTerm); ok {
			id.Lvalue = true
		}
		return c, n

	case *ast.CallStmt:
		c.endSpecification()
		c.resolveCall(n)
		return c, n

	case *ast.IOStmt:
		c.endSpecification()
		for _, p := range n.Params {
			if p.Value != nil {
				p.Value = ast.Walk(c, p.Value)
			}
		}
		if n.Kind == ast.Read {
			for _, e := range n.List {
				if id, ok := e.(*ast.IDTerm); ok {
					id.Lvalue = true
				}
			}
		}
		return c, n

	case *ast.IndexedExpr:
		return nil, c.checkIndexed(n)

	case *ast.ImpliedDo:
		n.Var = ast.Walk(c, n.Var).(*ast.IDTerm)
		for _, b := range []*ast.Node{&n.Start, &n.End, &n.Step} {
			if *b != nil {
				*b = ast.Walk(c, *b)
			}
		}
		return c, n
	}
	return c, node
}

// VisitAfter types expressions once their children are typed, and checks
// statements whose expressions are complete.
func (c *checker) VisitAfter(node ast.Node) ast.Node {
	switch n := node.(type) {
	case *ast.Unit:
		c.endUnit(n)

	case *ast.IDTerm:
		c.checkID(n)

	case *ast.SubstringExpr:
		c.checkSubstring(n)

	case *ast.UnaryExpr:
		c.checkUnary(n)

	case *ast.BinaryExpr:
		return c.checkBinary(n)

	case *ast.AssignStmt:
		c.checkAssign(n)

	case *ast.IOStmt:
		c.checkIO(n)
	}
	return node
}

func (p *Program) dump() map[string][]string {
	r := make(map[string][]string)
	for _, d := range p.Global.Decls.Decls() {
		r[p.Name] = append(r[p.Name], d.String())
	}
	for _, u := range p.Units {
		l := []string{u.Scope.Implicit.String()}
		for _, d := range u.Scope.Decls.Decls() {
			l = append(l, d.String())
		}
		for _, b := range u.Scope.Blocks() {
			l = append(l, b.String())
		}
		r[u.Name] = l
	}
	return r
}
