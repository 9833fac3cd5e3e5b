// Copyright 2016 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package sema

import (
	"testing"

	"github.com/google/fortsema/internal/sema/ast"
	"github.com/google/fortsema/internal/sema/errors"
	"github.com/google/fortsema/internal/sema/format"
	"github.com/google/fortsema/internal/sema/position"
	"github.com/google/fortsema/internal/sema/symbol"
	"github.com/google/fortsema/internal/sema/types"
	"github.com/google/fortsema/internal/testutil"
)

func at(line int) position.Position {
	return position.Position{Filename: "prog.f", Line: line}
}

func id(name string) *ast.IDTerm   { return &ast.IDTerm{Name: name} }
func ilit(i int64) *ast.IntLit     { return &ast.IntLit{I: i} }
func rlit(f float64) *ast.RealLit  { return &ast.RealLit{F: f} }
func slit(s string) *ast.StringLit { return &ast.StringLit{S: s} }

func typeSpec(k types.Kind, size int) *ast.TypeSpec {
	return &ast.TypeSpec{Kind: k, Size: size}
}

func ent(name string, dims ...ast.Node) *ast.Entity {
	return &ast.Entity{Name: name, Dims: dims}
}

func decl(ts *ast.TypeSpec, entities ...*ast.Entity) *ast.TypeDecl {
	return &ast.TypeDecl{Spec: ts, Entities: entities}
}

func values(vs ...ast.Node) []*ast.DataValue {
	r := make([]*ast.DataValue, 0, len(vs))
	for _, v := range vs {
		r = append(r, &ast.DataValue{Value: v})
	}
	return r
}

func assign(lhs, rhs ast.Node) *ast.AssignStmt { return &ast.AssignStmt{LHS: lhs, RHS: rhs} }

func formatStmt(t *testing.T, label int, text string) *ast.FormatStmt {
	t.Helper()
	l, err := format.Parse("test", text)
	testutil.FatalIfErr(t, err)
	return &ast.FormatStmt{P: at(label), Label: label, Descs: l}
}

func write(label int64, list ...ast.Node) *ast.IOStmt {
	return &ast.IOStmt{
		Kind:   ast.Write,
		Params: []*ast.IOParam{{Value: ilit(6)}, {Value: ilit(label)}},
		List:   list,
	}
}

func program(stmts ...ast.Node) *ast.File {
	return &ast.File{Name: "prog.f", Units: []*ast.Unit{{P: at(0), Kind: ast.Program, Name: "P", Stmts: stmts}}}
}

func declStrings(s *symbol.Scope) []string {
	var r []string
	for _, d := range s.Decls.Decls() {
		r = append(r, d.String())
	}
	return r
}

func messages(l errors.ErrorList) []string {
	var r []string
	for _, d := range l {
		r = append(r, d.Severity.String()+": "+d.Msg)
	}
	return r
}

func TestCheckSpecification(t *testing.T) {
	f := program(
		&ast.ImplicitStmt{Rules: []*ast.ImplicitRule{{Spec: typeSpec(types.Integer, 0), Ranges: []ast.LetterRange{{First: 'A', Last: 'C'}}}}},
		decl(typeSpec(types.Integer, 2), ent("N")),
		decl(typeSpec(types.Real, 0), ent("V", ilit(3))),
		&ast.DimensionStmt{Entities: []*ast.Entity{ent("W", ilit(2))}},
		decl(&ast.TypeSpec{Kind: types.Character, Len: ilit(5)},
			&ast.Entity{Name: "S", InitList: values(slit("HELLO"))}),
		&ast.ParameterStmt{Assigns: []*ast.ParamAssign{{Name: "K", Value: ilit(4)}}},
		&ast.DataStmt{Sets: []*ast.DataSet{{
			Targets: []ast.Node{id("V")},
			Values:  []*ast.DataValue{{Repeat: ilit(3), Value: rlit(1.5)}},
		}}},
		assign(id("A"), id("K")),
	)
	prog, err := Check(f)
	testutil.FatalIfErr(t, err)
	testutil.ExpectNoDiff(t, []string(nil), messages(prog.Diagnostics))

	u, ok := prog.Unit("p")
	if !ok {
		t.Fatal("unit P not found")
	}
	testutil.ExpectNoDiff(t, []string{
		"CHARACTER*5 S = 'HELLO'",
		"REAL(3) V",
		"INTEGER*2 N",
		"REAL(2) W",
		"INTEGER A",
	}, declStrings(u.Scope))

	v, _ := u.Scope.Decls.Find("V")
	for i := 0; i < 3; i++ {
		if e, ok := v.ElementValue(i); !ok || e.F != 1.5 {
			t.Errorf("V(%d) = %v, %v, want 1.5", i+1, e, ok)
		}
	}
}

func TestCheckProcedures(t *testing.T) {
	call := &ast.CallStmt{Name: id("S"), Args: []ast.Node{id("Y")}}
	main := &ast.Unit{P: at(0), Kind: ast.Program, Stmts: []ast.Node{
		assign(id("Y"), &ast.IndexedExpr{LHS: id("F"), Index: []ast.Node{id("X")}}),
		call,
	}}
	fn := &ast.Unit{P: at(10), Kind: ast.Function, Name: "F", Result: typeSpec(types.Real, 8), Stmts: []ast.Node{
		assign(id("F"), ilit(2)),
	}}
	g := &ast.Unit{P: at(20), Kind: ast.Function, Name: "G", Stmts: []ast.Node{
		decl(typeSpec(types.Integer, 0), ent("G")),
		assign(id("G"), ilit(1)),
	}}
	sub := &ast.Unit{P: at(30), Kind: ast.Subroutine, Name: "S"}

	prog, err := Check(&ast.File{Name: "prog.f", Units: []*ast.Unit{main, fn, g, sub}})
	testutil.FatalIfErr(t, err)

	testutil.ExpectNoDiff(t, []string{
		"REAL*8 FUNCTION F EXTERNAL",
		"INTEGER FUNCTION G EXTERNAL",
		"SUBROUTINE S EXTERNAL",
	}, declStrings(prog.Global))

	m, _ := prog.Unit(mainName)
	testutil.ExpectNoDiff(t, []string{"REAL X", "REAL Y"}, declStrings(m.Scope))
	if _, ok := main.Stmts[0].(*ast.AssignStmt).RHS.(*ast.ConvExpr); !ok {
		t.Errorf("REAL*8 result assigned to REAL was not converted")
	}
	if call.Name.Type() == nil || call.Name.Type().Kind != types.Subroutine {
		t.Errorf("CALL target typed %s", call.Name.Type())
	}

	u, _ := prog.Unit("F")
	if u.Decl == nil || u.Decl.Body != u.Scope {
		t.Fatalf("FUNCTION F does not own its scope: %v", u.Decl)
	}
	testutil.ExpectNoDiff(t, []string{"REAL*8 F"}, declStrings(u.Scope))
}

func TestCheckProcedureRedeclared(t *testing.T) {
	f := &ast.File{Name: "prog.f", Units: []*ast.Unit{
		{P: at(0), Kind: ast.Subroutine, Name: "S"},
		{P: at(5), Kind: ast.Subroutine, Name: "S"},
	}}
	prog, err := Check(f)
	testutil.ExpectErr(t, err)
	testutil.ExpectNoDiff(t, []string{
		"error: Redeclaration of `S' previously declared at prog.f:1:1",
	}, messages(prog.Diagnostics))
	if len(prog.Units) != 2 || prog.Units[1].Decl != nil {
		t.Errorf("second unit: %+v", prog.Units)
	}
}

func TestCheckIO(t *testing.T) {
	for _, tc := range []struct {
		name    string
		stmts   func() []ast.Node
		want    []string
		wantErr bool
	}{
		{
			name: "matching",
			stmts: func() []ast.Node {
				return []ast.Node{write(10, id("N"), id("X"))}
			},
		},
		{
			name: "mismatch",
			stmts: func() []ast.Node {
				return []ast.Node{write(10, id("X"), id("N"))}
			},
			want: []string{
				"warning: Trying to format a REAL output with a I FORMAT descriptor",
				"warning: Trying to format a INTEGER output with a F FORMAT descriptor",
			},
		},
		{
			name: "short list",
			stmts: func() []ast.Node {
				return []ast.Node{write(10, id("N"))}
			},
			want: []string{"warning: IO list shorter than FORMAT list, last FORMAT data descriptors will be ignored"},
		},
		{
			name: "no list",
			stmts: func() []ast.Node {
				return []ast.Node{write(10)}
			},
			want: []string{"warning: No IO list in formatted IO statement"},
		},
		{
			name: "missing label",
			stmts: func() []ast.Node {
				return []ast.Node{write(20, id("N"))}
			},
			want:    []string{"error: FORMAT label must point to a FORMAT statement"},
			wantErr: true,
		},
		{
			name: "array",
			stmts: func() []ast.Node {
				return []ast.Node{
					decl(typeSpec(types.Integer, 0), ent("M", ilit(2))),
					write(10, id("M")),
				}
			},
			want: []string{"warning: Trying to format a INTEGER output with a F FORMAT descriptor"},
		},
	} {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			stmts := append([]ast.Node{formatStmt(t, 10, "(I5, F8.2)")}, tc.stmts()...)
			prog, err := Check(program(stmts...))
			if tc.wantErr {
				testutil.ExpectErr(t, err)
			} else {
				testutil.FatalIfErr(t, err)
			}
			testutil.ExpectNoDiff(t, tc.want, messages(prog.Diagnostics))
		})
	}
}

func TestCheckIOConvertsOutput(t *testing.T) {
	w := write(10, id("X"), id("N"))
	_, err := Check(program(formatStmt(t, 10, "(I5, F8.2)"), w))
	testutil.FatalIfErr(t, err)
	for i, want := range []*types.Type{types.DefaultInteger, types.DefaultReal} {
		c, ok := w.List[i].(*ast.ConvExpr)
		if !ok {
			t.Errorf("element %d not converted: %T", i, w.List[i])
			continue
		}
		testutil.ExpectNoDiff(t, want, c.Type())
	}
}

func TestCheckIODefaults(t *testing.T) {
	prog, err := Check(program(
		formatStmt(t, 10, "(I, F)"),
		decl(typeSpec(types.Integer, 2), ent("N")),
		decl(typeSpec(types.Real, 8), ent("D")),
		write(10, id("N"), id("D")),
	))
	testutil.FatalIfErr(t, err)
	u, _ := prog.Unit("P")
	st, ok := u.FormatStmt(10)
	if !ok {
		t.Fatal("FORMAT 10 not found")
	}
	if st.Default == nil {
		t.Fatal("FORMAT 10 not specialized")
	}
	testutil.ExpectNoDiff(t, "(I6, F25.16)", st.Default.String())
}

func TestCheckDuplicateFormat(t *testing.T) {
	prog, err := Check(program(formatStmt(t, 10, "(I5)"), formatStmt(t, 10, "(F8.2)")))
	testutil.ExpectErr(t, err)
	testutil.ExpectNoDiff(t, []string{
		"error: Duplicate FORMAT label 10, previously defined at prog.f:11:1",
	}, messages(prog.Diagnostics))
}

func TestCheckData(t *testing.T) {
	doVar := id("I")
	prog, err := Check(program(
		decl(typeSpec(types.Integer, 0), ent("A", ilit(3))),
		decl(&ast.TypeSpec{Kind: types.Character, Len: ilit(4)}, ent("C")),
		&ast.DataStmt{Sets: []*ast.DataSet{
			{
				Targets: []ast.Node{&ast.ImpliedDo{
					Body:  []ast.Node{&ast.IndexedExpr{LHS: id("A"), Index: []ast.Node{doVar}}},
					Var:   doVar,
					Start: ilit(3), End: ilit(1), Step: ilit(-1),
				}},
				Values: values(ilit(30), ilit(20), ilit(10)),
			},
			{
				Targets: []ast.Node{
					&ast.SubstringExpr{LHS: id("C"), First: ilit(1), Last: ilit(2)},
					&ast.SubstringExpr{LHS: id("C"), First: ilit(3), Last: ilit(4)},
				},
				Values: values(slit("AB"), slit("CD")),
			},
		}},
	))
	testutil.FatalIfErr(t, err)
	u, _ := prog.Unit("P")
	a, _ := u.Scope.Decls.Find("A")
	for i, want := range []int64{10, 20, 30} {
		if v, ok := a.ElementValue(i); !ok || v.I != want {
			t.Errorf("A(%d) = %v, %v, want %d", i+1, v, ok, want)
		}
	}
	c, _ := u.Scope.Decls.Find("C")
	testutil.ExpectNoDiff(t, "CHARACTER*4 C = 'ABCD'", c.String())
}

func TestCheckDataErrors(t *testing.T) {
	for _, tc := range []struct {
		name string
		set  *ast.DataSet
		want string
	}{
		{"too many", &ast.DataSet{Targets: []ast.Node{id("N")}, Values: values(ilit(1), ilit(2))},
			"error: Too many values in DATA statement"},
		{"not enough", &ast.DataSet{Targets: []ast.Node{id("N"), id("M")}, Values: values(ilit(1))},
			"error: Not enough values in DATA statement"},
		{"short array", &ast.DataSet{Targets: []ast.Node{id("V")}, Values: values(ilit(1), ilit(2))},
			"error: Not enough values in DATA statement"},
		{"bad repeat", &ast.DataSet{Targets: []ast.Node{id("N")}, Values: []*ast.DataValue{{Repeat: ilit(0), Value: ilit(1)}}},
			"error: DATA repeat count 0 must be positive"},
		{"not an array", &ast.DataSet{Targets: []ast.Node{&ast.IndexedExpr{LHS: id("N"), Index: []ast.Node{ilit(1)}}}, Values: values(ilit(1))},
			"error: `N' is not an array"},
		{"out of bounds", &ast.DataSet{Targets: []ast.Node{&ast.IndexedExpr{LHS: id("V"), Index: []ast.Node{ilit(4)}}}, Values: values(ilit(1))},
			"error: DATA subscript of `V' out of bounds"},
	} {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			prog, err := Check(program(
				decl(typeSpec(types.Integer, 0), ent("V", ilit(3))),
				&ast.DataStmt{Sets: []*ast.DataSet{tc.set}},
			))
			testutil.ExpectErr(t, err)
			testutil.ExpectNoDiff(t, []string{tc.want}, messages(prog.Diagnostics))
		})
	}
}

func TestCheckOptions(t *testing.T) {
	prog, err := Check(program(assign(id("X"), ilit(1))), NoImplicit())
	testutil.ExpectErr(t, err)
	testutil.ExpectNoDiff(t, []string{"error: No IMPLICIT type for `X'"}, messages(prog.Diagnostics))

	prog, err = Check(program(
		decl(typeSpec(types.Integer, 0), ent("n")),
		assign(id("N"), ilit(1)),
	), CaseSensitive(), DumpScopes())
	testutil.FatalIfErr(t, err)
	u, _ := prog.Unit("P")
	// N is a separate name, typed by the implicit table.
	testutil.ExpectNoDiff(t, []string{"INTEGER n", "INTEGER N"}, declStrings(u.Scope))

	_, err = Check(program(), MaxFormatCacheEntries(0))
	testutil.ExpectErr(t, err)
}

func TestCheckSpecificationErrors(t *testing.T) {
	for _, tc := range []struct {
		name  string
		stmts []ast.Node
		want  []string
	}{
		{"conflicting types", []ast.Node{
			decl(typeSpec(types.Integer, 0), ent("N")),
			decl(typeSpec(types.Real, 0), ent("N")),
		}, []string{"error: `N' declared REAL, previously INTEGER: conflicting types"}},
		{"respecified after initialization", []ast.Node{
			decl(typeSpec(types.Integer, 0), &ast.Entity{P: at(0), Name: "N", Init: ilit(1)}),
			&ast.AttrStmt{Attr: ast.Save, Entities: []*ast.Entity{ent("N")}},
		}, []string{"error: Redeclaration of `N' previously declared at prog.f:1:1"}},
		{"parameter not constant", []ast.Node{
			&ast.ParameterStmt{Assigns: []*ast.ParamAssign{{Name: "K", Value: id("J")}}},
		}, []string{"error: PARAMETER `K' value is not constant: `J' is not a named constant: expression is not constant"}},
		{"bad kind", []ast.Node{
			decl(typeSpec(types.Integer, 3), ent("N")),
		}, []string{"error: KIND 3 not supported for INTEGER"}},
		{"common and save", []ast.Node{
			&ast.CommonStmt{Groups: []*ast.CommonGroup{{Name: "BLK", Entities: []*ast.Entity{ent("N")}}}},
			&ast.AttrStmt{Attr: ast.Save, Entities: []*ast.Entity{ent("N")}},
		}, []string{"error: COMMON member `N' can't be STATIC: conflicting attributes"}},
	} {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			prog, err := Check(program(tc.stmts...))
			testutil.ExpectErr(t, err)
			testutil.ExpectNoDiff(t, tc.want, messages(prog.Diagnostics))
		})
	}
}

func TestCheckCommon(t *testing.T) {
	prog, err := Check(program(
		&ast.CommonStmt{Groups: []*ast.CommonGroup{{Name: "BLK", Entities: []*ast.Entity{ent("A"), ent("B", ilit(3))}}}},
		decl(typeSpec(types.Integer, 2), ent("A")),
		assign(id("A"), ilit(1)),
	))
	testutil.FatalIfErr(t, err)
	u, _ := prog.Unit("P")
	blocks := u.Scope.Blocks()
	if len(blocks) != 1 {
		t.Fatalf("got %d COMMON blocks", len(blocks))
	}
	if size, ok := blocks[0].Size(); !ok || size != 14 {
		t.Errorf("COMMON /BLK/ size = %d, %v, want 14", size, ok)
	}
}
