// Copyright 2011 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

// Package ast holds the parsed statement and expression tree consumed by the
// semantic pass.  Building the tree is the job of the parser; the semantic
// pass only annotates expression types and inserts conversions.
package ast

import (
	"github.com/google/fortsema/internal/sema/format"
	"github.com/google/fortsema/internal/sema/position"
	"github.com/google/fortsema/internal/sema/types"
)

type Node interface {
	Pos() *position.Position // Returns the position of the node from the original source
	Type() *types.Type       // Returns the type of the expression in this node, or nil
}

// Op is an operator in a unary or binary expression.
type Op int

const (
	Plus Op = iota
	Minus
	Mul
	Div
	Pow
	Concat
	Eq
	Ne
	Lt
	Le
	Gt
	Ge
	And
	Or
	Eqv
	Neqv
	Not
)

var opNames = map[Op]string{
	Plus: "+", Minus: "-", Mul: "*", Div: "/", Pow: "**", Concat: "//",
	Eq: ".EQ.", Ne: ".NE.", Lt: ".LT.", Le: ".LE.", Gt: ".GT.", Ge: ".GE.",
	And: ".AND.", Or: ".OR.", Eqv: ".EQV.", Neqv: ".NEQV.", Not: ".NOT.",
}

func (o Op) String() string {
	if s, ok := opNames[o]; ok {
		return s
	}
	return "?"
}

// IsComparison reports whether o yields a LOGICAL from two operands of another type.
func (o Op) IsComparison() bool {
	return o >= Eq && o <= Ge
}

// IsLogical reports whether o takes and yields LOGICAL operands.
func (o Op) IsLogical() bool {
	return o >= And && o <= Not
}

func mergepositionlist(l []Node) *position.Position {
	if len(l) == 0 {
		return nil
	}
	if len(l) == 1 {
		if l[0] != nil {
			return l[0].Pos()
		}
		return nil
	}
	return position.Merge(l[0].Pos(), mergepositionlist(l[1:]))
}

type IntLit struct {
	P    position.Position
	I    int64
	Size int // KIND suffix, 0 for default
}

func (n *IntLit) Pos() *position.Position { return &n.P }
func (n *IntLit) Type() *types.Type       { return types.NewScalar(types.Integer, n.Size) }

type RealLit struct {
	P      position.Position
	F      float64
	Double bool // D exponent
}

func (n *RealLit) Pos() *position.Position { return &n.P }

func (n *RealLit) Type() *types.Type {
	if n.Double {
		return types.DoublePrecision
	}
	return types.DefaultReal
}

type ComplexLit struct {
	P      position.Position
	Re, Im float64
	Double bool
}

func (n *ComplexLit) Pos() *position.Position { return &n.P }

func (n *ComplexLit) Type() *types.Type {
	if n.Double {
		return types.DoubleComplex
	}
	return types.DefaultComplex
}

type StringLit struct {
	P position.Position
	S string
}

func (n *StringLit) Pos() *position.Position { return &n.P }
func (n *StringLit) Type() *types.Type       { return types.NewCharacter(1, len(n.S)) }

type LogicalLit struct {
	P position.Position
	B bool
}

func (n *LogicalLit) Pos() *position.Position { return &n.P }
func (n *LogicalLit) Type() *types.Type       { return types.DefaultLogical }

// IDTerm is a reference to a named object.  Its type is set when the name is
// resolved.
type IDTerm struct {
	P      position.Position
	Name   string
	Lvalue bool // If set, then this node is the target of an assignment or input.

	typ *types.Type
}

func (n *IDTerm) Pos() *position.Position { return &n.P }
func (n *IDTerm) Type() *types.Type       { return n.typ }
func (n *IDTerm) SetType(t *types.Type)   { n.typ = t }

// IndexedExpr is an array element reference or a function call; the two are
// not distinguished by the parser.
type IndexedExpr struct {
	P     position.Position
	LHS   *IDTerm
	Index []Node

	typ *types.Type
}

func (n *IndexedExpr) Pos() *position.Position { return &n.P }
func (n *IndexedExpr) Type() *types.Type       { return n.typ }
func (n *IndexedExpr) SetType(t *types.Type)   { n.typ = t }

// SubstringExpr selects the characters First through Last of a CHARACTER
// object.  Either bound may be nil.
type SubstringExpr struct {
	P           position.Position
	LHS         Node
	First, Last Node

	typ *types.Type
}

func (n *SubstringExpr) Pos() *position.Position { return &n.P }
func (n *SubstringExpr) Type() *types.Type       { return n.typ }
func (n *SubstringExpr) SetType(t *types.Type)   { n.typ = t }

type BinaryExpr struct {
	LHS, RHS Node
	Op       Op

	typ *types.Type
}

func (n *BinaryExpr) Pos() *position.Position { return mergepositionlist([]Node{n.LHS, n.RHS}) }
func (n *BinaryExpr) Type() *types.Type       { return n.typ }
func (n *BinaryExpr) SetType(t *types.Type)   { n.typ = t }

type UnaryExpr struct {
	P    position.Position
	Expr Node
	Op   Op

	typ *types.Type
}

func (n *UnaryExpr) Pos() *position.Position { return position.Merge(&n.P, n.Expr.Pos()) }
func (n *UnaryExpr) Type() *types.Type       { return n.typ }
func (n *UnaryExpr) SetType(t *types.Type)   { n.typ = t }

// ConvExpr is an implicit conversion of N to another type, inserted by the
// semantic pass.
type ConvExpr struct {
	N Node

	typ *types.Type
}

func (n *ConvExpr) Pos() *position.Position { return n.N.Pos() }
func (n *ConvExpr) Type() *types.Type       { return n.typ }
func (n *ConvExpr) SetType(t *types.Type)   { n.typ = t }

// ImpliedDo is an implied-DO list in an I/O list or DATA statement.  Its
// length is not known statically.
type ImpliedDo struct {
	P                position.Position
	Body             []Node
	Var              *IDTerm
	Start, End, Step Node
}

func (n *ImpliedDo) Pos() *position.Position { return &n.P }
func (n *ImpliedDo) Type() *types.Type       { return nil }

// RangeExpr is an array bound `Lower:Upper'.  Lower may be nil, in which case
// it is 1.  Star marks an assumed upper bound.
type RangeExpr struct {
	P            position.Position
	Lower, Upper Node
	Star         bool
}

func (n *RangeExpr) Pos() *position.Position { return &n.P }
func (n *RangeExpr) Type() *types.Type       { return nil }

// File is a source file, holding one or more program units.
type File struct {
	Name  string
	Units []*Unit
}

func (n *File) Pos() *position.Position {
	if len(n.Units) == 0 {
		return &position.Position{Filename: n.Name}
	}
	return n.Units[0].Pos()
}
func (n *File) Type() *types.Type { return nil }

// UnitKind enumerates the kinds of program unit.
type UnitKind int

const (
	Program UnitKind = iota
	Subroutine
	Function
	BlockData
)

func (k UnitKind) String() string {
	switch k {
	case Program:
		return "PROGRAM"
	case Subroutine:
		return "SUBROUTINE"
	case Function:
		return "FUNCTION"
	case BlockData:
		return "BLOCK DATA"
	}
	return "UNKNOWN"
}

// Unit is one program unit: a main program, subprogram or block data.
type Unit struct {
	P      position.Position
	Kind   UnitKind
	Name   string
	Result *TypeSpec // explicit FUNCTION result type, if any
	Stmts  []Node
}

func (n *Unit) Pos() *position.Position { return &n.P }
func (n *Unit) Type() *types.Type       { return nil }

// TypeSpec is the type part of a type declaration or IMPLICIT rule.
type TypeSpec struct {
	P    position.Position
	Kind types.Kind
	Size int  // KIND byte size from `*n' or `(KIND=n)', 0 for default
	Len  Node // CHARACTER length expression, nil for the default
	// LenStar marks an assumed CHARACTER length `*(*)'.
	LenStar bool
}

func (n *TypeSpec) Pos() *position.Position { return &n.P }
func (n *TypeSpec) Type() *types.Type       { return nil }

// Entity is one name in a declaration statement, with its optional array
// bounds, length and initializer.
type Entity struct {
	P        position.Position
	Name     string
	Dims     []Node // array bounds, nil for a scalar
	Len      Node   // `*len' CHARACTER length override
	LenStar  bool
	Init     Node         // F90 style `= expr'
	InitList []*DataValue // F77 style `/ values /'
}

func (n *Entity) Pos() *position.Position { return &n.P }
func (n *Entity) Type() *types.Type       { return nil }

type TypeDecl struct {
	P        position.Position
	Spec     *TypeSpec
	Entities []*Entity
}

func (n *TypeDecl) Pos() *position.Position { return &n.P }
func (n *TypeDecl) Type() *types.Type       { return nil }

// LetterRange is an inclusive range of initial letters in an IMPLICIT rule.
type LetterRange struct {
	First, Last byte
}

type ImplicitRule struct {
	Spec   *TypeSpec
	Ranges []LetterRange
}

type ImplicitStmt struct {
	P     position.Position
	None  bool
	Rules []*ImplicitRule
}

func (n *ImplicitStmt) Pos() *position.Position { return &n.P }
func (n *ImplicitStmt) Type() *types.Type       { return nil }

type DimensionStmt struct {
	P        position.Position
	Entities []*Entity
}

func (n *DimensionStmt) Pos() *position.Position { return &n.P }
func (n *DimensionStmt) Type() *types.Type       { return nil }

// Attr is an attribute given by an attribute specification statement.
type Attr int

const (
	Static Attr = iota
	Save
	Automatic
	Volatile
	Intrinsic
	External
)

func (a Attr) String() string {
	switch a {
	case Static:
		return "STATIC"
	case Save:
		return "SAVE"
	case Automatic:
		return "AUTOMATIC"
	case Volatile:
		return "VOLATILE"
	case Intrinsic:
		return "INTRINSIC"
	case External:
		return "EXTERNAL"
	}
	return "UNKNOWN"
}

type AttrStmt struct {
	P        position.Position
	Attr     Attr
	Entities []*Entity
}

func (n *AttrStmt) Pos() *position.Position { return &n.P }
func (n *AttrStmt) Type() *types.Type       { return nil }

// CommonGroup is one `/name/ list' group of a COMMON statement.  An empty
// name is blank COMMON.
type CommonGroup struct {
	P        position.Position
	Name     string
	Entities []*Entity
}

type CommonStmt struct {
	P      position.Position
	Groups []*CommonGroup
}

func (n *CommonStmt) Pos() *position.Position { return &n.P }
func (n *CommonStmt) Type() *types.Type       { return nil }

type ParamAssign struct {
	P     position.Position
	Name  string
	Value Node
}

type ParameterStmt struct {
	P       position.Position
	Assigns []*ParamAssign
}

func (n *ParameterStmt) Pos() *position.Position { return &n.P }
func (n *ParameterStmt) Type() *types.Type       { return nil }

// DataValue is one constant in a DATA value list, optionally repeated
// `Repeat*Value'.
type DataValue struct {
	Repeat Node
	Value  Node
}

// DataSet is one `targets / values /' pair of a DATA statement.  Targets are
// IDTerm, IndexedExpr or SubstringExpr nodes.
type DataSet struct {
	Targets []Node
	Values  []*DataValue
}

type DataStmt struct {
	P    position.Position
	Sets []*DataSet
}

func (n *DataStmt) Pos() *position.Position { return &n.P }
func (n *DataStmt) Type() *types.Type       { return nil }

// FormatStmt is a labelled FORMAT statement with its parsed descriptor list.
type FormatStmt struct {
	P     position.Position
	Label int
	Descs *format.List
}

func (n *FormatStmt) Pos() *position.Position { return &n.P }
func (n *FormatStmt) Type() *types.Type       { return nil }

// IOKind enumerates the data transfer statements.
type IOKind int

const (
	Write IOKind = iota
	Read
	Print
)

func (k IOKind) String() string {
	switch k {
	case Write:
		return "WRITE"
	case Read:
		return "READ"
	case Print:
		return "PRINT"
	}
	return "UNKNOWN"
}

// IOParam is one entry of an I/O control list.  Name is empty for a
// positional parameter.  Asterisk marks a `*' value.
type IOParam struct {
	P        position.Position
	Name     string
	Value    Node
	Asterisk bool
}

type IOStmt struct {
	P      position.Position
	Kind   IOKind
	Params []*IOParam
	List   []Node
}

func (n *IOStmt) Pos() *position.Position { return &n.P }
func (n *IOStmt) Type() *types.Type       { return nil }

type AssignStmt struct {
	P        position.Position
	LHS, RHS Node
}

func (n *AssignStmt) Pos() *position.Position { return &n.P }
func (n *AssignStmt) Type() *types.Type       { return nil }

type CallStmt struct {
	P    position.Position
	Name *IDTerm
	Args []Node
}

func (n *CallStmt) Pos() *position.Position { return &n.P }
func (n *CallStmt) Type() *types.Type       { return nil }
