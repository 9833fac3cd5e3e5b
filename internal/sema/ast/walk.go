// Copyright 2011 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package ast

import (
	"fmt"

	"github.com/golang/glog"
)

// Visitor VisitBefore method is invoked for each node encountered by Walk.
// If the result Visitor v is not nil, Walk visits each of the children of that
// node with v.  VisitAfter is called on n at the end.
type Visitor interface {
	VisitBefore(n Node) (Visitor, Node)
	VisitAfter(n Node) Node
}

// convenience function.
func walknodelist(v Visitor, list []Node) []Node {
	r := make([]Node, 0, len(list))
	for _, x := range list {
		r = append(r, Walk(v, x))
	}
	return r
}

// Walk traverses (walks) an AST node with the provided Visitor v.
func Walk(v Visitor, node Node) Node {
	glog.V(2).Infof("About to VisitBefore node at %s", node.Pos())
	// Returning nil from VisitBefore signals to Walk that the Visitor has
	// handled the children of this node.  VisitAfter will not be called.
	if v, node = v.VisitBefore(node); v == nil {
		return node
	}

	switch n := node.(type) {
	case *File:
		for i, u := range n.Units {
			n.Units[i] = Walk(v, u).(*Unit)
		}

	case *Unit:
		n.Stmts = walknodelist(v, n.Stmts)

	case *BinaryExpr:
		n.LHS = Walk(v, n.LHS)
		n.RHS = Walk(v, n.RHS)

	case *UnaryExpr:
		n.Expr = Walk(v, n.Expr)

	case *IndexedExpr:
		n.Index = walknodelist(v, n.Index)
		n.LHS = Walk(v, n.LHS).(*IDTerm)

	case *SubstringExpr:
		n.LHS = Walk(v, n.LHS)
		if n.First != nil {
			n.First = Walk(v, n.First)
		}
		if n.Last != nil {
			n.Last = Walk(v, n.Last)
		}

	case *ConvExpr:
		n.N = Walk(v, n.N)

	case *ImpliedDo:
		n.Body = walknodelist(v, n.Body)

	case *AssignStmt:
		n.RHS = Walk(v, n.RHS)
		n.LHS = Walk(v, n.LHS)

	case *CallStmt:
		n.Args = walknodelist(v, n.Args)

	case *IOStmt:
		n.List = walknodelist(v, n.List)

	case *IDTerm, *IntLit, *RealLit, *ComplexLit, *StringLit, *LogicalLit, *RangeExpr,
		*TypeDecl, *ImplicitStmt, *DimensionStmt, *AttrStmt, *CommonStmt, *ParameterStmt,
		*DataStmt, *FormatStmt:
		// These nodes are terminals, or are handled entirely by the visitor.

	default:
		panic(fmt.Sprintf("Walk: unexpected node type %T: %v", n, n))
	}

	glog.V(2).Infof("About to VisitAfter node at %s", node.Pos())
	node = v.VisitAfter(node)
	return node
}
