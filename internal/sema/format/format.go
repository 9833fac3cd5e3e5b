// Copyright 2017 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

// Package format models FORMAT edit-descriptor lists: parsing them from
// source text, flattening them against an I/O list of a given length, and
// specializing descriptors whose field width was left to the compiler.
package format

import (
	"fmt"
	"strings"
)

// Kind enumerates the edit descriptors.
type Kind int

const (
	// Data edit descriptors.
	Integer   Kind = iota // Iw[.m]
	Binary                // Bw[.m]
	Octal                 // Ow[.m]
	Hex                   // Zw[.m]
	Fixed                 // Fw.d
	Exp                   // Ew.d[Ee]
	Double                // Dw.d
	Eng                   // ENw.d[Ee]
	Sci                   // ESw.d[Ee]
	General               // Gw.d[Ee]
	Logical               // Lw
	Character             // A[w]

	// Repeat is a parenthesised group of descriptors replayed N times.
	Repeat

	// Control descriptors, which consume no I/O list elements.
	String   // 'text' or nHtext
	Space    // nX
	Tab      // Tn
	TabLeft  // TLn
	TabRight // TRn
	Slash    // /
	Colon    // :
	Scale    // kP
	Sign     // S, SP, SS
	Blank    // BN, BZ
	Dollar   // $
)

var kindNames = map[Kind]string{
	Integer: "I", Binary: "B", Octal: "O", Hex: "Z", Fixed: "F", Exp: "E",
	Double: "D", Eng: "EN", Sci: "ES", General: "G", Logical: "L",
	Character: "A", Repeat: "()", String: "''", Space: "X", Tab: "T",
	TabLeft: "TL", TabRight: "TR", Slash: "/", Colon: ":", Scale: "P",
	Sign: "S", Blank: "B", Dollar: "$",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// IsData reports whether a descriptor of kind k consumes I/O list elements.
func (k Kind) IsData() bool {
	return k <= Character
}

// Desc is a single edit descriptor.
type Desc struct {
	Kind Kind

	// N is the repeat count of a data descriptor or group, and the
	// positional argument of X, T, TL, TR, / and P.
	N int

	// W is the field width, or 0 if omitted.  D is the number of fractional
	// digits (or minimum digits for integer descriptors) and is only
	// meaningful when HasD is set.  E is the exponent width, 0 if omitted.
	W, D, E int
	HasD    bool

	// Text holds the literal of a String descriptor, or the spelling of a
	// Sign or Blank descriptor.
	Text string

	// Sub holds the descriptors of a Repeat group.
	Sub *List
}

// List is an ordered sequence of descriptors.
type List struct {
	Descs []*Desc
}

// NewList returns a list holding the given descriptors.
func NewList(descs ...*Desc) *List {
	return &List{Descs: descs}
}

// Len returns the number of top-level descriptors in l.
func (l *List) Len() int {
	if l == nil {
		return 0
	}
	return len(l.Descs)
}

// IsData reports whether d consumes I/O list elements.
func (d *Desc) IsData() bool {
	return d != nil && d.Kind.IsData()
}

// ElemCount returns the number of I/O list elements consumed by one
// occurrence of the data descriptor d.
func (d *Desc) ElemCount() (int, bool) {
	if !d.IsData() {
		return 0, false
	}
	return d.N, true
}

// Clone returns a deep copy of d.
func (d *Desc) Clone() *Desc {
	if d == nil {
		return nil
	}
	r := *d
	r.Sub = d.Sub.Clone()
	return &r
}

// Clone returns a deep copy of l.
func (l *List) Clone() *List {
	if l == nil {
		return nil
	}
	r := &List{Descs: make([]*Desc, 0, len(l.Descs))}
	for _, d := range l.Descs {
		r.Descs = append(r.Descs, d.Clone())
	}
	return r
}

// Equal reports whether d and o are the same descriptor.
func (d *Desc) Equal(o *Desc) bool {
	if d == nil || o == nil {
		return d == o
	}
	if d.Kind != o.Kind || d.N != o.N || d.W != o.W || d.E != o.E || d.HasD != o.HasD || d.Text != o.Text {
		return false
	}
	if d.HasD && d.D != o.D {
		return false
	}
	return d.Sub.Equal(o.Sub)
}

// Equal reports whether l and o hold equal descriptors in the same order.
func (l *List) Equal(o *List) bool {
	if l == nil || o == nil {
		return l == o
	}
	if len(l.Descs) != len(o.Descs) {
		return false
	}
	for i := range l.Descs {
		if !l.Descs[i].Equal(o.Descs[i]) {
			return false
		}
	}
	return true
}

func (d *Desc) String() string {
	var b strings.Builder
	d.write(&b)
	return b.String()
}

func (d *Desc) write(b *strings.Builder) {
	switch d.Kind {
	case Repeat:
		if d.N != 1 {
			fmt.Fprint(b, d.N)
		}
		d.Sub.write(b)
	case String:
		b.WriteByte('\'')
		b.WriteString(strings.ReplaceAll(d.Text, "'", "''"))
		b.WriteByte('\'')
	case Space:
		fmt.Fprintf(b, "%dX", d.N)
	case Tab, TabLeft, TabRight:
		fmt.Fprintf(b, "%s%d", d.Kind, d.N)
	case Slash:
		if d.N != 1 {
			fmt.Fprint(b, d.N)
		}
		b.WriteByte('/')
	case Scale:
		fmt.Fprintf(b, "%dP", d.N)
	case Sign, Blank:
		b.WriteString(d.Text)
	case Colon, Dollar:
		b.WriteString(d.Kind.String())
	default:
		if d.N != 1 {
			fmt.Fprint(b, d.N)
		}
		b.WriteString(d.Kind.String())
		if d.W > 0 {
			fmt.Fprint(b, d.W)
		}
		if d.HasD {
			fmt.Fprintf(b, ".%d", d.D)
		}
		if d.E > 0 {
			fmt.Fprintf(b, "E%d", d.E)
		}
	}
}

// String unparses l into canonical FORMAT text.
func (l *List) String() string {
	var b strings.Builder
	l.write(&b)
	return b.String()
}

func (l *List) write(b *strings.Builder) {
	b.WriteByte('(')
	if l != nil {
		for i, d := range l.Descs {
			if i > 0 {
				b.WriteString(", ")
			}
			d.write(b)
		}
	}
	b.WriteByte(')')
}
