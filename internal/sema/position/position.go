// Copyright 2016 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

// Package position implements a data structure for storing source code positions.
package position

import "fmt"

// A Position is the location in the source program that a statement or
// expression appears.  Lines and columns are zero based; String renders them
// one based.  A span may cross lines, in which case EndLine is greater than
// Line.
type Position struct {
	Filename string // Source filename in which this token appears.
	Line     int    // Line in the source for the start of this span.
	Startcol int    // Starting and ending columns in the source for this span.
	Endcol   int
	EndLine  int // Last line of the span, if it is a multi-line span.
}

// String formats a position to be useful for printing messages associated with
// this position, e.g. compiler diagnostics.
func (p Position) String() string {
	r := fmt.Sprintf("%s:%d:%d", p.Filename, p.Line+1, p.Startcol+1)
	switch {
	case p.EndLine > p.Line:
		r += fmt.Sprintf("-%d:%d", p.EndLine+1, p.Endcol+1)
	case p.Endcol > p.Startcol:
		r += fmt.Sprintf("-%d", p.Endcol+1)
	}
	return r
}

// last returns the line of the end of the span.
func (p *Position) last() int {
	if p.EndLine > p.Line {
		return p.EndLine
	}
	return p.Line
}

// Merge returns the union of two positions such that the result contains both
// inputs.  Positions in different files are not merged; the first is returned.
func Merge(a, b *Position) *Position {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	if a.Filename != b.Filename {
		return a
	}
	r := *a
	if b.Line < r.Line || (b.Line == r.Line && b.Startcol < r.Startcol) {
		r.Line = b.Line
		r.Startcol = b.Startcol
	}
	aEnd, bEnd := a.last(), b.last()
	switch {
	case bEnd > aEnd:
		r.EndLine = bEnd
		r.Endcol = b.Endcol
	case bEnd == aEnd && b.Endcol > a.Endcol:
		r.EndLine = aEnd
		r.Endcol = b.Endcol
	default:
		r.EndLine = aEnd
	}
	if r.EndLine == r.Line {
		r.EndLine = 0
	}
	return &r
}
