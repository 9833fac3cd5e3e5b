// Copyright 2016 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package types

import (
	"fmt"
	"strings"

	"golang.org/x/exp/slices"
)

// Dim is one dimension of an array, with inclusive bounds.  An assumed-size
// dimension (`*') has no statically known upper bound.
type Dim struct {
	Lower, Upper int
	Assumed      bool
}

// Count returns the number of elements in the dimension.
func (d Dim) Count() (int, bool) {
	if d.Assumed {
		return 0, false
	}
	if d.Upper < d.Lower {
		return 0, true
	}
	return d.Upper - d.Lower + 1, true
}

func (d Dim) String() string {
	switch {
	case d.Assumed && d.Lower == 1:
		return "*"
	case d.Assumed:
		return fmt.Sprintf("%d:*", d.Lower)
	case d.Lower == 1:
		return fmt.Sprint(d.Upper)
	}
	return fmt.Sprintf("%d:%d", d.Lower, d.Upper)
}

// Shape is the list of dimensions of an array, in declaration order.
type Shape struct {
	Dims []Dim
}

// NewShape returns a shape with the given dimensions.
func NewShape(dims ...Dim) *Shape {
	return &Shape{Dims: dims}
}

// Rank returns the number of dimensions.
func (s *Shape) Rank() int {
	if s == nil {
		return 0
	}
	return len(s.Dims)
}

// Count returns the total number of elements, and false if any dimension is
// of unknown size.
func (s *Shape) Count() (int, bool) {
	if s == nil {
		return 0, false
	}
	c := 1
	for _, d := range s.Dims {
		n, ok := d.Count()
		if !ok {
			return 0, false
		}
		c *= n
	}
	return c, true
}

// Equal reports whether s and o have the same rank and per-dimension bounds.
func (s *Shape) Equal(o *Shape) bool {
	if s == nil || o == nil {
		return s == o
	}
	return slices.Equal(s.Dims, o.Dims)
}

// Offset returns the column-major element offset of the given subscripts, and
// false if the rank does not match or a subscript is out of bounds.
func (s *Shape) Offset(subscripts []int) (int, bool) {
	if s == nil || len(subscripts) != len(s.Dims) {
		return 0, false
	}
	offset, stride := 0, 1
	for i, d := range s.Dims {
		sub := subscripts[i]
		if sub < d.Lower || (!d.Assumed && sub > d.Upper) {
			return 0, false
		}
		offset += (sub - d.Lower) * stride
		n, ok := d.Count()
		if !ok {
			// Only the last dimension may be assumed.
			if i != len(s.Dims)-1 {
				return 0, false
			}
			break
		}
		stride *= n
	}
	return offset, true
}

func (s *Shape) String() string {
	if s == nil {
		return ""
	}
	d := make([]string, 0, len(s.Dims))
	for _, x := range s.Dims {
		d = append(d, x.String())
	}
	return "(" + strings.Join(d, ", ") + ")"
}
