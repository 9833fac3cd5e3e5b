// Copyright 2017 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package format

import (
	"github.com/golang/glog"
)

// DataCount returns the number of I/O list elements consumed by one complete
// pass over l, counting repeat groups as many times as they repeat.
func DataCount(l *List) int {
	if l == nil {
		return 0
	}
	c := 0
	for _, d := range l.Descs {
		switch {
		case d.IsData():
			c += d.N
		case d.Kind == Repeat:
			c += d.N * DataCount(d.Sub)
		}
	}
	return c
}

// DataFormat returns a list of exactly the data descriptors needed to
// transfer n I/O list elements with l, one descriptor per element.
//
// When l is exhausted with elements remaining, scanning resumes at the last
// top-level repeat group, or at the start of l if it has none.  A pass that
// emits no data descriptors stops the expansion, so the result is shorter
// than n if l has no data descriptors to revert to.
func DataFormat(l *List, n int) *List {
	r := &List{}
	if l == nil {
		return r
	}
	from := 0
	for i, d := range l.Descs {
		if d.Kind == Repeat {
			from = i
		}
	}
	remain, start := n, n
	for i := 0; remain > 0; i++ {
		if i >= len(l.Descs) {
			if remain == start {
				break
			}
			glog.V(2).Infof("format reverting to descriptor %d with %d elements remaining", from, remain)
			i = from
			start = remain
		}
		expand(r, l.Descs[i], &remain)
	}
	return r
}

func expand(r *List, d *Desc, remain *int) {
	switch {
	case d.IsData():
		for i := 0; i < d.N && *remain > 0; i++ {
			c := d.Clone()
			c.N = 1
			r.Descs = append(r.Descs, c)
			*remain--
		}
	case d.Kind == Repeat:
		if d.Sub == nil {
			return
		}
		for i := 0; i < d.N && *remain > 0; i++ {
			before := *remain
			for _, s := range d.Sub.Descs {
				if *remain == 0 {
					break
				}
				expand(r, s, remain)
			}
			// Further repetitions of a group with no data consume nothing.
			if *remain == before {
				return
			}
		}
	}
}
