// Copyright 2017 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package format

import (
	"expvar"

	"github.com/golang/glog"
	"github.com/golang/groupcache/lru"
	"github.com/google/fortsema/internal/sema/errors"
	"github.com/google/fortsema/internal/sema/position"
	"github.com/google/fortsema/internal/sema/types"
)

// DefaultCacheEntries is the number of expansions memoized per FORMAT
// statement unless configured otherwise.
const DefaultCacheEntries = 64

var cacheHits = expvar.NewInt("format_cache_hits_total")

// Statement is the semantic state of one labelled FORMAT statement.
type Statement struct {
	Pos   position.Position
	Label int

	// Src is the descriptor list as written.
	Src *List

	// Default is Src specialized with field widths taken from the I/O lists
	// that use this statement, or nil.  DefaultPossible is cleared, and stays
	// cleared, once two uses disagree on the specialization.
	Default         *List
	DefaultPossible bool

	memo *lru.Cache // DataFormat results keyed by I/O list length
}

// NewStatement returns the state for a FORMAT statement with the given label
// and descriptors.  cacheEntries bounds the expansion memo; zero selects
// DefaultCacheEntries.
func NewStatement(pos position.Position, label int, src *List, cacheEntries int) *Statement {
	if cacheEntries <= 0 {
		cacheEntries = DefaultCacheEntries
	}
	return &Statement{
		Pos:             pos,
		Label:           label,
		Src:             src,
		DefaultPossible: true,
		memo:            lru.New(cacheEntries),
	}
}

// Format returns the specialized list if there is one, otherwise the list as
// written.
func (s *Statement) Format() *List {
	if s.Default != nil {
		return s.Default
	}
	return s.Src
}

// Expand returns DataFormat(s.Format(), n).  The result is shared between
// callers and must not be modified.
func (s *Statement) Expand(n int) *List {
	if cached, ok := s.memo.Get(n); ok {
		cacheHits.Add(1)
		return cached.(*List)
	}
	l := DataFormat(s.Format(), n)
	s.memo.Add(n, l)
	return l
}

func (s *Statement) setDefault(l *List) {
	s.Default = l
	s.memo.Clear()
}

// DiscardDefault drops any specialization and disables further ones.
func (s *Statement) DiscardDefault() {
	s.DefaultPossible = false
	s.setDefault(nil)
}

// CheckDefault computes the specialization of s for an I/O list whose scalar
// element types are elems.  The first specialization that differs from the
// list as written is cached in Default.  A later one that differs from the
// cached one discards it, with a warning at pos, and disables specialization
// for s.  It returns false if a specialization was needed but is no longer
// possible.
func (s *Statement) CheckDefault(pos *position.Position, elems []*types.Type, errs *errors.ErrorList) bool {
	spec := &List{Descs: make([]*Desc, 0, len(s.Src.Descs))}
	changed := false
	offset := 0
	for _, d := range s.Src.Descs {
		c, diff := specialize(d, elems, &offset)
		if diff {
			changed = true
		}
		spec.Descs = append(spec.Descs, c)
	}
	if !changed {
		return true
	}
	switch {
	case s.Default != nil:
		if !s.Default.Equal(spec) {
			errs.Warnf(pos, "FORMAT statement %d used with conflicting default field widths, specialization disabled", s.Label)
			glog.Infof("FORMAT %d: discarding default %s in favour of %s", s.Label, s.Default, s.Src)
			s.DiscardDefault()
		}
	case s.DefaultPossible:
		glog.V(2).Infof("FORMAT %d: specialized %s to %s", s.Label, s.Src, spec)
		s.setDefault(spec)
	default:
		return false
	}
	return true
}

// specialize returns d with default widths filled in from the element types
// starting at *offset, and whether that changed anything.  A repeat group's
// body is specialized once, against the elements of its first repetition;
// *offset still moves past all of its repetitions.
func specialize(d *Desc, elems []*types.Type, offset *int) (*Desc, bool) {
	switch {
	case d.Kind == Repeat:
		r := &Desc{Kind: Repeat, N: d.N, Sub: &List{}}
		changed := false
		if d.Sub != nil {
			start := *offset
			for _, s := range d.Sub.Descs {
				c, diff := specialize(s, elems, offset)
				if diff {
					changed = true
				}
				r.Sub.Descs = append(r.Sub.Descs, c)
			}
			*offset += (d.N - 1) * (*offset - start)
		}
		return r, changed
	case !d.IsData():
		return d.Clone(), false
	}
	i := *offset
	*offset += d.N
	if i >= len(elems) {
		return d.Clone(), false
	}
	c := SetDefault(d, elems[i])
	return c, !c.Equal(d)
}
