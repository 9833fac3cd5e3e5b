// Copyright 2018 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

/*
Command fmtexpand prints the data edit descriptors that a FORMAT statement
applies to each element of an I/O list of a given length, after repeat
groups and format reversion are taken into account.

Given element types, it also prints the statement specialized with the
default field widths those types select.
*/
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/golang/glog"
	"github.com/google/fortsema/internal/sema/errors"
	"github.com/google/fortsema/internal/sema/format"
	"github.com/google/fortsema/internal/sema/types"
	"github.com/kylelemons/godebug/pretty"
	"github.com/spf13/afero"
)

var (
	formats = flag.String("formats", "", "File, or directory of *.fmt files, holding labelled FORMAT specifications.")
	count   = flag.Int("n", 1, "Length of the I/O list to expand each FORMAT statement for.")
	elems   = flag.String("types", "", "Comma separated element types of the I/O list, e.g. INTEGER*2,REAL*8,CHARACTER*10.  Selects default field widths.")
	dump    = flag.Bool("dump", false, "Dump the parsed descriptor lists.")
	cache   = flag.Int("format_cache_entries", format.DefaultCacheEntries, "Number of expanded lists remembered per FORMAT statement.")
	version = flag.Bool("version", false, "Print fmtexpand version information.")
)

var (
	// Version and Revision are supplied by the linker when built with
	// `make'.
	Version  = "invalid:-use-make-to-build"
	Revision = "invalid:-use-make-to-build"
)

// parseType parses a type name as written in a type declaration.
func parseType(s string) (*types.Type, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	name, size := s, 0
	if i := strings.Index(s, "*"); i >= 0 {
		n, err := strconv.Atoi(s[i+1:])
		if err != nil || n <= 0 {
			return nil, errors.Errorf("bad size in type %q", s)
		}
		name, size = s[:i], n
	}
	switch name {
	case "INTEGER":
		return types.NewScalar(types.Integer, size), nil
	case "REAL":
		return types.NewScalar(types.Real, size), nil
	case "DOUBLE PRECISION", "DOUBLEPRECISION":
		return types.DoublePrecision, nil
	case "COMPLEX":
		// COMPLEX*n spells the size of both components.
		return types.NewScalar(types.Complex, size/2), nil
	case "LOGICAL":
		return types.NewScalar(types.Logical, size), nil
	case "BYTE":
		return types.DefaultByte, nil
	case "CHARACTER":
		if size == 0 {
			size = 1
		}
		return types.NewCharacter(1, size), nil
	}
	return nil, errors.Errorf("unknown type %q", s)
}

func parseTypes(s string) ([]*types.Type, error) {
	if s == "" {
		return nil, nil
	}
	var r []*types.Type
	for _, f := range strings.Split(s, ",") {
		t, err := parseType(f)
		if err != nil {
			return nil, err
		}
		r = append(r, t)
	}
	return r, nil
}

// run expands every FORMAT statement in path and writes the results to w.
// When element types are given, their number overrides n.
func run(w io.Writer, fs afero.Fs, path string, n int, elemTypes []*types.Type, cacheEntries int, dumpLists bool) error {
	stmts, err := loadFormats(fs, path, cacheEntries)
	if err != nil {
		return err
	}
	if len(elemTypes) > 0 {
		n = len(elemTypes)
	}
	if n < 0 {
		return errors.Errorf("I/O list length %d is negative", n)
	}
	var diags errors.ErrorList
	for _, st := range stmts {
		if dumpLists {
			fmt.Fprintf(w, "%d: %s\n", st.Label, pretty.Sprint(st.Src))
		}
		if len(elemTypes) > 0 && st.CheckDefault(&st.Pos, elemTypes, &diags) && st.Default != nil {
			fmt.Fprintf(w, "%d %s specialized %s\n", st.Label, st.Src, st.Default)
		}
		if format.DataCount(st.Format()) == 0 {
			fmt.Fprintf(w, "%d %s has no data edit descriptors\n", st.Label, st.Src)
			continue
		}
		fmt.Fprintf(w, "%d %s -> %s\n", st.Label, st.Format(), st.Expand(n))
	}
	for _, d := range diags {
		glog.Warning(d)
	}
	return nil
}

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "fmtexpand version %s revision %s\n", Version, Revision)
		fmt.Fprintf(os.Stderr, "\nUsage:\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	if *version {
		fmt.Printf("fmtexpand version %s revision %s\n", Version, Revision)
		os.Exit(0)
	}
	if *formats == "" {
		glog.Exitf("No -formats given")
	}
	elemTypes, err := parseTypes(*elems)
	if err != nil {
		glog.Exit(err)
	}
	if err := run(os.Stdout, afero.NewOsFs(), *formats, *count, elemTypes, *cache, *dump); err != nil {
		glog.Exit(err)
	}
}
