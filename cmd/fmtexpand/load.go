// Copyright 2018 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package main

import (
	"bufio"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/golang/glog"
	"github.com/google/fortsema/internal/sema/format"
	"github.com/google/fortsema/internal/sema/position"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// fileext is the extension of FORMAT specification files loaded from a
// directory.
const fileext = ".fmt"

// loadFormats reads the FORMAT statements in path, which is either a file or
// a directory of *.fmt files.  Each non-blank line that does not start with
// `!' holds a statement label followed by a parenthesised specification.
func loadFormats(fs afero.Fs, path string, cacheEntries int) ([]*format.Statement, error) {
	fi, err := fs.Stat(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to stat %q", path)
	}
	if !fi.IsDir() {
		return loadFile(fs, path, cacheEntries)
	}
	var r []*format.Statement
	err = afero.Walk(fs, path, func(name string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || filepath.Ext(name) != fileext {
			return nil
		}
		s, err := loadFile(fs, name, cacheEntries)
		if err != nil {
			return err
		}
		r = append(r, s...)
		return nil
	})
	return r, err
}

func loadFile(fs afero.Fs, name string, cacheEntries int) ([]*format.Statement, error) {
	f, err := fs.Open(name)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %q", name)
	}
	defer f.Close()

	var r []*format.Statement
	labels := make(map[int]int)
	scanner := bufio.NewScanner(f)
	for line := 0; scanner.Scan(); line++ {
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "!") {
			continue
		}
		i := strings.IndexAny(text, " \t(")
		if i <= 0 {
			return nil, errors.Errorf("%s:%d: expected a label and a FORMAT specification", name, line+1)
		}
		label, err := strconv.Atoi(text[:i])
		if err != nil || label <= 0 {
			return nil, errors.Errorf("%s:%d: bad statement label %q", name, line+1, text[:i])
		}
		if prev, ok := labels[label]; ok {
			return nil, errors.Errorf("%s:%d: duplicate label %d, previously on line %d", name, line+1, label, prev)
		}
		labels[label] = line + 1
		l, err := format.Parse(name, strings.TrimSpace(text[i:]))
		if err != nil {
			return nil, errors.Wrapf(err, "%s:%d", name, line+1)
		}
		pos := position.Position{Filename: name, Line: line}
		r = append(r, format.NewStatement(pos, label, l, cacheEntries))
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to read %q", name)
	}
	glog.V(1).Infof("Loaded %d FORMAT statements from %s", len(r), name)
	return r, nil
}
