// Copyright 2021 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package sema

import (
	"github.com/google/fortsema/internal/sema/format"
	"github.com/pkg/errors"
)

// Option configures a semantic check.
type Option func(*checker) error

// CaseSensitive makes symbol tables compare names case sensitively.
func CaseSensitive() Option {
	return func(c *checker) error {
		c.caseSensitive = true
		return nil
	}
}

// NoImplicit starts every program unit with IMPLICIT NONE in effect.
func NoImplicit() Option {
	return func(c *checker) error {
		c.noImplicit = true
		return nil
	}
}

// MaxFormatCacheEntries bounds the number of expanded FORMAT lists
// remembered per FORMAT statement.
func MaxFormatCacheEntries(n int) Option {
	return func(c *checker) error {
		if n <= 0 {
			return errors.Errorf("format cache size must be positive, got %d", n)
		}
		c.cacheEntries = n
		return nil
	}
}

// DumpScopes instructs the checker to log the declarations of every scope
// once checking is complete.
func DumpScopes() Option {
	return func(c *checker) error {
		c.dumpScopes = true
		return nil
	}
}

func (c *checker) setOptions(options []Option) error {
	c.cacheEntries = format.DefaultCacheEntries
	for _, option := range options {
		if err := option(c); err != nil {
			return err
		}
	}
	return nil
}
