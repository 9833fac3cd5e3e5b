// Copyright 2017 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package format

import (
	"math"
	"strings"

	"github.com/golang/glog"
	"github.com/pkg/errors"
)

// ErrSyntax is returned, wrapped with the location of the problem, when a
// FORMAT specification can not be parsed.
var ErrSyntax = errors.New("FORMAT syntax error")

// maxNumber bounds repeat counts, widths and positions.
const maxNumber = math.MaxInt32

// parser holds the state of a FORMAT specification parse.  Letters are
// matched case insensitively; blanks are insignificant outside of quoted
// strings.
type parser struct {
	name string
	text string
	pos  int
	err  error // first number out of range
}

// Parse parses a parenthesised FORMAT specification, such as
// `(I5, 2(1X, F8.3), A)', into a descriptor list.  The name is used to
// prefix error messages.
func Parse(name, text string) (*List, error) {
	p := &parser{name: name, text: text}
	p.skip()
	if !p.accept('(') {
		return nil, p.errorf("expected `(' at start of FORMAT")
	}
	l, err := p.list()
	if err != nil {
		return nil, err
	}
	if p.err != nil {
		return nil, p.err
	}
	p.skip()
	if p.pos < len(p.text) {
		return nil, p.errorf("unexpected %q after end of FORMAT", p.text[p.pos:])
	}
	glog.V(2).Infof("parsed FORMAT %s: %s", name, l)
	return l, nil
}

func (p *parser) errorf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrSyntax, "%s:%d: "+format, append([]interface{}{p.name, p.pos + 1}, args...)...)
}

func (p *parser) skip() {
	for p.pos < len(p.text) && (p.text[p.pos] == ' ' || p.text[p.pos] == '\t') {
		p.pos++
	}
}

func (p *parser) peek() byte {
	p.skip()
	if p.pos >= len(p.text) {
		return 0
	}
	return upper(p.text[p.pos])
}

func (p *parser) accept(c byte) bool {
	if p.peek() == c {
		p.pos++
		return true
	}
	return false
}

// number scans an unsigned integer, returning false if there is none.
func (p *parser) number() (int, bool) {
	p.skip()
	n, seen := 0, false
	for p.pos < len(p.text) {
		c := p.text[p.pos]
		if c == ' ' || c == '\t' {
			p.pos++
			continue
		}
		if c < '0' || c > '9' {
			break
		}
		if n > (maxNumber-int(c-'0'))/10 {
			if p.err == nil {
				p.err = p.errorf("number exceeds %d", maxNumber)
			}
			n = maxNumber
		} else {
			n = n*10 + int(c-'0')
		}
		seen = true
		p.pos++
	}
	return n, seen
}

// list parses descriptors up to and including the closing parenthesis.
// Commas between descriptors are optional.
func (p *parser) list() (*List, error) {
	l := &List{}
	for {
		switch p.peek() {
		case ')':
			p.pos++
			return l, nil
		case ',':
			p.pos++
			continue
		case 0:
			return nil, p.errorf("unterminated FORMAT list")
		}
		d, err := p.desc()
		if err != nil {
			return nil, err
		}
		l.Descs = append(l.Descs, d)
	}
}

func (p *parser) desc() (*Desc, error) {
	switch c := p.peek(); c {
	case '\'', '"':
		s, err := p.quoted(c)
		if err != nil {
			return nil, err
		}
		return &Desc{Kind: String, N: 1, Text: s}, nil
	case '-', '+':
		p.pos++
		n, ok := p.number()
		if !ok || !p.accept('P') {
			return nil, p.errorf("expected scale factor")
		}
		if c == '-' {
			n = -n
		}
		return &Desc{Kind: Scale, N: n}, nil
	}

	n, counted := p.number()
	if counted && n == 0 {
		return nil, p.errorf("repeat count must be positive")
	}
	if !counted {
		n = 1
	}

	c := p.peek()
	p.pos++
	switch c {
	case '(':
		sub, err := p.list()
		if err != nil {
			return nil, err
		}
		return &Desc{Kind: Repeat, N: n, Sub: sub}, nil
	case '/':
		return &Desc{Kind: Slash, N: n}, nil
	case ':':
		return &Desc{Kind: Colon, N: 1}, nil
	case '$':
		return &Desc{Kind: Dollar, N: 1}, nil
	case 'X':
		return &Desc{Kind: Space, N: n}, nil
	case 'P':
		if !counted {
			return nil, p.errorf("scale factor requires a count")
		}
		return &Desc{Kind: Scale, N: n}, nil
	case 'H':
		if !counted || p.pos+n > len(p.text) {
			return nil, p.errorf("bad Hollerith constant")
		}
		s := p.text[p.pos : p.pos+n]
		p.pos += n
		return &Desc{Kind: String, N: 1, Text: s}, nil
	case 'T':
		k := Tab
		switch p.peek() {
		case 'L':
			k = TabLeft
			p.pos++
		case 'R':
			k = TabRight
			p.pos++
		}
		m, ok := p.number()
		if !ok {
			return nil, p.errorf("%s requires a position", k)
		}
		return &Desc{Kind: k, N: m}, nil
	case 'S':
		t := "S"
		if q := p.peek(); q == 'P' || q == 'S' {
			t += string(q)
			p.pos++
		}
		return &Desc{Kind: Sign, N: 1, Text: t}, nil
	case 'B':
		if q := p.peek(); q == 'N' || q == 'Z' {
			p.pos++
			return &Desc{Kind: Blank, N: 1, Text: "B" + string(q)}, nil
		}
		return p.data(Binary, n)
	case 'I':
		return p.data(Integer, n)
	case 'O':
		return p.data(Octal, n)
	case 'Z':
		return p.data(Hex, n)
	case 'F':
		return p.data(Fixed, n)
	case 'E':
		switch p.peek() {
		case 'N':
			p.pos++
			return p.data(Eng, n)
		case 'S':
			p.pos++
			return p.data(Sci, n)
		}
		return p.data(Exp, n)
	case 'D':
		return p.data(Double, n)
	case 'G':
		return p.data(General, n)
	case 'L':
		return p.data(Logical, n)
	case 'A':
		return p.data(Character, n)
	case 0:
		return nil, p.errorf("unexpected end of FORMAT")
	}
	p.pos--
	return nil, p.errorf("unexpected %q", p.text[p.pos])
}

// data parses the optional `w[.d][Ee]' suffix of a data edit descriptor.
func (p *parser) data(k Kind, n int) (*Desc, error) {
	d := &Desc{Kind: k, N: n}
	w, ok := p.number()
	if !ok {
		return d, nil
	}
	d.W = w
	if k == Logical || k == Character {
		return d, nil
	}
	if p.accept('.') {
		m, ok := p.number()
		if !ok {
			return nil, p.errorf("expected digits after `.' in %s", k)
		}
		d.D, d.HasD = m, true
	}
	switch k {
	case Exp, Eng, Sci, General:
		if p.pos < len(p.text) && upper(p.text[p.pos]) == 'E' {
			p.pos++
			e, ok := p.number()
			if !ok {
				return nil, p.errorf("expected exponent width in %s", k)
			}
			d.E = e
		}
	}
	return d, nil
}

// quoted scans a string literal delimited by q, where a doubled q stands for
// itself.
func (p *parser) quoted(q byte) (string, error) {
	p.pos++
	var b strings.Builder
	for p.pos < len(p.text) {
		c := p.text[p.pos]
		p.pos++
		if c != q {
			b.WriteByte(c)
			continue
		}
		if p.pos < len(p.text) && p.text[p.pos] == q {
			b.WriteByte(q)
			p.pos++
			continue
		}
		return b.String(), nil
	}
	return "", p.errorf("unterminated string in FORMAT")
}

func upper(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - 'a' + 'A'
	}
	return c
}
