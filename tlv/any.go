// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tlv

import (
	"errors"
	"fmt"

	"codello.dev/asn1view"
)

var (
	errMissingEOC = errors.New("missing end-of-contents")
	errTooDeep    = errors.New("nesting too deep")
)

// Any is a parsed data value: a header and a view of its content octets. The
// Content slice aliases the input the value was parsed from. For values using
// the indefinite-length encoding, Content excludes the end-of-contents marker
// and Length stays [LengthIndefinite].
//
// Any values are cheap to copy and are never modified by this package.
type Any struct {
	Header
	Content []byte
}

// ParseAny parses a single data value from the beginning of b and returns it
// together with the bytes following it. On error the returned slice is b.
//
// Under the [DER] profile the header must satisfy [Header.CheckCanonical]. The
// content is not inspected, use [CheckTree] or a typed codec for that. Under
// the [BER] profile constructed values may use the indefinite-length encoding.
// The end of their content is found by skipping nested values, keeping track of
// the nesting depth up to [MaxDepth].
func ParseAny(b []byte, p Profile) (Any, []byte, error) {
	a, rest, err := parseAny(b, p)
	return a, rest, Locate(err, b)
}

// parseAny implements ParseAny without locating errors.
func parseAny(b []byte, p Profile) (a Any, rest []byte, err error) {
	a.Header, rest, err = parseHeader(b)
	if err != nil {
		return Any{}, b, err
	}
	if p == DER {
		if err = a.Header.checkCanonical(cap(b)); err != nil {
			return Any{}, b, err
		}
	}
	if a.Length != LengthIndefinite {
		return Any{a.Header, rest[:a.Length]}, rest[a.Length:], nil
	}
	n, err := indefiniteLength(rest)
	if err != nil {
		return Any{}, b, err
	}
	return Any{a.Header, rest[:n]}, rest[n+2:], nil
}

// indefiniteLength returns the number of bytes in b before the end-of-contents
// marker that terminates the content of an indefinite-length value. Nested
// values are skipped. Nested indefinite-length values increase the depth.
func indefiniteLength(b []byte) (int, error) {
	depth := 1
	pos := 0
	for {
		if len(b)-pos < 2 {
			return 0, NewError(TruncatedInput, b[pos:], asn1view.Tag{}, errMissingEOC)
		}
		if b[pos] == 0 && b[pos+1] == 0 {
			depth--
			if depth == 0 {
				return pos, nil
			}
			pos += 2
			continue
		}
		h, _, err := parseHeader(b[pos:])
		if err != nil {
			return 0, err
		}
		if h.Length != LengthIndefinite {
			pos += h.size + h.Length
			continue
		}
		if depth >= MaxDepth {
			return 0, NewError(MalformedHeader, b[pos:], h.Tag, errTooDeep)
		}
		depth++
		pos += h.size
	}
}

// capAt returns the cap of the input at the beginning of a. See [Error].
func (a Any) capAt() int {
	if a.size == 0 && a.Content == nil {
		return -1
	}
	return cap(a.Content) + a.size
}

// Errorf returns an error of the given kind located at the beginning of a. The
// detail error is formatted from format and args. An empty format results in
// no detail error.
func (a Any) Errorf(kind Kind, format string, args ...any) *Error {
	var err error
	if format != "" {
		err = fmt.Errorf(format, args...)
	}
	return &Error{Kind: kind, Tag: a.Tag, Err: err, capAt: a.capAt()}
}

// AssertTag returns an error unless a has the tag t. A different class is
// reported as [UnexpectedClass], a different number as [UnexpectedTag].
func (a Any) AssertTag(t asn1view.Tag) error {
	if a.Tag.Class != t.Class {
		return a.Errorf(UnexpectedClass, "expected %s", t)
	}
	if a.Tag.Number != t.Number {
		return a.Errorf(UnexpectedTag, "expected %s", t)
	}
	return nil
}

// AssertClass returns an [UnexpectedClass] error unless the tag of a is in the
// class c.
func (a Any) AssertClass(c asn1view.Class) error {
	if a.Tag.Class != c {
		return a.Errorf(UnexpectedClass, "expected class %s", c)
	}
	return nil
}

// AssertConstructed returns a [ConstructedExpected] error unless a uses the
// constructed encoding.
func (a Any) AssertConstructed() error {
	if !a.Constructed {
		return a.Errorf(ConstructedExpected, "")
	}
	return nil
}

// AssertPrimitive returns a [PrimitiveExpected] error unless a uses the
// primitive encoding.
func (a Any) AssertPrimitive() error {
	if a.Constructed {
		return a.Errorf(PrimitiveExpected, "")
	}
	return nil
}

// CheckCanonical is like [Header.CheckCanonical] but the error is located at
// the beginning of a.
func (a Any) CheckCanonical() error {
	return a.Header.checkCanonical(a.capAt())
}

// EncodedLen returns the number of bytes [Any.AppendTo] writes for a.
func (a Any) EncodedLen() int {
	h := a.Header
	h.Length = len(a.Content)
	return h.EncodedLen() + len(a.Content)
}

// AppendTo appends a to dst using a minimal header with a definite length. The
// content octets are copied unchanged, so nested values keep their original
// encoding.
func (a Any) AppendTo(dst []byte) []byte {
	h := a.Header
	h.Length = len(a.Content)
	return append(h.AppendTo(dst), a.Content...)
}
