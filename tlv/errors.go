// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tlv

import (
	"strconv"

	"codello.dev/asn1view"
)

// Kind classifies the rule an encoding violated. A Kind is itself an error so
// that it can be used as the target of [errors.Is]:
//
//	if errors.Is(err, tlv.NotCanonical) {
//		// valid BER, but not DER
//	}
//
//go:generate stringer -type=Kind
type Kind uint8

const (
	// MalformedHeader indicates an invalid or truncated tag or length
	// encoding.
	MalformedHeader Kind = iota + 1
	// UnexpectedTag indicates a tag number other than the expected one.
	UnexpectedTag
	// UnexpectedClass indicates a tag class other than the expected one.
	UnexpectedClass
	// ConstructedExpected indicates a primitive encoding where the
	// constructed encoding is required.
	ConstructedExpected
	// PrimitiveExpected indicates a constructed encoding where the primitive
	// encoding is required.
	PrimitiveExpected
	// NotCanonical indicates an encoding that is valid BER but not valid DER.
	NotCanonical
	// TruncatedInput indicates that a declared length exceeds the remaining
	// input.
	TruncatedInput
	// InvalidValueEncoding indicates content octets that do not represent a
	// valid value of the expected type.
	InvalidValueEncoding
	// TrailingData indicates bytes left over after a complete value.
	TrailingData
)

// Error implements the error interface.
func (k Kind) Error() string { return "tlv: " + k.String() }

// Error is the error type returned for all encoding violations detected by this
// package and by the typed codecs built on it.
type Error struct {
	Kind Kind
	// Offset is the location of the error relative to the input of the
	// function that returned the error. The location is usually the start of
	// the TLV containing the error.
	Offset int
	// Tag is the tag of the offending data value, if known.
	Tag asn1view.Tag
	// Err is an optional detail error.
	Err error

	// capAt is cap() of the input slice at the error location or -1 if the
	// location is unknown. Offsets are derived from it because all views share
	// the backing array of the input.
	capAt int
}

// NewError creates an error of the given kind at the beginning of at. The at
// slice must be a view into the input being parsed. Err may be nil.
func NewError(kind Kind, at []byte, tag asn1view.Tag, err error) *Error {
	return &Error{Kind: kind, Tag: tag, Err: err, capAt: cap(at)}
}

// Locate sets the Offset of err relative to input, if err is an [*Error]
// created for a view into input. It returns err.
func Locate(err error, input []byte) error {
	if e, ok := err.(*Error); ok && e.capAt >= 0 && e.capAt <= cap(input) {
		e.Offset = cap(input) - e.capAt
	}
	return err
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the Kind of e.
func (e *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.Kind
}

func (e *Error) Error() string {
	b := []byte("tlv: ")
	b = append(b, e.Kind.String()...)
	if e.Tag != (asn1view.Tag{}) {
		b = append(b, " for "...)
		b = append(b, e.Tag.String()...)
	}
	b = strconv.AppendInt(append(b, " at offset "...), int64(e.Offset), 10)
	if e.Err != nil {
		b = append(b, ": "...)
		b = append(b, e.Err.Error()...)
	}
	return string(b)
}
