// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package codec implements typed parsing and serialization of ASN.1 values on
// top of package [codello.dev/asn1view/tlv].
//
// A [Codec] describes how one Go type is represented as an ASN.1 data value.
// Codecs for the universal types are provided as package-level values
// ([Boolean], [Int], [OctetString], [UTF8String], ...). Codecs for composite
// types are assembled from other codecs:
//
//   - [Explicit] and [Implicit] substitute the tag of a codec.
//   - [SequenceOf], [SetOf], [HashSetOf] and [BTreeSetOf] implement the ASN.1
//     SEQUENCE OF and SET OF types for Go containers.
//   - [Struct] implements an ASN.1 SEQUENCE for a Go struct from a list of
//     [Required] and [Optional] fields. The asn1gen command generates these
//     definitions from struct tags.
//
// # Parsing
//
// Values are parsed with [ParseBER] (permissive) or [ParseDER] (canonical).
// Both return the bytes following the parsed value, so consecutive values can
// be parsed from the same input. [UnmarshalBER] and [UnmarshalDER] parse a
// single value and reject trailing data. Parsed values may alias the input:
// for example an OCTET STRING decodes into a sub-slice of the input if it uses
// the primitive encoding.
//
// Under DER a value is checked in full before it is decoded. The check
// validates every nested header and every leaf content against the DER rules
// without materializing the value. [CheckDER] exposes this check for an
// already parsed [tlv.Any].
//
// All parse errors are of type [*tlv.Error]. Errors from nested elements are
// returned unchanged, so the [tlv.Kind] and offset always describe the
// innermost violation.
//
// # Serialization
//
// Serialization always uses DER. [Write] streams the encoding of a value in
// three phases: it computes the content length, writes the header and then
// writes the content. [Marshal] does the same into a single allocation.
package codec

import (
	"io"

	"codello.dev/asn1view"
	"codello.dev/asn1view/tlv"
)

// Writer is the sink content octets are written to.
type Writer interface {
	io.Writer
	io.ByteWriter
}

// Codec defines the ASN.1 representation of values of type T. Implementations
// must be safe for concurrent use.
//
// The Decode and Check methods work on the content of a data value. The tag of
// the value has already been verified by the caller, so that a codec can be
// used with a substitute tag (see [Implicit]). The methods should however
// verify whether a uses the primitive or constructed encoding.
type Codec[T any] interface {
	// Tag returns the tag of the encoding of a value.
	Tag() asn1view.Tag
	// Constructed reports whether the DER encoding of a value uses the
	// constructed encoding.
	Constructed() bool

	// Decode interprets the content of a under the permissive rules.
	Decode(a tlv.Any) (T, error)
	// Check verifies that the content of a (and of all values nested in a)
	// satisfies the DER rules without decoding the value.
	Check(a tlv.Any) error

	// EncodedLen returns the length of the content octets of v.
	EncodedLen(v T) (int, error)
	// EncodeContent writes the content octets of v to w. It must write
	// exactly EncodedLen(v) bytes.
	EncodeContent(w Writer, v T) error
}

// Matcher can be implemented by a [Codec] that accepts data values with more
// than one tag. Match is consulted instead of comparing the tag to Codec.Tag.
type Matcher interface {
	Match(tag asn1view.Tag) bool
}

// valueTagger is implemented by codecs whose tag or encoding form depends on
// the value being encoded.
type valueTagger[T any] interface {
	valueTag(v T) (asn1view.Tag, bool)
}

// matches reports whether c accepts a data value with the given tag.
func matches[T any](c Codec[T], tag asn1view.Tag) bool {
	if m, ok := c.(Matcher); ok {
		return m.Match(tag)
	}
	return c.Tag() == tag
}

// assertTag returns an error if c does not accept the tag of a.
func assertTag[T any](c Codec[T], a tlv.Any) error {
	if m, ok := c.(Matcher); ok {
		if !m.Match(a.Tag) {
			return a.Errorf(tlv.UnexpectedTag, "no match")
		}
		return nil
	}
	return a.AssertTag(c.Tag())
}

// ParseBER parses a value from the beginning of b under the permissive profile.
// It returns the value and the bytes following it.
func ParseBER[T any](c Codec[T], b []byte) (T, []byte, error) {
	v, rest, err := parse(c, b, tlv.BER)
	return v, rest, tlv.Locate(err, b)
}

// ParseDER parses a value from the beginning of b under the canonical profile.
// The whole value is checked with the Check method of c before it is decoded.
// It returns the value and the bytes following it.
func ParseDER[T any](c Codec[T], b []byte) (T, []byte, error) {
	v, rest, err := parse(c, b, tlv.DER)
	return v, rest, tlv.Locate(err, b)
}

// parse implements ParseBER and ParseDER without locating errors.
func parse[T any](c Codec[T], b []byte, p tlv.Profile) (v T, rest []byte, err error) {
	a, rest, err := tlv.ParseAny(b, p)
	if err == nil {
		err = assertTag(c, a)
	}
	if err == nil && p == tlv.DER {
		err = c.Check(a)
	}
	if err == nil {
		v, err = c.Decode(a)
	}
	if err != nil {
		var zero T
		return zero, b, err
	}
	return v, rest, nil
}

// CheckDER verifies that a is a canonical encoding of a value of c. The header
// of a, its tag and the complete content are checked.
func CheckDER[T any](c Codec[T], a tlv.Any) error {
	if err := a.CheckCanonical(); err != nil {
		return err
	}
	if err := assertTag(c, a); err != nil {
		return err
	}
	return c.Check(a)
}

// UnmarshalBER parses b as a single value under the permissive profile. It is
// a [tlv.TrailingData] error if b contains more than one data value.
func UnmarshalBER[T any](c Codec[T], b []byte) (T, error) {
	return unmarshal(c, b, tlv.BER)
}

// UnmarshalDER parses b as a single value under the canonical profile. It is a
// [tlv.TrailingData] error if b contains more than one data value.
func UnmarshalDER[T any](c Codec[T], b []byte) (T, error) {
	return unmarshal(c, b, tlv.DER)
}

func unmarshal[T any](c Codec[T], b []byte, p tlv.Profile) (T, error) {
	v, rest, err := parse(c, b, p)
	if err == nil && len(rest) > 0 {
		var zero T
		return zero, tlv.Locate(tlv.NewError(tlv.TrailingData, rest, asn1view.Tag{}, errExtraData), b)
	}
	return v, tlv.Locate(err, b)
}
