// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package tlv implements zero-copy parsing and serialization of the
// tag-length-value (TLV) format used by the Basic Encoding Rules (BER) and the
// Distinguished Encoding Rules (DER) as specified in [Rec. ITU-T X.690].
// See also “[A Layman's Guide to a Subset of ASN.1, BER, and DER]”.
//
// This package deals with the syntactic layer of TLV-encoding while package
// [codello.dev/asn1view/codec] deals with typed values.
//
// # Headers and Views
//
// In BER each value is encoded using a tag-length-value format. The tag and
// length (we call them a header) are represented by the [Header] type. A parsed
// data value is represented by the [Any] type: a header plus a view of the
// content octets. Views alias the input passed to [ParseAny]; no content is
// copied and the input must not be modified while views of it are in use.
//
// All parse functions take a byte slice and return the unconsumed remainder.
// They never modify their input, so a caller can always retry a parse from the
// same position. This is what makes lookahead for optional elements safe.
//
// # Profiles
//
// Parsing happens under one of two profiles. [BER] accepts every valid BER
// encoding, including indefinite lengths and non-minimal headers. [DER]
// additionally requires the canonical form of every header. Serialization
// always produces minimal headers.
//
// [Rec. ITU-T X.690]: https://www.itu.int/rec/T-REC-X.690
// [A Layman's Guide to a Subset of ASN.1, BER, and DER]: http://luca.ntop.org/Teaching/Appunti/asn1.html
package tlv

import (
	"math"
	"strconv"

	"codello.dev/asn1view"
)

// Profile selects the strictness of parsing.
type Profile uint8

const (
	// BER is the permissive profile.
	BER Profile = iota
	// DER is the canonical profile.
	DER
)

func (p Profile) String() string {
	switch p {
	case BER:
		return "BER"
	case DER:
		return "DER"
	}
	return "Profile(" + strconv.Itoa(int(p)) + ")"
}

// TagEndOfContents is the tag of the end-of-contents marker that terminates the
// content of a value using the indefinite-length encoding.
var TagEndOfContents = asn1view.Universal(asn1view.TagReserved)

// LengthIndefinite when used as a magic number for the length of a [Header]
// indicates that the data value is encoded using the constructed
// indefinite-length format.
const LengthIndefinite = -1

// MaxDepth is the maximum nesting of indefinite-length values and of
// constructed values visited by [CheckTree]. Deeper inputs are rejected as
// [MalformedHeader].
const MaxDepth = 128

// CombinedLength returns the length of a data value encoding (not including its
// header) consisting of data value encodings of the specified lengths. If any
// of the passed lengths are [LengthIndefinite] or the result does not fit into
// the int type, the result is [LengthIndefinite].
func CombinedLength(ls ...int) int {
	sum := 0
	for _, l := range ls {
		if l == LengthIndefinite {
			return LengthIndefinite
		}
		if l > math.MaxInt-sum { // overflow
			return LengthIndefinite
		}
		sum += l
	}
	return sum
}

// Header represents a TLV header. The [Header.Length] may be [LengthIndefinite]
// if an indefinite-length encoding is used. It is invalid to use the
// indefinite-length encoding when [Header.Constructed] = false.
type Header struct {
	Tag         asn1view.Tag
	Constructed bool
	Length      int

	// size is the number of bytes the header occupied in its input. It is
	// zero for headers that were not parsed.
	size int
}

// String returns a string representation of h.
func (h Header) String() string {
	s := h.Tag.String()
	if h.Constructed {
		s += "/c"
	} else {
		s += "/p"
	}
	if h.Length == LengthIndefinite {
		return s + ":indefinite"
	}
	return s + ":" + strconv.Itoa(h.Length)
}
