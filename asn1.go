// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package asn1view implements types for ASN.1 data structures as defined in
// [Rec. ITU-T X.680] together with a zero-copy codec for the encoding rules of
// [Rec. ITU-T X.690]. This package defines tags and Go value types. Parsing and
// serialization live in subpackages:
//
//   - Package [codello.dev/asn1view/tlv] deals with the syntactic layer: headers,
//     lengths and borrowed views of encoded data values.
//   - Package [codello.dev/asn1view/codec] implements typed codecs on top of the
//     tlv package for the permissive (BER) and canonical (DER) profiles.
//
// # Mapping of ASN.1 Types to Go Types
//
// Many ASN.1 types have corresponding types with the same name defined in this
// package. Additionally, the following Go types are supported by the codecs:
//
//   - A Go bool corresponds to the ASN.1 BOOLEAN type.
//   - All Go integer types and [math/big.Int] correspond to the ASN.1 INTEGER
//     type. The supported size is limited by the Go type.
//   - Go types with an underlying integer type can be used for the ASN.1
//     ENUMERATED type.
//   - The Go string type corresponds to the ASN.1 UTF8String type.
//   - A byte slice corresponds to an ASN.1 OCTET STRING.
//   - Go slices correspond to the ASN.1 SEQUENCE OF and SET OF types.
//   - Go structs correspond to the ASN.1 SEQUENCE type. The struct fields define
//     the contents of the sequence, in order of definition.
//
// # Defining ASN.1 Data Structures
//
// ASN.1 data can be defined via Go structs. Take the following example:
//
//	DEFINITIONS
//	IMPLICIT TAGS
//	BEGIN
//
//	MyType ::= SEQUENCE {
//		Num                  INTEGER
//		Str                  UTF8String   OPTIONAL
//		Data [APPLICATION 5] OCTET STRING
//	}
//	END
//
// This could be translated into the following Go type:
//
//	//go:generate go run codello.dev/asn1view/cmd/asn1gen --type MyType
//	type MyType struct {
//		Num  int
//		Str  *string `asn1:"optional"`
//		Data []byte  `asn1:"application,tag:5"`
//	}
//
// The asn1gen command turns the struct definition into a codec built with
// [codello.dev/asn1view/codec.Struct]. The order in which the struct fields are
// defined corresponds to the order of elements within the SEQUENCE. Unexported
// members are ignored. Exported members can be explicitly ignored by using a
// `asn1:"-"` struct tag. The following struct tags are supported:
//
//	tag:x       specifies the ASN.1 tag number; implies ASN.1 CONTEXT SPECIFIC
//	application specifies that an APPLICATION tag is used
//	private     specifies that a PRIVATE tag is used
//	explicit    mark the element as explicit
//	optional    marks the field as ASN.1 OPTIONAL; the field must be a pointer
//	set         encode a slice as SET OF instead of SEQUENCE OF
//	enumerated  encode an integer as ENUMERATED
//
// Using the struct tag `asn1:"tag:x"` (where x is a non-negative integer)
// overrides the intrinsic type of the member type. This corresponds to IMPLICIT
// TAGS in the ASN.1 syntax. When using "explicit" you must also use "tag:x".
//
// Structs can embed the [Extensible] type to be marked as extensible. This
// corresponds to the ASN.1 extension marker.
//
// [Rec. ITU-T X.680]: https://www.itu.int/rec/T-REC-X.680
// [Rec. ITU-T X.690]: https://www.itu.int/rec/T-REC-X.690
package asn1view

import (
	"strconv"
	"strings"
)

// Extensible marks a struct as extensible. It corresponds to the ASN.1
// extension marker. The Extensible type is intended to be embedded in a struct
// as an anonymous field. An extensible struct can be decoded from a
// representation that contains additional fields. For details see section 52 of
// Rec. ITU-T X.680. If a struct embeds the Extensible type, it must be the last
// non-ignored ASN.1 field.
type Extensible struct{}

// Tag constitutes an ASN.1 tag, consisting of its class and number. For
// details, see Section 8 of Rec. ITU-T X.680.
type Tag struct {
	Class  Class
	Number uint
}

// Class holds the class part of an ASN.1 tag. The class acts as a namespace for
// the tag number. A Class value is an unsigned 2-bit integer. Class values
// whose value exceeds 2 bits are invalid.
//
//go:generate stringer -type=Class -trimprefix=Class
type Class uint8

// IsValid reports whether c is a valid Class value.
func (c Class) IsValid() bool {
	return c <= 3
}

// Predefined [Class] constants. These are all the possible values that can be
// encoded in the [Class] type.
const (
	ClassUniversal Class = iota
	ClassApplication
	ClassContextSpecific
	ClassPrivate
)

// Universal returns the tag with number n in the [ClassUniversal] namespace.
func Universal(n uint) Tag { return Tag{ClassUniversal, n} }

// Application returns the tag with number n in the [ClassApplication]
// namespace.
func Application(n uint) Tag { return Tag{ClassApplication, n} }

// ContextSpecific returns the tag with number n in the [ClassContextSpecific]
// namespace. This is the class used by ASN.1 tag notation like [0].
func ContextSpecific(n uint) Tag { return Tag{ClassContextSpecific, n} }

// Private returns the tag with number n in the [ClassPrivate] namespace.
func Private(n uint) Tag { return Tag{ClassPrivate, n} }

// String returns a string representation t in a format similar to the one used
// in ASN.1 notation. The tag number is enclosed by square brackets and prefixed
// with the class used. To avoid ambiguity the UNIVERSAL word is used for
// universal tags, although this is not valid ASN.1 syntax.
func (t Tag) String() string {
	if t.Class == ClassContextSpecific {
		return "[" + strconv.FormatUint(uint64(t.Number), 10) + "]"
	}
	return "[" + strings.ToUpper(t.Class.String()) + " " + strconv.FormatUint(uint64(t.Number), 10) + "]"
}

// TagReserved is a reserved tag number in the [ClassUniversal] namespace to be
// used by encoding rules. BER uses it for the end-of-contents marker. This
// assignment is defined in Rec. ITU-T X.680, Section 8, Table 1.
const TagReserved uint = 0

// These are some ASN.1 tag numbers are defined in the [ClassUniversal]
// namespace. These assignments are defined in Rec. ITU-T X.680, Section 8, Table
// 1.
const (
	TagBoolean          uint = 1
	TagInteger          uint = 2
	TagBitString        uint = 3
	TagOctetString      uint = 4
	TagNull             uint = 5
	TagOID              uint = 6
	TagObjectDescriptor uint = 7
	TagExternal         uint = 8
	TagReal             uint = 9
	TagEnumerated       uint = 10
	TagEmbeddedPDV      uint = 11
	TagUTF8String       uint = 12
	TagRelativeOID      uint = 13
	TagTime             uint = 14
	TagSequence         uint = 16
	TagSet              uint = 17
	TagNumericString    uint = 18
	TagPrintableString  uint = 19
	TagTeletexString    uint = 20
	TagT61String             = TagTeletexString
	TagVideotexString   uint = 21
	TagIA5String        uint = 22
	TagUTCTime          uint = 23
	TagGeneralizedTime  uint = 24
	TagGraphicString    uint = 25
	TagVisibleString    uint = 26
	TagISO646String          = TagVisibleString
	TagGeneralString    uint = 27
	TagUniversalString  uint = 28
	TagCharacterString  uint = 29
	TagBMPString        uint = 30
	TagDate             uint = 31
	TagTimeOfDay        uint = 32
	TagDateTime         uint = 33
	TagDuration         uint = 34
)
