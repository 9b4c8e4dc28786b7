// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asn1view

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
	"unsafe"
)

//region [UNIVERSAL 3] BIT STRING

// BitString implements the ASN.1 BIT STRING type. A bit string is padded up to
// the nearest byte in memory and the number of valid bits is recorded. Padding
// bits are encoded as zero bits.
//
// See also section 22 of Rec. ITU-T X.680.
type BitString struct {
	Bytes     []byte // bits packed into bytes.
	BitLength int    // length in bits.
}

// IsValid reports whether the number of bytes in s matches the indicated
// BitLength.
func (s BitString) IsValid() bool {
	return s.BitLength >= 0 && len(s.Bytes) == (s.BitLength+7)/8
}

// Len returns the number of bits in s.
func (s BitString) Len() int {
	return s.BitLength
}

// At returns the bit at the given index. If the index is out of range At panics.
func (s BitString) At(i int) int {
	if i < 0 || i >= s.BitLength {
		panic("index out of range")
	}
	return int(s.Bytes[i/8]>>(7-uint(i%8))) & 1
}

// Padding returns the number of unused bits in the last byte of s.
func (s BitString) Padding() int {
	return (8 - s.BitLength%8) % 8
}

// String formats s as a sequence of '0' and '1' characters grouped into bytes.
// The last group may have fewer than 8 characters.
func (s BitString) String() string {
	var sb strings.Builder
	sb.Grow(s.BitLength + s.BitLength/8)
	for i := range s.BitLength {
		if i > 0 && i%8 == 0 {
			sb.WriteByte(' ')
		}
		sb.WriteByte('0' + byte(s.At(i)))
	}
	return sb.String()
}

//endregion

//region [UNIVERSAL 5] NULL

// Null represents the ASN.1 NULL type. If your data structure contains fixed
// NULL elements this type offers a convenient way to indicate their presence.
//
// See also section 24 of Rec. ITU-T X.680.
type Null struct{}

//endregion

//region [UNIVERSAL 6] OBJECT IDENTIFIER
// See oid.go.
//endregion

//region [UNIVERSAL 17] SET

// Set represents the ASN.1 SET OF type backed by a Go map. Duplicate elements
// collapse into a single entry.
//
// See also section 27 and 28 of Rec. ITU-T X.680.
type Set[T comparable] map[T]struct{}

// NewSet creates a new set with the specified elements.
func NewSet[T comparable](ts ...T) Set[T] {
	s := make(Set[T], len(ts))
	for _, v := range ts {
		s[v] = struct{}{}
	}
	return s
}

// Add adds value to the set.
func (s Set[T]) Add(value T) {
	s[value] = struct{}{}
}

// Remove removes value from the set, if it was present.
func (s Set[T]) Remove(value T) {
	delete(s, value)
}

// Contains indicates whether value is contained within the set.
func (s Set[T]) Contains(value T) bool {
	_, ok := s[value]
	return ok
}

// Len returns the number of elements in s.
func (s Set[T]) Len() int {
	return len(s)
}

//endregion

//region [UNIVERSAL 18] NumericString

// NumericString corresponds to the ASN.1 NumericString type. A NumericString
// can only consist of the digits 0-9 and space. Use the IsValid method to check
// whether a string's contents are numeric.
//
// See also section 41 of Rec. ITU-T X.680.
type NumericString string

// IsValid reports whether s consists only of allowed numeric characters.
func (s NumericString) IsValid() bool {
	for i := 0; i < len(s); i++ {
		if !('0' <= s[i] && s[i] <= '9' || s[i] == ' ') {
			return false
		}
	}
	return true
}

//endregion

//region [UNIVERSAL 19] PrintableString

// PrintableString represents the ASN.1 type PrintableString. A printable string
// can only contain the following ASCII characters:
//
//	A-Z	// upper case letters
//	a-z	// lower case letters
//	0-9	// digits
//	 	// space
//	'	// apostrophe
//	()	// Parenthesis
//	+-/	// plus, hyphen, solidus
//	.,:	// fill stop, comma, colon
//	=	// equals sign
//	?	// question mark
//
// See also section 41 of Rec. ITU-T X.680.
type PrintableString string

// IsValid reports whether s consists only of printable characters.
func (s PrintableString) IsValid() bool {
	for i := 0; i < len(s); i++ {
		if !isPrintable(s[i]) {
			return false
		}
	}
	return true
}

// isPrintable reports whether the given b is in the ASN.1 PrintableString set.
func isPrintable(b byte) bool {
	return 'a' <= b && b <= 'z' ||
		'A' <= b && b <= 'Z' ||
		'0' <= b && b <= '9' ||
		'\'' <= b && b <= ')' ||
		'+' <= b && b <= '/' ||
		b == ' ' ||
		b == ':' ||
		b == '=' ||
		b == '?'
}

//endregion

//region [UNIVERSAL 22] IA5String

// IA5String represents the ASN.1 type IA5String. An IA5String must consist of
// ASCII characters only.
//
// See also section 41 of Rec. ITU-T X.680.
type IA5String string

// IsValid reports whether the contents of s consist only of ASCII characters.
func (s IA5String) IsValid() bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

//endregion

//region [UNIVERSAL 23] UTCTime

// UTCTime represents the corresponding ASN.1 type. Only dates between
// 1950 and 2049 can be represented by this type.
//
// See also section 47 of Rec. ITU-T X.680.
type UTCTime time.Time

// IsValid reports whether the year of t is between 1950 and 2049.
func (t UTCTime) IsValid() bool {
	year := time.Time(t).Year()
	return year >= 1950 && year < 2050
}

// String returns the time of t in the format YYMMDDhhmmssZ or YYMMDDhhmmss+hhmm.
func (t UTCTime) String() string {
	tt := time.Time(t)
	b := make([]byte, 0, 17)
	b = appendN(b, tt.Year()%100, 2)
	b = appendN(b, int(tt.Month()), 2)
	b = appendN(b, tt.Day(), 2)
	b = appendN(b, tt.Hour(), 2)
	b = appendN(b, tt.Minute(), 2)
	b = appendN(b, tt.Second(), 2)
	b = appendZone(b, tt)
	return unsafe.String(unsafe.SliceData(b), len(b))
}

//endregion

//region [UNIVERSAL 24] GeneralizedTime

// GeneralizedTime represents the corresponding ASN.1 type. This type can
// represent dates between years 1 and 9999.
//
// See also section 46 of Rec. ITU-T X.680.
type GeneralizedTime time.Time

// IsValid reports if the year of t is between 1 and 9999.
func (t GeneralizedTime) IsValid() bool {
	year := time.Time(t).Year()
	return year >= 1 && year <= 9999
}

// String returns a string representation of t that matches its representation
// in ASN.1 notation. Fractional seconds are written without trailing zeros.
func (t GeneralizedTime) String() string {
	tt := time.Time(t)
	b := make([]byte, 0, 29)
	b = appendN(b, tt.Year()%10000, 4)
	b = appendN(b, int(tt.Month()), 2)
	b = appendN(b, tt.Day(), 2)
	b = appendN(b, tt.Hour(), 2)
	b = appendN(b, tt.Minute(), 2)
	b = appendN(b, tt.Second(), 2)
	if tt.Nanosecond() > 0 {
		s := strconv.FormatFloat(float64(tt.Nanosecond())/float64(time.Second), 'f', -1, 64)
		b = append(b, s[1:]...)
	}
	if tt.Location() == time.Local {
		return string(b)
	}
	b = appendZone(b, tt)
	return unsafe.String(unsafe.SliceData(b), len(b))
}

// appendZone appends the zone offset of t as Z or +hhmm/-hhmm.
func appendZone(b []byte, t time.Time) []byte {
	_, offset := t.Zone()
	offset /= 60
	if offset == 0 {
		return append(b, 'Z')
	}
	if offset < 0 {
		b = append(b, '-')
		offset = -offset
	} else {
		b = append(b, '+')
	}
	b = appendN(b, offset/60, 2)
	return appendN(b, offset%60, 2)
}

// appendN appends the base 10 representation of the absolute value of i,
// truncated or zero padded to exactly n digits.
func appendN(b []byte, i int, n int) []byte {
	if i < 0 {
		i = -i
	}
	b = append(b, make([]byte, n)...)
	for j := len(b) - 1; j >= len(b)-n; j-- {
		b[j] = '0' + byte(i%10)
		i /= 10
	}
	return b
}

//endregion

//region [UNIVERSAL 26] VisibleString

// VisibleString represents the corresponding ASN.1 type. It is limited to
// visible ASCII characters. In particular this does not include ASCII control
// characters.
//
// See also section 41 of Rec. ITU-T X.680.
type VisibleString string

// IsValid reports whether s only consists of visible ASCII characters.
func (s VisibleString) IsValid() bool {
	for i := 0; i < len(s); i++ {
		if s[i] < ' ' || s[i] >= 0x7F {
			return false
		}
	}
	return true
}

//endregion
