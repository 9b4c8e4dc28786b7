// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asn1view

import (
	"errors"
	"slices"
	"strconv"
	"strings"

	"codello.dev/asn1view/internal/vlq"
)

// An ObjectIdentifier represents an ASN.1 OBJECT IDENTIFIER. The semantics of
// an object identifier are specified in [Rec. ITU-T X.660].
//
// See also section 32 of Rec. ITU-T X.680.
//
// [Rec. ITU-T X.660]: https://www.itu.int/rec/T-REC-X.660
type ObjectIdentifier []uint

var errInvalidOID = errors.New("invalid object identifier")

// ParseObjectIdentifier parses the dot-separated notation of an object
// identifier such as "1.2.840.113549".
func ParseObjectIdentifier(s string) (ObjectIdentifier, error) {
	parts := strings.Split(s, ".")
	oid := make(ObjectIdentifier, len(parts))
	for i, p := range parts {
		n, err := strconv.ParseUint(p, 10, strconv.IntSize)
		if err != nil {
			return nil, errInvalidOID
		}
		oid[i] = uint(n)
	}
	if !oid.IsValid() {
		return nil, errInvalidOID
	}
	return oid, nil
}

// IsValid reports whether oid can be encoded. An object identifier needs at
// least two arcs, the first arc must be 0, 1 or 2 and for a first arc below 2
// the second arc must not exceed 39.
func (oid ObjectIdentifier) IsValid() bool {
	if len(oid) < 2 || oid[0] > 2 {
		return false
	}
	return oid[0] == 2 || oid[1] <= 39
}

// Equal reports whether oid and other represent the same identifier.
func (oid ObjectIdentifier) Equal(other ObjectIdentifier) bool {
	return slices.Equal(oid, other)
}

// String returns the dot-separated notation of oid.
func (oid ObjectIdentifier) String() string {
	var s strings.Builder
	s.Grow(32)

	buf := make([]byte, 0, 20)
	for i, v := range oid {
		if i > 0 {
			s.WriteByte('.')
		}
		s.Write(strconv.AppendUint(buf, uint64(v), 10))
	}
	return s.String()
}

// AppendEncoding appends the content octets of the OBJECT IDENTIFIER encoding of
// oid to dst. The first two arcs are combined as 40*first+second, every arc is
// written in base 128 with the continuation bit set on all but the last byte.
func (oid ObjectIdentifier) AppendEncoding(dst []byte) ([]byte, error) {
	if !oid.IsValid() {
		return dst, errInvalidOID
	}
	first := oid[0]*40 + oid[1]
	if first < oid[1] {
		return dst, errInvalidOID
	}
	dst = vlq.Append(dst, first)
	for _, arc := range oid[2:] {
		dst = vlq.Append(dst, arc)
	}
	return dst, nil
}

// EncodedLen returns the number of content octets of the encoding of oid. The
// result is only meaningful if oid is valid.
func (oid ObjectIdentifier) EncodedLen() int {
	if len(oid) < 2 {
		return 0
	}
	n := vlq.Length(oid[0]*40 + oid[1])
	for _, arc := range oid[2:] {
		n += vlq.Length(arc)
	}
	return n
}

// EncodeOID returns the content octets of the object identifier given in
// dot-separated notation. It is meant for package-level tables of well-known
// identifiers.
func EncodeOID(s string) ([]byte, error) {
	oid, err := ParseObjectIdentifier(s)
	if err != nil {
		return nil, err
	}
	return oid.AppendEncoding(make([]byte, 0, oid.EncodedLen()))
}

// MustEncodeOID is like [EncodeOID] but panics if s is not a valid object
// identifier.
func MustEncodeOID(s string) []byte {
	b, err := EncodeOID(s)
	if err != nil {
		panic("asn1view: " + err.Error() + ": " + strconv.Quote(s))
	}
	return b
}
