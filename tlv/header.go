// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tlv

import (
	"errors"
	"io"
	"math"
	"math/bits"

	"codello.dev/asn1view"
	"codello.dev/asn1view/internal/vlq"
)

var (
	errEmpty            = errors.New("missing identifier octet")
	errMissingLength    = errors.New("missing length octets")
	errReservedLength   = errors.New("reserved length octet 0xFF")
	errLengthTooLarge   = errors.New("length too large")
	errPrimitiveIndef   = errors.New("indefinite length for primitive encoding")
	errReservedTag      = errors.New("unexpected end-of-contents")
	errIndefinite       = errors.New("indefinite length")
	errNonMinimalHeader = errors.New("header is not minimally encoded")
)

// maxHeaderLen is the maximum number of bytes a header written by this package
// can occupy: 1 identifier byte, up to 10 bytes for the long-form tag, 1 byte
// for the number of length bytes and up to 8 length bytes.
const maxHeaderLen = 20

// ParseHeader reads the identifier and length octets of a data value encoding
// from the beginning of b. It returns the header and the bytes following it. On
// error the returned slice is b.
//
// ParseHeader accepts every BER header. Use [Header.CheckCanonical] to verify
// that the header was minimally encoded. It is an error if a definite length
// exceeds the number of bytes remaining after the header.
func ParseHeader(b []byte) (Header, []byte, error) {
	h, rest, err := parseHeader(b)
	return h, rest, Locate(err, b)
}

// parseHeader implements ParseHeader without locating errors.
func parseHeader(b []byte) (h Header, rest []byte, err error) {
	if len(b) == 0 {
		return h, b, NewError(MalformedHeader, b, asn1view.Tag{}, errEmpty)
	}
	id := b[0]
	h.Tag = asn1view.Tag{Class: asn1view.Class(id >> 6), Number: uint(id & 0x1f)}
	h.Constructed = id&0x20 != 0
	rest = b[1:]

	// If the bottom five bits are set, the tag number is base 128 encoded
	// afterward.
	if id&0x1f == 0x1f {
		h.Tag.Number, rest, err = vlq.Parse[uint](rest)
		if err != nil {
			return h, b, NewError(MalformedHeader, b, asn1view.Tag{Class: h.Tag.Class}, err)
		}
	}
	if h.Tag == TagEndOfContents {
		return h, b, NewError(MalformedHeader, b, h.Tag, errReservedTag)
	}

	if len(rest) == 0 {
		return h, b, NewError(MalformedHeader, b, h.Tag, errMissingLength)
	}
	l := rest[0]
	rest = rest[1:]
	switch {
	case l&0x80 == 0:
		// The length is encoded in the bottom 7 bits.
		h.Length = int(l)
	case l == 0x80:
		if !h.Constructed {
			return h, b, NewError(MalformedHeader, b, h.Tag, errPrimitiveIndef)
		}
		h.Length = LengthIndefinite
	case l == 0xff:
		return h, b, NewError(MalformedHeader, b, h.Tag, errReservedLength)
	default:
		// Bottom 7 bits give the number of length bytes to follow.
		n := int(l & 0x7f)
		if len(rest) < n {
			return h, b, NewError(MalformedHeader, b, h.Tag, errMissingLength)
		}
		for _, c := range rest[:n] {
			if h.Length > math.MaxInt>>8 {
				return h, b, NewError(MalformedHeader, b, h.Tag, errLengthTooLarge)
			}
			h.Length = h.Length<<8 | int(c)
		}
		rest = rest[n:]
	}
	h.size = len(b) - len(rest)

	if h.Length > len(rest) {
		return h, b, NewError(TruncatedInput, b, h.Tag, nil)
	}
	return h, rest, nil
}

// CheckCanonical reports whether h satisfies the DER rules for headers: the
// length must be definite and, if h was parsed, the tag and length must have
// used the minimal number of bytes. Violations are reported as [NotCanonical].
//
// Headers that were constructed in code are always considered minimal because
// [Header.AppendTo] can only produce minimal encodings.
func (h Header) CheckCanonical() error {
	return h.checkCanonical(-1)
}

// checkCanonical implements CheckCanonical. Errors are located at capAt, see
// [Error].
func (h Header) checkCanonical(capAt int) error {
	var err error
	if h.Length == LengthIndefinite {
		err = errIndefinite
	} else if h.size != 0 && h.size != h.EncodedLen() {
		err = errNonMinimalHeader
	}
	if err == nil {
		return nil
	}
	return &Error{Kind: NotCanonical, Tag: h.Tag, Err: err, capAt: capAt}
}

// EncodedLen returns the number of bytes [Header.AppendTo] writes for h.
func (h Header) EncodedLen() int {
	n := 1 // class, constructed, tag
	if h.Tag.Number >= 31 {
		n += vlq.Length(h.Tag.Number)
	}
	return n + lengthLen(h.Length)
}

// lengthLen returns the number of bytes of the minimal encoding of l.
func lengthLen(l int) int {
	if l < 128 {
		return 1
	}
	return 1 + (bits.Len(uint(l))+7)/8
}

// AppendTo appends the minimal encoding of h to dst. The original encoding of a
// parsed header is not preserved.
func (h Header) AppendTo(dst []byte) []byte {
	b := byte(h.Tag.Class&0b11) << 6
	if h.Constructed {
		b |= 0x20
	}
	if h.Tag.Number < 31 {
		dst = append(dst, b|byte(h.Tag.Number))
	} else {
		dst = append(dst, b|0x1f)
		dst = vlq.Append(dst, h.Tag.Number)
	}
	return AppendLength(dst, h.Length)
}

// WriteTo writes the minimal encoding of h to w. It implements [io.WriterTo].
func (h Header) WriteTo(w io.Writer) (int64, error) {
	var buf [maxHeaderLen]byte
	n, err := w.Write(h.AppendTo(buf[:0]))
	return int64(n), err
}

// AppendLength appends the minimal encoding of the length l to dst. Lengths
// below 128 use the short form, larger lengths use the long form with the
// number of length bytes in the first byte. [LengthIndefinite] is encoded as
// 0x80. AppendLength panics for other negative values.
func AppendLength(dst []byte, l int) []byte {
	switch {
	case l == LengthIndefinite:
		return append(dst, 0x80)
	case l < 0:
		panic("tlv: negative length")
	case l < 128:
		return append(dst, byte(l))
	}
	n := lengthLen(l) - 1
	dst = append(dst, 0x80|byte(n))
	for i := n - 1; i >= 0; i-- {
		dst = append(dst, byte(l>>(8*i)))
	}
	return dst
}
