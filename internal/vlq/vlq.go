// Package vlq implements [Variable-length quantity] encoding as used in MIDI or
// BER. A VLQ is essentially a base-128 representation of an unsigned integer
// with the addition of the eighth bit to mark continuation of bytes. VLQ is
// identical to [LEB128] except in endianness.
//
// [Variable-length quantity]: https://en.wikipedia.org/wiki/Variable-length_quantity
// [LEB128]: https://en.wikipedia.org/wiki/LEB128
package vlq

import (
	"errors"
	"math/bits"
	"unsafe"
)

var (
	ErrNotMinimal = errors.New("vlq is not minimally encoded")
	ErrOverflow   = errors.New("vlq too large for target type")
	ErrTruncated  = errors.New("vlq is truncated")
)

// Unsigned is the set of types a VLQ can be decoded into.
type Unsigned interface {
	~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// Parse decodes an unsigned VLQ from the beginning of b and returns the
// remaining bytes. The maximum allowed value is limited by the size of T.
//
// Parse ignores an arbitrary amount of leading zeros (encoded as 0x80 bytes).
// Use [ParseMinimal] to parse a minimally-encoded VLQ.
func Parse[T Unsigned](b []byte) (T, []byte, error) {
	return parse[T](b, false)
}

// ParseMinimal works like [Parse] but returns [ErrNotMinimal] if the VLQ is not
// minimally encoded (i.e. if it starts with a 0x80 byte).
func ParseMinimal[T Unsigned](b []byte) (T, []byte, error) {
	return parse[T](b, true)
}

// parse implements [Parse] and [ParseMinimal]. Errors are reported after the
// whole VLQ was scanned, so a truncated VLQ is reported as such even if it is
// also not minimal.
func parse[T Unsigned](b []byte, minimal bool) (ret T, rest []byte, err error) {
	numBits := 0
	for i, c := range b {
		ret <<= 7
		ret |= T(c & 0x7f)
		if numBits == 0 {
			numBits = bits.Len8(c & 0x7f)
		} else {
			numBits += 7
		}
		if numBits > int(unsafe.Sizeof(ret)*8) {
			return 0, b, ErrOverflow
		}
		if c&0x80 == 0 {
			if minimal && b[0] == 0x80 {
				return 0, b, ErrNotMinimal
			}
			return ret, b[i+1:], nil
		}
	}
	return 0, b, ErrTruncated
}

// Length returns the number of bytes needed to encode n as a VLQ.
func Length[T Unsigned](n T) int {
	if n == 0 {
		return 1
	}
	return (bits.Len64(uint64(n)) + 6) / 7
}

// Append appends the minimal VLQ encoding of n to dst.
func Append[T Unsigned](dst []byte, n T) []byte {
	for j := Length(n) - 1; j >= 0; j-- {
		b := byte(n>>(j*7)) & 0x7f
		if j > 0 {
			b |= 0x80
		}
		dst = append(dst, b)
	}
	return dst
}
