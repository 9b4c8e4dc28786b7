// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package codec

import (
	"math/big"

	"codello.dev/asn1view"
	"codello.dev/asn1view/internal/vlq"
	"codello.dev/asn1view/tlv"
)

// primitive implements the Tag and Constructed methods of codecs for types
// with a universal tag and primitive DER encoding.
type primitive uint

func (p primitive) Tag() asn1view.Tag { return asn1view.Universal(uint(p)) }
func (primitive) Constructed() bool   { return false }

//region [UNIVERSAL 1] BOOLEAN

// Boolean is the codec for the ASN.1 BOOLEAN type. Any non-zero content octet
// decodes as true. DER requires 0xFF for true.
var Boolean Codec[bool] = boolCodec{primitive(asn1view.TagBoolean)}

type boolCodec struct{ primitive }

func (boolCodec) Decode(a tlv.Any) (bool, error) {
	if err := a.AssertPrimitive(); err != nil {
		return false, err
	}
	if len(a.Content) != 1 {
		return false, a.Errorf(tlv.InvalidValueEncoding, "invalid boolean length %d", len(a.Content))
	}
	return a.Content[0] != 0x00, nil
}

func (c boolCodec) Check(a tlv.Any) error {
	if _, err := c.Decode(a); err != nil {
		return err
	}
	if b := a.Content[0]; b != 0x00 && b != 0xff {
		return a.Errorf(tlv.NotCanonical, "boolean content %#02x", b)
	}
	return nil
}

func (boolCodec) EncodedLen(bool) (int, error) { return 1, nil }

func (boolCodec) EncodeContent(w Writer, v bool) error {
	if v {
		return w.WriteByte(0xff)
	}
	return w.WriteByte(0x00)
}

//endregion

//region [UNIVERSAL 2] INTEGER, [UNIVERSAL 10] ENUMERATED

type integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// Integer returns a codec for the ASN.1 INTEGER type and the Go integer type
// T. Decoding fails with [tlv.InvalidValueEncoding] if a value does not fit
// into T. Redundant leading octets are accepted under BER and rejected as
// [tlv.NotCanonical] under DER.
func Integer[T integer]() Codec[T] {
	return intCodec[T]{primitive(asn1view.TagInteger)}
}

// Enumerated is like [Integer] but for the ASN.1 ENUMERATED type.
func Enumerated[T integer]() Codec[T] {
	return intCodec[T]{primitive(asn1view.TagEnumerated)}
}

// Codecs for the predeclared integer types.
var (
	Int    = Integer[int]()
	Int8   = Integer[int8]()
	Int16  = Integer[int16]()
	Int32  = Integer[int32]()
	Int64  = Integer[int64]()
	Uint   = Integer[uint]()
	Uint8  = Integer[uint8]()
	Uint16 = Integer[uint16]()
	Uint32 = Integer[uint32]()
	Uint64 = Integer[uint64]()
)

type intCodec[T integer] struct{ primitive }

// trimInt removes redundant leading octets from the two's complement
// representation b.
func trimInt(b []byte) []byte {
	for len(b) > 1 && ((b[0] == 0x00 && b[1]&0x80 == 0) || (b[0] == 0xff && b[1]&0x80 != 0)) {
		b = b[1:]
	}
	return b
}

func (intCodec[T]) Decode(a tlv.Any) (T, error) {
	if err := a.AssertPrimitive(); err != nil {
		return 0, err
	}
	if len(a.Content) == 0 {
		return 0, a.Errorf(tlv.InvalidValueEncoding, "empty integer")
	}
	b := trimInt(a.Content)
	neg := b[0]&0x80 != 0
	signed := ^T(0) < 0
	if neg && !signed {
		return 0, a.Errorf(tlv.InvalidValueEncoding, "integer out of range for %T", T(0))
	}
	if !neg && len(b) == 9 && b[0] == 0 {
		b = b[1:]
	}
	if len(b) > 8 {
		return 0, a.Errorf(tlv.InvalidValueEncoding, "integer out of range for %T", T(0))
	}
	var u uint64
	if neg {
		u = ^uint64(0)
	}
	for _, x := range b {
		u = u<<8 | uint64(x)
	}
	v := T(u)
	if signed && int64(v) != int64(u) || !signed && uint64(v) != u || signed && !neg && int64(u) < 0 {
		return 0, a.Errorf(tlv.InvalidValueEncoding, "integer out of range for %T", T(0))
	}
	return v, nil
}

func (c intCodec[T]) Check(a tlv.Any) error {
	if _, err := c.Decode(a); err != nil {
		return err
	}
	if len(trimInt(a.Content)) != len(a.Content) {
		return a.Errorf(tlv.NotCanonical, "integer not minimally encoded")
	}
	return nil
}

// intLen returns the number of octets in the minimal two's complement
// representation of v, sign extended to 64 bits in u.
func intLen[T integer](v T) (u uint64, n int) {
	u = uint64(v)
	n = 1
	if ^T(0) < 0 && v < 0 {
		for x := int64(v); x < -128; x >>= 8 {
			n++
		}
		return u, n
	}
	for x := u; x > 127; x >>= 8 {
		n++
	}
	return u, n
}

func (intCodec[T]) EncodedLen(v T) (int, error) {
	_, n := intLen(v)
	return n, nil
}

func (intCodec[T]) EncodeContent(w Writer, v T) error {
	u, n := intLen(v)
	for i := n - 1; i >= 0; i-- {
		if err := w.WriteByte(byte(u >> (8 * i))); err != nil {
			return err
		}
	}
	return nil
}

// BigInt is the codec for ASN.1 INTEGER values of arbitrary size. A nil value
// cannot be encoded.
var BigInt Codec[*big.Int] = bigIntCodec{primitive(asn1view.TagInteger)}

type bigIntCodec struct{ primitive }

var bigOne = big.NewInt(1)

func (bigIntCodec) Decode(a tlv.Any) (*big.Int, error) {
	if err := a.AssertPrimitive(); err != nil {
		return nil, err
	}
	if len(a.Content) == 0 {
		return nil, a.Errorf(tlv.InvalidValueEncoding, "empty integer")
	}
	i := new(big.Int)
	if a.Content[0]&0x80 == 0 {
		return i.SetBytes(a.Content), nil
	}
	// negative integer, calculate 2s complement
	bs := make([]byte, len(a.Content))
	for j, b := range a.Content {
		bs[j] = ^b
	}
	i.SetBytes(bs)
	i.Add(i, bigOne)
	return i.Neg(i), nil
}

func (c bigIntCodec) Check(a tlv.Any) error {
	if _, err := c.Decode(a); err != nil {
		return err
	}
	if len(trimInt(a.Content)) != len(a.Content) {
		return a.Errorf(tlv.NotCanonical, "integer not minimally encoded")
	}
	return nil
}

// bigIntBytes returns the minimal two's complement representation of v.
func bigIntBytes(v *big.Int) []byte {
	switch v.Sign() {
	case 0:
		return []byte{0x00}
	case 1:
		bs := v.Bytes()
		if bs[0]&0x80 != 0 {
			bs = append([]byte{0x00}, bs...)
		}
		return bs
	}
	// Invert and subtract one. If the most significant bit is not set, the
	// result needs a leading 0xff to stay negative.
	nMinus1 := new(big.Int).Neg(v)
	nMinus1.Sub(nMinus1, bigOne)
	bs := nMinus1.Bytes()
	for i := range bs {
		bs[i] ^= 0xff
	}
	if len(bs) == 0 || bs[0]&0x80 == 0 {
		bs = append([]byte{0xff}, bs...)
	}
	return bs
}

func (c bigIntCodec) EncodedLen(v *big.Int) (int, error) {
	if v == nil {
		return 0, encodeError(c.Tag(), "nil big.Int")
	}
	return len(bigIntBytes(v)), nil
}

func (c bigIntCodec) EncodeContent(w Writer, v *big.Int) error {
	if v == nil {
		return encodeError(c.Tag(), "nil big.Int")
	}
	_, err := w.Write(bigIntBytes(v))
	return err
}

//endregion

//region [UNIVERSAL 3] BIT STRING

// BitString is the codec for the ASN.1 BIT STRING type. A primitive encoding
// decodes into a view of the input unless its padding bits are set. DER
// requires the primitive encoding and zero padding bits. Padding bits are
// always encoded as zero.
var BitString Codec[asn1view.BitString] = bitStringCodec{primitive(asn1view.TagBitString)}

type bitStringCodec struct{ primitive }

// bitStringContent validates the content octets of a primitive BIT STRING
// and returns the number of padding bits.
func bitStringContent(a tlv.Any) (int, error) {
	if len(a.Content) == 0 {
		return 0, a.Errorf(tlv.InvalidValueEncoding, "empty bit string")
	}
	padding := int(a.Content[0])
	if padding > 7 || len(a.Content) == 1 && padding > 0 {
		return 0, a.Errorf(tlv.InvalidValueEncoding, "invalid padding bits in bit string")
	}
	return padding, nil
}

func (bitStringCodec) Decode(a tlv.Any) (asn1view.BitString, error) {
	var ret asn1view.BitString
	if a.Constructed {
		return decodeBitStringSegments(a)
	}
	padding, err := bitStringContent(a)
	if err != nil {
		return ret, err
	}
	ret.Bytes = a.Content[1:]
	ret.BitLength = len(ret.Bytes)*8 - padding
	if n := len(ret.Bytes); n > 0 {
		mask := byte(1)<<padding - 1
		if last := ret.Bytes[n-1]; last&mask != 0 {
			ret.Bytes = append([]byte(nil), ret.Bytes...)
			ret.Bytes[n-1] = last &^ mask
		}
	}
	return ret, nil
}

// decodeBitStringSegments concatenates the segments of a constructed BIT
// STRING. Only the last segment may have padding bits.
func decodeBitStringSegments(a tlv.Any) (asn1view.BitString, error) {
	var ret asn1view.BitString
	segs, err := appendSegments(nil, a, asn1view.Universal(asn1view.TagBitString), 0)
	if err != nil {
		return ret, err
	}
	ret.Bytes = make([]byte, 0, len(a.Content))
	for i, s := range segs {
		padding, err := bitStringContent(s)
		if err != nil {
			return ret, err
		}
		if padding > 0 && i < len(segs)-1 {
			return ret, s.Errorf(tlv.InvalidValueEncoding, "padding bits in inner segment")
		}
		ret.Bytes = append(ret.Bytes, s.Content[1:]...)
		ret.BitLength = len(ret.Bytes)*8 - padding
		if padding > 0 {
			ret.Bytes[len(ret.Bytes)-1] &^= byte(1)<<padding - 1
		}
	}
	return ret, nil
}

func (bitStringCodec) Check(a tlv.Any) error {
	if a.Constructed {
		return a.Errorf(tlv.NotCanonical, "constructed bit string")
	}
	padding, err := bitStringContent(a)
	if err != nil {
		return err
	}
	if padding > 0 && a.Content[len(a.Content)-1]&(byte(1)<<padding-1) != 0 {
		return a.Errorf(tlv.NotCanonical, "non-zero padding bits")
	}
	return nil
}

func (c bitStringCodec) EncodedLen(v asn1view.BitString) (int, error) {
	if !v.IsValid() {
		return 0, encodeError(c.Tag(), "invalid bit string")
	}
	return len(v.Bytes) + 1, nil
}

func (c bitStringCodec) EncodeContent(w Writer, v asn1view.BitString) error {
	if !v.IsValid() {
		return encodeError(c.Tag(), "invalid bit string")
	}
	padding := v.Padding()
	if err := w.WriteByte(byte(padding)); err != nil {
		return err
	}
	if len(v.Bytes) == 0 {
		return nil
	}
	n := len(v.Bytes) - 1
	if _, err := w.Write(v.Bytes[:n]); err != nil {
		return err
	}
	return w.WriteByte(v.Bytes[n] &^ (byte(1)<<padding - 1))
}

//endregion

//region [UNIVERSAL 4] OCTET STRING

// OctetString is the codec for the ASN.1 OCTET STRING type. The primitive
// encoding decodes into a view of the input. Segments of the constructed
// encoding are copied into a new slice. DER requires the primitive encoding.
var OctetString Codec[[]byte] = octetStringCodec{primitive(asn1view.TagOctetString)}

type octetStringCodec struct{ primitive }

func (octetStringCodec) Decode(a tlv.Any) ([]byte, error) {
	return stringContent(a)
}

func (octetStringCodec) Check(a tlv.Any) error {
	if a.Constructed {
		return a.Errorf(tlv.NotCanonical, "constructed string")
	}
	return nil
}

func (octetStringCodec) EncodedLen(v []byte) (int, error) { return len(v), nil }

func (octetStringCodec) EncodeContent(w Writer, v []byte) error {
	_, err := w.Write(v)
	return err
}

// appendSegments appends the primitive segments of the constructed string
// value a to dst. Nested constructed segments are flattened. Every segment
// must carry the tag seg.
func appendSegments(dst []tlv.Any, a tlv.Any, seg asn1view.Tag, depth int) ([]tlv.Any, error) {
	if depth >= tlv.MaxDepth {
		return dst, a.Errorf(tlv.MalformedHeader, "nesting too deep")
	}
	for s, err := range tlv.Elements(a.Content, tlv.BER) {
		if err == nil {
			err = s.AssertTag(seg)
		}
		if err != nil {
			return dst, err
		}
		if s.Constructed {
			if dst, err = appendSegments(dst, s, seg, depth+1); err != nil {
				return dst, err
			}
			continue
		}
		dst = append(dst, s)
	}
	return dst, nil
}

// stringContent returns the content octets of a string value. The content of
// a primitive value is returned as is. The segments of a constructed value
// are OCTET STRINGs, their contents are concatenated.
func stringContent(a tlv.Any) ([]byte, error) {
	if !a.Constructed {
		return a.Content, nil
	}
	segs, err := appendSegments(nil, a, asn1view.Universal(asn1view.TagOctetString), 0)
	if err != nil {
		return nil, err
	}
	ret := make([]byte, 0, len(a.Content))
	for _, s := range segs {
		ret = append(ret, s.Content...)
	}
	return ret, nil
}

//endregion

//region [UNIVERSAL 5] NULL

// Null is the codec for the ASN.1 NULL type.
var Null Codec[asn1view.Null] = nullCodec{primitive(asn1view.TagNull)}

type nullCodec struct{ primitive }

func (nullCodec) Decode(a tlv.Any) (asn1view.Null, error) {
	if err := a.AssertPrimitive(); err != nil {
		return asn1view.Null{}, err
	}
	if len(a.Content) != 0 {
		return asn1view.Null{}, a.Errorf(tlv.InvalidValueEncoding, "non-empty null")
	}
	return asn1view.Null{}, nil
}

func (c nullCodec) Check(a tlv.Any) error {
	_, err := c.Decode(a)
	return err
}

func (nullCodec) EncodedLen(asn1view.Null) (int, error)     { return 0, nil }
func (nullCodec) EncodeContent(Writer, asn1view.Null) error { return nil }

//endregion

//region [UNIVERSAL 6] OBJECT IDENTIFIER

// ObjectIdentifier is the codec for the ASN.1 OBJECT IDENTIFIER type. Arcs
// must be minimally encoded under both profiles.
var ObjectIdentifier Codec[asn1view.ObjectIdentifier] = oidCodec{primitive(asn1view.TagOID)}

type oidCodec struct{ primitive }

func (oidCodec) Decode(a tlv.Any) (asn1view.ObjectIdentifier, error) {
	if err := a.AssertPrimitive(); err != nil {
		return nil, err
	}
	if len(a.Content) == 0 {
		return nil, a.Errorf(tlv.InvalidValueEncoding, "empty object identifier")
	}
	// the first arc counts twice
	oid := make(asn1view.ObjectIdentifier, 1, len(a.Content)+1)
	for b := a.Content; len(b) > 0; {
		v, rest, err := vlq.ParseMinimal[uint](b)
		if err != nil {
			return nil, a.Errorf(tlv.InvalidValueEncoding, "%w", err)
		}
		oid = append(oid, v)
		b = rest
	}
	if oid[1] < 80 {
		oid[0], oid[1] = oid[1]/40, oid[1]%40
	} else {
		oid[0], oid[1] = 2, oid[1]-80
	}
	return oid, nil
}

func (c oidCodec) Check(a tlv.Any) error {
	_, err := c.Decode(a)
	return err
}

func (c oidCodec) EncodedLen(v asn1view.ObjectIdentifier) (int, error) {
	if !v.IsValid() {
		return 0, encodeError(c.Tag(), "invalid object identifier")
	}
	return v.EncodedLen(), nil
}

func (c oidCodec) EncodeContent(w Writer, v asn1view.ObjectIdentifier) error {
	b, err := v.AppendEncoding(make([]byte, 0, v.EncodedLen()))
	if err != nil {
		return &EncodeError{c.Tag(), err}
	}
	_, err = w.Write(b)
	return err
}

//endregion

//region ANY

// RawValue is the codec for values of any type. Decoding returns the parsed
// [tlv.Any] itself, so the content stays a view of the input. The DER check
// verifies the headers of all nested values. Encoding writes the tag and
// content of the value unchanged.
var RawValue Codec[tlv.Any] = rawCodec{}

type rawCodec struct{}

func (rawCodec) Tag() asn1view.Tag       { return asn1view.Tag{} }
func (rawCodec) Constructed() bool       { return false }
func (rawCodec) Match(asn1view.Tag) bool { return true }
func (rawCodec) Check(a tlv.Any) error   { return tlv.CheckTree(a) }

func (rawCodec) Decode(a tlv.Any) (tlv.Any, error) {
	return a, nil
}

func (rawCodec) valueTag(v tlv.Any) (asn1view.Tag, bool) {
	return v.Tag, v.Constructed
}

func (rawCodec) EncodedLen(v tlv.Any) (int, error) { return len(v.Content), nil }

func (rawCodec) EncodeContent(w Writer, v tlv.Any) error {
	_, err := w.Write(v.Content)
	return err
}

//endregion
