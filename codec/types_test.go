// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package codec

import (
	"math"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codello.dev/asn1view"
	"codello.dev/asn1view/tlv"
)

// tlvBytes returns the encoding of a value with a short-form header.
func tlvBytes(tag byte, content string) []byte {
	return append([]byte{tag, byte(len(content))}, content...)
}

func TestBoolean(t *testing.T) {
	testRoundTrip(t, Boolean, true, []byte{0x01, 0x01, 0xff})
	testRoundTrip(t, Boolean, false, []byte{0x01, 0x01, 0x00})

	v, err := UnmarshalBER(Boolean, []byte{0x01, 0x01, 0x01})
	require.NoError(t, err)
	assert.True(t, v)
	_, err = UnmarshalDER(Boolean, []byte{0x01, 0x01, 0x01})
	requireKind(t, err, tlv.NotCanonical, 0)
	_, err = UnmarshalBER(Boolean, []byte{0x01, 0x02, 0x00, 0x00})
	requireKind(t, err, tlv.InvalidValueEncoding, 0)
}

func TestInteger(t *testing.T) {
	tests := map[string]struct {
		value int64
		want  []byte
	}{
		"Zero":     {0, []byte{0x02, 0x01, 0x00}},
		"Two":      {2, []byte{0x02, 0x01, 0x02}},
		"127":      {127, []byte{0x02, 0x01, 0x7f}},
		"128":      {128, []byte{0x02, 0x02, 0x00, 0x80}},
		"256":      {256, []byte{0x02, 0x02, 0x01, 0x00}},
		"Minus1":   {-1, []byte{0x02, 0x01, 0xff}},
		"Minus4":   {-4, []byte{0x02, 0x01, 0xfc}},
		"Minus128": {-128, []byte{0x02, 0x01, 0x80}},
		"Minus129": {-129, []byte{0x02, 0x02, 0xff, 0x7f}},
		"MaxInt64": {math.MaxInt64, []byte{0x02, 0x08, 0x7f, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}},
		"MinInt64": {math.MinInt64, []byte{0x02, 0x08, 0x80, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			testRoundTrip(t, Int64, tt.value, tt.want)
			bi, err := UnmarshalDER(BigInt, tt.want)
			require.NoError(t, err)
			assert.Equal(t, tt.value, bi.Int64())
		})
	}
}

func TestInteger_Unsigned(t *testing.T) {
	testRoundTrip(t, Uint64, math.MaxUint64, []byte{0x02, 0x09, 0x00, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff})
	testRoundTrip(t, Uint8, 200, []byte{0x02, 0x02, 0x00, 0xc8})
	testRoundTrip(t, Enumerated[uint16](), 3, []byte{0x0a, 0x01, 0x03})
}

func TestInteger_Error(t *testing.T) {
	tests := map[string]struct {
		decode func([]byte) error
		data   []byte
		kind   tlv.Kind
	}{
		"Empty":       {decodeWith(Int), []byte{0x02, 0x00}, tlv.InvalidValueEncoding},
		"Constructed": {decodeWith(Int), []byte{0x22, 0x03, 0x02, 0x01, 0x00}, tlv.PrimitiveExpected},
		"Uint8Large":  {decodeWith(Uint8), []byte{0x02, 0x02, 0x01, 0x00}, tlv.InvalidValueEncoding},
		"UintNeg":     {decodeWith(Uint), []byte{0x02, 0x01, 0xff}, tlv.InvalidValueEncoding},
		"Int8Large":   {decodeWith(Int8), []byte{0x02, 0x02, 0x00, 0x80}, tlv.InvalidValueEncoding},
		"Int8Small":   {decodeWith(Int8), []byte{0x02, 0x02, 0xff, 0x7f}, tlv.InvalidValueEncoding},
		"Int64Large":  {decodeWith(Int64), []byte{0x02, 0x09, 0x00, 0x80, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}, tlv.InvalidValueEncoding},
		"NonMinimal":  {decodeWith(Int32), []byte{0x02, 0x02, 0xff, 0x80}, tlv.NotCanonical},
		"Enumerated":  {decodeWith(Enumerated[int]()), []byte{0x02, 0x01, 0x00}, tlv.UnexpectedTag},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			requireKind(t, tt.decode(tt.data), tt.kind, 0)
		})
	}
}

// decodeWith returns a function that parses a DER value of c.
func decodeWith[T any](c Codec[T]) func([]byte) error {
	return func(b []byte) error {
		_, err := UnmarshalDER(c, b)
		return err
	}
}

func TestBigInt(t *testing.T) {
	two64 := new(big.Int).Lsh(big.NewInt(1), 64)
	testRoundTrip(t, BigInt, two64, []byte{0x02, 0x09, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00})
	testRoundTrip(t, BigInt, new(big.Int).Neg(two64), []byte{0x02, 0x09, 0xff, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00})
	testRoundTrip(t, BigInt, big.NewInt(-129), []byte{0x02, 0x02, 0xff, 0x7f})

	data := []byte{0x02, 0x02, 0xff, 0x80}
	v, err := UnmarshalBER(BigInt, data)
	require.NoError(t, err)
	assert.Equal(t, int64(-128), v.Int64())
	assert.Equal(t, []byte{0x02, 0x02, 0xff, 0x80}, data, "input must not be modified")
	_, err = UnmarshalDER(BigInt, data)
	requireKind(t, err, tlv.NotCanonical, 0)

	_, err = Marshal(BigInt, nil)
	var e *EncodeError
	assert.ErrorAs(t, err, &e)
}

func TestBitString(t *testing.T) {
	tests := map[string]struct {
		value asn1view.BitString
		want  []byte
	}{
		"Empty":   {asn1view.BitString{}, []byte{0x03, 0x01, 0x00}},
		"OneBit":  {asn1view.BitString{Bytes: []byte{0x80}, BitLength: 1}, []byte{0x03, 0x02, 0x07, 0x80}},
		"Partial": {asn1view.BitString{Bytes: []byte{0xff, 0xf0}, BitLength: 12}, []byte{0x03, 0x03, 0x04, 0xff, 0xf0}},
		"Full":    {asn1view.BitString{Bytes: []byte{0x0a}, BitLength: 8}, []byte{0x03, 0x02, 0x00, 0x0a}},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			testRoundTrip(t, BitString, tt.value, tt.want)
		})
	}
}

func TestBitString_BER(t *testing.T) {
	data := []byte{0x03, 0x02, 0x07, 0x81}
	v, err := UnmarshalBER(BitString, data)
	require.NoError(t, err)
	assert.Equal(t, asn1view.BitString{Bytes: []byte{0x80}, BitLength: 1}, v)
	assert.Equal(t, byte(0x81), data[3], "input must not be modified")
	_, err = UnmarshalDER(BitString, data)
	requireKind(t, err, tlv.NotCanonical, 0)

	data = []byte{0x23, 0x08, 0x03, 0x02, 0x00, 0x0a, 0x03, 0x02, 0x04, 0xf0}
	v, err = UnmarshalBER(BitString, data)
	require.NoError(t, err)
	assert.Equal(t, asn1view.BitString{Bytes: []byte{0x0a, 0xf0}, BitLength: 12}, v)
	_, err = UnmarshalDER(BitString, data)
	requireKind(t, err, tlv.NotCanonical, 0)
}

func TestBitString_Error(t *testing.T) {
	tests := map[string]struct {
		data   []byte
		offset int
	}{
		"Empty":          {[]byte{0x03, 0x00}, 0},
		"PaddingNoBytes": {[]byte{0x03, 0x01, 0x01}, 0},
		"PaddingTooLong": {[]byte{0x03, 0x02, 0x08, 0x00}, 0},
		"InnerPadding":   {[]byte{0x23, 0x08, 0x03, 0x02, 0x04, 0xf0, 0x03, 0x02, 0x00, 0x0a}, 2},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := UnmarshalBER(BitString, tt.data)
			requireKind(t, err, tlv.InvalidValueEncoding, tt.offset)
		})
	}

	_, err := Marshal(BitString, asn1view.BitString{Bytes: []byte{0xff}, BitLength: 9})
	var e *EncodeError
	assert.ErrorAs(t, err, &e)
}

func TestOctetString(t *testing.T) {
	testRoundTrip(t, OctetString, []byte{1, 2, 3}, []byte{0x04, 0x03, 0x01, 0x02, 0x03})
	testRoundTrip(t, OctetString, []byte{}, []byte{0x04, 0x00})

	data := []byte{0x04, 0x03, 0x01, 0x02, 0x03}
	v, err := UnmarshalDER(OctetString, data)
	require.NoError(t, err)
	assert.Same(t, &data[2], &v[0], "primitive content is not copied")
}

func TestOctetString_Constructed(t *testing.T) {
	tests := map[string]struct {
		data []byte
		want []byte
	}{
		"Definite":   {[]byte{0x24, 0x08, 0x04, 0x02, 0x01, 0x02, 0x04, 0x02, 0x03, 0x04}, []byte{1, 2, 3, 4}},
		"Nested":     {[]byte{0x24, 0x80, 0x24, 0x80, 0x04, 0x01, 0x01, 0x00, 0x00, 0x04, 0x01, 0x02, 0x00, 0x00}, []byte{1, 2}},
		"NoSegments": {[]byte{0x24, 0x00}, []byte{}},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			v, err := UnmarshalBER(OctetString, tt.data)
			require.NoError(t, err)
			assert.Equal(t, tt.want, v)
			_, err = UnmarshalDER(OctetString, tt.data)
			assert.ErrorIs(t, err, tlv.NotCanonical)
		})
	}

	_, err := UnmarshalBER(OctetString, []byte{0x24, 0x03, 0x02, 0x01, 0x01})
	requireKind(t, err, tlv.UnexpectedTag, 2)
}

func TestNull(t *testing.T) {
	testRoundTrip(t, Null, asn1view.Null{}, []byte{0x05, 0x00})
	_, err := UnmarshalBER(Null, []byte{0x05, 0x01, 0x00})
	requireKind(t, err, tlv.InvalidValueEncoding, 0)
}

func TestObjectIdentifier(t *testing.T) {
	tests := map[string]struct {
		oid  string
		want []byte
	}{
		"RSA":       {"1.2.840.113549", []byte{0x06, 0x06, 0x2a, 0x86, 0x48, 0x86, 0xf7, 0x0d}},
		"TwoArcs":   {"2.5", []byte{0x06, 0x01, 0x55}},
		"LargeRoot": {"2.999.3", []byte{0x06, 0x03, 0x88, 0x37, 0x03}},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			oid, err := asn1view.ParseObjectIdentifier(tt.oid)
			require.NoError(t, err)
			testRoundTrip(t, ObjectIdentifier, oid, tt.want)
			got, err := UnmarshalDER(ObjectIdentifier, tt.want)
			require.NoError(t, err)
			assert.Equal(t, tt.oid, got.String())
		})
	}
}

func TestObjectIdentifier_Error(t *testing.T) {
	for name, data := range map[string][]byte{
		"Empty":      {0x06, 0x00},
		"NonMinimal": {0x06, 0x02, 0x80, 0x01},
		"Truncated":  {0x06, 0x01, 0x81},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := UnmarshalBER(ObjectIdentifier, data)
			requireKind(t, err, tlv.InvalidValueEncoding, 0)
		})
	}

	_, err := Marshal(ObjectIdentifier, asn1view.ObjectIdentifier{3, 1})
	var e *EncodeError
	assert.ErrorAs(t, err, &e)
}

func TestStrings(t *testing.T) {
	testRoundTrip(t, UTF8String, "héllo", tlvBytes(0x0c, "héllo"))
	testRoundTrip(t, PrintableString, "Hello World", tlvBytes(0x13, "Hello World"))
	testRoundTrip(t, IA5String, "user@example.com", tlvBytes(0x16, "user@example.com"))
	testRoundTrip(t, NumericString, "0123 456", tlvBytes(0x12, "0123 456"))
	testRoundTrip(t, VisibleString, "a~b", tlvBytes(0x1a, "a~b"))

	tests := map[string]struct {
		decode func([]byte) error
		data   []byte
	}{
		"UTF8":      {decodeWith(UTF8String), []byte{0x0c, 0x01, 0xff}},
		"Printable": {decodeWith(PrintableString), tlvBytes(0x13, "a@b")},
		"IA5":       {decodeWith(IA5String), tlvBytes(0x16, "é")},
		"Numeric":   {decodeWith(NumericString), tlvBytes(0x12, "12a")},
		"Visible":   {decodeWith(VisibleString), tlvBytes(0x1a, "a\nb")},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			requireKind(t, tt.decode(tt.data), tlv.InvalidValueEncoding, 0)
		})
	}

	_, err := Marshal(PrintableString, "a*b")
	var e *EncodeError
	assert.ErrorAs(t, err, &e)
}

func TestStrings_Constructed(t *testing.T) {
	data := []byte{0x2c, 0x06, 0x04, 0x01, 'a', 0x04, 0x01, 'b'}
	v, err := UnmarshalBER(UTF8String, data)
	require.NoError(t, err)
	assert.Equal(t, "ab", v)
	_, err = UnmarshalDER(UTF8String, data)
	requireKind(t, err, tlv.NotCanonical, 0)
}

func TestUTCTime(t *testing.T) {
	want := time.Date(2023, 5, 6, 7, 8, 9, 0, time.UTC)
	testRoundTrip(t, UTCTime, asn1view.UTCTime(want), tlvBytes(0x17, "230506070809Z"))

	tests := map[string]struct {
		content string
		want    time.Time
	}{
		"NoSeconds": {"2305060708Z", time.Date(2023, 5, 6, 7, 8, 0, 0, time.UTC)},
		"Offset":    {"230506080809+0100", want},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			data := tlvBytes(0x17, tt.content)
			v, err := UnmarshalBER(UTCTime, data)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(time.Time(v)), "got %s", time.Time(v))
			_, err = UnmarshalDER(UTCTime, data)
			requireKind(t, err, tlv.NotCanonical, 0)
		})
	}

	v, err := UnmarshalDER(UTCTime, tlvBytes(0x17, "991231235959Z"))
	require.NoError(t, err)
	assert.Equal(t, 1999, time.Time(v).Year())

	_, err = UnmarshalBER(UTCTime, tlvBytes(0x17, "2305ab070809Z"))
	requireKind(t, err, tlv.InvalidValueEncoding, 0)
	_, err = Marshal(UTCTime, asn1view.UTCTime(time.Date(2050, 1, 1, 0, 0, 0, 0, time.UTC)))
	var e *EncodeError
	assert.ErrorAs(t, err, &e)
}

func TestGeneralizedTime(t *testing.T) {
	want := time.Date(2023, 5, 6, 7, 8, 9, 500_000_000, time.UTC)
	testRoundTrip(t, GeneralizedTime, asn1view.GeneralizedTime(want), tlvBytes(0x18, "20230506070809.5Z"))
	testRoundTrip(t, GeneralizedTime, asn1view.GeneralizedTime(want.Truncate(time.Second)), tlvBytes(0x18, "20230506070809Z"))

	tests := map[string]struct {
		content string
		want    time.Time
	}{
		"TrailingZero": {"20230506070809.50Z", want},
		"Comma":        {"20230506070809,5Z", want},
		"Offset":       {"20230506090809.5+0200", want},
		"HoursOnly":    {"2023050607Z", time.Date(2023, 5, 6, 7, 0, 0, 0, time.UTC)},
		"FracMinutes":  {"202305060708.5Z", time.Date(2023, 5, 6, 7, 8, 30, 0, time.UTC)},
		"Local":        {"20230506070809", time.Date(2023, 5, 6, 7, 8, 9, 0, time.Local)},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			data := tlvBytes(0x18, tt.content)
			v, err := UnmarshalBER(GeneralizedTime, data)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(time.Time(v)), "got %s", time.Time(v))
			_, err = UnmarshalDER(GeneralizedTime, data)
			requireKind(t, err, tlv.NotCanonical, 0)
		})
	}

	for _, s := range []string{"20231306070809Z", "20230506240000Z", "2023050607.Z", "20230506070809+01"} {
		_, err := UnmarshalBER(GeneralizedTime, tlvBytes(0x18, s))
		requireKind(t, err, tlv.InvalidValueEncoding, 0)
	}
}

func TestTime_Zones(t *testing.T) {
	east := time.FixedZone("east", 2*60*60)
	west := time.FixedZone("west", -5*60*60)
	far := time.FixedZone("far", 5*60*60)

	t.Run("UTCTime", func(t *testing.T) {
		tests := map[string]struct {
			value time.Time
			want  string // empty if the value cannot be encoded
		}{
			"LocalYear2049": {time.Date(2049, 12, 31, 23, 0, 0, 0, west), ""},
			"LocalYear1950": {time.Date(1950, 1, 1, 1, 0, 0, 0, east), ""},
			"UTCYear2049":   {time.Date(2050, 1, 1, 3, 0, 0, 0, far), "491231220000Z"},
			"UTCYear1950":   {time.Date(1949, 12, 31, 22, 0, 0, 0, west), "500101030000Z"},
		}
		for name, tt := range tests {
			t.Run(name, func(t *testing.T) {
				v := asn1view.UTCTime(tt.value)
				if tt.want == "" {
					_, err := Marshal(UTCTime, v)
					var e *EncodeError
					assert.ErrorAs(t, err, &e)
					_, err = EncodedLen(UTCTime, v)
					assert.ErrorAs(t, err, &e)
					return
				}
				testRoundTrip(t, UTCTime, v, tlvBytes(0x17, tt.want))
				got, err := UnmarshalDER(UTCTime, tlvBytes(0x17, tt.want))
				require.NoError(t, err)
				assert.True(t, tt.value.Equal(time.Time(got)), "got %s", time.Time(got))
			})
		}
	})

	t.Run("GeneralizedTime", func(t *testing.T) {
		tests := map[string]struct {
			value time.Time
			want  string
		}{
			"LocalYear1":    {time.Date(1, 1, 1, 1, 0, 0, 0, east), ""},
			"LocalYear9999": {time.Date(9999, 12, 31, 22, 0, 0, 0, west), ""},
			"UTCYear1":      {time.Date(1, 1, 1, 0, 0, 0, 0, time.FixedZone("", -60*60)), "00010101010000Z"},
			"UTCYear9999":   {time.Date(10000, 1, 1, 2, 0, 0, 0, far), "99991231210000Z"},
		}
		for name, tt := range tests {
			t.Run(name, func(t *testing.T) {
				v := asn1view.GeneralizedTime(tt.value)
				if tt.want == "" {
					_, err := Marshal(GeneralizedTime, v)
					var e *EncodeError
					assert.ErrorAs(t, err, &e)
					return
				}
				testRoundTrip(t, GeneralizedTime, v, tlvBytes(0x18, tt.want))
				got, err := UnmarshalDER(GeneralizedTime, tlvBytes(0x18, tt.want))
				require.NoError(t, err)
				assert.True(t, tt.value.Equal(time.Time(got)), "got %s", time.Time(got))
			})
		}
	})
}

func TestRawValue(t *testing.T) {
	data := []byte{0x30, 0x05, 0x02, 0x01, 0x05, 0xa0, 0x00}
	testRoundTrip(t, RawValue, tlv.Any{
		Header:  tlv.Header{Tag: asn1view.Universal(asn1view.TagSequence), Constructed: true, Length: 5},
		Content: data[2:],
	}, data)

	a, err := UnmarshalDER(RawValue, data)
	require.NoError(t, err)
	assert.Same(t, &data[2], &a.Content[0])

	_, err = UnmarshalDER(RawValue, []byte{0x30, 0x04, 0x04, 0x81, 0x01, 0xaa})
	requireKind(t, err, tlv.NotCanonical, 2)
}
