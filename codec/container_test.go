// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package codec

import (
	"cmp"
	"testing"

	"github.com/google/btree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codello.dev/asn1view"
	"codello.dev/asn1view/tlv"
)

func TestSequenceOf(t *testing.T) {
	c := SequenceOf(Int)
	testRoundTrip(t, c, []int{2, 3, 4}, []byte{0x30, 0x09, 0x02, 0x01, 0x02, 0x02, 0x01, 0x03, 0x02, 0x01, 0x04})
	testRoundTrip(t, c, nil, []byte{0x30, 0x00})
	testRoundTrip(t, SequenceOf(SequenceOf(Boolean)), [][]bool{{true}, {}},
		[]byte{0x30, 0x07, 0x30, 0x03, 0x01, 0x01, 0xff, 0x30, 0x00})

	v, err := UnmarshalBER(c, []byte{0x30, 0x80, 0x02, 0x01, 0x02, 0x02, 0x02, 0x00, 0x03, 0x00, 0x00})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, v)
}

func TestSequenceOf_Error(t *testing.T) {
	c := SequenceOf(Int)
	tests := map[string]struct {
		data   []byte
		kind   tlv.Kind
		offset int
	}{
		"Primitive":  {[]byte{0x10, 0x00}, tlv.ConstructedExpected, 0},
		"Set":        {[]byte{0x31, 0x00}, tlv.UnexpectedTag, 0},
		"WrongElem":  {[]byte{0x30, 0x06, 0x02, 0x01, 0x01, 0x04, 0x01, 0x01}, tlv.UnexpectedTag, 5},
		"BrokenElem": {[]byte{0x30, 0x05, 0x02, 0x01, 0x01, 0x02, 0x02}, tlv.TruncatedInput, 5},
		"EmptyElem":  {[]byte{0x30, 0x05, 0x02, 0x01, 0x01, 0x02, 0x00}, tlv.InvalidValueEncoding, 5},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := UnmarshalBER(c, tt.data)
			requireKind(t, err, tt.kind, tt.offset)
			_, err = UnmarshalDER(c, tt.data)
			requireKind(t, err, tt.kind, tt.offset)
		})
	}

	_, err := UnmarshalDER(c, []byte{0x30, 0x07, 0x02, 0x01, 0x01, 0x02, 0x02, 0x00, 0x01})
	requireKind(t, err, tlv.NotCanonical, 5)
}

func TestSetOf(t *testing.T) {
	c := SetOf(OctetString)
	got, err := Marshal(c, [][]byte{[]byte("bb"), []byte("a")})
	require.NoError(t, err)
	want := []byte{0x31, 0x07, 0x04, 0x01, 'a', 0x04, 0x02, 'b', 'b'}
	assert.Equal(t, want, got)
	testRoundTrip(t, c, [][]byte{[]byte("a"), []byte("bb")}, want)

	// the order of elements is not verified
	v, err := UnmarshalDER(c, []byte{0x31, 0x07, 0x04, 0x02, 'b', 'b', 0x04, 0x01, 'a'})
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("bb"), []byte("a")}, v)
}

func TestHashSetOf(t *testing.T) {
	c := HashSetOf(Int)
	want := []byte{0x31, 0x09, 0x02, 0x01, 0x01, 0x02, 0x01, 0x02, 0x02, 0x01, 0x03}
	testRoundTrip(t, c, asn1view.NewSet(3, 1, 2), want)

	v, err := UnmarshalDER(c, want)
	require.NoError(t, err)
	assert.Equal(t, 3, v.Len())
	assert.True(t, v.Contains(2))

	v, err = UnmarshalBER(c, []byte{0x31, 0x06, 0x02, 0x01, 0x01, 0x02, 0x01, 0x01})
	require.NoError(t, err)
	assert.Equal(t, 1, v.Len(), "duplicates collapse")

	_, err = UnmarshalBER(c, []byte{0x30, 0x00})
	requireKind(t, err, tlv.UnexpectedTag, 0)
}

func TestBTreeSetOf(t *testing.T) {
	c := BTreeSetOf[string](UTF8String, cmp.Less[string])
	tree := btree.NewG[string](2, cmp.Less[string])
	for _, s := range []string{"c", "a", "b"} {
		tree.ReplaceOrInsert(s)
	}
	want := []byte{0x31, 0x09, 0x0c, 0x01, 'a', 0x0c, 0x01, 'b', 0x0c, 0x01, 'c'}
	testRoundTrip(t, c, tree, want)
	testRoundTrip(t, c, nil, []byte{0x31, 0x00})

	v, err := UnmarshalBER(c, []byte{0x31, 0x09, 0x0c, 0x01, 'b', 0x0c, 0x01, 'a', 0x0c, 0x01, 'b'})
	require.NoError(t, err)
	assert.Equal(t, 2, v.Len())
	m, ok := v.Min()
	require.True(t, ok)
	assert.Equal(t, "a", m)
}

func TestElements(t *testing.T) {
	content := []byte{0x02, 0x01, 0x01, 0x02, 0x01, 0x02, 0x02, 0x01, 0x03}
	var got []int
	for v, err := range Elements(Int, content, tlv.DER) {
		require.NoError(t, err)
		got = append(got, v)
	}
	assert.Equal(t, []int{1, 2, 3}, got)

	got = got[:0]
	for v, err := range Elements(Int, content, tlv.DER) {
		require.NoError(t, err)
		if got = append(got, v); len(got) == 2 {
			break
		}
	}
	assert.Equal(t, []int{1, 2}, got)
}

func TestElements_Error(t *testing.T) {
	content := []byte{0x02, 0x01, 0x01, 0x02, 0x02, 0x00, 0x01, 0x02, 0x01, 0x03}
	var errs []error
	n := 0
	for _, err := range Elements(Int, content, tlv.DER) {
		n++
		if err != nil {
			errs = append(errs, err)
		}
	}
	assert.Equal(t, 2, n, "iteration stops after the first error")
	require.Len(t, errs, 1)
	requireKind(t, errs[0], tlv.NotCanonical, 3)

	requireKind(t, CheckElements(Int, content), tlv.NotCanonical, 3)
	requireKind(t, CheckElements(Boolean, content), tlv.UnexpectedTag, 0)
	assert.NoError(t, CheckElements(Int, content[:3]))
}
