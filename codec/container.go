// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package codec

import (
	"bytes"
	"iter"
	"maps"
	"slices"

	"github.com/google/btree"

	"codello.dev/asn1view"
	"codello.dev/asn1view/tlv"
)

// Elements returns a sequence of the values of c encoded in content, which is
// usually the content of a constructed value. Values are parsed and decoded
// as the sequence advances. Under DER every value is checked before it is
// decoded. The sequence stops after the first error.
func Elements[T any](c Codec[T], content []byte, p tlv.Profile) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for a, err := range tlv.Elements(content, p) {
			var v T
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
				yield(zero, tlv.Locate(err, content))
				return
			}
			if !yield(v, nil) {
				return
			}
		}
	}
}

// CheckElements verifies that content consists of DER encoded values of c.
// No values are decoded.
func CheckElements[T any](c Codec[T], content []byte) error {
	for a, err := range tlv.Elements(content, tlv.DER) {
		if err == nil {
			err = assertTag(c, a)
		}
		if err == nil {
			err = c.Check(a)
		}
		if err != nil {
			return tlv.Locate(err, content)
		}
	}
	return nil
}

// listCodec implements the common parts of SEQUENCE OF and SET OF codecs.
type listCodec[T any] struct {
	elem Codec[T]
	tag  uint
}

func (c listCodec[T]) Tag() asn1view.Tag { return asn1view.Universal(c.tag) }
func (listCodec[T]) Constructed() bool   { return true }

// decode calls add for every element of a.
func (c listCodec[T]) decode(a tlv.Any, add func(T)) error {
	if err := a.AssertConstructed(); err != nil {
		return err
	}
	for v, err := range Elements(c.elem, a.Content, tlv.BER) {
		if err != nil {
			return err
		}
		add(v)
	}
	return nil
}

func (c listCodec[T]) Check(a tlv.Any) error {
	if err := a.AssertConstructed(); err != nil {
		return err
	}
	return CheckElements(c.elem, a.Content)
}

// encodedLen returns the combined length of the encodings of vs.
func (c listCodec[T]) encodedLen(vs iter.Seq[T]) (int, error) {
	n := 0
	for v := range vs {
		l, err := EncodedLen(c.elem, v)
		if err == nil {
			n, err = addLen(c.Tag(), n, l)
		}
		if err != nil {
			return 0, err
		}
	}
	return n, nil
}

// encodeSorted writes the encodings of vs in ascending order, as required for
// the DER encoding of a SET OF.
func (c listCodec[T]) encodeSorted(w Writer, vs iter.Seq[T]) error {
	var encs [][]byte
	for v := range vs {
		b, err := Marshal(c.elem, v)
		if err != nil {
			return err
		}
		encs = append(encs, b)
	}
	slices.SortFunc(encs, bytes.Compare)
	for _, b := range encs {
		if _, err := w.Write(b); err != nil {
			return err
		}
	}
	return nil
}

//region SEQUENCE OF, SET OF

// SequenceOf returns a codec for the ASN.1 SEQUENCE OF type. Elements are
// encoded in the order of the slice.
func SequenceOf[T any](c Codec[T]) Codec[[]T] {
	return sliceCodec[T]{listCodec[T]{c, asn1view.TagSequence}}
}

// SetOf returns a codec for the ASN.1 SET OF type. Elements are decoded in the
// order of the encoding and are encoded in ascending order of their
// encodings. The order of elements is not verified when checking DER.
func SetOf[T any](c Codec[T]) Codec[[]T] {
	return sliceCodec[T]{listCodec[T]{c, asn1view.TagSet}}
}

type sliceCodec[T any] struct{ listCodec[T] }

func (c sliceCodec[T]) Decode(a tlv.Any) ([]T, error) {
	var ret []T
	err := c.decode(a, func(v T) { ret = append(ret, v) })
	if err != nil {
		return nil, err
	}
	return ret, nil
}

func (c sliceCodec[T]) EncodedLen(v []T) (int, error) {
	return c.encodedLen(slices.Values(v))
}

func (c sliceCodec[T]) EncodeContent(w Writer, v []T) error {
	if c.tag == asn1view.TagSet {
		return c.encodeSorted(w, slices.Values(v))
	}
	for _, e := range v {
		if err := writeValue(w, c.elem, e); err != nil {
			return err
		}
	}
	return nil
}

//endregion

//region SET OF (hashed)

// HashSetOf returns a codec for the ASN.1 SET OF type backed by a hash set.
// Duplicate elements collapse when decoding. Elements are encoded in
// ascending order of their encodings.
func HashSetOf[T comparable](c Codec[T]) Codec[asn1view.Set[T]] {
	return hashSetCodec[T]{listCodec[T]{c, asn1view.TagSet}}
}

type hashSetCodec[T comparable] struct{ listCodec[T] }

func (c hashSetCodec[T]) Decode(a tlv.Any) (asn1view.Set[T], error) {
	ret := asn1view.NewSet[T]()
	if err := c.decode(a, ret.Add); err != nil {
		return nil, err
	}
	return ret, nil
}

func (c hashSetCodec[T]) EncodedLen(v asn1view.Set[T]) (int, error) {
	return c.encodedLen(maps.Keys(v))
}

func (c hashSetCodec[T]) EncodeContent(w Writer, v asn1view.Set[T]) error {
	return c.encodeSorted(w, maps.Keys(v))
}

//endregion

//region SET OF (ordered)

// btreeDegree is the degree of trees created by [BTreeSetOf].
const btreeDegree = 8

// BTreeSetOf returns a codec for the ASN.1 SET OF type backed by an ordered
// set. Elements are ordered by less, duplicates collapse when decoding and are
// encoded in ascending order according to less. A nil tree encodes as an empty
// set.
func BTreeSetOf[T any](c Codec[T], less btree.LessFunc[T]) Codec[*btree.BTreeG[T]] {
	return btreeSetCodec[T]{listCodec[T]{c, asn1view.TagSet}, less}
}

type btreeSetCodec[T any] struct {
	listCodec[T]
	less btree.LessFunc[T]
}

func (c btreeSetCodec[T]) Decode(a tlv.Any) (*btree.BTreeG[T], error) {
	ret := btree.NewG(btreeDegree, c.less)
	err := c.decode(a, func(v T) { ret.ReplaceOrInsert(v) })
	if err != nil {
		return nil, err
	}
	return ret, nil
}

// ascend returns a sequence of the elements of t in ascending order.
func ascend[T any](t *btree.BTreeG[T]) iter.Seq[T] {
	return func(yield func(T) bool) {
		if t != nil {
			t.Ascend(yield)
		}
	}
}

func (c btreeSetCodec[T]) EncodedLen(v *btree.BTreeG[T]) (int, error) {
	return c.encodedLen(ascend(v))
}

func (c btreeSetCodec[T]) EncodeContent(w Writer, v *btree.BTreeG[T]) error {
	for e := range ascend(v) {
		if err := writeValue(w, c.elem, e); err != nil {
			return err
		}
	}
	return nil
}

//endregion
