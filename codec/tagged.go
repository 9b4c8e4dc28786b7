// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package codec

import (
	"errors"

	"codello.dev/asn1view"
	"codello.dev/asn1view/tlv"
)

var errMultipleComponents = errors.New("explicit type has multiple components")

// Explicit returns a codec for an explicitly tagged type. The encoding is a
// constructed value with the given tag, its content is the complete encoding
// of a value of inner.
func Explicit[T any](tag asn1view.Tag, inner Codec[T]) Codec[T] {
	return explicitCodec[T]{tag, inner}
}

type explicitCodec[T any] struct {
	tag   asn1view.Tag
	inner Codec[T]
}

func (c explicitCodec[T]) Tag() asn1view.Tag { return c.tag }
func (explicitCodec[T]) Constructed() bool   { return true }

func (c explicitCodec[T]) Decode(a tlv.Any) (T, error) {
	var zero T
	if err := a.AssertConstructed(); err != nil {
		return zero, err
	}
	v, rest, err := parse(c.inner, a.Content, tlv.BER)
	if err != nil {
		return zero, err
	}
	if len(rest) > 0 {
		return zero, tlv.NewError(tlv.TrailingData, rest, a.Tag, errMultipleComponents)
	}
	return v, nil
}

func (c explicitCodec[T]) Check(a tlv.Any) error {
	if err := a.AssertConstructed(); err != nil {
		return err
	}
	rest, err := checkValue(c.inner, a.Content)
	if err != nil {
		return err
	}
	if len(rest) > 0 {
		return tlv.NewError(tlv.TrailingData, rest, a.Tag, errMultipleComponents)
	}
	return nil
}

func (c explicitCodec[T]) EncodedLen(v T) (int, error) {
	return EncodedLen(c.inner, v)
}

func (c explicitCodec[T]) EncodeContent(w Writer, v T) error {
	return writeValue(w, c.inner, v)
}

// Implicit returns a codec for an implicitly tagged type. The encoding is the
// encoding of inner with its tag replaced by tag.
func Implicit[T any](tag asn1view.Tag, inner Codec[T]) Codec[T] {
	return implicitCodec[T]{tag, inner}
}

type implicitCodec[T any] struct {
	tag   asn1view.Tag
	inner Codec[T]
}

func (c implicitCodec[T]) Tag() asn1view.Tag {
	return c.tag
}

func (c implicitCodec[T]) Constructed() bool {
	return c.inner.Constructed()
}

func (c implicitCodec[T]) Decode(a tlv.Any) (T, error) {
	return c.inner.Decode(a)
}

func (c implicitCodec[T]) Check(a tlv.Any) error {
	return c.inner.Check(a)
}

func (c implicitCodec[T]) EncodedLen(v T) (int, error) {
	return c.inner.EncodedLen(v)
}

func (c implicitCodec[T]) EncodeContent(w Writer, v T) error {
	return c.inner.EncodeContent(w, v)
}

func (c implicitCodec[T]) valueTag(v T) (asn1view.Tag, bool) {
	return c.tag, header(c.inner, v, 0).Constructed
}
