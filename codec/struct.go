// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package codec

import (
	"errors"

	"codello.dev/asn1view"
	"codello.dev/asn1view/tlv"
)

var errExtraFields = errors.New("sequence has extra fields")

// Field is a component of a struct encoded as an ASN.1 SEQUENCE. Fields are
// created with [Required] and [Optional].
type Field[S any] interface {
	// Name returns the name of the field, usually the name of the struct field.
	Name() string

	decode(s *S, b []byte) ([]byte, error)
	check(b []byte) ([]byte, error)
	encodedLen(s *S) (int, error)
	encode(w Writer, s *S) error
}

// Required returns a field that must be present in every encoding. The ref
// function returns a pointer to the field within the struct.
func Required[S, F any](name string, ref func(*S) *F, c Codec[F]) Field[S] {
	return requiredField[S, F]{name, ref, c}
}

type requiredField[S, F any] struct {
	name string
	ref  func(*S) *F
	c    Codec[F]
}

func (f requiredField[S, F]) Name() string { return f.name }

func (f requiredField[S, F]) decode(s *S, b []byte) ([]byte, error) {
	v, rest, err := parse(f.c, b, tlv.BER)
	if err != nil {
		return b, err
	}
	*f.ref(s) = v
	return rest, nil
}

func (f requiredField[S, F]) check(b []byte) ([]byte, error) {
	return checkValue(f.c, b)
}

func (f requiredField[S, F]) encodedLen(s *S) (int, error) {
	return EncodedLen(f.c, *f.ref(s))
}

func (f requiredField[S, F]) encode(w Writer, s *S) error {
	return writeValue(w, f.c, *f.ref(s))
}

// Optional returns a field that may be absent from an encoding. A nil pointer
// represents an absent value. The ref function returns a pointer to the field
// within the struct. The value is detected by its tag, so the tags of
// consecutive optional fields must be distinct.
func Optional[S, F any](name string, ref func(*S) **F, c Codec[F]) Field[S] {
	return optionalField[S, F]{name, ref, c}
}

type optionalField[S, F any] struct {
	name string
	ref  func(*S) **F
	c    Codec[F]
}

func (f optionalField[S, F]) Name() string { return f.name }

func (f optionalField[S, F]) decode(s *S, b []byte) ([]byte, error) {
	v, ok, rest, err := parseOptional(f.c, b, tlv.BER)
	if err != nil {
		return b, err
	}
	if ok {
		*f.ref(s) = &v
	} else {
		*f.ref(s) = nil
	}
	return rest, nil
}

func (f optionalField[S, F]) check(b []byte) ([]byte, error) {
	return checkOptional(f.c, b)
}

func (f optionalField[S, F]) encodedLen(s *S) (int, error) {
	if v := *f.ref(s); v != nil {
		return EncodedLen(f.c, *v)
	}
	return 0, nil
}

func (f optionalField[S, F]) encode(w Writer, s *S) error {
	if v := *f.ref(s); v != nil {
		return writeValue(w, f.c, *v)
	}
	return nil
}

// StructCodec is a [Codec] for the struct type S encoded as an ASN.1 SEQUENCE.
// The fields are encoded in the order they were passed to [Struct].
type StructCodec[S any] struct {
	fields     []Field[S]
	extensible bool
}

// Struct returns a codec for the struct type S with the given fields.
func Struct[S any](fields ...Field[S]) *StructCodec[S] {
	return &StructCodec[S]{fields: fields}
}

// Extensible returns a copy of c that ignores data following the last field.
// This corresponds to an extension marker at the end of a SEQUENCE.
func (c *StructCodec[S]) Extensible() *StructCodec[S] {
	ext := *c
	ext.extensible = true
	return &ext
}

// Fields returns the fields of c.
func (c *StructCodec[S]) Fields() []Field[S] { return c.fields }

func (*StructCodec[S]) Tag() asn1view.Tag { return asn1view.Universal(asn1view.TagSequence) }
func (*StructCodec[S]) Constructed() bool { return true }

// Decode decodes the fields of a in order. Each field consumes a prefix of the
// remaining content.
func (c *StructCodec[S]) Decode(a tlv.Any) (S, error) {
	var s S
	if err := a.AssertConstructed(); err != nil {
		return s, err
	}
	rest := a.Content
	for _, f := range c.fields {
		var err error
		if rest, err = f.decode(&s, rest); err != nil {
			var zero S
			return zero, err
		}
	}
	if len(rest) > 0 && !c.extensible {
		var zero S
		return zero, tlv.NewError(tlv.TrailingData, rest, a.Tag, errExtraFields)
	}
	return s, nil
}

// Check checks the fields of a in order without decoding them.
func (c *StructCodec[S]) Check(a tlv.Any) error {
	if err := a.AssertConstructed(); err != nil {
		return err
	}
	rest := a.Content
	for _, f := range c.fields {
		var err error
		if rest, err = f.check(rest); err != nil {
			return err
		}
	}
	if len(rest) == 0 {
		return nil
	}
	if !c.extensible {
		return tlv.NewError(tlv.TrailingData, rest, a.Tag, errExtraFields)
	}
	// extensions are unknown but must still be well-formed DER
	for ext, err := range tlv.Elements(rest, tlv.DER) {
		if err == nil {
			err = tlv.CheckTree(ext)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (c *StructCodec[S]) EncodedLen(v S) (int, error) {
	n := 0
	for _, f := range c.fields {
		l, err := f.encodedLen(&v)
		if err == nil {
			n, err = addLen(c.Tag(), n, l)
		}
		if err != nil {
			return 0, err
		}
	}
	return n, nil
}

func (c *StructCodec[S]) EncodeContent(w Writer, v S) error {
	for _, f := range c.fields {
		if err := f.encode(w, &v); err != nil {
			return err
		}
	}
	return nil
}
