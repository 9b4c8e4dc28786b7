// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package codec

import (
	"unicode/utf8"

	"codello.dev/asn1view"
	"codello.dev/asn1view/tlv"
)

// Codecs for the ASN.1 restricted character string types. Under BER strings
// may use the constructed encoding, DER requires the primitive encoding.
// Decoding and encoding fail if a string contains characters outside the
// character set of its type.
var (
	UTF8String      Codec[string]                   = stringCodec[string]{primitive(asn1view.TagUTF8String), utf8.ValidString}
	NumericString   Codec[asn1view.NumericString]   = stringCodec[asn1view.NumericString]{primitive(asn1view.TagNumericString), asn1view.NumericString.IsValid}
	PrintableString Codec[asn1view.PrintableString] = stringCodec[asn1view.PrintableString]{primitive(asn1view.TagPrintableString), asn1view.PrintableString.IsValid}
	IA5String       Codec[asn1view.IA5String]       = stringCodec[asn1view.IA5String]{primitive(asn1view.TagIA5String), asn1view.IA5String.IsValid}
	VisibleString   Codec[asn1view.VisibleString]   = stringCodec[asn1view.VisibleString]{primitive(asn1view.TagVisibleString), asn1view.VisibleString.IsValid}
)

// stringCodec implements a string type whose encoding are the bytes of the Go
// string.
type stringCodec[T ~string] struct {
	primitive
	valid func(T) bool
}

func (c stringCodec[T]) Decode(a tlv.Any) (T, error) {
	b, err := stringContent(a)
	if err != nil {
		return "", err
	}
	s := T(b)
	if !c.valid(s) {
		return "", a.Errorf(tlv.InvalidValueEncoding, "invalid character in %s", c.Tag())
	}
	return s, nil
}

func (c stringCodec[T]) Check(a tlv.Any) error {
	if a.Constructed {
		return a.Errorf(tlv.NotCanonical, "constructed string")
	}
	if !c.valid(T(a.Content)) {
		return a.Errorf(tlv.InvalidValueEncoding, "invalid character in %s", c.Tag())
	}
	return nil
}

func (c stringCodec[T]) EncodedLen(v T) (int, error) {
	if !c.valid(v) {
		return 0, encodeError(c.Tag(), "invalid character in string")
	}
	return len(v), nil
}

func (c stringCodec[T]) EncodeContent(w Writer, v T) error {
	_, err := w.Write([]byte(v))
	return err
}
