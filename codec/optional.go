// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package codec

import (
	"codello.dev/asn1view/tlv"
)

// ParseOptional parses an optional value of c from the beginning of b. If b is
// empty or the next value does not have a tag accepted by c, the value is
// absent: ok is false and rest is b. A header that cannot be parsed is an
// error, it is never treated as an absent value.
//
// The header is inspected without consuming b, so when the value is absent the
// same input can be offered to the codec of the next field.
func ParseOptional[T any](c Codec[T], b []byte, p tlv.Profile) (v T, ok bool, rest []byte, err error) {
	v, ok, rest, err = parseOptional(c, b, p)
	return v, ok, rest, tlv.Locate(err, b)
}

func parseOptional[T any](c Codec[T], b []byte, p tlv.Profile) (v T, ok bool, rest []byte, err error) {
	if len(b) == 0 {
		return v, false, b, nil
	}
	h, _, err := tlv.ParseHeader(b)
	if err != nil {
		return v, false, b, err
	}
	if !matches(c, h.Tag) {
		return v, false, b, nil
	}
	v, rest, err = parse(c, b, p)
	return v, err == nil, rest, err
}

// checkOptional is the DER check of an optional value. It returns the
// remaining input.
func checkOptional[T any](c Codec[T], b []byte) ([]byte, error) {
	if len(b) == 0 {
		return b, nil
	}
	h, _, err := tlv.ParseHeader(b)
	if err != nil {
		return b, err
	}
	if !matches(c, h.Tag) {
		return b, nil
	}
	return checkValue(c, b)
}

// checkValue parses a value of c from b under DER and checks it without
// decoding. It returns the remaining input.
func checkValue[T any](c Codec[T], b []byte) ([]byte, error) {
	a, rest, err := tlv.ParseAny(b, tlv.DER)
	if err == nil {
		err = assertTag(c, a)
	}
	if err == nil {
		err = c.Check(a)
	}
	if err != nil {
		return b, err
	}
	return rest, nil
}
