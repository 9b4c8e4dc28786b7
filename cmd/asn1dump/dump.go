// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"encoding/hex"
	"math/big"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/zeebo/blake3"

	"codello.dev/asn1view"
	"codello.dev/asn1view/codec"
	"codello.dev/asn1view/tlv"
)

var errTooDeep = errors.New("nesting too deep")

// Report is the dump of a single input file.
type Report struct {
	File string `json:"file" yaml:"file"`
	// Digest is the hex encoded BLAKE3 digest of the input after all headers
	// were rewritten in their minimal definite-length form. BER and DER
	// encodings of the same values have the same digest.
	Digest string  `json:"blake3" yaml:"blake3"`
	Values []*Node `json:"values" yaml:"values"`
}

// Node is a data value found in the input.
type Node struct {
	Offset      int    `json:"offset" yaml:"offset"`
	HeaderLen   int    `json:"headerLength" yaml:"headerLength"`
	Tag         string `json:"tag" yaml:"tag"`
	Constructed bool   `json:"constructed" yaml:"constructed"`
	// Length is -1 for the indefinite-length encoding.
	Length   int     `json:"length" yaml:"length"`
	Type     string  `json:"type,omitempty" yaml:"type,omitempty"`
	Value    string  `json:"value,omitempty" yaml:"value,omitempty"`
	Children []*Node `json:"children,omitempty" yaml:"children,omitempty"`
}

// dumper builds reports under a profile.
type dumper struct {
	profile tlv.Profile
}

// dump parses all data values in data. Error offsets are relative to data.
func (d dumper) dump(name string, data []byte) (*Report, error) {
	nodes, canonical, err := d.values(data, 0, 0)
	if err != nil {
		return nil, tlv.Locate(err, data)
	}
	sum := blake3.Sum256(canonical)
	return &Report{File: name, Digest: hex.EncodeToString(sum[:]), Values: nodes}, nil
}

// values parses the sequence of data values in b. The first value starts at
// offset base of the input. The canonical encoding of the values is returned
// alongside the nodes.
func (d dumper) values(b []byte, base, depth int) (nodes []*Node, canonical []byte, err error) {
	for pos := 0; pos < len(b); {
		a, rest, err := tlv.ParseAny(b[pos:], d.profile)
		if err != nil {
			return nil, nil, err
		}
		n := len(b) - pos - len(rest)
		node := &Node{
			Offset:      base + pos,
			HeaderLen:   n - len(a.Content),
			Tag:         a.Tag.String(),
			Constructed: a.Constructed,
			Length:      a.Length,
			Type:        typeName(a.Tag),
		}
		if a.Length == tlv.LengthIndefinite {
			node.HeaderLen -= 2 // end-of-contents
		}

		if node.Value, err = d.summary(a); err != nil {
			return nil, nil, err
		}
		if a.Constructed {
			if depth >= tlv.MaxDepth {
				return nil, nil, a.Errorf(tlv.MalformedHeader, "%w", errTooDeep)
			}
			var content []byte
			node.Children, content, err = d.values(a.Content, node.Offset+node.HeaderLen, depth+1)
			if err != nil {
				return nil, nil, err
			}
			h := tlv.Header{Tag: a.Tag, Constructed: true, Length: len(content)}
			canonical = append(h.AppendTo(canonical), content...)
		} else {
			canonical = a.AppendTo(canonical)
		}
		nodes = append(nodes, node)
		pos += n
	}
	return nodes, canonical, nil
}

// summary returns a human-readable representation of a. Universal types are
// decoded with their codec, which includes the segments of constructed strings.
// Under DER the value must be canonical. Other primitive values are shown as
// hex.
func (d dumper) summary(a tlv.Any) (string, error) {
	if a.Tag.Class != asn1view.ClassUniversal {
		return hexContent(a), nil
	}
	switch a.Tag.Number {
	case asn1view.TagBoolean:
		return leaf(d.profile, a, codec.Boolean, strconv.FormatBool)
	case asn1view.TagInteger:
		return leaf(d.profile, a, codec.BigInt, (*big.Int).String)
	case asn1view.TagEnumerated:
		return leaf(d.profile, a, codec.Implicit(a.Tag, codec.BigInt), (*big.Int).String)
	case asn1view.TagBitString:
		return leaf(d.profile, a, codec.BitString, asn1view.BitString.String)
	case asn1view.TagOctetString:
		return leaf(d.profile, a, codec.OctetString, hex.EncodeToString)
	case asn1view.TagNull:
		return leaf(d.profile, a, codec.Null, func(asn1view.Null) string { return "NULL" })
	case asn1view.TagOID:
		return leaf(d.profile, a, codec.ObjectIdentifier, asn1view.ObjectIdentifier.String)
	case asn1view.TagUTF8String:
		return leaf(d.profile, a, codec.UTF8String, func(s string) string { return s })
	case asn1view.TagNumericString:
		return leaf(d.profile, a, codec.NumericString, func(s asn1view.NumericString) string { return string(s) })
	case asn1view.TagPrintableString:
		return leaf(d.profile, a, codec.PrintableString, func(s asn1view.PrintableString) string { return string(s) })
	case asn1view.TagIA5String:
		return leaf(d.profile, a, codec.IA5String, func(s asn1view.IA5String) string { return string(s) })
	case asn1view.TagVisibleString:
		return leaf(d.profile, a, codec.VisibleString, func(s asn1view.VisibleString) string { return string(s) })
	case asn1view.TagUTCTime:
		return leaf(d.profile, a, codec.UTCTime, func(t asn1view.UTCTime) string {
			return time.Time(t).Format(time.RFC3339)
		})
	case asn1view.TagGeneralizedTime:
		return leaf(d.profile, a, codec.GeneralizedTime, func(t asn1view.GeneralizedTime) string {
			return time.Time(t).Format(time.RFC3339Nano)
		})
	}
	return hexContent(a), nil
}

func hexContent(a tlv.Any) string {
	if a.Constructed {
		return ""
	}
	return hex.EncodeToString(a.Content)
}

// leaf decodes a with c and formats the result.
func leaf[T any](p tlv.Profile, a tlv.Any, c codec.Codec[T], format func(T) string) (string, error) {
	if p == tlv.DER {
		if err := codec.CheckDER(c, a); err != nil {
			return "", err
		}
	}
	v, err := c.Decode(a)
	if err != nil {
		return "", err
	}
	return format(v), nil
}

var typeNames = map[uint]string{
	asn1view.TagBoolean:          "BOOLEAN",
	asn1view.TagInteger:          "INTEGER",
	asn1view.TagBitString:        "BIT STRING",
	asn1view.TagOctetString:      "OCTET STRING",
	asn1view.TagNull:             "NULL",
	asn1view.TagOID:              "OBJECT IDENTIFIER",
	asn1view.TagObjectDescriptor: "ObjectDescriptor",
	asn1view.TagExternal:         "EXTERNAL",
	asn1view.TagReal:             "REAL",
	asn1view.TagEnumerated:       "ENUMERATED",
	asn1view.TagEmbeddedPDV:      "EMBEDDED PDV",
	asn1view.TagUTF8String:       "UTF8String",
	asn1view.TagRelativeOID:      "RELATIVE-OID",
	asn1view.TagTime:             "TIME",
	asn1view.TagSequence:         "SEQUENCE",
	asn1view.TagSet:              "SET",
	asn1view.TagNumericString:    "NumericString",
	asn1view.TagPrintableString:  "PrintableString",
	asn1view.TagTeletexString:    "TeletexString",
	asn1view.TagVideotexString:   "VideotexString",
	asn1view.TagIA5String:        "IA5String",
	asn1view.TagUTCTime:          "UTCTime",
	asn1view.TagGeneralizedTime:  "GeneralizedTime",
	asn1view.TagGraphicString:    "GraphicString",
	asn1view.TagVisibleString:    "VisibleString",
	asn1view.TagGeneralString:    "GeneralString",
	asn1view.TagUniversalString:  "UniversalString",
	asn1view.TagCharacterString:  "CHARACTER STRING",
	asn1view.TagBMPString:        "BMPString",
	asn1view.TagDate:             "DATE",
	asn1view.TagTimeOfDay:        "TIME-OF-DAY",
	asn1view.TagDateTime:         "DATE-TIME",
	asn1view.TagDuration:         "DURATION",
}

// typeName returns the name of the universal type identified by tag or an
// empty string.
func typeName(tag asn1view.Tag) string {
	if tag.Class != asn1view.ClassUniversal {
		return ""
	}
	return typeNames[tag.Number]
}
