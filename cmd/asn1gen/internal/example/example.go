// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package example declares a certificate-like data model whose codecs are
// generated by asn1gen. The generated file is committed and compiled with the
// rest of the module.
package example

import (
	"math/big"

	"codello.dev/asn1view"
)

//go:generate go run codello.dev/asn1view/cmd/asn1gen --type Validity,Extension,Certificate

type Validity struct {
	NotBefore asn1view.UTCTime
	NotAfter  asn1view.GeneralizedTime
}

type Extension struct {
	ID       asn1view.ObjectIdentifier
	Critical *bool `asn1:"optional"`
	Value    []byte
}

type Version int

// Status of a certificate. Encoded as ENUMERATED.
type Status uint8

const (
	StatusGood Status = iota
	StatusRevoked
	StatusUnknown
)

type Certificate struct {
	Version    *Version `asn1:"optional,explicit,tag:0"`
	Serial     *big.Int
	Issuer     asn1view.PrintableString
	Validity   Validity
	Usage      asn1view.BitString   `asn1:"tag:1"`
	Extensions *[]Extension         `asn1:"optional,explicit,tag:3"`
	Aliases    asn1view.Set[string] `asn1:"tag:4"`
	Ports      []uint16             `asn1:"set"`
	Status     Status               `asn1:"enumerated"`
	asn1view.Extensible
}
