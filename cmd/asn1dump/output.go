// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Output formats.
const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
	formatCBOR = "cbor"
)

var formats = []string{formatText, formatJSON, formatYAML, formatCBOR}

// encMode writes CBOR using Core Deterministic Encoding, so equal reports
// produce identical bytes.
var encMode cbor.EncMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("asn1dump: CBOR encoder initialization failed: " + err.Error())
	}
}

// encode writes reports to w in the given format.
func encode(w io.Writer, format string, reports []*Report) error {
	switch format {
	case formatText:
		for _, r := range reports {
			if err := writeText(w, r); err != nil {
				return err
			}
		}
		return nil
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(reports)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(reports); err != nil {
			return err
		}
		return enc.Close()
	case formatCBOR:
		return encMode.NewEncoder(w).Encode(reports)
	}
	return errors.Errorf("unknown format %q", format)
}

// writeText writes r as an indented tree, one data value per line.
func writeText(w io.Writer, r *Report) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s blake3:%s\n", r.File, r.Digest)
	writeNodes(&sb, r.Values, 0)
	_, err := io.WriteString(w, sb.String())
	return err
}

func writeNodes(sb *strings.Builder, nodes []*Node, depth int) {
	for _, n := range nodes {
		fmt.Fprintf(sb, "%6d %s%s", n.Offset, strings.Repeat("  ", depth), n.Tag)
		if n.Constructed {
			sb.WriteString(" cons")
		} else {
			sb.WriteString(" prim")
		}
		if n.Length < 0 {
			sb.WriteString(" len=indef")
		} else {
			fmt.Fprintf(sb, " len=%d", n.Length)
		}
		if n.Type != "" {
			sb.WriteString(" " + n.Type)
		}
		if n.Value != "" {
			sb.WriteString(": " + n.Value)
		}
		sb.WriteByte('\n')
		writeNodes(sb, n.Children, depth+1)
	}
}
