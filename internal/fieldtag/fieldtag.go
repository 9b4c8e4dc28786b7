// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package fieldtag parses `asn1:"..."` struct tags and walks the fields of
// struct types as seen by the go/types package.
package fieldtag

import (
	"errors"
	"fmt"
	"go/types"
	"iter"
	"math/bits"
	"reflect"
	"strconv"
	"strings"

	"codello.dev/asn1view"
)

// Params is the parsed representation of a struct tag.
type Params struct {
	Ignore     bool         // true iff this field should be ignored
	Tag        asn1view.Tag // the EXPLICIT or IMPLICIT class and tag number, valid if HasTag
	HasTag     bool         // true iff a tag number was given
	Optional   bool         // true iff the field is OPTIONAL
	Explicit   bool         // true iff an EXPLICIT tag is in use.
	Set        bool         // encode a slice as SET OF
	Enumerated bool         // encode an integer as ENUMERATED
}

var errExplicitNoTag = errors.New("explicit requires tag:x")

// Parse parses the value of an `asn1` struct tag. Parts are separated by
// commas. Unknown parts are an error.
func Parse(str string) (ret Params, err error) {
	if str == "" {
		return ret, nil
	}
	hasClass := false
	for part := range strings.SplitSeq(str, ",") {
		switch part = strings.TrimSpace(part); {
		case part == "-":
			ret.Ignore = true
		case part == "optional":
			ret.Optional = true
		case part == "explicit":
			ret.Explicit = true
		case part == "set":
			ret.Set = true
		case part == "enumerated":
			ret.Enumerated = true
		case strings.HasPrefix(part, "tag:"):
			i, err := strconv.ParseUint(part[4:], 10, bits.UintSize)
			if err != nil {
				return ret, fmt.Errorf("invalid tag number %q", part[4:])
			}
			if !hasClass {
				ret.Tag.Class = asn1view.ClassContextSpecific
			}
			ret.Tag.Number = uint(i)
			ret.HasTag = true
		case part == "application":
			ret.Tag.Class = asn1view.ClassApplication
			hasClass = true
		case part == "private":
			ret.Tag.Class = asn1view.ClassPrivate
			hasClass = true
		case part == "universal":
			ret.Tag.Class = asn1view.ClassUniversal
			hasClass = true
		default:
			return ret, fmt.Errorf("unknown option %q", part)
		}
	}
	if ret.Explicit && !ret.HasTag {
		return ret, errExplicitNoTag
	}
	if hasClass && !ret.HasTag {
		return ret, fmt.Errorf("class %s without tag:x", ret.Tag.Class)
	}
	return ret, nil
}

// A Field is an ASN.1 relevant field of a struct.
type Field struct {
	*types.Var

	// Path is the selector of the field relative to the struct value, for
	// example "Inner.Name" for a field promoted from an embedded struct.
	Path   string
	Params Params
	// Extensible is set for an embedded asn1view.Extensible.
	Extensible bool
}

// IsExtensible reports whether t is the asn1view.Extensible type.
func IsExtensible(t types.Type) bool {
	n, ok := types.Unalias(t).(*types.Named)
	if !ok {
		return false
	}
	obj := n.Obj()
	return obj.Pkg() != nil && obj.Pkg().Path() == "codello.dev/asn1view" && obj.Name() == "Extensible"
}

// StructFields returns a sequence over the fields of st. Struct fields with a
// `asn1:"-"` tag are ignored, as are non-exported struct fields. Fields of
// embedded structs without a tag are returned as if they were fields of the
// containing struct, except for asn1view.Extensible. An invalid struct tag
// stops the iteration with an error.
func StructFields(st *types.Struct) iter.Seq2[Field, error] {
	return func(yield func(Field, error) bool) {
		structFields(st, "", yield)
	}
}

func structFields(st *types.Struct, prefix string, yield func(Field, error) bool) bool {
	for i := range st.NumFields() {
		v := st.Field(i)
		params, err := Parse(reflect.StructTag(st.Tag(i)).Get("asn1"))
		if err != nil {
			yield(Field{Var: v, Path: prefix + v.Name()}, fmt.Errorf("field %s: %w", v.Name(), err))
			return false
		}
		if params.Ignore || (!v.Exported() && !v.Embedded()) {
			continue
		}
		if v.Embedded() && IsExtensible(v.Type()) {
			if !yield(Field{Var: v, Path: prefix + v.Name(), Extensible: true}, nil) {
				return false
			}
			continue
		}
		if inner, ok := v.Type().Underlying().(*types.Struct); ok && v.Embedded() && !params.HasTag {
			if !structFields(inner, prefix+v.Name()+".", yield) {
				return false
			}
			continue
		}
		if !v.Exported() {
			continue
		}
		if !yield(Field{Var: v, Path: prefix + v.Name(), Params: params}, nil) {
			return false
		}
	}
	return true
}
