// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fieldtag

import (
	"go/types"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codello.dev/asn1view"
)

func TestParse(t *testing.T) {
	tests := map[string]struct {
		str  string
		want Params
	}{
		"Empty":       {"", Params{}},
		"Ignore":      {"-", Params{Ignore: true}},
		"Optional":    {"optional", Params{Optional: true}},
		"Tag":         {"tag:3", Params{Tag: asn1view.ContextSpecific(3), HasTag: true}},
		"Explicit":    {"explicit,tag:0", Params{Tag: asn1view.ContextSpecific(0), HasTag: true, Explicit: true}},
		"Application": {"application,tag:5", Params{Tag: asn1view.Application(5), HasTag: true}},
		"ClassAfter":  {"tag:5,private", Params{Tag: asn1view.Private(5), HasTag: true}},
		"Universal":   {"universal,tag:19", Params{Tag: asn1view.Universal(19), HasTag: true}},
		"Set":         {"set,optional", Params{Set: true, Optional: true}},
		"Enumerated":  {"enumerated", Params{Enumerated: true}},
		"Spaces":      {"optional, tag:1", Params{Optional: true, Tag: asn1view.ContextSpecific(1), HasTag: true}},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := Parse(tt.str)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_Error(t *testing.T) {
	tests := map[string]string{
		"Unknown":       "omitempty",
		"BadNumber":     "tag:x",
		"NegativeTag":   "tag:-1",
		"ExplicitNoTag": "explicit",
		"ClassNoTag":    "application",
	}
	for name, str := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(str)
			assert.Error(t, err)
		})
	}
	_, err := Parse("explicit")
	assert.ErrorIs(t, err, errExplicitNoTag)
}

// newStruct builds a struct type. Missing tags are empty.
func newStruct(fields []*types.Var, tags ...string) *types.Struct {
	for len(tags) < len(fields) {
		tags = append(tags, "")
	}
	return types.NewStruct(fields, tags)
}

var (
	asn1Pkg    = types.NewPackage("codello.dev/asn1view", "asn1view")
	extensible = types.NewNamed(types.NewTypeName(0, asn1Pkg, "Extensible", nil), types.NewStruct(nil, nil), nil)
	localPkg   = types.NewPackage("example.com/p", "p")
	intType    = types.Typ[types.Int]
)

func field(name string, typ types.Type) *types.Var {
	return types.NewField(0, localPkg, name, typ, false)
}

func embedded(name string, typ types.Type) *types.Var {
	return types.NewField(0, localPkg, name, typ, true)
}

func TestStructFields(t *testing.T) {
	inner := types.NewNamed(types.NewTypeName(0, localPkg, "Inner", nil),
		newStruct([]*types.Var{field("C", intType), field("d", intType)}), nil)
	tests := map[string]struct {
		st   *types.Struct
		want []string
	}{
		"Simple": {newStruct([]*types.Var{field("A", intType), field("B", intType)}), []string{"A", "B"}},
		"Ignored": {
			newStruct([]*types.Var{field("A", intType), field("B", intType), field("C", intType)}, "", `asn1:"-"`),
			[]string{"A", "C"},
		},
		"NonExported": {newStruct([]*types.Var{field("a", intType), field("B", intType)}), []string{"B"}},
		"Embedded": {
			newStruct([]*types.Var{field("X", intType), embedded("Inner", inner)}),
			[]string{"X", "Inner.C"},
		},
		"EmbeddedTagged": {
			newStruct([]*types.Var{embedded("Inner", inner)}, `asn1:"tag:1"`),
			[]string{"Inner"},
		},
		"Extensible": {
			newStruct([]*types.Var{field("A", intType), embedded("Extensible", extensible)}),
			[]string{"A", "Extensible"},
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			var got []string
			for f, err := range StructFields(tt.st) {
				require.NoError(t, err)
				got = append(got, f.Path)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStructFields_Params(t *testing.T) {
	st := newStruct([]*types.Var{
		field("A", types.NewPointer(intType)),
		embedded("Extensible", extensible),
	}, `asn1:"optional,tag:2"`)
	var fields []Field
	for f, err := range StructFields(st) {
		require.NoError(t, err)
		fields = append(fields, f)
	}
	require.Len(t, fields, 2)
	assert.Equal(t, Params{Optional: true, Tag: asn1view.ContextSpecific(2), HasTag: true}, fields[0].Params)
	assert.False(t, fields[0].Extensible)
	assert.True(t, fields[1].Extensible)
	assert.True(t, IsExtensible(fields[1].Type()))
	assert.False(t, IsExtensible(intType))
}

func TestStructFields_Error(t *testing.T) {
	st := newStruct([]*types.Var{field("A", intType), field("B", intType), field("C", intType)}, "", `asn1:"bogus"`)
	n := 0
	var err error
	for _, err = range StructFields(st) {
		n++
		if err != nil {
			break
		}
	}
	assert.Equal(t, 2, n)
	assert.ErrorContains(t, err, "field B")
}
