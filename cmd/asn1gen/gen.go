// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"fmt"
	"go/format"
	"go/types"
	"maps"
	"slices"
	"strconv"

	"github.com/sirupsen/logrus"

	"codello.dev/asn1view"
	"codello.dev/asn1view/internal/fieldtag"
)

const (
	asn1viewPath = "codello.dev/asn1view"
	codecPath    = "codello.dev/asn1view/codec"
	tlvPath      = "codello.dev/asn1view/tlv"
)

// asn1viewCodecs maps types of the asn1view package to their codec variables.
var asn1viewCodecs = map[string]string{
	"BitString":        "BitString",
	"Null":             "Null",
	"ObjectIdentifier": "ObjectIdentifier",
	"UTCTime":          "UTCTime",
	"GeneralizedTime":  "GeneralizedTime",
	"NumericString":    "NumericString",
	"PrintableString":  "PrintableString",
	"IA5String":        "IA5String",
	"VisibleString":    "VisibleString",
}

// intCodecs maps predeclared integer types to their codec variables.
var intCodecs = map[types.BasicKind]string{
	types.Int:    "Int",
	types.Int8:   "Int8",
	types.Int16:  "Int16",
	types.Int32:  "Int32",
	types.Int64:  "Int64",
	types.Uint:   "Uint",
	types.Uint8:  "Uint8",
	types.Uint16: "Uint16",
	types.Uint32: "Uint32",
	types.Uint64: "Uint64",
}

// generator holds the state of the analysis of a single package.
type generator struct {
	pkg     *types.Package
	imports map[string]string // import path to package name
	current *types.TypeName
	buf     bytes.Buffer
}

// generate returns the formatted source of a file declaring codecs for the
// named struct types in pkg. args is recorded in the header of the file.
func generate(pkg *types.Package, typeNames []string, args string) ([]byte, error) {
	g := &generator{pkg: pkg, imports: map[string]string{codecPath: "codec"}}
	for _, name := range typeNames {
		logrus.WithField("type", name).Debug("generating codec")
		if err := g.generate(name); err != nil {
			return nil, fmt.Errorf("type %s: %w", name, err)
		}
	}

	var out bytes.Buffer
	fmt.Fprintf(&out, "// Code generated by \"asn1gen %s\"; DO NOT EDIT.\n\n", args)
	fmt.Fprintf(&out, "package %s\n\n", pkg.Name())
	out.WriteString("import (\n")
	for _, path := range slices.Sorted(maps.Keys(g.imports)) {
		fmt.Fprintf(&out, "\t%s\n", strconv.Quote(path))
	}
	out.WriteString(")\n")
	out.Write(g.buf.Bytes())

	src, err := format.Source(out.Bytes())
	if err != nil {
		// Should never happen, but can arise when developing this code.
		logrus.WithError(err).Warn("generated invalid Go code")
		return out.Bytes(), err
	}
	return src, nil
}

func (g *generator) printf(format string, args ...any) {
	fmt.Fprintf(&g.buf, format, args...)
}

// generate writes the codec variable for the struct type name.
func (g *generator) generate(name string) error {
	tn, ok := g.pkg.Scope().Lookup(name).(*types.TypeName)
	if !ok {
		return fmt.Errorf("no type %s in package %s", name, g.pkg.Path())
	}
	named, ok := types.Unalias(tn.Type()).(*types.Named)
	if !ok {
		return fmt.Errorf("%s is not a defined type", name)
	}
	if named.TypeParams().Len() > 0 {
		return fmt.Errorf("generic types are not supported")
	}
	st, ok := named.Underlying().(*types.Struct)
	if !ok {
		return fmt.Errorf("%s is not a struct type", name)
	}
	g.current = tn

	var body bytes.Buffer
	extensible := false
	for f, err := range fieldtag.StructFields(st) {
		if err != nil {
			return err
		}
		if extensible {
			return fmt.Errorf("field %s follows the extension marker", f.Name())
		}
		if f.Extensible {
			extensible = true
			continue
		}
		line, err := g.field(name, f)
		if err != nil {
			return fmt.Errorf("field %s: %w", f.Name(), err)
		}
		logrus.WithField("type", name).WithField("field", f.Path).Debug(line)
		body.WriteString("\t" + line + ",\n")
	}

	g.printf("\n// %sCodec is the ASN.1 codec for the %s type.\n", name, name)
	g.printf("var %sCodec = codec.Struct[%s](\n", name, name)
	g.buf.Write(body.Bytes())
	if extensible {
		g.printf(").Extensible()\n")
	} else {
		g.printf(")\n")
	}
	return nil
}

// field returns the expression of the codec.Field for f of the struct type s.
func (g *generator) field(s string, f fieldtag.Field) (string, error) {
	t := f.Type()
	if !f.Params.Optional {
		c, err := g.codecExpr(t, f.Params)
		if err != nil {
			return "", err
		}
		ts := g.typeString(t)
		return fmt.Sprintf("codec.Required[%s, %s](%q, func(v *%s) *%s { return &v.%s }, %s)",
			s, ts, f.Name(), s, ts, f.Path, c), nil
	}
	ptr, ok := t.Underlying().(*types.Pointer)
	if !ok || !types.Identical(t, types.NewPointer(ptr.Elem())) {
		return "", fmt.Errorf("optional field must be a pointer, got %s", t)
	}
	c, err := g.codecExpr(ptr.Elem(), f.Params)
	if err != nil {
		return "", err
	}
	ts := g.typeString(ptr.Elem())
	return fmt.Sprintf("codec.Optional[%s, %s](%q, func(v *%s) **%s { return &v.%s }, %s)",
		s, ts, f.Name(), s, ts, f.Path, c), nil
}

// codecExpr returns the codec expression for values of type t, honoring the
// tag given in p.
func (g *generator) codecExpr(t types.Type, p fieldtag.Params) (string, error) {
	c, err := g.baseExpr(t, p)
	if err != nil || !p.HasTag {
		return c, err
	}
	wrapper := "Implicit"
	if p.Explicit {
		wrapper = "Explicit"
	}
	return fmt.Sprintf("codec.%s[%s](%s, %s)", wrapper, g.typeString(t), g.tagExpr(p.Tag), c), nil
}

// tagExpr returns the Go expression of tag.
func (g *generator) tagExpr(tag asn1view.Tag) string {
	g.imports[asn1viewPath] = "asn1view"
	var fn string
	switch tag.Class {
	case asn1view.ClassUniversal:
		fn = "Universal"
	case asn1view.ClassApplication:
		fn = "Application"
	case asn1view.ClassPrivate:
		fn = "Private"
	default:
		fn = "ContextSpecific"
	}
	return fmt.Sprintf("asn1view.%s(%d)", fn, tag.Number)
}

// baseExpr returns the codec expression for the intrinsic type of t.
func (g *generator) baseExpr(t types.Type, p fieldtag.Params) (string, error) {
	if p.Enumerated {
		if b, ok := t.Underlying().(*types.Basic); !ok || b.Info()&types.IsInteger == 0 {
			return "", fmt.Errorf("enumerated requires an integer type, got %s", t)
		}
		return fmt.Sprintf("codec.Enumerated[%s]()", g.typeString(t)), nil
	}

	if named, ok := types.Unalias(t).(*types.Named); ok {
		obj := named.Obj()
		switch path := pkgPath(obj); {
		case path == asn1viewPath && asn1viewCodecs[obj.Name()] != "":
			return "codec." + asn1viewCodecs[obj.Name()], nil
		case path == asn1viewPath && obj.Name() == "Set":
			elem := named.TypeArgs().At(0)
			c, err := g.baseExpr(elem, fieldtag.Params{})
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("codec.HashSetOf[%s](%s)", g.typeString(elem), c), nil
		case path == tlvPath && obj.Name() == "Any":
			return "codec.RawValue", nil
		}
		if _, ok := named.Underlying().(*types.Struct); ok {
			if obj == g.current {
				return "", fmt.Errorf("recursive type %s", obj.Name())
			}
			if obj.Pkg() == nil || obj.Pkg() == g.pkg {
				return obj.Name() + "Codec", nil
			}
			return g.qualifier(obj.Pkg()) + "." + obj.Name() + "Codec", nil
		}
	}

	switch u := t.Underlying().(type) {
	case *types.Basic:
		switch {
		case types.Identical(t, types.Typ[types.Bool]):
			return "codec.Boolean", nil
		case types.Identical(t, types.Typ[types.String]):
			return "codec.UTF8String", nil
		case u.Info()&types.IsInteger != 0:
			if c, ok := intCodecs[u.Kind()]; ok && types.Identical(t, u) {
				return "codec." + c, nil
			}
			return fmt.Sprintf("codec.Integer[%s]()", g.typeString(t)), nil
		}
	case *types.Slice:
		if !types.Identical(t, types.NewSlice(u.Elem())) {
			break
		}
		if types.Identical(u.Elem(), types.Typ[types.Byte]) && !p.Set {
			return "codec.OctetString", nil
		}
		c, err := g.baseExpr(u.Elem(), fieldtag.Params{})
		if err != nil {
			return "", err
		}
		fn := "SequenceOf"
		if p.Set {
			fn = "SetOf"
		}
		return fmt.Sprintf("codec.%s[%s](%s)", fn, g.typeString(u.Elem()), c), nil
	case *types.Pointer:
		if n, ok := types.Unalias(u.Elem()).(*types.Named); ok && pkgPath(n.Obj()) == "math/big" && n.Obj().Name() == "Int" {
			return "codec.BigInt", nil
		}
	}
	return "", fmt.Errorf("unsupported type %s", t)
}

func pkgPath(obj types.Object) string {
	if obj.Pkg() == nil {
		return ""
	}
	return obj.Pkg().Path()
}

// qualifier records the import of p and returns its name. The package being
// generated is not qualified.
func (g *generator) qualifier(p *types.Package) string {
	if p == g.pkg {
		return ""
	}
	g.imports[p.Path()] = p.Name()
	return p.Name()
}

func (g *generator) typeString(t types.Type) string {
	return types.TypeString(t, g.qualifier)
}
