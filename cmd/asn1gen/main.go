// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Asn1gen is a tool to automate the creation of ASN.1 codecs for Go struct
// types. Given the name of a struct type T, asn1gen creates a new self-contained
// Go source file declaring
//
//	var TCodec = codec.Struct[T](...)
//
// The codec encodes T as an ASN.1 SEQUENCE. Fields are mapped according to
// their types and `asn1:"..."` struct tags as described in the documentation
// of the asn1view package. No reflection happens at runtime.
//
// Typically asn1gen is invoked through go generate:
//
//	//go:generate go run codello.dev/asn1view/cmd/asn1gen --type Certificate,Extension
//
// By default the output is written to <pkg>_asn1.go in the package directory.
// The --output flag overrides this.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"golang.org/x/tools/go/packages"
)

var (
	typeNames = pflag.StringSliceP("type", "t", nil, "comma-separated list of struct type names; must be set")
	output    = pflag.StringP("output", "o", "", "output file name; default srcdir/<pkg>_asn1.go")
	buildTags = pflag.StringSlice("tags", nil, "comma-separated list of build tags to apply")
	debug     = pflag.Bool("debug", false, "log every generated field")
)

// usage is a replacement usage function for the flags package.
func usage() {
	fmt.Fprintf(os.Stderr, "Usage of asn1gen:\n")
	fmt.Fprintf(os.Stderr, "\tasn1gen [flags] --type T [directory]\n")
	fmt.Fprintf(os.Stderr, "Flags:\n")
	pflag.PrintDefaults()
}

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	pflag.Usage = usage
	pflag.Parse()
	if len(*typeNames) == 0 {
		pflag.Usage()
		os.Exit(2)
	}
	if *debug {
		logrus.SetLevel(logrus.DebugLevel)
	}

	patterns := pflag.Args()
	if len(patterns) == 0 {
		patterns = []string{"."}
	}
	pkg, err := loadPackage(patterns, *buildTags)
	if err != nil {
		logrus.Fatal(err)
	}

	src, err := generate(pkg.Types, *typeNames, strings.Join(os.Args[1:], " "))
	if err != nil {
		logrus.Fatal(err)
	}

	outputName := *output
	if outputName == "" {
		outputName = filepath.Join(filepath.Dir(pkg.GoFiles[0]), strings.ToLower(pkg.Name+"_asn1.go"))
	}
	if err = os.WriteFile(outputName, src, 0o644); err != nil {
		logrus.Fatalf("writing output: %s", err)
	}
	logrus.WithField("file", outputName).Infof("generated %d codecs", len(*typeNames))
}

// loadPackage loads the single package matching patterns.
func loadPackage(patterns []string, tags []string) (*packages.Package, error) {
	cfg := &packages.Config{
		Mode:       packages.NeedName | packages.NeedTypes | packages.NeedFiles,
		BuildFlags: []string{fmt.Sprintf("-tags=%s", strings.Join(tags, ","))},
		Logf:       logrus.Debugf,
	}
	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, err
	}
	if len(pkgs) != 1 {
		return nil, fmt.Errorf("%d packages matching %v", len(pkgs), patterns)
	}
	pkg := pkgs[0]
	// A previous version of the generated file may not compile anymore. The
	// type information is still usable for the struct types.
	for _, err := range pkg.Errors {
		logrus.Warn(err)
	}
	if pkg.Types == nil || len(pkg.GoFiles) == 0 {
		return nil, fmt.Errorf("no type information for %s", pkg.PkgPath)
	}
	return pkg, nil
}
