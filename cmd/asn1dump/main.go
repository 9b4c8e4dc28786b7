// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Asn1dump prints the tree of data values in BER and DER encoded files.
//
// Usage:
//
//	asn1dump [--profile ber|der] [--format text|json|yaml|cbor] file...
//
// A file name of "-" reads from standard input. See asn1dump --help for all
// flags.
package main

import (
	"os"

	"github.com/sirupsen/logrus"
)

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	if err := newRootCmd().Execute(); err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}
