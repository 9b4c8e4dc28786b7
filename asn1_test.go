// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asn1view

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func ExampleTag_String() {
	fmt.Println(Application(17))
	fmt.Println(ContextSpecific(8))
	fmt.Println(Universal(TagInteger))
	fmt.Println(Private(300))
	// Output:
	// [APPLICATION 17]
	// [8]
	// [UNIVERSAL 2]
	// [PRIVATE 300]
}

func ExampleExtensible() {
	type MyType struct {
		Str string
		Extensible

		private int    // ok, unexported field
		Ignored string `asn1:"-"` // ok, ignored
		// Public int // not ok, cannot appear after Extensible
	}
}

func TestClass_IsValid(t *testing.T) {
	for _, c := range []Class{ClassUniversal, ClassApplication, ClassContextSpecific, ClassPrivate} {
		assert.True(t, c.IsValid(), c.String())
	}
	assert.False(t, Class(4).IsValid())
	assert.Equal(t, "Class(4)", Class(4).String())
}
