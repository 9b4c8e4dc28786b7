// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tlv

import (
	"iter"
)

// Elements returns a sequence over the data values that make up content, which
// is usually the Content of a constructed [Any]. Each step parses one value
// under the profile p. If a value cannot be parsed, the sequence yields the
// error and stops.
//
// The sequence is a single pass over content: values are parsed as the
// sequence advances and iterating it again continues after the last value
// that was consumed.
func Elements(content []byte, p Profile) iter.Seq2[Any, error] {
	input := content
	return func(yield func(Any, error) bool) {
		for len(content) > 0 {
			a, rest, err := parseAny(content, p)
			if err != nil {
				yield(Any{}, Locate(err, input))
				return
			}
			content = rest
			if !yield(a, nil) {
				return
			}
		}
	}
}

// CheckTree reports whether a and all values nested in it satisfy the DER rules
// for headers. Primitive content is not interpreted. CheckTree visits at most
// [MaxDepth] levels of constructed values.
func CheckTree(a Any) error {
	return checkTree(a, 0)
}

func checkTree(a Any, depth int) error {
	if err := a.CheckCanonical(); err != nil {
		return err
	}
	if !a.Constructed {
		return nil
	}
	if depth >= MaxDepth {
		return a.Errorf(MalformedHeader, "%w", errTooDeep)
	}
	for child, err := range Elements(a.Content, DER) {
		if err != nil {
			return err
		}
		if err = checkTree(child, depth+1); err != nil {
			return err
		}
	}
	return nil
}
