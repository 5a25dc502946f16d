// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package demangle

// Fuzz is the go-fuzz entry point: it runs the demangler over data and
// tells go-fuzz whether it produced output worth prioritizing as a seed
// for further mutation. The grammar is defined over arbitrary bytes, not
// valid UTF-8, so data is fed to Demangle unmodified.
func Fuzz(data []byte) int {
	_, err := Demangle(data, None)
	if err != nil {
		return 0
	}
	return 1
}
