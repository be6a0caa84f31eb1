// Package fuzztests houses Go fuzz harnesses for the input facing parts of
// ccabi: declaration file loading and integer literal parsing. They guard
// against panics and hangs on arbitrary input.
//
// Seeds come from testdata/abi and a few fixed inputs. The package has no
// non-test code besides the seed helpers.
package fuzztests
