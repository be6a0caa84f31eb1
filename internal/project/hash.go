package project

import (
	"crypto/sha256"
	"fmt"
)

// Digest is a SHA-256 sum, the same shape as source.File.Hash.
type Digest [32]byte

// Combine folds parts into one digest. Swapping two parts changes the
// result.
func Combine(first Digest, rest ...Digest) Digest {
	buf := make([]byte, 0, len(first)*(1+len(rest)))
	buf = append(buf, first[:]...)
	for _, d := range rest {
		buf = append(buf, d[:]...)
	}
	return sha256.Sum256(buf)
}

// TargetDigest names one target configuration inside cache keys.
func TargetDigest(triple string, packStruct int) Digest {
	return sha256.Sum256(fmt.Appendf(nil, "%s\x00pack=%d", triple, packStruct))
}
