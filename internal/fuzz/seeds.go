package fuzztests

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const (
	maxSeedBytes = 64 << 10
	maxFuzzInput = 1 << 16
)

// seedDir holds the sample declaration files.
var seedDir = filepath.Join("..", "..", "testdata", "abi")

// seedFiles returns the declaration files under seedDir, nil if there are
// none.
func seedFiles() []string {
	var files []string
	_ = filepath.WalkDir(seedDir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil || d.IsDir() {
			return nil
		}
		if strings.HasSuffix(path, ".abi.toml") {
			files = append(files, path)
		}
		return nil
	})
	return files
}

func addDeclSeeds(f *testing.F) {
	for _, path := range seedFiles() {
		// #nosec G304 -- path comes from the repository testdata walk
		src, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		f.Add(clampSeed(src))
	}
	f.Add([]byte{})
	f.Add([]byte("[[struct]]\nname = \"s\"\nmembers = [{ name = \"a\", type = \"int\" }]\n"))
	f.Add([]byte("[[struct]]\nname = \"a\"\nmembers = [{ name = \"b\", type = \"struct b\" }]\n[[struct]]\nname = \"b\"\nmembers = [{ name = \"a\", type = \"struct a\" }]\n"))
	f.Add([]byte("[[enum]]\nname = \"e\"\nmode = \"TI\"\nvalues = [{ name = \"X\", value = \"-0x8000_0000_0000_0000_0000_0000_0000_0000\" }]\n"))
	f.Add([]byte("[[union]]\nname = \"u\"\naligned = 3\nmembers = [{ name = \"x\", type = \"char[0x7fffffffffffffff][16]\" }]\n"))
}

func clampSeed(src []byte) []byte {
	if len(src) <= maxSeedBytes {
		return append([]byte(nil), src...)
	}
	return append([]byte(nil), src[:maxSeedBytes]...)
}

func clampInput(input []byte) []byte {
	if len(input) > maxFuzzInput {
		return append([]byte(nil), input[:maxFuzzInput]...)
	}
	return append([]byte(nil), input...)
}
