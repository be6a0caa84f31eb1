package project

import (
	"errors"
	"fmt"
	"iter"
	"os"
	"path/filepath"
)

// FindConfig looks for ccabi.toml in startDir and its parents. The search
// stops at the first directory holding a .git entry, the top of the
// repository the declarations live in.
func FindConfig(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	start, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for dir := range ancestors(start) {
		candidate := filepath.Join(dir, ConfigFileName)
		found, err := exists(candidate)
		if err != nil || found {
			return candidate, found, err
		}
		if atRepoRoot, err := exists(filepath.Join(dir, ".git")); err != nil || atRepoRoot {
			return "", false, err
		}
	}
	return "", false, nil
}

// FindProjectRoot returns the directory containing ccabi.toml, if any.
func FindProjectRoot(startDir string) (root string, ok bool, err error) {
	configPath, ok, err := FindConfig(startDir)
	if err != nil || !ok {
		return "", ok, err
	}
	return filepath.Dir(configPath), true, nil
}

// ancestors yields dir and then each parent up to the filesystem root.
func ancestors(dir string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for {
			if !yield(dir) {
				return
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				return
			}
			dir = parent
		}
	}
}

func exists(path string) (bool, error) {
	_, err := os.Stat(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, os.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("failed to stat %q: %w", path, err)
	}
}
