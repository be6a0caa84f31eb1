package arch

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"ccabi/internal/types"
)

// ErrUnknownTarget reports a triple no architecture is registered for.
var ErrUnknownTarget = errors.New("unknown target")

// DefaultTriple is used when no target is configured.
const DefaultTriple = "x86_64-linux-gnu"

type factory func(Config) Architecture

var registry = map[string]factory{
	"x86_64-linux-gnu":         func(c Config) Architecture { return NewX86_64GCC48(c) },
	"x86_64-pc-linux-gnu":      func(c Config) Architecture { return NewX86_64GCC48(c) },
	"x86_64-unknown-linux-gnu": func(c Config) Architecture { return NewX86_64GCC48(c) },
}

// Lookup returns a new architecture for triple. Matching is case
// insensitive.
func Lookup(triple string, cfg Config) (Architecture, error) {
	if triple == "" {
		triple = DefaultTriple
	}
	f, ok := registry[strings.ToLower(triple)]
	if !ok {
		return nil, fmt.Errorf("%w %q (known: %s)", ErrUnknownTarget, triple, strings.Join(Registered(), ", "))
	}
	if err := checkConfig(cfg); err != nil {
		return nil, err
	}
	return f(cfg), nil
}

// Registered returns the known triples, sorted.
func Registered() []string {
	out := make([]string, 0, len(registry))
	for t := range registry {
		out = append(out, t)
	}
	slices.Sort(out)
	return out
}

// MaxPackStruct is the largest -fpack-struct value gcc accepts.
var MaxPackStruct = types.AlignLog2(4)

func checkConfig(cfg Config) error {
	if log2, ok := cfg.PackStruct.Log2(); ok {
		if limit, _ := MaxPackStruct.Log2(); log2 > limit {
			return fmt.Errorf("pack_struct %d exceeds %d", cfg.PackStruct.Bytes(), MaxPackStruct.Bytes())
		}
	}
	return nil
}
