package diag

import (
	"cmp"
	"slices"

	"ccabi/internal/source"
)

// Bag collects the diagnostics of one file or run, up to a limit.
// Diagnostics beyond the limit are counted but not kept.
type Bag struct {
	items   []Diagnostic
	max     int
	dropped int
}

// NewBag returns a bag holding at most max diagnostics.
func NewBag(max int) *Bag {
	if max <= 0 {
		max = 1
	}
	return &Bag{items: make([]Diagnostic, 0, min(max, 64)), max: max}
}

// Add stores d unless the limit is reached, and reports whether it did.
func (b *Bag) Add(d Diagnostic) bool {
	if len(b.items) >= b.max {
		b.dropped++
		return false
	}
	b.items = append(b.items, d)
	return true
}

// HasErrors reports whether any diagnostic is an error or fatal.
func (b *Bag) HasErrors() bool {
	return slices.ContainsFunc(b.items, Diagnostic.IsError)
}

// Counts returns the number of stored errors (including fatal ones) and
// warnings.
func (b *Bag) Counts() (errors, warnings int) {
	for _, d := range b.items {
		switch {
		case d.IsError():
			errors++
		case d.Severity == SevWarning:
			warnings++
		}
	}
	return errors, warnings
}

func (b *Bag) Len() int { return len(b.items) }

// Dropped returns how many diagnostics did not fit.
func (b *Bag) Dropped() int { return b.dropped }

// Items returns the stored diagnostics. The slice aliases the bag.
func (b *Bag) Items() []Diagnostic {
	return b.items
}

// Merge appends other's diagnostics, growing the limit if needed.
func (b *Bag) Merge(other *Bag) {
	if other == nil {
		return
	}
	b.max = max(b.max, len(b.items)+len(other.items))
	b.items = append(b.items, other.items...)
	b.dropped += other.dropped
}

// Sort orders by file, start, end, severity (desc) and code.
func (b *Bag) Sort() {
	slices.SortStableFunc(b.items, func(x, y Diagnostic) int {
		return cmp.Or(
			cmp.Compare(x.Primary.File, y.Primary.File),
			cmp.Compare(x.Primary.Start, y.Primary.Start),
			cmp.Compare(x.Primary.End, y.Primary.End),
			cmp.Compare(y.Severity, x.Severity),
			cmp.Compare(x.Code, y.Code),
		)
	})
}

// Dedup drops diagnostics repeating an earlier code and primary span.
func (b *Bag) Dedup() {
	type key struct {
		code Code
		span source.Span
	}
	seen := make(map[key]bool, len(b.items))
	b.items = slices.DeleteFunc(b.items, func(d Diagnostic) bool {
		k := key{d.Code, d.Primary}
		if seen[k] {
			return true
		}
		seen[k] = true
		return false
	})
}
