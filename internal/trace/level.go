package trace

import (
	"fmt"
	"strings"
)

// Level selects how fine-grained the recorded events are.
type Level uint8

const (
	LevelOff    Level = iota
	LevelError        // file spans, kept in a ring and dumped on failure
	LevelPhase        // the command span only
	LevelDetail       // file and declaration spans
	LevelDebug        // everything, including member placement
)

var levels = [...]struct {
	name  string
	limit Scope // finest scope emitted, 0 for none
}{
	LevelOff:    {"off", 0},
	LevelError:  {"error", ScopeFile},
	LevelPhase:  {"phase", ScopeDriver},
	LevelDetail: {"detail", ScopeDecl},
	LevelDebug:  {"debug", ScopeMember},
}

func (l Level) String() string {
	if int(l) < len(levels) {
		return levels[l].name
	}
	return "unknown"
}

// ParseLevel accepts the names printed by String, in any case.
func ParseLevel(s string) (Level, error) {
	for l := LevelOff; l <= LevelDebug; l++ {
		if strings.EqualFold(s, levels[l].name) {
			return l, nil
		}
	}
	return LevelOff, fmt.Errorf("invalid trace level: %q (expected: off|error|phase|detail|debug)", s)
}

// ShouldEmit reports whether events of scope pass this level.
func (l Level) ShouldEmit(scope Scope) bool {
	return int(l) < len(levels) && scope > 0 && scope <= levels[l].limit
}
