package trace

import "time"

type Kind uint8

const (
	KindSpanBegin Kind = iota + 1
	KindSpanEnd
	KindPoint
	KindHeartbeat
)

var kindNames = [...]string{"unknown", "begin", "end", "point", "heartbeat"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return kindNames[0]
}

// Scope is the granularity of an event. A smaller value is coarser, and a
// tracer at level L keeps events whose scope is at most L's limit.
type Scope uint8

const (
	ScopeDriver Scope = iota + 1 // one CLI command
	ScopeFile                    // one declaration file
	ScopeDecl                    // one struct, union or enum
	ScopeMember                  // placement of one member
)

var scopeNames = [...]string{"unknown", "driver", "file", "decl", "member"}

func (s Scope) String() string {
	if int(s) < len(scopeNames) {
		return scopeNames[s]
	}
	return scopeNames[0]
}

// Event is one record in a trace. Begin and end events of a span share
// SpanID; ParentID is 0 for a root span.
type Event struct {
	Time     time.Time
	Seq      uint64
	Kind     Kind
	Scope    Scope
	SpanID   uint64
	ParentID uint64
	GID      uint64
	Name     string // "layout", "struct foo", "member bar"
	Detail   string
	Extra    map[string]string
}
