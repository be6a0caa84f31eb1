package diag

// Severity orders diagnostics from informational to fatal.
type Severity uint8

const (
	SevInfo Severity = iota
	SevWarning
	SevError
	// SevFatal abandons the declaration it was reported for.
	SevFatal
)

var severityNames = [...]struct{ upper, lower string }{
	SevInfo:    {"INFO", "info"},
	SevWarning: {"WARNING", "warning"},
	SevError:   {"ERROR", "error"},
	SevFatal:   {"FATAL", "fatal"},
}

func (s Severity) String() string {
	if int(s) < len(severityNames) {
		return severityNames[s].upper
	}
	return "UNKNOWN"
}

// Label is the lower-case name used by the short format.
func (s Severity) Label() string {
	if int(s) < len(severityNames) {
		return severityNames[s].lower
	}
	return "info"
}
