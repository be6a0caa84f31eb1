package driver

import (
	"encoding/json"
	"fmt"

	"ccabi/internal/diag"
	"ccabi/internal/observ"
	"ccabi/internal/source"
)

// timingNote is the machine readable note of a timing diagnostic.
type timingNote struct {
	Path    string               `json:"path"`
	Cached  bool                 `json:"cached,omitempty"`
	TotalMS float64              `json:"total_ms"`
	Phases  []observ.PhaseReport `json:"phases"`
}

// addTimingDiagnostic records how long laying out one file took as an info
// diagnostic with the phases as a JSON note. It is kept even when the bag
// is full.
func addTimingDiagnostic(bag *diag.Bag, file source.FileID, note timingNote) {
	data, err := json.Marshal(note)
	if err != nil {
		return
	}
	sp := source.Span{File: file}
	msg := fmt.Sprintf("laid out %s in %.2f ms", note.Path, note.TotalMS)
	if note.Cached {
		msg = fmt.Sprintf("loaded %s from cache in %.2f ms", note.Path, note.TotalMS)
	}
	d := diag.New(diag.SevInfo, diag.ObsTimings, sp, msg).WithNote(sp, string(data))
	if !bag.Add(d) {
		full := diag.NewBag(1)
		full.Add(d)
		bag.Merge(full)
	}
}
