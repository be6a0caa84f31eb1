package driver

import "time"

// Stage describes a phase of laying out one file.
type Stage string

const (
	// StageLoad reads and decodes the declaration file.
	StageLoad Stage = "load"
	// StageLayout lays out and evaluates the declarations.
	StageLayout Stage = "layout"
	// StageReport builds and caches the layout report.
	StageReport Stage = "report"
)

// Status captures progress state within a stage.
type Status string

const (
	// StatusQueued indicates the file is waiting to start.
	StatusQueued Status = "queued"
	// StatusWorking indicates the file is being processed.
	StatusWorking Status = "working"
	// StatusCached indicates the report came from the disk cache.
	StatusCached Status = "cached"
	// StatusDone indicates the file is done.
	StatusDone Status = "done"
	// StatusError indicates the file had errors.
	StatusError Status = "error"
)

// Event reports progress for a file, or for the whole run when File is
// empty.
type Event struct {
	File    string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events. OnEvent is called from several
// goroutines.
type ProgressSink interface {
	OnEvent(Event)
}

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}

func emit(sink ProgressSink, evt Event) {
	if sink != nil {
		sink.OnEvent(evt)
	}
}
