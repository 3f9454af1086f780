package processor

import (
	"strings"
	"time"
)

// State is the lifecycle position of one pipeline item.
type State string

const (
	StateReceived    State = "RECEIVED"
	StateNormalized  State = "NORMALIZED"
	StateTranscribed State = "TRANSCRIBED"
	StatePersisted   State = "PERSISTED"
	StateFailed      State = "FAILED"
)

// Terminal reports whether no further transition can happen.
func (s State) Terminal() bool {
	return s == StatePersisted || s == StateFailed
}

// Result is the immutable outcome of a successful pass.
type Result struct {
	ID          string
	RecordID    uint
	Name        string
	Date        string
	Text        string
	ProcessedAt time.Time
}

// Sources used as metric labels.
const (
	SourceUpload = "upload"
	SourceWatch  = "watch"
)

// UploadIDPrefix marks inputs that arrived through the upload entry point.
const UploadIDPrefix = "upload-"

func sourceOf(id string) string {
	if strings.HasPrefix(id, UploadIDPrefix) {
		return SourceUpload
	}
	return SourceWatch
}
