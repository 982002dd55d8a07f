package journal

import (
	"time"

	"gorm.io/gorm"
)

const (
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// Entry is one operation executed by the CLI.
type Entry struct {
	gorm.Model

	// Resource and Operation are the normalized factory names, e.g. "invoice" / "getAll".
	Resource  string `json:"resource" gorm:"not null;size:50;index"`
	Operation string `json:"operation" gorm:"not null;size:50"`

	// Params holds the operation parameters as JSON. Binary content is never stored.
	Params string `json:"params"`

	// Status is either succeeded or failed.
	Status string `json:"status" gorm:"not null;size:16;index"`

	// RecordID is the id of the returned record, when there is one.
	RecordID string `json:"record_id" gorm:"size:64"`

	// RecordCount is the number of records a list operation returned.
	RecordCount int `json:"record_count"`

	StatusCode int    `json:"status_code"`
	ErrorCode  string `json:"error_code" gorm:"size:64"`
	Category   string `json:"category" gorm:"size:32"`
	Error      string `json:"error"`

	Duration time.Duration `json:"duration"`
}

// Failed reports whether the operation returned an error.
func (e *Entry) Failed() bool {
	return e.Status == StatusFailed
}

// Query narrows a history listing. Zero values match everything.
type Query struct {
	Resource   string
	FailedOnly bool
	Limit      int
}
