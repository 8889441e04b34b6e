package entity

import (
	"time"
)

// ScanOutcome is the terminal state of a scan.
type ScanOutcome string

const (
	// ScanRunning marks a scan that has started but not yet finalized.
	ScanRunning ScanOutcome = "running"
	// ScanSuccess marks a scan that fetched, diffed and committed cleanly.
	ScanSuccess ScanOutcome = "success"
	// ScanPartial marks a scan that committed a usable subset after
	// per-record upstream failures.
	ScanPartial ScanOutcome = "partial"
	// ScanFailed marks a scan that performed no snapshot mutation.
	ScanFailed ScanOutcome = "failed"
)

// ScanRecord is the persisted history entry for one scan. It is created in
// the running state when the scan starts and finalized exactly once when the
// scan ends; it is immutable afterwards.
type ScanRecord struct {
	ID          uint64      `json:"id"` // Monotonically increasing scan ID.
	Outcome     ScanOutcome `json:"outcome"`
	StartedAt   time.Time   `json:"started_at"`
	FinishedAt  *time.Time  `json:"finished_at,omitempty"`
	Fetched     int         `json:"fetched"` // Businesses returned by the upstream.
	New         int         `json:"new"`
	Changed     int         `json:"changed"`
	Removed     int         `json:"removed"`
	ErrorDetail string      `json:"error_detail,omitempty"`
}

// Finalize stamps the terminal outcome. It must be called exactly once.
func (r *ScanRecord) Finalize(outcome ScanOutcome, finishedAt time.Time, errorDetail string) {
	r.Outcome = outcome
	r.FinishedAt = &finishedAt
	r.ErrorDetail = errorDetail
}

// Duration returns the wall-clock length of the scan, zero while running.
func (r *ScanRecord) Duration() time.Duration {
	if r.FinishedAt == nil {
		return 0
	}

	return r.FinishedAt.Sub(r.StartedAt)
}
