// Package usecase defines the application use case interfaces exposed to the
// delivery layer and the background monitor.
package usecase

import (
	"context"

	"bizradar/internal/domain/entity"
)

// ScanState is the scheduler's coarse state machine.
type ScanState string

const (
	// ScanIdle means no scan is running.
	ScanIdle ScanState = "idle"
	// ScanRunning means a scan is in flight; triggers are rejected, ticks
	// are dropped.
	ScanRunning ScanState = "running"
)

// ScanUsecase drives the fetch, detect, notify and persist pipeline. Only
// one scan may run at a time regardless of trigger source.
type ScanUsecase interface {
	// RunScan executes one full scan against an immutable snapshot of the
	// current monitoring settings. A concurrent call returns
	// domainerrors.ErrScanInProgress without queueing. The returned record
	// carries the finalized outcome; a failed upstream fetch yields a
	// record with outcome failed, not an error.
	RunScan(ctx context.Context) (*entity.ScanRecord, error)

	// CancelScan asks a running scan to stop cooperatively between its
	// fetch and commit phases. It reports whether a scan was running.
	// Cancellation after commit has begun is not honored.
	CancelScan() bool

	// State returns the current scheduler state.
	State() ScanState

	// GetScanHistory returns the most recent scan records, newest first.
	GetScanHistory(ctx context.Context, limit int) ([]*entity.ScanRecord, error)
}
