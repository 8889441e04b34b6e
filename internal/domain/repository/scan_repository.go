package repository

import (
	"context"
	"errors"

	"bizradar/internal/domain/entity"
)

// ErrScanNotFound is returned when a scan record does not exist.
var ErrScanNotFound = errors.New("scan record not found")

// ScanRepository persists scan history. A record is created in the running
// state when a scan starts and finalized exactly once when it ends.
type ScanRepository interface {
	// Create inserts a new running scan record and fills in its ID.
	Create(ctx context.Context, record *entity.ScanRecord) error

	// Finalize stores the terminal outcome, counts and error detail of the
	// record. Finalizing an already finalized record is an error.
	Finalize(ctx context.Context, record *entity.ScanRecord) error

	// List returns the most recent scan records, newest first.
	List(ctx context.Context, limit int) ([]*entity.ScanRecord, error)
}
