// Package impl contains the use case implementations.
package impl

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"bizradar/internal/domain/entity"
	domainerrors "bizradar/internal/domain/errors"
	"bizradar/internal/domain/repository"
	"bizradar/internal/domain/service"
	"bizradar/internal/errors"
	"bizradar/internal/usecase"
)

const (
	// fetchLimit is the per-request result cap; the upstream rejects more.
	fetchLimit = 50

	defaultHistoryLimit = 20
)

type scanService struct {
	logger           *slog.Logger
	places           service.PlacesClient
	settingsRepo     repository.SettingsRepository
	businessRepo     repository.BusinessRepository
	scanRepo         repository.ScanRepository
	notificationRepo repository.NotificationRepository
	txManager        repository.TransactionManager
	publisher        service.EventPublisher
	clock            service.Clock

	mu      sync.Mutex // guards running and cancel
	running bool
	cancel  context.CancelFunc
}

// NewScanService creates the scan scheduler core. It enforces the
// single-flight state machine: one scan at a time, manual triggers rejected
// while running, cooperative cancellation between fetch and commit.
func NewScanService(
	logger *slog.Logger,
	places service.PlacesClient,
	settingsRepo repository.SettingsRepository,
	businessRepo repository.BusinessRepository,
	scanRepo repository.ScanRepository,
	notificationRepo repository.NotificationRepository,
	txManager repository.TransactionManager,
	publisher service.EventPublisher,
	clock service.Clock,
) usecase.ScanUsecase {
	return &scanService{
		logger:           logger,
		places:           places,
		settingsRepo:     settingsRepo,
		businessRepo:     businessRepo,
		scanRepo:         scanRepo,
		notificationRepo: notificationRepo,
		txManager:        txManager,
		publisher:        publisher,
		clock:            clock,
	}
}

// RunScan executes one full fetch, detect, notify and persist cycle.
func (s *scanService) RunScan(ctx context.Context) (*entity.ScanRecord, error) {
	scanCtx, cancel, err := s.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer s.release(cancel)

	// One immutable settings snapshot per scan; concurrent edits apply to
	// the next scan only.
	stored, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "load monitoring settings")
	}
	settings := stored.Clone()

	record := &entity.ScanRecord{
		Outcome:   entity.ScanRunning,
		StartedAt: s.clock.Now(),
	}
	if err := s.scanRepo.Create(ctx, record); err != nil {
		return nil, errors.Wrap(err, "create scan record")
	}

	s.logger.Info("Scan started",
		slog.Uint64("scan_id", record.ID),
		slog.Float64("latitude", settings.Latitude),
		slog.Float64("longitude", settings.Longitude),
		slog.Int("radius_m", settings.RadiusMeters),
	)

	result, err := s.places.FetchNearby(scanCtx, service.FetchQuery{
		Latitude:     settings.Latitude,
		Longitude:    settings.Longitude,
		RadiusMeters: settings.RadiusMeters,
		Categories:   settings.Categories,
		Limit:        fetchLimit,
	})
	if err != nil {
		return s.finalizeFailed(ctx, record, fetchFailureDetail(err)), nil
	}

	// Cooperative cancellation point: after fetch, before commit. Once the
	// commit transaction starts there is no turning back.
	if scanCtx.Err() != nil {
		return s.finalizeFailed(ctx, record, "scan cancelled"), nil
	}

	old, err := s.businessRepo.GetSnapshot(ctx)
	if err != nil {
		return s.finalizeFailed(ctx, record, fmt.Sprintf("load snapshot: %v", err)), nil
	}

	open, err := s.notificationRepo.ListOpen(ctx)
	if err != nil {
		return s.finalizeFailed(ctx, record, fmt.Sprintf("load open notifications: %v", err)), nil
	}

	// Upstream results outside the configured radius are dropped before
	// diffing; the API contract is mapped defensively.
	businesses := service.WithinRadius(settings.Latitude, settings.Longitude, settings.RadiusMeters, result.Businesses)

	opts := service.DetectorOptions{
		RatingChangeThreshold: settings.RatingChangeThreshold,
		TrendingDelta:         settings.TrendingDelta,
		RemovalGraceCount:     settings.RemovalGraceCount,
		MonitoredCategories:   settings.Categories,
		Now:                   s.clock.Now(),
	}

	fetched := service.SnapshotFromList(businesses)
	events := service.Diff(old, fetched, opts)
	next, removedIDs := service.NextSnapshot(old, fetched, opts)
	notifications := service.BuildNotifications(events, old, next, open, settings)

	record.Fetched = len(result.Businesses)
	record.New, record.Changed, record.Removed = countEvents(events)

	outcome := entity.ScanSuccess
	detail := ""
	if result.MalformedCount > 0 {
		outcome = entity.ScanPartial
		detail = fmt.Sprintf("%d malformed upstream records skipped", result.MalformedCount)
		notifications = append(notifications, service.BuildSystemNotification(
			"Scan Completed With Warnings",
			detail,
			s.clock.Now(),
		))
	}

	record.Finalize(outcome, s.clock.Now(), detail)

	// All-or-nothing commit: snapshot, notifications and the finalized scan
	// record land together or not at all.
	err = s.txManager.Execute(ctx, func(f repository.RepositoryFactory) error {
		if err := f.NewBusinessRepository().ReplaceSnapshot(ctx, next, removedIDs); err != nil {
			return err
		}
		if err := f.NewNotificationRepository().UpsertOpen(ctx, notifications); err != nil {
			return err
		}

		return f.NewScanRepository().Finalize(ctx, record)
	})
	if err != nil {
		// The old snapshot remains authoritative; the next cycle retries
		// from the same state.
		return s.finalizeFailed(ctx, record, fmt.Sprintf("commit: %v", err)), nil
	}

	s.publish(ctx, notifications)

	s.logger.Info("Scan completed",
		slog.Uint64("scan_id", record.ID),
		slog.String("outcome", string(record.Outcome)),
		slog.Int("fetched", record.Fetched),
		slog.Int("new", record.New),
		slog.Int("changed", record.Changed),
		slog.Int("removed", record.Removed),
	)

	return record, nil
}

// CancelScan requests cooperative cancellation of the in-flight scan.
func (s *scanService) CancelScan() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running || s.cancel == nil {
		return false
	}
	s.cancel()

	return true
}

// State reports the scheduler state machine's current state.
func (s *scanService) State() usecase.ScanState {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return usecase.ScanRunning
	}

	return usecase.ScanIdle
}

// GetScanHistory returns recent scan records, newest first.
func (s *scanService) GetScanHistory(ctx context.Context, limit int) ([]*entity.ScanRecord, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	return s.scanRepo.List(ctx, limit)
}

// acquire transitions the scheduler from idle to running, or rejects with
// ErrScanInProgress.
func (s *scanService) acquire(ctx context.Context) (context.Context, context.CancelFunc, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil, nil, domainerrors.ErrScanInProgress
	}

	scanCtx, cancel := context.WithCancel(ctx)
	s.running = true
	s.cancel = cancel

	return scanCtx, cancel, nil
}

func (s *scanService) release(cancel context.CancelFunc) {
	cancel()

	s.mu.Lock()
	s.running = false
	s.cancel = nil
	s.mu.Unlock()
}

// finalizeFailed records a failed outcome, leaves the snapshot untouched and
// raises a SystemStatus notification so the failure is never silent.
func (s *scanService) finalizeFailed(ctx context.Context, record *entity.ScanRecord, detail string) *entity.ScanRecord {
	record.Finalize(entity.ScanFailed, s.clock.Now(), detail)

	if err := s.scanRepo.Finalize(ctx, record); err != nil {
		s.logger.Error("Failed to finalize scan record",
			slog.Uint64("scan_id", record.ID),
			slog.Any("error", err),
		)
	}

	notification := service.BuildSystemNotification("Scan Failed", detail, s.clock.Now())
	if err := s.notificationRepo.UpsertOpen(ctx, []*entity.Notification{notification}); err != nil {
		s.logger.Error("Failed to record scan failure notification", slog.Any("error", err))
	} else {
		s.publish(ctx, []*entity.Notification{notification})
	}

	s.logger.Warn("Scan failed",
		slog.Uint64("scan_id", record.ID),
		slog.String("detail", detail),
	)

	return record
}

// publish hands freshly created notifications to the external delivery
// stream. At-least-once: publish failures are logged, never rolled back.
func (s *scanService) publish(ctx context.Context, notifications []*entity.Notification) {
	for _, n := range notifications {
		event := &service.NotificationEvent{
			NotificationID: n.ID.String(),
			Kind:           string(n.Kind),
			PlaceID:        n.PlaceID,
			BusinessName:   n.BusinessName,
			Title:          n.Title,
			Message:        n.Message,
			CreatedAt:      n.CreatedAt,
		}
		if err := s.publisher.PublishNotificationEvent(ctx, event); err != nil {
			s.logger.Warn("Notification publish failed",
				slog.String("notification_id", n.ID.String()),
				slog.Any("error", err),
			)
		}
	}
}

func fetchFailureDetail(err error) string {
	var fetchErr *service.FetchError
	if errors.As(err, &fetchErr) {
		return fmt.Sprintf("upstream fetch failed (%s): %v", fetchErr.Kind, fetchErr.Err)
	}

	return fmt.Sprintf("upstream fetch failed: %v", err)
}

func countEvents(events []entity.ChangeEvent) (newCount, changed, removed int) {
	for _, event := range events {
		switch event.Kind {
		case entity.ChangeNewBusiness:
			newCount++
		case entity.ChangeRatingChanged, entity.ChangeTrendingActivity:
			changed++
		case entity.ChangeBusinessRemoved:
			removed++
		}
	}

	return newCount, changed, removed
}
