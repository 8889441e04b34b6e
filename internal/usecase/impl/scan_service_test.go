package impl

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"bizradar/internal/domain/entity"
	domainerrors "bizradar/internal/domain/errors"
	"bizradar/internal/domain/repository"
	"bizradar/internal/domain/service"
	"bizradar/internal/errors"
	"bizradar/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Fakes ---

type fakePlacesClient struct {
	result  *service.FetchResult
	err     error
	started chan struct{} // closed when a fetch begins, if set
	release chan struct{} // fetch blocks until closed, if set
}

func (f *fakePlacesClient) FetchNearby(_ context.Context, _ service.FetchQuery) (*service.FetchResult, error) {
	if f.started != nil {
		close(f.started)
	}
	if f.release != nil {
		<-f.release
	}
	if f.err != nil {
		return nil, f.err
	}

	return f.result, nil
}

type fakeSettingsRepo struct {
	settings *entity.MonitoringSettings
}

func (f *fakeSettingsRepo) Get(_ context.Context) (*entity.MonitoringSettings, error) {
	return f.settings.Clone(), nil
}

func (f *fakeSettingsRepo) Save(_ context.Context, settings *entity.MonitoringSettings) error {
	f.settings = settings.Clone()

	return nil
}

type fakeBusinessRepo struct {
	mu           sync.Mutex
	snapshot     entity.Snapshot
	replaced     entity.Snapshot
	removedIDs   []string
	replaceCalls int
}

func (f *fakeBusinessRepo) GetSnapshot(_ context.Context) (entity.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.snapshot.Clone(), nil
}

func (f *fakeBusinessRepo) ReplaceSnapshot(_ context.Context, snapshot entity.Snapshot, removedIDs []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.replaceCalls++
	f.replaced = snapshot.Clone()
	f.removedIDs = removedIDs

	return nil
}

func (f *fakeBusinessRepo) ListBusinesses(_ context.Context, _ repository.BusinessFilter) ([]*entity.Business, error) {
	return nil, nil
}

func (f *fakeBusinessRepo) SetCompetitorFlag(_ context.Context, _ string, _ bool) error {
	return nil
}

type fakeScanRepo struct {
	mu        sync.Mutex
	nextID    uint64
	finalized []*entity.ScanRecord
}

func (f *fakeScanRepo) Create(_ context.Context, record *entity.ScanRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextID++
	record.ID = f.nextID

	return nil
}

func (f *fakeScanRepo) Finalize(_ context.Context, record *entity.ScanRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	copied := *record
	f.finalized = append(f.finalized, &copied)

	return nil
}

func (f *fakeScanRepo) List(_ context.Context, _ int) ([]*entity.ScanRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.finalized, nil
}

// fakeNotificationRepo mirrors the storage semantics of UpsertOpen: an
// update by primary key reopens the row, an insert rejects a duplicate open
// (Kind, PlaceID) pair, and system rows (empty PlaceID) are exempt from the
// pair constraint so repeated status alerts never collide.
type fakeNotificationRepo struct {
	mu       sync.Mutex
	open     []*entity.Notification
	upserted []*entity.Notification
}

func (f *fakeNotificationRepo) UpsertOpen(_ context.Context, notifications []*entity.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, notification := range notifications {
		if f.refreshByID(notification) {
			continue
		}

		for _, existing := range f.upserted {
			if existing.PlaceID != "" && !existing.Dismissed &&
				existing.PlaceID == notification.PlaceID && existing.Kind == notification.Kind {
				return errors.New("duplicate open notification for business and kind")
			}
		}

		copied := *notification
		f.upserted = append(f.upserted, &copied)
	}

	return nil
}

func (f *fakeNotificationRepo) refreshByID(notification *entity.Notification) bool {
	for _, existing := range f.upserted {
		if existing.ID != notification.ID {
			continue
		}

		existing.Title = notification.Title
		existing.Message = notification.Message
		existing.CreatedAt = notification.CreatedAt
		existing.Read = false
		existing.Dismissed = false

		return true
	}

	return false
}

func (f *fakeNotificationRepo) ListNotifications(_ context.Context, _ repository.NotificationFilter) ([]*entity.Notification, error) {
	return f.upserted, nil
}

func (f *fakeNotificationRepo) ListOpen(_ context.Context) ([]*entity.Notification, error) {
	return f.open, nil
}

func (f *fakeNotificationRepo) MarkRead(_ context.Context, _ uuid.UUID) error { return nil }
func (f *fakeNotificationRepo) MarkAllRead(_ context.Context) (int, error)    { return 0, nil }
func (f *fakeNotificationRepo) Dismiss(_ context.Context, _ uuid.UUID) error  { return nil }

type fakeTxManager struct {
	business  *fakeBusinessRepo
	scan      *fakeScanRepo
	notif     *fakeNotificationRepo
	commitErr error
	executed  bool
}

func (f *fakeTxManager) Execute(_ context.Context, fn func(repository.RepositoryFactory) error) error {
	f.executed = true
	if err := fn(f); err != nil {
		return err
	}

	return f.commitErr
}

func (f *fakeTxManager) NewBusinessRepository() repository.BusinessRepository {
	return f.business
}

func (f *fakeTxManager) NewScanRepository() repository.ScanRepository {
	return f.scan
}

func (f *fakeTxManager) NewNotificationRepository() repository.NotificationRepository {
	return f.notif
}

type fakePublisher struct {
	mu     sync.Mutex
	events []*service.NotificationEvent
}

func (f *fakePublisher) PublishNotificationEvent(_ context.Context, event *service.NotificationEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.events = append(f.events, event)

	return nil
}

func (f *fakePublisher) Close() error { return nil }

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

func (c fixedClock) NewTicker(d time.Duration) service.Ticker {
	return service.SystemClock{}.NewTicker(d)
}

// --- Harness ---

type scanHarness struct {
	svc       usecase.ScanUsecase
	places    *fakePlacesClient
	settings  *fakeSettingsRepo
	business  *fakeBusinessRepo
	scans     *fakeScanRepo
	notifs    *fakeNotificationRepo
	tx        *fakeTxManager
	publisher *fakePublisher
}

func newScanHarness(places *fakePlacesClient) *scanHarness {
	business := &fakeBusinessRepo{snapshot: entity.Snapshot{}}
	scans := &fakeScanRepo{}
	notifs := &fakeNotificationRepo{}
	tx := &fakeTxManager{business: business, scan: scans, notif: notifs}
	publisher := &fakePublisher{}
	settings := &fakeSettingsRepo{settings: entity.DefaultMonitoringSettings()}
	clock := fixedClock{now: time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)}

	svc := NewScanService(
		slog.New(slog.DiscardHandler),
		places,
		settings,
		business,
		scans,
		notifs,
		tx,
		publisher,
		clock,
	)

	return &scanHarness{
		svc:       svc,
		places:    places,
		settings:  settings,
		business:  business,
		scans:     scans,
		notifs:    notifs,
		tx:        tx,
		publisher: publisher,
	}
}

func fetchedBusiness(placeID, name string) *entity.Business {
	return &entity.Business{
		PlaceID:    placeID,
		Name:       name,
		Categories: []string{"Coffee Shop"},
	}
}

// --- Tests ---

func TestRunScan_FirstScanCommitsSnapshotAndNotifies(t *testing.T) {
	h := newScanHarness(&fakePlacesClient{
		result: &service.FetchResult{
			Businesses: []*entity.Business{
				fetchedBusiness("a", "Cafe A"),
				fetchedBusiness("b", "Bakery B"),
			},
		},
	})

	record, err := h.svc.RunScan(context.Background())
	require.NoError(t, err)

	assert.Equal(t, entity.ScanSuccess, record.Outcome)
	assert.Equal(t, 2, record.Fetched)
	assert.Equal(t, 2, record.New)
	assert.Equal(t, 0, record.Changed)
	assert.Equal(t, 0, record.Removed)
	require.NotNil(t, record.FinishedAt)

	assert.True(t, h.tx.executed, "commit must go through the transaction manager")
	require.Len(t, h.business.replaced, 2)
	assert.Contains(t, h.business.replaced, "a")

	// Two NewBusiness notifications, persisted and published.
	require.Len(t, h.notifs.upserted, 2)
	assert.Len(t, h.publisher.events, 2)
	assert.Equal(t, usecase.ScanIdle, h.svc.State())
}

func TestRunScan_UnauthorizedFailsWithoutTouchingSnapshot(t *testing.T) {
	h := newScanHarness(&fakePlacesClient{
		err: &service.FetchError{Kind: service.FetchUnauthorized, Err: errors.New("HTTP 401")},
	})
	h.business.snapshot = entity.Snapshot{
		"a": fetchedBusiness("a", "Cafe A"),
	}

	record, err := h.svc.RunScan(context.Background())
	require.NoError(t, err, "an upstream failure is an outcome, not an error")

	assert.Equal(t, entity.ScanFailed, record.Outcome)
	assert.Contains(t, record.ErrorDetail, "unauthorized")

	assert.Equal(t, 0, h.business.replaceCalls, "failed scans never mutate the snapshot")
	assert.False(t, h.tx.executed)

	// Exactly one SystemStatus notification, persisted and published.
	require.Len(t, h.notifs.upserted, 1)
	assert.Equal(t, entity.NotificationSystemStatus, h.notifs.upserted[0].Kind)
	require.Len(t, h.publisher.events, 1)
	assert.Equal(t, string(entity.NotificationSystemStatus), h.publisher.events[0].Kind)
}

func TestRunScan_RejectsConcurrentScan(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	h := newScanHarness(&fakePlacesClient{
		result:  &service.FetchResult{},
		started: started,
		release: release,
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := h.svc.RunScan(context.Background())
		assert.NoError(t, err)
	}()

	<-started
	assert.Equal(t, usecase.ScanRunning, h.svc.State())

	_, err := h.svc.RunScan(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrScanInProgress))

	close(release)
	<-done
	assert.Equal(t, usecase.ScanIdle, h.svc.State())
}

func TestRunScan_MalformedRecordsYieldPartialOutcome(t *testing.T) {
	h := newScanHarness(&fakePlacesClient{
		result: &service.FetchResult{
			Businesses:     []*entity.Business{fetchedBusiness("a", "Cafe A")},
			MalformedCount: 3,
		},
	})

	record, err := h.svc.RunScan(context.Background())
	require.NoError(t, err)

	assert.Equal(t, entity.ScanPartial, record.Outcome)
	assert.Contains(t, record.ErrorDetail, "3 malformed")
	assert.Equal(t, 1, h.business.replaceCalls, "the usable subset still commits")

	// One NewBusiness plus one SystemStatus warning.
	require.Len(t, h.notifs.upserted, 2)
	kinds := []entity.NotificationKind{h.notifs.upserted[0].Kind, h.notifs.upserted[1].Kind}
	assert.Contains(t, kinds, entity.NotificationSystemStatus)
}

func TestRunScan_CommitFailureKeepsOldSnapshotAuthoritative(t *testing.T) {
	h := newScanHarness(&fakePlacesClient{
		result: &service.FetchResult{
			Businesses: []*entity.Business{fetchedBusiness("a", "Cafe A")},
		},
	})
	h.tx.commitErr = errors.New("connection reset")

	record, err := h.svc.RunScan(context.Background())
	require.NoError(t, err)

	assert.Equal(t, entity.ScanFailed, record.Outcome)
	assert.Contains(t, record.ErrorDetail, "commit")

	// The failed outcome lands through the non-transactional finalize path.
	require.NotEmpty(t, h.scans.finalized)
	last := h.scans.finalized[len(h.scans.finalized)-1]
	assert.Equal(t, entity.ScanFailed, last.Outcome)
}

func TestRunScan_CancelBetweenFetchAndCommit(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	h := newScanHarness(&fakePlacesClient{
		result: &service.FetchResult{
			Businesses: []*entity.Business{fetchedBusiness("a", "Cafe A")},
		},
		started: started,
		release: release,
	})

	type result struct {
		record *entity.ScanRecord
		err    error
	}
	done := make(chan result, 1)
	go func() {
		record, err := h.svc.RunScan(context.Background())
		done <- result{record: record, err: err}
	}()

	<-started
	assert.True(t, h.svc.CancelScan())
	close(release)

	res := <-done
	require.NoError(t, res.err)
	assert.Equal(t, entity.ScanFailed, res.record.Outcome)
	assert.Equal(t, "scan cancelled", res.record.ErrorDetail)
	assert.Equal(t, 0, h.business.replaceCalls)
}

func TestRunScan_RepeatedFailuresEachRaiseStatus(t *testing.T) {
	h := newScanHarness(&fakePlacesClient{
		err: &service.FetchError{Kind: service.FetchTransient, Err: errors.New("HTTP 502")},
	})

	// Status alerts carry no subject business, so any number of them may be
	// open at once; a second failure must not collide with the first.
	for range 2 {
		record, err := h.svc.RunScan(context.Background())
		require.NoError(t, err)
		assert.Equal(t, entity.ScanFailed, record.Outcome)
	}

	require.Len(t, h.notifs.upserted, 2)
	assert.Equal(t, entity.NotificationSystemStatus, h.notifs.upserted[0].Kind)
	assert.Equal(t, entity.NotificationSystemStatus, h.notifs.upserted[1].Kind)
	assert.NotEqual(t, h.notifs.upserted[0].ID, h.notifs.upserted[1].ID)
	assert.Len(t, h.publisher.events, 2, "every failure is published, not only the first")
}

func TestRunScan_RecurrenceReopensDismissedRow(t *testing.T) {
	oldRating, newRating := 4.0, 3.0
	tracked := fetchedBusiness("a", "Cafe A")
	tracked.Rating = &oldRating
	fetched := fetchedBusiness("a", "Cafe A")
	fetched.Rating = &newRating

	h := newScanHarness(&fakePlacesClient{
		result: &service.FetchResult{Businesses: []*entity.Business{fetched}},
	})
	h.business.snapshot = entity.Snapshot{"a": tracked}

	// The scan read the open set before the operator's dismiss landed; the
	// commit refreshes the same row and must leave it visible again.
	existing := &entity.Notification{
		ID:      uuid.New(),
		Kind:    entity.NotificationRatingChanged,
		PlaceID: "a",
		Title:   "Rating Changed",
	}
	h.notifs.open = []*entity.Notification{existing}
	dismissed := *existing
	dismissed.Dismissed = true
	h.notifs.upserted = []*entity.Notification{&dismissed}

	record, err := h.svc.RunScan(context.Background())
	require.NoError(t, err)
	require.Equal(t, entity.ScanSuccess, record.Outcome)

	require.Len(t, h.notifs.upserted, 1, "the recurrence reuses the open row")
	assert.Equal(t, existing.ID, h.notifs.upserted[0].ID)
	assert.False(t, h.notifs.upserted[0].Dismissed)
	assert.False(t, h.notifs.upserted[0].Read)
}

func TestCancelScan_NoScanRunning(t *testing.T) {
	h := newScanHarness(&fakePlacesClient{result: &service.FetchResult{}})

	assert.False(t, h.svc.CancelScan())
}
