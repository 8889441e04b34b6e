package monitor

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
	"bizradar/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
)

// --- Fakes ---

type fakeTicker struct {
	ch chan time.Time
}

func (t *fakeTicker) C() <-chan time.Time { return t.ch }
func (t *fakeTicker) Stop()               {}

type fakeClock struct {
	mu      sync.Mutex
	now     time.Time
	tickers []*fakeTicker
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *fakeClock) NewTicker(_ time.Duration) service.Ticker {
	c.mu.Lock()
	defer c.mu.Unlock()

	ticker := &fakeTicker{ch: make(chan time.Time)}
	c.tickers = append(c.tickers, ticker)

	return ticker
}

// tick fires the most recently created ticker and blocks until the loop
// receives it.
func (c *fakeClock) tick() {
	c.mu.Lock()
	ticker := c.tickers[len(c.tickers)-1]
	now := c.now
	c.mu.Unlock()

	ticker.ch <- now
}

type fakeScanUC struct {
	mu    sync.Mutex
	runs  int
	err   error
	state usecase.ScanState
}

func (f *fakeScanUC) RunScan(_ context.Context) (*entity.ScanRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.runs++
	if f.err != nil {
		return nil, f.err
	}

	finished := time.Now()

	return &entity.ScanRecord{
		ID:         uint64(f.runs),
		Outcome:    entity.ScanSuccess,
		FinishedAt: &finished,
	}, nil
}

func (f *fakeScanUC) CancelScan() bool         { return false }
func (f *fakeScanUC) State() usecase.ScanState { return f.state }

func (f *fakeScanUC) GetScanHistory(_ context.Context, _ int) ([]*entity.ScanRecord, error) {
	return nil, nil
}

func (f *fakeScanUC) runCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.runs
}

type fakeSettingsUC struct {
	mu       sync.Mutex
	settings *entity.MonitoringSettings
}

func (f *fakeSettingsUC) GetSettings(_ context.Context) (*entity.MonitoringSettings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.settings.Clone(), nil
}

func (f *fakeSettingsUC) UpdateSettings(_ context.Context, settings *entity.MonitoringSettings) (*entity.MonitoringSettings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.settings = settings.Clone()

	return f.settings, nil
}

type fakeNotificationUC struct {
	mu       sync.Mutex
	statuses []string
	recorded chan string
}

func (f *fakeNotificationUC) RecordSystemStatus(_ context.Context, title, _ string) (*entity.Notification, error) {
	f.mu.Lock()
	f.statuses = append(f.statuses, title)
	f.mu.Unlock()

	if f.recorded != nil {
		f.recorded <- title
	}

	return &entity.Notification{Kind: entity.NotificationSystemStatus, Title: title}, nil
}

func (f *fakeNotificationUC) ListNotifications(_ context.Context, _ repository.NotificationFilter) ([]*entity.Notification, error) {
	return nil, nil
}

func (f *fakeNotificationUC) MarkRead(_ context.Context, _ uuid.UUID) error { return nil }
func (f *fakeNotificationUC) MarkAllRead(_ context.Context) (int, error)    { return 0, nil }
func (f *fakeNotificationUC) Dismiss(_ context.Context, _ uuid.UUID) error  { return nil }

// --- Tests ---

func newTestMonitor(t *testing.T, scanUC *fakeScanUC, clock *fakeClock) (*monitor, *fakeNotificationUC) {
	t.Helper()

	notifUC := &fakeNotificationUC{recorded: make(chan string, 4)}
	settingsUC := &fakeSettingsUC{settings: entity.DefaultMonitoringSettings()}

	lc := fxtest.NewLifecycle(t)
	m := New(Params{
		Lifecycle:      lc,
		Logger:         slog.New(slog.DiscardHandler),
		ScanUC:         scanUC,
		SettingsUC:     settingsUC,
		NotificationUC: notifUC,
		Clock:          clock,
	}).(*monitor)

	return m, notifUC
}

func TestMonitor_TickTriggersScan(t *testing.T) {
	scanUC := &fakeScanUC{}
	clock := &fakeClock{now: time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)}
	m, notifUC := newTestMonitor(t, scanUC, clock)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Serve(ctx) }()

	require.Equal(t, "Monitoring Started", <-notifUC.recorded)

	clock.tick()
	clock.tick()

	cancel()
	require.NoError(t, <-done)
	require.Equal(t, "Monitoring Stopped", <-notifUC.recorded)

	assert.Equal(t, 2, scanUC.runCount())
}

func TestMonitor_SkipsTickWhileScanRunning(t *testing.T) {
	scanUC := &fakeScanUC{err: domainerrors.ErrScanInProgress}
	clock := &fakeClock{now: time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)}
	m, notifUC := newTestMonitor(t, scanUC, clock)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Serve(ctx) }()

	require.Equal(t, "Monitoring Started", <-notifUC.recorded)

	// Both ticks are dropped without queueing a second scan.
	clock.tick()
	clock.tick()

	cancel()
	require.NoError(t, <-done)

	assert.Equal(t, 2, scanUC.runCount(), "each tick attempts exactly one run")
	notifUC.mu.Lock()
	defer notifUC.mu.Unlock()
	assert.Equal(t, []string{"Monitoring Started", "Monitoring Stopped"}, notifUC.statuses,
		"skipped ticks never raise status notifications")
}

func TestMonitor_StopHookEndsServe(t *testing.T) {
	scanUC := &fakeScanUC{}
	clock := &fakeClock{now: time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)}
	m, notifUC := newTestMonitor(t, scanUC, clock)

	done := make(chan error, 1)
	go func() { done <- m.Serve(context.Background()) }()

	require.Equal(t, "Monitoring Started", <-notifUC.recorded)

	close(m.stop)

	require.NoError(t, <-done)
	require.Equal(t, "Monitoring Stopped", <-notifUC.recorded)
}
