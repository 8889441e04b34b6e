// Package monitor runs the periodic scan scheduler as a background delivery.
package monitor

import (
	"context"
	"fmt"
	"log/slog"

	"bizradar/internal/delivery"
	domainerrors "bizradar/internal/domain/errors"
	"bizradar/internal/domain/lifecycle"
	"bizradar/internal/domain/service"
	"bizradar/internal/errors"
	"bizradar/internal/usecase"

	"go.uber.org/fx"
)

// Params holds dependencies for the scan monitor
type Params struct {
	fx.In
	fx.Lifecycle

	Logger         *slog.Logger
	ScanUC         usecase.ScanUsecase
	SettingsUC     usecase.SettingsUsecase
	NotificationUC usecase.NotificationUsecase
	Clock          service.Clock
}

// monitor triggers a scan on every interval tick. A tick arriving while a
// scan is still running is dropped and logged, never queued, so slow scans
// cannot pile up.
type monitor struct {
	logger         *slog.Logger
	scanUC         usecase.ScanUsecase
	settingsUC     usecase.SettingsUsecase
	notificationUC usecase.NotificationUsecase
	clock          service.Clock
	stop           chan struct{}
}

// New creates the scan monitor delivery.
func New(params Params) delivery.Delivery {
	m := &monitor{
		logger:         params.Logger,
		scanUC:         params.ScanUC,
		settingsUC:     params.SettingsUC,
		notificationUC: params.NotificationUC,
		clock:          params.Clock,
		stop:           make(chan struct{}),
	}

	params.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			close(m.stop)

			return nil
		},
	})

	return m
}

// Serve runs the scheduling loop until the application stops. Interval
// changes saved by the operator take effect after the next completed cycle.
func (m *monitor) Serve(ctx context.Context) error {
	settings, err := m.settingsUC.GetSettings(ctx)
	if err != nil {
		return errors.Wrap(err, "load settings for scan monitor")
	}
	interval := settings.ScanInterval

	m.recordStatus(ctx, "Monitoring Started",
		fmt.Sprintf("Scanning every %s within %d m of the monitored location.", interval, settings.RadiusMeters))
	m.logger.Info("Scan monitor started",
		slog.Duration("interval", interval),
		slog.Int("radius_m", settings.RadiusMeters),
	)

	ticker := m.clock.NewTicker(interval)
	defer func() { ticker.Stop() }()

	for {
		select {
		case <-m.stop:
			m.recordStopped()

			return nil
		case <-ctx.Done():
			m.recordStopped()

			return nil
		case <-ticker.C():
			m.runCycle(ctx)

			if next, err := m.settingsUC.GetSettings(ctx); err == nil && next.ScanInterval != interval {
				m.logger.Info("Scan interval changed, resetting ticker",
					slog.Duration("old", interval),
					slog.Duration("new", next.ScanInterval),
				)
				interval = next.ScanInterval
				ticker.Stop()
				ticker = m.clock.NewTicker(interval)
			}
		}
	}
}

func (m *monitor) runCycle(ctx context.Context) {
	record, err := m.scanUC.RunScan(ctx)
	if err != nil {
		if errors.Is(err, domainerrors.ErrScanInProgress) {
			// Drop the tick: the in-flight scan keeps running and the next
			// tick tries again.
			m.logger.Warn("Scheduled scan skipped, previous scan still running")

			return
		}
		m.logger.Error("Scheduled scan failed to start", slog.Any("error", err))

		return
	}

	m.logger.Info("Scheduled scan finished",
		slog.Uint64("scan_id", record.ID),
		slog.String("outcome", string(record.Outcome)),
		slog.Int("fetched", record.Fetched),
		slog.Int("new", record.New),
		slog.Int("changed", record.Changed),
		slog.Int("removed", record.Removed),
		slog.Duration("duration", record.Duration()),
	)
}

func (m *monitor) recordStopped() {
	// The serve context may already be cancelled during shutdown.
	ctx, cancel := context.WithTimeout(context.Background(), lifecycle.DefaultTimeout)
	defer cancel()

	m.recordStatus(ctx, "Monitoring Stopped", "Periodic scanning is no longer running.")
	m.logger.Info("Scan monitor stopped")
}

func (m *monitor) recordStatus(ctx context.Context, title, message string) {
	if _, err := m.notificationUC.RecordSystemStatus(ctx, title, message); err != nil {
		m.logger.Warn("Failed to record monitor status notification",
			slog.String("title", title),
			slog.Any("error", err),
		)
	}
}
