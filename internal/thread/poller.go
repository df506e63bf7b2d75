package thread

import (
	"context"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/kazumi-edu/kazumi-comm-gateway/pkg/errors"
)

// Poller drives periodic synchronization passes while a conversation view
// is attached. Its lifetime is tied to the caller's context: cancelling
// the context stops the ticker, so no pass ever fires against a detached
// view. A tick is skipped when the previous pass is still in flight.
type Poller struct {
	sync     *Synchronizer
	interval time.Duration
	logger   *zap.Logger
}

// NewPoller builds a poller for the given synchronizer.
func NewPoller(sync *Synchronizer, interval time.Duration, logger *zap.Logger) *Poller {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Poller{sync: sync, interval: interval, logger: logger}
}

// Run blocks until ctx is cancelled, refreshing the thread every interval.
// onRefresh, when non-nil, is invoked after each successful pass.
func (p *Poller) Run(ctx context.Context, onRefresh func()) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			err := p.sync.Synchronize(ctx)
			switch {
			case err == nil:
				if onRefresh != nil {
					onRefresh()
				}
			case err == appErrors.ErrSyncInFlight:
				// Previous pass still running; skip this tick.
			case err == appErrors.ErrNoActiveContact:
				// Selection was cleared; nothing to refresh.
			default:
				p.logger.Warn("periodic thread refresh failed", zap.Error(err))
			}
		}
	}
}
