package featuregate

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Poller refreshes a Gate on a cron schedule. The gate itself never retries;
// cadence lives here.
type Poller struct {
	gate    *Gate
	cron    *cron.Cron
	logger  *slog.Logger
	baseCtx context.Context
}

// NewPoller schedules gate.Refresh. schedule accepts standard cron
// expressions and descriptors such as "@every 30s".
func NewPoller(baseCtx context.Context, gate *Gate, schedule string, logger *slog.Logger) (*Poller, error) {
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	p := &Poller{
		gate:    gate,
		cron:    cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger:  logger,
		baseCtx: baseCtx,
	}
	if _, err := p.cron.AddFunc(schedule, p.tick); err != nil {
		return nil, fmt.Errorf("invalid feature flag poll schedule %q: %w", schedule, err)
	}
	return p, nil
}

func (p *Poller) tick() {
	// Refresh already logs fetch failures.
	_, _ = p.gate.Refresh(p.baseCtx)
}

func (p *Poller) Start() {
	if p.logger != nil {
		p.logger.Info("feature flag poller started")
	}
	p.cron.Start()
}

// Stop halts the schedule and waits for a running refresh to finish.
func (p *Poller) Stop() {
	<-p.cron.Stop().Done()
	if p.logger != nil {
		p.logger.Info("feature flag poller stopped")
	}
}
