package worker

import (
	"context"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type HoldExpirer interface {
	Execute(ctx context.Context) (int, error)
}

// HoldSweeper releases stale unpaid holds on a cron schedule.
type HoldSweeper struct {
	log     *zap.Logger
	expirer HoldExpirer
	spec    string

	cron   *cron.Cron
	runCtx context.Context
	cancel context.CancelFunc
}

func NewHoldSweeper(log *zap.Logger, expirer HoldExpirer, spec string) *HoldSweeper {
	return &HoldSweeper{log: log, expirer: expirer, spec: spec}
}

func (w *HoldSweeper) Start(ctx context.Context) {
	w.runCtx, w.cancel = context.WithCancel(ctx)

	// SkipIfStillRunning keeps sweeps from overlapping on a slow database.
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(w.spec, func() { w.runOnce(w.runCtx) }); err != nil {
		w.log.Warn("hold sweeper: invalid cron spec, falling back to @every 1m",
			zap.String("spec", w.spec),
			zap.Error(err),
		)
		c = cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
		_, _ = c.AddFunc("@every 1m", func() { w.runOnce(w.runCtx) })
	}

	c.Start()
	w.cron = c
}

// Stop waits for a running sweep to finish.
func (w *HoldSweeper) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	if w.cron != nil {
		<-w.cron.Stop().Done()
	}
}

func (w *HoldSweeper) runOnce(ctx context.Context) {
	n, err := w.expirer.Execute(ctx)
	if err != nil {
		w.log.Warn("hold sweeper: run failed", zap.Error(err))
		return
	}
	if n > 0 {
		w.log.Info("hold sweeper: released stale holds", zap.Int("count", n))
	}
}
