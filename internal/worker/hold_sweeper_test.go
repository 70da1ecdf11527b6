package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type countingExpirer struct {
	calls atomic.Int32
	err   error
}

func (c *countingExpirer) Execute(context.Context) (int, error) {
	c.calls.Add(1)
	return 2, c.err
}

func TestHoldSweeper_RunsOnSchedule(t *testing.T) {
	exp := &countingExpirer{}
	w := NewHoldSweeper(zap.NewNop(), exp, "@every 1s")

	w.Start(context.Background())
	assert.Eventually(t, func() bool { return exp.calls.Load() > 0 }, 5*time.Second, 50*time.Millisecond)
	w.Stop()
}

func TestHoldSweeper_InvalidSpecFallsBack(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	w := NewHoldSweeper(zap.New(core), &countingExpirer{}, "every so often")

	w.Start(context.Background())
	w.Stop()

	assert.Equal(t, 1, logs.FilterMessageSnippet("invalid cron spec").Len())
}

func TestHoldSweeper_RunOnceLogs(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	w := NewHoldSweeper(zap.New(core), &countingExpirer{}, "@every 1m")

	w.runOnce(context.Background())
	assert.Equal(t, 1, logs.FilterMessageSnippet("released stale holds").Len())

	w.expirer = &countingExpirer{err: errors.New("db down")}
	w.runOnce(context.Background())
	assert.Equal(t, 1, logs.FilterMessageSnippet("run failed").Len())
}
