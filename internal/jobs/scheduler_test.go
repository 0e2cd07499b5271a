package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Additional-Code/loadplanner/internal/consolidation"
	loadsvc "github.com/Additional-Code/loadplanner/internal/service/load"
)

type optimizerFunc func(ctx context.Context, req loadsvc.OptimizeRequest) (*loadsvc.OptimizeResult, error)

func (f optimizerFunc) Optimize(ctx context.Context, req loadsvc.OptimizeRequest) (*loadsvc.OptimizeResult, error) {
	return f(ctx, req)
}

func TestNewScheduler_InvalidSpec(t *testing.T) {
	_, err := NewScheduler("every tuesday-ish", nil, zaptest.NewLogger(t))

	assert.Error(t, err)
}

func TestScheduler_Run(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	var calls atomic.Int32
	s, err := NewScheduler("@every 1h", optimizerFunc(func(_ context.Context, req loadsvc.OptimizeRequest) (*loadsvc.OptimizeResult, error) {
		calls.Add(1)
		assert.Empty(t, req.OrderIDs)
		assert.False(t, req.DryRun)
		return &loadsvc.OptimizeResult{Plan: consolidation.EmptyPlan()}, nil
	}), zap.New(core))
	require.NoError(t, err)

	s.Run()

	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, 1, logs.FilterMessage("scheduled optimization finished").Len())
}

func TestScheduler_RunLogsFailure(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	s, err := NewScheduler("@every 1h", optimizerFunc(func(context.Context, loadsvc.OptimizeRequest) (*loadsvc.OptimizeResult, error) {
		return nil, errors.New("db down")
	}), zap.New(core))
	require.NoError(t, err)

	s.Run()

	assert.Equal(t, 1, logs.FilterMessage("scheduled optimization failed").Len())
}

func TestScheduler_StopCancelsInFlightRun(t *testing.T) {
	started := make(chan struct{})
	s, err := NewScheduler("@every 1s", optimizerFunc(func(ctx context.Context, _ loadsvc.OptimizeRequest) (*loadsvc.OptimizeResult, error) {
		select {
		case started <- struct{}{}:
		default:
		}
		<-ctx.Done()
		return nil, ctx.Err()
	}), zaptest.NewLogger(t))
	require.NoError(t, err)

	s.Start()
	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("scheduled run did not start")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, s.Stop(ctx))
}
