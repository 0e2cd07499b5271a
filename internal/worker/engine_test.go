package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"

	"github.com/Additional-Code/loadplanner/internal/messaging"
)

func TestEngineDispatch(t *testing.T) {
	var seen []string
	record := func(name string) messaging.Handler {
		return func(context.Context, messaging.Message) error {
			seen = append(seen, name)
			return nil
		}
	}

	e := NewEngine(Params{
		Logger: zaptest.NewLogger(t),
		Registrations: []HandlerRegistration{
			{Event: messaging.EventLoadCommitted, Handler: record("committed")},
			{Topic: "loads.events", Handler: record("topic")},
			{Event: "ignored"},
		},
	})

	ctx := context.Background()
	withEvent := func(event string) messaging.Message {
		return messaging.Message{Topic: "loads.events", Headers: map[string]string{messaging.EventHeader: event}}
	}

	assert.NoError(t, e.dispatch(ctx, withEvent(messaging.EventLoadCommitted), 0))
	assert.NoError(t, e.dispatch(ctx, withEvent(messaging.EventOrderCreated), 0))
	assert.NoError(t, e.dispatch(ctx, messaging.Message{Topic: "other"}, 0))

	assert.Equal(t, []string{"committed", "topic"}, seen)
	assert.Len(t, e.registrations, 2)
}

func TestEngineDispatchPropagatesHandlerError(t *testing.T) {
	boom := errors.New("boom")
	e := NewEngine(Params{
		Logger: zaptest.NewLogger(t),
		Registrations: []HandlerRegistration{{
			Event:   messaging.EventOptimizationRequested,
			Handler: func(context.Context, messaging.Message) error { return boom },
		}},
	})

	err := e.dispatch(context.Background(), messaging.Message{
		Headers: map[string]string{messaging.EventHeader: messaging.EventOptimizationRequested},
	}, 1)

	assert.ErrorIs(t, err, boom)
}
