package runtime_test

import (
	"context"
	"sync"
	"testing"

	"github.com/aretw0/colloquy/internal/runtime"
	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngine_LifecycleHooks(t *testing.T) {
	var mu sync.Mutex
	var events []domain.EventType
	record := func(e domain.EventType) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, e)
	}

	var nav *domain.NavigationEvent
	var end *domain.TurnEvent
	hooks := domain.LifecycleHooks{
		OnTurnStart:   func(_ context.Context, e *domain.TurnEvent) { record(e.Type) },
		OnSlotsMerged: func(_ context.Context, e *domain.SlotEvent) { record(e.Type) },
		OnNavigate: func(_ context.Context, e *domain.NavigationEvent) {
			record(e.Type)
			nav = e
		},
		OnTurnEnd: func(_ context.Context, e *domain.TurnEvent) {
			record(e.Type)
			end = e
		},
	}

	eng := newTurnEngine(map[string]bool{"is_booking": true}, runtime.WithLifecycleHooks(hooks))
	state, err := eng.Start(context.Background(), "s1")
	require.NoError(t, err)

	_, err = eng.ProcessTurn(context.Background(), state, domain.Understanding{})
	require.NoError(t, err)

	assert.Equal(t, []domain.EventType{
		domain.EventTurnStart,
		domain.EventSlotsMerged,
		domain.EventNavigate,
		domain.EventTurnEnd,
	}, events)

	require.NotNil(t, nav)
	assert.Equal(t, "booking", nav.Destination)
	assert.Equal(t, "s1", nav.SessionID)
	assert.Equal(t, "main#entry", nav.From.String())

	require.NotNil(t, end)
	assert.NoError(t, end.Err)
	assert.Equal(t, "none", end.Action)
}

func TestEngine_LifecycleHooks_ErrorTurn(t *testing.T) {
	var end *domain.TurnEvent
	hooks := domain.LifecycleHooks{
		OnTurnEnd: func(_ context.Context, e *domain.TurnEvent) { end = e },
	}
	eng := newTurnEngine(map[string]bool{"is_broken": true}, runtime.WithLifecycleHooks(hooks))
	state, _ := eng.Start(context.Background(), "s1")

	_, err := eng.ProcessTurn(context.Background(), state, domain.Understanding{})
	require.Error(t, err)
	require.NotNil(t, end)
	assert.ErrorIs(t, end.Err, domain.ErrUnresolvableDestination)
}
