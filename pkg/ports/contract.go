package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSessionStoreContract runs a suite of tests to verify that a SessionStore implementation
// adheres to the defined interface contract.
func RunSessionStoreContract(t *testing.T, store SessionStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")
	start := domain.Target{FlowName: "main", NodeName: "entry"}

	t.Run("Save and Load", func(t *testing.T) {
		state := domain.NewSessionState(sessionID, start)
		state.Position = state.Position.Advance(domain.Target{FlowName: "booking", NodeName: "ask-city"})
		state.Slots["city"] = domain.Slot{
			Name:              "city",
			Value:             "Paris",
			Confidence:        0.9,
			Overwritable:      true,
			ExpiresAfterTurns: domain.ExpireAfter(3),
		}
		state.Contexts = []domain.NLUContext{{Context: "booking", TTL: 2}}
		state.CurrentTopic = "travel"

		err := store.Save(ctx, sessionID, state)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, state.Position, loaded.Position)
		assert.Equal(t, "travel", loaded.CurrentTopic)
		assert.Equal(t, state.Contexts, loaded.Contexts)
		require.Contains(t, loaded.Slots, "city")
		assert.Equal(t, "Paris", loaded.Slots["city"].Value)
		require.NotNil(t, loaded.Slots["city"].ExpiresAfterTurns)
		assert.Equal(t, 3, *loaded.Slots["city"].ExpiresAfterTurns)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, sessionID, domain.NewSessionState(sessionID, start))
		require.NoError(t, err)

		err = store.Delete(ctx, sessionID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		_ = store.Save(ctx, id1, domain.NewSessionState(id1, start))
		_ = store.Save(ctx, id2, domain.NewSessionState(id2, start))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}

// RunFlowLoaderContract verifies that a FlowLoader serves wantFlows (by name, in order)
// and that every flow it returns is usable by the engine.
func RunFlowLoaderContract(t *testing.T, loader FlowLoader, wantFlows []string) {
	t.Helper()
	ctx := context.Background()

	t.Run("ListFlows", func(t *testing.T) {
		flows, err := loader.ListFlows(ctx)
		require.NoError(t, err)

		names := make([]string, 0, len(flows))
		for _, f := range flows {
			names = append(names, f.Name)
		}
		assert.Equal(t, wantFlows, names)
	})

	t.Run("Start nodes exist", func(t *testing.T) {
		flows, err := loader.ListFlows(ctx)
		require.NoError(t, err)
		for _, f := range flows {
			_, ok := f.Start()
			assert.True(t, ok, "flow %s: start node %q not found", f.Name, f.StartNode)
		}
	})

	t.Run("Results are copies", func(t *testing.T) {
		first, err := loader.ListFlows(ctx)
		require.NoError(t, err)
		if len(first) == 0 {
			t.Skip("loader serves no flows")
		}
		first[0] = domain.Flow{Name: "mutated"}

		second, err := loader.ListFlows(ctx)
		require.NoError(t, err)
		assert.NotEqual(t, "mutated", second[0].Name)
	})
}
