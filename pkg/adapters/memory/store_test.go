package memory_test

import (
	"context"
	"testing"

	"github.com/aretw0/colloquy/pkg/adapters/memory"
	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/aretw0/colloquy/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunSessionStoreContract(t, store)
}

func TestMemoryStore_Isolation(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	state := domain.NewSessionState("s1", domain.Target{FlowName: "main", NodeName: "entry"})
	require.NoError(t, store.Save(ctx, "s1", state))

	state.Slots["leak"] = domain.Slot{Name: "leak"}
	loaded, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.NotContains(t, loaded.Slots, "leak")

	loaded.Contexts = append(loaded.Contexts, domain.NLUContext{Context: "x"})
	again, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, again.Contexts)
}
