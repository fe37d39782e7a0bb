package middleware_test

import (
	"context"
	"testing"

	"github.com/aretw0/colloquy/pkg/adapters/memory"
	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/aretw0/colloquy/pkg/persistence/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPIIMiddleware_Masking(t *testing.T) {
	underlying := memory.NewStore()
	mw, err := middleware.NewPIIMiddleware([]string{"card", "^ssn"})
	require.NoError(t, err)
	store := mw(underlying)
	ctx := context.Background()

	state := bookingState("s1")
	state.Slots["ssn_number"] = domain.Slot{Name: "ssn_number", Value: "999-99-9999"}
	state.Slots["city"] = domain.Slot{Name: "city", Value: "Rome", Source: "rome"}

	require.NoError(t, store.Save(ctx, "s1", state))
	assert.Equal(t, "4111-1111", state.Slots["card"].Value, "the caller's state is not modified")

	stored, err := underlying.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, middleware.Mask, stored.Slots["card"].Value)
	assert.Equal(t, middleware.Mask, stored.Slots["card"].Source)
	assert.Equal(t, middleware.Mask, stored.Slots["ssn_number"].Value)
	assert.Nil(t, stored.Slots["ssn_number"].Source, "absent sources stay absent")
	assert.Equal(t, "Rome", stored.Slots["city"].Value)
}

func TestPIIMiddleware_BadPattern(t *testing.T) {
	_, err := middleware.NewPIIMiddleware([]string{"("})
	assert.Error(t, err)
}

func TestWrap_OrderIsOutermostFirst(t *testing.T) {
	underlying := memory.NewStore()
	pii, err := middleware.NewPIIMiddleware([]string{"card"})
	require.NoError(t, err)
	enc, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	require.NoError(t, err)

	store := middleware.Wrap(underlying, pii, enc)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, "s1", bookingState("s1")))

	loaded, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, middleware.Mask, loaded.Slots["card"].Value, "masked before sealing")
}
