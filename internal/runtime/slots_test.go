package runtime_test

import (
	"testing"
	"time"

	"github.com/aretw0/colloquy/internal/runtime"
	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func TestUpdateSlots_ExpiryBoundary(t *testing.T) {
	existing := domain.SlotMap{
		"city":    {Name: "city", Value: "Paris", Turns: 1, Overwritable: true, ExpiresAfterTurns: domain.ExpireAfter(2)},
		"size":    {Name: "size", Value: "L", Turns: 0, Overwritable: true, ExpiresAfterTurns: domain.ExpireAfter(2)},
		"forever": {Name: "forever", Value: true, Turns: 500, Overwritable: true},
	}

	got := runtime.UpdateSlots(existing, domain.Understanding{}, runtime.SlotOptions{Now: t0})

	assert.NotContains(t, got.Slots, "city", "turns reached expiresAfterTurns")
	require.Contains(t, got.Slots, "size")
	assert.Equal(t, 1, got.Slots["size"].Turns)
	require.Contains(t, got.Slots, "forever", "disabled expiry never expires")
	assert.Equal(t, 501, got.Slots["forever"].Turns)
	assert.Equal(t, []string{"city"}, got.Expired)
	assert.False(t, got.ForcePersist)

	// input untouched
	assert.Equal(t, 1, existing["city"].Turns)
	assert.Contains(t, existing, "city")
}

func TestUpdateSlots_ExpiresAcrossTurns(t *testing.T) {
	slots := domain.SlotMap{
		"city": {Name: "city", Value: "Paris", Overwritable: true, ExpiresAfterTurns: domain.ExpireAfter(3)},
	}

	for _, wantTurns := range []int{1, 2} {
		got := runtime.UpdateSlots(slots, domain.Understanding{}, runtime.SlotOptions{Now: t0})
		require.Contains(t, got.Slots, "city")
		assert.Equal(t, wantTurns, got.Slots["city"].Turns)
		assert.Empty(t, got.Expired)
		slots = got.Slots
	}

	got := runtime.UpdateSlots(slots, domain.Understanding{}, runtime.SlotOptions{Now: t0})
	assert.NotContains(t, got.Slots, "city", "removed once turns reach 3")
	assert.Equal(t, []string{"city"}, got.Expired)

	again := runtime.UpdateSlots(got.Slots, domain.Understanding{}, runtime.SlotOptions{Now: t0})
	assert.Empty(t, again.Slots)
	assert.Empty(t, again.Expired, "an expired slot stays gone")
}

func TestUpdateSlots_ProtectedSlotIsNeverOverwritten(t *testing.T) {
	existing := domain.SlotMap{
		"city": {Name: "city", Value: "Paris", Overwritable: false},
	}
	u := domain.Understanding{Slots: domain.SlotCollection{
		"city": {{Name: "city", Value: "Rome", Confidence: 0.9}},
	}}

	got := runtime.UpdateSlots(existing, u, runtime.SlotOptions{Now: t0})

	assert.Equal(t, "Paris", got.Slots["city"].Value)
	assert.Equal(t, 1, got.Slots["city"].Turns)
	assert.Equal(t, []string{"city"}, got.Skipped)
	assert.Empty(t, got.Written)
	assert.False(t, got.ForcePersist)
}

func TestUpdateSlots_WriteResetsSlot(t *testing.T) {
	existing := domain.SlotMap{
		"city": {Name: "city", Value: "Paris", Turns: 4, Overwritable: true, ExpiresAfterTurns: domain.ExpireAfter(9)},
	}
	u := domain.Understanding{Slots: domain.SlotCollection{
		"city": {{Name: "city", Value: "Rome", Source: "rome", Confidence: 0.8}},
	}}

	got := runtime.UpdateSlots(existing, u, runtime.SlotOptions{Now: t0})

	s := got.Slots["city"]
	assert.Equal(t, "Rome", s.Value)
	assert.Equal(t, "rome", s.Source)
	assert.Equal(t, 0, s.Turns)
	assert.True(t, s.Overwritable)
	assert.Nil(t, s.ExpiresAfterTurns)
	assert.Equal(t, t0, s.Timestamp)
	assert.True(t, got.ForcePersist)
}

func TestSelectCandidates_Default(t *testing.T) {
	u := domain.Understanding{Slots: domain.SlotCollection{
		"size": {{Value: nil}, {Value: "L"}},
		"city": {{Name: "city", Value: "Rome"}, {Name: "city", Value: "Milan"}},
		"void": {{Name: "void", Value: nil}},
	}}

	got := runtime.SelectCandidates(u, runtime.SlotOptions{})

	require.Len(t, got, 2)
	assert.Equal(t, "city", got[0].Name)
	assert.Equal(t, "Rome", got[0].Value, "first element of a list wins")
	assert.Equal(t, "size", got[1].Name, "map key fills a missing name")
	assert.Equal(t, "L", got[1].Value)
}

func TestSelectCandidates_FirstNameWins(t *testing.T) {
	u := domain.Understanding{Slots: domain.SlotCollection{
		"b-location": {{Name: "city", Value: "Milan"}},
		"a-city":     {{Name: "city", Value: "Rome"}},
	}}

	got := runtime.SelectCandidates(u, runtime.SlotOptions{})
	require.Len(t, got, 1)
	assert.Equal(t, "Rome", got[0].Value)

	merged := runtime.UpdateSlots(nil, u, runtime.SlotOptions{Now: t0})
	assert.Equal(t, "Rome", merged.Slots["city"].Value)
	assert.Equal(t, []string{"city"}, merged.Written)
}

func TestSelectCandidates_Topic(t *testing.T) {
	u := domain.Understanding{
		Slots: domain.SlotCollection{"ignored": {{Name: "ignored", Value: 1}}},
		Predictions: map[string]domain.TopicPrediction{
			"travel": {Intents: []domain.IntentPrediction{
				{Label: "book", Confidence: 0.4, Slots: domain.SlotCollection{"city": {{Name: "city", Value: "Oslo"}}}},
				{Label: "cancel", Confidence: 0.7, Slots: domain.SlotCollection{"ref": {{Name: "ref", Value: "X1"}}}},
			}},
		},
	}

	t.Run("topic with NDU uses the best intent", func(t *testing.T) {
		got := runtime.SelectCandidates(u, runtime.SlotOptions{CurrentTopic: "travel", NDUEnabled: true})
		require.Len(t, got, 1)
		assert.Equal(t, "ref", got[0].Name)
	})

	t.Run("topic without NDU uses the default path", func(t *testing.T) {
		got := runtime.SelectCandidates(u, runtime.SlotOptions{CurrentTopic: "travel"})
		require.Len(t, got, 1)
		assert.Equal(t, "ignored", got[0].Name)
	})

	t.Run("unknown topic yields nothing", func(t *testing.T) {
		got := runtime.SelectCandidates(u, runtime.SlotOptions{CurrentTopic: "music", NDUEnabled: true})
		assert.Empty(t, got)
	})
}
