package domain

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiff(t *testing.T) {
	start := Target{FlowName: "main", NodeName: "start"}
	ask := Target{FlowName: "main", NodeName: "ask"}

	base := func() *SessionState {
		s := NewSessionState("sess-1", start)
		s.Slots["city"] = Slot{Name: "city", Value: "Paris", Overwritable: true}
		s.Contexts = []NLUContext{{Context: "booking", TTL: 2}}
		return s
	}

	t.Run("Initial Load (Old is Nil)", func(t *testing.T) {
		d := Diff(nil, base())
		require.NotNil(t, d)
		assert.Equal(t, "sess-1", d.SessionID)
		require.NotNil(t, d.Position)
		assert.Equal(t, "start", d.Position.NodeName)
		assert.Contains(t, d.Slots, "city")
		assert.Equal(t, []NLUContext{{Context: "booking", TTL: 2}}, d.Contexts)
		assert.Equal(t, []Target{start}, d.HistoryAppended)
	})

	t.Run("No Changes", func(t *testing.T) {
		assert.Nil(t, Diff(base(), base()))
	})

	t.Run("Navigation", func(t *testing.T) {
		old := base()
		next := old.Clone()
		next.Position = next.Position.Advance(ask)
		next.History = append(next.History, ask)

		d := Diff(old, next)
		require.NotNil(t, d)
		assert.Equal(t, "ask", d.Position.NodeName)
		assert.Equal(t, []Target{ask}, d.HistoryAppended)
		assert.Nil(t, d.Slots)
		assert.Nil(t, d.Contexts)
	})

	t.Run("Slot Added Modified & Deleted", func(t *testing.T) {
		old := base()
		old.Slots["size"] = Slot{Name: "size", Value: "L"}
		next := old.Clone()
		next.Slots["city"] = Slot{Name: "city", Value: "Rome", Overwritable: true}
		delete(next.Slots, "size")
		next.Slots["date"] = Slot{Name: "date", Value: "today"}

		d := Diff(old, next)
		require.NotNil(t, d)
		require.Len(t, d.Slots, 3)
		assert.Equal(t, "Rome", d.Slots["city"].Value)
		assert.Equal(t, "today", d.Slots["date"].Value)
		assert.Nil(t, d.Slots["size"])
	})

	t.Run("Contexts Cleared", func(t *testing.T) {
		old := base()
		next := old.Clone()
		next.Contexts = nil

		d := Diff(old, next)
		require.NotNil(t, d)
		assert.NotNil(t, d.Contexts)
		assert.Empty(t, d.Contexts)
	})
}

func TestDiff_JSONDeletionMarker(t *testing.T) {
	old := NewSessionState("s", Target{FlowName: "main", NodeName: "start"})
	old.Slots["gone"] = Slot{Name: "gone", Value: 1}
	next := old.Clone()
	delete(next.Slots, "gone")

	data, err := json.Marshal(Diff(old, next))
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `"gone":null`), string(data))
}
