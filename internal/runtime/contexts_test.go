package runtime_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/aretw0/colloquy/internal/runtime"
	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestAppendContexts(t *testing.T) {
	tests := []struct {
		name     string
		existing []domain.NLUContext
		names    string
		ttl      float64
		want     []domain.NLUContext
	}{
		{
			name:  "trims names",
			names: " a , b",
			ttl:   3,
			want:  []domain.NLUContext{{Context: "a", TTL: 3}, {Context: "b", TTL: 3}},
		},
		{
			name:  "non finite ttl uses the default",
			names: "a",
			ttl:   math.NaN(),
			want:  []domain.NLUContext{{Context: "a", TTL: domain.DefaultContextTTL}},
		},
		{
			name:  "infinite ttl uses the default",
			names: "a",
			ttl:   math.Inf(1),
			want:  []domain.NLUContext{{Context: "a", TTL: domain.DefaultContextTTL}},
		},
		{
			name:  "fractional ttl truncates",
			names: "a",
			ttl:   2.9,
			want:  []domain.NLUContext{{Context: "a", TTL: 2}},
		},
		{
			name:  "huge ttl saturates",
			names: "a",
			ttl:   1e300,
			want:  []domain.NLUContext{{Context: "a", TTL: math.MaxInt}},
		},
		{
			name:  "huge negative ttl saturates",
			names: "a",
			ttl:   -1e300,
			want:  []domain.NLUContext{{Context: "a", TTL: math.MinInt}},
		},
		{
			name:  "zero ttl is kept",
			names: "a",
			ttl:   0,
			want:  []domain.NLUContext{{Context: "a", TTL: 0}},
		},
		{
			name:     "higher ttl wins and first position is kept",
			existing: []domain.NLUContext{{Context: "a", TTL: 2}, {Context: "b", TTL: 9}},
			names:    "b,a",
			ttl:      5,
			want:     []domain.NLUContext{{Context: "a", TTL: 5}, {Context: "b", TTL: 9}},
		},
		{
			name:     "zero ranks lowest",
			existing: []domain.NLUContext{{Context: "a", TTL: 0}},
			names:    "a",
			ttl:      1,
			want:     []domain.NLUContext{{Context: "a", TTL: 1}},
		},
		{
			name:  "duplicates inside the csv collapse",
			names: "a,a",
			ttl:   4,
			want:  []domain.NLUContext{{Context: "a", TTL: 4}},
		},
		{
			name:  "empty names pass through",
			names: "a,,",
			ttl:   1,
			want:  []domain.NLUContext{{Context: "a", TTL: 1}, {Context: "", TTL: 1}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, runtime.AppendContexts(tt.existing, tt.names, tt.ttl))
		})
	}
}

func TestAppendContexts_Idempotent(t *testing.T) {
	once := runtime.AppendContexts([]domain.NLUContext{{Context: "x", TTL: 1}}, "a,b", 3)
	twice := runtime.AppendContexts(once, "a,b", 3)
	assert.Equal(t, once, twice)
}

func TestAppendContexts_DoesNotMutateInput(t *testing.T) {
	existing := []domain.NLUContext{{Context: "a", TTL: 1}}
	_ = runtime.AppendContexts(existing, "a", 10)
	assert.Equal(t, 1, existing[0].TTL)
}

func TestDecrementContexts(t *testing.T) {
	got := runtime.DecrementContexts([]domain.NLUContext{
		{Context: "forever", TTL: 0},
		{Context: "last", TTL: 1},
		{Context: "more", TTL: 3},
	})
	assert.Equal(t, []domain.NLUContext{
		{Context: "forever", TTL: 0},
		{Context: "more", TTL: 2},
	}, got)
}

func TestDecrementContexts_Extremes(t *testing.T) {
	got := runtime.DecrementContexts([]domain.NLUContext{
		{Context: "max", TTL: math.MaxInt},
		{Context: "min", TTL: math.MinInt},
		{Context: "negative", TTL: -3},
	})
	assert.Equal(t, []domain.NLUContext{{Context: "max", TTL: math.MaxInt - 1}}, got, "negative TTLs drop without wrapping")

	huge := runtime.AppendContexts(nil, "a", 1e300)
	assert.Equal(t, math.MaxInt-1, runtime.DecrementContexts(huge)[0].TTL)
}

func TestResolveTTL(t *testing.T) {
	assert.Equal(t, 5.0, runtime.ResolveTTL(5))
	assert.Equal(t, 2.5, runtime.ResolveTTL("2.5"))
	assert.Equal(t, 7.0, runtime.ResolveTTL(json.Number("7")))
	assert.True(t, math.IsNaN(runtime.ResolveTTL(nil)))
	assert.True(t, math.IsNaN(runtime.ResolveTTL("soon")))
	assert.True(t, math.IsNaN(runtime.ResolveTTL([]int{1})))
}
