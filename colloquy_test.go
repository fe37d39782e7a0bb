package colloquy_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aretw0/colloquy"
	"github.com/aretw0/colloquy/internal/testutils"
	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/aretw0/colloquy/pkg/dsl"
	"github.com/aretw0/colloquy/pkg/nlu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngine_LoamFlows_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	testutils.WriteFlows(t, dir, testutils.BookingFlows)

	eng, err := colloquy.New(dir, colloquy.WithConditionEvaluator(colloquy.RefTable(map[string]bool{
		"wantsBooking": true,
		"hasCity":      true,
	})))
	require.NoError(t, err)
	ctx := context.Background()

	state, err := eng.Start(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, domain.Target{FlowName: "main", NodeName: "entry"}, state.Position.Current())

	u, err := nlu.DecodeJSON([]byte(`{"slots": {"city": {"value": "Rome", "confidence": 0.9}}}`))
	require.NoError(t, err)

	res, err := eng.ProcessTurn(ctx, state, u)
	require.NoError(t, err)
	assert.True(t, res.ForcePersist, "a slot was written")
	assert.Equal(t, "Rome", res.Session.Slots["city"].Value)
	assert.Equal(t, domain.Target{FlowName: "booking", NodeName: "ask"}, res.Session.Position.Current())
	assert.Equal(t, domain.Target{FlowName: "main", NodeName: "entry"}, res.Session.Position.Previous())
	assert.Equal(t, domain.Target{FlowName: "main", NodeName: "entry"}, state.Position.Current(), "input state is untouched")

	res, err = eng.ProcessTurn(ctx, res.Session, domain.Understanding{})
	require.NoError(t, err)
	assert.Equal(t, domain.Target{FlowName: "booking", NodeName: "confirm"}, res.Session.Position.Current())
	assert.Equal(t, domain.Target{FlowName: "booking", NodeName: "ask"}, res.Session.Position.Previous(), "every move records the prior position")

	res, err = eng.ProcessTurn(ctx, res.Session, domain.Understanding{})
	require.NoError(t, err)
	assert.Equal(t, domain.Target{FlowName: "booking", NodeName: "ask"}, res.Session.Position.Current(), "## returns to the prior position")
	assert.Len(t, res.Session.History, 4)

	report, err := eng.Validate(ctx)
	require.NoError(t, err)
	assert.Error(t, report.Err(), "main's catch-all points to a missing help flow")
}

func TestEngine_WithLoader(t *testing.T) {
	b := dsl.New()
	b.Flow("misunderstood").Node("start")
	b.Flow("faq").Node("answer")
	loader, err := b.Build()
	require.NoError(t, err)

	eng, err := colloquy.New("", colloquy.WithLoader(loader), colloquy.WithNDU(true))
	require.NoError(t, err)
	assert.True(t, eng.NDUEnabled())
	ctx := context.Background()

	state, err := eng.Start(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "misunderstood", state.Position.FlowName)

	t.Run("Navigate", func(t *testing.T) {
		target, err := eng.Navigate(ctx, state.Position, "faq")
		require.NoError(t, err)
		assert.Equal(t, domain.Target{FlowName: "faq", NodeName: "answer"}, target)

		_, err = eng.Navigate(ctx, state.Position, "nowhere")
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrUnresolvableDestination))
		assert.Equal(t, "Could not find any node or flow under the name of 'nowhere'", err.Error())
	})

	t.Run("AppendContexts", func(t *testing.T) {
		next := eng.AppendContexts(state, "global, booking", 3)
		assert.Equal(t, []domain.NLUContext{{Context: "global", TTL: 3}, {Context: "booking", TTL: 3}}, next.Contexts)
		assert.Empty(t, state.Contexts)
	})

	t.Run("RankTriggers", func(t *testing.T) {
		ranked := eng.RankTriggers(map[string]domain.Trigger{
			"low":  {Result: map[string]float64{"a": 0.2}},
			"high": {Result: map[string]float64{"a": 1, "b": 0.6}},
		})
		require.Len(t, ranked, 2)
		assert.InDelta(t, 0.8, ranked[0].Score, 1e-9)
		assert.InDelta(t, 0.2, ranked[1].Score, 1e-9)
	})

	t.Run("Redirect with node", func(t *testing.T) {
		res, err := eng.ProcessTurn(ctx, state, domain.Understanding{Actions: []domain.TurnAction{
			{Kind: domain.ActionGoToNode, Redirect: &domain.FlowRedirect{Flow: "faq.flow.json", Node: "answer"}},
		}})
		require.NoError(t, err)
		assert.Equal(t, "redirect faq#answer", res.Decision.Describe())
		assert.Equal(t, domain.Target{FlowName: "faq", NodeName: "answer"}, res.Session.Position.Current())
	})

	_, err = eng.Watch(ctx)
	assert.Error(t, err, "memory loader cannot be watched")
}

func TestNew_RequiresFlowsDir(t *testing.T) {
	_, err := colloquy.New("")
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	assert.NotEmpty(t, strings.TrimSpace(colloquy.Version))
}
