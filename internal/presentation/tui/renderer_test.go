package tui_test

import (
	"bytes"
	"testing"

	"github.com/aretw0/colloquy/internal/presentation/tui"
	"github.com/aretw0/colloquy/internal/runtime"
	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTurnMarkdown(t *testing.T) {
	before := domain.NewSessionState("s1", domain.Target{FlowName: "main", NodeName: "entry"})
	after := before.Clone()
	after.Position = after.Position.Advance(domain.Target{FlowName: "booking", NodeName: "ask"})
	after.Slots["city"] = domain.Slot{Name: "city", Value: "Rome"}
	after.Contexts = []domain.NLUContext{{Context: "global", TTL: 0}, {Context: "booking", TTL: 3}}

	res := &runtime.TurnResult{
		TurnID:   "01TURN",
		Session:  after,
		Decision: runtime.Decision{Redirect: &domain.FlowRedirect{Flow: "booking"}},
		Ranked:   []domain.RankedTrigger{{Trigger: domain.Trigger{ID: "t1", Goal: "book"}, Score: 0.8}},
	}

	md := tui.TurnMarkdown(res, domain.Diff(before, after))

	assert.Contains(t, md, "# Turn `01TURN`")
	assert.Contains(t, md, "**Decision:** redirect booking")
	assert.Contains(t, md, "**Position:** `booking#ask`")
	assert.Contains(t, md, "| 1 | t1 | book | 0.800 |")
	assert.Contains(t, md, "slot `city` = `Rome`")
	assert.Contains(t, md, "context `global` (never expires)")
	assert.Contains(t, md, "context `booking` (3 turns)")
}

func TestPrinter_PlainWhenNotTerminal(t *testing.T) {
	var buf bytes.Buffer
	p := tui.NewPrinter(&buf)

	require.NoError(t, p.Print("# Title\n"))
	assert.Equal(t, "# Title\n", buf.String())
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	tui.PrintBanner(&buf)
	assert.Contains(t, buf.String(), "___")
}
