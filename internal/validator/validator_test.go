package validator

import (
	"context"
	"testing"

	"github.com/aretw0/colloquy/pkg/adapters/memory"
	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/aretw0/colloquy/pkg/dsl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateFlows_Valid(t *testing.T) {
	b := dsl.New()
	b.Flow("main").Node("entry").Branch("wantsBooking", "booking").Go("fallback")
	b.Flow("main").Node("fallback")
	b.Flow("main").Node("from_help").Return()
	b.Flow("main").CatchAll("wantsHelp", "from_help")
	b.Flow("booking").Node("ask").Go("#fallback")

	loader, err := b.Build()
	require.NoError(t, err)

	report, err := Validate(context.Background(), loader)
	require.NoError(t, err)
	assert.NoError(t, report.Err())
	assert.Empty(t, report.Warnings, "catch-all targets count as reachable")
}

func TestValidateFlows_Problems(t *testing.T) {
	flows := []domain.Flow{
		{
			Name:      "main",
			StartNode: "entry",
			Nodes: []domain.Node{
				{Name: "entry", Next: []domain.Transition{{Condition: domain.Always, Destination: "ghost"}}},
				{Name: "orphan"},
			},
		},
		{Name: "main", StartNode: "entry", Nodes: []domain.Node{{Name: "entry"}}},
		{Name: "broken", StartNode: "missing", Nodes: []domain.Node{{Name: "a"}, {Name: "a"}}},
	}

	report := ValidateFlows(flows)

	assert.ElementsMatch(t, []string{
		"flow 'main': node 'entry' points to 'ghost', which is neither a node nor a flow",
		"duplicate flow 'main': only the first definition is reachable",
		"flow 'broken': duplicate node 'a'",
		"flow 'broken': start node 'missing' not found",
	}, report.Errors)
	assert.Equal(t, []string{"flow 'main': node 'orphan' is unreachable from 'entry'"}, report.Warnings)

	err := report.Err()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "found 4 errors")
}

func TestValidate_Empty(t *testing.T) {
	report, err := Validate(context.Background(), memory.NewLoader())
	require.NoError(t, err)
	assert.NoError(t, report.Err())
}
