package memory_test

import (
	"testing"

	"github.com/aretw0/colloquy/pkg/adapters/memory"
	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/aretw0/colloquy/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bundleYAML = `
flows:
  - name: main.flow.json
    start: entry
    catch_all:
      - condition: event.nlu.intent.name === 'help'
        to: help
    nodes:
      - name: entry
        on_enter: [builtin/sendText]
        next:
          - condition: "true"
            to: booking
      - name: done
  - name: booking
    start: ask-city
    nodes:
      - name: ask-city
        on_receive: [extract/city]
        next:
          - condition: temp.city != null
            node: "#done"
`

func TestInMemoryLoader_Contract(t *testing.T) {
	loader, err := memory.NewLoaderFromYAML([]byte(bundleYAML))
	require.NoError(t, err)
	ports.RunFlowLoaderContract(t, loader, []string{"main", "booking"})
}

func TestNewLoaderFromYAML(t *testing.T) {
	loader, err := memory.NewLoaderFromYAML([]byte(bundleYAML))
	require.NoError(t, err)

	flows, err := loader.ListFlows(t.Context())
	require.NoError(t, err)
	require.Len(t, flows, 2)

	main := flows[0]
	assert.Equal(t, "main", main.Name, "file suffix is stripped")
	assert.Equal(t, "entry", main.StartNode)
	require.Len(t, main.CatchAll, 1)
	assert.Equal(t, domain.Ref("event.nlu.intent.name === 'help'"), main.CatchAll[0].Condition)

	entry, ok := main.Node("entry")
	require.True(t, ok)
	assert.Equal(t, []domain.Expression{domain.Ref("builtin/sendText")}, entry.OnEnter)
	assert.Equal(t, domain.Always, entry.Next[0].Condition)
	assert.Equal(t, "booking", entry.Next[0].Destination)

	ask, ok := flows[1].Node("ask-city")
	require.True(t, ok)
	assert.Equal(t, "#done", ask.Next[0].Destination)
	assert.True(t, ask.IsWaiting())
}

func TestNewFromFlows_Validation(t *testing.T) {
	_, err := memory.NewFromFlows(domain.Flow{StartNode: "x"})
	assert.Error(t, err)

	_, err = memory.NewFromFlows(domain.Flow{Name: "main"})
	assert.Error(t, err)
}
