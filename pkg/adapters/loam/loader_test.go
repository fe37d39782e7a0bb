package loam

import (
	"context"
	"testing"

	"github.com/aretw0/loam"

	"github.com/aretw0/colloquy/internal/testutils"
	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/aretw0/colloquy/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLoader(t *testing.T, files map[string]string) *Loader {
	t.Helper()
	dir, repo := testutils.SetupTestRepo(t)
	testutils.WriteFlows(t, dir, files)
	return New(loam.NewTypedRepository[FlowMetadata](repo))
}

func TestLoader_Contract(t *testing.T) {
	loader := newLoader(t, testutils.BookingFlows)
	ports.RunFlowLoaderContract(t, loader, []string{"booking", "main"})
}

func TestLoader_ListFlows_DecodesDocuments(t *testing.T) {
	loader := newLoader(t, testutils.BookingFlows)

	flows, err := loader.ListFlows(context.Background())
	require.NoError(t, err)

	main, ok := domain.FindFlow(flows, "main")
	require.True(t, ok)
	assert.Equal(t, "entry", main.StartNode)

	entry, ok := main.Node("entry")
	require.True(t, ok)
	assert.Equal(t, []domain.Expression{domain.Ref("greet")}, entry.OnReceive)
	require.Len(t, entry.Next, 2)
	assert.Equal(t, domain.Ref("wantsBooking"), entry.Next[0].Condition)
	assert.Equal(t, "booking", entry.Next[0].Destination)
	assert.Equal(t, domain.Literal(true), entry.Next[1].Condition)

	require.Len(t, main.CatchAll, 1)
	assert.Equal(t, "help", main.CatchAll[0].Destination)

	booking, ok := domain.FindFlow(flows, "booking")
	require.True(t, ok)
	confirm, ok := booking.Node("confirm")
	require.True(t, ok)
	require.Len(t, confirm.Next, 1)
	assert.Equal(t, domain.Always, confirm.Next[0].Condition, "missing condition means always")
	assert.Equal(t, domain.ReturnMarker, confirm.Next[0].Destination)
}

func TestLoader_ListFlows_NamesFromFilename(t *testing.T) {
	loader := newLoader(t, map[string]string{
		"onboarding.flow.yaml": "nodes:\n  - name: hello\n",
		"nested/billing.md":    "---\nnodes:\n  - id: invoice\n---\n",
	})

	flows, err := loader.ListFlows(context.Background())
	require.NoError(t, err)

	onboarding, ok := domain.FindFlow(flows, "onboarding")
	require.True(t, ok, "the .flow suffix is stripped")
	assert.Equal(t, "hello", onboarding.StartNode, "the first node starts the flow by default")

	billing, ok := domain.FindFlow(flows, "nested/billing")
	require.True(t, ok)
	_, ok = billing.Node("invoice")
	assert.True(t, ok, "id is accepted as the node name")
}

func TestLoader_ListFlows_DetectsCollisions(t *testing.T) {
	loader := newLoader(t, map[string]string{
		"foo.md":   "---\nname: foo\nnodes:\n  - name: a\n---\n",
		"foo.json": `{"name": "foo", "nodes": [{"name": "b"}]}`,
	})

	_, err := loader.ListFlows(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "collision detected")
}

func TestLoader_CacheAndInvalidate(t *testing.T) {
	dir, repo := testutils.SetupTestRepo(t)
	testutils.WriteFlows(t, dir, testutils.BookingFlows)
	loader := New(loam.NewTypedRepository[FlowMetadata](repo))
	ctx := context.Background()

	first, err := loader.ListFlows(ctx)
	require.NoError(t, err)
	require.Len(t, first, 2)

	testutils.WriteFlows(t, dir, map[string]string{"help.md": "---\nname: help\nnodes:\n  - name: start\n---\n"})

	cached, err := loader.ListFlows(ctx)
	require.NoError(t, err)
	assert.Len(t, cached, 2, "served from cache")

	loader.Invalidate()
	fresh, err := loader.ListFlows(ctx)
	require.NoError(t, err)
	assert.Len(t, fresh, 3)
}
