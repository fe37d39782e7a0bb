package loam

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/aretw0/loam"
)

// Loader adapts a Loam repository of flow documents to ports.FlowLoader.
// Flows are cached until the repository reports a change through Watch, or Invalidate is called.
type Loader struct {
	Repo *loam.TypedRepository[FlowMetadata]

	mu     sync.RWMutex
	cached []domain.Flow
}

// New creates a new Loam adapter.
func New(repo *loam.TypedRepository[FlowMetadata]) *Loader {
	return &Loader{Repo: repo}
}

// ListFlows returns every flow document, ordered by document ID.
func (l *Loader) ListFlows(ctx context.Context) ([]domain.Flow, error) {
	l.mu.RLock()
	if l.cached != nil {
		out := append([]domain.Flow(nil), l.cached...)
		l.mu.RUnlock()
		return out, nil
	}
	l.mu.RUnlock()

	docs, err := l.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })

	seen := make(map[string]string, len(docs))
	flows := make([]domain.Flow, 0, len(docs))
	for _, doc := range docs {
		flow := toFlow(doc.ID, doc.Data)
		if other, ok := seen[flow.Name]; ok {
			return nil, fmt.Errorf("collision detected: flow '%s' is defined in both '%s' and '%s'", flow.Name, other, doc.ID)
		}
		seen[flow.Name] = doc.ID
		flows = append(flows, flow)
	}

	l.mu.Lock()
	l.cached = flows
	l.mu.Unlock()

	return append([]domain.Flow(nil), flows...), nil
}

// Invalidate drops the cached flows.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	l.cached = nil
	l.mu.Unlock()
}

// Watch implements ports.Watchable. Every change invalidates the cache before it is forwarded.
func (l *Loader) Watch(ctx context.Context) (<-chan string, error) {
	events, err := l.Repo.Watch(ctx, "**/*.{md,json,yaml,yml}")
	if err != nil {
		return nil, fmt.Errorf("failed to start loam watcher: %w", err)
	}

	ch := make(chan string, 1)
	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-events:
				if !ok {
					return
				}
				l.Invalidate()
				select {
				case ch <- evt.ID:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return ch, nil
}

func toFlow(docID string, meta FlowMetadata) domain.Flow {
	name := meta.Name
	if name == "" {
		name = flowNameFromID(docID)
	}
	start := meta.StartNode
	if start == "" {
		start = meta.Start
	}

	flow := domain.Flow{
		Name:      domain.NormalizeFlowName(name),
		StartNode: start,
		CatchAll:  toTransitions(meta.CatchAll),
		Nodes:     make([]domain.Node, 0, len(meta.Nodes)),
	}
	for _, n := range meta.Nodes {
		nodeName := n.Name
		if nodeName == "" {
			nodeName = n.ID
		}
		flow.Nodes = append(flow.Nodes, domain.Node{
			Name:      nodeName,
			OnEnter:   toRefs(n.OnEnter),
			OnReceive: toRefs(n.OnReceive),
			Next:      toTransitions(n.Next),
		})
	}
	if flow.StartNode == "" && len(flow.Nodes) > 0 {
		flow.StartNode = flow.Nodes[0].Name
	}
	return flow
}

// flowNameFromID turns "flows/main.flow.yaml" into "flows/main".
func flowNameFromID(id string) string {
	id = filepath.ToSlash(id)
	id = strings.TrimSuffix(id, path.Ext(id))
	return strings.TrimSuffix(id, ".flow")
}

func toTransitions(in []TransitionMetadata) []domain.Transition {
	if len(in) == 0 {
		return nil
	}
	out := make([]domain.Transition, 0, len(in))
	for _, t := range in {
		dest := t.To
		if dest == "" {
			dest = t.Node
		}
		if dest == "" {
			dest = t.Flow
		}
		out = append(out, domain.Transition{
			Condition:   toExpression(t.Condition),
			Destination: dest,
		})
	}
	return out
}

func toExpression(v any) domain.Expression {
	switch c := v.(type) {
	case nil:
		return domain.Always
	case bool:
		return domain.Literal(c)
	case string:
		return domain.ParseExpression(c)
	}
	return domain.ParseExpression(fmt.Sprint(v))
}

func toRefs(in []string) []domain.Expression {
	if len(in) == 0 {
		return nil
	}
	out := make([]domain.Expression, 0, len(in))
	for _, s := range in {
		out = append(out, domain.Ref(s))
	}
	return out
}
