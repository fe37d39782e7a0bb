package memory

import (
	"fmt"
	"os"

	"github.com/aretw0/colloquy/pkg/domain"
	"gopkg.in/yaml.v3"
)

// bundle is the on-disk shape of a YAML flow bundle.
type bundle struct {
	Flows []bundleFlow `yaml:"flows"`
}

type bundleFlow struct {
	Name     string             `yaml:"name"`
	Start    string             `yaml:"start"`
	CatchAll []bundleTransition `yaml:"catch_all"`
	Nodes    []bundleNode       `yaml:"nodes"`
}

type bundleNode struct {
	Name      string             `yaml:"name"`
	OnEnter   []string           `yaml:"on_enter"`
	OnReceive []string           `yaml:"on_receive"`
	Next      []bundleTransition `yaml:"next"`
}

type bundleTransition struct {
	Condition string `yaml:"condition"`
	To        string `yaml:"to"`
	Node      string `yaml:"node"`
}

// NewLoaderFromYAML parses a flow bundle:
//
//	flows:
//	  - name: main
//	    start: entry
//	    nodes:
//	      - name: entry
//	        on_enter: [say_hello]
//	        next:
//	          - condition: "true"
//	            to: booking
func NewLoaderFromYAML(data []byte) (*Loader, error) {
	var b bundle
	if err := yaml.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("failed to parse flow bundle: %w", err)
	}

	flows := make([]domain.Flow, 0, len(b.Flows))
	for _, bf := range b.Flows {
		flows = append(flows, bf.toDomain())
	}
	return NewFromFlows(flows...)
}

// NewLoaderFromFile reads a YAML flow bundle from disk.
func NewLoaderFromFile(path string) (*Loader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read flow bundle: %w", err)
	}
	return NewLoaderFromYAML(data)
}

func (bf bundleFlow) toDomain() domain.Flow {
	f := domain.Flow{
		Name:      domain.NormalizeFlowName(bf.Name),
		StartNode: bf.Start,
		CatchAll:  toTransitions(bf.CatchAll),
		Nodes:     make([]domain.Node, 0, len(bf.Nodes)),
	}
	for _, bn := range bf.Nodes {
		f.Nodes = append(f.Nodes, domain.Node{
			Name:      bn.Name,
			OnEnter:   toExpressions(bn.OnEnter),
			OnReceive: toExpressions(bn.OnReceive),
			Next:      toTransitions(bn.Next),
		})
	}
	return f
}

func toTransitions(in []bundleTransition) []domain.Transition {
	if len(in) == 0 {
		return nil
	}
	out := make([]domain.Transition, 0, len(in))
	for _, t := range in {
		dest := t.To
		if dest == "" {
			dest = t.Node
		}
		out = append(out, domain.Transition{
			Condition:   domain.ParseExpression(t.Condition),
			Destination: dest,
		})
	}
	return out
}

func toExpressions(in []string) []domain.Expression {
	if len(in) == 0 {
		return nil
	}
	out := make([]domain.Expression, 0, len(in))
	for _, s := range in {
		out = append(out, domain.Ref(s))
	}
	return out
}
