package network

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/matzehuels/hiernet/pkg/errors"
)

const maxSequenceDepth = 3

func nodeIDs(g *Subgraph) []string {
	var out []string
	for _, n := range g.Nodes {
		out = append(out, n.ID)
		if n.IsComponent() {
			out = append(out, nodeIDs(&n.Component.Graph)...)
		}
	}
	return out
}

func edgeIDs(g *Subgraph) []string {
	var out []string
	walkEdges(g, nil, func(_ []string, _ *Subgraph, e *Edge) error {
		out = append(out, e.ID)
		return nil
	})
	return out
}

func pick(rng *rand.Rand, ids []string) string {
	if len(ids) == 0 {
		return "ghost"
	}
	return ids[rng.IntN(len(ids))]
}

func levelIDs(m *Model) []string {
	var out []string
	for _, n := range m.Current().Nodes {
		out = append(out, n.ID)
	}
	return out
}

// step performs one random operation and returns its name and error.
func step(rng *rand.Rand, m *Model) (string, error) {
	switch rng.IntN(8) {
	case 0, 1:
		kinds := []Kind{KindPlain, KindPlain, KindComponent, KindInput, KindOutput}
		k := kinds[rng.IntN(len(kinds))]
		_, err := m.AddNode(NodeSpec{Kind: k, X: rng.Float64() * 800, Y: rng.Float64() * 600})
		return "add " + k.String(), err
	case 2, 3:
		// Deep edges need one endpoint at or below the current level.
		all := nodeIDs(m.Root())
		from, to := pick(rng, all), pick(rng, nodeIDs(m.Current()))
		if rng.IntN(2) == 0 {
			from, to = to, from
		}
		_, err := m.AddEdge(EdgeSpec{From: from, To: to})
		return fmt.Sprintf("edge %s -> %s", from, to), err
	case 4:
		if m.Depth() >= maxSequenceDepth {
			return "fold skipped", nil
		}
		level := levelIDs(m)
		rng.Shuffle(len(level), func(i, j int) { level[i], level[j] = level[j], level[i] })
		ids := level[:min(len(level), 1+rng.IntN(3))]
		_, err := m.Fold(ids, FoldOptions{})
		return fmt.Sprintf("fold %v", ids), err
	case 5:
		comps := m.Current().Components()
		if len(comps) == 0 || m.Depth() >= maxSequenceDepth || rng.IntN(3) == 0 {
			m.Exit()
			return "exit", nil
		}
		id := comps[rng.IntN(len(comps))].ID
		return "enter " + id, m.Enter(id)
	case 6:
		id := pick(rng, edgeIDs(m.Root()))
		return "delete edge " + id, m.DeleteEdges(id)
	default:
		id := pick(rng, levelIDs(m))
		return "delete node " + id, m.DeleteNodes(id)
	}
}

func TestRandomEditSequences(t *testing.T) {
	tests := []struct {
		seed  uint64
		steps int
	}{
		{1, 300},
		{7, 300},
		{42, 500},
		{2026, 500},
		{90210, 1000},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("seed %d", tt.seed), func(t *testing.T) {
			rng := rand.New(rand.NewPCG(tt.seed, tt.seed^0x9e3779b97f4a7c15))
			m := testModel(t)
			var applied, rejected int
			for i := 0; i < tt.steps; i++ {
				nodes, edges := countNodes(m.Root()), countEdges(m.Root())
				name, err := step(rng, m)
				if err != nil {
					if !errors.IsValidation(err) {
						t.Fatalf("step %d (%s): %v is not a validation error", i, name, err)
					}
					if countNodes(m.Root()) != nodes || countEdges(m.Root()) != edges {
						t.Fatalf("step %d (%s) failed with %v but changed the document", i, name, err)
					}
					rejected++
				} else {
					applied++
				}
				if err := m.Check(); err != nil {
					t.Fatalf("step %d (%s): Check() error: %v", i, name, err)
				}
			}
			if applied == 0 {
				t.Errorf("no step of %d applied (%d rejected)", tt.steps, rejected)
			}
		})
	}
}
