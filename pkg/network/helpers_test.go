package network

import (
	"fmt"
	"slices"
	"testing"
)

// testModel returns a model with sequential ids and a fixed color.
func testModel(t *testing.T) *Model {
	t.Helper()
	n := 0
	return New(Options{
		NewID: func() string { n++; return fmt.Sprintf("id%d", n) },
		Color: func() int { return 3 },
	})
}

func mustNode(t *testing.T, m *Model, spec NodeSpec) *Node {
	t.Helper()
	n, err := m.AddNode(spec)
	if err != nil {
		t.Fatalf("AddNode(%+v) error: %v", spec, err)
	}
	return n
}

func mustEdge(t *testing.T, m *Model, from, to string) *Edge {
	t.Helper()
	e, err := m.AddEdge(EdgeSpec{From: from, To: to})
	if err != nil {
		t.Fatalf("AddEdge(%s, %s) error: %v", from, to, err)
	}
	return e
}

func mustEnter(t *testing.T, m *Model, id string) {
	t.Helper()
	if err := m.Enter(id); err != nil {
		t.Fatalf("Enter(%s) error: %v", id, err)
	}
}

func mustCheck(t *testing.T, m *Model) {
	t.Helper()
	if err := m.Check(); err != nil {
		t.Fatalf("Check() error: %v", err)
	}
}

// twoComponents builds c1 (input p1) and c2 (output p2) at root.
func twoComponents(t *testing.T) *Model {
	t.Helper()
	m := testModel(t)
	mustNode(t, m, NodeSpec{ID: "c1", Label: "C1", Kind: KindComponent})
	mustEnter(t, m, "c1")
	mustNode(t, m, NodeSpec{ID: "p1", Kind: KindInput})
	m.Exit()
	mustNode(t, m, NodeSpec{ID: "c2", Label: "C2", Kind: KindComponent})
	mustEnter(t, m, "c2")
	mustNode(t, m, NodeSpec{ID: "p2", Kind: KindOutput})
	m.Exit()
	return m
}

// chain builds a source node at root and depth nested components, each
// holding an input wired to a plain node. The source feeds the deepest input.
func chain(t *testing.T, depth int) *Model {
	t.Helper()
	m := testModel(t)
	src := mustNode(t, m, NodeSpec{Label: "src"})
	var deepest string
	for i := 0; i < depth; i++ {
		c := mustNode(t, m, NodeSpec{Label: fmt.Sprintf("L%d", i), Kind: KindComponent})
		mustEnter(t, m, c.ID)
		in := mustNode(t, m, NodeSpec{Label: fmt.Sprintf("in%d", i), Kind: KindInput})
		n := mustNode(t, m, NodeSpec{Label: fmt.Sprintf("n%d", i)})
		mustEdge(t, m, in.ID, n.ID)
		deepest = in.ID
	}
	if depth == 0 {
		dst := mustNode(t, m, NodeSpec{Label: "dst"})
		deepest = dst.ID
	}
	mustEdge(t, m, src.ID, deepest)
	m.ExitToRoot()
	return m
}

func countNodes(g *Subgraph) int {
	total := len(g.Nodes)
	for _, c := range g.Components() {
		total += countNodes(&c.Component.Graph)
	}
	return total
}

func countEdges(g *Subgraph) int {
	total := len(g.Edges)
	for _, c := range g.Components() {
		total += countEdges(&c.Component.Graph)
	}
	return total
}

// connectivity lists every edge as "fromLabel->toLabel" over logical
// endpoints, sorted.
func connectivity(t *testing.T, root *Subgraph) []string {
	t.Helper()
	var out []string
	walkEdges(root, nil, func(_ []string, _ *Subgraph, e *Edge) error {
		from, ok := Locate(root, e.ModelFrom)
		if !ok {
			t.Fatalf("edge %s: endpoint %s not found", e.ID, e.ModelFrom)
		}
		to, ok := Locate(root, e.ModelTo)
		if !ok {
			t.Fatalf("edge %s: endpoint %s not found", e.ID, e.ModelTo)
		}
		out = append(out, from.Node.Label+"->"+to.Node.Label)
		return nil
	})
	slices.Sort(out)
	return out
}

func intPtr(v int) *int { return &v }
