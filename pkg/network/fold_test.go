package network

import (
	"slices"
	"testing"

	"github.com/matzehuels/hiernet/pkg/errors"
)

func portsOf(c *Node, kind Kind) []*Node {
	var out []*Node
	for _, n := range c.Component.Graph.Nodes {
		if n.Kind == kind {
			out = append(out, n)
		}
	}
	return out
}

func TestFoldInternalEdgeOnly(t *testing.T) {
	m := testModel(t)
	mustNode(t, m, NodeSpec{ID: "1", Label: "A", X: 10, Y: 20})
	mustNode(t, m, NodeSpec{ID: "2", Label: "B", X: 50, Y: 60})
	e := mustEdge(t, m, "1", "2")

	c, err := m.Fold([]string{"1", "2"}, FoldOptions{Label: "C"})
	if err != nil {
		t.Fatalf("Fold error: %v", err)
	}
	mustCheck(t, m)

	root := m.Root()
	if len(root.Nodes) != 1 || root.Nodes[0] != c {
		t.Fatalf("root nodes = %v, want only the component", root.Nodes)
	}
	if len(root.Edges) != 0 {
		t.Errorf("root edges = %v, want none", root.Edges)
	}

	sub := &c.Component.Graph
	var kinds []Kind
	for _, n := range sub.Nodes {
		kinds = append(kinds, n.Kind)
	}
	if !slices.Equal(kinds, []Kind{KindPlain, KindPlain, KindInput, KindOutput}) {
		t.Errorf("component node kinds = %v", kinds)
	}
	if len(sub.Edges) != 1 || sub.Edges[0].ID != e.ID || sub.Edges[0].From != "1" || sub.Edges[0].To != "2" {
		t.Errorf("component edges = %+v, want the original 1 -> 2", sub.Edges)
	}

	if c.X != 10 || c.Y != 20 {
		t.Errorf("component at (%v, %v), want first selected node's (10, 20)", c.X, c.Y)
	}
	in, out := portsOf(c, KindInput)[0], portsOf(c, KindOutput)[0]
	if in.X != 10-FoldMargin || out.X != 50+FoldMargin || in.Y != 40 || out.Y != 40 {
		t.Errorf("ports at (%v, %v) and (%v, %v)", in.X, in.Y, out.X, out.Y)
	}
	if in.Label != "Input 1" || out.Label != "Output 1" {
		t.Errorf("port labels = %q, %q", in.Label, out.Label)
	}
}

func TestFoldStructureCounts(t *testing.T) {
	m := testModel(t)
	for _, id := range []string{"a", "b", "c", "x", "y"} {
		mustNode(t, m, NodeSpec{ID: id, Label: id})
	}
	ext1 := mustEdge(t, m, "x", "a")
	mustEdge(t, m, "a", "b")
	mustEdge(t, m, "b", "c")
	ext2 := mustEdge(t, m, "c", "y")
	other := mustEdge(t, m, "x", "y")
	before := connectivity(t, m.Root())

	c, err := m.Fold([]string{"a", "b", "c"}, FoldOptions{ID: "comp"})
	if err != nil {
		t.Fatalf("Fold error: %v", err)
	}
	mustCheck(t, m)

	root := m.Root()
	var ids []string
	for _, n := range root.Nodes {
		ids = append(ids, n.ID)
	}
	if !slices.Equal(ids, []string{"comp", "x", "y"}) {
		t.Errorf("root nodes = %v, want [comp x y]", ids)
	}

	sub := &c.Component.Graph
	if len(sub.Nodes) != 5 {
		t.Errorf("component holds %d nodes, want 3 selected + 2 ports", len(sub.Nodes))
	}
	if len(sub.Edges) != 2 {
		t.Errorf("component holds %d edges, want the 2 internal ones", len(sub.Edges))
	}

	if len(root.Edges) != 3 {
		t.Fatalf("root holds %d edges, want 2 external + 1 untouched", len(root.Edges))
	}
	in, out := portsOf(c, KindInput)[0], portsOf(c, KindOutput)[0]

	e1 := root.Edge(ext1.ID)
	if e1.From != "x" || e1.To != "comp" || e1.ModelTo != "a" || !slices.Equal(e1.ToPath, []string{"comp"}) {
		t.Errorf("incoming edge = %+v", e1)
	}
	e2 := root.Edge(ext2.ID)
	if e2.From != "comp" || e2.To != "y" || e2.ModelFrom != "c" || !slices.Equal(e2.FromPath, []string{"comp"}) {
		t.Errorf("outgoing edge = %+v", e2)
	}
	if e := root.Edge(other.ID); e.From != "x" || e.To != "y" || e.IsDeep() {
		t.Errorf("untouched edge = %+v", e)
	}

	if refs := c.Component.Inputs[in.ID]; len(refs) != 1 || refs[0].Peer != "x" || len(refs[0].Path) != 0 {
		t.Errorf("Inputs[%s] = %+v", in.ID, refs)
	}
	if refs := c.Component.Outputs[out.ID]; len(refs) != 1 || refs[0].Peer != "y" {
		t.Errorf("Outputs[%s] = %+v", out.ID, refs)
	}

	if after := connectivity(t, root); !slices.Equal(after, before) {
		t.Errorf("connectivity = %v, want %v", after, before)
	}
}

func TestFoldReusesSelectedPorts(t *testing.T) {
	m := testModel(t)
	mustNode(t, m, NodeSpec{ID: "outer", Kind: KindComponent})
	mustEnter(t, m, "outer")
	mustNode(t, m, NodeSpec{ID: "x"})
	mustNode(t, m, NodeSpec{ID: "p", Kind: KindInput})
	mustNode(t, m, NodeSpec{ID: "a"})
	ext := mustEdge(t, m, "x", "p")
	mustEdge(t, m, "p", "a")

	c, err := m.Fold([]string{"p", "a"}, FoldOptions{})
	if err != nil {
		t.Fatalf("Fold error: %v", err)
	}
	mustCheck(t, m)

	if got := len(portsOf(c, KindInput)); got != 1 {
		t.Errorf("component has %d inputs, want the selected one only", got)
	}
	if got := len(portsOf(c, KindOutput)); got != 1 {
		t.Errorf("component has %d outputs, want 1 synthesized", got)
	}
	if got := len(c.Component.Graph.Edges); got != 1 {
		t.Errorf("component has %d edges, want 1", got)
	}
	if e := m.Current().Edge(ext.ID); e.ModelTo != "p" || e.To != c.ID {
		t.Errorf("incoming edge = %+v", e)
	}
}

func TestFoldEdgeBudget(t *testing.T) {
	tests := []struct {
		name     string
		sources  int // external nodes feeding every selected node
		selected int
	}{
		{"single entry", 1, 1},
		{"fan in", 3, 1},
		{"three entry nodes", 1, 3},
		{"dense", 3, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := testModel(t)
			var ids []string
			for i := 0; i < tt.selected; i++ {
				ids = append(ids, mustNode(t, m, NodeSpec{}).ID)
			}
			for i := 0; i < tt.sources; i++ {
				x := mustNode(t, m, NodeSpec{})
				for _, id := range ids {
					mustEdge(t, m, x.ID, id)
				}
			}
			before := connectivity(t, m.Root())

			c, err := m.Fold(ids, FoldOptions{})
			if err != nil {
				t.Fatalf("Fold error: %v", err)
			}
			mustCheck(t, m)

			if got := len(c.Component.Graph.Edges); got != 0 {
				t.Errorf("component holds %d edges, want none", got)
			}
			in := portsOf(c, KindInput)[0]
			if got, want := len(c.Component.Inputs[in.ID]), tt.sources*tt.selected; got != want {
				t.Errorf("Inputs[%s] has %d entries, want %d", in.ID, got, want)
			}
			if got, want := countEdges(m.Root()), tt.sources*tt.selected; got != want {
				t.Errorf("document holds %d edges, want %d", got, want)
			}
			if after := connectivity(t, m.Root()); !slices.Equal(after, before) {
				t.Errorf("connectivity = %v, want %v", after, before)
			}
		})
	}
}

func TestFoldWithoutSpareGatePort(t *testing.T) {
	m := testModel(t)
	mustNode(t, m, NodeSpec{ID: "x"})
	mustNode(t, m, NodeSpec{ID: "outer", Kind: KindComponent})
	mustEnter(t, m, "outer")
	mustNode(t, m, NodeSpec{ID: "p", Kind: KindInput})
	mustNode(t, m, NodeSpec{ID: "a"})
	mustEdge(t, m, "x", "a")

	// Moving outer's only input away would strand the edge entering a.
	_, err := m.Fold([]string{"p"}, FoldOptions{})
	if !errors.Is(err, errors.ErrCodeInvalidEdge) {
		t.Fatalf("Fold error = %v, want %s", err, errors.ErrCodeInvalidEdge)
	}
	mustCheck(t, m)
	if m.Current().Node("p") == nil {
		t.Error("failed fold moved the port")
	}
}

func TestFoldKeepsNestedEndpoints(t *testing.T) {
	m := twoComponents(t)
	mustEnter(t, m, "c1")
	deep := mustEdge(t, m, "p2", "p1")
	mustNode(t, m, NodeSpec{ID: "q"})
	mustEdge(t, m, "p1", "q")

	k, err := m.Fold([]string{"p1", "q"}, FoldOptions{ID: "k", Label: "K"})
	if err != nil {
		t.Fatalf("Fold error: %v", err)
	}
	mustCheck(t, m)

	root := m.Root()
	e := root.Edge(deep.ID)
	if e.To != "c1" || e.ModelTo != "p1" || !slices.Equal(e.ToPath, []string{"c1", "k"}) {
		t.Errorf("deep edge after nested fold = %+v", e)
	}
	if refs := k.Component.Inputs["p1"]; len(refs) != 1 || refs[0].Peer != "p2" {
		t.Errorf("k.Inputs[p1] = %+v", refs)
	}
	if len(root.Node("c1").Component.Inputs) != 0 {
		t.Errorf("c1.Inputs = %v, want empty", root.Node("c1").Component.Inputs)
	}
	if refs := root.Node("c2").Component.Outputs["p2"]; len(refs) != 1 || !slices.Equal(refs[0].Path, []string{"c1", "k"}) {
		t.Errorf("c2.Outputs[p2] = %+v", refs)
	}
}

func TestFoldComponentEndpoint(t *testing.T) {
	m := twoComponents(t)
	shallow := mustEdge(t, m, "c2", "c1")

	outer, err := m.Fold([]string{"c1"}, FoldOptions{ID: "outer"})
	if err != nil {
		t.Fatalf("Fold error: %v", err)
	}
	mustCheck(t, m)

	in := portsOf(outer, KindInput)[0]
	e := m.Root().Edge(shallow.ID)
	if e.To != "outer" || e.ModelTo != "c1" || !slices.Equal(e.ToPath, []string{"outer"}) {
		t.Errorf("edge to folded component = %+v", e)
	}
	if refs := outer.Component.Inputs[in.ID]; len(refs) != 1 || refs[0].EdgeID != shallow.ID {
		t.Errorf("Inputs[%s] = %+v", in.ID, refs)
	}
	if n := len(outer.Component.Graph.Edges); n != 0 {
		t.Errorf("outer holds %d edges, want none", n)
	}
}

func TestFoldValidation(t *testing.T) {
	m := testModel(t)
	mustNode(t, m, NodeSpec{ID: "a"})
	mustNode(t, m, NodeSpec{ID: "b"})
	mustEdge(t, m, "a", "b")

	tests := []struct {
		name string
		ids  []string
		opts FoldOptions
		code errors.Code
	}{
		{"empty selection", nil, FoldOptions{}, errors.ErrCodeInvalidSelection},
		{"unknown node", []string{"a", "ghost"}, FoldOptions{}, errors.ErrCodeInvalidSelection},
		{"duplicate node", []string{"a", "a"}, FoldOptions{}, errors.ErrCodeInvalidSelection},
		{"color out of range", []string{"a"}, FoldOptions{Color: intPtr(9)}, errors.ErrCodeInvalidColor},
		{"taken id", []string{"a"}, FoldOptions{ID: "b"}, errors.ErrCodeDuplicateID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.Fold(tt.ids, tt.opts)
			if !errors.Is(err, tt.code) {
				t.Errorf("Fold error = %v, want %s", err, tt.code)
			}
		})
	}
	if len(m.Root().Nodes) != 2 || len(m.Root().Edges) != 1 {
		t.Errorf("failed folds changed the document: %d nodes, %d edges", len(m.Root().Nodes), len(m.Root().Edges))
	}
}

func TestFoldInsideComponentPropagates(t *testing.T) {
	m := testModel(t)
	outer := mustNode(t, m, NodeSpec{Kind: KindComponent})
	mustEnter(t, m, outer.ID)
	a := mustNode(t, m, NodeSpec{})
	b := mustNode(t, m, NodeSpec{})

	inner, err := m.Fold([]string{a.ID, b.ID}, FoldOptions{})
	if err != nil {
		t.Fatalf("Fold error: %v", err)
	}
	mustCheck(t, m)

	held := m.Root().Node(outer.ID).Component.Graph
	if len(held.Nodes) != 1 || held.Nodes[0].ID != inner.ID {
		t.Errorf("root copy of outer holds %v, want only %s", held.Nodes, inner.ID)
	}
	if m.Current().Node(inner.ID) != inner {
		t.Error("returned component is not the live one")
	}
}
