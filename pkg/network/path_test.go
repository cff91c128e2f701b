package network

import (
	"slices"
	"testing"

	"github.com/matzehuels/hiernet/pkg/errors"
)

// nestedDoc is root{a, c1{x, c2{y}}}.
func nestedDoc() *Subgraph {
	c2 := &Node{ID: "c2", Kind: KindComponent, Component: &Component{
		Graph:  Subgraph{Nodes: []*Node{{ID: "y"}}},
		Inputs: Ports{}, Outputs: Ports{},
	}}
	c1 := &Node{ID: "c1", Kind: KindComponent, Component: &Component{
		Graph:  Subgraph{Nodes: []*Node{{ID: "x"}, c2}},
		Inputs: Ports{}, Outputs: Ports{},
	}}
	return &Subgraph{Nodes: []*Node{{ID: "a"}, c1}}
}

func TestDeepPath(t *testing.T) {
	root := nestedDoc()
	tests := []struct {
		id     string
		want   []string
		wantOK bool
	}{
		{"a", []string{}, true},
		{"c1", []string{}, true},
		{"x", []string{"c1"}, true},
		{"c2", []string{"c1"}, true},
		{"y", []string{"c1", "c2"}, true},
		{"missing", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			got, ok := DeepPath(root, tt.id)
			if ok != tt.wantOK {
				t.Fatalf("DeepPath(%q) ok = %v, want %v", tt.id, ok, tt.wantOK)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("DeepPath(%q) = %v, want %v", tt.id, got, tt.want)
			}
		})
	}
}

func TestDeepPathFromComponent(t *testing.T) {
	root := nestedDoc()
	c1 := root.Node("c1")
	got, ok := DeepPath(&c1.Component.Graph, "y")
	if !ok || !slices.Equal(got, []string{"c2"}) {
		t.Errorf("DeepPath(c1, y) = %v, %v, want [c2], true", got, ok)
	}
	if _, ok := DeepPath(&c1.Component.Graph, "a"); ok {
		t.Error("DeepPath(c1, a) found a node outside c1")
	}
}

func TestContainsNode(t *testing.T) {
	root := nestedDoc()
	for _, id := range []string{"a", "c1", "x", "c2", "y"} {
		if !ContainsNode(root, id) {
			t.Errorf("ContainsNode(root, %q) = false, want true", id)
		}
	}
	if ContainsNode(root, "z") {
		t.Error("ContainsNode(root, z) = true, want false")
	}
	c2 := root.Node("c1").Component.Graph.Node("c2")
	if ContainsNode(&c2.Component.Graph, "x") {
		t.Error("ContainsNode(c2, x) = true, want false")
	}
}

func TestResolvePath(t *testing.T) {
	root := nestedDoc()

	g, err := ResolvePath(root, nil)
	if err != nil || g != root {
		t.Errorf("ResolvePath(root, nil) = %p, %v, want root", g, err)
	}

	g, err = ResolvePath(root, []string{"c1", "c2"})
	if err != nil {
		t.Fatalf("ResolvePath error: %v", err)
	}
	if g.Node("y") == nil {
		t.Error("ResolvePath([c1 c2]) does not hold y")
	}

	tests := []struct {
		name string
		path []string
	}{
		{"unknown segment", []string{"c1", "nope"}},
		{"plain node segment", []string{"c1", "x"}},
		{"skipped level", []string{"c2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ResolvePath(root, tt.path)
			if !errors.Is(err, errors.ErrCodeDanglingPath) {
				t.Errorf("ResolvePath(%v) error = %v, want %s", tt.path, err, errors.ErrCodeDanglingPath)
			}
		})
	}
}

func TestLocate(t *testing.T) {
	root := nestedDoc()
	loc, ok := Locate(root, "y")
	if !ok {
		t.Fatal("Locate(y) not found")
	}
	if loc.Node.ID != "y" {
		t.Errorf("Locate(y).Node = %s, want y", loc.Node.ID)
	}
	if !slices.Equal(loc.Path, []string{"c1", "c2"}) {
		t.Errorf("Locate(y).Path = %v, want [c1 c2]", loc.Path)
	}
	if loc.Owner.Node("y") != loc.Node {
		t.Error("Locate(y).Owner does not hold the node")
	}
	if _, ok := Locate(root, "missing"); ok {
		t.Error("Locate(missing) found something")
	}
}

func TestFormatPath(t *testing.T) {
	if got := FormatPath(nil); got != "<root>" {
		t.Errorf("FormatPath(nil) = %q, want <root>", got)
	}
	if got := FormatPath([]string{"a", "b"}); got != "a/b" {
		t.Errorf("FormatPath([a b]) = %q, want a/b", got)
	}
}
