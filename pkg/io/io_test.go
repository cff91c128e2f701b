package io_test

import (
	"bytes"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/hiernet/pkg/errors"
	hio "github.com/matzehuels/hiernet/pkg/io"
	"github.com/matzehuels/hiernet/pkg/network"
)

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id%d", n)
	}
}

// sample builds src -> stage/in -> stage/work with a deep edge at root.
func sample(t *testing.T) *network.Model {
	t.Helper()
	m := network.New(network.Options{NewID: sequentialIDs(), Color: func() int { return 5 }})
	steps := []func() error{
		func() error { _, err := m.AddNode(network.NodeSpec{ID: "src", Label: "Source"}); return err },
		func() error {
			_, err := m.AddNode(network.NodeSpec{ID: "stage", Label: "Stage", Kind: network.KindComponent, X: 200})
			return err
		},
		func() error { return m.Enter("stage") },
		func() error { _, err := m.AddNode(network.NodeSpec{ID: "in", Kind: network.KindInput}); return err },
		func() error { _, err := m.AddNode(network.NodeSpec{ID: "work", Label: "Work"}); return err },
		func() error { _, err := m.AddEdge(network.EdgeSpec{ID: "inner", From: "in", To: "work"}); return err },
		func() error { _, err := m.AddEdge(network.EdgeSpec{ID: "deep", From: "src", To: "in"}); return err },
	}
	for i, step := range steps {
		if err := step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
	m.ExitToRoot()
	return m
}

func TestRoundTrip(t *testing.T) {
	m := sample(t)

	var buf bytes.Buffer
	if err := hio.WriteJSON(m.Root(), &buf); err != nil {
		t.Fatalf("WriteJSON error: %v", err)
	}
	if !strings.Contains(buf.String(), `"version": 1`) {
		t.Errorf("output has no version tag:\n%s", buf.String())
	}

	doc, err := hio.ReadJSON(&buf)
	if err != nil {
		t.Fatalf("ReadJSON error: %v", err)
	}
	back, err := network.NewFromDocument(doc, network.Options{})
	if err != nil {
		t.Fatalf("NewFromDocument error: %v", err)
	}
	if err := back.Check(); err != nil {
		t.Fatalf("Check error: %v", err)
	}

	e := back.Root().Edge("deep")
	if e == nil {
		t.Fatal("deep edge lost")
	}
	if e.From != "src" || e.To != "stage" || e.ModelTo != "in" || !slices.Equal(e.ToPath, []string{"stage"}) {
		t.Errorf("deep edge = %+v", e)
	}
	stage := back.Root().Node("stage")
	if stage.Component.Color != 5 || stage.X != 200 || stage.Label != "Stage" {
		t.Errorf("stage = %+v", stage)
	}
	if refs := stage.Component.Inputs["in"]; len(refs) != 1 || refs[0].Peer != "src" {
		t.Errorf("Inputs[in] = %+v", refs)
	}
}

func TestReadJSONFormats(t *testing.T) {
	tests := []struct {
		name  string
		input string
		code  errors.Code
		nodes int
	}{
		{"object", `{"nodes": [{"id": "a"}], "edges": []}`, "", 1},
		{"no edges", `{"nodes": [{"id": "a"}, {"id": "b"}]}`, "", 2},
		{"array takes first", `[{"nodes": [{"id": "a"}]}, {"nodes": []}]`, "", 1},
		{"numeric ids", `{"nodes": [{"id": 1}, {"id": 2}], "edges": [{"id": 3, "from": 1, "to": 2}]}`, "", 2},
		{"explicit version", `{"version": 1, "nodes": []}`, "", 0},
		{"missing nodes", `{"edges": []}`, errors.ErrCodeInvalidFormat, 0},
		{"empty array", `[]`, errors.ErrCodeInvalidFormat, 0},
		{"malformed", `{"nodes": [`, errors.ErrCodeInvalidFormat, 0},
		{"bad id", `{"nodes": [{"id": true}]}`, errors.ErrCodeInvalidFormat, 0},
		{"unknown type", `{"nodes": [{"id": "a", "type": "cloud"}]}`, errors.ErrCodeInvalidFormat, 0},
		{"plain with children", `{"nodes": [{"id": "a", "nodes": [{"id": "b"}]}]}`, errors.ErrCodeInvalidFormat, 0},
		{"newer version", `{"version": 2, "nodes": []}`, errors.ErrCodeUnsupportedVer, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := hio.ReadJSON(strings.NewReader(tt.input))
			if tt.code != "" {
				if !errors.Is(err, tt.code) {
					t.Errorf("ReadJSON error = %v, want %s", err, tt.code)
				}
				return
			}
			if err != nil {
				t.Fatalf("ReadJSON error: %v", err)
			}
			if len(doc.Nodes) != tt.nodes {
				t.Errorf("nodes = %d, want %d", len(doc.Nodes), tt.nodes)
			}
		})
	}
}

func TestReadJSONNumericIDs(t *testing.T) {
	doc, err := hio.ReadJSON(strings.NewReader(`{"nodes": [{"id": 1}, {"id": 2.5}], "edges": [{"id": 7, "from": 1, "to": 2.5}]}`))
	if err != nil {
		t.Fatalf("ReadJSON error: %v", err)
	}
	if doc.Nodes[0].ID != "1" || doc.Nodes[1].ID != "2.5" {
		t.Errorf("ids = %s, %s", doc.Nodes[0].ID, doc.Nodes[1].ID)
	}
	if e := doc.Edges[0]; e.ID != "7" || e.From != "1" || e.To != "2.5" {
		t.Errorf("edge = %+v", e)
	}
}

func TestReadJSONComponentDefaults(t *testing.T) {
	doc, err := hio.ReadJSON(strings.NewReader(`{"nodes": [{"id": "c", "type": "component"}]}`))
	if err != nil {
		t.Fatalf("ReadJSON error: %v", err)
	}
	c := doc.Nodes[0]
	if !c.IsComponent() {
		t.Fatal("component without children decoded as plain")
	}
	if c.Component.Color != 0 || c.Component.Inputs == nil || c.Component.Outputs == nil {
		t.Errorf("component = %+v", c.Component)
	}
}

func TestFileRoundTrip(t *testing.T) {
	m := sample(t)
	path := filepath.Join(t.TempDir(), "doc.json")
	if err := hio.ExportJSON(m.Root(), path); err != nil {
		t.Fatalf("ExportJSON error: %v", err)
	}
	doc, err := hio.ImportJSON(path)
	if err != nil {
		t.Fatalf("ImportJSON error: %v", err)
	}
	if len(doc.Nodes) != 2 || len(doc.Edges) != 1 {
		t.Errorf("doc = %d nodes, %d edges", len(doc.Nodes), len(doc.Edges))
	}

	if _, err := hio.ImportJSON(filepath.Join(t.TempDir(), "missing.json")); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("ImportJSON(missing) error = %v", err)
	}
}

func TestMarshalExportedFragment(t *testing.T) {
	m := sample(t)
	frag, err := m.Export("src", "stage")
	if err != nil {
		t.Fatalf("Export error: %v", err)
	}
	raw, err := hio.Marshal(frag)
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	if strings.Contains(string(raw), "modelToPath") || strings.Contains(string(raw), `"inputs"`) {
		t.Errorf("exported fragment carries bookkeeping:\n%s", raw)
	}

	doc, err := hio.Unmarshal(raw)
	if err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	back, err := network.NewFromDocument(doc, network.Options{})
	if err != nil {
		t.Fatalf("NewFromDocument error: %v", err)
	}
	if err := back.Check(); err != nil {
		t.Fatalf("Check error: %v", err)
	}
	// Fragment ids: src=0, stage=1, in=2, work=3, inner=4, deep=5.
	if e := back.Root().Edge("5"); e == nil || e.ModelTo != "2" || e.To != "1" {
		t.Errorf("deep edge after re-import = %+v", e)
	}
}

func TestTemplates(t *testing.T) {
	m := sample(t)
	stage := m.Root().Node("stage")

	var buf bytes.Buffer
	if err := hio.WriteTemplates([]*network.Node{stage}, &buf); err != nil {
		t.Fatalf("WriteTemplates error: %v", err)
	}
	got, err := hio.ReadTemplates(&buf)
	if err != nil {
		t.Fatalf("ReadTemplates error: %v", err)
	}
	if len(got) != 1 || got[0].ID != "stage" || len(got[0].Component.Graph.Nodes) != 2 {
		t.Fatalf("templates = %+v", got)
	}

	mixed := `[{"id": "p"}, {"id": "c", "type": "component", "nodes": [{"id": "x"}]}]`
	got, err = hio.ReadTemplates(strings.NewReader(mixed))
	if err != nil {
		t.Fatalf("ReadTemplates error: %v", err)
	}
	if len(got) != 1 || got[0].ID != "c" {
		t.Errorf("templates = %+v, want only c", got)
	}

	single := `{"id": "c", "type": "component"}`
	if got, err := hio.ReadTemplates(strings.NewReader(single)); err != nil || len(got) != 1 {
		t.Errorf("ReadTemplates(single) = %v, %v", got, err)
	}
}
