package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/hiernet/pkg/network"
)

// WriteJSON encodes a document as indented JSON and writes it to w.
//
// The output carries the format version and the full deep-edge bookkeeping
// (anchors, logical endpoints, paths and port indexes). Readers do not rely
// on the bookkeeping; [network.Model.Import] derives it again.
func WriteJSON(g *network.Subgraph, w io.Writer) error {
	nodes, edges := fromSubgraph(g)
	out := document{Version: Version, Nodes: &nodes, Edges: edges}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// Marshal returns the JSON encoding of g as written by [WriteJSON].
func Marshal(g *network.Subgraph) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteJSON(g, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ExportJSON writes a document to a JSON file at path.
func ExportJSON(g *network.Subgraph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(g, f)
}

// WriteTemplates encodes component templates as a JSON array.
func WriteTemplates(templates []*network.Node, w io.Writer) error {
	out := make([]node, len(templates))
	for i, t := range templates {
		out[i] = fromNode(t)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}
