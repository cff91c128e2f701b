package io

import (
	"encoding/json"
	"fmt"

	"github.com/matzehuels/hiernet/pkg/errors"
	"github.com/matzehuels/hiernet/pkg/network"
)

// Version is the document format version written by this package.
const Version = 1

type document struct {
	Version int     `json:"version,omitempty"`
	Nodes   *[]node `json:"nodes"`
	Edges   []edge  `json:"edges"`
}

type node struct {
	ID    wireID  `json:"id"`
	Label string  `json:"label,omitempty"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Type  string  `json:"type,omitempty"`

	// Component payload.
	Color   *int                 `json:"componentColor,omitempty"`
	Nodes   []node               `json:"nodes,omitempty"`
	Edges   []edge               `json:"edges,omitempty"`
	Inputs  map[string][]portRef `json:"inputs,omitempty"`
	Outputs map[string][]portRef `json:"outputs,omitempty"`
}

type edge struct {
	ID            wireID   `json:"id"`
	From          wireID   `json:"from"`
	To            wireID   `json:"to"`
	ModelFrom     wireID   `json:"modelFrom,omitempty"`
	ModelTo       wireID   `json:"modelTo,omitempty"`
	ModelFromPath []wireID `json:"modelFromPath,omitempty"`
	ModelToPath   []wireID `json:"modelToPath,omitempty"`
}

type portRef struct {
	ID   wireID   `json:"id"`
	Path []wireID `json:"path"`
	Peer wireID   `json:"peer,omitempty"`
}

// wireID is a node or edge id. Documents written by other tools often use
// numeric ids, so numbers are accepted and kept in their decimal form.
type wireID string

func (id *wireID) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = wireID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id must be a string or a number, got %s", b)
	}
	*id = wireID(n.String())
	return nil
}

// =============================================================================
// Model -> wire
// =============================================================================

func fromSubgraph(g *network.Subgraph) ([]node, []edge) {
	nodes := make([]node, len(g.Nodes))
	for i, n := range g.Nodes {
		nodes[i] = fromNode(n)
	}
	edges := make([]edge, len(g.Edges))
	for i, e := range g.Edges {
		edges[i] = edge{
			ID:            wireID(e.ID),
			From:          wireID(e.From),
			To:            wireID(e.To),
			ModelFrom:     wireID(e.ModelFrom),
			ModelTo:       wireID(e.ModelTo),
			ModelFromPath: toWireIDs(e.FromPath),
			ModelToPath:   toWireIDs(e.ToPath),
		}
	}
	return nodes, edges
}

func fromNode(n *network.Node) node {
	out := node{ID: wireID(n.ID), Label: n.Label, X: n.X, Y: n.Y, Type: n.Kind.String()}
	if !n.IsComponent() {
		return out
	}
	color := n.Component.Color
	out.Color = &color
	out.Nodes, out.Edges = fromSubgraph(&n.Component.Graph)
	out.Inputs = fromPorts(n.Component.Inputs)
	out.Outputs = fromPorts(n.Component.Outputs)
	return out
}

func fromPorts(p network.Ports) map[string][]portRef {
	if len(p) == 0 {
		return nil
	}
	out := make(map[string][]portRef, len(p))
	for port, refs := range p {
		list := make([]portRef, len(refs))
		for i, r := range refs {
			list[i] = portRef{ID: wireID(r.EdgeID), Path: toWireIDs(r.Path), Peer: wireID(r.Peer)}
		}
		out[port] = list
	}
	return out
}

func toWireIDs(ids []string) []wireID {
	if len(ids) == 0 {
		return nil
	}
	out := make([]wireID, len(ids))
	for i, id := range ids {
		out[i] = wireID(id)
	}
	return out
}

// =============================================================================
// wire -> Model
// =============================================================================

func toSubgraph(nodes []node, edges []edge) (network.Subgraph, error) {
	var g network.Subgraph
	for _, n := range nodes {
		nd, err := toNode(n)
		if err != nil {
			return g, err
		}
		g.Nodes = append(g.Nodes, nd)
	}
	for _, e := range edges {
		g.Edges = append(g.Edges, &network.Edge{
			ID:        string(e.ID),
			From:      string(e.From),
			To:        string(e.To),
			FromPath:  fromWireIDs(e.ModelFromPath),
			ToPath:    fromWireIDs(e.ModelToPath),
			ModelFrom: string(e.ModelFrom),
			ModelTo:   string(e.ModelTo),
		})
	}
	return g, nil
}

func toNode(n node) (*network.Node, error) {
	kind, err := network.ParseKind(n.Type)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "node %s", n.ID)
	}
	out := &network.Node{ID: string(n.ID), Label: n.Label, X: n.X, Y: n.Y, Kind: kind}
	if kind != network.KindComponent {
		if len(n.Nodes) > 0 || len(n.Edges) > 0 {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "%s node %s must not contain nodes or edges", kind, n.ID)
		}
		return out, nil
	}

	graph, err := toSubgraph(n.Nodes, n.Edges)
	if err != nil {
		return nil, err
	}
	c := &network.Component{
		Graph:   graph,
		Inputs:  toPorts(n.Inputs),
		Outputs: toPorts(n.Outputs),
	}
	if n.Color != nil {
		c.Color = *n.Color
	}
	out.Component = c
	return out, nil
}

func toPorts(p map[string][]portRef) network.Ports {
	out := make(network.Ports, len(p))
	for port, refs := range p {
		list := make([]network.PortRef, len(refs))
		for i, r := range refs {
			list[i] = network.PortRef{EdgeID: string(r.ID), Path: fromWireIDs(r.Path), Peer: string(r.Peer)}
		}
		out[port] = list
	}
	return out
}

func fromWireIDs(ids []wireID) []string {
	if len(ids) == 0 {
		return nil
	}
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}
