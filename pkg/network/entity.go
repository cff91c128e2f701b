package network

import (
	"math/rand/v2"
	"slices"

	"github.com/google/uuid"

	"github.com/matzehuels/hiernet/pkg/errors"
)

// Kind is the closed set of node variants.
type Kind int

const (
	// KindPlain is an ordinary node without structure.
	KindPlain Kind = iota
	// KindInput is a boundary port through which edges enter a component.
	KindInput
	// KindOutput is a boundary port through which edges leave a component.
	KindOutput
	// KindComponent is a node owning a private subgraph and port indexes.
	KindComponent
)

// String returns the wire name of the kind.
func (k Kind) String() string {
	switch k {
	case KindPlain:
		return "plain"
	case KindInput:
		return "input"
	case KindOutput:
		return "output"
	case KindComponent:
		return "component"
	}
	return "unknown"
}

// Valid reports whether k is one of the four node kinds.
func (k Kind) Valid() bool { return k >= KindPlain && k <= KindComponent }

// IsPort reports whether the kind is an input or output boundary marker.
func (k Kind) IsPort() bool { return k == KindInput || k == KindOutput }

// ParseKind converts a wire name to a Kind. The empty string is a plain node.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "", "plain":
		return KindPlain, nil
	case "input":
		return KindInput, nil
	case "output":
		return KindOutput, nil
	case "component":
		return KindComponent, nil
	}
	return KindPlain, errors.New(errors.ErrCodeInvalidFormat, "unknown node type %q", s)
}

// defaultLabel is the label a node gets when constructed without one.
func (k Kind) defaultLabel() string {
	switch k {
	case KindPlain:
		return "Node"
	case KindInput:
		return "Input"
	case KindOutput:
		return "Output"
	case KindComponent:
		return "Component"
	}
	return "Node"
}

// Node is a vertex of a hierarchical network.
//
// Component is non-nil exactly when Kind is [KindComponent]; constructors and
// [Check] enforce this. Presentation fields are never stored on the node, use
// [StyleOf] to derive them.
type Node struct {
	ID    string
	Label string
	X, Y  float64
	Kind  Kind

	Component *Component
}

// IsComponent reports whether the node owns a subgraph.
func (n *Node) IsComponent() bool { return n.Kind == KindComponent && n.Component != nil }

// Component is the payload of a component node.
type Component struct {
	Graph   Subgraph
	Inputs  Ports // input port id -> edges arriving from outside
	Outputs Ports // output port id -> edges leaving to outside
	Color   int   // palette index in [0, PaletteSize)
}

// Ports indexes the deep edges attached to a component's boundary ports.
// A key never maps to an empty list.
type Ports map[string][]PortRef

// PortRef records one deep edge attached to a port.
type PortRef struct {
	EdgeID string
	// Path is the absolute container path, from the root document, of the
	// subgraph owning Peer.
	Path []string
	// Peer is the logical endpoint on the other side of the edge.
	Peer string
}

func (p Ports) add(port string, ref PortRef) {
	p[port] = append(p[port], ref)
}

// remove drops the ref for edgeID under port and deletes the key once its
// list is empty. It reports whether anything was removed.
func (p Ports) remove(port, edgeID string) bool {
	refs, ok := p[port]
	if !ok {
		return false
	}
	kept := slices.DeleteFunc(slices.Clone(refs), func(r PortRef) bool { return r.EdgeID == edgeID })
	if len(kept) == len(refs) {
		return false
	}
	if len(kept) == 0 {
		delete(p, port)
	} else {
		p[port] = kept
	}
	return true
}

// Edge is a directed connection stored in exactly one subgraph.
//
// From and To are the visible anchors: direct members of the containing
// subgraph. ModelFrom and ModelTo are the logical endpoints. When a logical
// endpoint lives inside a nested component, the matching path lists the
// component ids to walk, starting at the containing subgraph, to reach the
// subgraph that directly holds it, and the anchor is the first of them.
type Edge struct {
	ID       string
	From     string
	To       string
	FromPath []string
	ToPath   []string

	ModelFrom string
	ModelTo   string
}

// IsDeep reports whether either logical endpoint is nested below the
// containing subgraph.
func (e *Edge) IsDeep() bool { return len(e.FromPath) > 0 || len(e.ToPath) > 0 }

// NewEdge creates a shallow edge between two logical endpoints. An empty id
// is replaced with a fresh one.
func NewEdge(id, from, to string) (*Edge, error) {
	if from == "" {
		return nil, errors.New(errors.ErrCodeInvalidEdge, "'from' is required to create an edge")
	}
	if to == "" {
		return nil, errors.New(errors.ErrCodeInvalidEdge, "'to' is required to create an edge")
	}
	if from == to {
		return nil, errors.New(errors.ErrCodeInvalidEdge, "self-loop on node %s", from)
	}
	if id == "" {
		id = newID()
	}
	return &Edge{ID: id, From: from, To: to, ModelFrom: from, ModelTo: to}, nil
}

// NodeSpec describes a node to create.
type NodeSpec struct {
	ID    string
	Label string
	X, Y  float64
	Kind  Kind
	Color *int // components only; nil picks a random palette color
}

// NewNode builds a node from spec. Missing ids are generated, missing labels
// default to the kind name, and components get an empty subgraph.
func NewNode(spec NodeSpec) *Node {
	return buildNode(spec, newID, randomColor)
}

func buildNode(spec NodeSpec, ids func() string, color func() int) *Node {
	n := &Node{
		ID:    spec.ID,
		Label: spec.Label,
		X:     spec.X,
		Y:     spec.Y,
		Kind:  spec.Kind,
	}
	if n.ID == "" {
		n.ID = ids()
	}
	if n.Label == "" {
		n.Label = spec.Kind.defaultLabel()
	}
	if spec.Kind == KindComponent {
		c := color()
		if spec.Color != nil && ValidColor(*spec.Color) {
			c = *spec.Color
		}
		n.Component = &Component{
			Inputs:  Ports{},
			Outputs: Ports{},
			Color:   c,
		}
	}
	return n
}

func newID() string { return uuid.NewString() }

func randomColor() int { return rand.IntN(PaletteSize) }

// Subgraph is an ordered set of nodes and the edges between them. The root
// document and every component's private graph are subgraphs. Order is
// display order only.
type Subgraph struct {
	Nodes []*Node
	Edges []*Edge
}

// Node returns the direct member with the given id, or nil.
func (g *Subgraph) Node(id string) *Node {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n
		}
	}
	return nil
}

// Edge returns the edge stored in g with the given id, or nil.
func (g *Subgraph) Edge(id string) *Edge {
	for _, e := range g.Edges {
		if e.ID == id {
			return e
		}
	}
	return nil
}

// Components returns the direct members that are components.
func (g *Subgraph) Components() []*Node {
	var out []*Node
	for _, n := range g.Nodes {
		if n.IsComponent() {
			out = append(out, n)
		}
	}
	return out
}

// ConnectedEdges returns the edges of g whose visible anchors touch any of ids.
func (g *Subgraph) ConnectedEdges(ids ...string) []*Edge {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	var out []*Edge
	for _, e := range g.Edges {
		if set[e.From] || set[e.To] {
			out = append(out, e)
		}
	}
	return out
}

func (g *Subgraph) removeEdges(ids map[string]bool) {
	g.Edges = slices.DeleteFunc(g.Edges, func(e *Edge) bool { return ids[e.ID] })
}

func (g *Subgraph) removeNodes(ids map[string]bool) {
	g.Nodes = slices.DeleteFunc(g.Nodes, func(n *Node) bool { return ids[n.ID] })
}

// Clone returns a deep copy of g. Ids are preserved.
func (g *Subgraph) Clone() *Subgraph {
	out := &Subgraph{
		Nodes: make([]*Node, 0, len(g.Nodes)),
		Edges: make([]*Edge, 0, len(g.Edges)),
	}
	for _, n := range g.Nodes {
		out.Nodes = append(out.Nodes, n.Clone())
	}
	for _, e := range g.Edges {
		out.Edges = append(out.Edges, e.Clone())
	}
	return out
}

// Clone returns a deep copy of n, including any nested subgraph.
func (n *Node) Clone() *Node {
	c := *n
	if n.Component != nil {
		c.Component = &Component{
			Graph:   *n.Component.Graph.Clone(),
			Inputs:  n.Component.Inputs.clone(),
			Outputs: n.Component.Outputs.clone(),
			Color:   n.Component.Color,
		}
	}
	return &c
}

// Clone returns a copy of e with its own path slices.
func (e *Edge) Clone() *Edge {
	c := *e
	c.FromPath = slices.Clone(e.FromPath)
	c.ToPath = slices.Clone(e.ToPath)
	return &c
}

func (p Ports) clone() Ports {
	out := make(Ports, len(p))
	for k, refs := range p {
		cp := make([]PortRef, len(refs))
		for i, r := range refs {
			cp[i] = PortRef{EdgeID: r.EdgeID, Path: slices.Clone(r.Path), Peer: r.Peer}
		}
		out[k] = cp
	}
	return out
}
