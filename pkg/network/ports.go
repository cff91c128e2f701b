package network

import (
	"strings"

	"github.com/matzehuels/hiernet/pkg/errors"
)

// PortView is one boundary port of the open component with its peers.
type PortView struct {
	ID    string
	Label string
	Kind  Kind
	Peers []Peer
}

// Peer is the far end of a deep edge attached to a port.
type Peer struct {
	EdgeID string
	NodeID string
	Label  string
	Trail  []string // "Root", the labels of the containers on the way, the peer's label
}

// Tooltip renders the trail as "Root > A > B".
func (p Peer) Tooltip() string { return strings.Join(p.Trail, " > ") }

// Ports lists the input and output ports of the open component in display
// order, each with the edges reaching it from outside resolved to labels.
// At root there are no ports.
func (m *Model) Ports() (inputs, outputs []PortView, err error) {
	c := m.CurrentComponent()
	if c == nil {
		return nil, nil, nil
	}
	for _, n := range c.Component.Graph.Nodes {
		var refs []PortRef
		switch n.Kind {
		case KindInput:
			refs = c.Component.Inputs[n.ID]
		case KindOutput:
			refs = c.Component.Outputs[n.ID]
		case KindPlain, KindComponent:
			continue
		}
		view := PortView{ID: n.ID, Label: n.Label, Kind: n.Kind}
		for _, ref := range refs {
			p, err := m.resolvePeer(ref)
			if err != nil {
				return nil, nil, err
			}
			view.Peers = append(view.Peers, p)
		}
		if n.Kind == KindInput {
			inputs = append(inputs, view)
		} else {
			outputs = append(outputs, view)
		}
	}
	return inputs, outputs, nil
}

func (m *Model) resolvePeer(ref PortRef) (Peer, error) {
	trail := []string{"Root"}
	cur := m.root
	for i, id := range ref.Path {
		n := cur.Node(id)
		if n == nil || !n.IsComponent() {
			return Peer{}, errors.New(errors.ErrCodeDanglingPath,
				"path segment %d (%s) of %s does not resolve", i, id, FormatPath(ref.Path))
		}
		trail = append(trail, n.Label)
		cur = &n.Component.Graph
	}
	peer := cur.Node(ref.Peer)
	if peer == nil {
		return Peer{}, errors.New(errors.ErrCodeInconsistent, "edge %s: peer %s missing at %s",
			ref.EdgeID, ref.Peer, FormatPath(ref.Path))
	}
	return Peer{
		EdgeID: ref.EdgeID,
		NodeID: peer.ID,
		Label:  peer.Label,
		Trail:  append(trail, peer.Label),
	}, nil
}
