package network

import (
	"slices"

	"github.com/matzehuels/hiernet/pkg/errors"
)

// Check verifies the bookkeeping of a document:
//
//   - node ids are unique and a node has a subgraph exactly when it is a component
//   - every edge's anchors are direct members of its subgraph and its paths
//     lead to its logical endpoints
//   - node kinds are known
//   - every nested endpoint is registered in its owner's port index, under
//     the port the edge passes through
//   - every port index entry names an existing edge and a resolvable peer,
//     and no key maps to an empty list
//
// Violations are INCONSISTENT_MODEL or DANGLING_PATH errors.
func Check(root *Subgraph) error {
	if err := checkNodes(root, make(map[string]bool)); err != nil {
		return err
	}

	edges := make(map[string]*Edge)
	err := walkEdges(root, nil, func(at []string, g *Subgraph, e *Edge) error {
		if edges[e.ID] != nil {
			return inconsistent("edge %s appears twice", e.ID)
		}
		edges[e.ID] = e
		if err := checkEnd(root, at, g, e.ID, e.From, e.ModelFrom, e.FromPath, KindOutput); err != nil {
			return err
		}
		return checkEnd(root, at, g, e.ID, e.To, e.ModelTo, e.ToPath, KindInput)
	})
	if err != nil {
		return err
	}

	var portErr error
	walkComponents(root, func(c *Node) {
		if portErr == nil {
			portErr = checkPorts(root, c, c.Component.Inputs, KindInput, edges)
		}
		if portErr == nil {
			portErr = checkPorts(root, c, c.Component.Outputs, KindOutput, edges)
		}
	})
	return portErr
}

// Check verifies the document and that the context stack is bound to it.
func (m *Model) Check() error {
	if err := Check(m.root); err != nil {
		return err
	}
	bound, err := bindFrames(m.root, m.ContextIDs())
	if err != nil {
		return err
	}
	for i := range bound {
		if bound[i].Component != m.frames[i].Component || bound[i].Parent != m.frames[i].Parent {
			return inconsistent("context frame %d is detached from the document", i)
		}
	}
	return nil
}

func inconsistent(format string, args ...any) error {
	return errors.New(errors.ErrCodeInconsistent, format, args...)
}

func checkNodes(g *Subgraph, seen map[string]bool) error {
	for _, n := range g.Nodes {
		if seen[n.ID] {
			return inconsistent("node %s appears twice", n.ID)
		}
		seen[n.ID] = true
		if !n.Kind.Valid() {
			return inconsistent("node %s has unknown kind %d", n.ID, int(n.Kind))
		}
		if (n.Kind == KindComponent) != (n.Component != nil) {
			return inconsistent("node %s: kind %s does not match its payload", n.ID, n.Kind)
		}
		if n.IsComponent() {
			if err := checkNodes(&n.Component.Graph, seen); err != nil {
				return err
			}
		}
	}
	return nil
}

func checkEnd(root *Subgraph, at []string, g *Subgraph, edgeID, anchor, logical string, path []string, port Kind) error {
	if g.Node(anchor) == nil {
		return inconsistent("edge %s: anchor %s is not a member of %s", edgeID, anchor, FormatPath(at))
	}
	if len(path) == 0 {
		if anchor != logical {
			return inconsistent("edge %s: anchor %s differs from shallow endpoint %s", edgeID, anchor, logical)
		}
		return nil
	}
	if path[0] != anchor {
		return inconsistent("edge %s: anchor %s does not start path %s", edgeID, anchor, FormatPath(path))
	}
	owner, err := resolveComponent(root, joinPath(at, path))
	if err != nil {
		return err
	}
	if owner.Component.Graph.Node(logical) == nil {
		return inconsistent("edge %s: endpoint %s is not held by %s", edgeID, logical, owner.ID)
	}
	via, ok := entry(&owner.Component.Graph, logical, port)
	if !ok {
		return inconsistent("edge %s: %s has no %s port for %s", edgeID, owner.ID, port, logical)
	}
	index := owner.Component.Outputs
	if port == KindInput {
		index = owner.Component.Inputs
	}
	if !slices.ContainsFunc(index[via], func(r PortRef) bool { return r.EdgeID == edgeID }) {
		return inconsistent("edge %s is not registered on port %s of %s", edgeID, via, owner.ID)
	}
	return nil
}

func checkPorts(root *Subgraph, c *Node, index Ports, kind Kind, edges map[string]*Edge) error {
	for port, refs := range index {
		if len(refs) == 0 {
			return inconsistent("component %s: port %s has an empty entry list", c.ID, port)
		}
		if n := c.Component.Graph.Node(port); n == nil || n.Kind != kind {
			return inconsistent("component %s: %s index names %s, which is not one of its %s ports", c.ID, kind, port, kind)
		}
		for _, ref := range refs {
			if edges[ref.EdgeID] == nil {
				return inconsistent("component %s: port %s references missing edge %s", c.ID, port, ref.EdgeID)
			}
			g, err := ResolvePath(root, ref.Path)
			if err != nil {
				return err
			}
			if g.Node(ref.Peer) == nil {
				return inconsistent("component %s: port %s peer %s is not at %s", c.ID, port, ref.Peer, FormatPath(ref.Path))
			}
		}
	}
	return nil
}
