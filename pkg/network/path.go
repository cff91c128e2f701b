package network

import (
	"slices"
	"strings"

	"github.com/matzehuels/hiernet/pkg/errors"
)

// ContainsNode reports whether id is a member of g or of any subgraph nested
// below it.
func ContainsNode(g *Subgraph, id string) bool {
	for _, n := range g.Nodes {
		if n.ID == id {
			return true
		}
		if n.IsComponent() && ContainsNode(&n.Component.Graph, id) {
			return true
		}
	}
	return false
}

// DeepPath returns the component ids to descend through, starting at g, to
// reach the subgraph that directly holds id. A direct member of g yields an
// empty path. ok is false when id is nowhere below g.
//
// Branches are pruned with [ContainsNode], so only the single branch that
// holds id is walked. Ids are globally unique, there are no ties.
func DeepPath(g *Subgraph, id string) (path []string, ok bool) {
	if g.Node(id) != nil {
		return []string{}, true
	}
	for _, c := range g.Components() {
		sub := &c.Component.Graph
		if sub.Node(id) != nil {
			return []string{c.ID}, true
		}
		if !ContainsNode(sub, id) {
			continue
		}
		rest, ok := DeepPath(sub, id)
		if !ok {
			return nil, false
		}
		return append([]string{c.ID}, rest...), true
	}
	return nil, false
}

// ResolvePath walks path from g and returns the subgraph of the last
// component. An empty path resolves to g itself. A segment that does not
// name a direct component member fails with DANGLING_PATH.
func ResolvePath(g *Subgraph, path []string) (*Subgraph, error) {
	cur := g
	for i, id := range path {
		n := cur.Node(id)
		if n == nil || !n.IsComponent() {
			return nil, errors.New(errors.ErrCodeDanglingPath,
				"path segment %d (%s) of %s does not resolve", i, id, FormatPath(path))
		}
		cur = &n.Component.Graph
	}
	return cur, nil
}

// resolveComponent returns the component node at the end of a non-empty path.
func resolveComponent(g *Subgraph, path []string) (*Node, error) {
	if len(path) == 0 {
		return nil, errors.New(errors.ErrCodeDanglingPath, "empty path has no component")
	}
	parent, err := ResolvePath(g, path[:len(path)-1])
	if err != nil {
		return nil, err
	}
	last := path[len(path)-1]
	n := parent.Node(last)
	if n == nil || !n.IsComponent() {
		return nil, errors.New(errors.ErrCodeDanglingPath,
			"path segment %d (%s) of %s does not resolve", len(path)-1, last, FormatPath(path))
	}
	return n, nil
}

// Location describes where a node lives in a document.
type Location struct {
	Node  *Node
	Owner *Subgraph // subgraph holding Node directly
	Path  []string  // absolute path of Owner
}

// Locate finds id anywhere below root.
func Locate(root *Subgraph, id string) (Location, bool) {
	path, ok := DeepPath(root, id)
	if !ok {
		return Location{}, false
	}
	owner, err := ResolvePath(root, path)
	if err != nil {
		return Location{}, false
	}
	return Location{Node: owner.Node(id), Owner: owner, Path: path}, true
}

// FormatPath renders a path for messages.
func FormatPath(path []string) string {
	if len(path) == 0 {
		return "<root>"
	}
	return strings.Join(path, "/")
}

func commonPrefix(a, b []string) []string {
	n := 0
	for n < len(a) && n < len(b) && a[n] == b[n] {
		n++
	}
	return slices.Clone(a[:n])
}

func hasPrefix(path, prefix []string) bool {
	return len(path) >= len(prefix) && slices.Equal(path[:len(prefix)], prefix)
}

func joinPath(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	return append(append(out, a...), b...)
}
