// Package pkg provides the core libraries for hiernet, an editor for
// hierarchical directed networks.
//
// # Overview
//
// A hiernet document is a directed network whose nodes can be folded into
// components. A component owns a nested network with input and output ports
// on its boundary, and edges cross component boundaries as deep edges that are
// stored once at the lowest level containing both endpoints. The pkg directory
// is organized into these areas:
//
//  1. [network] - Domain model (entities, path resolution, folding, edits)
//  2. [io] - JSON document and template serialization
//  3. [editor] - Stored-document operations used by the CLI and the API
//  4. [store], [cache], [session] - Infrastructure backends
//  5. [render] - Graphviz diagrams and format conversion
//
// # Architecture
//
// The typical data flow through hiernet:
//
//	JSON document
//	     ↓
//	[io] package (decode, version check)
//	     ↓
//	[network] package (rebuild port indexes, edit, fold, navigate)
//	     ↓
//	[editor] package (persist via [store], render via [render/nodelink])
//	     ↓
//	JSON / DOT / SVG / PDF / PNG output
//
// # Quick Start
//
// Build a network, fold two nodes into a component and export it:
//
//	m := network.New(network.Options{})
//	a, _ := m.AddNode(network.NodeSpec{Label: "Source"})
//	b, _ := m.AddNode(network.NodeSpec{Label: "Filter"})
//	c, _ := m.AddNode(network.NodeSpec{Label: "Sink"})
//	m.AddEdge(network.EdgeSpec{From: a.ID, To: b.ID})
//	m.AddEdge(network.EdgeSpec{From: b.ID, To: c.ID})
//
//	comp, _ := m.Fold([]string{b.ID}, network.FoldOptions{Label: "Stage"})
//
//	frag, _ := m.Export(a.ID, comp.ID)
//	data, _ := io.Marshal(frag)
//
// # Main Packages
//
// [network] - The hierarchical network model. [network.Model] holds the root
// document and a context stack of entered components. Every edit validates
// before it mutates, so a failed operation leaves the document unchanged.
//
// [errors] - Structured error codes shared by every package. Validation codes
// report bad input, consistency codes report corrupt bookkeeping.
//
// [io] - Versioned JSON format with tolerant decoding of numeric ids and
// single-element arrays.
//
// [editor] - [editor.Runner] loads, edits and saves named documents with
// per-document serialization and a render cache.
//
// [store] - Document persistence with file, Redis and MongoDB backends.
//
// [cache] - Content-addressed byte cache for rendered diagrams.
//
// [session] - The CLI's open document and context stack.
//
// [observability] - Hooks for model mutations and HTTP requests.
//
// [render/nodelink] - Graphviz DOT generation in collapsed and expanded
// views.
//
// [render] - SVG to PDF/PNG conversion.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/network/...            # Specific package
//	go test -run Example                 # Examples only
//	go test -tags integration ./pkg/...  # Include integration tests
//
// [network]: https://pkg.go.dev/github.com/matzehuels/hiernet/pkg/network
// [errors]: https://pkg.go.dev/github.com/matzehuels/hiernet/pkg/errors
// [io]: https://pkg.go.dev/github.com/matzehuels/hiernet/pkg/io
// [editor]: https://pkg.go.dev/github.com/matzehuels/hiernet/pkg/editor
// [store]: https://pkg.go.dev/github.com/matzehuels/hiernet/pkg/store
// [cache]: https://pkg.go.dev/github.com/matzehuels/hiernet/pkg/cache
// [session]: https://pkg.go.dev/github.com/matzehuels/hiernet/pkg/session
// [observability]: https://pkg.go.dev/github.com/matzehuels/hiernet/pkg/observability
// [render]: https://pkg.go.dev/github.com/matzehuels/hiernet/pkg/render
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/hiernet/pkg/render/nodelink
package pkg
