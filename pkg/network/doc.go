// Package network implements hierarchical networks: directed graphs whose
// nodes may be components that own a private subgraph with input and output
// ports through which edges cross nesting levels.
//
// # Overview
//
// A document is a [Subgraph]. Nodes come in four kinds ([KindPlain],
// [KindInput], [KindOutput], [KindComponent]); a component node carries a
// [Component] with its own subgraph and two port indexes. Every edge is stored
// in exactly one subgraph, the lowest one containing both of its logical
// endpoints.
//
// # Deep Edges
//
// An edge whose logical endpoint sits inside a nested component is a deep
// edge. It keeps the logical endpoint in [Edge.ModelFrom] / [Edge.ModelTo]
// and a path of component ids leading from its own subgraph to the subgraph
// holding the endpoint. Its visible anchors [Edge.From] / [Edge.To] name the
// first component on that path, so the edge renders at its own level without
// resolving anything. A nested 'from' leaves the component holding it
// through an output port and a nested 'to' enters through an input port:
// the endpoint itself when it is one, otherwise the component's first port
// of that direction. The component lists the edge under that port in
// [Component.Outputs] or [Component.Inputs] together with the absolute path
// to the peer on the other side.
//
// [DeepPath], [ResolvePath] and [ContainsNode] translate between ids and
// paths.
//
// # The Model
//
// [Model] owns a document and a context stack of components the user has
// drilled into. All mutations apply to the innermost open level:
//
//	m := network.New(network.Options{})
//	a, _ := m.AddNode(network.NodeSpec{Label: "Pump"})
//	b, _ := m.AddNode(network.NodeSpec{Label: "Valve"})
//	m.AddEdge(network.EdgeSpec{From: a.ID, To: b.ID})
//	c, _ := m.Fold([]string{a.ID, b.ID}, network.FoldOptions{Label: "Loop"})
//	m.Enter(c.ID)
//
// A mutation runs on a working copy of the document. Edits at depth d are
// written back through every frame of the context stack before the copy
// replaces the live document, so ancestors only ever see consistent
// children and a failed operation changes nothing.
//
// Interceptors registered with [Model.Intercept] may veto a mutation before
// it runs; listeners registered with [Model.Subscribe] are told about it
// afterwards.
//
// # Errors
//
// Operations return [errors.Error] values from hiernet's errors package.
// INVALID_* codes mean bad input and no change. DANGLING_PATH and
// INCONSISTENT_MODEL mean corrupt bookkeeping. Deleting ids that are not
// present is a no-op.
//
// # Concurrency
//
// A [Model] is not safe for concurrent use. Callers serialize access.
package network
