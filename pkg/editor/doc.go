// Package editor ties document storage, the network model and rendering
// together for the CLI and the HTTP API.
//
// A [Runner] is stateless apart from its store, cache and logger: every call
// loads the named document, positions a fresh [network.Model] at the given
// context stack, applies the operation and, for mutations, writes the
// document back. Callers keep the context stack themselves (the CLI in its
// session, API clients in each request).
//
//	r := editor.NewRunner(st, c, nil, logger)
//	m, err := r.Update(ctx, "net", []string{"stage"}, func(m *network.Model) error {
//	    _, err := m.AddNode(network.NodeSpec{Label: "Filter"})
//	    return err
//	})
//
// Updates of the same document through one Runner are serialized. Rendered
// artifacts are cached under a key derived from the stored bytes, so any
// edit invalidates them.
package editor
