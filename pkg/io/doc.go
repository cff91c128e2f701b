// Package io provides JSON import and export for hierarchical network
// documents.
//
// # Overview
//
// A document is the root [network.Subgraph]: a list of nodes and a list of
// edges, where any node of type "component" carries its own nested nodes,
// edges and port indexes. The format is used for:
//
//   - Saving and loading documents in every store backend
//   - Exchanging fragments produced by [network.Model.Export]
//   - Component template libraries
//
// # JSON Format
//
//	{
//	  "version": 1,
//	  "nodes": [
//	    {"id": "src", "label": "Source", "x": 0, "y": 0, "type": "plain"},
//	    {"id": "c1", "label": "Stage", "x": 200, "y": 0, "type": "component",
//	     "componentColor": 3,
//	     "nodes": [{"id": "in", "label": "Input 1", "type": "input"}],
//	     "edges": [],
//	     "inputs": {"in": [{"id": "e1", "path": [], "peer": "src"}]}}
//	  ],
//	  "edges": [
//	    {"id": "e1", "from": "src", "to": "c1",
//	     "modelFrom": "src", "modelTo": "in", "modelToPath": ["c1"]}
//	  ]
//	}
//
// # Node Fields
//
// Required:
//   - id: Unique string or number
//
// Optional:
//   - label, x, y: Display label and canvas position
//   - type: "plain" (default), "input", "output" or "component"
//   - componentColor: Palette index 0-8 of a component
//   - nodes, edges: Nested subgraph of a component
//   - inputs, outputs: Port indexes of a component (derived)
//
// # Edge Fields
//
// "from" and "to" name the visible endpoints at the edge's level. The
// optional "modelFrom", "modelTo", "modelFromPath" and "modelToPath" record
// the logical endpoints of a deep edge; when they are missing the visible
// endpoints are taken as logical.
//
// # Versioning
//
// Every written document carries "version". A document without one reads as
// version 1. Documents from a newer version are rejected with
// UNSUPPORTED_VERSION.
//
// # Import and Export
//
// Use [ReadJSON] / [WriteJSON] for any reader or writer, [ImportJSON] /
// [ExportJSON] for files and [Unmarshal] / [Marshal] for byte slices held by
// a store. [ReadTemplates] and [WriteTemplates] handle component libraries.
//
// Derived bookkeeping is written for inspection but never trusted on read:
// load the result through [network.NewFromDocument] or
// [network.Model.Import], which validate the document and derive every
// anchor, path and port index again.
package io
