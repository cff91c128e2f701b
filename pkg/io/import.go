package io

import (
	"bytes"
	"encoding/json"
	"io"
	"os"

	"github.com/matzehuels/hiernet/pkg/errors"
	"github.com/matzehuels/hiernet/pkg/network"
)

// ReadJSON decodes a JSON document from r.
//
// The input is an object with a "nodes" array and an optional "edges" array:
//
//	{
//	  "version": 1,
//	  "nodes": [{"id": "a", "label": "A"}, {"id": "b"}],
//	  "edges": [{"id": "e", "from": "a", "to": "b"}]
//	}
//
// A top-level array is accepted and its first element is decoded. Ids may be
// strings or numbers. A missing version reads as 1.
//
// ReadJSON returns an error with code:
//   - INVALID_FORMAT if the JSON is malformed, the document has no "nodes"
//     array, a node has an unknown type, or a non-component carries children
//   - UNSUPPORTED_VERSION if the document was written by a newer format
//
// ReadJSON checks structure only. Graph-level validation happens when the
// result is imported into a [network.Model]. ReadJSON does not close r.
func ReadJSON(r io.Reader) (*network.Subgraph, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read document")
	}
	return Unmarshal(raw)
}

// Unmarshal decodes a document from JSON bytes. See [ReadJSON].
func Unmarshal(raw []byte) (*network.Subgraph, error) {
	raw, err := firstElement(raw)
	if err != nil {
		return nil, err
	}

	var data document
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode")
	}
	if data.Nodes == nil {
		return nil, errors.New(errors.ErrCodeInvalidFormat,
			"incorrect format, expected an object like {\"nodes\": [], \"edges\": []}")
	}
	if data.Version > Version {
		return nil, errors.New(errors.ErrCodeUnsupportedVer,
			"document version %d is newer than supported version %d", data.Version, Version)
	}

	g, err := toSubgraph(*data.Nodes, data.Edges)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// ImportJSON reads a JSON document file at path.
func ImportJSON(path string) (*network.Subgraph, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "open %s", path)
	}
	defer f.Close()
	return ReadJSON(f)
}

// ReadTemplates decodes component templates from r. The input is an array
// of nodes or a single node; entries that are not components are skipped.
func ReadTemplates(r io.Reader) ([]*network.Node, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read templates")
	}

	var list []node
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		err = json.Unmarshal(trimmed, &list)
	} else {
		var single node
		err = json.Unmarshal(trimmed, &single)
		list = []node{single}
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode templates")
	}

	var out []*network.Node
	for _, n := range list {
		if n.Type != network.KindComponent.String() {
			continue
		}
		nd, err := toNode(n)
		if err != nil {
			return nil, err
		}
		out = append(out, nd)
	}
	return out, nil
}

func firstElement(raw []byte) ([]byte, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return trimmed, nil
	}
	var list []json.RawMessage
	if err := json.Unmarshal(trimmed, &list); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode")
	}
	if len(list) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "incorrect format, empty document list")
	}
	return list[0], nil
}
