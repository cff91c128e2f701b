package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/hiernet/pkg/editor"
	"github.com/matzehuels/hiernet/pkg/errors"
	hio "github.com/matzehuels/hiernet/pkg/io"
	"github.com/matzehuels/hiernet/pkg/network"
)

// =============================================================================
// Request and response bodies
// =============================================================================

type addNodeRequest struct {
	Context []string `json:"context"`
	ID      string   `json:"id" validate:"max=128"`
	Label   string   `json:"label" validate:"max=200"`
	Kind    string   `json:"type" validate:"omitempty,oneof=plain input output component"`
	X       float64  `json:"x"`
	Y       float64  `json:"y"`
	Color   *int     `json:"componentColor"`
}

type updateNodeRequest struct {
	Context []string `json:"context"`
	Label   *string  `json:"label" validate:"omitempty,max=200"`
	X       *float64 `json:"x"`
	Y       *float64 `json:"y"`
	Color   *int     `json:"componentColor"`
}

type idsRequest struct {
	Context []string `json:"context"`
	IDs     []string `json:"ids" validate:"required,min=1,dive,required"`
}

type edgeRequest struct {
	Context []string `json:"context"`
	ID      string   `json:"id" validate:"max=128"`
	From    string   `json:"from" validate:"required"`
	To      string   `json:"to" validate:"required"`
}

type foldRequest struct {
	Context []string `json:"context"`
	IDs     []string `json:"ids" validate:"required,min=1,dive,required"`
	ID      string   `json:"id" validate:"max=128"`
	Label   string   `json:"label" validate:"max=200"`
	Color   *int     `json:"componentColor"`
}

type instantiateRequest struct {
	Context  []string        `json:"context"`
	Template json.RawMessage `json:"template" validate:"required"`
	X        float64         `json:"x"`
	Y        float64         `json:"y"`
}

type nodeView struct {
	ID    string  `json:"id"`
	Label string  `json:"label"`
	Kind  string  `json:"type"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Color *int    `json:"componentColor,omitempty"`
}

func viewNode(n *network.Node) nodeView {
	v := nodeView{ID: n.ID, Label: n.Label, Kind: n.Kind.String(), X: n.X, Y: n.Y}
	if n.IsComponent() {
		c := n.Component.Color
		v.Color = &c
	}
	return v
}

type edgeView struct {
	ID        string   `json:"id"`
	From      string   `json:"from"`
	To        string   `json:"to"`
	ModelFrom string   `json:"modelFrom"`
	ModelTo   string   `json:"modelTo"`
	FromPath  []string `json:"modelFromPath,omitempty"`
	ToPath    []string `json:"modelToPath,omitempty"`
}

func viewEdge(e *network.Edge) edgeView {
	return edgeView{
		ID: e.ID, From: e.From, To: e.To,
		ModelFrom: e.ModelFrom, ModelTo: e.ModelTo,
		FromPath: e.FromPath, ToPath: e.ToPath,
	}
}

type peerView struct {
	EdgeID  string `json:"edge"`
	NodeID  string `json:"node"`
	Label   string `json:"label"`
	Tooltip string `json:"tooltip"`
}

type portView struct {
	ID    string     `json:"id"`
	Label string     `json:"label"`
	Peers []peerView `json:"peers"`
}

func viewPorts(ports []network.PortView) []portView {
	out := make([]portView, 0, len(ports))
	for _, p := range ports {
		v := portView{ID: p.ID, Label: p.Label, Peers: []peerView{}}
		for _, peer := range p.Peers {
			v.Peers = append(v.Peers, peerView{EdgeID: peer.EdgeID, NodeID: peer.NodeID, Label: peer.Label, Tooltip: peer.Tooltip()})
		}
		out = append(out, v)
	}
	return out
}

// =============================================================================
// Helpers
// =============================================================================

func docName(r *http.Request) string { return chi.URLParam(r, "name") }

// contextParam reads the slash-separated context query parameter.
func contextParam(r *http.Request) []string {
	raw := strings.Trim(r.URL.Query().Get("context"), "/")
	if raw == "" {
		return nil
	}
	return strings.Split(raw, "/")
}

func boolParam(r *http.Request, key string) bool {
	v, _ := strconv.ParseBool(r.URL.Query().Get(key))
	return v
}

// =============================================================================
// Documents
// =============================================================================

func (s *Server) listDocuments(w http.ResponseWriter, r *http.Request) {
	infos, err := s.runner.List(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"documents": infos})
}

// getDocument returns the stored document, or the level at the context
// parameter when one is given.
func (s *Server) getDocument(w http.ResponseWriter, r *http.Request) {
	m, err := s.runner.Open(r.Context(), docName(r), contextParam(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	data, err := hio.Marshal(m.Current())
	if err != nil {
		s.respondError(w, r, errors.Wrap(errors.ErrCodeInternal, err, "encode document"))
		return
	}
	respondRaw(w, http.StatusOK, "application/json", data)
}

func (s *Server) createDocument(w http.ResponseWriter, r *http.Request) {
	if _, err := s.runner.Create(r.Context(), docName(r), false); err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"name": docName(r)})
}

func (s *Server) putDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := hio.ReadJSON(r.Body)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	m, err := s.runner.Import(r.Context(), docName(r), doc)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"name": docName(r), "nodes": len(m.Root().Nodes)})
}

func (s *Server) deleteDocument(w http.ResponseWriter, r *http.Request) {
	if err := s.runner.Delete(r.Context(), docName(r)); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// Nodes
// =============================================================================

func (s *Server) addNode(w http.ResponseWriter, r *http.Request) {
	var req addNodeRequest
	if err := decode(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	kind, err := network.ParseKind(req.Kind)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	var created *network.Node
	_, err = s.runner.Update(r.Context(), docName(r), req.Context, func(m *network.Model) error {
		n, err := m.AddNode(network.NodeSpec{ID: req.ID, Label: req.Label, X: req.X, Y: req.Y, Kind: kind, Color: req.Color})
		created = n
		return err
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, viewNode(created))
}

func (s *Server) updateNode(w http.ResponseWriter, r *http.Request) {
	var req updateNodeRequest
	if err := decode(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	var updated *network.Node
	_, err := s.runner.Update(r.Context(), docName(r), req.Context, func(m *network.Model) error {
		n, err := m.UpdateNode(chi.URLParam(r, "id"), network.NodePatch{Label: req.Label, X: req.X, Y: req.Y, Color: req.Color})
		updated = n
		return err
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, viewNode(updated))
}

func (s *Server) deleteNodes(w http.ResponseWriter, r *http.Request) {
	var req idsRequest
	if err := decode(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	_, err := s.runner.Update(r.Context(), docName(r), req.Context, func(m *network.Model) error {
		return m.DeleteNodes(req.IDs...)
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// Edges
// =============================================================================

func (s *Server) addEdge(w http.ResponseWriter, r *http.Request) {
	var req edgeRequest
	if err := decode(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	var created *network.Edge
	_, err := s.runner.Update(r.Context(), docName(r), req.Context, func(m *network.Model) error {
		e, err := m.AddEdge(network.EdgeSpec{ID: req.ID, From: req.From, To: req.To})
		created = e
		return err
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, viewEdge(created))
}

func (s *Server) updateEdge(w http.ResponseWriter, r *http.Request) {
	var req edgeRequest
	if err := decode(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	var updated *network.Edge
	_, err := s.runner.Update(r.Context(), docName(r), req.Context, func(m *network.Model) error {
		e, err := m.UpdateEdge(chi.URLParam(r, "id"), network.EdgeSpec{From: req.From, To: req.To})
		updated = e
		return err
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, viewEdge(updated))
}

func (s *Server) deleteEdges(w http.ResponseWriter, r *http.Request) {
	var req idsRequest
	if err := decode(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	_, err := s.runner.Update(r.Context(), docName(r), req.Context, func(m *network.Model) error {
		return m.DeleteEdges(req.IDs...)
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// Structure
// =============================================================================

func (s *Server) fold(w http.ResponseWriter, r *http.Request) {
	var req foldRequest
	if err := decode(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	var created *network.Node
	_, err := s.runner.Update(r.Context(), docName(r), req.Context, func(m *network.Model) error {
		c, err := m.Fold(req.IDs, network.FoldOptions{ID: req.ID, Label: req.Label, Color: req.Color})
		created = c
		return err
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, viewNode(created))
}

func (s *Server) export(w http.ResponseWriter, r *http.Request) {
	var req idsRequest
	if err := decode(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	m, err := s.runner.Open(r.Context(), docName(r), req.Context)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	frag, err := m.Export(req.IDs...)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	data, err := hio.Marshal(frag)
	if err != nil {
		s.respondError(w, r, errors.Wrap(errors.ErrCodeInternal, err, "encode fragment"))
		return
	}
	respondRaw(w, http.StatusOK, "application/json", data)
}

func (s *Server) instantiate(w http.ResponseWriter, r *http.Request) {
	var req instantiateRequest
	if err := decode(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	templates, err := hio.ReadTemplates(bytes.NewReader(req.Template))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if len(templates) != 1 {
		s.respondError(w, r, errors.New(errors.ErrCodeInvalidInput, "template must be a single component"))
		return
	}

	var created *network.Node
	_, err = s.runner.Update(r.Context(), docName(r), req.Context, func(m *network.Model) error {
		c, err := m.Instantiate(templates[0], req.X, req.Y)
		created = c
		return err
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, viewNode(created))
}

// =============================================================================
// Queries
// =============================================================================

func (s *Server) ports(w http.ResponseWriter, r *http.Request) {
	m, err := s.runner.Open(r.Context(), docName(r), contextParam(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	inputs, outputs, err := m.Ports()
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"breadcrumbs": m.Breadcrumbs(),
		"inputs":      viewPorts(inputs),
		"outputs":     viewPorts(outputs),
	})
}

func (s *Server) check(w http.ResponseWriter, r *http.Request) {
	m, err := s.runner.Open(r.Context(), docName(r), nil)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := m.Check(); err != nil {
		respondJSON(w, http.StatusOK, map[string]any{"ok": false, "code": errors.GetCode(err), "message": errors.UserMessage(err)})
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) dot(w http.ResponseWriter, r *http.Request) {
	s.renderFormat(w, r, editor.FormatDOT)
}

func (s *Server) render(w http.ResponseWriter, r *http.Request) {
	s.renderFormat(w, r, r.URL.Query().Get("format"))
}

func (s *Server) renderFormat(w http.ResponseWriter, r *http.Request, format string) {
	opts := editor.RenderOptions{
		Format:   format,
		Expand:   boolParam(r, "expand"),
		Detailed: boolParam(r, "detailed"),
		Refresh:  boolParam(r, "refresh"),
	}
	if v := r.URL.Query().Get("scale"); v != "" {
		scale, err := strconv.ParseFloat(v, 64)
		if err != nil || scale <= 0 {
			s.respondError(w, r, errors.New(errors.ErrCodeInvalidInput, "invalid scale %q", v))
			return
		}
		opts.Scale = scale
	}
	res, err := s.runner.Render(r.Context(), docName(r), contextParam(r), opts)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if res.CacheHit {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
	respondRaw(w, http.StatusOK, res.ContentType, res.Data)
}
