package server

import (
	"encoding/json"
	goerrors "errors"
	"math"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/voltlab/cdckit/pkg/cdc"
	"github.com/voltlab/cdckit/pkg/codec"
	"github.com/voltlab/cdckit/pkg/pipeline"
	"github.com/voltlab/cdckit/pkg/store"
)

type parseRequest struct {
	CDC string `json:"cdc"`
}

type parseResponse struct {
	Valid      bool            `json:"valid"`
	CDC        string          `json:"cdc,omitempty"`
	Extended   string          `json:"extended,omitempty"`
	Tokens     []string        `json:"tokens,omitempty"`
	Parameters []parameterJSON `json:"parameters,omitempty"`
	Error      string          `json:"error,omitempty"`
	Pos        *int            `json:"pos,omitempty"`
}

// parameterJSON is the wire form of a fit parameter. Unbounded limits are
// omitted instead of serialized, since JSON has no infinity.
type parameterJSON struct {
	Element string   `json:"element"`
	Symbol  string   `json:"symbol"`
	Value   float64  `json:"value"`
	Fixed   bool     `json:"fixed,omitempty"`
	Lower   *float64 `json:"lower,omitempty"`
	Upper   *float64 `json:"upper,omitempty"`
}

func toParameterJSON(p cdc.FitParameter) parameterJSON {
	out := parameterJSON{
		Element: p.Element,
		Symbol:  p.Symbol,
		Value:   p.Value,
		Fixed:   p.Fixed,
	}
	if !math.IsInf(p.Lower, -1) {
		l := p.Lower
		out.Lower = &l
	}
	if !math.IsInf(p.Upper, 1) {
		u := p.Upper
		out.Upper = &u
	}
	return out
}

// handleParse validates circuit text and returns its canonical forms and
// the flat fit parameter vector.
func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	var req parseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	c, err := cdc.Parse(req.CDC, s.registry)
	if err != nil {
		resp := parseResponse{Valid: false, Error: err.Error()}
		var perr *cdc.ParseError
		if goerrors.As(err, &perr) {
			pos := perr.Pos
			resp.Pos = &pos
		}
		respondJSON(w, http.StatusUnprocessableEntity, resp)
		return
	}

	resp := parseResponse{
		Valid:    true,
		CDC:      c.CDC(),
		Extended: c.Extended(),
		Tokens:   c.Tokens(),
	}
	for _, p := range c.FitVector() {
		resp.Parameters = append(resp.Parameters, toParameterJSON(p))
	}
	respondJSON(w, http.StatusOK, resp)
}

type layoutRequest struct {
	CDC     string `json:"cdc"`
	Refresh bool   `json:"refresh,omitempty"`
}

// handleLayout returns the node-link descriptor for circuit text.
func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	var req layoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	c, err := cdc.Parse(req.CDC, s.registry)
	if err != nil {
		s.respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	d, _, err := s.runner.ComputeLayout(r.Context(), c, pipeline.Options{
		CDC:      req.CDC,
		Refresh:  req.Refresh,
		Registry: s.registry,
		Logger:   s.logger,
	})
	if err != nil {
		s.respondError(w, statusFor(err), err.Error())
		return
	}
	respondJSON(w, http.StatusOK, d)
}

type renderRequest struct {
	CDC      string  `json:"cdc"`
	Format   string  `json:"format,omitempty"` // defaults to svg
	Scale    float64 `json:"scale,omitempty"`
	Detailed bool    `json:"detailed,omitempty"`
	Refresh  bool    `json:"refresh,omitempty"`
}

var contentTypes = map[string]string{
	pipeline.FormatJSON: "application/json",
	pipeline.FormatDOT:  "text/vnd.graphviz",
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatPDF:  "application/pdf",
}

// handleRender runs the full pipeline and streams one rendered artifact.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Format == "" {
		req.Format = pipeline.FormatSVG
	}
	if err := pipeline.ValidateFormat(req.Format); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.runner.Execute(r.Context(), pipeline.Options{
		CDC:      req.CDC,
		Formats:  []string{req.Format},
		Scale:    req.Scale,
		Detailed: req.Detailed,
		Refresh:  req.Refresh,
		Registry: s.registry,
		Logger:   s.logger,
	})
	if err != nil {
		s.respondError(w, statusFor(err), err.Error())
		return
	}

	w.Header().Set("Content-Type", contentTypes[req.Format])
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Artifacts[req.Format])
}

type elementJSON struct {
	Mnemonic   string          `json:"mnemonic"`
	Name       string          `json:"name"`
	Parameters []parameterJSON `json:"parameters"`
}

// handleElements lists the element definitions known to the server.
func (s *Server) handleElements(w http.ResponseWriter, r *http.Request) {
	var out []elementJSON
	for _, def := range s.registry.Definitions() {
		e := elementJSON{Mnemonic: def.Mnemonic, Name: def.Name}
		for _, p := range def.Defaults {
			e.Parameters = append(e.Parameters, toParameterJSON(cdc.FitParameter{
				Element:   def.Mnemonic,
				Parameter: p,
			}))
		}
		out = append(out, e)
	}
	respondJSON(w, http.StatusOK, out)
}

type circuitRequest struct {
	Name string `json:"name"`
	CDC  string `json:"cdc"`
}

// validateCircuit parses the submitted text and returns its canonical
// extended form, which is what gets stored.
func (s *Server) validateCircuit(req circuitRequest) (string, error) {
	c, err := cdc.Parse(req.CDC, s.registry)
	if err != nil {
		return "", err
	}
	return c.Extended(), nil
}

func (s *Server) handleCreateCircuit(w http.ResponseWriter, r *http.Request) {
	var req circuitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	text, err := s.validateCircuit(req)
	if err != nil {
		s.respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	c, err := s.store.Create(r.Context(), req.Name, text)
	if err != nil {
		s.respondError(w, statusFor(err), err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, c)
}

func (s *Server) handleListCircuits(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.List(r.Context())
	if err != nil {
		s.respondError(w, statusFor(err), err.Error())
		return
	}
	if list == nil {
		list = []*store.Circuit{}
	}
	respondJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetCircuit(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid circuit id")
		return
	}
	c, err := s.store.Get(r.Context(), id)
	if err != nil {
		s.respondError(w, statusFor(err), err.Error())
		return
	}
	respondJSON(w, http.StatusOK, c)
}

func (s *Server) handleUpdateCircuit(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid circuit id")
		return
	}
	var req circuitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	text, err := s.validateCircuit(req)
	if err != nil {
		s.respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	c, err := s.store.Update(r.Context(), id, req.Name, text)
	if err != nil {
		s.respondError(w, statusFor(err), err.Error())
		return
	}
	respondJSON(w, http.StatusOK, c)
}

func (s *Server) handleDeleteCircuit(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid circuit id")
		return
	}
	if err := s.store.Delete(r.Context(), id); err != nil {
		s.respondError(w, statusFor(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	var perr *cdc.ParseError
	var verr *codec.ValidationError
	switch {
	case goerrors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case goerrors.As(err, &perr), goerrors.As(err, &verr):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
