package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/KaramelBytes/chartly-cli/internal/analysis"
	"github.com/KaramelBytes/chartly-cli/internal/dataset"
	"github.com/KaramelBytes/chartly-cli/internal/recommend"
	"github.com/KaramelBytes/chartly-cli/internal/shape"
)

const (
	msgDataRequired  = "Data is required"
	msgProcessFailed = "Failed to process the request"
	msgUnknownKind   = "Unknown chart kind"
)

// chartRequest is the body accepted by every chart endpoint.
type chartRequest struct {
	Data    json.RawMessage   `json:"data"`
	Filters map[string]string `json:"filters,omitempty"`
}

// SuggestResponse is the body returned by POST /api/charts/suggestions.
type SuggestResponse struct {
	Suggestions []recommend.ChartKind `json:"suggestions"`
	ColumnInfo  []analysis.ColumnInfo `json:"columnInfo"`
}

// BindingsResponse is the body returned by POST /api/charts/bindings.
type BindingsResponse struct {
	Suggestions []recommend.Suggestion `json:"suggestions"`
	ColumnInfo  []analysis.ColumnInfo  `json:"columnInfo"`
}

// ShapeResponse is the body returned by POST /api/charts/shape.
type ShapeResponse struct {
	Kind   recommend.ChartKind `json:"kind"`
	Series shape.Series        `json:"series"`
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// HealthStatus is the body returned by GET /.
type HealthStatus struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, HealthStatus{
		Message: "Chartly service is running",
		Status:  "healthy",
	})
}

func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	_, ds, ok := s.readDataset(w, r)
	if !ok {
		return
	}
	cols := analysis.Classify(ds)
	s.writeJSON(w, http.StatusOK, SuggestResponse{
		Suggestions: recommend.Suggest(cols),
		ColumnInfo:  cols,
	})
}

func (s *Server) handleBindings(w http.ResponseWriter, r *http.Request) {
	_, ds, ok := s.readDataset(w, r)
	if !ok {
		return
	}
	cols := analysis.Classify(ds)
	s.writeJSON(w, http.StatusOK, BindingsResponse{
		Suggestions: recommend.Bind(cols),
		ColumnInfo:  cols,
	})
}

// handleShape shapes one chart kind. Column types come from the full data,
// the series from the filtered rows.
func (s *Server) handleShape(w http.ResponseWriter, r *http.Request) {
	kind, err := recommend.ParseKind(r.URL.Query().Get("kind"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, msgUnknownKind, err.Error())
		return
	}
	req, ds, ok := s.readDataset(w, r)
	if !ok {
		return
	}
	cols := analysis.Classify(ds)
	series, err := shape.Shape(kind, dataset.Filter(ds.Rows, req.Filters), cols)
	if err != nil {
		var ce *shape.ConfigError
		switch {
		case errors.As(err, &ce):
			s.writeError(w, http.StatusUnprocessableEntity, ce.Placeholder(), ce.Error())
		case errors.Is(err, shape.ErrUnknownKind):
			s.writeError(w, http.StatusBadRequest, msgUnknownKind, err.Error())
		default:
			s.writeError(w, http.StatusInternalServerError, msgProcessFailed, err.Error())
		}
		return
	}
	s.writeJSON(w, http.StatusOK, ShapeResponse{Kind: kind, Series: series})
}

// readDataset decodes {data: Row[]} and writes the error reply itself when
// the body is unusable.
func (s *Server) readDataset(w http.ResponseWriter, r *http.Request) (*chartRequest, *dataset.Dataset, bool) {
	body := http.MaxBytesReader(w, r.Body, s.config.MaxBodyBytes)
	var req chartRequest
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		s.writeError(w, http.StatusInternalServerError, msgProcessFailed, err.Error())
		return nil, nil, false
	}
	data := bytes.TrimSpace(req.Data)
	if len(data) == 0 || data[0] != '[' {
		s.writeError(w, http.StatusBadRequest, msgDataRequired, "")
		return nil, nil, false
	}
	ds, err := dataset.ParseRecords(data)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, msgProcessFailed, err.Error())
		return nil, nil, false
	}
	if ds.Len() == 0 {
		s.writeError(w, http.StatusBadRequest, msgDataRequired, "")
		return nil, nil, false
	}
	return &req, ds, true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, msgProcessFailed, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(b, '\n'))
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg, details string) {
	b, _ := json.Marshal(ErrorResponse{Error: msg, Details: details})
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(b, '\n'))
}
