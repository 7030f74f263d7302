package api

import (
	"encoding/json"
	"net/http"
)

type insertRequest struct {
	Name  *string  `json:"name"`
	Value *float64 `json:"value"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func (s *Server) handleInsertar(w http.ResponseWriter, r *http.Request) {
	var req insertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body: "+err.Error())
		return
	}
	if req.Name == nil || req.Value == nil {
		badRequest(w, "name and value are required")
		return
	}

	if err := s.svc.Insert(r.Context(), *req.Name, *req.Value); err != nil {
		s.writeError(w, r, "insert record", err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "Registro insertado exitosamente."})
}

func (s *Server) handleConsultar(w http.ResponseWriter, r *http.Request) {
	records, err := s.svc.List(r.Context())
	if err != nil {
		s.writeError(w, r, "list records", err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleEstadisticas(w http.ResponseWriter, r *http.Request) {
	stats, err := s.svc.Stats(r.Context())
	if err != nil {
		s.writeError(w, r, "record stats", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
