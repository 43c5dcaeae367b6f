package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"shelfguard-hq/shelfguard/pkg/catalog"
	"shelfguard-hq/shelfguard/pkg/history"
	"shelfguard-hq/shelfguard/pkg/pipeline"
	"shelfguard-hq/shelfguard/pkg/policy/registry"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// handleCompare runs a full comparison.
//
// POST /v1/compare
func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req pipeline.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	if req.CatalogPath == "" {
		req.CatalogPath = s.config.Catalog.CSVPath
	}
	if req.CatalogPath == "" {
		writeError(w, http.StatusBadRequest, "catalog_path is required (no default catalog configured)")
		return
	}
	if req.ClientSKU == "" || req.CompetitorSKU == "" {
		writeError(w, http.StatusBadRequest, "client_sku and competitor_sku are required")
		return
	}

	result, err := s.pipeline.Run(r.Context(), s.packs.Packs(), req)
	if err != nil {
		var notFound *catalog.NotFoundError
		if errors.As(err, &notFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleRules lists the rules selected for a market and categories.
//
// GET /v1/rules?market=AE&category=Pet+Supplies
func (s *Server) handleRules(w http.ResponseWriter, r *http.Request) {
	market := r.URL.Query().Get("market")
	var categories []string
	for _, c := range r.URL.Query()["category"] {
		if strings.TrimSpace(c) != "" {
			categories = append(categories, c)
		}
	}

	selected := registry.SelectRules(s.packs.Packs(), market, categories)
	if s.metrics != nil {
		s.metrics.Policy().RecordSelection(market, len(selected))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"market":     market,
		"categories": categories,
		"count":      len(selected),
		"rules":      selected,
	})
}

// handleReload forces a rule pack reload.
//
// POST /v1/rules/reload
func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if err := s.packs.Reload(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	packs := s.packs.Packs()
	writeJSON(w, http.StatusOK, map[string]any{"packs": len(packs)})
}

// handleRuns lists recent comparison runs.
//
// GET /v1/runs?limit=20
func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	runs, err := s.store.List(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if runs == nil {
		runs = []*history.Run{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

// handleRun retrieves one run by ID.
//
// GET /v1/runs/{id}
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	run, err := s.store.Get(r.Context(), id)
	if errors.Is(err, history.ErrRunNotFound) {
		writeError(w, http.StatusNotFound, "run not found: "+id)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, run)
}

// handleHealthz reports liveness and the loaded pack count.
func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"packs":  len(s.packs.Packs()),
	})
}
