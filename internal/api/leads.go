package api

import (
	"context"
	"encoding/json"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/leadgen-my/leadgen-cli/internal/export"
	"github.com/leadgen-my/leadgen-cli/internal/model"
	"github.com/leadgen-my/leadgen-cli/internal/store"
)

const defaultListLimit = 100

func (s *Server) handleListLeads(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	leads, err := s.store.ListLeads(r.Context(), filter)
	if err != nil {
		zap.L().Error("api: list leads", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list leads")
		return
	}
	if leads == nil {
		leads = []model.Lead{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"total": len(leads),
		"leads": leads,
	})
}

func filterFromQuery(r *http.Request) (store.LeadFilter, error) {
	q := r.URL.Query()
	filter := store.LeadFilter{
		Search: q.Get("search"),
		Limit:  defaultListLimit,
	}

	if v := q.Get("status"); v != "" {
		status, err := model.ParseLeadStatus(v)
		if err != nil {
			return filter, err
		}
		filter.Status = status
	}
	if v := q.Get("source"); v != "" {
		source, err := model.ParseSourceType(v)
		if err != nil {
			return filter, err
		}
		filter.Source = source
	}
	if v := q.Get("min_score"); v != "" {
		score, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return filter, err
		}
		filter.MinScore = score
	}
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			return filter, err
		}
		filter.Limit = limit
	}
	if v := q.Get("offset"); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil {
			return filter, err
		}
		filter.Offset = offset
	}
	return filter, nil
}

func (s *Server) handleGetLead(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	lead, err := s.store.GetLead(r.Context(), id)
	if err != nil {
		zap.L().Error("api: get lead", zap.String("id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load lead")
		return
	}
	if lead == nil {
		writeError(w, http.StatusNotFound, "lead not found")
		return
	}

	history, err := s.store.StatusHistory(r.Context(), id)
	if err != nil {
		zap.L().Error("api: status history", zap.String("id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load status history")
		return
	}
	generations, err := s.store.ListGenerations(r.Context(), id, "")
	if err != nil {
		zap.L().Error("api: list generations", zap.String("id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load generations")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"lead":           lead,
		"status_history": history,
		"generations":    generations,
	})
}

func (s *Server) handleCreateLead(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Source string         `json:"source"`
		Data   map[string]any `json:"data"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Data) == 0 {
		writeError(w, http.StatusBadRequest, "data is required")
		return
	}

	source := model.SourceManual
	if req.Source != "" {
		parsed, err := model.ParseSourceType(req.Source)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		source = parsed
	}

	lead, err := s.registry.Standardize(req.Data, source)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	// Assign the ID here so the response can carry it.
	lead.ID = uuid.New().String()
	if _, err := s.store.SaveLeads(r.Context(), []model.Lead{lead}); err != nil {
		zap.L().Error("api: save lead", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to save lead")
		return
	}
	writeJSON(w, http.StatusCreated, lead)
}

func (s *Server) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID     string `json:"id"`
		Status string `json:"status"`
		Note   string `json:"note"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ID == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}
	status, err := model.ParseLeadStatus(req.Status)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	lead, err := s.store.GetLead(r.Context(), req.ID)
	if err != nil {
		zap.L().Error("api: get lead", zap.String("id", req.ID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load lead")
		return
	}
	if lead == nil {
		writeError(w, http.StatusNotFound, "lead not found")
		return
	}

	if err := s.store.UpdateLeadStatus(r.Context(), req.ID, status, req.Note); err != nil {
		zap.L().Error("api: update status", zap.String("id", req.ID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to update status")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"id":     req.ID,
		"status": string(status),
	})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Format   string  `json:"format"`
		Filename string  `json:"filename"`
		Status   string  `json:"status"`
		Source   string  `json:"source"`
		MinScore float64 `json:"min_score"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	format := export.FormatJSON
	if req.Format != "" {
		parsed, err := export.ParseFormat(req.Format)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		format = parsed
	}

	filter := store.LeadFilter{MinScore: req.MinScore}
	if req.Status != "" {
		status, err := model.ParseLeadStatus(req.Status)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		filter.Status = status
	}
	if req.Source != "" {
		source, err := model.ParseSourceType(req.Source)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		filter.Source = source
	}

	name := req.Filename
	if name == "" {
		name = "leads-" + time.Now().UTC().Format("20060102-150405") + "." + string(format)
	}
	path := filepath.Join(s.exportDir, filepath.Base(name))

	// The file is written in the background; the response just names it.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		leads, err := s.store.ListLeads(ctx, filter)
		if err != nil {
			zap.L().Error("api: export list leads", zap.Error(err))
			return
		}
		if err := export.Write(leads, format, path); err != nil {
			zap.L().Error("api: export write", zap.String("path", path), zap.Error(err))
			return
		}
		zap.L().Info("api: export complete",
			zap.String("path", path),
			zap.Int("leads", len(leads)))
	}()

	writeJSON(w, http.StatusAccepted, map[string]string{
		"status": "accepted",
		"path":   path,
	})
}

func (s *Server) handleDashboardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.DashboardStats(r.Context())
	if err != nil {
		zap.L().Error("api: dashboard stats", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
