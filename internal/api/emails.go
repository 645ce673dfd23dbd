package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/leadgen-my/leadgen-cli/internal/model"
)

func (s *Server) handleGenerateEmail(w http.ResponseWriter, r *http.Request) {
	var req struct {
		LeadID   string            `json:"lead_id"`
		Template string            `json:"template"`
		Force    bool              `json:"force"`
		Custom   map[string]string `json:"custom"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.LeadID == "" {
		writeError(w, http.StatusBadRequest, "lead_id is required")
		return
	}

	lead, err := s.store.GetLead(r.Context(), req.LeadID)
	if err != nil {
		zap.L().Error("api: get lead", zap.String("id", req.LeadID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load lead")
		return
	}
	if lead == nil {
		writeError(w, http.StatusNotFound, "lead not found")
		return
	}

	// Template unset routes through the targeting tiers.
	template := req.Template
	if template == "" && s.targeting != nil {
		template = s.targeting.StrategyFor(*lead).Template
	}

	if !req.Force {
		allowed, reason, err := s.policy.Check(r.Context(), s.store, req.LeadID, template)
		if err != nil {
			zap.L().Error("api: policy check", zap.String("id", req.LeadID), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to check policy")
			return
		}
		if !allowed {
			writeError(w, http.StatusConflict, reason)
			return
		}
	}

	gen, err := s.generator.Generate(*lead, template, req.Custom)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	id, err := s.store.RecordGeneration(r.Context(), gen)
	if err != nil {
		zap.L().Error("api: record generation", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to record generation")
		return
	}
	gen.ID = id
	writeJSON(w, http.StatusCreated, gen)
}

func (s *Server) handleSendEmails(w http.ResponseWriter, r *http.Request) {
	var req struct {
		GenerationIDs []int64 `json:"generation_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.GenerationIDs) == 0 {
		writeError(w, http.StatusBadRequest, "generation_ids is required")
		return
	}

	gens := make([]model.EmailGeneration, 0, len(req.GenerationIDs))
	for _, id := range req.GenerationIDs {
		gen, err := s.store.GetGeneration(r.Context(), id)
		if err != nil {
			zap.L().Error("api: get generation", zap.Int64("id", id), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to load generation")
			return
		}
		if gen == nil {
			writeError(w, http.StatusNotFound, "generation not found")
			return
		}
		if gen.Sent() {
			continue
		}
		gens = append(gens, *gen)
	}

	// Delivery runs in the background; rate limits make it slow.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Hour)
		defer cancel()
		if _, err := s.sender.SendBatch(ctx, gens, nil, s.store); err != nil {
			zap.L().Error("api: send batch", zap.Error(err))
		}
	}()

	writeJSON(w, http.StatusAccepted, map[string]any{
		"status": "accepted",
		"queued": len(gens),
	})
}
