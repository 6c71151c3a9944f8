package planner

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/oncoplan-ai/platform/pkg/common/logger"
	"github.com/oncoplan-ai/platform/pkg/common/models"
	"github.com/oncoplan-ai/platform/pkg/intake"
	"github.com/oncoplan-ai/platform/pkg/observability/metrics"
	"github.com/oncoplan-ai/platform/pkg/plans"
	"github.com/oncoplan-ai/platform/pkg/rules"
)

type Handler struct {
	service *Service
	repo    *plans.Repository
	maxBody int64
}

func NewHandler(service *Service, repo *plans.Repository, maxBody int64) *Handler {
	if maxBody <= 0 {
		maxBody = 1 << 20
	}
	return &Handler{service: service, repo: repo, maxBody: maxBody}
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", h.health).Methods(http.MethodGet)
	r.HandleFunc("/ready", h.ready).Methods(http.MethodGet)
	r.HandleFunc("/metrics", h.metrics).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/recommend", h.recommend).Methods(http.MethodPost)
	api.HandleFunc("/outcomes", h.outcomes).Methods(http.MethodPost)
	api.HandleFunc("/plans", h.listPlans).Methods(http.MethodGet)
	api.HandleFunc("/plans/{id}", h.getPlan).Methods(http.MethodGet)
}

func (h *Handler) recommend(w http.ResponseWriter, r *http.Request) {
	var req models.RecommendRequest
	if !h.decode(w, r, &req) {
		return
	}

	response, err := h.service.Recommend(r.Context(), req.Patient)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *Handler) outcomes(w http.ResponseWriter, r *http.Request) {
	var req models.RecommendRequest
	if !h.decode(w, r, &req) {
		return
	}

	response, err := h.service.PredictOutcomes(r.Context(), req.Patient)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *Handler) getPlan(w http.ResponseWriter, r *http.Request) {
	if h.repo == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "plan storage not configured"})
		return
	}

	record, err := h.repo.GetPlan(r.Context(), mux.Vars(r)["id"])
	if errors.Is(err, plans.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "plan not found"})
		return
	}
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (h *Handler) listPlans(w http.ResponseWriter, r *http.Request) {
	if h.repo == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "plan storage not configured"})
		return
	}

	var records []plans.PlanRecord
	var err error
	if patientRef := r.URL.Query().Get("patient_id"); patientRef != "" {
		records, err = h.repo.ListByPatient(r.Context(), patientRef, 20)
	} else {
		records, err = h.repo.ListPlans(r.Context(), r.URL.Query().Get("cancer_type"), 20)
	}
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"plans": records, "count": len(records)})
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy", "service": serviceName})
}

// ready reports whether optional subsystems came up. The pipeline itself
// works without storage, so readiness is informational, never a 503.
func (h *Handler) ready(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ready",
		"service": serviceName,
		"storage": h.repo != nil,
	})
}

func (h *Handler) metrics(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	metrics.WritePrometheus(w)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return false
	}
	return true
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var cancerErr rules.UnsupportedCancerError
	var stageErr rules.UnsupportedStageError

	switch {
	case intake.IsValidationError(err):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.As(err, &cancerErr), errors.As(err, &stageErr):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	default:
		logger.WithComponent("planner").WithError(err).Error("request failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.WithComponent("planner").WithError(err).Error("failed to encode response")
	}
}
