package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Jamolkhon5/clarifi/internal/ai/clarity/models"
	"github.com/Jamolkhon5/clarifi/internal/ai/clarity/service"
	"github.com/Jamolkhon5/clarifi/internal/ai/clarity/validator"
)

// ReportLog - журнал выданных отчетов, может отсутствовать
type ReportLog interface {
	SaveReport(ctx context.Context, req models.AnalyzeRequest, analysis models.Analysis) (string, error)
	RecentReports(ctx context.Context, limit int) ([]models.Report, error)
}

type ClarityHandler struct {
	provider service.Provider
	reports  ReportLog
	logger   *zap.Logger
}

func NewClarityHandler(provider service.Provider, reports ReportLog, logger *zap.Logger) *ClarityHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClarityHandler{
		provider: provider,
		reports:  reports,
		logger:   logger,
	}
}

// Analyze принимает {situation, context} и отвечает анализом
func (h *ClarityHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req models.AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validator.ValidateRequest(req); err != nil {
		switch {
		case errors.Is(err, validator.ErrEmptySituation):
			writeError(w, http.StatusBadRequest, "Situation is required")
		default:
			writeError(w, http.StatusBadRequest, "Unknown context")
		}
		return
	}

	analysis, err := h.provider.GetAnalysis(r.Context(), req.Situation, req.Context)
	if err != nil {
		h.logger.Error("error generating analysis", zap.String("context", req.Context.String()), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to generate analysis")
		return
	}

	if h.reports != nil {
		if _, err := h.reports.SaveReport(r.Context(), req, *analysis); err != nil {
			// журнал вспомогательный, ответ пользователю не зависит от него
			h.logger.Warn("error saving report", zap.Error(err))
		}
	}

	writeJSON(w, http.StatusOK, analysis)
}

// RecentReports отдает последние отчеты из журнала
func (h *ClarityHandler) RecentReports(w http.ResponseWriter, r *http.Request) {
	if h.reports == nil {
		writeError(w, http.StatusNotFound, "Report log is disabled")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = n
	}

	reports, err := h.reports.RecentReports(r.Context(), limit)
	if err != nil {
		h.logger.Error("error loading reports", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to load reports")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"reports": reports,
	})
}

// RegisterRoutes регистрирует маршруты сервиса анализа
func (h *ClarityHandler) RegisterRoutes(r chi.Router) {
	r.Post("/analyze", h.Analyze)
	r.Post("/v1/analyze", h.Analyze)
	r.Get("/v1/reports", h.RecentReports)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
