package rest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/credora/credit-analysis/internal/application/dto"
	"github.com/credora/credit-analysis/internal/application/usecase"
	"github.com/credora/credit-analysis/internal/domain/port"
)

// AnalysisHandler serves the credit analysis API over HTTP.
type AnalysisHandler struct {
	analyze  *usecase.AnalyzeCreditUseCase
	get      *usecase.GetAnalysisUseCase
	products *usecase.ListProductsUseCase
	train    *usecase.TrainModelUseCase
	logger   *slog.Logger
}

// NewAnalysisHandler creates the API handler.
func NewAnalysisHandler(
	analyze *usecase.AnalyzeCreditUseCase,
	get *usecase.GetAnalysisUseCase,
	products *usecase.ListProductsUseCase,
	train *usecase.TrainModelUseCase,
	logger *slog.Logger,
) *AnalysisHandler {
	return &AnalysisHandler{
		analyze:  analyze,
		get:      get,
		products: products,
		train:    train,
		logger:   logger,
	}
}

// RegisterRoutes attaches the API routes to the given mux.
func (h *AnalysisHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/credit/analyze", h.analyzeCredit)
	mux.HandleFunc("GET /api/v1/credit/analyses/{id}", h.getAnalysis)
	mux.HandleFunc("GET /api/v1/credit/customers/{id}/analyses", h.listCustomerAnalyses)
	mux.HandleFunc("GET /api/v1/credit/products", h.listProducts)
	mux.HandleFunc("POST /api/v1/credit/model/train", h.trainModel)
}

func (h *AnalysisHandler) analyzeCredit(w http.ResponseWriter, r *http.Request) {
	var req dto.AnalyzeCreditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.analyze.Execute(r.Context(), req)
	if err != nil {
		h.logger.Warn("analysis request failed", "error", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *AnalysisHandler) getAnalysis(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "analysis id is required")
		return
	}

	resp, err := h.get.Execute(r.Context(), id)
	if err != nil {
		if errors.Is(err, port.ErrAnalysisNotFound) {
			writeError(w, http.StatusNotFound, "analysis not found")
			return
		}
		h.logger.Error("get analysis failed", "analysis_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load analysis")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *AnalysisHandler) listCustomerAnalyses(w http.ResponseWriter, r *http.Request) {
	customerID := r.PathValue("id")
	if customerID == "" {
		writeError(w, http.StatusBadRequest, "customer id is required")
		return
	}

	analyses, err := h.get.ByCustomer(r.Context(), customerID)
	if err != nil {
		if errors.Is(err, port.ErrAnalysisNotFound) {
			writeError(w, http.StatusNotFound, "no analyses for customer")
			return
		}
		h.logger.Error("list customer analyses failed", "customer_id", customerID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load analyses")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"customer_id": customerID,
		"analyses":    analyses,
	})
}

func (h *AnalysisHandler) listProducts(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"products": h.products.Execute(),
	})
}

func (h *AnalysisHandler) trainModel(w http.ResponseWriter, r *http.Request) {
	var req dto.TrainModelRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	resp, err := h.train.Execute(r.Context(), req)
	if err != nil {
		h.logger.Error("model training failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v) //nolint:errcheck
}
