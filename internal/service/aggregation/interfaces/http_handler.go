package interfaces

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"bazaar/internal/pkg/breaker"
	"bazaar/internal/service/aggregation/application"
	"bazaar/internal/service/aggregation/port"
)

type AggregationHandler struct {
	service *application.AggregationService
}

func NewAggregationHandler(service *application.AggregationService) *AggregationHandler {
	return &AggregationHandler{service: service}
}

func (h *AggregationHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("GET /api/aggregation/products/{id}", h.getAggregatedProduct)
}

func (h *AggregationHandler) getAggregatedProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	result, err := h.service.GetAggregatedProduct(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, port.ErrProductNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, breaker.ErrOpen):
			writeError(w, http.StatusServiceUnavailable, "product data temporarily unavailable")
		default:
			writeError(w, http.StatusBadGateway, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
