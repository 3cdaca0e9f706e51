package interfaces

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"bazaar/internal/service/inventory/application"
	"bazaar/internal/service/inventory/domain"
)

// InventoryHandler exposes the inventory service's HTTP boundary. The
// check-availability and decrease endpoints take query parameters, which
// is the calling convention the order service's adapter uses.
type InventoryHandler struct {
	service *application.InventoryApplicationService
}

func NewInventoryHandler(service *application.InventoryApplicationService) *InventoryHandler {
	return &InventoryHandler{service: service}
}

func (h *InventoryHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("POST /api/inventory/add", h.addStock)
	mux.HandleFunc("POST /api/inventory/update", h.updateStock)
	mux.HandleFunc("POST /api/inventory/check-availability", h.checkAvailability)
	mux.HandleFunc("POST /api/inventory/decrease", h.decreaseStock)
	mux.HandleFunc("GET /api/inventory/{productId}", h.getInventory)
}

func (h *InventoryHandler) addStock(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeStockUpdate(w, r)
	if !ok {
		return
	}
	resp, err := h.service.AddStock(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *InventoryHandler) updateStock(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeStockUpdate(w, r)
	if !ok {
		return
	}
	resp, err := h.service.UpdateStock(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *InventoryHandler) checkAvailability(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(r.URL.Query().Get("productId"), 10, 64)
	if err != nil || productID <= 0 {
		writeError(w, http.StatusBadRequest, "productId is required")
		return
	}
	required, _ := strconv.Atoi(r.URL.Query().Get("requiredQuantity"))

	resp, err := h.service.CheckAvailability(r.Context(), productID, required)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *InventoryHandler) decreaseStock(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(r.URL.Query().Get("productId"), 10, 64)
	if err != nil || productID <= 0 {
		writeError(w, http.StatusBadRequest, "productId is required")
		return
	}
	quantity, err := strconv.Atoi(r.URL.Query().Get("quantity"))
	if err != nil || quantity <= 0 {
		writeError(w, http.StatusBadRequest, "quantity must be positive")
		return
	}

	resp, err := h.service.DecreaseStock(r.Context(), productID, quantity)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *InventoryHandler) getInventory(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(r.PathValue("productId"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}
	resp, err := h.service.GetByProductID(r.Context(), productID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func decodeStockUpdate(w http.ResponseWriter, r *http.Request) (*application.StockUpdateRequest, bool) {
	var req application.StockUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return nil, false
	}
	if req.ProductID <= 0 {
		writeError(w, http.StatusBadRequest, "productId is required")
		return nil, false
	}
	if req.Quantity < 0 {
		writeError(w, http.StatusBadRequest, "quantity must not be negative")
		return nil, false
	}
	return &req, true
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInventoryNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrInsufficientStock):
		// 409 is what downstream adapters translate back into a
		// business rejection.
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrNegativeQuantity):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
