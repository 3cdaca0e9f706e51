package interfaces

import (
	"encoding/json"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"bazaar/internal/service/notification/application"
	"bazaar/internal/service/notification/domain"
	"bazaar/internal/service/notification/infrastructure/ws"
)

// NotificationHandler exposes the synchronous notification path and the
// websocket attach point. The kafka consumer covers the async path.
type NotificationHandler struct {
	service *application.NotificationService
	hub     *ws.Hub
}

func NewNotificationHandler(service *application.NotificationService, hub *ws.Hub) *NotificationHandler {
	return &NotificationHandler{service: service, hub: hub}
}

func (h *NotificationHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("POST /api/notifications/send", h.sendNotification)
	if h.hub != nil {
		mux.HandleFunc("GET /ws", h.hub.ServeWS)
	}
}

func (h *NotificationHandler) sendNotification(w http.ResponseWriter, r *http.Request) {
	var event domain.OrderCreatedEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if event.OrderID <= 0 || event.UserID <= 0 {
		writeError(w, http.StatusBadRequest, "orderId and userId are required")
		return
	}

	if err := h.service.HandleOrderCreated(r.Context(), &event); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusOK)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
