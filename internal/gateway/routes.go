package gateway

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/studypulse/notify-engine/internal/gateway/middleware"
	notify_http "github.com/studypulse/notify-engine/internal/notify/interfaces/http"
)

// RouterConfig holds all the handlers and middleware needed for routing
type RouterConfig struct {
	AuthMiddleware      *middleware.AuthMiddleware
	NotificationHandler *notify_http.NotificationHandler
	DeviceHandler       *notify_http.DeviceHandler
}

// SetupRoutes creates and configures all application routes
func SetupRoutes(config RouterConfig) *http.ServeMux {
	mux := http.NewServeMux()

	// Health Check
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Prometheus Metrics Endpoint
	mux.Handle("/metrics", promhttp.Handler())

	requireAuth := func(h http.HandlerFunc) http.Handler {
		return config.AuthMiddleware.RequireAuth(h)
	}

	// Notification Routes
	mux.Handle("GET /notifications", requireAuth(config.NotificationHandler.ListNotifications))
	mux.Handle("PATCH /notifications/{id}/read", requireAuth(config.NotificationHandler.MarkAsRead))
	mux.Handle("PATCH /notifications/read-all", requireAuth(config.NotificationHandler.MarkAllAsRead))
	mux.Handle("GET /notifications/unread-count", requireAuth(config.NotificationHandler.UnreadCount))
	mux.Handle("GET /ws", requireAuth(config.NotificationHandler.Subscribe))

	// Device Token Routes
	mux.Handle("POST /devices", requireAuth(config.DeviceHandler.RegisterDevice))
	mux.Handle("DELETE /devices", requireAuth(config.DeviceHandler.RemoveDevices))
	mux.Handle("GET /devices", requireAuth(config.DeviceHandler.ListDevices))

	return mux
}
