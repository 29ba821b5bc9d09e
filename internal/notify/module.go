package notify

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/studypulse/notify-engine/internal/notify/application"
	"github.com/studypulse/notify-engine/internal/notify/domain"
	"github.com/studypulse/notify-engine/internal/notify/infrastructure/persistence/postgres"
	"github.com/studypulse/notify-engine/internal/notify/infrastructure/push"
	"github.com/studypulse/notify-engine/internal/notify/infrastructure/tokens"
	"github.com/studypulse/notify-engine/internal/notify/infrastructure/ws"
	notify_http "github.com/studypulse/notify-engine/internal/notify/interfaces/http"
)

// Config carries the module's external dependencies and settings.
type Config struct {
	DB             *sqlx.DB
	Redis          *redis.Client
	PushEndpoint   string
	PushAPIKey     string
	PushTimeout    time.Duration
	ReaperInterval time.Duration
	Logger         *slog.Logger
}

// Module wires the notification engine together: store, token registry,
// live hub, push dispatcher, orchestrating service and HTTP surface.
type Module struct {
	service  *application.NotificationService
	reaper   *application.Reaper
	hub      *ws.Hub
	registry domain.TokenRegistry
	handler  *notify_http.NotificationHandler
	devices  *notify_http.DeviceHandler
}

func NewModule(cfg Config) *Module {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	repo := postgres.NewPgNotificationRepository(cfg.DB)

	var registry domain.TokenRegistry
	if cfg.Redis != nil {
		registry = tokens.NewRedisRegistry(cfg.Redis)
	} else {
		registry = tokens.NewMemoryRegistry()
	}

	hub := ws.NewHub()
	go hub.Run()

	gateway := push.NewHTTPGateway(cfg.PushEndpoint, cfg.PushAPIKey, &http.Client{Timeout: cfg.PushTimeout})
	dispatcher := push.NewDispatcher(gateway, registry, cfg.PushTimeout, logger)

	service := application.NewNotificationService(repo, hub, dispatcher, application.WithLogger(logger))
	reaper := application.NewReaper(repo, cfg.ReaperInterval, logger)

	return &Module{
		service:  service,
		reaper:   reaper,
		hub:      hub,
		registry: registry,
		handler:  notify_http.NewNotificationHandler(service, hub),
		devices:  notify_http.NewDeviceHandler(registry),
	}
}

func (m *Module) Service() *application.NotificationService { return m.service }

func (m *Module) Reaper() *application.Reaper { return m.reaper }

func (m *Module) Hub() *ws.Hub { return m.hub }

func (m *Module) HTTPHandler() *notify_http.NotificationHandler { return m.handler }

func (m *Module) DeviceHandler() *notify_http.DeviceHandler { return m.devices }

// Stop tears down the live hub and waits for in-flight push dispatches.
func (m *Module) Stop() {
	m.hub.Stop()
	m.service.WaitPushes()
}
