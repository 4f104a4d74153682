package transport

import (
	"context"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/folio-dev/folio/internal/domain/event"
	portblob "github.com/folio-dev/folio/internal/port/blob"
	porteventbus "github.com/folio-dev/folio/internal/port/eventbus"
	adminsvc "github.com/folio-dev/folio/internal/service/admin"
	contactsvc "github.com/folio-dev/folio/internal/service/contact"
	projectsvc "github.com/folio-dev/folio/internal/service/project"

	adminhandler "github.com/folio-dev/folio/internal/transport/admin"
	"github.com/folio-dev/folio/internal/transport/auth"
	contacthandler "github.com/folio-dev/folio/internal/transport/contact"
	"github.com/folio-dev/folio/internal/transport/httperr"
	mcptransport "github.com/folio-dev/folio/internal/transport/mcp"
	projecthandler "github.com/folio-dev/folio/internal/transport/project"
	uploadshandler "github.com/folio-dev/folio/internal/transport/uploads"
	wshandler "github.com/folio-dev/folio/internal/transport/ws"
)

// Options are the HTTP-facing settings taken from config.
type Options struct {
	Debug              bool
	PublicBaseURL      string
	CORSAllowedOrigins []string
	TrustedProxies     []string
	ContactPerMinute   int
	ContactBurst       int
}

func NewRouter(
	ctx context.Context,
	opts Options,
	projectSvc *projectsvc.Service,
	contactSvc *contactsvc.Service,
	adminSvc *adminsvc.Service,
	blobs portblob.Store,
	db Pinger,
	mcpServer *mcptransport.Server,
	eventBus porteventbus.EventBus,
) *gin.Engine {
	r := gin.New()
	// ClientIP, and with it the contact rate limiter, reads X-Forwarded-For
	// only from these peers.
	if err := r.SetTrustedProxies(opts.TrustedProxies); err != nil {
		slog.Error("invalid trusted proxies, trusting none", "error", err)
		_ = r.SetTrustedProxies(nil)
	}

	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(TrustedForwarding(opts.TrustedProxies))
	r.Use(RequestLogger())
	r.Use(CORSMiddleware(opts.CORSAllowedOrigins))
	r.Use(httperr.Debug(opts.Debug))

	r.GET("/health", healthHandler(db))
	r.GET("/healthz", healthHandler(db))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	uploadshandler.Register(r.Group("/uploads"), blobs)

	api := r.Group("/api")
	projecthandler.RegisterPublic(api.Group("/projects"), projectSvc, opts.PublicBaseURL)
	contacthandler.RegisterPublic(api, contactSvc, RateLimit(opts.ContactPerMinute, opts.ContactBurst))

	adminAPI := api.Group("/admin")
	adminhandler.RegisterPublic(adminAPI, adminSvc)

	protected := adminAPI.Group("", auth.RequireAdmin(adminSvc))
	adminhandler.RegisterAdmin(protected, adminSvc)
	projecthandler.RegisterAdmin(protected.Group("/projects"), projectSvc, opts.PublicBaseURL)
	contacthandler.RegisterAdmin(protected.Group("/contact-submissions"), contactSvc)

	hub := wshandler.NewHub()
	hub.Register(protected)

	mcpHandler := gin.WrapH(mcpServer.Handler())
	r.Any("/mcp", mcpHandler)

	// Bridge: one LISTEN connection per domain channel. Every event is
	// forwarded; event.Type in the payload lets the dashboard filter.
	for _, ch := range event.Channels {
		c := ch
		if _, err := eventBus.Subscribe(ctx, c, func(_ context.Context, e event.Event) {
			hub.Broadcast(e)
		}); err != nil {
			slog.Error("failed to subscribe channel to WS hub", "channel", c, "error", err)
		}
	}

	return r
}
