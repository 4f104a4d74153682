package wire

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"golang.org/x/crypto/bcrypt"

	authadapter "github.com/folio-dev/folio/internal/adapter/auth"
	"github.com/folio-dev/folio/internal/adapter/cached"
	"github.com/folio-dev/folio/internal/adapter/filesystem"
	"github.com/folio-dev/folio/internal/adapter/memory"
	pgdb "github.com/folio-dev/folio/internal/adapter/postgres"
	pgadmin "github.com/folio-dev/folio/internal/adapter/postgres/admin"
	pgcontact "github.com/folio-dev/folio/internal/adapter/postgres/contact"
	pgeventbus "github.com/folio-dev/folio/internal/adapter/postgres/eventbus"
	pglocker "github.com/folio-dev/folio/internal/adapter/postgres/locker"
	pgproject "github.com/folio-dev/folio/internal/adapter/postgres/project"
	redisadapter "github.com/folio-dev/folio/internal/adapter/redis"
	resendadapter "github.com/folio-dev/folio/internal/adapter/resend"
	"github.com/folio-dev/folio/internal/config"
	portcache "github.com/folio-dev/folio/internal/port/cache"
	portnotifier "github.com/folio-dev/folio/internal/port/notifier"

	adminsvc "github.com/folio-dev/folio/internal/service/admin"
	contactsvc "github.com/folio-dev/folio/internal/service/contact"
	projectsvc "github.com/folio-dev/folio/internal/service/project"
	"github.com/folio-dev/folio/internal/service/sweeper"

	"github.com/folio-dev/folio/internal/transport"
	mcptransport "github.com/folio-dev/folio/internal/transport/mcp"
)

// App holds the top-level resources needed to run and gracefully stop the server.
type App struct {
	Pool     *pgxpool.Pool
	Server   *http.Server
	Services *Services
	Cron     *cron.Cron
}

// Services is the service layer without any transport, shared by the server
// and folioctl.
type Services struct {
	Blobs   *filesystem.Store
	Project *projectsvc.Service
	Contact *contactsvc.Service
	Admin   *adminsvc.Service
	Sweeper *sweeper.Sweeper
	Bus     *pgeventbus.EventBus
	Redis   *goredis.Client
}

// BuildServices wires adapters to services on an open pool.
func BuildServices(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool, logger *slog.Logger) (*Services, error) {
	// ── Adapters ─────────────────────────────────────────────────────────────
	blobs, err := filesystem.New(cfg.Storage.UploadDir)
	if err != nil {
		return nil, fmt.Errorf("opening upload dir: %w", err)
	}
	eventBus := pgeventbus.New(pool)
	locker := pglocker.New(pool)

	var (
		cache       portcache.Cache = memory.NewCache()
		redisClient *goredis.Client
	)
	if cfg.Cache.RedisURL != "" {
		redisClient, err = redisadapter.Connect(ctx, cfg.Cache.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("connecting to redis: %w", err)
		}
		cache = redisadapter.NewCache(redisClient, "folio:")
		slog.Info("project list cache backed by redis")
	}
	projectRepo := cached.NewProjectRepository(pgproject.New(pool), cache, cfg.Cache.TTL)

	var notifier portnotifier.ContactNotifier = portnotifier.Nop{}
	if cfg.EmailEnabled() {
		notifier = resendadapter.New(cfg.Email.ResendAPIKey, cfg.Email.From, splitAddrs(cfg.Email.To))
		slog.Info("contact notifications enabled", "to", cfg.Email.To)
	}

	// ── Services ─────────────────────────────────────────────────────────────
	return &Services{
		Blobs:   blobs,
		Project: projectsvc.NewService(projectRepo, blobs, eventBus, logger.With("service", "project")),
		Contact: contactsvc.NewService(pgcontact.New(pool), eventBus, notifier, logger.With("service", "contact")),
		Admin: adminsvc.NewService(
			pgadmin.New(pool),
			authadapter.NewBcryptHasher(bcrypt.DefaultCost),
			authadapter.NewJWTIssuer(cfg.Auth.JWTSecret, cfg.Auth.JWTTTL),
			locker,
			logger.With("service", "admin"),
		),
		Sweeper: sweeper.New(projectRepo, blobs, locker, cfg.Sweeper.Grace, logger.With("service", "sweeper")),
		Bus:     eventBus,
		Redis:   redisClient,
	}, nil
}

// Build is the composition root: the only place concrete types are wired to their
// interface dependencies.
func Build(ctx context.Context, cfg *config.Config) (*App, error) {
	// ── Database ─────────────────────────────────────────────────────────────
	pool, err := pgdb.Connect(ctx, cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	applied, err := pgdb.Migrate(ctx, pool)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}
	if len(applied) > 0 {
		slog.Info("migrations applied", "versions", applied)
	}

	svcs, err := BuildServices(ctx, cfg, pool, slog.Default())
	if err != nil {
		pool.Close()
		return nil, err
	}

	// ── Admin provisioning ───────────────────────────────────────────────────
	if cfg.Admin.Username != "" {
		res, err := svcs.Admin.Provision(ctx, cfg.Admin.Username, cfg.Admin.Password, false)
		if err != nil {
			svcs.Close()
			pool.Close()
			return nil, fmt.Errorf("provisioning admin: %w", err)
		}
		slog.Info("admin provisioned", "username", cfg.Admin.Username, "result", res)
	}

	// ── Transport ─────────────────────────────────────────────────────────────
	mcpServer := mcptransport.New(svcs.Project, cfg.Server.PublicBaseURL)
	router := transport.NewRouter(
		ctx,
		transport.Options{
			Debug:              cfg.Server.Debug,
			PublicBaseURL:      cfg.Server.PublicBaseURL,
			CORSAllowedOrigins: cfg.Server.CORSAllowedOrigins,
			TrustedProxies:     cfg.Server.TrustedProxies,
			ContactPerMinute:   cfg.Contact.RatePerMinute,
			ContactBurst:       cfg.Contact.RateBurst,
		},
		svcs.Project,
		svcs.Contact,
		svcs.Admin,
		svcs.Blobs,
		pool,
		mcpServer,
		svcs.Bus,
	)

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	slog.Info("application wired", "port", cfg.Server.Port, "environment", cfg.Server.Environment)

	app := &App{
		Pool:     pool,
		Server:   server,
		Services: svcs,
	}

	// ── Orphan-Blob Sweeper ───────────────────────────────────────────────────
	app.Cron, err = startSweeper(ctx, cfg.Sweeper.Schedule, svcs.Sweeper)
	if err != nil {
		svcs.Close()
		pool.Close()
		return nil, err
	}

	return app, nil
}

// Close drains pending notifications and releases what BuildServices opened.
// The pool is left to the caller.
func (s *Services) Close() {
	s.Contact.Wait()
	s.Bus.Close()
	if s.Redis != nil {
		s.Redis.Close() //nolint:errcheck
	}
}

// Close releases everything Build opened, after the HTTP server has stopped.
func (a *App) Close() {
	if a.Cron != nil {
		<-a.Cron.Stop().Done()
	}
	a.Services.Close()
	a.Pool.Close()
}

func splitAddrs(s string) []string {
	var out []string
	for _, a := range strings.Split(s, ",") {
		if a = strings.TrimSpace(a); a != "" {
			out = append(out, a)
		}
	}
	return out
}
