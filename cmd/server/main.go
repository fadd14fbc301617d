package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"roster/internal/auth/guard"
	authhandler "roster/internal/auth/handler"
	"roster/internal/auth/lockout"
	authmetrics "roster/internal/auth/metrics"
	authservice "roster/internal/auth/service"
	lockoutstore "roster/internal/auth/store/lockout"
	"roster/internal/auth/store/revocation"
	"roster/internal/identity"
	identitystore "roster/internal/identity/store"
	jwttoken "roster/internal/jwt_token"
	"roster/internal/platform/config"
	"roster/internal/platform/httpserver"
	"roster/internal/platform/logger"
	platformmetrics "roster/internal/platform/metrics"
	"roster/internal/platform/postgres"
	"roster/internal/platform/redis"
	"roster/internal/roster/bootstrap"
	rosterhandler "roster/internal/roster/handler"
	rostermetrics "roster/internal/roster/metrics"
	rosterservice "roster/internal/roster/service"
	"roster/internal/roster/store/affiliate"
	"roster/internal/roster/store/index"
	"roster/internal/roster/store/place"
	"roster/internal/roster/store/profile"
	"roster/internal/roster/store/role"
	httptransport "roster/internal/transport/http"
	"roster/pkg/platform/audit"
	"roster/pkg/platform/audit/publishers/compliance"
	auditmemory "roster/pkg/platform/audit/store/memory"
	auditpostgres "roster/pkg/platform/audit/store/postgres"
	"roster/pkg/platform/middleware/auth"
)

// stores groups the persistence implementations selected by configuration.
type stores struct {
	profiles interface {
		rosterservice.ProfileStore
		bootstrap.ProfileStore
	}
	affiliates rosterservice.AffiliateStore
	roles      interface {
		rosterservice.RoleStore
		bootstrap.RoleStore
	}
	places interface {
		rosterservice.PlaceStore
		bootstrap.PlaceStore
	}
	identities identity.Store
	audit      audit.Store
}

// main wires dependencies, exposes the HTTP router, and keeps the server
// lifecycle small. Business logic lives in internal service packages.
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	if cfg.UsesDevSigningKey() {
		log.Warn("JWT_SIGNING_KEY not set, using the development key")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	health := map[string]httptransport.HealthCheck{}

	var db *sql.DB
	if cfg.Database.URL != "" {
		var err error
		db, err = postgres.Open(ctx, postgres.Config{
			URL:             cfg.Database.URL,
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		})
		if err != nil {
			return err
		}
		defer db.Close()
		if cfg.Database.AutoMigrate {
			if err := postgres.Migrate(ctx, db); err != nil {
				return err
			}
		}
		health["postgres"] = db.PingContext
		log.Info("using postgres stores")
	} else {
		log.Info("DATABASE_URL not set, using in-memory stores")
	}
	st := newStores(db)

	var (
		trl interface {
			authservice.RevocationList
			auth.TokenRevocationChecker
		}
		lockouts lockout.Store
	)
	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		trl = revocation.NewRedisTRL(redisClient.Client)
		lockouts = lockoutstore.NewRedis(redisClient.Client)
		health["redis"] = redisClient.Health
		log.Info("using redis for token revocation and sign-in lockout")
	} else {
		trl = revocation.NewInMemoryTRL()
		lockouts = lockoutstore.NewInMemory()
		log.Info("REDIS_URL not set, using in-memory token revocation and sign-in lockout")
	}

	provider := identity.NewProvider(st.identities, identity.WithLogger(log))
	publisher := compliance.New(st.audit, compliance.WithLogger(log))

	seeder := bootstrap.NewSeeder(st.places, st.profiles, st.roles, provider, log)
	if err := seeder.Places(ctx, cfg.Seed.Places); err != nil {
		return err
	}
	if err := seeder.Super(ctx, bootstrap.Super{Email: cfg.Seed.SuperEmail, Password: cfg.Seed.SuperPassword}); err != nil {
		return err
	}

	roster := rosterservice.New(st.profiles, st.affiliates, st.roles, st.places, provider,
		rosterservice.WithLogger(log),
		rosterservice.WithAuditPublisher(publisher),
		rosterservice.WithMetrics(rostermetrics.New()),
	)

	jwtService := jwttoken.NewJWTService(cfg.Auth.JWTSigningKey, cfg.Auth.JWTIssuer, cfg.Auth.TokenTTL)
	authSvc := authservice.New(provider, st.profiles, st.roles, jwtService, trl,
		authservice.WithLogger(log),
		authservice.WithAuditPublisher(publisher),
		authservice.WithMetrics(authmetrics.New()),
		authservice.WithLockout(lockout.New(lockouts,
			lockout.WithLogger(log),
			lockout.WithConfig(lockout.Config{
				MaxAttempts:  cfg.Auth.Lockout.MaxAttempts,
				Window:       cfg.Auth.Lockout.Window,
				LockDuration: cfg.Auth.Lockout.LockDuration,
			}),
		)),
	)

	router := httptransport.NewRouter(httptransport.Deps{
		Logger:      log,
		Observer:    platformmetrics.New(),
		Tokens:      jwttoken.NewJWTServiceAdapter(jwtService),
		Revocations: trl,
		Actors:      guard.ActorResolver(authSvc),
		Auth:        authhandler.New(authSvc, log),
		Roster:      rosterhandler.New(roster, log),
		Health:      health,
	})

	return httpserver.Run(ctx, httpserver.New(cfg.Addr, router), log)
}

func newStores(db *sql.DB) stores {
	if db == nil {
		x := index.New()
		return stores{
			profiles:   profile.NewInMemory(x),
			affiliates: affiliate.NewInMemory(x),
			roles:      role.NewInMemory(),
			places:     place.NewInMemory(),
			identities: identitystore.NewInMemory(),
			audit:      auditmemory.NewInMemoryStore(),
		}
	}
	return stores{
		profiles:   profile.NewPostgres(db),
		affiliates: affiliate.NewPostgres(db),
		roles:      role.NewPostgres(db),
		places:     place.NewPostgres(db),
		identities: identitystore.NewPostgres(db),
		audit:      auditpostgres.New(db),
	}
}
