package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	mongodrv "go.mongodb.org/mongo-driver/mongo"

	"github.com/switchserver/identity/internal/api"
	"github.com/switchserver/identity/internal/api/handler"
	"github.com/switchserver/identity/internal/core/auth"
	"github.com/switchserver/identity/internal/core/domain"
	"github.com/switchserver/identity/internal/core/ports"
	"github.com/switchserver/identity/internal/core/service"
	"github.com/switchserver/identity/internal/core/validation"
	"github.com/switchserver/identity/internal/infrastructure/config"
	"github.com/switchserver/identity/internal/infrastructure/db/memory"
	"github.com/switchserver/identity/internal/infrastructure/db/mongo"
	"github.com/switchserver/identity/internal/infrastructure/db/redis"
	"github.com/switchserver/identity/internal/infrastructure/queue"
	"github.com/switchserver/identity/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

// stores bundles the two role partitions and the audit sink for the selected driver.
type stores struct {
	passengers ports.UserRepository
	drivers    ports.UserRepository
	audit      ports.AuditRepository
	pingers    []handler.Pinger
	close      func(ctx context.Context)
}

func main() {
	// A missing .env is normal outside local development.
	envErr := godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		boot := logger.Init(logger.Options{Service: "identity"})
		boot.Fatal().Err(err).Msg("load config")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "identity",
	})
	if envErr != nil {
		log.Debug().Msg(".env not found, using process environment")
	}

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("open identity store")
	}
	defer st.close(context.Background())

	var opts []service.Option
	if cfg.Redis.Enabled {
		client, err := redis.Connect(ctx, redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("connect redis")
		}
		defer client.Close()
		opts = append(opts, service.WithRegistrationGuard(redis.NewRegistrationLock(client)))
		st.pingers = append(st.pingers, redis.NewPinger(client))
		log.Info().Str("addr", cfg.Redis.Addr).Msg("registration lock enabled")
	}

	dispatcher := queue.NewAuditDispatcher(cfg.AuditWorkers, st.audit, logger.Component("audit"))
	dispatcher.Start(ctx)
	opts = append(opts, service.WithAuditPublisher(dispatcher))

	tokens, err := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL.Duration())
	if err != nil {
		log.Fatal().Err(err).Msg("token manager")
	}

	users := service.NewUserService(
		st.passengers,
		st.drivers,
		validation.NewEngine(),
		auth.NewBcryptHasher(cfg.Auth.BcryptCost),
		tokens,
		logger.Component("users"),
		opts...,
	)

	e := api.NewRouter(api.Dependencies{
		Users:      users,
		Tokens:     tokens,
		AdminToken: cfg.AdminToken,
		Pingers:    st.pingers,
		Log:        logger.Component("http"),
	})

	go func() {
		log.Info().Str("port", cfg.Port).Str("store", cfg.StoreDriver).Msg("identity service listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	// Drain queued audit events before the stores go away.
	dispatcher.Close()
}

func openStores(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*stores, error) {
	if cfg.StoreDriver == config.StoreMemory {
		log.Warn().Msg("using in-memory identity store; data is lost on restart")
		return &stores{
			passengers: memory.NewUserStore(domain.RolePassenger),
			drivers:    memory.NewUserStore(domain.RoleDriver),
			audit:      memory.NewAuditLog(logger.Component("audit")),
			close:      func(context.Context) {},
		}, nil
	}

	client, db, err := mongo.Connect(ctx, mongo.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		Timeout:  cfg.Mongo.Timeout,
	})
	if err != nil {
		return nil, err
	}

	passengers := mongo.NewPassengerRepository(db)
	drivers := mongo.NewDriverRepository(db)
	for _, repo := range []*mongo.UserRepository{passengers, drivers} {
		if err := repo.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
	}
	log.Info().Str("database", cfg.Mongo.Database).Msg("connected to mongodb")

	return &stores{
		passengers: passengers,
		drivers:    drivers,
		audit:      mongo.NewAuditRepository(db),
		pingers:    []handler.Pinger{mongo.NewPinger(db)},
		close:      disconnect(client, log),
	}, nil
}

func disconnect(client *mongodrv.Client, log zerolog.Logger) func(ctx context.Context) {
	return func(ctx context.Context) {
		if err := client.Disconnect(ctx); err != nil {
			log.Error().Err(err).Msg("mongo disconnect")
		}
	}
}
