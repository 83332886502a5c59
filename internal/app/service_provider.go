package app

import (
	"context"
	adminAPI "crash_backend/internal/api/admin"
	authAPI "crash_backend/internal/api/auth"
	gameAPI "crash_backend/internal/api/game"
	"crash_backend/internal/bus"
	"crash_backend/internal/config"
	"crash_backend/internal/config/env"
	"crash_backend/internal/engine"
	"crash_backend/internal/middleware"
	"crash_backend/internal/repository"
	"crash_backend/internal/repository/auth_repo"
	"crash_backend/internal/repository/round_repo"
	"crash_backend/internal/repository/user_repo"
	"crash_backend/internal/service"
	"crash_backend/internal/service/auth"
	"crash_backend/internal/service/game"

	trmpgx "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/avito-tech/go-transaction-manager/trm/v2"
	"github.com/avito-tech/go-transaction-manager/trm/v2/manager"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ServiceProvider struct {
	// TXManager
	txManager trm.Manager

	// Database
	pgConfig config.PGConfig
	dbClient *pgxpool.Pool

	// Auth bits
	jwtConfig config.JWTConfig
	authRepo  repository.AuthRepository
	authServ  service.AuthService
	authHand  *authAPI.Handler

	// User bits
	userRepo repository.UserRepository

	// Engine bits
	engineCfg config.EngineConfig
	eventBus  *bus.Bus
	eng       *engine.Engine

	// Game bits
	roundRepo repository.RoundRepository
	gameServ  service.GameService
	gameHand  *gameAPI.Handler
	wsHub     *gameAPI.Hub

	// Admin bits
	adminConfig config.AdminConfig
	adminHand   *adminAPI.Handler

	// Router and HTTP config
	httpCfg config.HTTPConfig
	router  chi.Router
}

func newServiceProvider() *ServiceProvider {
	return &ServiceProvider{}
}

func (sp *ServiceProvider) PgConfig() config.PGConfig {
	if sp.pgConfig == nil {
		cfg, err := env.NewPGConfig()
		if err != nil {
			panic("failed to get database config: " + err.Error())
		}
		sp.pgConfig = cfg
	}
	return sp.pgConfig
}

func (sp *ServiceProvider) DBClient(ctx context.Context) *pgxpool.Pool {
	if sp.dbClient == nil {
		dbc, err := pgxpool.New(ctx, sp.PgConfig().DSN())
		if err != nil {
			panic("failed to create db pool: " + err.Error())
		}
		err = dbc.Ping(ctx)
		if err != nil {
			panic("failed to ping db: " + err.Error())
		}
		sp.dbClient = dbc
	}
	return sp.dbClient
}

func (sp *ServiceProvider) TXManager(ctx context.Context) trm.Manager {
	if sp.txManager == nil {
		m, err := manager.New(trmpgx.NewDefaultFactory(sp.DBClient(ctx)))
		if err != nil {
			panic("failed to create tx manager: " + err.Error())
		}
		sp.txManager = m
	}
	return sp.txManager
}

func (sp *ServiceProvider) JWTConfig() config.JWTConfig {
	if sp.jwtConfig == nil {
		cfg, err := env.NewJWTConfig()
		if err != nil {
			panic("failed to get jwt config: " + err.Error())
		}
		sp.jwtConfig = cfg
	}
	return sp.jwtConfig
}

func (sp *ServiceProvider) AdminConfig() config.AdminConfig {
	if sp.adminConfig == nil {
		cfg, err := env.NewAdminConfig()
		if err != nil {
			panic("failed to get admin config: " + err.Error())
		}
		sp.adminConfig = cfg
	}
	return sp.adminConfig
}

func (sp *ServiceProvider) EngineCfg() config.EngineConfig {
	if sp.engineCfg == nil {
		cfg, err := env.NewEngineConfigFromYAML("config.yaml")
		if err != nil {
			panic("failed to get engine config: " + err.Error())
		}
		sp.engineCfg = cfg
	}
	return sp.engineCfg
}

func (sp *ServiceProvider) EventBus() *bus.Bus {
	if sp.eventBus == nil {
		sp.eventBus = bus.New()
	}
	return sp.eventBus
}

func (sp *ServiceProvider) Engine() *engine.Engine {
	if sp.eng == nil {
		eng, err := engine.New(sp.EngineCfg(), sp.EventBus())
		if err != nil {
			panic("failed to create engine: " + err.Error())
		}
		sp.eng = eng
	}
	return sp.eng
}

func (sp *ServiceProvider) AuthRepo(ctx context.Context) repository.AuthRepository {
	if sp.authRepo == nil {
		sp.authRepo = auth_repo.NewAuthRepository(sp.DBClient(ctx))
	}
	return sp.authRepo
}

func (sp *ServiceProvider) UserRepo(ctx context.Context) repository.UserRepository {
	if sp.userRepo == nil {
		sp.userRepo = user_repo.NewUserRepository(sp.DBClient(ctx))
	}
	return sp.userRepo
}

func (sp *ServiceProvider) RoundRepo(ctx context.Context) repository.RoundRepository {
	if sp.roundRepo == nil {
		sp.roundRepo = round_repo.NewRoundRepository(sp.DBClient(ctx))
	}
	return sp.roundRepo
}

func (sp *ServiceProvider) AuthService(ctx context.Context) service.AuthService {
	if sp.authServ == nil {
		sp.authServ = auth.NewAuthService(
			sp.UserRepo(ctx),
			sp.AuthRepo(ctx),
			sp.TXManager(ctx),
			sp.JWTConfig(),
		)
	}
	return sp.authServ
}

func (sp *ServiceProvider) GameService(ctx context.Context) service.GameService {
	if sp.gameServ == nil {
		sp.gameServ = game.NewGameService(
			sp.Engine(),
			sp.EventBus(),
			sp.UserRepo(ctx),
			sp.RoundRepo(ctx),
			sp.TXManager(ctx),
		)
	}
	return sp.gameServ
}

func (sp *ServiceProvider) AuthHandler(ctx context.Context) *authAPI.Handler {
	if sp.authHand == nil {
		sp.authHand = authAPI.NewHandler(authAPI.HandlerDeps{
			Serv: sp.AuthService(ctx),
		})
	}
	return sp.authHand
}

func (sp *ServiceProvider) GameHandler(ctx context.Context) *gameAPI.Handler {
	if sp.gameHand == nil {
		sp.gameHand = gameAPI.NewHandler(gameAPI.HandlerDeps{
			Serv: sp.GameService(ctx),
		})
	}
	return sp.gameHand
}

func (sp *ServiceProvider) WSHub(ctx context.Context) *gameAPI.Hub {
	if sp.wsHub == nil {
		sp.wsHub = gameAPI.NewHub(
			sp.EventBus(),
			sp.GameService(ctx),
			sp.JWTConfig().AccessTokenSecretKey(),
		)
	}
	return sp.wsHub
}

func (sp *ServiceProvider) AdminHandler(ctx context.Context) *adminAPI.Handler {
	if sp.adminHand == nil {
		sp.adminHand = adminAPI.NewHandler(adminAPI.HandlerDeps{
			Serv: sp.GameService(ctx),
		})
	}
	return sp.adminHand
}

func (sp *ServiceProvider) HTTPCfg() config.HTTPConfig {
	if sp.httpCfg == nil {
		cfg, err := env.NewHTTPConfig()
		if err != nil {
			panic("failed to get http config: " + err.Error())
		}
		sp.httpCfg = cfg
	}
	return sp.httpCfg
}

func (sp *ServiceProvider) Router(ctx context.Context) chi.Router {
	if sp.router == nil {
		r := chi.NewRouter()

		// CORS middleware
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"*"},
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Admin-Token"},
			ExposedHeaders:   []string{"Link"},
			AllowCredentials: false,
			MaxAge:           60 * 15,
		}))

		// Auth endpoints
		authHandler := sp.AuthHandler(ctx)
		r.Route("/auth", func(rr chi.Router) {
			rr.Post("/register", authHandler.Register)
			rr.Post("/login", authHandler.Login)
			rr.Post("/refresh", authHandler.Refresh)
			rr.Post("/logout", authHandler.Logout)
		})

		// Game endpoints
		gameHandler := sp.GameHandler(ctx)
		hub := sp.WSHub(ctx)
		r.Route("/game", func(rr chi.Router) {
			rr.Get("/state", gameHandler.State)
			rr.Get("/history", gameHandler.History)
			rr.Get("/stats", gameHandler.Stats)
			rr.Get("/ws", hub.Stream)

			rr.Group(func(priv chi.Router) {
				priv.Use(middleware.Auth(sp.JWTConfig().AccessTokenSecretKey()))
				priv.Post("/bet", gameHandler.Bet)
				priv.Post("/cashout", gameHandler.CashOut)
			})
		})

		// Admin endpoints
		adminHandler := sp.AdminHandler(ctx)
		r.Route("/admin", func(rr chi.Router) {
			rr.Use(middleware.AdminOnly(sp.AdminConfig().Token()))
			rr.Post("/crash", adminHandler.Crash)
		})

		sp.router = r
	}

	return sp.router
}
