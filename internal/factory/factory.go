package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/mcoot/mafiagame-go/internal/dependencies/clock"
	"github.com/mcoot/mafiagame-go/internal/dependencies/random"
	"github.com/mcoot/mafiagame-go/internal/services/auth"
	"github.com/mcoot/mafiagame-go/internal/services/game"
	"github.com/mcoot/mafiagame-go/internal/services/rewards"
	"github.com/mcoot/mafiagame-go/internal/services/room"
	"github.com/mcoot/mafiagame-go/internal/services/shop"
	"github.com/mcoot/mafiagame-go/internal/storage"
	"github.com/mcoot/mafiagame-go/internal/storage/memory"
	redisstorage "github.com/mcoot/mafiagame-go/internal/storage/redis"
	"github.com/mcoot/mafiagame-go/internal/ws"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Store

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Connection fan-out
	Hub *ws.Hub

	// Services
	Registry       *room.Registry
	AuthService    *auth.Service
	RoomController *room.Controller
	GameController *game.Controller
	RewardsService *rewards.Service
	ShopService    *shop.Service
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// AuthConfig holds configuration for the auth service (optional)
	// If zero value, defaults to auth.DefaultConfig()
	AuthConfig auth.Config
	// GameConfig holds phase timings (optional, zero fields get defaults)
	GameConfig game.Config
	// RewardsConfig holds the reward schedule (optional)
	RewardsConfig rewards.Config
	// ShopConfig holds the cosmetic catalog (optional)
	ShopConfig shop.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create storage based on type
	var store storage.Store
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	return newWithDependencies(store, clock.New(), random.New(), cfg, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Store, clk clock.Clock, rnd random.Random, cfg Config, logger *slog.Logger) *App {
	// auth.New defaults the other zero fields; the wallet grant is the one
	// it cannot distinguish from "configured to zero"
	authCfg := cfg.AuthConfig
	if authCfg.InitialWallet == 0 {
		authCfg.InitialWallet = auth.DefaultConfig().InitialWallet
	}

	hub := ws.NewHub(logger)
	registry := room.NewRegistry()

	authService := auth.New(store, clk, authCfg)
	rewardsService := rewards.New(cfg.RewardsConfig)
	shopService := shop.New(store, clk, cfg.ShopConfig)
	roomController := room.NewController(registry, store, hub, clk, rnd, logger)
	gameController := game.NewController(registry, store, rewardsService, hub, clk, rnd, cfg.GameConfig, logger)

	return &App{
		Storage:        store,
		Clock:          clk,
		Random:         rnd,
		Hub:            hub,
		Registry:       registry,
		AuthService:    authService,
		RoomController: roomController,
		GameController: gameController,
		RewardsService: rewardsService,
		ShopService:    shopService,
	}
}
