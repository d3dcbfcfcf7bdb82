package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/mcoot/mafiagame-go/internal/api"
	"github.com/mcoot/mafiagame-go/internal/factory"
	"github.com/mcoot/mafiagame-go/internal/services/auth"
	"github.com/mcoot/mafiagame-go/internal/services/game"
	redisstorage "github.com/mcoot/mafiagame-go/internal/storage/redis"
)

type serverOptions struct {
	bind          string
	port          int
	storage       string
	redisURL      string
	nightDuration time.Duration
	dayDuration   time.Duration
	admins        []string
	logLevel      string
}

func newServerCmd() *cobra.Command {
	opts := &serverOptions{}

	v := viper.New()
	v.SetEnvPrefix("MAFIA")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "mafia-server",
		Short:         "Real-time mafia game server",
		Args:          cobra.ExactArgs(0),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(opts)
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&opts.bind, "bind", "b", "", "address to bind to (env: MAFIA_BIND)")
	fs.IntVarP(&opts.port, "port", "p", 8080, "port to listen on (env: MAFIA_PORT)")
	fs.StringVar(&opts.storage, "storage", factory.StorageTypeMemory, "storage backend: memory, redis (env: MAFIA_STORAGE)")
	fs.StringVar(&opts.redisURL, "redis-url", "", "redis connection URL, required with --storage=redis (env: MAFIA_REDIS_URL)")
	fs.DurationVar(&opts.nightDuration, "night-duration", game.DefaultConfig().NightDuration, "night phase length (env: MAFIA_NIGHT_DURATION)")
	fs.DurationVar(&opts.dayDuration, "day-duration", game.DefaultConfig().DayDuration, "day phase length (env: MAFIA_DAY_DURATION)")
	fs.StringSliceVar(&opts.admins, "admin", nil, "handle to grant admin rights, repeatable (env: MAFIA_ADMIN)")
	fs.StringVar(&opts.logLevel, "log-level", "info", "log level: debug, info, warn, error (env: MAFIA_LOG_LEVEL)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	return cmd
}

func run(opts *serverOptions) error {
	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(opts.logLevel),
	}))
	slog.SetDefault(logger)

	// Build factory config
	cfg := factory.Config{
		Logger:      logger,
		StorageType: opts.storage,
		AuthConfig:  auth.Config{AdminHandles: opts.admins},
		GameConfig: game.Config{
			NightDuration: opts.nightDuration,
			DayDuration:   opts.dayDuration,
		},
	}

	// Configure Redis if storage type is redis
	if cfg.StorageType == factory.StorageTypeRedis {
		if opts.redisURL == "" {
			return fmt.Errorf("--redis-url required with --storage=redis")
		}
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = opts.redisURL
		cfg.RedisConfig = &redisCfg
	}

	// Create application factory
	app, err := factory.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}

	// Create router
	router := api.NewRouter(api.RouterConfig{
		Logger:         logger,
		AuthService:    app.AuthService,
		RoomController: app.RoomController,
		GameController: app.GameController,
		ShopService:    app.ShopService,
		Hub:            app.Hub,
	})

	// Create server
	serverConfig := api.DefaultServerConfig()
	serverConfig.Host = opts.bind
	serverConfig.Port = opts.port
	server := api.NewServer(router, serverConfig, logger)

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started", slog.String("addr", server.Addr()))

	// Wait for shutdown or error
	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		// Stop phase timers before dropping connections
		app.GameController.StopAll()
		if err := server.Shutdown(context.Background()); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
	}

	logger.Info("server stopped")
	return nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func main() {
	// A local .env feeds the MAFIA_* environment lookups
	_ = godotenv.Load()

	if err := newServerCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
