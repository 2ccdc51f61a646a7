package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/duelforge/duel-server-go/internal/config"
	"github.com/duelforge/duel-server-go/internal/game"
	"github.com/duelforge/duel-server-go/internal/imagery"
	"github.com/duelforge/duel-server-go/internal/repository"
	"github.com/duelforge/duel-server-go/internal/server"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"google.golang.org/grpc"
	"google.golang.org/grpc/keepalive"
)

var (
	configPath = flag.String("config", "", "path to configuration file")
	version    = "dev" // set via ldflags during build
)

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := initLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting duel server",
		zap.String("version", version),
		zap.String("config", *configPath),
	)

	// Create context that listens for termination signals
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	engine, closeEngine, err := buildEngine(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize engine", zap.Error(err))
	}
	defer closeEngine()

	var grpcServer *grpc.Server
	if cfg.Server.GRPC.Address != "" {
		grpcServer = grpc.NewServer(
			grpc.UnaryInterceptor(server.ChainUnaryInterceptors(
				server.RecoveryInterceptor(logger),
				server.LoggingInterceptor(logger),
			)),
			grpc.KeepaliveParams(keepalive.ServerParameters{
				Time:    30 * time.Second,
				Timeout: 10 * time.Second,
			}),
			grpc.MaxConcurrentStreams(uint32(cfg.Server.GRPC.MaxConcurrentStreams)),
		)
		server.RegisterDuelServer(grpcServer, server.NewDuelServer(engine, logger))

		lis, err := net.Listen("tcp", cfg.Server.GRPC.Address)
		if err != nil {
			logger.Fatal("failed to listen", zap.Error(err))
		}

		// Start gRPC server
		go func() {
			logger.Info("starting gRPC server", zap.String("address", cfg.Server.GRPC.Address))
			if serveErr := grpcServer.Serve(lis); serveErr != nil {
				logger.Error("gRPC server error", zap.Error(serveErr))
			}
		}()
	}

	// Start WebSocket server
	if cfg.Server.WebSocket.Address != "" {
		go func() {
			if wsErr := server.StartWebSocketServer(ctx, cfg.Server.WebSocket, engine, logger); wsErr != nil {
				logger.Error("WebSocket server error", zap.Error(wsErr))
			}
		}()
	}

	logger.Info("duel server initialized",
		zap.String("version", version),
		zap.String("grpc_address", cfg.Server.GRPC.Address),
		zap.String("websocket_address", cfg.Server.WebSocket.Address),
		zap.Bool("images", cfg.Images.Enabled),
		zap.Bool("database", cfg.Database.URL != ""),
	)

	// Wait for termination signal
	sig := <-sigChan
	logger.Info("received shutdown signal", zap.String("signal", sig.String()))

	// Graceful shutdown
	logger.Info("shutting down gracefully...")
	cancel()

	if grpcServer != nil {
		grpcServer.GracefulStop()
	}

	logger.Info("duel server stopped", zap.Int("open_matches", engine.MatchCount()))
}

// buildEngine wires the engine and its optional collaborators. The returned
// function releases them.
func buildEngine(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*game.Engine, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	tables := game.DefaultCardTables()
	if cfg.TablesPath != "" {
		loaded, err := game.LoadCardTables(cfg.TablesPath)
		if err != nil {
			return nil, nil, err
		}
		tables = loaded
		logger.Info("card tables loaded", zap.String("path", cfg.TablesPath))
	}

	opts := []game.EngineOption{
		game.WithSettings(cfg.Rules),
		game.WithCardTables(tables),
		game.WithReplayRecorder(game.NewReplayRecorder(logger, cfg.Replays.Directory)),
	}

	if cfg.Database.URL != "" {
		db, err := repository.NewDB(ctx, cfg.Database, logger)
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, db.Close)
		if err := db.EnsureSchema(ctx); err != nil {
			cleanup()
			return nil, nil, err
		}

		// Log database stats
		stats := db.Stats()
		logger.Info("database connection pool initialized",
			zap.Int32("total_conns", stats.TotalConns()),
			zap.Int32("idle_conns", stats.IdleConns()),
		)
		opts = append(opts, game.WithResultRecorder(repository.NewPostgresResults(db)))
	} else {
		logger.Info("no database configured; results kept in memory")
		opts = append(opts, game.WithResultRecorder(repository.NewMemoryResults()))
	}

	if cfg.Images.Enabled {
		tags := cfg.Images.Tags
		if tags == "" {
			tags = tables.ImageTags
		}
		provider := imagery.NewDanbooruProvider(cfg.Images.BaseURL, cfg.Images.Timeout, logger)
		assigner := imagery.NewAssigner(provider, imagery.Options{
			Tags:        tags,
			Concurrency: cfg.Images.Concurrency,
			Timeout:     cfg.Images.Timeout,
		}, logger)
		closers = append(closers, assigner.Close)
		opts = append(opts, game.WithImageAssigner(assigner))
	}

	return game.NewEngine(logger, opts...), cleanup, nil
}

// initLogger builds the zap logger from the logging section. Unknown levels
// fall back to info.
func initLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
