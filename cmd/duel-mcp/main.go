package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/duelforge/duel-server-go/internal/config"
	"github.com/duelforge/duel-server-go/internal/game"
	duelmcp "github.com/duelforge/duel-server-go/internal/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	tables := game.DefaultCardTables()
	if cfg.TablesPath != "" {
		if tables, err = game.LoadCardTables(cfg.TablesPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load card tables: %v\n", err)
			os.Exit(1)
		}
	}

	// stdout carries the MCP protocol, so logs go to stderr
	zapCfg := zap.NewDevelopmentConfig()
	zapCfg.OutputPaths = []string{"stderr"}
	logger, err := zapCfg.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	engine := game.NewEngine(logger,
		game.WithSettings(cfg.Rules),
		game.WithCardTables(tables),
		game.WithReplayRecorder(game.NewReplayRecorder(logger, cfg.Replays.Directory)),
	)

	s := server.NewMCPServer("duel", "1.0.0", server.WithToolCapabilities(false))
	duelmcp.NewTools(engine, logger).RegisterTools(s)

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
