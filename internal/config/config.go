package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/duelforge/duel-server-go/internal/game"
	"github.com/spf13/viper"
)

// Config is the full server configuration.
type Config struct {
	Server     ServerConfig   `mapstructure:"server"`
	Logging    LoggingConfig  `mapstructure:"logging"`
	Database   DatabaseConfig `mapstructure:"database"`
	Images     ImagesConfig   `mapstructure:"images"`
	Replays    ReplaysConfig  `mapstructure:"replays"`
	Rules      game.Settings  `mapstructure:"rules"`
	TablesPath string         `mapstructure:"tables_path"`
}

// ServerConfig groups the network listeners.
type ServerConfig struct {
	GRPC      GRPCConfig      `mapstructure:"grpc"`
	WebSocket WebSocketConfig `mapstructure:"websocket"`
}

// GRPCConfig configures the gRPC listener.
type GRPCConfig struct {
	Address              string `mapstructure:"address"`
	MaxConcurrentStreams int    `mapstructure:"max_concurrent_streams"`
}

// WebSocketConfig configures the browser-facing listener. Pacing is the
// delay between opponent event frames.
type WebSocketConfig struct {
	Address   string        `mapstructure:"address"`
	Path      string        `mapstructure:"path"`
	Pacing    time.Duration `mapstructure:"pacing"`
	ReadLimit int64         `mapstructure:"read_limit"`
}

// LoggingConfig selects the zap level and encoder.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DatabaseConfig configures the results store. An empty URL keeps results
// in memory.
type DatabaseConfig struct {
	URL            string        `mapstructure:"url"`
	MaxConns       int32         `mapstructure:"max_conns"`
	MinConns       int32         `mapstructure:"min_conns"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

// ImagesConfig configures cosmetic card images.
type ImagesConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	BaseURL     string        `mapstructure:"base_url"`
	Tags        string        `mapstructure:"tags"`
	Concurrency int64         `mapstructure:"concurrency"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// ReplaysConfig configures replay persistence. An empty directory keeps
// replays in memory.
type ReplaysConfig struct {
	Directory string `mapstructure:"directory"`
}

// Load reads the YAML file at path (optional when empty), applies defaults
// and DUEL_* environment overrides, and validates the rules section.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("DUEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the values the server cannot start without.
func (c *Config) Validate() error {
	if err := c.Rules.Validate(); err != nil {
		return fmt.Errorf("invalid rules: %w", err)
	}
	if c.Server.GRPC.Address == "" && c.Server.WebSocket.Address == "" {
		return fmt.Errorf("at least one of server.grpc.address and server.websocket.address is required")
	}
	if c.Images.Enabled && c.Images.Concurrency <= 0 {
		return fmt.Errorf("images.concurrency must be positive, got %d", c.Images.Concurrency)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.grpc.address", ":50051")
	v.SetDefault("server.grpc.max_concurrent_streams", 100)
	v.SetDefault("server.websocket.address", ":8080")
	v.SetDefault("server.websocket.path", "/ws")
	v.SetDefault("server.websocket.pacing", "350ms")
	v.SetDefault("server.websocket.read_limit", 4096)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("database.url", "")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 1)
	v.SetDefault("database.connect_timeout", "5s")

	v.SetDefault("images.enabled", false)
	v.SetDefault("images.base_url", "https://danbooru.donmai.us")
	v.SetDefault("images.tags", game.DefaultCardTables().ImageTags)
	v.SetDefault("images.concurrency", 4)
	v.SetDefault("images.timeout", "8s")

	v.SetDefault("replays.directory", "")
	v.SetDefault("tables_path", "")

	rules := game.DefaultSettings()
	v.SetDefault("rules.start_hp", rules.StartHP)
	v.SetDefault("rules.start_hand", rules.StartHand)
	v.SetDefault("rules.max_field", rules.MaxField)
	v.SetDefault("rules.max_hand", rules.MaxHand)
	v.SetDefault("rules.deck_size", rules.DeckSize)
	v.SetDefault("rules.energy_cap", rules.EnergyCap)
	v.SetDefault("rules.face_divisor", rules.FaceDivisor)
	v.SetDefault("rules.creature_divisor", rules.CreatureDivisor)
	v.SetDefault("rules.fatigue_damage", rules.FatigueDamage)
	v.SetDefault("rules.opening_draw", rules.OpeningDraw)
}
