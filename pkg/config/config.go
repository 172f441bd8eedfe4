// Package config loads Palmietopia's server configuration from YAML:
// a tagged struct, env-var overrides applied after unmarshal, and a
// validate step that fails loudly on an unusable config rather than
// starting half-configured.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full configuration surface this server reads.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	WebSocket WebSocketConfig `yaml:"websocket"`
	Game      GameConfig      `yaml:"game"`
	Snapshot  SnapshotConfig  `yaml:"snapshot"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig names where the message endpoint is mounted.
type ServerConfig struct {
	BindAddress  string `yaml:"bind_address"`
	EndpointPath string `yaml:"endpoint_path"`
}

// WebSocketConfig tunes the socket transport: read/write deadlines,
// ping cadence, frame size cap.
type WebSocketConfig struct {
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	PingInterval   time.Duration `yaml:"ping_interval"`
	MaxMessageSize int64         `yaml:"max_message_size"`
}

// GameConfig holds lobby and game population bounds. validate checks
// them; lobbies take their seat cap from engine.MaxPlayersForSize, not
// from here.
type GameConfig struct {
	MinPlayersPerGame int `yaml:"min_players_per_game"`
	MaxPlayersPerGame int `yaml:"max_players_per_game"`
}

// SnapshotConfig controls the optional SQLite-backed GameState sink.
// It is disabled unless DBPath is non-empty — the core has no
// persistence requirement, so this is opt-in infrastructure only.
type SnapshotConfig struct {
	DBPath string `yaml:"db_path"`
}

// LoggingConfig holds logging settings for pkg/logger. cmd/server
// takes its log level and caller flag from command-line flags, not
// from this section.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	ShowCaller bool   `yaml:"show_caller"`
}

// Default returns the configuration the server falls back to when no
// config file is present.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			BindAddress:  "0.0.0.0:3001",
			EndpointPath: "/ws",
		},
		WebSocket: WebSocketConfig{
			ReadTimeout:    60 * time.Second,
			WriteTimeout:   10 * time.Second,
			PingInterval:   30 * time.Second,
			MaxMessageSize: 8192,
		},
		Game: GameConfig{
			MinPlayersPerGame: 2,
			MaxPlayersPerGame: 5,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads a YAML config file at path, applies environment overrides,
// validates the result, and returns it. A missing file is not itself
// special-cased here — callers that want Default() on a missing file
// should check errors.Is(err, fs.ErrNotExist) on the returned error
// (it is wrapped, so os.IsNotExist does not see through it).
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	cfg.applyEnvironmentOverrides()
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnvironmentOverrides() {
	if addr := os.Getenv("PALMIETOPIA_BIND_ADDRESS"); addr != "" {
		c.Server.BindAddress = addr
	}
	if path := os.Getenv("PALMIETOPIA_ENDPOINT_PATH"); path != "" {
		c.Server.EndpointPath = path
	}
	if db := os.Getenv("PALMIETOPIA_SNAPSHOT_DB"); db != "" {
		c.Snapshot.DBPath = db
	}
	if level := os.Getenv("PALMIETOPIA_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if maxP := os.Getenv("PALMIETOPIA_MAX_PLAYERS"); maxP != "" {
		if n, err := strconv.Atoi(maxP); err == nil {
			c.Game.MaxPlayersPerGame = n
		}
	}
}

func (c *Config) validate() error {
	if c.Server.BindAddress == "" {
		return fmt.Errorf("server.bind_address must not be empty")
	}
	if c.Server.EndpointPath == "" {
		return fmt.Errorf("server.endpoint_path must not be empty")
	}
	if c.Game.MinPlayersPerGame < 2 {
		return fmt.Errorf("game.min_players_per_game must be at least 2")
	}
	if c.Game.MaxPlayersPerGame > 5 {
		return fmt.Errorf("game.max_players_per_game must be at most 5")
	}
	if c.Game.MaxPlayersPerGame < c.Game.MinPlayersPerGame {
		return fmt.Errorf("max players (%d) must be >= min players (%d)",
			c.Game.MaxPlayersPerGame, c.Game.MinPlayersPerGame)
	}
	return nil
}
