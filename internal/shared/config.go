package shared

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// Presence statuses accepted by the [discord] status key.
var presenceStatuses = map[string]bool{
	"online":    true,
	"idle":      true,
	"dnd":       true,
	"invisible": true,
}

// Config represents the application configuration loaded from a TOML file.
//
// Secrets (bot token, Spotify credentials) may be supplied through the
// environment instead of the file; see [Config.ApplyEnv].
type Config struct {
	Discord     DiscordConfig     `toml:"discord"`
	Credentials CredentialsConfig `toml:"credentials"`
	Database    DatabaseConfig    `toml:"database"`
	Player      PlayerConfig      `toml:"player"`
}

// DiscordConfig contains gateway settings.
type DiscordConfig struct {
	Token   string `toml:"token"`
	GuildID string `toml:"guild_id"`
	Status  string `toml:"status"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify"`
}

// SpotifyConfig contains Spotify API credentials.
type SpotifyConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// PlayerConfig contains playback engine settings.
type PlayerConfig struct {
	// CacheMaxEntries bounds the track metadata cache. Zero means unbounded.
	CacheMaxEntries int `toml:"cache_max_entries"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingConfig, err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyEnv overlays secrets from the environment onto the config, loading a
// .env file first if one exists. Environment values win over file values so
// tokens never have to live in config.toml.
func (c *Config) ApplyEnv() {
	_ = godotenv.Load()

	if v := os.Getenv("DISCORD_TOKEN"); v != "" {
		c.Discord.Token = v
	}
	if v := os.Getenv("SPOTIFY_CLIENT_ID"); v != "" {
		c.Credentials.Spotify.ClientID = v
	}
	if v := os.Getenv("SPOTIFY_CLIENT_SECRET"); v != "" {
		c.Credentials.Spotify.ClientSecret = v
	}
}

// Validate checks the config for startup-blocking problems. An unknown
// presence status or missing token fails here rather than surfacing as a
// confusing gateway error later.
func (c *Config) Validate() error {
	if c.Discord.Token == "" {
		return fmt.Errorf("%w: discord token is required (config [discord] token or DISCORD_TOKEN)", ErrInvalidConfig)
	}
	if c.Discord.Status != "" && !presenceStatuses[c.Discord.Status] {
		return fmt.Errorf("%w: unknown presence status %q (want online, idle, dnd or invisible)", ErrInvalidConfig, c.Discord.Status)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("%w: database path is required", ErrInvalidConfig)
	}
	if c.Player.CacheMaxEntries < 0 {
		return fmt.Errorf("%w: cache_max_entries must not be negative", ErrInvalidConfig)
	}
	return nil
}
