// internal/config/config.go
package config

import (
	"fmt"
	"time"

	"github.com/JulianC775/Gubs/internal/game"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. GUBS_PORT.
const EnvPrefix = "GUBS"

// Config is the server configuration. Empty RedisAddr or DatabaseURL disables that backend.
type Config struct {
	Port        int           `mapstructure:"port"`
	LogLevel    string        `mapstructure:"log_level"`
	LogFile     string        `mapstructure:"log_file"` // rotated copy of the log; empty logs to stderr only
	RedisAddr   string        `mapstructure:"redis_addr"`
	RedisDB     int           `mapstructure:"redis_db"`
	ActionQueue string        `mapstructure:"action_queue"`
	SnapshotTTL time.Duration `mapstructure:"snapshot_ttl"`
	DatabaseURL string        `mapstructure:"database_url"`
	PublicURL   string        `mapstructure:"public_url"`

	HistorianBatchSize  int           `mapstructure:"historian_batch_size"`
	HistorianFlush      time.Duration `mapstructure:"historian_flush"`
	HistorianInactivity time.Duration `mapstructure:"historian_inactivity"`

	MaxPlayers   int `mapstructure:"max_players"`
	HandLimit    int `mapstructure:"hand_limit"`
	StartingHand int `mapstructure:"starting_hand"`
}

func setDefaults(v *viper.Viper) {
	rules := game.DefaultHouseRules()
	v.SetDefault("port", 8080)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "")
	v.SetDefault("redis_addr", "")
	v.SetDefault("redis_db", 0)
	v.SetDefault("action_queue", "gubs_actions")
	v.SetDefault("snapshot_ttl", 24*time.Hour)
	v.SetDefault("database_url", "")
	v.SetDefault("public_url", "")
	v.SetDefault("historian_batch_size", 20)
	v.SetDefault("historian_flush", 500*time.Millisecond)
	v.SetDefault("historian_inactivity", 10*time.Minute)
	v.SetDefault("max_players", rules.MaxPlayers)
	v.SetDefault("hand_limit", rules.HandLimit)
	v.SetDefault("starting_hand", rules.StartingHand)
}

// Load reads defaults, then the optional config file, then GUBS_* environment variables.
func Load(filename string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if filename != "" {
		v.SetConfigFile(filename)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", filename, err)
		}
	}

	out := &Config{}
	if err := v.Unmarshal(out); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if _, err := out.HouseRules(); err != nil {
		return nil, err
	}
	return out, nil
}

// HouseRules returns the default rules for new games.
func (c *Config) HouseRules() (game.HouseRules, error) {
	rules := game.DefaultHouseRules()
	err := rules.Update(map[string]interface{}{
		"maxPlayers":   c.MaxPlayers,
		"handLimit":    c.HandLimit,
		"startingHand": c.StartingHand,
	})
	if err != nil {
		return game.HouseRules{}, fmt.Errorf("house rules: %w", err)
	}
	return rules, nil
}

// Addr is the listen address for Port.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
