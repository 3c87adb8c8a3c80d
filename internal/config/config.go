package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

var ErrInvalid = errors.New("invalid config")

type WSConfig struct {
	Path         string        `mapstructure:"path"`
	ReadLimit    int64         `mapstructure:"read_limit"`
	PingPeriod   time.Duration `mapstructure:"ping_period"`
	PongWait     time.Duration `mapstructure:"pong_wait"`
	WriteWait    time.Duration `mapstructure:"write_wait"`
	SendBuffer   int           `mapstructure:"send_buffer"`
	Backpressure string        `mapstructure:"backpressure"`
}

type AuthConfig struct {
	Secret string `mapstructure:"secret"`
	Issuer string `mapstructure:"issuer"`
}

type MetadataConfig struct {
	Source  string        `mapstructure:"source"`
	BaseURL string        `mapstructure:"base_url"`
	Token   string        `mapstructure:"token"`
	Timeout time.Duration `mapstructure:"timeout"`
	File    string        `mapstructure:"file"`
}

type RoomConfig struct {
	SpawnX int `mapstructure:"spawn_x"`
	SpawnY int `mapstructure:"spawn_y"`
}

type LimitsConfig struct {
	MovePerSecond int `mapstructure:"move_per_second"`
}

type AdminConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

type Config struct {
	Mode     string         `mapstructure:"mode"`
	Port     int            `mapstructure:"port"`
	LogLevel string         `mapstructure:"log_level"`
	WS       WSConfig       `mapstructure:"ws"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Metadata MetadataConfig `mapstructure:"metadata"`
	Room     RoomConfig     `mapstructure:"room"`
	Limits   LimitsConfig   `mapstructure:"limits"`
	Admin    AdminConfig    `mapstructure:"admin"`
}

// Load reads config/config.<CONFIG_ENV>.yaml (dev by default).
func Load() (*Config, error) {
	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	return LoadFile(fmt.Sprintf("config/config.%s.yaml", env))
}

// LoadFile reads fileName over the defaults. A missing file is not an
// error. ARENA_* variables override both, e.g. ARENA_WS_PATH.
func LoadFile(fileName string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile(fileName)

	v.SetEnvPrefix("arena")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		log.Warn().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("loaded config")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log.Info().Str("module", "config").Str("mode", cfg.Mode).Int("port", cfg.Port).
		Str("ws_path", cfg.WS.Path).Str("metadata", cfg.Metadata.Source).Msg("config ready")
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("log_level", "info")

	v.SetDefault("ws.path", "/")
	v.SetDefault("ws.read_limit", 32768)
	v.SetDefault("ws.ping_period", "54s")
	v.SetDefault("ws.pong_wait", "60s")
	v.SetDefault("ws.write_wait", "10s")
	v.SetDefault("ws.send_buffer", 64)
	v.SetDefault("ws.backpressure", "kick")

	v.SetDefault("auth.secret", "")
	v.SetDefault("auth.issuer", "")

	v.SetDefault("metadata.source", "http")
	v.SetDefault("metadata.base_url", "http://localhost:3000/api/v1")
	v.SetDefault("metadata.token", "")
	v.SetDefault("metadata.timeout", "5s")
	v.SetDefault("metadata.file", "config/spaces.yaml")

	v.SetDefault("room.spawn_x", 0)
	v.SetDefault("room.spawn_y", 0)

	v.SetDefault("limits.move_per_second", 20)

	v.SetDefault("admin.enabled", false)
}

func (c *Config) Validate() error {
	switch {
	case c.Port <= 0 || c.Port > 65535:
		return fmt.Errorf("%w: port %d", ErrInvalid, c.Port)
	case !strings.HasPrefix(c.WS.Path, "/"):
		return fmt.Errorf("%w: ws.path %q must start with /", ErrInvalid, c.WS.Path)
	case c.WS.SendBuffer <= 0:
		return fmt.Errorf("%w: ws.send_buffer must be positive", ErrInvalid)
	case c.WS.PingPeriod <= 0 || c.WS.PingPeriod >= c.WS.PongWait:
		return fmt.Errorf("%w: ws.ping_period must be below ws.pong_wait", ErrInvalid)
	case c.Limits.MovePerSecond < 0:
		return fmt.Errorf("%w: limits.move_per_second is negative", ErrInvalid)
	}
	switch c.Metadata.Source {
	case "http":
		if c.Metadata.BaseURL == "" {
			return fmt.Errorf("%w: metadata.base_url is empty", ErrInvalid)
		}
	case "file":
		if c.Metadata.File == "" {
			return fmt.Errorf("%w: metadata.file is empty", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: metadata.source %q", ErrInvalid, c.Metadata.Source)
	}
	return nil
}
