package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Bot      BotConfig      `mapstructure:"bot"`
	Render   RenderConfig   `mapstructure:"render"`
	Server   ServerConfig   `mapstructure:"server"`
	Gateway  GatewayConfig  `mapstructure:"gateway"`
	Database DatabaseConfig `mapstructure:"database"`
	Storage  StorageConfig  `mapstructure:"storage"`
}

// BotConfig controls who gets replies and where backgrounds come from.
type BotConfig struct {
	AllowedContacts []string `mapstructure:"allowed_contacts"`
	ImagesDir       string   `mapstructure:"images_dir"`
	// ImagesSource is "dir" (ImagesDir) or "storage" (bucket objects under ImagesPrefix).
	ImagesSource string `mapstructure:"images_source"`
	ImagesPrefix string `mapstructure:"images_prefix"`
	// RandomSeed fixes background selection when non-zero.
	RandomSeed uint64 `mapstructure:"random_seed"`
}

type RenderConfig struct {
	FontPath    string  `mapstructure:"font_path"`
	FontSize    float64 `mapstructure:"font_size"`
	Width       int     `mapstructure:"width"`
	Margin      int     `mapstructure:"margin"`
	JPEGQuality int     `mapstructure:"jpeg_quality"`
	Shade       float64 `mapstructure:"shade"`
}

type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"` // sqlite or postgres
	Path            string        `mapstructure:"path"`
	URL             string        `mapstructure:"url"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// DSN returns the connection string for the configured driver.
func (c *DatabaseConfig) DSN() string {
	if c.Driver == "postgres" {
		return c.URL
	}
	return c.Path
}

type StorageConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Type      string `mapstructure:"type"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
}

// Validate checks the settings the bot cannot start without.
func (c *Config) Validate() error {
	switch c.Bot.ImagesSource {
	case "dir":
		if c.Bot.ImagesDir == "" {
			return errors.New("bot.images_dir is required when bot.images_source is dir")
		}
	case "storage":
		if !c.Storage.Enabled {
			return errors.New("storage.enabled must be true when bot.images_source is storage")
		}
		if c.Storage.Bucket == "" {
			return errors.New("storage.bucket is required when bot.images_source is storage")
		}
	default:
		return fmt.Errorf("unknown bot.images_source %q", c.Bot.ImagesSource)
	}

	if c.Database.Driver == "postgres" && c.Database.URL == "" {
		return errors.New("database.url is required for the postgres driver")
	}
	return nil
}

const allowedContactsEnv = "BOT_ALLOWED_CONTACTS"

func Load(configPath string) (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	// Enable environment variable override
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Bind environment variables explicitly for sensitive data
	v.BindEnv("gateway.api_key", "GATEWAY_API_KEY")
	v.BindEnv("gateway.base_url", "GATEWAY_BASE_URL")
	v.BindEnv("storage.access_key", "S3_ACCESS_KEY")
	v.BindEnv("storage.secret_key", "S3_SECRET_KEY")
	v.BindEnv("storage.endpoint", "S3_ENDPOINT")
	v.BindEnv("database.url", "DATABASE_URL")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Only the env override is a comma separated string; YAML list items are
	// display names and may contain commas themselves.
	if os.Getenv(allowedContactsEnv) != "" {
		cfg.Bot.AllowedContacts = splitList(cfg.Bot.AllowedContacts)
	}
	cfg.Gateway.ResolveEnvVars()

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("bot.allowed_contacts", []string{})
	v.SetDefault("bot.images_source", "dir")
	v.SetDefault("bot.images_dir", "./assets/peoples-images")
	v.SetDefault("bot.images_prefix", "backgrounds/")
	v.SetDefault("bot.random_seed", 0)
	v.SetDefault("render.font_path", "")
	v.SetDefault("render.font_size", 32)
	v.SetDefault("render.width", 500)
	v.SetDefault("render.margin", 20)
	v.SetDefault("render.jpeg_quality", 50)
	v.SetDefault("render.shade", 0.10)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("gateway.base_url", "http://localhost:3000")
	v.SetDefault("gateway.timeout", 30*time.Second)
	v.SetDefault("gateway.retry_count", 2)
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "./data/sentencebot.db")
	v.SetDefault("database.max_idle_conns", 2)
	v.SetDefault("database.max_open_conns", 4)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("storage.enabled", false)
	v.SetDefault("storage.use_ssl", true)
	v.SetDefault("storage.bucket", "sentencebot")
}

func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
