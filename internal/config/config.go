package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type BotConfig struct {
	Token    string  `yaml:"token"`
	Workers  int     `yaml:"workers"` // polling workers
	AdminIDs []int64 `yaml:"admin_ids"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	StateTTL time.Duration `yaml:"state_ttl"` // admin conversation state lifetime
}

type UnisenderConfig struct {
	APIKey  string        `yaml:"api_key"`
	BaseURL string        `yaml:"base_url"`
	Lang    string        `yaml:"lang"` // ru|en
	ListID  string        `yaml:"list_id"`
	Timeout time.Duration `yaml:"timeout"`
}

type GiveawayConfig struct {
	CinemaLimit   int    `yaml:"cinema_limit"`   // default scarce quota; DB setting overrides
	GuideLink     string `yaml:"guide_link"`     // unlimited reward link
	FallbackPromo string `yaml:"fallback_promo"` // reusable code, optional
}

type WebConfig struct {
	Port      int           `yaml:"port"`
	AuthToken string        `yaml:"auth_token"` // shared secret exchanged for a session JWT
	JWTSecret string        `yaml:"jwt_secret"`
	JWTTTL    time.Duration `yaml:"jwt_ttl"`
}

type Config struct {
	Bot       BotConfig       `yaml:"bot"`
	Log       LogConfig       `yaml:"log"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Unisender UnisenderConfig `yaml:"unisender"`
	Giveaway  GiveawayConfig  `yaml:"giveaway"`
	Web       WebConfig       `yaml:"web"`

	Runtime RuntimeConfig `yaml:"-"`
}

// LoadConfig reads the YAML config file, applies defaults, overrides secrets
// from the environment, and validates the minimum required fields.
func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// Environment overrides for secrets so they can stay out of the file.
	if v := os.Getenv("BOT_TOKEN"); v != "" {
		cfg.Bot.Token = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("UNISENDER_API_KEY"); v != "" {
		cfg.Unisender.APIKey = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}

	// defaults
	if cfg.Bot.Workers <= 0 {
		cfg.Bot.Workers = 8
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Redis.StateTTL <= 0 {
		cfg.Redis.StateTTL = 15 * time.Minute
	}
	if cfg.Unisender.BaseURL == "" {
		cfg.Unisender.BaseURL = "https://api.unisender.com"
	}
	if cfg.Unisender.Lang == "" {
		cfg.Unisender.Lang = "ru"
	}
	if cfg.Unisender.Timeout <= 0 {
		cfg.Unisender.Timeout = 15 * time.Second
	}
	if cfg.Giveaway.CinemaLimit <= 0 {
		cfg.Giveaway.CinemaLimit = 40
	}
	if cfg.Web.Port == 0 {
		cfg.Web.Port = 8081
	}
	if cfg.Web.JWTTTL <= 0 {
		cfg.Web.JWTTTL = 30 * time.Minute
	}

	// Minimal validation
	if cfg.Bot.Token == "" {
		return nil, errors.New("bot.token is required")
	}
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Redis.Addr == "" {
		return nil, errors.New("redis.addr is required")
	}
	if cfg.Unisender.APIKey == "" {
		return nil, errors.New("unisender.api_key is required")
	}
	if cfg.Unisender.ListID == "" {
		return nil, errors.New("unisender.list_id is required")
	}
	if cfg.Giveaway.GuideLink == "" {
		return nil, errors.New("giveaway.guide_link is required")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}
