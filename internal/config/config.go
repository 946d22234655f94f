package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type AppCfg struct {
	Env          string        `yaml:"env"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
	JWT          struct {
		Secret           string `yaml:"secret"`
		AccessTTLMinutes int    `yaml:"accessTTLMinutes"`
		RefreshTTLDays   int    `yaml:"refreshTTLDays"`
	} `yaml:"jwt"`
}

type MongoCfg struct {
	URI             string `yaml:"uri"`
	Database        string `yaml:"database"`
	UserCollection  string `yaml:"userCollection"`
	TokenCollection string `yaml:"tokenCollection"`
}

type RedisCfg struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type TwilioCfg struct {
	AccountSID string `yaml:"accountSID"`
	AuthToken  string `yaml:"authToken"`
	From       string `yaml:"from"`
}

type BucketCfg struct {
	BaseURL                 string `yaml:"baseURL"`
	TimeoutSeconds          int    `yaml:"timeoutSeconds"`
	RetryMaxElapsedSeconds  int    `yaml:"retryMaxElapsedSeconds"`
}

type SecurityCfg struct {
	OtpTTLMinutes                int `yaml:"otpTTLMinutes"`
	OtpRateLimitPerMobilePerHour int `yaml:"otpRateLimitPerMobilePerHour"`
	PasswordHashCost             int `yaml:"passwordHashCost"`
}

type Config struct {
	App      AppCfg      `yaml:"app"`
	Mongo    MongoCfg    `yaml:"mongo"`
	Redis    RedisCfg    `yaml:"redis"`
	Twilio   TwilioCfg   `yaml:"twilio"`
	Bucket   BucketCfg   `yaml:"bucket"`
	Security SecurityCfg `yaml:"security"`
}

// Load reads the yaml file, applies .env and process environment overrides,
// and fills defaults.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config yaml: %w", err)
	}

	override := func(env string, apply func(string)) {
		if v := os.Getenv(env); v != "" {
			apply(v)
		}
	}
	overrideInt := func(env string, apply func(int)) {
		if v := os.Getenv(env); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				apply(n)
			}
		}
	}

	override("APP_ENV", func(v string) { cfg.App.Env = v })
	overrideInt("APP_PORT", func(n int) { cfg.App.Port = n })
	override("JWT_SECRET", func(v string) { cfg.App.JWT.Secret = v })
	overrideInt("JWT_ACCESS_TTL_MINUTES", func(n int) { cfg.App.JWT.AccessTTLMinutes = n })
	overrideInt("JWT_REFRESH_TTL_DAYS", func(n int) { cfg.App.JWT.RefreshTTLDays = n })
	override("MONGO_URI", func(v string) { cfg.Mongo.URI = v })
	override("MONGO_DB", func(v string) { cfg.Mongo.Database = v })
	override("REDIS_ADDR", func(v string) { cfg.Redis.Addr = v })
	override("REDIS_PASSWORD", func(v string) { cfg.Redis.Password = v })
	override("TWILIO_ACCOUNT_SID", func(v string) { cfg.Twilio.AccountSID = v })
	override("TWILIO_AUTH_TOKEN", func(v string) { cfg.Twilio.AuthToken = v })
	override("TWILIO_FROM", func(v string) { cfg.Twilio.From = v })
	override("BUCKET_SERVICE_URL", func(v string) { cfg.Bucket.BaseURL = v })
	overrideInt("OTP_TTL_MINUTES", func(n int) { cfg.Security.OtpTTLMinutes = n })
	overrideInt("OTP_RATE_LIMIT_PER_MOBILE_PER_HOUR", func(n int) { cfg.Security.OtpRateLimitPerMobilePerHour = n })
	overrideInt("PASSWORD_HASH_COST", func(n int) { cfg.Security.PasswordHashCost = n })

	applyDefaults(cfg)

	if cfg.App.JWT.Secret == "" {
		return nil, errors.New("JWT_SECRET is required (set in .env or config.yaml)")
	}
	if cfg.Mongo.URI == "" {
		return nil, errors.New("MONGO_URI is required")
	}
	if cfg.Bucket.BaseURL == "" {
		return nil, errors.New("BUCKET_SERVICE_URL is required")
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.App.Port == 0 {
		cfg.App.Port = 8080
	}
	if cfg.App.ReadTimeout == 0 {
		cfg.App.ReadTimeout = 15 * time.Second
	}
	if cfg.App.WriteTimeout == 0 {
		cfg.App.WriteTimeout = 15 * time.Second
	}
	if cfg.App.IdleTimeout == 0 {
		cfg.App.IdleTimeout = 60 * time.Second
	}
	if cfg.App.JWT.AccessTTLMinutes == 0 {
		cfg.App.JWT.AccessTTLMinutes = 30
	}
	if cfg.App.JWT.RefreshTTLDays == 0 {
		cfg.App.JWT.RefreshTTLDays = 30
	}
	if cfg.Mongo.UserCollection == "" {
		cfg.Mongo.UserCollection = "users"
	}
	if cfg.Mongo.TokenCollection == "" {
		cfg.Mongo.TokenCollection = "tokens"
	}
	if cfg.Bucket.TimeoutSeconds == 0 {
		cfg.Bucket.TimeoutSeconds = 10
	}
	if cfg.Bucket.RetryMaxElapsedSeconds == 0 {
		cfg.Bucket.RetryMaxElapsedSeconds = 30
	}
	if cfg.Security.OtpTTLMinutes == 0 {
		cfg.Security.OtpTTLMinutes = 10
	}
	if cfg.Security.OtpRateLimitPerMobilePerHour == 0 {
		cfg.Security.OtpRateLimitPerMobilePerHour = 5
	}
	if cfg.Security.PasswordHashCost == 0 {
		cfg.Security.PasswordHashCost = 8
	}
}
