package config

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleYAML = `
app:
  env: development
  port: 9000
  jwt:
    secret: yaml-secret
    accessTTLMinutes: 15
    refreshTTLDays: 7
mongo:
  uri: mongodb://localhost:27017
  database: identity
redis:
  addr: localhost:6379
bucket:
  baseURL: http://container:9100
security:
  otpTTLMinutes: 10
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleYAML))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.App.Port != 9000 {
		t.Fatalf("unexpected port %d", cfg.App.Port)
	}
	if cfg.App.JWT.Secret != "yaml-secret" || cfg.App.JWT.AccessTTLMinutes != 15 {
		t.Fatalf("unexpected jwt config: %+v", cfg.App.JWT)
	}
	if cfg.Mongo.UserCollection != "users" || cfg.Mongo.TokenCollection != "tokens" {
		t.Fatalf("collection defaults not applied: %+v", cfg.Mongo)
	}
	if cfg.Security.PasswordHashCost != 8 || cfg.Security.OtpRateLimitPerMobilePerHour != 5 {
		t.Fatalf("security defaults not applied: %+v", cfg.Security)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "7070")
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("OTP_TTL_MINUTES", "5")

	cfg, err := Load(writeConfig(t, sampleYAML))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.App.Port != 7070 {
		t.Fatalf("env port override not applied: %d", cfg.App.Port)
	}
	if cfg.App.JWT.Secret != "env-secret" {
		t.Fatalf("env secret override not applied: %q", cfg.App.JWT.Secret)
	}
	if cfg.Security.OtpTTLMinutes != 5 {
		t.Fatalf("env otp ttl override not applied: %d", cfg.Security.OtpTTLMinutes)
	}
}

func TestLoadRequiresSecret(t *testing.T) {
	noSecret := `
app:
  env: production
mongo:
  uri: mongodb://localhost:27017
bucket:
  baseURL: http://container:9100
`
	if _, err := Load(writeConfig(t, noSecret)); err == nil {
		t.Fatal("expected an error when the signing secret is missing")
	}
}

func TestLoadRequiresBucketURL(t *testing.T) {
	noBucket := `
app:
  jwt:
    secret: s
mongo:
  uri: mongodb://localhost:27017
`
	if _, err := Load(writeConfig(t, noBucket)); err == nil {
		t.Fatal("expected an error when the bucket service url is missing")
	}
}
