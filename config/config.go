package config

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	DefaultEnv              = "development"
	DefaultPort             = "3000"
	DefaultOTPTTL           = 15 * time.Minute
	DefaultOTPSweepInterval = time.Minute
	DefaultBcryptCost       = 10
	DefaultCORSOrigin       = "http://localhost:3000"
	DefaultDBMaxConns       = 10
)

type Config struct {
	Env              string        `env:"ENV" envDefault:"development"`
	Port             string        `env:"PORT" envDefault:"3000"`
	DBURL            string        `env:"DB_URL"`
	DBMaxConns       int32         `env:"DB_MAX_CONNS" envDefault:"10"`
	JWTSecret        string        `env:"JWT_SECRET"`
	GoogleClientID   string        `env:"GOOGLE_CLIENT_ID"`
	SMTPServer       string        `env:"SMTP_SERVER"`
	SMTPUser         string        `env:"SMTP_USER"`
	SMTPPassword     string        `env:"SMTP_PASSWORD"`
	SMTPFrom         string        `env:"SMTP_FROM"`
	OTPTTL           time.Duration `env:"OTP_TTL" envDefault:"15m"`
	OTPSweepInterval time.Duration `env:"OTP_SWEEP_INTERVAL" envDefault:"1m"`
	BcryptCost       int           `env:"BCRYPT_COST" envDefault:"10"`
	CORSOrigin       string        `env:"CORS_ALLOWED_ORIGIN" envDefault:"http://localhost:3000"`
}

// IsDevelopment reports whether the service runs with development affordances.
func (c *Config) IsDevelopment() bool {
	return c.Env == DefaultEnv
}

// Load reads config/.env.dev or config/.env.prod (picked by ENV) and overlays
// the process environment on top of it. Real environment variables always win.
func Load() *Config {
	appEnv := getEnv("ENV", DefaultEnv)

	vars := readEnvFile(envFileFor(appEnv))
	for _, kv := range os.Environ() {
		key, value, ok := strings.Cut(kv, "=")
		if ok {
			vars[key] = value
		}
	}

	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: vars}); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	required := []struct {
		key   string
		value string
	}{
		{"DB_URL", cfg.DBURL},
		{"JWT_SECRET", cfg.JWTSecret},
	}
	for _, r := range required {
		if r.value == "" {
			log.Fatalf("Missing required config: %s", r.key)
		}
	}

	if cfg.OTPTTL <= 0 {
		log.Fatalf("Invalid config: OTP_TTL must be positive, got %s", cfg.OTPTTL)
	}
	if cfg.OTPSweepInterval <= 0 {
		log.Fatalf("Invalid config: OTP_SWEEP_INTERVAL must be positive, got %s", cfg.OTPSweepInterval)
	}
	// Credentialed CORS cannot be combined with a wildcard origin.
	if hasWildcardOrigin(cfg.CORSOrigin) {
		log.Fatalf("Invalid config: CORS_ALLOWED_ORIGIN must list explicit origins, not *")
	}

	return &cfg
}

func hasWildcardOrigin(origins string) bool {
	for _, origin := range strings.Split(origins, ",") {
		if strings.TrimSpace(origin) == "*" {
			return true
		}
	}
	return false
}

func envFileFor(appEnv string) string {
	if appEnv == "production" {
		return filepath.Join("config", ".env.prod")
	}
	return filepath.Join("config", ".env.dev")
}

func readEnvFile(path string) map[string]string {
	vars, err := godotenv.Read(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Ignoring unreadable config file %s: %v", path, err)
		}
		return map[string]string{}
	}
	return vars
}

func getEnv(key string, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}
