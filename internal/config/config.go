package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Config is the whole runtime configuration. Values come from defaults, then
// an optional TOML file, then LANDEDCOST_* environment variables.
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Catalog CatalogConfig `toml:"catalog"`
	DB      DBConfig      `toml:"db"`
	Report  ReportConfig  `toml:"report"`
	Email   EmailConfig   `toml:"email"`
	Alert   AlertConfig   `toml:"alert"`
}

type ServerConfig struct {
	Port int `toml:"port"`
}

type CatalogConfig struct {
	// Source is "file" (CSV/XLSX at Path) or "db" (tariffs table).
	Source string `toml:"source"`
	Path   string `toml:"path"`
	// ReloadInterval is integer seconds or a cron expression; empty disables.
	ReloadInterval string `toml:"reload_interval"`
}

type DBConfig struct {
	Driver      string `toml:"driver"`
	DSN         string `toml:"dsn"`
	AutoMigrate bool   `toml:"auto_migrate"`
}

type ReportConfig struct {
	LogoPath     string   `toml:"logo_path"`
	LogoRequired bool     `toml:"logo_required"`
	Footer       []string `toml:"footer"`
	Compress     bool     `toml:"compress"`
}

type EmailConfig struct {
	Provider    string `toml:"provider"` // "smtp", "sendgrid"
	Host        string `toml:"host"`
	Port        int    `toml:"port"`
	Username    string `toml:"username"`
	Password    string `toml:"password"`
	FromAddress string `toml:"from_address"`
	FromName    string `toml:"from_name"`
	APIKey      string `toml:"api_key"`
	Encryption  string `toml:"encryption"` // "none", "ssl", "tls"
}

// Enabled reports whether enough is set to send mail.
func (e EmailConfig) Enabled() bool {
	return e.Provider != "" && e.FromAddress != ""
}

type AlertConfig struct {
	WebhookURL  string `toml:"webhook_url"`
	WebhookType string `toml:"webhook_type"`
	MinFailures int    `toml:"min_failures"`
}

// Default returns the configuration used when nothing else is set.
func Default() Config {
	return Config{
		Server: ServerConfig{Port: 8000},
		Catalog: CatalogConfig{
			Source: "file",
			Path:   "database.xlsx",
		},
		DB: DBConfig{
			Driver: "sqlite",
			DSN:    "landedcost.db",
		},
		Report: ReportConfig{
			LogoPath: "logo.png",
			Compress: true,
		},
		Email: EmailConfig{
			Port:       587,
			Encryption: "tls",
			FromName:   "Landed Cost Calculator",
		},
		Alert: AlertConfig{MinFailures: 1},
	}
}

// Load builds a Config from defaults, the TOML file at path (skipped when
// path is empty) and the environment.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// FromEnv builds a Config from environment variables, with sane defaults.
func FromEnv() (Config, error) {
	return Load(os.Getenv("LANDEDCOST_CONFIG"))
}

func applyEnv(cfg *Config) error {
	str := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}
	var err error
	num := func(key string, dst *int) {
		if v := os.Getenv(key); v != "" && err == nil {
			n, convErr := strconv.Atoi(v)
			if convErr != nil {
				err = fmt.Errorf("%s: %w", key, convErr)
				return
			}
			*dst = n
		}
	}
	flag := func(key string, dst *bool) {
		if v := os.Getenv(key); v != "" {
			*dst = parseBool(v)
		}
	}

	num("PORT", &cfg.Server.Port)
	num("LANDEDCOST_PORT", &cfg.Server.Port)

	str("LANDEDCOST_CATALOG_SOURCE", &cfg.Catalog.Source)
	str("LANDEDCOST_CATALOG_PATH", &cfg.Catalog.Path)
	str("LANDEDCOST_RELOAD_INTERVAL", &cfg.Catalog.ReloadInterval)

	str("LANDEDCOST_DB_DRIVER", &cfg.DB.Driver)
	str("LANDEDCOST_DB_DSN", &cfg.DB.DSN)
	flag("LANDEDCOST_AUTO_MIGRATE", &cfg.DB.AutoMigrate)

	str("LANDEDCOST_LOGO_PATH", &cfg.Report.LogoPath)
	flag("LANDEDCOST_LOGO_REQUIRED", &cfg.Report.LogoRequired)
	flag("LANDEDCOST_PDF_COMPRESS", &cfg.Report.Compress)
	if v := os.Getenv("LANDEDCOST_REPORT_FOOTER"); v != "" {
		cfg.Report.Footer = strings.Split(v, "|")
		for i := range cfg.Report.Footer {
			cfg.Report.Footer[i] = strings.TrimSpace(cfg.Report.Footer[i])
		}
	}

	str("LANDEDCOST_EMAIL_PROVIDER", &cfg.Email.Provider)
	str("LANDEDCOST_EMAIL_HOST", &cfg.Email.Host)
	num("LANDEDCOST_EMAIL_PORT", &cfg.Email.Port)
	str("LANDEDCOST_EMAIL_USERNAME", &cfg.Email.Username)
	str("LANDEDCOST_EMAIL_PASSWORD", &cfg.Email.Password)
	str("LANDEDCOST_EMAIL_FROM", &cfg.Email.FromAddress)
	str("LANDEDCOST_EMAIL_FROM_NAME", &cfg.Email.FromName)
	str("LANDEDCOST_EMAIL_API_KEY", &cfg.Email.APIKey)
	str("LANDEDCOST_EMAIL_ENCRYPTION", &cfg.Email.Encryption)

	str("ALERT_WEBHOOK_URL", &cfg.Alert.WebhookURL)
	str("ALERT_WEBHOOK_TYPE", &cfg.Alert.WebhookType)
	num("ALERT_MIN_FAILURES", &cfg.Alert.MinFailures)

	return err
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
