// Package config loads service configuration from a YAML file, a .env file
// and the environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/inkacorp/solicitudes/internal/dashboard"
	"github.com/inkacorp/solicitudes/internal/storage"
	"github.com/inkacorp/solicitudes/internal/store"
)

// Store drivers.
const (
	DriverSupabase = "supabase"
	DriverRedis    = "redis"
	DriverMemory   = "memory"
)

// Archive drivers.
const (
	ArchiveNone  = "none"
	ArchiveFile  = "file"
	ArchiveMinio = "minio"
)

type Config struct {
	Server   ServerConfig            `yaml:"server"`
	Supabase SupabaseConfig          `yaml:"supabase"`
	Store    StoreConfig             `yaml:"store"`
	Report   ReportConfig            `yaml:"report"`
	Archive  ArchiveConfig           `yaml:"archive"`
	Status   dashboard.StatusMapping `yaml:"status"`
	Logging  LoggingConfig           `yaml:"logging"`
	Axiom    AxiomConfig             `yaml:"axiom"`
}

type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type SupabaseConfig struct {
	store.SupabaseConfig `yaml:",inline"`
	// JWTSecret enables local token verification.
	JWTSecret string `yaml:"jwt_secret"`
}

type StoreConfig struct {
	Driver   string `yaml:"driver"`
	RedisURL string `yaml:"redis_url"`
	RedisKey string `yaml:"redis_key"`
}

type ReportConfig struct {
	Company       string            `yaml:"company"`
	SystemName    string            `yaml:"system_name"`
	TermsURL      string            `yaml:"terms_url"`
	LogoURL       string            `yaml:"logo_url"`
	Colors        map[string]string `yaml:"colors"`
	ImageTimeout  time.Duration     `yaml:"image_timeout"`
	ResourcePaths []string          `yaml:"resource_paths"`
	MarginTop     float64           `yaml:"margin_top"`
	FooterReserve float64           `yaml:"footer_reserve"`
	Verify        bool              `yaml:"verify"`
	Debug         bool              `yaml:"debug"`
}

type ArchiveConfig struct {
	Driver string              `yaml:"driver"`
	Dir    string              `yaml:"dir"`
	Minio  storage.MinioConfig `yaml:"minio"`
}

type LoggingConfig struct {
	Level      string `yaml:"level"`
	Pretty     bool   `yaml:"pretty"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

type AxiomConfig struct {
	Send          bool          `yaml:"send"`
	APIKey        string        `yaml:"api_key"`
	OrgID         string        `yaml:"org_id"`
	Dataset       string        `yaml:"dataset"`
	FlushInterval time.Duration `yaml:"flush_interval"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     60 * time.Second,
			WriteTimeout:    120 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Supabase: SupabaseConfig{
			SupabaseConfig: store.SupabaseConfig{
				Table:   store.DefaultTable,
				Timeout: 30 * time.Second,
			},
		},
		Store: StoreConfig{
			Driver:   DriverSupabase,
			RedisURL: "redis://localhost:6379",
			RedisKey: store.DefaultRedisKey,
		},
		Report: ReportConfig{
			Company:       "INKA CORP",
			SystemName:    "Sistema de Gestión de Solicitudes",
			TermsURL:      "https://solicitud.inkacorp.net",
			ImageTimeout:  30 * time.Second,
			MarginTop:     20,
			FooterReserve: 50,
		},
		Archive: ArchiveConfig{
			Driver: ArchiveNone,
			Dir:    "reports",
			Minio: storage.MinioConfig{
				Bucket: "solicitudes",
				Prefix: "reports",
			},
		},
		Status: dashboard.DefaultStatusMapping(),
		Logging: LoggingConfig{
			Level:      "info",
			File:       "logs/solicitudes.log",
			MaxSizeMB:  100,
			MaxBackups: 10,
			MaxAgeDays: 30,
			Compress:   true,
		},
		Axiom: AxiomConfig{
			Dataset:       "dev_solicitudes",
			FlushInterval: 10 * time.Second,
		},
	}
}

// Load reads path over the defaults, then applies the environment. An empty
// path skips the file. envFiles are loaded into the environment first; missing
// ones are ignored.
func Load(path string, envFiles ...string) (*Config, error) {
	if err := LoadEnv(envFiles...); err != nil {
		return nil, err
	}

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadEnv loads .env style files into the process environment without
// overriding variables that are already set.
func LoadEnv(files ...string) error {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Server.Port = parseInt(getEnv("PORT", ""), c.Server.Port)

	c.Supabase.URL = getEnv("SUPABASE_URL", c.Supabase.URL)
	c.Supabase.AnonKey = getEnv("SUPABASE_ANON_KEY", c.Supabase.AnonKey)
	c.Supabase.JWTSecret = getEnv("SUPABASE_JWT_SECRET", c.Supabase.JWTSecret)
	c.Supabase.Table = getEnv("SUPABASE_TABLE", c.Supabase.Table)

	c.Store.Driver = getEnv("STORE_DRIVER", c.Store.Driver)
	c.Store.RedisURL = getEnv("REDIS_URL", c.Store.RedisURL)

	c.Report.LogoURL = getEnv("REPORT_LOGO_URL", c.Report.LogoURL)
	c.Report.TermsURL = getEnv("REPORT_TERMS_URL", c.Report.TermsURL)
	c.Report.ImageTimeout = parseDuration(getEnv("IMAGE_TIMEOUT", ""), c.Report.ImageTimeout)
	c.Report.Verify = envBool("REPORT_VERIFY", c.Report.Verify)
	c.Report.Debug = envBool("REPORT_DEBUG", c.Report.Debug)

	c.Archive.Driver = getEnv("ARCHIVE_DRIVER", c.Archive.Driver)
	c.Archive.Dir = getEnv("ARCHIVE_DIR", c.Archive.Dir)
	c.Archive.Minio.Endpoint = getEnv("MINIO_ENDPOINT", c.Archive.Minio.Endpoint)
	c.Archive.Minio.AccessKey = getEnv("MINIO_ACCESS_KEY", c.Archive.Minio.AccessKey)
	c.Archive.Minio.SecretKey = getEnv("MINIO_SECRET_KEY", c.Archive.Minio.SecretKey)
	c.Archive.Minio.Bucket = getEnv("MINIO_BUCKET", c.Archive.Minio.Bucket)
	c.Archive.Minio.Region = getEnv("MINIO_REGION", c.Archive.Minio.Region)
	c.Archive.Minio.UseSSL = envBool("MINIO_USE_SSL", c.Archive.Minio.UseSSL)

	c.Logging.Level = getEnv("LOG_LEVEL", c.Logging.Level)
	c.Logging.Pretty = envBool("LOG_PRETTY", c.Logging.Pretty)
	c.Logging.File = getEnv("LOG_FILE", c.Logging.File)

	c.Axiom.Send = envBool("SEND_LOGS_TO_AXIOM", c.Axiom.Send)
	c.Axiom.APIKey = getEnv("AXIOM_API_KEY", c.Axiom.APIKey)
	c.Axiom.OrgID = getEnv("AXIOM_ORG_ID", c.Axiom.OrgID)
	c.Axiom.Dataset = getEnv("AXIOM_DATASET", c.Axiom.Dataset)
	c.Axiom.FlushInterval = parseDuration(getEnv("AXIOM_FLUSH_INTERVAL", ""), c.Axiom.FlushInterval)
}

// Validate checks that the selected drivers have what they need.
func (c *Config) Validate() error {
	var errs []error
	switch c.Store.Driver {
	case DriverSupabase:
		if c.Supabase.URL == "" || c.Supabase.AnonKey == "" {
			errs = append(errs, errors.New("supabase store needs SUPABASE_URL and SUPABASE_ANON_KEY"))
		}
	case DriverRedis:
		if c.Store.RedisURL == "" {
			errs = append(errs, errors.New("redis store needs REDIS_URL"))
		}
	case DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown store driver %q", c.Store.Driver))
	}

	switch c.Archive.Driver {
	case "", ArchiveNone:
	case ArchiveFile:
		if c.Archive.Dir == "" {
			errs = append(errs, errors.New("file archive needs a directory"))
		}
	case ArchiveMinio:
		if c.Archive.Minio.Endpoint == "" || c.Archive.Minio.Bucket == "" {
			errs = append(errs, errors.New("minio archive needs MINIO_ENDPOINT and MINIO_BUCKET"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown archive driver %q", c.Archive.Driver))
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid port %d", c.Server.Port))
	}
	return errors.Join(errs...)
}
