package config

import (
	"errors"
	"os"
	"strconv"
	"sync"
	"time"
)

type Config struct {
	Env      string
	LogLevel string
	Addr     string

	StorageBackend string
	PostgresDSN    string
	SQLitePath     string
	DataFile       string

	AuthMode       string
	JWTSecret      string
	AuthServiceURL string

	ExportBackend string
	ExportDir     string
	S3Region      string
	S3Bucket      string
	S3Endpoint    string
	S3AccessKey   string
	S3SecretKey   string

	RefreshInterval    time.Duration
	RefreshDeadline    time.Duration
	RefreshConcurrency int

	DefaultLanguage string
	DefaultCountry  string
}

var (
	cfg  *Config
	once sync.Once
)

func Load() *Config {
	once.Do(func() {
		_ = loadDotEnv()
		cfg = &Config{
			Env:      getEnv("APP_ENV", "development"),
			LogLevel: getEnv("LOG_LEVEL", "info"),
			Addr:     getEnv("LISTEN_ADDR", ":8080"),

			StorageBackend: getEnv("STORAGE_BACKEND", "file"),
			PostgresDSN:    getEnv("POSTGRES_DSN", ""),
			SQLitePath:     getEnv("SQLITE_PATH", "data/timesheet.db"),
			DataFile:       getEnv("DATA_FILE", "data/timesheet.json"),

			AuthMode:       getEnv("AUTH_MODE", "jwt"),
			JWTSecret:      getEnv("JWT_SECRET", ""),
			AuthServiceURL: getEnv("AUTH_SERVICE_URL", ""),

			ExportBackend: getEnv("EXPORT_BACKEND", "file"),
			ExportDir:     getEnv("EXPORT_DIR", "data/exports"),
			S3Region:      getEnv("S3_REGION", "us-east-1"),
			S3Bucket:      getEnv("S3_BUCKET", ""),
			S3Endpoint:    getEnv("S3_ENDPOINT", ""),
			S3AccessKey:   getEnv("S3_ACCESS_KEY", ""),
			S3SecretKey:   getEnv("S3_SECRET_KEY", ""),

			RefreshInterval:    getDuration("REFRESH_INTERVAL", 3*time.Minute),
			RefreshDeadline:    getDuration("REFRESH_DEADLINE", 30*time.Second),
			RefreshConcurrency: getInt("REFRESH_CONCURRENCY", 4),

			DefaultLanguage: getEnv("DEFAULT_LANGUAGE", "en"),
			DefaultCountry:  getEnv("DEFAULT_COUNTRY", ""),
		}
		if err := cfg.Validate(); err != nil {
			panic("Invalid config: " + err.Error())
		}
	})
	return cfg
}

func (c *Config) Validate() error {
	if c.StorageBackend == "postgres" && c.PostgresDSN == "" {
		return errors.New("POSTGRES_DSN is required when STORAGE_BACKEND=postgres")
	}
	if c.StorageBackend == "sqlite" && c.SQLitePath == "" {
		return errors.New("SQLITE_PATH is required when STORAGE_BACKEND=sqlite")
	}
	if c.StorageBackend == "file" && c.DataFile == "" {
		return errors.New("DATA_FILE is required when STORAGE_BACKEND=file")
	}
	if c.StorageBackend != "postgres" && c.StorageBackend != "sqlite" && c.StorageBackend != "file" {
		return errors.New("STORAGE_BACKEND must be one of: postgres, sqlite, file")
	}
	if c.AuthMode == "jwt" && c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required when AUTH_MODE=jwt")
	}
	if c.AuthMode == "remote" && c.AuthServiceURL == "" {
		return errors.New("AUTH_SERVICE_URL is required when AUTH_MODE=remote")
	}
	if c.AuthMode != "jwt" && c.AuthMode != "remote" {
		return errors.New("AUTH_MODE must be one of: jwt, remote")
	}
	if c.ExportBackend == "s3" && c.S3Bucket == "" {
		return errors.New("S3_BUCKET is required when EXPORT_BACKEND=s3")
	}
	if c.ExportBackend != "s3" && c.ExportBackend != "file" {
		return errors.New("EXPORT_BACKEND must be one of: s3, file")
	}
	if c.RefreshConcurrency < 1 {
		return errors.New("REFRESH_CONCURRENCY must be at least 1")
	}
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return errors.New("APP_ENV must be one of: development, staging, production")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func loadDotEnv() error {
	if _, err := os.Stat(".env"); err == nil {
		f, err := os.Open(".env")
		if err != nil {
			return err
		}
		defer f.Close()
		var lines []string
		buf := make([]byte, 4096)
		for {
			n, err := f.Read(buf)
			if n > 0 {
				lines = append(lines, string(buf[:n]))
			}
			if err != nil {
				break
			}
		}
		for _, line := range lines {
			for _, l := range splitLines(line) {
				if len(l) == 0 || l[0] == '#' {
					continue
				}
				kv := splitKV(l)
				if len(kv) == 2 {
					os.Setenv(kv[0], kv[1])
				}
			}
		}
	}
	return nil
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i, c := range s {
		if c == '\n' || c == '\r' {
			if i > start {
				lines = append(lines, s[start:i])
			}
			start = i + 1
		}
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}

func splitKV(s string) []string {
	for i, c := range s {
		if c == '=' {
			return []string{s[:i], s[i+1:]}
		}
	}
	return nil
}
