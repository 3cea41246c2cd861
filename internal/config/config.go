package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/genricoloni/mucwidget/internal/domain"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const (
	defaultOutputDir       = "/tmp/mucwidget"
	defaultScheme          = "mucplay"
	defaultAppPackage      = "com.example.mucplay"
	defaultAudioService    = "com.ryanheise.audioservice.AudioService"
	defaultTallThreshold   = 100
	defaultHostAPILevel    = 34
	defaultCoverMaxEdge    = 512
	defaultRefreshInterval = 30 * time.Minute
	defaultInstances       = "1:80"
)

// StoreKind selects the snapshot store backend
type StoreKind string

const (
	StoreMemory StoreKind = "memory"
	StoreRedis  StoreKind = "redis"
)

// RedisConfig holds Redis-related configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	// Key is the hash holding the preference snapshot
	Key string
}

// AppConfig holds application configuration
type AppConfig struct {
	OutputDir       string
	LayoutPolicy    domain.LayoutPolicy
	TallThreshold   int
	AppScheme       string
	AppPackage      string
	AudioService    string
	HostAPILevel    int
	CoverMaxEdge    int
	RefreshInterval time.Duration
	Instances       []domain.WidgetInstance
	Store           StoreKind
	Redis           RedisConfig
	LogLevel        string
}

var loadEnvOnce sync.Once

// LoadEnv loads an optional .env file from the working directory, once per process
func LoadEnv() {
	loadEnvOnce.Do(func() {
		_ = godotenv.Load()
	})
}

// NewAppConfig creates a new application configuration instance
func NewAppConfig(logger *zap.Logger) *AppConfig {
	LoadEnv()

	cfg := &AppConfig{
		OutputDir:       expandPath(getEnv("WIDGET_OUTPUT_DIR", defaultOutputDir)),
		LayoutPolicy:    parsePolicy(logger, getEnv("WIDGET_LAYOUT_POLICY", string(domain.PolicySize))),
		TallThreshold:   getEnvAsInt("WIDGET_TALL_THRESHOLD", defaultTallThreshold),
		AppScheme:       getEnv("WIDGET_APP_SCHEME", defaultScheme),
		AppPackage:      getEnv("WIDGET_APP_PACKAGE", defaultAppPackage),
		AudioService:    getEnv("WIDGET_AUDIO_SERVICE", defaultAudioService),
		HostAPILevel:    getEnvAsInt("WIDGET_HOST_API_LEVEL", defaultHostAPILevel),
		CoverMaxEdge:    getEnvAsInt("WIDGET_COVER_MAX_EDGE", defaultCoverMaxEdge),
		RefreshInterval: getEnvAsDuration("WIDGET_REFRESH_INTERVAL", defaultRefreshInterval),
		Store:           StoreKind(getEnv("WIDGET_STORE", string(StoreMemory))),
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Key:      getEnv("WIDGET_REDIS_KEY", "HomeWidgetPreferences"),
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	instances, err := ParseInstances(getEnv("WIDGET_INSTANCES", defaultInstances))
	if err != nil {
		logger.Warn("Invalid WIDGET_INSTANCES, using default",
			zap.Error(err),
			zap.String("default", defaultInstances))
		instances, _ = ParseInstances(defaultInstances)
	}
	cfg.Instances = instances

	logger.Info("Configuration loaded",
		zap.String("outputDir", cfg.OutputDir),
		zap.String("layoutPolicy", string(cfg.LayoutPolicy)),
		zap.String("scheme", cfg.AppScheme),
		zap.String("store", string(cfg.Store)),
		zap.Int("instances", len(cfg.Instances)))

	return cfg
}

// ParseInstances parses "id:minHeight" pairs separated by commas.
func ParseInstances(raw string) ([]domain.WidgetInstance, error) {
	var out []domain.WidgetInstance
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		idStr, heightStr, ok := strings.Cut(part, ":")
		if !ok {
			return nil, fmt.Errorf("instance %q: expected id:minHeight", part)
		}
		id, err := strconv.Atoi(idStr)
		if err != nil {
			return nil, fmt.Errorf("instance %q: invalid id: %w", part, err)
		}
		height, err := strconv.Atoi(heightStr)
		if err != nil {
			return nil, fmt.Errorf("instance %q: invalid height: %w", part, err)
		}
		out = append(out, domain.WidgetInstance{ID: id, MinHeight: height})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no instances in %q", raw)
	}
	return out, nil
}

func parsePolicy(logger *zap.Logger, raw string) domain.LayoutPolicy {
	switch p := domain.LayoutPolicy(strings.ToLower(raw)); p {
	case domain.PolicySize, domain.PolicyToggle:
		return p
	default:
		logger.Warn("Unknown layout policy, falling back to size", zap.String("policy", raw))
		return domain.PolicySize
	}
}

// expandPath expands environment variables and a leading ~
func expandPath(p string) string {
	p = os.ExpandEnv(p)
	if len(p) > 0 && p[0] == '~' {
		home, err := os.UserHomeDir()
		if err == nil {
			p = filepath.Join(home, p[1:])
		}
	}
	return p
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as int or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return defaultValue
}
