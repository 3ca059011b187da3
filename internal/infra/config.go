package infra

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv             string
	Port               string
	ServiceName        string
	LogLevel           string
	GeminiAPIKey       string
	GeminiModel        string
	GeminiBaseURL      string
	GeminiTimeout      time.Duration
	AspectRatio        string
	OutputDir          string
	PromptsDir         string
	CORSAllowedOrigins []string
	MaxUploadBytes     int64
	HTTPReadTimeout    time.Duration
	HTTPWriteTimeout   time.Duration
	HTTPIdleTimeout    time.Duration
	RateLimitPerMin    int
}

const (
	DefaultGeminiModel = "gemini-2.5-flash-image-preview"
	DefaultOutputDir   = "outputs"
)

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	var parseErrs []error
	envInt := func(key string, fallback int) int {
		v, err := getEnvInt(key, fallback)
		if err != nil {
			parseErrs = append(parseErrs, err)
		}
		return v
	}

	cfg := &Config{
		AppEnv:             getEnv("APP_ENV", "development"),
		Port:               getEnv("PORT", "8000"),
		ServiceName:        getEnv("SERVICE_NAME", "imagestudio"),
		LogLevel:           os.Getenv("LOG_LEVEL"),
		GeminiAPIKey:       strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		GeminiModel:        getEnv("GEMINI_MODEL", DefaultGeminiModel),
		GeminiBaseURL:      os.Getenv("GEMINI_BASE_URL"),
		GeminiTimeout:      time.Second * time.Duration(envInt("GEMINI_TIMEOUT_SECONDS", 120)),
		AspectRatio:        strings.TrimSpace(os.Getenv("GEMINI_ASPECT_RATIO")),
		OutputDir:          getEnv("OUTPUT_DIR", DefaultOutputDir),
		PromptsDir:         os.Getenv("PROMPTS_DIR"),
		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		MaxUploadBytes:     int64(envInt("MAX_UPLOAD_BYTES", 20<<20)),
		HTTPReadTimeout:    time.Second * time.Duration(envInt("HTTP_READ_TIMEOUT_SECONDS", 30)),
		HTTPWriteTimeout:   time.Second * time.Duration(envInt("HTTP_WRITE_TIMEOUT_SECONDS", 180)),
		HTTPIdleTimeout:    time.Second * time.Duration(envInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:    envInt("RATE_LIMIT_PER_MINUTE", 30),
	}
	if err := errors.Join(parseErrs...); err != nil {
		return nil, err
	}

	if cfg.GeminiTimeout <= 0 {
		return nil, fmt.Errorf("GEMINI_TIMEOUT_SECONDS must be positive")
	}
	if cfg.MaxUploadBytes <= 0 {
		return nil, fmt.Errorf("MAX_UPLOAD_BYTES must be positive")
	}
	if cfg.RateLimitPerMin < 0 {
		return nil, fmt.Errorf("RATE_LIMIT_PER_MINUTE must not be negative")
	}

	return cfg, nil
}

// RequireGeminiKey reports a configuration error when no API key is set.
// Commands that never call the model (template listing) skip this check.
func (c *Config) RequireGeminiKey() error {
	if c == nil || c.GeminiAPIKey == "" {
		return errors.New("GEMINI_API_KEY is required")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return fallback, nil
	}
	i, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return fallback, fmt.Errorf("%s must be an integer, got %q", key, v)
	}
	return i, nil
}

func getEnvList(key string, fallback []string) []string {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
