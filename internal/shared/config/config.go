package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config holds application configuration.
type Config struct {
	Port            string `validate:"required"`
	Env             string `validate:"oneof=dev local staging production"`
	CORSAllowOrigin []string
	LogLevel        string

	LLMProvider     string        `validate:"oneof=gemini openai anthropic"`
	LLMModel        string        `validate:"required"`
	GeminiAPIKey    string        `validate:"required_if=LLMProvider gemini"`
	OpenAIAPIKey    string        `validate:"required_if=LLMProvider openai"`
	AnthropicAPIKey string        `validate:"required_if=LLMProvider anthropic"`
	ModelTimeout    time.Duration `validate:"gt=0"`

	ArchiveProvider string        `validate:"oneof=none local s3 gdrive"`
	ArchiveTimeout  time.Duration `validate:"gt=0"`
	ArchiveWait     time.Duration
	LocalStoreDir   string        `validate:"required_if=ArchiveProvider local"`

	AWSRegion     string
	S3Bucket      string `validate:"required_if=ArchiveProvider s3"`
	S3Prefix      string
	S3Endpoint    string
	S3AccessKeyID string
	S3SecretKey   string
	SSEKMSKeyID   string

	DriveFolderID    string `validate:"required_if=ArchiveProvider gdrive"`
	DriveClientEmail string `validate:"required_if=ArchiveProvider gdrive"`
	DrivePrivateKey  string `validate:"required_if=ArchiveProvider gdrive"`

	SequenceProvider string `validate:"oneof=memory valkey folder"`
	ValkeyURL        string `validate:"required_if=SequenceProvider valkey"`
	ValkeyPassword   string

	ChromePath     string
	RateLimitRPS   float64
	RateLimitBurst int
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	provider := normalizeProvider(getEnv("LLM_PROVIDER", "gemini"))

	return Config{
		Port:            getEnv("PORT", "8080"),
		Env:             normalizeEnv(getEnv("ENV", "dev")),
		CORSAllowOrigin: splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:3000")),
		LogLevel:        getEnv("LOG_LEVEL", "info"),

		LLMProvider:     provider,
		LLMModel:        getEnv("LLM_MODEL", defaultModel(provider)),
		GeminiAPIKey:    getEnv("GEMINI_API_KEY", os.Getenv("GOOGLE_API_KEY")),
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		ModelTimeout:    getSeconds("MODEL_TIMEOUT_SECONDS", 90*time.Second),

		ArchiveProvider: normalizeArchiveProvider(getEnv("ARCHIVE_PROVIDER", "local")),
		ArchiveTimeout:  getSeconds("ARCHIVE_TIMEOUT_SECONDS", 30*time.Second),
		ArchiveWait:     getSeconds("ARCHIVE_WAIT_SECONDS", 0),
		LocalStoreDir:   getEnv("LOCAL_STORE_DIR", "./data"),

		AWSRegion:     getEnv("AWS_REGION", ""),
		S3Bucket:      getEnv("S3_BUCKET", ""),
		S3Prefix:      getEnv("S3_PREFIX", ""),
		S3Endpoint:    getEnv("S3_ENDPOINT", ""),
		S3AccessKeyID: getEnv("S3_ACCESS_KEY_ID", ""),
		S3SecretKey:   getEnv("S3_SECRET_ACCESS_KEY", ""),
		SSEKMSKeyID:   getEnv("SSE_KMS_KEY_ID", ""),

		DriveFolderID:    getEnv("GOOGLE_DRIVE_FOLDER_ID", ""),
		DriveClientEmail: getEnv("GOOGLE_SERVICE_ACCOUNT_EMAIL", ""),
		DrivePrivateKey:  unescapeKey(getEnv("GOOGLE_PRIVATE_KEY", "")),

		SequenceProvider: normalizeSequenceProvider(getEnv("SEQUENCE_PROVIDER", "memory")),
		ValkeyURL:        getEnv("VALKEY_URL", ""),
		ValkeyPassword:   getEnv("VALKEY_PASSWORD", ""),

		ChromePath:     getEnv("CHROME_PATH", ""),
		RateLimitRPS:   getFloat("RATE_LIMIT_RPS", 1),
		RateLimitBurst: getInt("RATE_LIMIT_BURST", 10),
	}
}

// Validate checks cross-field requirements such as provider credentials.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(fields, ", "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

var validate = validator.New()

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getSeconds(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		return def
	}
	return time.Duration(parsed) * time.Second
}

func getInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
		return parsed
	}
	return def
}

func getFloat(key string, def float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if parsed, err := strconv.ParseFloat(raw, 64); err == nil && parsed > 0 {
		return parsed
	}
	return def
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// unescapeKey turns literal "\n" sequences from single-line env values into newlines.
func unescapeKey(raw string) string {
	return strings.ReplaceAll(raw, `\n`, "\n")
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}

func normalizeProvider(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "openai":
		return "openai"
	case "anthropic", "claude":
		return "anthropic"
	case "gemini", "google", "":
		return "gemini"
	default:
		return strings.ToLower(strings.TrimSpace(raw))
	}
}

func defaultModel(provider string) string {
	switch provider {
	case "openai":
		return "gpt-4o-mini"
	case "anthropic":
		return "claude-3-7-sonnet-latest"
	default:
		return "gemini-2.5-flash"
	}
}

func normalizeArchiveProvider(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3", "r2":
		return "s3"
	case "gdrive", "drive", "google-drive":
		return "gdrive"
	case "none", "off", "disabled":
		return "none"
	default:
		return "local"
	}
}

func normalizeSequenceProvider(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "valkey", "redis":
		return "valkey"
	case "folder", "count":
		return "folder"
	default:
		return "memory"
	}
}
