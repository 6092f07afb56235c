package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port     string
	Env      string
	LogLevel string

	// LLM settings. Provider selects the primary client ("groq" or
	// "gemini"); when both API keys are set the other provider is wired
	// as the failover.
	LLMProvider    string
	GroqAPIKey     string
	GroqBaseURL    string
	GeminiAPIKey   string
	LLMModel       string
	LLMMaxTokens   int
	LLMTemperature float64
	LLMTimeout     time.Duration

	// Google Sheets persistence
	SheetsCredentials string
	SpreadsheetID     string
	SheetName         string

	ClinicDetailsFile string

	// Session storage. Sessions live in memory unless RedisAddr is set.
	RedisAddr     string
	RedisPassword string
	SessionTTL    time.Duration

	CORSAllowedOrigins []string
}

// Load reads configuration from the environment. A .env file in the
// working directory is loaded first when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:     getEnv("PORT", "8000"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		LLMProvider:    strings.ToLower(strings.TrimSpace(getEnv("LLM_PROVIDER", "groq"))),
		GroqAPIKey:     getEnv("GROQ_API_KEY", ""),
		GroqBaseURL:    getEnv("GROQ_BASE_URL", "https://api.groq.com/openai/v1"),
		GeminiAPIKey:   getEnv("GEMINI_API_KEY", ""),
		LLMModel:       getEnv("LLM_MODEL", "llama-3.1-8b-instant"),
		LLMMaxTokens:   getEnvAsInt("LLM_MAX_TOKENS", 1024),
		LLMTemperature: getEnvAsFloat("LLM_TEMPERATURE", 0.3),
		LLMTimeout:     getEnvAsDuration("LLM_TIMEOUT", 8*time.Second),

		SheetsCredentials: getEnv("GOOGLE_SHEETS_CREDENTIALS", ""),
		SpreadsheetID:     getEnv("SPREADSHEET_ID", ""),
		SheetName:         getEnv("SHEET_NAME", "Sheet1"),

		ClinicDetailsFile: getEnv("CLINIC_DETAILS_FILE", "clinic_details.json"),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		SessionTTL:    getEnvAsDuration("SESSION_TTL", 30*time.Minute),

		CORSAllowedOrigins: splitAndTrim(getEnv("CORS_ALLOWED_ORIGINS", "*")),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsFloat retrieves an environment variable as a float or returns a default value
func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func splitAndTrim(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
