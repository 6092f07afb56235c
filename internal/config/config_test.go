package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "groq", cfg.LLMProvider)
	assert.Equal(t, "llama-3.1-8b-instant", cfg.LLMModel)
	assert.Equal(t, 1024, cfg.LLMMaxTokens)
	assert.InDelta(t, 0.3, cfg.LLMTemperature, 0.0001)
	assert.Equal(t, 8*time.Second, cfg.LLMTimeout)
	assert.Equal(t, "Sheet1", cfg.SheetName)
	assert.Equal(t, "clinic_details.json", cfg.ClinicDetailsFile)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("LLM_PROVIDER", "GEMINI")
	t.Setenv("LLM_MAX_TOKENS", "256")
	t.Setenv("LLM_TEMPERATURE", "0.7")
	t.Setenv("LLM_TIMEOUT", "3s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "gemini", cfg.LLMProvider)
	assert.Equal(t, 256, cfg.LLMMaxTokens)
	assert.InDelta(t, 0.7, cfg.LLMTemperature, 0.0001)
	assert.Equal(t, 3*time.Second, cfg.LLMTimeout)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
}

func TestLoadIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("LLM_MAX_TOKENS", "not-a-number")
	t.Setenv("LLM_TIMEOUT", "soon")

	cfg := Load()

	assert.Equal(t, 1024, cfg.LLMMaxTokens)
	assert.Equal(t, 8*time.Second, cfg.LLMTimeout)
}
