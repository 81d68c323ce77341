package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Generator providers accepted in MOODLOG_LLM_PROVIDER
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
	ProviderNone   = "none"
)

type Config struct {
	Port        string
	VaultPath   string
	DBPath      string
	ContentPath string
	Timezone    string

	LLMProvider  string
	LLMTimeout   time.Duration
	GeminiAPIKey string
	GeminiModel  string
	OpenAIAPIKey string
	OpenAIModel  string
	OllamaURL    string
	OllamaModel  string

	BalancePreset string

	// tokens maps bearer token to owner
	tokens map[string]string
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:          getEnv("MOODLOG_PORT", "8080"),
		VaultPath:     getEnv("MOODLOG_VAULT_PATH", ""),
		DBPath:        getEnv("MOODLOG_DB_PATH", ""),
		ContentPath:   getEnv("MOODLOG_CONTENT_PATH", ""),
		Timezone:      getEnv("MOODLOG_TIMEZONE", "Europe/London"),
		LLMProvider:   strings.ToLower(getEnv("MOODLOG_LLM_PROVIDER", ProviderGemini)),
		GeminiAPIKey:  getEnv("MOODLOG_GEMINI_API_KEY", ""),
		GeminiModel:   getEnv("MOODLOG_GEMINI_MODEL", "gemini-2.5-flash"),
		OpenAIAPIKey:  getEnv("MOODLOG_OPENAI_API_KEY", ""),
		OpenAIModel:   getEnv("MOODLOG_OPENAI_MODEL", "gpt-4o-mini"),
		OllamaURL:     getEnv("MOODLOG_OLLAMA_URL", "http://localhost:11434"),
		OllamaModel:   getEnv("MOODLOG_OLLAMA_MODEL", "qwen2.5:7b"),
		BalancePreset: getEnv("MOODLOG_BALANCE_PRESET", "dashboard"),
	}

	timeout, err := time.ParseDuration(getEnv("MOODLOG_LLM_TIMEOUT", "20s"))
	if err != nil {
		return nil, fmt.Errorf("MOODLOG_LLM_TIMEOUT: %w", err)
	}
	cfg.LLMTimeout = timeout

	tokens, err := parseUsers(getEnv("MOODLOG_USERS", ""))
	if err != nil {
		return nil, err
	}
	cfg.tokens = tokens

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("MOODLOG_DB_PATH is required")
	}
	if len(c.tokens) == 0 {
		return fmt.Errorf("MOODLOG_USERS must name at least one user")
	}
	if c.LLMTimeout <= 0 {
		return fmt.Errorf("MOODLOG_LLM_TIMEOUT must be positive")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("MOODLOG_TIMEZONE: %w", err)
	}
	switch c.BalancePreset {
	case "dashboard", "insights":
	default:
		return fmt.Errorf("MOODLOG_BALANCE_PRESET must be dashboard or insights, got %q", c.BalancePreset)
	}

	switch c.LLMProvider {
	case ProviderGemini:
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("MOODLOG_GEMINI_API_KEY is required for provider gemini")
		}
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("MOODLOG_OPENAI_API_KEY is required for provider openai")
		}
	case ProviderOllama, ProviderNone:
	default:
		return fmt.Errorf("unknown MOODLOG_LLM_PROVIDER %q", c.LLMProvider)
	}
	return nil
}

// OwnerFromToken resolves a bearer token to the owner it was issued to
func (c *Config) OwnerFromToken(token string) (string, bool) {
	if token == "" {
		return "", false
	}
	owner, ok := c.tokens[token]
	return owner, ok
}

// Owners lists every configured owner
func (c *Config) Owners() []string {
	owners := make([]string, 0, len(c.tokens))
	for _, o := range c.tokens {
		owners = append(owners, o)
	}
	return owners
}

// Location returns the configured timezone, falling back to UTC
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// WithUsers returns a copy of c with the given token table.
// Used by tests and the CLI, which have no environment to read.
func (c Config) WithUsers(tokens map[string]string) *Config {
	c.tokens = tokens
	return &c
}

// parseUsers reads "name:token,name:token"
func parseUsers(s string) (map[string]string, error) {
	tokens := make(map[string]string)
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, token, ok := strings.Cut(pair, ":")
		name, token = strings.TrimSpace(name), strings.TrimSpace(token)
		if !ok || name == "" || token == "" {
			return nil, fmt.Errorf("MOODLOG_USERS: malformed entry %q", pair)
		}
		if _, dup := tokens[token]; dup {
			return nil, fmt.Errorf("MOODLOG_USERS: token for %s is not unique", name)
		}
		tokens[token] = name
	}
	return tokens, nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
