package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration. The loaded value is passed
// explicitly into the pipeline entry point; run-time code never reads viper.
type Config struct {
	App     App      `mapstructure:"app"`
	LLM     LLM      `mapstructure:"llm"`
	Search  Search   `mapstructure:"search"`
	Output  Output   `mapstructure:"output"`
	Sources []string `mapstructure:"sources"`
}

// App holds general application configuration
type App struct {
	Debug    bool   `mapstructure:"debug"`
	LogLevel string `mapstructure:"log_level"`
}

// LLM holds the local generation backend configuration. The backend is any
// OpenAI-compatible server (llama-server, llamafile, Ollama). Both BaseURL
// and Model are required; a missing model halts startup before any item is
// processed.
type LLM struct {
	BaseURL string `mapstructure:"base_url"`
	Model   string `mapstructure:"model"`
	APIKey  string `mapstructure:"api_key"`
	Timeout string `mapstructure:"timeout"`
}

// Search holds search provider configuration
type Search struct {
	Provider   string          `mapstructure:"provider"`
	MaxResults int             `mapstructure:"max_results"`
	Providers  SearchProviders `mapstructure:"providers"`
}

// SearchProviders holds configuration for all search providers
type SearchProviders struct {
	Google     GoogleSearchConfig `mapstructure:"google"`
	SerpAPI    SerpAPIConfig      `mapstructure:"serpapi"`
	DuckDuckGo DuckDuckGoConfig   `mapstructure:"duckduckgo"`
}

// GoogleSearchConfig holds Google Custom Search configuration
type GoogleSearchConfig struct {
	APIKey   string `mapstructure:"api_key"`
	SearchID string `mapstructure:"search_id"`
}

// SerpAPIConfig holds SerpAPI configuration
type SerpAPIConfig struct {
	APIKey string `mapstructure:"api_key"`
}

// DuckDuckGoConfig holds DuckDuckGo configuration
type DuckDuckGoConfig struct {
	RateLimit string `mapstructure:"rate_limit"`
}

// Output holds output configuration
type Output struct {
	File string `mapstructure:"file"`
}

var globalConfig *Config

// Load loads the configuration from .env, an optional config file, and
// environment variables, validates it, and caches it as the global value.
func Load(configFile string) (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	// Load .env file if it exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			fmt.Printf("Warning: Error loading .env file: %v\n", err)
		}
	}

	// Configure viper
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
		viper.SetConfigName(".clout")
		viper.SetConfigType("yaml")
	}

	// Set defaults
	setDefaults()

	// Bind environment variables
	bindEnvironmentVariables()

	// Enable automatic environment variable reading
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Unmarshal into struct
	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Apply post-processing
	if err := postProcessConfig(config); err != nil {
		return nil, fmt.Errorf("error post-processing config: %w", err)
	}

	// Validate configuration
	if err := validateConfig(config); err != nil {
		return nil, err
	}

	globalConfig = config
	return config, nil
}

// Get returns the global configuration, loading it if necessary
func Get() *Config {
	if globalConfig == nil {
		config, err := Load("")
		if err != nil {
			panic(fmt.Sprintf("Failed to load configuration: %v", err))
		}
		return config
	}
	return globalConfig
}

// setDefaults sets default configuration values
func setDefaults() {
	// App defaults
	viper.SetDefault("app.debug", false)
	viper.SetDefault("app.log_level", "info")

	// LLM defaults. The model name has no default on purpose: a run with no
	// configured model must halt at startup.
	viper.SetDefault("llm.base_url", "http://127.0.0.1:8080/v1")
	viper.SetDefault("llm.timeout", "120s")

	// Search defaults
	viper.SetDefault("search.provider", "serpapi")
	viper.SetDefault("search.max_results", 5)
	viper.SetDefault("search.providers.duckduckgo.rate_limit", "2s")

	// Output defaults
	viper.SetDefault("output.file", "clout_posts.xlsx")

	// Source list defaults, consumed in order once per run
	viper.SetDefault("sources", []string{
		"https://pallavighxsh.wordpress.com/2025/01/28/ai-tone-consistency-in-brand-aligned-communication/",
		"https://pallavighxsh.wordpress.com/2024/10/22/tone-it-down-can-ai-really-get-your-brand-voices-vibe/",
		"https://pallavighxsh.wordpress.com/2024/07/08/on-generative-ai/",
	})
}

// bindEnvironmentVariables sets up flexible environment variable binding
func bindEnvironmentVariables() {
	// Local LLM endpoint - support multiple formats
	bindEnvKeys("llm.base_url", []string{
		"CLOUT_LLM_BASE_URL",
		"LLAMA_SERVER_URL",
		"OPENAI_BASE_URL",
	})

	bindEnvKeys("llm.model", []string{
		"CLOUT_LLM_MODEL",
		"LLAMA_MODEL",
	})

	bindEnvKeys("llm.api_key", []string{
		"CLOUT_LLM_API_KEY",
		"OPENAI_API_KEY",
	})

	// Google Custom Search - support multiple formats
	bindEnvKeys("search.providers.google.api_key", []string{
		"GOOGLE_CUSTOM_SEARCH_API_KEY",
		"GOOGLE_CSE_API_KEY",
	})

	bindEnvKeys("search.providers.google.search_id", []string{
		"GOOGLE_CUSTOM_SEARCH_ID",
		"GOOGLE_CSE_ID",
	})

	// SerpAPI
	bindEnvKeys("search.providers.serpapi.api_key", []string{
		"SERPAPI_API_KEY",
		"SERPAPI_KEY",
	})

	// General settings
	bindEnvKeys("app.debug", []string{
		"DEBUG",
		"CLOUT_DEBUG",
	})

	bindEnvKeys("search.provider", []string{
		"SEARCH_PROVIDER",
	})

	bindEnvKeys("output.file", []string{
		"CLOUT_OUTPUT_FILE",
	})
}

// bindEnvKeys binds the first found environment variable to a viper key
func bindEnvKeys(viperKey string, envKeys []string) {
	for _, envKey := range envKeys {
		if value := os.Getenv(envKey); value != "" {
			viper.Set(viperKey, value)
			return
		}
	}
}

// postProcessConfig applies post-processing to configuration values
func postProcessConfig(config *Config) error {
	if config.Output.File != "" {
		config.Output.File = expandPath(config.Output.File)
	}

	durations := map[string]string{
		"llm.timeout": config.LLM.Timeout,
		"search.providers.duckduckgo.rate_limit": config.Search.Providers.DuckDuckGo.RateLimit,
	}

	for key, duration := range durations {
		if duration != "" {
			if _, err := time.ParseDuration(duration); err != nil {
				return fmt.Errorf("invalid duration for %s: %s", key, duration)
			}
		}
	}

	return nil
}

// expandPath expands ~ and environment variables in paths
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return os.ExpandEnv(path)
}

// validateConfig ensures required configuration is present. A missing search
// credential is deliberately NOT an error here: the enrichment step degrades
// to an empty result when the selected provider has no credential.
func validateConfig(config *Config) error {
	var errors []string

	if config.LLM.Model == "" {
		errors = append(errors, "Generation model is required. Set CLOUT_LLM_MODEL environment variable or llm.model in config file to the model name your llama-server exposes.")
	}

	if config.LLM.BaseURL == "" {
		errors = append(errors, "LLM base URL is required. Set CLOUT_LLM_BASE_URL or llm.base_url in config file.")
	} else if u, err := url.Parse(config.LLM.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		errors = append(errors, fmt.Sprintf("LLM base URL must be an http(s) URL, got: %s", config.LLM.BaseURL))
	}

	switch config.Search.Provider {
	case "serpapi", "google", "duckduckgo", "mock", "":
	default:
		errors = append(errors, fmt.Sprintf("Unknown search provider: %s. Supported: serpapi, google, duckduckgo, mock", config.Search.Provider))
	}

	if config.Search.MaxResults <= 0 {
		errors = append(errors, "search.max_results must be positive")
	}

	if config.Output.File == "" {
		errors = append(errors, "output.file must not be empty")
	}

	if len(config.Sources) == 0 {
		errors = append(errors, "at least one source URL is required (sources in config file)")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration errors:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// SearchProviderSettings returns the credential map used by the search
// provider factory for the configured provider.
func (c *Config) SearchProviderSettings() map[string]string {
	switch c.Search.Provider {
	case "google":
		return map[string]string{
			"api_key":   c.Search.Providers.Google.APIKey,
			"search_id": c.Search.Providers.Google.SearchID,
		}
	case "serpapi":
		return map[string]string{
			"api_key": c.Search.Providers.SerpAPI.APIKey,
		}
	default:
		return map[string]string{}
	}
}

// HasSearchCredential reports whether the configured provider can actually
// run a search. DuckDuckGo and the mock need no credential.
func (c *Config) HasSearchCredential() bool {
	switch c.Search.Provider {
	case "serpapi":
		return isValidAPIKey(c.Search.Providers.SerpAPI.APIKey)
	case "google":
		return isValidAPIKey(c.Search.Providers.Google.APIKey) && isValidSearchID(c.Search.Providers.Google.SearchID)
	case "duckduckgo", "mock":
		return true
	default:
		return false
	}
}

// isValidAPIKey checks if an API key is valid (not empty and not a placeholder)
func isValidAPIKey(apiKey string) bool {
	if apiKey == "" {
		return false
	}

	// Check for common placeholder values
	placeholders := []string{
		"your-api-key", "your-google-key", "your-google-api-key", "your-serpapi-key",
		"YOUR_API_KEY", "PLACEHOLDER", "TODO", "CHANGE_ME",
	}

	for _, placeholder := range placeholders {
		if apiKey == placeholder {
			return false
		}
	}

	return true
}

// isValidSearchID checks if a search ID is valid (not empty and not a placeholder)
func isValidSearchID(searchID string) bool {
	if searchID == "" {
		return false
	}

	placeholders := []string{
		"your-search-engine-id", "your-search-id", "your-cse-id",
		"YOUR_SEARCH_ID", "PLACEHOLDER", "TODO", "CHANGE_ME",
	}

	for _, placeholder := range placeholders {
		if searchID == placeholder {
			return false
		}
	}

	return true
}

// Reset clears the global configuration (useful for testing)
func Reset() {
	globalConfig = nil
	viper.Reset()
}
