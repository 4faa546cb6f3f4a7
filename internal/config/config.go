package config

import (
	"os"
	"regexp"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Strategy names accepted for parser selection.
const (
	StrategyScraping = "scraping"
	StrategyGemini   = "gemini"
	StrategyOllama   = "ollama"
)

// Config represents the application configuration
type Config struct {
	Server struct {
		Port         int           `yaml:"port"`
		Host         string        `yaml:"host"`
		ReadTimeout  time.Duration `yaml:"read_timeout"`
		WriteTimeout time.Duration `yaml:"write_timeout"`
		IdleTimeout  time.Duration `yaml:"idle_timeout"`
	} `yaml:"server"`

	Upstream struct {
		BaseURL        string        `yaml:"base_url"`
		DetailsURL     string        `yaml:"details_url"`
		RequestTimeout time.Duration `yaml:"request_timeout"`
		RateLimit      int           `yaml:"rate_limit"` // requests per minute
		PlaceCacheSize int           `yaml:"place_cache_size"`
	} `yaml:"upstream"`

	Parser struct {
		Strategy string `yaml:"strategy"`
	} `yaml:"parser"`

	Gemini struct {
		APIKey      string        `yaml:"api_key"`
		Model       string        `yaml:"model"`
		Timeout     time.Duration `yaml:"timeout"`
		MaxAttempts int           `yaml:"max_attempts"`
		BaseDelay   time.Duration `yaml:"base_delay"`
		MaxDelay    time.Duration `yaml:"max_delay"`
	} `yaml:"gemini"`

	Ollama struct {
		BaseURL     string        `yaml:"base_url"`
		Model       string        `yaml:"model"`
		Timeout     time.Duration `yaml:"timeout"`
		Concurrency int           `yaml:"concurrency"`
		MaxAttempts int           `yaml:"max_attempts"`
		BaseDelay   time.Duration `yaml:"base_delay"`
		MaxDelay    time.Duration `yaml:"max_delay"`
	} `yaml:"ollama"`

	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"logging"`
}

// expandEnvVars expands environment variables in a string using ${VAR} syntax
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match
	})
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	// Load .env file if it exists (ignore errors if file doesn't exist)
	_ = godotenv.Load()

	config := &Config{}

	// Set defaults
	config.Server.Port = 9000
	config.Server.Host = "0.0.0.0"
	config.Server.ReadTimeout = 30 * time.Second
	config.Server.WriteTimeout = 30 * time.Second
	config.Server.IdleTimeout = 60 * time.Second

	config.Upstream.BaseURL = "https://www.tnstc.in/OTRSOnline/jqreq.do?"
	config.Upstream.DetailsURL = "https://www.tnstc.in/OTRSOnline/advanceNewBooking.do"
	config.Upstream.RequestTimeout = 30 * time.Second
	config.Upstream.RateLimit = 120
	config.Upstream.PlaceCacheSize = 128

	config.Parser.Strategy = StrategyScraping

	config.Gemini.Model = "gemini-2.5-flash"
	config.Gemini.Timeout = 120 * time.Second
	config.Gemini.MaxAttempts = 5
	config.Gemini.BaseDelay = 2 * time.Second
	config.Gemini.MaxDelay = 60 * time.Second

	config.Ollama.BaseURL = "http://localhost:11434"
	config.Ollama.Model = "llama3:8b"
	config.Ollama.Timeout = 120 * time.Second
	config.Ollama.Concurrency = 5
	config.Ollama.MaxAttempts = 3
	config.Ollama.BaseDelay = 2 * time.Second
	config.Ollama.MaxDelay = 30 * time.Second

	config.Logging.Level = "info"
	config.Logging.Format = "json"

	// Load from YAML file if it exists
	if configPath != "" {
		if data, err := os.ReadFile(configPath); err == nil {
			yamlContent := expandEnvVars(string(data))
			if err := yaml.Unmarshal([]byte(yamlContent), config); err != nil {
				return nil, err
			}
		}
	}

	// Override with environment variables
	config.loadFromEnv()

	return config, nil
}

// loadFromEnv loads configuration from environment variables
func (c *Config) loadFromEnv() {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}

	if host := os.Getenv("HOST"); host != "" {
		c.Server.Host = host
	}

	if baseURL := os.Getenv("TNSTC_BASE_URL"); baseURL != "" {
		c.Upstream.BaseURL = baseURL
	}

	if detailsURL := os.Getenv("TNSTC_DETAILS_URL"); detailsURL != "" {
		c.Upstream.DetailsURL = detailsURL
	}

	if strategy := os.Getenv("PARSER_STRATEGY"); strategy != "" {
		c.Parser.Strategy = strategy
	}

	if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" {
		c.Gemini.APIKey = apiKey
	}

	if model := os.Getenv("GEMINI_MODEL"); model != "" {
		c.Gemini.Model = model
	}

	if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
		c.Ollama.BaseURL = baseURL
	}

	if model := os.Getenv("OLLAMA_MODEL"); model != "" {
		c.Ollama.Model = model
	}

	if limit := os.Getenv("OLLAMA_CONCURRENCY_LIMIT"); limit != "" {
		if n, err := strconv.Atoi(limit); err == nil && n > 0 {
			c.Ollama.Concurrency = n
		}
	}

	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	if logFormat := os.Getenv("LOG_FORMAT"); logFormat != "" {
		c.Logging.Format = logFormat
	}
}
