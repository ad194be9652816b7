package config

import (
	"time"

	"github.com/spf13/viper"
)

// Config stores all configuration for the application.
type Config struct {
	ServerPort string `mapstructure:"SERVER_PORT"`
	LogLevel   string `mapstructure:"LOG_LEVEL"`
	LogFormat  string `mapstructure:"LOG_FORMAT"`

	DatasetDir      string `mapstructure:"DATASET_DIR"`
	SubsetOutputDir string `mapstructure:"SUBSET_OUTPUT_DIR"`

	RedisAddr              string `mapstructure:"REDIS_ADDR"`
	RedisPassword          string `mapstructure:"REDIS_PASSWORD"`
	RedisDB                int    `mapstructure:"REDIS_DB"`
	ChecklistCacheTTLHours int    `mapstructure:"CHECKLIST_CACHE_TTL_HOURS"`

	PostgresURL string `mapstructure:"POSTGRES_URL"`

	POSTagger   string `mapstructure:"POS_TAGGER"`
	Tokenizer   string `mapstructure:"TOKENIZER"`
	TokenBudget int    `mapstructure:"TOKEN_BUDGET"`

	Interrogator               string `mapstructure:"INTERROGATOR"`
	OllamaHost                 string `mapstructure:"OLLAMA_HOST"`
	InterrogatorModel          string `mapstructure:"INTERROGATOR_MODEL"`
	InterrogatorTimeoutSeconds int    `mapstructure:"INTERROGATOR_TIMEOUT_SECONDS"`
	InterrogateWorkers         int    `mapstructure:"INTERROGATE_WORKERS"`
}

// ChecklistCacheTTL is the lifetime of a cached known-feature checklist set.
func (c *Config) ChecklistCacheTTL() time.Duration {
	return time.Duration(c.ChecklistCacheTTLHours) * time.Hour
}

// InterrogatorTimeout bounds a single interrogation request.
func (c *Config) InterrogatorTimeout() time.Duration {
	return time.Duration(c.InterrogatorTimeoutSeconds) * time.Second
}

// Load reads configuration from an optional .env file and the environment.
func Load() (*Config, error) {
	return LoadFile(".env")
}

// LoadFile is Load with an explicit env file path.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	v.AutomaticEnv()

	// A missing file is fine; everything can come from the environment.
	_ = v.ReadInConfig()

	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("DATASET_DIR", "")
	v.SetDefault("SUBSET_OUTPUT_DIR", "./lora_subsets")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CHECKLIST_CACHE_TTL_HOURS", 24)
	v.SetDefault("POSTGRES_URL", "")
	v.SetDefault("POS_TAGGER", "prose")
	v.SetDefault("TOKENIZER", "tiktoken")
	v.SetDefault("TOKEN_BUDGET", 75)
	v.SetDefault("INTERROGATOR", "txt")
	v.SetDefault("OLLAMA_HOST", "http://localhost:11434")
	v.SetDefault("INTERROGATOR_MODEL", "llava")
	v.SetDefault("INTERROGATOR_TIMEOUT_SECONDS", 120)
	v.SetDefault("INTERROGATE_WORKERS", 2)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
