package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	LLM       LLMConfig       `yaml:"llm"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Answer    AnswerConfig    `yaml:"answer"`
	TurnLog   TurnLogConfig   `yaml:"turnLog"`
	Artifacts ArtifactsConfig `yaml:"artifacts"`
	Offline   bool            `yaml:"offline"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address      string        `yaml:"address"`
	ReadTimeout  time.Duration `yaml:"readTimeout"`
	WriteTimeout time.Duration `yaml:"writeTimeout"`
	Retry        RetryConfig   `yaml:"retry"`
}

// RetryConfig re-runs POST handlers on transient server errors, smoothing
// over short provider outages without pushing retries onto the client.
type RetryConfig struct {
	Enabled     bool          `yaml:"enabled"`
	MaxAttempts int           `yaml:"maxAttempts"`
	BaseBackoff time.Duration `yaml:"baseBackoff"`
	Exclude     []string      `yaml:"exclude"`
}

// LLMConfig contains ChatGPT/OpenAI settings.
type LLMConfig struct {
	APIKey         string        `yaml:"apiKey"`
	BaseURL        string        `yaml:"baseUrl"`
	Model          string        `yaml:"model"`
	EmbeddingModel string        `yaml:"embeddingModel"`
	Temperature    float32       `yaml:"temperature"`
	Timeout        time.Duration `yaml:"timeout"`
}

// RetrievalConfig drives the vector retrieval and gating policy.
type RetrievalConfig struct {
	TopK            int            `yaml:"topK"`
	ScoreThreshold  float64        `yaml:"scoreThreshold"`
	EmbeddingDim    int            `yaml:"embeddingDim"`
	IndexPath       string         `yaml:"indexPath"`
	MetaPath        string         `yaml:"metaPath"`
	OutOfScopeTerms []string       `yaml:"outOfScopeTerms"`
	Postgres        PostgresConfig `yaml:"postgres"`
}

// AnswerConfig controls generation and the answer cache.
type AnswerConfig struct {
	Prompt   string        `yaml:"prompt"`
	CacheTTL time.Duration `yaml:"cacheTtl"`
	Valkey   ValkeyConfig  `yaml:"valkey"`
}

// ValkeyConfig contains connection information for cache storage.
type ValkeyConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// TurnLogConfig selects the interaction log backend.
type TurnLogConfig struct {
	Path     string         `yaml:"path"`
	Postgres PostgresConfig `yaml:"postgres"`
}

// PostgresConfig contains DSN and pooling settings.
type PostgresConfig struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"maxConns"`
	MinConns int32  `yaml:"minConns"`
}

// ArtifactsConfig enables publishing index artifacts to object storage.
type ArtifactsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
}

// Load reads configuration from a YAML file and environment variables.
func Load() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("HTTP_RETRY_ENABLED"); v != "" {
		cfg.HTTP.Retry.Enabled = isTrue(v)
	}
	if v := os.Getenv("HTTP_RETRY_MAX_ATTEMPTS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.Retry.MaxAttempts = parsed
		}
	}
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("EMBEDDING_MODEL"); v != "" {
		cfg.LLM.EmbeddingModel = v
	}
	if v := os.Getenv("LLM_TEMPERATURE"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 32); err == nil {
			cfg.LLM.Temperature = float32(parsed)
		}
	}
	if v := os.Getenv("OPENAI_TIMEOUT"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.LLM.Timeout = time.Duration(parsed) * time.Second
		}
	}
	if v := os.Getenv("RETRIEVAL_TOPK"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Retrieval.TopK = parsed
		}
	}
	if v := os.Getenv("SCORE_THRESHOLD"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Retrieval.ScoreThreshold = parsed
		}
	}
	if v := os.Getenv("INDEX_PATH"); v != "" {
		cfg.Retrieval.IndexPath = v
	}
	if v := os.Getenv("META_PATH"); v != "" {
		cfg.Retrieval.MetaPath = v
	}
	if v := os.Getenv("OUT_OF_SCOPE_TERMS"); v != "" {
		var terms []string
		for _, term := range strings.Split(v, ",") {
			if term = strings.TrimSpace(term); term != "" {
				terms = append(terms, term)
			}
		}
		cfg.Retrieval.OutOfScopeTerms = terms
	}
	if v := os.Getenv("RETRIEVAL_POSTGRES_DSN"); v != "" {
		cfg.Retrieval.Postgres.DSN = v
	}
	if v := os.Getenv("ANSWER_PROMPT"); v != "" {
		cfg.Answer.Prompt = v
	}
	if v := os.Getenv("ANSWER_CACHE_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Answer.CacheTTL = parsed
		}
	}
	if v := os.Getenv("ANSWER_VALKEY_ENABLED"); v != "" {
		cfg.Answer.Valkey.Enabled = isTrue(v)
	}
	if v := os.Getenv("ANSWER_VALKEY_ADDR"); v != "" {
		cfg.Answer.Valkey.Addr = v
	}
	if v := os.Getenv("TURNLOG_PATH"); v != "" {
		cfg.TurnLog.Path = v
	}
	if v := os.Getenv("TURNLOG_POSTGRES_DSN"); v != "" {
		cfg.TurnLog.Postgres.DSN = v
	}
	if v := os.Getenv("ARTIFACTS_ENABLED"); v != "" {
		cfg.Artifacts.Enabled = isTrue(v)
	}
	if v := os.Getenv("ARTIFACTS_ENDPOINT"); v != "" {
		cfg.Artifacts.Endpoint = v
	}
	if v := os.Getenv("ARTIFACTS_ACCESS_KEY"); v != "" {
		cfg.Artifacts.AccessKey = v
	}
	if v := os.Getenv("ARTIFACTS_SECRET_KEY"); v != "" {
		cfg.Artifacts.SecretKey = v
	}
	if v := os.Getenv("ARTIFACTS_BUCKET"); v != "" {
		cfg.Artifacts.Bucket = v
	}
	if v := os.Getenv("OFFLINE"); v != "" {
		cfg.Offline = isTrue(v)
	}
}

func isTrue(v string) bool {
	return v == "1" || strings.EqualFold(v, "true")
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:      ":8080",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 30 * time.Second,
			Retry: RetryConfig{
				MaxAttempts: 3,
				BaseBackoff: 100 * time.Millisecond,
				Exclude:     []string{"/admin/reload"},
			},
		},
		LLM: LLMConfig{
			Model:          "gpt-4o-mini",
			EmbeddingModel: "text-embedding-3-small",
			Temperature:    0,
			Timeout:        60 * time.Second,
		},
		Retrieval: RetrievalConfig{
			TopK:           4,
			ScoreThreshold: 0.25,
			EmbeddingDim:   1536,
			IndexPath:      "data/index.bin",
			MetaPath:       "data/index_meta.json",
		},
		Answer: AnswerConfig{
			Prompt:   "Eres un asistente de soporte. Responde solo con la evidencia proporcionada; si la evidencia no cubre la pregunta, dilo claramente.",
			CacheTTL: 6 * time.Hour,
		},
		TurnLog: TurnLogConfig{
			Path: "data/turns.db",
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if c.HTTP.Retry.Enabled && c.HTTP.Retry.MaxAttempts < 2 {
		return errors.New("http.retry.maxAttempts must be at least 2 when retries are enabled")
	}
	if strings.TrimSpace(c.LLM.EmbeddingModel) == "" {
		return errors.New("llm.embeddingModel cannot be empty")
	}
	if c.Retrieval.TopK <= 0 {
		return errors.New("retrieval.topK must be positive")
	}
	if c.Retrieval.ScoreThreshold < 0 || c.Retrieval.ScoreThreshold > 1 {
		return errors.New("retrieval.scoreThreshold must be within [0,1]")
	}
	if c.Retrieval.EmbeddingDim <= 0 {
		return errors.New("retrieval.embeddingDim must be positive")
	}
	if strings.TrimSpace(c.Retrieval.IndexPath) == "" {
		return errors.New("retrieval.indexPath cannot be empty")
	}
	if strings.TrimSpace(c.Retrieval.MetaPath) == "" {
		return errors.New("retrieval.metaPath cannot be empty")
	}
	if c.Answer.CacheTTL < 0 {
		return errors.New("answer.cacheTtl cannot be negative")
	}
	if c.Answer.Valkey.Enabled && strings.TrimSpace(c.Answer.Valkey.Addr) == "" {
		return errors.New("answer.valkey.addr cannot be empty when the valkey cache is enabled")
	}
	if c.Artifacts.Enabled {
		if strings.TrimSpace(c.Artifacts.Endpoint) == "" {
			return errors.New("artifacts.endpoint cannot be empty when publishing is enabled")
		}
		if strings.TrimSpace(c.Artifacts.Bucket) == "" {
			return errors.New("artifacts.bucket cannot be empty when publishing is enabled")
		}
	}
	return nil
}
