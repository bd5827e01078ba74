package configs

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"NinesolChat/app/clients"
)

// ConfigError is fatal: the process must refuse to become interactive rather
// than fail on the first user question.
type ConfigError struct {
	Err error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration: %v", e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

type Config struct {
	Chatbot   ChatbotConfig    `yaml:"chatbot" validate:"required"`
	Embedding EmbeddingConfig  `yaml:"embedding" validate:"required"`
	Retrieval RetrievalConfig  `yaml:"retrieval" validate:"required"`
	Ingest    IngestConfig     `yaml:"ingest"`
	Storage   StorageConfig    `yaml:"storage"`
	Clients   []clients.Config `yaml:"clients,omitempty"`

	Secrets Secrets `yaml:"-"`
}

type ChatbotConfig struct {
	BaseURL string `yaml:"base_url" validate:"required,url"`
	Model   string `yaml:"model" validate:"required"`
	// Temperature and max_tokens mirror the provider defaults this bot was
	// tuned with (1.0, unbounded). High sampling variance pulls against the
	// answer-only-from-context instruction, so both stay tunable here.
	Temperature float64 `yaml:"temperature" validate:"gte=0,lte=2"`
	MaxTokens   int     `yaml:"max_tokens" validate:"gte=0"`
	MaxRetries  int     `yaml:"max_retries" validate:"gte=0,lte=10"`
}

type EmbeddingConfig struct {
	BaseURL string `yaml:"base_url" validate:"required,url"`
	RepoID  string `yaml:"repo_id" validate:"required"`
}

type RetrievalConfig struct {
	Collection string `yaml:"collection" validate:"required"`
	K          int    `yaml:"k" validate:"gt=0"`
	FetchK     int    `yaml:"fetch_k" validate:"gt=0,gtefield=K"`
}

type IngestConfig struct {
	Folder    string `yaml:"folder"`
	ChunkSize int    `yaml:"chunk_size" validate:"gte=0"`
	Overlap   int    `yaml:"overlap" validate:"gte=0,ltfield=ChunkSize"`
}

type StorageConfig struct {
	Path string `yaml:"path"`
}

// Secrets are environment-sourced, never part of the config file. All four
// are required up front.
type Secrets struct {
	GroqAPIKey   string `validate:"required"`
	QdrantURL    string `validate:"required,url"`
	QdrantAPIKey string `validate:"required"`
	HFAPIToken   string `validate:"required"`
}

// Load reads the YAML config (with environment expansion), fills defaults,
// validates it and resolves the required secrets from the environment. A .env
// file next to the binary is honored. Any problem is a fatal ConfigError.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{Err: fmt.Errorf("read config file: %w", err)}
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, &ConfigError{Err: fmt.Errorf("parse YAML: %w", err)}
	}

	cfg.applyDefaults()

	cfg.Secrets = Secrets{
		GroqAPIKey:   os.Getenv("GROQ_API_KEY"),
		QdrantURL:    os.Getenv("QDRANT_URL"),
		QdrantAPIKey: os.Getenv("QDRANT_API_KEY"),
		HFAPIToken:   os.Getenv("HUGGINGFACEHUB_API_TOKEN"),
	}

	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, &ConfigError{Err: fmt.Errorf("invalid config: %w", err)}
	}
	if err := validate.Struct(&cfg.Secrets); err != nil {
		return nil, &ConfigError{Err: fmt.Errorf("missing or invalid secrets: %w", err)}
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Chatbot.BaseURL == "" {
		c.Chatbot.BaseURL = "https://api.groq.com/openai"
	}
	if c.Chatbot.Model == "" {
		c.Chatbot.Model = "openai/gpt-oss-120b"
	}
	if c.Chatbot.Temperature == 0 {
		c.Chatbot.Temperature = 1.0
	}
	if c.Chatbot.MaxRetries == 0 {
		c.Chatbot.MaxRetries = 2
	}
	if c.Embedding.BaseURL == "" {
		c.Embedding.BaseURL = "https://router.huggingface.co/hf-inference"
	}
	if c.Embedding.RepoID == "" {
		c.Embedding.RepoID = "sentence-transformers/all-mpnet-base-v2"
	}
	if c.Retrieval.Collection == "" {
		c.Retrieval.Collection = "Ninesol_Technologies_Knowledge_Base"
	}
	if c.Retrieval.K == 0 {
		c.Retrieval.K = 3
	}
	if c.Retrieval.FetchK == 0 {
		c.Retrieval.FetchK = 10
	}
	if c.Ingest.Folder == "" {
		c.Ingest.Folder = "./knowledge"
	}
	if c.Ingest.ChunkSize == 0 {
		c.Ingest.ChunkSize = 500
	}
	if c.Ingest.Overlap == 0 {
		c.Ingest.Overlap = 100
	}
	if c.Storage.Path == "" {
		c.Storage.Path = "data/chat.db"
	}
}
