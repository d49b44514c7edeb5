package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const FileName = "ragchat.yaml"

// Config is both the kong flag set and the yaml file layout. A nested key
// such as store.provider in yaml resolves the flag --store-provider.
type Config struct {
	LogLevel string `help:"Log level (debug, info, warn, error)" enum:"debug,info,warn,error" default:"info" env:"RAGCHAT_LOG_LEVEL" yaml:"log-level"`

	Pipeline  PipelineConfig  `embed:"" yaml:"pipeline"`
	Scraper   ScraperConfig   `embed:"" prefix:"scraper-" yaml:"scraper"`
	Store     StoreConfig     `embed:"" prefix:"store-" yaml:"store"`
	Embedder  EmbedderConfig  `embed:"" prefix:"embedder-" yaml:"embedder"`
	Generator GeneratorConfig `embed:"" prefix:"generator-" yaml:"generator"`
	Keys      KeysConfig      `embed:"" yaml:"-"`
}

type PipelineConfig struct {
	SourceURL       string        `help:"Page to scrape country facts from" default:"https://www.scrapethissite.com/pages/simple/" env:"RAGCHAT_SOURCE_URL" yaml:"source-url"`
	Collection      string        `help:"Name of the document collection" default:"country_data" env:"RAGCHAT_COLLECTION" yaml:"collection"`
	Results         int           `help:"Number of documents retrieved per question" default:"5" yaml:"results"`
	Timeout         time.Duration `help:"Timeout for one refresh or one answer" default:"60s" yaml:"timeout"`
	GeneralFallback bool          `help:"Answer from general knowledge when nothing is retrieved" default:"true" negatable:"" yaml:"general-fallback"`
}

type ScraperConfig struct {
	Timeout   time.Duration `help:"Timeout for fetching the source page" default:"30s" yaml:"timeout"`
	UserAgent string        `help:"User agent sent to the source" default:"ragchat/1.0" yaml:"user-agent"`
}

type StoreConfig struct {
	Provider string  `help:"Vector store (memory, postgres, qdrant)" enum:"memory,postgres,qdrant" default:"memory" env:"RAGCHAT_STORE" yaml:"provider"`
	Location string  `help:"Postgres dsn or qdrant base url" default:"" env:"RAGCHAT_STORE_LOCATION" yaml:"location"`
	MinScore float64 `help:"Drop matches scoring below this similarity" default:"-2" yaml:"min-score"`
}

type EmbedderConfig struct {
	Provider   string `help:"Embedding provider (hashing, openai, google)" enum:"hashing,openai,google" default:"hashing" env:"RAGCHAT_EMBEDDER" yaml:"provider"`
	Model      string `help:"Embedding model identifier" default:"" yaml:"model"`
	BaseURL    string `help:"Override the embedding api base url" default:"" yaml:"base-url"`
	Dimensions int    `help:"Embedding dimensions where the provider supports it" default:"0" yaml:"dimensions"`
}

type GeneratorConfig struct {
	Provider     string `help:"Generation provider (openai, anthropic, google)" enum:"openai,anthropic,google" default:"google" env:"RAGCHAT_GENERATOR" yaml:"provider"`
	Model        string `help:"Generation model identifier" default:"" yaml:"model"`
	BaseURL      string `help:"Override the generation api base url" default:"" yaml:"base-url"`
	MaxTokens    int    `help:"Maximum tokens per answer" default:"1024" yaml:"max-tokens"`
	MaxAttempts  int    `help:"Attempts per answer for rate limits and server errors" default:"3" yaml:"max-attempts"`
	PromptPrefix string `help:"Text prepended to every prompt" default:"" yaml:"prompt-prefix"`
}

// KeysConfig holds credentials. They are never written by Save.
type KeysConfig struct {
	OpenAIKey    string `name:"openai-api-key" help:"OpenAI api key" env:"OPENAI_API_KEY" yaml:"-"`
	AnthropicKey string `name:"anthropic-api-key" help:"Anthropic api key" env:"ANTHROPIC_API_KEY" yaml:"-"`
	GoogleKey    string `name:"google-api-key" help:"Google api key" env:"GOOGLE_API_KEY" yaml:"-"`
	QdrantKey    string `name:"qdrant-api-key" help:"Qdrant api key" env:"QDRANT_API_KEY" yaml:"-"`
}

// Key returns the credential for a provider name.
func (k KeysConfig) Key(provider string) string {
	switch provider {
	case "openai":
		return k.OpenAIKey
	case "anthropic":
		return k.AnthropicKey
	case "google":
		return k.GoogleKey
	case "qdrant":
		return k.QdrantKey
	default:
		return ""
	}
}

// Load reads a config file. Fields absent from the file keep their zero
// value.
func Load(path string) (Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Save writes cfg to path, creating directories as needed. Credentials are
// left out.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o644)
}

// Paths lists the config files consulted, first match wins.
func Paths() []string {
	paths := []string{FileName}

	if userPath, err := UserPath(); err == nil {
		paths = append(paths, userPath)
	}

	return paths
}

func UserPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "ragchat", "config.yaml"), nil
}

// Exists reports whether path names a readable file.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, os.ErrNotExist)
}
