package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, args []string, paths ...string) Config {
	t.Helper()

	var cfg Config
	parser, err := kong.New(&cfg, kong.Configuration(YAML, paths...))
	require.NoError(t, err)

	_, err = parser.Parse(args)
	require.NoError(t, err)

	return cfg
}

func TestDefaults(t *testing.T) {
	cfg := parse(t, nil)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "https://www.scrapethissite.com/pages/simple/", cfg.Pipeline.SourceURL)
	assert.Equal(t, "country_data", cfg.Pipeline.Collection)
	assert.Equal(t, 5, cfg.Pipeline.Results)
	assert.Equal(t, 60*time.Second, cfg.Pipeline.Timeout)
	assert.True(t, cfg.Pipeline.GeneralFallback)
	assert.Equal(t, "memory", cfg.Store.Provider)
	assert.Equal(t, "hashing", cfg.Embedder.Provider)
	assert.Equal(t, 3, cfg.Generator.MaxAttempts)
}

func TestYAML_Resolver(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(`
log-level: debug
pipeline:
  collection: countries
  results: 3
  timeout: 10s
  general-fallback: false
store:
  provider: qdrant
  location: http://localhost:6333
  min_score: 0.25
generator:
  provider: openai
  model: gpt-4o-mini
`), 0o644))

	cfg := parse(t, []string{"--generator-model", "gpt-4o"}, path)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "countries", cfg.Pipeline.Collection)
	assert.Equal(t, 3, cfg.Pipeline.Results)
	assert.Equal(t, 10*time.Second, cfg.Pipeline.Timeout)
	assert.False(t, cfg.Pipeline.GeneralFallback)
	assert.Equal(t, "qdrant", cfg.Store.Provider)
	assert.Equal(t, "http://localhost:6333", cfg.Store.Location)
	assert.InDelta(t, 0.25, cfg.Store.MinScore, 1e-9)
	assert.Equal(t, "openai", cfg.Generator.Provider)

	// flags win over the file
	assert.Equal(t, "gpt-4o", cfg.Generator.Model)
}

func TestYAML_MissingFile(t *testing.T) {
	cfg := parse(t, nil, filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Equal(t, "memory", cfg.Store.Provider)
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := parse(t, []string{"--store-provider", "postgres", "--openai-api-key", "sk-secret"})
	require.NoError(t, Save(path, cfg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.False(t, strings.Contains(string(data), "sk-secret"))

	loaded, err := Load(path)
	require.NoError(t, err)

	cfg.Keys = KeysConfig{}
	assert.Equal(t, cfg, loaded)

	// a saved file feeds back through the resolver unchanged
	again := parse(t, nil, path)
	again.Keys = KeysConfig{}
	assert.Equal(t, cfg, again)
}

func TestKeys_Key(t *testing.T) {
	keys := KeysConfig{OpenAIKey: "o", AnthropicKey: "a", GoogleKey: "g", QdrantKey: "q"}

	assert.Equal(t, "o", keys.Key("openai"))
	assert.Equal(t, "a", keys.Key("anthropic"))
	assert.Equal(t, "g", keys.Key("google"))
	assert.Equal(t, "q", keys.Key("qdrant"))
	assert.Empty(t, keys.Key("hashing"))
}
