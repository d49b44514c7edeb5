package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/w-h-a/ragchat"
	"github.com/w-h-a/ragchat/internal/config"
)

const countryPage = `<html><body>
<div class="country">
  <h3 class="country-name"> France </h3>
  <span class="country-capital">Paris</span>
  <span class="country-population">67000000</span>
  <span class="country-area">551695.0</span>
</div>
</body></html>`

func defaults(t *testing.T, args ...string) config.Config {
	t.Helper()

	var c config.Config
	parser, err := kong.New(&c)
	require.NoError(t, err)

	_, err = parser.Parse(args)
	require.NoError(t, err)

	c.Keys = config.KeysConfig{}

	return c
}

func TestFactory_Memory(t *testing.T) {
	cfg := defaults(t, "--generator-provider=openai")
	cfg.Keys.OpenAIKey = "sk-test"

	r, err := newFactory(cfg)(context.Background())
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, "country_data", r.Collection())

	n, err := r.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestFactory_MissingGeneratorKey(t *testing.T) {
	cfg := defaults(t, "--generator-provider=anthropic")

	_, err := newFactory(cfg)(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--anthropic-api-key")
}

func TestFactory_MissingEmbedderKey(t *testing.T) {
	cfg := defaults(t, "--embedder-provider=openai", "--generator-provider=openai")

	_, err := newFactory(cfg)(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "embedder")
}

func TestFactory_StoreNeedsLocation(t *testing.T) {
	for _, provider := range []string{"postgres", "qdrant"} {
		t.Run(provider, func(t *testing.T) {
			cfg := defaults(t, "--store-provider="+provider)

			_, err := newStore(cfg, nil, nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "--store-location")
		})
	}
}

func TestNewLogger(t *testing.T) {
	assert.True(t, newLogger("debug").Enabled(context.Background(), -4))
	assert.False(t, newLogger("error").Enabled(context.Background(), 0))
	assert.False(t, newLogger("bogus").Enabled(context.Background(), -4))
}

func TestFactory_ResetKeepsMemoryCollection(t *testing.T) {
	ctx := context.Background()

	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(countryPage))
	}))
	defer page.Close()

	cfg := defaults(t, "--generator-provider=openai", "--source-url="+page.URL)
	cfg.Keys.OpenAIKey = "sk-test"

	loader := ragchat.NewLoader(newFactory(cfg))
	defer loader.Reset()

	r, err := loader.Get(ctx)
	require.NoError(t, err)

	n, err := r.Refresh(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	require.NoError(t, loader.Reset())

	rebuilt, err := loader.Get(ctx)
	require.NoError(t, err)

	count, err := rebuilt.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestInit_WritesAndReadsBack(t *testing.T) {
	c := &cli{Config: defaults(t, "--store-provider=qdrant", "--store-location=http://localhost:6333")}
	c.Keys.GoogleKey = "secret"
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cmd := &initCmd{Path: path}
	require.NoError(t, cmd.Run(&app{ctx: context.Background(), cli: c}))

	saved, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "qdrant", saved.Store.Provider)
	assert.Empty(t, saved.Keys.GoogleKey)
	assert.Equal(t, "store=qdrant embedder=hashing generator=google collection=country_data source=https://www.scrapethissite.com/pages/simple/", summary(saved))

	assert.Error(t, cmd.Run(&app{ctx: context.Background(), cli: c}))
}
