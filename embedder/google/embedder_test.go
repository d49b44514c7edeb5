package google

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/w-h-a/ragchat/embedder"
)

func TestNewEmbedder_RequiresKey(t *testing.T) {
	_, err := NewEmbedder()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api key")
}

func TestNewEmbedder_DefaultModel(t *testing.T) {
	e, err := NewEmbedder(embedder.WithApiKey("test-key"))
	require.NoError(t, err)

	g := e.(*googleEmbedder)
	assert.Equal(t, defaultModel, g.options.Model)
	assert.NoError(t, g.Close())
}
