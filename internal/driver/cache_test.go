package driver

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docprint/internal/codec"
	"docprint/internal/printer"
)

func TestCacheKey_DependsOnSettings(t *testing.T) {
	data := []byte(groupJSON)
	base := PrintOptions{Print: narrow()}
	key := cacheKey(data, codec.FormatJSON, base)

	assert.Equal(t, key, cacheKey(data, codec.FormatJSON, base))
	assert.NotEqual(t, key, cacheKey([]byte(`["x"]`), codec.FormatJSON, base))
	assert.NotEqual(t, key, cacheKey(data, codec.FormatYAML, base))

	wide := base
	wide.Print.PrintWidth = 80
	assert.NotEqual(t, key, cacheKey(data, codec.FormatJSON, wide))

	queried := base
	queried.Decode.Query = ".doc"
	assert.NotEqual(t, key, cacheKey(data, codec.FormatJSON, queried))
}

func TestCache_RoundTrip(t *testing.T) {
	cache, err := NewCache(t.TempDir())
	require.NoError(t, err)

	key := cacheKey([]byte(groupJSON), codec.FormatJSON, PrintOptions{})
	_, ok, err := cache.get(key)
	require.NoError(t, err)
	assert.False(t, ok)

	want := printer.Result{Formatted: "foo bar", CursorNode: &printer.CursorNode{Start: 4, Text: "bar"}}
	require.NoError(t, cache.put(key, want))

	got, ok, err := cache.get(key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, got)

	require.NoError(t, cache.Clear())
	_, ok, err = cache.get(key)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCache_CorruptEntry(t *testing.T) {
	cache, err := NewCache(t.TempDir())
	require.NoError(t, err)
	key := cacheKey([]byte("x"), codec.FormatJSON, PrintOptions{})
	path := cache.pathFor(key)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte{0xc1}, 0o644))

	_, ok, err := cache.get(key)
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestOpenCache_UsesXDGCacheHome(t *testing.T) {
	base := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", base)
	cache, err := OpenCache("docprint")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "docprint"), cache.Dir())
}

func TestRun_UsesCache(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "a.json")
	writeFile(t, input, groupJSON)
	cache, err := NewCache(filepath.Join(dir, "cache"))
	require.NoError(t, err)

	opts := PrintOptions{Print: narrow(), Mode: ModeStdout, Cache: cache}
	first, err := Run(context.Background(), []string{input}, opts)
	require.NoError(t, err)
	require.Len(t, first.Results, 1)
	assert.False(t, first.Results[0].Cached)

	second, err := Run(context.Background(), []string{input}, opts)
	require.NoError(t, err)
	require.Len(t, second.Results, 1)
	assert.True(t, second.Results[0].Cached)
	assert.Equal(t, "foo\nbar", string(second.Results[0].Formatted))
	for _, stage := range second.Timing.Stages {
		assert.NotContains(t, stage.Name, "print ", "cached file must not be printed again")
	}
}
