package corevm

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigDefaults(t *testing.T) {
	c := NewConfig()
	assert.Equal(t, 1024, c.GetInt("heap.initial_pool_size"))
	assert.Equal(t, 128, c.GetInt("heap.small_block_class_max"))
	assert.Equal(t, 10000, c.GetInt("eval.max_depth"))
	assert.False(t, c.GetBool("debug.on_error"))
	assert.False(t, c.GetBool("debug.coverage"))
	assert.Equal(t, 4096, c.GetInt("port.max_output"))
}

func TestConfigYAMLRoundTrip(t *testing.T) {
	c := NewConfig()
	c.SetBool("debug.on_error", true)
	c.SetInt("eval.max_depth", 500)

	data, err := c.WriteYAML()
	require.NoError(t, err)

	c2 := NewConfig()
	require.NoError(t, c2.LoadYAML(data))
	assert.True(t, c2.GetBool("debug.on_error"))
	assert.Equal(t, 500, c2.GetInt("eval.max_depth"))
}

func TestConfigLoadYAMLRejectsUnknownKey(t *testing.T) {
	c := NewConfig()
	err := c.LoadYAML([]byte("not.a.real.setting: true\n"))
	require.Error(t, err)
}

func TestConfigLoadYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "corevm.yaml")
	require.NoError(t, os.WriteFile(path, []byte("debug.coverage: true\n"), 0o644))

	c := NewConfig()
	require.NoError(t, c.LoadYAMLFile(path))
	assert.True(t, c.GetBool("debug.coverage"))
}

func TestConfigLoadYAMLTypeMismatch(t *testing.T) {
	c := NewConfig()
	err := c.LoadYAML([]byte("eval.max_depth: true\n"))
	require.Error(t, err)
}
