package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_ValidConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "lucidboard.yml")

	validConfig := `version: "1.0"
listen: ":8080"
redis:
  addr: "redis.internal:6379"
  namespace: "team-a"
colsets:
  - id: 1
    name: "Retrospective"
    columns: ["Went Well", "To Improve", "Action Items"]
`
	err := os.WriteFile(configPath, []byte(validConfig), 0644)
	require.NoError(t, err)

	config, err := Load(configPath)
	require.NoError(t, err)
	assert.NotNil(t, config)
	assert.Equal(t, "1.0", config.Version)
	assert.Equal(t, ":8080", config.Listen)
	assert.Equal(t, "redis.internal:6379", config.Redis.Addr)
	assert.Equal(t, "team-a", config.Redis.Namespace)
	require.Len(t, config.Colsets, 1)
	assert.Equal(t, []string{"Went Well", "To Improve", "Action Items"}, config.Colsets[0].Columns)
}

func TestLoad_AppliesDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "lucidboard.yml")

	err := os.WriteFile(configPath, []byte("version: \"1.0\"\n"), 0644)
	require.NoError(t, err)

	config, err := Load(configPath)
	require.NoError(t, err)
	assert.Equal(t, ":3000", config.Listen)
	assert.Equal(t, "localhost:6379", config.Redis.Addr)
	assert.Equal(t, "default", config.Redis.Namespace)
	assert.Empty(t, config.Colsets)
}

func TestLoad_FileNotFound(t *testing.T) {
	config, err := Load("/nonexistent/lucidboard.yml")
	assert.Error(t, err)
	assert.Nil(t, config)
	assert.Contains(t, err.Error(), "failed to read config")
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "lucidboard.yml")

	invalidYAML := `version: "1.0"
colsets:
  - this is invalid
    yaml syntax
`
	err := os.WriteFile(configPath, []byte(invalidYAML), 0644)
	require.NoError(t, err)

	config, err := Load(configPath)
	assert.Error(t, err)
	assert.Nil(t, config)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestValidate_UnsupportedVersion(t *testing.T) {
	config := &LucidConfig{Version: "2.0"}

	err := config.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported version: 2.0")
}

func TestValidate_Colsets(t *testing.T) {
	t.Run("duplicate ids rejected", func(t *testing.T) {
		config := &LucidConfig{
			Version: "1.0",
			Colsets: []ColsetEntry{
				{ID: 1, Name: "First", Columns: []string{"A"}},
				{ID: 1, Name: "Second", Columns: []string{"B"}},
			},
		}

		err := config.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate colset id 1")
	})

	t.Run("missing name rejected", func(t *testing.T) {
		config := &LucidConfig{
			Version: "1.0",
			Colsets: []ColsetEntry{{ID: 1, Columns: []string{"A"}}},
		}

		err := config.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "name is required")
	})

	t.Run("empty column list rejected", func(t *testing.T) {
		config := &LucidConfig{
			Version: "1.0",
			Colsets: []ColsetEntry{{ID: 1, Name: "Empty"}},
		}

		err := config.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "at least one column is required")
	})
}
