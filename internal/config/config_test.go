package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetConfigValue(t *testing.T) {
	t.Run("flag takes precedence", func(t *testing.T) {
		t.Setenv("TEST_KEY", "from-env")
		got := getConfigValue("from-flag", "TEST_KEY", "default")
		assert.Equal(t, "from-flag", got)
	})

	t.Run("env var when no flag", func(t *testing.T) {
		t.Setenv("TEST_KEY", "from-env")
		got := getConfigValue("", "TEST_KEY", "default")
		assert.Equal(t, "from-env", got)
	})

	t.Run("default when nothing set", func(t *testing.T) {
		got := getConfigValue("", "TEST_KEY_UNSET", "default")
		assert.Equal(t, "default", got)
	})
}

func TestGetIntConfigValue(t *testing.T) {
	t.Run("parses env var", func(t *testing.T) {
		t.Setenv("TEST_INT", "24")
		assert.Equal(t, 24, getIntConfigValue("", "TEST_INT", 12))
	})

	t.Run("default on missing", func(t *testing.T) {
		assert.Equal(t, 12, getIntConfigValue("", "TEST_INT_UNSET", 12))
	})

	t.Run("default on garbage", func(t *testing.T) {
		t.Setenv("TEST_INT", "not-a-number")
		assert.Equal(t, 12, getIntConfigValue("", "TEST_INT", 12))
	})
}

func TestExpandPath(t *testing.T) {
	homeDir, err := os.UserHomeDir()
	require.NoError(t, err)

	t.Run("expands tilde", func(t *testing.T) {
		got, err := expandPath("~/inkshelf/data", "")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(homeDir, "inkshelf", "data"), got)
	})

	t.Run("empty uses default", func(t *testing.T) {
		got, err := expandPath("", "/srv/default")
		require.NoError(t, err)
		assert.Equal(t, "/srv/default", got)
	})

	t.Run("absolute path unchanged", func(t *testing.T) {
		got, err := expandPath("/var/lib/inkshelf", "")
		require.NoError(t, err)
		assert.Equal(t, "/var/lib/inkshelf", got)
	})
}

func TestLoadEnvFile(t *testing.T) {
	t.Run("loads values", func(t *testing.T) {
		dir := t.TempDir()
		envPath := filepath.Join(dir, ".env")
		content := "# comment\nINKSHELF_TEST_A=hello\nINKSHELF_TEST_B=\"quoted\"\n\n"
		require.NoError(t, os.WriteFile(envPath, []byte(content), 0o600))

		t.Setenv("INKSHELF_TEST_A", "")
		os.Unsetenv("INKSHELF_TEST_A")
		os.Unsetenv("INKSHELF_TEST_B")

		require.NoError(t, loadEnvFile(envPath))
		assert.Equal(t, "hello", os.Getenv("INKSHELF_TEST_A"))
		assert.Equal(t, "quoted", os.Getenv("INKSHELF_TEST_B"))
	})

	t.Run("env vars win over file", func(t *testing.T) {
		dir := t.TempDir()
		envPath := filepath.Join(dir, ".env")
		require.NoError(t, os.WriteFile(envPath, []byte("INKSHELF_TEST_C=from-file\n"), 0o600))

		t.Setenv("INKSHELF_TEST_C", "from-env")
		require.NoError(t, loadEnvFile(envPath))
		assert.Equal(t, "from-env", os.Getenv("INKSHELF_TEST_C"))
	})

	t.Run("bad line errors", func(t *testing.T) {
		dir := t.TempDir()
		envPath := filepath.Join(dir, ".env")
		require.NoError(t, os.WriteFile(envPath, []byte("NOT_A_PAIR\n"), 0o600))
		assert.Error(t, loadEnvFile(envPath))
	})

	t.Run("missing file errors", func(t *testing.T) {
		assert.Error(t, loadEnvFile("/nonexistent/.env"))
	})
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			App:    AppConfig{Environment: "development"},
			Logger: LoggerConfig{Level: "info"},
			Data:   DataConfig{BasePath: "/tmp/db"},
			Assets: AssetConfig{BasePath: "/tmp/assets", PublicBaseURL: "http://localhost:8080"},
			Server: ServerConfig{Port: "8080"},
			Catalog: CatalogConfig{
				PageSize: 12,
			},
		}
	}

	t.Run("valid config passes", func(t *testing.T) {
		assert.NoError(t, valid().Validate())
	})

	t.Run("bad environment", func(t *testing.T) {
		cfg := valid()
		cfg.App.Environment = "testing"
		assert.Error(t, cfg.Validate())
	})

	t.Run("bad log level", func(t *testing.T) {
		cfg := valid()
		cfg.Logger.Level = "verbose"
		assert.Error(t, cfg.Validate())
	})

	t.Run("empty data path", func(t *testing.T) {
		cfg := valid()
		cfg.Data.BasePath = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("zero page size", func(t *testing.T) {
		cfg := valid()
		cfg.Catalog.PageSize = 0
		assert.Error(t, cfg.Validate())
	})
}
