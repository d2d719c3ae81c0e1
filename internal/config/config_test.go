package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadServerDefaults(t *testing.T) {
	for _, key := range []string{"HTTP_ADDRESS", "POSTGRES_URL", "KAFKA_BROKERS", "TOKEN_TTL", "CORS_ORIGINS"} {
		t.Setenv(key, "")
	}
	cfg := LoadServer()
	require.Equal(t, ":3001", cfg.HTTPAddress)
	require.Empty(t, cfg.PostgresURL)
	require.Empty(t, cfg.KafkaBrokers)
	require.Equal(t, 7*24*time.Hour, cfg.TokenTTL)
	require.Equal(t, []string{"http://localhost:5173"}, cfg.CORSOrigins)
	require.Equal(t, 25, cfg.EventsBatch)
}

func TestLoadServerOverrides(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", " a:9092, ,b:9092 ")
	t.Setenv("TOKEN_TTL", "2h")
	t.Setenv("EVENTS_BATCH_SIZE", "not-a-number")
	cfg := LoadServer()
	require.Equal(t, []string{"a:9092", "b:9092"}, cfg.KafkaBrokers)
	require.Equal(t, 2*time.Hour, cfg.TokenTTL)
	require.Equal(t, 25, cfg.EventsBatch)
}

func TestLoadClient(t *testing.T) {
	t.Setenv("LIFETRACK_API_URL", "https://example.test/api")
	t.Setenv("LIFETRACK_SYNC_DEBOUNCE", "250ms")
	cfg := LoadClient()
	require.Equal(t, "https://example.test/api", cfg.APIURL)
	require.Equal(t, 250*time.Millisecond, cfg.SyncDebounce)
	require.NotEmpty(t, cfg.DataDir)
}

func TestLoadDotEnvKeepsExistingValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(path, []byte("LIFETRACK_DOTENV_A=from-file\nLIFETRACK_DOTENV_B=from-file\n"), 0o600))
	t.Setenv("LIFETRACK_DOTENV_B", "from-env")
	t.Cleanup(func() { _ = os.Unsetenv("LIFETRACK_DOTENV_A") })

	require.NoError(t, LoadDotEnv(path, filepath.Join(dir, "missing.env")))
	require.Equal(t, "from-file", os.Getenv("LIFETRACK_DOTENV_A"))
	require.Equal(t, "from-env", os.Getenv("LIFETRACK_DOTENV_B"))
}
