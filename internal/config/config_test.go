package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stocketl/internal/testutil"
)

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent of testing.T.Chdir, added in Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatal(err)
		}
	})
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "stocks", cfg.DBName)
	assert.Equal(t, "data", cfg.FilesPath)
	assert.Equal(t, 500, cfg.LoadBatchSize)
	assert.True(t, cfg.LoadAtomic)
	assert.True(t, cfg.MigrateOnStart)
	assert.Empty(t, cfg.PushgatewayURL)
}

func TestLoad_FromEnvironment(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_NAME", "market")
	t.Setenv("FILES_PATH", "/srv/extracts")
	t.Setenv("LOAD_BATCH_SIZE", "50")
	t.Setenv("LOAD_ATOMIC", "false")
	t.Setenv("PUSHGATEWAY_URL", "http://pushgateway:9091")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, "market", cfg.DBName)
	assert.Equal(t, "/srv/extracts", cfg.FilesPath)
	assert.Equal(t, 50, cfg.LoadBatchSize)
	assert.False(t, cfg.LoadAtomic)
	assert.Equal(t, "http://pushgateway:9091", cfg.PushgatewayURL)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"unsupported_driver", "DB_DRIVER", "mysql"},
		{"unsupported_env", "ENV", "staging"},
		{"zero_batch_size", "LOAD_BATCH_SIZE", "0"},
		{"non_numeric_batch_size", "LOAD_BATCH_SIZE", "many"},
		{"bad_pushgateway_url", "PUSHGATEWAY_URL", "not a url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chdir(t, t.TempDir())
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			testutil.AssertAppError(t, err, "INVALID_CONFIG")
		})
	}
}
