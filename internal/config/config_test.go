package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJSON = `{
	"server_address": ":3001",
	"file_storage_path": "json_storage.json",
	"database_dsn": "json-dsn",
	"jwt_secret": "json-secret",
	"token_ttl": "24h",
	"tmdb_language": "fr-FR"
}`

func writeTempJSON(t *testing.T, content string) string {
	t.Helper()
	file, err := os.CreateTemp("", "config*.json")
	require.NoError(t, err)
	_, err = file.WriteString(content)
	require.NoError(t, err)
	require.NoError(t, file.Close())
	t.Cleanup(func() {
		err := os.Remove(file.Name())
		require.NoError(t, err)
	})
	return file.Name()
}

func TestConfigDefaults(t *testing.T) {
	cfg, err := New(WithDisableFlagsParsing(true))
	require.NoError(t, err)

	assert.Equal(t, ":3000", cfg.RunAddr)
	assert.Equal(t, "", cfg.GRPCAddr)
	assert.Equal(t, "/api", cfg.APIPrefix)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "change_me", cfg.JWTSecret)
	assert.Equal(t, 7*24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, "https://api.themoviedb.org/3", cfg.TMDBBaseURL)
	assert.Equal(t, "en-US", cfg.TMDBLanguage)
	assert.Equal(t, 10*time.Second, cfg.UpstreamTimeout)
	assert.Equal(t, 10*time.Second, cfg.DBConnectionTimeout)
}

func TestConfigPriorityJSONOnly(t *testing.T) {
	jsonPath := writeTempJSON(t, testJSON)
	t.Setenv("CONFIG", jsonPath)

	cfg, err := New(WithDisableFlagsParsing(true))
	require.NoError(t, err)

	assert.Equal(t, ":3001", cfg.RunAddr)
	assert.Equal(t, "json_storage.json", cfg.DBFileName)
	assert.Equal(t, "json-dsn", cfg.DatabaseDSN)
	assert.Equal(t, "json-secret", cfg.JWTSecret)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, "fr-FR", cfg.TMDBLanguage)
	assert.Equal(t, "info", cfg.LogLevel) // default
}

func TestConfigPriorityJSONPlusEnv(t *testing.T) {
	jsonPath := writeTempJSON(t, testJSON)
	t.Setenv("CONFIG", jsonPath)
	t.Setenv("SERVER_ADDRESS", ":4000")
	t.Setenv("TOKEN_TTL", "2h")
	t.Setenv("TMDB_API_KEY", "env-key")

	cfg, err := New(WithDisableFlagsParsing(true))
	require.NoError(t, err)

	assert.Equal(t, ":4000", cfg.RunAddr) // env overrides json
	assert.Equal(t, 2*time.Hour, cfg.TokenTTL)
	assert.Equal(t, "env-key", cfg.TMDBAPIKey)
	assert.Equal(t, "json-dsn", cfg.DatabaseDSN) // from JSON
}

func TestConfigPriorityAllSources(t *testing.T) {
	jsonPath := writeTempJSON(t, testJSON)
	t.Setenv("CONFIG", jsonPath)
	t.Setenv("SERVER_ADDRESS", ":4000")
	t.Setenv("JWT_SECRET", "env-secret")

	cfg, err := New(WithArgs([]string{
		"-a", ":6000",
		"-s", "cli-secret",
		"-g", ":6001",
	}))
	require.NoError(t, err)

	assert.Equal(t, ":6000", cfg.RunAddr) // CLI > ENV > JSON
	assert.Equal(t, "cli-secret", cfg.JWTSecret)
	assert.Equal(t, ":6001", cfg.GRPCAddr)
	assert.Equal(t, "json-dsn", cfg.DatabaseDSN) // from JSON
}

func TestConfigPathFromFlag(t *testing.T) {
	jsonPath := writeTempJSON(t, testJSON)

	cfg, err := New(WithArgs([]string{"-c", jsonPath}))
	require.NoError(t, err)

	assert.Equal(t, ":3001", cfg.RunAddr)
}

func TestConfigEnvOnly(t *testing.T) {
	t.Setenv("SERVER_ADDRESS", ":7000")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("API_PREFIX", "/v1")
	t.Setenv("BCRYPT_COST", "12")

	cfg, err := New(WithDisableFlagsParsing(true))
	require.NoError(t, err)

	assert.Equal(t, ":7000", cfg.RunAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "/v1", cfg.APIPrefix)
	assert.Equal(t, 12, cfg.BcryptCost)
}

func TestConfigValidation(t *testing.T) {
	testCases := []struct {
		name  string
		key   string
		value string
	}{
		{"unknown_log_level", "LOG_LEVEL", "loud"},
		{"bcrypt_cost_too_low", "BCRYPT_COST", "4"},
		{"bad_server_address", "SERVER_ADDRESS", "not an address"},
		{"prefix_without_slash", "API_PREFIX", "api"},
		{"bad_tmdb_url", "TMDB_BASE_URL", "::not-a-url"},
		{"negative_upstream_timeout", "UPSTREAM_TIMEOUT", "-1s"},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			t.Setenv(testCase.key, testCase.value)

			_, err := New(WithDisableFlagsParsing(true))
			assert.Error(t, err)
		})
	}
}

func TestConfigZeroUpstreamTimeoutFallsBackToDefault(t *testing.T) {
	t.Setenv("UPSTREAM_TIMEOUT", "0s")

	cfg, err := New(WithDisableFlagsParsing(true))
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, cfg.UpstreamTimeout)
}

func TestConfigBrokenJSON(t *testing.T) {
	t.Setenv("CONFIG", writeTempJSON(t, `{"token_ttl": "forever"}`))

	_, err := New(WithDisableFlagsParsing(true))
	assert.Error(t, err)
}
