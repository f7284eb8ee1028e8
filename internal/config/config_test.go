package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"APP_ENV", "APP_HOST", "APP_PORT", "LOG_LEVEL", "JWT_SECRET", "TOKEN_TTL_HOURS",
	"DATABASE_URL", "DB_DRIVER", "DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME",
	"DB_SSLMODE", "DB_PATH", "MEDIA_ROOT", "MEDIA_URL", "SITE_URL", "RATE_LIMIT_RPS",
	"RATE_LIMIT_BURST", "PAGE_SIZE",
}

// clearEnv blanks every key LoadConfig reads; t.Setenv restores them afterwards
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configKeys {
		t.Setenv(key, "")
	}
}

func TestGetEnvWithDefault(t *testing.T) {
	testCases := []struct {
		name         string
		key          string
		defaultValue string
		envValue     string
		expected     string
	}{
		{
			name:         "should return env value when set",
			key:          "TEST_KEY",
			defaultValue: "default",
			envValue:     "from_env",
			expected:     "from_env",
		},
		{
			name:         "should return default when env not set",
			key:          "MISSING_KEY",
			defaultValue: "default_value",
			expected:     "default_value",
		},
		{
			name:     "should return empty string default",
			key:      "EMPTY_KEY",
			expected: "",
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.envValue)
			assert.Equal(t, tt.expected, GetEnvWithDefault(tt.key, tt.defaultValue))
		})
	}
}

func TestGetEnvAsType(t *testing.T) {
	t.Setenv("INT_KEY", "42")
	t.Setenv("FLOAT_KEY", "2.5")
	t.Setenv("BOOL_KEY", "true")
	t.Setenv("DURATION_KEY", "90s")
	t.Setenv("BROKEN_KEY", "nope")

	assert.Equal(t, 42, GetEnvAsType("INT_KEY", 0))
	assert.Equal(t, 2.5, GetEnvAsType("FLOAT_KEY", 0.0))
	assert.True(t, GetEnvAsType("BOOL_KEY", false))
	assert.Equal(t, 90*time.Second, GetEnvAsType("DURATION_KEY", time.Second))
	assert.Equal(t, 7, GetEnvAsType("BROKEN_KEY", 7))
	assert.Equal(t, "fallback", GetEnvAsType("UNSET_KEY_FOR_TEST", "fallback"))
}

func TestLoadConfig(t *testing.T) {
	t.Run("successful config load with all env vars", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("APP_PORT", "9000")
		t.Setenv("APP_HOST", "0.0.0.0")
		t.Setenv("LOG_LEVEL", "debug")
		t.Setenv("JWT_SECRET", "super_secret_jwt_key")
		t.Setenv("TOKEN_TTL_HOURS", "2")
		t.Setenv("DATABASE_URL", "postgres://food:hunter2@db:5432/foodgram")
		t.Setenv("RATE_LIMIT_RPS", "0.5")
		t.Setenv("RATE_LIMIT_BURST", "3")
		t.Setenv("PAGE_SIZE", "10")
		t.Setenv("SITE_URL", "https://foodgram.example.org")

		config, err := LoadConfig()
		require.NoError(t, err)

		assert.Equal(t, 9000, config.Port)
		assert.Equal(t, "0.0.0.0", config.Host)
		assert.Equal(t, "debug", config.LogLevel)
		assert.Equal(t, 2*time.Hour, config.TokenTTL)
		assert.Equal(t, 0.5, config.RateLimitRPS)
		assert.Equal(t, 3, config.RateLimitBurst)
		assert.Equal(t, 10, config.PageSize)
		assert.Equal(t, "https://foodgram.example.org", config.SiteURL)
		assert.Equal(t, "postgres://food:hunter2@db:5432/foodgram", config.Database().DSN())
	})

	t.Run("should use defaults when optional env vars not set", func(t *testing.T) {
		clearEnv(t)

		config, err := LoadConfig()
		require.NoError(t, err)

		assert.Equal(t, 8080, config.Port)
		assert.Equal(t, "localhost", config.Host)
		assert.Equal(t, "info", config.LogLevel)
		assert.Equal(t, 24*time.Hour, config.TokenTTL)
		assert.Equal(t, 6, config.PageSize)
		assert.Equal(t, "sqlite", config.DBDriver)
		assert.Equal(t, "/media", config.MediaURL)
		assert.Equal(t, "foodgram.sqlite", config.Database().DSN())
		assert.False(t, config.Database().IsInMemory())
	})

	t.Run("should build an in-memory sqlite database config", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("DB_PATH", ":memory:")

		config, err := LoadConfig()
		require.NoError(t, err)

		assert.True(t, config.Database().IsInMemory())
		assert.Contains(t, config.Database().String(), "Driver: sqlite")
	})

	invalid := map[string]string{
		"APP_PORT":         "not_a_number",
		"TOKEN_TTL_HOURS":  "0",
		"RATE_LIMIT_RPS":   "fast",
		"RATE_LIMIT_BURST": "many",
		"PAGE_SIZE":        "-1",
		"DATABASE_URL":     "not a url",
		"SITE_URL":         "foodgram",
	}
	for key, value := range invalid {
		t.Run("should fail with invalid "+key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, value)

			config, err := LoadConfig()
			assert.Error(t, err)
			assert.Nil(t, config)
		})
	}
}

func TestConfigStringMasksSecrets(t *testing.T) {
	config := &Config{
		DatabaseURL: "postgres://food:hunter2@db:5432/foodgram",
		DBPassword:  "db-password",
		JWTSecret:   "jwt-secret",
	}

	s := config.String()
	assert.NotContains(t, s, "hunter2")
	assert.NotContains(t, s, "db-password")
	assert.NotContains(t, s, "jwt-secret")
	assert.Contains(t, s, "REDACTED")
	assert.Contains(t, s, "db:5432/foodgram")
}

// Benchmark tests (optional but good practice)
func BenchmarkGetEnvWithDefault(b *testing.B) {
	b.Setenv("BENCH_KEY", "test_value")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		GetEnvWithDefault("BENCH_KEY", "default")
	}
}
