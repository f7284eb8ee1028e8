package database

import (
	"testing"

	"github.com/franciscosanchezn/gin-foodgram-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDSN(t *testing.T) {
	tests := []struct {
		name string
		cfg  DatabaseConfig
		want string
	}{
		{
			name: "postgres",
			cfg:  DatabaseConfig{Driver: "postgres", Host: "db", Port: "5432", User: "foodgram", Password: "pw", Name: "foodgram", SSLMode: "disable"},
			want: "host=db user=foodgram password=pw dbname=foodgram port=5432 sslmode=disable",
		},
		{
			name: "mysql",
			cfg:  DatabaseConfig{Driver: "mysql", Host: "db", Port: "3306", User: "foodgram", Password: "pw", Name: "foodgram"},
			want: "foodgram:pw@tcp(db:3306)/foodgram?charset=utf8mb4&parseTime=True&loc=UTC",
		},
		{
			name: "sqlite",
			cfg:  DatabaseConfig{Driver: "sqlite", Path: "foodgram.db"},
			want: "foodgram.db",
		},
		{
			name: "url wins",
			cfg:  DatabaseConfig{Driver: "postgres", Host: "ignored", URL: "postgres://u:p@h/db"},
			want: "postgres://u:p@h/db",
		},
		{
			name: "unknown driver",
			cfg:  DatabaseConfig{Driver: "oracle"},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.DSN())
		})
	}
}

func TestStringMasksSecrets(t *testing.T) {
	cfg := DatabaseConfig{Driver: "postgres", Password: "hunter2", URL: "postgres://u:hunter2@h/db"}
	s := cfg.String()
	assert.NotContains(t, s, "hunter2")
	assert.Contains(t, s, "[REDACTED]")
}

func TestInitDatabaseUnsupportedDriver(t *testing.T) {
	_, err := InitDatabase(DatabaseConfig{Driver: "oracle"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database driver")
}

func TestMigrateAndSeed(t *testing.T) {
	db, err := InitDatabase(DatabaseConfig{Driver: "sqlite", Path: ":memory:"})
	require.NoError(t, err)

	require.NoError(t, Migrate(db))
	require.NoError(t, Seed(db))
	// seeding twice keeps a single copy of everything
	require.NoError(t, Seed(db))

	var tags []models.Tag
	require.NoError(t, db.Order("id").Find(&tags).Error)
	require.Len(t, tags, len(DefaultTags))
	assert.Equal(t, "breakfast", tags[0].Slug)

	var client models.OAuthClient
	require.NoError(t, db.First(&client, "id = ?", WebClientID).Error)
	assert.True(t, client.Public)
	assert.True(t, client.VerifyPassword(""))
}
