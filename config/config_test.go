package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalizeEnvKey_UsesExistingCamelCaseKeys(t *testing.T) {
	existing := map[string]any{
		"postgres": map[string]any{
			"sslMode": "disable",
			"master": map[string]any{
				"userName": "user",
			},
		},
		"auth": map[string]any{
			"argon2": map[string]any{
				"memoryKiB": 65536,
			},
		},
		"secretKey": map[string]any{
			"access": "",
		},
	}

	tests := []struct {
		envKey string
		want   string
	}{
		{envKey: "POSTGRES_SSLMODE", want: "postgres.sslMode"},
		{envKey: "POSTGRES_MASTER_USERNAME", want: "postgres.master.userName"},
		{envKey: "AUTH_ARGON2_MEMORYKIB", want: "auth.argon2.memoryKiB"},
		{envKey: "SECRETKEY_ACCESS", want: "secretKey.access"},
		{envKey: "NEW_FEATURE_FLAG", want: "new.feature.flag"},
	}

	for _, tt := range tests {
		t.Run(tt.envKey, func(t *testing.T) {
			assert.Equal(t, tt.want, canonicalizeEnvKey(tt.envKey, existing))
		})
	}
}

const testYAML = `
env:
  serviceName: usersvc
  log:
    level: debug
http:
  port: 9090
storage:
  backend: postgres
postgres:
  master:
    host: localhost
    port: "5432"
    userName: app
    password: secret
  database: accounts
  sslMode: disable
  connMaxLifetime: 10m
secretKey:
  access: access-secret
auth:
  argon2:
    memoryKiB: 1024
`

func TestLoadWithEnv_OverlaysEnvironment(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "test.yaml"), []byte(testYAML), 0o600))
	t.Chdir(dir)
	t.Setenv("POSTGRES_MASTER_HOST", "db.internal")
	t.Setenv("AUTH_ARGON2_ITERATIONS", "5")

	cfg, err := LoadWithEnv[Config]("test")
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, "db.internal", cfg.Postgres.Master.Host)
	assert.Equal(t, "app", cfg.Postgres.Master.UserName)
	assert.Equal(t, "accounts", cfg.Postgres.Database)
	assert.Equal(t, 10*time.Minute, cfg.Postgres.ConnMaxLifetime)
	assert.Equal(t, uint32(1024), cfg.Auth.Argon2.MemoryKiB)
	assert.Equal(t, uint32(5), cfg.Auth.Argon2.Iterations)
}

func TestLoadWithEnv_MissingFile(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := LoadWithEnv[Config]("absent")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "absent.yaml not found")
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.SecretKey.Access = "x"
	cfg.Storage.Backend = BackendMemory

	applyDefaults(cfg)

	assert.Equal(t, defaultMaxRequestBodySize, cfg.HTTP.MaxRequestBodySize)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.True(t, cfg.Migrations.AutoMigrate)
	assert.Equal(t, uint32(64*1024), cfg.Auth.Argon2.MemoryKiB)
	assert.Equal(t, 8, cfg.PasswordStrength.MinLength)
	assert.Equal(t, 15*time.Minute, cfg.Auth.AccessTokenTTL)
	require.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg := &Config{}
		cfg.SecretKey.Access = "x"
		cfg.Storage.Backend = BackendMemory
		applyDefaults(cfg)

		return cfg
	}

	t.Run("unknown backend", func(t *testing.T) {
		cfg := base()
		cfg.Storage.Backend = "mysql"
		assert.ErrorContains(t, cfg.Validate(), "unknown storage backend")
	})

	t.Run("postgres without host", func(t *testing.T) {
		cfg := base()
		cfg.Storage.Backend = BackendPostgres
		assert.ErrorContains(t, cfg.Validate(), "postgres.master.host")
	})

	t.Run("missing access secret", func(t *testing.T) {
		cfg := base()
		cfg.SecretKey.Access = ""
		assert.ErrorContains(t, cfg.Validate(), "secretKey.access")
	})

	t.Run("inverted password bounds", func(t *testing.T) {
		cfg := base()
		cfg.PasswordStrength.MaxLength = 4
		assert.ErrorContains(t, cfg.Validate(), "maxLength")
	})
}

func TestBuildReplicasFromEnv(t *testing.T) {
	t.Setenv("POSTGRES_REPLICAS_0_HOST", "replica-a")
	t.Setenv("POSTGRES_REPLICAS_0_PORT", "5432")
	t.Setenv("POSTGRES_REPLICAS_0_USERNAME", "reader")
	t.Setenv("POSTGRES_REPLICAS_1_HOST", "replica-b")
	t.Setenv("POSTGRES_REPLICAS_1_PORT", "5433")
	// Index 2 has no port, so the list stops at two entries.
	t.Setenv("POSTGRES_REPLICAS_2_HOST", "replica-c")

	replicas := buildReplicasFromEnv()
	require.Len(t, replicas, 2)
	assert.Equal(t, "replica-a", replicas[0].Host)
	assert.Equal(t, "reader", replicas[0].UserName)
	assert.Equal(t, "5433", replicas[1].Port)
}
