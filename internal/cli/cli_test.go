package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/campus/internal/authz"
	perrors "github.com/mesh-intelligence/campus/internal/platform/errors"
	"github.com/mesh-intelligence/campus/pkg/repository"
	"github.com/mesh-intelligence/campus/pkg/types"
)

type env struct {
	configDir string
	dataDir   string
}

func newEnv(t *testing.T) env {
	t.Helper()
	t.Setenv("CAMPUS_LOG_LEVEL", "error")
	return env{
		configDir: filepath.Join(t.TempDir(), "config"),
		dataDir:   filepath.Join(t.TempDir(), "data"),
	}
}

func (e env) run(args ...string) (string, error) {
	return e.runContext(context.Background(), args...)
}

func (e env) runContext(ctx context.Context, args ...string) (string, error) {
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append([]string{"--config-dir", e.configDir, "--data-dir", e.dataDir}, args...))
	err := cmd.ExecuteContext(ctx)
	return out.String(), err
}

func (e env) seedArticles(t *testing.T, titles ...string) {
	t.Helper()
	repo, err := repository.Open(types.Config{Backend: types.BackendSQLite, DataDir: e.dataDir}, zap.NewNop())
	require.NoError(t, err)
	for _, title := range titles {
		_, err := repo.Articles().Save(context.Background(), &types.Article{Title: title, Email: "a@ucsb.edu"})
		require.NoError(t, err)
	}
	require.NoError(t, repo.Detach())
}

func TestVersion(t *testing.T) {
	e := newEnv(t)
	out, err := e.run("version")
	require.NoError(t, err)
	assert.Contains(t, out, "campus v"+Version)
	assert.Contains(t, out, modulePath)
}

func TestInit(t *testing.T) {
	e := newEnv(t)

	out, err := e.run("init")
	require.NoError(t, err)
	assert.Contains(t, out, "Campus initialized successfully")

	data, err := os.ReadFile(filepath.Join(e.configDir, "config.yaml"))
	require.NoError(t, err)
	var cfg configFile
	require.NoError(t, yaml.Unmarshal(data, &cfg))
	assert.Equal(t, types.BackendSQLite, cfg.Backend)
	assert.NotEmpty(t, cfg.Auth.Secret)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)

	for _, table := range types.StandardTableNames {
		assert.FileExists(t, filepath.Join(e.dataDir, table+".jsonl"))
	}

	// Running init again keeps the existing configuration.
	_, err = e.run("init")
	require.NoError(t, err)
	again, err := os.ReadFile(filepath.Join(e.configDir, "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, data, again)
}

func TestInit_InvalidBackend(t *testing.T) {
	e := newEnv(t)
	t.Setenv("CAMPUS_BACKEND", "cassandra")

	_, err := e.run("init")
	require.Error(t, err)
	assert.Equal(t, exitUserError, exitCode(err))
	assert.ErrorIs(t, err, types.ErrBackendUnknown)
}

func TestRecordCommands(t *testing.T) {
	e := newEnv(t)
	_, err := e.run("init")
	require.NoError(t, err)
	e.seedArticles(t, "first", "second")

	t.Run("list", func(t *testing.T) {
		out, err := e.run("list", "articles", "--json")
		require.NoError(t, err)
		assert.Equal(t, []any{"first", "second"}, gjson.Get(out, "#.title").Value())
		assert.Equal(t, 1, strings.Count(out, "\n"))
	})

	t.Run("list is indented without --json", func(t *testing.T) {
		out, err := e.run("list", "articles")
		require.NoError(t, err)
		assert.Contains(t, out, "\n  {")
	})

	t.Run("get", func(t *testing.T) {
		out, err := e.run("get", "articles", "2", "--json")
		require.NoError(t, err)
		assert.Equal(t, "second", gjson.Get(out, "title").String())
		assert.Equal(t, int64(2), gjson.Get(out, "id").Int())
	})

	t.Run("get missing", func(t *testing.T) {
		_, err := e.run("get", "articles", "99")
		require.Error(t, err)
		assert.Equal(t, exitUserError, exitCode(err))
		assert.EqualError(t, err, "Articles with id 99 not found")
	})

	t.Run("get bad key", func(t *testing.T) {
		_, err := e.run("get", "articles", "abc")
		require.Error(t, err)
		assert.Equal(t, exitUserError, exitCode(err))
	})

	t.Run("unknown resource", func(t *testing.T) {
		_, err := e.run("list", "courses")
		require.Error(t, err)
		assert.Equal(t, exitUserError, exitCode(err))
		assert.Contains(t, err.Error(), "ucsborganization")
	})

	t.Run("delete", func(t *testing.T) {
		out, err := e.run("delete", "articles", "1")
		require.NoError(t, err)
		assert.Equal(t, "Articles with id 1 deleted\n", out)

		out, err = e.run("list", "articles", "--json")
		require.NoError(t, err)
		assert.Equal(t, []any{"second"}, gjson.Get(out, "#.title").Value())
	})

	t.Run("delete json", func(t *testing.T) {
		out, err := e.run("delete", "articles", "2", "--json")
		require.NoError(t, err)
		assert.Equal(t, "Articles with id 2 deleted", gjson.Get(out, "message").String())

		out, err = e.run("list", "articles", "--json")
		require.NoError(t, err)
		assert.JSONEq(t, `[]`, out)
	})

	t.Run("wrong argument count", func(t *testing.T) {
		_, err := e.run("get", "articles")
		require.Error(t, err)
		assert.Equal(t, exitUserError, exitCode(err))
	})
}

func TestServe_StopsOnCancel(t *testing.T) {
	e := newEnv(t)
	t.Setenv("CAMPUS_BACKEND", "memory")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := e.runContext(ctx, "serve", "--addr", "127.0.0.1:0")
	assert.NoError(t, err)
}

func TestServe_BadAddress(t *testing.T) {
	e := newEnv(t)
	t.Setenv("CAMPUS_BACKEND", "memory")

	_, err := e.run("serve", "--addr", "256.0.0.1:80")
	require.Error(t, err)
	assert.Equal(t, exitSysError, exitCode(err))
}

func TestToken(t *testing.T) {
	e := newEnv(t)

	out, err := e.run("token", "--subject", "admin@ucsb.edu", "--role", "admin", "--role", "user")
	require.NoError(t, err)

	v, err := loadConfig(e.configDir)
	require.NoError(t, err)
	tokens, err := authz.NewTokens(v.GetString(cfgKeyAuthSecret), 0)
	require.NoError(t, err)

	p, err := tokens.Verify(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "admin@ucsb.edu", p.Subject)
	assert.Equal(t, authz.Admin, p.Capability)

	t.Run("json", func(t *testing.T) {
		out, err := e.run("token", "--subject", "s@ucsb.edu", "--role", "user", "--json")
		require.NoError(t, err)
		assert.NotEmpty(t, gjson.Get(out, "token").String())
	})

	t.Run("missing subject", func(t *testing.T) {
		_, err := e.run("token", "--role", "admin")
		assert.Equal(t, exitUserError, exitCode(err))
	})

	t.Run("unknown role", func(t *testing.T) {
		_, err := e.run("token", "--subject", "s@ucsb.edu", "--role", "dean")
		assert.Equal(t, exitUserError, exitCode(err))
	})

	t.Run("no secret", func(t *testing.T) {
		t.Setenv("CAMPUS_AUTH_SECRET", "")
		e := newEnv(t)
		require.NoError(t, os.MkdirAll(e.configDir, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(e.configDir, "config.yaml"), []byte("backend: memory\n"), 0o644))

		_, err := e.run("token", "--subject", "s@ucsb.edu")
		require.Error(t, err)
		assert.ErrorIs(t, err, errSecretUnset)
	})
}

func TestLoadConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		v, err := loadConfig(t.TempDir())
		require.NoError(t, err)
		assert.Equal(t, "sqlite", v.GetString(cfgKeyBackend))
		assert.Equal(t, "immediate", v.GetString(cfgKeySyncStrategy))
		assert.Equal(t, 10, v.GetInt(cfgKeyBatchSize))
		assert.Equal(t, "campus", v.GetString(cfgKeyRedisKeyPrefix))
		assert.Equal(t, "info", v.GetString(cfgKeyLogLevel))
	})

	t.Run("file values", func(t *testing.T) {
		dir := t.TempDir()
		content := "backend: redis\nredis:\n  addr: cache:6379\n  db: 3\nhttp:\n  addr: \":9090\"\n"
		require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o644))

		v, err := loadConfig(dir)
		require.NoError(t, err)
		cfg := repositoryConfig(v, "/data")
		assert.Equal(t, types.BackendRedis, cfg.Backend)
		require.NotNil(t, cfg.RedisConfig)
		assert.Equal(t, "cache:6379", cfg.RedisConfig.Addr)
		assert.Equal(t, 3, cfg.RedisConfig.DB)
		assert.Equal(t, "campus", cfg.RedisConfig.KeyPrefix)
		assert.Nil(t, cfg.SQLiteConfig)
		assert.Equal(t, ":9090", v.GetString(cfgKeyHTTPAddr))
	})

	t.Run("environment overrides file", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("sync_strategy: on_close\n"), 0o644))
		t.Setenv("CAMPUS_SYNC_STRATEGY", "batch")
		t.Setenv("CAMPUS_BATCH_SIZE", "25")

		v, err := loadConfig(dir)
		require.NoError(t, err)
		cfg := repositoryConfig(v, "/data")
		require.NotNil(t, cfg.SQLiteConfig)
		assert.Equal(t, types.SyncBatch, cfg.SQLiteConfig.SyncStrategy)
		assert.Equal(t, 25, cfg.SQLiteConfig.BatchSize)
	})

	t.Run("data_dir in file beats environment", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("data_dir: /from/config\n"), 0o644))
		t.Setenv("CAMPUS_DATA_DIR", "/from/env")

		v, err := loadConfig(dir)
		require.NoError(t, err)
		assert.Equal(t, "/from/config", v.GetString(cfgKeyDataDir))
	})

	t.Run("malformed file", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("backend: [\n"), 0o644))

		_, err := loadConfig(dir)
		assert.Error(t, err)
	})
}

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		format  string
		wantErr bool
	}{
		{name: "json", level: "info", format: "json"},
		{name: "console", level: "debug", format: "console"},
		{name: "bad level", level: "loud", format: "json", wantErr: true},
		{name: "bad format", level: "info", format: "xml", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("CAMPUS_LOG_LEVEL", tt.level)
			t.Setenv("CAMPUS_LOG_FORMAT", tt.format)
			v, err := loadConfig(t.TempDir())
			require.NoError(t, err)

			log, err := newLogger(v)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, log)
		})
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "success", want: exitSuccess},
		{name: "user", err: userError(errors.New("x")), want: exitUserError},
		{name: "system", err: sysError(errors.New("x")), want: exitSysError},
		{name: "not found", err: classify(&perrors.Error{Code: perrors.ENotFound}), want: exitUserError},
		{name: "invalid", err: classify(&perrors.Error{Code: perrors.EInvalid}), want: exitUserError},
		{name: "internal", err: classify(&perrors.Error{Code: perrors.EInternal}), want: exitSysError},
		{name: "plain error", err: classify(errors.New("disk full")), want: exitSysError},
		{name: "cobra error", err: errors.New(`unknown command "frob"`), want: exitUserError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}
