package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/campus/internal/authz"
	"github.com/mesh-intelligence/campus/internal/paths"
	"github.com/mesh-intelligence/campus/pkg/repository"
	"github.com/mesh-intelligence/campus/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	envPrefix = "CAMPUS"
)

// Config keys.
const (
	cfgKeyBackend        = "backend"
	cfgKeyDataDir        = "data_dir"
	cfgKeySyncStrategy   = "sync_strategy"
	cfgKeyBatchSize      = "batch_size"
	cfgKeyBatchInterval  = "batch_interval"
	cfgKeyRedisAddr      = "redis.addr"
	cfgKeyRedisPassword  = "redis.password"
	cfgKeyRedisDB        = "redis.db"
	cfgKeyRedisKeyPrefix = "redis.key_prefix"
	cfgKeyHTTPAddr       = "http.addr"
	cfgKeyAuthSecret     = "auth.secret"
	cfgKeyAuthTokenTTL   = "auth.token_ttl"
	cfgKeyLogLevel       = "log.level"
	cfgKeyLogFormat      = "log.format"
)

var defaults = map[string]any{
	cfgKeyBackend:        types.BackendSQLite,
	cfgKeySyncStrategy:   types.SyncImmediate,
	cfgKeyBatchSize:      types.DefaultBatchSize,
	cfgKeyBatchInterval:  types.DefaultBatchInterval,
	cfgKeyRedisAddr:      "localhost:6379",
	cfgKeyRedisPassword:  "",
	cfgKeyRedisDB:        0,
	cfgKeyRedisKeyPrefix: "campus",
	cfgKeyHTTPAddr:       ":8080",
	cfgKeyAuthSecret:     "",
	cfgKeyAuthTokenTTL:   "24h",
	cfgKeyLogLevel:       "info",
	cfgKeyLogFormat:      "json",
}

var errSecretUnset = errors.New("auth.secret is not set; run campus init or set CAMPUS_AUTH_SECRET")

// configFile is the structure written to config.yaml on first run.
type configFile struct {
	Backend       string `yaml:"backend"`
	DataDir       string `yaml:"data_dir,omitempty"`
	SyncStrategy  string `yaml:"sync_strategy"`
	BatchSize     int    `yaml:"batch_size"`
	BatchInterval int    `yaml:"batch_interval"`
	Redis         struct {
		Addr      string `yaml:"addr"`
		DB        int    `yaml:"db"`
		KeyPrefix string `yaml:"key_prefix"`
	} `yaml:"redis"`
	HTTP struct {
		Addr string `yaml:"addr"`
	} `yaml:"http"`
	Auth struct {
		Secret   string `yaml:"secret"`
		TokenTTL string `yaml:"token_ttl"`
	} `yaml:"auth"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

func defaultConfigFile() configFile {
	var cfg configFile
	cfg.Backend = types.BackendSQLite
	cfg.SyncStrategy = types.SyncImmediate
	cfg.BatchSize = types.DefaultBatchSize
	cfg.BatchInterval = types.DefaultBatchInterval
	cfg.Redis.Addr = "localhost:6379"
	cfg.Redis.KeyPrefix = "campus"
	cfg.HTTP.Addr = ":8080"
	cfg.Auth.Secret = uuid.NewString()
	cfg.Auth.TokenTTL = "24h"
	cfg.Log.Level = "info"
	cfg.Log.Format = "json"
	return cfg
}

// loadConfig reads config.yaml from configDir using Viper. It creates the
// directory and a default config.yaml on first run. Every key except
// data_dir can be overridden by a CAMPUS_ environment variable; the data
// directory has its own precedence chain in package paths.
func loadConfig(configDir string) (*viper.Viper, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure config dir: %w", err)
	}
	if err := ensureDefaultConfigFile(configDir); err != nil {
		return nil, fmt.Errorf("ensure default config: %w", err)
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for key := range defaults {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

// ensureDefaultConfigFile writes a default config.yaml, with a freshly
// generated token secret, if the file does not exist.
func ensureDefaultConfigFile(configDir string) error {
	path := filepath.Join(configDir, configFileExt)

	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}

	cfg := defaultConfigFile()
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	header := []byte("# campus configuration\n# Every key can be overridden by CAMPUS_<KEY> (dots become underscores), except data_dir.\n")
	return os.WriteFile(path, append(header, data...), 0o600)
}

// repositoryConfig builds the backend configuration from v.
func repositoryConfig(v *viper.Viper, dataDir string) types.Config {
	cfg := types.Config{
		Backend: v.GetString(cfgKeyBackend),
		DataDir: dataDir,
	}
	switch cfg.Backend {
	case types.BackendSQLite:
		cfg.SQLiteConfig = &types.SQLiteConfig{
			SyncStrategy:  v.GetString(cfgKeySyncStrategy),
			BatchSize:     v.GetInt(cfgKeyBatchSize),
			BatchInterval: v.GetInt(cfgKeyBatchInterval),
		}
	case types.BackendRedis:
		cfg.RedisConfig = &types.RedisConfig{
			Addr:      v.GetString(cfgKeyRedisAddr),
			Password:  v.GetString(cfgKeyRedisPassword),
			DB:        v.GetInt(cfgKeyRedisDB),
			KeyPrefix: v.GetString(cfgKeyRedisKeyPrefix),
		}
	}
	return cfg
}

// newLogger builds the zap logger selected by log.format and log.level.
func newLogger(v *viper.Viper) (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(v.GetString(cfgKeyLogLevel))
	if err != nil {
		return nil, fmt.Errorf("log.level: %w", err)
	}

	var zc zap.Config
	switch format := v.GetString(cfgKeyLogFormat); format {
	case "json", "":
		zc = zap.NewProductionConfig()
	case "console":
		zc = zap.NewDevelopmentConfig()
	default:
		return nil, fmt.Errorf("log.format: unknown format %q", format)
	}
	zc.Level = level
	return zc.Build()
}

// logger returns the configured logger. A bad log configuration is a user
// error.
func (o *rootOptions) logger() (*zap.Logger, error) {
	log, err := newLogger(o.v)
	if err != nil {
		return nil, userError(err)
	}
	return log, nil
}

// openRepository resolves the data directory and attaches the configured
// backend. The caller must Detach the result.
func (o *rootOptions) openRepository(log *zap.Logger) (types.Repository, error) {
	dataDir, err := paths.ResolveDataDir(o.dataDir, o.v.GetString(cfgKeyDataDir))
	if err != nil {
		return nil, sysError(fmt.Errorf("resolve data dir: %w", err))
	}

	cfg := repositoryConfig(o.v, dataDir)
	if err := cfg.Validate(); err != nil {
		return nil, userError(fmt.Errorf("invalid configuration: %w", err))
	}

	repo, err := repository.Open(cfg, log)
	if err != nil {
		return nil, sysError(fmt.Errorf("attach %s backend: %w", cfg.Backend, err))
	}
	return repo, nil
}

// tokens returns the token issuer and verifier built from the auth keys.
func (o *rootOptions) tokens() (*authz.Tokens, error) {
	secret := o.v.GetString(cfgKeyAuthSecret)
	if secret == "" {
		return nil, userError(errSecretUnset)
	}
	ttl, err := time.ParseDuration(o.v.GetString(cfgKeyAuthTokenTTL))
	if err != nil {
		return nil, userError(fmt.Errorf("auth.token_ttl: %w", err))
	}
	t, err := authz.NewTokens(secret, ttl)
	if err != nil {
		return nil, userError(err)
	}
	return t, nil
}
