package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"CONFIG", "ACCOUNTS_ADDR", "ACCOUNTS_BACKEND", "ACCOUNTS_PATH", "DATABASE_DSN",
		"ACCOUNTS_DB_TIMEOUT", "ACCOUNTS_KEY", "ACCOUNTS_FORMAT", "LOG_LEVEL",
	} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestParse_Defaults(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())

	opts, err := Parse("test", nil)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8080", opts.Addr)
	assert.Equal(t, BackendFile, opts.Backend)
	assert.Equal(t, "./data", opts.Path)
	assert.Equal(t, "accounts", opts.Key)
	assert.Equal(t, "json", opts.Format)
	assert.Equal(t, "info", opts.LogLevel)
	assert.Equal(t, 5*time.Second, opts.DatabaseTimeout)
}

func TestParse_EnvOverridesDefaults(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())
	t.Setenv("ACCOUNTS_BACKEND", "bolt")
	t.Setenv("ACCOUNTS_PATH", "/tmp/accounts.db")
	t.Setenv("ACCOUNTS_FORMAT", "cbor")

	opts, err := Parse("test", nil)
	require.NoError(t, err)
	assert.Equal(t, BackendBolt, opts.Backend)
	assert.Equal(t, "/tmp/accounts.db", opts.Path)
	assert.Equal(t, "cbor", opts.Format)
}

func TestParse_FileThenEnvThenFlags(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	file := filepath.Join(dir, "cfg.yaml")
	require.NoError(t, os.WriteFile(file, []byte("addr: 127.0.0.1:9000\nkey: from-file\nformat: cbor\nlog_level: debug\n"), 0o600))
	t.Setenv("ACCOUNTS_KEY", "from-env")

	opts, err := Parse("test", []string{"-c", file, "--format", "json"})
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", opts.Addr)
	assert.Equal(t, "from-env", opts.Key)
	assert.Equal(t, "json", opts.Format)
	assert.Equal(t, "debug", opts.LogLevel)
	assert.Equal(t, file, opts.Config)
}

func TestParse_ConfigFromEnv(t *testing.T) {
	clearEnv(t)
	file := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(file, []byte("backend: memory\n"), 0o600))
	t.Setenv("CONFIG", file)

	opts, err := Parse("test", nil)
	require.NoError(t, err)
	assert.Equal(t, BackendMemory, opts.Backend)
}

func TestParse_MissingExplicitConfig(t *testing.T) {
	clearEnv(t)
	_, err := Parse("test", []string{"--config", filepath.Join(t.TempDir(), "nope.yaml")})
	assert.Error(t, err)
}

func TestParse_BadFlag(t *testing.T) {
	clearEnv(t)
	_, err := Parse("test", []string{"--no-such-flag"})
	assert.Error(t, err)
}

func TestParse_Flags(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())

	opts, err := Parse("test", []string{
		"-a", ":0", "-b", "postgres", "-d", "postgres://localhost/db",
		"--db-timeout", "2s", "-k", "k", "-l", "warn",
	})
	require.NoError(t, err)
	assert.Equal(t, ":0", opts.Addr)
	assert.Equal(t, BackendPostgres, opts.Backend)
	assert.Equal(t, "postgres://localhost/db", opts.DatabaseDSN)
	assert.Equal(t, 2*time.Second, opts.DatabaseTimeout)
	assert.Equal(t, "k", opts.Key)
	assert.Equal(t, "warn", opts.LogLevel)
}

func TestOptions_Validate(t *testing.T) {
	valid := Options{Backend: BackendFile, Path: "x", Key: "accounts", Format: "json"}

	tests := []struct {
		name    string
		mutate  func(o *Options)
		wantErr []string
	}{
		{name: "valid", mutate: func(o *Options) {}},
		{name: "memory needs no path", mutate: func(o *Options) { o.Backend = BackendMemory; o.Path = "" }},
		{name: "file needs path", mutate: func(o *Options) { o.Path = "" }, wantErr: []string{"path is required"}},
		{name: "postgres needs dsn", mutate: func(o *Options) { o.Backend = BackendPostgres }, wantErr: []string{"database_dsn"}},
		{name: "unknown backend", mutate: func(o *Options) { o.Backend = "s3" }, wantErr: []string{`unknown backend "s3"`}},
		{
			name: "several errors at once",
			mutate: func(o *Options) {
				o.Key = ""
				o.Format = "xml"
				o.DatabaseTimeout = -time.Second
			},
			wantErr: []string{"key must not be empty", `unknown format "xml"`, "database_timeout"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := valid
			tt.mutate(&o)
			err := o.Validate()
			if len(tt.wantErr) == 0 {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			for _, msg := range tt.wantErr {
				assert.Contains(t, err.Error(), msg)
			}
		})
	}
}
