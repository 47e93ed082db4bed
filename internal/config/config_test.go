package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv("CHAINTODO_RPC_URL", "")
	os.Unsetenv("CHAINTODO_RPC_URL")
	t.Setenv("CHAINTODO_CONTRACT_ADDRESS", "")
	t.Setenv("CHAINTODO_ABI_PATH", "")
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.Dir)
	assert.Equal(t, DefaultRPCURL, cfg.RPCURL)
	assert.Equal(t, DefaultConfirmTimeout, cfg.ConfirmTimeout.Std())
	assert.Equal(t, DefaultPollInterval, cfg.PollInterval.Std())
	assert.Empty(t, cfg.ContractAddress)
	assert.Equal(t, filepath.Join(dir, "config.yaml"), cfg.ConfigPath())
	assert.Equal(t, filepath.Join(dir, "chaintodo.log"), cfg.LogPath())
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	data := `rpc_url: http://127.0.0.1:1248
contract_address: "0x00000000000000000000000000000000000000c1"
confirm_timeout: 90s
poll_interval: 500ms
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFile), []byte(data), 0600))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "http://127.0.0.1:1248", cfg.RPCURL)
	assert.Equal(t, "0x00000000000000000000000000000000000000c1", cfg.ContractAddress)
	assert.Equal(t, 90*time.Second, cfg.ConfirmTimeout.Std())
	assert.Equal(t, 500*time.Millisecond, cfg.PollInterval.Std())
	assert.Equal(t, dir, cfg.Dir, "yaml must not overwrite the directory")
}

func TestLoad_Durations(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		want    time.Duration
		wantErr string
	}{
		{"zero disables", "confirm_timeout: 0\n", 0, ""},
		{"zero string", "confirm_timeout: 0s\n", 0, ""},
		{"plain seconds", "confirm_timeout: 45\n", 45 * time.Second, ""},
		{"duration string", "confirm_timeout: 2m\n", 2 * time.Minute, ""},
		{"negative", "confirm_timeout: -5s\n", 0, "negative duration"},
		{"garbage", "confirm_timeout: soon\n", 0, "invalid duration"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFile), []byte(tt.yaml), 0600))

			cfg, err := Load(dir)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.ConfirmTimeout.Std())
			assert.Equal(t, DefaultPollInterval, cfg.PollInterval.Std())
		})
	}
}

func TestLoad_InvalidFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFile), []byte("rpc_url: [unterminated"), 0600))

	_, err := Load(dir)

	assert.ErrorContains(t, err, "invalid config.yaml")
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Run("env beats file", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFile), []byte("contract_address: \"0x01\"\n"), 0600))
		t.Setenv("CHAINTODO_CONTRACT_ADDRESS", "0x02")
		t.Setenv("CHAINTODO_RPC_URL", "ws://node:8546")
		t.Setenv("CHAINTODO_ABI_PATH", "/tmp/todo.json")

		cfg, err := Load(dir)
		require.NoError(t, err)

		assert.Equal(t, "0x02", cfg.ContractAddress)
		assert.Equal(t, "ws://node:8546", cfg.RPCURL)
		assert.Equal(t, "/tmp/todo.json", cfg.ABIPath)
	})

	t.Run("empty RPC URL disables provider", func(t *testing.T) {
		t.Setenv("CHAINTODO_RPC_URL", "")

		cfg, err := Load(t.TempDir())
		require.NoError(t, err)

		assert.Empty(t, cfg.RPCURL)
	})
}

func TestReload_KeepsFlags(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	cfg, err := Load(dir)
	require.NoError(t, err)
	cfg.Debug = true
	cfg.Quiet = true

	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFile), []byte("contract_address: \"0x03\"\n"), 0600))
	next, err := cfg.Reload()
	require.NoError(t, err)

	assert.Equal(t, "0x03", next.ContractAddress)
	assert.True(t, next.Debug)
	assert.True(t, next.Quiet)
}

func TestTarget(t *testing.T) {
	cfg := &Config{ContractAddress: "0x01"}
	target, err := cfg.Target()
	require.NoError(t, err)
	assert.Equal(t, "0x01", target.Address)
	assert.Equal(t, DefaultABI, target.ABI)
	assert.Contains(t, DefaultABI, `"getTasks"`)

	path := filepath.Join(t.TempDir(), "todo.json")
	require.NoError(t, os.WriteFile(path, []byte("[custom]"), 0600))
	cfg.ABIPath = path
	target, err = cfg.Target()
	require.NoError(t, err)
	assert.Equal(t, "[custom]", target.ABI)

	cfg.ABIPath = filepath.Join(t.TempDir(), "missing.json")
	_, err = cfg.Target()
	assert.Error(t, err)
}

func TestDefaultConfigDir_XDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	assert.Equal(t, filepath.Join("/xdg", AppName), DefaultConfigDir())
}

func TestWatch_ReportsConfigWrites(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan struct{}, 10)
	require.NoError(t, Watch(ctx, dir, func() { changed <- struct{}{} }))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFile), []byte("rpc_url: x\n"), 0600))

	select {
	case <-changed:
	case <-time.After(2 * time.Second):
		t.Fatal("no change reported for config.yaml")
	}
}

func TestWatch_MissingDir(t *testing.T) {
	err := Watch(context.Background(), filepath.Join(t.TempDir(), "missing"), func() {})
	assert.Error(t, err)
}
