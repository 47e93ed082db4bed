// Package config handles XDG configuration directory and file paths.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"chaintodo/internal/service"
)

const (
	// AppName is the application directory name.
	AppName = "chaintodo"

	// ConfigFile is the optional settings filename.
	ConfigFile = "config.yaml"

	// LogFile is the log filename used when logs must stay off the terminal.
	LogFile = "chaintodo.log"

	// DefaultRPCURL is the wallet provider endpoint used when none is configured.
	DefaultRPCURL = "http://127.0.0.1:8545"

	// DefaultConfirmTimeout bounds how long a mutation waits for confirmation.
	DefaultConfirmTimeout = 10 * time.Minute

	// DefaultPollInterval is how often confirmations are polled.
	DefaultPollInterval = 2 * time.Second
)

// DefaultABI is the interface description of the task-list contract.
//
//go:embed todo.abi.json
var DefaultABI string

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string `yaml:"-"`

	// Debug enables debug logging.
	Debug bool `yaml:"-"`

	// Quiet suppresses informational output.
	Quiet bool `yaml:"-"`

	// RPCURL is the wallet provider JSON-RPC endpoint. Empty disables the provider.
	RPCURL string `yaml:"rpc_url"`

	// ContractAddress is the task-list contract address.
	ContractAddress string `yaml:"contract_address"`

	// ABIPath overrides the embedded contract interface description.
	ABIPath string `yaml:"abi_path"`

	// ConfirmTimeout bounds confirmation waits. Zero waits indefinitely.
	ConfirmTimeout Duration `yaml:"confirm_timeout"`

	// PollInterval is the receipt polling interval.
	PollInterval Duration `yaml:"poll_interval"`
}

// New creates a new Config with the default or specified config directory.
// If configDir is empty, uses XDG_CONFIG_HOME/chaintodo or $HOME/.config/chaintodo.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	return &Config{
		Dir:            dir,
		RPCURL:         DefaultRPCURL,
		ConfirmTimeout: Duration(DefaultConfirmTimeout),
		PollInterval:   Duration(DefaultPollInterval),
	}, nil
}

// Load creates a Config for configDir, then applies config.yaml (if present)
// and environment overrides, in that order.
func Load(configDir string) (*Config, error) {
	cfg, err := New(configDir)
	if err != nil {
		return nil, err
	}
	if err := cfg.readFile(); err != nil {
		return nil, err
	}
	cfg.applyEnvOverrides()
	return cfg, nil
}

// Reload re-reads config.yaml and environment overrides into a copy of c.
// Flags (Dir, Debug, Quiet) are kept.
func (c *Config) Reload() (*Config, error) {
	next, err := Load(c.Dir)
	if err != nil {
		return nil, err
	}
	next.Debug = c.Debug
	next.Quiet = c.Quiet
	return next, nil
}

func (c *Config) readFile() error {
	data, err := os.ReadFile(c.ConfigPath())
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", ConfigFile, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("invalid %s: %w", ConfigFile, err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v, ok := os.LookupEnv("CHAINTODO_RPC_URL"); ok {
		c.RPCURL = v
	}
	if v := os.Getenv("CHAINTODO_CONTRACT_ADDRESS"); v != "" {
		c.ContractAddress = v
	}
	if v := os.Getenv("CHAINTODO_ABI_PATH"); v != "" {
		c.ABIPath = v
	}
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// ConfigPath returns the path to config.yaml.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.Dir, ConfigFile)
}

// LogPath returns the path to the log file.
func (c *Config) LogPath() string {
	return filepath.Join(c.Dir, LogFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// ContractABI returns the interface description from ABIPath, or DefaultABI
// when ABIPath is unset.
func (c *Config) ContractABI() (string, error) {
	if c.ABIPath == "" {
		return DefaultABI, nil
	}
	data, err := os.ReadFile(c.ABIPath)
	if err != nil {
		return "", fmt.Errorf("failed to read contract ABI: %w", err)
	}
	return string(data), nil
}

// Target returns the contract to bind to.
func (c *Config) Target() (service.Target, error) {
	abi, err := c.ContractABI()
	if err != nil {
		return service.Target{}, err
	}
	return service.Target{Address: c.ContractAddress, ABI: abi}, nil
}
