package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strconv"
	"strings"
)

const (
	defaultNetwork   = "goerli"
	defaultAlgorithm = "fastest"

	configFile = "config.json"
	envFile    = ".env"
)

// DefaultDir returns $RAISIN_CONFIG_DIR or ~/.raisin.
func DefaultDir() (string, error) {
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home dir: %w", err)
	}
	return filepath.Join(home, ".raisin"), nil
}

// Load reads config from dir (or creates defaults). dir defaults to DefaultDir().
// Environment overrides are not applied; see ApplyEnv.
func Load(dir string) (*Config, error) {
	if dir == "" {
		d, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("could not create config dir: %w", err)
	}

	cfg := defaults(dir)

	path := filepath.Join(dir, configFile)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.configDir = dir
	if cfg.CustomRPCs == nil {
		cfg.CustomRPCs = make(map[string][]string)
	}
	if cfg.Confirmations == 0 {
		cfg.Confirmations = DefaultConfirmations
	}

	return cfg, nil
}

// Save writes the config to disk.
func (c *Config) Save() error {
	if err := os.MkdirAll(c.configDir, 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.configDir, configFile), data, 0o600)
}

// ApplyEnv overlays environment values onto c. Nothing it sets is persisted
// unless the caller saves c afterwards.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv(EnvAPIKey); v != "" {
		c.RPCURL = v
	}
	if v := getenv(EnvRPCURL); v != "" {
		c.RPCURL = v
	}
	if v := getenv(EnvRaisinAddress); v != "" {
		c.RaisinAddress = v
	}
	if v := getenv(EnvKeystore); v != "" {
		c.Keystore = v
	}
	if v := getenv(EnvNetwork); v != "" {
		c.Network = v
	}
	if v := getenv(EnvConfirmations); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil || n == 0 {
			return fmt.Errorf("%s must be a positive integer, got %q", EnvConfirmations, v)
		}
		c.Confirmations = n
	}
	return nil
}

// Keys lists the settings `config set` accepts.
func Keys() []string {
	keys := make([]string, 0, len(setters))
	for k := range setters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

var setters = map[string]func(c *Config, v string) error{
	"network":        func(c *Config, v string) error { c.Network = strings.ToLower(v); return nil },
	"rpc_url":        func(c *Config, v string) error { c.RPCURL = v; return nil },
	"raisin_address": func(c *Config, v string) error { c.RaisinAddress = v; return nil },
	"raisin_abi":     func(c *Config, v string) error { c.RaisinABI = v; return nil },
	"token_abi":      func(c *Config, v string) error { c.TokenABI = v; return nil },
	"test_token":     func(c *Config, v string) error { c.TestToken = v; return nil },
	"keystore":       func(c *Config, v string) error { c.Keystore = v; return nil },
	"rpc_algorithm": func(c *Config, v string) error {
		if !slices.Contains([]string{"fastest", "round-robin", "failover"}, v) {
			return fmt.Errorf("rpc_algorithm must be fastest, round-robin or failover")
		}
		c.RPCAlgorithm = v
		return nil
	},
	"confirmations": func(c *Config, v string) error {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil || n == 0 {
			return fmt.Errorf("confirmations must be a positive integer")
		}
		c.Confirmations = n
		return nil
	},
	"remember_password": func(c *Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("remember_password must be true or false")
		}
		c.RememberPassword = b
		return nil
	},
	"poll_interval":   intSetter(func(c *Config) *int { return &c.PollInterval }),
	"confirm_timeout": intSetter(func(c *Config) *int { return &c.ConfirmWait }),
}

func intSetter(field func(*Config) *int) func(*Config, string) error {
	return func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return fmt.Errorf("value must be a positive number of seconds")
		}
		*field(c) = n
		return nil
	}
}

// Set updates one setting by its JSON key.
func (c *Config) Set(key, value string) error {
	set, ok := setters[key]
	if !ok {
		return fmt.Errorf("unknown config key %q (valid: %s)", key, strings.Join(Keys(), ", "))
	}
	return set(c, strings.TrimSpace(value))
}

// AddRPC adds a custom RPC URL for a network.
func (c *Config) AddRPC(network, url string) error {
	if c.CustomRPCs == nil {
		c.CustomRPCs = make(map[string][]string)
	}
	if slices.Contains(c.CustomRPCs[network], url) {
		return fmt.Errorf("RPC %s already exists for network %s", url, network)
	}
	c.CustomRPCs[network] = append(c.CustomRPCs[network], url)
	return nil
}

// RemoveRPC removes a custom RPC URL for a network.
func (c *Config) RemoveRPC(network, url string) error {
	rpcs := c.CustomRPCs[network]
	idx := slices.Index(rpcs, url)
	if idx == -1 {
		return fmt.Errorf("RPC %s not found for network %s", url, network)
	}
	c.CustomRPCs[network] = slices.Delete(rpcs, idx, idx+1)
	return nil
}

// GetRPCs returns custom RPCs for a network.
func (c *Config) GetRPCs(network string) []string {
	return c.CustomRPCs[network]
}

// Dir returns the config directory.
func (c *Config) Dir() string {
	return c.configDir
}

// --- helpers ---

func defaults(dir string) *Config {
	return &Config{
		Network:       defaultNetwork,
		RPCAlgorithm:  defaultAlgorithm,
		CustomRPCs:    make(map[string][]string),
		Confirmations: DefaultConfirmations,
		configDir:     dir,
	}
}
