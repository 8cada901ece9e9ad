package config

import "time"

// Config holds all raisin configuration.
type Config struct {
	Network       string              `json:"network"`
	RPCAlgorithm  string              `json:"rpc_algorithm"` // "fastest" | "round-robin" | "failover"
	CustomRPCs    map[string][]string `json:"custom_rpcs"`
	RPCURL        string              `json:"rpc_url,omitempty"` // pins one endpoint, skipping selection
	RaisinAddress string              `json:"raisin_address,omitempty"`
	RaisinABI     string              `json:"raisin_abi,omitempty"` // descriptor file; empty = builtin
	TokenABI      string              `json:"token_abi,omitempty"`
	TestToken     string              `json:"test_token,omitempty"`
	Keystore      string              `json:"keystore,omitempty"`
	Confirmations uint64              `json:"confirmations"`
	PollInterval  int                 `json:"poll_interval"`   // seconds
	ConfirmWait   int                 `json:"confirm_timeout"` // seconds

	// RememberPassword keeps unlocked keystore passwords in the OS keychain.
	RememberPassword bool `json:"remember_password,omitempty"`

	// internal: config dir path used for Save()
	configDir string
}

// PollEvery returns the receipt polling interval.
func (c *Config) PollEvery() time.Duration {
	if c.PollInterval <= 0 {
		return ReceiptPollInterval
	}
	return time.Duration(c.PollInterval) * time.Second
}

// ConfirmTimeout bounds a single confirmation wait.
func (c *Config) ConfirmTimeout() time.Duration {
	if c.ConfirmWait <= 0 {
		return TxConfirmTimeout
	}
	return time.Duration(c.ConfirmWait) * time.Second
}
