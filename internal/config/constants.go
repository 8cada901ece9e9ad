package config

import "time"

// Gas limits used as EstimateGas fallbacks when the node cannot simulate the tx.
// These are conservative upper bounds; actual gas used will be lower.
const (
	GasLimitETHTransfer  = uint64(21_000)  // native ETH transfer
	GasLimitContractCall = uint64(200_000) // generic contract state-change call
)

// DefaultConfirmations is the block depth every state-changing call waits for.
const DefaultConfirmations = uint64(6)

// Timing constants used by cmd and the transaction submitter.
const (
	RPCSelectTimeout    = 10 * time.Second // endpoint benchmark / RPC selection
	ReadCallTimeout     = 30 * time.Second // a single eth_call
	ReceiptPollInterval = 4 * time.Second  // receipt + head polling cadence
	TxConfirmTimeout    = 15 * time.Minute // upper bound on a 6-block wait
	DropAfterPolls      = 45               // polls a tx may be unknown to the node
)

// Environment variables read on top of config.json.
const (
	EnvConfigDir     = "RAISIN_CONFIG_DIR"
	EnvRPCURL        = "RAISIN_RPC_URL"
	EnvAPIKey        = "API_KEY" // legacy name: the full RPC URL
	EnvRaisinAddress = "RAISIN_ADDRESS"
	EnvKeystore      = "RAISIN_KEYSTORE"
	EnvNetwork       = "RAISIN_NETWORK"
	EnvConfirmations = "RAISIN_CONFIRMATIONS"
	EnvPassword      = "RAISIN_PASSWORD"
)
