package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/gagliardetto/solana-go"
)

const (
	EnvMainnetBeta = "mainnet-beta"
	EnvMainnet     = "mainnet"
	EnvTestnet     = "testnet"
	EnvDevnet      = "devnet"
	EnvLocalnet    = "localnet"
)

var (
	ErrInvalidEnvironment = errors.New("invalid environment")
)

type NetworkConfig struct {
	Moniker   string
	RPCURL    string
	ProgramID solana.PublicKey
}

// NetworkConfigForEnv returns the RPC endpoint and program ID for the given
// environment. PRICEFEED_RPC_URL and PRICEFEED_PROGRAM_ID override the
// defaults when set.
func NetworkConfigForEnv(env string) (*NetworkConfig, error) {
	var (
		moniker   string
		rpcURL    string
		programID string
	)
	switch env {
	case EnvMainnetBeta, EnvMainnet:
		moniker, rpcURL, programID = EnvMainnetBeta, MainnetRPCURL, MainnetProgramID
	case EnvTestnet:
		moniker, rpcURL, programID = EnvTestnet, TestnetRPCURL, TestnetProgramID
	case EnvDevnet:
		moniker, rpcURL, programID = EnvDevnet, DevnetRPCURL, DevnetProgramID
	case EnvLocalnet:
		moniker, rpcURL, programID = EnvLocalnet, LocalnetRPCURL, LocalnetProgramID
	default:
		return nil, fmt.Errorf("%w %q, must be one of: %s, %s, %s, %s", ErrInvalidEnvironment, env, EnvMainnetBeta, EnvTestnet, EnvDevnet, EnvLocalnet)
	}

	if override := os.Getenv(EnvRPCURL); override != "" {
		rpcURL = override
	}
	if override := os.Getenv(EnvProgramID); override != "" {
		programID = override
	}

	pk, err := solana.PublicKeyFromBase58(programID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse program ID: %w", err)
	}

	return &NetworkConfig{
		Moniker:   moniker,
		RPCURL:    rpcURL,
		ProgramID: pk,
	}, nil
}
