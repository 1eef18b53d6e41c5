package cli

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"

	"github.com/gagliardetto/solana-go"
	"github.com/malbeclabs/pricefeed/config"
	"github.com/malbeclabs/pricefeed/smartcontract/sdk/go/pricefeed"
)

func (a *app) networkConfig() (*config.NetworkConfig, error) {
	networkConfig, err := config.NetworkConfigForEnv(a.env)
	if err != nil {
		return nil, fmt.Errorf("failed to get network config: %w", err)
	}
	if a.rpcURL != "" {
		networkConfig.RPCURL = a.rpcURL
	}
	if a.programID != "" {
		programID, err := solana.PublicKeyFromBase58(a.programID)
		if err != nil {
			return nil, fmt.Errorf("failed to parse program ID: %w", err)
		}
		networkConfig.ProgramID = programID
	}
	return networkConfig, nil
}

func (a *app) loadSigner() (*solana.PrivateKey, error) {
	path := a.keypair
	if path == "" {
		var err error
		path, err = defaultKeypairPath()
		if err != nil {
			return nil, err
		}
	}
	signer, err := solana.PrivateKeyFromSolanaKeygenFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to load keypair %s: %w", path, err)
	}
	return &signer, nil
}

// newClient builds an SDK client for the resolved environment. Read-only
// commands pass withSigner=false and never touch the keypair.
func (a *app) newClient(log *slog.Logger, withSigner bool) (*pricefeed.Client, error) {
	networkConfig, err := a.networkConfig()
	if err != nil {
		return nil, err
	}

	var signer *solana.PrivateKey
	if withSigner {
		signer, err = a.loadSigner()
		if err != nil {
			return nil, err
		}
	}

	log.Debug("Using network", "env", networkConfig.Moniker, "rpcURL", networkConfig.RPCURL, "programID", networkConfig.ProgramID)
	return pricefeed.New(log, a.newRPC(log, networkConfig.RPCURL), signer, networkConfig.ProgramID), nil
}

func parseFeedID(s string) (uint64, error) {
	feedID, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid feed id %q: %w", s, err)
	}
	return feedID, nil
}

func parsePrice(s string) (float64, error) {
	price, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid price %q: %w", s, err)
	}
	return price, nil
}
