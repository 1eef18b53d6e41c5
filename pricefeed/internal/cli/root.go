package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/malbeclabs/pricefeed/config"
	"github.com/malbeclabs/pricefeed/pkg/rpc"
	"github.com/malbeclabs/pricefeed/smartcontract/sdk/go/pricefeed"
	"github.com/spf13/cobra"
)

type ExitCode int

const (
	exitCodeSuccess = 0
	exitCodeError   = 1
)

func Run() ExitCode {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		return exitCodeError
	}
	return exitCodeSuccess
}

// app holds the persistent flags shared by every command.
type app struct {
	env       string
	rpcURL    string
	programID string
	keypair   string
	envFile   string
	verbose   bool

	// newRPC connects to the resolved endpoint.
	newRPC func(log *slog.Logger, endpoint string) pricefeed.RPCClient
}

func NewRootCmd() *cobra.Command {
	return newApp().rootCmd()
}

func newApp() *app {
	return &app{
		newRPC: func(log *slog.Logger, endpoint string) pricefeed.RPCClient {
			return rpc.NewWithRetries(endpoint, &rpc.RetryOptions{Logger: log})
		},
	}
}

func (a *app) rootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "pricefeed-cli",
		Short:        "CLI for the onchain price feed program.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if a.envFile == "" {
				return nil
			}
			if err := godotenv.Load(a.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("failed to load env file: %w", err)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			err := cmd.Help()
			if err != nil {
				return fmt.Errorf("failed to show help: %w", err)
			}
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "set debug logging level")
	flags.StringVarP(&a.env, "env", "e", config.EnvDevnet, "The network environment (devnet, testnet, mainnet-beta, localnet)")
	flags.StringVar(&a.rpcURL, "rpc-url", "", "Override the RPC URL of the environment")
	flags.StringVar(&a.programID, "program-id", "", "Override the program ID of the environment")
	flags.StringVarP(&a.keypair, "keypair", "k", "", "Path to the signer keypair (default ~/.config/solana/id.json)")
	flags.StringVar(&a.envFile, "env-file", ".env", "Path to a dotenv file loaded before resolving the environment")

	rootCmd.AddCommand(
		a.deriveCmd(),
		a.createCmd(),
		a.setCmd(),
		a.modifyCmd(),
		a.getCmd(),
		a.listCmd(),
		a.publishCmd(),
		a.simulateCmd(),
	)

	return rootCmd
}

func (a *app) logger(w io.Writer) *slog.Logger {
	return newLogger(w, a.verbose)
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	}))
}

func defaultKeypairPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".config", "solana", "id.json"), nil
}
