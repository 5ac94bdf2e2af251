package main

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"paymasterData/internal/config"
)

func main() {
	root := &cobra.Command{
		Use:          "paymaster",
		Short:        "Build Uniswap v4 paymaster data with Permit2 authorisations",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")
	root.PersistentFlags().String("env-file", "", "dotenv file to load (default .env)")
	root.PersistentFlags().String("network", "sepolia", "network name ("+strings.Join(config.Networks(), ", ")+" or one defined in config)")
	root.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")

	poolIDCmd := &cobra.Command{
		Use:   "pool-id",
		Short: "Compute a Uniswap v4 PoolId",
		RunE:  runPoolID,
	}
	poolIDCmd.Flags().String("currency0", "", "first currency address (empty for native)")
	poolIDCmd.Flags().String("currency1", "", "second currency address (empty for native)")
	poolIDCmd.Flags().Uint32("fee", 1000, "fee in hundredths of a bip (uint24)")
	poolIDCmd.Flags().Int32("tick-spacing", 60, "tick spacing (int24)")
	poolIDCmd.Flags().String("hooks", "", "hooks contract address")
	poolIDCmd.Flags().Bool("sort", false, "sort currencies before hashing")
	root.AddCommand(poolIDCmd)

	selectCmd := &cobra.Command{
		Use:   "select-pool",
		Short: "Select a pool and check its liquidity",
		RunE:  runSelectPool,
	}
	addTokenFlags(selectCmd)
	addStrategyFlags(selectCmd)
	root.AddCommand(selectCmd)

	buildCmd := &cobra.Command{
		Use:   "build",
		Short: "Select a pool, sign a Permit2 permit and encode paymaster data",
		RunE:  runBuild,
	}
	addTokenFlags(buildCmd)
	addStrategyFlags(buildCmd)
	addSignerFlags(buildCmd)
	buildCmd.Flags().Int64("nonce", -1, "permit nonce (negative reads it from Permit2)")
	buildCmd.Flags().String("sig-deadline", "0", "signature deadline (unix seconds)")
	buildCmd.Flags().Uint64("expiration", 0, "allowance expiration (unix seconds, uint48)")
	buildCmd.Flags().String("out", "./data/payloads.jsonl", "output JSONL path (empty to disable)")
	buildCmd.Flags().String("pg-dsn", "", "Postgres DSN for the sponsored_payloads sink")
	root.AddCommand(buildCmd)

	decodeCmd := &cobra.Command{
		Use:   "decode [paymaster-data]",
		Short: "Decode paymaster data and recover the permit signer",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runDecode,
	}
	decodeCmd.Flags().String("data", "", "hex paymaster data (or pass as argument)")
	decodeCmd.Flags().Uint64("chain-id", 0, "chain id of the Permit2 domain (default the network's)")
	decodeCmd.Flags().String("permit2", "", "Permit2 address of the domain (default the network's)")
	root.AddCommand(decodeCmd)

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the payload builder HTTP API",
		RunE:  runServe,
	}
	addStrategyFlags(serveCmd)
	serveCmd.Flags().String("listen", ":8080", "listen address")
	serveCmd.Flags().StringSlice("cors-origins", nil, "allowed CORS origins (empty allows every origin)")
	serveCmd.Flags().Bool("offline", false, "serve without a chain connection")
	serveCmd.Flags().Bool("record", false, "hand encoded payloads to the configured sinks")
	serveCmd.Flags().String("out", "./data/payloads.jsonl", "output JSONL path when --record is set")
	serveCmd.Flags().String("pg-dsn", "", "Postgres DSN when --record is set")
	root.AddCommand(serveCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func addTokenFlags(cmd *cobra.Command) {
	cmd.Flags().String("token", "", "payment token (default the network's USDC)")
	cmd.Flags().String("amount", "0", "token amount in base units")
}

func addStrategyFlags(cmd *cobra.Command) {
	cmd.Flags().String("strategy", "fixed", "pool selection strategy (fixed, best-liquidity)")
	cmd.Flags().Uint32("fee", 1000, "fee tier of the fixed strategy")
	cmd.Flags().Int32("tick-spacing", 60, "tick spacing of the fixed strategy")
	cmd.Flags().String("hooks", "", "hooks contract address")
	cmd.Flags().StringSlice("tiers", nil, "fee:tickSpacing tiers for best-liquidity (comma-separated)")
}

func addSignerFlags(cmd *cobra.Command) {
	cmd.Flags().String("signer", "local", "signing provider (local, delegated)")
	cmd.Flags().String("private-key", "", "hex private key for the local signer")
	cmd.Flags().String("account", "", "acting account for the delegated signer")
	cmd.Flags().String("wallet-url", "", "wallet RPC URL for the delegated signer (default rpc url)")
}

func commandContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
