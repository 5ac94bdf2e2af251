package main

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"paymasterData/internal/config"
	"paymasterData/internal/dex"
	"paymasterData/internal/payload"
	"paymasterData/internal/permit"
)

func runDecode(cmd *cobra.Command, args []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	chainID, _ := cmd.Flags().GetUint64("chain-id")
	load := config.LoadWithDomain
	if chainID != 0 {
		load = config.Load
	}
	cfg, err := load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	raw, _ := cmd.Flags().GetString("data")
	if len(args) == 1 {
		raw = args[0]
	}
	if raw == "" {
		return fmt.Errorf("paymaster data is required")
	}
	data, err := hexutil.Decode(raw)
	if err != nil {
		return fmt.Errorf("invalid paymaster data: %w", err)
	}

	permit2Flag, _ := cmd.Flags().GetString("permit2")
	permit2, err := optionalAddress("permit2", permit2Flag)
	if err != nil {
		return err
	}
	domain := decodeDomain(cfg.Domain, chainID, permit2)

	key, record, sig, err := payload.Decode(data)
	if err != nil {
		return err
	}
	id, err := dex.PoolID(key)
	if err != nil {
		return err
	}

	out := map[string]interface{}{
		"pool_key":  key,
		"pool_id":   id,
		"permit":    record,
		"signature": sig,
	}
	signer, err := permit.Recover(record, domain, sig)
	if err != nil {
		logger.Warn("signer recovery failed", zap.Uint64("chain_id", domain.ChainID), zap.Error(err))
	} else {
		out["chain_id"] = domain.ChainID
		out["permit2"] = domain.Permit2
		out["signer"] = signer
	}
	return writeJSON(cmd.OutOrStdout(), out)
}

// decodeDomain applies the --chain-id and --permit2 overrides to the
// network's domain. A chain id given on the command line replaces the
// network, so its Permit2 falls back to the canonical deployment.
func decodeDomain(network config.Domain, chainID uint64, permit2 common.Address) permit.Domain {
	domain := permitDomain(network)
	if chainID != 0 {
		domain = permit.Domain{ChainID: chainID, Permit2: permit.CanonicalPermit2Address}
	}
	if permit2 != (common.Address{}) {
		domain.Permit2 = permit2
	}
	return domain
}
