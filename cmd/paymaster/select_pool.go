package main

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"paymasterData/internal/config"
	"paymasterData/internal/dex"
)

func runSelectPool(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadWithChain(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	tokenFlag, _ := cmd.Flags().GetString("token")
	amountFlag, _ := cmd.Flags().GetString("amount")
	token, err := tokenOrUSDC(tokenFlag, cfg.Chain)
	if err != nil {
		return err
	}
	amount, err := uint256.FromDecimal(amountFlag)
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", amountFlag, err)
	}

	ctx, stop := commandContext()
	defer stop()

	chainClient, err := connectChain(ctx, cfg.Chain, logger)
	if err != nil {
		return err
	}
	defer chainClient.Close()

	stateView := dex.NewStateView(chainClient, cfg.Chain.StateView, logger)
	poolRouter, err := newRouter(cfg, stateView, logger)
	if err != nil {
		return err
	}

	selection, err := poolRouter.SelectPool(ctx, token, amount)
	if err != nil {
		return err
	}

	report := map[string]interface{}{
		"pool_key":  selection.Key,
		"pool_id":   selection.ID,
		"liquidity": selection.Liquidity.Dec(),
	}
	slot0, err := stateView.Slot0(ctx, selection.ID)
	if err != nil {
		logger.Warn("slot0 read failed", zap.String("pool_id", selection.ID.Hex()), zap.Error(err))
	} else {
		report["slot0"] = slot0
	}
	return writeJSON(cmd.OutOrStdout(), report)
}
