package main

import (
	"fmt"
	"time"

	"github.com/holiman/uint256"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"paymasterData/internal/config"
	"paymasterData/internal/dex"
	"paymasterData/internal/model"
	"paymasterData/internal/permit"
	"paymasterData/internal/sponsor"
)

func runBuild(cmd *cobra.Command, _ []string) error {
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
	deadlineFlag, _ := cmd.Flags().GetString("sig-deadline")
	nonceFlag, _ := cmd.Flags().GetInt64("nonce")
	expiration, _ := cmd.Flags().GetUint64("expiration")

	token, err := tokenOrUSDC(tokenFlag, cfg.Chain)
	if err != nil {
		return err
	}
	amount, err := uint256.FromDecimal(amountFlag)
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", amountFlag, err)
	}
	deadline, err := uint256.FromDecimal(deadlineFlag)
	if err != nil {
		return fmt.Errorf("invalid sig deadline %q: %w", deadlineFlag, err)
	}
	req := sponsor.Request{Token: token, Amount: amount, SigDeadline: deadline, Expiration: expiration}
	if nonceFlag >= 0 {
		nonce := uint64(nonceFlag)
		req.Nonce = &nonce
	}

	ctx, stop := commandContext()
	defer stop()

	chainClient, err := connectChain(ctx, cfg.Chain, logger)
	if err != nil {
		return err
	}
	defer chainClient.Close()

	signer, closeSigner, err := newSigner(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeSigner()

	sink, closeSink, err := newSink(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeSink()

	stateView := dex.NewStateView(chainClient, cfg.Chain.StateView, logger)
	poolRouter, err := newRouter(cfg, stateView, logger)
	if err != nil {
		return err
	}

	builder, err := sponsor.NewBuilder(
		poolRouter,
		signer,
		permit.NewAllowanceReader(chainClient, cfg.Chain.Permit2),
		sponsor.Settings{
			Network:   cfg.Chain.Network,
			ChainID:   cfg.Chain.ChainID,
			Permit2:   cfg.Chain.Permit2,
			Paymaster: cfg.Chain.Paymaster,
		},
		logger,
	)
	if err != nil {
		return err
	}

	logger.Info("build start",
		zap.String("network", cfg.Chain.Network),
		zap.String("token", token.Hex()),
		zap.String("amount", amount.Dec()),
		zap.String("signer", signer.Kind()),
		zap.String("owner", signer.Address().Hex()),
	)

	res, err := builder.Build(ctx, req)
	if err != nil {
		return err
	}

	record := builder.Record(res, time.Now())
	if sink != nil {
		if err := sink.PutPayloadBatch(ctx, []model.PayloadRecord{record}); err != nil {
			return fmt.Errorf("store payload: %w", err)
		}
	}
	return writeJSON(cmd.OutOrStdout(), record)
}
