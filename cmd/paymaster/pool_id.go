package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"paymasterData/internal/config"
	"paymasterData/internal/dex"
	"paymasterData/internal/model"
)

func runPoolID(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	c0, _ := cmd.Flags().GetString("currency0")
	c1, _ := cmd.Flags().GetString("currency1")
	hooksFlag, _ := cmd.Flags().GetString("hooks")
	sortKey, _ := cmd.Flags().GetBool("sort")

	currency0, err := optionalAddress("currency0", c0)
	if err != nil {
		return err
	}
	currency1, err := optionalAddress("currency1", c1)
	if err != nil {
		return err
	}
	hooks, err := optionalAddress("hooks", hooksFlag)
	if err != nil {
		return err
	}

	key := model.PoolKey{
		Currency0:   currency0,
		Currency1:   currency1,
		Fee:         cfg.Fee,
		TickSpacing: cfg.TickSpacing,
		Hooks:       hooks,
	}
	if sortKey {
		key = model.NewPoolKey(currency0, currency1, cfg.Fee, cfg.TickSpacing, hooks)
	}
	if !key.Sorted() {
		fmt.Fprintln(os.Stderr, "warning: currencies are not in ascending order; the pool manager will not know this id")
	}

	id, err := dex.PoolID(key)
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), map[string]interface{}{
		"pool_key": key,
		"pool_id":  id,
	})
}
