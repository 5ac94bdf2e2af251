package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	Network  string
	LogLevel string

	Strategy    string
	Fee         uint32
	TickSpacing int32
	Hooks       string
	Tiers       []FeeTier

	Signer     string
	PrivateKey string
	Account    string
	WalletURL  string

	Out   string
	PGDSN string

	// Chain is only populated by LoadWithChain.
	Chain ChainConfig

	// Domain is populated by LoadWithChain and LoadWithDomain.
	Domain Domain
}

// FeeTier is one fee / tick spacing pair scanned by the best-liquidity strategy.
type FeeTier struct {
	Fee         uint32
	TickSpacing int32
}

// Load merges .env, config file, environment variables, and flags into Config.
// The chain registry is not consulted; commands that stay off-chain use this.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	cfg, _, err := load(cfgFile, flags)
	return cfg, err
}

// LoadWithChain is Load followed by LoadChain for the selected network.
func LoadWithChain(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	cfg, v, err := load(cfgFile, flags)
	if err != nil {
		return Config{}, err
	}
	chain, err := LoadChain(v, cfg.Network)
	if err != nil {
		return Config{}, err
	}
	cfg.Chain = chain
	cfg.Domain = chain.Domain()
	return cfg, nil
}

// LoadWithDomain is Load followed by ResolveDomain for the selected network.
// Unlike LoadWithChain it does not require RPC or contract settings.
func LoadWithDomain(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	cfg, v, err := load(cfgFile, flags)
	if err != nil {
		return Config{}, err
	}
	domain, err := ResolveDomain(v, cfg.Network)
	if err != nil {
		return Config{}, err
	}
	cfg.Domain = domain
	return cfg, nil
}

func load(cfgFile string, flags *pflag.FlagSet) (Config, *viper.Viper, error) {
	v, err := newViper(cfgFile, flags)
	if err != nil {
		return Config{}, nil, err
	}

	tiers, err := ParseTiers(getStringSlice(v, "tiers"))
	if err != nil {
		return Config{}, nil, err
	}
	fee := v.GetInt64("fee")
	if fee < 0 || fee > 1<<24-1 {
		return Config{}, nil, fmt.Errorf("fee %d out of range for uint24", fee)
	}
	tickSpacing := v.GetInt64("tick-spacing")
	if tickSpacing < -1<<23 || tickSpacing > 1<<23-1 {
		return Config{}, nil, fmt.Errorf("tick spacing %d out of range for int24", tickSpacing)
	}

	cfg := Config{
		Network:     strings.ToLower(strings.TrimSpace(v.GetString("network"))),
		LogLevel:    v.GetString("log-level"),
		Strategy:    v.GetString("strategy"),
		Fee:         uint32(fee),
		TickSpacing: int32(tickSpacing),
		Hooks:       v.GetString("hooks"),
		Tiers:       tiers,
		Signer:      v.GetString("signer"),
		PrivateKey:  v.GetString("private-key"),
		Account:     v.GetString("account"),
		WalletURL:   v.GetString("wallet-url"),
		Out:         v.GetString("out"),
		PGDSN:       v.GetString("pg-dsn"),
	}

	switch cfg.Strategy {
	case "fixed", "best-liquidity":
	default:
		return Config{}, nil, fmt.Errorf("unknown strategy %q (want fixed or best-liquidity)", cfg.Strategy)
	}
	switch cfg.Signer {
	case "local", "delegated":
	default:
		return Config{}, nil, fmt.Errorf("unknown signer %q (want local or delegated)", cfg.Signer)
	}

	return cfg, v, nil
}

func newViper(cfgFile string, flags *pflag.FlagSet) (*viper.Viper, error) {
	envFile := ".env"
	if flags != nil {
		if f := flags.Lookup("env-file"); f != nil && f.Value.String() != "" {
			envFile = f.Value.String()
		}
	}
	if err := loadEnvFile(envFile); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetEnvPrefix("PAYMASTER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("network", "sepolia")
	v.SetDefault("log-level", "info")
	v.SetDefault("strategy", "fixed")
	v.SetDefault("fee", 1000)
	v.SetDefault("tick-spacing", 60)
	v.SetDefault("signer", "local")
	v.SetDefault("out", "./data/payloads.jsonl")

	// PRIVATE_KEY and ADDRESS are the names the integration .env files use.
	if err := v.BindEnv("private-key", "PAYMASTER_PRIVATE_KEY", "PRIVATE_KEY"); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}
	if err := v.BindEnv("account", "PAYMASTER_ACCOUNT", "ADDRESS"); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}
	return v, nil
}

// loadEnvFile exports the variables of a dotenv file without overriding
// variables already set. A missing file is not an error.
func loadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

// ParseTiers parses "fee:tickSpacing" entries, e.g. "500:10".
func ParseTiers(items []string) ([]FeeTier, error) {
	if len(items) == 0 {
		return nil, nil
	}
	tiers := make([]FeeTier, 0, len(items))
	for _, item := range items {
		parts := strings.SplitN(item, ":", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid tier %q (want fee:tickSpacing)", item)
		}
		fee, err := strconv.ParseUint(strings.TrimSpace(parts[0]), 10, 24)
		if err != nil {
			return nil, fmt.Errorf("invalid tier fee %q: %w", parts[0], err)
		}
		tick, err := strconv.ParseInt(strings.TrimSpace(parts[1]), 10, 24)
		if err != nil {
			return nil, fmt.Errorf("invalid tier tick spacing %q: %w", parts[1], err)
		}
		tiers = append(tiers, FeeTier{Fee: uint32(fee), TickSpacing: int32(tick)})
	}
	return tiers, nil
}

func getStringSlice(v *viper.Viper, key string) []string {
	if !v.IsSet(key) {
		return nil
	}

	val := v.Get(key)
	switch typed := val.(type) {
	case []string:
		return cleanStrings(typed)
	case string:
		return splitAndClean(typed)
	case []interface{}:
		items := make([]string, 0, len(typed))
		for _, item := range typed {
			items = append(items, fmt.Sprintf("%v", item))
		}
		return cleanStrings(items)
	default:
		return nil
	}
}

func splitAndClean(input string) []string {
	if input == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	return cleanStrings(parts)
}

func cleanStrings(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}
