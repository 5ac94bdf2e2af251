package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Network != "sepolia" || cfg.Strategy != "fixed" || cfg.Signer != "local" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Fee != 1000 || cfg.TickSpacing != 60 {
		t.Fatalf("unexpected pool defaults: fee=%d tick=%d", cfg.Fee, cfg.TickSpacing)
	}
}

func TestLoadFlagsAndEnvFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	unsetenv(t, "PRIVATE_KEY")
	unsetenv(t, "PAYMASTER_PRIVATE_KEY")
	envPath := filepath.Join(dir, "custom.env")
	if err := os.WriteFile(envPath, []byte("PRIVATE_KEY=0xabc\n"), 0o600); err != nil {
		t.Fatalf("write env: %v", err)
	}

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("env-file", "", "")
	flags.String("strategy", "fixed", "")
	flags.StringSlice("tiers", nil, "")
	if err := flags.Parse([]string{"--env-file", envPath, "--strategy", "best-liquidity", "--tiers", "500:10,3000:60"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	cfg, err := Load("", flags)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Strategy != "best-liquidity" {
		t.Fatalf("unexpected strategy: %s", cfg.Strategy)
	}
	if len(cfg.Tiers) != 2 || cfg.Tiers[1] != (FeeTier{Fee: 3000, TickSpacing: 60}) {
		t.Fatalf("unexpected tiers: %+v", cfg.Tiers)
	}
	if cfg.PrivateKey != "0xabc" {
		t.Fatalf("private key not read from env file: %q", cfg.PrivateKey)
	}
}

func TestLoadRejectsUnknownSigner(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("PAYMASTER_SIGNER", "hsm")
	if _, err := Load("", nil); err == nil {
		t.Fatalf("expected error for unknown signer")
	}
}

func TestParseTiers(t *testing.T) {
	tiers, err := ParseTiers([]string{"100:1", " 10000 : 200 "})
	if err != nil {
		t.Fatalf("parse tiers: %v", err)
	}
	if len(tiers) != 2 || tiers[1].Fee != 10000 || tiers[1].TickSpacing != 200 {
		t.Fatalf("unexpected tiers: %+v", tiers)
	}
	if _, err := ParseTiers([]string{"3000"}); err == nil {
		t.Fatalf("expected error for missing tick spacing")
	}
	if _, err := ParseTiers([]string{"16777216:60"}); err == nil {
		t.Fatalf("expected error for fee overflow")
	}
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

// unsetenv removes key for the test so a dotenv file can set it.
func unsetenv(t *testing.T, key string) {
	t.Helper()
	prev, had := os.LookupEnv(key)
	_ = os.Unsetenv(key)
	t.Cleanup(func() {
		if had {
			_ = os.Setenv(key, prev)
		} else {
			_ = os.Unsetenv(key)
		}
	})
}
