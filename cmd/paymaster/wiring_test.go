package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"paymasterData/internal/config"
	"paymasterData/internal/model"
	"paymasterData/internal/permit"
)

type constLiquidity uint64

func (c constLiquidity) Liquidity(context.Context, model.PoolID) (*uint256.Int, error) {
	return uint256.NewInt(uint64(c)), nil
}

func TestNewRouterFixed(t *testing.T) {
	cfg := config.Config{Strategy: "fixed", Fee: 500, TickSpacing: 10}
	r, err := newRouter(cfg, constLiquidity(1), zap.NewNop())
	if err != nil {
		t.Fatalf("new router: %v", err)
	}
	usdc := common.HexToAddress("0x1c7D4B196Cb0C7B01d743Fbc6116a902379C7238")
	selection, err := r.SelectPool(context.Background(), usdc, uint256.NewInt(1))
	if err != nil {
		t.Fatalf("select pool: %v", err)
	}
	if selection.Key.Fee != 500 || selection.Key.TickSpacing != 10 {
		t.Fatalf("unexpected key: %+v", selection.Key)
	}
}

func TestNewRouterRejectsBadHooks(t *testing.T) {
	cfg := config.Config{Strategy: "fixed", Hooks: "0x123"}
	if _, err := newRouter(cfg, constLiquidity(1), zap.NewNop()); err == nil {
		t.Fatalf("expected invalid hooks error")
	}
}

func TestNewSignerLocalRequiresKey(t *testing.T) {
	if _, _, err := newSigner(context.Background(), config.Config{Signer: "local"}); err == nil {
		t.Fatalf("expected missing key error")
	}
}

func TestTokenOrUSDC(t *testing.T) {
	usdc := common.HexToAddress("0x1c7D4B196Cb0C7B01d743Fbc6116a902379C7238")
	token, err := tokenOrUSDC("", config.ChainConfig{USDC: usdc})
	if err != nil || token != usdc {
		t.Fatalf("expected usdc fallback, got %s (%v)", token.Hex(), err)
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := writeJSON(&buf, map[string]int{"a": 1}); err != nil {
		t.Fatalf("write json: %v", err)
	}
	if !strings.Contains(buf.String(), `"a": 1`) {
		t.Fatalf("unexpected output: %s", buf.String())
	}
}

type staticSeparator struct {
	sep common.Hash
	err error
}

func (s staticSeparator) DomainSeparator(context.Context) (common.Hash, error) {
	return s.sep, s.err
}

func TestVerifyPermit2Domain(t *testing.T) {
	domain := permit.Domain{ChainID: 11155111, Permit2: permit.CanonicalPermit2Address}
	sep, err := permit.DomainSeparator(domain)
	if err != nil {
		t.Fatalf("domain separator: %v", err)
	}
	if err := verifyPermit2Domain(context.Background(), staticSeparator{sep: sep}, domain); err != nil {
		t.Fatalf("expected match, got %v", err)
	}

	other, err := permit.DomainSeparator(permit.Domain{ChainID: 1, Permit2: permit.CanonicalPermit2Address})
	if err != nil {
		t.Fatalf("domain separator: %v", err)
	}
	err = verifyPermit2Domain(context.Background(), staticSeparator{sep: other}, domain)
	if err == nil || !strings.Contains(err.Error(), "does not match") {
		t.Fatalf("expected mismatch error, got %v", err)
	}

	boom := errors.New("boom")
	if err := verifyPermit2Domain(context.Background(), staticSeparator{err: boom}, domain); !errors.Is(err, boom) {
		t.Fatalf("expected read error, got %v", err)
	}
}

func TestDecodeDomainFromConfiguredNetwork(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := `network: devnet
networks:
  devnet:
    chain-id: 31337
    permit2: "0x5FC8d32690cc91D4c39d9d3abcBD16989F875707"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := config.LoadWithDomain(path, nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	domain := decodeDomain(cfg.Domain, 0, common.Address{})
	want := permit.Domain{ChainID: 31337, Permit2: common.HexToAddress("0x5FC8d32690cc91D4c39d9d3abcBD16989F875707")}
	if domain != want {
		t.Fatalf("domain mismatch: got %+v want %+v", domain, want)
	}
	if cfg.Domain.Paymaster != common.HexToAddress(config.PaymasterAddress) {
		t.Fatalf("paymaster should fall back, got %s", cfg.Domain.Paymaster.Hex())
	}

	overridden := decodeDomain(cfg.Domain, 1, common.Address{})
	if overridden.ChainID != 1 || overridden.Permit2 != permit.CanonicalPermit2Address {
		t.Fatalf("chain id override not applied: %+v", overridden)
	}
	custom := common.HexToAddress("0x9999999999999999999999999999999999999999")
	if got := decodeDomain(cfg.Domain, 0, custom); got.Permit2 != custom || got.ChainID != 31337 {
		t.Fatalf("permit2 override not applied: %+v", got)
	}
}
