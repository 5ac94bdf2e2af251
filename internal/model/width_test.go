package model

import (
	"errors"
	"testing"

	"github.com/holiman/uint256"
)

func TestCheckUintN(t *testing.T) {
	max160 := new(uint256.Int).Sub(new(uint256.Int).Lsh(uint256.NewInt(1), 160), uint256.NewInt(1))
	if err := CheckUintN("amount", 160, max160); err != nil {
		t.Fatalf("max uint160 rejected: %v", err)
	}

	over := new(uint256.Int).Lsh(uint256.NewInt(1), 160)
	err := CheckUintN("amount", 160, over)
	var rangeErr *EncodingRangeError
	if !errors.As(err, &rangeErr) {
		t.Fatalf("expected EncodingRangeError, got %v", err)
	}
	if rangeErr.Field != "amount" || rangeErr.Type != "uint160" {
		t.Fatalf("unexpected error fields: %+v", rangeErr)
	}
	if rangeErr.Value != "1461501637330902918203684832716283019655932542976" {
		t.Fatalf("unexpected value: %s", rangeErr.Value)
	}

	if err := CheckUintN("amount", 160, nil); err != nil {
		t.Fatalf("nil treated as zero: %v", err)
	}
}

func TestCheckSmallWidths(t *testing.T) {
	if err := CheckUint24("fee", MaxUint24); err != nil {
		t.Fatalf("max fee rejected: %v", err)
	}
	if err := CheckUint24("fee", MaxUint24+1); err == nil {
		t.Fatalf("expected fee overflow")
	}
	if err := CheckInt24("tickSpacing", MinInt24); err != nil {
		t.Fatalf("min tick rejected: %v", err)
	}
	if err := CheckInt24("tickSpacing", MaxInt24+1); err == nil {
		t.Fatalf("expected tick overflow")
	}
	if err := CheckInt24("tickSpacing", MinInt24-1); err == nil {
		t.Fatalf("expected tick underflow")
	}
	if err := CheckUint48("nonce", MaxUint48); err != nil {
		t.Fatalf("max nonce rejected: %v", err)
	}
	if err := CheckUint48("nonce", MaxUint48+1); err == nil {
		t.Fatalf("expected nonce overflow")
	}
}

func TestCheckPermit(t *testing.T) {
	p := PermitSingle{
		Details: PermitDetails{Amount: uint256.NewInt(10_000_000), Expiration: MaxUint48 + 1},
	}
	err := CheckPermit(p)
	var rangeErr *EncodingRangeError
	if !errors.As(err, &rangeErr) || rangeErr.Field != "expiration" {
		t.Fatalf("expected expiration range error, got %v", err)
	}
}
