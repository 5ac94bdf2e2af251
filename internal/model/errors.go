package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrCurrenciesUnsorted is returned when a pool key lists currency1 <= currency0.
var ErrCurrenciesUnsorted = errors.New("pool currencies not in ascending order")

// ConfigurationError lists every required chain setting that is missing or malformed.
type ConfigurationError struct {
	Network string
	Missing []string
	Invalid []string

	// Known lists the built-in network names when Network is not one of them.
	Known []string
}

func (e *ConfigurationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "network %q configuration", e.Network)
	if len(e.Missing) > 0 {
		fmt.Fprintf(&b, ": missing %s", strings.Join(e.Missing, ", "))
	}
	if len(e.Invalid) > 0 {
		if len(e.Missing) > 0 {
			b.WriteString(";")
		} else {
			b.WriteString(":")
		}
		fmt.Fprintf(&b, " invalid %s", strings.Join(e.Invalid, ", "))
	}
	if len(e.Known) > 0 {
		fmt.Fprintf(&b, " (known networks: %s; others need networks.%s.chain-id)", strings.Join(e.Known, ", "), e.Network)
	}
	return b.String()
}

// NoLiquidityError means the selected pool cannot be used for settlement.
// Err is set when the liquidity read itself failed.
type NoLiquidityError struct {
	PoolID    PoolID
	Liquidity string
	Err       error
}

func (e *NoLiquidityError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("pool %s has no usable liquidity: %v", e.PoolID.Hex(), e.Err)
	}
	return fmt.Sprintf("pool %s has no usable liquidity (liquidity=%s)", e.PoolID.Hex(), e.Liquidity)
}

func (e *NoLiquidityError) Unwrap() error {
	return e.Err
}

// SigningRejectedError wraps a signer that declined or failed to sign.
type SigningRejectedError struct {
	Signer string
	Err    error
}

func (e *SigningRejectedError) Error() string {
	return fmt.Sprintf("signing rejected by %s: %v", e.Signer, e.Err)
}

func (e *SigningRejectedError) Unwrap() error {
	return e.Err
}

// EncodingRangeError reports a numeric field outside its ABI width.
type EncodingRangeError struct {
	Field string
	Type  string
	Value string
}

func (e *EncodingRangeError) Error() string {
	return fmt.Sprintf("%s value %s out of range for %s", e.Field, e.Value, e.Type)
}
