package model

import (
	"strconv"

	"github.com/holiman/uint256"
)

const (
	MaxUint24 = 1<<24 - 1
	MinInt24  = -1 << 23
	MaxInt24  = 1<<23 - 1
	MaxUint48 = 1<<48 - 1
)

// CheckUint24 fails when v does not fit in a uint24.
func CheckUint24(field string, v uint32) error {
	if v > MaxUint24 {
		return &EncodingRangeError{Field: field, Type: "uint24", Value: strconv.FormatUint(uint64(v), 10)}
	}
	return nil
}

// CheckInt24 fails when v does not fit in an int24.
func CheckInt24(field string, v int32) error {
	if v < MinInt24 || v > MaxInt24 {
		return &EncodingRangeError{Field: field, Type: "int24", Value: strconv.FormatInt(int64(v), 10)}
	}
	return nil
}

// CheckUint48 fails when v does not fit in a uint48.
func CheckUint48(field string, v uint64) error {
	if v > MaxUint48 {
		return &EncodingRangeError{Field: field, Type: "uint48", Value: strconv.FormatUint(v, 10)}
	}
	return nil
}

// CheckUintN fails when v needs more than bits bits. A nil v counts as zero.
func CheckUintN(field string, bits int, v *uint256.Int) error {
	if v == nil {
		return nil
	}
	if v.BitLen() > bits {
		return &EncodingRangeError{Field: field, Type: "uint" + strconv.Itoa(bits), Value: v.Dec()}
	}
	return nil
}

// CheckPoolKey validates every numeric field of a pool key.
func CheckPoolKey(key PoolKey) error {
	if err := CheckUint24("fee", key.Fee); err != nil {
		return err
	}
	return CheckInt24("tickSpacing", key.TickSpacing)
}

// CheckPermit validates every numeric field of a permit.
func CheckPermit(p PermitSingle) error {
	if err := CheckUintN("amount", 160, p.Details.Amount); err != nil {
		return err
	}
	if err := CheckUint48("expiration", p.Details.Expiration); err != nil {
		return err
	}
	if err := CheckUint48("nonce", p.Details.Nonce); err != nil {
		return err
	}
	return CheckUintN("sigDeadline", 256, p.SigDeadline)
}
