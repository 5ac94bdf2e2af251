package model

import (
	"bytes"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// NativeCurrency is the zero address, which Uniswap v4 uses for the chain's native asset.
var NativeCurrency = common.Address{}

// PoolKey identifies a Uniswap v4 pool.
type PoolKey struct {
	Currency0   common.Address `json:"currency0"`
	Currency1   common.Address `json:"currency1"`
	Fee         uint32         `json:"fee"`
	TickSpacing int32          `json:"tick_spacing"`
	Hooks       common.Address `json:"hooks"`
}

// Sorted reports whether Currency0 < Currency1, as the pool manager requires.
func (k PoolKey) Sorted() bool {
	return bytes.Compare(k.Currency0.Bytes(), k.Currency1.Bytes()) < 0
}

// NewPoolKey builds a key with the two currencies in ascending order.
func NewPoolKey(a, b common.Address, fee uint32, tickSpacing int32, hooks common.Address) PoolKey {
	if bytes.Compare(a.Bytes(), b.Bytes()) > 0 {
		a, b = b, a
	}
	return PoolKey{
		Currency0:   a,
		Currency1:   b,
		Fee:         fee,
		TickSpacing: tickSpacing,
		Hooks:       hooks,
	}
}

// PoolID is the keccak256 digest of an ABI-encoded PoolKey.
type PoolID [32]byte

// Hex returns the 0x-prefixed hex form.
func (id PoolID) Hex() string {
	return hexutil.Encode(id[:])
}

func (id PoolID) String() string {
	return id.Hex()
}

// MarshalText encodes the id as hex.
func (id PoolID) MarshalText() ([]byte, error) {
	return []byte(id.Hex()), nil
}

// UnmarshalText decodes a 0x-prefixed 32-byte hex string.
func (id *PoolID) UnmarshalText(input []byte) error {
	return hexutil.UnmarshalFixedText("PoolID", input, id[:])
}
