package model

import (
	"encoding/json"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

func TestNewPoolKeySortsCurrencies(t *testing.T) {
	usdc := common.HexToAddress("0x1c7D4B196Cb0C7B01d743Fbc6116a902379C7238")

	key := NewPoolKey(usdc, NativeCurrency, 3000, 60, common.Address{})
	if key.Currency0 != NativeCurrency || key.Currency1 != usdc {
		t.Fatalf("currencies not sorted: %+v", key)
	}
	if !key.Sorted() {
		t.Fatalf("expected sorted key")
	}

	swapped := PoolKey{Currency0: usdc, Currency1: NativeCurrency}
	if swapped.Sorted() {
		t.Fatalf("expected unsorted key")
	}
	same := PoolKey{Currency0: usdc, Currency1: usdc}
	if same.Sorted() {
		t.Fatalf("equal currencies must not count as sorted")
	}
}

func TestPoolIDTextRoundTrip(t *testing.T) {
	var id PoolID
	id[0] = 0xab
	id[31] = 0xcd

	data, err := json.Marshal(id)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded PoolID
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded != id {
		t.Fatalf("pool id mismatch: %s != %s", decoded.Hex(), id.Hex())
	}
}

func TestSignatureFromBytesNormalisesV(t *testing.T) {
	raw := make([]byte, SignatureLength)
	raw[64] = 1
	sig, err := SignatureFromBytes(raw)
	if err != nil {
		t.Fatalf("signature: %v", err)
	}
	if sig[64] != 28 {
		t.Fatalf("v not normalised: %d", sig[64])
	}

	raw[64] = 27
	if sig, err = SignatureFromBytes(raw); err != nil || sig[64] != 27 {
		t.Fatalf("v=27 should pass through: %v %d", err, sig[64])
	}

	raw[64] = 5
	if _, err := SignatureFromBytes(raw); err == nil {
		t.Fatalf("expected invalid recovery id error")
	}
	if _, err := SignatureFromBytes(raw[:64]); err == nil {
		t.Fatalf("expected length error")
	}
}
