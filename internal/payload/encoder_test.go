package payload

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paymasterData/internal/model"
	"paymasterData/internal/permit"
)

var (
	usdc      = common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48")
	paymaster = common.HexToAddress("0x3BA9A96eE3eFf3A69E2B18886AcF52027EFF8966")
)

func testKey() model.PoolKey {
	return model.PoolKey{
		Currency0:   model.NativeCurrency,
		Currency1:   usdc,
		Fee:         1000,
		TickSpacing: 60,
	}
}

func testSignature(t *testing.T, record model.PermitSingle) model.Signature {
	t.Helper()
	signer, err := permit.NewLocalKeyFromHex("0x4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318")
	require.NoError(t, err)
	sig, err := permit.Sign(context.Background(), record, signer, permit.Domain{ChainID: 11155111, Permit2: permit.CanonicalPermit2Address})
	require.NoError(t, err)
	return sig
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	record, err := permit.Build(usdc, uint256.NewInt(10_000_000), paymaster, 3, uint256.NewInt(1700000000), 1800000000)
	require.NoError(t, err)
	sig := testSignature(t, record)

	data, err := Encode(testKey(), record, sig)
	require.NoError(t, err)

	key, decoded, decodedSig, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, testKey(), key)
	assert.Equal(t, record.Details.Token, decoded.Details.Token)
	assert.Equal(t, record.Details.Amount.Dec(), decoded.Details.Amount.Dec())
	assert.Equal(t, record.Details.Expiration, decoded.Details.Expiration)
	assert.Equal(t, record.Details.Nonce, decoded.Details.Nonce)
	assert.Equal(t, record.Spender, decoded.Spender)
	assert.Equal(t, record.SigDeadline.Dec(), decoded.SigDeadline.Dec())
	assert.Equal(t, sig, decodedSig)
}

func TestEncodeLayout(t *testing.T) {
	record, err := permit.Build(usdc, uint256.NewInt(1), paymaster, 0, nil, 0)
	require.NoError(t, err)
	sig := testSignature(t, record)

	data, err := Encode(testKey(), record, sig)
	require.NoError(t, err)

	// 5 pool key words, 6 permit words, 1 offset, length word, 3 words of signature.
	require.Len(t, data, 16*32)
	word := func(i int) []byte { return data[i*32 : (i+1)*32] }

	assert.Equal(t, common.LeftPadBytes(usdc.Bytes(), 32), word(1))
	assert.Equal(t, common.LeftPadBytes(big.NewInt(1000).Bytes(), 32), word(2))
	assert.Equal(t, common.LeftPadBytes(big.NewInt(60).Bytes(), 32), word(3))
	assert.Equal(t, common.LeftPadBytes(usdc.Bytes(), 32), word(5))
	assert.Equal(t, common.LeftPadBytes(paymaster.Bytes(), 32), word(9))
	assert.Equal(t, common.LeftPadBytes(big.NewInt(12*32).Bytes(), 32), word(11))
	assert.Equal(t, common.LeftPadBytes(big.NewInt(65).Bytes(), 32), word(12))
	assert.Equal(t, sig[:], data[13*32:13*32+65])
}

func TestEncodeRejectsOversizedAmount(t *testing.T) {
	record := model.PermitSingle{
		Details: model.PermitDetails{
			Token:  usdc,
			Amount: new(uint256.Int).Lsh(uint256.NewInt(1), 160),
		},
		Spender: paymaster,
	}

	_, err := Encode(testKey(), record, model.Signature{})
	var rangeErr *model.EncodingRangeError
	require.True(t, errors.As(err, &rangeErr), "got %v", err)
	assert.Equal(t, "amount", rangeErr.Field)
	assert.Equal(t, "uint160", rangeErr.Type)
}

func TestEncodeRejectsOversizedFee(t *testing.T) {
	key := testKey()
	key.Fee = model.MaxUint24 + 1
	record, err := permit.Build(usdc, uint256.NewInt(1), paymaster, 0, nil, 0)
	require.NoError(t, err)

	_, err = Encode(key, record, model.Signature{})
	var rangeErr *model.EncodingRangeError
	require.True(t, errors.As(err, &rangeErr), "got %v", err)
	assert.Equal(t, "fee", rangeErr.Field)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, _, _, err := Decode([]byte{0x01, 0x02})
	require.Error(t, err)
}
