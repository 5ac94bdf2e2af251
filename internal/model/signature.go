package model

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// SignatureLength is the size of an r || s || v secp256k1 signature.
const SignatureLength = 65

// Signature is a 65-byte ECDSA signature with v in {27, 28}.
type Signature [SignatureLength]byte

// SignatureFromBytes copies a 65-byte signature, normalising v to 27/28.
func SignatureFromBytes(b []byte) (Signature, error) {
	var sig Signature
	if len(b) != SignatureLength {
		return sig, fmt.Errorf("signature length %d, want %d", len(b), SignatureLength)
	}
	copy(sig[:], b)
	switch sig[64] {
	case 0, 1:
		sig[64] += 27
	case 27, 28:
	default:
		return Signature{}, fmt.Errorf("invalid signature recovery id %d", sig[64])
	}
	return sig, nil
}

// Bytes returns a copy of the signature bytes.
func (s Signature) Bytes() []byte {
	out := make([]byte, SignatureLength)
	copy(out, s[:])
	return out
}

// Hex returns the 0x-prefixed hex form.
func (s Signature) Hex() string {
	return hexutil.Encode(s[:])
}

// MarshalText encodes the signature as hex.
func (s Signature) MarshalText() ([]byte, error) {
	return []byte(s.Hex()), nil
}

// UnmarshalText decodes a 0x-prefixed 65-byte hex string.
func (s *Signature) UnmarshalText(input []byte) error {
	return hexutil.UnmarshalFixedText("Signature", input, s[:])
}
