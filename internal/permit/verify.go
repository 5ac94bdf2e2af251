package permit

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"paymasterData/internal/model"
)

// ErrSignerMismatch is returned when a signature recovers to another account.
var ErrSignerMismatch = errors.New("permit signature does not match owner")

// Recover returns the account that produced sig over record under domain.
func Recover(record model.PermitSingle, domain Domain, sig model.Signature) (common.Address, error) {
	digest, err := Digest(record, domain)
	if err != nil {
		return common.Address{}, err
	}

	raw := sig.Bytes()
	if raw[64] >= 27 {
		raw[64] -= 27
	}
	pub, err := crypto.SigToPub(digest.Bytes(), raw)
	if err != nil {
		return common.Address{}, fmt.Errorf("recover signer: %w", err)
	}
	return crypto.PubkeyToAddress(*pub), nil
}

// Verify checks that owner signed record under domain.
func Verify(record model.PermitSingle, domain Domain, sig model.Signature, owner common.Address) error {
	signer, err := Recover(record, domain, sig)
	if err != nil {
		return err
	}
	if signer != owner {
		return fmt.Errorf("%w: recovered %s, want %s", ErrSignerMismatch, signer.Hex(), owner.Hex())
	}
	return nil
}
