package permit

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"

	"paymasterData/internal/model"
)

// SigningProvider signs EIP-712 typed data on behalf of Address.
// LocalKey and Delegated are the two implementations.
type SigningProvider interface {
	Address() common.Address
	SignTypedData(ctx context.Context, typedData apitypes.TypedData) (model.Signature, error)
	Kind() string
}

// LocalKey signs with an in-process secp256k1 key supplied by the caller.
type LocalKey struct {
	key     *ecdsa.PrivateKey
	address common.Address
}

// NewLocalKey wraps key. The key is not copied or stored anywhere else.
func NewLocalKey(key *ecdsa.PrivateKey) (*LocalKey, error) {
	if key == nil {
		return nil, errors.New("private key is nil")
	}
	return &LocalKey{key: key, address: crypto.PubkeyToAddress(key.PublicKey)}, nil
}

// NewLocalKeyFromHex parses a hex private key, with or without 0x.
func NewLocalKeyFromHex(hexKey string) (*LocalKey, error) {
	key, err := crypto.HexToECDSA(trimHexPrefix(hexKey))
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	return NewLocalKey(key)
}

func (l *LocalKey) Address() common.Address { return l.address }

func (l *LocalKey) Kind() string { return "local" }

// SignTypedData hashes typedData and signs the digest. ctx is unused; local
// signing never blocks.
func (l *LocalKey) SignTypedData(_ context.Context, typedData apitypes.TypedData) (model.Signature, error) {
	digest, _, err := apitypes.TypedDataAndHash(typedData)
	if err != nil {
		return model.Signature{}, fmt.Errorf("hash typed data: %w", err)
	}
	raw, err := crypto.Sign(digest, l.key)
	if err != nil {
		return model.Signature{}, err
	}
	return model.SignatureFromBytes(raw)
}

// WalletRPC is the subset of *rpc.Client used to reach an external signer.
type WalletRPC interface {
	CallContext(ctx context.Context, result interface{}, method string, args ...interface{}) error
}

// Delegated asks an external wallet (node, Clef, custodial backend) to sign
// as account via eth_signTypedData_v4. The call may wait on a human prompt.
type Delegated struct {
	wallet  WalletRPC
	account common.Address
}

func NewDelegated(wallet WalletRPC, account common.Address) (*Delegated, error) {
	if wallet == nil {
		return nil, errors.New("wallet rpc is nil")
	}
	if account == (common.Address{}) {
		return nil, errors.New("acting account is required")
	}
	return &Delegated{wallet: wallet, account: account}, nil
}

func (d *Delegated) Address() common.Address { return d.account }

func (d *Delegated) Kind() string { return "delegated" }

func (d *Delegated) SignTypedData(ctx context.Context, typedData apitypes.TypedData) (model.Signature, error) {
	var raw hexutil.Bytes
	if err := d.wallet.CallContext(ctx, &raw, "eth_signTypedData_v4", d.account.Hex(), WalletJSON(typedData)); err != nil {
		return model.Signature{}, err
	}
	return model.SignatureFromBytes(raw)
}

// WalletJSON shapes typedData the way browser and node wallets expect it:
// the domain carries only the fields its EIP712Domain type declares.
func WalletJSON(typedData apitypes.TypedData) map[string]interface{} {
	domain := map[string]interface{}{}
	if typedData.Domain.Name != "" {
		domain["name"] = typedData.Domain.Name
	}
	if typedData.Domain.Version != "" {
		domain["version"] = typedData.Domain.Version
	}
	if typedData.Domain.ChainId != nil {
		domain["chainId"] = (*big.Int)(typedData.Domain.ChainId).Uint64()
	}
	if typedData.Domain.VerifyingContract != "" {
		domain["verifyingContract"] = typedData.Domain.VerifyingContract
	}
	return map[string]interface{}{
		"types":       typedData.Types,
		"primaryType": typedData.PrimaryType,
		"domain":      domain,
		"message":     typedData.Message,
	}
}

// Sign signs record under domain with provider. Any provider failure is
// returned as *model.SigningRejectedError.
func Sign(ctx context.Context, record model.PermitSingle, provider SigningProvider, domain Domain) (model.Signature, error) {
	if provider == nil {
		return model.Signature{}, errors.New("signing provider is nil")
	}
	if err := model.CheckPermit(record); err != nil {
		return model.Signature{}, err
	}

	sig, err := provider.SignTypedData(ctx, TypedData(record, domain))
	if err != nil {
		return model.Signature{}, &model.SigningRejectedError{Signer: provider.Kind() + ":" + provider.Address().Hex(), Err: err}
	}
	return sig, nil
}

func trimHexPrefix(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}
