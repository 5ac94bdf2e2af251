// Package sponsor runs one paymaster payload construction sequence:
// select pool, build permit, sign permit, encode payload.
package sponsor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/google/uuid"
	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"paymasterData/internal/model"
	"paymasterData/internal/payload"
	"paymasterData/internal/permit"
	"paymasterData/internal/router"
)

// PoolSelector is satisfied by *router.Router.
type PoolSelector interface {
	SelectPool(ctx context.Context, token common.Address, amount *uint256.Int) (router.Selection, error)
}

// NonceReader is satisfied by *permit.AllowanceReader.
type NonceReader interface {
	Allowance(ctx context.Context, owner, token, spender common.Address) (permit.Allowance, error)
}

// Settings are the chain-level inputs shared by every sequence.
type Settings struct {
	Network   string
	ChainID   uint64
	Permit2   common.Address
	Paymaster common.Address
}

// Request describes one sponsored operation. A nil Nonce is read from Permit2.
type Request struct {
	Token       common.Address
	Amount      *uint256.Int
	Nonce       *uint64
	SigDeadline *uint256.Int
	Expiration  uint64
}

// Result is the output of a completed sequence.
type Result struct {
	Owner         common.Address
	Selection     router.Selection
	Permit        model.PermitSingle
	Signature     model.Signature
	PaymasterData []byte
}

// Builder runs payload construction sequences. It holds no per-request state,
// so one Builder may serve concurrent calls.
type Builder struct {
	selector PoolSelector
	signer   permit.SigningProvider
	nonces   NonceReader
	settings Settings
	logger   *zap.Logger
}

func NewBuilder(selector PoolSelector, signer permit.SigningProvider, nonces NonceReader, settings Settings, logger *zap.Logger) (*Builder, error) {
	if selector == nil {
		return nil, errors.New("pool selector is nil")
	}
	if signer == nil {
		return nil, errors.New("signing provider is nil")
	}
	if settings.ChainID == 0 {
		return nil, errors.New("chain id is required")
	}
	if settings.Permit2 == (common.Address{}) {
		settings.Permit2 = permit.CanonicalPermit2Address
	}
	if settings.Paymaster == (common.Address{}) {
		return nil, errors.New("paymaster address is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{selector: selector, signer: signer, nonces: nonces, settings: settings, logger: logger}, nil
}

// Domain returns the Permit2 signing domain used by the builder.
func (b *Builder) Domain() permit.Domain {
	return permit.Domain{ChainID: b.settings.ChainID, Permit2: b.settings.Permit2}
}

// Build runs the sequence to completion or returns a *StageError. No partial
// result is returned and nothing is retried.
func (b *Builder) Build(ctx context.Context, req Request) (*Result, error) {
	owner := b.signer.Address()
	logger := b.logger.With(
		zap.String("owner", owner.Hex()),
		zap.String("token", req.Token.Hex()),
		zap.String("signer", b.signer.Kind()),
	)

	selection, err := b.selector.SelectPool(ctx, req.Token, req.Amount)
	if err != nil {
		return nil, &StageError{Stage: StagePoolSelected, Err: err}
	}
	logger.Debug("stage complete", zap.Stringer("stage", StagePoolSelected), zap.String("pool_id", selection.ID.Hex()))

	nonce, err := b.nonce(ctx, owner, req)
	if err != nil {
		return nil, &StageError{Stage: StagePermitBuilt, Err: err}
	}
	record, err := permit.Build(req.Token, req.Amount, b.settings.Paymaster, nonce, req.SigDeadline, req.Expiration)
	if err != nil {
		return nil, &StageError{Stage: StagePermitBuilt, Err: err}
	}
	logger.Debug("stage complete", zap.Stringer("stage", StagePermitBuilt), zap.Uint64("nonce", nonce))

	sig, err := permit.Sign(ctx, record, b.signer, b.Domain())
	if err != nil {
		return nil, &StageError{Stage: StagePermitSigned, Err: err}
	}
	logger.Debug("stage complete", zap.Stringer("stage", StagePermitSigned))

	data, err := payload.Encode(selection.Key, record, sig)
	if err != nil {
		return nil, &StageError{Stage: StagePayloadEncoded, Err: err}
	}
	logger.Info("paymaster data built",
		zap.String("pool_id", selection.ID.Hex()),
		zap.Uint64("nonce", nonce),
		zap.Int("bytes", len(data)),
	)

	return &Result{
		Owner:         owner,
		Selection:     selection,
		Permit:        record,
		Signature:     sig,
		PaymasterData: data,
	}, nil
}

func (b *Builder) nonce(ctx context.Context, owner common.Address, req Request) (uint64, error) {
	if req.Nonce != nil {
		return *req.Nonce, nil
	}
	if b.nonces == nil {
		return 0, errors.New("nonce not given and no allowance reader configured")
	}
	allowance, err := b.nonces.Allowance(ctx, owner, req.Token, b.settings.Paymaster)
	if err != nil {
		return 0, fmt.Errorf("read permit2 nonce: %w", err)
	}
	return allowance.Nonce, nil
}

// Record converts a result into the hand-off record written by storage sinks.
func (b *Builder) Record(res *Result, now time.Time) model.PayloadRecord {
	return model.PayloadRecord{
		ID:            uuid.NewString(),
		ChainID:       b.settings.ChainID,
		Network:       b.settings.Network,
		Owner:         res.Owner.Hex(),
		Paymaster:     b.settings.Paymaster.Hex(),
		PoolID:        res.Selection.ID.Hex(),
		Token:         res.Permit.Details.Token.Hex(),
		Amount:        res.Permit.AmountOrZero().Dec(),
		Nonce:         res.Permit.Details.Nonce,
		Expiration:    res.Permit.Details.Expiration,
		SigDeadline:   res.Permit.SigDeadlineOrZero().Dec(),
		PaymasterData: hexutil.Encode(res.PaymasterData),
		CreatedAt:     now.UTC().Format(time.RFC3339),
	}
}
