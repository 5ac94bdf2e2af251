package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"paymasterData/internal/dex"
	"paymasterData/internal/model"
	"paymasterData/internal/payload"
	"paymasterData/internal/permit"
)

var errSpenderMismatch = errors.New("permit spender is not the paymaster")

func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":          "ok",
		"network":         s.network,
		"chain_id":        s.domain.ChainID,
		"chain_connected": s.selector != nil || s.checker != nil,
	})
}

// PoolID hashes the posted pool key as given.
func (s *Server) PoolID(c *gin.Context) {
	var key model.PoolKey
	if err := c.ShouldBindJSON(&key); err != nil {
		s.badRequest(c, err)
		return
	}
	id, err := dex.PoolID(key)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, poolIDResponse{PoolID: id, Sorted: key.Sorted()})
}

func (s *Server) SelectPool(c *gin.Context) {
	if s.selector == nil {
		s.unavailable(c, "pool selection needs a chain connection")
		return
	}
	var req selectPoolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}
	token, err := parseAddress("token", req.Token)
	if err != nil {
		s.badRequest(c, err)
		return
	}
	amount, err := parseUint256("amount", req.Amount)
	if err != nil {
		s.badRequest(c, err)
		return
	}

	selection, err := s.selector.SelectPool(c.Request.Context(), token, amount)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, selectPoolResponse{
		PoolKey:   selection.Key,
		PoolID:    selection.ID,
		Liquidity: selection.Liquidity.Dec(),
	})
}

// PermitTypedData returns the eth_signTypedData_v4 document for a permit so
// the owner's wallet can sign it.
func (s *Server) PermitTypedData(c *gin.Context) {
	var req typedDataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}
	token, err := parseAddress("token", req.Token)
	if err != nil {
		s.badRequest(c, err)
		return
	}
	amount, err := parseUint256("amount", req.Amount)
	if err != nil {
		s.badRequest(c, err)
		return
	}
	deadline, err := parseUint256("sig_deadline", req.SigDeadline)
	if err != nil {
		s.badRequest(c, err)
		return
	}

	var nonce uint64
	switch {
	case req.Nonce != nil:
		nonce = *req.Nonce
	case s.nonces == nil:
		s.unavailable(c, "nonce lookup needs a chain connection; pass nonce explicitly")
		return
	default:
		owner, err := parseAddress("owner", req.Owner)
		if err != nil {
			s.badRequest(c, err)
			return
		}
		allowance, err := s.nonces.Allowance(c.Request.Context(), owner, token, s.paymaster)
		if err != nil {
			s.fail(c, err)
			return
		}
		nonce = allowance.Nonce
	}

	record, err := permit.Build(token, amount, s.paymaster, nonce, deadline, req.Expiration)
	if err != nil {
		s.fail(c, err)
		return
	}
	digest, err := permit.Digest(record, s.domain)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, typedDataResponse{
		Permit:    record,
		TypedData: permit.WalletJSON(permit.TypedData(record, s.domain)),
		Digest:    digest,
	})
}

// EncodePayload verifies the posted permit and signature, runs the liquidity
// check on the posted pool, and returns paymasterData. When a sink is
// configured the payload is also handed off to it.
func (s *Server) EncodePayload(c *gin.Context) {
	var req payloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}
	if !req.PoolKey.Sorted() {
		s.fail(c, model.ErrCurrenciesUnsorted)
		return
	}
	if err := model.CheckPoolKey(req.PoolKey); err != nil {
		s.fail(c, err)
		return
	}
	if err := model.CheckPermit(req.Permit); err != nil {
		s.fail(c, err)
		return
	}
	if req.Permit.Spender != s.paymaster {
		s.fail(c, fmt.Errorf("spender %s, paymaster %s: %w", req.Permit.Spender.Hex(), s.paymaster.Hex(), errSpenderMismatch))
		return
	}

	signer, err := permit.Recover(req.Permit, s.domain, req.Signature)
	if err != nil {
		s.badRequest(c, err)
		return
	}
	if req.Owner != "" {
		owner, err := parseAddress("owner", req.Owner)
		if err != nil {
			s.badRequest(c, err)
			return
		}
		if err := permit.Verify(req.Permit, s.domain, req.Signature, owner); err != nil {
			s.fail(c, err)
			return
		}
	}

	var liquidity string
	switch {
	case s.checker != nil:
		selection, err := s.checker.CheckPool(c.Request.Context(), req.PoolKey)
		if err != nil {
			s.fail(c, err)
			return
		}
		liquidity = selection.Liquidity.Dec()
	case !req.SkipLiquidityCheck:
		s.unavailable(c, "liquidity check needs a chain connection; set skip_liquidity_check to encode anyway")
		return
	default:
		s.logger.Warn("payload encoded without liquidity check", zap.String("request_id", requestID(c)))
	}

	data, err := payload.Encode(req.PoolKey, req.Permit, req.Signature)
	if err != nil {
		s.fail(c, err)
		return
	}
	resp := payloadResponse{PaymasterData: hexutil.Encode(data), Liquidity: liquidity}

	if s.sink != nil {
		id, err := dex.PoolID(req.PoolKey)
		if err != nil {
			s.fail(c, err)
			return
		}
		record := model.PayloadRecord{
			ID:            requestID(c),
			ChainID:       s.domain.ChainID,
			Network:       s.network,
			Owner:         signer.Hex(),
			Paymaster:     req.Permit.Spender.Hex(),
			PoolID:        id.Hex(),
			Token:         req.Permit.Details.Token.Hex(),
			Amount:        req.Permit.AmountOrZero().Dec(),
			Nonce:         req.Permit.Details.Nonce,
			Expiration:    req.Permit.Details.Expiration,
			SigDeadline:   req.Permit.SigDeadlineOrZero().Dec(),
			PaymasterData: resp.PaymasterData,
			CreatedAt:     s.now().UTC().Format(time.RFC3339),
		}
		if err := s.sink.PutPayloadBatch(c.Request.Context(), []model.PayloadRecord{record}); err != nil {
			s.logger.Error("payload hand-off failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, errorResponse{Error: "failed to store payload", Code: "storage"})
			return
		}
		resp.Record = &record
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) DecodePayload(c *gin.Context) {
	var req decodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}
	data, err := hexutil.Decode(req.PaymasterData)
	if err != nil {
		s.badRequest(c, err)
		return
	}
	key, record, sig, err := payload.Decode(data)
	if err != nil {
		s.badRequest(c, err)
		return
	}
	id, err := dex.PoolID(key)
	if err != nil {
		s.fail(c, err)
		return
	}

	resp := decodeResponse{PoolKey: key, PoolID: id, Permit: record, Signature: sig}
	if signer, err := permit.Recover(record, s.domain, sig); err == nil {
		resp.Signer = &signer
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error(), Code: "bad_request"})
}

func (s *Server) unavailable(c *gin.Context, msg string) {
	c.JSON(http.StatusServiceUnavailable, errorResponse{Error: msg, Code: "unavailable"})
}

// fail maps the error taxonomy onto HTTP statuses.
func (s *Server) fail(c *gin.Context, err error) {
	var (
		rangeErr     *model.EncodingRangeError
		liquidityErr *model.NoLiquidityError
	)
	switch {
	case errors.As(err, &rangeErr):
		c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Code: "encoding_range"})
	case errors.Is(err, model.ErrCurrenciesUnsorted):
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error(), Code: "currencies_unsorted"})
	case errors.Is(err, permit.ErrSignerMismatch):
		c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Code: "signer_mismatch"})
	case errors.Is(err, errSpenderMismatch):
		c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Code: "spender_mismatch"})
	case errors.As(err, &liquidityErr):
		c.JSON(http.StatusConflict, errorResponse{Error: err.Error(), Code: "no_liquidity"})
	default:
		s.logger.Error("request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
		c.JSON(http.StatusBadGateway, errorResponse{Error: err.Error(), Code: "upstream"})
	}
}
