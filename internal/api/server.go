// Package api serves the payload builder over HTTP. The server never holds
// keys: clients sign the returned typed data themselves and post the
// signature back.
package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"paymasterData/internal/model"
	"paymasterData/internal/permit"
	"paymasterData/internal/router"
	"paymasterData/internal/sponsor"
	"paymasterData/internal/storage"
)

// PoolChecker runs the liquidity check on a pool key posted by a client.
// *router.Router implements it.
type PoolChecker interface {
	CheckPool(ctx context.Context, key model.PoolKey) (router.Selection, error)
}

// Options configures a Server. Selector, Checker and Nonces may be nil when
// the server runs without a chain connection; the endpoints that need them
// then answer 503.
type Options struct {
	Network   string
	Domain    permit.Domain
	Paymaster common.Address
	Selector  sponsor.PoolSelector
	Checker   PoolChecker
	Nonces    sponsor.NonceReader
	Sink      storage.Sink
	Logger    *zap.Logger

	// AllowedOrigins restricts CORS. Empty allows every origin.
	AllowedOrigins []string
}

type Server struct {
	network   string
	domain    permit.Domain
	paymaster common.Address
	selector  sponsor.PoolSelector
	checker   PoolChecker
	nonces    sponsor.NonceReader
	sink      storage.Sink
	logger    *zap.Logger
	origins   []string
	now       func() time.Time
}

func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Domain.Permit2 == (common.Address{}) {
		opts.Domain.Permit2 = permit.CanonicalPermit2Address
	}
	return &Server{
		network:   opts.Network,
		domain:    opts.Domain,
		paymaster: opts.Paymaster,
		selector:  opts.Selector,
		checker:   opts.Checker,
		nonces:    opts.Nonces,
		sink:      opts.Sink,
		logger:    logger,
		origins:   opts.AllowedOrigins,
		now:       time.Now,
	}
}

// Handler returns the gin engine with every route registered.
func (s *Server) Handler() http.Handler {
	router := gin.New()
	router.Use(gin.Recovery(), corsMiddleware(s.origins), s.requestLogger())

	router.GET("/healthz", s.Health)

	v1 := router.Group("/v1")
	v1.POST("/pool-id", s.PoolID)
	v1.POST("/pools/select", s.SelectPool)
	v1.POST("/permit/typed-data", s.PermitTypedData)
	v1.POST("/payload", s.EncodePayload)
	v1.POST("/payload/decode", s.DecodePayload)

	return router
}

// HTTPServer wraps Handler in an http.Server listening on addr.
func (s *Server) HTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		IdleTimeout:       time.Minute,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// ValidateOrigins reports an origin the CORS middleware would refuse.
func ValidateOrigins(origins []string) error {
	for _, origin := range origins {
		if origin == "*" || strings.HasPrefix(origin, "http://") || strings.HasPrefix(origin, "https://") {
			continue
		}
		return fmt.Errorf("cors origin %q must start with http:// or https://", origin)
	}
	return nil
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	corsConfig := cors.DefaultConfig()
	if len(origins) == 0 {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = origins
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", requestIDHeader}
	corsConfig.ExposeHeaders = []string{requestIDHeader}
	return cors.New(corsConfig)
}

const requestIDHeader = "X-Request-ID"

// requestID returns the id assigned to the request by requestLogger.
func requestID(c *gin.Context) string {
	if id := c.GetString("request_id"); id != "" {
		return id
	}
	return uuid.NewString()
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		id := c.GetHeader(requestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(requestIDHeader, id)

		c.Next()
		s.logger.Info("request",
			zap.String("request_id", id),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	}
}

var _ PoolChecker = (*router.Router)(nil)
