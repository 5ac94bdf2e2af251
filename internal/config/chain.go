package config

import (
	"net/url"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/viper"

	"paymasterData/internal/model"
)

// Canonical deployments shared across networks.
const (
	Permit2Address   = "0x000000000022D473030F116dDEE9F6B43aC78BA3"
	PaymasterAddress = "0x3BA9A96eE3eFf3A69E2B18886AcF52027EFF8966"
	EntryPointV07    = "0x0000000071727De22E5E9d8BAf0edAc6f37da032"
)

// ChainConfig is the resolved, immutable per-network configuration.
type ChainConfig struct {
	Network     string
	ChainID     uint64
	RPCURL      string
	BundlerURL  string
	Paymaster   common.Address
	EntryPoint  common.Address
	PoolManager common.Address
	StateView   common.Address
	Permit2     common.Address
	USDC        common.Address
}

// Domain is the part of a network's configuration that fixes what its permits
// are signed for. Resolving it needs no RPC endpoint.
type Domain struct {
	Network   string
	ChainID   uint64
	Permit2   common.Address
	Paymaster common.Address
}

// Domain returns the signing domain of the network.
func (c ChainConfig) Domain() Domain {
	return Domain{Network: c.Network, ChainID: c.ChainID, Permit2: c.Permit2, Paymaster: c.Paymaster}
}

// KnownNetworks maps network names to chain ids. Other names are accepted when
// networks.<name>.chain-id is configured.
var KnownNetworks = map[string]uint64{
	"mainnet":          1,
	"sepolia":          11155111,
	"arbitrum-sepolia": 421614,
}

type chainField struct {
	key      string
	env      string
	address  bool
	domain   bool
	fallback string
	assign   func(*ChainConfig, string)
}

var chainFields = []chainField{
	{key: "rpc-url", env: "RPC_URL", assign: func(c *ChainConfig, s string) { c.RPCURL = s }},
	{key: "bundler-url", env: "BUNDLER_URL", assign: func(c *ChainConfig, s string) { c.BundlerURL = s }},
	{key: "paymaster", env: "PAYMASTER", address: true, domain: true, fallback: PaymasterAddress, assign: func(c *ChainConfig, s string) { c.Paymaster = common.HexToAddress(s) }},
	{key: "entry-point", env: "ENTRY_POINT", address: true, fallback: EntryPointV07, assign: func(c *ChainConfig, s string) { c.EntryPoint = common.HexToAddress(s) }},
	{key: "pool-manager", env: "POOL_MANAGER", address: true, assign: func(c *ChainConfig, s string) { c.PoolManager = common.HexToAddress(s) }},
	{key: "state-view", env: "STATE_VIEW", address: true, assign: func(c *ChainConfig, s string) { c.StateView = common.HexToAddress(s) }},
	{key: "permit2", env: "PERMIT2", address: true, domain: true, fallback: Permit2Address, assign: func(c *ChainConfig, s string) { c.Permit2 = common.HexToAddress(s) }},
	{key: "usdc", env: "USDC", address: true, assign: func(c *ChainConfig, s string) { c.USDC = common.HexToAddress(s) }},
}

// EnvName returns the environment variable read for key on network,
// e.g. RPC_URL_SEPOLIA.
func EnvName(base, network string) string {
	return base + "_" + strings.ToUpper(strings.ReplaceAll(network, "-", "_"))
}

// LoadChain resolves the configuration of network from v. Each value is read
// from networks.<network>.<key> or its environment name. Every missing or
// malformed value is reported in a single *model.ConfigurationError.
func LoadChain(v *viper.Viper, network string) (ChainConfig, error) {
	r, err := newChainReader(v, network)
	if err != nil {
		return ChainConfig{}, err
	}
	cfg := ChainConfig{Network: r.network, ChainID: r.chainID}
	for _, field := range chainFields {
		r.read(field, &cfg)
	}
	if err := r.err(); err != nil {
		return ChainConfig{}, err
	}
	return cfg, nil
}

// ResolveDomain resolves only the chain id, Permit2 and paymaster of network,
// with the same sources and fallbacks as LoadChain. Commands that sign or
// verify without a chain connection use it.
func ResolveDomain(v *viper.Viper, network string) (Domain, error) {
	r, err := newChainReader(v, network)
	if err != nil {
		return Domain{}, err
	}
	cfg := ChainConfig{Network: r.network, ChainID: r.chainID}
	for _, field := range chainFields {
		if field.domain {
			r.read(field, &cfg)
		}
	}
	if err := r.err(); err != nil {
		return Domain{}, err
	}
	return cfg.Domain(), nil
}

type chainReader struct {
	v       *viper.Viper
	network string
	prefix  string
	chainID uint64
	confErr *model.ConfigurationError
}

// newChainReader resolves the chain id of network. A network outside
// KnownNetworks needs networks.<network>.chain-id.
func newChainReader(v *viper.Viper, network string) (*chainReader, error) {
	network = strings.ToLower(strings.TrimSpace(network))
	if v == nil {
		v = viper.New()
	}

	confErr := &model.ConfigurationError{Network: network}
	if network == "" {
		confErr.Missing = append(confErr.Missing, "network")
		return nil, confErr
	}

	prefix := "networks." + network + "."
	chainID, known := KnownNetworks[network]
	if v.IsSet(prefix + "chain-id") {
		id := v.GetInt64(prefix + "chain-id")
		if id <= 0 {
			confErr.Invalid = append(confErr.Invalid, prefix+"chain-id")
		}
		chainID, known = uint64(id), id > 0
	}
	if !known && len(confErr.Invalid) == 0 {
		confErr.Invalid = append(confErr.Invalid, "network")
		confErr.Known = Networks()
		return nil, confErr
	}
	return &chainReader{v: v, network: network, prefix: prefix, chainID: chainID, confErr: confErr}, nil
}

func (r *chainReader) read(field chainField, cfg *ChainConfig) {
	key := r.prefix + field.key
	env := EnvName(field.env, r.network)
	_ = r.v.BindEnv(key, env)

	raw := strings.TrimSpace(r.v.GetString(key))
	if raw == "" {
		raw = field.fallback
	}
	switch {
	case raw == "":
		r.confErr.Missing = append(r.confErr.Missing, env)
	case field.address && !validAddress(raw):
		r.confErr.Invalid = append(r.confErr.Invalid, env)
	case !field.address && !validEndpoint(raw):
		r.confErr.Invalid = append(r.confErr.Invalid, env)
	default:
		field.assign(cfg, raw)
	}
}

func (r *chainReader) err() error {
	if len(r.confErr.Missing) > 0 || len(r.confErr.Invalid) > 0 {
		return r.confErr
	}
	return nil
}

// Networks returns the sorted names of the built-in networks.
func Networks() []string {
	names := make([]string, 0, len(KnownNetworks))
	for name := range KnownNetworks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func validAddress(s string) bool {
	return common.IsHexAddress(s) && common.HexToAddress(s) != (common.Address{})
}

func validEndpoint(s string) bool {
	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return false
	}
	switch u.Scheme {
	case "http", "https", "ws", "wss":
		return true
	default:
		return false
	}
}
