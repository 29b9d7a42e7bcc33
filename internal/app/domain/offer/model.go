package offer

import "fmt"

// Network identifies the chain environment an offer mints against.
type Network string

const (
	NetworkDevnet  Network = "devnet"
	NetworkTestnet Network = "testnet"
	NetworkMainnet Network = "mainnet"
)

// Valid reports whether the network is one of the known environments.
func (n Network) Valid() bool {
	switch n {
	case NetworkDevnet, NetworkTestnet, NetworkMainnet:
		return true
	}
	return false
}

// Record describes a promotional NFT offer. Records are built once from
// configuration and never mutated; the slug uniquely identifies the offer.
type Record struct {
	Slug          string  `json:"slug"`
	Network       Network `json:"network"`
	ModuleAddress string  `json:"module_address"`
	// SigningKey authorizes mint transactions on behalf of the issuer. It is
	// read from the process environment at registry construction and must
	// never be serialized or logged.
	SigningKey string `json:"-"`
	Enabled    bool   `json:"enabled"`
}

// String renders the record without the signing key.
func (r Record) String() string {
	return fmt.Sprintf("offer %s (%s, module %s)", r.Slug, r.Network, r.ModuleAddress)
}

// Claimable reports whether the offer can currently issue claims.
func (r Record) Claimable() bool {
	return r.Enabled && r.SigningKey != ""
}
