// Package bls implements the signing and verification backend behind
// the core's opaque signature abstraction (§1 — the core never
// inspects key or signature bytes itself). Two backends are provided:
// a non-cryptographic stub usable without CGO for wiring and testing,
// and a BLS12-381 backend built on github.com/supranational/blst for
// production, enabled with the "blst" build tag.
package bls

import (
	"errors"
	"sync"
)

// Key and signature sizes for the MinPk scheme Ethereum uses: public
// keys in G1 (compressed), signatures in G2 (compressed).
const (
	PubkeySize    = 48
	SignatureSize = 96
	SecretKeySize = 32
)

// Format errors.
var (
	ErrInvalidPubkeySize    = errors.New("bls: public key must be 48 bytes")
	ErrInvalidSignatureSize = errors.New("bls: signature must be 96 bytes")
	ErrInvalidSecretKeySize = errors.New("bls: secret key must be 32 bytes")
)

// Backend is the interface for BLS12-381 signature verification.
// Implementations may use a deterministic stub or blst's native
// arithmetic.
type Backend interface {
	// Verify checks a single signature.
	Verify(pubkey, msg, sig []byte) bool
	// AggregateVerify checks an aggregate signature where each signer
	// signed a different message. pubkeys[i] signed msgs[i].
	AggregateVerify(pubkeys, msgs [][]byte, sig []byte) bool
	// FastAggregateVerify checks an aggregate signature where every
	// signer signed the same message (the attestation common case).
	FastAggregateVerify(pubkeys [][]byte, msg, sig []byte) bool
	// Name identifies the backend for logging and diagnostics.
	Name() string
}

var (
	activeMu      sync.RWMutex
	activeBackend Backend = &StubBackend{}
)

// Default returns the currently active backend.
func Default() Backend {
	activeMu.RLock()
	defer activeMu.RUnlock()
	return activeBackend
}

// SetBackend sets the active backend; nil resets to StubBackend.
func SetBackend(b Backend) {
	activeMu.Lock()
	defer activeMu.Unlock()
	if b == nil {
		b = &StubBackend{}
	}
	activeBackend = b
}

// BlstPlaceholderBackend names the blst-backed production path without
// requiring the "blst" build tag to compile against it; every method
// reports failure. Build with -tags blst and use BlstBackend (blst.go)
// for the real implementation.
type BlstPlaceholderBackend struct{}

func (BlstPlaceholderBackend) Name() string { return "blst-disabled" }

func (BlstPlaceholderBackend) Verify(pubkey, msg, sig []byte) bool { return false }

func (BlstPlaceholderBackend) AggregateVerify(pubkeys, msgs [][]byte, sig []byte) bool {
	return false
}

func (BlstPlaceholderBackend) FastAggregateVerify(pubkeys [][]byte, msg, sig []byte) bool {
	return false
}
