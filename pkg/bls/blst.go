//go:build blst

// Real BLS12-381 backend using the supranational/blst library.
//
// Implements Backend with the "MinPk" scheme used by Ethereum:
//   - Public keys in G1 (48-byte compressed P1Affine)
//   - Signatures in G2 (96-byte compressed P2Affine)
//   - DST: BLS_SIG_BLS12381G2_XMD:SHA-256_SSWU_RO_POP_
//
// Build with: go build -tags blst
// Test with:  go test -tags blst ./pkg/bls/ -run Blst
package bls

import (
	"errors"

	blst "github.com/supranational/blst/bindings/go"
)

// blstDST is the domain separation tag for Ethereum BLS signatures.
var blstDST = []byte("BLS_SIG_BLS12381G2_XMD:SHA-256_SSWU_RO_POP_")

// Errors returned by the blst-backed helpers.
var (
	ErrBlstInvalidIKM       = errors.New("bls: blst IKM must be at least 32 bytes")
	ErrBlstKeyGenFailed     = errors.New("bls: blst key generation failed")
	ErrBlstInvalidSecretKey = errors.New("bls: blst invalid secret key bytes")
	ErrBlstSignFailed       = errors.New("bls: blst signing failed")
	ErrBlstNoSignatures     = errors.New("bls: blst has no signatures to aggregate")
	ErrBlstAggregateFailed  = errors.New("bls: blst signature aggregation failed")
)

// BlstBackend implements Backend with blst's MinPk scheme.
type BlstBackend struct{}

func (BlstBackend) Name() string { return "blst" }

func (BlstBackend) Verify(pubkey, msg, sig []byte) bool {
	if len(pubkey) == 0 || len(sig) == 0 {
		return false
	}
	pk := new(blst.P1Affine).Uncompress(pubkey)
	if pk == nil {
		return false
	}
	s := new(blst.P2Affine).Uncompress(sig)
	if s == nil {
		return false
	}
	return s.Verify(true, pk, true, msg, blstDST)
}

func (BlstBackend) AggregateVerify(pubkeys, msgs [][]byte, sig []byte) bool {
	n := len(pubkeys)
	if n == 0 || n != len(msgs) || len(sig) == 0 {
		return false
	}
	s := new(blst.P2Affine).Uncompress(sig)
	if s == nil {
		return false
	}
	pks := make([]*blst.P1Affine, n)
	for i, pkBytes := range pubkeys {
		pks[i] = new(blst.P1Affine).Uncompress(pkBytes)
		if pks[i] == nil {
			return false
		}
	}
	blstMsgs := make([]blst.Message, n)
	for i, m := range msgs {
		blstMsgs[i] = m
	}
	return s.AggregateVerify(true, pks, true, blstMsgs, blstDST)
}

func (BlstBackend) FastAggregateVerify(pubkeys [][]byte, msg, sig []byte) bool {
	n := len(pubkeys)
	if n == 0 || len(sig) == 0 {
		return false
	}
	s := new(blst.P2Affine).Uncompress(sig)
	if s == nil {
		return false
	}
	pks := make([]*blst.P1Affine, n)
	for i, pkBytes := range pubkeys {
		pks[i] = new(blst.P1Affine).Uncompress(pkBytes)
		if pks[i] == nil {
			return false
		}
	}
	return s.FastAggregateVerify(true, pks, msg, blstDST)
}

// BlstKeyGen generates a BLS key pair from input key material (IKM),
// which must be at least 32 bytes. Returns the compressed public key
// (48 bytes) and the serialized secret key (32 bytes).
func BlstKeyGen(ikm []byte) (pubkey, secretKey []byte, err error) {
	if len(ikm) < 32 {
		return nil, nil, ErrBlstInvalidIKM
	}
	sk := blst.KeyGen(ikm)
	if sk == nil {
		return nil, nil, ErrBlstKeyGenFailed
	}
	pk := new(blst.P1Affine).From(sk)
	return pk.Compress(), sk.Serialize(), nil
}

// BlstSign signs msg with the given 32-byte secret key, returning the
// compressed 96-byte signature.
func BlstSign(secretKey, msg []byte) ([]byte, error) {
	if len(secretKey) != SecretKeySize {
		return nil, ErrBlstInvalidSecretKey
	}
	sk := new(blst.SecretKey).Deserialize(secretKey)
	if sk == nil {
		return nil, ErrBlstInvalidSecretKey
	}
	sig := new(blst.P2Affine).Sign(sk, msg, blstDST)
	if sig == nil {
		return nil, ErrBlstSignFailed
	}
	return sig.Compress(), nil
}

// BlstAggregateSigs aggregates multiple compressed signatures (each 96
// bytes) into a single compressed aggregate signature.
func BlstAggregateSigs(sigs [][]byte) ([]byte, error) {
	if len(sigs) == 0 {
		return nil, ErrBlstNoSignatures
	}
	agg := new(blst.P2Aggregate)
	if !agg.AggregateCompressed(sigs, true) {
		return nil, ErrBlstAggregateFailed
	}
	return agg.ToAffine().Compress(), nil
}
