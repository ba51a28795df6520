package bls

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"sync"
)

// StubBackend is the default, non-cryptographic backend: signing and
// verification are a deterministic function of a secret registered at
// key-generation time, not real BLS12-381 arithmetic. It exists so the
// duties/slashing/validator-client wiring can be exercised end to end
// without CGO, consistent with the core's opaque treatment of
// signatures (§1) — nothing outside this package depends on the
// signature bytes meaning anything beyond "produced by this secret".
type StubBackend struct{}

func (StubBackend) Name() string { return "stub" }

func (StubBackend) Verify(pubkey, msg, sig []byte) bool {
	if len(pubkey) != PubkeySize || len(sig) != SignatureSize {
		return false
	}
	var pk [PubkeySize]byte
	copy(pk[:], pubkey)
	secret, ok := lookupStubSecret(pk)
	if !ok {
		return false
	}
	want := StubSign(secret, msg)
	return bytes.Equal(want[:], sig)
}

func (b StubBackend) AggregateVerify(pubkeys, msgs [][]byte, sig []byte) bool {
	if len(pubkeys) == 0 || len(pubkeys) != len(msgs) || len(sig) != SignatureSize {
		return false
	}
	want := [SignatureSize]byte{}
	for i, pk := range pubkeys {
		if len(pk) != PubkeySize {
			return false
		}
		var pubkey [PubkeySize]byte
		copy(pubkey[:], pk)
		secret, ok := lookupStubSecret(pubkey)
		if !ok {
			return false
		}
		xorInto(&want, StubSign(secret, msgs[i]))
	}
	return bytes.Equal(want[:], sig)
}

func (b StubBackend) FastAggregateVerify(pubkeys [][]byte, msg, sig []byte) bool {
	if len(pubkeys) == 0 || len(sig) != SignatureSize {
		return false
	}
	msgs := make([][]byte, len(pubkeys))
	for i := range msgs {
		msgs[i] = msg
	}
	return b.AggregateVerify(pubkeys, msgs, sig)
}

var (
	stubMu       sync.RWMutex
	stubRegistry = map[[PubkeySize]byte][SecretKeySize]byte{}
)

func registerStubKey(pubkey [PubkeySize]byte, secret [SecretKeySize]byte) {
	stubMu.Lock()
	defer stubMu.Unlock()
	stubRegistry[pubkey] = secret
}

func lookupStubSecret(pubkey [PubkeySize]byte) ([SecretKeySize]byte, bool) {
	stubMu.RLock()
	defer stubMu.RUnlock()
	secret, ok := stubRegistry[pubkey]
	return secret, ok
}

// ErrStubInvalidIKM is returned when StubKeyGen's input key material
// is too short to be a safe secret-key seed.
var ErrStubInvalidIKM = errors.New("bls: stub IKM must be at least 32 bytes")

// StubKeyGen derives a deterministic key pair from ikm and registers
// the mapping StubBackend.Verify needs to recognize signatures under
// the resulting public key.
func StubKeyGen(ikm []byte) (pubkey [PubkeySize]byte, secret [SecretKeySize]byte, err error) {
	if len(ikm) < SecretKeySize {
		return pubkey, secret, ErrStubInvalidIKM
	}
	secret = sha256.Sum256(ikm)
	pubkey = deriveStubPubkey(secret)
	registerStubKey(pubkey, secret)
	return pubkey, secret, nil
}

func deriveStubPubkey(secret [SecretKeySize]byte) [PubkeySize]byte {
	var pubkey [PubkeySize]byte
	h := sha256.Sum256(append([]byte("bls-stub-pubkey"), secret[:]...))
	copy(pubkey[:], h[:])
	h2 := sha256.Sum256(append([]byte("bls-stub-pubkey-2"), secret[:]...))
	copy(pubkey[32:], h2[:PubkeySize-32])
	return pubkey
}

// StubSign deterministically "signs" msg under secret: sha256(secret
// ‖ msg), stretched to SignatureSize bytes. Not a real BLS signature.
func StubSign(secret [SecretKeySize]byte, msg []byte) [SignatureSize]byte {
	var sig [SignatureSize]byte
	block := append(append([]byte{}, secret[:]...), msg...)
	offset := 0
	counter := byte(0)
	for offset < SignatureSize {
		h := sha256.Sum256(append(block, counter))
		n := copy(sig[offset:], h[:])
		offset += n
		counter++
	}
	return sig
}

// StubAggregateSignatures folds signatures together by XOR — a
// placeholder for real G2 point addition, sufficient to let
// AggregateVerify's counterpart check consistency in tests.
func StubAggregateSignatures(sigs [][SignatureSize]byte) [SignatureSize]byte {
	var out [SignatureSize]byte
	for _, sig := range sigs {
		xorInto(&out, sig)
	}
	return out
}

func xorInto(dst *[SignatureSize]byte, src [SignatureSize]byte) {
	for i := range dst {
		dst[i] ^= src[i]
	}
}
