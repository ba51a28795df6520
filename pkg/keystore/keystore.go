// Package keystore implements the validator key store (C9): a
// capability-set key/value abstraction plus the validator-index-keyed
// public key store built on top of it (§4.9, §9 "dynamic dispatch over
// storage backend").
package keystore

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/chainbound/beaconcore/pkg/types"
)

// ErrDecode is returned when bytes read back from a backend do not
// parse as the expected fixed-width value.
var ErrDecode = errors.New("keystore: stored bytes do not parse as a public key")

// BackendError wraps a failure reported by a Store implementation,
// carrying the message of the error the backend returned (§7 External
// errors).
type BackendError struct {
	Msg string
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("keystore: backend error: %s", e.Msg)
}

// Store is the capability set {get, put, delete, scan} every backend
// must provide; the validator store (and any future store) is written
// against this interface, never a concrete backend (§9).
type Store interface {
	// Get returns the value stored at key, and ok=false if absent.
	Get(key []byte) (value []byte, ok bool, err error)
	// Put stores value at key, overwriting any existing value.
	Put(key, value []byte) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(key []byte) error
	// Scan calls fn once for every stored key with the given prefix,
	// in unspecified order. fn must not mutate the store.
	Scan(prefix []byte, fn func(key, value []byte) error) error
}

const keyPrefix = "pubkey"

// keyFor builds the wire key "pubkey" ∥ u64_be(index) (§4.9).
func keyFor(index types.ValidatorIndex) []byte {
	key := make([]byte, len(keyPrefix)+8)
	copy(key, keyPrefix)
	binary.BigEndian.PutUint64(key[len(keyPrefix):], uint64(index))
	return key
}

// ValidatorStore maps validator index to public key, backed by any
// Store implementation.
type ValidatorStore struct {
	backend Store
}

// NewValidatorStore wraps backend as a validator key store.
func NewValidatorStore(backend Store) *ValidatorStore {
	return &ValidatorStore{backend: backend}
}

// Put records pubkey for index.
func (v *ValidatorStore) Put(index types.ValidatorIndex, pubkey types.PublicKey) error {
	if err := v.backend.Put(keyFor(index), pubkey[:]); err != nil {
		return &BackendError{Msg: err.Error()}
	}
	return nil
}

// Get returns the public key stored for index, and ok=false if index
// has never been written. A stored value of the wrong length is
// reported as ErrDecode rather than silently truncated or padded.
func (v *ValidatorStore) Get(index types.ValidatorIndex) (pubkey types.PublicKey, ok bool, err error) {
	raw, ok, err := v.backend.Get(keyFor(index))
	if err != nil {
		return types.PublicKey{}, false, &BackendError{Msg: err.Error()}
	}
	if !ok {
		return types.PublicKey{}, false, nil
	}
	if len(raw) != len(pubkey) {
		return types.PublicKey{}, false, ErrDecode
	}
	copy(pubkey[:], raw)
	return pubkey, true, nil
}

// Delete removes the entry for index, if any.
func (v *ValidatorStore) Delete(index types.ValidatorIndex) error {
	if err := v.backend.Delete(keyFor(index)); err != nil {
		return &BackendError{Msg: err.Error()}
	}
	return nil
}

// Indices returns every validator index currently stored, in
// unspecified order.
func (v *ValidatorStore) Indices() ([]types.ValidatorIndex, error) {
	var out []types.ValidatorIndex
	err := v.backend.Scan([]byte(keyPrefix), func(key, value []byte) error {
		if len(key) != len(keyPrefix)+8 {
			return nil
		}
		out = append(out, types.ValidatorIndex(binary.BigEndian.Uint64(key[len(keyPrefix):])))
		return nil
	})
	if err != nil {
		return nil, &BackendError{Msg: err.Error()}
	}
	return out, nil
}
