package rpc

import (
	"encoding/hex"
	"errors"
	"strings"

	"github.com/chainbound/beaconcore/pkg/types"
)

// ErrInvalidPubkeyHex is returned when a pubkey query/path parameter is
// not a well-formed hex-encoded public key.
var ErrInvalidPubkeyHex = errors.New("rpc: pubkey is not valid 48-byte hex")

func decodePubkeyHex(s string) (types.PublicKey, error) {
	var pk types.PublicKey
	raw, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil || len(raw) != len(pk) {
		return pk, ErrInvalidPubkeyHex
	}
	copy(pk[:], raw)
	return pk, nil
}

func encodePubkeyHex(pk types.PublicKey) string {
	return "0x" + hex.EncodeToString(pk[:])
}
