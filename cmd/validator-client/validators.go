package main

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"github.com/chainbound/beaconcore/pkg/bls"
	"github.com/chainbound/beaconcore/pkg/keystore"
	"github.com/chainbound/beaconcore/pkg/types"
)

// loadOrRegisterValidators resolves the pubkey for every index in
// [cfg.FirstValidator, cfg.LastValidator] against store. A missing
// index is either registered on the spot (deterministic stub keys,
// when --auto-register is set) or treated as a startup error.
func loadOrRegisterValidators(cfg Config, store *keystore.ValidatorStore) ([]types.PublicKey, error) {
	pubkeys := make([]types.PublicKey, 0, cfg.Count())
	for idx := cfg.FirstValidator; idx <= cfg.LastValidator; idx++ {
		vi := types.ValidatorIndex(idx)
		pubkey, ok, err := store.Get(vi)
		if err != nil {
			return nil, fmt.Errorf("validator-client: looking up validator %d: %w", idx, err)
		}
		if !ok {
			if !cfg.AutoRegister {
				return nil, fmt.Errorf("validator-client: validator %d is not registered locally; pass --auto-register or provision it out of band", idx)
			}
			pk, _, err := bls.StubKeyGen(deterministicIKM(idx))
			if err != nil {
				return nil, fmt.Errorf("validator-client: generating key for validator %d: %w", idx, err)
			}
			pubkey = pk
			if err := store.Put(vi, pubkey); err != nil {
				return nil, fmt.Errorf("validator-client: registering validator %d: %w", idx, err)
			}
		}
		pubkeys = append(pubkeys, pubkey)
	}
	return pubkeys, nil
}

// deterministicIKM derives 32 bytes of stub key-generation material
// from a validator index, mirroring the beacon node's own
// deterministic testnet genesis so `--auto-register` against a local
// testnet lines up with the keys genesis.ssz was built from.
func deterministicIKM(index uint64) []byte {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], index)
	h := sha256.Sum256(append([]byte("beaconcore-testnet-validator"), buf[:]...))
	return h[:]
}

func pubkeyHex(pk types.PublicKey) string {
	return "0x" + hex.EncodeToString(pk[:])
}
