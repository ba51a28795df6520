// Package slashing builds slashing evidence — AttesterSlashing records
// proving a validator double-voted or cast a surrounding vote (C7).
package slashing

import (
	"crypto/sha256"
	"errors"

	"github.com/chainbound/beaconcore/pkg/chainspec"
	"github.com/chainbound/beaconcore/pkg/types"
)

// Evidence-building errors.
var (
	ErrEmptyIndices  = errors.New("slashing: attesting indices must be non-empty")
	ErrSignerFailure = errors.New("slashing: signer rejected a signing request")
)

// Signer abstracts the BLS signing operation evidence construction needs:
// given the attesting validator's index and a 32-byte signing root, it
// returns that validator's signature over it. Production callers back
// this with pkg/bls; tests back it with a deterministic stub.
type Signer func(index types.ValidatorIndex, signingRoot [32]byte) (types.Signature, error)

// TestTask selects a deliberately malformed evidence shape for
// negative-path fixtures, instead of the well-formed default. It has no
// effect on production callers, which always pass TestTaskNone.
type TestTask uint8

const (
	// TestTaskNone builds well-formed, genuinely slashable evidence.
	TestTaskNone TestTask = iota
	// TestTaskIdenticalAttestations builds two byte-identical
	// attestations: same target epoch, same data — not a real double
	// vote, so AttesterSlashing.Classify must reject it.
	TestTaskIdenticalAttestations
	// TestTaskUnsortedIndices builds indices in descending order, which
	// IndexedAttestation.UnmarshalSSZ must reject on decode.
	TestTaskUnsortedIndices
)

// DoubleVote builds an AttesterSlashing proving indices double-voted at
// slot: two attestations sharing targetEpoch/sourceEpoch but attesting
// to different beacon block roots. The signing domain is
// cfg.GetDomain(targetEpoch, BeaconAttester, fork, genesisValidatorsRoot)
// per §4.10; each attestation is signed independently via signer.
func DoubleVote(
	task TestTask,
	indices []types.ValidatorIndex,
	slot types.Slot,
	committeeIndex uint64,
	sourceEpoch, targetEpoch types.Epoch,
	signer Signer,
	fork chainspec.Fork,
	genesisValidatorsRoot [32]byte,
	cfg chainspec.Config,
) (types.AttesterSlashing, error) {
	if len(indices) == 0 {
		return types.AttesterSlashing{}, ErrEmptyIndices
	}

	sorted := sortedCopy(indices)

	data1 := types.AttestationData{
		Slot:            slot,
		Index:           committeeIndex,
		BeaconBlockRoot: checkpointRoot("vote-a", uint64(slot)),
		Source:          types.Checkpoint{Epoch: sourceEpoch, Root: checkpointRoot("source", uint64(sourceEpoch))},
		Target:          types.Checkpoint{Epoch: targetEpoch, Root: checkpointRoot("target", uint64(targetEpoch))},
	}
	data2 := data1
	if task != TestTaskIdenticalAttestations {
		data2.BeaconBlockRoot = checkpointRoot("vote-b", uint64(slot))
	}

	domain := cfg.GetDomain(uint64(targetEpoch), cfg.DomainTags.BeaconAttester, fork, genesisValidatorsRoot)

	indices1 := sorted
	indices2 := sorted
	if task == TestTaskUnsortedIndices {
		indices1 = reversedCopy(sorted)
		indices2 = reversedCopy(sorted)
	}

	att1, err := signAttestation(indices1, data1, domain, signer)
	if err != nil {
		return types.AttesterSlashing{}, err
	}
	att2, err := signAttestation(indices2, data2, domain, signer)
	if err != nil {
		return types.AttesterSlashing{}, err
	}

	return types.AttesterSlashing{Attestation1: att1, Attestation2: att2}, nil
}

// SurroundVote builds an AttesterSlashing proving indices cast an
// enclosing pair of votes: the outer attestation's source/target epochs
// strictly surround the inner attestation's.
func SurroundVote(
	task TestTask,
	indices []types.ValidatorIndex,
	outerSlot, innerSlot types.Slot,
	committeeIndex uint64,
	outerSource, outerTarget, innerSource, innerTarget types.Epoch,
	signer Signer,
	fork chainspec.Fork,
	genesisValidatorsRoot [32]byte,
	cfg chainspec.Config,
) (types.AttesterSlashing, error) {
	if len(indices) == 0 {
		return types.AttesterSlashing{}, ErrEmptyIndices
	}
	if !(outerSource < innerSource && innerSource < innerTarget && innerTarget < outerTarget) {
		return types.AttesterSlashing{}, errors.New("slashing: outer attestation does not surround inner attestation")
	}

	sorted := sortedCopy(indices)

	outer := types.AttestationData{
		Slot:            outerSlot,
		Index:           committeeIndex,
		BeaconBlockRoot: checkpointRoot("outer", uint64(outerSlot)),
		Source:          types.Checkpoint{Epoch: outerSource, Root: checkpointRoot("source", uint64(outerSource))},
		Target:          types.Checkpoint{Epoch: outerTarget, Root: checkpointRoot("target", uint64(outerTarget))},
	}
	inner := types.AttestationData{
		Slot:            innerSlot,
		Index:           committeeIndex,
		BeaconBlockRoot: checkpointRoot("inner", uint64(innerSlot)),
		Source:          types.Checkpoint{Epoch: innerSource, Root: checkpointRoot("source", uint64(innerSource))},
		Target:          types.Checkpoint{Epoch: innerTarget, Root: checkpointRoot("target", uint64(innerTarget))},
	}

	outerDomain := cfg.GetDomain(uint64(outerTarget), cfg.DomainTags.BeaconAttester, fork, genesisValidatorsRoot)
	innerDomain := cfg.GetDomain(uint64(innerTarget), cfg.DomainTags.BeaconAttester, fork, genesisValidatorsRoot)

	indicesOuter := sorted
	indicesInner := sorted
	if task == TestTaskUnsortedIndices {
		indicesOuter = reversedCopy(sorted)
		indicesInner = reversedCopy(sorted)
	}

	attOuter, err := signAttestation(indicesOuter, outer, outerDomain, signer)
	if err != nil {
		return types.AttesterSlashing{}, err
	}
	attInner, err := signAttestation(indicesInner, inner, innerDomain, signer)
	if err != nil {
		return types.AttesterSlashing{}, err
	}

	return types.AttesterSlashing{Attestation1: attOuter, Attestation2: attInner}, nil
}

// signAttestation asks signer for the attestation's signature, keyed on
// the first attesting index; BLS signature aggregation across the rest
// of the committee is out of scope here (§1) and is the concern of
// whatever backs Signer in production.
func signAttestation(indices []types.ValidatorIndex, data types.AttestationData, domain [32]byte, signer Signer) (types.IndexedAttestation, error) {
	if len(indices) == 0 {
		return types.IndexedAttestation{}, ErrEmptyIndices
	}
	signingRoot := attestationSigningRoot(data, domain)
	sig, err := signer(indices[0], signingRoot)
	if err != nil {
		return types.IndexedAttestation{}, ErrSignerFailure
	}
	return types.IndexedAttestation{
		AttestingIndices: indices,
		Data:             data,
		Signature:        sig,
	}, nil
}

// attestationSigningRoot derives the bytes a validator signs over: the
// attestation data's tree-hash root mixed with the signing domain.
func attestationSigningRoot(data types.AttestationData, domain [32]byte) [32]byte {
	root := data.HashTreeRoot(defaultHashFn)
	var buf [64]byte
	copy(buf[:32], root[:])
	copy(buf[32:], domain[:])
	return sha256.Sum256(buf[:])
}

func defaultHashFn(a, b [32]byte) [32]byte {
	var buf [64]byte
	copy(buf[:32], a[:])
	copy(buf[32:], b[:])
	return sha256.Sum256(buf[:])
}

func checkpointRoot(label string, n uint64) types.Hash256 {
	var numBuf [8]byte
	for i := 0; i < 8; i++ {
		numBuf[i] = byte(n >> (8 * uint(i)))
	}
	sum := sha256.Sum256(append([]byte(label), numBuf[:]...))
	var h types.Hash256
	copy(h[:], sum[:])
	return h
}

func sortedCopy(indices []types.ValidatorIndex) []types.ValidatorIndex {
	out := append([]types.ValidatorIndex(nil), indices...)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}

func reversedCopy(indices []types.ValidatorIndex) []types.ValidatorIndex {
	out := make([]types.ValidatorIndex, len(indices))
	for i, v := range indices {
		out[len(indices)-1-i] = v
	}
	return out
}
