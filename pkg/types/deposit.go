package types

import "github.com/chainbound/beaconcore/pkg/ssz"

// DepositData is the data a deposit commits to: the depositing
// validator's public key, withdrawal credentials, amount, a timestamp,
// and a proof of possession of the private key (§3).
type DepositData struct {
	Pubkey                PublicKey
	WithdrawalCredentials Hash256
	AmountGwei            uint64
	Timestamp             uint64
	ProofOfPossession     Signature
}

// MarshalSSZ encodes a DepositData record.
func (d DepositData) MarshalSSZ() ([]byte, error) {
	return ssz.EncodeRecord(
		ssz.EncodeFixedBytes(d.Pubkey[:]),
		ssz.EncodeFixedBytes(d.WithdrawalCredentials[:]),
		ssz.EncodeUint64(d.AmountGwei),
		ssz.EncodeUint64(d.Timestamp),
		ssz.EncodeFixedBytes(d.ProofOfPossession[:]),
	), nil
}

// UnmarshalSSZ decodes a DepositData record written by MarshalSSZ.
func (d *DepositData) UnmarshalSSZ(data []byte, offset int) (int, error) {
	pub, offset, err := ssz.DecodeFixedBytes(data, offset, len(d.Pubkey))
	if err != nil {
		return offset, err
	}
	wc, offset, err := ssz.DecodeFixedBytes(data, offset, len(d.WithdrawalCredentials))
	if err != nil {
		return offset, err
	}
	amount, offset, err := ssz.DecodeUint64(data, offset)
	if err != nil {
		return offset, err
	}
	ts, offset, err := ssz.DecodeUint64(data, offset)
	if err != nil {
		return offset, err
	}
	proof, offset, err := ssz.DecodeFixedBytes(data, offset, len(d.ProofOfPossession))
	if err != nil {
		return offset, err
	}
	copy(d.Pubkey[:], pub)
	copy(d.WithdrawalCredentials[:], wc)
	d.AmountGwei = amount
	d.Timestamp = ts
	copy(d.ProofOfPossession[:], proof)
	return offset, nil
}

// HashTreeRoot computes the DepositData's tree-hash root.
func (d DepositData) HashTreeRoot(hashFn ssz.HashFn) [32]byte {
	return ssz.HashTreeRootContainer(hashFn, [][32]byte{
		ssz.HashTreeRootBytes(hashFn, d.Pubkey[:]),
		ssz.HashTreeRootBytes(hashFn, d.WithdrawalCredentials[:]),
		leafUint64(d.AmountGwei),
		leafUint64(d.Timestamp),
		ssz.HashTreeRootBytes(hashFn, d.ProofOfPossession[:]),
	})
}

// Deposit proves a DepositData's inclusion in the deposit contract's
// Merkle tree via an authentication branch (§3).
type Deposit struct {
	Branch []Hash256
	Index  uint64
	Data   DepositData
}

// MarshalSSZ encodes a Deposit.
func (d Deposit) MarshalSSZ() ([]byte, error) {
	branch, err := ssz.EncodeList(d.Branch, func(h Hash256) ([]byte, error) {
		return ssz.EncodeFixedBytes(h[:]), nil
	})
	if err != nil {
		return nil, err
	}
	data, err := d.Data.MarshalSSZ()
	if err != nil {
		return nil, err
	}
	return ssz.EncodeRecord(branch, ssz.EncodeUint64(d.Index), data), nil
}

// UnmarshalSSZ decodes a Deposit written by MarshalSSZ.
func (d *Deposit) UnmarshalSSZ(data []byte, offset int) (int, error) {
	branch, offset, err := ssz.DecodeList(data, offset, func(body []byte, off int) (Hash256, int, error) {
		raw, n, err := ssz.DecodeFixedBytes(body, off, 32)
		var h Hash256
		if err == nil {
			copy(h[:], raw)
		}
		return h, n, err
	})
	if err != nil {
		return offset, err
	}
	index, offset, err := ssz.DecodeUint64(data, offset)
	if err != nil {
		return offset, err
	}
	var depositData DepositData
	offset, err = depositData.UnmarshalSSZ(data, offset)
	if err != nil {
		return offset, err
	}
	d.Branch = branch
	d.Index = index
	d.Data = depositData
	return offset, nil
}

// HashTreeRoot computes the Deposit's tree-hash root.
func (d Deposit) HashTreeRoot(hashFn ssz.HashFn) [32]byte {
	branchRoots := make([][32]byte, len(d.Branch))
	for i, h := range d.Branch {
		branchRoots[i] = ssz.HashTreeRootBytes(hashFn, h[:])
	}
	return ssz.HashTreeRootContainer(hashFn, [][32]byte{
		ssz.HashTreeRootList(hashFn, branchRoots, len(d.Branch)+1),
		leafUint64(d.Index),
		d.Data.HashTreeRoot(hashFn),
	})
}
