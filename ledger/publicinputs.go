// Copyright 2020-2024 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package ledger

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/fxamacker/cbor/v2"
)

// PublicInputs is the statement a transfer batch proves: applying TxCount
// valid transfers to the tree committed by OldRoot yields the tree committed
// by NewRoot.
type PublicInputs struct {
	OldRoot fr.Element
	NewRoot fr.Element
	TxCount uint64
}

type publicInputsWire struct {
	OldRoot []byte `cbor:"1,keyasint"`
	NewRoot []byte `cbor:"2,keyasint"`
	TxCount uint64 `cbor:"3,keyasint"`
}

// MarshalCBOR implements cbor.Marshaler.
func (p PublicInputs) MarshalCBOR() ([]byte, error) {
	oldRoot := p.OldRoot.Bytes()
	newRoot := p.NewRoot.Bytes()
	return cbor.Marshal(publicInputsWire{
		OldRoot: oldRoot[:],
		NewRoot: newRoot[:],
		TxCount: p.TxCount,
	})
}

// UnmarshalCBOR implements cbor.Unmarshaler.
func (p *PublicInputs) UnmarshalCBOR(data []byte) error {
	var w publicInputsWire
	if err := cbor.Unmarshal(data, &w); err != nil {
		return err
	}
	if err := p.OldRoot.SetBytesCanonical(w.OldRoot); err != nil {
		return err
	}
	if err := p.NewRoot.SetBytesCanonical(w.NewRoot); err != nil {
		return err
	}
	p.TxCount = w.TxCount
	return nil
}
