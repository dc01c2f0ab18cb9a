// Copyright 2020-2024 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package ledger

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/fxamacker/cbor/v2"

	"github.com/consensys/zkledger/std/schnorr"
)

// Transfer describes a signed value transfer between two accounts.
type Transfer struct {
	Nonce          uint64
	Amount         uint64
	SenderPubKey   schnorr.PublicKey
	ReceiverPubKey schnorr.PublicKey
	Signature      schnorr.Signature // signature by the sender's key
}

// NewTransfer creates a new transfer (to be signed).
func NewTransfer(amount uint64, from, to schnorr.PublicKey, nonce uint64) Transfer {
	return Transfer{
		Nonce:          nonce,
		Amount:         amount,
		SenderPubKey:   from,
		ReceiverPubKey: to,
	}
}

// message returns the signed payload: both keys, the amount and the sender
// nonce, in the order the trace sponge absorbs them.
func (t *Transfer) message() []fr.Element {
	var amount, nonce fr.Element
	amount.SetUint64(t.Amount)
	nonce.SetUint64(t.Nonce)
	return []fr.Element{
		t.SenderPubKey.A.X, t.SenderPubKey.A.Y,
		t.ReceiverPubKey.A.X, t.ReceiverPubKey.A.Y,
		amount, nonce,
	}
}

// Sign signs the transfer with the sender's key and stores the signature.
func (t *Transfer) Sign(priv *schnorr.PrivateKey) schnorr.Signature {
	t.Signature = priv.Sign(t.message())
	return t.Signature
}

// Verify checks the stored signature against the sender's key.
func (t *Transfer) Verify() error {
	if !schnorr.Verify(&t.SenderPubKey, t.message(), &t.Signature) {
		return ErrWrongSignature
	}
	return nil
}

// transferWire is the CBOR shape of a transfer; field coordinates travel as
// canonical big-endian bytes.
type transferWire struct {
	Nonce     uint64 `cbor:"1,keyasint"`
	Amount    uint64 `cbor:"2,keyasint"`
	SenderX   []byte `cbor:"3,keyasint"`
	SenderY   []byte `cbor:"4,keyasint"`
	ReceiverX []byte `cbor:"5,keyasint"`
	ReceiverY []byte `cbor:"6,keyasint"`
	SigRX     []byte `cbor:"7,keyasint"`
	SigRY     []byte `cbor:"8,keyasint"`
	SigS      []byte `cbor:"9,keyasint"`
}

// MarshalCBOR implements cbor.Marshaler.
func (t Transfer) MarshalCBOR() ([]byte, error) {
	frBytes := func(e fr.Element) []byte {
		b := e.Bytes()
		return b[:]
	}
	return cbor.Marshal(transferWire{
		Nonce:     t.Nonce,
		Amount:    t.Amount,
		SenderX:   frBytes(t.SenderPubKey.A.X),
		SenderY:   frBytes(t.SenderPubKey.A.Y),
		ReceiverX: frBytes(t.ReceiverPubKey.A.X),
		ReceiverY: frBytes(t.ReceiverPubKey.A.Y),
		SigRX:     frBytes(t.Signature.R.X),
		SigRY:     frBytes(t.Signature.R.Y),
		SigS:      t.Signature.S.Bytes(),
	})
}

// UnmarshalCBOR implements cbor.Unmarshaler.
func (t *Transfer) UnmarshalCBOR(data []byte) error {
	var w transferWire
	if err := cbor.Unmarshal(data, &w); err != nil {
		return err
	}
	t.Nonce = w.Nonce
	t.Amount = w.Amount
	if err := setElement(&t.SenderPubKey.A.X, w.SenderX); err != nil {
		return err
	}
	if err := setElement(&t.SenderPubKey.A.Y, w.SenderY); err != nil {
		return err
	}
	if err := setElement(&t.ReceiverPubKey.A.X, w.ReceiverX); err != nil {
		return err
	}
	if err := setElement(&t.ReceiverPubKey.A.Y, w.ReceiverY); err != nil {
		return err
	}
	if err := setElement(&t.Signature.R.X, w.SigRX); err != nil {
		return err
	}
	if err := setElement(&t.Signature.R.Y, w.SigRY); err != nil {
		return err
	}
	t.Signature.S = *new(big.Int).SetBytes(w.SigS)
	return nil
}

func setElement(e *fr.Element, data []byte) error {
	return e.SetBytesCanonical(data)
}
