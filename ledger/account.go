// Copyright 2020-2024 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package ledger

import (
	"encoding/binary"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/consensys/zkledger/std/rescue"
	"github.com/consensys/zkledger/std/schnorr"
)

// SizeAccount byte size of a serialized account (5*32bytes)
// index ∥ nonce ∥ balance ∥ pubkeyX ∥ pubkeyY, each chunk is 32 bytes
const SizeAccount = 160

// Account describes a ledger account. Balances are 64-bit; the tree commits
// to accounts through their Hash.
type Account struct {
	Index   uint64 // position in the tree
	Nonce   uint64 // nb transfers sent from this account so far
	Balance uint64
	PubKey  schnorr.PublicKey
}

// Reset clears the account to the empty slot value: no funds, no history,
// the identity point as owner.
func (ac *Account) Reset() {
	ac.Nonce = 0
	ac.Balance = 0
	ac.PubKey.A.X.SetZero()
	ac.PubKey.A.Y.SetOne()
}

// Serialize serializes the account as a concatenation of 5 chunks of 256
// bits, one chunk per field. index, nonce and balance are 64 bits each and
// sit at the end of their chunk.
func (ac *Account) Serialize() []byte {
	var res [SizeAccount]byte

	binary.BigEndian.PutUint64(res[24:], ac.Index)
	binary.BigEndian.PutUint64(res[56:], ac.Nonce)
	binary.BigEndian.PutUint64(res[88:], ac.Balance)

	buf := ac.PubKey.A.X.Bytes()
	copy(res[96:], buf[:])
	buf = ac.PubKey.A.Y.Bytes()
	copy(res[128:], buf[:])

	return res[:]
}

// Deserialize deserializes a stream of byte in an account
func Deserialize(res *Account, data []byte) error {
	res.Reset()

	// memory bound check
	if len(data) != SizeAccount {
		return ErrSizeByteSlice
	}

	res.Index = binary.BigEndian.Uint64(data[24:32])
	res.Nonce = binary.BigEndian.Uint64(data[56:64])
	res.Balance = binary.BigEndian.Uint64(data[88:96])
	res.PubKey.A.X.SetBytes(data[96:128])
	res.PubKey.A.Y.SetBytes(data[128:])

	return nil
}

// Hash returns the leaf digest of the account: the sponge absorbs the owner
// key first and the mutable state second, the order in which the trace
// chains absorb it.
func (ac *Account) Hash() fr.Element {
	var balance, nonce fr.Element
	balance.SetUint64(ac.Balance)
	nonce.SetUint64(ac.Nonce)
	return rescue.Hash(ac.PubKey.A.X, ac.PubKey.A.Y, balance, nonce)
}
