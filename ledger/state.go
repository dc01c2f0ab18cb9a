// Copyright 2020-2024 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package ledger

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/consensys/zkledger/std/merkle"
	"github.com/consensys/zkledger/std/schnorr"
)

// State is the ledger: NumAccounts account slots committed by a Merkle tree
// of their leaf digests. Accounts are looked up by owner key.
type State struct {
	accounts []Account
	tree     *merkle.Tree
	position map[string]uint64 // owner key -> account index
	nextFree uint64
}

// NewState returns a ledger of empty accounts.
func NewState() (*State, error) {
	accounts := make([]Account, NumAccounts)
	leaves := make([]fr.Element, NumAccounts)
	for i := range accounts {
		accounts[i].Reset()
		accounts[i].Index = uint64(i)
		leaves[i] = accounts[i].Hash()
	}
	tree, err := merkle.NewTree(TreeDepth, leaves)
	if err != nil {
		return nil, err
	}
	return &State{
		accounts: accounts,
		tree:     tree,
		position: make(map[string]uint64),
	}, nil
}

// Root returns the current tree root.
func (s *State) Root() fr.Element { return s.tree.Root() }

// clone returns a deep copy of the state. The trace builder stages a batch
// on the copy and commits it back only once every transfer has validated.
func (s *State) clone() *State {
	accounts := make([]Account, len(s.accounts))
	copy(accounts, s.accounts)
	position := make(map[string]uint64, len(s.position))
	for k, v := range s.position {
		position[k] = v
	}
	return &State{
		accounts: accounts,
		tree:     s.tree.Clone(),
		position: position,
		nextFree: s.nextFree,
	}
}

// CreateAccount opens the next free slot for the given owner key and funds it
// with balance.
func (s *State) CreateAccount(pub schnorr.PublicKey, balance uint64) (Account, error) {
	if s.nextFree >= NumAccounts {
		return Account{}, ErrAccountsFull
	}
	index := s.nextFree
	s.nextFree++

	s.accounts[index] = Account{Index: index, Balance: balance, PubKey: pub}
	s.tree.Update(index, s.accounts[index].Hash())
	s.position[accountKey(pub)] = index
	return s.accounts[index], nil
}

// ReadAccount returns the account owned by pub.
func (s *State) ReadAccount(pub schnorr.PublicKey) (Account, error) {
	index, ok := s.position[accountKey(pub)]
	if !ok {
		return Account{}, ErrNonExistingAccount
	}
	return s.accounts[index], nil
}

// transferWitness captures everything one trace cycle needs: the accounts
// and authentication paths around the sender update and the receiver update,
// and the roots they thread between.
type transferWitness struct {
	transfer Transfer

	senderBefore   Account
	senderAfter    Account
	receiverBefore Account
	receiverAfter  Account

	// sender path against the pre-transfer tree; receiver path against the
	// tree after the sender update
	senderPath   merkle.Proof
	receiverPath merkle.Proof

	prevRoot fr.Element
	newRoot  fr.Element
}

// Apply validates t against the current state, executes it, and returns the
// witness of the execution. On error the state is left untouched.
func (s *State) Apply(t Transfer) (*transferWitness, error) {
	senderPos, ok := s.position[accountKey(t.SenderPubKey)]
	if !ok {
		return nil, ErrNonExistingAccount
	}
	receiverPos, ok := s.position[accountKey(t.ReceiverPubKey)]
	if !ok {
		return nil, ErrNonExistingAccount
	}
	if senderPos == receiverPos {
		return nil, ErrSelfTransfer
	}

	sender := s.accounts[senderPos]
	receiver := s.accounts[receiverPos]

	if t.Nonce != sender.Nonce {
		return nil, ErrNonce
	}
	if t.Amount > sender.Balance {
		return nil, ErrAmountTooHigh
	}
	if receiver.Balance+t.Amount < receiver.Balance {
		return nil, ErrBalanceOverflow
	}
	if err := t.Verify(); err != nil {
		return nil, err
	}

	w := &transferWitness{
		transfer:       t,
		senderBefore:   sender,
		receiverBefore: receiver,
		prevRoot:       s.tree.Root(),
		senderPath:     s.tree.Prove(senderPos),
	}

	sender.Balance -= t.Amount
	sender.Nonce++
	s.accounts[senderPos] = sender
	s.tree.Update(senderPos, sender.Hash())
	w.senderAfter = sender

	w.receiverPath = s.tree.Prove(receiverPos)

	receiver.Balance += t.Amount
	s.accounts[receiverPos] = receiver
	s.tree.Update(receiverPos, receiver.Hash())
	w.receiverAfter = receiver

	w.newRoot = s.tree.Root()
	return w, nil
}

// paddingWitness replays account 0 through all four chains without moving
// funds, so that a cycle carries the root through unchanged.
func (s *State) paddingWitness() *transferWitness {
	account := s.accounts[0]
	path := s.tree.Prove(0)
	root := s.tree.Root()
	return &transferWitness{
		transfer: Transfer{
			SenderPubKey:   account.PubKey,
			ReceiverPubKey: account.PubKey,
			Nonce:          account.Nonce,
		},
		senderBefore:   account,
		senderAfter:    account,
		receiverBefore: account,
		receiverAfter:  account,
		senderPath:     path,
		receiverPath:   path,
		prevRoot:       root,
		newRoot:        root,
	}
}

func accountKey(pub schnorr.PublicKey) string {
	x := pub.A.X.Bytes()
	y := pub.A.Y.Bytes()
	return string(x[:]) + string(y[:])
}
