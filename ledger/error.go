// Copyright 2020-2024 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package ledger

import "errors"

var (
	// ErrNonExistingAccount account not in the ledger
	ErrNonExistingAccount = errors.New("the account is not in the ledger")

	// ErrWrongSignature wrong signature
	ErrWrongSignature = errors.New("invalid signature")

	// ErrAmountTooHigh the amount is bigger than the balance
	ErrAmountTooHigh = errors.New("amount is bigger than balance")

	// ErrNonce inconsistent nonce between transfer and account
	ErrNonce = errors.New("incorrect nonce")

	// ErrSelfTransfer sender and receiver are the same account
	ErrSelfTransfer = errors.New("sender and receiver must differ")

	// ErrAccountsFull no free slot left in the account tree
	ErrAccountsFull = errors.New("account tree is full")

	// ErrBalanceOverflow the credited balance does not fit in 64 bits
	ErrBalanceOverflow = errors.New("balance overflows 64 bits")

	// ErrSizeByteSlice memory checking
	ErrSizeByteSlice = errors.New("byte slice size is inconsistent with Account size")
)
