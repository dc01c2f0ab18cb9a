// Copyright 2020-2024 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

// Package zkledger implements an algebraic intermediate representation (AIR)
// certifying batches of signed transfers against a Rescue-Prime Merkle ledger.
//
// The repository is organized as follows:
//   - air/ defines the AIR contract: execution traces, transition constraint
//     evaluation, periodic columns and boundary assertions.
//   - std/ hosts the gadget library (Rescue-Prime, twisted Edwards point
//     arithmetic, range decomposition, Merkle authentication, Schnorr).
//   - ledger/ ties the gadgets together: account state, transfer validation,
//     trace construction and the transaction AIR with its public inputs.
//
// All arithmetic is over the BN254 scalar field; signatures live on the
// embedded Baby Jubjub curve.
package zkledger

import (
	"github.com/blang/semver/v4"
)

var Version = semver.MustParse("0.1.0")
