// Copyright 2020-2024 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

// Package ledger proves batches of signed balance transfers against a Merkle
// account tree, as an AIR over the bn254 scalar field.
//
// Each transfer occupies one trace cycle that verifies, in parallel column
// sections, four Rescue authentication chains (sender and receiver leaves,
// before and after the transfer), a Schnorr signature on the transfer by the
// sender's key, and 64-bit range decompositions of the amount and of the
// sender's updated balance. A running-root column threads the tree root
// across cycles; boundary assertions tie it to the public old and new roots.
//
// Batches are padded to a power of two with no-op cycles flagged inactive by
// a binary activity column; padding cycles replay an existing leaf through
// all four chains so the root carries through unchanged, and move no funds.
package ledger
