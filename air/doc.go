// Copyright 2020-2024 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

// Package air defines the contract between an algebraic constraint program
// (an AIR: Algebraic Intermediate Representation) and an external STARK
// proving backend.
//
// An AIR declares the geometry of an execution trace (width, length, maximum
// transition-constraint degree), a set of periodic columns used to activate
// constraint groups on a per-row basis, a pure transition-evaluation function
// and a list of boundary assertions pinning trace cells to public values.
// The package also provides the trace container filled by witness builders,
// a column/constraint-slot allocator preventing gadgets from aliasing each
// other, and table helpers for assembling periodic columns from sub-program
// segments.
//
// The proving and verifying calls themselves are the backend's concern: this
// package only supplies what the backend consumes.
package air
