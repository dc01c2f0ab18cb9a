// Copyright 2020-2024 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package air

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// AIR is the constraint-program contract consumed by the proving backend.
//
// Implementations must be safe for concurrent use: EvaluateTransition is
// called from many goroutines over many sampled points during proving.
type AIR interface {
	// TraceWidth returns the number of columns in the execution trace.
	TraceWidth() int

	// TraceLength returns the number of rows in the execution trace.
	// Always a power of two.
	TraceLength() int

	// MaxConstraintDegree returns the maximum degree, in trace cells, of any
	// transition constraint. Periodic-column multipliers are accounted for
	// separately through the Cycles of each TransitionDegree.
	MaxConstraintDegree() int

	// ConstraintDegrees returns the declared degree of every transition
	// constraint, in constraint-slot order.
	ConstraintDegrees() []TransitionDegree

	// PeriodicColumns returns the periodic column values. Column i repeats
	// with period len(columns[i]); every period must divide TraceLength.
	PeriodicColumns() [][]fr.Element

	// EvaluateTransition evaluates all transition constraints over a frame of
	// two consecutive rows. periodic holds the periodic-column values at the
	// current row. The evaluations are written to result, which has one slot
	// per declared constraint; a valid frame yields an all-zero result.
	//
	// The function is pure: no shared mutable state.
	EvaluateTransition(current, next, periodic, result []fr.Element)

	// Assertions returns the boundary assertions tying specific trace cells
	// to public-input values.
	Assertions() []Assertion
}

// TransitionDegree describes the degree of a transition constraint: Base is
// the degree in trace cells, Cycles lists the periods of the periodic columns
// the constraint is multiplied by.
type TransitionDegree struct {
	Base   int
	Cycles []int
}

// NewDegree returns a transition degree without periodic multipliers.
func NewDegree(base int) TransitionDegree {
	return TransitionDegree{Base: base}
}

// NewDegreeWithCycles returns a transition degree multiplied by periodic
// columns of the given periods.
func NewDegreeWithCycles(base int, cycles ...int) TransitionDegree {
	return TransitionDegree{Base: base, Cycles: cycles}
}

// Assertion pins the trace cell at (Row, Column) to a known value. Assertions
// are how public inputs constrain the trace boundary.
type Assertion struct {
	Column int
	Row    int
	Value  fr.Element
}

// NewAssertion returns a single-cell boundary assertion.
func NewAssertion(column, row int, value fr.Element) Assertion {
	return Assertion{Column: column, Row: row, Value: value}
}
