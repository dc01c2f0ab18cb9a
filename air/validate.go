// Copyright 2020-2024 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package air

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// ValidateTrace checks a trace against an AIR the way the backend's verifier
// would, but exhaustively: every transition constraint on every consecutive
// row pair, and every boundary assertion. It reports the first violation with
// its row and constraint slot.
//
// This is a debugging and testing aid; soundness of an actual proof is the
// backend's job.
func ValidateTrace(a AIR, trace *Trace) error {
	if trace.Width() != a.TraceWidth() {
		return fmt.Errorf("air: trace width %d does not match declared width %d", trace.Width(), a.TraceWidth())
	}
	if trace.Length() != a.TraceLength() {
		return fmt.Errorf("air: trace length %d does not match declared length %d", trace.Length(), a.TraceLength())
	}

	degrees := a.ConstraintDegrees()
	for i, d := range degrees {
		if d.Base > a.MaxConstraintDegree() {
			return fmt.Errorf("air: constraint %d declares degree %d above maximum %d", i, d.Base, a.MaxConstraintDegree())
		}
	}

	periodicColumns := a.PeriodicColumns()
	for i, column := range periodicColumns {
		if len(column) == 0 || a.TraceLength()%len(column) != 0 {
			return fmt.Errorf("air: periodic column %d has period %d not dividing trace length %d", i, len(column), a.TraceLength())
		}
	}

	periodic := make([]fr.Element, len(periodicColumns))
	result := make([]fr.Element, len(degrees))

	// Transition constraints relate each row to its successor; the last row
	// has none.
	for row := 0; row < trace.Length()-1; row++ {
		for i, column := range periodicColumns {
			periodic[i] = column[row%len(column)]
		}
		for i := range result {
			result[i].SetZero()
		}
		a.EvaluateTransition(trace.Row(row), trace.Row(row+1), periodic, result)
		for i := range result {
			if !result[i].IsZero() {
				return fmt.Errorf("air: transition constraint %d not satisfied at row %d (evaluates to %s)", i, row, result[i].String())
			}
		}
	}

	for i, assertion := range a.Assertions() {
		got := trace.Get(assertion.Row, assertion.Column)
		if !got.Equal(&assertion.Value) {
			return fmt.Errorf("air: assertion %d not satisfied: column %d row %d holds %s, expected %s",
				i, assertion.Column, assertion.Row, got.String(), assertion.Value.String())
		}
	}

	return nil
}
