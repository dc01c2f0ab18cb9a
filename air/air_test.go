// Copyright 2020-2024 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package air

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/require"
)

// doublingAIR constrains column 0 to double on every even transition and to
// carry unchanged on every odd one, starting from a boundary value.
type doublingAIR struct {
	length int
	start  fr.Element
}

func (a *doublingAIR) TraceWidth() int          { return 1 }
func (a *doublingAIR) TraceLength() int         { return a.length }
func (a *doublingAIR) MaxConstraintDegree() int { return 1 }

func (a *doublingAIR) ConstraintDegrees() []TransitionDegree {
	return []TransitionDegree{
		NewDegreeWithCycles(1, 2),
		NewDegreeWithCycles(1, 2),
	}
}

func (a *doublingAIR) PeriodicColumns() [][]fr.Element {
	return [][]fr.Element{
		Mask(2, 0),
		Mask(2, 1),
	}
}

func (a *doublingAIR) EvaluateTransition(current, next, periodic, result []fr.Element) {
	var doubled fr.Element
	doubled.Double(&current[0])
	AggConstraint(result, 0, periodic[0], AreEqual(next[0], doubled))
	AggConstraint(result, 1, periodic[1], AreEqual(next[0], current[0]))
}

func (a *doublingAIR) Assertions() []Assertion {
	return []Assertion{NewAssertion(0, 0, a.start)}
}

func doublingTrace(a *doublingAIR) *Trace {
	trace := NewTrace(1, a.length)
	v := a.start
	for row := 0; row < a.length; row++ {
		trace.Set(row, 0, v)
		if row%2 == 0 {
			v.Double(&v)
		}
	}
	return trace
}

func TestValidateTrace(t *testing.T) {
	a := &doublingAIR{length: 8}
	a.start.SetUint64(3)
	trace := doublingTrace(a)

	require.NoError(t, ValidateTrace(a, trace))

	// mutating any cell trips either a transition or the boundary assertion
	for row := 0; row < a.length; row++ {
		saved := trace.Get(row, 0)
		var bad fr.Element
		bad.SetUint64(999)
		trace.Set(row, 0, bad)
		require.Error(t, ValidateTrace(a, trace), "row %d", row)
		trace.Set(row, 0, saved)
	}
	require.NoError(t, ValidateTrace(a, trace))
}

func TestValidateTraceShapeMismatch(t *testing.T) {
	a := &doublingAIR{length: 8}
	a.start.SetUint64(1)

	require.Error(t, ValidateTrace(a, NewTrace(2, 8)))
	require.Error(t, ValidateTrace(a, NewTrace(1, 16)))
}

func TestTraceRowsAreDisjoint(t *testing.T) {
	trace := NewTrace(3, 4)
	var one fr.Element
	one.SetOne()

	row := trace.Row(1)
	require.Len(t, row, 3)
	row[2] = one
	cell := trace.Get(1, 2)
	require.True(t, cell.IsOne())
	cell = trace.Get(2, 0)
	require.True(t, cell.IsZero())

	// appending to a row slice must not spill into the next row
	_ = append(row, one)
	cell = trace.Get(2, 0)
	require.True(t, cell.IsZero())

	trace.CopyRow(3, 1)
	cell = trace.Get(3, 2)
	require.True(t, cell.IsOne())
}

func TestNewTraceRejectsBadLength(t *testing.T) {
	require.Panics(t, func() { NewTrace(1, 3) })
	require.Panics(t, func() { NewTrace(1, 0) })
	require.Panics(t, func() { NewTrace(0, 4) })
}

func TestLayoutAllocatesDisjointRanges(t *testing.T) {
	l := NewLayout()
	a := l.Alloc("a", 3)
	b := l.Alloc("b", 2)

	require.Equal(t, Range{Start: 0, End: 3}, a)
	require.Equal(t, Range{Start: 3, End: 5}, b)
	require.Equal(t, 5, l.Width())
	require.Equal(t, 4, b.At(1))
	require.Panics(t, func() { b.At(2) })
	require.Panics(t, func() { l.Alloc("a", 1) })
}

func TestMasks(t *testing.T) {
	m := Mask(4, 1, 3)
	require.True(t, m[0].IsZero())
	require.True(t, m[1].IsOne())
	require.True(t, m[2].IsZero())
	require.True(t, m[3].IsOne())

	r := RangeMask(8, 2, 5)
	for i := 0; i < 8; i++ {
		require.Equal(t, i >= 2 && i < 5, r[i].IsOne(), "row %d", i)
	}
}

func TestPeriodicTableAssembly(t *testing.T) {
	var one fr.Element
	one.SetOne()

	columns := make([][]fr.Element, 2)
	Stitch(columns, [][]fr.Element{Mask(2, 0)}, []IndexPair{{Add: 0, Org: 0}})
	require.Len(t, columns[0], 2)
	require.True(t, columns[0][0].IsOne())

	// column 1 stays inactive over the first window, then cycles the mask
	Pad(columns, []int{1}, 4, fr.Element{})
	Fill(columns, [][]fr.Element{Mask(2, 0)}, []IndexPair{{Add: 0, Org: 1}}, 8)
	require.Len(t, columns[1], 8)
	for i := 0; i < 4; i++ {
		require.True(t, columns[1][i].IsZero(), "row %d", i)
	}
	for i := 4; i < 8; i++ {
		require.Equal(t, i%2 == 0, columns[1][i].IsOne(), "row %d", i)
	}

	require.Panics(t, func() { Stitch(columns, nil, []IndexPair{{Add: 0, Org: 0}}) })
	require.Panics(t, func() { Pad(columns, []int{1}, 2, fr.Element{}) })
}

func TestHelperValues(t *testing.T) {
	var a, b fr.Element
	a.SetUint64(7)
	b.SetUint64(7)
	v := AreEqual(a, b)
	require.True(t, v.IsZero())
	b.SetUint64(8)
	v = AreEqual(a, b)
	require.False(t, v.IsZero())

	var zero, one fr.Element
	one.SetOne()
	v = IsBinary(zero)
	require.True(t, v.IsZero())
	v = IsBinary(one)
	require.True(t, v.IsZero())
	v = IsBinary(a)
	require.False(t, v.IsZero())

	v = Not(one)
	require.True(t, v.IsZero())
	v = Not(zero)
	require.True(t, v.IsOne())
}
