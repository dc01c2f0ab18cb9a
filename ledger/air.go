// Copyright 2020-2024 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package ledger

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/consensys/zkledger/air"
	"github.com/consensys/zkledger/logger"
	"github.com/consensys/zkledger/std/ecc"
	"github.com/consensys/zkledger/std/merkle"
	"github.com/consensys/zkledger/std/rangecheck"
	"github.com/consensys/zkledger/std/rescue"
	"github.com/consensys/zkledger/std/schnorr"
)

// TransferAIR is the constraint program of a batch of signed transfers
// against the account tree. Each transfer occupies one CycleLength-row cycle;
// the running root column threads the tree root from the asserted old root at
// the first row to the asserted new root at the last.
type TransferAIR struct {
	length   int
	pub      PublicInputs
	periodic [][]fr.Element
	degrees  []air.TransitionDegree
	gen      [ecc.PointWidth]fr.Element
}

// NewTransferAIR builds the AIR for a trace of the given length.
func NewTransferAIR(pub PublicInputs, traceLength int) (*TransferAIR, error) {
	if traceLength <= 0 || traceLength&(traceLength-1) != 0 {
		return nil, fmt.Errorf("ledger: trace length %d is not a power of two", traceLength)
	}
	if traceLength%CycleLength != 0 {
		return nil, fmt.Errorf("ledger: trace length %d is not a multiple of the cycle length %d", traceLength, CycleLength)
	}
	if pub.TxCount > uint64(traceLength/CycleLength) {
		return nil, fmt.Errorf("ledger: %d transfers cannot fit %d cycles", pub.TxCount, traceLength/CycleLength)
	}
	a := &TransferAIR{
		length:   traceLength,
		pub:      pub,
		periodic: periodicColumns(),
		degrees:  constraintDegrees(),
		gen:      ecc.Generator(),
	}
	log := logger.Logger()
	log.Debug().
		Int("width", TraceWidth).
		Int("rows", traceLength).
		Int("constraints", NumConstraints).
		Int("maxDegree", a.MaxConstraintDegree()).
		Msg("built transfer AIR")
	return a, nil
}

// TraceWidth implements air.AIR.
func (a *TransferAIR) TraceWidth() int { return TraceWidth }

// TraceLength implements air.AIR.
func (a *TransferAIR) TraceLength() int { return a.length }

// MaxConstraintDegree implements air.AIR. The conditional point addition is
// the deepest constraint: degree 8 in the ladder cells times the selection
// bit.
func (a *TransferAIR) MaxConstraintDegree() int { return 9 }

// ConstraintDegrees implements air.AIR.
func (a *TransferAIR) ConstraintDegrees() []air.TransitionDegree { return a.degrees }

// PeriodicColumns implements air.AIR.
func (a *TransferAIR) PeriodicColumns() [][]fr.Element { return a.periodic }

// Assertions implements air.AIR: the running root starts at the old tree
// root and ends at the new one, and the transfer counter starts at zero and
// ends at the batch size.
func (a *TransferAIR) Assertions() []air.Assertion {
	var count fr.Element
	count.SetUint64(a.pub.TxCount)
	return []air.Assertion{
		air.NewAssertion(colPrevRoot, 0, a.pub.OldRoot),
		air.NewAssertion(colPrevRoot, a.length-1, a.pub.NewRoot),
		air.NewAssertion(colCounter, 0, fr.Element{}),
		air.NewAssertion(colCounter, a.length-1, count),
	}
}

// EvaluateTransition implements air.AIR.
func (a *TransferAIR) EvaluateTransition(current, next, periodic, result []fr.Element) {
	ark := periodic[pArk : pArk+2*rescue.StateWidth]

	// the four authentication chains and the challenge sponge share one
	// round schedule
	rescue.EnforceRound(seg(result, csSenderOldRound), seg(current, colSenderOld), seg(next, colSenderOld), ark, periodic[pMerkleRound])
	rescue.EnforceRound(seg(result, csSenderNewRound), seg(current, colSenderNew), seg(next, colSenderNew), ark, periodic[pMerkleRound])
	rescue.EnforceRound(seg(result, csReceiverOldRound), seg(current, colReceiverOld), seg(next, colReceiverOld), ark, periodic[pMerkleRound])
	rescue.EnforceRound(seg(result, csReceiverNewRound), seg(current, colReceiverNew), seg(next, colReceiverNew), ark, periodic[pMerkleRound])
	rescue.EnforceRound(seg(result, csSigRound), seg(current, colSigHash), seg(next, colSigHash), ark, periodic[pSigRound])

	a.evaluateLeaf(current, next, periodic, result)
	a.evaluateTree(current, next, periodic, result)
	a.evaluateRange(current, next, periodic, result)
	a.evaluateChallenge(current, next, periodic, result)
	a.evaluateLadders(current, next, periodic, result)

	// cycle-long copies
	for i, col := range copyColumns {
		air.AggConstraint(result, csCopy.At(i), periodic[pCopy], air.AreEqual(next[col], current[col]))
	}
}

// evaluateLeaf covers the first hash cycle of each chain: the sponge is
// seeded with the owner public key, and the second leaf chunk entering on the
// injection row carries the balance and nonce deltas of the transfer.
func (a *TransferAIR) evaluateLeaf(current, next, periodic, result []fr.Element) {
	row0 := periodic[pRow0]

	chains := [4]air.Range{colSenderOld, colSenderNew, colReceiverOld, colReceiverNew}
	pkCols := [4][2]int{
		{colSenderPkX, colSenderPkY},
		{colSenderPkX, colSenderPkY},
		{colReceiverPkX, colReceiverPkY},
		{colReceiverPkX, colReceiverPkY},
	}
	for c, chain := range chains {
		base := csLeafSetup.Start + c*rescue.StateWidth
		air.AggConstraint(result, base, row0, air.AreEqual(current[chain.At(0)], current[pkCols[c][0]]))
		air.AggConstraint(result, base+1, row0, air.AreEqual(current[chain.At(1)], current[pkCols[c][1]]))
		air.AggConstraint(result, base+2, row0, current[chain.At(2)])
	}

	// activity flag is binary, and padding cycles move no funds
	air.AggConstraint(result, csActivity.At(0), row0, air.IsBinary(current[colIsReal]))
	var gated fr.Element
	notReal := air.Not(current[colIsReal])
	gated.Mul(&notReal, &current[colAmount])
	air.AggConstraint(result, csActivity.At(1), row0, gated)

	inject := periodic[pLeafInject]

	// sponge capacity carries across the absorb
	for c, chain := range chains {
		air.AggConstraint(result, csLeafInject.At(c), inject, air.AreEqual(next[chain.At(2)], current[chain.At(2)]))
	}

	// the absorbed chunks of the four chains differ exactly by the transfer:
	// the sender loses the amount and bumps its nonce, the receiver gains
	// the amount
	delta := func(col int) fr.Element {
		var d fr.Element
		d.Sub(&next[col], &current[col])
		return d
	}
	dSOld0 := delta(colSenderOld.At(0))
	dSOld1 := delta(colSenderOld.At(1))
	dSNew0 := delta(colSenderNew.At(0))
	dSNew1 := delta(colSenderNew.At(1))
	dROld0 := delta(colReceiverOld.At(0))
	dROld1 := delta(colReceiverOld.At(1))
	dRNew0 := delta(colReceiverNew.At(0))
	dRNew1 := delta(colReceiverNew.At(1))

	var want fr.Element
	want.Sub(&dSOld0, &current[colAmount])
	air.AggConstraint(result, csLeafInject.At(4), inject, air.AreEqual(dSNew0, want))
	want.Add(&dSOld1, &current[colIsReal])
	air.AggConstraint(result, csLeafInject.At(5), inject, air.AreEqual(dSNew1, want))
	want.Add(&dROld0, &current[colAmount])
	air.AggConstraint(result, csLeafInject.At(6), inject, air.AreEqual(dRNew0, want))
	air.AggConstraint(result, csLeafInject.At(7), inject, air.AreEqual(dRNew1, dROld1))

	// bind the copies fed to the range checks and the signed message to
	// the absorbed values
	air.AggConstraint(result, csLeafBind.At(0), inject, air.AreEqual(current[colNewBalance], dSNew0))
	air.AggConstraint(result, csLeafBind.At(1), inject, air.AreEqual(current[colNonce], dSOld1))
}

// evaluateTree covers the level injections of the authentication chains and
// the root checks on the last merkle row.
func (a *TransferAIR) evaluateTree(current, next, periodic, result []fr.Element) {
	inject := periodic[pLevelInject]
	sBit := current[colSenderBit]
	rBit := current[colReceiverBit]

	merkle.EnforceLevelInjection(result, csLevelInject.At(0), seg(current, colSenderOld), seg(next, colSenderOld), sBit, inject)
	merkle.EnforceLevelInjection(result, csLevelInject.At(2), seg(current, colSenderNew), seg(next, colSenderNew), sBit, inject)
	merkle.EnforceLevelInjection(result, csLevelInject.At(4), seg(current, colReceiverOld), seg(next, colReceiverOld), rBit, inject)
	merkle.EnforceLevelInjection(result, csLevelInject.At(6), seg(current, colReceiverNew), seg(next, colReceiverNew), rBit, inject)

	merkle.EnforceSiblingMatch(result, csSiblingMatch.At(0), seg(next, colSenderOld), seg(next, colSenderNew), sBit, inject)
	merkle.EnforceSiblingMatch(result, csSiblingMatch.At(1), seg(next, colReceiverOld), seg(next, colReceiverNew), rBit, inject)

	air.AggConstraint(result, csPathBits.At(0), inject, air.IsBinary(sBit))
	air.AggConstraint(result, csPathBits.At(1), inject, air.IsBinary(rBit))

	// root checks: the pre-state chain closes on the running root, the
	// sender update and the receiver pre-state agree on the intermediate
	// root, and the post-state root becomes the running root
	finish := periodic[pFinish]
	air.AggConstraint(result, csFinish.At(0), finish, air.AreEqual(current[colSenderOld.At(0)], current[colPrevRoot]))
	air.AggConstraint(result, csFinish.At(1), finish, air.AreEqual(current[colSenderNew.At(0)], current[colReceiverOld.At(0)]))
	air.AggConstraint(result, csRootCarry, finish, air.AreEqual(next[colPrevRoot], current[colReceiverNew.At(0)]))

	var bumped fr.Element
	bumped.Add(&current[colCounter], &current[colIsReal])
	air.AggConstraint(result, csCounter, finish, air.AreEqual(next[colCounter], bumped))

	// outside the finish row, root and counter carry unchanged
	carry := periodic[pRootCarry]
	air.AggConstraint(result, csRootCarry, carry, air.AreEqual(next[colPrevRoot], current[colPrevRoot]))
	air.AggConstraint(result, csCounter, carry, air.AreEqual(next[colCounter], current[colCounter]))
}

// evaluateRange covers the 64-bit decompositions of the amount and of the
// sender's updated balance.
func (a *TransferAIR) evaluateRange(current, next, periodic, result []fr.Element) {
	rangecheck.EnforceBit(result, csRangeBit.At(0), current[colAmountBit], periodic[pRangeBit])
	rangecheck.EnforceBit(result, csRangeBit.At(1), current[colBalanceBit], periodic[pRangeBit])

	rangecheck.EnforceInit(result, csRangeInit.At(0), current[colAmountBit], current[colAmountAcc], periodic[pRow0])
	rangecheck.EnforceInit(result, csRangeInit.At(1), current[colBalanceBit], current[colBalanceAcc], periodic[pRow0])

	rangecheck.EnforceStep(result, csRangeStep.At(0), current[colAmountAcc], next[colAmountAcc], next[colAmountBit], periodic[pRangeStep])
	rangecheck.EnforceStep(result, csRangeStep.At(1), current[colBalanceAcc], next[colBalanceAcc], next[colBalanceBit], periodic[pRangeStep])

	finish := periodic[pRangeFinish]
	air.AggConstraint(result, csRangeInit.At(0), finish, air.AreEqual(current[colAmountAcc], current[colAmount]))
	air.AggConstraint(result, csRangeInit.At(1), finish, air.AreEqual(current[colBalanceAcc], current[colNewBalance]))
}

// evaluateChallenge covers the sponge seeding and absorptions of the
// challenge hash, and keeps the digest cell frozen until it is consumed.
func (a *TransferAIR) evaluateChallenge(current, next, periodic, result []fr.Element) {
	setup := periodic[pSigSetup]
	air.AggConstraint(result, csSigAbsorb.At(0), setup, air.AreEqual(current[colSigHash.At(0)], current[colSigRX]))
	air.AggConstraint(result, csSigAbsorb.At(1), setup, air.AreEqual(current[colSigHash.At(1)], current[colSigRY]))
	air.AggConstraint(result, csSigAbsorb.At(2), setup, current[colSigHash.At(2)])

	absorb := func(flag fr.Element, m0, m1 int) {
		var want fr.Element
		want.Add(&current[colSigHash.At(0)], &current[m0])
		air.AggConstraint(result, csSigAbsorb.At(0), flag, air.AreEqual(next[colSigHash.At(0)], want))
		want.Add(&current[colSigHash.At(1)], &current[m1])
		air.AggConstraint(result, csSigAbsorb.At(1), flag, air.AreEqual(next[colSigHash.At(1)], want))
		air.AggConstraint(result, csSigAbsorb.At(2), flag, air.AreEqual(next[colSigHash.At(2)], current[colSigHash.At(2)]))
	}
	absorb(periodic[pInjectSender], colSenderPkX, colSenderPkY)
	absorb(periodic[pInjectReceiver], colReceiverPkX, colReceiverPkY)
	absorb(periodic[pInjectPayload], colAmount, colNonce)

	air.AggConstraint(result, csSigAbsorb.At(0), periodic[pFreezeDigest], air.AreEqual(next[colSigHash.At(0)], current[colSigHash.At(0)]))
}

// evaluateLadders covers the two double-and-add ladders, the recomposition of
// the challenge digest from its bits, the final point addition and the
// comparison against the signature commitment.
func (a *TransferAIR) evaluateLadders(current, next, periodic, result []fr.Element) {
	var one fr.Element
	one.SetOne()

	// ladders start at the identity with an empty recomposition
	init := periodic[pMultInit]
	air.AggConstraint(result, csMultInit.At(0), init, current[colAccG.At(0)])
	air.AggConstraint(result, csMultInit.At(1), init, air.AreEqual(current[colAccG.At(1)], one))
	air.AggConstraint(result, csMultInit.At(2), init, air.AreEqual(current[colAccG.At(2)], one))
	air.AggConstraint(result, csMultInit.At(3), init, current[colAccP.At(0)])
	air.AggConstraint(result, csMultInit.At(4), init, air.AreEqual(current[colAccP.At(1)], one))
	air.AggConstraint(result, csMultInit.At(5), init, air.AreEqual(current[colAccP.At(2)], one))
	air.AggConstraint(result, csMultInit.At(6), init, current[colHashAcc])

	doubling := periodic[pDoubling]
	ecc.EnforceDoubling(seg(result, csAccG), seg(current, colAccG), seg(next, colAccG), doubling)
	ecc.EnforceDoubling(seg(result, csAccP), seg(current, colAccP), seg(next, colAccP), doubling)

	air.AggConstraint(result, csBitBinary.At(0), doubling, air.IsBinary(current[colBitG]))
	air.AggConstraint(result, csBitBinary.At(1), doubling, air.IsBinary(current[colBitP]))
	air.AggConstraint(result, csBitCopy.At(0), doubling, air.AreEqual(next[colBitG], current[colBitG]))
	air.AggConstraint(result, csBitCopy.At(1), doubling, air.AreEqual(next[colBitP], current[colBitP]))

	var recomposed fr.Element
	recomposed.Double(&current[colHashAcc])
	recomposed.Add(&recomposed, &current[colBitP])
	air.AggConstraint(result, csHashAcc, doubling, air.AreEqual(next[colHashAcc], recomposed))

	addition := periodic[pAddition]
	pk := [ecc.PointWidth]fr.Element{current[colSenderPkX], current[colSenderPkY], one}
	ecc.EnforceConditionalAddition(seg(result, csAccG), seg(current, colAccG), seg(next, colAccG), a.gen[:], current[colBitG], addition)
	ecc.EnforceConditionalAddition(seg(result, csAccP), seg(current, colAccP), seg(next, colAccP), pk[:], current[colBitP], addition)
	air.AggConstraint(result, csHashAcc, addition, air.AreEqual(next[colHashAcc], current[colHashAcc]))

	// S = [s]G + [h]A, and the recomposed bits must spell the digest. The
	// recomposition pins the bits mod the field order only: 254 bits can
	// also encode digest + r, shifting the ladder scalar by r mod the
	// curve order. Forging either form of the equation still requires the
	// secret key, so no canonicity check is enforced.
	finalAdd := periodic[pFinalAdd]
	ecc.EnforceAddition(seg(result, csAccG), seg(current, colAccG), seg(next, colAccG), seg(current, colAccP), finalAdd)
	air.AggConstraint(result, csHashAcc, finalAdd, air.AreEqual(current[colHashAcc], current[colSigHash.At(0)]))

	// S must equal the commitment, which must sit on the curve; padding
	// cycles carry no signature
	var verify fr.Element
	verify.Mul(&periodic[pVerify], &current[colIsReal])
	schnorr.EnforceVerification(result, csVerify.Start, seg(current, colAccG), current[colSigRX], current[colSigRY], verify)
}

// seg views the columns or slots of a range within a row or result slice.
func seg(row []fr.Element, r air.Range) []fr.Element {
	return row[r.Start:r.End]
}

// constraintDegrees declares the algebraic degree of every slot.
func constraintDegrees() []air.TransitionDegree {
	d := make([]air.TransitionDegree, NumConstraints)
	set := func(r air.Range, base int) {
		for i := r.Start; i < r.End; i++ {
			d[i] = air.NewDegreeWithCycles(base, CycleLength)
		}
	}

	set(csSenderOldRound, 5)
	set(csSenderNewRound, 5)
	set(csReceiverOldRound, 5)
	set(csReceiverNewRound, 5)
	set(csSigRound, 5)
	set(csSigAbsorb, 1)
	set(csLeafSetup, 1)
	set(csLeafInject, 1)
	set(csLeafBind, 1)
	for i := 0; i < 4; i++ {
		// digest placement is selected by the path bit; the capacity
		// reset is linear
		d[csLevelInject.At(2*i)] = air.NewDegreeWithCycles(2, CycleLength)
		d[csLevelInject.At(2*i+1)] = air.NewDegreeWithCycles(1, CycleLength)
	}
	set(csSiblingMatch, 2)
	set(csPathBits, 2)
	set(csFinish, 1)
	d[csRootCarry] = air.NewDegreeWithCycles(1, CycleLength)
	d[csCounter] = air.NewDegreeWithCycles(1, CycleLength)
	set(csActivity, 2)
	set(csRangeBit, 2)
	set(csRangeInit, 1)
	set(csRangeStep, 1)
	set(csMultInit, 1)
	set(csAccG, 9)
	set(csAccP, 9)
	set(csBitBinary, 2)
	set(csBitCopy, 1)
	d[csHashAcc] = air.NewDegreeWithCycles(1, CycleLength)
	d[csVerify.At(0)] = air.NewDegreeWithCycles(3, CycleLength)
	d[csVerify.At(1)] = air.NewDegreeWithCycles(3, CycleLength)
	d[csVerify.At(2)] = air.NewDegreeWithCycles(5, CycleLength)
	set(csCopy, 1)

	return d
}
