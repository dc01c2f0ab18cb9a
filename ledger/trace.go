// Copyright 2020-2024 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package ledger

import (
	"fmt"
	"runtime"
	"time"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"golang.org/x/sync/errgroup"

	"github.com/consensys/zkledger/air"
	"github.com/consensys/zkledger/logger"
	"github.com/consensys/zkledger/std/ecc"
	"github.com/consensys/zkledger/std/merkle"
	"github.com/consensys/zkledger/std/rangecheck"
	"github.com/consensys/zkledger/std/rescue"
	"github.com/consensys/zkledger/std/schnorr"
)

// BuildTrace executes the transfers against state and lays the executions out
// as an execution trace of the transfer AIR, one cycle per transfer, padded
// with no-op cycles to a power of two. It returns the trace together with the
// public inputs it attests to.
//
// The state is mutated: after a successful call it reflects all transfers.
// On error it is left unchanged, so the caller can drop the offending
// transfer and re-batch the rest.
func BuildTrace(state *State, transfers []Transfer) (*air.Trace, PublicInputs, error) {
	start := time.Now()
	log := logger.Logger()

	pub := PublicInputs{OldRoot: state.Root(), TxCount: uint64(len(transfers))}

	// the batch executes against a staged copy, committed only once every
	// transfer has validated
	staged := state.clone()

	witnesses := make([]*transferWitness, 0, len(transfers))
	for i, t := range transfers {
		w, err := staged.Apply(t)
		if err != nil {
			return nil, PublicInputs{}, fmt.Errorf("ledger: transfer %d: %w", i, err)
		}
		witnesses = append(witnesses, w)
	}

	cycles := nextPowerOfTwo(len(transfers))
	for len(witnesses) < cycles {
		witnesses = append(witnesses, staged.paddingWitness())
	}
	pub.NewRoot = staged.Root()

	trace := air.NewTrace(TraceWidth, cycles*CycleLength)

	g := new(errgroup.Group)
	g.SetLimit(runtime.NumCPU())
	for i, w := range witnesses {
		g.Go(func() error {
			return fillCycle(trace, i, w, i < len(transfers), pub.TxCount)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, PublicInputs{}, err
	}
	*state = *staged

	log.Debug().
		Int("transfers", len(transfers)).
		Int("cycles", cycles).
		Int("rows", trace.Length()).
		Dur("took", time.Since(start)).
		Msg("built transfer trace")

	return trace, pub, nil
}

// fillCycle writes the witness of one transfer into its trace cycle. The fill
// mirrors the constraint schedule exactly; as a safety net it cross-checks
// the chain roots against the witness.
func fillCycle(trace *air.Trace, cycle int, w *transferWitness, real bool, txCount uint64) error {
	base := cycle * CycleLength

	var amount, newBalance, nonce, isReal fr.Element
	amount.SetUint64(w.transfer.Amount)
	newBalance.SetUint64(w.senderAfter.Balance)
	nonce.SetUint64(w.senderBefore.Nonce)
	if real {
		isReal.SetOne()
	}

	countBefore := uint64(cycle)
	if countBefore > txCount {
		countBefore = txCount
	}
	var counter, counterAfter fr.Element
	counter.SetUint64(countBefore)
	counterAfter.Add(&counter, &isReal)

	for r := 0; r < CycleLength; r++ {
		row := trace.Row(base + r)
		row[colSenderPkX] = w.transfer.SenderPubKey.A.X
		row[colSenderPkY] = w.transfer.SenderPubKey.A.Y
		row[colReceiverPkX] = w.transfer.ReceiverPubKey.A.X
		row[colReceiverPkY] = w.transfer.ReceiverPubKey.A.Y
		row[colAmount] = amount
		row[colNewBalance] = newBalance
		row[colNonce] = nonce
		row[colSigRX] = w.transfer.Signature.R.X
		row[colSigRY] = w.transfer.Signature.R.Y
		row[colIsReal] = isReal

		// the running root and counter advance on the merkle finish row
		if r <= rowMerkleFinish {
			row[colPrevRoot] = w.prevRoot
			row[colCounter] = counter
		} else {
			row[colPrevRoot] = w.newRoot
			row[colCounter] = counterAfter
		}
	}

	sOldRoot := fillChain(trace, base, colSenderOld, w.senderBefore, w.senderPath)
	sNewRoot := fillChain(trace, base, colSenderNew, w.senderAfter, w.senderPath)
	rOldRoot := fillChain(trace, base, colReceiverOld, w.receiverBefore, w.receiverPath)
	rNewRoot := fillChain(trace, base, colReceiverNew, w.receiverAfter, w.receiverPath)

	if !sOldRoot.Equal(&w.prevRoot) || !sNewRoot.Equal(&rOldRoot) || !rNewRoot.Equal(&w.newRoot) {
		return fmt.Errorf("ledger: cycle %d: authentication chains disagree with the witness roots", cycle)
	}

	for k, bit := range w.senderPath.PathBits() {
		if bit {
			trace.Set(base+(leafCycles+k)*rescue.HashCycleLength-1, colSenderBit, oneElement())
		}
	}
	for k, bit := range w.receiverPath.PathBits() {
		if bit {
			trace.Set(base+(leafCycles+k)*rescue.HashCycleLength-1, colReceiverBit, oneElement())
		}
	}

	fillRange(trace, base, colAmountBit, colAmountAcc, w.transfer.Amount)
	fillRange(trace, base, colBalanceBit, colBalanceAcc, w.senderAfter.Balance)

	digest := fillChallenge(trace, base, w)
	fillLadders(trace, base, w, digest)

	return nil
}

// fillChain runs one authentication chain: two cycles absorbing the account
// leaf, then one cycle per tree level. It returns the root digest exposed on
// the merkle finish row.
func fillChain(trace *air.Trace, base int, cols air.Range, account Account, path merkle.Proof) fr.Element {
	var state [rescue.StateWidth]fr.Element
	state[0] = account.PubKey.A.X
	state[1] = account.PubKey.A.Y

	write := func(r int) {
		row := trace.Row(base + r)
		for i := 0; i < rescue.StateWidth; i++ {
			row[cols.At(i)] = state[i]
		}
	}

	r := 0
	write(r)
	for round := 0; round < rescue.NumRounds; round++ {
		rescue.ApplyRound(&state, round)
		r++
		write(r)
	}

	var balance, nonce fr.Element
	balance.SetUint64(account.Balance)
	nonce.SetUint64(account.Nonce)
	state[0].Add(&state[0], &balance)
	state[1].Add(&state[1], &nonce)
	r++
	write(r)
	for round := 0; round < rescue.NumRounds; round++ {
		rescue.ApplyRound(&state, round)
		r++
		write(r)
	}

	bits := path.PathBits()
	for level := 0; level < TreeDepth; level++ {
		digest := state[0]
		if bits[level] {
			state[0] = path.Siblings[level]
			state[1] = digest
		} else {
			state[0] = digest
			state[1] = path.Siblings[level]
		}
		state[2].SetZero()
		r++
		write(r)
		for round := 0; round < rescue.NumRounds; round++ {
			rescue.ApplyRound(&state, round)
			r++
			write(r)
		}
	}

	return state[0]
}

// fillRange decomposes value over the range window of the cycle.
func fillRange(trace *air.Trace, base, bitCol, accCol int, value uint64) {
	bits := make([]fr.Element, rangecheck.NumBits)
	acc := make([]fr.Element, rangecheck.NumBits)
	rangecheck.Fill(bits, acc, value)
	for r := 0; r < rangecheck.NumBits; r++ {
		trace.Set(base+r, bitCol, bits[r])
		trace.Set(base+r, accCol, acc[r])
	}
}

// fillChallenge runs the challenge sponge over the commitment point and the
// signed message, and freezes the digest cell until the ladders consume it.
func fillChallenge(trace *air.Trace, base int, w *transferWitness) fr.Element {
	var state [rescue.StateWidth]fr.Element
	state[0] = w.transfer.Signature.R.X
	state[1] = w.transfer.Signature.R.Y

	write := func(r int) {
		row := trace.Row(base + r)
		for i := 0; i < rescue.StateWidth; i++ {
			row[colSigHash.At(i)] = state[i]
		}
	}

	r := rowSigHashStart
	write(r)

	msg := w.transfer.message()
	for chunk := 0; chunk < sigHashCycles; chunk++ {
		for round := 0; round < rescue.NumRounds; round++ {
			rescue.ApplyRound(&state, round)
			r++
			write(r)
		}
		if chunk == sigHashCycles-1 {
			break
		}
		state[0].Add(&state[0], &msg[2*chunk])
		state[1].Add(&state[1], &msg[2*chunk+1])
		r++
		write(r)
	}

	digest := state[0]
	for r := rowSigDigest; r <= rowFinalAdd; r++ {
		trace.Set(base+r, colSigHash.At(0), digest)
	}
	return digest
}

// fillLadders runs the two double-and-add ladders over the response and the
// challenge, recomposes the challenge bits alongside, and performs the final
// addition the verification row inspects.
func fillLadders(trace *air.Trace, base int, w *transferWitness, digest fr.Element) {
	sBits := schnorr.Bits(&w.transfer.Signature.S)
	hBits := schnorr.DigestBits(digest)

	accG := ecc.Identity()
	accP := ecc.Identity()
	gen := ecc.Generator()
	pk := [ecc.PointWidth]fr.Element{
		w.transfer.SenderPubKey.A.X,
		w.transfer.SenderPubKey.A.Y,
		oneElement(),
	}

	var hAcc fr.Element
	write := func(r int) {
		row := trace.Row(base + r)
		for i := 0; i < ecc.PointWidth; i++ {
			row[colAccG.At(i)] = accG[i]
			row[colAccP.At(i)] = accP[i]
		}
		row[colHashAcc] = hAcc
	}

	write(rowMultStart)
	for i := 0; i < schnorr.NumScalarBits; i++ {
		rowD := rowMultStart + 2*i

		if sBits[i] {
			trace.Set(base+rowD, colBitG, oneElement())
			trace.Set(base+rowD+1, colBitG, oneElement())
		}
		if hBits[i] {
			trace.Set(base+rowD, colBitP, oneElement())
			trace.Set(base+rowD+1, colBitP, oneElement())
		}

		ecc.ApplyDoubling(accG[:])
		ecc.ApplyDoubling(accP[:])
		hAcc.Double(&hAcc)
		if hBits[i] {
			var one fr.Element
			one.SetOne()
			hAcc.Add(&hAcc, &one)
		}
		write(rowD + 1)

		ecc.ApplyAddition(accG[:], gen[:], sBits[i])
		ecc.ApplyAddition(accP[:], pk[:], hBits[i])
		write(rowD + 2)
	}

	// S = [s]G + [h]A
	ecc.ApplyAddition(accG[:], accP[:], true)
	write(rowVerify)
}

func oneElement() fr.Element {
	var one fr.Element
	one.SetOne()
	return one
}

func nextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
