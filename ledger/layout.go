// Copyright 2020-2024 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package ledger

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/consensys/zkledger/air"
	"github.com/consensys/zkledger/std/ecc"
	"github.com/consensys/zkledger/std/rangecheck"
	"github.com/consensys/zkledger/std/rescue"
	"github.com/consensys/zkledger/std/schnorr"
)

const (
	// TreeDepth is the height of the account tree.
	TreeDepth = 8

	// NumAccounts is the capacity of the account tree.
	NumAccounts = 1 << TreeDepth

	// CycleLength is the number of trace rows one transfer occupies.
	CycleLength = 1024
)

// Row schedule within a transfer cycle. A cycle runs four Rescue chains
// authenticating the sender and receiver leaves before and after the
// transfer, a fifth chain hashing the signature challenge, two
// double-and-add ladders verifying the signature, and two 64-bit range
// windows; all sections are aligned on hash-cycle boundaries.
const (
	// leafCycles is the number of hash cycles absorbing one account leaf
	// (four field elements at rate two).
	leafCycles = 2

	// rowLeafInject is the transition absorbing the second leaf chunk
	// (balance, nonce).
	rowLeafInject = rescue.HashCycleLength - 1

	// merkleRows is the row span of the four authentication chains.
	merkleRows = (leafCycles + TreeDepth) * rescue.HashCycleLength

	// rowMerkleFinish is the row where the four chains expose their roots.
	rowMerkleFinish = merkleRows - 1

	// rowRangeFinish is the row where the range accumulators hold their
	// final values.
	rowRangeFinish = rangecheck.NumBits - 1

	// rowSigHashStart opens the challenge sponge on (R.x, R.y).
	rowSigHashStart = merkleRows

	// sigHashCycles absorbs eight elements at rate two.
	sigHashCycles = 4

	// rowSigDigest is the row where the challenge digest is available.
	rowSigDigest = rowSigHashStart + sigHashCycles*rescue.HashCycleLength - 1

	// rowMultStart is the first doubling row of the two ladders.
	rowMultStart = rowSigDigest + 1

	// rowFinalAdd sums the two ladders. Each scalar bit takes a doubling
	// row and an addition row.
	rowFinalAdd = rowMultStart + 2*schnorr.NumScalarBits

	// rowVerify compares the sum against the signature commitment.
	rowVerify = rowFinalAdd + 1
)

// Trace columns.
var (
	traceLayout = air.NewLayout()

	colSenderOld   = traceLayout.Alloc("sender-old", rescue.StateWidth)
	colSenderNew   = traceLayout.Alloc("sender-new", rescue.StateWidth)
	colReceiverOld = traceLayout.Alloc("receiver-old", rescue.StateWidth)
	colReceiverNew = traceLayout.Alloc("receiver-new", rescue.StateWidth)
	colSenderBit   = traceLayout.Alloc("sender-path-bit", 1).Start
	colReceiverBit = traceLayout.Alloc("receiver-path-bit", 1).Start
	colPrevRoot    = traceLayout.Alloc("running-root", 1).Start
	colCounter     = traceLayout.Alloc("transfer-counter", 1).Start
	colSenderPkX   = traceLayout.Alloc("sender-pubkey-x", 1).Start
	colSenderPkY   = traceLayout.Alloc("sender-pubkey-y", 1).Start
	colReceiverPkX = traceLayout.Alloc("receiver-pubkey-x", 1).Start
	colReceiverPkY = traceLayout.Alloc("receiver-pubkey-y", 1).Start
	colAmount      = traceLayout.Alloc("amount", 1).Start
	colNewBalance  = traceLayout.Alloc("sender-new-balance", 1).Start
	colNonce       = traceLayout.Alloc("sender-nonce", 1).Start
	colSigRX       = traceLayout.Alloc("commitment-x", 1).Start
	colSigRY       = traceLayout.Alloc("commitment-y", 1).Start
	colIsReal      = traceLayout.Alloc("activity", 1).Start
	colSigHash     = traceLayout.Alloc("challenge-sponge", rescue.StateWidth)
	colAccG        = traceLayout.Alloc("response-ladder", ecc.PointWidth)
	colBitG        = traceLayout.Alloc("response-bit", 1).Start
	colAccP        = traceLayout.Alloc("challenge-ladder", ecc.PointWidth)
	colBitP        = traceLayout.Alloc("challenge-bit", 1).Start
	colHashAcc     = traceLayout.Alloc("challenge-recomposition", 1).Start
	colAmountBit   = traceLayout.Alloc("amount-bit", 1).Start
	colAmountAcc   = traceLayout.Alloc("amount-acc", 1).Start
	colBalanceBit  = traceLayout.Alloc("balance-bit", 1).Start
	colBalanceAcc  = traceLayout.Alloc("balance-acc", 1).Start

	// TraceWidth is the number of trace columns.
	TraceWidth = traceLayout.Width()
)

// Constraint slots. Constraints sharing a slot are active on disjoint rows.
var (
	slotLayout = air.NewLayout()

	csSenderOldRound   = slotLayout.Alloc("sender-old-round", rescue.StateWidth)
	csSenderNewRound   = slotLayout.Alloc("sender-new-round", rescue.StateWidth)
	csReceiverOldRound = slotLayout.Alloc("receiver-old-round", rescue.StateWidth)
	csReceiverNewRound = slotLayout.Alloc("receiver-new-round", rescue.StateWidth)
	csSigRound         = slotLayout.Alloc("challenge-round", rescue.StateWidth)
	csSigAbsorb        = slotLayout.Alloc("challenge-absorb", rescue.StateWidth)
	csLeafSetup        = slotLayout.Alloc("leaf-setup", 4*rescue.StateWidth)
	csLeafInject       = slotLayout.Alloc("leaf-inject", 8)
	csLeafBind         = slotLayout.Alloc("leaf-bind", 2)
	csLevelInject      = slotLayout.Alloc("level-inject", 8)
	csSiblingMatch     = slotLayout.Alloc("sibling-match", 2)
	csPathBits         = slotLayout.Alloc("path-bits", 2)
	csFinish           = slotLayout.Alloc("root-checks", 2)
	csRootCarry        = slotLayout.Alloc("root-carry", 1).Start
	csCounter          = slotLayout.Alloc("counter", 1).Start
	csActivity         = slotLayout.Alloc("activity", 2)
	csRangeBit         = slotLayout.Alloc("range-bits", 2)
	csRangeInit        = slotLayout.Alloc("range-init", 2)
	csRangeStep        = slotLayout.Alloc("range-step", 2)
	csMultInit         = slotLayout.Alloc("ladder-init", 2*ecc.PointWidth+1)
	csAccG             = slotLayout.Alloc("response-ladder", ecc.PointWidth)
	csAccP             = slotLayout.Alloc("challenge-ladder", ecc.PointWidth)
	csBitBinary        = slotLayout.Alloc("ladder-bits", 2)
	csBitCopy          = slotLayout.Alloc("ladder-bit-copy", 2)
	csHashAcc          = slotLayout.Alloc("challenge-recomposition", 1).Start
	csVerify           = slotLayout.Alloc("signature-check", 3)
	csCopy             = slotLayout.Alloc("cycle-copies", 10)

	// NumConstraints is the number of transition constraint slots.
	NumConstraints = slotLayout.Width()
)

// copyColumns lists the columns held constant over a transfer cycle, in the
// order of the csCopy slots.
var copyColumns = [10]int{
	colSenderPkX, colSenderPkY, colReceiverPkX, colReceiverPkY,
	colAmount, colNewBalance, colNonce, colSigRX, colSigRY, colIsReal,
}

// Periodic column indices. Columns 0..5 carry the Rescue round constants at
// period HashCycleLength; the rest are period-CycleLength activation masks.
const (
	pArk = 0 // 2*StateWidth columns

	pRow0 = 2*rescue.StateWidth + iota - 1
	pMerkleRound
	pLeafInject
	pLevelInject
	pFinish
	pRangeBit
	pRangeStep
	pRangeFinish
	pSigRound
	pSigSetup
	pInjectSender
	pInjectReceiver
	pInjectPayload
	pFreezeDigest
	pMultInit
	pDoubling
	pAddition
	pFinalAdd
	pVerify
	pCopy
	pRootCarry

	numPeriodic
)

// levelInjectRows returns the transitions where the authentication chains
// cross a tree level.
func levelInjectRows() []int {
	rows := make([]int, TreeDepth)
	for k := 0; k < TreeDepth; k++ {
		rows[k] = (leafCycles+k)*rescue.HashCycleLength - 1
	}
	return rows
}

// periodicColumns assembles the periodic table of the transfer AIR.
func periodicColumns() [][]fr.Element {
	columns := make([][]fr.Element, numPeriodic)
	arkMap := make([]air.IndexPair, 2*rescue.StateWidth)
	for i := range arkMap {
		arkMap[i] = air.IndexPair{Add: i, Org: pArk + i}
	}
	air.Stitch(columns, rescue.RoundConstantColumns(), arkMap)

	// the merkle chains hash over rows [0, merkleRows) and the challenge
	// sponge over [rowSigHashStart, rowMultStart); both reuse the round
	// schedule of the hash cycle, padded to zero elsewhere
	rounds := [][]fr.Element{{}, {}}
	hashMask := [][]fr.Element{rescue.HashCycleMask()}
	air.Fill(rounds, hashMask, []air.IndexPair{{Add: 0, Org: 0}}, merkleRows)
	air.Pad(rounds, []int{0, 1}, rowSigHashStart, fr.Element{})
	air.Fill(rounds, hashMask, []air.IndexPair{{Add: 0, Org: 1}}, rowMultStart)
	air.Pad(rounds, []int{0, 1}, CycleLength, fr.Element{})
	merkleRound, sigRound := rounds[0], rounds[1]

	doubling := make([]int, 0, schnorr.NumScalarBits)
	addition := make([]int, 0, schnorr.NumScalarBits)
	for bit := 0; bit < schnorr.NumScalarBits; bit++ {
		doubling = append(doubling, rowMultStart+2*bit)
		addition = append(addition, rowMultStart+2*bit+1)
	}

	rootCarry := air.RangeMask(CycleLength, 0, CycleLength)
	rootCarry[rowMerkleFinish].SetZero()

	columns[pRow0] = air.Mask(CycleLength, 0)
	columns[pMerkleRound] = merkleRound
	columns[pLeafInject] = air.Mask(CycleLength, rowLeafInject)
	columns[pLevelInject] = air.Mask(CycleLength, levelInjectRows()...)
	columns[pFinish] = air.Mask(CycleLength, rowMerkleFinish)
	columns[pRangeBit] = air.RangeMask(CycleLength, 0, rangecheck.NumBits)
	columns[pRangeStep] = air.RangeMask(CycleLength, 0, rowRangeFinish)
	columns[pRangeFinish] = air.Mask(CycleLength, rowRangeFinish)
	columns[pSigRound] = sigRound
	columns[pSigSetup] = air.Mask(CycleLength, rowSigHashStart)
	columns[pInjectSender] = air.Mask(CycleLength, rowSigHashStart+rescue.HashCycleLength-1)
	columns[pInjectReceiver] = air.Mask(CycleLength, rowSigHashStart+2*rescue.HashCycleLength-1)
	columns[pInjectPayload] = air.Mask(CycleLength, rowSigHashStart+3*rescue.HashCycleLength-1)
	columns[pFreezeDigest] = air.RangeMask(CycleLength, rowSigDigest, rowFinalAdd)
	columns[pMultInit] = air.Mask(CycleLength, rowMultStart)
	columns[pDoubling] = air.Mask(CycleLength, doubling...)
	columns[pAddition] = air.Mask(CycleLength, addition...)
	columns[pFinalAdd] = air.Mask(CycleLength, rowFinalAdd)
	columns[pVerify] = air.Mask(CycleLength, rowVerify)
	columns[pCopy] = air.RangeMask(CycleLength, 0, CycleLength-1)
	columns[pRootCarry] = rootCarry

	return columns
}
