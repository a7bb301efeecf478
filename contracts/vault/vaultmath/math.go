/*
Package vaultmath implements share accounting arithmetic of the Vault contract.

All amounts handled by the vault are unsigned 64-bit quantities. NeoVM
integers are wider than that, so products of two amounts are computed exactly
and results are checked against MaxAmount explicitly. The package relies on
that width and is meant to be compiled into the contract only; off-chain code
uses the 64-bit version from rpc/vault.
*/
package vaultmath

import "github.com/nspcc-dev/sharevault/contracts/vault/vaultconst"

// MaxAmount returns 2^64-1, the upper bound of any vault amount.
func MaxAmount() int {
	half := 1<<63 - 1
	return half*2 + 1
}

// IsAmount checks that x is within [0, MaxAmount].
func IsAmount(x int) bool {
	return x >= 0 && x <= MaxAmount()
}

// ConvertToShares returns the number of shares corresponding to depositAmount
// of base asset given current vault totals. The first deposit (no shares
// outstanding) is converted one to one, otherwise the result is
// depositAmount * totalShares / totalAssets rounded down.
//
// It panics with ErrDivideByZero if shares exist while there are no assets and
// with ErrMathOverflow if the result does not fit into an amount.
func ConvertToShares(depositAmount, totalAssets, totalShares int) int {
	if totalShares == 0 {
		return depositAmount
	}
	if totalAssets == 0 {
		panic(vaultconst.ErrDivideByZero)
	}

	shares := depositAmount * totalShares / totalAssets
	if shares > MaxAmount() {
		panic(vaultconst.ErrMathOverflow)
	}
	return shares
}

// CheckedAdd returns a + b, panicking with ErrMathOverflow if the sum exceeds
// MaxAmount.
func CheckedAdd(a, b int) int {
	sum := a + b
	if sum > MaxAmount() {
		panic(vaultconst.ErrMathOverflow)
	}
	return sum
}
