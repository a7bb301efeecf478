package vaultmathcontract

import (
	"github.com/nspcc-dev/sharevault/contracts/vault/ticker"
	"github.com/nspcc-dev/sharevault/contracts/vault/vaultmath"
)

func ConvertToShares(depositAmount, totalAssets, totalShares int) int {
	return vaultmath.ConvertToShares(depositAmount, totalAssets, totalShares)
}

func CheckedAdd(a, b int) int {
	return vaultmath.CheckedAdd(a, b)
}

func MaxAmount() int {
	return vaultmath.MaxAmount()
}

func IsValidTicker(t []byte) bool {
	return ticker.IsValid(t)
}
