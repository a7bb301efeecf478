package token

import (
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/contract"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/management"
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"
	"github.com/nspcc-dev/sharevault/common"
)

const (
	ownerKey    = "o"
	decimalsKey = "d"
	supplyKey   = "s"
	accPrefix   = 'a'
)

// nolint:deadcode,unused
func _deploy(data any, isUpdate bool) {
	if isUpdate {
		return
	}

	args := data.(struct {
		owner    interop.Hash160
		decimals int
	})

	ctx := storage.GetContext()
	storage.Put(ctx, ownerKey, args.owner)
	storage.Put(ctx, decimalsKey, args.decimals)
}

func Symbol() string {
	return "BASE"
}

func Decimals() int {
	return common.GetInt(storage.GetReadOnlyContext(), decimalsKey)
}

func TotalSupply() int {
	return common.GetInt(storage.GetReadOnlyContext(), supplyKey)
}

func BalanceOf(account interop.Hash160) int {
	return common.GetInt(storage.GetReadOnlyContext(), append([]byte{accPrefix}, account...))
}

func Transfer(from, to interop.Hash160, amount int, data any) bool {
	if len(from) != interop.Hash160Len || len(to) != interop.Hash160Len || amount < 0 {
		panic("invalid arguments")
	}
	if !runtime.CheckWitness(from) && !runtime.GetCallingScriptHash().Equals(from) {
		return false
	}

	ctx := storage.GetContext()
	fromKey := append([]byte{accPrefix}, from...)
	fromBalance := common.GetInt(ctx, fromKey)
	if fromBalance < amount {
		return false
	}
	if amount != 0 && !from.Equals(to) {
		toKey := append([]byte{accPrefix}, to...)
		storage.Put(ctx, fromKey, fromBalance-amount)
		storage.Put(ctx, toKey, common.GetInt(ctx, toKey)+amount)
	}

	notifyTransfer(from, to, amount, data)
	return true
}

// Mint issues tokens to the account. It can be invoked only by the owner.
func Mint(to interop.Hash160, amount int) {
	ctx := storage.GetContext()
	common.CheckOwnerWitness(storage.Get(ctx, ownerKey).(interop.Hash160))

	toKey := append([]byte{accPrefix}, to...)
	storage.Put(ctx, toKey, common.GetInt(ctx, toKey)+amount)
	storage.Put(ctx, supplyKey, common.GetInt(ctx, supplyKey)+amount)

	notifyTransfer(nil, to, amount, nil)
}

func notifyTransfer(from, to interop.Hash160, amount int, data any) {
	runtime.Notify("Transfer", from, to, amount)
	if management.GetContract(to) != nil {
		contract.Call(to, "onNEP17Payment", contract.All, from, amount, data)
	}
}
