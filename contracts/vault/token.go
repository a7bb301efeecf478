package vault

import (
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/contract"
	"github.com/nspcc-dev/neo-go/pkg/interop/iterator"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/management"
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"
	"github.com/nspcc-dev/sharevault/common"
	"github.com/nspcc-dev/sharevault/contracts/vault/ticker"
	"github.com/nspcc-dev/sharevault/contracts/vault/vaultmath"
)

// Token describes storage layout of the shares token.
type Token struct {
	CirculationKey string
	AccountPrefix  byte
}

var token = Token{
	CirculationKey: "s",
	AccountPrefix:  'b',
}

// Symbol is a NEP-17 standard method that returns the vault ticker without
// padding.
func Symbol() string {
	rec := getRecord(storage.GetReadOnlyContext())
	return string(rec.Ticker[:ticker.Len(rec.Ticker)])
}

// Decimals is a NEP-17 standard method that returns precision of vault shares.
// It matches the precision of the base asset.
func Decimals() int {
	return getRecord(storage.GetReadOnlyContext()).Decimals
}

// TotalSupply is a NEP-17 standard method that returns the number of shares
// in circulation.
func TotalSupply() int {
	return token.getSupply(storage.GetReadOnlyContext())
}

// BalanceOf is a NEP-17 standard method that returns shares balance of the
// specified account.
func BalanceOf(account interop.Hash160) int {
	if len(account) != interop.Hash160Len {
		panic("bad account")
	}
	return token.balanceOf(storage.GetReadOnlyContext(), account)
}

// Transfer is a NEP-17 standard method that transfers shares from one
// account to another. It can be invoked only by the account owner.
//
// If the recipient is a contract, its onNEP17Payment method is called with
// the given data.
func Transfer(from, to interop.Hash160, amount int, data any) bool {
	ctx := storage.GetContext()
	return token.transfer(ctx, from, to, amount, data)
}

// Holders returns iterator over all shareholders. Iterator values are
// structures of account address and its balance.
func Holders() iterator.Iterator {
	ctx := storage.GetReadOnlyContext()
	return storage.Find(ctx, []byte{token.AccountPrefix}, storage.RemovePrefix)
}

func (t Token) transfer(ctx storage.Context, from, to interop.Hash160, amount int, data any) bool {
	if len(from) != interop.Hash160Len || len(to) != interop.Hash160Len {
		panic("bad script hashes")
	}
	if amount < 0 {
		panic("negative amount")
	}

	if !isUsableAddress(from) {
		runtime.Log("transfer is not authorized")
		return false
	}

	fromBalance := t.balanceOf(ctx, from)
	if fromBalance < amount {
		runtime.Log("not enough shares")
		return false
	}

	if amount != 0 && !from.Equals(to) {
		t.setBalance(ctx, from, fromBalance-amount)
		t.setBalance(ctx, to, t.balanceOf(ctx, to)+amount)
	}

	postTransfer(from, to, amount, data)
	return true
}

// mint issues amount of new shares to the account. Only vault code calls it.
func (t Token) mint(ctx storage.Context, to interop.Hash160, amount int) {
	if amount != 0 {
		supply := vaultmath.CheckedAdd(t.getSupply(ctx), amount)
		storage.Put(ctx, t.CirculationKey, supply)
		t.setBalance(ctx, to, t.balanceOf(ctx, to)+amount)
	}

	var from interop.Hash160
	postTransfer(from, to, amount, nil)
}

func (t Token) getSupply(ctx storage.Context) int {
	return common.GetInt(ctx, t.CirculationKey)
}

func (t Token) balanceOf(ctx storage.Context, account interop.Hash160) int {
	return common.GetInt(ctx, t.accountKey(account))
}

func (t Token) setBalance(ctx storage.Context, account interop.Hash160, balance int) {
	key := t.accountKey(account)
	if balance == 0 {
		storage.Delete(ctx, key)
		return
	}
	storage.Put(ctx, key, balance)
}

func (t Token) accountKey(account interop.Hash160) []byte {
	return append([]byte{t.AccountPrefix}, account...)
}

func postTransfer(from, to interop.Hash160, amount int, data any) {
	runtime.Notify("Transfer", from, to, amount)
	if management.GetContract(to) != nil {
		contract.Call(to, "onNEP17Payment", contract.All, from, amount, data)
	}
}

// isUsableAddress checks if the sender is either a correct NEO address or SC address.
func isUsableAddress(addr interop.Hash160) bool {
	if len(addr) == interop.Hash160Len {
		if runtime.CheckWitness(addr) {
			return true
		}

		// Check if a smart contract is calling script hash
		callingScriptHash := runtime.GetCallingScriptHash()
		if callingScriptHash.Equals(addr) {
			return true
		}
	}

	return false
}
