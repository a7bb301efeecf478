package vault

import (
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/contract"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/gas"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/management"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/std"
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"
	"github.com/nspcc-dev/sharevault/common"
	"github.com/nspcc-dev/sharevault/contracts/vault/ticker"
	"github.com/nspcc-dev/sharevault/contracts/vault/vaultconst"
	"github.com/nspcc-dev/sharevault/contracts/vault/vaultmath"
)

// selfDepositMarker is attached to base asset transfers initiated by Deposit
// so that OnNEP17Payment does not account them twice.
const selfDepositMarker = "\x76\x64"

// nolint:deadcode,unused
func _deploy(data any, isUpdate bool) {
	if isUpdate {
		args := data.([]any)
		common.CheckVersion(args[len(args)-1].(int))
		return
	}

	args := data.(struct {
		admin     interop.Hash160
		baseAsset interop.Hash160
		ticker    []byte
	})

	if len(args.admin) != interop.Hash160Len {
		panic("incorrect length of admin address")
	}
	if len(args.baseAsset) != interop.Hash160Len {
		panic("incorrect length of base asset address")
	}
	if !ticker.IsValid(args.ticker) {
		panic(vaultconst.ErrInvalidTicker)
	}

	decimals := contract.Call(args.baseAsset, "decimals", contract.ReadOnly).(int)
	if decimals < 0 || decimals > vaultconst.MaxDecimals {
		panic(vaultconst.ErrMaxDecimals)
	}

	self := runtime.GetExecutingScriptHash()

	ctx := storage.GetContext()
	putRecord(ctx, Record{
		Admin:       args.admin,
		Authority:   self,
		SharesToken: self,
		BaseAsset:   args.baseAsset,
		Custody:     self,
		Decimals:    decimals,
		Ticker:      args.ticker,
	})

	runtime.Notify("Initialize", self, args.admin, self, args.baseAsset)
	runtime.Log("vault contract initialized")
}

// Update method updates contract source code and manifest. It can be invoked
// only by the vault admin.
func Update(script []byte, manifest []byte, data any) {
	rec := getRecord(storage.GetReadOnlyContext())
	common.CheckAdminWitness(rec.Admin)

	contract.Call(interop.Hash160(management.Hash), "update",
		contract.All, script, manifest, common.AppendVersion(data))
	runtime.Log("vault contract updated")
}

// Deposit transfers amount of base asset from the account to the vault and
// mints shares to the account. It returns the number of minted shares.
//
// The transaction must be witnessed by the account. Shares are priced by the
// vault totals as they were before the deposit.
//
// Deposit produces Transfer notifications of both tokens and a Deposit
// notification.
func Deposit(from interop.Hash160, amount int) int {
	common.CheckOwnerWitness(from)

	ctx := storage.GetContext()
	rec := getRecord(ctx)

	checkDeposit(rec, amount)

	balance := contract.Call(rec.BaseAsset, "balanceOf", contract.ReadOnly, from).(int)
	if balance < amount {
		panic(vaultconst.ErrInsufficientBalance)
	}

	shares := vaultmath.ConvertToShares(amount, rec.TotalBaseAssets, token.getSupply(ctx))

	ok := contract.Call(rec.BaseAsset, "transfer", contract.All,
		from, rec.Custody, amount, []byte(selfDepositMarker)).(bool)
	if !ok {
		panic(vaultconst.ErrTransferFailed)
	}

	return settleDeposit(ctx, rec, from, amount, shares)
}

// OnNEP17Payment is a callback of the base asset contract. Any plain transfer
// of base asset to the vault is a deposit on behalf of the sender and is
// accounted exactly like Deposit. Payment data is ignored.
//
// Tokens minted to the vault (no sender) are accepted from the base asset and
// GAS, e.g. GAS accrued for held NEO, but they are not accounted and mint no
// shares. Payments in other tokens are rejected.
func OnNEP17Payment(from interop.Hash160, amount int, data any) {
	ctx := storage.GetContext()
	rec := getRecord(ctx)

	caller := runtime.GetCallingScriptHash()

	if len(from) == 0 {
		if !caller.Equals(rec.BaseAsset) && !caller.Equals(gas.Hash) {
			panic(vaultconst.ErrUnexpectedAsset)
		}
		runtime.Log("unaccounted payment without sender")
		return
	}

	if !caller.Equals(rec.BaseAsset) {
		panic(vaultconst.ErrUnexpectedAsset)
	}

	if isDepositMarker(data) {
		return
	}

	checkDeposit(rec, amount)
	shares := vaultmath.ConvertToShares(amount, rec.TotalBaseAssets, token.getSupply(ctx))
	settleDeposit(ctx, rec, from, amount, shares)
}

// Serialized stack item type prefixes of byte sequences.
const (
	byteStringType = 0x28
	bufferType     = 0x30
)

// isDepositMarker checks whether payment data is the byte sequence attached by
// Deposit. Data of any other type or content is not a marker.
func isDepositMarker(data any) bool {
	if data == nil {
		return false
	}

	// type byte, length byte, marker
	raw := std.Serialize(data)
	if len(raw) != 2+len(selfDepositMarker) {
		return false
	}
	if raw[0] != byteStringType && raw[0] != bufferType {
		return false
	}
	return common.BytesEqual(raw[2:], []byte(selfDepositMarker))
}

func checkDeposit(rec Record, amount int) {
	if amount == 0 {
		panic(vaultconst.ErrZeroDeposit)
	}
	if !vaultmath.IsAmount(amount) {
		panic(vaultconst.ErrInvalidAmount)
	}
	if rec.DepositPaused {
		panic(vaultconst.ErrDepositPaused)
	}
}

func settleDeposit(ctx storage.Context, rec Record, depositor interop.Hash160, amount, shares int) int {
	rec.TotalBaseAssets = vaultmath.CheckedAdd(rec.TotalBaseAssets, amount)
	putRecord(ctx, rec)

	token.mint(ctx, depositor, shares)

	runtime.Notify("Deposit", depositor, amount, shares)
	return shares
}

// Relocate moves amount of base asset from the vault custody to the
// destination account. It can be invoked only by the vault admin.
//
// Vault totals are not changed: relocated assets are still accounted as
// vault assets.
//
// Relocate produces base asset Transfer notification and a Relocate
// notification.
func Relocate(destination interop.Hash160, amount int) {
	ctx := storage.GetContext()
	rec := getRecord(ctx)

	common.CheckAdminWitness(rec.Admin)

	if amount <= 0 || !vaultmath.IsAmount(amount) {
		panic(vaultconst.ErrInvalidAmount)
	}
	if rec.AllocatePaused {
		panic(vaultconst.ErrAllocatePaused)
	}
	if len(destination) != interop.Hash160Len || destination.Equals(rec.Custody) {
		panic(vaultconst.ErrInvalidDestination)
	}

	custody := contract.Call(rec.BaseAsset, "balanceOf", contract.ReadOnly, rec.Custody).(int)
	if amount > custody {
		panic(vaultconst.ErrInsufficientBalance)
	}

	ok := contract.Call(rec.BaseAsset, "transfer", contract.All,
		rec.Custody, destination, amount, nil).(bool)
	if !ok {
		panic(vaultconst.ErrTransferFailed)
	}

	runtime.Notify("Relocate", rec.Custody, destination, amount)
}

// SetDepositPaused enables or disables deposits. It can be invoked only by the
// vault admin.
func SetDepositPaused(paused bool) {
	ctx := storage.GetContext()
	rec := getRecord(ctx)

	common.CheckAdminWitness(rec.Admin)

	rec.DepositPaused = paused
	putRecord(ctx, rec)

	runtime.Notify("DepositPauseChanged", paused)
}

// SetAllocatePaused enables or disables relocations. It can be invoked only by
// the vault admin.
func SetAllocatePaused(paused bool) {
	ctx := storage.GetContext()
	rec := getRecord(ctx)

	common.CheckAdminWitness(rec.Admin)

	rec.AllocatePaused = paused
	putRecord(ctx, rec)

	runtime.Notify("AllocatePauseChanged", paused)
}

// GetRecord returns the vault record.
func GetRecord() Record {
	return getRecord(storage.GetReadOnlyContext())
}

// Admin returns the address of the vault admin.
func Admin() interop.Hash160 {
	return getRecord(storage.GetReadOnlyContext()).Admin
}

// BaseAsset returns the address of the base asset contract.
func BaseAsset() interop.Hash160 {
	return getRecord(storage.GetReadOnlyContext()).BaseAsset
}

// TotalAssets returns the amount of base asset accounted by the vault.
func TotalAssets() int {
	return getRecord(storage.GetReadOnlyContext()).TotalBaseAssets
}

// IsDepositPaused returns true if deposits are disabled.
func IsDepositPaused() bool {
	return getRecord(storage.GetReadOnlyContext()).DepositPaused
}

// IsAllocatePaused returns true if relocations are disabled.
func IsAllocatePaused() bool {
	return getRecord(storage.GetReadOnlyContext()).AllocatePaused
}

// ConvertToShares returns the number of shares a deposit of the given amount
// would mint at the current vault totals.
func ConvertToShares(amount int) int {
	if !vaultmath.IsAmount(amount) {
		panic(vaultconst.ErrInvalidAmount)
	}

	ctx := storage.GetReadOnlyContext()
	rec := getRecord(ctx)
	return vaultmath.ConvertToShares(amount, rec.TotalBaseAssets, token.getSupply(ctx))
}

// Version returns the version of the contract.
func Version() int {
	return common.Version
}
