package vault

import (
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/std"
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"
	"github.com/nspcc-dev/sharevault/common"
	"github.com/nspcc-dev/sharevault/contracts/vault/vaultconst"
)

// Record is the persistent state of the vault.
//
// Authority, SharesToken and Custody all equal the vault contract address:
// assets are held by the contract itself and only its code is able to move
// them or mint shares. Admin and Authority never change after creation.
type Record struct {
	Admin       interop.Hash160
	Authority   interop.Hash160
	SharesToken interop.Hash160
	BaseAsset   interop.Hash160
	Custody     interop.Hash160

	// TotalBaseAssets is the sum of all accepted deposits. Relocations do
	// not change it.
	TotalBaseAssets int

	DepositPaused  bool
	AllocatePaused bool

	Decimals int
	Ticker   []byte
}

const recordKey = "r"

func getRecord(ctx storage.Context) Record {
	data := storage.Get(ctx, recordKey)
	if data == nil {
		panic(vaultconst.ErrNotInitialized)
	}

	return std.Deserialize(data.([]byte)).(Record)
}

func putRecord(ctx storage.Context, rec Record) {
	common.SetSerialized(ctx, recordKey, rec)
}
