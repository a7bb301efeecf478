package vault

import (
	"errors"
	"fmt"
	"math/bits"

	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/sharevault/contracts/vault/ticker"
	"github.com/nspcc-dev/sharevault/contracts/vault/vaultconst"
)

// ConvertToShares mirrors share conversion of the contract: the first deposit
// (totalShares == 0) is converted one to one, otherwise the result is
// depositAmount * totalShares / totalAssets rounded down. The product is
// computed in 128 bits.
func ConvertToShares(depositAmount, totalAssets, totalShares uint64) (uint64, error) {
	if totalShares == 0 {
		return depositAmount, nil
	}
	if totalAssets == 0 {
		return 0, ErrDivideByZero
	}

	hi, lo := bits.Mul64(depositAmount, totalShares)
	if hi >= totalAssets {
		return 0, ErrMathOverflow
	}

	shares, _ := bits.Div64(hi, lo, totalAssets)
	return shares, nil
}

// EncodeTicker pads s to the ticker width and checks the result.
func EncodeTicker(s string) ([]byte, error) {
	if len(s) > vaultconst.TickerLen {
		return nil, fmt.Errorf("%w: longer than %d bytes", ErrInvalidTicker, vaultconst.TickerLen)
	}

	b := make([]byte, vaultconst.TickerLen)
	copy(b, s)
	if !ticker.IsValid(b) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTicker, s)
	}
	return b, nil
}

// DecodeTicker strips padding of the ticker.
func DecodeTicker(b []byte) string {
	return string(b[:ticker.Len(b)])
}

// AuthorityAddress returns the address the vault gets when it is deployed by
// sender from the NEF with the given checksum under the given manifest name.
// The address holds vault custody and is the only authority able to mint
// shares.
func AuthorityAddress(sender util.Uint160, nefChecksum uint32, name string) util.Uint160 {
	return state.CreateContractHash(sender, nefChecksum, name)
}

var errNilRecord = errors.New("nil record")

// CheckRecord verifies vault record invariants that hold for any vault
// deployed at the given address.
func CheckRecord(rec *Record, addr util.Uint160) error {
	switch {
	case rec == nil:
		return errNilRecord
	case !rec.Authority.Equals(addr):
		return fmt.Errorf("authority %s differs from vault address", rec.Authority.StringLE())
	case !rec.Custody.Equals(addr):
		return fmt.Errorf("custody %s differs from vault address", rec.Custody.StringLE())
	case !rec.SharesToken.Equals(addr):
		return fmt.Errorf("shares token %s differs from vault address", rec.SharesToken.StringLE())
	case !ticker.IsValid(rec.Ticker):
		return ErrInvalidTicker
	}
	return nil
}
