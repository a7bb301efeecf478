package vault

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nspcc-dev/sharevault/contracts/vault/vaultconst"
)

// Errors returned by the contract. ParseError recognizes them in failed
// invocation results.
var (
	ErrInvalidTicker       = errors.New(vaultconst.ErrInvalidTicker)
	ErrZeroDeposit         = errors.New(vaultconst.ErrZeroDeposit)
	ErrInvalidAmount       = errors.New(vaultconst.ErrInvalidAmount)
	ErrInsufficientBalance = errors.New(vaultconst.ErrInsufficientBalance)
	ErrDepositPaused       = errors.New(vaultconst.ErrDepositPaused)
	ErrAllocatePaused      = errors.New(vaultconst.ErrAllocatePaused)
	ErrDivideByZero        = errors.New(vaultconst.ErrDivideByZero)
	ErrMathOverflow        = errors.New(vaultconst.ErrMathOverflow)
	ErrMaxDecimals         = errors.New(vaultconst.ErrMaxDecimals)
	ErrUnexpectedAsset     = errors.New(vaultconst.ErrUnexpectedAsset)
	ErrInvalidDestination  = errors.New(vaultconst.ErrInvalidDestination)
	ErrTransferFailed      = errors.New(vaultconst.ErrTransferFailed)
	ErrNotInitialized      = errors.New(vaultconst.ErrNotInitialized)
	ErrAdminWitness        = errors.New("admin witness check failed")
	ErrOwnerWitness        = errors.New("owner witness check failed")
)

var knownErrors = []error{
	ErrInvalidTicker,
	ErrZeroDeposit,
	ErrInvalidAmount,
	ErrInsufficientBalance,
	ErrDepositPaused,
	ErrAllocatePaused,
	ErrDivideByZero,
	ErrMathOverflow,
	ErrMaxDecimals,
	ErrUnexpectedAsset,
	ErrInvalidDestination,
	ErrTransferFailed,
	ErrNotInitialized,
	ErrAdminWitness,
	ErrOwnerWitness,
}

// ParseError wraps err with one of the package errors if its text contains an
// exception thrown by the contract. It's applicable both to errors returned by
// actors and to fault exceptions of invocation results. Other errors are
// returned as is.
func ParseError(err error) error {
	if err == nil {
		return nil
	}
	return parseException(err.Error(), err)
}

// FaultError returns an error describing fault exception of the invocation or
// nil if the exception is empty.
func FaultError(exception string) error {
	if exception == "" {
		return nil
	}
	return parseException(exception, errors.New(exception))
}

func parseException(msg string, err error) error {
	for _, known := range knownErrors {
		if errors.Is(err, known) {
			return err
		}
	}
	for _, known := range knownErrors {
		if strings.Contains(msg, known.Error()) {
			return fmt.Errorf("%w: %w", known, err)
		}
	}
	return err
}
