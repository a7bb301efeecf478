// Package vaultconst contains constants shared by the Vault contract and its
// off-chain clients.
package vaultconst

const (
	// TickerLen is the fixed width of a vault ticker in bytes. Shorter tickers
	// are right-padded with TickerPad.
	TickerLen = 16
	// TickerPad is the padding byte of a ticker.
	TickerPad = 0x00
	// MinTickerChars is the minimal number of meaningful ticker characters.
	MinTickerChars = 3

	// MaxDecimals is the largest base asset precision accepted on vault creation.
	MaxDecimals = 18
)

// Exception messages thrown by the Vault contract.
const (
	ErrInvalidTicker       = "invalid ticker"
	ErrZeroDeposit         = "zero deposit amount"
	ErrInvalidAmount       = "invalid amount"
	ErrInsufficientBalance = "insufficient base asset balance"
	ErrDepositPaused       = "deposits are currently paused"
	ErrAllocatePaused      = "allocations are currently paused"
	ErrDivideByZero        = "divided by zero"
	ErrMathOverflow        = "math overflow occurred"
	ErrMaxDecimals         = "maximum decimals exceeded"
	ErrUnexpectedAsset     = "only base asset is accepted"
	ErrInvalidDestination  = "invalid destination"
	ErrTransferFailed      = "base asset transfer failed"
	ErrNotInitialized      = "vault is not initialized"
)

// Notification names emitted by the Vault contract.
const (
	InitializeEvent           = "Initialize"
	DepositEvent              = "Deposit"
	RelocateEvent             = "Relocate"
	DepositPauseChangedEvent  = "DepositPauseChanged"
	AllocatePauseChangedEvent = "AllocatePauseChanged"
	TransferEvent             = "Transfer"
)
