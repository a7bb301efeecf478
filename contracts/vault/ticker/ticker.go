/*
Package ticker validates vault tickers.

A ticker is a fixed TickerLen-byte buffer holding an ASCII name made of
uppercase letters, digits, '_' and '-', right-padded with zero bytes. The
package is compiled into the Vault contract and is also usable off-chain.
*/
package ticker

import "github.com/nspcc-dev/sharevault/contracts/vault/vaultconst"

// IsValid reports whether t is a well-formed ticker: the buffer is exactly
// TickerLen bytes long, starts with a meaningful character, has no meaningful
// characters after the first padding byte, uses only the allowed charset and
// contains at least MinTickerChars meaningful characters.
func IsValid(t []byte) bool {
	if len(t) != vaultconst.TickerLen || t[0] == vaultconst.TickerPad {
		return false
	}

	var (
		chars  int
		padded bool
	)

	for i := 0; i < len(t); i++ {
		c := t[i]
		if c == vaultconst.TickerPad {
			padded = true
			continue
		}
		if padded || !isAllowed(c) {
			return false
		}
		chars++
	}

	return chars >= vaultconst.MinTickerChars
}

// Len returns the number of meaningful characters of a valid ticker.
func Len(t []byte) int {
	for i := 0; i < len(t); i++ {
		if t[i] == vaultconst.TickerPad {
			return i
		}
	}
	return len(t)
}

func isAllowed(c byte) bool {
	return c >= 'A' && c <= 'Z' ||
		c >= '0' && c <= '9' ||
		c == '_' || c == '-'
}
