package ticker

import (
	"testing"

	"github.com/nspcc-dev/sharevault/contracts/vault/vaultconst"
	"github.com/stretchr/testify/require"
)

func padded(s string) []byte {
	b := make([]byte, vaultconst.TickerLen)
	copy(b, s)
	return b
}

func TestIsValid(t *testing.T) {
	for _, tc := range []struct {
		name  string
		in    []byte
		valid bool
	}{
		{"plain", padded("USDC"), true},
		{"underscore and digits", padded("AB_1"), true},
		{"dash", padded("X-Y"), true},
		{"exactly three", padded("ABC"), true},
		{"full width", []byte("ABCDEFGHIJKLMNOP"), true},
		{"lowercase", padded("usd"), false},
		{"leading pad", append([]byte{0}, padded("ABC")[:vaultconst.TickerLen-1]...), false},
		{"all pad", make([]byte, vaultconst.TickerLen), false},
		{"gap", append([]byte("AB\x00C"), make([]byte, vaultconst.TickerLen-4)...), false},
		{"too short", padded("AB"), false},
		{"space", padded("A B"), false},
		{"dot", padded("A.BC"), false},
		{"non-ascii", padded("ÄBC"), false},
		{"short buffer", []byte("ABC"), false},
		{"long buffer", []byte("ABCDEFGHIJKLMNOPQ"), false},
		{"nil", nil, false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.valid, IsValid(tc.in))
		})
	}
}

func TestLen(t *testing.T) {
	require.Equal(t, 4, Len(padded("USDC")))
	require.Equal(t, vaultconst.TickerLen, Len([]byte("ABCDEFGHIJKLMNOP")))
	require.Equal(t, 0, Len(nil))
}
