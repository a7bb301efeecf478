// Package vaulttest provides helpers to run Vault contract tests on a private
// single-node blockchain.
package vaulttest

import (
	"path/filepath"
	"runtime"
	"testing"

	"github.com/nspcc-dev/neo-go/pkg/core/interop/storage"
	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/neotest"
	"github.com/nspcc-dev/neo-go/pkg/neotest/chain"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/nspcc-dev/sharevault/contracts/vault/vaultconst"
	"github.com/stretchr/testify/require"
)

// Repository-relative directories of the contracts.
const (
	VaultDir     = "contracts/vault"
	TokenDir     = "internal/testcontracts/token"
	ReceiverDir  = "internal/testcontracts/nep17recv"
	VaultMathDir = "internal/testcontracts/vaultmath"
)

// Path returns absolute path of the repository-relative directory.
func Path(dir string) string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..", filepath.FromSlash(dir))
}

// NewExecutor creates new blockchain instance with a single validator and
// returns executor over it.
func NewExecutor(t testing.TB) *neotest.Executor {
	bc, acc := chain.NewSingle(t)
	return neotest.NewExecutor(t, bc, acc, acc)
}

// Compile compiles contract from the repository-relative directory using
// config.yml located next to the sources.
func Compile(t testing.TB, e *neotest.Executor, dir string) *neotest.Contract {
	p := Path(dir)
	return neotest.CompileFile(t, e.CommitteeHash, p, filepath.Join(p, "config.yml"))
}

// Renamed returns a copy of c with another manifest name, so it can be
// deployed once more by the same sender.
func Renamed(c *neotest.Contract, sender util.Uint160, name string) *neotest.Contract {
	m := *c.Manifest
	m.Name = name
	return &neotest.Contract{
		Hash:     state.CreateContractHash(sender, c.NEF.Checksum, name),
		NEF:      c.NEF,
		Manifest: &m,
	}
}

// Ticker pads s with zero bytes up to the ticker width.
func Ticker(s string) []byte {
	b := make([]byte, vaultconst.TickerLen)
	copy(b, s)
	return b
}

// DeployToken deploys mintable NEP-17 token owned by the committee. Tokens
// deployed to the same chain must have different names.
func DeployToken(t testing.TB, e *neotest.Executor, name string, decimals int) util.Uint160 {
	c := Renamed(Compile(t, e, TokenDir), e.CommitteeHash, name)
	e.DeployContract(t, c, []any{e.CommitteeHash, decimals})
	return c.Hash
}

// Mint issues amount of the token deployed by DeployToken to the account.
func Mint(t testing.TB, e *neotest.Executor, tokenHash, to util.Uint160, amount int64) {
	e.CommitteeInvoker(tokenHash).Invoke(t, stackitem.Null{}, "mint", to, amount)
}

// DeployVault deploys Vault contract with the given parameters.
func DeployVault(t testing.TB, e *neotest.Executor, admin, baseAsset util.Uint160, ticker string) util.Uint160 {
	c := Compile(t, e, VaultDir)
	e.DeployContract(t, c, []any{admin, baseAsset, Ticker(ticker)})
	return c.Hash
}

// Int calls safe method and returns its integer result.
func Int(t testing.TB, inv *neotest.ContractInvoker, method string, args ...any) int64 {
	s, err := inv.TestInvoke(t, method, args...)
	require.NoError(t, err)
	return s.Pop().BigInt().Int64()
}

// Bool calls safe method and returns its boolean result.
func Bool(t testing.TB, inv *neotest.ContractInvoker, method string, args ...any) bool {
	s, err := inv.TestInvoke(t, method, args...)
	require.NoError(t, err)
	return s.Pop().Bool()
}

// Events returns notifications with the given name emitted by the contract
// during transaction execution.
func Events(t testing.TB, e *neotest.Executor, h util.Uint256, contract util.Uint160, name string) []state.NotificationEvent {
	var res []state.NotificationEvent
	for _, ev := range e.GetTxExecResult(t, h).Events {
		if ev.ScriptHash.Equals(contract) && ev.Name == name {
			res = append(res, ev)
		}
	}
	return res
}

// Iterate calls safe method returning an iterator and collects all its
// values.
func Iterate(t testing.TB, inv *neotest.ContractInvoker, method string, args ...any) []stackitem.Item {
	s, err := inv.TestInvoke(t, method, args...)
	require.NoError(t, err)

	iter, ok := s.Pop().Value().(*storage.Iterator)
	require.True(t, ok, "not an iterator")

	var res []stackitem.Item
	for iter.Next() {
		res = append(res, iter.Value())
	}
	return res
}
