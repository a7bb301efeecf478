package deploy

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/actor"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/management"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/manifest"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/nef"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/vmstate"
	"github.com/nspcc-dev/neo-go/pkg/wallet"
	vaultrpc "github.com/nspcc-dev/sharevault/rpc/vault"
	"go.uber.org/zap"
)

// ErrAlreadyDeployed is returned by Vault when the vault with the same
// address already exists on the chain.
var ErrAlreadyDeployed = errors.New("vault is already deployed")

// Blockchain groups services provided by particular Neo blockchain network
// that are required for the vault deployment.
type Blockchain interface {
	// RPCActor groups functions needed to compose and send transactions to
	// the blockchain.
	actor.RPCActor

	// GetContractStateByHash returns network state of the smart contract by
	// its address. GetContractStateByHash returns error with 'Unknown
	// contract' substring if requested contract is missing.
	GetContractStateByHash(util.Uint160) (*state.Contract, error)
}

// CommonDeployPrm groups common deployment parameters of the smart contract.
type CommonDeployPrm struct {
	NEF      nef.File
	Manifest manifest.Manifest
}

// VaultPrm groups parameters of the vault creation.
type VaultPrm struct {
	// Writes progress into the log.
	Logger *zap.Logger

	// Particular Neo blockchain instance the vault is deployed to.
	Blockchain Blockchain

	// Local process account used for transaction signing (must be unlocked).
	// The account pays for the deployment and becomes part of the vault
	// address derivation.
	LocalAccount *wallet.Account

	Common CommonDeployPrm

	// Account allowed to relocate base asset, pause the vault and update it.
	Admin util.Uint160
	// NEP-17 token accepted for deposits.
	BaseAsset util.Uint160
	// Up to 16 characters of [A-Z0-9_-].
	Ticker string
}

// Vault creates new vault on the chain and returns its address. The address
// is derived from the sender, NEF checksum and manifest name, so the same
// account can not create two vaults from the same artifacts: Vault returns
// ErrAlreadyDeployed in this case.
//
// Vault blocks until the deployment transaction is accepted or the context is
// done.
func Vault(ctx context.Context, prm VaultPrm) (util.Uint160, error) {
	ticker, err := vaultrpc.EncodeTicker(prm.Ticker)
	if err != nil {
		return util.Uint160{}, err
	}

	localAccAddr := prm.LocalAccount.ScriptHash()
	addr := vaultrpc.AuthorityAddress(localAccAddr, prm.Common.NEF.Checksum, prm.Common.Manifest.Name)

	l := prm.Logger.With(zap.Stringer("address", addr))

	l.Info("checking vault presence on the chain...")

	_, err = prm.Blockchain.GetContractStateByHash(addr)
	if err == nil {
		return addr, ErrAlreadyDeployed
	}
	if !isErrContractNotFound(err) {
		return util.Uint160{}, fmt.Errorf("get vault state by address: %w", err)
	}

	l.Info("vault is missing on the chain, deploying...")

	act, err := actor.NewSimple(prm.Blockchain, prm.LocalAccount)
	if err != nil {
		return util.Uint160{}, fmt.Errorf("init transaction sender from local account: %w", err)
	}

	txHash, vub, err := management.New(act).Deploy(&prm.Common.NEF, &prm.Common.Manifest,
		[]any{prm.Admin, prm.BaseAsset, ticker})
	if err != nil {
		return util.Uint160{}, fmt.Errorf("send deployment transaction: %w", err)
	}

	l.Info("deployment transaction sent, waiting for it to be accepted...",
		zap.Stringer("tx", txHash), zap.Uint32("vub", vub))

	res, err := await(ctx, act, txHash, vub)
	if err != nil {
		return util.Uint160{}, fmt.Errorf("wait for deployment transaction %s: %w", txHash.StringLE(), err)
	}

	if res.VMState != vmstate.Halt {
		return util.Uint160{}, fmt.Errorf("deployment transaction %s failed: %w",
			txHash.StringLE(), vaultrpc.FaultError(res.FaultException))
	}

	l.Info("vault successfully deployed",
		zap.Stringer("admin", prm.Admin), zap.Stringer("base asset", prm.BaseAsset), zap.String("ticker", prm.Ticker))

	return addr, nil
}

// await waits for the transaction to be accepted by the chain in a separate
// routine so that the wait can be interrupted by the context.
func await(ctx context.Context, act *actor.Actor, txHash util.Uint256, vub uint32) (*state.AppExecResult, error) {
	type result struct {
		res *state.AppExecResult
		err error
	}

	ch := make(chan result, 1)

	go func() {
		res, err := act.Wait(txHash, vub, nil)
		ch <- result{res, err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		return r.res, r.err
	}
}

func isErrContractNotFound(err error) bool {
	return strings.Contains(err.Error(), "Unknown contract")
}
