package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/neorpc/result"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/actor"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/vmstate"
	"github.com/nspcc-dev/neo-go/pkg/wallet"
	vaultrpc "github.com/nspcc-dev/sharevault/rpc/vault"
)

// dial opens WebSocket connection to the Neo RPC server. Connection and all
// requests are done within 15s timeout.
func dial(ctx context.Context, endpoint string) (*rpcclient.WSClient, error) {
	c, err := rpcclient.NewWS(ctx, endpoint, rpcclient.WSOptions{
		Options: rpcclient.Options{
			DialTimeout:    15 * time.Second,
			RequestTimeout: 15 * time.Second,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("RPC client dial: %w", err)
	}

	err = c.Init()
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("RPC client init: %w", err)
	}

	return c, nil
}

// openAccount reads the configured account from the wallet and decrypts it.
func openAccount(cfg WalletConfig) (*wallet.Account, error) {
	w, err := wallet.NewWalletFromFile(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("open wallet: %w", err)
	}

	var acc *wallet.Account

	if cfg.Address == "" {
		if len(w.Accounts) != 1 {
			return nil, fmt.Errorf("wallet has %d accounts, address must be specified", len(w.Accounts))
		}
		acc = w.Accounts[0]
	} else {
		h, err := address.StringToUint160(cfg.Address)
		if err != nil {
			return nil, fmt.Errorf("invalid account address: %w", err)
		}

		acc = w.GetAccount(h)
		if acc == nil {
			return nil, fmt.Errorf("account %s is missing in the wallet", cfg.Address)
		}
	}

	err = acc.Decrypt(cfg.Password, w.Scrypt)
	if err != nil {
		return nil, fmt.Errorf("decrypt account: %w", err)
	}

	return acc, nil
}

// parseHash accepts Neo address or LE hex string of the script hash.
func parseHash(s string) (util.Uint160, error) {
	h, err := address.StringToUint160(s)
	if err == nil {
		return h, nil
	}

	h, err = util.Uint160DecodeStringLE(s)
	if err != nil {
		return h, fmt.Errorf("%q is neither Neo address nor script hash", s)
	}

	return h, nil
}

// awaitTx waits for the sent transaction and checks it succeeded. Contract
// exceptions are converted to the errors of vault package.
func awaitTx(act *actor.Actor, txHash util.Uint256, vub uint32, err error) (*result.ApplicationLog, error) {
	if err != nil {
		return nil, vaultrpc.ParseError(err)
	}

	res, err := act.Wait(txHash, vub, nil)
	if err != nil {
		return nil, fmt.Errorf("wait for transaction %s: %w", txHash.StringLE(), err)
	}

	if res.VMState != vmstate.Halt {
		return nil, fmt.Errorf("transaction %s failed: %w", txHash.StringLE(), vaultrpc.FaultError(res.FaultException))
	}

	return &result.ApplicationLog{
		Container:     txHash,
		IsTransaction: true,
		Executions:    []state.Execution{res.Execution},
	}, nil
}

var errNoArgument = errors.New("missing argument")
