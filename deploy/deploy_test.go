package deploy

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/nspcc-dev/neo-go/pkg/config"
	"github.com/nspcc-dev/neo-go/pkg/config/netmode"
	"github.com/nspcc-dev/neo-go/pkg/consensus"
	"github.com/nspcc-dev/neo-go/pkg/core"
	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/core/storage"
	"github.com/nspcc-dev/neo-go/pkg/crypto/keys"
	"github.com/nspcc-dev/neo-go/pkg/encoding/fixedn"
	"github.com/nspcc-dev/neo-go/pkg/neotest"
	"github.com/nspcc-dev/neo-go/pkg/network"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/actor"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/gas"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/invoker"
	"github.com/nspcc-dev/neo-go/pkg/services/rpcsrv"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/wallet"
	"github.com/nspcc-dev/sharevault/internal/vaulttest"
	vaultrpc "github.com/nspcc-dev/sharevault/rpc/vault"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type testBlockchain struct {
	actor.RPCActor

	requested []util.Uint160
	contract  *state.Contract
	err       error
}

func (b *testBlockchain) GetContractStateByHash(h util.Uint160) (*state.Contract, error) {
	b.requested = append(b.requested, h)
	return b.contract, b.err
}

func newTestPrm(t *testing.T, b Blockchain) VaultPrm {
	acc, err := wallet.NewAccount()
	require.NoError(t, err)

	prm := VaultPrm{
		Logger:       zaptest.NewLogger(t),
		Blockchain:   b,
		LocalAccount: acc,
		Admin:        util.Uint160{1},
		BaseAsset:    util.Uint160{2},
		Ticker:       "VLT",
	}
	prm.Common.NEF.Checksum = 42
	prm.Common.Manifest.Name = "ShareVault"

	return prm
}

func TestVaultPreconditions(t *testing.T) {
	t.Run("invalid ticker", func(t *testing.T) {
		b := new(testBlockchain)
		prm := newTestPrm(t, b)

		for _, tc := range []string{"", "AB", "lower", "TOO-LONG-TICKER-NAME", "A B"} {
			prm.Ticker = tc
			_, err := Vault(context.Background(), prm)
			require.ErrorIs(t, err, vaultrpc.ErrInvalidTicker, tc)
		}
		require.Empty(t, b.requested)
	})

	t.Run("already deployed", func(t *testing.T) {
		b := &testBlockchain{contract: new(state.Contract)}
		prm := newTestPrm(t, b)

		addr, err := Vault(context.Background(), prm)
		require.ErrorIs(t, err, ErrAlreadyDeployed)

		expected := state.CreateContractHash(prm.LocalAccount.ScriptHash(), 42, "ShareVault")
		require.Equal(t, expected, addr)
		require.Equal(t, []util.Uint160{expected}, b.requested)
	})

	t.Run("state request failure", func(t *testing.T) {
		b := &testBlockchain{err: errors.New("connection refused")}

		_, err := Vault(context.Background(), newTestPrm(t, b))
		require.Error(t, err)
		require.NotErrorIs(t, err, ErrAlreadyDeployed)
		require.ErrorContains(t, err, "connection refused")
	})
}

func TestVaultDeploy(t *testing.T) {
	validatorAcc, err := wallet.NewAccount()
	require.NoError(t, err)

	// genesis GAS belongs to the validators multi-signature account
	var validatorMulti = new(wallet.Account)
	*validatorMulti = *validatorAcc
	err = validatorMulti.ConvertMultisig(1, []*keys.PublicKey{validatorAcc.PublicKey()})
	require.NoError(t, err)

	var (
		tmpDir     = t.TempDir()
		walletPath = filepath.Join(tmpDir, "wallet.json")
		wlt        = wallet.NewInMemoryWallet()
	)

	err = validatorAcc.Encrypt("", keys.NEP2ScryptParams())
	require.NoError(t, err)
	wlt.Accounts = append(wlt.Accounts, validatorAcc)
	wlt.SetPath(walletPath)
	require.NoError(t, wlt.Save())

	var (
		cfg = config.Config{
			ApplicationConfiguration: config.ApplicationConfiguration{
				RPC: config.RPC{
					BasicService: config.BasicService{
						Enabled: true,
					},
					MaxGasInvoke: fixedn.Fixed8FromInt64(50),
				},
				Consensus: config.Consensus{
					Enabled: true,
					UnlockWallet: config.Wallet{
						Path:     walletPath,
						Password: "",
					},
				},
			},
			ProtocolConfiguration: config.ProtocolConfiguration{
				Magic:           netmode.UnitTestNet,
				MaxTimePerBlock: 20 * time.Second,
				Genesis: config.Genesis{
					MaxTraceableBlocks:          1000,
					MaxValidUntilBlockIncrement: 1000 / 2,
					TimePerBlock:                50 * time.Millisecond,
				},
				StandbyCommittee:   []string{hex.EncodeToString(validatorAcc.PublicKey().Bytes())},
				ValidatorsCount:    1,
				VerifyTransactions: true,
			},
		}
		logger = zaptest.NewLogger(t)
		store  = storage.NewMemoryStore()
	)

	bc, err := core.NewBlockchain(store, config.Blockchain{ProtocolConfiguration: cfg.ProtocolConfiguration}, logger)
	require.NoError(t, err)
	go bc.Run()
	t.Cleanup(bc.Close)

	serverConfig, err := network.NewServerConfig(config.Config{ProtocolConfiguration: cfg.ProtocolConfiguration})
	require.NoError(t, err)
	serverConfig.UserAgent = fmt.Sprintf(config.UserAgentFormat, "something")
	netSrv, err := network.NewServer(serverConfig, bc, bc.GetStateSyncModule(), logger)
	require.NoError(t, err)
	cons, err := consensus.NewService(consensus.Config{
		Logger:                logger,
		Broadcast:             netSrv.BroadcastExtensible,
		Chain:                 bc,
		BlockQueue:            netSrv.GetBlockQueue(),
		ProtocolConfiguration: cfg.ProtocolConfiguration,
		RequestTx:             netSrv.RequestTx,
		StopTxFlow:            netSrv.StopTxFlow,
		Wallet:                cfg.ApplicationConfiguration.Consensus.UnlockWallet,
	})
	require.NoError(t, err)
	netSrv.AddConsensusService(cons, cons.OnPayload, cons.OnTransaction)
	netSrv.Start()

	errCh := make(chan error, 2)
	rpcServer := rpcsrv.New(bc, cfg.ApplicationConfiguration.RPC, netSrv, nil, logger, errCh)
	rpcServer.Start()
	t.Cleanup(rpcServer.Shutdown)

	rpcClient, err := rpcclient.NewInternal(context.TODO(), rpcServer.RegisterLocal)
	require.NoError(t, err)
	require.NoError(t, rpcClient.Init())

	vaultDir := vaulttest.Path(vaulttest.VaultDir)
	compiled := neotest.CompileFile(t, validatorMulti.ScriptHash(), vaultDir, filepath.Join(vaultDir, "config.yml"))

	admin := util.Uint160{1, 2, 3}
	prm := VaultPrm{
		Logger:       logger,
		Blockchain:   rpcClient,
		LocalAccount: validatorMulti,
		Common: CommonDeployPrm{
			NEF:      *compiled.NEF,
			Manifest: *compiled.Manifest,
		},
		Admin:     admin,
		BaseAsset: gas.Hash,
		Ticker:    "GAS-VAULT",
	}

	ctx, cancel := context.WithTimeout(context.TODO(), 2*time.Minute)
	addr, err := Vault(ctx, prm)
	cancel()
	require.NoError(t, err)
	require.Equal(t, vaultrpc.AuthorityAddress(validatorMulti.ScriptHash(), compiled.NEF.Checksum, compiled.Manifest.Name), addr)

	rec, err := vaultrpc.NewReader(invoker.New(rpcClient, nil), addr).GetRecord()
	require.NoError(t, err)
	require.NoError(t, vaultrpc.CheckRecord(rec, addr))
	require.Equal(t, admin, rec.Admin)
	require.Equal(t, gas.Hash, rec.BaseAsset)
	require.EqualValues(t, 8, rec.Decimals.Int64())
	require.Equal(t, "GAS-VAULT", vaultrpc.DecodeTicker(rec.Ticker))

	_, err = Vault(context.Background(), prm)
	require.ErrorIs(t, err, ErrAlreadyDeployed)
}
