package main

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/nspcc-dev/neo-go/pkg/core/transaction"
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/encoding/fixedn"
	"github.com/nspcc-dev/neo-go/pkg/neorpc/result"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/actor"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/invoker"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/nspcc-dev/sharevault/contracts"
	"github.com/nspcc-dev/sharevault/deploy"
	"github.com/nspcc-dev/sharevault/monitor"
	vaultrpc "github.com/nspcc-dev/sharevault/rpc/vault"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

func runDeploy(c *cli.Context) error {
	m := getMetadata(c)

	if err := m.config.requireRPC(); err != nil {
		return err
	}
	if err := m.config.requireWallet(); err != nil {
		return err
	}

	for _, f := range []string{"nef", "manifest", "base", "ticker"} {
		if c.String(f) == "" {
			return fmt.Errorf("%w: --%s", errNoArgument, f)
		}
	}

	ctr, err := contracts.ReadFiles(c.String("nef"), c.String("manifest"))
	if err != nil {
		return err
	}

	baseAsset, err := parseHash(c.String("base"))
	if err != nil {
		return fmt.Errorf("base asset: %w", err)
	}

	acc, err := openAccount(m.config.Wallet)
	if err != nil {
		return err
	}

	admin := acc.ScriptHash()
	if s := c.String("admin"); s != "" {
		admin, err = parseHash(s)
		if err != nil {
			return fmt.Errorf("admin: %w", err)
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	ws, err := dial(ctx, m.config.RPCEndpoint)
	if err != nil {
		return err
	}
	defer ws.Close()

	addr, err := deploy.Vault(ctx, deploy.VaultPrm{
		Logger:       m.log,
		Blockchain:   ws,
		LocalAccount: acc,
		Common: deploy.CommonDeployPrm{
			NEF:      ctr.NEF,
			Manifest: ctr.Manifest,
		},
		Admin:     admin,
		BaseAsset: baseAsset,
		Ticker:    c.String("ticker"),
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(m.w, "vault address: %s (%s)\n", address.Uint160ToString(addr), addr.StringLE())

	return nil
}

type infoOutput struct {
	Address        string        `yaml:"address"`
	Ticker         string        `yaml:"ticker"`
	Admin          string        `yaml:"admin"`
	BaseAsset      string        `yaml:"base_asset"`
	Decimals       int64         `yaml:"decimals"`
	TotalAssets    string        `yaml:"total_assets"`
	TotalShares    string        `yaml:"total_shares"`
	DepositPaused  bool          `yaml:"deposit_paused"`
	AllocatePaused bool          `yaml:"allocate_paused"`
	Holders        []holderEntry `yaml:"holders,omitempty"`
}

type holderEntry struct {
	Account string `yaml:"account"`
	Shares  string `yaml:"shares"`
}

func runInfo(c *cli.Context) error {
	m := getMetadata(c)

	if err := m.config.requireVault(); err != nil {
		return err
	}

	vault, err := parseHash(m.config.Vault)
	if err != nil {
		return fmt.Errorf("vault: %w", err)
	}

	ws, err := dial(context.Background(), m.config.RPCEndpoint)
	if err != nil {
		return err
	}
	defer ws.Close()

	reader := vaultrpc.NewReader(invoker.New(ws, nil), vault)

	rec, err := reader.GetRecord()
	if err != nil {
		return fmt.Errorf("get vault record: %w", vaultrpc.ParseError(err))
	}

	err = vaultrpc.CheckRecord(rec, vault)
	if err != nil {
		return fmt.Errorf("unexpected vault record: %w", err)
	}

	supply, err := reader.TotalSupply()
	if err != nil {
		return fmt.Errorf("get total shares: %w", err)
	}

	decimals := int(rec.Decimals.Int64())
	out := infoOutput{
		Address:        address.Uint160ToString(vault),
		Ticker:         vaultrpc.DecodeTicker(rec.Ticker),
		Admin:          address.Uint160ToString(rec.Admin),
		BaseAsset:      rec.BaseAsset.StringLE(),
		Decimals:       rec.Decimals.Int64(),
		TotalAssets:    fixedn.ToString(rec.TotalBaseAssets, decimals),
		TotalShares:    fixedn.ToString(supply, decimals),
		DepositPaused:  rec.DepositPaused,
		AllocatePaused: rec.AllocatePaused,
	}

	if n := c.Int("holders"); n > 0 {
		items, err := reader.HoldersExpanded(n)
		if err != nil {
			return fmt.Errorf("list holders: %w", err)
		}

		for _, item := range items {
			h, err := holderFromStackItem(item, decimals)
			if err != nil {
				return fmt.Errorf("decode holder: %w", err)
			}
			out.Holders = append(out.Holders, h)
		}
	}

	enc := yaml.NewEncoder(m.w)
	defer enc.Close()

	return enc.Encode(out)
}

// holderFromStackItem decodes key-value pair returned by holders iterator.
func holderFromStackItem(item stackitem.Item, decimals int) (holderEntry, error) {
	kv, ok := item.Value().([]stackitem.Item)
	if !ok || len(kv) != 2 {
		return holderEntry{}, errors.New("not a key-value structure")
	}

	key, err := kv[0].TryBytes()
	if err != nil {
		return holderEntry{}, fmt.Errorf("key: %w", err)
	}

	acc, err := util.Uint160DecodeBytesBE(key)
	if err != nil {
		return holderEntry{}, fmt.Errorf("account: %w", err)
	}

	balance, err := kv[1].TryInteger()
	if err != nil {
		return holderEntry{}, fmt.Errorf("balance: %w", err)
	}

	return holderEntry{
		Account: address.Uint160ToString(acc),
		Shares:  fixedn.ToString(balance, decimals),
	}, nil
}

// writer groups everything needed to send transactions to the vault.
type writer struct {
	act      *actor.Actor
	contract *vaultrpc.Contract
	record   *vaultrpc.Record
	close    func()
}

func openWriter(m *metadata) (*writer, error) {
	if err := m.config.requireVault(); err != nil {
		return nil, err
	}
	if err := m.config.requireWallet(); err != nil {
		return nil, err
	}

	vault, err := parseHash(m.config.Vault)
	if err != nil {
		return nil, fmt.Errorf("vault: %w", err)
	}

	acc, err := openAccount(m.config.Wallet)
	if err != nil {
		return nil, err
	}

	ws, err := dial(context.Background(), m.config.RPCEndpoint)
	if err != nil {
		return nil, err
	}

	rec, err := vaultrpc.NewReader(invoker.New(ws, nil), vault).GetRecord()
	if err != nil {
		ws.Close()
		return nil, fmt.Errorf("get vault record: %w", vaultrpc.ParseError(err))
	}

	// deposits make the vault spend sender's base asset, so the witness must
	// be valid inside both contracts
	act, err := actor.New(ws, []actor.SignerAccount{{
		Signer: transaction.Signer{
			Account:          acc.ScriptHash(),
			Scopes:           transaction.CalledByEntry | transaction.CustomContracts,
			AllowedContracts: []util.Uint160{vault, rec.BaseAsset},
		},
		Account: acc,
	}})
	if err != nil {
		ws.Close()
		return nil, fmt.Errorf("init actor: %w", err)
	}

	return &writer{
		act:      act,
		contract: vaultrpc.New(act, vault),
		record:   rec,
		close:    ws.Close,
	}, nil
}

func (w *writer) await(txHash util.Uint256, vub uint32, err error) (*result.ApplicationLog, error) {
	return awaitTx(w.act, txHash, vub, err)
}

// amount parses decimal string according to the base asset precision.
func (w *writer) amount(s string) (*big.Int, error) {
	if s == "" {
		return nil, fmt.Errorf("%w: --amount", errNoArgument)
	}

	v, err := fixedn.FromString(s, int(w.record.Decimals.Int64()))
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", s, err)
	}

	return v, nil
}

func runDeposit(c *cli.Context) error {
	m := getMetadata(c)

	w, err := openWriter(m)
	if err != nil {
		return err
	}
	defer w.close()

	amount, err := w.amount(c.String("amount"))
	if err != nil {
		return err
	}

	log, err := w.await(w.contract.Deposit(w.act.Sender(), amount))
	if err != nil {
		return err
	}

	evs, err := vaultrpc.DepositEventsFromApplicationLog(log)
	if err != nil || len(evs) != 1 {
		return fmt.Errorf("deposit transaction %s has no valid Deposit notification", log.Container.StringLE())
	}

	decimals := int(w.record.Decimals.Int64())
	m.log.Info("deposit accepted",
		zap.Stringer("tx", log.Container),
		zap.String("amount", fixedn.ToString(evs[0].Amount, decimals)),
		zap.String("shares", fixedn.ToString(evs[0].Shares, decimals)))

	fmt.Fprintf(m.w, "minted shares: %s\n", fixedn.ToString(evs[0].Shares, decimals))

	return nil
}

func runRelocate(c *cli.Context) error {
	m := getMetadata(c)

	if c.String("destination") == "" {
		return fmt.Errorf("%w: --destination", errNoArgument)
	}

	dest, err := parseHash(c.String("destination"))
	if err != nil {
		return fmt.Errorf("destination: %w", err)
	}

	w, err := openWriter(m)
	if err != nil {
		return err
	}
	defer w.close()

	amount, err := w.amount(c.String("amount"))
	if err != nil {
		return err
	}

	log, err := w.await(w.contract.Relocate(dest, amount))
	if err != nil {
		return err
	}

	m.log.Info("base asset relocated",
		zap.Stringer("tx", log.Container),
		zap.Stringer("destination", dest),
		zap.Stringer("amount", amount))

	return nil
}

func runPause(paused bool) cli.ActionFunc {
	return func(c *cli.Context) error {
		m := getMetadata(c)

		target := c.Args().First()
		if target != "deposit" && target != "allocate" {
			return fmt.Errorf("%w: deposit or allocate", errNoArgument)
		}

		w, err := openWriter(m)
		if err != nil {
			return err
		}
		defer w.close()

		var (
			txHash util.Uint256
			vub    uint32
		)
		if target == "deposit" {
			txHash, vub, err = w.contract.SetDepositPaused(paused)
		} else {
			txHash, vub, err = w.contract.SetAllocatePaused(paused)
		}

		log, err := w.await(txHash, vub, err)
		if err != nil {
			return err
		}

		m.log.Info("pause switched", zap.String("target", target), zap.Bool("paused", paused), zap.Stringer("tx", log.Container))

		return nil
	}
}

func runWatch(c *cli.Context) error {
	m := getMetadata(c)

	if err := m.config.requireVault(); err != nil {
		return err
	}

	vault, err := parseHash(m.config.Vault)
	if err != nil {
		return fmt.Errorf("vault: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	ws, err := dial(ctx, m.config.RPCEndpoint)
	if err != nil {
		return err
	}
	defer ws.Close()

	reg := prometheus.NewRegistry()
	mon := monitor.New(m.log, ws, vault, monitor.NewMetrics(reg))

	rec, err := vaultrpc.NewReader(invoker.New(ws, nil), vault).GetRecord()
	if err != nil {
		return fmt.Errorf("get vault record: %w", vaultrpc.ParseError(err))
	}
	mon.Sync(rec)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: m.config.MetricsAddress, Handler: mux}

	go func() {
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			m.log.Error("metrics server failed", zap.Error(err))
			cancel()
		}
	}()
	defer srv.Close()

	m.log.Info("serving metrics", zap.String("address", m.config.MetricsAddress))

	return mon.Run(ctx)
}
