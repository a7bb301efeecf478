/*
Package monitor follows notifications of the deployed vault and reflects them
in logs and Prometheus metrics.
*/
package monitor

import (
	"context"
	"errors"
	"fmt"

	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/neorpc"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/sharevault/contracts/vault/vaultconst"
	vaultrpc "github.com/nspcc-dev/sharevault/rpc/vault"
	"go.uber.org/zap"
)

// Subscriber provides the stream of contract notifications. It's implemented
// by WebSocket RPC client.
type Subscriber interface {
	// ReceiveExecutionNotifications registers rcvr for the notifications
	// matching the filter and returns subscription ID. The client closes rcvr
	// when the connection is lost.
	ReceiveExecutionNotifications(*neorpc.NotificationFilter, chan<- *state.ContainedNotificationEvent) (string, error)

	// Unsubscribe cancels the subscription with the given ID.
	Unsubscribe(id string) error
}

// Monitor handles notifications of a single vault.
type Monitor struct {
	log     *zap.Logger
	sub     Subscriber
	vault   util.Uint160
	metrics *Metrics
}

// New constructs Monitor of the vault located at the given address.
func New(log *zap.Logger, sub Subscriber, vault util.Uint160, metrics *Metrics) *Monitor {
	return &Monitor{
		log:     log.With(zap.Stringer("vault", vault)),
		sub:     sub,
		vault:   vault,
		metrics: metrics,
	}
}

// Sync sets state metrics from the current vault record.
func (m *Monitor) Sync(rec *vaultrpc.Record) {
	m.metrics.totalAssets.Set(bigToFloat(rec.TotalBaseAssets))
	m.metrics.depositPaused.Set(boolToFloat(rec.DepositPaused))
	m.metrics.allocatePaused.Set(boolToFloat(rec.AllocatePaused))

	m.log.Info("vault state synchronized",
		zap.Stringer("total assets", rec.TotalBaseAssets),
		zap.Bool("deposit paused", rec.DepositPaused),
		zap.Bool("allocate paused", rec.AllocatePaused))
}

// Run subscribes to the vault notifications and handles them until the
// context is done or the subscription is lost. Run returns nil in the first
// case.
func (m *Monitor) Run(ctx context.Context) error {
	ch := make(chan *state.ContainedNotificationEvent)

	id, err := m.sub.ReceiveExecutionNotifications(&neorpc.NotificationFilter{Contract: &m.vault}, ch)
	if err != nil {
		return fmt.Errorf("subscribe to vault notifications: %w", err)
	}

	m.log.Info("listening to vault notifications")

	for {
		select {
		case <-ctx.Done():
			m.unsubscribe(id, ch)
			return nil
		case ev, ok := <-ch:
			if !ok {
				return errors.New("notification channel closed")
			}
			m.handle(ev)
		}
	}
}

// unsubscribe cancels the subscription. The client may still deliver
// notifications until Unsubscribe returns, so ch is drained meanwhile.
func (m *Monitor) unsubscribe(id string, ch <-chan *state.ContainedNotificationEvent) {
	done := make(chan error, 1)
	go func() { done <- m.sub.Unsubscribe(id) }()

	for {
		select {
		case err := <-done:
			if err != nil {
				m.log.Warn("failed to unsubscribe from vault notifications", zap.Error(err))
			}
			return
		case ev, ok := <-ch:
			if !ok {
				ch = nil
				continue
			}
			m.log.Debug("drop notification on shutdown",
				zap.Stringer("tx", ev.Container), zap.String("event", ev.Name))
		}
	}
}

func (m *Monitor) handle(ev *state.ContainedNotificationEvent) {
	l := m.log.With(zap.Stringer("tx", ev.Container), zap.String("event", ev.Name))

	var err error

	switch ev.Name {
	case vaultconst.DepositEvent:
		var e vaultrpc.DepositEvent
		if err = e.FromStackItem(ev.Item); err == nil {
			m.metrics.deposits.Inc()
			m.metrics.depositedAssets.Add(bigToFloat(e.Amount))
			m.metrics.mintedShares.Add(bigToFloat(e.Shares))
			m.metrics.totalAssets.Add(bigToFloat(e.Amount))

			l.Info("deposit accepted",
				zap.Stringer("depositor", e.Depositor),
				zap.Stringer("amount", e.Amount),
				zap.Stringer("shares", e.Shares))
		}
	case vaultconst.RelocateEvent:
		var e vaultrpc.RelocateEvent
		if err = e.FromStackItem(ev.Item); err == nil {
			m.metrics.relocations.Inc()
			m.metrics.relocatedAssets.Add(bigToFloat(e.Amount))

			l.Info("base asset relocated",
				zap.Stringer("destination", e.Destination),
				zap.Stringer("amount", e.Amount))
		}
	case vaultconst.DepositPauseChangedEvent, vaultconst.AllocatePauseChangedEvent:
		var e vaultrpc.PauseChangedEvent
		if err = e.FromStackItem(ev.Item); err == nil {
			if ev.Name == vaultconst.DepositPauseChangedEvent {
				m.metrics.depositPaused.Set(boolToFloat(e.Paused))
			} else {
				m.metrics.allocatePaused.Set(boolToFloat(e.Paused))
			}

			l.Info("pause switched", zap.Bool("paused", e.Paused))
		}
	case vaultconst.InitializeEvent:
		var e vaultrpc.InitializeEvent
		if err = e.FromStackItem(ev.Item); err == nil {
			l.Info("vault initialized",
				zap.Stringer("admin", e.Admin),
				zap.Stringer("base asset", e.BaseAsset))
		}
	default:
		l.Debug("skip notification")
		return
	}

	if err != nil {
		m.metrics.malformed.WithLabelValues(ev.Name).Inc()
		l.Warn("failed to decode vault notification", zap.Error(err))
	}
}
