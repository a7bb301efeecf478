package monitor

import (
	"math/big"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "sharevault"

// Metrics holds Prometheus collectors updated by Monitor.
type Metrics struct {
	deposits        prometheus.Counter
	depositedAssets prometheus.Counter
	mintedShares    prometheus.Counter
	relocations     prometheus.Counter
	relocatedAssets prometheus.Counter
	totalAssets     prometheus.Gauge
	depositPaused   prometheus.Gauge
	allocatePaused  prometheus.Gauge
	malformed       *prometheus.CounterVec
}

// NewMetrics creates vault metrics and registers them in reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		deposits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deposits_total",
			Help:      "Number of accepted deposits.",
		}),
		depositedAssets: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deposited_assets_total",
			Help:      "Amount of base asset deposited, in minimal units.",
		}),
		mintedShares: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "minted_shares_total",
			Help:      "Amount of shares minted to depositors, in minimal units.",
		}),
		relocations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "relocations_total",
			Help:      "Number of base asset relocations.",
		}),
		relocatedAssets: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "relocated_assets_total",
			Help:      "Amount of base asset relocated from custody, in minimal units.",
		}),
		totalAssets: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "total_assets",
			Help:      "Accounted base asset of the vault, in minimal units.",
		}),
		depositPaused: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "deposit_paused",
			Help:      "1 if deposits are paused, 0 otherwise.",
		}),
		allocatePaused: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "allocate_paused",
			Help:      "1 if relocations are paused, 0 otherwise.",
		}),
		malformed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "malformed_notifications_total",
			Help:      "Number of vault notifications that could not be decoded.",
		}, []string{"event"}),
	}

	reg.MustRegister(
		m.deposits,
		m.depositedAssets,
		m.mintedShares,
		m.relocations,
		m.relocatedAssets,
		m.totalAssets,
		m.depositPaused,
		m.allocatePaused,
		m.malformed,
	)

	return m
}

func bigToFloat(x *big.Int) float64 {
	f, _ := new(big.Float).SetInt(x).Float64()
	return f
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
