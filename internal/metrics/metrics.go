package metrics

import (
	"fmt"
	"net"
	"net/http"
	"tickbacktester/types"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics exports backtest progress. It satisfies engine.Recorder.
type Metrics struct {
	TicksTotal  *prometheus.CounterVec
	OrdersTotal *prometheus.CounterVec
	ErrorsTotal *prometheus.CounterVec
	Equity      prometheus.Gauge
}

// New registers the collectors on reg. Each run label gets its own const
// label so separate backtests can share a registry.
func New(reg prometheus.Registerer, run string) *Metrics {
	constLabels := prometheus.Labels{"run": run}
	m := &Metrics{
		TicksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "backtest_ticks_total", Help: "Count of market ticks processed", ConstLabels: constLabels},
			[]string{"symbol"},
		),
		OrdersTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "backtest_orders_total", Help: "Orders by final status", ConstLabels: constLabels},
			[]string{"symbol", "side", "status"},
		),
		ErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "backtest_errors_total", Help: "Recorded errors by kind", ConstLabels: constLabels},
			[]string{"kind"},
		),
		Equity: prometheus.NewGauge(
			prometheus.GaugeOpts{Name: "backtest_equity", Help: "Portfolio equity after the latest tick", ConstLabels: constLabels},
		),
	}
	reg.MustRegister(m.TicksTotal, m.OrdersTotal, m.ErrorsTotal, m.Equity)
	return m
}

func (m *Metrics) ObserveTick(tick types.MarketTick) {
	m.TicksTotal.WithLabelValues(tick.Symbol).Inc()
}

func (m *Metrics) ObserveOrder(order types.Order) {
	m.OrdersTotal.WithLabelValues(order.Symbol, string(order.Side), string(order.Status)).Inc()
}

func (m *Metrics) ObserveError(kind string) {
	m.ErrorsTotal.WithLabelValues(kind).Inc()
}

func (m *Metrics) ObserveEquity(equity float64) {
	m.Equity.Set(equity)
}

// Serve exposes gatherer on addr under /metrics. The listener is bound
// before Serve returns, so a bad or busy address is reported here.
func Serve(addr string, gatherer prometheus.Gatherer) (*http.Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen metrics on %s: %w", addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: ln.Addr().String(), Handler: mux}
	go func() { _ = srv.Serve(ln) }()
	return srv, nil
}
