package infra

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Ledger and HTTP collectors, exported on /metrics through promhttp.
var (
	EventosStock = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "inventario_eventos_stock_total",
		Help: "Stock events applied by the coordinator, by event kind.",
	}, []string{"evento"})

	StockInsuficiente = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "inventario_stock_insuficiente_total",
		Help: "Sales rejected because a product did not have enough stock.",
	})

	ViolacionesIdempotencia = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "inventario_violaciones_idempotencia_total",
		Help: "Stock events ignored because they had already been applied or reverted.",
	})

	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests by method, route and status.",
	}, []string{"method", "path", "status"})

	HTTPDuracion = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency by method and route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})
)

func init() {
	prometheus.MustRegister(EventosStock, StockInsuficiente, ViolacionesIdempotencia, HTTPRequests, HTTPDuracion)
}
