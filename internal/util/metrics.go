package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CheckoutAttemptsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "checkout_attempts_total",
		Help: "Total number of checkout attempts started",
	})

	TokensIssuedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "payment_tokens_issued_total",
		Help: "Total number of payment tokens issued by the gateway",
	})

	TokenRequestsFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_token_requests_failed_total",
		Help: "Total number of failed payment token requests",
	}, []string{"reason"})

	PaymentOutcomesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_outcomes_total",
		Help: "Total number of payment outcomes delivered",
	}, []string{"outcome"})

	GatewayRequestLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "gateway_request_latency_seconds",
		Help:    "Latency of outbound payment gateway calls",
		Buckets: prometheus.DefBuckets,
	})

	CatalogCacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_cache_hits_total",
		Help: "Total number of catalog cache hits",
	}, []string{"key"})

	CatalogCacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_cache_misses_total",
		Help: "Total number of catalog cache misses",
	}, []string{"key"})

	CatalogMutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_mutations_total",
		Help: "Total number of catalog create/update/delete operations",
	}, []string{"entity", "op"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
