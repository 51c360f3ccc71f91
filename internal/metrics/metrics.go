// Package metrics exposes the hub's Prometheus collectors and the
// standalone metrics listener.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "connectorhub"

var (
	proxyDurationBuckets = []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}

	// Registry metrics
	RegistrySize = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "registry_descriptors",
		Help:      "Number of descriptors in the current registry snapshot.",
	})

	DescriptorLoadsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "descriptor_loads_total",
		Help:      "Count of descriptors successfully loaded into a snapshot.",
	})

	DescriptorLoadFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "descriptor_load_failures_total",
		Help:      "Count of descriptor documents rejected during a load pass.",
	})

	// OAuth flow metrics
	AuthFlowsStartedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_flows_started_total",
		Help:      "Count of authorization redirects issued.",
	}, []string{"connector_key", "scheme"})

	TokenExchangesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_exchanges_total",
		Help:      "Count of authorization-code exchanges.",
	}, []string{"connector_key", "scheme", "status"})

	// Proxy metrics
	ProxyRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "proxy_requests_total",
		Help:      "Count of requests forwarded through the connector proxy.",
	}, []string{"connector_key", "upstream_domain", "status"})

	ProxyRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "proxy_request_duration_seconds",
		Help:      "Time taken for proxied upstream requests.",
		Buckets:   proxyDurationBuckets,
	}, []string{"connector_key"})
)
