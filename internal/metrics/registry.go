// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package metrics exposes per-router and per-link fabric counters through
// a Prometheus registry and HTTP handler.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry wraps the Prometheus vectors the collector populates. Every
// field is labeled by router or link id so the exported series match the
// fabric's own addressing.
type Registry struct {
	reg *prometheus.Registry

	received      *prometheus.GaugeVec
	forwarded     *prometheus.GaugeVec
	lost          *prometheus.GaugeVec
	icmpGenerated *prometheus.GaugeVec
	linkTraversal *prometheus.GaugeVec
}

// NewRegistry builds a Registry with its own private prometheus.Registry,
// so multiple simulator instances in the same process never collide.
func NewRegistry() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),
		received: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "netfabric",
			Name:      "router_received_total",
			Help:      "Packets received at this router since start.",
		}, []string{"router"}),
		forwarded: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "netfabric",
			Name:      "router_forwarded_total",
			Help:      "Packets forwarded onward from this router since start.",
		}, []string{"router"}),
		lost: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "netfabric",
			Name:      "router_lost_total",
			Help:      "Packets dropped at this router since start.",
		}, []string{"router"}),
		icmpGenerated: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "netfabric",
			Name:      "router_icmp_generated_total",
			Help:      "ICMP replies synthesized at this router since start.",
		}, []string{"router"}),
		linkTraversal: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "netfabric",
			Name:      "link_traversal_total",
			Help:      "Traversal attempts counted on this link since start.",
		}, []string{"link"}),
	}
	r.reg.MustRegister(r.received, r.forwarded, r.lost, r.icmpGenerated, r.linkTraversal)
	return r
}

// Handler returns the HTTP handler serving this registry's metrics.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}
