// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package main

import (
	"net/netip"

	"netfabric.dev/simulator/internal/config"
	"netfabric.dev/simulator/internal/logging"
	"netfabric.dev/simulator/internal/processor"
	"netfabric.dev/simulator/internal/routing"
	"netfabric.dev/simulator/internal/tapbridge"
	"netfabric.dev/simulator/internal/topology"
	"netfabric.dev/simulator/internal/traffic"
)

func buildClassifier(cfg *config.Config, log *logging.Logger) *tapbridge.Classifier {
	c := &tapbridge.Classifier{Log: log}
	c.APrefix, c.HasAPrefix = tapbridge.ParsePrefix(cfg.TunIngress.TunAPrefix)
	c.BPrefix, c.HasBPrefix = tapbridge.ParsePrefix(cfg.TunIngress.TunBPrefix)
	c.AIPv6Prefix, c.HasAv6 = tapbridge.ParsePrefix(cfg.TunIngress.TunAIPv6Prefix)
	c.BIPv6Prefix, c.HasBv6 = tapbridge.ParsePrefix(cfg.TunIngress.TunBIPv6Prefix)
	return c
}

// buildRoutes computes the routing table(s) named by cfg and adapts them to
// a processor.RouteProvider, using the ECMP variant when enable_multipath is
// set (spec.md §4.7: "ECMP processor variant is identical except that the
// selector uses the ECMP table").
func buildRoutes(cfg *config.Config, fabric *topology.Fabric, ingressA, ingressB topology.RouterId) processor.RouteProvider {
	if cfg.EnableMultipath {
		tables := routing.ComputeMultiPathRouting(fabric, ingressA, ingressB)
		return processor.ECMPRoutes{Tables: tables, IngressA: ingressA, IngressB: ingressB}
	}
	tables := routing.ComputeRouting(fabric, ingressA, ingressB)
	return processor.SinglePathRoutes{Tables: tables, IngressA: ingressA, IngressB: ingressB}
}

func toRealTunConfig(r *config.RealTun) tapbridge.RealTunConfig {
	return tapbridge.RealTunConfig{
		Name:    r.Name,
		Address: r.Address,
		Netmask: r.Netmask,
		IsIPv6:  netip.MustParseAddr(r.Address).Is6(),
	}
}

func toTrafficConfig(vc *config.VirtualCustomer) traffic.Config {
	return traffic.Config{
		SrcIP:    netip.MustParseAddr(vc.SrcIP),
		DstIP:    netip.MustParseAddr(vc.DstIP),
		Protocol: vc.Protocol,
		Size:     vc.Size,
		Rate:     vc.Rate,
	}
}

// injectionIngress converts a config-level "tun_a"/"tun_b" directive string
// into the Ingress enum Classify expects, or nil when no directive applies.
func injectionIngress(directive string) *tapbridge.Ingress {
	var ing tapbridge.Ingress
	switch directive {
	case "tun_a":
		ing = tapbridge.IngressA
	case "tun_b":
		ing = tapbridge.IngressB
	default:
		return nil
	}
	return &ing
}

// logStats writes spec.md §6's "Statistics emission": a per-router
// {received, forwarded, lost, icmp_generated} record written to structured
// logs on completion.
func logStats(log *logging.Logger, fabric *topology.Fabric) {
	for id, s := range fabric.SnapshotStatistics() {
		log.Info("router statistics",
			"router", string(id),
			"received", s.Received,
			"forwarded", s.Forwarded,
			"lost", s.Lost,
			"icmp_generated", s.ICMPGenerated,
		)
	}
}
