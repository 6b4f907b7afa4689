// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package processor drives the hop-by-hop forwarding loop described in
// spec.md §4.7: TTL checks, routing lookups, link simulation, and ICMP
// error synthesis on fault conditions, with destination-flip-and-continue
// semantics for synthesized replies.
package processor

import (
	"netfabric.dev/simulator/internal/clock"
	"netfabric.dev/simulator/internal/icmpbuilder"
	"netfabric.dev/simulator/internal/linksim"
	"netfabric.dev/simulator/internal/packet"
	"netfabric.dev/simulator/internal/prng"
	"netfabric.dev/simulator/internal/routing"
	"netfabric.dev/simulator/internal/simerr"
	"netfabric.dev/simulator/internal/topology"
)

// maxHops guards against routing loops (spec.md §4.7, §8: "Hop limit = 100
// terminates a routing loop and yields the last-seen packet").
const maxHops = 100

// RouteProvider abstracts over the single-path and ECMP routing tables so
// the forwarding loop below is written once and shared by both variants
// (spec.md §4.7: "ECMP processor variant is identical except that the
// selector uses the ECMP table").
type RouteProvider interface {
	// HasEntry reports whether router has a routing row at all; its
	// absence triggers a Destination Unreachable reply.
	HasEntry(router topology.RouterId) bool
	// IsArrival reports whether router is the ingress anchor for
	// destination, i.e. the packet has reached its tap exit point.
	IsArrival(router topology.RouterId, destination routing.Destination) bool
	// SelectLink picks the egress link out of candidates for router,
	// or false if there is no usable link.
	SelectLink(fabric *topology.Fabric, router topology.RouterId, pkt *packet.PacketMeta, candidates []topology.LinkId, destination routing.Destination) (*topology.Link, bool)
}

func opposite(d routing.Destination) routing.Destination {
	if d == routing.DestinationTunA {
		return routing.DestinationTunB
	}
	return routing.DestinationTunA
}

// Processor owns the shared resources the forwarding loop needs on every
// hop: the fabric (for stats and topology), the process-wide PRNG, and the
// clock used to realize link delay.
type Processor struct {
	Fabric *topology.Fabric
	Rand   *prng.Source
	Clock  clock.Clock
}

// New constructs a Processor bound to fabric, rng and clk.
func New(fabric *topology.Fabric, rng *prng.Source, clk clock.Clock) *Processor {
	return &Processor{Fabric: fabric, Rand: rng, Clock: clk}
}

// icmpTimeExceeded and icmpDestUnreachable dispatch to the IPv4 or IPv6
// builder depending on pkt.IsIPv6.
func icmpTimeExceeded(pkt *packet.PacketMeta) ([]byte, error) {
	if pkt.IsIPv6 {
		return icmpbuilder.ICMPv6TimeExceeded(pkt)
	}
	return icmpbuilder.ICMPTimeExceeded(pkt)
}

func icmpDestUnreachable(pkt *packet.PacketMeta) ([]byte, error) {
	if pkt.IsIPv6 {
		return icmpbuilder.ICMPv6DestUnreachable(pkt)
	}
	return icmpbuilder.ICMPDestUnreachable(pkt)
}

func icmpMTUError(pkt *packet.PacketMeta, mtu uint32) ([]byte, error) {
	if pkt.IsIPv6 {
		return icmpbuilder.ICMPv6PacketTooBig(pkt, mtu)
	}
	return icmpbuilder.ICMPFragNeeded(pkt, mtu)
}

// Process runs the hop-by-hop forwarding loop for pkt starting at
// startRouter heading toward destination, using routes to resolve next
// hops. It returns the last-seen PacketMeta: the packet as it exits the
// fabric on success, an ICMP reply on a fault condition, or the
// in-progress packet if the hop guard or an unrecoverable error stops the
// loop early.
func (p *Processor) Process(routes RouteProvider, startRouter topology.RouterId, pkt *packet.PacketMeta, destination routing.Destination) *packet.PacketMeta {
	current := startRouter

	for hop := 1; hop <= maxHops; hop++ {
		p.Fabric.IncrementReceived(current)

		if pkt.TTL <= 1 {
			icmpBytes, err := icmpTimeExceeded(pkt)
			if err != nil {
				return pkt
			}
			p.Fabric.IncrementICMPGenerated(current)
			reply, err := packet.Parse(icmpBytes)
			if err != nil {
				return pkt
			}
			pkt = &reply
			destination = opposite(destination)
			continue
		}

		if !routes.HasEntry(current) {
			// Unlike the TTL/MTU fault paths, a missing routing row is not
			// transient: current never changes here, so continuing would
			// just regenerate the same reply until the hop guard. Generate
			// once and stop (spec.md §8 scenario 4 checks exactly one
			// icmp_generated increment).
			icmpBytes, err := icmpDestUnreachable(pkt)
			if err != nil {
				return pkt
			}
			p.Fabric.IncrementICMPGenerated(current)
			reply, err := packet.Parse(icmpBytes)
			if err != nil {
				return pkt
			}
			return &reply
		}

		if routes.IsArrival(current, destination) {
			return pkt
		}

		if err := pkt.DecrementTTL(); err != nil {
			return pkt
		}

		link, ok := routes.SelectLink(p.Fabric, current, pkt, p.Fabric.IncidentLinks(current), destination)
		if !ok {
			return pkt
		}

		err := linksim.Simulate(link, len(pkt.Raw), p.Rand, p.Clock)
		switch {
		case err == nil:
			p.Fabric.IncrementForwarded(current)
			current = link.ID.Other(current)
			continue
		case simerr.GetKind(err) == simerr.KindSimMTUExceeded:
			mtu, _ := simerr.GetAttributes(err)["mtu"].(uint32)
			icmpBytes, buildErr := icmpMTUError(pkt, mtu)
			if buildErr != nil {
				return pkt
			}
			p.Fabric.IncrementICMPGenerated(current)
			reply, parseErr := packet.Parse(icmpBytes)
			if parseErr != nil {
				return pkt
			}
			pkt = &reply
			destination = opposite(destination)
			continue
		case simerr.GetKind(err) == simerr.KindSimPacketLost:
			p.Fabric.IncrementLost(current)
			return pkt
		default:
			return pkt
		}
	}

	return pkt
}
