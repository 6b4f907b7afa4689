// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package processor

import (
	"netfabric.dev/simulator/internal/forwarding"
	"netfabric.dev/simulator/internal/packet"
	"netfabric.dev/simulator/internal/routing"
	"netfabric.dev/simulator/internal/topology"
)

// SinglePathRoutes adapts a single-path routing table map to RouteProvider.
// IngressA/IngressB are the same two anchors the table was computed from;
// arrival is detected by reaching the anchor for the current destination
// rather than by the ambiguous next_hop==current convention the original
// algorithm used internally.
type SinglePathRoutes struct {
	Tables             map[topology.RouterId]routing.RoutingTable
	IngressA, IngressB topology.RouterId
}

func (r SinglePathRoutes) HasEntry(router topology.RouterId) bool {
	_, ok := r.Tables[router]
	return ok
}

func (r SinglePathRoutes) IsArrival(router topology.RouterId, destination routing.Destination) bool {
	if destination == routing.DestinationTunA {
		return router == r.IngressA
	}
	return router == r.IngressB
}

func (r SinglePathRoutes) SelectLink(fabric *topology.Fabric, router topology.RouterId, pkt *packet.PacketMeta, candidates []topology.LinkId, destination routing.Destination) (*topology.Link, bool) {
	table := r.Tables[router]
	entry := table.TunA
	if destination == routing.DestinationTunB {
		entry = table.TunB
	}
	// singleHop's sentinel for "no path to the anchor" is NextHop==router
	// itself. IsArrival already excludes the real arrival case (router is
	// the anchor), so seeing that sentinel here means router is a
	// disconnected non-anchor: there is no egress link, not "all of them".
	if entry.NextHop == router {
		return nil, false
	}
	return forwarding.SelectSinglePath(fabric, router, pkt, candidates, table, destination)
}

// ECMPRoutes adapts a multipath routing table map to RouteProvider.
//
// routing.ComputeMultiPathRouting ranks a MultiPathTable's TunA entries by
// distance to ingressB and its TunB entries by distance to ingressA (see
// that function's doc comment) — the opposite of RoutingTable's single-path
// convention, where TunA/TunB are ranked toward their own-named anchor.
// IsArrival mirrors that inversion: TunA traffic arrives at IngressB and
// vice versa.
type ECMPRoutes struct {
	Tables             map[topology.RouterId]routing.MultiPathTable
	IngressA, IngressB topology.RouterId
}

func (r ECMPRoutes) HasEntry(router topology.RouterId) bool {
	_, ok := r.Tables[router]
	return ok
}

func (r ECMPRoutes) IsArrival(router topology.RouterId, destination routing.Destination) bool {
	if destination == routing.DestinationTunA {
		return router == r.IngressB
	}
	return router == r.IngressA
}

func (r ECMPRoutes) SelectLink(fabric *topology.Fabric, router topology.RouterId, pkt *packet.PacketMeta, candidates []topology.LinkId, destination routing.Destination) (*topology.Link, bool) {
	table := r.Tables[router]
	return forwarding.SelectECMP(fabric, router, pkt, candidates, table, destination)
}
