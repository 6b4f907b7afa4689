// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package routing

import "netfabric.dev/simulator/internal/topology"

// MultiPathTable holds every equal-cost next hop toward each ingress
// anchor, enabling ECMP forwarding (spec.md §4.2, "Non-goals" lift for
// enable_multipath).
type MultiPathTable struct {
	TunA []RouteEntry
	TunB []RouteEntry
}

// ecmpHops collects every neighbor of id that achieves the minimum cost
// toward the anchor described by dist (distances computed from that
// anchor). Ties are all retained, in adjacency order.
func ecmpHops(fabric *topology.Fabric, id topology.RouterId, dist map[topology.RouterId]uint32) []RouteEntry {
	var entries []RouteEntry
	minCost := uint32(infCost)

	for _, lid := range fabric.IncidentLinks(id) {
		link, ok := fabric.GetLink(lid)
		if !ok {
			continue
		}
		neighbor := lid.Other(id)
		neighborDist := dist[neighbor]
		if neighborDist == infCost {
			continue
		}
		cost := neighborDist + linkWeight(link)
		switch {
		case cost < minCost:
			minCost = cost
			entries = entries[:0]
			entries = append(entries, RouteEntry{NextHop: neighbor, TotalCost: cost})
		case cost == minCost:
			entries = append(entries, RouteEntry{NextHop: neighbor, TotalCost: cost})
		}
	}
	return entries
}

// ComputeMultiPathRouting derives the ECMP MultiPathTable for every router
// in fabric. TunA entries (traffic flowing from ingress A toward B) rank
// neighbors by their distance to ingressB, and TunB entries rank by distance
// to ingressA — the reverse of RoutingTable's single-path convention, where
// TunA/TunB each rank toward their own-named anchor. This mirrors the
// original implementation's own asymmetry between its single-path and
// multipath table builders; callers that need arrival detection (see
// internal/processor.ECMPRoutes) must account for the inversion.
func ComputeMultiPathRouting(fabric *topology.Fabric, ingressA, ingressB topology.RouterId) map[topology.RouterId]MultiPathTable {
	distA := distancesFrom(fabric, ingressA)
	distB := distancesFrom(fabric, ingressB)

	tables := make(map[topology.RouterId]MultiPathTable)
	for _, id := range fabric.Routers() {
		tables[id] = MultiPathTable{
			TunA: ecmpHops(fabric, id, distB),
			TunB: ecmpHops(fabric, id, distA),
		}
	}
	return tables
}
