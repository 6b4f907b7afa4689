// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package forwarding selects the egress link a router should use for a
// packet, given routing results and the router's candidate links
// (spec.md §4.6). Both the single-path and ECMP variants share the same
// candidate-filter-then-hash shape as the teacher's staged boolean filters
// in internal/engine/matcher.go, generalized from match predicates to link
// selection.
package forwarding

import (
	"hash/fnv"
	"io"

	"netfabric.dev/simulator/internal/packet"
	"netfabric.dev/simulator/internal/routing"
	"netfabric.dev/simulator/internal/topology"
)

// bySingleNextHop filters candidates to those whose other endpoint is
// nextHop, falling back to the full candidate set when nothing matches
// (spec.md §4.6 steps 2-3).
func bySingleNextHop(fabric *topology.Fabric, current, nextHop topology.RouterId, candidates []topology.LinkId) []*topology.Link {
	return byNextHopSet(fabric, current, map[topology.RouterId]bool{nextHop: true}, candidates)
}

// byNextHopSet filters candidates to those whose other endpoint is in
// nextHops, falling back to the full candidate set when nothing matches.
func byNextHopSet(fabric *topology.Fabric, current topology.RouterId, nextHops map[topology.RouterId]bool, candidates []topology.LinkId) []*topology.Link {
	var filtered []*topology.Link
	var all []*topology.Link
	for _, lid := range candidates {
		link, ok := fabric.GetLink(lid)
		if !ok {
			continue
		}
		all = append(all, link)
		if nextHops[lid.Other(current)] {
			filtered = append(filtered, link)
		}
	}
	if len(filtered) > 0 {
		return filtered
	}
	return all
}

// chooseAmong applies the load-balance hash-and-counter rule from spec.md
// §4.6 step 4 over candidates, returning the selected link. Returns false
// if candidates is empty (no route).
func chooseAmong(pkt *packet.PacketMeta, candidates []*topology.Link) (*topology.Link, bool) {
	if len(candidates) == 0 {
		return nil, false
	}

	var lb []*topology.Link
	for _, l := range candidates {
		if l.Cfg.LoadBalance {
			lb = append(lb, l)
		}
	}
	if len(lb) == 0 {
		return candidates[0], true
	}

	var counterSum uint64
	for _, l := range lb {
		counterSum += l.Counter()
	}

	h := fnv.New64a()
	writeTuple(h, pkt, counterSum)
	idx := int(h.Sum64() % uint64(len(lb)))
	return lb[idx], true
}

func writeTuple(h io.Writer, pkt *packet.PacketMeta, counterSum uint64) {
	srcBytes := pkt.SrcIP.AsSlice()
	dstBytes := pkt.DstIP.AsSlice()
	h.Write(srcBytes)
	h.Write(dstBytes)
	h.Write([]byte{byte(pkt.SrcPort >> 8), byte(pkt.SrcPort)})
	h.Write([]byte{byte(pkt.DstPort >> 8), byte(pkt.DstPort)})
	h.Write([]byte{pkt.Protocol})
	var counterBytes [8]byte
	for i := 0; i < 8; i++ {
		counterBytes[i] = byte(counterSum >> (8 * (7 - i)))
	}
	h.Write(counterBytes[:])
}

// SelectSinglePath implements spec.md §4.6's single-path selection using
// the router's routing table entry for destination.
func SelectSinglePath(fabric *topology.Fabric, current topology.RouterId, pkt *packet.PacketMeta, candidates []topology.LinkId, table routing.RoutingTable, destination routing.Destination) (*topology.Link, bool) {
	var entry routing.RouteEntry
	if destination == routing.DestinationTunA {
		entry = table.TunA
	} else {
		entry = table.TunB
	}
	filtered := bySingleNextHop(fabric, current, entry.NextHop, candidates)
	return chooseAmong(pkt, filtered)
}

// SelectECMP implements spec.md §4.6's ECMP selection using the router's
// multipath table entry for destination.
func SelectECMP(fabric *topology.Fabric, current topology.RouterId, pkt *packet.PacketMeta, candidates []topology.LinkId, table routing.MultiPathTable, destination routing.Destination) (*topology.Link, bool) {
	var entries []routing.RouteEntry
	if destination == routing.DestinationTunA {
		entries = table.TunA
	} else {
		entries = table.TunB
	}
	if len(entries) == 0 {
		return nil, false
	}

	nextHops := make(map[topology.RouterId]bool, len(entries))
	for _, e := range entries {
		nextHops[e.NextHop] = true
	}
	filtered := byNextHopSet(fabric, current, nextHops, candidates)
	return chooseAmong(pkt, filtered)
}
