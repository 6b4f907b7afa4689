// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package routing computes per-router next-hop tables over a topology.Fabric
// using Dijkstra's algorithm from the two tap ingress anchors (spec.md §4.2).
// Edge weight is max(1, delay_ms) so a zero-configured delay still costs a
// hop, matching the original simulator's distance metric.
package routing

import (
	"container/heap"
	"math"

	"netfabric.dev/simulator/internal/topology"
)

// Destination identifies which tap a route entry serves.
type Destination int

const (
	DestinationTunA Destination = iota
	DestinationTunB
)

// RouteEntry is a single next-hop decision with its total path cost.
type RouteEntry struct {
	NextHop   topology.RouterId
	TotalCost uint32
}

// RoutingTable holds the single-path next hop a router should use for
// traffic destined toward each ingress anchor.
type RoutingTable struct {
	TunA RouteEntry
	TunB RouteEntry
}

const infCost = math.MaxUint32

func linkWeight(l *topology.Link) uint32 {
	if l.Cfg.DelayMs == 0 {
		return 1
	}
	return l.Cfg.DelayMs
}

// heapItem/priorityQueue implement container/heap for Dijkstra; there is no
// graph library anywhere in the retrieved example pack, so this is hand
// rolled against the standard library (see DESIGN.md).
type heapItem struct {
	id   topology.RouterId
	dist uint32
}

type priorityQueue []heapItem

func (pq priorityQueue) Len() int            { return len(pq) }
func (pq priorityQueue) Less(i, j int) bool  { return pq[i].dist < pq[j].dist }
func (pq priorityQueue) Swap(i, j int)       { pq[i], pq[j] = pq[j], pq[i] }
func (pq *priorityQueue) Push(x interface{}) { *pq = append(*pq, x.(heapItem)) }
func (pq *priorityQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]
	return item
}

// distancesFrom runs Dijkstra from src over the fabric, returning the
// shortest-path cost to every registered router. Unreachable routers are
// mapped to infCost.
func distancesFrom(fabric *topology.Fabric, src topology.RouterId) map[topology.RouterId]uint32 {
	dist := make(map[topology.RouterId]uint32)
	for _, id := range fabric.Routers() {
		dist[id] = infCost
	}
	if _, ok := dist[src]; !ok {
		return dist
	}
	dist[src] = 0

	visited := make(map[topology.RouterId]bool)
	pq := &priorityQueue{{id: src, dist: 0}}
	heap.Init(pq)

	for pq.Len() > 0 {
		cur := heap.Pop(pq).(heapItem)
		if visited[cur.id] {
			continue
		}
		visited[cur.id] = true

		for _, lid := range fabric.IncidentLinks(cur.id) {
			link, ok := fabric.GetLink(lid)
			if !ok {
				continue
			}
			neighbor := lid.Other(cur.id)
			nd := cur.dist + linkWeight(link)
			if nd < dist[neighbor] {
				dist[neighbor] = nd
				heap.Push(pq, heapItem{id: neighbor, dist: nd})
			}
		}
	}
	return dist
}

// singleHop picks the neighbor of id that lies on a shortest path toward
// ingress, i.e. the first incident neighbor whose distance-from-ingress plus
// the connecting link's weight equals id's own distance-from-ingress.
// Iterating in adjacency (insertion) order makes the choice deterministic.
func singleHop(fabric *topology.Fabric, id, ingress topology.RouterId, dist map[topology.RouterId]uint32) RouteEntry {
	total := dist[id]
	if id == ingress {
		return RouteEntry{NextHop: id, TotalCost: total}
	}
	if total != infCost {
		for _, lid := range fabric.IncidentLinks(id) {
			link, ok := fabric.GetLink(lid)
			if !ok {
				continue
			}
			neighbor := lid.Other(id)
			neighborDist := dist[neighbor]
			if neighborDist != infCost && neighborDist+linkWeight(link) == total {
				return RouteEntry{NextHop: neighbor, TotalCost: total}
			}
		}
	}
	return RouteEntry{NextHop: id, TotalCost: total}
}

// ComputeRouting derives the single-path RoutingTable for every router in
// fabric, using ingressA/ingressB as the two tap anchors (spec.md §4.2).
func ComputeRouting(fabric *topology.Fabric, ingressA, ingressB topology.RouterId) map[topology.RouterId]RoutingTable {
	distA := distancesFrom(fabric, ingressA)
	distB := distancesFrom(fabric, ingressB)

	tables := make(map[topology.RouterId]RoutingTable)
	for _, id := range fabric.Routers() {
		tables[id] = RoutingTable{
			TunA: singleHop(fabric, id, ingressA, distA),
			TunB: singleHop(fabric, id, ingressB, distB),
		}
	}
	return tables
}
