// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package topology

import (
	"sync"

	"netfabric.dev/simulator/internal/simerr"
)

// Fabric is the undirected labeled multigraph of routers and links
// (spec.md §3). All lookups are O(1) map accesses; mutation is expected to
// happen once at startup from config, but the stats maps are guarded for
// future concurrent forwarding.
type Fabric struct {
	routers map[RouterId]Router
	links   map[LinkId]*Link
	// adjacency maps a router to the LinkIds incident on it, preserving
	// insertion order so neighbor iteration (e.g. Dijkstra tie-breaking) is
	// deterministic run-over-run.
	adjacency map[RouterId][]LinkId

	statsMu sync.RWMutex
	stats   map[RouterId]*RouterStats
}

// NewFabric returns an empty Fabric ready for AddRouter/AddLink calls.
func NewFabric() *Fabric {
	return &Fabric{
		routers:   make(map[RouterId]Router),
		links:     make(map[LinkId]*Link),
		adjacency: make(map[RouterId][]LinkId),
		stats:     make(map[RouterId]*RouterStats),
	}
}

// AddRouter registers a router. Re-adding the same id is a no-op that
// leaves the existing router unchanged.
func (f *Fabric) AddRouter(r Router) {
	if _, ok := f.routers[r.ID]; ok {
		return
	}
	f.routers[r.ID] = r
	f.statsMu.Lock()
	f.stats[r.ID] = &RouterStats{}
	f.statsMu.Unlock()
}

// Router looks up a router by id.
func (f *Fabric) Router(id RouterId) (Router, bool) {
	r, ok := f.routers[id]
	return r, ok
}

// Routers returns every router id currently registered, in no particular
// order.
func (f *Fabric) Routers() []RouterId {
	out := make([]RouterId, 0, len(f.routers))
	for id := range f.routers {
		out = append(out, id)
	}
	return out
}

// AddLink registers a link between two already-registered routers. Both
// endpoints must exist; the LinkId is canonicalized so the same pair can
// never be added twice regardless of argument order (spec.md §8 scenario 6:
// "Duplicate bidirectional link").
func (f *Fabric) AddLink(r1, r2 RouterId, cfg LinkConfig) (*Link, error) {
	if _, ok := f.routers[r1]; !ok {
		return nil, simerr.Errorf(simerr.KindConfigUnknownRouter, "unknown router %q in link", r1)
	}
	if _, ok := f.routers[r2]; !ok {
		return nil, simerr.Errorf(simerr.KindConfigUnknownRouter, "unknown router %q in link", r2)
	}
	id := NewLinkId(r1, r2)
	if _, ok := f.links[id]; ok {
		return nil, simerr.Errorf(simerr.KindConfigDuplicateLink,
			"duplicate bidirectional link between %q and %q", id.A, id.B)
	}
	link := NewLink(id, cfg)
	f.links[id] = link
	f.adjacency[id.A] = append(f.adjacency[id.A], id)
	if id.A != id.B {
		f.adjacency[id.B] = append(f.adjacency[id.B], id)
	}
	return link, nil
}

// GetLink looks up a link by its canonical id. Callers that only have the
// two endpoints should call NewLinkId first.
func (f *Fabric) GetLink(id LinkId) (*Link, bool) {
	l, ok := f.links[id]
	return l, ok
}

// LinkBetween looks up the link directly connecting r1 and r2, if any.
func (f *Fabric) LinkBetween(r1, r2 RouterId) (*Link, bool) {
	return f.GetLink(NewLinkId(r1, r2))
}

// IncidentLinks returns the LinkIds touching router id, in the order they
// were added.
func (f *Fabric) IncidentLinks(id RouterId) []LinkId {
	return f.adjacency[id]
}

// Neighbors returns the router ids directly reachable from id via a single
// link, in adjacency order. AddLink allows at most one link per router
// pair, so no neighbor appears twice.
func (f *Fabric) Neighbors(id RouterId) []RouterId {
	incident := f.adjacency[id]
	out := make([]RouterId, 0, len(incident))
	for _, lid := range incident {
		out = append(out, lid.Other(id))
	}
	return out
}

// IncrementReceived bumps the Received counter for router id.
func (f *Fabric) IncrementReceived(id RouterId) {
	f.statsMu.Lock()
	defer f.statsMu.Unlock()
	f.stats[id].Received++
}

// IncrementForwarded bumps the Forwarded counter for router id.
func (f *Fabric) IncrementForwarded(id RouterId) {
	f.statsMu.Lock()
	defer f.statsMu.Unlock()
	f.stats[id].Forwarded++
}

// IncrementLost bumps the Lost counter for router id.
func (f *Fabric) IncrementLost(id RouterId) {
	f.statsMu.Lock()
	defer f.statsMu.Unlock()
	f.stats[id].Lost++
}

// IncrementICMPGenerated bumps the ICMPGenerated counter for router id.
func (f *Fabric) IncrementICMPGenerated(id RouterId) {
	f.statsMu.Lock()
	defer f.statsMu.Unlock()
	f.stats[id].ICMPGenerated++
}

// SnapshotStatistics returns a copy of the per-router statistics, safe to
// read concurrently with the forwarding path.
func (f *Fabric) SnapshotStatistics() map[RouterId]RouterStats {
	f.statsMu.RLock()
	defer f.statsMu.RUnlock()
	out := make(map[RouterId]RouterStats, len(f.stats))
	for id, s := range f.stats {
		out[id] = *s
	}
	return out
}

// LinkCounters returns a copy of every link's traversal counter, keyed by
// LinkId.
func (f *Fabric) LinkCounters() map[LinkId]uint64 {
	out := make(map[LinkId]uint64, len(f.links))
	for id, l := range f.links {
		out[id] = l.Counter()
	}
	return out
}
