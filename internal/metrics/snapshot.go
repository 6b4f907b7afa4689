// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package metrics

import (
	"encoding/json"
	"net/http"
	"time"
)

// RouterRow is one router's counters, flattened for JSON transport.
type RouterRow struct {
	Router        string `json:"router"`
	Received      uint64 `json:"received"`
	Forwarded     uint64 `json:"forwarded"`
	Lost          uint64 `json:"lost"`
	ICMPGenerated uint64 `json:"icmp_generated"`
}

// LinkRow is one link's traversal counter, flattened for JSON transport.
type LinkRow struct {
	Link       string `json:"link"`
	Traversals uint64 `json:"traversals"`
}

// Snapshot is the dashboard-facing view of a Collector's cached state.
type Snapshot struct {
	Routers   []RouterRow `json:"routers"`
	Links     []LinkRow   `json:"links"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// Snapshot builds a Snapshot from the collector's cached state.
func (c *Collector) Snapshot() Snapshot {
	routers := c.RouterStats()
	links := c.LinkCounters()

	out := Snapshot{
		Routers:   make([]RouterRow, 0, len(routers)),
		Links:     make([]LinkRow, 0, len(links)),
		UpdatedAt: c.LastUpdate(),
	}
	for id, stats := range routers {
		out.Routers = append(out.Routers, RouterRow{
			Router:        string(id),
			Received:      stats.Received,
			Forwarded:     stats.Forwarded,
			Lost:          stats.Lost,
			ICMPGenerated: stats.ICMPGenerated,
		})
	}
	for id, counter := range links {
		out.Links = append(out.Links, LinkRow{Link: linkLabel(id), Traversals: counter})
	}
	return out
}

// SnapshotHandler serves the collector's Snapshot as JSON, for the stats
// dashboard to poll when it runs against a separate process.
func (c *Collector) SnapshotHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(c.Snapshot())
	})
}
