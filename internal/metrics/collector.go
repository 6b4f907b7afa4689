// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package metrics

import (
	"sync"
	"time"

	"netfabric.dev/simulator/internal/logging"
	"netfabric.dev/simulator/internal/topology"
)

// Collector periodically snapshots a Fabric's counters into a Registry,
// and caches the latest snapshot for non-Prometheus consumers (the TUI).
type Collector struct {
	fabric   *topology.Fabric
	registry *Registry
	logger   *logging.Logger
	interval time.Duration
	stopCh   chan struct{}

	mu         sync.RWMutex
	lastUpdate time.Time
	routers    map[topology.RouterId]topology.RouterStats
	links      map[topology.LinkId]uint64
}

// NewCollector builds a Collector polling fabric every interval.
func NewCollector(fabric *topology.Fabric, registry *Registry, logger *logging.Logger, interval time.Duration) *Collector {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Collector{
		fabric:   fabric,
		registry: registry,
		logger:   logger,
		interval: interval,
		stopCh:   make(chan struct{}),
		routers:  make(map[topology.RouterId]topology.RouterStats),
		links:    make(map[topology.LinkId]uint64),
	}
}

// Start runs the collection loop until Stop is called. Intended to be
// invoked in its own goroutine.
func (c *Collector) Start() {
	c.logger.Info("starting metrics collector", "interval", c.interval.String())

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	c.collect()
	for {
		select {
		case <-ticker.C:
			c.collect()
		case <-c.stopCh:
			c.logger.Info("stopping metrics collector")
			return
		}
	}
}

// Stop ends the collection loop started by Start.
func (c *Collector) Stop() {
	close(c.stopCh)
}

func (c *Collector) collect() {
	routers := c.fabric.SnapshotStatistics()
	links := c.fabric.LinkCounters()

	c.mu.Lock()
	c.routers = routers
	c.links = links
	c.lastUpdate = time.Now()
	c.mu.Unlock()

	if c.registry == nil {
		return
	}
	for id, stats := range routers {
		name := string(id)
		c.registry.received.WithLabelValues(name).Set(float64(stats.Received))
		c.registry.forwarded.WithLabelValues(name).Set(float64(stats.Forwarded))
		c.registry.lost.WithLabelValues(name).Set(float64(stats.Lost))
		c.registry.icmpGenerated.WithLabelValues(name).Set(float64(stats.ICMPGenerated))
	}
	for id, counter := range links {
		c.registry.linkTraversal.WithLabelValues(linkLabel(id)).Set(float64(counter))
	}
}

func linkLabel(id topology.LinkId) string {
	return string(id.A) + "-" + string(id.B)
}

// RouterStats returns the most recently collected per-router snapshot.
func (c *Collector) RouterStats() map[topology.RouterId]topology.RouterStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[topology.RouterId]topology.RouterStats, len(c.routers))
	for k, v := range c.routers {
		out[k] = v
	}
	return out
}

// LinkCounters returns the most recently collected per-link snapshot.
func (c *Collector) LinkCounters() map[topology.LinkId]uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[topology.LinkId]uint64, len(c.links))
	for k, v := range c.links {
		out[k] = v
	}
	return out
}

// LastUpdate returns the time of the most recent collection pass.
func (c *Collector) LastUpdate() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastUpdate
}
