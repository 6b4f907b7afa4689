// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package tui

import (
	"encoding/json"
	"net/http"
	"time"

	"netfabric.dev/simulator/internal/metrics"
)

// StatsSource abstracts over how the dashboard obtains its snapshot: a
// direct in-process collector, or an HTTP client against a running
// instance's JSON snapshot endpoint.
type StatsSource interface {
	Fetch() (metrics.Snapshot, error)
}

// CollectorSource reads directly from an in-process Collector.
type CollectorSource struct {
	Collector *metrics.Collector
}

func (s CollectorSource) Fetch() (metrics.Snapshot, error) {
	return s.Collector.Snapshot(), nil
}

// HTTPSource polls a remote instance's JSON snapshot endpoint.
type HTTPSource struct {
	URL    string
	Client *http.Client
}

func (s HTTPSource) Fetch() (metrics.Snapshot, error) {
	client := s.Client
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	resp, err := client.Get(s.URL)
	if err != nil {
		return metrics.Snapshot{}, err
	}
	defer resp.Body.Close()

	var snap metrics.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return metrics.Snapshot{}, err
	}
	return snap, nil
}
