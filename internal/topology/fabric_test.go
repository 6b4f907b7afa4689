// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package topology

import (
	"testing"

	"github.com/stretchr/testify/require"

	"netfabric.dev/simulator/internal/simerr"
)

func mustRouter(t *testing.T, id RouterId) Router {
	t.Helper()
	r, err := NewRouter(id)
	require.NoError(t, err)
	return r
}

func TestAddLinkRejectsDuplicateRegardlessOfOrder(t *testing.T) {
	f := NewFabric()
	f.AddRouter(mustRouter(t, "Rx0y0"))
	f.AddRouter(mustRouter(t, "Rx0y1"))

	_, err := f.AddLink("Rx0y0", "Rx0y1", LinkConfig{})
	require.NoError(t, err)

	_, err = f.AddLink("Rx0y1", "Rx0y0", LinkConfig{})
	require.Error(t, err)
	require.Equal(t, simerr.KindConfigDuplicateLink, simerr.GetKind(err))
}

func TestAddLinkRejectsUnknownRouter(t *testing.T) {
	f := NewFabric()
	f.AddRouter(mustRouter(t, "Rx0y0"))
	_, err := f.AddLink("Rx0y0", "Rx1y1", LinkConfig{})
	require.Error(t, err)
	require.Equal(t, simerr.KindConfigUnknownRouter, simerr.GetKind(err))
}

func TestIncidentLinksAndNeighbors(t *testing.T) {
	f := NewFabric()
	f.AddRouter(mustRouter(t, "Rx0y0"))
	f.AddRouter(mustRouter(t, "Rx0y1"))
	f.AddRouter(mustRouter(t, "Rx1y0"))

	_, err := f.AddLink("Rx0y0", "Rx0y1", LinkConfig{DelayMs: 5})
	require.NoError(t, err)
	_, err = f.AddLink("Rx0y0", "Rx1y0", LinkConfig{DelayMs: 10})
	require.NoError(t, err)

	incident := f.IncidentLinks("Rx0y0")
	require.Len(t, incident, 2)

	neighbors := f.Neighbors("Rx0y0")
	require.ElementsMatch(t, []RouterId{"Rx0y1", "Rx1y0"}, neighbors)

	require.Len(t, f.IncidentLinks("Rx0y1"), 1)
}

func TestLinkBetweenIsOrderIndependent(t *testing.T) {
	f := NewFabric()
	f.AddRouter(mustRouter(t, "Rx0y0"))
	f.AddRouter(mustRouter(t, "Rx0y1"))
	added, err := f.AddLink("Rx0y0", "Rx0y1", LinkConfig{})
	require.NoError(t, err)

	l1, ok := f.LinkBetween("Rx0y0", "Rx0y1")
	require.True(t, ok)
	l2, ok := f.LinkBetween("Rx0y1", "Rx0y0")
	require.True(t, ok)
	require.Same(t, added, l1)
	require.Same(t, l1, l2)
}

func TestStatisticsAreMonotonicAndIsolatedPerRouter(t *testing.T) {
	f := NewFabric()
	f.AddRouter(mustRouter(t, "Rx0y0"))
	f.AddRouter(mustRouter(t, "Rx0y1"))

	f.IncrementReceived("Rx0y0")
	f.IncrementReceived("Rx0y0")
	f.IncrementForwarded("Rx0y0")
	f.IncrementLost("Rx0y1")
	f.IncrementICMPGenerated("Rx0y1")

	snap := f.SnapshotStatistics()
	require.Equal(t, uint64(2), snap["Rx0y0"].Received)
	require.Equal(t, uint64(1), snap["Rx0y0"].Forwarded)
	require.Equal(t, uint64(0), snap["Rx0y0"].Lost)
	require.Equal(t, uint64(1), snap["Rx0y1"].Lost)
	require.Equal(t, uint64(1), snap["Rx0y1"].ICMPGenerated)
	require.Equal(t, uint64(0), snap["Rx0y1"].Received)
}

func TestLinkCounterIncrementsAtomically(t *testing.T) {
	f := NewFabric()
	f.AddRouter(mustRouter(t, "Rx0y0"))
	f.AddRouter(mustRouter(t, "Rx0y1"))
	link, err := f.AddLink("Rx0y0", "Rx0y1", LinkConfig{})
	require.NoError(t, err)

	link.IncrementCounter()
	link.IncrementCounter()
	link.IncrementCounter()

	counters := f.LinkCounters()
	require.Equal(t, uint64(3), counters[link.ID])
}
