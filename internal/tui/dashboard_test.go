// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package tui

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"netfabric.dev/simulator/internal/metrics"
)

type fakeSource struct {
	snap metrics.Snapshot
	err  error
}

func (f fakeSource) Fetch() (metrics.Snapshot, error) {
	return f.snap, f.err
}

func TestDashboardViewShowsLoadingBeforeFirstFetch(t *testing.T) {
	m := NewDashboardModel(fakeSource{})
	assert.Contains(t, m.View(), "Loading stats")
}

func TestDashboardUpdateSnapshotPopulatesView(t *testing.T) {
	m := NewDashboardModel(fakeSource{})
	snap := metrics.Snapshot{
		Routers:   []metrics.RouterRow{{Router: "Rx0y0", Received: 10, Forwarded: 8, Lost: 1, ICMPGenerated: 1}},
		Links:     []metrics.LinkRow{{Link: "Rx0y0-Rx0y1", Traversals: 8}},
		UpdatedAt: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
	}

	m, _ = m.Update(snapshotMsg(snap))
	assert.Nil(t, m.Err)

	view := m.View()
	assert.Contains(t, view, "Rx0y0")
	assert.Contains(t, view, "Rx0y0-Rx0y1")
	assert.Contains(t, view, "12:00:00")
}

func TestDashboardUpdateErrorRendersErrorView(t *testing.T) {
	m := NewDashboardModel(fakeSource{})
	m, _ = m.Update(errMsg{errors.New("boom")})
	assert.Contains(t, m.View(), "boom")
}

func TestDashboardFetchCmdReturnsSnapshotMsg(t *testing.T) {
	snap := metrics.Snapshot{Routers: []metrics.RouterRow{{Router: "Rx0y0"}}}
	m := NewDashboardModel(fakeSource{snap: snap})

	msg := m.fetch()()
	got, ok := msg.(snapshotMsg)
	assert.True(t, ok)
	assert.Equal(t, snap.Routers, metrics.Snapshot(got).Routers)
}

func TestDashboardFetchCmdReturnsErrMsgOnFailure(t *testing.T) {
	m := NewDashboardModel(fakeSource{err: errors.New("unreachable")})

	msg := m.fetch()()
	got, ok := msg.(errMsg)
	assert.True(t, ok)
	assert.EqualError(t, got.err, "unreachable")
}
