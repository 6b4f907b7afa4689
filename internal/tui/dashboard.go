// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package tui

import (
	"fmt"
	"sort"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"netfabric.dev/simulator/internal/metrics"
)

const refreshInterval = 2 * time.Second

// DashboardModel is the live router/link stats HUD shown by
// "netfabric-sim stats".
type DashboardModel struct {
	Source     StatsSource
	Snapshot   metrics.Snapshot
	Err        error
	Width      int
	routerTbl  table.Model
	linkTbl    table.Model
	hasFetched bool
}

// NewDashboardModel builds a dashboard polling source.
func NewDashboardModel(source StatsSource) DashboardModel {
	return DashboardModel{
		Source: source,
		routerTbl: table.New(table.WithColumns([]table.Column{
			{Title: "Router", Width: 12},
			{Title: "Received", Width: 10},
			{Title: "Forwarded", Width: 10},
			{Title: "Lost", Width: 8},
			{Title: "ICMP", Width: 8},
		})),
		linkTbl: table.New(table.WithColumns([]table.Column{
			{Title: "Link", Width: 24},
			{Title: "Traversals", Width: 12},
		})),
	}
}

type snapshotMsg metrics.Snapshot
type errMsg struct{ err error }
type tickMsg struct{}

func (m DashboardModel) Init() tea.Cmd {
	return tea.Batch(m.fetch(), m.tick())
}

func (m DashboardModel) tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg{}
	})
}

func (m DashboardModel) fetch() tea.Cmd {
	return func() tea.Msg {
		snap, err := m.Source.Fetch()
		if err != nil {
			return errMsg{err}
		}
		return snapshotMsg(snap)
	}
}

func (m DashboardModel) Update(msg tea.Msg) (DashboardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case snapshotMsg:
		m.Snapshot = metrics.Snapshot(msg)
		m.Err = nil
		m.hasFetched = true
		m.routerTbl.SetRows(routerRows(m.Snapshot.Routers))
		m.linkTbl.SetRows(linkRows(m.Snapshot.Links))
	case errMsg:
		m.Err = msg.err
	case tickMsg:
		return m, tea.Batch(m.fetch(), m.tick())
	case tea.WindowSizeMsg:
		m.Width = msg.Width
	}
	return m, nil
}

func (m DashboardModel) View() string {
	if m.Err != nil {
		return StyleStatusBad.Render(fmt.Sprintf("error fetching stats: %s", m.Err))
	}
	if !m.hasFetched {
		return "Loading stats..."
	}

	routerBlock := StyleCard.Render(lipgloss.JoinVertical(lipgloss.Left,
		StyleTitle.Render("Routers"),
		m.routerTbl.View(),
	))

	linkBlock := StyleCard.Render(lipgloss.JoinVertical(lipgloss.Left,
		StyleTitle.Render("Links"),
		m.linkTbl.View(),
	))

	footer := StyleSubtitle.Render(fmt.Sprintf("Last updated: %s", m.Snapshot.UpdatedAt.Format("15:04:05")))

	return lipgloss.JoinVertical(lipgloss.Left, routerBlock, linkBlock, footer)
}

func routerRows(rows []metrics.RouterRow) []table.Row {
	sorted := append([]metrics.RouterRow(nil), rows...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Router < sorted[j].Router })

	out := make([]table.Row, 0, len(sorted))
	for _, r := range sorted {
		out = append(out, table.Row{
			r.Router,
			fmt.Sprintf("%d", r.Received),
			fmt.Sprintf("%d", r.Forwarded),
			fmt.Sprintf("%d", r.Lost),
			fmt.Sprintf("%d", r.ICMPGenerated),
		})
	}
	return out
}

// programModel adapts DashboardModel's concrete-typed Update (kept
// concrete so tests can chain m, _ = m.Update(...) without a type
// assertion) to the tea.Model interface, which requires Update to return
// a tea.Model.
type programModel struct {
	inner DashboardModel
}

func (p programModel) Init() tea.Cmd {
	return p.inner.Init()
}

func (p programModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := p.inner.Update(msg)
	p.inner = next
	return p, cmd
}

func (p programModel) View() string {
	return p.inner.View()
}

// NewProgram builds a bubbletea program running a dashboard sourced from
// source.
func NewProgram(source StatsSource) *tea.Program {
	return tea.NewProgram(programModel{inner: NewDashboardModel(source)})
}

func linkRows(rows []metrics.LinkRow) []table.Row {
	sorted := append([]metrics.LinkRow(nil), rows...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Link < sorted[j].Link })

	out := make([]table.Row, 0, len(sorted))
	for _, l := range sorted {
		out = append(out, table.Row{l.Link, fmt.Sprintf("%d", l.Traversals)})
	}
	return out
}
