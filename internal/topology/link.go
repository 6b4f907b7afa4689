// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package topology

import "sync/atomic"

// LinkId is the canonical, order-independent identifier of a link:
// LinkId{a,b} == LinkId{b,a} once canonicalized (spec.md §3).
type LinkId struct {
	A, B RouterId
}

// NewLinkId canonicalizes the pair by lexicographic order so that the two
// endpoints always produce the same LinkId regardless of call order.
func NewLinkId(r1, r2 RouterId) LinkId {
	if r1 <= r2 {
		return LinkId{A: r1, B: r2}
	}
	return LinkId{A: r2, B: r1}
}

// Other returns the endpoint of the link that is not r.
func (id LinkId) Other(r RouterId) RouterId {
	if id.A == r {
		return id.B
	}
	return id.A
}

// LinkConfig is the immutable per-link configuration (spec.md §3).
type LinkConfig struct {
	MTU         *uint32 // nil means unset / unenforced
	DelayMs     uint32
	JitterMs    uint32
	LossPercent float32
	LoadBalance bool
}

// Link owns a LinkId, its LinkConfig, and an atomic traversal counter
// incremented once per simulated traversal attempt (spec.md §3, §4.5).
type Link struct {
	ID      LinkId
	Cfg     LinkConfig
	counter atomic.Uint64
}

// NewLink constructs a Link with its counter initialized to zero.
func NewLink(id LinkId, cfg LinkConfig) *Link {
	return &Link{ID: id, Cfg: cfg}
}

// IncrementCounter atomically increments the link's traversal counter and
// returns the new value.
func (l *Link) IncrementCounter() uint64 {
	return l.counter.Add(1)
}

// Counter returns the current traversal counter value.
func (l *Link) Counter() uint64 {
	return l.counter.Load()
}
