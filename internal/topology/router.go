// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package topology implements the fabric's undirected graph: routers,
// links, and the per-router/per-link statistics exposed to the rest of
// the simulator (spec.md §3, §4.3).
package topology

import (
	"fmt"
	"net/netip"
	"regexp"

	"netfabric.dev/simulator/internal/simerr"
)

var routerIDPattern = regexp.MustCompile(`^Rx[0-5]y[0-5]$`)

// RouterId is the canonical string identifier of a router, e.g. "Rx2y3".
type RouterId string

// Validate enforces the Rx[0-5]y[0-5] grid pattern (spec.md §3).
func (id RouterId) Validate() error {
	if !routerIDPattern.MatchString(string(id)) {
		return simerr.Errorf(simerr.KindConfigInvalidRouterID,
			"invalid router id %q, expected Rx[0-5]y[0-5]", string(id))
	}
	return nil
}

// GridPosition parses the (x, y) grid coordinates out of a validated id.
func (id RouterId) GridPosition() (x, y int, ok bool) {
	s := string(id)
	if len(s) < 5 || s[0:2] != "Rx" || s[3] != 'y' {
		return 0, 0, false
	}
	x = int(s[2] - '0')
	y = int(s[4] - '0')
	if x < 0 || x > 9 || y < 0 || y > 9 {
		return 0, 0, false
	}
	return x, y, true
}

// GenerateAddresses derives the deterministic IPv4/IPv6 addresses for a
// router from its grid coordinates: IPv4 10.(100+x).y.1, IPv6 fd00::x:y.
func GenerateAddresses(id RouterId) (netip.Addr, netip.Addr) {
	x, y, ok := id.GridPosition()
	if !ok {
		return netip.IPv4Unspecified(), netip.IPv6Unspecified()
	}
	v4 := netip.AddrFrom4([4]byte{10, byte(100 + x), byte(y), 1})
	var v6bytes [16]byte
	v6bytes[0] = 0xfd
	v6bytes[13] = byte(x)
	v6bytes[15] = byte(y)
	v6 := netip.AddrFrom16(v6bytes)
	return v4, v6
}

// RouterStats holds the monotonically non-decreasing counters for a
// router (spec.md §3).
type RouterStats struct {
	Received      uint64
	Forwarded     uint64
	Lost          uint64
	ICMPGenerated uint64
}

// Router is a node in the fabric. Statistics live separately in the
// Fabric's mutex-guarded per-router counter map, not on this value type.
type Router struct {
	ID       RouterId
	IPv4Addr netip.Addr
	IPv6Addr netip.Addr
}

// NewRouter constructs a Router with addresses derived from its grid
// position. Returns an error if id fails validation.
func NewRouter(id RouterId) (Router, error) {
	if err := id.Validate(); err != nil {
		return Router{}, err
	}
	v4, v6 := GenerateAddresses(id)
	return Router{ID: id, IPv4Addr: v4, IPv6Addr: v6}, nil
}

func (r Router) String() string {
	return fmt.Sprintf("Router{%s, v4=%s, v6=%s}", r.ID, r.IPv4Addr, r.IPv6Addr)
}
