// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package tapbridge implements the three tap sources (real TUN, file,
// synthetic generator), ingress classification, and the bridge loop that
// multiplexes them into the processor (spec.md §4.8).
package tapbridge

import "netfabric.dev/simulator/internal/simerr"

// Tap is an abstract bidirectional frame carrier.
type Tap interface {
	// Recv blocks until a frame is available and returns it. Returns
	// simerr.KindTapIO on a fatal read error.
	Recv() ([]byte, error)
	// Send writes a frame. An "unseekable" write error from a mock/test
	// tap is tolerated by the bridge loop, not by Send itself.
	Send(frame []byte) error
	// Close releases the tap and any OS-level resources it holds.
	Close() error
}

// errUnseekable marks a benign write error the bridge loop tolerates and
// continues past, matching the mock/test tap contract in spec.md §4.8.
var errUnseekable = simerr.New(simerr.KindTapIO, "unseekable")

// IsUnseekable reports whether err is the benign unseekable write error.
func IsUnseekable(err error) bool {
	return err == errUnseekable
}
