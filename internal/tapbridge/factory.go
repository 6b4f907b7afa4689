// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package tapbridge

// RealTunConfig names the interface to create and the address it should
// carry, per spec.md §6: IPv4 taps take a dotted-quad address/netmask
// pair, IPv6 taps take a prefix length that defaults to 64 when empty.
// It is platform-independent so callers can construct it without a build
// tag; only NewRealTun's implementation is OS-specific.
type RealTunConfig struct {
	Name    string
	Address string
	Netmask string
	IsIPv6  bool
}
