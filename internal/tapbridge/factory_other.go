// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

//go:build !linux

package tapbridge

import "netfabric.dev/simulator/internal/simerr"

// NewRealTun always fails outside Linux: kernel TUN devices are created
// here through a Linux-specific TUNSETIFF ioctl.
func NewRealTun(cfg RealTunConfig, mtu uint32) (Tap, error) {
	return nil, simerr.New(simerr.KindTapIO, "real TUN devices are only supported on linux")
}
