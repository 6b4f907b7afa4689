// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

//go:build linux

package tapbridge

// NewRealTun opens a kernel TUN device configured per cfg.
func NewRealTun(cfg RealTunConfig, mtu uint32) (Tap, error) {
	return OpenRealTun(cfg, mtu)
}
