// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package linksim simulates traversal of a single link: counter increment,
// MTU enforcement, loss, and delay/jitter (spec.md §4.5). The PRNG critical
// section is scoped to the draw itself and released before any suspension,
// so a mutex never spans a clock.Sleep. In-flight forwarding runs to
// completion once started (spec.md §6: "no mid-hop cancellation"), so
// Simulate takes no context.
package linksim

import (
	"time"

	"netfabric.dev/simulator/internal/clock"
	"netfabric.dev/simulator/internal/prng"
	"netfabric.dev/simulator/internal/simerr"
	"netfabric.dev/simulator/internal/topology"
)

// Simulate performs the link-traversal sequence from spec.md §4.5 against
// link for a frame of the given byte length, using rng for the loss/jitter
// draws and clk to realize the resulting delay.
func Simulate(link *topology.Link, packetSize int, rng *prng.Source, clk clock.Clock) error {
	link.IncrementCounter()

	if link.Cfg.MTU != nil && uint32(packetSize) > *link.Cfg.MTU {
		return simerr.Attr(
			simerr.Attr(
				simerr.New(simerr.KindSimMTUExceeded, "packet exceeds link mtu"),
				"packet_size", packetSize,
			),
			"mtu", *link.Cfg.MTU,
		)
	}

	lossRoll := rng.UniformRange(0, 100)
	if lossRoll < float64(link.Cfg.LossPercent) {
		return simerr.New(simerr.KindSimPacketLost, "packet lost on link")
	}

	jitter := rng.UniformRange(-float64(link.Cfg.JitterMs), float64(link.Cfg.JitterMs))
	totalDelay := float64(link.Cfg.DelayMs) + jitter
	if totalDelay < 0 {
		totalDelay = 0
	}

	clk.Sleep(time.Duration(totalDelay * float64(time.Millisecond)))
	return nil
}
