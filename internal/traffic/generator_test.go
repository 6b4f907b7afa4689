// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package traffic

import (
	"context"
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"netfabric.dev/simulator/internal/clock"
	"netfabric.dev/simulator/internal/packet"
)

func TestBurstProducesRateFrames(t *testing.T) {
	cfg := Config{
		SrcIP:    netip.MustParseAddr("10.0.0.1"),
		DstIP:    netip.MustParseAddr("10.0.0.2"),
		Protocol: "udp",
		Size:     64,
		Rate:     5,
	}
	g := New(cfg, clock.NewMockClock(time.Now()))

	frames, err := g.Burst()
	require.NoError(t, err)
	require.Len(t, frames, 5)

	meta, err := packet.Parse(frames[0])
	require.NoError(t, err)
	require.Equal(t, "10.0.0.1", meta.SrcIP.String())
	require.Equal(t, "10.0.0.2", meta.DstIP.String())
	require.Equal(t, uint8(packet.ProtocolUDP), meta.Protocol)
}

func TestBurstZeroRateProducesNoFrames(t *testing.T) {
	cfg := Config{
		SrcIP:    netip.MustParseAddr("10.0.0.1"),
		DstIP:    netip.MustParseAddr("10.0.0.2"),
		Protocol: "tcp",
		Size:     64,
		Rate:     0,
	}
	g := New(cfg, clock.NewMockClock(time.Now()))

	frames, err := g.Burst()
	require.NoError(t, err)
	require.Empty(t, frames)
}

func TestBuildFrameIPv6ICMP(t *testing.T) {
	cfg := Config{
		SrcIP:    netip.MustParseAddr("2001:db8::1"),
		DstIP:    netip.MustParseAddr("2001:db8::2"),
		Protocol: "icmp",
		Size:     80,
		Rate:     1,
	}
	g := New(cfg, clock.NewMockClock(time.Now()))

	frame, err := g.buildFrame()
	require.NoError(t, err)

	meta, err := packet.Parse(frame)
	require.NoError(t, err)
	require.True(t, meta.IsIPv6)
	require.Equal(t, uint8(packet.ProtocolICMPv6), meta.Protocol)
}

func TestRunStopsOnContextCancel(t *testing.T) {
	cfg := Config{
		SrcIP:    netip.MustParseAddr("10.0.0.1"),
		DstIP:    netip.MustParseAddr("10.0.0.2"),
		Protocol: "tcp",
		Size:     64,
		Rate:     1000,
	}
	clk := clock.NewMockClock(time.Now())
	g := New(cfg, clk)

	ctx, cancel := context.WithCancel(context.Background())
	count := 0
	cancel() // cancel before Run even sleeps once, so the loop stops immediately

	err := g.Run(ctx, func(frame []byte) { count++ })
	require.NoError(t, err)
	require.Equal(t, 0, count)
}

func TestRunDisabledWhenRateIsZero(t *testing.T) {
	cfg := Config{
		SrcIP:    netip.MustParseAddr("10.0.0.1"),
		DstIP:    netip.MustParseAddr("10.0.0.2"),
		Protocol: "tcp",
		Size:     64,
		Rate:     0,
	}
	g := New(cfg, clock.NewMockClock(time.Now()))

	err := g.Run(context.Background(), func(frame []byte) {
		t.Fatal("emit should never be called when rate is zero")
	})
	require.NoError(t, err)
}
