// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package tapbridge

import (
	"context"
	"io"
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"netfabric.dev/simulator/internal/clock"
	"netfabric.dev/simulator/internal/packet"
	"netfabric.dev/simulator/internal/processor"
	"netfabric.dev/simulator/internal/prng"
	"netfabric.dev/simulator/internal/routing"
	"netfabric.dev/simulator/internal/topology"
)

// queueTap is a mock Tap backed by in-memory queues, used to drive the
// bridge loop deterministically in tests.
type queueTap struct {
	recvCh chan []byte
	sent   chan []byte
	closed chan struct{}
}

func newQueueTap() *queueTap {
	return &queueTap{
		recvCh: make(chan []byte, 4),
		sent:   make(chan []byte, 4),
		closed: make(chan struct{}),
	}
}

func (q *queueTap) Recv() ([]byte, error) {
	select {
	case frame, ok := <-q.recvCh:
		if !ok {
			return nil, io.EOF
		}
		return frame, nil
	case <-q.closed:
		return nil, io.EOF
	}
}

func (q *queueTap) Send(frame []byte) error {
	select {
	case q.sent <- frame:
	default:
	}
	return nil
}

func (q *queueTap) Close() error {
	select {
	case <-q.closed:
	default:
		close(q.closed)
	}
	return nil
}

func twoRouterBridgeFixture(t *testing.T) (*Bridge, *queueTap, *queueTap) {
	t.Helper()
	f := topology.NewFabric()
	ra, err := topology.NewRouter("Rx0y0")
	require.NoError(t, err)
	rb, err := topology.NewRouter("Rx0y1")
	require.NoError(t, err)
	f.AddRouter(ra)
	f.AddRouter(rb)
	_, err = f.AddLink("Rx0y0", "Rx0y1", topology.LinkConfig{})
	require.NoError(t, err)

	tables := routing.ComputeRouting(f, "Rx0y0", "Rx0y1")
	routes := processor.SinglePathRoutes{Tables: tables, IngressA: "Rx0y0", IngressB: "Rx0y1"}
	proc := processor.New(f, prng.New(1), clock.NewMockClock(time.Now()))

	tapA := newQueueTap()
	tapB := newQueueTap()

	b := &Bridge{
		TapA:           tapA,
		TapB:           tapB,
		Classifier:     &Classifier{},
		Proc:           proc,
		Routes:         routes,
		IngressARouter: "Rx0y0",
		IngressBRouter: "Rx0y1",
	}
	return b, tapA, tapB
}

func ipv4Frame(t *testing.T, src, dst string, ttl byte) []byte {
	t.Helper()
	buf := make([]byte, 20)
	buf[0] = 0x45
	buf[2] = 0
	buf[3] = 20
	buf[8] = ttl
	buf[9] = packet.ProtocolTCP
	s := netip.MustParseAddr(src).As4()
	d := netip.MustParseAddr(dst).As4()
	copy(buf[12:16], s[:])
	copy(buf[16:20], d[:])
	packet.RecomputeIPv4Checksum(buf, 20)
	return buf
}

func TestBridgeForwardsFrameFromTapAToTapB(t *testing.T) {
	b, tapA, tapB := twoRouterBridgeFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- b.Run(ctx) }()

	tapA.recvCh <- ipv4Frame(t, "10.0.0.1", "10.0.1.1", 64)

	select {
	case out := <-tapB.sent:
		meta, err := packet.Parse(out)
		require.NoError(t, err)
		require.Equal(t, uint8(63), meta.TTL)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for forwarded frame on tap B")
	}

	cancel()
	<-done
}

func TestBridgeForwardsFrameFromTapBToTapA(t *testing.T) {
	b, tapA, tapB := twoRouterBridgeFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- b.Run(ctx) }()

	tapB.recvCh <- ipv4Frame(t, "10.0.1.1", "10.0.0.1", 64)

	select {
	case out := <-tapA.sent:
		meta, err := packet.Parse(out)
		require.NoError(t, err)
		require.Equal(t, uint8(63), meta.TTL)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for forwarded frame on tap A")
	}

	cancel()
	<-done
}

func TestBridgeDropsMalformedFrameWithoutFatalError(t *testing.T) {
	b, tapA, tapB := twoRouterBridgeFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- b.Run(ctx) }()

	tapA.recvCh <- []byte{0xff}
	tapA.recvCh <- ipv4Frame(t, "10.0.0.1", "10.0.1.1", 64)

	select {
	case <-tapB.sent:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the valid frame to be forwarded")
	}

	cancel()
	<-done
}

func TestBridgeShutsDownCleanlyOnContextCancel(t *testing.T) {
	b, tapA, tapB := twoRouterBridgeFixture(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- b.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("bridge did not shut down after context cancel")
	}

	select {
	case <-tapA.closed:
	default:
		t.Fatal("tap A was not closed")
	}
	select {
	case <-tapB.closed:
	default:
		t.Fatal("tap B was not closed")
	}
}
