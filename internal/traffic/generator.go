// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package traffic implements the synthetic customer-traffic generator:
// a fixed {src_ip, dst_ip, protocol, size, rate} record produces an
// initial burst of well-formed frames on startup, then a periodic stream
// thereafter (spec.md §4.8/§6 virtual_customer).
package traffic

import (
	"context"
	"fmt"
	"net/netip"
	"time"

	"github.com/gopacket/gopacket"
	"github.com/gopacket/gopacket/layers"

	"netfabric.dev/simulator/internal/clock"
)

// Config describes a single virtual customer's traffic profile.
type Config struct {
	SrcIP    netip.Addr
	DstIP    netip.Addr
	Protocol string // "tcp", "udp", or "icmp"
	Size     int    // total frame size in bytes, including headers
	Rate     float64
}

// Generator produces well-formed IPv4/IPv6 frames matching Config, built
// by serializing gopacket layers rather than assembling bytes by hand.
type Generator struct {
	cfg   Config
	clock clock.Clock
	seq   uint16
}

// New constructs a Generator for cfg, using clk to pace the periodic tick.
func New(cfg Config, clk clock.Clock) *Generator {
	return &Generator{cfg: cfg, clock: clk}
}

// Burst produces the initial round of frames spec.md §4.8 calls for: one
// frame per unit of Rate, rounded down, with a minimum of zero.
func (g *Generator) Burst() ([][]byte, error) {
	count := int(g.cfg.Rate)
	if count < 0 {
		count = 0
	}
	frames := make([][]byte, 0, count)
	for i := 0; i < count; i++ {
		frame, err := g.buildFrame()
		if err != nil {
			return nil, err
		}
		frames = append(frames, frame)
	}
	return frames, nil
}

// Run drives the periodic tick after the initial burst: while Rate > 0 it
// sleeps 1/Rate seconds, builds a frame, and passes it to emit, until ctx
// is cancelled. A non-positive Rate disables the periodic tick entirely
// (the burst above is then the only output).
func (g *Generator) Run(ctx context.Context, emit func([]byte)) error {
	if g.cfg.Rate <= 0 {
		return nil
	}
	interval := time.Duration(float64(time.Second) / g.cfg.Rate)
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		g.clock.Sleep(interval)
		frame, err := g.buildFrame()
		if err != nil {
			return err
		}
		emit(frame)
	}
}

// buildFrame serializes one frame matching cfg, padding the transport
// payload so the overall frame lands on cfg.Size.
func (g *Generator) buildFrame() ([]byte, error) {
	if g.cfg.SrcIP.Is4() && g.cfg.DstIP.Is4() {
		return g.buildIPv4Frame()
	}
	return g.buildIPv6Frame()
}

func (g *Generator) transportLayers() (gopacket.SerializableLayer, gopacket.SerializableLayer, error) {
	g.seq++
	payloadLen := g.cfg.Size - g.ipHeaderLen() - g.transportHeaderLen()
	if payloadLen < 0 {
		payloadLen = 0
	}
	payload := gopacket.Payload(make([]byte, payloadLen))

	switch g.cfg.Protocol {
	case "tcp":
		tcp := &layers.TCP{
			SrcPort: layers.TCPPort(40000 + g.seq%10000),
			DstPort: layers.TCPPort(443),
			Seq:     uint32(g.seq),
			Window:  65535,
			SYN:     true,
		}
		return tcp, payload, nil
	case "udp":
		udp := &layers.UDP{
			SrcPort: layers.UDPPort(40000 + g.seq%10000),
			DstPort: layers.UDPPort(53),
		}
		return udp, payload, nil
	case "icmp":
		if g.cfg.SrcIP.Is4() {
			icmp := &layers.ICMPv4{
				TypeCode: layers.CreateICMPv4TypeCode(layers.ICMPv4TypeEchoRequest, 0),
				Id:       g.seq,
				Seq:      g.seq,
			}
			return icmp, payload, nil
		}
		icmp := &layers.ICMPv6{
			TypeCode: layers.CreateICMPv6TypeCode(layers.ICMPv6TypeEchoRequest, 0),
		}
		return icmp, payload, nil
	default:
		return nil, nil, fmt.Errorf("traffic: unsupported protocol %q", g.cfg.Protocol)
	}
}

func (g *Generator) ipHeaderLen() int {
	if g.cfg.SrcIP.Is4() {
		return 20
	}
	return 40
}

func (g *Generator) transportHeaderLen() int {
	switch g.cfg.Protocol {
	case "tcp":
		return 20
	case "udp":
		return 8
	case "icmp":
		if g.cfg.SrcIP.Is4() {
			return 8
		}
		// layers.ICMPv6 serializes only type, code and checksum.
		return 4
	default:
		return 0
	}
}

func (g *Generator) buildIPv4Frame() ([]byte, error) {
	transport, payload, err := g.transportLayers()
	if err != nil {
		return nil, err
	}

	ip := &layers.IPv4{
		Version:  4,
		IHL:      5,
		TTL:      64,
		Id:       g.seq,
		SrcIP:    g.cfg.SrcIP.AsSlice(),
		DstIP:    g.cfg.DstIP.AsSlice(),
		Protocol: protocolNumber(g.cfg.Protocol, false),
	}

	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}

	if err := setChecksumLayer(transport, ip); err != nil {
		return nil, err
	}
	if err := gopacket.SerializeLayers(buf, opts, ip, transport, payload); err != nil {
		return nil, err
	}
	return append([]byte(nil), buf.Bytes()...), nil
}

func (g *Generator) buildIPv6Frame() ([]byte, error) {
	transport, payload, err := g.transportLayers()
	if err != nil {
		return nil, err
	}

	ip := &layers.IPv6{
		Version:    6,
		HopLimit:   64,
		SrcIP:      g.cfg.SrcIP.AsSlice(),
		DstIP:      g.cfg.DstIP.AsSlice(),
		NextHeader: protocolNumber(g.cfg.Protocol, true),
	}

	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}

	if err := setChecksumLayer(transport, ip); err != nil {
		return nil, err
	}
	if err := gopacket.SerializeLayers(buf, opts, ip, transport, payload); err != nil {
		return nil, err
	}
	return append([]byte(nil), buf.Bytes()...), nil
}

// setChecksumLayer binds the network-layer pseudo-header to transport for
// checksum computation. ICMPv4 has no pseudo-header in its checksum, so it
// is left alone; TCP, UDP, and ICMPv6 all require the binding.
func setChecksumLayer(transport gopacket.SerializableLayer, network gopacket.NetworkLayer) error {
	type checksumLayer interface {
		SetNetworkLayerForChecksum(l gopacket.NetworkLayer) error
	}
	if cl, ok := transport.(checksumLayer); ok {
		return cl.SetNetworkLayerForChecksum(network)
	}
	return nil
}

func protocolNumber(protocol string, isIPv6 bool) layers.IPProtocol {
	switch protocol {
	case "tcp":
		return layers.IPProtocolTCP
	case "udp":
		return layers.IPProtocolUDP
	case "icmp":
		if isIPv6 {
			return layers.IPProtocolICMPv6
		}
		return layers.IPProtocolICMPv4
	default:
		return layers.IPProtocolTCP
	}
}
