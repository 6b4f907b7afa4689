// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package icmpbuilder

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/require"

	"netfabric.dev/simulator/internal/packet"
)

func ipv4Packet(t *testing.T) *packet.PacketMeta {
	t.Helper()
	buf := make([]byte, 28)
	buf[0] = 0x45
	total := uint16(len(buf))
	buf[2] = byte(total >> 8)
	buf[3] = byte(total)
	buf[8] = 64
	buf[9] = packet.ProtocolTCP
	src := netip.MustParseAddr("10.0.0.1").As4()
	dst := netip.MustParseAddr("10.0.1.1").As4()
	copy(buf[12:16], src[:])
	copy(buf[16:20], dst[:])
	packet.RecomputeIPv4Checksum(buf, 20)

	meta, err := packet.Parse(buf)
	require.NoError(t, err)
	return &meta
}

func ipv6Packet(t *testing.T) *packet.PacketMeta {
	t.Helper()
	buf := make([]byte, 48)
	buf[0] = 0x60
	buf[6] = packet.ProtocolUDP
	buf[7] = 64
	src := netip.MustParseAddr("2001:db8::1").As16()
	dst := netip.MustParseAddr("2001:db8::2").As16()
	copy(buf[8:24], src[:])
	copy(buf[24:40], dst[:])

	meta, err := packet.Parse(buf)
	require.NoError(t, err)
	return &meta
}

func TestICMPTimeExceededSwapsAddressesAndSetsTypeCode(t *testing.T) {
	pkt := ipv4Packet(t)
	out, err := ICMPTimeExceeded(pkt)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(out), 20+8)

	require.Equal(t, byte(0x45), out[0])
	require.Equal(t, "10.0.1.1", netip.AddrFrom4([4]byte{out[12], out[13], out[14], out[15]}).String())
	require.Equal(t, "10.0.0.1", netip.AddrFrom4([4]byte{out[16], out[17], out[18], out[19]}).String())

	icmpType := out[20]
	icmpCode := out[21]
	require.Equal(t, byte(11), icmpType)
	require.Equal(t, byte(0), icmpCode)
}

func TestICMPDestUnreachableTypeCode(t *testing.T) {
	pkt := ipv4Packet(t)
	out, err := ICMPDestUnreachable(pkt)
	require.NoError(t, err)
	require.Equal(t, byte(3), out[20])
	require.Equal(t, byte(0), out[21])
}

func TestICMPFragNeededCarriesMTU(t *testing.T) {
	pkt := ipv4Packet(t)
	out, err := ICMPFragNeeded(pkt, 1200)
	require.NoError(t, err)
	require.Equal(t, byte(3), out[20])
	require.Equal(t, byte(4), out[21])
	mtu := uint16(out[26])<<8 | uint16(out[27])
	require.Equal(t, uint16(1200), mtu)
}

func TestICMPv6TimeExceededSwapsAddresses(t *testing.T) {
	pkt := ipv6Packet(t)
	out, err := ICMPv6TimeExceeded(pkt)
	require.NoError(t, err)
	require.Equal(t, byte(0x60), out[0])
	require.Equal(t, byte(58), out[6])

	srcAddr := netip.AddrFrom16([16]byte(out[8:24]))
	dstAddr := netip.AddrFrom16([16]byte(out[24:40]))
	require.Equal(t, "2001:db8::2", srcAddr.String())
	require.Equal(t, "2001:db8::1", dstAddr.String())

	require.Equal(t, byte(3), out[40])
	require.Equal(t, byte(0), out[41])
}

func TestICMPv6PacketTooBigCarriesMTU(t *testing.T) {
	pkt := ipv6Packet(t)
	out, err := ICMPv6PacketTooBig(pkt, 1280)
	require.NoError(t, err)
	require.Equal(t, byte(2), out[40])
	require.Equal(t, byte(0), out[41])
	mtu := uint32(out[44])<<24 | uint32(out[45])<<16 | uint32(out[46])<<8 | uint32(out[47])
	require.Equal(t, uint32(1280), mtu)
}

func TestICMPv6ExcerptClampedToMinMTU(t *testing.T) {
	buf := make([]byte, 2000)
	buf[0] = 0x60
	buf[6] = packet.ProtocolUDP
	buf[7] = 64
	meta, err := packet.Parse(buf)
	require.NoError(t, err)

	out, err := ICMPv6TimeExceeded(&meta)
	require.NoError(t, err)
	require.LessOrEqual(t, len(out), ipv6MinMTU)
}
