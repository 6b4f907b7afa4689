// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package icmpbuilder synthesizes the ICMP/ICMPv6 error packets the
// processor emits on Time Exceeded, Destination Unreachable, and
// MTU/Packet-Too-Big conditions (spec.md §4.2). Message framing uses
// golang.org/x/net/icmp for checksum computation (including the IPv6
// pseudo-header) and golang.org/x/net/ipv4 / ipv6 for named type
// constants, matching the idiom the retrieved pack uses elsewhere for ICMP
// handling rather than hand-rolling the checksum a second time.
package icmpbuilder

import (
	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"
	"golang.org/x/net/ipv6"

	"netfabric.dev/simulator/internal/packet"
)

const ipv6MinMTU = 1280

// ipv4Excerpt returns the original IP header plus up to 8 bytes of payload,
// clipped to whatever is actually available (spec.md §4.2).
func ipv4Excerpt(pkt *packet.PacketMeta) []byte {
	ihl := pkt.IHL()
	if ihl == 0 {
		ihl = 20
	}
	end := ihl + 8
	if end > len(pkt.Raw) {
		end = len(pkt.Raw)
	}
	return pkt.Raw[:end]
}

// ipv6Excerpt returns as much of the original packet as fits within the
// IPv6 minimum MTU once the 40-byte outer header and 8-byte ICMPv6 header
// are accounted for.
func ipv6Excerpt(pkt *packet.PacketMeta) []byte {
	const outerHeaders = 40 + 8
	maxExcerpt := ipv6MinMTU - outerHeaders
	end := len(pkt.Raw)
	if end > maxExcerpt {
		end = maxExcerpt
	}
	return pkt.Raw[:end]
}

func buildIPv4Outer(totalLen int, src, dst [4]byte) []byte {
	hdr := make([]byte, 20, 20+totalLen)
	hdr[0] = 0x45
	hdr[8] = 64 // TTL
	hdr[9] = packet.ProtocolICMP
	total := uint16(20 + totalLen)
	hdr[2] = byte(total >> 8)
	hdr[3] = byte(total)
	copy(hdr[12:16], src[:])
	copy(hdr[16:20], dst[:])
	packet.RecomputeIPv4Checksum(hdr, 20)
	return hdr
}

func buildICMPv4(typ ipv4.ICMPType, code int, restOfHeader [4]byte, excerpt []byte, pkt *packet.PacketMeta) ([]byte, error) {
	body := make([]byte, 0, 4+len(excerpt))
	body = append(body, restOfHeader[:]...)
	body = append(body, excerpt...)

	msg := icmp.Message{
		Type: typ,
		Code: code,
		Body: &icmp.DefaultMessageBody{Data: body},
	}
	icmpBytes, err := msg.Marshal(nil)
	if err != nil {
		return nil, err
	}

	outer := buildIPv4Outer(len(icmpBytes), pkt.DstIP.As4(), pkt.SrcIP.As4())
	return append(outer, icmpBytes...), nil
}

func buildIPv6Outer(payloadLen int, src, dst [16]byte) []byte {
	hdr := make([]byte, 40, 40+payloadLen)
	hdr[0] = 0x60
	hdr[6] = packet.ProtocolICMPv6
	hdr[7] = 64 // Hop Limit
	hdr[4] = byte(payloadLen >> 8)
	hdr[5] = byte(payloadLen)
	copy(hdr[8:24], src[:])
	copy(hdr[24:40], dst[:])
	return hdr
}

func buildICMPv6(typ ipv6.ICMPType, code int, restOfHeader [4]byte, excerpt []byte, pkt *packet.PacketMeta) ([]byte, error) {
	body := make([]byte, 0, 4+len(excerpt))
	body = append(body, restOfHeader[:]...)
	body = append(body, excerpt...)

	src := pkt.DstIP.As16()
	dst := pkt.SrcIP.As16()

	msg := icmp.Message{
		Type: typ,
		Code: code,
		Body: &icmp.DefaultMessageBody{Data: body},
	}
	icmpBytes, err := msg.Marshal(icmpv6PseudoHeader(src, dst, len(body)+4))
	if err != nil {
		return nil, err
	}

	outer := buildIPv6Outer(len(icmpBytes), src, dst)
	return append(outer, icmpBytes...), nil
}

// icmpv6PseudoHeader builds the RFC 8200 §8.1 pseudo-header: src, dst,
// upper-layer length as a 32-bit big-endian integer, three zero bytes, and
// the next-header byte (58, ICMPv6).
func icmpv6PseudoHeader(src, dst [16]byte, upperLayerLen int) []byte {
	psh := make([]byte, 40)
	copy(psh[0:16], src[:])
	copy(psh[16:32], dst[:])
	psh[32] = byte(upperLayerLen >> 24)
	psh[33] = byte(upperLayerLen >> 16)
	psh[34] = byte(upperLayerLen >> 8)
	psh[35] = byte(upperLayerLen)
	psh[39] = packet.ProtocolICMPv6
	return psh
}

// ICMPTimeExceeded builds an IPv4 ICMP Time Exceeded (type 11, code 0).
func ICMPTimeExceeded(pkt *packet.PacketMeta) ([]byte, error) {
	return buildICMPv4(ipv4.ICMPTypeTimeExceeded, 0, [4]byte{}, ipv4Excerpt(pkt), pkt)
}

// ICMPDestUnreachable builds an IPv4 ICMP Destination Unreachable (type 3,
// code 0).
func ICMPDestUnreachable(pkt *packet.PacketMeta) ([]byte, error) {
	return buildICMPv4(ipv4.ICMPTypeDestinationUnreachable, 0, [4]byte{}, ipv4Excerpt(pkt), pkt)
}

// ICMPFragNeeded builds an IPv4 ICMP Fragmentation Needed (type 3, code 4)
// with the next-hop MTU in the last two bytes of the rest-of-header.
func ICMPFragNeeded(pkt *packet.PacketMeta, mtu uint32) ([]byte, error) {
	var rest [4]byte
	rest[2] = byte(mtu >> 8)
	rest[3] = byte(mtu)
	return buildICMPv4(ipv4.ICMPTypeDestinationUnreachable, 4, rest, ipv4Excerpt(pkt), pkt)
}

// ICMPv6TimeExceeded builds an ICMPv6 Time Exceeded (type 3, code 0).
func ICMPv6TimeExceeded(pkt *packet.PacketMeta) ([]byte, error) {
	return buildICMPv6(ipv6.ICMPTypeTimeExceeded, 0, [4]byte{}, ipv6Excerpt(pkt), pkt)
}

// ICMPv6PacketTooBig builds an ICMPv6 Packet Too Big (type 2, code 0) with
// the next-hop MTU in the rest-of-header.
func ICMPv6PacketTooBig(pkt *packet.PacketMeta, mtu uint32) ([]byte, error) {
	var rest [4]byte
	rest[0] = byte(mtu >> 24)
	rest[1] = byte(mtu >> 16)
	rest[2] = byte(mtu >> 8)
	rest[3] = byte(mtu)
	return buildICMPv6(ipv6.ICMPTypePacketTooBig, 0, rest, ipv6Excerpt(pkt), pkt)
}

// ICMPv6DestUnreachable builds an ICMPv6 Destination Unreachable (type 1,
// code 0).
func ICMPv6DestUnreachable(pkt *packet.PacketMeta) ([]byte, error) {
	return buildICMPv6(ipv6.ICMPTypeDestinationUnreachable, 0, [4]byte{}, ipv6Excerpt(pkt), pkt)
}
