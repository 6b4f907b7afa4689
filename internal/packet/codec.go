// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package packet implements the bit-exact IPv4/IPv6 header codec: parsing a
// raw frame into a PacketMeta, and mutating a frame's TTL/Hop-Limit in place
// while keeping the parsed view and the raw buffer in sync (spec.md §4.1).
//
// Parsing is done by hand over byte offsets rather than through
// golang.org/x/net/ipv4's header struct, because the processor must mutate
// the same backing array the parse read from and recompute the IPv4
// checksum over it — a guarantee easier to keep correct with direct offset
// arithmetic than by round-tripping through a higher-level header type.
package packet

import (
	"net/netip"

	"netfabric.dev/simulator/internal/simerr"
)

const (
	ProtocolICMP   = 1
	ProtocolTCP    = 6
	ProtocolUDP    = 17
	ProtocolICMPv6 = 58

	nextHeaderHopByHop = 0
)

// PacketMeta is the parsed view of a frame plus ownership of its raw bytes.
// Raw is mutated in place by DecrementTTL so re-emission preserves wire
// format exactly, including a freshly recomputed IPv4 checksum.
type PacketMeta struct {
	SrcIP      netip.Addr
	DstIP      netip.Addr
	SrcPort    uint16
	DstPort    uint16
	Protocol   uint8
	TTL        uint8
	IsIPv6     bool
	ttlOffset  int // offset of the TTL / Hop Limit byte within Raw
	ihl        int // IPv4 header length in bytes; 0 for IPv6
	Raw        []byte
}

// Parse dispatches on the upper nibble of the first byte and decodes an
// IPv4 or IPv6 header (spec.md §4.1). The returned PacketMeta aliases data;
// callers that intend to mutate must own the buffer.
func Parse(data []byte) (PacketMeta, error) {
	if len(data) < 1 {
		return PacketMeta{}, simerr.New(simerr.KindParseTooShort, "empty packet")
	}
	version := data[0] >> 4
	switch version {
	case 4:
		return parseIPv4(data)
	case 6:
		return parseIPv6(data)
	default:
		return PacketMeta{}, simerr.Errorf(simerr.KindParseUnsupportedVersion,
			"unsupported IP version %d", version)
	}
}

func parseIPv4(data []byte) (PacketMeta, error) {
	if len(data) < 20 {
		return PacketMeta{}, simerr.New(simerr.KindParseTooShort, "packet too short for IPv4 header")
	}
	ihl := int(data[0]&0x0F) * 4
	if ihl < 20 {
		return PacketMeta{}, simerr.Errorf(simerr.KindParseInvalidIHL, "invalid IHL %d", ihl)
	}
	totalLen := int(data[2])<<8 | int(data[3])
	if len(data) < totalLen {
		return PacketMeta{}, simerr.New(simerr.KindParseTooShort, "packet length less than total length")
	}

	ttl := data[8]
	proto := data[9]
	src := netip.AddrFrom4([4]byte{data[12], data[13], data[14], data[15]})
	dst := netip.AddrFrom4([4]byte{data[16], data[17], data[18], data[19]})

	meta := PacketMeta{
		SrcIP:     src,
		DstIP:     dst,
		Protocol:  proto,
		TTL:       ttl,
		IsIPv6:    false,
		ttlOffset: 8,
		ihl:       ihl,
		Raw:       data,
	}
	if (proto == ProtocolTCP || proto == ProtocolUDP) && len(data) >= ihl+4 {
		meta.SrcPort = uint16(data[ihl])<<8 | uint16(data[ihl+1])
		meta.DstPort = uint16(data[ihl+2])<<8 | uint16(data[ihl+3])
	}
	return meta, nil
}

func parseIPv6(data []byte) (PacketMeta, error) {
	if len(data) < 40 {
		return PacketMeta{}, simerr.New(simerr.KindParseTooShort, "packet too short for IPv6 header")
	}
	nextHeader := data[6]
	hopLimit := data[7]
	var srcBytes, dstBytes [16]byte
	copy(srcBytes[:], data[8:24])
	copy(dstBytes[:], data[24:40])
	src := netip.AddrFrom16(srcBytes)
	dst := netip.AddrFrom16(dstBytes)

	transportOffset := 40
	finalNextHeader := nextHeader
	if nextHeader == nextHeaderHopByHop {
		if len(data) < 42 {
			return PacketMeta{}, simerr.New(simerr.KindParseHopByHopTruncated,
				"hop-by-hop extension header truncated")
		}
		finalNextHeader = data[40]
		extLen := (int(data[41]) + 1) * 8
		transportOffset += extLen
	}

	meta := PacketMeta{
		SrcIP:     src,
		DstIP:     dst,
		Protocol:  finalNextHeader,
		TTL:       hopLimit,
		IsIPv6:    true,
		ttlOffset: 7,
		Raw:       data,
	}
	if (finalNextHeader == ProtocolTCP || finalNextHeader == ProtocolUDP) && len(data) >= transportOffset+4 {
		meta.SrcPort = uint16(data[transportOffset])<<8 | uint16(data[transportOffset+1])
		meta.DstPort = uint16(data[transportOffset+2])<<8 | uint16(data[transportOffset+3])
	}
	return meta, nil
}

// DecrementTTL decreases both the logical TTL/Hop-Limit field and the
// matching byte in Raw by exactly 1, recomputing the IPv4 header checksum
// when applicable. Fails with KindPacketTTLZero when TTL is already 0.
func (m *PacketMeta) DecrementTTL() error {
	if m.TTL == 0 {
		return simerr.New(simerr.KindPacketTTLZero, "ttl already zero")
	}
	m.TTL--
	m.Raw[m.ttlOffset] = m.TTL
	if !m.IsIPv6 {
		RecomputeIPv4Checksum(m.Raw, m.ihl)
	}
	return nil
}

// IPv4Checksum computes the one's-complement Internet checksum (RFC 791)
// over header[:ihl], treating the checksum field at bytes 10..12 as zero.
func IPv4Checksum(header []byte, ihl int) uint16 {
	var sum uint32
	for i := 0; i < ihl; i += 2 {
		if i == 10 {
			continue // checksum field itself is treated as zero
		}
		var word uint32
		if i+1 < ihl {
			word = uint32(header[i])<<8 | uint32(header[i+1])
		} else {
			word = uint32(header[i]) << 8 // odd byte, padded with a zero byte
		}
		sum += word
	}
	for sum>>16 != 0 {
		sum = (sum & 0xFFFF) + (sum >> 16)
	}
	return ^uint16(sum)
}

// RecomputeIPv4Checksum recomputes and writes the checksum field (bytes
// 10..12) of header[:ihl] in place.
func RecomputeIPv4Checksum(header []byte, ihl int) {
	cs := IPv4Checksum(header, ihl)
	header[10] = byte(cs >> 8)
	header[11] = byte(cs)
}

// IHL returns the IPv4 header length in bytes, or 0 for an IPv6 packet.
func (m *PacketMeta) IHL() int {
	return m.ihl
}
