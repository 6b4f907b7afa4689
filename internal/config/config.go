// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package config decodes and validates the HCL configuration record that
// drives a fabric simulator run: topology, ingress taps, and the optional
// synthetic customer (spec.md §6).
package config

// Config is the top-level HCL document.
type Config struct {
	Simulation       Simulation       `hcl:"simulation,block"`
	Interfaces       Interfaces       `hcl:"interfaces,block"`
	TunIngress       TunIngress       `hcl:"tun_ingress,block"`
	Topology         Topology         `hcl:"topology,block"`
	EnableMultipath  bool             `hcl:"enable_multipath,optional"`
	PacketFile       *string          `hcl:"packet_file,optional"`
	PacketFiles      []string         `hcl:"packet_files,optional"`
	PacketInjectTun  *string          `hcl:"packet_inject_tun,optional"`
	PacketInjectTuns []string         `hcl:"packet_inject_tuns,optional"`
	VirtualCustomer  *VirtualCustomer `hcl:"virtual_customer,block"`
}

// Simulation holds the process-wide simulation parameters.
type Simulation struct {
	MTU  uint32  `hcl:"mtu"`
	Seed *uint64 `hcl:"seed,optional"`
}

// Interfaces names the two logical taps and, optionally, the host-level
// TUN devices backing them.
type Interfaces struct {
	TunA     string   `hcl:"tun_a"`
	TunB     string   `hcl:"tun_b"`
	RealTunA *RealTun `hcl:"real_tun_a,block"`
	RealTunB *RealTun `hcl:"real_tun_b,block"`
}

// RealTun describes a host-created TUN device: its name, assigned
// address, and netmask — an IPv4 dotted mask or an IPv6 prefix length as
// a decimal string; an empty Netmask defaults to an IPv6 /64.
type RealTun struct {
	Name    string `hcl:"name"`
	Address string `hcl:"address"`
	Netmask string `hcl:"netmask,optional"`
}

// TunIngress binds each logical tap to a RouterId and the CIDR prefixes
// used to classify inbound frames when no explicit injection directive
// names an ingress (spec.md §4.8).
type TunIngress struct {
	TunAIngress    string `hcl:"tun_a_ingress"`
	TunBIngress    string `hcl:"tun_b_ingress"`
	TunAPrefix     string `hcl:"tun_a_prefix,optional"`
	TunBPrefix     string `hcl:"tun_b_prefix,optional"`
	TunAIPv6Prefix string `hcl:"tun_a_ipv6_prefix,optional"`
	TunBIPv6Prefix string `hcl:"tun_b_ipv6_prefix,optional"`
}

// Topology lists every router in the fabric and the links between them.
type Topology struct {
	Routers []string    `hcl:"routers"`
	Links   []LinkBlock `hcl:"link,block"`
}

// LinkBlock is one `link "A" "B" { ... }` declaration.
type LinkBlock struct {
	A           string   `hcl:"a,label"`
	B           string   `hcl:"b,label"`
	MTU         *uint32  `hcl:"mtu,optional"`
	DelayMs     uint32   `hcl:"delay_ms,optional"`
	JitterMs    uint32   `hcl:"jitter_ms,optional"`
	LossPercent float32  `hcl:"loss_percent,optional"`
	LoadBalance bool     `hcl:"load_balance,optional"`
}

// VirtualCustomer is the optional synthetic traffic profile.
type VirtualCustomer struct {
	SrcIP    string  `hcl:"src_ip"`
	DstIP    string  `hcl:"dst_ip"`
	Protocol string  `hcl:"protocol"`
	Size     int     `hcl:"size"`
	Rate     float64 `hcl:"rate"`
}
