// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package config

import (
	"net/netip"
	"strconv"
	"strings"

	"netfabric.dev/simulator/internal/simerr"
	"netfabric.dev/simulator/internal/topology"
)

// Validate checks cfg for the ConfigError conditions spec.md §7 names:
// duplicate link, unknown router reference, invalid injection target,
// invalid address/netmask, invalid RouterId pattern. It does not open any
// file named by PacketFile(s): a missing packet file is reported as
// KindConfigMissingPacketFile by tapbridge.OpenFileTap when it opens it.
func (c *Config) Validate() error {
	for _, id := range c.Topology.Routers {
		if err := topology.RouterId(id).Validate(); err != nil {
			return err
		}
	}

	known := make(map[string]bool, len(c.Topology.Routers))
	for _, id := range c.Topology.Routers {
		known[id] = true
	}

	seen := make(map[topology.LinkId]bool, len(c.Topology.Links))
	for _, l := range c.Topology.Links {
		if !known[l.A] {
			return simerr.Errorf(simerr.KindConfigUnknownRouter, "link references unknown router %q", l.A)
		}
		if !known[l.B] {
			return simerr.Errorf(simerr.KindConfigUnknownRouter, "link references unknown router %q", l.B)
		}
		id := topology.NewLinkId(topology.RouterId(l.A), topology.RouterId(l.B))
		if seen[id] {
			return simerr.Errorf(simerr.KindConfigDuplicateLink,
				"duplicate bidirectional link between %q and %q", l.A, l.B)
		}
		seen[id] = true
	}

	if !known[c.TunIngress.TunAIngress] {
		return simerr.Errorf(simerr.KindConfigUnknownRouter, "tun_a_ingress references unknown router %q", c.TunIngress.TunAIngress)
	}
	if !known[c.TunIngress.TunBIngress] {
		return simerr.Errorf(simerr.KindConfigUnknownRouter, "tun_b_ingress references unknown router %q", c.TunIngress.TunBIngress)
	}

	if err := validatePrefix(c.TunIngress.TunAPrefix); err != nil {
		return err
	}
	if err := validatePrefix(c.TunIngress.TunBPrefix); err != nil {
		return err
	}
	if err := validatePrefix(c.TunIngress.TunAIPv6Prefix); err != nil {
		return err
	}
	if err := validatePrefix(c.TunIngress.TunBIPv6Prefix); err != nil {
		return err
	}

	if c.PacketFile != nil && len(c.PacketFiles) > 0 {
		return simerr.New(simerr.KindConfigInvalidInjection, "packet_file and packet_files are mutually exclusive")
	}
	if c.PacketInjectTun != nil && len(c.PacketInjectTuns) > 0 {
		return simerr.New(simerr.KindConfigInvalidInjection, "packet_inject_tun and packet_inject_tuns are mutually exclusive")
	}
	if err := validateInjectionTarget(c.PacketInjectTun); err != nil {
		return err
	}
	for _, t := range c.PacketInjectTuns {
		if err := validateInjectionTarget(&t); err != nil {
			return err
		}
	}

	if r := c.Interfaces.RealTunA; r != nil {
		if err := validateRealTun(r); err != nil {
			return err
		}
	}
	if r := c.Interfaces.RealTunB; r != nil {
		if err := validateRealTun(r); err != nil {
			return err
		}
	}

	if c.VirtualCustomer != nil {
		if err := validateVirtualCustomer(c.VirtualCustomer); err != nil {
			return err
		}
	}

	return nil
}

func validatePrefix(cidr string) error {
	if cidr == "" {
		return nil
	}
	if _, err := netip.ParsePrefix(cidr); err != nil {
		return simerr.Wrap(err, simerr.KindConfigInvalidAddress, "invalid CIDR prefix "+cidr)
	}
	return nil
}

func validateInjectionTarget(target *string) error {
	if target == nil {
		return nil
	}
	switch *target {
	case "tun_a", "tun_b":
		return nil
	default:
		return simerr.Errorf(simerr.KindConfigInvalidInjection, "invalid injection target %q, expected tun_a or tun_b", *target)
	}
}

func validateRealTun(r *RealTun) error {
	if _, err := netip.ParseAddr(r.Address); err != nil {
		return simerr.Wrap(err, simerr.KindConfigInvalidAddress, "invalid real tun address "+r.Address)
	}
	if r.Netmask == "" {
		return nil
	}
	if strings.Contains(r.Netmask, ".") {
		if _, err := netip.ParseAddr(r.Netmask); err != nil {
			return simerr.Wrap(err, simerr.KindConfigInvalidAddress, "invalid IPv4 netmask "+r.Netmask)
		}
		return nil
	}
	prefixLen, err := strconv.Atoi(r.Netmask)
	if err != nil || prefixLen < 0 || prefixLen > 128 {
		return simerr.Errorf(simerr.KindConfigInvalidAddress, "invalid IPv6 prefix length %q", r.Netmask)
	}
	return nil
}

func validateVirtualCustomer(vc *VirtualCustomer) error {
	if _, err := netip.ParseAddr(vc.SrcIP); err != nil {
		return simerr.Wrap(err, simerr.KindConfigInvalidAddress, "invalid virtual_customer src_ip "+vc.SrcIP)
	}
	if _, err := netip.ParseAddr(vc.DstIP); err != nil {
		return simerr.Wrap(err, simerr.KindConfigInvalidAddress, "invalid virtual_customer dst_ip "+vc.DstIP)
	}
	switch vc.Protocol {
	case "tcp", "udp", "icmp":
	default:
		return simerr.Errorf(simerr.KindConfigInvalidInjection, "invalid virtual_customer protocol %q", vc.Protocol)
	}
	return nil
}

// BuildFabric constructs a topology.Fabric from the validated Topology
// block: every router is added, then every link.
func (c *Config) BuildFabric() (*topology.Fabric, error) {
	f := topology.NewFabric()
	for _, id := range c.Topology.Routers {
		r, err := topology.NewRouter(topology.RouterId(id))
		if err != nil {
			return nil, err
		}
		f.AddRouter(r)
	}
	for _, l := range c.Topology.Links {
		cfg := topology.LinkConfig{
			MTU:         l.MTU,
			DelayMs:     l.DelayMs,
			JitterMs:    l.JitterMs,
			LossPercent: l.LossPercent,
			LoadBalance: l.LoadBalance,
		}
		if _, err := f.AddLink(topology.RouterId(l.A), topology.RouterId(l.B), cfg); err != nil {
			return nil, err
		}
	}
	return f, nil
}
