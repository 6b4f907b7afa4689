// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package tapbridge

import (
	"net/netip"

	"netfabric.dev/simulator/internal/logging"
	"netfabric.dev/simulator/internal/routing"
)

// Ingress names one of the two logical taps a frame entered through.
type Ingress int

const (
	IngressA Ingress = iota
	IngressB
)

// Classifier resolves which ingress a frame belongs to and the
// destination that implies (spec.md §4.8: "Ingress→destination mapping
// is fixed: ingress A → TunB, ingress B → TunA").
type Classifier struct {
	APrefix     netip.Prefix
	BPrefix     netip.Prefix
	AIPv6Prefix netip.Prefix
	BIPv6Prefix netip.Prefix
	HasAPrefix  bool
	HasBPrefix  bool
	HasAv6      bool
	HasBv6      bool
	Log         *logging.Logger
}

// Classify applies the ordered rules spec.md §4.8 lists: an explicit
// directive first, then CIDR prefixes in fixed order, then a
// warn-and-default to ingress A.
func (c *Classifier) Classify(explicit *Ingress, srcIP netip.Addr) Ingress {
	if explicit != nil {
		return *explicit
	}

	if matchPrefix(c.HasAPrefix, c.APrefix, srcIP) {
		return IngressA
	}
	if matchPrefix(c.HasBPrefix, c.BPrefix, srcIP) {
		return IngressB
	}
	if matchPrefix(c.HasAv6, c.AIPv6Prefix, srcIP) {
		return IngressA
	}
	if matchPrefix(c.HasBv6, c.BIPv6Prefix, srcIP) {
		return IngressB
	}

	if c.Log != nil {
		c.Log.Warn("no ingress rule matched source, defaulting to ingress A", "src_ip", srcIP.String())
	}
	return IngressA
}

func matchPrefix(has bool, prefix netip.Prefix, ip netip.Addr) bool {
	if !has {
		return false
	}
	return prefix.Contains(ip)
}

// Destination maps an Ingress to the routing.Destination a packet
// entering there should be processed toward.
func Destination(ingress Ingress) routing.Destination {
	if ingress == IngressA {
		return routing.DestinationTunB
	}
	return routing.DestinationTunA
}

// ParsePrefix parses an optional CIDR string, returning ok=false for an
// empty string.
func ParsePrefix(cidr string) (netip.Prefix, bool) {
	if cidr == "" {
		return netip.Prefix{}, false
	}
	p, err := netip.ParsePrefix(cidr)
	if err != nil {
		return netip.Prefix{}, false
	}
	return p, true
}
