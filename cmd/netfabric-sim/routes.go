// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package main

import (
	"encoding/json"
	"os"

	"netfabric.dev/simulator/internal/config"
	"netfabric.dev/simulator/internal/routing"
	"netfabric.dev/simulator/internal/simerr"
	"netfabric.dev/simulator/internal/topology"
)

// cmdRoutes loads cfg, computes the routing table(s) it describes, and
// prints them as JSON without opening any tap — a debug aid for
// inspecting routing decisions independent of a live run.
func cmdRoutes(args []string) error {
	fs := newFlagSet("routes")
	configPath := fs.String("config", "", "path to the HCL configuration file")
	fs.Parse(args)

	if *configPath == "" {
		return simerr.New(simerr.KindConfigParseError, "-config is required")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	fabric, err := cfg.BuildFabric()
	if err != nil {
		return err
	}

	ingressA := topology.RouterId(cfg.TunIngress.TunAIngress)
	ingressB := topology.RouterId(cfg.TunIngress.TunBIngress)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	if cfg.EnableMultipath {
		return enc.Encode(routing.ComputeMultiPathRouting(fabric, ingressA, ingressB))
	}
	return enc.Encode(routing.ComputeRouting(fabric, ingressA, ingressB))
}
