// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package main

import (
	"netfabric.dev/simulator/internal/tui"
)

// cmdStats launches the live dashboard against a running instance's
// snapshot endpoint.
func cmdStats(args []string) error {
	fs := newFlagSet("stats")
	url := fs.String("url", "http://localhost:9090/snapshot", "snapshot endpoint of a running netfabric-sim instance")
	fs.Parse(args)

	_, err := tui.NewProgram(tui.HTTPSource{URL: *url}).Run()
	return err
}
