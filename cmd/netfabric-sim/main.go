// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Command netfabric-sim drives a deterministic network fabric simulation
// from an HCL configuration file: either replaying packet files eagerly
// or bridging two TUN devices until shut down.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
)

func main() {
	args := os.Args[1:]
	subcmd := "run"
	rest := args
	if len(args) > 0 && !isFlag(args[0]) {
		subcmd = args[0]
		rest = args[1:]
	}

	var err error
	switch subcmd {
	case "run":
		err = cmdRun(rest)
	case "routes":
		err = cmdRoutes(rest)
	case "stats":
		err = cmdStats(rest)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q; expected run, routes, or stats\n", subcmd)
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("netfabric-sim %s: %v", subcmd, err)
	}
}

func isFlag(s string) bool {
	return len(s) > 0 && s[0] == '-'
}

func newFlagSet(name string) *flag.FlagSet {
	return flag.NewFlagSet(name, flag.ExitOnError)
}
