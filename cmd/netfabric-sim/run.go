// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"netfabric.dev/simulator/internal/clock"
	"netfabric.dev/simulator/internal/config"
	"netfabric.dev/simulator/internal/logging"
	"netfabric.dev/simulator/internal/metrics"
	"netfabric.dev/simulator/internal/packet"
	"netfabric.dev/simulator/internal/prng"
	"netfabric.dev/simulator/internal/processor"
	"netfabric.dev/simulator/internal/simerr"
	"netfabric.dev/simulator/internal/tapbridge"
	"netfabric.dev/simulator/internal/topology"
	"netfabric.dev/simulator/internal/traffic"
)

// cmdRun loads cfg and either replays packet files to completion
// (file-mode) or bridges the two TUN taps until a shutdown signal arrives
// (spec.md §4.8), in both cases exposing a metrics HTTP endpoint.
func cmdRun(args []string) error {
	fs := newFlagSet("run")
	configPath := fs.String("config", "", "path to the HCL configuration file")
	httpAddr := fs.String("http", ":9090", "address the metrics/snapshot HTTP server listens on")
	logLevel := fs.String("log-level", "info", "debug, info, warn, or error")
	fs.Parse(args)

	if *configPath == "" {
		return simerr.New(simerr.KindConfigParseError, "-config is required")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	log := logging.New(parseLevel(*logLevel))
	fabric, err := cfg.BuildFabric()
	if err != nil {
		return err
	}

	ingressA := topology.RouterId(cfg.TunIngress.TunAIngress)
	ingressB := topology.RouterId(cfg.TunIngress.TunBIngress)
	routes := buildRoutes(cfg, fabric, ingressA, ingressB)

	rng := prng.NewFromEntropy()
	if cfg.Simulation.Seed != nil {
		rng = prng.New(*cfg.Simulation.Seed)
	}
	clk := clock.NewReal()
	proc := processor.New(fabric, rng, clk)

	registry := metrics.NewRegistry()
	collector := metrics.NewCollector(fabric, registry, log, 2*time.Second)
	go collector.Start()
	defer collector.Stop()

	mux := http.NewServeMux()
	mux.Handle("/metrics", registry.Handler())
	mux.Handle("/snapshot", collector.SnapshotHandler())
	server := &http.Server{Addr: *httpAddr, Handler: mux}
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("metrics server stopped unexpectedly", "error", err)
		}
	}()
	defer server.Close()

	classifier := buildClassifier(cfg, log)

	if cfg.PacketFile != nil || len(cfg.PacketFiles) > 0 {
		err := runFileMode(cfg, classifier, proc, routes, ingressA, ingressB, log)
		logStats(log, fabric)
		return err
	}

	err = runBridgeMode(cfg, classifier, proc, routes, ingressA, ingressB, clk, log)
	logStats(log, fabric)
	return err
}

// runFileMode implements spec.md §4.8's "File-mode execution is eager and
// non-interactive": iterate files in order, process each line
// synchronously, append processed output, then return — no generator, no
// bridge loop.
func runFileMode(cfg *config.Config, classifier *tapbridge.Classifier, proc *processor.Processor, routes processor.RouteProvider, ingressA, ingressB topology.RouterId, log *logging.Logger) error {
	files := cfg.PacketFiles
	if cfg.PacketFile != nil {
		files = []string{*cfg.PacketFile}
	}
	directives := cfg.PacketInjectTuns
	if cfg.PacketInjectTun != nil {
		directives = []string{*cfg.PacketInjectTun}
	}

	for i, path := range files {
		var explicit *tapbridge.Ingress
		if i < len(directives) {
			explicit = injectionIngress(directives[i])
		}

		tap, err := tapbridge.OpenFileTap(path, log)
		if err != nil {
			return err
		}

		processErr := tapbridge.ProcessFile(tap, func(frame []byte) []byte {
			meta, parseErr := packet.Parse(frame)
			if parseErr != nil {
				log.Warn("dropping malformed packet-file frame", "file", path, "error", parseErr)
				return nil
			}
			ingress := classifier.Classify(explicit, meta.SrcIP)
			start := ingressA
			if ingress == tapbridge.IngressB {
				start = ingressB
			}
			result := proc.Process(routes, start, &meta, tapbridge.Destination(ingress))
			return result.Raw
		})

		closeErr := tap.Close()
		if processErr != nil {
			return processErr
		}
		if closeErr != nil {
			return closeErr
		}
	}
	return nil
}

// runBridgeMode opens both real TUN devices and drives tapbridge.Bridge
// until SIGINT/SIGTERM cancels the context.
func runBridgeMode(cfg *config.Config, classifier *tapbridge.Classifier, proc *processor.Processor, routes processor.RouteProvider, ingressA, ingressB topology.RouterId, clk clock.Clock, log *logging.Logger) error {
	if cfg.Interfaces.RealTunA == nil || cfg.Interfaces.RealTunB == nil {
		return simerr.New(simerr.KindConfigParseError, "real_tun_a and real_tun_b are required outside file-mode")
	}

	tapA, err := tapbridge.NewRealTun(toRealTunConfig(cfg.Interfaces.RealTunA), cfg.Simulation.MTU)
	if err != nil {
		return fmt.Errorf("opening tap A: %w", err)
	}
	tapB, err := tapbridge.NewRealTun(toRealTunConfig(cfg.Interfaces.RealTunB), cfg.Simulation.MTU)
	if err != nil {
		tapA.Close()
		return fmt.Errorf("opening tap B: %w", err)
	}

	var gen *traffic.Generator
	if cfg.VirtualCustomer != nil {
		gen = traffic.New(toTrafficConfig(cfg.VirtualCustomer), clk)
	}

	bridge := &tapbridge.Bridge{
		TapA:           tapA,
		TapB:           tapB,
		Classifier:     classifier,
		Proc:           proc,
		Routes:         routes,
		IngressARouter: ingressA,
		IngressBRouter: ingressB,
		Generator:      gen,
		Log:            log,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info("shutdown signal received, draining bridge loop")
		cancel()
	}()

	return bridge.Run(ctx)
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
