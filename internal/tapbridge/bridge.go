// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package tapbridge

import (
	"context"

	"github.com/google/uuid"

	"netfabric.dev/simulator/internal/logging"
	"netfabric.dev/simulator/internal/packet"
	"netfabric.dev/simulator/internal/processor"
	"netfabric.dev/simulator/internal/topology"
	"netfabric.dev/simulator/internal/traffic"
)

// Bridge multiplexes the two real-TUN taps and the optional synthetic
// generator into the processor, per spec.md §4.8's bridge loop.
type Bridge struct {
	TapA, TapB     Tap
	Classifier     *Classifier
	Proc           *processor.Processor
	Routes         processor.RouteProvider
	IngressARouter topology.RouterId
	IngressBRouter topology.RouterId
	Generator      *traffic.Generator
	Log            *logging.Logger
}

type tapResult struct {
	frame []byte
	err   error
}

// Run drives the bridge loop until ctx is cancelled or a fatal tap error
// occurs. It returns nil on a clean shutdown.
func (b *Bridge) Run(ctx context.Context) error {
	if b.Log == nil {
		b.Log = logging.Discard()
	}
	b.Log = b.Log.With("run_id", uuid.NewString())

	if b.Generator != nil {
		burst, err := b.Generator.Burst()
		if err != nil {
			return err
		}
		for _, frame := range burst {
			if err := b.handleGenerated(frame); err != nil {
				return err
			}
		}
	}

	aCh := make(chan tapResult, 1)
	bCh := make(chan tapResult, 1)
	genCh := make(chan []byte, 1)
	errCh := make(chan error, 1)

	go recvLoop(ctx, b.TapA, aCh)
	go recvLoop(ctx, b.TapB, bCh)
	if b.Generator != nil {
		go func() {
			err := b.Generator.Run(ctx, func(frame []byte) {
				select {
				case genCh <- frame:
				case <-ctx.Done():
				}
			})
			if err != nil {
				select {
				case errCh <- err:
				default:
				}
			}
		}()
	}

	for {
		select {
		case <-ctx.Done():
			return b.shutdown()

		case r := <-aCh:
			if r.err != nil {
				b.shutdown()
				return r.err
			}
			if err := b.handleTapFrame(IngressA, r.frame, b.TapB); err != nil {
				return err
			}

		case r := <-bCh:
			if r.err != nil {
				b.shutdown()
				return r.err
			}
			if err := b.handleTapFrame(IngressB, r.frame, b.TapA); err != nil {
				return err
			}

		case frame := <-genCh:
			if err := b.handleGenerated(frame); err != nil {
				return err
			}

		case err := <-errCh:
			b.shutdown()
			return err
		}
	}
}

func recvLoop(ctx context.Context, t Tap, out chan<- tapResult) {
	for {
		frame, err := t.Recv()
		select {
		case out <- tapResult{frame: frame, err: err}:
		case <-ctx.Done():
			return
		}
		if err != nil {
			return
		}
	}
}

// handleTapFrame processes a frame read directly from one of the two
// physical taps: its ingress is known from which tap it arrived on, no
// CIDR classification needed.
func (b *Bridge) handleTapFrame(ingress Ingress, frame []byte, writeTo Tap) error {
	out, ok := b.process(ingress, frame)
	if !ok {
		return nil
	}
	if err := writeTo.Send(out); err != nil && !IsUnseekable(err) {
		return err
	}
	return nil
}

// handleGenerated processes a synthetic frame, whose ingress must be
// classified by source address since it has no originating tap.
func (b *Bridge) handleGenerated(frame []byte) error {
	meta, err := packet.Parse(frame)
	if err != nil {
		b.Log.Warn("dropping malformed synthetic frame", "error", err)
		return nil
	}
	ingress := b.Classifier.Classify(nil, meta.SrcIP)
	out, ok := b.process(ingress, frame)
	if !ok {
		return nil
	}
	writeTo := b.TapB
	if ingress == IngressB {
		writeTo = b.TapA
	}
	if err := writeTo.Send(out); err != nil && !IsUnseekable(err) {
		return err
	}
	return nil
}

func (b *Bridge) process(ingress Ingress, frame []byte) ([]byte, bool) {
	meta, err := packet.Parse(frame)
	if err != nil {
		b.Log.Warn("dropping malformed frame", "error", err)
		return nil, false
	}
	start := b.IngressARouter
	if ingress == IngressB {
		start = b.IngressBRouter
	}
	result := b.Proc.Process(b.Routes, start, &meta, Destination(ingress))
	return result.Raw, true
}

func (b *Bridge) shutdown() error {
	errA := b.TapA.Close()
	errB := b.TapB.Close()
	if errA != nil {
		return errA
	}
	return errB
}
