// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package camera

import (
	"context"
	"time"

	"github.com/hashicorp/go-hclog"
	"gocv.io/x/gocv"
)

// DefaultPollInterval matches the display refresh of the stream sink.
const DefaultPollInterval = 100 * time.Millisecond

// Source produces decoded frames. *Fetcher implements it.
type Source interface {
	Fetch(ctx context.Context) (gocv.Mat, error)
}

// Poller periodically fetches frames into a Slot. It runs independently of
// the controller's own captures.
type Poller struct {
	source   Source
	slot     *Slot
	interval time.Duration
	logger   hclog.Logger
	frameCb  func(gocv.Mat)
}

// NewPoller creates a poller. interval <= 0 uses DefaultPollInterval.
func NewPoller(source Source, slot *Slot, interval time.Duration, logger hclog.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Poller{
		source:   source,
		slot:     slot,
		interval: interval,
		logger:   logger.Named("camera"),
	}
}

// OnFrame registers a callback that may modify each frame (for example to
// annotate it) before it is published.
func (p *Poller) OnFrame(fn func(gocv.Mat)) {
	p.frameCb = fn
}

// Run fetches on every tick until ctx is done. Fetch errors are logged and
// do not stop the loop.
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	failures := 0
	for {
		if err := p.pollOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			failures++
			// first failure, then every 50th
			if failures == 1 || failures%50 == 0 {
				p.logger.Warn("frame fetch failed", "error", err, "failures", failures)
			}
		} else if failures > 0 {
			p.logger.Info("frame fetch recovered", "after_failures", failures)
			failures = 0
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (p *Poller) pollOnce(ctx context.Context) error {
	frame, err := p.source.Fetch(ctx)
	defer frame.Close()
	if err != nil {
		return err
	}
	if p.frameCb != nil {
		p.frameCb(frame)
	}
	p.slot.Publish(frame)
	return nil
}
