// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package indicator

import (
	"context"
	"math/rand"
	"time"
)

const (
	celebrateSteps = 256
	celebrateDelay = 2 * time.Millisecond
)

// Celebrator plays the "calibration complete" animation: the LEDs light in
// turn with random colors that fade out over the run, then all go dark.
type Celebrator struct {
	Rand  *rand.Rand
	Delay time.Duration
	// Sleep waits between steps; it returns early when ctx is done.
	Sleep func(ctx context.Context, d time.Duration)
}

// NewCelebrator returns a Celebrator with the stock timing.
func NewCelebrator() *Celebrator {
	return &Celebrator{
		Rand:  rand.New(rand.NewSource(time.Now().UnixNano())),
		Delay: celebrateDelay,
		Sleep: sleepCtx,
	}
}

// Run plays the animation on s. Cancelling ctx cuts it short; the LEDs are
// switched off either way. The returned error is the first LED failure.
func (c *Celebrator) Run(ctx context.Context, s Sink) error {
	for i := 0; i < celebrateSteps; i++ {
		if ctx.Err() != nil {
			break
		}
		fade := celebrateSteps - i
		col := Color{
			R: c.channel(fade),
			G: c.channel(fade),
			B: c.channel(fade),
		}
		if err := s.Set(i%Count, col); err != nil {
			_ = GoDark(s)
			return err
		}
		c.Sleep(ctx, c.Delay)
	}
	return GoDark(s)
}

func (c *Celebrator) channel(fade int) byte {
	return byte(c.Rand.Intn(256) * fade / celebrateSteps)
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
