package services

import (
	"context"
	"time"
	"vihub/internal/structures"

	"golang.org/x/time/rate"
)

const defaultPacing = 200 * time.Millisecond

// Pacer gates successive directory-heavy calls in a batch.
type Pacer interface {
	Wait(ctx context.Context) error
}

// RatePacer is a token bucket of size one. A wait issued after an idle
// period still blocks for a full interval.
type RatePacer struct {
	limiter *rate.Limiter
}

func NewRatePacer(conf *structures.Config) Pacer {
	interval := conf.Directory.Pacing
	if interval <= 0 {
		interval = defaultPacing
	}
	return &RatePacer{limiter: rate.NewLimiter(rate.Every(interval), 1)}
}

func (p *RatePacer) Wait(ctx context.Context) error {
	p.limiter.Allow()
	return p.limiter.Wait(ctx)
}
