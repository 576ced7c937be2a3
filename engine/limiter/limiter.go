// Package limiter applies a token-bucket rate limit to an extraction engine.
package limiter

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/iklobato/pdftable/engine"
	"github.com/iklobato/pdftable/model"
)

type limitedEngine struct {
	limiter *rate.Limiter
	engine  engine.Engine
}

// New wraps e so that calls wait for a token from l. A nil l disables the
// limit.
func New(l *rate.Limiter, e engine.Engine) engine.Engine {
	if l == nil {
		return e
	}

	return &limitedEngine{
		limiter: l,
		engine:  e,
	}
}

// PerSecond builds a limiter allowing n extractions per second with a
// burst of n. Zero or negative n returns nil.
func PerSecond(n int) *rate.Limiter {
	if n <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(n), n)
}

func (p *limitedEngine) Extract(ctx context.Context, input engine.Input, options *engine.Options) ([]model.RawTable, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	return p.engine.Extract(ctx, input, options)
}
