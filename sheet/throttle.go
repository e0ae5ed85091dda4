package sheet

import (
	"context"

	"golang.org/x/time/rate"
)

// throttled waits on a token bucket before every call to the wrapped sheet.
type throttled struct {
	s       Sheet
	limiter *rate.Limiter
}

// Throttle wraps s so that every operation first waits on limiter. Use it for
// remote stores with request quotas. A nil limiter returns s unchanged.
func Throttle(s Sheet, limiter *rate.Limiter) Sheet {
	if limiter == nil {
		return s
	}
	return &throttled{s: s, limiter: limiter}
}

func (t *throttled) ReadAll(ctx context.Context) ([][]any, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return t.s.ReadAll(ctx)
}

func (t *throttled) WriteRow(ctx context.Context, row int, values []any) error {
	if err := t.limiter.Wait(ctx); err != nil {
		return err
	}
	return t.s.WriteRow(ctx, row, values)
}

func (t *throttled) DeleteRow(ctx context.Context, row int) (bool, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return false, err
	}
	return t.s.DeleteRow(ctx, row)
}
