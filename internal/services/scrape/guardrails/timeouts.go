// Package guardrails holds cross cutting safety helpers for scrape
package guardrails

import (
	"context"
	"time"
)

// Timeouts is an optional budget bundle for one month of portal work.
// Zero values mean no extra timeout at that level
type Timeouts struct {
	// Month is the overall time budget for one (year, month) pass
	Month time.Duration

	// Fetch caps a single portal page fetch
	Fetch time.Duration

	// Download caps a single archive download
	Download time.Duration
}

// WithMonth returns a context limited by the month budget without extending any parent deadline.
// if Month is zero it returns a cancelable child that simply inherits the parent deadline
func WithMonth(parent context.Context, t Timeouts) (context.Context, context.CancelFunc) {
	return withChildTimeout(parent, t.Month)
}

// ForFetch returns a sub context for a page fetch bounded by Fetch and any remaining parent budget
func ForFetch(parent context.Context, t Timeouts) (context.Context, context.CancelFunc) {
	return withChildTimeout(parent, t.Fetch)
}

// ForDownload returns a sub context for an archive download bounded by Download and any remaining parent budget
func ForDownload(parent context.Context, t Timeouts) (context.Context, context.CancelFunc) {
	return withChildTimeout(parent, t.Download)
}

// Remaining returns the time until the deadline on ctx or zero when none is set or already expired
func Remaining(ctx context.Context) time.Duration {
	if dl, ok := ctx.Deadline(); ok {
		d := time.Until(dl)
		if d > 0 {
			return d
		}
	}
	return 0
}

// withChildTimeout chooses the tighter of the requested duration and any parent remainder.
// Never extends the parent deadline.
// When d is zero it returns a simple cancelable child inheriting the parent deadline
func withChildTimeout(parent context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(parent)
	}
	if rem := Remaining(parent); rem > 0 && rem < d {
		return context.WithTimeout(parent, rem)
	}
	return context.WithTimeout(parent, d)
}
