package progress

import (
	"time"

	"golang.org/x/time/rate"
)

// Throttle forwards at most one step report per interval to next. Final step
// reports and attempt summaries always pass. A non-positive interval returns
// next unchanged.
func Throttle(next Sink, interval time.Duration) Sink {
	if interval <= 0 {
		return next
	}
	return &throttled{
		next:    next,
		limiter: rate.NewLimiter(rate.Every(interval), 1),
	}
}

type throttled struct {
	next    Sink
	limiter *rate.Limiter
}

func (t *throttled) Step(r Report) {
	if r.Final || t.limiter.Allow() {
		t.next.Step(r)
	}
}

func (t *throttled) AttemptDone(r AttemptReport) {
	t.next.AttemptDone(r)
}
