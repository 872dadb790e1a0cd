package pipeline

import "sync"

// ProgressFunc receives percent in [0,100] and a short stage description.
type ProgressFunc func(percent int, stage string)

// Stage percent ranges. Each stage interpolates within its range; reported
// percent never decreases.
const (
	progressPassesStart   = 5
	progressPassesEnd     = 40
	progressCompare       = 45
	progressVerifyStart   = 50
	progressVerifyEnd     = 70
	progressResolveStart  = 70
	progressResolveEnd    = 80
	progressCoverageStart = 80
	progressCoverageEnd   = 90
	progressDone          = 100
)

// progressTracker serializes and monotonizes progress callbacks.
type progressTracker struct {
	mu   sync.Mutex
	fn   ProgressFunc
	last int
}

func newProgressTracker(fn ProgressFunc) *progressTracker {
	return &progressTracker{fn: fn}
}

// report emits percent/stage, clamped so percent never moves backward.
func (t *progressTracker) report(percent int, stage string) {
	if t.fn == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if percent < t.last {
		percent = t.last
	}
	if percent > 100 {
		percent = 100
	}
	t.last = percent
	t.fn(percent, stage)
}

// interpolate maps done/total onto [start, end].
func interpolate(start, end, done, total int) int {
	if total <= 0 {
		return end
	}
	if done > total {
		done = total
	}
	return start + (end-start)*done/total
}
