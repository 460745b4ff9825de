package github

import (
	"context"
	"errors"
	"net"
	"os"
	"sync"
	"time"
)

// ErrUpstreamDown is returned when the breaker is open and the GitHub API is
// not being called.
var ErrUpstreamDown = errors.New("github: upstream circuit open")

// BreakerState represents the breaker state machine position.
type BreakerState int

const (
	// BreakerClosed allows all requests through.
	BreakerClosed BreakerState = iota
	// BreakerOpen rejects all requests.
	BreakerOpen
	// BreakerHalfOpen allows a single probe request.
	BreakerHalfOpen
)

func (s BreakerState) String() string {
	switch s {
	case BreakerClosed:
		return "closed"
	case BreakerOpen:
		return "open"
	case BreakerHalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

// BreakerConfig holds breaker parameters.
type BreakerConfig struct {
	ErrorThreshold float64       // weighted error rate to trip
	MinSamples     int           // minimum requests before the breaker can open
	WindowSeconds  int           // sliding window duration in seconds
	OpenTimeout    time.Duration // time in open before allowing a probe
}

// DefaultBreakerConfig returns defaults tuned for the GitHub REST API, which
// throttles aggressively but recovers fast.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		ErrorThreshold: 0.5,
		MinSamples:     5,
		WindowSeconds:  60,
		OpenTimeout:    time.Minute,
	}
}

// slot holds error and request counts for a 1-second window slot.
type slot struct {
	errors float64
	total  int
}

// window is a fixed-size ring buffer of 1-second slots.
type window struct {
	slots    [60]slot
	size     int
	head     int
	headTime int64 // unix seconds of head slot
}

func newWindow(seconds int) window {
	if seconds <= 0 || seconds > 60 {
		seconds = 60
	}
	return window{size: seconds}
}

// advance moves the head to the current second, clearing slots that expired.
func (w *window) advance(nowSec int64) {
	if w.headTime == 0 {
		w.headTime = nowSec
		return
	}
	gap := nowSec - w.headTime
	if gap <= 0 {
		return
	}
	for i := range min(int(gap), w.size) {
		w.slots[(w.head+1+i)%w.size] = slot{}
	}
	w.head = (w.head + int(gap)) % w.size
	w.headTime = nowSec
}

func (w *window) record(weight float64, now time.Time) {
	w.advance(now.Unix())
	w.slots[w.head].total++
	w.slots[w.head].errors += weight
}

func (w *window) errorRate(now time.Time) (rate float64, samples int) {
	w.advance(now.Unix())
	var errs float64
	var total int
	for i := range w.size {
		errs += w.slots[i].errors
		total += w.slots[i].total
	}
	if total == 0 {
		return 0, 0
	}
	return errs / float64(total), total
}

func (w *window) reset() {
	for i := range w.size {
		w.slots[i] = slot{}
	}
	w.head = 0
	w.headTime = 0
}

// Breaker guards the GitHub API with a sliding-window error rate detector.
// When the weighted error rate trips the threshold the breaker opens and
// sync calls fail fast instead of burning the rate limit budget on a dead
// or throttling upstream.
type Breaker struct {
	mu          sync.Mutex
	state       BreakerState
	window      window
	openedAt    time.Time
	probing     bool // a half-open probe is in flight
	threshold   float64
	minSamples  int
	openTimeout time.Duration
}

// NewBreaker creates a breaker with the given config.
func NewBreaker(cfg BreakerConfig) *Breaker {
	return &Breaker{
		state:       BreakerClosed,
		window:      newWindow(cfg.WindowSeconds),
		threshold:   cfg.ErrorThreshold,
		minSamples:  cfg.MinSamples,
		openTimeout: cfg.OpenTimeout,
	}
}

// State returns the current breaker state.
func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Allow reports whether a request may proceed.
func (b *Breaker) Allow() bool {
	now := time.Now()
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case BreakerClosed:
		return true
	case BreakerOpen:
		if now.Sub(b.openedAt) >= b.openTimeout {
			b.state = BreakerHalfOpen
			b.probing = true
			return true
		}
		return false
	case BreakerHalfOpen:
		if !b.probing {
			b.probing = true
			return true
		}
		return false
	}
	return false
}

// RecordSuccess records a successful request outcome.
func (b *Breaker) RecordSuccess() {
	now := time.Now()
	b.mu.Lock()
	defer b.mu.Unlock()
	b.window.record(0, now)

	if b.state == BreakerHalfOpen {
		b.state = BreakerClosed
		b.probing = false
		b.window.reset()
	}
}

// RecordError records a failed request with the given weight.
func (b *Breaker) RecordError(weight float64) {
	now := time.Now()
	b.mu.Lock()
	defer b.mu.Unlock()
	b.window.record(weight, now)

	switch b.state {
	case BreakerClosed:
		rate, samples := b.window.errorRate(now)
		if samples >= b.minSamples && rate >= b.threshold {
			b.state = BreakerOpen
			b.openedAt = now
		}
	case BreakerHalfOpen:
		b.state = BreakerOpen
		b.openedAt = now
		b.probing = false
	}
}

// classifyError returns the breaker weight for a sync error.
//
// GitHub signals primary rate limiting with 403 as well as 429, so both get
// half weight: throttling is expected load shedding, not an outage. Timeouts
// weigh heaviest because they also tie up a worker for the full deadline.
func classifyError(err error) float64 {
	if err == nil {
		return 0
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return 1.5
	}
	var se *StatusError
	if errors.As(err, &se) {
		switch {
		case se.Status == 403 || se.Status == 429:
			return 0.5
		case se.Status >= 500:
			return 1.0
		default:
			// 404s and other client errors are per-repo problems, not upstream health.
			return 0.0
		}
	}
	var netErr *net.OpError
	if errors.As(err, &netErr) {
		return 1.0
	}
	return 1.0
}
