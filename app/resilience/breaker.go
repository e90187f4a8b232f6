package resilience

// DefaultBreakerThreshold is the consecutive-failure count at which a
// breaker starts short-circuiting.
const DefaultBreakerThreshold = 3

// Breaker tracks consecutive failures for one named operation. Once the
// counter reaches the threshold, callers should stop invoking the operation
// and treat the result as absent. A breaker is created fresh for each
// ingestion cycle; the counter never survives across cycles.
type Breaker struct {
	threshold int
	fails     int
}

func NewBreaker(threshold int) *Breaker {
	if threshold < 1 {
		threshold = DefaultBreakerThreshold
	}
	return &Breaker{threshold: threshold}
}

// Allow reports whether the guarded operation may be invoked.
func (b *Breaker) Allow() bool {
	return b.fails < b.threshold
}

// Success resets the consecutive-failure counter.
func (b *Breaker) Success() {
	b.fails = 0
}

// Failure records one more consecutive failure.
func (b *Breaker) Failure() {
	b.fails++
}

func (b *Breaker) Failures() int {
	return b.fails
}
