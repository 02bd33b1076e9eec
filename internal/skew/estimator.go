// Package skew estimates the offset between the switch clock and the local
// clock so elapsed-time calculations can be corrected.
package skew

// DefaultCapacity bounds the sample ring to the most recent qualifying
// interactions
const DefaultCapacity = 10

// Sample is one (localQueueTime, queueTime) pair from a resolved interaction
type Sample struct {
	LocalQueueTime int
	QueueTime      int
}

// Estimator maintains a bounded ring of samples and a cached estimate of
// localClock - remoteClock in seconds. Owned and mutated by the
// reconciliation engine only.
type Estimator struct {
	samples  []Sample
	capacity int
	estimate float64
}

// NewEstimator creates an estimator with the given ring capacity
func NewEstimator(capacity int) *Estimator {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Estimator{capacity: capacity}
}

// Offer inserts a qualifying sample, evicting the oldest when the ring is
// full, and recomputes the cached estimate.
func (e *Estimator) Offer(localQueueTime, queueTime int) {
	e.samples = append(e.samples, Sample{LocalQueueTime: localQueueTime, QueueTime: queueTime})
	if len(e.samples) > e.capacity {
		e.samples = e.samples[len(e.samples)-e.capacity:]
	}
	e.estimate = e.compute()
}

// Estimate recomputes and returns the skew estimate in seconds
func (e *Estimator) Estimate() float64 {
	e.estimate = e.compute()
	return e.estimate
}

// Current returns the cached estimate without recomputing
func (e *Estimator) Current() float64 { return e.estimate }

// Size returns the number of held samples
func (e *Estimator) Size() int { return len(e.samples) }

func (e *Estimator) compute() float64 {
	if len(e.samples) == 0 {
		return 0
	}
	sum := 0
	for _, s := range e.samples {
		sum += s.LocalQueueTime - s.QueueTime
	}
	return float64(sum) / float64(len(e.samples))
}
