package skew

import "testing"

func TestEstimateNoSamples(t *testing.T) {
	e := NewEstimator(10)
	if got := e.Estimate(); got != 0 {
		t.Errorf("expected 0 with no samples, got %f", got)
	}
}

func TestEstimateMeanOfDiffs(t *testing.T) {
	e := NewEstimator(10)
	e.Offer(10, 8)  // diff 2
	e.Offer(20, 15) // diff 5

	if got := e.Estimate(); got != 3.5 {
		t.Errorf("expected 3.5, got %f", got)
	}
}

func TestOfferRecomputesCached(t *testing.T) {
	e := NewEstimator(10)
	e.Offer(10, 8)
	if got := e.Current(); got != 2 {
		t.Errorf("expected cached estimate 2 after offer, got %f", got)
	}
}

func TestRingEvictsOldest(t *testing.T) {
	e := NewEstimator(3)
	e.Offer(10, 0) // diff 10, evicted below
	e.Offer(2, 0)
	e.Offer(4, 0)
	e.Offer(6, 0)

	if e.Size() != 3 {
		t.Fatalf("expected 3 samples, got %d", e.Size())
	}
	// Mean of 2, 4, 6
	if got := e.Estimate(); got != 4 {
		t.Errorf("expected 4, got %f", got)
	}
}

func TestNegativeSkew(t *testing.T) {
	e := NewEstimator(10)
	e.Offer(5, 9) // local clock behind remote
	if got := e.Estimate(); got != -4 {
		t.Errorf("expected -4, got %f", got)
	}
}
