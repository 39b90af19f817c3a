package resilience

import (
	"errors"
	"testing"
	"time"
)

func TestCircuitBreaker_OpensAfterThreshold(t *testing.T) {
	t.Parallel()

	b := NewCircuitBreaker(3, time.Minute, 1)

	for i := 0; i < 2; i++ {
		if err := b.Allow(); err != nil {
			t.Fatalf("closed breaker rejected request %d: %v", i, err)
		}
		b.RecordFailure()
	}
	if b.State() != CircuitStateClosed {
		t.Fatalf("state = %v, want closed below threshold", b.State())
	}

	b.RecordFailure()
	if b.State() != CircuitStateOpen {
		t.Fatalf("state = %v, want open at threshold", b.State())
	}
	if err := b.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("open breaker allowed a request, err = %v", err)
	}
}

func TestCircuitBreaker_SuccessResetsFailureCount(t *testing.T) {
	t.Parallel()

	b := NewCircuitBreaker(2, time.Minute, 1)

	b.RecordFailure()
	b.RecordSuccess()
	b.RecordFailure()

	if b.State() != CircuitStateClosed {
		t.Fatalf("state = %v, want closed after interleaved success", b.State())
	}
}

func TestCircuitBreaker_HalfOpenAfterTimeoutThenCloses(t *testing.T) {
	t.Parallel()

	b := NewCircuitBreaker(1, 10*time.Second, 1)

	current := time.Unix(1_700_000_000, 0)
	b.now = func() time.Time { return current }

	b.RecordFailure()
	if err := b.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("freshly opened breaker allowed a request, err = %v", err)
	}

	current = current.Add(11 * time.Second)
	if b.State() != CircuitStateHalfOpen {
		t.Fatalf("state = %v, want half_open after timeout", b.State())
	}
	if err := b.Allow(); err != nil {
		t.Fatalf("half-open probe rejected: %v", err)
	}

	b.RecordSuccess()
	if b.State() != CircuitStateClosed {
		t.Fatalf("state = %v, want closed after successful probe", b.State())
	}
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	t.Parallel()

	b := NewCircuitBreaker(1, 10*time.Second, 1)

	current := time.Unix(1_700_000_000, 0)
	b.now = func() time.Time { return current }

	b.RecordFailure()
	current = current.Add(11 * time.Second)

	if err := b.Allow(); err != nil {
		t.Fatalf("half-open probe rejected: %v", err)
	}
	b.RecordFailure()

	if b.State() != CircuitStateOpen {
		t.Fatalf("state = %v, want open after failed probe", b.State())
	}
	if err := b.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("reopened breaker allowed a request, err = %v", err)
	}
}

func TestCircuitBreaker_HalfOpenLimitsInFlightProbes(t *testing.T) {
	t.Parallel()

	b := NewCircuitBreaker(1, 10*time.Second, 2)

	current := time.Unix(1_700_000_000, 0)
	b.now = func() time.Time { return current }

	b.RecordFailure()
	current = current.Add(11 * time.Second)

	if err := b.Allow(); err != nil {
		t.Fatalf("first probe rejected: %v", err)
	}
	if err := b.Allow(); err != nil {
		t.Fatalf("second probe rejected: %v", err)
	}
	if err := b.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("third probe should exceed the half-open budget, err = %v", err)
	}

	b.RecordSuccess()
	b.RecordSuccess()
	if b.State() != CircuitStateClosed {
		t.Fatalf("state = %v, want closed after both probes succeeded", b.State())
	}
}

func TestNormalizeCircuitBreakerConfig(t *testing.T) {
	t.Parallel()

	got := NormalizeCircuitBreakerConfig(CircuitBreakerConfig{Enabled: true})
	want := DefaultCircuitBreakerConfig()

	if got.FailureThreshold != want.FailureThreshold ||
		got.OpenTimeout != want.OpenTimeout ||
		got.HalfOpenMaxReq != want.HalfOpenMaxReq {
		t.Fatalf("normalized config = %+v, want defaults %+v", got, want)
	}

	custom := NormalizeCircuitBreakerConfig(CircuitBreakerConfig{
		FailureThreshold: 9,
		OpenTimeout:      time.Minute,
		HalfOpenMaxReq:   3,
	})
	if custom.FailureThreshold != 9 || custom.OpenTimeout != time.Minute || custom.HalfOpenMaxReq != 3 {
		t.Fatalf("valid config was altered: %+v", custom)
	}
}
