package crawler

import "testing"

func TestPoolStartsAtMinConcurrency(t *testing.T) {
	p := NewPool(PoolConfig{MinConcurrency: 5, MaxConcurrency: 20, MaxSessions: 50})
	if p.Limit() != 5 {
		t.Errorf("expected initial limit 5, got %d", p.Limit())
	}
}

func TestReportSuccessRampsAfterThresholdWithNoRecentThrottle(t *testing.T) {
	p := NewPool(PoolConfig{MinConcurrency: 5, MaxConcurrency: 20, MaxSessions: 50})
	for i := 0; i < 24; i++ {
		p.ReportSuccess()
	}
	if p.Limit() != 5 {
		t.Fatalf("expected limit unchanged before 25th success, got %d", p.Limit())
	}
	p.ReportSuccess()
	if p.Limit() != 6 {
		t.Errorf("expected limit to ramp to 6 after 25 successes, got %d", p.Limit())
	}
}

func TestReportSuccessNeverExceedsMaxConcurrency(t *testing.T) {
	p := NewPool(PoolConfig{MinConcurrency: 5, MaxConcurrency: 6, MaxSessions: 50})
	for round := 0; round < 3; round++ {
		for i := 0; i < 25; i++ {
			p.ReportSuccess()
		}
	}
	if p.Limit() != 6 {
		t.Errorf("expected limit capped at MaxConcurrency 6, got %d", p.Limit())
	}
}

func TestReportThrottledHalvesLimitBoundedByMin(t *testing.T) {
	p := NewPool(PoolConfig{MinConcurrency: 5, MaxConcurrency: 20, MaxSessions: 50})
	for i := 0; i < 25; i++ {
		p.ReportSuccess()
	}
	if p.Limit() != 6 {
		t.Fatalf("expected limit 6 before throttle, got %d", p.Limit())
	}
	p.ReportThrottled()
	if p.Limit() != 5 {
		t.Errorf("expected limit halved to 5 (floor at MinConcurrency), got %d", p.Limit())
	}
}

func TestAcquireReleaseRoundTrip(t *testing.T) {
	p := NewPool(PoolConfig{MinConcurrency: 1, MaxConcurrency: 1, MaxSessions: 1})
	p.Acquire()
	done := make(chan struct{})
	go func() {
		p.Acquire()
		close(done)
	}()
	select {
	case <-done:
		t.Fatal("second Acquire should block while the only slot is held")
	default:
	}
	p.Release()
	<-done
	p.Release()
}
