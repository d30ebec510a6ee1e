package sketch

import (
	"math"
	"testing"
)

// =============================================================================
// Constructor Tests: New()
// =============================================================================

func TestNew(t *testing.T) {
	tests := []struct {
		name        string
		numCounters int64
		wantMask    uint64
	}{
		{"rounds_up", 1000, 1023},
		{"power_of_two", 64, 63},
		{"zero_defaults", 0, 1},
		{"negative_defaults", -1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(tt.numCounters)
			if s.mask != tt.wantMask {
				t.Errorf("New(%d).mask = %d, want %d", tt.numCounters, s.mask, tt.wantMask)
			}
		})
	}
}

// =============================================================================
// Increment / Estimate Tests
// =============================================================================

func TestIncrement(t *testing.T) {
	t.Run("single", func(t *testing.T) {
		s := New(1000)
		s.Increment(12345)
		if got := s.Estimate(12345); got != 1 {
			t.Errorf("Estimate() = %d, want 1", got)
		}
	})

	t.Run("boundary_hashes", func(t *testing.T) {
		s := New(1000)
		s.Increment(0)
		s.Increment(math.MaxUint64)
		if got := s.Estimate(0); got < 1 {
			t.Errorf("Estimate(0) = %d, want >= 1", got)
		}
		if got := s.Estimate(math.MaxUint64); got < 1 {
			t.Errorf("Estimate(MaxUint64) = %d, want >= 1", got)
		}
	})

	t.Run("repeated", func(t *testing.T) {
		s := New(1000)
		for i := 0; i < 5; i++ {
			s.Increment(999)
		}
		if got := s.Estimate(999); got != 5 {
			t.Errorf("Estimate() = %d, want 5", got)
		}
	})

	t.Run("saturates", func(t *testing.T) {
		s := New(64)
		for i := 0; i < 20; i++ {
			s.Increment(5)
		}
		if got := s.Estimate(5); got != MaxCount {
			t.Errorf("Estimate() = %d, want %d", got, MaxCount)
		}
	})
}

func TestEstimate_Unseen(t *testing.T) {
	s := New(1 << 16)
	s.Increment(1)
	if got := s.Estimate(2); got != 0 {
		t.Errorf("Estimate() of unseen hash = %d, want 0", got)
	}
}

// =============================================================================
// Reset / Clear Tests
// =============================================================================

func TestReset_HalvesCounters(t *testing.T) {
	s := New(64)
	for i := 0; i < 20; i++ {
		s.Increment(5)
	}
	s.Reset()
	if got := s.Estimate(5); got != MaxCount>>1 {
		t.Errorf("Estimate() after Reset = %d, want %d", got, MaxCount>>1)
	}
}

func TestClear(t *testing.T) {
	s := New(64)
	s.Increment(100)
	s.Clear()
	if got := s.Estimate(100); got != 0 {
		t.Errorf("Estimate() after Clear = %d, want 0", got)
	}
	s.Increment(200)
	if got := s.Estimate(200); got != 1 {
		t.Errorf("Estimate() after Clear+Increment = %d, want 1", got)
	}
}
