package backoff

import "testing"

func TestPolicy_ResetsOnLargeWindow(t *testing.T) {
	p := NewPolicy()
	for i := 0; i < 3; i++ {
		p.Observe(0)
	}
	d := p.Observe(LargeWindowThreshold + 1)
	if d.Sleep {
		t.Error("Observe with large window returned Sleep=true")
	}
	if d.State != Eager {
		t.Errorf("State = %v, want Eager", d.State)
	}
	if p.ConsecutiveEmptyPolls() != 0 {
		t.Errorf("ConsecutiveEmptyPolls = %d, want 0", p.ConsecutiveEmptyPolls())
	}
}

func TestPolicy_ResetsAfterFourSleeps(t *testing.T) {
	p := NewPolicy()
	var lastSleepCount int
	for i := 0; i < 4; i++ {
		d := p.Observe(0)
		if !d.Sleep {
			t.Fatalf("iteration %d: Sleep=false, want true", i)
		}
		lastSleepCount++
	}
	if lastSleepCount != MaxConsecutiveEmptyPolls {
		t.Fatalf("sleeps observed = %d, want %d", lastSleepCount, MaxConsecutiveEmptyPolls)
	}

	d := p.Observe(0)
	if d.Sleep {
		t.Error("5th Observe returned Sleep=true, want false (back-off reset)")
	}
	if p.ConsecutiveEmptyPolls() != 0 {
		t.Errorf("ConsecutiveEmptyPolls = %d, want 0 after reset", p.ConsecutiveEmptyPolls())
	}
}

func TestPolicy_BackOffBound(t *testing.T) {
	p := NewPolicy()
	sleeps := 0
	polls := 0
	const iterations = 34 // ceil(1000/30): the most 30ms sleeps that fit in one second
	for i := 0; i < iterations; i++ {
		d := p.Observe(0)
		polls++
		if d.Sleep {
			sleeps++
		}
	}
	if polls == 0 {
		t.Error("no poll cycles executed")
	}
	// Every fifth empty poll skips its sleep, so 34 polls sleep 28 times.
	if want := iterations - iterations/(MaxConsecutiveEmptyPolls+1); sleeps != want {
		t.Errorf("sleeps = %d, want %d", sleeps, want)
	}
}
