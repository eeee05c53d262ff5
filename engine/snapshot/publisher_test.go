package snapshot

import "testing"

func TestPublisherCurrentAndPreviousAdvance(t *testing.T) {
	p := NewPublisher()
	if p.Current() != nil {
		t.Fatal("expected no current snapshot before first publish")
	}

	a := &Snapshot{Tick: 1}
	p.Publish(a)
	if p.Current() != a {
		t.Fatal("Current should be the just-published snapshot")
	}
	if p.Previous() != nil {
		t.Fatal("Previous should be nil after only one publish")
	}

	b := &Snapshot{Tick: 2}
	p.Publish(b)
	if p.Current() != b {
		t.Fatal("Current should advance to the latest publish")
	}
	if p.Previous() != a {
		t.Fatal("Previous should be the prior current snapshot")
	}
}

func TestPublisherMonotonicTick(t *testing.T) {
	p := NewPublisher()
	for tick := int64(1); tick <= 5; tick++ {
		p.Publish(&Snapshot{Tick: tick})
		if p.Current().Tick != tick {
			t.Fatalf("Current().Tick = %d, want %d", p.Current().Tick, tick)
		}
	}
}
