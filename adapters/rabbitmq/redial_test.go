package rabbitmq

import (
	"testing"
	"time"
)

func TestRedial_GrowsAndCaps(t *testing.T) {
	var r redial

	prev := time.Duration(0)
	for i := range 10 {
		d := r.next()
		if d < minRedial || d > maxRedial {
			t.Fatalf("attempt %d: %v outside [%v, %v]", i, d, minRedial, maxRedial)
		}

		if i < 4 && d <= prev {
			t.Fatalf("attempt %d: %v did not grow from %v", i, d, prev)
		}

		prev = d
	}

	if d := r.next(); d != maxRedial {
		t.Fatalf("want capped at %v, got %v", maxRedial, d)
	}

	r.reset()

	if d := r.next(); d < minRedial || d > minRedial+minRedial/4 {
		t.Fatalf("after reset want about %v, got %v", minRedial, d)
	}
}
