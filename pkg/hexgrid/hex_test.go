package hexgrid

import "testing"

func TestNeighborsAreDistanceOne(t *testing.T) {
	center := New(2, -1)
	for i, n := range center.Neighbors() {
		if d := center.Distance(n); d != 1 {
			t.Errorf("neighbor %d: expected distance 1, got %d", i, d)
		}
		if !center.IsAdjacent(n) {
			t.Errorf("neighbor %d: IsAdjacent returned false", i)
		}
	}
}

func TestDistanceSymmetric(t *testing.T) {
	a := New(0, 0)
	b := New(3, -2)
	if a.Distance(b) != b.Distance(a) {
		t.Errorf("distance not symmetric: %d vs %d", a.Distance(b), b.Distance(a))
	}
}

func TestDistanceZero(t *testing.T) {
	h := New(5, 5)
	if h.Distance(h) != 0 {
		t.Errorf("expected 0, got %d", h.Distance(h))
	}
}

func TestRingSizes(t *testing.T) {
	center := New(0, 0)
	if len(center.Ring(0)) != 1 {
		t.Errorf("ring 0 should have 1 hex")
	}
	for radius := 1; radius <= 4; radius++ {
		ring := center.Ring(radius)
		if len(ring) != 6*radius {
			t.Errorf("ring %d: expected %d hexes, got %d", radius, 6*radius, len(ring))
		}
		for _, h := range ring {
			if center.Distance(h) != radius {
				t.Errorf("ring %d: hex %v is at distance %d", radius, h, center.Distance(h))
			}
		}
	}
}

func TestSpiralRangeCoversEveryDistance(t *testing.T) {
	center := New(1, -1)
	spiral := center.SpiralRange(3)
	want := 1 + 6 + 12 + 18
	if len(spiral) != want {
		t.Errorf("expected %d hexes, got %d", want, len(spiral))
	}
}

func TestIsWithinRange(t *testing.T) {
	center := New(0, 0)
	far := New(4, 0)
	if center.IsWithinRange(far, 3) {
		t.Errorf("expected %v to be outside range 3 of %v", far, center)
	}
	if !center.IsWithinRange(far, 4) {
		t.Errorf("expected %v to be within range 4 of %v", far, center)
	}
}
