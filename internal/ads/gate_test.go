package ads

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
)

type fakeCounter struct {
	counts  map[string]int64
	incrErr error
}

func newFakeCounter() *fakeCounter {
	return &fakeCounter{counts: map[string]int64{}}
}

func (c *fakeCounter) Incr(_ context.Context, key string) (int64, error) {
	if c.incrErr != nil {
		return 0, c.incrErr
	}
	c.counts[key]++
	return c.counts[key], nil
}

func (c *fakeCounter) Reset(_ context.Context, key string) error {
	delete(c.counts, key)
	return nil
}

type fakeProvider struct {
	unit string
	err  error
}

func (p *fakeProvider) BannerUnit() string { return "banner-unit" }

func (p *fakeProvider) Interstitial(_ context.Context) (string, error) {
	return p.unit, p.err
}

func TestGateFiresEveryFifthAction(t *testing.T) {
	counter := newFakeCounter()
	gate := NewGate(counter, &fakeProvider{unit: "int-unit"}, 5, zerolog.Nop())

	for round := 0; round < 3; round++ {
		for i := 1; i <= 4; i++ {
			if _, show := gate.TrackAction(context.Background(), 7, false); show {
				t.Fatalf("round %d action %d: fired early", round, i)
			}
		}
		ad, show := gate.TrackAction(context.Background(), 7, false)
		if !show {
			t.Fatalf("round %d: 5th action did not fire", round)
		}
		if ad.Unit != "int-unit" {
			t.Fatalf("round %d: unit = %q", round, ad.Unit)
		}
	}
}

func TestGateProExempt(t *testing.T) {
	counter := newFakeCounter()
	gate := NewGate(counter, &fakeProvider{unit: "int-unit"}, 5, zerolog.Nop())

	for i := 0; i < 20; i++ {
		if _, show := gate.TrackAction(context.Background(), 7, true); show {
			t.Fatal("pro user got an interstitial")
		}
	}
	if len(counter.counts) != 0 {
		t.Fatal("pro actions were counted")
	}
}

func TestGateResetsEvenWhenProviderFails(t *testing.T) {
	counter := newFakeCounter()
	gate := NewGate(counter, &fakeProvider{err: errors.New("no fill")}, 5, zerolog.Nop())

	for i := 1; i <= 5; i++ {
		if _, show := gate.TrackAction(context.Background(), 9, false); show {
			t.Fatal("fired despite provider failure")
		}
	}
	// Window was spent by the failed attempt; next action starts from 1.
	if n := counter.counts[actionKeyPrefix+"9"]; n != 0 {
		t.Fatalf("counter not reset after failed show attempt, n = %d", n)
	}
	if _, show := gate.TrackAction(context.Background(), 9, false); show {
		t.Fatal("fired on first action of new window")
	}
}

func TestGateCounterOutage(t *testing.T) {
	counter := newFakeCounter()
	counter.incrErr = errors.New("redis down")
	gate := NewGate(counter, &fakeProvider{unit: "int-unit"}, 5, zerolog.Nop())

	// Best-effort: the action goes through, just without an ad.
	if _, show := gate.TrackAction(context.Background(), 3, false); show {
		t.Fatal("fired while counter is unavailable")
	}
}

func TestGateUsersCountedSeparately(t *testing.T) {
	counter := newFakeCounter()
	gate := NewGate(counter, &fakeProvider{unit: "int-unit"}, 5, zerolog.Nop())

	for i := 0; i < 4; i++ {
		gate.TrackAction(context.Background(), 1, false)
		gate.TrackAction(context.Background(), 2, false)
	}
	if _, show := gate.TrackAction(context.Background(), 1, false); !show {
		t.Fatal("user 1 should fire on their own 5th action")
	}
	if _, show := gate.TrackAction(context.Background(), 2, false); !show {
		t.Fatal("user 2 should fire on their own 5th action")
	}
}
