package service

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"testing"
	"time"

	dom "github.com/seriessoft-design/spinlist-mobile-app/internal/domain"
)

type fakeDecisionRepo struct {
	saved []dom.Decision
}

func (r *fakeDecisionRepo) Create(_ context.Context, d dom.Decision) (dom.Decision, error) {
	d.ID = "dec-" + strconv.Itoa(len(r.saved)+1)
	d.CreatedAt = time.Now().UTC()
	r.saved = append(r.saved, d)
	return d, nil
}

func (r *fakeDecisionRepo) Recent(_ context.Context, ownerID int64, limit int) ([]dom.Decision, error) {
	var out []dom.Decision
	for i := len(r.saved) - 1; i >= 0 && len(out) < limit; i-- {
		if r.saved[i].OwnerID == ownerID {
			out = append(out, r.saved[i])
		}
	}
	return out, nil
}

func TestSpinPicksOnlyGivenOptions(t *testing.T) {
	repo := &fakeDecisionRepo{}
	svc := NewDecisionService(repo)

	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		d, err := svc.Spin(context.Background(), 1, []string{"A", "B"})
		if err != nil {
			t.Fatalf("Spin: %v", err)
		}
		if d.Result != "A" && d.Result != "B" {
			t.Fatalf("result %q not among options", d.Result)
		}
		seen[d.Result] = true
	}
	if !seen["A"] || !seen["B"] {
		t.Error("200 spins never hit one of two options; draw looks degenerate")
	}
}

func TestSpinDrawIsOverCleanedOptions(t *testing.T) {
	repo := &fakeDecisionRepo{}
	svc := NewDecisionService(repo)
	svc.intn = func(n int) int { return n - 1 } // always the last survivor

	d, err := svc.Spin(context.Background(), 1, []string{"  pizza ", "", "  ", "sushi"})
	if err != nil {
		t.Fatalf("Spin: %v", err)
	}
	if d.Result != "sushi" {
		t.Errorf("result = %q, want draw over trimmed non-blank options", d.Result)
	}
	want := []string{"pizza", "sushi"}
	if len(d.Options) != len(want) {
		t.Fatalf("saved options = %v, want %v", d.Options, want)
	}
	for i := range want {
		if d.Options[i] != want[i] {
			t.Fatalf("saved options = %v, want %v", d.Options, want)
		}
	}
}

func TestSpinRequiresTwoOptions(t *testing.T) {
	svc := NewDecisionService(&fakeDecisionRepo{})

	cases := [][]string{
		nil,
		{},
		{"A"},
		{"A", "  ", ""}, // one survivor after trimming
	}
	for _, options := range cases {
		if _, err := svc.Spin(context.Background(), 1, options); !errors.Is(err, ErrTooFewOptions) {
			t.Errorf("Spin(%v) err = %v, want ErrTooFewOptions", options, err)
		}
	}
}

func TestSpinWritesAuditRecord(t *testing.T) {
	repo := &fakeDecisionRepo{}
	svc := NewDecisionService(repo)

	if _, err := svc.Spin(context.Background(), 9, []string{"stay", "go"}); err != nil {
		t.Fatalf("Spin: %v", err)
	}
	if len(repo.saved) != 1 {
		t.Fatalf("saved %d records, want 1", len(repo.saved))
	}
	rec := repo.saved[0]
	if rec.OwnerID != 9 || rec.Result == "" || len(rec.Options) != 2 {
		t.Errorf("audit record incomplete: %+v", rec)
	}
}

func TestRecentLimits(t *testing.T) {
	repo := &fakeDecisionRepo{}
	svc := NewDecisionService(repo)
	for i := 0; i < 30; i++ {
		if _, err := svc.Spin(context.Background(), 1, []string{"A", "B"}); err != nil {
			t.Fatalf("Spin: %v", err)
		}
	}

	got, err := svc.Recent(context.Background(), 1, 0)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != defaultRecentLimit {
		t.Errorf("default limit gave %d records, want %d", len(got), defaultRecentLimit)
	}

	got, _ = svc.Recent(context.Background(), 1, 1000)
	if len(got) > maxRecentLimit {
		t.Errorf("limit not clamped: %d", len(got))
	}
}

func TestShuffleKeepsElements(t *testing.T) {
	in := []string{"a", "b", "c", "d", "e"}
	out := Shuffle(in)
	if len(out) != len(in) {
		t.Fatalf("shuffle changed length: %d", len(out))
	}
	sortedIn := append([]string(nil), in...)
	sortedOut := append([]string(nil), out...)
	sort.Strings(sortedIn)
	sort.Strings(sortedOut)
	for i := range sortedIn {
		if sortedIn[i] != sortedOut[i] {
			t.Fatalf("shuffle changed elements: %v", out)
		}
	}
	// Input untouched.
	if in[0] != "a" || in[4] != "e" {
		t.Error("Shuffle mutated its input")
	}
}
