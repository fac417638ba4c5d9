package service

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"

	dom "github.com/seriessoft-design/spinlist-mobile-app/internal/domain"
	"github.com/seriessoft-design/spinlist-mobile-app/internal/repo"
)

var ErrTooFewOptions = errors.New("at least two options are required")

const (
	defaultRecentLimit = 20
	maxRecentLimit     = 50
)

// DecisionService runs the wheel: one uniform draw over the cleaned options,
// with a write-only audit record per spin.
type DecisionService struct {
	repo repo.DecisionRepo
	intn func(n int) int
}

// NewDecisionService returns a DecisionService drawing from math/rand.
func NewDecisionService(r repo.DecisionRepo) *DecisionService {
	return &DecisionService{repo: r, intn: rand.IntN}
}

// Spin trims and drops blank options, requires at least two survivors, then
// picks one uniformly. A single valid option is a validation error, never a
// deterministic "win". The saved record is the only audit trail; the draw
// itself is not reproducible.
func (s *DecisionService) Spin(ctx context.Context, ownerID int64, options []string) (dom.Decision, error) {
	cleaned := make([]string, 0, len(options))
	for _, o := range options {
		if o = strings.TrimSpace(o); o != "" {
			cleaned = append(cleaned, o)
		}
	}
	if len(cleaned) < 2 {
		return dom.Decision{}, ErrTooFewOptions
	}
	result := cleaned[s.intn(len(cleaned))]
	d, err := s.repo.Create(ctx, dom.Decision{
		OwnerID: ownerID,
		Options: cleaned,
		Result:  result,
	})
	if err != nil {
		return dom.Decision{}, err
	}
	return d, nil
}

// Recent returns the owner's latest spins, newest first.
func (s *DecisionService) Recent(ctx context.Context, ownerID int64, limit int) ([]dom.Decision, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	if limit > maxRecentLimit {
		limit = maxRecentLimit
	}
	return s.repo.Recent(ctx, ownerID, limit)
}

// Shuffle returns the options in random order for the wheel display. The
// input is not touched.
func Shuffle(options []string) []string {
	out := append([]string(nil), options...)
	rand.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}
