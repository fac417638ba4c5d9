package billing

import (
	"context"
	"errors"
	"strconv"

	"github.com/rs/zerolog"
)

var (
	// ErrUnavailable means billing is not configured for this deployment.
	ErrUnavailable = errors.New("billing is not configured")
	// ErrBadUserRef means the webhook referenced a user ID we cannot parse.
	ErrBadUserRef = errors.New("invalid app_user_id")
)

// ProFlagStore is the slice of the user repository billing needs: projecting
// the entitlement onto the is_pro cache column.
type ProFlagStore interface {
	SetPro(ctx context.Context, id int64, isPro bool) error
}

// Service bridges the vendor and the user record. The vendor is the source of
// truth for entitlements; is_pro on the user row is only a cache updated here.
type Service struct {
	provider Provider
	users    ProFlagStore
	log      zerolog.Logger
}

// NewService creates a Service. provider may be nil when billing is disabled;
// every vendor call then fails with ErrUnavailable, while webhook projection
// keeps working.
func NewService(provider Provider, users ProFlagStore, log zerolog.Logger) *Service {
	return &Service{provider: provider, users: users, log: log}
}

func (s *Service) Packages(ctx context.Context) ([]Package, error) {
	if s.provider == nil {
		return nil, ErrUnavailable
	}
	return s.provider.Packages(ctx)
}

// Purchase forwards the buy to the vendor and projects the result onto the
// user. A failed projection does not fail the purchase: the vendor already
// committed it, and the next webhook or restore heals the cache.
func (s *Service) Purchase(ctx context.Context, userID int64, packageID string) (Entitlement, error) {
	if s.provider == nil {
		return Entitlement{}, ErrUnavailable
	}
	ent, err := s.provider.Purchase(ctx, strconv.FormatInt(userID, 10), packageID)
	if err != nil {
		return Entitlement{}, err
	}
	s.project(ctx, userID, ent)
	return ent, nil
}

// Restore re-queries the vendor for what the user owns and re-projects it.
func (s *Service) Restore(ctx context.Context, userID int64) (Entitlement, error) {
	if s.provider == nil {
		return Entitlement{}, ErrUnavailable
	}
	ent, err := s.provider.Restore(ctx, strconv.FormatInt(userID, 10))
	if err != nil {
		return Entitlement{}, err
	}
	s.project(ctx, userID, ent)
	return ent, nil
}

// WebhookEvent is the entitlement-change push from the vendor.
type WebhookEvent struct {
	AppUserID string `json:"app_user_id" binding:"required"`
	Type      string `json:"type"`
	IsPro     bool   `json:"is_pro"`
	ProductID string `json:"product_id"`
}

// ApplyWebhook projects a pushed entitlement change onto the user row.
func (s *Service) ApplyWebhook(ctx context.Context, ev WebhookEvent) error {
	userID, err := strconv.ParseInt(ev.AppUserID, 10, 64)
	if err != nil || userID <= 0 {
		return ErrBadUserRef
	}
	if err := s.users.SetPro(ctx, userID, ev.IsPro); err != nil {
		return err
	}
	s.log.Info().Int64("user_id", userID).Bool("is_pro", ev.IsPro).
		Str("type", ev.Type).Msg("entitlement projected")
	return nil
}

func (s *Service) project(ctx context.Context, userID int64, ent Entitlement) {
	if err := s.users.SetPro(ctx, userID, ent.IsPro); err != nil {
		s.log.Warn().Err(err).Int64("user_id", userID).Msg("is_pro projection failed")
	}
}
