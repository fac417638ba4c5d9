package ads

import (
	"context"
	"errors"
)

// Provider is the narrow capability surface of the ad vendor. The gate and
// handlers depend on this, never on a concrete SDK, so tests run against a
// fake.
type Provider interface {
	// BannerUnit returns the passive banner unit ID for the client to render.
	BannerUnit() string
	// Interstitial prepares a full-screen ad and returns the unit the client
	// should show. Failing here is non-critical and is never surfaced to the
	// user.
	Interstitial(ctx context.Context) (string, error)
}

// ErrNoUnit means the vendor unit is not configured for this deployment.
var ErrNoUnit = errors.New("ad unit not configured")

// StaticProvider serves fixed unit IDs from config.
type StaticProvider struct {
	banner       string
	interstitial string
}

// NewStaticProvider returns a Provider over fixed unit IDs.
func NewStaticProvider(banner, interstitial string) *StaticProvider {
	return &StaticProvider{banner: banner, interstitial: interstitial}
}

func (p *StaticProvider) BannerUnit() string { return p.banner }

func (p *StaticProvider) Interstitial(_ context.Context) (string, error) {
	if p.interstitial == "" {
		return "", ErrNoUnit
	}
	return p.interstitial, nil
}
