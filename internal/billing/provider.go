package billing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Package is one purchasable subscription option.
type Package struct {
	Identifier   string `json:"identifier"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	PriceString  string `json:"price_string"`
	CurrencyCode string `json:"currency_code"`
}

// Entitlement is the vendor's answer about what the user owns right now.
type Entitlement struct {
	IsPro     bool       `json:"is_pro"`
	ProductID string     `json:"product_id"`
	ExpiresAt *time.Time `json:"expires_at"`
}

// Provider is the narrow capability surface of the billing vendor.
type Provider interface {
	Packages(ctx context.Context) ([]Package, error)
	Purchase(ctx context.Context, appUserID, packageID string) (Entitlement, error)
	Restore(ctx context.Context, appUserID string) (Entitlement, error)
}

// RESTProvider talks to the vendor's HTTP API. It is a thin pass-through:
// no retries, no caching; a failed call is surfaced to the caller and the
// operation is abandoned.
type RESTProvider struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewRESTProvider returns a Provider over the vendor endpoint.
func NewRESTProvider(baseURL, apiKey string, timeout time.Duration) *RESTProvider {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &RESTProvider{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

func (p *RESTProvider) Packages(ctx context.Context) ([]Package, error) {
	var out struct {
		Packages []Package `json:"packages"`
	}
	if err := p.do(ctx, http.MethodGet, "/v1/packages", nil, &out); err != nil {
		return nil, err
	}
	return out.Packages, nil
}

func (p *RESTProvider) Purchase(ctx context.Context, appUserID, packageID string) (Entitlement, error) {
	body := map[string]string{"app_user_id": appUserID, "package_id": packageID}
	var out Entitlement
	if err := p.do(ctx, http.MethodPost, "/v1/purchase", body, &out); err != nil {
		return Entitlement{}, err
	}
	return out, nil
}

func (p *RESTProvider) Restore(ctx context.Context, appUserID string) (Entitlement, error) {
	body := map[string]string{"app_user_id": appUserID}
	var out Entitlement
	if err := p.do(ctx, http.MethodPost, "/v1/restore", body, &out); err != nil {
		return Entitlement{}, err
	}
	return out, nil
}

func (p *RESTProvider) do(ctx context.Context, method, path string, body, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("billing request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("billing %s %s: status %d", method, path, resp.StatusCode)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
