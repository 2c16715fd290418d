package momo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/dikabo/taxi-money-driver/pkg/httpclient"
)

const (
	DisburseEndpoint = "/v1/disbursements"
	StatusEndpoint   = "/v1/disbursements/status"
)

// Gateway is the only component that crosses the trust boundary to move real
// money. Disburse submits a payout order; Status queries the provider for the
// terminal outcome of a previously submitted order.
type Gateway interface {
	Disburse(ctx context.Context, request DisburseRequest) (DisburseResponse, error)
	Status(ctx context.Context, reference string) (StatusResponse, error)
}

type gateway struct {
	client httpclient.HTTPClient
	config Config
}

func NewGateway(cfg Config, client httpclient.HTTPClient) Gateway {
	return &gateway{config: cfg, client: client}
}

func (g *gateway) Disburse(ctx context.Context, request DisburseRequest) (DisburseResponse, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(request); err != nil {
		return DisburseResponse{}, fmt.Errorf("encoding error: %w", err)
	}

	resp, err := g.client.Post(ctx, g.config.BaseURL+DisburseEndpoint, &buf, g.headers())
	if err != nil {
		return DisburseResponse{}, transportError(err)
	}

	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		var response DisburseResponse
		if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
			return DisburseResponse{}, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
		}

		return response, nil
	}

	return DisburseResponse{}, statusError(resp)
}

func (g *gateway) Status(ctx context.Context, reference string) (StatusResponse, error) {
	url := fmt.Sprintf("%s%s?external_reference=%s", g.config.BaseURL, StatusEndpoint, reference)

	resp, err := g.client.Get(ctx, url, g.headers())
	if err != nil {
		return StatusResponse{}, transportError(err)
	}

	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		var response StatusResponse
		if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
			return StatusResponse{}, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
		}

		return response, nil
	}

	return StatusResponse{}, statusError(resp)
}

func (g *gateway) headers() map[string]string {
	return map[string]string{
		"Content-Type":  "application/json",
		"Authorization": "Bearer " + g.config.APIKey,
	}
}

func transportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrTimeout
	}

	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}

// statusError maps a non-2xx response. Client errors are synchronous
// rejections; anything else is ambiguous and left to reconciliation.
func statusError(resp *http.Response) error {
	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		var body errorResponse
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return &RejectionError{StatusCode: resp.StatusCode, ProviderCode: fmt.Sprintf("HTTP_%d", resp.StatusCode)}
		}

		return &RejectionError{StatusCode: resp.StatusCode, ProviderCode: body.Code, ProviderMessage: body.Message}
	}

	return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
}
