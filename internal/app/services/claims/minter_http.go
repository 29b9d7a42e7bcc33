package claims

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aptos-community/offer-service/internal/app/domain/offer"
	"github.com/aptos-community/offer-service/pkg/logger"
)

// HTTPMinter posts mint requests to the external transaction submitter. The
// submitter owns signing and chain interaction; this client only carries the
// resolved issuance material across.
type HTTPMinter struct {
	client   *http.Client
	endpoint *url.URL
	apiKey   string
	log      *logger.Logger
}

var _ Minter = (*HTTPMinter)(nil)

// NewHTTPMinter constructs a minter targeting the given submitter endpoint.
func NewHTTPMinter(client *http.Client, endpoint, apiKey string, log *logger.Logger) (*HTTPMinter, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("minter endpoint required")
	}
	parsed, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse minter endpoint: %w", err)
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if log == nil {
		log = logger.NewDefault("http-minter")
	}
	return &HTTPMinter{
		client:   client,
		endpoint: parsed,
		apiKey:   strings.TrimSpace(apiKey),
		log:      log,
	}, nil
}

func (m *HTTPMinter) Mint(ctx context.Context, rec offer.Record, recipient string) (string, error) {
	payload := struct {
		OfferSlug     string `json:"offer_slug"`
		Network       string `json:"network"`
		ModuleAddress string `json:"module_address"`
		SigningKey    string `json:"signing_key"`
		Recipient     string `json:"recipient"`
	}{
		OfferSlug:     rec.Slug,
		Network:       string(rec.Network),
		ModuleAddress: rec.ModuleAddress,
		SigningKey:    rec.SigningKey,
		Recipient:     recipient,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode mint request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint.String(), bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build mint request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if m.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+m.apiKey)
	}

	resp, err := m.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("mint request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return "", fmt.Errorf("submitter status %d", resp.StatusCode)
	}

	var result struct {
		TxHash string `json:"tx_hash"`
		Error  string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode submitter response: %w", err)
	}
	if result.Error != "" {
		return "", fmt.Errorf("submitter rejected mint: %s", result.Error)
	}
	if result.TxHash == "" {
		return "", fmt.Errorf("submitter returned no tx hash")
	}
	return result.TxHash, nil
}
