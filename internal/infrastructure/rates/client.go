package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Dysin/cross-border/internal/domain"
)

const (
	apiBaseURL     = "https://v6.exchangerate-api.com/v6"
	requestTimeout = 10 * time.Second
)

// Client consulta las tasas vigentes contra una moneda base en
// ExchangeRate-API (v6).
type Client struct {
	apiKey     string
	base       string
	httpClient *http.Client
}

// NewClient construye el cliente para la moneda base indicada.
func NewClient(apiKey, base string) *Client {
	return &Client{
		apiKey:     apiKey,
		base:       base,
		httpClient: &http.Client{Timeout: requestTimeout},
	}
}

// latestResponse es el cuerpo relevante de /latest/{base}.
type latestResponse struct {
	Result          string                     `json:"result"`
	ErrorType       string                     `json:"error-type"`
	ConversionRates map[string]decimal.Decimal `json:"conversion_rates"`
}

// FetchLatest descarga las tasas vigentes y devuelve la tabla lista para
// consultar o persistir.
func (c *Client) FetchLatest(ctx context.Context) (*Table, error) {
	url := fmt.Sprintf("%s/%s/latest/%s", apiBaseURL, c.apiKey, c.base)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("tasas: armar request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: consulta a ExchangeRate-API: %v", domain.ErrRateUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: ExchangeRate-API HTTP %d: %s", domain.ErrRateUnavailable, resp.StatusCode, body)
	}

	var payload latestResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: respuesta ilegible: %v", domain.ErrRateUnavailable, err)
	}
	if payload.Result != "success" || len(payload.ConversionRates) == 0 {
		return nil, fmt.Errorf("%w: respuesta incompleta (%s)", domain.ErrRateUnavailable, payload.ErrorType)
	}
	return NewTable(c.base, payload.ConversionRates), nil
}
