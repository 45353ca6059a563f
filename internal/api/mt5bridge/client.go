// Package mt5bridge is the HTTP client for the MetaTrader 5 bridge, the
// process that exposes the terminal's market data, account state and order
// entry over a small JSON API. The core consumes it through the broker
// contracts only.
package mt5bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpClient "github.com/Alias1177/Sniper/internal/platform/http"
	"github.com/Alias1177/Sniper/models"
)

// Client is the MT5 bridge API client.
type Client struct {
	baseURL    string
	httpClient *httpClient.Client
	logger     zerolog.Logger
}

// ClientOptions holds options for creating a new bridge client.
type ClientOptions struct {
	BaseURL         string
	RequestTimeout  time.Duration
	RequestsPerSec  int
	MaxRetryTimeout time.Duration
}

// NewClient creates a new bridge client.
func NewClient(options ClientOptions) *Client {
	return &Client{
		baseURL: options.BaseURL,
		httpClient: httpClient.NewClient(httpClient.ClientOptions{
			Timeout:         options.RequestTimeout,
			RequestsPerSec:  options.RequestsPerSec,
			MaxRetryTimeout: options.MaxRetryTimeout,
		}),
		logger: log.With().Str("component", "mt5bridge_client").Logger(),
	}
}

type barPayload struct {
	Time   int64   `json:"time"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"real_volume"`
}

type barsResponse struct {
	Bars  []barPayload `json:"bars"`
	Error string       `json:"error,omitempty"`
}

// GetCandles fetches up to count bars for symbol/timeframe, oldest first.
// The bridge may return fewer bars than requested.
func (c *Client) GetCandles(ctx context.Context, symbol string, timeframe models.Timeframe, count int) ([]models.Candle, error) {
	if symbol == "" || timeframe <= 0 || count <= 0 {
		return nil, fmt.Errorf("invalid bars request: symbol=%q timeframe=%d count=%d", symbol, timeframe, count)
	}

	endpoint := fmt.Sprintf("%s/bars?symbol=%s&timeframe=%d&count=%d",
		c.baseURL, url.QueryEscape(symbol), timeframe, count)

	var data barsResponse
	if err := c.getJSON(ctx, endpoint, &data); err != nil {
		return nil, err
	}
	if data.Error != "" {
		return nil, fmt.Errorf("bridge error: %s", data.Error)
	}
	if len(data.Bars) == 0 {
		c.logger.Warn().Str("symbol", symbol).Msg("no bars in response")
		return nil, fmt.Errorf("empty bar data for %s", symbol)
	}

	candles := make([]models.Candle, 0, len(data.Bars))
	for _, b := range data.Bars {
		candles = append(candles, models.Candle{
			Time:   time.Unix(b.Time, 0).UTC(),
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Close:  b.Close,
			Volume: b.Volume,
		})
	}
	sort.Slice(candles, func(i, j int) bool { return candles[i].Time.Before(candles[j].Time) })

	c.logger.Debug().Str("symbol", symbol).Int("count", len(candles)).Msg("fetched bars")
	return candles, nil
}

// GetAccountInfo fetches the current account snapshot.
func (c *Client) GetAccountInfo(ctx context.Context) (*models.AccountInfo, error) {
	var data struct {
		Equity   float64 `json:"equity"`
		Currency string  `json:"currency"`
		Error    string  `json:"error,omitempty"`
	}
	if err := c.getJSON(ctx, c.baseURL+"/account", &data); err != nil {
		return nil, err
	}
	if data.Error != "" {
		return nil, fmt.Errorf("bridge error: %s", data.Error)
	}
	return &models.AccountInfo{Equity: data.Equity, Currency: data.Currency}, nil
}

// GetSymbolInfo fetches the trading constraints for a symbol.
func (c *Client) GetSymbolInfo(ctx context.Context, symbol string) (*models.SymbolInfo, error) {
	var data struct {
		models.SymbolInfo
		Error string `json:"error,omitempty"`
	}
	endpoint := fmt.Sprintf("%s/symbol?name=%s", c.baseURL, url.QueryEscape(symbol))
	if err := c.getJSON(ctx, endpoint, &data); err != nil {
		return nil, err
	}
	if data.Error != "" {
		return nil, fmt.Errorf("bridge error: %s", data.Error)
	}
	info := data.SymbolInfo
	if info.Name == "" {
		info.Name = symbol
	}
	return &info, nil
}

// GetOpenPositions fetches all currently open positions.
func (c *Client) GetOpenPositions(ctx context.Context) ([]models.Position, error) {
	var data struct {
		Positions []models.Position `json:"positions"`
		Error     string            `json:"error,omitempty"`
	}
	if err := c.getJSON(ctx, c.baseURL+"/positions", &data); err != nil {
		return nil, err
	}
	if data.Error != "" {
		return nil, fmt.Errorf("bridge error: %s", data.Error)
	}
	return data.Positions, nil
}

// GetTradesSince fetches closed trades with a close time at or after since.
func (c *Client) GetTradesSince(ctx context.Context, since time.Time) ([]models.Trade, error) {
	var data struct {
		Trades []models.Trade `json:"trades"`
		Error  string         `json:"error,omitempty"`
	}
	endpoint := fmt.Sprintf("%s/history?from=%s", c.baseURL, url.QueryEscape(since.Format(time.RFC3339)))
	if err := c.getJSON(ctx, endpoint, &data); err != nil {
		return nil, err
	}
	if data.Error != "" {
		return nil, fmt.Errorf("bridge error: %s", data.Error)
	}
	return data.Trades, nil
}

// Submit sends a sized order to the bridge and returns the order identifier
// assigned by the terminal. Submission is not retried beyond the transport
// layer's own retry policy.
func (c *Client) Submit(ctx context.Context, req models.OrderRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("encoding order: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/order", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.DoRequest(ctx, httpReq)
	if err != nil {
		return "", fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	var data struct {
		OrderID string `json:"order_id"`
		Error   string `json:"error,omitempty"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return "", fmt.Errorf("parsing order response: %w", err)
	}
	if data.Error != "" {
		return "", fmt.Errorf("order rejected: %s", data.Error)
	}

	c.logger.Info().
		Str("symbol", req.Symbol).
		Str("action", string(req.Action)).
		Float64("volume", req.Volume).
		Str("order_id", data.OrderID).
		Msg("order submitted")
	return data.OrderID, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.DoRequest(ctx, req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		c.logger.Error().Err(err).Str("response", string(body)).Msg("error parsing JSON")
		return fmt.Errorf("parsing JSON: %w", err)
	}
	return nil
}
