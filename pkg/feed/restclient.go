package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"fpchart/internal/chart/store"
)

// RESTClient talks to the feed service's HTTP surface: symbol list, bar
// history and trade history.
type RESTClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewRESTClient(baseURL string, timeout time.Duration) *RESTClient {
	return &RESTClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *RESTClient) HTTPClient() *http.Client {
	return c.httpClient
}

// GetSymbols fetches the tradable symbol list. A response that is valid JSON
// but not an array is treated as an empty list, not an error.
func (c *RESTClient) GetSymbols(ctx context.Context) ([]string, error) {
	body, err := c.get(ctx, c.baseURL+"/symbols")
	if err != nil {
		return nil, err
	}

	var symbols []string
	if err := json.Unmarshal(body, &symbols); err != nil {
		if json.Valid(body) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("decode symbols: %w", err)
	}
	return symbols, nil
}

// GetHistory fetches the raw footprint bar history for a symbol. Entries are
// decoded individually so one malformed record drops that record, never the
// whole batch; a non-array body yields an empty history.
func (c *RESTClient) GetHistory(ctx context.Context, symbol string) ([]store.RawBar, error) {
	body, err := c.get(ctx, c.baseURL+"/history/"+url.PathEscape(symbol))
	if err != nil {
		return nil, err
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(body, &entries); err != nil {
		if json.Valid(body) {
			return []store.RawBar{}, nil
		}
		return nil, fmt.Errorf("decode history: %w", err)
	}

	bars := make([]store.RawBar, 0, len(entries))
	for _, e := range entries {
		var raw store.RawBar
		if err := json.Unmarshal(e, &raw); err != nil {
			continue // malformed entry, drop it
		}
		bars = append(bars, raw)
	}
	return bars, nil
}

// GetTrades fetches the trade records for a symbol. Callers treat any error
// as an empty trade list; trades are an overlay, never a load failure.
func (c *RESTClient) GetTrades(ctx context.Context, symbol string) ([]store.Trade, error) {
	body, err := c.get(ctx, c.baseURL+"/api/trades/"+url.PathEscape(symbol))
	if err != nil {
		return nil, err
	}

	var trades []store.Trade
	if err := json.Unmarshal(body, &trades); err != nil {
		return nil, fmt.Errorf("decode trades: %w", err)
	}
	return trades, nil
}

func (c *RESTClient) get(ctx context.Context, endpoint string) ([]byte, error) {
	// Construct the GET request with context for timeout/cancel support
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("feed error (%d): %s", resp.StatusCode, body)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	return body, nil
}
