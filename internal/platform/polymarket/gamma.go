// Package polymarket implements the Market Data Provider against the
// Polymarket Gamma API.
package polymarket

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/alanyoungcy/polyresolver/internal/domain"
)

// GammaClient is the REST client for the Polymarket Gamma API, which provides
// market discovery, metadata, event grouping, and full-text search.
type GammaClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewGammaClient creates a new Gamma API client.
//
// baseURL is the Gamma API root, e.g. "https://gamma-api.polymarket.com".
func NewGammaClient(baseURL string) *GammaClient {
	return &GammaClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// FetchMarkets returns up to limit active markets, most traded first.
func (g *GammaClient) FetchMarkets(ctx context.Context, limit int) ([]domain.MarketRecord, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("active", "true")
	params.Set("closed", "false")
	params.Set("order", "volume24hr")
	params.Set("ascending", "false")

	body, err := g.doGet(ctx, "/markets?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("polymarket/gamma: fetch markets: %w", err)
	}

	var apiMarkets []APIMarket
	if err := json.Unmarshal(body, &apiMarkets); err != nil {
		return nil, fmt.Errorf("polymarket/gamma: decode markets: %w", err)
	}

	markets := make([]domain.MarketRecord, 0, len(apiMarkets))
	for i := range apiMarkets {
		markets = append(markets, apiMarkets[i].ToDomainMarket())
	}
	return markets, nil
}

// FetchMarketByID returns a single market by its numeric id or 0x-prefixed
// condition id.
func (g *GammaClient) FetchMarketByID(ctx context.Context, id string) (domain.MarketRecord, error) {
	// Condition ids are only queryable as a filter, not as a path segment.
	if strings.HasPrefix(id, "0x") {
		params := url.Values{}
		params.Set("condition_ids", id)

		body, err := g.doGet(ctx, "/markets?"+params.Encode())
		if err != nil {
			return domain.MarketRecord{}, fmt.Errorf("polymarket/gamma: fetch market by condition %s: %w", id, err)
		}

		var apiMarkets []APIMarket
		if err := json.Unmarshal(body, &apiMarkets); err != nil {
			return domain.MarketRecord{}, fmt.Errorf("polymarket/gamma: decode markets: %w", err)
		}
		if len(apiMarkets) == 0 {
			return domain.MarketRecord{}, fmt.Errorf("polymarket/gamma: %w: condition_id=%s", domain.ErrNotFound, id)
		}
		return apiMarkets[0].ToDomainMarket(), nil
	}

	body, err := g.doGet(ctx, "/markets/"+url.PathEscape(id))
	if err != nil {
		return domain.MarketRecord{}, fmt.Errorf("polymarket/gamma: fetch market %s: %w", id, err)
	}

	var apiMarket APIMarket
	if err := json.Unmarshal(body, &apiMarket); err != nil {
		return domain.MarketRecord{}, fmt.Errorf("polymarket/gamma: decode market: %w", err)
	}
	return apiMarket.ToDomainMarket(), nil
}

// FetchMarketBySlug returns a single market looked up by its URL slug.
func (g *GammaClient) FetchMarketBySlug(ctx context.Context, slug string) (domain.MarketRecord, error) {
	params := url.Values{}
	params.Set("slug", slug)

	body, err := g.doGet(ctx, "/markets?"+params.Encode())
	if err != nil {
		return domain.MarketRecord{}, fmt.Errorf("polymarket/gamma: fetch market by slug %s: %w", slug, err)
	}

	var apiMarkets []APIMarket
	if err := json.Unmarshal(body, &apiMarkets); err != nil {
		return domain.MarketRecord{}, fmt.Errorf("polymarket/gamma: decode markets: %w", err)
	}
	if len(apiMarkets) == 0 {
		return domain.MarketRecord{}, fmt.Errorf("polymarket/gamma: %w: slug=%s", domain.ErrNotFound, slug)
	}
	return apiMarkets[0].ToDomainMarket(), nil
}

// FetchEventBySlug returns an event and its contained markets by slug.
func (g *GammaClient) FetchEventBySlug(ctx context.Context, slug string) (domain.EventRecord, error) {
	params := url.Values{}
	params.Set("slug", slug)

	body, err := g.doGet(ctx, "/events?"+params.Encode())
	if err != nil {
		return domain.EventRecord{}, fmt.Errorf("polymarket/gamma: fetch event by slug %s: %w", slug, err)
	}

	var events []APIEvent
	if err := json.Unmarshal(body, &events); err != nil {
		return domain.EventRecord{}, fmt.Errorf("polymarket/gamma: decode events: %w", err)
	}
	if len(events) == 0 {
		return domain.EventRecord{}, fmt.Errorf("polymarket/gamma: %w: event slug=%s", domain.ErrNotFound, slug)
	}
	return events[0].ToDomainEvent(), nil
}

// FetchSearchMarkets runs the public full-text search and returns the first
// event hit together with its leading market.
func (g *GammaClient) FetchSearchMarkets(ctx context.Context, term string) (domain.SearchResult, error) {
	params := url.Values{}
	params.Set("q", term)
	params.Set("limit_per_type", "5")
	params.Set("events_status", "active")

	body, err := g.doGet(ctx, "/public-search?"+params.Encode())
	if err != nil {
		return domain.SearchResult{}, fmt.Errorf("polymarket/gamma: search %q: %w", term, err)
	}

	var resp APISearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return domain.SearchResult{}, fmt.Errorf("polymarket/gamma: decode search results: %w", err)
	}

	for i := range resp.Events {
		if len(resp.Events[i].Markets) == 0 {
			continue
		}
		ev := resp.Events[i].ToDomainEvent()
		return domain.SearchResult{Market: &ev.Markets[0], Event: &ev}, nil
	}
	return domain.SearchResult{}, fmt.Errorf("polymarket/gamma: %w: search=%q", domain.ErrNotFound, term)
}

// --------------------------------------------------------------------------
// Internal helpers
// --------------------------------------------------------------------------

// doGet sends an unauthenticated GET request to the Gamma API.
func (g *GammaClient) doGet(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if err := checkHTTPStatus(resp.StatusCode, body); err != nil {
		return nil, err
	}
	return body, nil
}

func checkHTTPStatus(statusCode int, body []byte) error {
	if statusCode >= 200 && statusCode < 300 {
		return nil
	}

	bodyStr := string(body)
	switch statusCode {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", domain.ErrNotFound, bodyStr)
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s", domain.ErrUnauthorized, bodyStr)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", domain.ErrRateLimited, bodyStr)
	default:
		return fmt.Errorf("HTTP %d: %s", statusCode, bodyStr)
	}
}

// Compile-time interface check.
var _ domain.MarketDataProvider = (*GammaClient)(nil)
