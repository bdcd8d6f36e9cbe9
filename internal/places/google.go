package places

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"
)

// GoogleSource talks to the Google Places web API. Details responses are
// cached per place for the process lifetime and requests are spaced by
// MinInterval to stay under the per-key quota.
type GoogleSource struct {
	BaseURL     string
	APIKey      string
	Language    string
	MinInterval time.Duration
	Client      *http.Client

	mu        sync.Mutex
	lastReqAt time.Time
	cache     map[string]Details
}

type googleSearchItem struct {
	PlaceID          string   `json:"place_id"`
	Name             string   `json:"name"`
	FormattedAddress string   `json:"formatted_address"`
	Rating           *float64 `json:"rating"`
	UserRatingsTotal *int     `json:"user_ratings_total"`
}

type googleSearchResponse struct {
	Status  string             `json:"status"`
	Results []googleSearchItem `json:"results"`
}

type googleDetailsResponse struct {
	Status string           `json:"status"`
	Result googleSearchItem `json:"result"`
}

func (g *GoogleSource) Search(ctx context.Context, query string) ([]SearchResult, error) {
	g.throttle()

	params := url.Values{}
	params.Set("query", query)
	params.Set("key", g.APIKey)
	params.Set("language", g.language())
	params.Set("type", "dentist")

	var payload googleSearchResponse
	if err := g.get(ctx, "/textsearch/json?"+params.Encode(), &payload); err != nil {
		return nil, err
	}
	if payload.Status != "OK" && payload.Status != "ZERO_RESULTS" {
		return nil, fmt.Errorf("places api error: %s", payload.Status)
	}
	return parseSearchItems(payload.Results), nil
}

func (g *GoogleSource) Details(ctx context.Context, placeID string) (Details, error) {
	g.mu.Lock()
	if cached, ok := g.cache[placeID]; ok {
		g.mu.Unlock()
		return cached, nil
	}
	g.mu.Unlock()

	g.throttle()

	params := url.Values{}
	params.Set("place_id", placeID)
	params.Set("key", g.APIKey)
	params.Set("language", g.language())
	params.Set("fields", "place_id,name,formatted_address,rating,user_ratings_total")

	var payload googleDetailsResponse
	if err := g.get(ctx, "/details/json?"+params.Encode(), &payload); err != nil {
		return Details{}, err
	}
	details, err := parseDetails(payload)
	if err != nil {
		return Details{}, err
	}

	g.mu.Lock()
	if g.cache == nil {
		g.cache = map[string]Details{}
	}
	g.cache[placeID] = details
	g.mu.Unlock()
	return details, nil
}

func (g *GoogleSource) get(ctx context.Context, path string, out any) error {
	client := g.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	base := g.BaseURL
	if base == "" {
		base = "https://maps.googleapis.com/maps/api/place"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+path, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("places http error: %s", resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (g *GoogleSource) throttle() {
	interval := g.MinInterval
	if interval <= 0 {
		interval = 200 * time.Millisecond
	}
	g.mu.Lock()
	sleepFor := time.Until(g.lastReqAt.Add(interval))
	if sleepFor > 0 {
		g.mu.Unlock()
		time.Sleep(sleepFor)
		g.mu.Lock()
	}
	g.lastReqAt = time.Now()
	g.mu.Unlock()
}

func (g *GoogleSource) language() string {
	if g.Language == "" {
		return "ja"
	}
	return g.Language
}

func parseSearchItems(items []googleSearchItem) []SearchResult {
	out := make([]SearchResult, 0, len(items))
	for _, it := range items {
		out = append(out, SearchResult{
			PlaceID:      it.PlaceID,
			Name:         it.Name,
			Address:      it.FormattedAddress,
			Rating:       it.Rating,
			TotalReviews: it.UserRatingsTotal,
		})
	}
	return out
}

func parseDetails(payload googleDetailsResponse) (Details, error) {
	if payload.Status == "NOT_FOUND" || payload.Status == "ZERO_RESULTS" {
		return Details{}, ErrNotFound
	}
	if payload.Status != "OK" {
		return Details{}, fmt.Errorf("places api error: %s", payload.Status)
	}
	if payload.Result.PlaceID == "" {
		return Details{}, ErrNotFound
	}
	d := Details{
		PlaceID: payload.Result.PlaceID,
		Name:    payload.Result.Name,
		Address: payload.Result.FormattedAddress,
	}
	if payload.Result.Rating != nil {
		d.Rating = *payload.Result.Rating
	}
	if payload.Result.UserRatingsTotal != nil {
		d.TotalReviews = *payload.Result.UserRatingsTotal
	}
	return d, nil
}
