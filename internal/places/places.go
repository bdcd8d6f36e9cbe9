package places

import (
	"context"
	"errors"
	"strings"
)

var ErrNotFound = errors.New("place not found")

type SearchResult struct {
	PlaceID      string   `json:"place_id"`
	Name         string   `json:"name"`
	Address      string   `json:"address"`
	Rating       *float64 `json:"rating,omitempty"`
	TotalReviews *int     `json:"total_reviews,omitempty"`
}

type Details struct {
	PlaceID      string  `json:"place_id"`
	Name         string  `json:"name"`
	Address      string  `json:"address"`
	Rating       float64 `json:"rating"`
	TotalReviews int     `json:"total_reviews"`
}

// Source is a black-box review-data provider. Search finds candidate
// clinics for competitor registration; Details fetches the current
// rating and review count for a known place.
type Source interface {
	Search(ctx context.Context, query string) ([]SearchResult, error)
	Details(ctx context.Context, placeID string) (Details, error)
}

// BuildSearchQuery scopes a free-text query to dental clinics in the
// clinic's locality.
func BuildSearchQuery(prefecture, city, query string) string {
	parts := []string{}
	for _, p := range []string{prefecture, city, query} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	parts = append(parts, "歯科")
	return strings.Join(parts, " ")
}
