package places

import (
	"context"
	"fmt"

	"github.com/freehazamanet-dot/dental-marketing-analyzer/internal/utils"
)

// MockSource returns stable fabricated results keyed by the query hash,
// for dev environments without a Places API key.
type MockSource struct{}

func (MockSource) Search(ctx context.Context, query string) ([]SearchResult, error) {
	h := utils.HashStringToUint64(query)
	out := make([]SearchResult, 0, 3)
	for i := 0; i < 3; i++ {
		rating := 3.0 + float64((h/uint64(i+1))%20)/10.0
		reviews := int((h / uint64(i+2)) % 120)
		out = append(out, SearchResult{
			PlaceID:      fmt.Sprintf("mock-place-%d-%d", h%1000, i),
			Name:         fmt.Sprintf("モック歯科クリニック%d", i+1),
			Address:      "東京都千代田区1-2-3",
			Rating:       &rating,
			TotalReviews: &reviews,
		})
	}
	return out, nil
}

func (MockSource) Details(ctx context.Context, placeID string) (Details, error) {
	if placeID == "" {
		return Details{}, ErrNotFound
	}
	h := utils.HashStringToUint64(placeID)
	return Details{
		PlaceID:      placeID,
		Name:         fmt.Sprintf("モック歯科クリニック%d", h%100),
		Address:      "東京都千代田区1-2-3",
		Rating:       3.0 + float64(h%20)/10.0,
		TotalReviews: int(h % 150),
	}, nil
}
