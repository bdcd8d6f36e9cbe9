package places

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestParseSearchItems(t *testing.T) {
	rating := 4.3
	total := 88
	items := []googleSearchItem{
		{
			PlaceID:          "place-1",
			Name:             "さくら歯科",
			FormattedAddress: "東京都世田谷区1-2-3",
			Rating:           &rating,
			UserRatingsTotal: &total,
		},
		{PlaceID: "place-2", Name: "新規開業歯科"},
	}
	res := parseSearchItems(items)
	if len(res) != 2 {
		t.Fatalf("expected 2 results, got %d", len(res))
	}
	if res[0].PlaceID != "place-1" || *res[0].Rating != 4.3 || *res[0].TotalReviews != 88 {
		t.Fatalf("unexpected first result: %+v", res[0])
	}
	if res[1].Rating != nil || res[1].TotalReviews != nil {
		t.Fatalf("expected nil rating for unrated place, got %+v", res[1])
	}
}

func TestParseDetails(t *testing.T) {
	rating := 4.0
	total := 55
	payload := googleDetailsResponse{
		Status: "OK",
		Result: googleSearchItem{
			PlaceID:          "place-1",
			Name:             "さくら歯科",
			FormattedAddress: "東京都世田谷区1-2-3",
			Rating:           &rating,
			UserRatingsTotal: &total,
		},
	}
	d, err := parseDetails(payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Rating != 4.0 || d.TotalReviews != 55 {
		t.Fatalf("unexpected details: %+v", d)
	}
}

func TestParseDetailsNotFound(t *testing.T) {
	_, err := parseDetails(googleDetailsResponse{Status: "NOT_FOUND"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	_, err = parseDetails(googleDetailsResponse{Status: "OK"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for empty result, got %v", err)
	}
	_, err = parseDetails(googleDetailsResponse{Status: "OVER_QUERY_LIMIT"})
	if err == nil || errors.Is(err, ErrNotFound) {
		t.Fatalf("expected generic api error, got %v", err)
	}
}

func TestGoogleSourceDetailsCached(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`{"status":"OK","result":{"place_id":"place-1","name":"さくら歯科","formatted_address":"東京都","rating":4.2,"user_ratings_total":30}}`))
	}))
	defer srv.Close()

	g := &GoogleSource{BaseURL: srv.URL, APIKey: "test-key", MinInterval: time.Millisecond}
	for i := 0; i < 3; i++ {
		d, err := g.Details(context.Background(), "place-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if d.Rating != 4.2 || d.TotalReviews != 30 {
			t.Fatalf("unexpected details: %+v", d)
		}
	}
	if calls != 1 {
		t.Fatalf("expected 1 upstream call, got %d", calls)
	}
}

func TestBuildSearchQuery(t *testing.T) {
	if got := BuildSearchQuery("東京都", "世田谷区", "矯正"); got != "東京都 世田谷区 矯正 歯科" {
		t.Fatalf("unexpected query: %s", got)
	}
	if got := BuildSearchQuery("大阪府", "", ""); got != "大阪府 歯科" {
		t.Fatalf("unexpected query: %s", got)
	}
}
