package httpserver

import (
	"net/url"
	"testing"

	"github.com/storerate/storerate/internal/domain"
)

func FuzzBuildRatingFilters(f *testing.F) {
	seeds := []string{
		"storeId=1&score=5&hasReview=true",
		"minScore=2&maxScore=4&sortBy=score&sortOrder=asc",
		"score=abc",
		"page=0&limit=-1",
		"userId=9999999999999999999",
		"",
	}
	for _, seed := range seeds {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, raw string) {
		values, err := url.ParseQuery(raw)
		if err != nil {
			return
		}
		filters, err := buildRatingFilters(values)
		if err != nil {
			return
		}
		// Accepted filters must hold the documented bounds.
		if filters.Page < 1 || filters.Limit < 1 {
			t.Fatalf("pagination out of bounds: %+v", filters)
		}
		for _, score := range []*int{filters.ScoreEquals, filters.ScoreMin, filters.ScoreMax} {
			if score != nil && (*score < domain.MinScore || *score > domain.MaxScore) {
				t.Fatalf("score out of bounds: %+v", filters)
			}
		}
		if filters.StoreID != nil && *filters.StoreID < 1 {
			t.Fatalf("storeId out of bounds: %+v", filters)
		}
		if filters.UserID != nil && *filters.UserID < 1 {
			t.Fatalf("userId out of bounds: %+v", filters)
		}
	})
}
