package httpserver

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
)

func TestBuildRatingFilters(t *testing.T) {
	query := url.Values{}
	query.Set("storeId", "7")
	query.Set("minScore", "2")
	query.Set("maxScore", "4")
	query.Set("hasReview", "true")
	query.Set("sortBy", "score")
	query.Set("sortOrder", "asc")
	query.Set("page", "3")
	query.Set("limit", "25")

	filters, err := buildRatingFilters(query)
	if err != nil {
		t.Fatalf("buildRatingFilters: %v", err)
	}
	if filters.StoreID == nil || *filters.StoreID != 7 {
		t.Fatalf("StoreID = %v", filters.StoreID)
	}
	if filters.ScoreMin == nil || *filters.ScoreMin != 2 {
		t.Fatalf("ScoreMin = %v", filters.ScoreMin)
	}
	if filters.ScoreMax == nil || *filters.ScoreMax != 4 {
		t.Fatalf("ScoreMax = %v", filters.ScoreMax)
	}
	if !filters.HasReview {
		t.Fatalf("HasReview = false")
	}
	if filters.SortBy != "score" || filters.SortOrder != "asc" {
		t.Fatalf("sort = %q %q", filters.SortBy, filters.SortOrder)
	}
	if filters.Page != 3 || filters.Limit != 25 {
		t.Fatalf("pagination = %d %d", filters.Page, filters.Limit)
	}
}

func TestBuildRatingFilters_Invalid(t *testing.T) {
	cases := []struct {
		key   string
		value string
	}{
		{"storeId", "abc"},
		{"storeId", "0"},
		{"storeId", "-1"},
		{"userId", "abc"},
		{"score", "6"},
		{"score", "0"},
		{"score", "2.5"},
		{"minScore", "-1"},
		{"maxScore", "nope"},
		{"page", "0"},
		{"page", "x"},
		{"limit", "-5"},
	}
	for _, tc := range cases {
		query := url.Values{}
		query.Set(tc.key, tc.value)
		if _, err := buildRatingFilters(query); err == nil {
			t.Fatalf("%s=%s: expected error", tc.key, tc.value)
		}
	}
}

func TestBuildRatingFilters_Defaults(t *testing.T) {
	filters, err := buildRatingFilters(url.Values{})
	if err != nil {
		t.Fatalf("empty query: %v", err)
	}
	if filters.Page != 1 || filters.Limit != 10 {
		t.Fatalf("default pagination = %d %d", filters.Page, filters.Limit)
	}
	if filters.StoreID != nil || filters.UserID != nil || filters.HasReview {
		t.Fatalf("unexpected defaults: %+v", filters)
	}
}

func TestBuildStoreFilters(t *testing.T) {
	query := url.Values{}
	query.Set("search", "bakery")
	query.Set("minRating", "3.5")

	filters, err := buildStoreFilters(query)
	if err != nil {
		t.Fatalf("buildStoreFilters: %v", err)
	}
	if filters.Search == nil || *filters.Search != "bakery" {
		t.Fatalf("Search = %v", filters.Search)
	}
	if filters.MinRating == nil || *filters.MinRating != 3.5 {
		t.Fatalf("MinRating = %v", filters.MinRating)
	}

	query.Set("minRating", "5.1")
	if _, err := buildStoreFilters(query); err == nil {
		t.Fatalf("minRating above 5 accepted")
	}
}

func TestBuildUserFilters_Role(t *testing.T) {
	query := url.Values{}
	query.Set("role", "store_owner")
	filters, err := buildUserFilters(query)
	if err != nil {
		t.Fatalf("valid role: %v", err)
	}
	if filters.Role == nil || string(*filters.Role) != "store_owner" {
		t.Fatalf("Role = %v", filters.Role)
	}

	query.Set("role", "superuser")
	if _, err := buildUserFilters(query); err == nil {
		t.Fatalf("unknown role accepted")
	}
}

func TestBearerToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := bearerToken(req); got != "" {
		t.Fatalf("missing header = %q", got)
	}

	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	if got := bearerToken(req); got != "" {
		t.Fatalf("basic auth = %q", got)
	}

	req.Header.Set("Authorization", "Bearer abc123")
	if got := bearerToken(req); got != "abc123" {
		t.Fatalf("bearer = %q", got)
	}

	req.Header.Set("Authorization", "Bearer   padded   ")
	if got := bearerToken(req); got != "padded" {
		t.Fatalf("padded bearer = %q", got)
	}
}

func TestCheckPasswordPolicy(t *testing.T) {
	cases := []struct {
		password string
		ok       bool
	}{
		{"Secret#123", true},
		{"secret#123", false},
		{"SECRET1234", false},
		{"Aa!bcdef", true},
		{"", false},
	}
	for _, tc := range cases {
		if _, ok := checkPasswordPolicy(tc.password); ok != tc.ok {
			t.Fatalf("%q: ok = %v, want %v", tc.password, ok, tc.ok)
		}
	}
}
