package httpserver

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/storerate/storerate/internal/domain"
	"github.com/storerate/storerate/internal/repository"
)

// buildRatingFilters parses the filter/sort/pagination query parameters shared
// by the rating list endpoints. Scope parameters (storeId, userId) are parsed
// here too; the callers overwrite them where the path fixes the scope.
func buildRatingFilters(query url.Values) (repository.RatingListFilters, error) {
	var filters repository.RatingListFilters

	if val := strings.TrimSpace(query.Get("storeId")); val != "" {
		id, err := strconv.ParseInt(val, 10, 64)
		if err != nil || id < 1 {
			return filters, fmt.Errorf("invalid storeId value")
		}
		filters.StoreID = &id
	}
	if val := strings.TrimSpace(query.Get("userId")); val != "" {
		id, err := strconv.ParseInt(val, 10, 64)
		if err != nil || id < 1 {
			return filters, fmt.Errorf("invalid userId value")
		}
		filters.UserID = &id
	}
	if val := strings.TrimSpace(query.Get("score")); val != "" {
		score, err := parseScore(val)
		if err != nil {
			return filters, err
		}
		filters.ScoreEquals = &score
	}
	if val := strings.TrimSpace(query.Get("minScore")); val != "" {
		score, err := parseScore(val)
		if err != nil {
			return filters, err
		}
		filters.ScoreMin = &score
	}
	if val := strings.TrimSpace(query.Get("maxScore")); val != "" {
		score, err := parseScore(val)
		if err != nil {
			return filters, err
		}
		filters.ScoreMax = &score
	}
	if query.Get("hasReview") == "true" {
		filters.HasReview = true
	}

	filters.SortBy = strings.TrimSpace(query.Get("sortBy"))
	filters.SortOrder = strings.TrimSpace(query.Get("sortOrder"))

	page, limit, err := parsePagination(query)
	if err != nil {
		return filters, err
	}
	filters.Page = page
	filters.Limit = limit
	return filters, nil
}

func buildStoreFilters(query url.Values) (repository.StoreListFilters, error) {
	var filters repository.StoreListFilters

	if val := strings.TrimSpace(query.Get("search")); val != "" {
		filters.Search = &val
	}
	if val := strings.TrimSpace(query.Get("ownerId")); val != "" {
		id, err := strconv.ParseInt(val, 10, 64)
		if err != nil || id < 1 {
			return filters, fmt.Errorf("invalid ownerId value")
		}
		filters.OwnerID = &id
	}
	if val := strings.TrimSpace(query.Get("minRating")); val != "" {
		rating, err := strconv.ParseFloat(val, 64)
		if err != nil || rating < 0 || rating > 5 {
			return filters, fmt.Errorf("invalid minRating value")
		}
		filters.MinRating = &rating
	}

	filters.SortBy = strings.TrimSpace(query.Get("sortBy"))
	filters.SortOrder = strings.TrimSpace(query.Get("sortOrder"))

	page, limit, err := parsePagination(query)
	if err != nil {
		return filters, err
	}
	filters.Page = page
	filters.Limit = limit
	return filters, nil
}

func buildUserFilters(query url.Values) (repository.UserListFilters, error) {
	var filters repository.UserListFilters

	if val := strings.TrimSpace(query.Get("role")); val != "" {
		role := domain.Role(val)
		if !role.Valid() {
			return filters, fmt.Errorf("invalid role value")
		}
		filters.Role = &role
	}
	if val := strings.TrimSpace(query.Get("isActive")); val != "" {
		active, err := strconv.ParseBool(val)
		if err != nil {
			return filters, fmt.Errorf("invalid isActive value")
		}
		filters.IsActive = &active
	}
	if val := strings.TrimSpace(query.Get("search")); val != "" {
		filters.Search = &val
	}

	page, limit, err := parsePagination(query)
	if err != nil {
		return filters, err
	}
	filters.Page = page
	filters.Limit = limit
	return filters, nil
}

func parseScore(val string) (int, error) {
	score, err := strconv.Atoi(val)
	if err != nil || score < domain.MinScore || score > domain.MaxScore {
		return 0, fmt.Errorf("score filters must be integers between %d and %d", domain.MinScore, domain.MaxScore)
	}
	return score, nil
}

func parsePagination(query url.Values) (int, int, error) {
	page := 1
	limit := 10
	if val := strings.TrimSpace(query.Get("page")); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil || parsed < 1 {
			return 0, 0, fmt.Errorf("invalid page value")
		}
		page = parsed
	}
	if val := strings.TrimSpace(query.Get("limit")); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil || parsed < 1 {
			return 0, 0, fmt.Errorf("invalid limit value")
		}
		limit = parsed
	}
	return page, limit, nil
}
