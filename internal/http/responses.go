package httpserver

import (
	"time"

	"github.com/storerate/storerate/internal/domain"
)

type pageResponse[T any] struct {
	Items       []T   `json:"items"`
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	TotalItems  int64 `json:"totalItems"`
	HasNextPage bool  `json:"hasNextPage"`
	HasPrevPage bool  `json:"hasPrevPage"`
}

func toPageResponse[T, U any](page domain.Page[T], convert func(T) U) pageResponse[U] {
	items := make([]U, 0, len(page.Items))
	for _, item := range page.Items {
		items = append(items, convert(item))
	}
	return pageResponse[U]{
		Items:       items,
		CurrentPage: page.CurrentPage,
		TotalPages:  page.TotalPages,
		TotalItems:  page.TotalItems,
		HasNextPage: page.HasNextPage,
		HasPrevPage: page.HasPrevPage,
	}
}

type userResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Address   *string   `json:"address,omitempty"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toUserResponse(user domain.User) userResponse {
	return userResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      string(user.Role),
		Address:   user.Address,
		IsActive:  user.IsActive,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

type storeResponse struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Email         *string   `json:"email,omitempty"`
	Address       *string   `json:"address,omitempty"`
	OwnerID       *int64    `json:"ownerId,omitempty"`
	AverageRating float64   `json:"averageRating"`
	TotalRatings  int64     `json:"totalRatings"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func toStoreResponse(store domain.Store) storeResponse {
	return storeResponse{
		ID:            store.ID,
		Name:          store.Name,
		Email:         store.Email,
		Address:       store.Address,
		OwnerID:       store.OwnerID,
		AverageRating: store.AverageRating,
		TotalRatings:  store.TotalRatings,
		CreatedAt:     store.CreatedAt,
		UpdatedAt:     store.UpdatedAt,
	}
}

// ratingResponse omits userId for redacted rows: the service zeroes the field
// and the omitempty drops it from the payload.
type ratingResponse struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"userId,omitempty"`
	StoreID     int64     `json:"storeId"`
	Score       int       `json:"score"`
	Review      *string   `json:"review,omitempty"`
	IsAnonymous bool      `json:"isAnonymous"`
	UserName    string    `json:"userName"`
	StoreName   string    `json:"storeName"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func toRatingResponse(rating domain.Rating) ratingResponse {
	return ratingResponse{
		ID:          rating.ID,
		UserID:      rating.UserID,
		StoreID:     rating.StoreID,
		Score:       rating.Score,
		Review:      rating.Review,
		IsAnonymous: rating.IsAnonymous,
		UserName:    rating.UserName,
		StoreName:   rating.StoreName,
		CreatedAt:   rating.CreatedAt,
		UpdatedAt:   rating.UpdatedAt,
	}
}

type ratingStatsResponse struct {
	StoreID       int64         `json:"storeId"`
	TotalRatings  int64         `json:"totalRatings"`
	AverageRating float64       `json:"averageRating"`
	ReviewCount   int64         `json:"reviewCount"`
	Distribution  map[int]int64 `json:"distribution"`
}

func toRatingStatsResponse(stats domain.RatingStats) ratingStatsResponse {
	return ratingStatsResponse{
		StoreID:       stats.StoreID,
		TotalRatings:  stats.TotalRatings,
		AverageRating: stats.AverageRating,
		ReviewCount:   stats.ReviewCount,
		Distribution:  stats.Distribution,
	}
}

type overallStatsResponse struct {
	TotalRatings  int64   `json:"totalRatings"`
	AverageRating float64 `json:"averageRating"`
	ReviewCount   int64   `json:"reviewCount"`
	RatedStores   int64   `json:"ratedStores"`
	RatingUsers   int64   `json:"ratingUsers"`
	RecentRatings int64   `json:"recentRatings"`
	ActiveUsers   int64   `json:"activeUsers"`
	ActiveStores  int64   `json:"activeStores"`
}

func toOverallStatsResponse(stats domain.OverallStats) overallStatsResponse {
	return overallStatsResponse{
		TotalRatings:  stats.TotalRatings,
		AverageRating: stats.AverageRating,
		ReviewCount:   stats.ReviewCount,
		RatedStores:   stats.RatedStores,
		RatingUsers:   stats.RatingUsers,
		RecentRatings: stats.RecentRatings,
		ActiveUsers:   stats.ActiveUsers,
		ActiveStores:  stats.ActiveStores,
	}
}
