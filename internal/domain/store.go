package domain

import "time"

// Store represents a rateable store. AverageRating and TotalRatings are
// derived from the store's ratings and are only ever written by the rating
// mutation path; they are never authoritative on their own.
type Store struct {
	ID            int64
	Name          string
	Email         *string
	Address       *string
	OwnerID       *int64
	AverageRating float64
	TotalRatings  int64
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// StoreAggregate carries the derived rating fields for one store.
type StoreAggregate struct {
	AverageRating float64
	TotalRatings  int64
}
