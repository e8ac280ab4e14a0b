package domain

import "time"

const (
	MinScore        = 1
	MaxScore        = 5
	MaxReviewLength = 1000
)

// AnonymousUserName replaces the author's name on redacted ratings.
const AnonymousUserName = "Anonymous"

// Rating represents a single user's rating of a store. UserName and StoreName
// are joined display fields populated on read paths.
type Rating struct {
	ID          int64
	UserID      int64
	StoreID     int64
	Score       int
	Review      *string
	IsAnonymous bool
	CreatedAt   time.Time
	UpdatedAt   time.Time

	UserName  string
	StoreName string
}

// Redact strips author-identifying fields from the rating.
func (r *Rating) Redact() {
	r.UserID = 0
	r.UserName = AnonymousUserName
}

// RatingStats describes the rating statistics of one store.
type RatingStats struct {
	StoreID       int64
	TotalRatings  int64
	AverageRating float64
	ReviewCount   int64
	Distribution  map[int]int64
}

// OverallStats aggregates ratings across the whole platform, plus the active
// account and store totals shown on the admin dashboard.
type OverallStats struct {
	TotalRatings  int64
	AverageRating float64
	ReviewCount   int64
	RatedStores   int64
	RatingUsers   int64
	RecentRatings int64
	ActiveUsers   int64
	ActiveStores  int64
}
