// Package service composes the authorization policy with the repositories
// into the operations the HTTP layer calls.
package service

import (
	"context"
	"errors"
	"log"

	"github.com/storerate/storerate/internal/auth"
	"github.com/storerate/storerate/internal/domain"
	"github.com/storerate/storerate/internal/policy"
	"github.com/storerate/storerate/internal/repository"
)

// ErrForbidden indicates the authenticated actor is not allowed to perform
// the operation.
var ErrForbidden = errors.New("service: forbidden")

// RatingService is the API-facing contract for the rating subsystem.
type RatingService struct {
	repo   *repository.Repository
	logger *log.Logger
}

// NewRatingService constructs the rating query service.
func NewRatingService(repo *repository.Repository, logger *log.Logger) *RatingService {
	if logger == nil {
		logger = log.Default()
	}
	return &RatingService{repo: repo, logger: logger}
}

// SubmitRatingParams bundles the input for a new rating.
type SubmitRatingParams struct {
	StoreID     int64
	Score       int
	Review      *string
	IsAnonymous bool
}

// Submit creates a rating authored by the actor. Only normal users author
// ratings; the store's aggregate fields are updated in the same transaction
// as the insert.
func (s *RatingService) Submit(ctx context.Context, actor auth.Identity, params SubmitRatingParams) (domain.Rating, error) {
	if !policy.CanCreateRating(actor.Role) {
		return domain.Rating{}, ErrForbidden
	}

	created, err := s.repo.Ratings.Create(ctx, repository.RatingCreateParams{
		UserID:      actor.ID,
		StoreID:     params.StoreID,
		Score:       params.Score,
		Review:      params.Review,
		IsAnonymous: params.IsAnonymous,
	})
	if err != nil {
		return domain.Rating{}, err
	}

	// Reload for the joined author/store names.
	rating, err := s.repo.Ratings.GetByID(ctx, created.ID)
	if err != nil {
		s.logger.Printf("reload created rating %d: %v", created.ID, err)
		return created, nil
	}
	return rating, nil
}

// Update patches a rating. Only the author or an admin may mutate it.
func (s *RatingService) Update(ctx context.Context, actor auth.Identity, ratingID int64, patch repository.RatingPatch) (domain.Rating, error) {
	existing, err := s.repo.Ratings.GetByID(ctx, ratingID)
	if err != nil {
		return domain.Rating{}, err
	}
	if !policy.CanMutateRating(actor.ID, actor.Role, existing.UserID) {
		return domain.Rating{}, ErrForbidden
	}

	if _, err := s.repo.Ratings.Update(ctx, ratingID, patch); err != nil {
		return domain.Rating{}, err
	}
	return s.repo.Ratings.GetByID(ctx, ratingID)
}

// Delete removes a rating. Only the author or an admin may delete it.
func (s *RatingService) Delete(ctx context.Context, actor auth.Identity, ratingID int64) (bool, error) {
	existing, err := s.repo.Ratings.GetByID(ctx, ratingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if !policy.CanMutateRating(actor.ID, actor.Role, existing.UserID) {
		return false, ErrForbidden
	}
	return s.repo.Ratings.Delete(ctx, ratingID)
}

// StoreRatings lists a store's ratings for an optionally authenticated
// viewer. Anonymous ratings have their author identity redacted unless the
// viewer is the author or an admin.
func (s *RatingService) StoreRatings(ctx context.Context, viewer *auth.Identity, storeID int64, filters repository.RatingListFilters) (domain.Page[domain.Rating], error) {
	if _, err := s.repo.Stores.GetByID(ctx, storeID); err != nil {
		return domain.Page[domain.Rating]{}, err
	}

	filters.StoreID = &storeID
	filters.UserID = nil
	page, err := s.repo.Ratings.List(ctx, filters)
	if err != nil {
		return domain.Page[domain.Rating]{}, err
	}

	for i := range page.Items {
		redactForViewer(&page.Items[i], viewer)
	}
	return page, nil
}

// UserRatings lists the ratings authored by userID. Only that user or an
// admin may call this.
func (s *RatingService) UserRatings(ctx context.Context, actor auth.Identity, userID int64, filters repository.RatingListFilters) (domain.Page[domain.Rating], error) {
	if !policy.CanViewUserRatings(actor.ID, actor.Role, userID) {
		return domain.Page[domain.Rating]{}, ErrForbidden
	}
	filters.UserID = &userID
	filters.StoreID = nil
	return s.repo.Ratings.List(ctx, filters)
}

// AllRatings lists every rating with the full filter set. Admin only.
func (s *RatingService) AllRatings(ctx context.Context, actor auth.Identity, filters repository.RatingListFilters) (domain.Page[domain.Rating], error) {
	if actor.Role != domain.RoleAdmin {
		return domain.Page[domain.Rating]{}, ErrForbidden
	}
	return s.repo.Ratings.List(ctx, filters)
}

// StoreStats returns the rating statistics for one store. Public.
func (s *RatingService) StoreStats(ctx context.Context, storeID int64) (domain.RatingStats, error) {
	return s.repo.Ratings.StoreStats(ctx, storeID)
}

// OverallStats returns platform-wide rating statistics. Admin only.
func (s *RatingService) OverallStats(ctx context.Context, actor auth.Identity) (domain.OverallStats, error) {
	if actor.Role != domain.RoleAdmin {
		return domain.OverallStats{}, ErrForbidden
	}
	return s.repo.Ratings.OverallStats(ctx)
}

func redactForViewer(rating *domain.Rating, viewer *auth.Identity) {
	if !rating.IsAnonymous {
		return
	}
	if viewer != nil && policy.CanViewUnredacted(viewer.ID, viewer.Role, rating.UserID) {
		return
	}
	rating.Redact()
}
