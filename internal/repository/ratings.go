package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/storerate/storerate/internal/db"
	"github.com/storerate/storerate/internal/domain"
)

// RatingsRepository provides persistence for ratings and maintains the
// derived aggregate columns on stores. Every mutation and its aggregate
// recompute commit in one transaction so readers never observe one without
// the other.
type RatingsRepository struct {
	pool *pgxpool.Pool
}

const ratingColumns = `
    r.id,
    r.user_id,
    r.store_id,
    r.score,
    r.review,
    r.is_anonymous,
    r.created_at,
    r.updated_at
`

const ratingJoinedColumns = ratingColumns + `,
    u.name,
    s.name
`

// RatingCreateParams bundles the fields required to create a rating.
type RatingCreateParams struct {
	UserID      int64
	StoreID     int64
	Score       int
	Review      *string
	IsAnonymous bool
}

// RatingPatch captures an update to a rating. Nil fields are left unchanged.
type RatingPatch struct {
	Score       *int
	Review      *string
	IsAnonymous *bool
}

// Empty reports whether the patch changes nothing.
func (p RatingPatch) Empty() bool {
	return p.Score == nil && p.Review == nil && p.IsAnonymous == nil
}

// RatingListFilters encapsulates scoping, filtering, sorting and pagination.
type RatingListFilters struct {
	StoreID     *int64
	UserID      *int64
	ScoreEquals *int
	ScoreMin    *int
	ScoreMax    *int
	HasReview   bool
	SortBy      string
	SortOrder   string
	Page        int
	Limit       int
}

// ratingSortColumns whitelists sortable fields. Unrecognized fields fall back
// to created_at descending; caller input is never interpolated into the query.
var ratingSortColumns = map[string]string{
	"createdAt": "r.created_at",
	"updatedAt": "r.updated_at",
	"score":     "r.score",
}

// Create inserts a rating and recomputes the store's aggregate columns in the
// same transaction. The store row is locked first so concurrent mutations
// against the same store serialize their recomputes.
func (r *RatingsRepository) Create(ctx context.Context, params RatingCreateParams) (domain.Rating, error) {
	if params.Score < domain.MinScore || params.Score > domain.MaxScore {
		return domain.Rating{}, ErrInvalidScore
	}

	var rating domain.Rating
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if err := lockStore(ctx, tx, params.StoreID, true); err != nil {
			return err
		}

		const query = `
            INSERT INTO ratings (user_id, store_id, score, review, is_anonymous)
            VALUES ($1,$2,$3,$4,$5)
            RETURNING id, user_id, store_id, score, review, is_anonymous, created_at, updated_at
        `
		err := tx.QueryRow(ctx, query, params.UserID, params.StoreID, params.Score, params.Review, params.IsAnonymous).Scan(
			&rating.ID,
			&rating.UserID,
			&rating.StoreID,
			&rating.Score,
			&rating.Review,
			&rating.IsAnonymous,
			&rating.CreatedAt,
			&rating.UpdatedAt,
		)
		if err != nil {
			switch pgErrCode(err) {
			case pgUniqueViolation:
				return ErrDuplicateRating
			case pgForeignKeyViolation:
				return ErrNotFound
			case pgCheckViolation:
				return ErrInvalidScore
			}
			return err
		}

		_, err = recomputeAggregate(ctx, tx, params.StoreID)
		return err
	})
	if err != nil {
		return domain.Rating{}, err
	}
	return rating, nil
}

// GetByID fetches a rating with joined author and store names.
func (r *RatingsRepository) GetByID(ctx context.Context, id int64) (domain.Rating, error) {
	query := fmt.Sprintf(`
        SELECT %s
        FROM ratings r
        JOIN users u ON u.id = r.user_id
        JOIN stores s ON s.id = r.store_id
        WHERE r.id = $1
    `, ratingJoinedColumns)

	rating, err := scanRating(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Rating{}, ErrNotFound
		}
		return domain.Rating{}, err
	}
	return rating, nil
}

// Update applies a patch to a rating. When the patch touches the score, the
// store aggregate is recomputed in the same transaction.
func (r *RatingsRepository) Update(ctx context.Context, id int64, patch RatingPatch) (domain.Rating, error) {
	if patch.Empty() {
		return domain.Rating{}, ErrNoFields
	}
	if patch.Score != nil && (*patch.Score < domain.MinScore || *patch.Score > domain.MaxScore) {
		return domain.Rating{}, ErrInvalidScore
	}

	var rating domain.Rating
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var storeID int64
		if err := tx.QueryRow(ctx, `SELECT store_id FROM ratings WHERE id = $1`, id).Scan(&storeID); err != nil {
			if err == pgx.ErrNoRows {
				return ErrNotFound
			}
			return err
		}

		if patch.Score != nil {
			if err := lockStore(ctx, tx, storeID, false); err != nil {
				return err
			}
		}

		sets := make([]string, 0, 4)
		args := []interface{}{id}
		arg := func(value interface{}) string {
			args = append(args, value)
			return fmt.Sprintf("$%d", len(args))
		}
		if patch.Score != nil {
			sets = append(sets, fmt.Sprintf("score = %s", arg(*patch.Score)))
		}
		if patch.Review != nil {
			sets = append(sets, fmt.Sprintf("review = %s", arg(*patch.Review)))
		}
		if patch.IsAnonymous != nil {
			sets = append(sets, fmt.Sprintf("is_anonymous = %s", arg(*patch.IsAnonymous)))
		}
		sets = append(sets, "updated_at = now()")

		query := fmt.Sprintf(`
            UPDATE ratings SET %s WHERE id = $1
            RETURNING id, user_id, store_id, score, review, is_anonymous, created_at, updated_at
        `, strings.Join(sets, ", "))

		err := tx.QueryRow(ctx, query, args...).Scan(
			&rating.ID,
			&rating.UserID,
			&rating.StoreID,
			&rating.Score,
			&rating.Review,
			&rating.IsAnonymous,
			&rating.CreatedAt,
			&rating.UpdatedAt,
		)
		if err != nil {
			if pgErrCode(err) == pgCheckViolation {
				return ErrInvalidScore
			}
			return err
		}

		if patch.Score != nil {
			if _, err := recomputeAggregate(ctx, tx, storeID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return domain.Rating{}, err
	}
	return rating, nil
}

// Delete removes a rating and recomputes the store aggregate. Idempotent:
// returns false when the id is already absent.
func (r *RatingsRepository) Delete(ctx context.Context, id int64) (bool, error) {
	deleted := false
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var storeID int64
		if err := tx.QueryRow(ctx, `SELECT store_id FROM ratings WHERE id = $1`, id).Scan(&storeID); err != nil {
			if err == pgx.ErrNoRows {
				return nil
			}
			return err
		}

		if err := lockStore(ctx, tx, storeID, false); err != nil {
			return err
		}

		tag, err := tx.Exec(ctx, `DELETE FROM ratings WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return nil
		}
		deleted = true

		_, err = recomputeAggregate(ctx, tx, storeID)
		return err
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

// List returns ratings matching the provided filters with joined names.
func (r *RatingsRepository) List(ctx context.Context, filters RatingListFilters) (domain.Page[domain.Rating], error) {
	page, limit := normalizePageLimit(filters.Page, filters.Limit)

	where, args := buildRatingWhere(filters)

	sortColumn, ok := ratingSortColumns[filters.SortBy]
	if !ok {
		sortColumn = "r.created_at"
	}
	direction := "DESC"
	if strings.EqualFold(filters.SortOrder, "asc") {
		direction = "ASC"
	}

	queryBuilder := strings.Builder{}
	queryBuilder.WriteString("SELECT ")
	queryBuilder.WriteString(ratingJoinedColumns)
	queryBuilder.WriteString(" FROM ratings r JOIN users u ON u.id = r.user_id JOIN stores s ON s.id = r.store_id")
	if len(where) > 0 {
		queryBuilder.WriteString(" WHERE ")
		queryBuilder.WriteString(strings.Join(where, " AND "))
	}
	queryBuilder.WriteString(fmt.Sprintf(" ORDER BY %s %s, r.id %s", sortColumn, direction, direction))
	queryBuilder.WriteString(fmt.Sprintf(" LIMIT %d OFFSET %d", limit, (page-1)*limit))

	rows, err := r.pool.Query(ctx, queryBuilder.String(), args...)
	if err != nil {
		return domain.Page[domain.Rating]{}, err
	}
	defer rows.Close()

	items := make([]domain.Rating, 0)
	for rows.Next() {
		rating, err := scanRating(rows)
		if err != nil {
			return domain.Page[domain.Rating]{}, err
		}
		items = append(items, rating)
	}
	if err := rows.Err(); err != nil {
		return domain.Page[domain.Rating]{}, err
	}

	total, err := r.Count(ctx, filters)
	if err != nil {
		return domain.Page[domain.Rating]{}, err
	}
	return domain.NewPage(items, page, limit, total), nil
}

// Count returns the number of ratings matching the filter predicates.
func (r *RatingsRepository) Count(ctx context.Context, filters RatingListFilters) (int64, error) {
	where, args := buildRatingWhere(filters)
	query := "SELECT COUNT(*) FROM ratings r"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	var total int64
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count ratings: %w", err)
	}
	return total, nil
}

// StoreStats returns the rating statistics for one active store.
func (r *RatingsRepository) StoreStats(ctx context.Context, storeID int64) (domain.RatingStats, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM stores WHERE id = $1 AND is_active = TRUE)`, storeID).Scan(&exists); err != nil {
		return domain.RatingStats{}, err
	}
	if !exists {
		return domain.RatingStats{}, ErrNotFound
	}

	const query = `
        SELECT COUNT(*)::int8,
               COALESCE(ROUND(AVG(score)::numeric, 1), 0)::float8,
               COUNT(*) FILTER (WHERE review IS NOT NULL AND review <> '')::int8,
               COUNT(*) FILTER (WHERE score = 1)::int8,
               COUNT(*) FILTER (WHERE score = 2)::int8,
               COUNT(*) FILTER (WHERE score = 3)::int8,
               COUNT(*) FILTER (WHERE score = 4)::int8,
               COUNT(*) FILTER (WHERE score = 5)::int8
        FROM ratings
        WHERE store_id = $1
    `

	stats := domain.RatingStats{StoreID: storeID, Distribution: make(map[int]int64, 5)}
	var d1, d2, d3, d4, d5 int64
	err := r.pool.QueryRow(ctx, query, storeID).Scan(
		&stats.TotalRatings,
		&stats.AverageRating,
		&stats.ReviewCount,
		&d1, &d2, &d3, &d4, &d5,
	)
	if err != nil {
		return domain.RatingStats{}, fmt.Errorf("store stats: %w", err)
	}
	stats.Distribution[1] = d1
	stats.Distribution[2] = d2
	stats.Distribution[3] = d3
	stats.Distribution[4] = d4
	stats.Distribution[5] = d5
	return stats, nil
}

// OverallStats returns platform-wide rating statistics together with the
// active user and store totals.
func (r *RatingsRepository) OverallStats(ctx context.Context) (domain.OverallStats, error) {
	const query = `
        SELECT COUNT(*)::int8,
               COALESCE(ROUND(AVG(score)::numeric, 1), 0)::float8,
               COUNT(*) FILTER (WHERE review IS NOT NULL AND review <> '')::int8,
               COUNT(DISTINCT store_id)::int8,
               COUNT(DISTINCT user_id)::int8,
               COUNT(*) FILTER (WHERE created_at >= now() - INTERVAL '30 days')::int8,
               (SELECT COUNT(*) FROM users WHERE is_active = TRUE)::int8,
               (SELECT COUNT(*) FROM stores WHERE is_active = TRUE)::int8
        FROM ratings
    `

	var stats domain.OverallStats
	err := r.pool.QueryRow(ctx, query).Scan(
		&stats.TotalRatings,
		&stats.AverageRating,
		&stats.ReviewCount,
		&stats.RatedStores,
		&stats.RatingUsers,
		&stats.RecentRatings,
		&stats.ActiveUsers,
		&stats.ActiveStores,
	)
	if err != nil {
		return domain.OverallStats{}, fmt.Errorf("overall stats: %w", err)
	}
	return stats, nil
}

// RecomputeStoreAggregate recalculates a store's derived columns from its
// current rating set. The mutation paths already do this inline; this entry
// point exists to heal drift (e.g. after a manual data fix).
func (r *RatingsRepository) RecomputeStoreAggregate(ctx context.Context, storeID int64) (domain.StoreAggregate, error) {
	var agg domain.StoreAggregate
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if err := lockStore(ctx, tx, storeID, false); err != nil {
			return err
		}
		var err error
		agg, err = recomputeAggregate(ctx, tx, storeID)
		return err
	})
	if err != nil {
		return domain.StoreAggregate{}, err
	}
	return agg, nil
}

// lockStore takes a row lock on the store so concurrent aggregate recomputes
// for the same store serialize. Missing stores map to ErrNotFound. activeOnly
// additionally rejects soft-deleted stores; only the create path sets it, so
// existing ratings on a soft-deleted store stay mutable by their author or an
// admin.
func lockStore(ctx context.Context, tx pgx.Tx, storeID int64, activeOnly bool) error {
	query := `SELECT id FROM stores WHERE id = $1 FOR UPDATE`
	if activeOnly {
		query = `SELECT id FROM stores WHERE id = $1 AND is_active = TRUE FOR UPDATE`
	}
	var id int64
	err := tx.QueryRow(ctx, query, storeID).Scan(&id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return ErrNotFound
		}
		return fmt.Errorf("lock store %d: %w", storeID, err)
	}
	return nil
}

// recomputeAggregate rewrites the store's derived columns from the full
// current rating set. O(n) per mutation, which is fine at this volume, and it
// self-heals any prior drift.
func recomputeAggregate(ctx context.Context, tx pgx.Tx, storeID int64) (domain.StoreAggregate, error) {
	const query = `
        UPDATE stores
        SET average_rating = agg.average,
            total_ratings = agg.total,
            updated_at = now()
        FROM (
            SELECT COALESCE(ROUND(AVG(score)::numeric, 1), 0) AS average,
                   COUNT(*) AS total
            FROM ratings
            WHERE store_id = $1
        ) AS agg
        WHERE stores.id = $1
        RETURNING stores.average_rating, stores.total_ratings
    `

	var agg domain.StoreAggregate
	if err := tx.QueryRow(ctx, query, storeID).Scan(&agg.AverageRating, &agg.TotalRatings); err != nil {
		return domain.StoreAggregate{}, fmt.Errorf("recompute aggregate for store %d: %w", storeID, err)
	}
	return agg, nil
}

func buildRatingWhere(filters RatingListFilters) ([]string, []interface{}) {
	where := make([]string, 0)
	args := make([]interface{}, 0)
	arg := func(value interface{}) string {
		args = append(args, value)
		return fmt.Sprintf("$%d", len(args))
	}

	if filters.StoreID != nil {
		where = append(where, fmt.Sprintf("r.store_id = %s", arg(*filters.StoreID)))
	}
	if filters.UserID != nil {
		where = append(where, fmt.Sprintf("r.user_id = %s", arg(*filters.UserID)))
	}
	if filters.ScoreEquals != nil {
		where = append(where, fmt.Sprintf("r.score = %s", arg(*filters.ScoreEquals)))
	}
	if filters.ScoreMin != nil {
		where = append(where, fmt.Sprintf("r.score >= %s", arg(*filters.ScoreMin)))
	}
	if filters.ScoreMax != nil {
		where = append(where, fmt.Sprintf("r.score <= %s", arg(*filters.ScoreMax)))
	}
	if filters.HasReview {
		where = append(where, "r.review IS NOT NULL AND r.review <> ''")
	}
	return where, args
}

func scanRating(row pgx.Row) (domain.Rating, error) {
	var rating domain.Rating
	err := row.Scan(
		&rating.ID,
		&rating.UserID,
		&rating.StoreID,
		&rating.Score,
		&rating.Review,
		&rating.IsAnonymous,
		&rating.CreatedAt,
		&rating.UpdatedAt,
		&rating.UserName,
		&rating.StoreName,
	)
	if err != nil {
		return domain.Rating{}, err
	}
	return rating, nil
}
