package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/storerate/storerate/internal/domain"
)

// StoresRepository provides persistence helpers for store entities.
type StoresRepository struct {
	pool *pgxpool.Pool
}

const storeColumns = `
    id,
    name,
    email,
    address,
    owner_id,
    average_rating,
    total_ratings,
    is_active,
    created_at,
    updated_at
`

// StoreCreateParams bundles the fields required to create a store.
type StoreCreateParams struct {
	Name    string
	Email   *string
	Address *string
	OwnerID *int64
}

// StorePatch captures an update to a store's mutable fields. Nil fields are
// left unchanged; an empty Email or Address clears the column. The aggregate
// columns are deliberately absent: they are only written by the rating
// mutation path.
type StorePatch struct {
	Name    *string
	Email   *string
	Address *string
}

// StoreListFilters encapsulates search, sorting and pagination options.
type StoreListFilters struct {
	Search    *string
	OwnerID   *int64
	MinRating *float64
	SortBy    string
	SortOrder string
	Page      int
	Limit     int
}

// storeSortColumns whitelists sortable fields. Anything else falls back to
// name ascending; caller input is never interpolated into the query.
var storeSortColumns = map[string]string{
	"name":          "name",
	"averageRating": "average_rating",
	"totalRatings":  "total_ratings",
	"createdAt":     "created_at",
}

// Create inserts a new store row and returns the stored entity.
func (r *StoresRepository) Create(ctx context.Context, params StoreCreateParams) (domain.Store, error) {
	query := fmt.Sprintf(`
        INSERT INTO stores (name, email, address, owner_id)
        VALUES ($1,$2,$3,$4)
        RETURNING %s
    `, storeColumns)

	store, err := scanStore(r.pool.QueryRow(ctx, query, params.Name, params.Email, params.Address, params.OwnerID))
	if err != nil {
		if pgErrCode(err) == pgForeignKeyViolation {
			return domain.Store{}, ErrNotFound
		}
		return domain.Store{}, err
	}
	return store, nil
}

// GetByID fetches an active store by its identifier.
func (r *StoresRepository) GetByID(ctx context.Context, id int64) (domain.Store, error) {
	query := fmt.Sprintf(`SELECT %s FROM stores WHERE id = $1 AND is_active = TRUE`, storeColumns)
	store, err := scanStore(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Store{}, ErrNotFound
		}
		return domain.Store{}, err
	}
	return store, nil
}

// Update applies a patch to a store's mutable fields.
func (r *StoresRepository) Update(ctx context.Context, id int64, patch StorePatch) (domain.Store, error) {
	if patch.Name == nil && patch.Email == nil && patch.Address == nil {
		return domain.Store{}, ErrNoFields
	}

	sets := make([]string, 0, 4)
	args := []interface{}{id}
	arg := func(value interface{}) string {
		args = append(args, value)
		return fmt.Sprintf("$%d", len(args))
	}
	if patch.Name != nil {
		sets = append(sets, fmt.Sprintf("name = %s", arg(*patch.Name)))
	}
	if patch.Email != nil {
		sets = append(sets, fmt.Sprintf("email = NULLIF(%s, '')", arg(*patch.Email)))
	}
	if patch.Address != nil {
		sets = append(sets, fmt.Sprintf("address = NULLIF(%s, '')", arg(*patch.Address)))
	}
	sets = append(sets, "updated_at = now()")

	query := fmt.Sprintf(`
        UPDATE stores SET %s WHERE id = $1 AND is_active = TRUE
        RETURNING %s
    `, strings.Join(sets, ", "), storeColumns)

	store, err := scanStore(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Store{}, ErrNotFound
		}
		return domain.Store{}, err
	}
	return store, nil
}

// Delete soft-deletes a store by flagging it inactive. Its ratings are kept.
// Returns false when the id does not reference an active store.
func (r *StoresRepository) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `UPDATE stores SET is_active = FALSE, updated_at = now() WHERE id = $1 AND is_active = TRUE`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// List returns active stores that match the provided filters.
func (r *StoresRepository) List(ctx context.Context, filters StoreListFilters) (domain.Page[domain.Store], error) {
	page, limit := normalizePageLimit(filters.Page, filters.Limit)

	where, args := buildStoreWhere(filters)

	sortColumn, ok := storeSortColumns[filters.SortBy]
	if !ok {
		sortColumn = "name"
	}
	direction := "ASC"
	if strings.EqualFold(filters.SortOrder, "desc") {
		direction = "DESC"
	}

	queryBuilder := strings.Builder{}
	queryBuilder.WriteString("SELECT ")
	queryBuilder.WriteString(storeColumns)
	queryBuilder.WriteString(" FROM stores WHERE ")
	queryBuilder.WriteString(strings.Join(where, " AND "))
	queryBuilder.WriteString(fmt.Sprintf(" ORDER BY %s %s, id ASC", sortColumn, direction))
	queryBuilder.WriteString(fmt.Sprintf(" LIMIT %d OFFSET %d", limit, (page-1)*limit))

	rows, err := r.pool.Query(ctx, queryBuilder.String(), args...)
	if err != nil {
		return domain.Page[domain.Store]{}, err
	}
	defer rows.Close()

	items := make([]domain.Store, 0)
	for rows.Next() {
		store, err := scanStore(rows)
		if err != nil {
			return domain.Page[domain.Store]{}, err
		}
		items = append(items, store)
	}
	if err := rows.Err(); err != nil {
		return domain.Page[domain.Store]{}, err
	}

	total, err := r.Count(ctx, filters)
	if err != nil {
		return domain.Page[domain.Store]{}, err
	}
	return domain.NewPage(items, page, limit, total), nil
}

// Count returns the number of active stores matching the filter predicates.
func (r *StoresRepository) Count(ctx context.Context, filters StoreListFilters) (int64, error) {
	where, args := buildStoreWhere(filters)
	query := "SELECT COUNT(*) FROM stores WHERE " + strings.Join(where, " AND ")
	var total int64
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count stores: %w", err)
	}
	return total, nil
}

func buildStoreWhere(filters StoreListFilters) ([]string, []interface{}) {
	where := []string{"is_active = TRUE"}
	args := make([]interface{}, 0)
	arg := func(value interface{}) string {
		args = append(args, value)
		return fmt.Sprintf("$%d", len(args))
	}

	if filters.Search != nil && strings.TrimSpace(*filters.Search) != "" {
		q := "%" + strings.TrimSpace(*filters.Search) + "%"
		p1 := arg(q)
		p2 := arg(q)
		where = append(where, fmt.Sprintf("(name ILIKE %s OR address ILIKE %s)", p1, p2))
	}
	if filters.OwnerID != nil {
		where = append(where, fmt.Sprintf("owner_id = %s", arg(*filters.OwnerID)))
	}
	if filters.MinRating != nil {
		where = append(where, fmt.Sprintf("average_rating >= %s", arg(*filters.MinRating)))
	}
	return where, args
}

func scanStore(row pgx.Row) (domain.Store, error) {
	var store domain.Store
	err := row.Scan(
		&store.ID,
		&store.Name,
		&store.Email,
		&store.Address,
		&store.OwnerID,
		&store.AverageRating,
		&store.TotalRatings,
		&store.IsActive,
		&store.CreatedAt,
		&store.UpdatedAt,
	)
	if err != nil {
		return domain.Store{}, err
	}
	return store, nil
}
