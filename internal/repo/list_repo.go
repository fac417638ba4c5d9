package repo

import (
	"context"
	"time"

	dom "github.com/seriessoft-design/spinlist-mobile-app/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type ListRepo interface {
	Create(ctx context.Context, ownerID int64, title string, expiresAt time.Time) (dom.List, error)
	GetByID(ctx context.Context, ownerID int64, id string) (dom.List, error)
	List(ctx context.Context, ownerID int64) ([]dom.List, error)
	CountActive(ctx context.Context, ownerID int64) (int, error)
	Renew(ctx context.Context, ownerID int64, id string, expiresAt time.Time) (dom.List, error)
	ReplaceItems(ctx context.Context, ownerID int64, id string, items []dom.ListItem, expectVersion *int64) (dom.List, error)
	SoftDelete(ctx context.Context, ownerID int64, id string) (bool, error)
}

type PGListRepo struct {
	db *pgxpool.Pool
}

func NewPGListRepo(db *pgxpool.Pool) *PGListRepo {
	return &PGListRepo{db: db}
}

const listColumns = `id, owner_id, title, items, version, created_at, updated_at, expires_at, is_deleted`

func scanList(row interface{ Scan(dest ...any) error }) (dom.List, error) {
	var l dom.List
	err := row.Scan(&l.ID, &l.OwnerID, &l.Title, &l.Items, &l.Version,
		&l.CreatedAt, &l.UpdatedAt, &l.ExpiresAt, &l.IsDeleted)
	return l, err
}

func (r *PGListRepo) Create(ctx context.Context, ownerID int64, title string, expiresAt time.Time) (dom.List, error) {
	query := `
		INSERT INTO lists (owner_id, title, items, expires_at)
		VALUES ($1, $2, '[]'::jsonb, $3)
		RETURNING ` + listColumns
	return scanList(r.db.QueryRow(ctx, query, ownerID, title, expiresAt))
}

// GetByID fetches by id regardless of is_deleted: a direct fetch of a
// soft-deleted list still returns the record with the flag set.
func (r *PGListRepo) GetByID(ctx context.Context, ownerID int64, id string) (dom.List, error) {
	query := `SELECT ` + listColumns + ` FROM lists WHERE id = $1 AND owner_id = $2`
	return scanList(r.db.QueryRow(ctx, query, id, ownerID))
}

// List returns live lists newest first. Expired lists are included on
// purpose: nothing sweeps them, the countdown is display-only.
func (r *PGListRepo) List(ctx context.Context, ownerID int64) ([]dom.List, error) {
	query := `
		SELECT ` + listColumns + `
		FROM lists WHERE owner_id = $1 AND is_deleted = FALSE
		ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []dom.List
	for rows.Next() {
		l, err := scanList(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, l)
	}
	return list, rows.Err()
}

// CountActive counts live lists for the quota check. Soft-deleted lists never
// count; expired-but-undeleted ones do.
func (r *PGListRepo) CountActive(ctx context.Context, ownerID int64) (int, error) {
	var n int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM lists WHERE owner_id = $1 AND is_deleted = FALSE`,
		ownerID,
	).Scan(&n)
	return n, err
}

// Renew rewrites expires_at unconditionally: 40 hours left or 10 hours past
// the deadline, both land on the same fresh window.
func (r *PGListRepo) Renew(ctx context.Context, ownerID int64, id string, expiresAt time.Time) (dom.List, error) {
	query := `
		UPDATE lists SET expires_at = $3, updated_at = NOW()
		WHERE id = $1 AND owner_id = $2 AND is_deleted = FALSE
		RETURNING ` + listColumns
	return scanList(r.db.QueryRow(ctx, query, id, ownerID, expiresAt))
}

// ReplaceItems writes the whole items array back and bumps version.
// With expectVersion = nil this is last-write-wins, same as the original
// whole-array update. With a version it becomes an optimistic check: no row
// matches when the version moved, and the caller turns that into a stale
// error.
func (r *PGListRepo) ReplaceItems(ctx context.Context, ownerID int64, id string, items []dom.ListItem, expectVersion *int64) (dom.List, error) {
	if items == nil {
		items = []dom.ListItem{}
	}
	if expectVersion != nil {
		query := `
			UPDATE lists SET items = $3, version = version + 1, updated_at = NOW()
			WHERE id = $1 AND owner_id = $2 AND is_deleted = FALSE AND version = $4
			RETURNING ` + listColumns
		return scanList(r.db.QueryRow(ctx, query, id, ownerID, items, *expectVersion))
	}
	query := `
		UPDATE lists SET items = $3, version = version + 1, updated_at = NOW()
		WHERE id = $1 AND owner_id = $2 AND is_deleted = FALSE
		RETURNING ` + listColumns
	return scanList(r.db.QueryRow(ctx, query, id, ownerID, items))
}

// SoftDelete flags the list; the row and its items stay in place.
func (r *PGListRepo) SoftDelete(ctx context.Context, ownerID int64, id string) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE lists SET is_deleted = TRUE, updated_at = NOW() WHERE id = $1 AND owner_id = $2 AND is_deleted = FALSE`,
		id, ownerID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
