package repo

import (
	"context"

	dom "github.com/seriessoft-design/spinlist-mobile-app/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DecisionRepo persists spin results. Writes dominate; the only read is the
// recent-history view.
type DecisionRepo interface {
	Create(ctx context.Context, d dom.Decision) (dom.Decision, error)
	Recent(ctx context.Context, ownerID int64, limit int) ([]dom.Decision, error)
}

type PGDecisionRepo struct {
	db *pgxpool.Pool
}

func NewPGDecisionRepo(db *pgxpool.Pool) *PGDecisionRepo {
	return &PGDecisionRepo{db: db}
}

func (r *PGDecisionRepo) Create(ctx context.Context, d dom.Decision) (dom.Decision, error) {
	query := `
		INSERT INTO decisions (owner_id, options, result)
		VALUES ($1, $2, $3)
		RETURNING id, owner_id, options, result, created_at`
	var out dom.Decision
	err := r.db.QueryRow(ctx, query, d.OwnerID, d.Options, d.Result).Scan(
		&out.ID, &out.OwnerID, &out.Options, &out.Result, &out.CreatedAt,
	)
	return out, err
}

func (r *PGDecisionRepo) Recent(ctx context.Context, ownerID int64, limit int) ([]dom.Decision, error) {
	query := `
		SELECT id, owner_id, options, result, created_at
		FROM decisions WHERE owner_id = $1
		ORDER BY created_at DESC LIMIT $2`
	rows, err := r.db.Query(ctx, query, ownerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []dom.Decision
	for rows.Next() {
		var d dom.Decision
		if err := rows.Scan(&d.ID, &d.OwnerID, &d.Options, &d.Result, &d.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, d)
	}
	return list, rows.Err()
}
