package repo

import (
	"context"

	dom "github.com/seriessoft-design/spinlist-mobile-app/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

// UserRepo provides user persistence.
type UserRepo interface {
	GetByID(ctx context.Context, id int64) (dom.User, error)
	GetByEmail(ctx context.Context, email string) (dom.User, error)
	GetByPhone(ctx context.Context, phone string) (dom.User, error)
	CreateEmail(ctx context.Context, email, passwordHash string) (dom.User, error)
	CreatePhone(ctx context.Context, phone string) (dom.User, error)
	SetPro(ctx context.Context, id int64, isPro bool) error
}

// PGUserRepo implements UserRepo with Postgres.
type PGUserRepo struct {
	db *pgxpool.Pool
}

// NewPGUserRepo returns a new PGUserRepo.
func NewPGUserRepo(db *pgxpool.Pool) *PGUserRepo {
	return &PGUserRepo{db: db}
}

const userColumns = `id, COALESCE(email, ''), COALESCE(phone, ''), COALESCE(password_hash, ''), is_pro, created_at`

func scanUser(row interface{ Scan(dest ...any) error }) (dom.User, error) {
	var u dom.User
	err := row.Scan(&u.ID, &u.Email, &u.Phone, &u.PasswordHash, &u.IsPro, &u.CreatedAt)
	return u, err
}

func (r *PGUserRepo) GetByID(ctx context.Context, id int64) (dom.User, error) {
	return scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *PGUserRepo) GetByEmail(ctx context.Context, email string) (dom.User, error) {
	return scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

func (r *PGUserRepo) GetByPhone(ctx context.Context, phone string) (dom.User, error) {
	return scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE phone = $1`, phone))
}

// CreateEmail inserts a password account.
func (r *PGUserRepo) CreateEmail(ctx context.Context, email, passwordHash string) (dom.User, error) {
	query := `
		INSERT INTO users (email, password_hash)
		VALUES ($1, $2)
		RETURNING ` + userColumns
	return scanUser(r.db.QueryRow(ctx, query, email, passwordHash))
}

// CreatePhone inserts a passwordless account signed in by one-time code.
func (r *PGUserRepo) CreatePhone(ctx context.Context, phone string) (dom.User, error) {
	query := `
		INSERT INTO users (phone)
		VALUES ($1)
		RETURNING ` + userColumns
	return scanUser(r.db.QueryRow(ctx, query, phone))
}

// SetPro projects the billing entitlement onto the user row. The billing
// provider stays the source of truth; this column is a cache of it.
func (r *PGUserRepo) SetPro(ctx context.Context, id int64, isPro bool) error {
	_, err := r.db.Exec(ctx, `UPDATE users SET is_pro = $2 WHERE id = $1`, id, isPro)
	return err
}
