package service

import (
	"context"
	"errors"
	"testing"
	"time"

	dom "github.com/seriessoft-design/spinlist-mobile-app/internal/domain"

	"github.com/jackc/pgx/v5"
)

type fakeUserRepo struct {
	users   map[int64]dom.User
	seq     int64
	created int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[int64]dom.User{}}
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int64) (dom.User, error) {
	u, ok := r.users[id]
	if !ok {
		return dom.User{}, pgx.ErrNoRows
	}
	return u, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (dom.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return dom.User{}, pgx.ErrNoRows
}

func (r *fakeUserRepo) GetByPhone(_ context.Context, phone string) (dom.User, error) {
	for _, u := range r.users {
		if u.Phone == phone {
			return u, nil
		}
	}
	return dom.User{}, pgx.ErrNoRows
}

func (r *fakeUserRepo) CreateEmail(_ context.Context, email, passwordHash string) (dom.User, error) {
	r.seq++
	r.created++
	u := dom.User{ID: r.seq, Email: email, PasswordHash: passwordHash, CreatedAt: time.Now().UTC()}
	r.users[u.ID] = u
	return u, nil
}

func (r *fakeUserRepo) CreatePhone(_ context.Context, phone string) (dom.User, error) {
	r.seq++
	r.created++
	u := dom.User{ID: r.seq, Phone: phone, CreatedAt: time.Now().UTC()}
	r.users[u.ID] = u
	return u, nil
}

func (r *fakeUserRepo) SetPro(_ context.Context, id int64, isPro bool) error {
	u, ok := r.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	u.IsPro = isPro
	r.users[id] = u
	return nil
}

func TestRegisterValidatesBeforeStore(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewUserService(repo)

	cases := []struct {
		email    string
		password string
		want     error
	}{
		{"not-an-email", "longenough", ErrInvalidEmail},
		{"a@b", "longenough", ErrInvalidEmail},
		{"a@b.co", "short", ErrWeakPassword},
	}
	for _, tc := range cases {
		if _, err := svc.Register(context.Background(), tc.email, tc.password); !errors.Is(err, tc.want) {
			t.Errorf("Register(%q, %q) err = %v, want %v", tc.email, tc.password, err, tc.want)
		}
	}
	if repo.created != 0 {
		t.Fatalf("store was touched %d times by invalid input", repo.created)
	}
}

func TestRegisterAndLogin(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewUserService(repo)

	u, err := svc.Register(context.Background(), "  Anna@Example.COM ", "hunter2hunter2")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if u.Email != "anna@example.com" {
		t.Errorf("email = %q, want lowercased and trimmed", u.Email)
	}
	if u.PasswordHash == "hunter2hunter2" || u.PasswordHash == "" {
		t.Error("password stored without hashing")
	}

	if _, err := svc.ValidateCredentials(context.Background(), "anna@example.com", "hunter2hunter2"); err != nil {
		t.Errorf("valid login failed: %v", err)
	}
	if _, err := svc.ValidateCredentials(context.Background(), "anna@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password err = %v, want ErrInvalidCredentials", err)
	}
	if _, err := svc.ValidateCredentials(context.Background(), "nobody@example.com", "hunter2hunter2"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email err = %v, want ErrInvalidCredentials", err)
	}
}

func TestEnsureByPhone(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewUserService(repo)

	first, err := svc.EnsureByPhone(context.Background(), "+1 (555) 010-2030")
	if err != nil {
		t.Fatalf("EnsureByPhone: %v", err)
	}
	if first.Phone != "+15550102030" {
		t.Errorf("phone = %q, want normalized", first.Phone)
	}

	again, err := svc.EnsureByPhone(context.Background(), "+1 555 010 2030")
	if err != nil {
		t.Fatalf("second EnsureByPhone: %v", err)
	}
	if again.ID != first.ID {
		t.Error("same phone produced a second account")
	}
	if repo.created != 1 {
		t.Errorf("created = %d accounts, want 1", repo.created)
	}

	if _, err := svc.EnsureByPhone(context.Background(), "12"); !errors.Is(err, ErrInvalidPhone) {
		t.Errorf("short phone err = %v, want ErrInvalidPhone", err)
	}

	// A code-only account has no password to log in with.
	if _, err := svc.ValidateCredentials(context.Background(), first.Email, "anything"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("password login on code-only account err = %v, want ErrInvalidCredentials", err)
	}
}
