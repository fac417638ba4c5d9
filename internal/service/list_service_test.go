package service

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	dom "github.com/seriessoft-design/spinlist-mobile-app/internal/domain"

	"github.com/jackc/pgx/v5"
)

// fakeListRepo is an in-memory ListRepo. When snapshot is set, GetByID serves
// that frozen copy instead of current state, which lets a test start two
// read-modify-write cycles from the same pre-mutation view.
type fakeListRepo struct {
	lists    map[string]dom.List
	seq      int
	snapshot *dom.List
}

func newFakeListRepo() *fakeListRepo {
	return &fakeListRepo{lists: map[string]dom.List{}}
}

func (r *fakeListRepo) Create(_ context.Context, ownerID int64, title string, expiresAt time.Time) (dom.List, error) {
	r.seq++
	now := time.Now().UTC()
	l := dom.List{
		ID:        "list-" + strconv.Itoa(r.seq),
		OwnerID:   ownerID,
		Title:     title,
		Items:     []dom.ListItem{},
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: expiresAt,
	}
	r.lists[l.ID] = l
	return l, nil
}

func (r *fakeListRepo) GetByID(_ context.Context, ownerID int64, id string) (dom.List, error) {
	if r.snapshot != nil && r.snapshot.ID == id {
		return *r.snapshot, nil
	}
	l, ok := r.lists[id]
	if !ok || l.OwnerID != ownerID {
		return dom.List{}, pgx.ErrNoRows
	}
	return l, nil
}

func (r *fakeListRepo) List(_ context.Context, ownerID int64) ([]dom.List, error) {
	var out []dom.List
	for _, l := range r.lists {
		if l.OwnerID == ownerID && !l.IsDeleted {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *fakeListRepo) CountActive(_ context.Context, ownerID int64) (int, error) {
	n := 0
	for _, l := range r.lists {
		if l.OwnerID == ownerID && !l.IsDeleted {
			n++
		}
	}
	return n, nil
}

func (r *fakeListRepo) Renew(_ context.Context, ownerID int64, id string, expiresAt time.Time) (dom.List, error) {
	l, ok := r.lists[id]
	if !ok || l.OwnerID != ownerID || l.IsDeleted {
		return dom.List{}, pgx.ErrNoRows
	}
	l.ExpiresAt = expiresAt
	r.lists[id] = l
	return l, nil
}

func (r *fakeListRepo) ReplaceItems(_ context.Context, ownerID int64, id string, items []dom.ListItem, expectVersion *int64) (dom.List, error) {
	l, ok := r.lists[id]
	if !ok || l.OwnerID != ownerID || l.IsDeleted {
		return dom.List{}, pgx.ErrNoRows
	}
	if expectVersion != nil && l.Version != *expectVersion {
		return dom.List{}, pgx.ErrNoRows
	}
	l.Items = items
	l.Version++
	r.lists[id] = l
	return l, nil
}

func (r *fakeListRepo) SoftDelete(_ context.Context, ownerID int64, id string) (bool, error) {
	l, ok := r.lists[id]
	if !ok || l.OwnerID != ownerID || l.IsDeleted {
		return false, nil
	}
	l.IsDeleted = true
	r.lists[id] = l
	return true, nil
}

const listTTL = 48 * time.Hour

func newListService(r *fakeListRepo) *ListService {
	return NewListService(r, nil, nil, listTTL)
}

func TestCreateSetsExpiry(t *testing.T) {
	repo := newFakeListRepo()
	svc := newListService(repo)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.nowFunc = func() time.Time { return now }

	l, err := svc.Create(context.Background(), 1, "  groceries  ")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if l.Title != "groceries" {
		t.Errorf("title = %q, want trimmed", l.Title)
	}
	if !l.ExpiresAt.Equal(now.Add(listTTL)) {
		t.Errorf("ExpiresAt = %v, want %v", l.ExpiresAt, now.Add(listTTL))
	}
	if len(l.Items) != 0 || l.IsDeleted {
		t.Error("new list must start empty and live")
	}

	if _, err := svc.Create(context.Background(), 1, "   "); !errors.Is(err, ErrEmptyTitle) {
		t.Errorf("blank title err = %v, want ErrEmptyTitle", err)
	}
}

func TestRenewResetsDeadlineRegardlessOfRemaining(t *testing.T) {
	repo := newFakeListRepo()
	svc := newListService(repo)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.nowFunc = func() time.Time { return now }

	nearExpiry, _ := repo.Create(context.Background(), 1, "almost gone", now.Add(time.Minute))
	longExpired, _ := repo.Create(context.Background(), 1, "long gone", now.Add(-10*time.Hour))

	a, err := svc.Renew(context.Background(), 1, nearExpiry.ID)
	if err != nil {
		t.Fatalf("Renew near-expiry: %v", err)
	}
	b, err := svc.Renew(context.Background(), 1, longExpired.ID)
	if err != nil {
		t.Fatalf("Renew expired: %v", err)
	}
	want := now.Add(listTTL)
	if !a.ExpiresAt.Equal(want) || !b.ExpiresAt.Equal(want) {
		t.Errorf("renew deadlines %v / %v, want both %v", a.ExpiresAt, b.ExpiresAt, want)
	}
}

func TestRenewMissingOrDeleted(t *testing.T) {
	repo := newFakeListRepo()
	svc := newListService(repo)

	if _, err := svc.Renew(context.Background(), 1, "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing list err = %v, want ErrNotFound", err)
	}

	l, _ := repo.Create(context.Background(), 1, "doomed", time.Now().Add(listTTL))
	if err := svc.Delete(context.Background(), 1, l.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := svc.Renew(context.Background(), 1, l.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("deleted list err = %v, want ErrNotFound", err)
	}
}

func TestSoftDeleteHidesFromListingButNotFetch(t *testing.T) {
	repo := newFakeListRepo()
	svc := newListService(repo)

	l, _ := repo.Create(context.Background(), 1, "keep", time.Now().Add(listTTL))
	if err := svc.Delete(context.Background(), 1, l.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	listing, err := svc.List(context.Background(), 1)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(listing) != 0 {
		t.Errorf("deleted list still in listing: %v", listing)
	}
	n, _ := svc.CountActive(context.Background(), 1)
	if n != 0 {
		t.Errorf("deleted list still counted for quota: %d", n)
	}

	got, err := svc.Get(context.Background(), 1, l.ID)
	if err != nil {
		t.Fatalf("Get after delete: %v", err)
	}
	if !got.IsDeleted {
		t.Error("direct fetch should return the record with IsDeleted set")
	}

	if err := svc.Delete(context.Background(), 1, l.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete err = %v, want ErrNotFound", err)
	}
}

func TestAddItemLastWriteWins(t *testing.T) {
	repo := newFakeListRepo()
	svc := newListService(repo)

	l, _ := repo.Create(context.Background(), 1, "race", time.Now().Add(listTTL))

	// Freeze reads on the pre-mutation snapshot so both writers start from
	// the same empty array, as two devices racing would.
	snap := l
	repo.snapshot = &snap

	if _, err := svc.AddItem(context.Background(), 1, l.ID, "from device A", nil); err != nil {
		t.Fatalf("first AddItem: %v", err)
	}
	if _, err := svc.AddItem(context.Background(), 1, l.ID, "from device B", nil); err != nil {
		t.Fatalf("second AddItem: %v", err)
	}
	repo.snapshot = nil

	final, _ := svc.Get(context.Background(), 1, l.ID)
	if len(final.Items) != 1 {
		t.Fatalf("final items = %d, want 1 (last write wins, not a union)", len(final.Items))
	}
	if final.Items[0].Text != "from device B" {
		t.Errorf("surviving item = %q, want the later write", final.Items[0].Text)
	}
}

func TestAddItemStaleVersionRejected(t *testing.T) {
	repo := newFakeListRepo()
	svc := newListService(repo)

	l, _ := repo.Create(context.Background(), 1, "guarded", time.Now().Add(listTTL))
	readVersion := l.Version

	// Another session writes first, bumping the version.
	if _, err := svc.AddItem(context.Background(), 1, l.ID, "their item", nil); err != nil {
		t.Fatalf("concurrent AddItem: %v", err)
	}

	_, err := svc.AddItem(context.Background(), 1, l.ID, "our item", &readVersion)
	if !errors.Is(err, ErrStaleVersion) {
		t.Fatalf("stale write err = %v, want ErrStaleVersion", err)
	}

	// Re-read and retry with the fresh version.
	cur, _ := svc.Get(context.Background(), 1, l.ID)
	if _, err := svc.AddItem(context.Background(), 1, l.ID, "our item", &cur.Version); err != nil {
		t.Fatalf("retry with fresh version: %v", err)
	}
	final, _ := svc.Get(context.Background(), 1, l.ID)
	if len(final.Items) != 2 {
		t.Errorf("items = %d, want 2 after guarded retry", len(final.Items))
	}
}

func TestToggleAndRemoveItem(t *testing.T) {
	repo := newFakeListRepo()
	svc := newListService(repo)

	l, _ := repo.Create(context.Background(), 1, "chores", time.Now().Add(listTTL))
	l, err := svc.AddItem(context.Background(), 1, l.ID, "dishes", nil)
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	itemID := l.Items[0].ID

	l, err = svc.ToggleItem(context.Background(), 1, l.ID, itemID, nil)
	if err != nil {
		t.Fatalf("ToggleItem: %v", err)
	}
	if !l.Items[0].Completed {
		t.Error("toggle did not complete the item")
	}
	l, err = svc.ToggleItem(context.Background(), 1, l.ID, itemID, nil)
	if err != nil {
		t.Fatalf("ToggleItem back: %v", err)
	}
	if l.Items[0].Completed {
		t.Error("second toggle did not uncomplete the item")
	}

	if _, err := svc.ToggleItem(context.Background(), 1, l.ID, "ghost", nil); !errors.Is(err, ErrItemNotFound) {
		t.Errorf("toggle missing item err = %v, want ErrItemNotFound", err)
	}

	l, err = svc.RemoveItem(context.Background(), 1, l.ID, itemID, nil)
	if err != nil {
		t.Fatalf("RemoveItem: %v", err)
	}
	if len(l.Items) != 0 {
		t.Errorf("items after remove = %d, want 0", len(l.Items))
	}
	if _, err := svc.RemoveItem(context.Background(), 1, l.ID, itemID, nil); !errors.Is(err, ErrItemNotFound) {
		t.Errorf("remove twice err = %v, want ErrItemNotFound", err)
	}
}

func TestItemOpsOnDeletedList(t *testing.T) {
	repo := newFakeListRepo()
	svc := newListService(repo)

	l, _ := repo.Create(context.Background(), 1, "gone", time.Now().Add(listTTL))
	_ = svc.Delete(context.Background(), 1, l.ID)

	if _, err := svc.AddItem(context.Background(), 1, l.ID, "too late", nil); !errors.Is(err, ErrNotFound) {
		t.Errorf("AddItem on deleted err = %v, want ErrNotFound", err)
	}
}
