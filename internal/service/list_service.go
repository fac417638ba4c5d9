package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	dom "github.com/seriessoft-design/spinlist-mobile-app/internal/domain"
	"github.com/seriessoft-design/spinlist-mobile-app/internal/repo"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/sync/singleflight"

	"github.com/seriessoft-design/spinlist-mobile-app/internal/cache"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrItemNotFound = errors.New("item not found")
	ErrEmptyTitle   = errors.New("title is required")
	ErrEmptyItem    = errors.New("item text is required")
	ErrStaleVersion = errors.New("list changed since it was read")
)

// ChangeNotifier is pinged after every successful list mutation so watchers
// can re-read. cache.Events implements it over Redis pub/sub.
type ChangeNotifier interface {
	ListsChanged(ctx context.Context, ownerID int64)
}

// ListService owns the list lifecycle: create, renew, item edits, soft
// delete. Expiry is never enforced here; no sweep runs anywhere in this
// backend, so an expired list keeps working until someone deletes it. The
// deadline only feeds the countdown the client shows.
type ListService struct {
	repo    repo.ListRepo
	cache   *cache.ListCache
	events  ChangeNotifier
	sf      singleflight.Group
	ttl     time.Duration
	nowFunc func() time.Time
}

// NewListService creates a ListService. If c is nil, caching is disabled; if
// events is nil, watchers are not notified. ttl is the list lifespan (48h).
func NewListService(r repo.ListRepo, c *cache.ListCache, events ChangeNotifier, ttl time.Duration) *ListService {
	return &ListService{
		repo:    r,
		cache:   c,
		events:  events,
		ttl:     ttl,
		nowFunc: func() time.Time { return time.Now().UTC() },
	}
}

// Create makes a fresh list expiring one lifespan from now. The free-tier
// quota is checked by the caller before this; two near-simultaneous creates
// can both pass that check, so the limit is advisory, not a hard guarantee.
func (s *ListService) Create(ctx context.Context, ownerID int64, title string) (dom.List, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return dom.List{}, ErrEmptyTitle
	}
	l, err := s.repo.Create(ctx, ownerID, title, s.nowFunc().Add(s.ttl))
	if err != nil {
		return dom.List{}, err
	}
	s.changed(ctx, ownerID)
	return l, nil
}

// List returns the owner's live lists, newest first, via the cache.
func (s *ListService) List(ctx context.Context, ownerID int64) ([]dom.List, error) {
	if s.cache != nil {
		key := "list:" + strconv.FormatInt(ownerID, 10)
		v, err, _ := s.sf.Do(key, func() (interface{}, error) {
			if list, err := s.cache.GetList(ctx, ownerID); err == nil && list != nil {
				return list, nil
			}
			list, err := s.repo.List(ctx, ownerID)
			if err != nil {
				return nil, err
			}
			_ = s.cache.SetList(ctx, ownerID, list)
			return list, nil
		})
		if err != nil {
			return nil, err
		}
		return v.([]dom.List), nil
	}
	return s.repo.List(ctx, ownerID)
}

// Get fetches one list by id. Soft-deleted lists are still returned, with
// IsDeleted set, so a direct fetch works after deletion.
func (s *ListService) Get(ctx context.Context, ownerID int64, id string) (dom.List, error) {
	l, err := s.repo.GetByID(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.List{}, ErrNotFound
		}
		return dom.List{}, err
	}
	return l, nil
}

// CountActive reports how many live lists the owner holds, for the quota gate.
func (s *ListService) CountActive(ctx context.Context, ownerID int64) (int, error) {
	return s.repo.CountActive(ctx, ownerID)
}

// Renew resets the deadline to now + lifespan. Not additive: a list one
// minute from expiry and a list ten hours past it both land on the same new
// deadline. Missing or soft-deleted lists fail with ErrNotFound.
func (s *ListService) Renew(ctx context.Context, ownerID int64, id string) (dom.List, error) {
	l, err := s.repo.Renew(ctx, ownerID, id, s.nowFunc().Add(s.ttl))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.List{}, ErrNotFound
		}
		return dom.List{}, err
	}
	s.changed(ctx, ownerID)
	return l, nil
}

// AddItem appends an item. Item edits are read-modify-write over the whole
// array: without expectVersion concurrent writers lose updates (last write
// wins), with it a stale writer gets ErrStaleVersion instead.
func (s *ListService) AddItem(ctx context.Context, ownerID int64, listID, text string, expectVersion *int64) (dom.List, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return dom.List{}, ErrEmptyItem
	}
	l, err := s.liveList(ctx, ownerID, listID)
	if err != nil {
		return dom.List{}, err
	}
	items := append(append([]dom.ListItem(nil), l.Items...), dom.ListItem{
		ID:        uuid.NewString(),
		Text:      text,
		CreatedAt: s.nowFunc(),
	})
	return s.writeItems(ctx, ownerID, listID, items, expectVersion)
}

// ToggleItem flips an item's completed flag.
func (s *ListService) ToggleItem(ctx context.Context, ownerID int64, listID, itemID string, expectVersion *int64) (dom.List, error) {
	l, err := s.liveList(ctx, ownerID, listID)
	if err != nil {
		return dom.List{}, err
	}
	items := append([]dom.ListItem(nil), l.Items...)
	found := false
	for i := range items {
		if items[i].ID == itemID {
			items[i].Completed = !items[i].Completed
			found = true
			break
		}
	}
	if !found {
		return dom.List{}, ErrItemNotFound
	}
	return s.writeItems(ctx, ownerID, listID, items, expectVersion)
}

// RemoveItem deletes an item from the array.
func (s *ListService) RemoveItem(ctx context.Context, ownerID int64, listID, itemID string, expectVersion *int64) (dom.List, error) {
	l, err := s.liveList(ctx, ownerID, listID)
	if err != nil {
		return dom.List{}, err
	}
	items := make([]dom.ListItem, 0, len(l.Items))
	for _, it := range l.Items {
		if it.ID != itemID {
			items = append(items, it)
		}
	}
	if len(items) == len(l.Items) {
		return dom.List{}, ErrItemNotFound
	}
	return s.writeItems(ctx, ownerID, listID, items, expectVersion)
}

// Delete soft-deletes the list. The record and its items stay in the store.
func (s *ListService) Delete(ctx context.Context, ownerID int64, id string) error {
	ok, err := s.repo.SoftDelete(ctx, ownerID, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	s.changed(ctx, ownerID)
	return nil
}

// liveList fetches a list for mutation; soft-deleted counts as gone.
func (s *ListService) liveList(ctx context.Context, ownerID int64, id string) (dom.List, error) {
	l, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return dom.List{}, err
	}
	if l.IsDeleted {
		return dom.List{}, ErrNotFound
	}
	return l, nil
}

func (s *ListService) writeItems(ctx context.Context, ownerID int64, listID string, items []dom.ListItem, expectVersion *int64) (dom.List, error) {
	l, err := s.repo.ReplaceItems(ctx, ownerID, listID, items, expectVersion)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			if expectVersion != nil {
				// The row exists (we just read it); the version moved under us.
				if cur, curErr := s.liveList(ctx, ownerID, listID); curErr == nil && cur.Version != *expectVersion {
					return dom.List{}, ErrStaleVersion
				}
			}
			return dom.List{}, ErrNotFound
		}
		return dom.List{}, err
	}
	s.changed(ctx, ownerID)
	return l, nil
}

func (s *ListService) changed(ctx context.Context, ownerID int64) {
	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, ownerID)
	}
	if s.events != nil {
		s.events.ListsChanged(ctx, ownerID)
	}
}
