package dto

import "time"

type CreateListRequest struct {
	Title string `json:"title" binding:"required,min=1,max=120"`
}

type AddItemRequest struct {
	Text string `json:"text" binding:"required,min=1,max=500"`
}

type ItemResponse struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"created_at"`
}

// ListResponse carries the record plus the countdown fields the client
// renders. TimeRemaining/Expired/ExpiringSoon are display metadata computed
// at response time; nothing server-side acts on them.
type ListResponse struct {
	ID            string         `json:"id"`
	Title         string         `json:"title"`
	Items         []ItemResponse `json:"items"`
	Version       int64          `json:"version"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	ExpiresAt     time.Time      `json:"expires_at"`
	TimeRemaining string         `json:"time_remaining"`
	Expired       bool           `json:"expired"`
	ExpiringSoon  bool           `json:"expiring_soon"`
	IsDeleted     bool           `json:"is_deleted,omitempty"`
}

type ListListsResponse struct {
	Items []ListResponse `json:"items"`
}
