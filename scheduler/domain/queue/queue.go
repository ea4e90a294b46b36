package queue

import "time"

type Status string

const (
	StatusPending   Status = "pending"
	StatusPosted    Status = "posted"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether a post in this status can never change again.
func (s Status) Terminal() bool {
	return s == StatusPosted || s == StatusCancelled
}

type PostType string

const (
	PostTypeSocial     PostType = "social"
	PostTypeStandalone PostType = "standalone"
)

// ContentRef points at the content a scheduled post will publish. Type
// selects the source table, ID the row within it.
type ContentRef struct {
	Type PostType `json:"type"`
	ID   string   `json:"id"`
}

// FarFuture parks a post outside any reachable slot while the queue is
// being rebuilt. Posts left here simply never come due.
var FarFuture = time.Date(9999, time.December, 31, 23, 59, 59, 0, time.UTC)

// Position names the end of the queue a bulk move targets.
type Position string

const (
	PositionTop    Position = "top"
	PositionBottom Position = "bottom"
)

type ScheduledPost struct {
	ID           string     `json:"id"`
	Content      ContentRef `json:"content"`
	ArticleID    string     `json:"article_id,omitempty"` // provenance when Content.Type is social
	Platform     string     `json:"platform"`
	ScheduledFor time.Time  `json:"scheduled_for"`
	Status       Status     `json:"status"`
	ExternalRef  string     `json:"external_ref,omitempty"` // provider URN or permalink once posted
	ErrorMessage string     `json:"error_message,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	PostedAt     *time.Time `json:"posted_at,omitempty"`
}

// Parked reports whether the post sits at the far-future sentinel.
func (p ScheduledPost) Parked() bool {
	return !p.ScheduledFor.Before(FarFuture)
}
