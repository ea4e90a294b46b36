package credential

import (
	"context"
	"time"
)

type Platform string

const (
	PlatformLinkedIn Platform = "linkedin"
	PlatformThreads  Platform = "threads"
)

// LinkedInToken is the OAuth state kept for a connected LinkedIn member.
type LinkedInToken struct {
	AccessToken  string     `json:"-"`
	RefreshToken string     `json:"-"`
	ExpiresAt    time.Time  `json:"expires_at"`
	MemberID     string     `json:"member_id"`
	UserURN      string     `json:"user_urn"`
	DisplayName  string     `json:"display_name"`
	Email        string     `json:"email,omitempty"`
	ConnectedAt  *time.Time `json:"connected_at,omitempty"`
}

// ThreadsToken is the long-lived token state for a connected Threads user.
type ThreadsToken struct {
	AccessToken       string     `json:"-"`
	ExpiresAt         time.Time  `json:"expires_at"`
	UserID            string     `json:"user_id"`
	Username          string     `json:"username"`
	DisplayName       string     `json:"display_name,omitempty"`
	ProfilePictureURL string     `json:"profile_picture_url,omitempty"`
	ConnectedAt       *time.Time `json:"connected_at,omitempty"`
}

// Status is what the UI sees: whether a platform is connected and how
// much life the token has left, never the token itself.
type Status struct {
	Platform    Platform   `json:"platform"`
	Connected   bool       `json:"connected"`
	DisplayName string     `json:"display_name,omitempty"`
	Username    string     `json:"username,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	ExpiresIn   string     `json:"expires_in,omitempty"`
}

type ConnectRequest struct {
	Code string `json:"code" form:"code"`
}

type ICredentialUsecase interface {
	AuthorizationURL(ctx context.Context, platform Platform) (string, error)
	Connect(ctx context.Context, platform Platform, request ConnectRequest) (Status, error)
	Status(ctx context.Context, platform Platform) (Status, error)
	StatusAll(ctx context.Context) ([]Status, error)
	Disconnect(ctx context.Context, platform Platform) error

	// EnsureValidToken refreshes behind the scenes when the stored token is
	// close to expiry. The scheduler worker publishes with what it returns.
	EnsureValidToken(ctx context.Context, platform string) (string, error)
}
