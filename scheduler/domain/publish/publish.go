package publish

import (
	"context"

	"github.com/l0lsec/PodInsights/scheduler/domain/queue"
)

// Content is a publishable payload resolved from a ContentRef.
type Content struct {
	Text     string
	ImageURL string
}

// Result is what a platform reports back for a successful post.
type Result struct {
	ExternalRef string // URN or media ID
	Permalink   string
}

// Publisher delivers a payload to one platform. Implementations live in
// infrastructure; the worker only sees this contract.
type Publisher interface {
	Platform() string
	Publish(ctx context.Context, accessToken string, content Content) (Result, error)
}

// CredentialSource hands out a valid access token for a platform,
// refreshing behind the scenes when it can.
type CredentialSource interface {
	EnsureValidToken(ctx context.Context, platform string) (string, error)
}

// ContentResolver loads the payload behind a scheduled post's content
// reference and records consumption after a successful publish.
type ContentResolver interface {
	Resolve(ctx context.Context, ref queue.ContentRef) (Content, error)
	MarkUsed(ctx context.Context, ref queue.ContentRef) error
}
