package usecase

import (
	"context"
	"fmt"
	"strings"

	coreconfig "github.com/l0lsec/PodInsights/core/config"
	"github.com/l0lsec/PodInsights/repository"
	"github.com/l0lsec/PodInsights/scheduler/domain/publish"
	"github.com/l0lsec/PodInsights/scheduler/domain/queue"
)

// contentResolver loads scheduled-post payloads from the content tables
// and flags the drafts as used after a successful publish.
type contentResolver struct {
	repo repository.IContentRepository
}

func NewContentResolver(repo repository.IContentRepository) publish.ContentResolver {
	return &contentResolver{repo: repo}
}

func (resolver *contentResolver) Resolve(ctx context.Context, ref queue.ContentRef) (publish.Content, error) {
	switch ref.Type {
	case queue.PostTypeSocial:
		post, err := resolver.repo.GetSocialPost(ctx, ref.ID)
		if err != nil {
			return publish.Content{}, err
		}
		return publish.Content{Text: post.Content, ImageURL: publicImageURL(post.ImageURL)}, nil

	case queue.PostTypeStandalone:
		post, err := resolver.repo.GetStandalonePost(ctx, ref.ID)
		if err != nil {
			return publish.Content{}, err
		}
		return publish.Content{Text: post.Content, ImageURL: publicImageURL(post.ImageURL)}, nil

	default:
		return publish.Content{}, fmt.Errorf("unknown content type %q", ref.Type)
	}
}

func (resolver *contentResolver) MarkUsed(ctx context.Context, ref queue.ContentRef) error {
	switch ref.Type {
	case queue.PostTypeSocial:
		return resolver.repo.MarkSocialPostUsed(ctx, ref.ID)
	case queue.PostTypeStandalone:
		return resolver.repo.MarkStandalonePostUsed(ctx, ref.ID)
	default:
		return fmt.Errorf("unknown content type %q", ref.Type)
	}
}

// publicImageURL absolutizes library-relative image paths. The platforms
// fetch attachments themselves, so they need a reachable URL.
func publicImageURL(imageURL string) string {
	if imageURL == "" || !strings.HasPrefix(imageURL, "/") {
		return imageURL
	}
	base := ""
	if coreconfig.Global != nil {
		base = strings.TrimRight(coreconfig.Global.App.BaseUrl, "/")
	}
	return base + imageURL
}
