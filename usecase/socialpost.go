package usecase

import (
	"context"
	"time"

	domainSocial "github.com/l0lsec/PodInsights/domains/socialpost"
	"github.com/l0lsec/PodInsights/integrations/ai"
	"github.com/l0lsec/PodInsights/repository"
	"github.com/l0lsec/PodInsights/validations"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const defaultPostCount = 3

type serviceSocialPost struct {
	repo     repository.IContentRepository
	provider ai.Provider
}

func NewSocialPostService(repo repository.IContentRepository, provider ai.Provider) domainSocial.ISocialPostUsecase {
	return &serviceSocialPost{repo: repo, provider: provider}
}

func (service *serviceSocialPost) Generate(ctx context.Context, request domainSocial.GeneratePostsRequest) ([]domainSocial.SocialPost, error) {
	if err := validations.ValidateGeneratePosts(ctx, request); err != nil {
		return nil, err
	}

	count := request.Count
	if count == 0 {
		count = defaultPostCount
	}

	article, err := service.repo.GetArticle(ctx, request.ArticleID)
	if err != nil {
		return nil, err
	}

	variants, err := service.provider.GeneratePosts(ctx, article.Content, request.Platform, count)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	posts := make([]domainSocial.SocialPost, 0, len(variants))
	for _, variant := range variants {
		post := domainSocial.SocialPost{
			ID:        uuid.NewString(),
			ArticleID: article.ID,
			Platform:  request.Platform,
			Content:   clampPostLength(variant, request.Platform),
			CreatedAt: now,
		}
		if err := service.repo.CreateSocialPost(ctx, post); err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}

	logrus.Infof("[SOCIAL] Generated %d %s posts for article %s", len(posts), request.Platform, article.ID)
	return posts, nil
}

func (service *serviceSocialPost) List(ctx context.Context, articleID string, unusedOnly bool) ([]domainSocial.SocialPost, error) {
	return service.repo.ListSocialPosts(ctx, articleID, unusedOnly)
}

func (service *serviceSocialPost) Get(ctx context.Context, id string) (domainSocial.SocialPost, error) {
	return service.repo.GetSocialPost(ctx, id)
}

// Update replaces the draft text when one is sent and always takes the
// image as given, so clients can clear an attachment.
func (service *serviceSocialPost) Update(ctx context.Context, id string, request domainSocial.UpdatePostRequest) (domainSocial.SocialPost, error) {
	post, err := service.repo.GetSocialPost(ctx, id)
	if err != nil {
		return domainSocial.SocialPost{}, err
	}

	if request.Content != "" {
		post.Content = clampPostLength(request.Content, post.Platform)
	}
	post.ImageURL = request.ImageURL

	if err := service.repo.UpdateSocialPost(ctx, post); err != nil {
		return domainSocial.SocialPost{}, err
	}
	return post, nil
}

func (service *serviceSocialPost) MarkUsed(ctx context.Context, id string) error {
	return service.repo.MarkSocialPostUsed(ctx, id)
}

func (service *serviceSocialPost) Delete(ctx context.Context, id string) error {
	return service.repo.DeleteSocialPost(ctx, id)
}

// clampPostLength enforces the platform character budget on generated
// drafts. The model is told the limit but does not always respect it.
func clampPostLength(text, platform string) string {
	limit := ai.MaxPostLength(platform)
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit-3]) + "..."
}
