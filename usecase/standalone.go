package usecase

import (
	"context"
	"strings"
	"time"

	domainStandalone "github.com/l0lsec/PodInsights/domains/standalone"
	domainURL "github.com/l0lsec/PodInsights/domains/urlsource"
	"github.com/l0lsec/PodInsights/integrations/ai"
	"github.com/l0lsec/PodInsights/repository"
	"github.com/l0lsec/PodInsights/validations"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type serviceStandalone struct {
	repo       repository.IContentRepository
	provider   ai.Provider
	urlSources domainURL.IURLSourceUsecase
}

func NewStandaloneService(repo repository.IContentRepository, provider ai.Provider, urlSources domainURL.IURLSourceUsecase) domainStandalone.IStandaloneUsecase {
	return &serviceStandalone{repo: repo, provider: provider, urlSources: urlSources}
}

func (service *serviceStandalone) Generate(ctx context.Context, request domainStandalone.GeneratePostsRequest) ([]domainStandalone.StandalonePost, error) {
	if err := validations.ValidateGenerateStandalonePosts(ctx, request); err != nil {
		return nil, err
	}

	count := request.Count
	if count == 0 {
		count = defaultPostCount
	}

	sourceText, touchSource, err := service.resolveSource(ctx, request)
	if err != nil {
		return nil, err
	}

	variants, err := service.provider.GeneratePosts(ctx, sourceText, request.Platform, count)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	posts := make([]domainStandalone.StandalonePost, 0, len(variants))
	for _, variant := range variants {
		post := domainStandalone.StandalonePost{
			ID:            uuid.NewString(),
			SourceType:    domainStandalone.SourceType(request.SourceType),
			SourceContent: request.SourceContent,
			Platform:      request.Platform,
			Content:       clampPostLength(variant, request.Platform),
			CreatedAt:     now,
		}
		if err := service.repo.CreateStandalonePost(ctx, post); err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}

	if touchSource != nil {
		touchSource()
	}

	logrus.Infof("[STANDALONE] Generated %d %s posts from %s source", len(posts), request.Platform, request.SourceType)
	return posts, nil
}

// resolveSource turns the request into prompt text. URL sources are
// re-scraped so the generation always sees the live page, and the returned
// callback stamps the source as used once the posts are stored.
func (service *serviceStandalone) resolveSource(ctx context.Context, request domainStandalone.GeneratePostsRequest) (string, func(), error) {
	if domainStandalone.SourceType(request.SourceType) == domainStandalone.SourceText {
		return request.SourceContent, nil, nil
	}

	src, err := service.urlSources.Scrape(ctx, domainURL.ScrapeRequest{URL: request.SourceContent})
	if err != nil {
		return "", nil, err
	}

	parts := make([]string, 0, 3)
	for _, part := range []string{src.Title, src.Description, src.Content} {
		if part != "" {
			parts = append(parts, part)
		}
	}

	touch := func() {
		if err := service.repo.TouchURLSource(ctx, src.ID); err != nil {
			logrus.WithError(err).Warnf("[STANDALONE] Could not mark url source %s as used", src.ID)
		}
	}
	return strings.Join(parts, "\n\n"), touch, nil
}

func (service *serviceStandalone) List(ctx context.Context, platform string, unusedOnly bool) ([]domainStandalone.StandalonePost, error) {
	return service.repo.ListStandalonePosts(ctx, platform, unusedOnly)
}

func (service *serviceStandalone) Get(ctx context.Context, id string) (domainStandalone.StandalonePost, error) {
	return service.repo.GetStandalonePost(ctx, id)
}

func (service *serviceStandalone) Update(ctx context.Context, id string, request domainStandalone.UpdatePostRequest) (domainStandalone.StandalonePost, error) {
	post, err := service.repo.GetStandalonePost(ctx, id)
	if err != nil {
		return domainStandalone.StandalonePost{}, err
	}

	if request.Content != "" {
		post.Content = clampPostLength(request.Content, post.Platform)
	}
	post.ImageURL = request.ImageURL

	if err := service.repo.UpdateStandalonePost(ctx, post); err != nil {
		return domainStandalone.StandalonePost{}, err
	}
	return post, nil
}

func (service *serviceStandalone) MarkUsed(ctx context.Context, id string) error {
	return service.repo.MarkStandalonePostUsed(ctx, id)
}

func (service *serviceStandalone) Delete(ctx context.Context, id string) error {
	return service.repo.DeleteStandalonePost(ctx, id)
}
