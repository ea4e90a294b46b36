package usecase

import (
	"context"
	"time"

	domainArticle "github.com/l0lsec/PodInsights/domains/article"
	domainEpisode "github.com/l0lsec/PodInsights/domains/episode"
	"github.com/l0lsec/PodInsights/integrations/ai"
	pkgError "github.com/l0lsec/PodInsights/pkg/error"
	"github.com/l0lsec/PodInsights/repository"
	"github.com/l0lsec/PodInsights/validations"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type serviceArticle struct {
	repo     repository.IContentRepository
	provider ai.Provider
}

func NewArticleService(repo repository.IContentRepository, provider ai.Provider) domainArticle.IArticleUsecase {
	return &serviceArticle{repo: repo, provider: provider}
}

func (service *serviceArticle) Generate(ctx context.Context, request domainArticle.GenerateArticleRequest) (domainArticle.Article, error) {
	if err := validations.ValidateGenerateArticle(ctx, request); err != nil {
		return domainArticle.Article{}, err
	}

	episode, err := service.repo.GetEpisode(ctx, request.EpisodeID)
	if err != nil {
		return domainArticle.Article{}, err
	}
	if episode.Status != domainEpisode.StatusComplete || episode.Transcript == "" {
		return domainArticle.Article{}, pkgError.ValidationError("episode has no transcript yet, process it first")
	}

	content, err := service.provider.GenerateArticle(ctx, episode.Transcript, request.Topic, request.Style)
	if err != nil {
		return domainArticle.Article{}, err
	}

	article := domainArticle.Article{
		ID:        uuid.NewString(),
		EpisodeID: episode.ID,
		Topic:     request.Topic,
		Style:     request.Style,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}

	if err := service.repo.CreateArticle(ctx, article); err != nil {
		return domainArticle.Article{}, err
	}

	logrus.Infof("[ARTICLE] Generated article %s from episode %s (%d chars)", article.ID, episode.ID, len(content))
	return article, nil
}

func (service *serviceArticle) List(ctx context.Context, episodeID string) ([]domainArticle.Article, error) {
	return service.repo.ListArticles(ctx, episodeID)
}

func (service *serviceArticle) Get(ctx context.Context, id string) (domainArticle.Article, error) {
	return service.repo.GetArticle(ctx, id)
}

// Update edits the stored draft. Empty fields keep their current value.
func (service *serviceArticle) Update(ctx context.Context, id string, request domainArticle.UpdateArticleRequest) (domainArticle.Article, error) {
	article, err := service.repo.GetArticle(ctx, id)
	if err != nil {
		return domainArticle.Article{}, err
	}

	if request.Topic != "" {
		article.Topic = request.Topic
	}
	if request.Style != "" {
		article.Style = request.Style
	}
	if request.Content != "" {
		article.Content = request.Content
	}

	if err := service.repo.UpdateArticle(ctx, article); err != nil {
		return domainArticle.Article{}, err
	}
	return article, nil
}

func (service *serviceArticle) Delete(ctx context.Context, id string) error {
	return service.repo.DeleteArticle(ctx, id)
}
