package usecase

import (
	"context"

	domainURL "github.com/l0lsec/PodInsights/domains/urlsource"
	"github.com/l0lsec/PodInsights/integrations/webscrape"
	pkgError "github.com/l0lsec/PodInsights/pkg/error"
	"github.com/l0lsec/PodInsights/repository"
	"github.com/l0lsec/PodInsights/validations"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type serviceURLSource struct {
	repo repository.IContentRepository
}

func NewURLSourceService(repo repository.IContentRepository) domainURL.IURLSourceUsecase {
	return &serviceURLSource{repo: repo}
}

func (service *serviceURLSource) Scrape(ctx context.Context, request domainURL.ScrapeRequest) (domainURL.URLSource, error) {
	if err := validations.ValidateScrapeURL(ctx, request); err != nil {
		return domainURL.URLSource{}, err
	}

	page, err := webscrape.Fetch(ctx, request.URL)
	if err != nil {
		return domainURL.URLSource{}, pkgError.ValidationError("could not scrape url: " + err.Error())
	}

	src, err := service.repo.UpsertURLSource(ctx, domainURL.URLSource{
		ID:          uuid.NewString(),
		URL:         request.URL,
		Title:       page.Title,
		Description: page.Description,
		Content:     page.Text,
		OGImage:     page.OGImage,
	})
	if err != nil {
		return domainURL.URLSource{}, err
	}

	logrus.Infof("[URL_SOURCE] Scraped %s (%d chars)", request.URL, len(src.Content))
	return src, nil
}

func (service *serviceURLSource) List(ctx context.Context) ([]domainURL.URLSource, error) {
	return service.repo.ListURLSources(ctx)
}

func (service *serviceURLSource) Get(ctx context.Context, id string) (domainURL.URLSource, error) {
	return service.repo.GetURLSource(ctx, id)
}

func (service *serviceURLSource) Delete(ctx context.Context, id string) error {
	return service.repo.DeleteURLSource(ctx, id)
}
