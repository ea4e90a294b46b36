package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	domainEpisode "github.com/l0lsec/PodInsights/domains/episode"
	domainFeed "github.com/l0lsec/PodInsights/domains/feed"
	pkgError "github.com/l0lsec/PodInsights/pkg/error"
	"github.com/l0lsec/PodInsights/repository"
	"github.com/l0lsec/PodInsights/validations"
	"github.com/google/uuid"
	"github.com/mmcdole/gofeed"
	"github.com/sirupsen/logrus"
)

type serviceFeed struct {
	repo   repository.IContentRepository
	parser *gofeed.Parser
}

func NewFeedService(repo repository.IContentRepository) domainFeed.IFeedUsecase {
	return &serviceFeed{repo: repo, parser: gofeed.NewParser()}
}

func (service *serviceFeed) Add(ctx context.Context, request domainFeed.AddFeedRequest) (domainFeed.Feed, error) {
	if err := validations.ValidateAddFeed(ctx, request); err != nil {
		return domainFeed.Feed{}, err
	}

	if _, err := service.repo.GetFeedByURL(ctx, request.URL); err == nil {
		return domainFeed.Feed{}, pkgError.ConflictError("feed is already registered")
	} else if !errors.Is(err, repository.ErrFeedNotFound) {
		return domainFeed.Feed{}, err
	}

	parsed, err := service.parser.ParseURLWithContext(request.URL, ctx)
	if err != nil {
		return domainFeed.Feed{}, pkgError.ValidationError("could not fetch or parse feed: " + err.Error())
	}

	now := time.Now().UTC()
	feed := domainFeed.Feed{
		ID:          uuid.NewString(),
		URL:         request.URL,
		Title:       parsed.Title,
		FeedType:    parsed.FeedType,
		ItemCount:   len(parsed.Items),
		LastPost:    newestPublished(parsed.Items),
		LastChecked: &now,
	}

	if err := service.repo.CreateFeed(ctx, feed); err != nil {
		return domainFeed.Feed{}, err
	}

	added, err := service.syncEpisodes(ctx, feed.ID, parsed.Items)
	if err != nil {
		return domainFeed.Feed{}, err
	}

	logrus.Infof("[FEED] Added %s feed %q with %d episodes", feed.FeedType, feed.Title, added)
	return feed, nil
}

func (service *serviceFeed) List(ctx context.Context) ([]domainFeed.Feed, error) {
	return service.repo.ListFeeds(ctx)
}

func (service *serviceFeed) Get(ctx context.Context, id string) (domainFeed.Feed, error) {
	return service.repo.GetFeed(ctx, id)
}

// Refresh re-fetches the feed, updates its metadata and inserts any
// episodes published since the last check. Known episodes are left alone.
func (service *serviceFeed) Refresh(ctx context.Context, id string) (domainFeed.Feed, error) {
	feed, err := service.repo.GetFeed(ctx, id)
	if err != nil {
		return domainFeed.Feed{}, err
	}

	parsed, err := service.parser.ParseURLWithContext(feed.URL, ctx)
	if err != nil {
		return domainFeed.Feed{}, pkgError.ValidationError("could not fetch or parse feed: " + err.Error())
	}

	now := time.Now().UTC()
	if parsed.Title != "" {
		feed.Title = parsed.Title
	}
	feed.FeedType = parsed.FeedType
	feed.ItemCount = len(parsed.Items)
	feed.LastPost = newestPublished(parsed.Items)
	feed.LastChecked = &now

	if err := service.repo.UpdateFeed(ctx, feed); err != nil {
		return domainFeed.Feed{}, err
	}

	added, err := service.syncEpisodes(ctx, feed.ID, parsed.Items)
	if err != nil {
		return domainFeed.Feed{}, err
	}

	logrus.Infof("[FEED] Refreshed %q: %d new episodes", feed.Title, added)
	return feed, nil
}

func (service *serviceFeed) Delete(ctx context.Context, id string) error {
	return service.repo.DeleteFeed(ctx, id)
}

func (service *serviceFeed) DeleteBulk(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	return service.repo.DeleteFeeds(ctx, ids)
}

// syncEpisodes upserts one episode per feed item. The episode URL is the
// audio enclosure when the item has one, otherwise the item link.
func (service *serviceFeed) syncEpisodes(ctx context.Context, feedID string, items []*gofeed.Item) (int, error) {
	added := 0
	for _, item := range items {
		episodeURL := enclosureURL(item)
		if episodeURL == "" {
			continue
		}

		inserted, err := service.repo.UpsertEpisode(ctx, domainEpisode.Episode{
			ID:        uuid.NewString(),
			FeedID:    feedID,
			URL:       episodeURL,
			Title:     item.Title,
			Status:    domainEpisode.StatusQueued,
			Published: item.PublishedParsed,
		})
		if err != nil {
			return added, err
		}
		if inserted {
			added++
		}
	}
	return added, nil
}

func enclosureURL(item *gofeed.Item) string {
	for _, enc := range item.Enclosures {
		if enc != nil && enc.URL != "" && strings.HasPrefix(enc.Type, "audio/") {
			return enc.URL
		}
	}
	for _, enc := range item.Enclosures {
		if enc != nil && enc.URL != "" {
			return enc.URL
		}
	}
	return item.Link
}

func newestPublished(items []*gofeed.Item) *time.Time {
	var newest *time.Time
	for _, item := range items {
		if item.PublishedParsed == nil {
			continue
		}
		if newest == nil || item.PublishedParsed.After(*newest) {
			newest = item.PublishedParsed
		}
	}
	return newest
}
