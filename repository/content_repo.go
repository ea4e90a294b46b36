package repository

import (
	"context"
	"errors"

	domainArticle "github.com/l0lsec/PodInsights/domains/article"
	domainEpisode "github.com/l0lsec/PodInsights/domains/episode"
	domainFeed "github.com/l0lsec/PodInsights/domains/feed"
	domainImage "github.com/l0lsec/PodInsights/domains/image"
	domainSocial "github.com/l0lsec/PodInsights/domains/socialpost"
	domainStandalone "github.com/l0lsec/PodInsights/domains/standalone"
	domainTicket "github.com/l0lsec/PodInsights/domains/ticket"
	domainURL "github.com/l0lsec/PodInsights/domains/urlsource"
)

var (
	ErrFeedNotFound      = errors.New("feed not found")
	ErrEpisodeNotFound   = errors.New("episode not found")
	ErrArticleNotFound   = errors.New("article not found")
	ErrPostNotFound      = errors.New("post not found")
	ErrURLSourceNotFound = errors.New("url source not found")
	ErrImageNotFound     = errors.New("image not found")
	ErrTicketNotFound    = errors.New("ticket not found")
)

type ImageStats struct {
	Count     int
	TotalSize int64
}

type IContentRepository interface {
	Init(ctx context.Context) error

	// Feeds
	CreateFeed(ctx context.Context, feed domainFeed.Feed) error
	GetFeed(ctx context.Context, id string) (domainFeed.Feed, error)
	GetFeedByURL(ctx context.Context, url string) (domainFeed.Feed, error)
	ListFeeds(ctx context.Context) ([]domainFeed.Feed, error)
	UpdateFeed(ctx context.Context, feed domainFeed.Feed) error
	// DeleteFeed removes the feed and everything hanging off it:
	// episodes, their articles, those articles' posts and any tickets.
	DeleteFeed(ctx context.Context, id string) error
	DeleteFeeds(ctx context.Context, ids []string) (int64, error)

	// Episodes
	UpsertEpisode(ctx context.Context, ep domainEpisode.Episode) (bool, error)
	GetEpisode(ctx context.Context, id string) (domainEpisode.Episode, error)
	ListEpisodes(ctx context.Context, feedID string) ([]domainEpisode.Episode, error)
	UpdateEpisodeStatus(ctx context.Context, id string, status domainEpisode.Status, errorMessage string) error
	SaveEpisodeResults(ctx context.Context, id string, transcript, summary, actionItems string) error
	DeleteEpisode(ctx context.Context, id string) error

	// Articles
	CreateArticle(ctx context.Context, a domainArticle.Article) error
	GetArticle(ctx context.Context, id string) (domainArticle.Article, error)
	ListArticles(ctx context.Context, episodeID string) ([]domainArticle.Article, error)
	UpdateArticle(ctx context.Context, a domainArticle.Article) error
	DeleteArticle(ctx context.Context, id string) error

	// Social posts
	CreateSocialPost(ctx context.Context, p domainSocial.SocialPost) error
	GetSocialPost(ctx context.Context, id string) (domainSocial.SocialPost, error)
	ListSocialPosts(ctx context.Context, articleID string, unusedOnly bool) ([]domainSocial.SocialPost, error)
	UpdateSocialPost(ctx context.Context, p domainSocial.SocialPost) error
	MarkSocialPostUsed(ctx context.Context, id string) error
	DeleteSocialPost(ctx context.Context, id string) error

	// Standalone posts
	CreateStandalonePost(ctx context.Context, p domainStandalone.StandalonePost) error
	GetStandalonePost(ctx context.Context, id string) (domainStandalone.StandalonePost, error)
	ListStandalonePosts(ctx context.Context, platform string, unusedOnly bool) ([]domainStandalone.StandalonePost, error)
	UpdateStandalonePost(ctx context.Context, p domainStandalone.StandalonePost) error
	MarkStandalonePostUsed(ctx context.Context, id string) error
	DeleteStandalonePost(ctx context.Context, id string) error

	// URL sources
	UpsertURLSource(ctx context.Context, src domainURL.URLSource) (domainURL.URLSource, error)
	GetURLSource(ctx context.Context, id string) (domainURL.URLSource, error)
	GetURLSourceByURL(ctx context.Context, url string) (domainURL.URLSource, error)
	ListURLSources(ctx context.Context) ([]domainURL.URLSource, error)
	TouchURLSource(ctx context.Context, id string) error
	DeleteURLSource(ctx context.Context, id string) error

	// Images
	CreateImage(ctx context.Context, img domainImage.UploadedImage) error
	GetImage(ctx context.Context, id string) (domainImage.UploadedImage, error)
	ListImages(ctx context.Context) ([]domainImage.UploadedImage, error)
	GetImageStats(ctx context.Context) (ImageStats, error)
	DeleteImage(ctx context.Context, id string) error

	// Tickets
	CreateTicket(ctx context.Context, t domainTicket.Ticket) error
	GetTicket(ctx context.Context, id string) (domainTicket.Ticket, error)
	ListTickets(ctx context.Context, episodeID string) ([]domainTicket.Ticket, error)
	DeleteTicket(ctx context.Context, id string) error
}
