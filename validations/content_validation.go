package validations

import (
	"context"

	domainArticle "github.com/l0lsec/PodInsights/domains/article"
	domainCredential "github.com/l0lsec/PodInsights/domains/credential"
	domainFeed "github.com/l0lsec/PodInsights/domains/feed"
	domainSocial "github.com/l0lsec/PodInsights/domains/socialpost"
	domainStandalone "github.com/l0lsec/PodInsights/domains/standalone"
	domainTicket "github.com/l0lsec/PodInsights/domains/ticket"
	domainURL "github.com/l0lsec/PodInsights/domains/urlsource"
	pkgError "github.com/l0lsec/PodInsights/pkg/error"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

func ValidateAddFeed(ctx context.Context, request domainFeed.AddFeedRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.URL, validation.Required),
	)

	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	return nil
}

func ValidateGenerateArticle(ctx context.Context, request domainArticle.GenerateArticleRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.EpisodeID, validation.Required),
	)

	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	return nil
}

func ValidateGeneratePosts(ctx context.Context, request domainSocial.GeneratePostsRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.ArticleID, validation.Required),
		validation.Field(&request.Platform, validation.Required, validation.In("linkedin", "threads")),
		validation.Field(&request.Count, validation.Min(0), validation.Max(10)),
	)

	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	return nil
}

func ValidateGenerateStandalonePosts(ctx context.Context, request domainStandalone.GeneratePostsRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.SourceType, validation.Required, validation.In(string(domainStandalone.SourceText), string(domainStandalone.SourceURL))),
		validation.Field(&request.SourceContent, validation.Required),
		validation.Field(&request.Platform, validation.Required, validation.In("linkedin", "threads")),
		validation.Field(&request.Count, validation.Min(0), validation.Max(10)),
	)

	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	return nil
}

func ValidateScrapeURL(ctx context.Context, request domainURL.ScrapeRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.URL, validation.Required),
	)

	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	return nil
}

func ValidateConnect(ctx context.Context, request domainCredential.ConnectRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.Code, validation.Required),
	)

	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	return nil
}

func ValidateCreateTicket(ctx context.Context, request domainTicket.CreateTicketRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.EpisodeID, validation.Required),
		validation.Field(&request.ActionItem, validation.Required),
	)

	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	return nil
}
