package validations

import (
	"context"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	domainScheduler "github.com/l0lsec/PodInsights/domains/scheduler"
	pkgError "github.com/l0lsec/PodInsights/pkg/error"
	"github.com/l0lsec/PodInsights/scheduler/domain/queue"
	"github.com/l0lsec/PodInsights/scheduler/domain/slots"
)

// Zero-padded 24h clock. Slot ordering compares these as strings, so a
// non-padded "9:30" would sort after "17:00" and is rejected outright.
var timeOfDayRegex = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

func ValidateSchedulePost(ctx context.Context, request domainScheduler.EnqueueRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.PostType, validation.Required, validation.In(string(queue.PostTypeSocial), string(queue.PostTypeStandalone))),
		validation.Field(&request.ContentID, validation.Required),
		validation.Field(&request.Platform, validation.In("linkedin", "threads")),
	)

	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	return nil
}

func ValidateCancelBySource(ctx context.Context, request domainScheduler.CancelBySourceRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.PostType, validation.Required, validation.In(string(queue.PostTypeSocial), string(queue.PostTypeStandalone))),
		validation.Field(&request.ContentID, validation.Required),
		validation.Field(&request.Platform, validation.Required),
	)

	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	return nil
}

func ValidateTimeSlot(ctx context.Context, request domainScheduler.SlotRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.DayOfWeek, validation.Min(-1), validation.Max(6)),
		validation.Field(&request.TimeOfDay, validation.Required, validation.Match(timeOfDayRegex).Error("must be in HH:MM format")),
	)

	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	return nil
}

func ValidateSlotUpdate(ctx context.Context, update slots.SlotUpdate) error {
	err := validation.ValidateStructWithContext(ctx, &update,
		validation.Field(&update.DayOfWeek, validation.Min(-1), validation.Max(6)),
		validation.Field(&update.TimeOfDay, validation.Match(timeOfDayRegex).Error("must be in HH:MM format")),
	)

	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	return nil
}

func ValidateReorder(ctx context.Context, request domainScheduler.ReorderRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.PostIDs, validation.Required),
	)

	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	return nil
}

func ValidateMove(ctx context.Context, request domainScheduler.MoveRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.PostIDs, validation.Required),
		validation.Field(&request.Position, validation.Required, validation.In(string(queue.PositionTop), string(queue.PositionBottom))),
	)

	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	return nil
}

func ValidateLimit(ctx context.Context, request domainScheduler.LimitRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.MaxPostsPerDay, validation.Min(0)),
	)

	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	return nil
}

func ValidateDefaultPlatform(ctx context.Context, platform string) error {
	err := validation.Validate(platform,
		validation.Required,
		validation.In("linkedin", "threads"),
	)

	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	return nil
}
