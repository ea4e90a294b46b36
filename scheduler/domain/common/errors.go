package common

import "errors"

var (
	ErrPostNotFound          = errors.New("scheduled post not found")
	ErrNotPending            = errors.New("scheduled post is not pending")
	ErrNoSlotsConfigured     = errors.New("no enabled time slots configured")
	ErrNoAvailableSlot       = errors.New("no available slot within the scheduling window")
	ErrSlotNotFound          = errors.New("time slot not found")
	ErrContentMissing        = errors.New("no content found for scheduled post")
	ErrCredentialUnavailable = errors.New("platform credential unavailable")
	ErrPublishRejected       = errors.New("platform rejected the post")
)
