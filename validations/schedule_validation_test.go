package validations

import (
	"context"
	"testing"

	domainScheduler "github.com/l0lsec/PodInsights/domains/scheduler"
	pkgError "github.com/l0lsec/PodInsights/pkg/error"
	"github.com/l0lsec/PodInsights/scheduler/domain/slots"
)

func TestValidateTimeSlot(t *testing.T) {
	ctx := context.Background()

	valid := []domainScheduler.SlotRequest{
		{DayOfWeek: -1, TimeOfDay: "09:30"},
		{DayOfWeek: 0, TimeOfDay: "00:00"},
		{DayOfWeek: 6, TimeOfDay: "23:59"},
	}
	for _, req := range valid {
		if err := ValidateTimeSlot(ctx, req); err != nil {
			t.Errorf("ValidateTimeSlot(%+v) unexpected error: %v", req, err)
		}
	}

	invalid := []domainScheduler.SlotRequest{
		{DayOfWeek: 7, TimeOfDay: "09:30"},
		{DayOfWeek: -2, TimeOfDay: "09:30"},
		{DayOfWeek: 1, TimeOfDay: "9:30"}, // not zero-padded
		{DayOfWeek: 1, TimeOfDay: "24:00"},
		{DayOfWeek: 1, TimeOfDay: "12:60"},
		{DayOfWeek: 1, TimeOfDay: ""},
	}
	for _, req := range invalid {
		err := ValidateTimeSlot(ctx, req)
		if err == nil {
			t.Errorf("ValidateTimeSlot(%+v) expected an error", req)
			continue
		}
		if _, ok := err.(pkgError.ValidationError); !ok {
			t.Errorf("ValidateTimeSlot(%+v) error type %T, want ValidationError", req, err)
		}
	}
}

func TestValidateSlotUpdate(t *testing.T) {
	ctx := context.Background()

	// All fields optional; an empty update is a no-op, not an error.
	if err := ValidateSlotUpdate(ctx, slots.SlotUpdate{}); err != nil {
		t.Errorf("empty update unexpected error: %v", err)
	}

	day := 3
	at := "17:00"
	if err := ValidateSlotUpdate(ctx, slots.SlotUpdate{DayOfWeek: &day, TimeOfDay: &at}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	badDay := 9
	if err := ValidateSlotUpdate(ctx, slots.SlotUpdate{DayOfWeek: &badDay}); err == nil {
		t.Error("expected an error for day 9")
	}
	badTime := "25:00"
	if err := ValidateSlotUpdate(ctx, slots.SlotUpdate{TimeOfDay: &badTime}); err == nil {
		t.Error("expected an error for hour 25")
	}
}

func TestValidateSchedulePost(t *testing.T) {
	ctx := context.Background()

	if err := ValidateSchedulePost(ctx, domainScheduler.EnqueueRequest{
		PostType:  "social",
		ContentID: "sp-1",
		Platform:  "linkedin",
	}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	// Platform may be empty; the stored default fills it in later.
	if err := ValidateSchedulePost(ctx, domainScheduler.EnqueueRequest{
		PostType:  "standalone",
		ContentID: "st-1",
	}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	invalid := []domainScheduler.EnqueueRequest{
		{PostType: "story", ContentID: "sp-1"},
		{PostType: "social"},
		{PostType: "social", ContentID: "sp-1", Platform: "mastodon"},
	}
	for _, req := range invalid {
		if err := ValidateSchedulePost(ctx, req); err == nil {
			t.Errorf("ValidateSchedulePost(%+v) expected an error", req)
		}
	}
}

func TestValidateMove(t *testing.T) {
	ctx := context.Background()

	if err := ValidateMove(ctx, domainScheduler.MoveRequest{PostIDs: []string{"a"}, Position: "top"}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ValidateMove(ctx, domainScheduler.MoveRequest{PostIDs: []string{"a"}, Position: "middle"}); err == nil {
		t.Error("expected an error for an unknown position")
	}
	if err := ValidateMove(ctx, domainScheduler.MoveRequest{Position: "bottom"}); err == nil {
		t.Error("expected an error for missing post ids")
	}
}

func TestValidateDefaultPlatform(t *testing.T) {
	ctx := context.Background()

	if err := ValidateDefaultPlatform(ctx, "threads"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ValidateDefaultPlatform(ctx, "twitter"); err == nil {
		t.Error("expected an error for an unsupported platform")
	}
	if err := ValidateDefaultPlatform(ctx, ""); err == nil {
		t.Error("expected an error for an empty platform")
	}
}
