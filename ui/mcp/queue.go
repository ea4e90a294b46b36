package mcp

import (
	"context"
	"errors"
	"fmt"
	"time"

	domainScheduler "github.com/l0lsec/PodInsights/domains/scheduler"
	"github.com/l0lsec/PodInsights/scheduler/domain/common"
	"github.com/l0lsec/PodInsights/scheduler/domain/queue"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

type QueueHandler struct {
	schedulerService domainScheduler.ISchedulerUsecase
}

func InitMcpQueue(schedulerService domainScheduler.ISchedulerUsecase) *QueueHandler {
	return &QueueHandler{
		schedulerService: schedulerService,
	}
}

func (h *QueueHandler) AddQueueTools(mcpServer *server.MCPServer) {
	mcpServer.AddTool(h.toolSchedulePost(), h.handleSchedulePost)
	mcpServer.AddTool(h.toolListScheduledPosts(), h.handleListScheduledPosts)
	mcpServer.AddTool(h.toolNextAvailableSlot(), h.handleNextAvailableSlot)
}

func (h *QueueHandler) toolSchedulePost() mcp.Tool {
	return mcp.NewTool(
		"schedule_post",
		mcp.WithDescription("Queue a generated social post for publishing, at an explicit time or at the next available slot."),
		mcp.WithTitleAnnotation("Schedule Post"),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(false),
		mcp.WithString("post_type",
			mcp.Description("Content source type: social or standalone."),
			mcp.Required(),
		),
		mcp.WithString("content_id",
			mcp.Description("ID of the generated post to schedule."),
			mcp.Required(),
		),
		mcp.WithString("platform",
			mcp.Description("Target platform, linkedin or threads. Empty uses the default platform."),
		),
		mcp.WithString("scheduled_for",
			mcp.Description("RFC3339 or local timestamp. Empty picks the next available slot."),
		),
	)
}

func (h *QueueHandler) handleSchedulePost(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	postType, err := request.RequireString("post_type")
	if err != nil {
		return nil, err
	}

	contentID, err := request.RequireString("content_id")
	if err != nil {
		return nil, err
	}

	req := domainScheduler.EnqueueRequest{
		PostType:     postType,
		ContentID:    contentID,
		Platform:     request.GetString("platform", ""),
		ScheduledFor: request.GetString("scheduled_for", ""),
	}

	post, err := h.schedulerService.Enqueue(ctx, req)
	if err != nil {
		return nil, err
	}

	fallback := fmt.Sprintf("Post %s scheduled on %s for %s", post.ID, post.Platform, post.ScheduledFor.Format(time.RFC3339))
	return mcp.NewToolResultStructured(post, fallback), nil
}

func (h *QueueHandler) toolListScheduledPosts() mcp.Tool {
	return mcp.NewTool(
		"list_scheduled_posts",
		mcp.WithDescription("List posts in the scheduling queue, optionally filtered by status and platform."),
		mcp.WithTitleAnnotation("List Scheduled Posts"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithString("status",
			mcp.Description("Filter by status: pending, posted, failed or cancelled. Empty returns all."),
		),
		mcp.WithString("platform",
			mcp.Description("Filter by platform, linkedin or threads."),
		),
	)
}

func (h *QueueHandler) handleListScheduledPosts(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status := queue.Status(request.GetString("status", ""))
	platform := request.GetString("platform", "")

	posts, err := h.schedulerService.List(ctx, status, platform)
	if err != nil {
		return nil, err
	}

	fallback := fmt.Sprintf("Found %d scheduled posts", len(posts))
	return mcp.NewToolResultStructured(posts, fallback), nil
}

func (h *QueueHandler) toolNextAvailableSlot() mcp.Tool {
	return mcp.NewTool(
		"next_available_slot",
		mcp.WithDescription("Preview the next free publishing slot for a platform without scheduling anything."),
		mcp.WithTitleAnnotation("Next Available Slot"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithString("platform",
			mcp.Description("Target platform, linkedin or threads. Empty uses the default platform."),
		),
	)
}

func (h *QueueHandler) handleNextAvailableSlot(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	platform := request.GetString("platform", "")

	at, err := h.schedulerService.PreviewNextSlot(ctx, platform)
	if err != nil {
		if errors.Is(err, common.ErrNoSlotsConfigured) || errors.Is(err, common.ErrNoAvailableSlot) {
			return mcp.NewToolResultText(err.Error()), nil
		}
		return nil, err
	}

	resp := map[string]any{"next_slot": at}
	fallback := fmt.Sprintf("Next available slot is %s", at.Format(time.RFC3339))
	return mcp.NewToolResultStructured(resp, fallback), nil
}
