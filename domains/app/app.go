package app

import (
	"context"

	"github.com/l0lsec/PodInsights/pkg/procworker"
	schedApp "github.com/l0lsec/PodInsights/scheduler/application"
)

type StatusResponse struct {
	Version     string `json:"version"`
	Environment string `json:"environment"`
	Uptime      string `json:"uptime"`
	Database    string `json:"database"`
}

type IAppUsecase interface {
	Status(ctx context.Context) (StatusResponse, error)
	WorkerStats(ctx context.Context) (procworker.PoolStats, error)
	SchedulerStats(ctx context.Context) (schedApp.WorkerStats, error)
}
