package usecase

import (
	"context"
	"fmt"
	"time"

	coreconfig "github.com/l0lsec/PodInsights/core/config"
	"github.com/l0lsec/PodInsights/core/database"
	domainApp "github.com/l0lsec/PodInsights/domains/app"
	pkgError "github.com/l0lsec/PodInsights/pkg/error"
	"github.com/l0lsec/PodInsights/pkg/procworker"
	schedApp "github.com/l0lsec/PodInsights/scheduler/application"
)

type serviceApp struct {
	worker *schedApp.SchedulerWorker
}

func NewAppService(worker *schedApp.SchedulerWorker) domainApp.IAppUsecase {
	return &serviceApp{
		worker: worker,
	}
}

func (service *serviceApp) Status(ctx context.Context) (domainApp.StatusResponse, error) {
	response := domainApp.StatusResponse{
		Version:     coreconfig.Global.App.Version,
		Environment: coreconfig.Global.App.Environment,
		Uptime:      time.Since(procworker.GetGlobalPool().StartedAt()).Round(time.Second).String(),
		Database:    "ok",
	}

	sqlDB, err := database.GetSQLDB()
	if err != nil {
		response.Database = "not initialized"
		return response, nil
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		response.Database = fmt.Sprintf("error: %v", err)
	}
	return response, nil
}

func (service *serviceApp) WorkerStats(ctx context.Context) (procworker.PoolStats, error) {
	return procworker.GetGlobalStats(), nil
}

func (service *serviceApp) SchedulerStats(ctx context.Context) (schedApp.WorkerStats, error) {
	if service.worker == nil {
		return schedApp.WorkerStats{}, pkgError.InternalServerError("scheduler worker is not running")
	}
	return service.worker.Stats(), nil
}
