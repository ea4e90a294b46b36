package usecase

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	humanize "github.com/dustin/go-humanize"
	"github.com/google/uuid"
	coreconfig "github.com/l0lsec/PodInsights/core/config"
	domainCredential "github.com/l0lsec/PodInsights/domains/credential"
	"github.com/l0lsec/PodInsights/domains/health"
	"github.com/l0lsec/PodInsights/integrations/ai"
	"github.com/sirupsen/logrus"
)

type healthService struct {
	db                *sql.DB
	credentialUsecase domainCredential.ICredentialUsecase
	provider          ai.Provider
}

func initHealthStorageDB() (*sql.DB, error) {
	dbPath := fmt.Sprintf("%s/health.db", coreconfig.Global.Paths.Storages)
	connStr := fmt.Sprintf("file:%s?_journal_mode=WAL&_foreign_keys=on", dbPath)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, err
	}

	createHealthTable := `
		CREATE TABLE IF NOT EXISTS health_checks (
			id TEXT PRIMARY KEY,
			entity_type TEXT NOT NULL,
			entity_id TEXT NOT NULL,
			status TEXT NOT NULL,
			last_message TEXT,
			last_checked TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			last_success TIMESTAMP,
			UNIQUE(entity_type, entity_id)
		);
	`

	if _, err := db.Exec(createHealthTable); err != nil {
		return nil, err
	}

	return db, nil
}

func NewHealthService(cred domainCredential.ICredentialUsecase, provider ai.Provider) health.IHealthUsecase {
	db, err := initHealthStorageDB()
	if err != nil {
		logrus.WithError(err).Error("[Health] failed to initialize storage")
		return &healthService{db: nil}
	}
	return &healthService{
		db:                db,
		credentialUsecase: cred,
		provider:          provider,
	}
}

func (s *healthService) ensureDB() error {
	if s.db == nil {
		return fmt.Errorf("health storage not initialized")
	}
	return nil
}

func (s *healthService) GetStatus(ctx context.Context) ([]health.HealthRecord, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}

	query := `SELECT id, entity_type, entity_id, status, last_message, last_checked, last_success FROM health_checks`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []health.HealthRecord
	for rows.Next() {
		var r health.HealthRecord
		var lastSuccess sql.NullTime
		if err := rows.Scan(&r.ID, &r.EntityType, &r.EntityID, &r.Status, &r.LastMessage, &r.LastChecked, &lastSuccess); err != nil {
			return nil, err
		}
		if lastSuccess.Valid {
			r.LastSuccess = &lastSuccess.Time
		}
		records = append(records, r)
	}
	return records, nil
}

func (s *healthService) GetEntityStatus(ctx context.Context, entityType health.EntityType, entityID string) (health.HealthRecord, error) {
	if err := s.ensureDB(); err != nil {
		return health.HealthRecord{}, err
	}

	var r health.HealthRecord
	var lastSuccess sql.NullTime
	query := `SELECT id, entity_type, entity_id, status, last_message, last_checked, last_success FROM health_checks WHERE entity_type = ? AND entity_id = ?`
	err := s.db.QueryRowContext(ctx, query, string(entityType), entityID).Scan(&r.ID, &r.EntityType, &r.EntityID, &r.Status, &r.LastMessage, &r.LastChecked, &lastSuccess)
	if err != nil {
		if err == sql.ErrNoRows {
			return health.HealthRecord{
				EntityType: entityType,
				EntityID:   entityID,
				Status:     health.StatusUnknown,
			}, nil
		}
		return r, err
	}
	if lastSuccess.Valid {
		r.LastSuccess = &lastSuccess.Time
	}
	return r, nil
}

func (s *healthService) upsertStatus(ctx context.Context, r health.HealthRecord) error {
	if err := s.ensureDB(); err != nil {
		return err
	}

	if r.ID == "" {
		// Try to find existing ID
		existing, _ := s.GetEntityStatus(ctx, r.EntityType, r.EntityID)
		if existing.ID != "" {
			r.ID = existing.ID
		} else {
			r.ID = uuid.NewString()
		}
	}

	query := `
		INSERT INTO health_checks (id, entity_type, entity_id, status, last_message, last_checked, last_success)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(entity_type, entity_id) DO UPDATE SET
			status = excluded.status,
			last_message = excluded.last_message,
			last_checked = excluded.last_checked,
			last_success = CASE WHEN excluded.status = 'OK' THEN excluded.last_checked ELSE last_success END
	`

	now := time.Now()
	_, err := s.db.ExecContext(ctx, query, r.ID, string(r.EntityType), r.EntityID, string(r.Status), r.LastMessage, now, now)
	return err
}

func (s *healthService) CheckCredential(ctx context.Context, platform string) (health.HealthRecord, error) {
	record := health.HealthRecord{
		EntityType: health.EntityCredential,
		EntityID:   platform,
		Status:     health.StatusOk,
	}

	status, err := s.credentialUsecase.Status(ctx, domainCredential.Platform(platform))
	switch {
	case err != nil:
		record.Status = health.StatusError
		record.LastMessage = err.Error()
	case !status.Connected:
		record.Status = health.StatusError
		record.LastMessage = fmt.Sprintf("%s account is not connected", platform)
	case status.ExpiresAt != nil && time.Now().After(*status.ExpiresAt):
		record.Status = health.StatusError
		record.LastMessage = fmt.Sprintf("Token expired %s", humanize.Time(*status.ExpiresAt))
	case status.ExpiresIn != "":
		record.LastMessage = fmt.Sprintf("Token valid, expires %s", status.ExpiresIn)
	default:
		record.LastMessage = "Token valid"
	}

	err = s.upsertStatus(ctx, record)
	return record, err
}

func (s *healthService) CheckProvider(ctx context.Context) (health.HealthRecord, error) {
	record := health.HealthRecord{
		EntityType: health.EntityProvider,
		EntityID:   "default",
		Status:     health.StatusOk,
	}

	if s.provider == nil {
		record.Status = health.StatusError
		record.LastMessage = "no ai provider configured"
	} else {
		record.EntityID = s.provider.Name()
		if err := s.provider.Ping(ctx); err != nil {
			record.Status = health.StatusError
			record.LastMessage = err.Error()
		} else {
			record.LastMessage = "Provider reachable"
		}
	}

	err := s.upsertStatus(ctx, record)
	return record, err
}

func (s *healthService) CheckAll(ctx context.Context) ([]health.HealthRecord, error) {
	var results []health.HealthRecord

	// Accounts that were never connected stay off the board.
	statuses, err := s.credentialUsecase.StatusAll(ctx)
	if err == nil {
		for _, st := range statuses {
			if !st.Connected {
				continue
			}
			res, _ := s.CheckCredential(ctx, string(st.Platform))
			results = append(results, res)
		}
	}

	res, _ := s.CheckProvider(ctx)
	results = append(results, res)

	return results, nil
}

func (s *healthService) ReportFailure(ctx context.Context, entityType health.EntityType, entityID string, message string) {
	record := health.HealthRecord{
		EntityType:  entityType,
		EntityID:    entityID,
		Status:      health.StatusError,
		LastMessage: message,
	}
	if err := s.upsertStatus(ctx, record); err != nil {
		logrus.WithError(err).Warn("[Health] failed to record failure report")
	}
}

func (s *healthService) ReportSuccess(ctx context.Context, entityType health.EntityType, entityID string) {
	record := health.HealthRecord{
		EntityType:  entityType,
		EntityID:    entityID,
		Status:      health.StatusOk,
		LastMessage: "Reported healthy",
	}
	if err := s.upsertStatus(ctx, record); err != nil {
		logrus.WithError(err).Warn("[Health] failed to record success report")
	}
}

func (s *healthService) StartPeriodicChecks(ctx context.Context) {
	logrus.Info("[Health] starting periodic health checks loop (interval: 30m)")
	ticker := time.NewTicker(30 * time.Minute)

	// Run once at start
	go func() {
		logrus.Info("[Health] performing initial health check")
		s.CheckAll(ctx)
	}()

	go func() {
		for {
			select {
			case <-ctx.Done():
				ticker.Stop()
				return
			case <-ticker.C:
				logrus.Info("[Health] performing scheduled health check")
				s.CheckAll(ctx)
			}
		}
	}()
}
