package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/l0lsec/PodInsights/scheduler/domain/common"
	"github.com/l0lsec/PodInsights/scheduler/domain/queue"
	"github.com/l0lsec/PodInsights/scheduler/domain/slots"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// --- Persistence Models ---

type scheduledPostModel struct {
	ID           string         `gorm:"primaryKey"`
	ContentType  string         `gorm:"column:content_type;not null"`
	ContentID    string         `gorm:"column:content_id;not null;index"`
	ArticleID    sql.NullString `gorm:"column:article_id;index"`
	Platform     string         `gorm:"column:platform;not null;default:'linkedin';index"`
	ScheduledFor time.Time      `gorm:"column:scheduled_for;not null;index"`
	Status       string         `gorm:"default:'pending';index"`
	ExternalRef  sql.NullString `gorm:"column:external_ref"`
	ErrorMessage sql.NullString `gorm:"column:error_message"`
	CreatedAt    time.Time      `gorm:"not null"`
	PostedAt     *time.Time     `gorm:"column:posted_at"`
}

func (scheduledPostModel) TableName() string { return "scheduled_posts" }

type timeSlotModel struct {
	ID        string    `gorm:"primaryKey"`
	DayOfWeek int       `gorm:"column:day_of_week;not null"`
	TimeOfDay string    `gorm:"column:time_of_day;not null"`
	Enabled   bool      `gorm:"column:enabled;default:true"`
	CreatedAt time.Time `gorm:"not null"`
}

func (timeSlotModel) TableName() string { return "schedule_time_slots" }

type platformLimitModel struct {
	Platform       string `gorm:"primaryKey;column:platform"`
	MaxPostsPerDay int    `gorm:"column:max_posts_per_day;default:0"`
}

func (platformLimitModel) TableName() string { return "platform_daily_limits" }

type scheduleSettingModel struct {
	Key       string    `gorm:"primaryKey;column:setting_key"`
	Value     string    `gorm:"column:setting_value"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (scheduleSettingModel) TableName() string { return "schedule_settings" }

// --- Repository Implementation ---

type SchedulerGormRepository struct {
	db *gorm.DB
}

func NewSchedulerGormRepository(db *gorm.DB) *SchedulerGormRepository {
	return &SchedulerGormRepository{db: db}
}

func (r *SchedulerGormRepository) Init(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(
		&scheduledPostModel{},
		&timeSlotModel{},
		&platformLimitModel{},
		&scheduleSettingModel{},
	)
}

// Scheduled Posts

func (r *SchedulerGormRepository) CreatePost(ctx context.Context, post queue.ScheduledPost) error {
	model := toScheduledPostModel(post)
	return r.db.WithContext(ctx).Create(&model).Error
}

func (r *SchedulerGormRepository) GetPost(ctx context.Context, id string) (queue.ScheduledPost, error) {
	var m scheduledPostModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return queue.ScheduledPost{}, common.ErrPostNotFound
		}
		return queue.ScheduledPost{}, err
	}
	return fromScheduledPostModel(m), nil
}

func (r *SchedulerGormRepository) ListPosts(ctx context.Context, status queue.Status, platform string) ([]queue.ScheduledPost, error) {
	q := r.db.WithContext(ctx).Model(&scheduledPostModel{})
	if status != "" {
		q = q.Where("status = ?", string(status))
	}
	if platform != "" {
		q = q.Where("platform = ?", platform)
	}
	var models []scheduledPostModel
	if err := q.Order("scheduled_for ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	return fromScheduledPostModels(models), nil
}

func (r *SchedulerGormRepository) ListPending(ctx context.Context, platform string) ([]queue.ScheduledPost, error) {
	return r.ListPosts(ctx, queue.StatusPending, platform)
}

func (r *SchedulerGormRepository) ListDue(ctx context.Context, now time.Time) ([]queue.ScheduledPost, error) {
	var models []scheduledPostModel
	err := r.db.WithContext(ctx).
		Where("status = ? AND scheduled_for <= ?", string(queue.StatusPending), now).
		Order("scheduled_for ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return fromScheduledPostModels(models), nil
}

func (r *SchedulerGormRepository) ListPostsForArticle(ctx context.Context, articleID string) ([]queue.ScheduledPost, error) {
	var models []scheduledPostModel
	err := r.db.WithContext(ctx).
		Where("article_id = ?", articleID).
		Order("scheduled_for ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return fromScheduledPostModels(models), nil
}

// UpdatePostTime moves a pending post. Non-pending rows are left alone and
// reported via the bool so callers can treat the race as a no-op.
func (r *SchedulerGormRepository) UpdatePostTime(ctx context.Context, id string, scheduledFor time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&scheduledPostModel{}).
		Where("id = ? AND status = ?", id, string(queue.StatusPending)).
		Update("scheduled_for", scheduledFor.Truncate(time.Second))
	return res.RowsAffected > 0, res.Error
}

// ParkPendingPosts bulk-moves every pending post on a platform to the given
// timestamp so none of them appears in a conflict set while the queue is
// rebuilt.
func (r *SchedulerGormRepository) ParkPendingPosts(ctx context.Context, platform string, parkAt time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&scheduledPostModel{}).
		Where("platform = ? AND status = ?", platform, string(queue.StatusPending)).
		Update("scheduled_for", parkAt.Truncate(time.Second))
	return res.RowsAffected, res.Error
}

// UpdatePostStatus overwrites status, external ref and error message in one
// shot; posted_at is stamped on the transition to posted and cleared
// otherwise, which is what lets an explicit retry wipe stale failure state.
func (r *SchedulerGormRepository) UpdatePostStatus(ctx context.Context, id string, status queue.Status, externalRef, errorMessage string) error {
	var postedAt *time.Time
	if status == queue.StatusPosted {
		now := time.Now().UTC().Truncate(time.Second)
		postedAt = &now
	}
	return r.db.WithContext(ctx).Model(&scheduledPostModel{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":        string(status),
			"external_ref":  sql.NullString{String: externalRef, Valid: externalRef != ""},
			"error_message": sql.NullString{String: errorMessage, Valid: errorMessage != ""},
			"posted_at":     postedAt,
		}).Error
}

func (r *SchedulerGormRepository) CancelPost(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&scheduledPostModel{}).
		Where("id = ? AND status = ?", id, string(queue.StatusPending)).
		Update("status", string(queue.StatusCancelled))
	return res.RowsAffected > 0, res.Error
}

func (r *SchedulerGormRepository) CancelPostsBySource(ctx context.Context, ref queue.ContentRef, platform string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&scheduledPostModel{}).
		Where("content_type = ? AND content_id = ? AND platform = ? AND status = ?",
			string(ref.Type), ref.ID, platform, string(queue.StatusPending)).
		Update("status", string(queue.StatusCancelled))
	return res.RowsAffected > 0, res.Error
}

func (r *SchedulerGormRepository) DeletePost(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&scheduledPostModel{}, "id = ?", id).Error
}

func (r *SchedulerGormRepository) DeletePostsBulk(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Delete(&scheduledPostModel{}, "id IN ?", ids)
	return res.RowsAffected, res.Error
}

func (r *SchedulerGormRepository) ClearPendingPosts(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("status = ?", string(queue.StatusPending)).
		Delete(&scheduledPostModel{})
	return res.RowsAffected, res.Error
}

// CountForDay counts the posts occupying a calendar day: pending ones hold
// their slot and posted ones already consumed it.
func (r *SchedulerGormRepository) CountForDay(ctx context.Context, platform string, dayStart, dayEnd time.Time) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&scheduledPostModel{}).
		Where("platform = ? AND status IN ? AND scheduled_for >= ? AND scheduled_for < ?",
			platform, []string{string(queue.StatusPending), string(queue.StatusPosted)}, dayStart, dayEnd).
		Count(&count).Error
	return int(count), err
}

// Time Slots

func (r *SchedulerGormRepository) ListSlots(ctx context.Context) ([]slots.TimeSlot, error) {
	var models []timeSlotModel
	if err := r.db.WithContext(ctx).Order("day_of_week ASC, time_of_day ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	return fromTimeSlotModels(models), nil
}

func (r *SchedulerGormRepository) ListEnabledSlots(ctx context.Context) ([]slots.TimeSlot, error) {
	var models []timeSlotModel
	err := r.db.WithContext(ctx).
		Where("enabled = ?", true).
		Order("day_of_week ASC, time_of_day ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return fromTimeSlotModels(models), nil
}

func (r *SchedulerGormRepository) AddSlot(ctx context.Context, slot slots.TimeSlot) error {
	model := toTimeSlotModel(slot)
	return r.db.WithContext(ctx).Create(&model).Error
}

func (r *SchedulerGormRepository) UpdateSlot(ctx context.Context, id string, update slots.SlotUpdate) error {
	fields := map[string]interface{}{}
	if update.DayOfWeek != nil {
		fields["day_of_week"] = *update.DayOfWeek
	}
	if update.TimeOfDay != nil {
		fields["time_of_day"] = *update.TimeOfDay
	}
	if update.Enabled != nil {
		fields["enabled"] = *update.Enabled
	}
	if len(fields) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).Model(&timeSlotModel{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return common.ErrSlotNotFound
	}
	return nil
}

func (r *SchedulerGormRepository) DeleteSlot(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&timeSlotModel{}, "id = ?", id).Error
}

// Platform Limits

func (r *SchedulerGormRepository) GetLimit(ctx context.Context, platform string) (slots.PlatformLimit, error) {
	var m platformLimitModel
	if err := r.db.WithContext(ctx).First(&m, "platform = ?", platform).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return slots.PlatformLimit{Platform: platform}, nil
		}
		return slots.PlatformLimit{}, err
	}
	return slots.PlatformLimit{Platform: m.Platform, MaxPostsPerDay: m.MaxPostsPerDay}, nil
}

func (r *SchedulerGormRepository) SetLimit(ctx context.Context, limit slots.PlatformLimit) error {
	model := platformLimitModel{Platform: limit.Platform, MaxPostsPerDay: limit.MaxPostsPerDay}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&model).Error
}

func (r *SchedulerGormRepository) ListLimits(ctx context.Context) ([]slots.PlatformLimit, error) {
	var models []platformLimitModel
	if err := r.db.WithContext(ctx).Order("platform ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]slots.PlatformLimit, len(models))
	for i, m := range models {
		res[i] = slots.PlatformLimit{Platform: m.Platform, MaxPostsPerDay: m.MaxPostsPerDay}
	}
	return res, nil
}

// Settings

func (r *SchedulerGormRepository) GetSetting(ctx context.Context, key string) (string, error) {
	var m scheduleSettingModel
	if err := r.db.WithContext(ctx).First(&m, "setting_key = ?", key).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(m.Value), nil
}

func (r *SchedulerGormRepository) SetSetting(ctx context.Context, key, value string) error {
	model := scheduleSettingModel{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&model).Error
}

// --- Mappers ---

func toScheduledPostModel(p queue.ScheduledPost) scheduledPostModel {
	return scheduledPostModel{
		ID:           p.ID,
		ContentType:  string(p.Content.Type),
		ContentID:    p.Content.ID,
		ArticleID:    sql.NullString{String: p.ArticleID, Valid: p.ArticleID != ""},
		Platform:     p.Platform,
		ScheduledFor: p.ScheduledFor.Truncate(time.Second),
		Status:       string(p.Status),
		ExternalRef:  sql.NullString{String: p.ExternalRef, Valid: p.ExternalRef != ""},
		ErrorMessage: sql.NullString{String: p.ErrorMessage, Valid: p.ErrorMessage != ""},
		CreatedAt:    p.CreatedAt,
		PostedAt:     p.PostedAt,
	}
}

func fromScheduledPostModel(m scheduledPostModel) queue.ScheduledPost {
	return queue.ScheduledPost{
		ID:           m.ID,
		Content:      queue.ContentRef{Type: queue.PostType(m.ContentType), ID: m.ContentID},
		ArticleID:    nullStringValue(m.ArticleID),
		Platform:     m.Platform,
		ScheduledFor: m.ScheduledFor,
		Status:       queue.Status(m.Status),
		ExternalRef:  nullStringValue(m.ExternalRef),
		ErrorMessage: nullStringValue(m.ErrorMessage),
		CreatedAt:    m.CreatedAt,
		PostedAt:     m.PostedAt,
	}
}

func fromScheduledPostModels(models []scheduledPostModel) []queue.ScheduledPost {
	res := make([]queue.ScheduledPost, len(models))
	for i, m := range models {
		res[i] = fromScheduledPostModel(m)
	}
	return res
}

func toTimeSlotModel(s slots.TimeSlot) timeSlotModel {
	return timeSlotModel{
		ID:        s.ID,
		DayOfWeek: s.DayOfWeek,
		TimeOfDay: s.TimeOfDay,
		Enabled:   s.Enabled,
		CreatedAt: s.CreatedAt,
	}
}

func fromTimeSlotModels(models []timeSlotModel) []slots.TimeSlot {
	res := make([]slots.TimeSlot, len(models))
	for i, m := range models {
		res[i] = slots.TimeSlot{
			ID:        m.ID,
			DayOfWeek: m.DayOfWeek,
			TimeOfDay: m.TimeOfDay,
			Enabled:   m.Enabled,
			CreatedAt: m.CreatedAt,
		}
	}
	return res
}

// nullStringValue returns a trimmed string or empty if null.
func nullStringValue(ns sql.NullString) string {
	if !ns.Valid {
		return ""
	}
	return strings.TrimSpace(ns.String)
}
