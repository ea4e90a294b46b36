package repository

import (
	"context"
	"database/sql"
	"time"

	domainArticle "github.com/l0lsec/PodInsights/domains/article"
	domainEpisode "github.com/l0lsec/PodInsights/domains/episode"
	domainFeed "github.com/l0lsec/PodInsights/domains/feed"
	domainImage "github.com/l0lsec/PodInsights/domains/image"
	domainSocial "github.com/l0lsec/PodInsights/domains/socialpost"
	domainStandalone "github.com/l0lsec/PodInsights/domains/standalone"
	domainTicket "github.com/l0lsec/PodInsights/domains/ticket"
	domainURL "github.com/l0lsec/PodInsights/domains/urlsource"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// --- Persistence Models ---

type feedModel struct {
	ID          string     `gorm:"primaryKey"`
	URL         string     `gorm:"column:url;not null;uniqueIndex"`
	Title       string     `gorm:"column:title"`
	FeedType    string     `gorm:"column:feed_type"`
	LastPost    *time.Time `gorm:"column:last_post"`
	ItemCount   int        `gorm:"column:item_count;default:0"`
	LastChecked *time.Time `gorm:"column:last_checked"`
	CreatedAt   time.Time  `gorm:"not null"`
}

func (feedModel) TableName() string { return "feeds" }

type episodeModel struct {
	ID           string         `gorm:"primaryKey"`
	FeedID       string         `gorm:"column:feed_id;not null;index"`
	URL          string         `gorm:"column:url;not null;uniqueIndex"`
	Title        string         `gorm:"column:title"`
	Transcript   sql.NullString `gorm:"column:transcript"`
	Summary      sql.NullString `gorm:"column:summary"`
	ActionItems  sql.NullString `gorm:"column:action_items"`
	Status       string         `gorm:"default:'queued';index"`
	ErrorMessage sql.NullString `gorm:"column:error_message"`
	Published    *time.Time     `gorm:"column:published"`
	ProcessedAt  *time.Time     `gorm:"column:processed_at"`
	CreatedAt    time.Time      `gorm:"not null"`
}

func (episodeModel) TableName() string { return "episodes" }

type articleModel struct {
	ID        string    `gorm:"primaryKey"`
	EpisodeID string    `gorm:"column:episode_id;not null;index"`
	Topic     string    `gorm:"column:topic"`
	Style     string    `gorm:"column:style"`
	Content   string    `gorm:"column:content"`
	CreatedAt time.Time `gorm:"not null"`
}

func (articleModel) TableName() string { return "articles" }

type socialPostModel struct {
	ID        string         `gorm:"primaryKey"`
	ArticleID string         `gorm:"column:article_id;not null;index"`
	Platform  string         `gorm:"column:platform;not null"`
	Content   string         `gorm:"column:content"`
	ImageURL  sql.NullString `gorm:"column:image_url"`
	Used      bool           `gorm:"column:used;default:false;index"`
	CreatedAt time.Time      `gorm:"not null"`
}

func (socialPostModel) TableName() string { return "social_posts" }

type standalonePostModel struct {
	ID            string         `gorm:"primaryKey"`
	SourceType    string         `gorm:"column:source_type;not null"`
	SourceContent string         `gorm:"column:source_content"`
	Platform      string         `gorm:"column:platform;not null"`
	Content       string         `gorm:"column:content"`
	ImageURL      sql.NullString `gorm:"column:image_url"`
	Used          bool           `gorm:"column:used;default:false;index"`
	CreatedAt     time.Time      `gorm:"not null"`
}

func (standalonePostModel) TableName() string { return "standalone_posts" }

type urlSourceModel struct {
	ID          string         `gorm:"primaryKey"`
	URL         string         `gorm:"column:url;not null;uniqueIndex"`
	Title       string         `gorm:"column:title"`
	Description string         `gorm:"column:description"`
	Content     string         `gorm:"column:content"`
	OGImage     sql.NullString `gorm:"column:og_image"`
	LastUsedAt  *time.Time     `gorm:"column:last_used_at"`
	CreatedAt   time.Time      `gorm:"not null"`
}

func (urlSourceModel) TableName() string { return "url_sources" }

type uploadedImageModel struct {
	ID           string         `gorm:"primaryKey"`
	Filename     string         `gorm:"column:filename;not null"`
	URL          string         `gorm:"column:url;not null;uniqueIndex"`
	ThumbnailURL sql.NullString `gorm:"column:thumbnail_url"`
	Storage      string         `gorm:"column:storage;default:'local'"`
	Size         int64          `gorm:"column:size;default:0"`
	CreatedAt    time.Time      `gorm:"not null"`
}

func (uploadedImageModel) TableName() string { return "uploaded_images" }

type ticketModel struct {
	ID         string    `gorm:"primaryKey"`
	EpisodeID  string    `gorm:"column:episode_id;not null;index"`
	ActionItem string    `gorm:"column:action_item"`
	TicketKey  string    `gorm:"column:ticket_key;not null"`
	TicketURL  string    `gorm:"column:ticket_url"`
	CreatedAt  time.Time `gorm:"not null"`
}

func (ticketModel) TableName() string { return "jira_tickets" }

// --- Repository Implementation ---

type ContentGormRepository struct {
	db *gorm.DB
}

func NewContentGormRepository(db *gorm.DB) *ContentGormRepository {
	return &ContentGormRepository{db: db}
}

func (r *ContentGormRepository) Init(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(
		&feedModel{},
		&episodeModel{},
		&articleModel{},
		&socialPostModel{},
		&standalonePostModel{},
		&urlSourceModel{},
		&uploadedImageModel{},
		&ticketModel{},
	)
}

// Feeds

func (r *ContentGormRepository) CreateFeed(ctx context.Context, feed domainFeed.Feed) error {
	model := toFeedModel(feed)
	if model.CreatedAt.IsZero() {
		model.CreatedAt = time.Now().UTC()
	}
	return r.db.WithContext(ctx).Create(&model).Error
}

func (r *ContentGormRepository) GetFeed(ctx context.Context, id string) (domainFeed.Feed, error) {
	var m feedModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domainFeed.Feed{}, ErrFeedNotFound
		}
		return domainFeed.Feed{}, err
	}
	return fromFeedModel(m), nil
}

func (r *ContentGormRepository) GetFeedByURL(ctx context.Context, url string) (domainFeed.Feed, error) {
	var m feedModel
	if err := r.db.WithContext(ctx).First(&m, "url = ?", url).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domainFeed.Feed{}, ErrFeedNotFound
		}
		return domainFeed.Feed{}, err
	}
	return fromFeedModel(m), nil
}

func (r *ContentGormRepository) ListFeeds(ctx context.Context) ([]domainFeed.Feed, error) {
	var models []feedModel
	if err := r.db.WithContext(ctx).Order("title ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	feeds := make([]domainFeed.Feed, len(models))
	for i, m := range models {
		feeds[i] = fromFeedModel(m)
	}
	return feeds, nil
}

func (r *ContentGormRepository) UpdateFeed(ctx context.Context, feed domainFeed.Feed) error {
	updates := map[string]any{
		"title":        feed.Title,
		"feed_type":    feed.FeedType,
		"last_post":    feed.LastPost,
		"item_count":   feed.ItemCount,
		"last_checked": feed.LastChecked,
	}
	result := r.db.WithContext(ctx).Model(&feedModel{}).Where("id = ?", feed.ID).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrFeedNotFound
	}
	return nil
}

func (r *ContentGormRepository) DeleteFeed(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m feedModel
		if err := tx.First(&m, "id = ?", id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrFeedNotFound
			}
			return err
		}
		if err := deleteFeedChildren(tx, []string{id}); err != nil {
			return err
		}
		return tx.Delete(&feedModel{}, "id = ?", id).Error
	})
}

func (r *ContentGormRepository) DeleteFeeds(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var deleted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := deleteFeedChildren(tx, ids); err != nil {
			return err
		}
		result := tx.Where("id IN ?", ids).Delete(&feedModel{})
		if result.Error != nil {
			return result.Error
		}
		deleted = result.RowsAffected
		return nil
	})
	return deleted, err
}

// deleteFeedChildren walks the ownership chain bottom-up so no orphaned
// rows survive: posts before articles, articles and tickets before episodes.
func deleteFeedChildren(tx *gorm.DB, feedIDs []string) error {
	articleIDs := tx.Model(&articleModel{}).Select("id").
		Where("episode_id IN (?)", tx.Model(&episodeModel{}).Select("id").Where("feed_id IN ?", feedIDs))
	if err := tx.Where("article_id IN (?)", articleIDs).Delete(&socialPostModel{}).Error; err != nil {
		return err
	}

	episodeIDs := tx.Model(&episodeModel{}).Select("id").Where("feed_id IN ?", feedIDs)
	if err := tx.Where("episode_id IN (?)", episodeIDs).Delete(&articleModel{}).Error; err != nil {
		return err
	}

	ticketEpisodeIDs := tx.Model(&episodeModel{}).Select("id").Where("feed_id IN ?", feedIDs)
	if err := tx.Where("episode_id IN (?)", ticketEpisodeIDs).Delete(&ticketModel{}).Error; err != nil {
		return err
	}

	return tx.Where("feed_id IN ?", feedIDs).Delete(&episodeModel{}).Error
}

// Episodes

func (r *ContentGormRepository) UpsertEpisode(ctx context.Context, ep domainEpisode.Episode) (bool, error) {
	model := toEpisodeModel(ep)
	if model.CreatedAt.IsZero() {
		model.CreatedAt = time.Now().UTC()
	}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "url"}}, DoNothing: true}).
		Create(&model)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *ContentGormRepository) GetEpisode(ctx context.Context, id string) (domainEpisode.Episode, error) {
	var m episodeModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domainEpisode.Episode{}, ErrEpisodeNotFound
		}
		return domainEpisode.Episode{}, err
	}
	return fromEpisodeModel(m), nil
}

func (r *ContentGormRepository) ListEpisodes(ctx context.Context, feedID string) ([]domainEpisode.Episode, error) {
	q := r.db.WithContext(ctx).Model(&episodeModel{})
	if feedID != "" {
		q = q.Where("feed_id = ?", feedID)
	}
	var models []episodeModel
	if err := q.Order("published DESC").Find(&models).Error; err != nil {
		return nil, err
	}
	episodes := make([]domainEpisode.Episode, len(models))
	for i, m := range models {
		episodes[i] = fromEpisodeModel(m)
	}
	return episodes, nil
}

func (r *ContentGormRepository) UpdateEpisodeStatus(ctx context.Context, id string, status domainEpisode.Status, errorMessage string) error {
	updates := map[string]any{
		"status":        string(status),
		"error_message": sql.NullString{String: errorMessage, Valid: errorMessage != ""},
	}
	result := r.db.WithContext(ctx).Model(&episodeModel{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrEpisodeNotFound
	}
	return nil
}

func (r *ContentGormRepository) SaveEpisodeResults(ctx context.Context, id string, transcript, summary, actionItems string) error {
	now := time.Now().UTC()
	updates := map[string]any{
		"transcript":    sql.NullString{String: transcript, Valid: transcript != ""},
		"summary":       sql.NullString{String: summary, Valid: summary != ""},
		"action_items":  sql.NullString{String: actionItems, Valid: actionItems != ""},
		"status":        string(domainEpisode.StatusComplete),
		"error_message": sql.NullString{},
		"processed_at":  &now,
	}
	result := r.db.WithContext(ctx).Model(&episodeModel{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrEpisodeNotFound
	}
	return nil
}

func (r *ContentGormRepository) DeleteEpisode(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		articleIDs := tx.Model(&articleModel{}).Select("id").Where("episode_id = ?", id)
		if err := tx.Where("article_id IN (?)", articleIDs).Delete(&socialPostModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("episode_id = ?", id).Delete(&articleModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("episode_id = ?", id).Delete(&ticketModel{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&episodeModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrEpisodeNotFound
		}
		return nil
	})
}

// Articles

func (r *ContentGormRepository) CreateArticle(ctx context.Context, a domainArticle.Article) error {
	model := toArticleModel(a)
	if model.CreatedAt.IsZero() {
		model.CreatedAt = time.Now().UTC()
	}
	return r.db.WithContext(ctx).Create(&model).Error
}

func (r *ContentGormRepository) GetArticle(ctx context.Context, id string) (domainArticle.Article, error) {
	var m articleModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domainArticle.Article{}, ErrArticleNotFound
		}
		return domainArticle.Article{}, err
	}
	return fromArticleModel(m), nil
}

func (r *ContentGormRepository) ListArticles(ctx context.Context, episodeID string) ([]domainArticle.Article, error) {
	q := r.db.WithContext(ctx).Model(&articleModel{})
	if episodeID != "" {
		q = q.Where("episode_id = ?", episodeID)
	}
	var models []articleModel
	if err := q.Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, err
	}
	articles := make([]domainArticle.Article, len(models))
	for i, m := range models {
		articles[i] = fromArticleModel(m)
	}
	return articles, nil
}

func (r *ContentGormRepository) UpdateArticle(ctx context.Context, a domainArticle.Article) error {
	updates := map[string]any{
		"topic":   a.Topic,
		"style":   a.Style,
		"content": a.Content,
	}
	result := r.db.WithContext(ctx).Model(&articleModel{}).Where("id = ?", a.ID).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrArticleNotFound
	}
	return nil
}

func (r *ContentGormRepository) DeleteArticle(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("article_id = ?", id).Delete(&socialPostModel{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&articleModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrArticleNotFound
		}
		return nil
	})
}

// Social posts

func (r *ContentGormRepository) CreateSocialPost(ctx context.Context, p domainSocial.SocialPost) error {
	model := toSocialPostModel(p)
	if model.CreatedAt.IsZero() {
		model.CreatedAt = time.Now().UTC()
	}
	return r.db.WithContext(ctx).Create(&model).Error
}

func (r *ContentGormRepository) GetSocialPost(ctx context.Context, id string) (domainSocial.SocialPost, error) {
	var m socialPostModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domainSocial.SocialPost{}, ErrPostNotFound
		}
		return domainSocial.SocialPost{}, err
	}
	return fromSocialPostModel(m), nil
}

func (r *ContentGormRepository) ListSocialPosts(ctx context.Context, articleID string, unusedOnly bool) ([]domainSocial.SocialPost, error) {
	q := r.db.WithContext(ctx).Model(&socialPostModel{})
	if articleID != "" {
		q = q.Where("article_id = ?", articleID)
	}
	if unusedOnly {
		q = q.Where("used = ?", false)
	}
	var models []socialPostModel
	if err := q.Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, err
	}
	posts := make([]domainSocial.SocialPost, len(models))
	for i, m := range models {
		posts[i] = fromSocialPostModel(m)
	}
	return posts, nil
}

func (r *ContentGormRepository) UpdateSocialPost(ctx context.Context, p domainSocial.SocialPost) error {
	updates := map[string]any{
		"content":   p.Content,
		"image_url": sql.NullString{String: p.ImageURL, Valid: p.ImageURL != ""},
	}
	result := r.db.WithContext(ctx).Model(&socialPostModel{}).Where("id = ?", p.ID).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPostNotFound
	}
	return nil
}

func (r *ContentGormRepository) MarkSocialPostUsed(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Model(&socialPostModel{}).Where("id = ?", id).Update("used", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPostNotFound
	}
	return nil
}

func (r *ContentGormRepository) DeleteSocialPost(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&socialPostModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPostNotFound
	}
	return nil
}

// Standalone posts

func (r *ContentGormRepository) CreateStandalonePost(ctx context.Context, p domainStandalone.StandalonePost) error {
	model := toStandalonePostModel(p)
	if model.CreatedAt.IsZero() {
		model.CreatedAt = time.Now().UTC()
	}
	return r.db.WithContext(ctx).Create(&model).Error
}

func (r *ContentGormRepository) GetStandalonePost(ctx context.Context, id string) (domainStandalone.StandalonePost, error) {
	var m standalonePostModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domainStandalone.StandalonePost{}, ErrPostNotFound
		}
		return domainStandalone.StandalonePost{}, err
	}
	return fromStandalonePostModel(m), nil
}

func (r *ContentGormRepository) ListStandalonePosts(ctx context.Context, platform string, unusedOnly bool) ([]domainStandalone.StandalonePost, error) {
	q := r.db.WithContext(ctx).Model(&standalonePostModel{})
	if platform != "" {
		q = q.Where("platform = ?", platform)
	}
	if unusedOnly {
		q = q.Where("used = ?", false)
	}
	var models []standalonePostModel
	if err := q.Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, err
	}
	posts := make([]domainStandalone.StandalonePost, len(models))
	for i, m := range models {
		posts[i] = fromStandalonePostModel(m)
	}
	return posts, nil
}

func (r *ContentGormRepository) UpdateStandalonePost(ctx context.Context, p domainStandalone.StandalonePost) error {
	updates := map[string]any{
		"content":   p.Content,
		"image_url": sql.NullString{String: p.ImageURL, Valid: p.ImageURL != ""},
	}
	result := r.db.WithContext(ctx).Model(&standalonePostModel{}).Where("id = ?", p.ID).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPostNotFound
	}
	return nil
}

func (r *ContentGormRepository) MarkStandalonePostUsed(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Model(&standalonePostModel{}).Where("id = ?", id).Update("used", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPostNotFound
	}
	return nil
}

func (r *ContentGormRepository) DeleteStandalonePost(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&standalonePostModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPostNotFound
	}
	return nil
}

// URL sources

func (r *ContentGormRepository) UpsertURLSource(ctx context.Context, src domainURL.URLSource) (domainURL.URLSource, error) {
	model := toURLSourceModel(src)
	if model.CreatedAt.IsZero() {
		model.CreatedAt = time.Now().UTC()
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "url"}},
			DoUpdates: clause.AssignmentColumns([]string{"title", "description", "content", "og_image"}),
		}).
		Create(&model).Error
	if err != nil {
		return domainURL.URLSource{}, err
	}
	// Re-read so the caller sees the surviving row, not the candidate ID.
	return r.GetURLSourceByURL(ctx, src.URL)
}

func (r *ContentGormRepository) GetURLSource(ctx context.Context, id string) (domainURL.URLSource, error) {
	var m urlSourceModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domainURL.URLSource{}, ErrURLSourceNotFound
		}
		return domainURL.URLSource{}, err
	}
	return fromURLSourceModel(m), nil
}

func (r *ContentGormRepository) GetURLSourceByURL(ctx context.Context, url string) (domainURL.URLSource, error) {
	var m urlSourceModel
	if err := r.db.WithContext(ctx).First(&m, "url = ?", url).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domainURL.URLSource{}, ErrURLSourceNotFound
		}
		return domainURL.URLSource{}, err
	}
	return fromURLSourceModel(m), nil
}

func (r *ContentGormRepository) ListURLSources(ctx context.Context) ([]domainURL.URLSource, error) {
	var models []urlSourceModel
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, err
	}
	sources := make([]domainURL.URLSource, len(models))
	for i, m := range models {
		sources[i] = fromURLSourceModel(m)
	}
	return sources, nil
}

func (r *ContentGormRepository) TouchURLSource(ctx context.Context, id string) error {
	now := time.Now().UTC()
	result := r.db.WithContext(ctx).Model(&urlSourceModel{}).Where("id = ?", id).Update("last_used_at", &now)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrURLSourceNotFound
	}
	return nil
}

func (r *ContentGormRepository) DeleteURLSource(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&urlSourceModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrURLSourceNotFound
	}
	return nil
}

// Images

func (r *ContentGormRepository) CreateImage(ctx context.Context, img domainImage.UploadedImage) error {
	model := toUploadedImageModel(img)
	if model.CreatedAt.IsZero() {
		model.CreatedAt = time.Now().UTC()
	}
	return r.db.WithContext(ctx).Create(&model).Error
}

func (r *ContentGormRepository) GetImage(ctx context.Context, id string) (domainImage.UploadedImage, error) {
	var m uploadedImageModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domainImage.UploadedImage{}, ErrImageNotFound
		}
		return domainImage.UploadedImage{}, err
	}
	return fromUploadedImageModel(m), nil
}

func (r *ContentGormRepository) ListImages(ctx context.Context) ([]domainImage.UploadedImage, error) {
	var models []uploadedImageModel
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, err
	}
	images := make([]domainImage.UploadedImage, len(models))
	for i, m := range models {
		images[i] = fromUploadedImageModel(m)
	}
	return images, nil
}

func (r *ContentGormRepository) GetImageStats(ctx context.Context) (ImageStats, error) {
	var row struct {
		Count     int
		TotalSize int64
	}
	err := r.db.WithContext(ctx).Model(&uploadedImageModel{}).
		Select("COUNT(*) AS count, COALESCE(SUM(size), 0) AS total_size").
		Scan(&row).Error
	if err != nil {
		return ImageStats{}, err
	}
	return ImageStats{Count: row.Count, TotalSize: row.TotalSize}, nil
}

func (r *ContentGormRepository) DeleteImage(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&uploadedImageModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrImageNotFound
	}
	return nil
}

// Tickets

func (r *ContentGormRepository) CreateTicket(ctx context.Context, t domainTicket.Ticket) error {
	model := toTicketModel(t)
	if model.CreatedAt.IsZero() {
		model.CreatedAt = time.Now().UTC()
	}
	return r.db.WithContext(ctx).Create(&model).Error
}

func (r *ContentGormRepository) GetTicket(ctx context.Context, id string) (domainTicket.Ticket, error) {
	var m ticketModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domainTicket.Ticket{}, ErrTicketNotFound
		}
		return domainTicket.Ticket{}, err
	}
	return fromTicketModel(m), nil
}

func (r *ContentGormRepository) ListTickets(ctx context.Context, episodeID string) ([]domainTicket.Ticket, error) {
	q := r.db.WithContext(ctx).Model(&ticketModel{})
	if episodeID != "" {
		q = q.Where("episode_id = ?", episodeID)
	}
	var models []ticketModel
	if err := q.Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, err
	}
	tickets := make([]domainTicket.Ticket, len(models))
	for i, m := range models {
		tickets[i] = fromTicketModel(m)
	}
	return tickets, nil
}

func (r *ContentGormRepository) DeleteTicket(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&ticketModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTicketNotFound
	}
	return nil
}

// --- Mappers ---

func toFeedModel(f domainFeed.Feed) feedModel {
	return feedModel{
		ID:          f.ID,
		URL:         f.URL,
		Title:       f.Title,
		FeedType:    f.FeedType,
		LastPost:    f.LastPost,
		ItemCount:   f.ItemCount,
		LastChecked: f.LastChecked,
	}
}

func fromFeedModel(m feedModel) domainFeed.Feed {
	return domainFeed.Feed{
		ID:          m.ID,
		URL:         m.URL,
		Title:       m.Title,
		FeedType:    m.FeedType,
		LastPost:    m.LastPost,
		ItemCount:   m.ItemCount,
		LastChecked: m.LastChecked,
	}
}

func toEpisodeModel(e domainEpisode.Episode) episodeModel {
	return episodeModel{
		ID:           e.ID,
		FeedID:       e.FeedID,
		URL:          e.URL,
		Title:        e.Title,
		Transcript:   sql.NullString{String: e.Transcript, Valid: e.Transcript != ""},
		Summary:      sql.NullString{String: e.Summary, Valid: e.Summary != ""},
		ActionItems:  sql.NullString{String: e.ActionItems, Valid: e.ActionItems != ""},
		Status:       string(e.Status),
		ErrorMessage: sql.NullString{String: e.Error, Valid: e.Error != ""},
		Published:    e.Published,
		ProcessedAt:  e.ProcessedAt,
	}
}

func fromEpisodeModel(m episodeModel) domainEpisode.Episode {
	return domainEpisode.Episode{
		ID:          m.ID,
		FeedID:      m.FeedID,
		URL:         m.URL,
		Title:       m.Title,
		Transcript:  m.Transcript.String,
		Summary:     m.Summary.String,
		ActionItems: m.ActionItems.String,
		Status:      domainEpisode.Status(m.Status),
		Error:       m.ErrorMessage.String,
		Published:   m.Published,
		ProcessedAt: m.ProcessedAt,
	}
}

func toArticleModel(a domainArticle.Article) articleModel {
	return articleModel{
		ID:        a.ID,
		EpisodeID: a.EpisodeID,
		Topic:     a.Topic,
		Style:     a.Style,
		Content:   a.Content,
		CreatedAt: a.CreatedAt,
	}
}

func fromArticleModel(m articleModel) domainArticle.Article {
	return domainArticle.Article{
		ID:        m.ID,
		EpisodeID: m.EpisodeID,
		Topic:     m.Topic,
		Style:     m.Style,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
	}
}

func toSocialPostModel(p domainSocial.SocialPost) socialPostModel {
	return socialPostModel{
		ID:        p.ID,
		ArticleID: p.ArticleID,
		Platform:  p.Platform,
		Content:   p.Content,
		ImageURL:  sql.NullString{String: p.ImageURL, Valid: p.ImageURL != ""},
		Used:      p.Used,
		CreatedAt: p.CreatedAt,
	}
}

func fromSocialPostModel(m socialPostModel) domainSocial.SocialPost {
	return domainSocial.SocialPost{
		ID:        m.ID,
		ArticleID: m.ArticleID,
		Platform:  m.Platform,
		Content:   m.Content,
		ImageURL:  m.ImageURL.String,
		Used:      m.Used,
		CreatedAt: m.CreatedAt,
	}
}

func toStandalonePostModel(p domainStandalone.StandalonePost) standalonePostModel {
	return standalonePostModel{
		ID:            p.ID,
		SourceType:    string(p.SourceType),
		SourceContent: p.SourceContent,
		Platform:      p.Platform,
		Content:       p.Content,
		ImageURL:      sql.NullString{String: p.ImageURL, Valid: p.ImageURL != ""},
		Used:          p.Used,
		CreatedAt:     p.CreatedAt,
	}
}

func fromStandalonePostModel(m standalonePostModel) domainStandalone.StandalonePost {
	return domainStandalone.StandalonePost{
		ID:            m.ID,
		SourceType:    domainStandalone.SourceType(m.SourceType),
		SourceContent: m.SourceContent,
		Platform:      m.Platform,
		Content:       m.Content,
		ImageURL:      m.ImageURL.String,
		Used:          m.Used,
		CreatedAt:     m.CreatedAt,
	}
}

func toURLSourceModel(s domainURL.URLSource) urlSourceModel {
	return urlSourceModel{
		ID:          s.ID,
		URL:         s.URL,
		Title:       s.Title,
		Description: s.Description,
		Content:     s.Content,
		OGImage:     sql.NullString{String: s.OGImage, Valid: s.OGImage != ""},
		LastUsedAt:  s.LastUsedAt,
		CreatedAt:   s.CreatedAt,
	}
}

func fromURLSourceModel(m urlSourceModel) domainURL.URLSource {
	return domainURL.URLSource{
		ID:          m.ID,
		URL:         m.URL,
		Title:       m.Title,
		Description: m.Description,
		Content:     m.Content,
		OGImage:     m.OGImage.String,
		LastUsedAt:  m.LastUsedAt,
		CreatedAt:   m.CreatedAt,
	}
}

func toUploadedImageModel(img domainImage.UploadedImage) uploadedImageModel {
	return uploadedImageModel{
		ID:           img.ID,
		Filename:     img.Filename,
		URL:          img.URL,
		ThumbnailURL: sql.NullString{String: img.ThumbnailURL, Valid: img.ThumbnailURL != ""},
		Storage:      img.Storage,
		Size:         img.Size,
		CreatedAt:    img.CreatedAt,
	}
}

func fromUploadedImageModel(m uploadedImageModel) domainImage.UploadedImage {
	return domainImage.UploadedImage{
		ID:           m.ID,
		Filename:     m.Filename,
		URL:          m.URL,
		ThumbnailURL: m.ThumbnailURL.String,
		Storage:      m.Storage,
		Size:         m.Size,
		CreatedAt:    m.CreatedAt,
	}
}

func toTicketModel(t domainTicket.Ticket) ticketModel {
	return ticketModel{
		ID:         t.ID,
		EpisodeID:  t.EpisodeID,
		ActionItem: t.ActionItem,
		TicketKey:  t.TicketKey,
		TicketURL:  t.TicketURL,
	}
}

func fromTicketModel(m ticketModel) domainTicket.Ticket {
	return domainTicket.Ticket{
		ID:         m.ID,
		EpisodeID:  m.EpisodeID,
		ActionItem: m.ActionItem,
		TicketKey:  m.TicketKey,
		TicketURL:  m.TicketURL,
	}
}
