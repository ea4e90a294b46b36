package usecase

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	domainCredential "github.com/l0lsec/PodInsights/domains/credential"
	"github.com/l0lsec/PodInsights/infrastructure/linkedin"
	"github.com/l0lsec/PodInsights/infrastructure/threads"
	"github.com/l0lsec/PodInsights/pkg/crypto"
	pkgError "github.com/l0lsec/PodInsights/pkg/error"
	"github.com/l0lsec/PodInsights/validations"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Refresh buffers: a token closer to expiry than this gets refreshed
// before it is handed to a publisher. Threads tokens last 60 days but
// refresh cheaply, so the window is wide.
const (
	linkedinRefreshBuffer = 5 * time.Minute
	threadsRefreshBuffer  = time.Hour
)

// --- Persistence Model ---

type platformCredentialModel struct {
	ID                string         `gorm:"primaryKey;column:id"`
	Platform          string         `gorm:"column:platform;uniqueIndex;not null"`
	AccessToken       string         `gorm:"column:access_token;not null"`
	RefreshToken      sql.NullString `gorm:"column:refresh_token"`
	ExpiresAt         time.Time      `gorm:"column:expires_at"`
	ExternalID        sql.NullString `gorm:"column:external_id"`
	ExternalURN       sql.NullString `gorm:"column:external_urn"`
	DisplayName       sql.NullString `gorm:"column:display_name"`
	Username          sql.NullString `gorm:"column:username"`
	Email             sql.NullString `gorm:"column:email"`
	ProfilePictureURL sql.NullString `gorm:"column:profile_picture_url"`
	ConnectedAt       time.Time      `gorm:"column:connected_at"`
	UpdatedAt         time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

func (platformCredentialModel) TableName() string {
	return "platform_credentials"
}

type credentialService struct {
	db       *gorm.DB
	linkedin *linkedin.OAuthClient
	threads  *threads.OAuthClient

	// refreshMu keeps concurrent publishes from racing the same refresh.
	refreshMu sync.Mutex
}

func NewCredentialService(db *gorm.DB, linkedinOAuth *linkedin.OAuthClient, threadsOAuth *threads.OAuthClient) domainCredential.ICredentialUsecase {
	s := &credentialService{db: db, linkedin: linkedinOAuth, threads: threadsOAuth}
	if db != nil {
		if err := db.AutoMigrate(&platformCredentialModel{}); err != nil {
			logrus.WithError(err).Error("[CREDENTIAL] failed to init schema")
		}
	} else {
		logrus.Error("[CREDENTIAL] GORM DB is nil, service will be disabled")
	}
	return s
}

func (s *credentialService) ensureDB() error {
	if s.db == nil {
		return pkgError.InternalServerError("credential storage is not initialized")
	}
	return nil
}

func (s *credentialService) AuthorizationURL(ctx context.Context, platform domainCredential.Platform) (string, error) {
	switch platform {
	case domainCredential.PlatformLinkedIn:
		authURL, err := s.linkedin.AuthorizationURL()
		if err != nil {
			return "", pkgError.ValidationError(err.Error())
		}
		return authURL, nil
	case domainCredential.PlatformThreads:
		authURL, err := s.threads.AuthorizationURL()
		if err != nil {
			return "", pkgError.ValidationError(err.Error())
		}
		return authURL, nil
	default:
		return "", pkgError.ValidationError("unknown platform " + string(platform))
	}
}

func (s *credentialService) Connect(ctx context.Context, platform domainCredential.Platform, request domainCredential.ConnectRequest) (domainCredential.Status, error) {
	if err := s.ensureDB(); err != nil {
		return domainCredential.Status{}, err
	}
	if err := validations.ValidateConnect(ctx, request); err != nil {
		return domainCredential.Status{}, err
	}

	switch platform {
	case domainCredential.PlatformLinkedIn:
		if err := s.connectLinkedIn(ctx, request.Code); err != nil {
			return domainCredential.Status{}, err
		}
	case domainCredential.PlatformThreads:
		if err := s.connectThreads(ctx, request.Code); err != nil {
			return domainCredential.Status{}, err
		}
	default:
		return domainCredential.Status{}, pkgError.ValidationError("unknown platform " + string(platform))
	}

	return s.Status(ctx, platform)
}

func (s *credentialService) connectLinkedIn(ctx context.Context, code string) error {
	exchanged, err := s.linkedin.ExchangeCode(ctx, code)
	if err != nil {
		return pkgError.ValidationError("linkedin code exchange failed: " + err.Error())
	}

	profile, err := linkedin.FetchProfile(ctx, exchanged.AccessToken)
	if err != nil {
		return pkgError.ValidationError("linkedin profile lookup failed: " + err.Error())
	}

	now := time.Now().UTC()
	token := domainCredential.LinkedInToken{
		AccessToken:  exchanged.AccessToken,
		RefreshToken: exchanged.RefreshToken,
		ExpiresAt:    now.Add(time.Duration(exchanged.ExpiresIn) * time.Second),
		MemberID:     profile.MemberID,
		UserURN:      linkedin.MemberURN(profile.MemberID),
		DisplayName:  profile.Name,
		Email:        profile.Email,
		ConnectedAt:  &now,
	}

	if err := s.saveLinkedIn(ctx, token); err != nil {
		return err
	}

	logrus.Infof("[CREDENTIAL] Connected linkedin as %s, token valid until %s",
		token.DisplayName, token.ExpiresAt.Format(time.RFC3339))
	return nil
}

func (s *credentialService) connectThreads(ctx context.Context, code string) error {
	short, err := s.threads.ExchangeCode(ctx, code)
	if err != nil {
		return pkgError.ValidationError("threads code exchange failed: " + err.Error())
	}

	longLived, err := s.threads.ExchangeLongLived(ctx, short.AccessToken)
	if err != nil {
		return pkgError.ValidationError("threads long-lived exchange failed: " + err.Error())
	}

	profile, err := threads.FetchProfile(ctx, longLived.AccessToken)
	if err != nil {
		return pkgError.ValidationError("threads profile lookup failed: " + err.Error())
	}

	now := time.Now().UTC()
	token := domainCredential.ThreadsToken{
		AccessToken:       longLived.AccessToken,
		ExpiresAt:         now.Add(time.Duration(longLived.ExpiresIn) * time.Second),
		UserID:            profile.ID,
		Username:          profile.Username,
		DisplayName:       profile.Name,
		ProfilePictureURL: profile.ProfilePictureURL,
		ConnectedAt:       &now,
	}

	if err := s.saveThreads(ctx, token); err != nil {
		return err
	}

	logrus.Infof("[CREDENTIAL] Connected threads as @%s, token valid until %s",
		token.Username, token.ExpiresAt.Format(time.RFC3339))
	return nil
}

func (s *credentialService) Status(ctx context.Context, platform domainCredential.Platform) (domainCredential.Status, error) {
	if err := s.ensureDB(); err != nil {
		return domainCredential.Status{}, err
	}

	model, err := s.findByPlatform(ctx, platform)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domainCredential.Status{Platform: platform, Connected: false}, nil
	}
	if err != nil {
		return domainCredential.Status{}, err
	}

	expiresAt := model.ExpiresAt
	return domainCredential.Status{
		Platform:    platform,
		Connected:   true,
		DisplayName: model.DisplayName.String,
		Username:    model.Username.String,
		ExpiresAt:   &expiresAt,
		ExpiresIn:   humanize.Time(expiresAt),
	}, nil
}

func (s *credentialService) StatusAll(ctx context.Context) ([]domainCredential.Status, error) {
	platforms := []domainCredential.Platform{
		domainCredential.PlatformLinkedIn,
		domainCredential.PlatformThreads,
	}

	statuses := make([]domainCredential.Status, 0, len(platforms))
	for _, platform := range platforms {
		status, err := s.Status(ctx, platform)
		if err != nil {
			return nil, err
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

func (s *credentialService) Disconnect(ctx context.Context, platform domainCredential.Platform) error {
	if err := s.ensureDB(); err != nil {
		return err
	}

	result := s.db.WithContext(ctx).Where("platform = ?", string(platform)).Delete(&platformCredentialModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgError.NotFoundError(string(platform) + " is not connected")
	}

	logrus.Infof("[CREDENTIAL] Disconnected %s", platform)
	return nil
}

// EnsureValidToken returns a usable access token for the platform,
// refreshing first when the stored one is inside its refresh buffer.
func (s *credentialService) EnsureValidToken(ctx context.Context, platform string) (string, error) {
	if err := s.ensureDB(); err != nil {
		return "", err
	}

	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	model, err := s.findByPlatform(ctx, domainCredential.Platform(platform))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", pkgError.UnauthorizedError(platform + " is not connected")
	}
	if err != nil {
		return "", err
	}

	accessToken, err := crypto.Decrypt(model.AccessToken)
	if err != nil {
		return "", pkgError.InternalServerError("could not decrypt stored token: " + err.Error())
	}

	switch domainCredential.Platform(platform) {
	case domainCredential.PlatformLinkedIn:
		return s.ensureLinkedInToken(ctx, model, accessToken)
	case domainCredential.PlatformThreads:
		return s.ensureThreadsToken(ctx, model, accessToken)
	default:
		return "", pkgError.ValidationError("unknown platform " + platform)
	}
}

func (s *credentialService) ensureLinkedInToken(ctx context.Context, model *platformCredentialModel, accessToken string) (string, error) {
	if time.Until(model.ExpiresAt) > linkedinRefreshBuffer {
		return accessToken, nil
	}

	refreshToken := ""
	if model.RefreshToken.Valid {
		refreshToken, _ = crypto.Decrypt(model.RefreshToken.String)
	}
	if refreshToken == "" {
		if time.Now().Before(model.ExpiresAt) {
			return accessToken, nil
		}
		return "", pkgError.UnauthorizedError("linkedin token expired and no refresh token is available, reconnect the account")
	}

	refreshed, err := s.linkedin.Refresh(ctx, refreshToken)
	if err != nil {
		if time.Now().Before(model.ExpiresAt) {
			logrus.WithError(err).Warn("[CREDENTIAL] LinkedIn refresh failed, using remaining token lifetime")
			return accessToken, nil
		}
		return "", pkgError.UnauthorizedError("linkedin token refresh failed: " + err.Error())
	}

	model.ExpiresAt = time.Now().UTC().Add(time.Duration(refreshed.ExpiresIn) * time.Second)
	if err := s.storeTokens(ctx, model, refreshed.AccessToken, refreshed.RefreshToken); err != nil {
		return "", err
	}

	logrus.Infof("[CREDENTIAL] Refreshed linkedin token, valid until %s", model.ExpiresAt.Format(time.RFC3339))
	return refreshed.AccessToken, nil
}

func (s *credentialService) ensureThreadsToken(ctx context.Context, model *platformCredentialModel, accessToken string) (string, error) {
	if time.Until(model.ExpiresAt) > threadsRefreshBuffer {
		return accessToken, nil
	}

	refreshed, err := s.threads.Refresh(ctx, accessToken)
	if err != nil {
		if time.Now().Before(model.ExpiresAt) {
			logrus.WithError(err).Warn("[CREDENTIAL] Threads refresh failed, using remaining token lifetime")
			return accessToken, nil
		}
		return "", pkgError.UnauthorizedError("threads token refresh failed: " + err.Error())
	}

	model.ExpiresAt = time.Now().UTC().Add(time.Duration(refreshed.ExpiresIn) * time.Second)
	if err := s.storeTokens(ctx, model, refreshed.AccessToken, ""); err != nil {
		return "", err
	}

	logrus.Infof("[CREDENTIAL] Refreshed threads token, valid until %s", model.ExpiresAt.Format(time.RFC3339))
	return refreshed.AccessToken, nil
}

// --- Persistence helpers ---

func (s *credentialService) findByPlatform(ctx context.Context, platform domainCredential.Platform) (*platformCredentialModel, error) {
	var model platformCredentialModel
	err := s.db.WithContext(ctx).Where("platform = ?", string(platform)).First(&model).Error
	if err != nil {
		return nil, err
	}
	return &model, nil
}

func (s *credentialService) saveLinkedIn(ctx context.Context, token domainCredential.LinkedInToken) error {
	model, err := s.findByPlatform(ctx, domainCredential.PlatformLinkedIn)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		model = &platformCredentialModel{ID: uuid.NewString(), Platform: string(domainCredential.PlatformLinkedIn)}
	} else if err != nil {
		return err
	}

	encryptedAccess, err := crypto.Encrypt(token.AccessToken)
	if err != nil {
		return pkgError.InternalServerError("could not encrypt token: " + err.Error())
	}
	model.AccessToken = encryptedAccess
	model.RefreshToken = sql.NullString{}
	if token.RefreshToken != "" {
		encryptedRefresh, err := crypto.Encrypt(token.RefreshToken)
		if err != nil {
			return pkgError.InternalServerError("could not encrypt token: " + err.Error())
		}
		model.RefreshToken = sql.NullString{String: encryptedRefresh, Valid: true}
	}

	model.ExpiresAt = token.ExpiresAt
	model.ExternalID = nullable(token.MemberID)
	model.ExternalURN = nullable(token.UserURN)
	model.DisplayName = nullable(token.DisplayName)
	model.Email = nullable(token.Email)
	model.Username = sql.NullString{}
	model.ProfilePictureURL = sql.NullString{}
	model.ConnectedAt = time.Now().UTC()

	return s.db.WithContext(ctx).Save(model).Error
}

func (s *credentialService) saveThreads(ctx context.Context, token domainCredential.ThreadsToken) error {
	model, err := s.findByPlatform(ctx, domainCredential.PlatformThreads)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		model = &platformCredentialModel{ID: uuid.NewString(), Platform: string(domainCredential.PlatformThreads)}
	} else if err != nil {
		return err
	}

	encryptedAccess, err := crypto.Encrypt(token.AccessToken)
	if err != nil {
		return pkgError.InternalServerError("could not encrypt token: " + err.Error())
	}
	model.AccessToken = encryptedAccess
	model.RefreshToken = sql.NullString{}
	model.ExpiresAt = token.ExpiresAt
	model.ExternalID = nullable(token.UserID)
	model.ExternalURN = sql.NullString{}
	model.DisplayName = nullable(token.DisplayName)
	model.Username = nullable(token.Username)
	model.Email = sql.NullString{}
	model.ProfilePictureURL = nullable(token.ProfilePictureURL)
	model.ConnectedAt = time.Now().UTC()

	return s.db.WithContext(ctx).Save(model).Error
}

// storeTokens persists a refreshed token pair. An empty refresh token
// keeps whatever is already stored, since providers only rotate it
// sometimes.
func (s *credentialService) storeTokens(ctx context.Context, model *platformCredentialModel, accessToken, refreshToken string) error {
	encryptedAccess, err := crypto.Encrypt(accessToken)
	if err != nil {
		return pkgError.InternalServerError("could not encrypt token: " + err.Error())
	}
	model.AccessToken = encryptedAccess

	if refreshToken != "" {
		encryptedRefresh, err := crypto.Encrypt(refreshToken)
		if err != nil {
			return pkgError.InternalServerError("could not encrypt token: " + err.Error())
		}
		model.RefreshToken = sql.NullString{String: encryptedRefresh, Valid: true}
	}

	return s.db.WithContext(ctx).Save(model).Error
}

func nullable(value string) sql.NullString {
	if value == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: value, Valid: true}
}
