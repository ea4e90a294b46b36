package threads

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	coreconfig "github.com/l0lsec/PodInsights/core/config"
)

const (
	authorizeURL = "https://threads.net/oauth/authorize"
	graphBaseURL = "https://graph.threads.net"
	apiVersion   = "v1.0"

	oauthScopes = "threads_basic,threads_content_publish"
)

var httpClient = &http.Client{Timeout: 30 * time.Second}

var ErrNotConfigured = errors.New("threads oauth is not configured")

// OAuthClient implements the Threads flow: the authorization code buys a
// short-lived token, which is immediately traded for a 60-day one.
type OAuthClient struct {
	appID       string
	appSecret   string
	redirectURL string
}

func NewOAuthClient(cfg coreconfig.ThreadsConfig) *OAuthClient {
	return &OAuthClient{
		appID:       cfg.AppID,
		appSecret:   cfg.AppSecret,
		redirectURL: cfg.RedirectURL,
	}
}

func (c *OAuthClient) Configured() bool {
	return c.appID != "" && c.appSecret != "" && c.redirectURL != ""
}

func (c *OAuthClient) AuthorizationURL() (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}

	query := url.Values{}
	query.Set("client_id", c.appID)
	query.Set("redirect_uri", c.redirectURL)
	query.Set("scope", oauthScopes)
	query.Set("response_type", "code")
	return authorizeURL + "?" + query.Encode(), nil
}

// ShortLivedToken is the one-hour token from the code exchange. It only
// exists long enough to be upgraded.
type ShortLivedToken struct {
	AccessToken string      `json:"access_token"`
	UserID      json.Number `json:"user_id"`
}

// Token is a long-lived token, valid for about 60 days and refreshable
// once it is at least a day old.
type Token struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

func (c *OAuthClient) ExchangeCode(ctx context.Context, code string) (ShortLivedToken, error) {
	if !c.Configured() {
		return ShortLivedToken{}, ErrNotConfigured
	}

	form := url.Values{
		"client_id":     {c.appID},
		"client_secret": {c.appSecret},
		"grant_type":    {"authorization_code"},
		"redirect_uri":  {c.redirectURL},
		"code":          {code},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, graphBaseURL+"/oauth/access_token", strings.NewReader(form.Encode()))
	if err != nil {
		return ShortLivedToken{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var token ShortLivedToken
	if err := doJSON(req, &token); err != nil {
		return ShortLivedToken{}, err
	}
	if token.AccessToken == "" {
		return ShortLivedToken{}, errors.New("threads code exchange returned no access_token")
	}
	return token, nil
}

// ExchangeLongLived upgrades a short-lived token to the 60-day one.
func (c *OAuthClient) ExchangeLongLived(ctx context.Context, shortLivedToken string) (Token, error) {
	if !c.Configured() {
		return Token{}, ErrNotConfigured
	}

	query := url.Values{}
	query.Set("grant_type", "th_exchange_token")
	query.Set("client_secret", c.appSecret)
	query.Set("access_token", shortLivedToken)

	return c.getToken(ctx, graphBaseURL+"/access_token?"+query.Encode())
}

// Refresh extends an unexpired long-lived token for another 60 days.
func (c *OAuthClient) Refresh(ctx context.Context, accessToken string) (Token, error) {
	query := url.Values{}
	query.Set("grant_type", "th_refresh_token")
	query.Set("access_token", accessToken)

	return c.getToken(ctx, graphBaseURL+"/refresh_access_token?"+query.Encode())
}

func (c *OAuthClient) getToken(ctx context.Context, endpoint string) (Token, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Token{}, err
	}

	var token Token
	if err := doJSON(req, &token); err != nil {
		return Token{}, err
	}
	if token.AccessToken == "" {
		return Token{}, errors.New("threads token endpoint returned no access_token")
	}
	return token, nil
}

// Profile identifies the connected Threads user.
type Profile struct {
	ID                string `json:"id"`
	Username          string `json:"username"`
	Name              string `json:"name"`
	ProfilePictureURL string `json:"threads_profile_picture_url"`
}

func FetchProfile(ctx context.Context, accessToken string) (Profile, error) {
	query := url.Values{}
	query.Set("fields", "id,username,name,threads_profile_picture_url")
	query.Set("access_token", accessToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/%s/me?%s", graphBaseURL, apiVersion, query.Encode()), nil)
	if err != nil {
		return Profile{}, err
	}

	var profile Profile
	if err := doJSON(req, &profile); err != nil {
		return Profile{}, err
	}
	if profile.ID == "" {
		return Profile{}, errors.New("threads profile lookup returned no id")
	}
	return profile, nil
}

func doJSON(req *http.Request, dest interface{}) error {
	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("threads %s: status %d: %s", req.URL.Path, resp.StatusCode, excerpt(body))
	}
	return json.Unmarshal(body, dest)
}

func excerpt(body []byte) string {
	const limit = 1024
	if len(body) > limit {
		body = body[:limit]
	}
	return string(bytes.TrimSpace(body))
}
