package linkedin

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
	authorizeURL = "https://www.linkedin.com/oauth/v2/authorization"
	tokenURL     = "https://www.linkedin.com/oauth/v2/accessToken"
	apiBaseURL   = "https://api.linkedin.com"

	// w_member_social is the posting permission, the rest feed the profile
	// lookup after connect.
	oauthScopes = "openid profile email w_member_social"
)

var httpClient = &http.Client{Timeout: 30 * time.Second}

var ErrNotConfigured = errors.New("linkedin oauth is not configured")

// OAuthClient implements the three-legged member flow: authorization URL,
// code exchange and refresh.
type OAuthClient struct {
	clientID     string
	clientSecret string
	redirectURL  string
}

func NewOAuthClient(cfg coreconfig.LinkedInConfig) *OAuthClient {
	return &OAuthClient{
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		redirectURL:  cfg.RedirectURL,
	}
}

func (c *OAuthClient) Configured() bool {
	return c.clientID != "" && c.clientSecret != "" && c.redirectURL != ""
}

func (c *OAuthClient) AuthorizationURL() (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}

	query := url.Values{}
	query.Set("response_type", "code")
	query.Set("client_id", c.clientID)
	query.Set("redirect_uri", c.redirectURL)
	query.Set("scope", oauthScopes)
	return authorizeURL + "?" + query.Encode(), nil
}

// Token is the accessToken endpoint response. RefreshToken is only present
// for applications enrolled in the refresh token program.
type Token struct {
	AccessToken           string `json:"access_token"`
	ExpiresIn             int64  `json:"expires_in"`
	RefreshToken          string `json:"refresh_token"`
	RefreshTokenExpiresIn int64  `json:"refresh_token_expires_in"`
	Scope                 string `json:"scope"`
}

func (c *OAuthClient) ExchangeCode(ctx context.Context, code string) (Token, error) {
	return c.tokenRequest(ctx, url.Values{
		"grant_type":    {"authorization_code"},
		"code":          {code},
		"redirect_uri":  {c.redirectURL},
		"client_id":     {c.clientID},
		"client_secret": {c.clientSecret},
	})
}

func (c *OAuthClient) Refresh(ctx context.Context, refreshToken string) (Token, error) {
	return c.tokenRequest(ctx, url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
		"client_id":     {c.clientID},
		"client_secret": {c.clientSecret},
	})
}

func (c *OAuthClient) tokenRequest(ctx context.Context, form url.Values) (Token, error) {
	if !c.Configured() {
		return Token{}, ErrNotConfigured
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return Token{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := httpClient.Do(req)
	if err != nil {
		return Token{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Token{}, err
	}
	if resp.StatusCode >= 400 {
		return Token{}, fmt.Errorf("linkedin token endpoint: status %d: %s", resp.StatusCode, excerpt(body))
	}

	var token Token
	if err := json.Unmarshal(body, &token); err != nil {
		return Token{}, err
	}
	if token.AccessToken == "" {
		return Token{}, errors.New("linkedin token endpoint returned no access_token")
	}
	return token, nil
}

// Profile identifies the connected member. MemberID feeds the author URN
// every post is attributed to.
type Profile struct {
	MemberID string
	Name     string
	Email    string
}

// FetchProfile resolves the member behind a token, preferring the OpenID
// userinfo endpoint and falling back to /v2/me for tokens without the
// openid scope.
func FetchProfile(ctx context.Context, accessToken string) (Profile, error) {
	var userinfo struct {
		Sub   string `json:"sub"`
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	err := apiGet(ctx, accessToken, apiBaseURL+"/v2/userinfo", &userinfo)
	if err == nil && userinfo.Sub != "" {
		return Profile{MemberID: userinfo.Sub, Name: userinfo.Name, Email: userinfo.Email}, nil
	}

	var me struct {
		ID             string `json:"id"`
		LocalizedFirst string `json:"localizedFirstName"`
		LocalizedLast  string `json:"localizedLastName"`
	}
	if meErr := apiGet(ctx, accessToken, apiBaseURL+"/v2/me", &me); meErr == nil && me.ID != "" {
		name := strings.TrimSpace(me.LocalizedFirst + " " + me.LocalizedLast)
		return Profile{MemberID: me.ID, Name: name}, nil
	}

	if err == nil {
		err = errors.New("linkedin profile lookup returned no member id")
	}
	return Profile{}, err
}

// MemberURN formats the author URN posts are attributed to.
func MemberURN(memberID string) string {
	return "urn:li:person:" + memberID
}

func apiGet(ctx context.Context, accessToken, endpoint string, dest interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

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
		return fmt.Errorf("linkedin %s: status %d: %s", endpoint, resp.StatusCode, excerpt(body))
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
