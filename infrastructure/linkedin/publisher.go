package linkedin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"

	"github.com/l0lsec/PodInsights/integrations/webscrape"
	"github.com/l0lsec/PodInsights/scheduler/domain/publish"
	"github.com/sirupsen/logrus"
)

const (
	restBaseURL    = apiBaseURL + "/rest"
	apiVersion     = "202601"
	restliProtocol = "2.0.0"

	maxImageBytes = 10 << 20
)

var urlPattern = regexp.MustCompile(`https?://[^\s]+`)

// Publisher delivers queue payloads to LinkedIn through the versioned
// posts API. A payload with an image becomes an image post; plain text
// containing a link becomes an article share with scraped metadata;
// anything else is a text post.
type Publisher struct {
	scrape func(ctx context.Context, pageURL string) (webscrape.Page, error)
}

func NewPublisher() *Publisher {
	return &Publisher{scrape: webscrape.Fetch}
}

func (p *Publisher) Platform() string {
	return "linkedin"
}

func (p *Publisher) Publish(ctx context.Context, accessToken string, content publish.Content) (publish.Result, error) {
	profile, err := FetchProfile(ctx, accessToken)
	if err != nil {
		return publish.Result{}, fmt.Errorf("resolve author: %w", err)
	}
	author := MemberURN(profile.MemberID)

	payload := map[string]interface{}{
		"author":         author,
		"commentary":     content.Text,
		"visibility":     "PUBLIC",
		"lifecycleState": "PUBLISHED",
		"distribution": map[string]interface{}{
			"feedDistribution":               "MAIN_FEED",
			"targetEntities":                 []interface{}{},
			"thirdPartyDistributionChannels": []interface{}{},
		},
		"isReshareDisabledByAuthor": false,
	}

	switch {
	case content.ImageURL != "":
		imageURN, err := p.uploadImage(ctx, accessToken, author, content.ImageURL)
		if err != nil {
			return publish.Result{}, fmt.Errorf("upload image: %w", err)
		}
		payload["content"] = map[string]interface{}{
			"media": map[string]interface{}{"id": imageURN},
		}

	default:
		if link := urlPattern.FindString(content.Text); link != "" {
			payload["content"] = p.articleContent(ctx, accessToken, author, strings.TrimRight(link, ".,;:!?)"))
		}
	}

	urn, err := p.createPost(ctx, accessToken, payload)
	if err != nil {
		return publish.Result{}, err
	}

	logrus.Infof("[LINKEDIN] Published post %s", urn)
	return publish.Result{
		ExternalRef: urn,
		Permalink:   "https://www.linkedin.com/feed/update/" + urn,
	}, nil
}

// articleContent turns the first link in the text into an article share.
// Scrape failures degrade to a bare link share rather than failing the
// publish; LinkedIn fills in its own preview then.
func (p *Publisher) articleContent(ctx context.Context, accessToken, author, link string) map[string]interface{} {
	article := map[string]interface{}{"source": link}

	page, err := p.scrape(ctx, link)
	if err != nil {
		logrus.WithError(err).Warnf("[LINKEDIN] Could not scrape %s for article metadata", link)
		return map[string]interface{}{"article": article}
	}

	if page.Title != "" {
		article["title"] = page.Title
	}
	if page.Description != "" {
		article["description"] = page.Description
	}
	if page.OGImage != "" {
		if thumbnail, err := p.uploadImage(ctx, accessToken, author, page.OGImage); err != nil {
			logrus.WithError(err).Warnf("[LINKEDIN] Could not upload article thumbnail from %s", page.OGImage)
		} else {
			article["thumbnail"] = thumbnail
		}
	}
	return map[string]interface{}{"article": article}
}

func (p *Publisher) createPost(ctx context.Context, accessToken string, payload map[string]interface{}) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, restBaseURL+"/posts", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	setRestHeaders(req, accessToken)

	resp, err := httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("linkedin create post: status %d: %s", resp.StatusCode, excerpt(respBody))
	}

	urn := resp.Header.Get("x-restli-id")
	if urn == "" {
		return "", fmt.Errorf("linkedin create post: missing x-restli-id header")
	}
	return urn, nil
}

// uploadImage runs the two-step image flow: initializeUpload reserves an
// URN and a pre-signed target, then the raw bytes go up with a PUT.
func (p *Publisher) uploadImage(ctx context.Context, accessToken, owner, imageURL string) (string, error) {
	initBody, err := json.Marshal(map[string]interface{}{
		"initializeUploadRequest": map[string]interface{}{"owner": owner},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, restBaseURL+"/images?action=initializeUpload", bytes.NewReader(initBody))
	if err != nil {
		return "", err
	}
	setRestHeaders(req, accessToken)

	resp, err := httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("linkedin initializeUpload: status %d: %s", resp.StatusCode, excerpt(respBody))
	}

	var initResp struct {
		Value struct {
			UploadURL string `json:"uploadUrl"`
			Image     string `json:"image"`
		} `json:"value"`
	}
	if err := json.Unmarshal(respBody, &initResp); err != nil {
		return "", err
	}
	if initResp.Value.UploadURL == "" || initResp.Value.Image == "" {
		return "", fmt.Errorf("linkedin initializeUpload: incomplete response")
	}

	imageBytes, err := downloadImage(ctx, imageURL)
	if err != nil {
		return "", err
	}

	putReq, err := http.NewRequestWithContext(ctx, http.MethodPut, initResp.Value.UploadURL, bytes.NewReader(imageBytes))
	if err != nil {
		return "", err
	}
	putReq.Header.Set("Authorization", "Bearer "+accessToken)

	putResp, err := httpClient.Do(putReq)
	if err != nil {
		return "", err
	}
	defer putResp.Body.Close()
	io.Copy(io.Discard, putResp.Body)

	if putResp.StatusCode >= 400 {
		return "", fmt.Errorf("linkedin image upload: status %d", putResp.StatusCode)
	}
	return initResp.Value.Image, nil
}

func downloadImage(ctx context.Context, imageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("download image %s: status %d", imageURL, resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
}

func setRestHeaders(req *http.Request, accessToken string) {
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("LinkedIn-Version", apiVersion)
	req.Header.Set("X-Restli-Protocol-Version", restliProtocol)
}
