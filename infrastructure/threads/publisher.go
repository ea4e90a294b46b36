package threads

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/l0lsec/PodInsights/scheduler/domain/publish"
	"github.com/sirupsen/logrus"
)

const maxPostRunes = 500

// Image containers transcode server-side and can take a while; text ones
// are usually ready on the first poll.
var (
	textPollAttempts  = 10
	textPollInterval  = 500 * time.Millisecond
	imagePollAttempts = 30
	imagePollInterval = time.Second
)

// Publisher delivers queue payloads through the Threads container flow:
// create a media container, wait for it to finish server-side processing,
// then publish it.
type Publisher struct{}

func NewPublisher() *Publisher {
	return &Publisher{}
}

func (p *Publisher) Platform() string {
	return "threads"
}

func (p *Publisher) Publish(ctx context.Context, accessToken string, content publish.Content) (publish.Result, error) {
	text := truncatePost(content.Text)

	containerID, err := p.createContainer(ctx, accessToken, text, content.ImageURL)
	if err != nil {
		return publish.Result{}, fmt.Errorf("create container: %w", err)
	}

	attempts, interval := textPollAttempts, textPollInterval
	if content.ImageURL != "" {
		attempts, interval = imagePollAttempts, imagePollInterval
	}
	if err := p.waitForContainer(ctx, accessToken, containerID, attempts, interval); err != nil {
		return publish.Result{}, err
	}

	mediaID, err := p.publishContainer(ctx, accessToken, containerID)
	if err != nil {
		return publish.Result{}, fmt.Errorf("publish container: %w", err)
	}

	result := publish.Result{ExternalRef: mediaID}
	if permalink, err := p.fetchPermalink(ctx, accessToken, mediaID); err != nil {
		logrus.WithError(err).Warnf("[THREADS] Could not fetch permalink for %s", mediaID)
	} else {
		result.Permalink = permalink
	}

	logrus.Infof("[THREADS] Published post %s", mediaID)
	return result, nil
}

func (p *Publisher) createContainer(ctx context.Context, accessToken, text, imageURL string) (string, error) {
	query := url.Values{}
	query.Set("text", text)
	query.Set("access_token", accessToken)
	if imageURL != "" {
		query.Set("media_type", "IMAGE")
		query.Set("image_url", imageURL)
	} else {
		query.Set("media_type", "TEXT")
	}

	endpoint := fmt.Sprintf("%s/%s/me/threads?%s", graphBaseURL, apiVersion, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return "", err
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := doJSON(req, &created); err != nil {
		return "", err
	}
	if created.ID == "" {
		return "", errors.New("no container id in response")
	}
	return created.ID, nil
}

// waitForContainer polls until the container reports FINISHED. ERROR and
// EXPIRED are terminal and surface the server's message.
func (p *Publisher) waitForContainer(ctx context.Context, accessToken, containerID string, attempts int, interval time.Duration) error {
	query := url.Values{}
	query.Set("fields", "status,error_message")
	query.Set("access_token", accessToken)
	endpoint := fmt.Sprintf("%s/%s/%s?%s", graphBaseURL, apiVersion, containerID, query.Encode())

	for attempt := 0; attempt < attempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return err
		}

		var state struct {
			Status       string `json:"status"`
			ErrorMessage string `json:"error_message"`
		}
		if err := doJSON(req, &state); err != nil {
			return err
		}

		switch state.Status {
		case "FINISHED", "PUBLISHED":
			return nil
		case "ERROR", "EXPIRED":
			if state.ErrorMessage == "" {
				state.ErrorMessage = "container entered state " + state.Status
			}
			return fmt.Errorf("container %s: %s", containerID, state.ErrorMessage)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
	return fmt.Errorf("container %s not ready after %d attempts", containerID, attempts)
}

func (p *Publisher) publishContainer(ctx context.Context, accessToken, containerID string) (string, error) {
	query := url.Values{}
	query.Set("creation_id", containerID)
	query.Set("access_token", accessToken)

	endpoint := fmt.Sprintf("%s/%s/me/threads_publish?%s", graphBaseURL, apiVersion, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return "", err
	}

	var published struct {
		ID string `json:"id"`
	}
	if err := doJSON(req, &published); err != nil {
		return "", err
	}
	if published.ID == "" {
		return "", errors.New("no media id in response")
	}
	return published.ID, nil
}

func (p *Publisher) fetchPermalink(ctx context.Context, accessToken, mediaID string) (string, error) {
	query := url.Values{}
	query.Set("fields", "permalink")
	query.Set("access_token", accessToken)

	endpoint := fmt.Sprintf("%s/%s/%s?%s", graphBaseURL, apiVersion, mediaID, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}

	var media struct {
		Permalink string `json:"permalink"`
	}
	if err := doJSON(req, &media); err != nil {
		return "", err
	}
	return media.Permalink, nil
}

// truncatePost clips text to the hard 500-character cap, marking the cut.
func truncatePost(text string) string {
	runes := []rune(text)
	if len(runes) <= maxPostRunes {
		return text
	}
	return string(runes[:maxPostRunes-3]) + "..."
}
