package linkedin

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	coreconfig "github.com/l0lsec/PodInsights/core/config"
	"github.com/l0lsec/PodInsights/integrations/webscrape"
	"github.com/l0lsec/PodInsights/scheduler/domain/publish"
)

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func swapTransport(t *testing.T, rt roundTripperFunc) {
	t.Helper()
	origClient := httpClient
	t.Cleanup(func() { httpClient = origClient })
	httpClient = &http.Client{Transport: rt}
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     make(http.Header),
		Body:       io.NopCloser(bytes.NewReader([]byte(body))),
	}
}

func testOAuthClient() *OAuthClient {
	return NewOAuthClient(coreconfig.LinkedInConfig{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURL:  "https://app.example.com/callback",
	})
}

func TestAuthorizationURLCarriesScopes(t *testing.T) {
	authURL, err := testOAuthClient().AuthorizationURL()
	if err != nil {
		t.Fatalf("AuthorizationURL returned error: %v", err)
	}

	for _, want := range []string{
		"response_type=code",
		"client_id=client-id",
		"w_member_social",
	} {
		if !strings.Contains(authURL, want) {
			t.Errorf("authorization url missing %q: %s", want, authURL)
		}
	}
}

func TestAuthorizationURLRequiresConfig(t *testing.T) {
	client := NewOAuthClient(coreconfig.LinkedInConfig{})
	if _, err := client.AuthorizationURL(); err != ErrNotConfigured {
		t.Fatalf("err = %v, want ErrNotConfigured", err)
	}
}

func TestExchangeCodeSendsForm(t *testing.T) {
	var gotForm string
	swapTransport(t, func(req *http.Request) (*http.Response, error) {
		body, _ := io.ReadAll(req.Body)
		gotForm = string(body)
		return jsonResponse(http.StatusOK, `{"access_token":"tok","expires_in":5184000,"refresh_token":"ref"}`), nil
	})

	token, err := testOAuthClient().ExchangeCode(context.Background(), "auth-code")
	if err != nil {
		t.Fatalf("ExchangeCode returned error: %v", err)
	}

	for _, want := range []string{
		"grant_type=authorization_code",
		"code=auth-code",
		"client_secret=client-secret",
	} {
		if !strings.Contains(gotForm, want) {
			t.Errorf("form missing %q: %s", want, gotForm)
		}
	}
	if token.AccessToken != "tok" || token.RefreshToken != "ref" {
		t.Errorf("token = %+v", token)
	}
}

func TestFetchProfileFallsBackToMe(t *testing.T) {
	swapTransport(t, func(req *http.Request) (*http.Response, error) {
		if strings.HasSuffix(req.URL.Path, "/userinfo") {
			return jsonResponse(http.StatusForbidden, `{"message":"no openid scope"}`), nil
		}
		return jsonResponse(http.StatusOK, `{"id":"abc123","localizedFirstName":"Ada","localizedLastName":"Lovelace"}`), nil
	})

	profile, err := FetchProfile(context.Background(), "tok")
	if err != nil {
		t.Fatalf("FetchProfile returned error: %v", err)
	}
	if profile.MemberID != "abc123" {
		t.Errorf("MemberID = %q", profile.MemberID)
	}
	if profile.Name != "Ada Lovelace" {
		t.Errorf("Name = %q", profile.Name)
	}
}

func TestPublishTextPost(t *testing.T) {
	var gotPayload map[string]interface{}
	var gotVersion, gotProtocol string

	swapTransport(t, func(req *http.Request) (*http.Response, error) {
		switch {
		case strings.HasSuffix(req.URL.Path, "/userinfo"):
			return jsonResponse(http.StatusOK, `{"sub":"m1","name":"Ada"}`), nil
		case req.URL.Path == "/rest/posts":
			body, _ := io.ReadAll(req.Body)
			json.Unmarshal(body, &gotPayload)
			gotVersion = req.Header.Get("LinkedIn-Version")
			gotProtocol = req.Header.Get("X-Restli-Protocol-Version")
			resp := jsonResponse(http.StatusCreated, `{}`)
			resp.Header.Set("x-restli-id", "urn:li:share:42")
			return resp, nil
		default:
			t.Errorf("unexpected request to %s", req.URL)
			return jsonResponse(http.StatusNotFound, `{}`), nil
		}
	})

	result, err := NewPublisher().Publish(context.Background(), "tok", publish.Content{Text: "Plain announcement with no links"})
	if err != nil {
		t.Fatalf("Publish returned error: %v", err)
	}

	if result.ExternalRef != "urn:li:share:42" {
		t.Errorf("ExternalRef = %q", result.ExternalRef)
	}
	if result.Permalink != "https://www.linkedin.com/feed/update/urn:li:share:42" {
		t.Errorf("Permalink = %q", result.Permalink)
	}
	if gotVersion != apiVersion || gotProtocol != restliProtocol {
		t.Errorf("headers = %q / %q", gotVersion, gotProtocol)
	}
	if gotPayload["author"] != "urn:li:person:m1" {
		t.Errorf("author = %v", gotPayload["author"])
	}
	if gotPayload["visibility"] != "PUBLIC" || gotPayload["lifecycleState"] != "PUBLISHED" {
		t.Errorf("payload = %v", gotPayload)
	}
	if _, hasContent := gotPayload["content"]; hasContent {
		t.Error("text post should not carry a content block")
	}
}

func TestPublishArticlePostUsesScrapedMetadata(t *testing.T) {
	var gotPayload map[string]interface{}

	swapTransport(t, func(req *http.Request) (*http.Response, error) {
		switch {
		case strings.HasSuffix(req.URL.Path, "/userinfo"):
			return jsonResponse(http.StatusOK, `{"sub":"m1"}`), nil
		case req.URL.Path == "/rest/posts":
			body, _ := io.ReadAll(req.Body)
			json.Unmarshal(body, &gotPayload)
			resp := jsonResponse(http.StatusCreated, `{}`)
			resp.Header.Set("x-restli-id", "urn:li:share:7")
			return resp, nil
		default:
			t.Errorf("unexpected request to %s", req.URL)
			return jsonResponse(http.StatusNotFound, `{}`), nil
		}
	})

	publisher := NewPublisher()
	publisher.scrape = func(ctx context.Context, pageURL string) (webscrape.Page, error) {
		if pageURL != "https://blog.example.com/post" {
			t.Errorf("scraped %q", pageURL)
		}
		return webscrape.Page{Title: "A Post", Description: "About things"}, nil
	}

	_, err := publisher.Publish(context.Background(), "tok", publish.Content{
		Text: "Worth a read: https://blog.example.com/post",
	})
	if err != nil {
		t.Fatalf("Publish returned error: %v", err)
	}

	content, ok := gotPayload["content"].(map[string]interface{})
	if !ok {
		t.Fatalf("payload has no content block: %v", gotPayload)
	}
	article, ok := content["article"].(map[string]interface{})
	if !ok {
		t.Fatalf("content has no article block: %v", content)
	}
	if article["source"] != "https://blog.example.com/post" {
		t.Errorf("source = %v", article["source"])
	}
	if article["title"] != "A Post" || article["description"] != "About things" {
		t.Errorf("article = %v", article)
	}
}

func TestPublishImagePostUploadsFirst(t *testing.T) {
	var gotPayload map[string]interface{}
	var uploadedBytes []byte

	swapTransport(t, func(req *http.Request) (*http.Response, error) {
		switch {
		case strings.HasSuffix(req.URL.Path, "/userinfo"):
			return jsonResponse(http.StatusOK, `{"sub":"m1"}`), nil
		case strings.Contains(req.URL.Path, "/rest/images"):
			return jsonResponse(http.StatusOK, `{"value":{"uploadUrl":"https://upload.example.com/target","image":"urn:li:image:9"}}`), nil
		case req.URL.Host == "cdn.example.com":
			return jsonResponse(http.StatusOK, "raw-image-bytes"), nil
		case req.URL.Host == "upload.example.com":
			uploadedBytes, _ = io.ReadAll(req.Body)
			return jsonResponse(http.StatusCreated, ""), nil
		case req.URL.Path == "/rest/posts":
			body, _ := io.ReadAll(req.Body)
			json.Unmarshal(body, &gotPayload)
			resp := jsonResponse(http.StatusCreated, `{}`)
			resp.Header.Set("x-restli-id", "urn:li:share:8")
			return resp, nil
		default:
			t.Errorf("unexpected request to %s", req.URL)
			return jsonResponse(http.StatusNotFound, `{}`), nil
		}
	})

	_, err := NewPublisher().Publish(context.Background(), "tok", publish.Content{
		Text:     "Look at this",
		ImageURL: "https://cdn.example.com/pic.png",
	})
	if err != nil {
		t.Fatalf("Publish returned error: %v", err)
	}

	if string(uploadedBytes) != "raw-image-bytes" {
		t.Errorf("uploaded %q", uploadedBytes)
	}
	content := gotPayload["content"].(map[string]interface{})
	media := content["media"].(map[string]interface{})
	if media["id"] != "urn:li:image:9" {
		t.Errorf("media id = %v", media["id"])
	}
}

func TestPublishSurfacesAPIRejection(t *testing.T) {
	swapTransport(t, func(req *http.Request) (*http.Response, error) {
		if strings.HasSuffix(req.URL.Path, "/userinfo") {
			return jsonResponse(http.StatusOK, `{"sub":"m1"}`), nil
		}
		return jsonResponse(http.StatusUnprocessableEntity, `{"message":"duplicate post"}`), nil
	})

	_, err := NewPublisher().Publish(context.Background(), "tok", publish.Content{Text: "dup"})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "422") || !strings.Contains(err.Error(), "duplicate post") {
		t.Errorf("err = %v", err)
	}
}
