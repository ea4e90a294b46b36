package ai

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/genai"
)

// GeminiProvider drives generation through the Gemini API. Audio goes in
// as an inline blob part, so transcription needs no separate service.
type GeminiProvider struct {
	apiKey string
	model  string
}

func NewGeminiProvider(apiKey, model string) *GeminiProvider {
	if model == "" {
		model = "gemini-2.0-flash"
	}
	return &GeminiProvider{apiKey: apiKey, model: model}
}

func (p *GeminiProvider) Name() string { return "gemini" }

func (p *GeminiProvider) client(ctx context.Context) (*genai.Client, error) {
	if p.apiKey == "" {
		return nil, ErrNotConfigured
	}
	return genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  p.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
}

func (p *GeminiProvider) Ping(ctx context.Context) error {
	client, err := p.client(ctx)
	if err != nil {
		return err
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := client.Models.List(timeoutCtx, nil); err != nil {
		return fmt.Errorf("gemini key verification failed: %w", err)
	}
	return nil
}

func (p *GeminiProvider) Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error) {
	client, err := p.client(ctx)
	if err != nil {
		return "", err
	}

	data, err := io.ReadAll(audio)
	if err != nil {
		return "", fmt.Errorf("failed to read audio: %w", err)
	}

	contents := []*genai.Content{{
		Role: genai.RoleUser,
		Parts: []*genai.Part{
			{Text: "Transcribe this audio recording. Return only the spoken text."},
			{InlineData: &genai.Blob{MIMEType: audioMIMEType(filename), Data: data}},
		},
	}}

	result, err := client.Models.GenerateContent(ctx, p.model, contents, nil)
	if err != nil {
		return "", err
	}

	text := collectText(result)
	logrus.Debugf("[GEMINI] Transcribed %s (%d chars)", filename, len(text))
	return text, nil
}

func (p *GeminiProvider) Summarize(ctx context.Context, text string) (string, error) {
	return p.generate(ctx, summarizePrompt(text), summarizeTemperature)
}

func (p *GeminiProvider) ExtractActionItems(ctx context.Context, text string) ([]string, error) {
	raw, err := p.generate(ctx, actionItemsPrompt(text), summarizeTemperature)
	if err != nil {
		return nil, err
	}
	return parseActionItems(raw), nil
}

func (p *GeminiProvider) GenerateArticle(ctx context.Context, transcript, topic, style string) (string, error) {
	return p.generate(ctx, articlePrompt(transcript, topic, style), 0.7)
}

func (p *GeminiProvider) GeneratePosts(ctx context.Context, source, platform string, count int) ([]string, error) {
	raw, err := p.generate(ctx, postsPrompt(source, platform, count), 0.8)
	if err != nil {
		return nil, err
	}
	posts := splitPosts(raw, count)
	if len(posts) == 0 {
		return nil, fmt.Errorf("gemini returned no usable posts")
	}
	return posts, nil
}

func (p *GeminiProvider) generate(ctx context.Context, prompt string, temperature float64) (string, error) {
	client, err := p.client(ctx)
	if err != nil {
		return "", err
	}

	cfg := &genai.GenerateContentConfig{Temperature: genai.Ptr(float32(temperature))}
	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}

	result, err := client.Models.GenerateContent(ctx, p.model, contents, cfg)
	if err != nil {
		return "", err
	}

	text := collectText(result)
	if text == "" {
		return "", fmt.Errorf("no response from gemini")
	}
	return text, nil
}

func collectText(result *genai.GenerateContentResponse) string {
	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		if part.Text != "" {
			b.WriteString(part.Text)
		}
	}
	return strings.TrimSpace(b.String())
}
