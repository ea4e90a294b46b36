package ai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	coreconfig "github.com/l0lsec/PodInsights/core/config"
)

var ErrNotConfigured = errors.New("ai provider not configured")

// Provider is the generation backend for the content pipeline. Each method
// is a single prompt round trip; orchestration stays in the usecases.
type Provider interface {
	Name() string
	Ping(ctx context.Context) error
	Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error)
	Summarize(ctx context.Context, text string) (string, error)
	ExtractActionItems(ctx context.Context, text string) ([]string, error)
	GenerateArticle(ctx context.Context, transcript, topic, style string) (string, error)
	GeneratePosts(ctx context.Context, source, platform string, count int) ([]string, error)
}

// FromConfig builds the provider selected by AI_PROVIDER.
func FromConfig(cfg *coreconfig.Config) (Provider, error) {
	switch strings.ToLower(cfg.AI.Provider) {
	case "openai", "":
		return NewOpenAIProvider(cfg.APIKeys.OpenAI, cfg.AI.Model, cfg.AI.TranscriptionModel), nil
	case "gemini":
		return NewGeminiProvider(cfg.APIKeys.Gemini, cfg.AI.Model), nil
	default:
		return nil, fmt.Errorf("unknown ai provider %q", cfg.AI.Provider)
	}
}

// MaxPostLength is the character budget a generated post must fit on the
// given platform. LinkedIn allows ~3000, Threads caps hard at 500.
func MaxPostLength(platform string) int {
	if strings.EqualFold(platform, "threads") {
		return 500
	}
	return 3000
}

const summarizeTemperature = 0.2

func summarizePrompt(text string) string {
	return "Summarize the following text:\n" + text
}

func actionItemsPrompt(text string) string {
	return "Extract the concrete action items from the following podcast transcript. " +
		"Reply with one item per line and no additional commentary.\n\n" + text
}

func articlePrompt(transcript, topic, style string) string {
	var b strings.Builder
	b.WriteString("Write a full article based on the following podcast transcript.\n")
	if topic != "" {
		fmt.Fprintf(&b, "The article should focus on this topic: %s\n", topic)
	}
	if style != "" {
		fmt.Fprintf(&b, "Write it in this style: %s\n", style)
	}
	b.WriteString("Return only the article text, no headers about the task itself.\n\nTranscript:\n")
	b.WriteString(transcript)
	return b.String()
}

func postsPrompt(source, platform string, count int) string {
	limit := MaxPostLength(platform)
	var b strings.Builder
	fmt.Fprintf(&b, "Write %d distinct social media posts for %s based on the source below.\n", count, platform)
	fmt.Fprintf(&b, "Each post must stay under %d characters and stand on its own.\n", limit)
	b.WriteString("Separate the posts with a line containing only --- and add no numbering or commentary.\n\nSource:\n")
	b.WriteString(source)
	return b.String()
}

// parseActionItems turns a one-item-per-line reply into clean entries,
// stripping the bullet prefixes models like to add anyway.
func parseActionItems(raw string) []string {
	var items []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "- ")
		line = strings.TrimPrefix(line, "* ")
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		items = append(items, line)
	}
	return items
}

func splitPosts(raw string, count int) []string {
	var posts []string
	for _, chunk := range strings.Split(raw, "\n---") {
		chunk = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(chunk), "---"))
		if chunk == "" {
			continue
		}
		posts = append(posts, chunk)
		if len(posts) == count {
			break
		}
	}
	return posts
}
