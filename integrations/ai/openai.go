package ai

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/sirupsen/logrus"
)

// OpenAIProvider drives chat completions and audio transcription through
// the OpenAI API.
type OpenAIProvider struct {
	apiKey             string
	model              string
	transcriptionModel string
}

func NewOpenAIProvider(apiKey, model, transcriptionModel string) *OpenAIProvider {
	if model == "" {
		model = "gpt-4o"
	}
	if transcriptionModel == "" {
		transcriptionModel = "whisper-1"
	}
	return &OpenAIProvider{
		apiKey:             apiKey,
		model:              model,
		transcriptionModel: transcriptionModel,
	}
}

func (p *OpenAIProvider) Name() string { return "openai" }

func (p *OpenAIProvider) Ping(ctx context.Context) error {
	if p.apiKey == "" {
		return ErrNotConfigured
	}

	client := openai.NewClient(option.WithAPIKey(p.apiKey))

	timeoutCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := client.Models.List(timeoutCtx); err != nil {
		return fmt.Errorf("openai key verification failed: %w", err)
	}
	return nil
}

func (p *OpenAIProvider) Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error) {
	if p.apiKey == "" {
		return "", ErrNotConfigured
	}

	client := openai.NewClient(option.WithAPIKey(p.apiKey))

	transcription, err := client.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
		Model: openai.AudioModel(p.transcriptionModel),
		File:  openai.File(audio, filename, audioMIMEType(filename)),
	})
	if err != nil {
		return "", err
	}

	logrus.Debugf("[OPENAI] Transcribed %s (%d chars)", filename, len(transcription.Text))
	return transcription.Text, nil
}

func (p *OpenAIProvider) Summarize(ctx context.Context, text string) (string, error) {
	return p.complete(ctx, summarizePrompt(text), summarizeTemperature)
}

func (p *OpenAIProvider) ExtractActionItems(ctx context.Context, text string) ([]string, error) {
	raw, err := p.complete(ctx, actionItemsPrompt(text), summarizeTemperature)
	if err != nil {
		return nil, err
	}
	return parseActionItems(raw), nil
}

func (p *OpenAIProvider) GenerateArticle(ctx context.Context, transcript, topic, style string) (string, error) {
	return p.complete(ctx, articlePrompt(transcript, topic, style), 0.7)
}

func (p *OpenAIProvider) GeneratePosts(ctx context.Context, source, platform string, count int) ([]string, error) {
	raw, err := p.complete(ctx, postsPrompt(source, platform, count), 0.8)
	if err != nil {
		return nil, err
	}
	posts := splitPosts(raw, count)
	if len(posts) == 0 {
		return nil, fmt.Errorf("openai returned no usable posts")
	}
	return posts, nil
}

func (p *OpenAIProvider) complete(ctx context.Context, prompt string, temperature float64) (string, error) {
	if p.apiKey == "" {
		return "", ErrNotConfigured
	}

	client := openai.NewClient(option.WithAPIKey(p.apiKey))

	completion, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(p.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(temperature),
	})
	if err != nil {
		return "", err
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("no response from openai")
	}
	return strings.TrimSpace(completion.Choices[0].Message.Content), nil
}

func audioMIMEType(filename string) string {
	switch {
	case strings.HasSuffix(strings.ToLower(filename), ".wav"):
		return "audio/wav"
	case strings.HasSuffix(strings.ToLower(filename), ".m4a"):
		return "audio/mp4"
	case strings.HasSuffix(strings.ToLower(filename), ".ogg"):
		return "audio/ogg"
	default:
		return "audio/mpeg"
	}
}
