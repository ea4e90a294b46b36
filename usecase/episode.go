package usecase

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	coreconfig "github.com/l0lsec/PodInsights/core/config"
	domainEpisode "github.com/l0lsec/PodInsights/domains/episode"
	"github.com/l0lsec/PodInsights/integrations/ai"
	pkgError "github.com/l0lsec/PodInsights/pkg/error"
	"github.com/l0lsec/PodInsights/pkg/procworker"
	"github.com/l0lsec/PodInsights/repository"
	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
)

// Episode audio runs to hundreds of megabytes, so downloads get a much
// longer deadline than the API clients.
var audioDownloadClient = &http.Client{Timeout: 10 * time.Minute}

const episodeErrorLimit = 500

type serviceEpisode struct {
	repo     repository.IContentRepository
	provider ai.Provider
}

func NewEpisodeService(repo repository.IContentRepository, provider ai.Provider) domainEpisode.IEpisodeUsecase {
	return &serviceEpisode{repo: repo, provider: provider}
}

func (service *serviceEpisode) List(ctx context.Context, feedID string) ([]domainEpisode.Episode, error) {
	return service.repo.ListEpisodes(ctx, feedID)
}

func (service *serviceEpisode) Get(ctx context.Context, id string) (domainEpisode.Episode, error) {
	return service.repo.GetEpisode(ctx, id)
}

// Process hands the episode to the worker pool and returns immediately.
// Episodes of the same feed share a worker, so they transcribe in order.
func (service *serviceEpisode) Process(ctx context.Context, id string) (domainEpisode.Episode, error) {
	episode, err := service.repo.GetEpisode(ctx, id)
	if err != nil {
		return domainEpisode.Episode{}, err
	}
	if episode.Status == domainEpisode.StatusProcessing {
		return domainEpisode.Episode{}, pkgError.ConflictError("episode is already being processed")
	}

	if err := service.repo.UpdateEpisodeStatus(ctx, id, domainEpisode.StatusQueued, ""); err != nil {
		return domainEpisode.Episode{}, err
	}

	accepted := procworker.GetGlobalPool().TryDispatch(procworker.ProcessingJob{
		FeedID:    episode.FeedID,
		EpisodeID: episode.ID,
		Handler: func(jobCtx context.Context) error {
			return service.runPipeline(jobCtx, episode.ID)
		},
	})
	if !accepted {
		return domainEpisode.Episode{}, pkgError.UnavailableError("processing queue is full, try again shortly")
	}

	logrus.Infof("[EPISODE] Queued %s for processing", episode.ID)
	return service.repo.GetEpisode(ctx, id)
}

func (service *serviceEpisode) Delete(ctx context.Context, id string) error {
	return service.repo.DeleteEpisode(ctx, id)
}

// runPipeline is the worker-side half of Process: download the audio,
// transcribe it, then derive the summary and action items.
func (service *serviceEpisode) runPipeline(ctx context.Context, id string) error {
	episode, err := service.repo.GetEpisode(ctx, id)
	if err != nil {
		return err
	}

	if err := service.repo.UpdateEpisodeStatus(ctx, id, domainEpisode.StatusProcessing, ""); err != nil {
		return err
	}
	started := time.Now()

	body, filename, err := downloadAudio(ctx, episode.URL)
	if err != nil {
		return service.fail(id, "download", err)
	}
	defer body.Close()

	transcript, err := service.provider.Transcribe(ctx, filename, body)
	if err != nil {
		return service.fail(id, "transcribe", err)
	}

	summary, err := service.provider.Summarize(ctx, transcript)
	if err != nil {
		return service.fail(id, "summarize", err)
	}

	items, err := service.provider.ExtractActionItems(ctx, transcript)
	if err != nil {
		return service.fail(id, "action items", err)
	}

	if err := service.repo.SaveEpisodeResults(ctx, id, transcript, summary, strings.Join(items, "\n")); err != nil {
		return service.fail(id, "save", err)
	}

	logrus.Infof("[EPISODE] Processed %s in %s (%d transcript chars, %d action items)",
		id, time.Since(started).Round(time.Second), len(transcript), len(items))
	return nil
}

// fail records the failure on the episode row. The write uses a fresh
// context so a cancelled pipeline still leaves a diagnosable state behind.
func (service *serviceEpisode) fail(id, step string, cause error) error {
	message := step + ": " + cause.Error()
	if runes := []rune(message); len(runes) > episodeErrorLimit {
		message = string(runes[:episodeErrorLimit])
	}

	if err := service.repo.UpdateEpisodeStatus(context.Background(), id, domainEpisode.StatusFailed, message); err != nil {
		logrus.WithError(err).Errorf("[EPISODE] Could not record failure for %s", id)
	}

	logrus.WithError(cause).Errorf("[EPISODE] Processing %s failed at %s", id, step)
	return cause
}

func downloadAudio(ctx context.Context, audioURL string) (io.ReadCloser, string, error) {
	maxBytes := int64(25 << 20)
	if coreconfig.Global != nil && coreconfig.Global.AI.MaxAudioBytes > 0 {
		maxBytes = coreconfig.Global.AI.MaxAudioBytes
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, audioURL, nil)
	if err != nil {
		return nil, "", err
	}

	resp, err := audioDownloadClient.Do(req)
	if err != nil {
		return nil, "", err
	}
	if resp.StatusCode >= 400 {
		resp.Body.Close()
		return nil, "", fmt.Errorf("download %s: status %d", audioURL, resp.StatusCode)
	}
	if resp.ContentLength > maxBytes {
		resp.Body.Close()
		return nil, "", fmt.Errorf("audio is %s, over the %s transcription limit",
			humanize.Bytes(uint64(resp.ContentLength)), humanize.Bytes(uint64(maxBytes)))
	}

	limited := struct {
		io.Reader
		io.Closer
	}{io.LimitReader(resp.Body, maxBytes), resp.Body}

	return limited, audioFilename(audioURL), nil
}

// audioFilename recovers a filename with an extension from the URL so the
// transcription API can sniff the container format.
func audioFilename(audioURL string) string {
	parsed, err := url.Parse(audioURL)
	if err != nil {
		return "episode.mp3"
	}
	name := path.Base(parsed.Path)
	if name == "" || name == "." || name == "/" || path.Ext(name) == "" {
		return "episode.mp3"
	}
	return name
}
