package usecase

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	domainImage "github.com/l0lsec/PodInsights/domains/image"
	"github.com/l0lsec/PodInsights/integrations/stockimages"
	pkgError "github.com/l0lsec/PodInsights/pkg/error"
	"github.com/l0lsec/PodInsights/pkg/utils"
	"github.com/l0lsec/PodInsights/repository"
	"github.com/disintegration/imaging"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/valyala/fasthttp"

	// Registers the webp decoder so imaging.Open can read webp uploads.
	_ "golang.org/x/image/webp"
)

const (
	thumbnailWidth  = 100
	stockSearchSize = 12
)

var allowedImageExt = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".gif":  {},
	".webp": {},
	".bmp":  {},
}

type serviceImage struct {
	repo     repository.IContentRepository
	searcher *stockimages.Searcher
}

func NewImageService(repo repository.IContentRepository, searcher *stockimages.Searcher) domainImage.IImageUsecase {
	return &serviceImage{repo: repo, searcher: searcher}
}

func (service *serviceImage) Upload(ctx context.Context, request domainImage.UploadRequest) (domainImage.UploadedImage, error) {
	if request.Image == nil {
		return domainImage.UploadedImage{}, pkgError.ValidationError("image file is required")
	}

	ext := strings.ToLower(filepath.Ext(request.Image.Filename))
	if _, ok := allowedImageExt[ext]; !ok {
		return domainImage.UploadedImage{}, pkgError.ValidationError("unsupported image type " + ext)
	}

	id := uuid.NewString()
	storedName := id + ext
	storageDir := utils.GetImageStoragePath()
	storedPath := filepath.Join(storageDir, storedName)

	if err := fasthttp.SaveMultipartFile(request.Image, storedPath); err != nil {
		return domainImage.UploadedImage{}, pkgError.InternalServerError("failed to save image: " + err.Error())
	}

	// A failed thumbnail is not fatal, the original is already on disk.
	thumbnailName := ""
	if srcImage, err := imaging.Open(storedPath); err != nil {
		logrus.WithError(err).Warnf("[IMAGE] Could not decode %s for thumbnail", request.Image.Filename)
	} else {
		thumbnailName = "thumb-" + id + ".jpg"
		resized := imaging.Resize(srcImage, thumbnailWidth, 0, imaging.Lanczos)
		if err := imaging.Save(resized, filepath.Join(storageDir, thumbnailName)); err != nil {
			logrus.WithError(err).Warnf("[IMAGE] Could not save thumbnail for %s", request.Image.Filename)
			thumbnailName = ""
		}
	}

	img := domainImage.UploadedImage{
		ID:        id,
		Filename:  request.Image.Filename,
		URL:       "/statics/images/" + storedName,
		Storage:   "local",
		Size:      request.Image.Size,
		CreatedAt: time.Now().UTC(),
	}
	if thumbnailName != "" {
		img.ThumbnailURL = "/statics/images/" + thumbnailName
	}

	if err := service.repo.CreateImage(ctx, img); err != nil {
		return domainImage.UploadedImage{}, err
	}

	logrus.Infof("[IMAGE] Uploaded %s (%s)", request.Image.Filename, humanize.Bytes(uint64(request.Image.Size)))
	return img, nil
}

func (service *serviceImage) List(ctx context.Context) ([]domainImage.UploadedImage, error) {
	return service.repo.ListImages(ctx)
}

func (service *serviceImage) Get(ctx context.Context, id string) (domainImage.UploadedImage, error) {
	return service.repo.GetImage(ctx, id)
}

func (service *serviceImage) Stats(ctx context.Context) (domainImage.LibraryStats, error) {
	stats, err := service.repo.GetImageStats(ctx)
	if err != nil {
		return domainImage.LibraryStats{}, err
	}
	return domainImage.LibraryStats{
		Count:     stats.Count,
		TotalSize: humanize.Bytes(uint64(stats.TotalSize)),
	}, nil
}

func (service *serviceImage) Delete(ctx context.Context, id string) error {
	img, err := service.repo.GetImage(ctx, id)
	if err != nil {
		return err
	}
	if err := service.repo.DeleteImage(ctx, id); err != nil {
		return err
	}

	storageDir := utils.GetImageStoragePath()
	for _, fileURL := range []string{img.URL, img.ThumbnailURL} {
		if fileURL == "" {
			continue
		}
		if err := os.Remove(filepath.Join(storageDir, filepath.Base(fileURL))); err != nil && !os.IsNotExist(err) {
			logrus.WithError(err).Warnf("[IMAGE] Could not remove file for image %s", id)
		}
	}
	return nil
}

func (service *serviceImage) SearchStock(ctx context.Context, query string) ([]domainImage.StockImage, error) {
	if strings.TrimSpace(query) == "" {
		return nil, pkgError.ValidationError("query is required")
	}

	hits, err := service.searcher.Search(ctx, query, stockSearchSize)
	if err != nil {
		if err == stockimages.ErrNoProviders {
			return nil, pkgError.ValidationError("no stock image provider configured")
		}
		return nil, err
	}

	results := make([]domainImage.StockImage, 0, len(hits))
	for _, hit := range hits {
		results = append(results, domainImage.StockImage{
			URL:          hit.URL,
			ThumbnailURL: hit.ThumbnailURL,
			Provider:     hit.Provider,
			Credit:       hit.Credit,
		})
	}
	return results, nil
}
