package image

import (
	"context"
	"mime/multipart"
	"time"
)

type UploadedImage struct {
	ID           string    `json:"id"`
	Filename     string    `json:"filename"`
	URL          string    `json:"url"`
	ThumbnailURL string    `json:"thumbnail_url,omitempty"`
	Storage      string    `json:"storage"`
	Size         int64     `json:"size"`
	CreatedAt    time.Time `json:"created_at"`
}

type UploadRequest struct {
	Image *multipart.FileHeader `json:"-" form:"image"`
}

type LibraryStats struct {
	Count     int    `json:"count"`
	TotalSize string `json:"total_size"`
}

// StockImage is a search hit from one of the configured stock providers.
type StockImage struct {
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnail_url"`
	Provider     string `json:"provider"`
	Credit       string `json:"credit,omitempty"`
}

type IImageUsecase interface {
	Upload(ctx context.Context, request UploadRequest) (UploadedImage, error)
	List(ctx context.Context) ([]UploadedImage, error)
	Get(ctx context.Context, id string) (UploadedImage, error)
	Stats(ctx context.Context) (LibraryStats, error)
	Delete(ctx context.Context, id string) error
	SearchStock(ctx context.Context, query string) ([]StockImage, error)
}
