package ports

import (
	"context"
	"time"

	"github.com/wadjakorntonsri/go-video-share/pkg/core/domain"
)

// VideoRepository defines storage operations for videos and share link audit rows
type VideoRepository interface {
	CreateVideo(ctx context.Context, video *domain.Video) error
	GetVideo(ctx context.Context, id int64) (*domain.Video, error)
	GetVideosByIDs(ctx context.Context, ids []int64) ([]domain.Video, error)
	ListVideos(ctx context.Context, limit, offset int) ([]domain.Video, error)
	CountVideos(ctx context.Context) (int64, error)
	DumpVideos(ctx context.Context) ([]domain.Video, error) // For migration

	// Share links
	CreateShareLink(ctx context.Context, link *domain.ShareableLink) error
	GetShareLink(ctx context.Context, linkID string) (*domain.ShareableLink, error)
	DeleteShareLink(ctx context.Context, linkID string) error // Compensation only

	Close() error
}

// TTLStore is a key-value store whose entries expire on their own.
// Get reports ok=false both for keys never set and for lapsed keys.
type TTLStore interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Close() error
}

// MediaProcessor wraps the external media tool
type MediaProcessor interface {
	Probe(ctx context.Context, path string) (domain.MediaInfo, error)
	Trim(ctx context.Context, path string, start, end float64, outPath string) (string, error)
	Merge(ctx context.Context, paths []string, outPath string) (string, error)
}

// VideoService defines the business logic operations
type VideoService interface {
	Upload(ctx context.Context, file domain.UploadedFile) (*domain.Video, error)
	Trim(ctx context.Context, req domain.TrimRequest) (*domain.Video, error)
	Merge(ctx context.Context, req domain.MergeRequest) (*domain.Video, error)
	CreateShareLink(ctx context.Context, videoID int64) (*domain.ShareLinkResult, error)
	ResolveShareLink(ctx context.Context, linkID string) (*domain.Video, error)

	GetVideo(ctx context.Context, id int64) (*domain.Video, error)
	ListVideos(ctx context.Context, page, limit int) ([]domain.Video, int64, error)
}
