package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wadjakorntonsri/go-video-share/pkg/core/domain"
	"github.com/wadjakorntonsri/go-video-share/pkg/core/validation"
	"github.com/wadjakorntonsri/go-video-share/pkg/ports"
	"go.uber.org/zap"
)

// shareKeyPrefix namespaces share tokens in the TTL store
const shareKeyPrefix = "share:"

type Options struct {
	Limits   validation.Limits
	ShareTTL time.Duration
	// BaseURL is the public origin used to build share URLs
	BaseURL   string
	OutputDir string
	// LimitDerivedDuration rejects merges whose inputs add up to more than
	// Limits.MaxDuration
	LimitDerivedDuration bool
}

type VideoService struct {
	repo   ports.VideoRepository
	ttl    ports.TTLStore
	media  ports.MediaProcessor
	opts   Options
	logger *zap.Logger
	now    func() time.Time
}

func NewVideoService(repo ports.VideoRepository, ttl ports.TTLStore, media ports.MediaProcessor, opts Options, logger *zap.Logger) *VideoService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VideoService{
		repo:   repo,
		ttl:    ttl,
		media:  media,
		opts:   opts,
		logger: logger,
		now:    time.Now,
	}
}

func (s *VideoService) Upload(ctx context.Context, file domain.UploadedFile) (*domain.Video, error) {
	if file.Path == "" {
		return nil, domain.Validation(domain.MsgNoFileUploaded)
	}

	info, err := s.media.Probe(ctx, file.Path)
	if err != nil {
		return nil, domain.ExternalTool(domain.MsgProbeError, err)
	}

	if err := validation.Upload(file.Size, info.Duration, s.opts.Limits); err != nil {
		return nil, err
	}

	video := s.newVideo(file.FileName, file.Path, file.MimeType, file.Encoding, file.Size, info.Duration)
	if err := s.repo.CreateVideo(ctx, video); err != nil {
		return nil, err
	}
	return video, nil
}

func (s *VideoService) Trim(ctx context.Context, req domain.TrimRequest) (*domain.Video, error) {
	start, end, err := validation.TrimRequest(req)
	if err != nil {
		return nil, err
	}

	source, err := s.loadVideo(ctx, req.VideoID)
	if err != nil {
		return nil, err
	}

	window, err := validation.ResolveTrimWindow(start, end, source.Duration, s.opts.Limits.MinDuration)
	if err != nil {
		return nil, err
	}

	outName := fmt.Sprintf("trimmed-%s", source.FileName)
	outPath := s.outputPath(outName)
	if _, err := s.media.Trim(ctx, source.FilePath, window.Start, window.End, outPath); err != nil {
		return nil, domain.ExternalTool(domain.MsgTrimError, err)
	}

	video, err := s.describeOutput(ctx, outPath, source.MimeType, source.Encoding)
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreateVideo(ctx, video); err != nil {
		return nil, err
	}
	return video, nil
}

func (s *VideoService) Merge(ctx context.Context, req domain.MergeRequest) (*domain.Video, error) {
	outName, err := validation.MergeRequest(req)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(req.VideoIDs))
	for _, raw := range req.VideoIDs {
		id, ok := parseID(raw)
		if !ok {
			return nil, domain.NotFound(domain.MsgOneOrMoreVideoNotFound)
		}
		ids = append(ids, id)
	}

	found, err := s.repo.GetVideosByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]domain.Video, len(found))
	for _, v := range found {
		byID[v.ID] = v
	}

	// Keep request order, the same id may appear more than once
	sources := make([]domain.Video, 0, len(ids))
	var total float64
	for _, id := range ids {
		v, ok := byID[id]
		if !ok {
			return nil, domain.NotFound(domain.MsgOneOrMoreVideoNotFound)
		}
		sources = append(sources, v)
		total += v.Duration
	}

	paths := make([]string, 0, len(sources))
	for _, v := range sources {
		if !fileExists(v.FilePath) {
			return nil, domain.NotFound(fmt.Sprintf("%s: %s", domain.MsgInputFileNotFound, v.FilePath))
		}
		paths = append(paths, v.FilePath)
	}

	if s.opts.LimitDerivedDuration && total > s.opts.Limits.MaxDuration {
		return nil, domain.Validation(fmt.Sprintf(domain.MsgMergedDurationTooLong, s.opts.Limits.MaxDuration))
	}

	outPath := s.outputPath(outName)
	if _, err := s.media.Merge(ctx, paths, outPath); err != nil {
		return nil, domain.ExternalTool(domain.MsgMergeError, err)
	}
	if !fileExists(outPath) {
		return nil, domain.ExternalTool(domain.MsgMergeFileError, fmt.Errorf("merge output %s missing", outPath))
	}

	video, err := s.describeOutput(ctx, outPath, sources[0].MimeType, sources[0].Encoding)
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreateVideo(ctx, video); err != nil {
		return nil, err
	}
	return video, nil
}

// CreateShareLink writes the audit row first and the TTL entry second. When
// the TTL write fails the audit row is removed again, so a failure never
// leaves a live link without its audit record.
func (s *VideoService) CreateShareLink(ctx context.Context, videoID int64) (*domain.ShareLinkResult, error) {
	video, err := s.repo.GetVideo(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if video == nil {
		return nil, domain.NotFound(domain.MsgVideoNotFound)
	}

	now := s.now()
	link := &domain.ShareableLink{
		LinkID:    uuid.NewString(),
		VideoID:   video.ID,
		TTL:       int64(s.opts.ShareTTL / time.Second),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.CreateShareLink(ctx, link); err != nil {
		return nil, err
	}

	value := strconv.FormatInt(video.ID, 10)
	if err := s.ttl.Set(ctx, shareKeyPrefix+link.LinkID, value, s.opts.ShareTTL); err != nil {
		if derr := s.repo.DeleteShareLink(context.WithoutCancel(ctx), link.LinkID); derr != nil {
			s.logger.Error("share link compensation failed",
				zap.String("link_id", link.LinkID), zap.Error(derr))
		}
		return nil, fmt.Errorf("store share token: %w", err)
	}

	return &domain.ShareLinkResult{
		Link:      s.opts.BaseURL + "/videos/share/" + link.LinkID,
		Shareable: link,
	}, nil
}

func (s *VideoService) ResolveShareLink(ctx context.Context, linkID string) (*domain.Video, error) {
	if strings.TrimSpace(linkID) == "" {
		return nil, domain.NotFound(domain.MsgShareLinkExpired)
	}

	value, ok, err := s.ttl.Get(ctx, shareKeyPrefix+linkID)
	if err != nil {
		return nil, fmt.Errorf("lookup share token: %w", err)
	}
	if !ok {
		return nil, domain.NotFound(domain.MsgShareLinkExpired)
	}

	return s.loadVideo(ctx, value)
}

func (s *VideoService) GetVideo(ctx context.Context, id int64) (*domain.Video, error) {
	video, err := s.repo.GetVideo(ctx, id)
	if err != nil {
		return nil, err
	}
	if video == nil {
		return nil, domain.NotFound(domain.MsgVideoNotFound)
	}
	return video, nil
}

func (s *VideoService) ListVideos(ctx context.Context, page, limit int) ([]domain.Video, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	offset := (page - 1) * limit

	videos, err := s.repo.ListVideos(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	count, err := s.repo.CountVideos(ctx)
	if err != nil {
		return nil, 0, err
	}

	return videos, count, nil
}

func (s *VideoService) loadVideo(ctx context.Context, rawID string) (*domain.Video, error) {
	id, ok := parseID(rawID)
	if !ok {
		return nil, domain.NotFound(domain.MsgVideoNotFound)
	}
	return s.GetVideo(ctx, id)
}

// describeOutput probes and stats a freshly written file
func (s *VideoService) describeOutput(ctx context.Context, path, mimeType, encoding string) (*domain.Video, error) {
	info, err := s.media.Probe(ctx, path)
	if err != nil {
		return nil, domain.ExternalTool(domain.MsgProbeError, err)
	}
	st, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	return s.newVideo(filepath.Base(path), path, mimeType, encoding, st.Size(), info.Duration), nil
}

func (s *VideoService) newVideo(name, path, mimeType, encoding string, size int64, duration float64) *domain.Video {
	now := s.now()
	return &domain.Video{
		FileName:  name,
		FilePath:  path,
		MimeType:  mimeType,
		Size:      size,
		Duration:  duration,
		Encoding:  encoding,
		Status:    domain.StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// outputPath prefixes name with a nanosecond timestamp so that concurrent
// requests never write the same file
func (s *VideoService) outputPath(name string) string {
	return filepath.Join(s.opts.OutputDir, fmt.Sprintf("%d-%s", s.now().UnixNano(), name))
}

func parseID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func fileExists(path string) bool {
	st, err := os.Stat(path)
	return err == nil && !st.IsDir()
}

var _ ports.VideoService = (*VideoService)(nil)
