package sqlite

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/wadjakorntonsri/go-video-share/pkg/core/domain"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	dbURL := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	repo, err := NewSQLiteRepository(dbURL)
	if err != nil {
		t.Fatalf("Failed to init db: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func newVideo(name string, duration float64) *domain.Video {
	now := time.Now().UTC().Truncate(time.Second)
	return &domain.Video{
		FileName:  name,
		FilePath:  "/tmp/" + name,
		MimeType:  "video/mp4",
		Size:      1024,
		Duration:  duration,
		Encoding:  "7bit",
		Status:    domain.StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestVideoCRUD(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	v := newVideo("a.mp4", 10.5)
	if err := repo.CreateVideo(ctx, v); err != nil {
		t.Fatalf("CreateVideo: %v", err)
	}
	if v.ID == 0 {
		t.Fatal("expected store-assigned id")
	}

	got, err := repo.GetVideo(ctx, v.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got == nil {
		t.Fatal("video not found")
	}
	if got.FileName != "a.mp4" || got.Duration != 10.5 || got.Status != domain.StatusActive {
		t.Errorf("unexpected video %+v", got)
	}

	missing, err := repo.GetVideo(ctx, v.ID+100)
	if err != nil || missing != nil {
		t.Errorf("missing video: got %v, %v", missing, err)
	}
}

func TestGetVideosByIDs(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	var ids []int64
	for i := 0; i < 3; i++ {
		v := newVideo(fmt.Sprintf("v%d.mp4", i), 6)
		if err := repo.CreateVideo(ctx, v); err != nil {
			t.Fatal(err)
		}
		ids = append(ids, v.ID)
	}

	videos, err := repo.GetVideosByIDs(ctx, []int64{ids[0], ids[2], 9999})
	if err != nil {
		t.Fatal(err)
	}
	if len(videos) != 2 {
		t.Errorf("expected 2 videos, got %d", len(videos))
	}

	count, err := repo.CountVideos(ctx)
	if err != nil || count != 3 {
		t.Errorf("CountVideos = %d, %v", count, err)
	}

	page, err := repo.ListVideos(ctx, 2, 0)
	if err != nil || len(page) != 2 {
		t.Errorf("ListVideos = %d, %v", len(page), err)
	}

	all, err := repo.DumpVideos(ctx)
	if err != nil || len(all) != 3 {
		t.Errorf("DumpVideos = %d, %v", len(all), err)
	}
}

func TestShareLinkAudit(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	v := newVideo("s.mp4", 8)
	if err := repo.CreateVideo(ctx, v); err != nil {
		t.Fatal(err)
	}

	now := time.Now().UTC()
	link := &domain.ShareableLink{LinkID: "tok-1", VideoID: v.ID, TTL: 60, CreatedAt: now, UpdatedAt: now}
	if err := repo.CreateShareLink(ctx, link); err != nil {
		t.Fatalf("CreateShareLink: %v", err)
	}

	got, err := repo.GetShareLink(ctx, "tok-1")
	if err != nil || got == nil {
		t.Fatalf("GetShareLink = %v, %v", got, err)
	}
	if got.VideoID != v.ID || got.TTL != 60 {
		t.Errorf("unexpected link %+v", got)
	}

	if err := repo.DeleteShareLink(ctx, "tok-1"); err != nil {
		t.Fatal(err)
	}
	got, err = repo.GetShareLink(ctx, "tok-1")
	if err != nil || got != nil {
		t.Errorf("link should be gone, got %v, %v", got, err)
	}
}
