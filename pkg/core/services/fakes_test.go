package services

import (
	"context"
	"errors"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/wadjakorntonsri/go-video-share/pkg/core/domain"
)

type fakeRepo struct {
	mu     sync.Mutex
	nextID int64
	videos map[int64]domain.Video
	links  map[string]domain.ShareableLink

	failShareInsert error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{videos: map[int64]domain.Video{}, links: map[string]domain.ShareableLink{}}
}

func (r *fakeRepo) CreateVideo(_ context.Context, v *domain.Video) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	v.ID = r.nextID
	r.videos[v.ID] = *v
	return nil
}

func (r *fakeRepo) GetVideo(_ context.Context, id int64) (*domain.Video, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.videos[id]
	if !ok {
		return nil, nil
	}
	return &v, nil
}

func (r *fakeRepo) GetVideosByIDs(_ context.Context, ids []int64) ([]domain.Video, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := map[int64]bool{}
	var out []domain.Video
	for _, id := range ids {
		if v, ok := r.videos[id]; ok && !seen[id] {
			seen[id] = true
			out = append(out, v)
		}
	}
	return out, nil
}

func (r *fakeRepo) ListVideos(_ context.Context, limit, offset int) ([]domain.Video, error) {
	all, _ := r.DumpVideos(context.Background())
	if offset >= len(all) {
		return nil, nil
	}
	end := min(offset+limit, len(all))
	return all[offset:end], nil
}

func (r *fakeRepo) CountVideos(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.videos)), nil
}

func (r *fakeRepo) DumpVideos(_ context.Context) ([]domain.Video, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Video
	for _, v := range r.videos {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeRepo) CreateShareLink(_ context.Context, l *domain.ShareableLink) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failShareInsert != nil {
		return r.failShareInsert
	}
	r.links[l.LinkID] = *l
	return nil
}

func (r *fakeRepo) GetShareLink(_ context.Context, id string) (*domain.ShareableLink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.links[id]
	if !ok {
		return nil, nil
	}
	return &l, nil
}

func (r *fakeRepo) DeleteShareLink(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.links, id)
	return nil
}

func (r *fakeRepo) Close() error { return nil }

// fakeMedia pretends to be ffmpeg: outputs are real files whose duration is
// remembered by path.
type fakeMedia struct {
	mu        sync.Mutex
	durations map[string]float64
	trimErr   error
	mergeErr  error
	skipWrite bool // merge "succeeds" without producing a file
	merged    [][]string
}

func newFakeMedia() *fakeMedia {
	return &fakeMedia{durations: map[string]float64{}}
}

func (m *fakeMedia) add(path string, duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.durations[path] = duration
}

func (m *fakeMedia) Probe(_ context.Context, path string) (domain.MediaInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.durations[path]
	if !ok {
		return domain.MediaInfo{}, errors.New("invalid data found when processing input")
	}
	return domain.MediaInfo{Duration: d, Width: 640, Height: 360}, nil
}

func (m *fakeMedia) Trim(_ context.Context, path string, start, end float64, out string) (string, error) {
	if m.trimErr != nil {
		return "", m.trimErr
	}
	if err := os.WriteFile(out, []byte("trimmed"), 0o644); err != nil {
		return "", err
	}
	m.add(out, end-start)
	return out, nil
}

func (m *fakeMedia) Merge(ctx context.Context, paths []string, out string) (string, error) {
	if m.mergeErr != nil {
		return "", m.mergeErr
	}
	var total float64
	for _, p := range paths {
		info, err := m.Probe(ctx, p)
		if err != nil {
			return "", err
		}
		total += info.Duration
	}
	m.mu.Lock()
	m.merged = append(m.merged, paths)
	m.mu.Unlock()
	if m.skipWrite {
		return out, nil
	}
	if err := os.WriteFile(out, []byte("merged"), 0o644); err != nil {
		return "", err
	}
	m.add(out, total)
	return out, nil
}

type failingTTL struct{}

func (failingTTL) Set(context.Context, string, string, time.Duration) error {
	return errors.New("connection refused")
}
func (failingTTL) Get(context.Context, string) (string, bool, error) { return "", false, nil }
func (failingTTL) Close() error                                    { return nil }

// recordingTTL counts writes and otherwise behaves like an empty store
type recordingTTL struct {
	mu   sync.Mutex
	sets []string
}

func (r *recordingTTL) Set(_ context.Context, key, _ string, _ time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sets = append(r.sets, key)
	return nil
}
func (r *recordingTTL) Get(context.Context, string) (string, bool, error) { return "", false, nil }
func (r *recordingTTL) Close() error                                    { return nil }
