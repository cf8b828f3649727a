package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/tursodatabase/libsql-client-go/libsql" // Turso driver
	"github.com/wadjakorntonsri/go-video-share/pkg/core/domain"
	"github.com/wadjakorntonsri/go-video-share/pkg/ports"
	_ "modernc.org/sqlite" // Local SQLite driver
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbURL string) (*SQLiteRepository, error) {
	driverName := "sqlite"
	if strings.Contains(dbURL, "libsql://") || strings.Contains(dbURL, "wss://") {
		driverName = "libsql"
	}

	db, err := sql.Open(driverName, dbURL)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteRepository{db: db}, nil
}

func migrate(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS videos (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		file_name TEXT NOT NULL,
		file_path TEXT NOT NULL,
		mime_type TEXT NOT NULL,
		size INTEGER NOT NULL,
		duration REAL NOT NULL,
		encoding TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'active',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS shareable_links (
		link_id TEXT PRIMARY KEY,
		video_id INTEGER NOT NULL,
		ttl INTEGER NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY(video_id) REFERENCES videos(id)
	);
	CREATE INDEX IF NOT EXISTS idx_shareable_links_video_id ON shareable_links(video_id);
	`
	_, err := db.Exec(query)
	return err
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

const videoColumns = `id, file_name, file_path, mime_type, size, duration, encoding, status, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanVideo(s scanner) (*domain.Video, error) {
	var v domain.Video
	err := s.Scan(&v.ID, &v.FileName, &v.FilePath, &v.MimeType, &v.Size, &v.Duration,
		&v.Encoding, &v.Status, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *SQLiteRepository) CreateVideo(ctx context.Context, video *domain.Video) error {
	query := `INSERT INTO videos (file_name, file_path, mime_type, size, duration, encoding, status, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	res, err := r.db.ExecContext(ctx, query, video.FileName, video.FilePath, video.MimeType, video.Size,
		video.Duration, video.Encoding, video.Status, video.CreatedAt, video.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert video: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	video.ID = id
	return nil
}

func (r *SQLiteRepository) GetVideo(ctx context.Context, id int64) (*domain.Video, error) {
	query := `SELECT ` + videoColumns + ` FROM videos WHERE id = ?`

	v, err := scanVideo(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get video %d: %w", id, err)
	}
	return v, nil
}

// GetVideosByIDs returns the videos that exist among ids, in no particular order
func (r *SQLiteRepository) GetVideosByIDs(ctx context.Context, ids []int64) ([]domain.Video, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	query := `SELECT ` + videoColumns + ` FROM videos WHERE id IN (` + placeholders + `)`
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	return r.queryVideos(ctx, query, args...)
}

func (r *SQLiteRepository) ListVideos(ctx context.Context, limit, offset int) ([]domain.Video, error) {
	query := `SELECT ` + videoColumns + ` FROM videos ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
	return r.queryVideos(ctx, query, limit, offset)
}

func (r *SQLiteRepository) CountVideos(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM videos`).Scan(&count)
	return count, err
}

func (r *SQLiteRepository) DumpVideos(ctx context.Context) ([]domain.Video, error) {
	return r.queryVideos(ctx, `SELECT `+videoColumns+` FROM videos ORDER BY id`)
}

func (r *SQLiteRepository) queryVideos(ctx context.Context, query string, args ...interface{}) ([]domain.Video, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var videos []domain.Video
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, err
		}
		videos = append(videos, *v)
	}
	return videos, rows.Err()
}

// --- Share link audit rows ---

func (r *SQLiteRepository) CreateShareLink(ctx context.Context, link *domain.ShareableLink) error {
	query := `INSERT INTO shareable_links (link_id, video_id, ttl, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, link.LinkID, link.VideoID, link.TTL, link.CreatedAt, link.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert share link: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetShareLink(ctx context.Context, linkID string) (*domain.ShareableLink, error) {
	query := `SELECT link_id, video_id, ttl, created_at, updated_at FROM shareable_links WHERE link_id = ?`

	var l domain.ShareableLink
	err := r.db.QueryRowContext(ctx, query, linkID).Scan(&l.LinkID, &l.VideoID, &l.TTL, &l.CreatedAt, &l.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *SQLiteRepository) DeleteShareLink(ctx context.Context, linkID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM shareable_links WHERE link_id = ?`, linkID)
	return err
}

// Ensure interface compliance
var _ ports.VideoRepository = (*SQLiteRepository)(nil)
