package domain

import "time"

// Video status values
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Video represents one stored media file (original upload, trim output or merge output)
type Video struct {
	ID        int64     `json:"id"`
	FileName  string    `json:"fileName"`
	FilePath  string    `json:"filePath"`
	MimeType  string    `json:"mimeType"`
	Size      int64     `json:"size"`     // bytes
	Duration  float64   `json:"duration"` // seconds
	Encoding  string    `json:"encoding"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// UploadedFile is a file already written to local storage by the transport layer
type UploadedFile struct {
	FileName string
	Path     string
	MimeType string
	Size     int64
	Encoding string
}

// MediaInfo is what the media tool reports about a file
type MediaInfo struct {
	Duration float64
	Width    int
	Height   int
}

// TrimRequest carries the raw trim inputs. Times are kept as text so that
// non-numeric input can be reported instead of rejected by the decoder.
type TrimRequest struct {
	VideoID   string
	StartTime *string
	EndTime   *string
}

// MergeRequest carries the raw merge inputs. VideoIDs is nil when the field
// was missing or was not a list.
type MergeRequest struct {
	VideoIDs       []string
	OutputFileName string
}
