package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/wadjakorntonsri/go-video-share/pkg/core/domain"
	"github.com/wadjakorntonsri/go-video-share/pkg/ports"
	"go.uber.org/zap"
)

// uploadField is the multipart field carrying the video
const uploadField = "video"

// multipartSlack lets slightly oversized uploads reach validation, so the
// client gets every failure instead of a cut-off body
const multipartSlack = 1 << 20

type HTTPHandler struct {
	service     ports.VideoService
	uploadDir   string
	maxFileSize int64
	logger      *zap.Logger
}

func NewHTTPHandler(service ports.VideoService, uploadDir string, maxFileSize int64, logger *zap.Logger) *HTTPHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPHandler{service: service, uploadDir: uploadDir, maxFileSize: maxFileSize, logger: logger}
}

// TrimRequest payload
type TrimRequest struct {
	VideoID   scalar  `json:"videoId"`
	StartTime *scalar `json:"startTime"`
	EndTime   *scalar `json:"endTime"`
}

// MergeRequest payload. VideoIDs stays raw so a non-list can be reported.
type MergeRequest struct {
	VideoIDs       json.RawMessage `json:"videoIds"`
	OutputFileName scalar          `json:"outputFileName"`
}

// Upload stores the multipart file and registers it as a video
func (h *HTTPHandler) Upload(w http.ResponseWriter, r *http.Request) {
	limit := h.maxFileSize + multipartSlack
	if r.ContentLength > limit {
		writeError(w, h.logger, domain.ValidationList(domain.MsgFileTooLarge))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, h.logger, domain.ValidationList(domain.MsgFileTooLarge))
			return
		}
		writeError(w, h.logger, domain.Validation(domain.MsgNoFileUploaded))
		return
	}
	defer r.MultipartForm.RemoveAll()

	src, header, err := r.FormFile(uploadField)
	if err != nil {
		writeError(w, h.logger, domain.Validation(domain.MsgNoFileUploaded))
		return
	}
	defer src.Close()

	mimeType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(mimeType, "video/") {
		writeError(w, h.logger, domain.Validation(domain.MsgInvalidFileType))
		return
	}

	fileName := fmt.Sprintf("%d-%s", time.Now().UnixNano(), filepath.Base(header.Filename))
	path := filepath.Join(h.uploadDir, fileName)
	size, err := saveFile(path, src)
	if err != nil {
		writeError(w, h.logger, fmt.Errorf("store upload: %w", err))
		return
	}

	encoding := header.Header.Get("Content-Transfer-Encoding")
	if encoding == "" {
		encoding = "7bit"
	}

	video, err := h.service.Upload(r.Context(), domain.UploadedFile{
		FileName: fileName,
		Path:     path,
		MimeType: mimeType,
		Size:     size,
		Encoding: encoding,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": domain.MsgVideoUploaded,
		"video":   video,
	})
}

func saveFile(path string, src io.Reader) (int64, error) {
	dst, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(dst, src)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	return n, err
}

// Trim cuts a window out of an existing video
func (h *HTTPHandler) Trim(w http.ResponseWriter, r *http.Request) {
	var req TrimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, domain.Validation(domain.MsgInvalidRequest))
		return
	}

	video, err := h.service.Trim(r.Context(), domain.TrimRequest{
		VideoID:   string(req.VideoID),
		StartTime: req.StartTime.ptr(),
		EndTime:   req.EndTime.ptr(),
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": domain.MsgVideoTrimmed,
		"video":   video,
	})
}

// Merge concatenates videos in request order
func (h *HTTPHandler) Merge(w http.ResponseWriter, r *http.Request) {
	var req MergeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, domain.Validation(domain.MsgInvalidRequest))
		return
	}

	video, err := h.service.Merge(r.Context(), domain.MergeRequest{
		VideoIDs:       videoIDs(req.VideoIDs),
		OutputFileName: string(req.OutputFileName),
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": domain.MsgVideoMerged,
		"video":   video,
	})
}

// videoIDs returns nil when raw is missing or is not a list
func videoIDs(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var items []scalar
	if err := json.Unmarshal(raw, &items); err != nil || items == nil {
		return nil
	}
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = string(item)
	}
	return ids
}

// CreateShareLink issues an expiring link to a video
func (h *HTTPHandler) CreateShareLink(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("videoId"), 10, 64)
	if err != nil {
		writeError(w, h.logger, domain.NotFound(domain.MsgVideoNotFound))
		return
	}

	res, err := h.service.CreateShareLink(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": domain.MsgShareLinkCreated,
		"link":    res.Link,
	})
}

// ResolveShareLink is public: anyone holding a live link may fetch the video record
func (h *HTTPHandler) ResolveShareLink(w http.ResponseWriter, r *http.Request) {
	video, err := h.service.ResolveShareLink(r.Context(), r.PathValue("linkId"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"video": video})
}

// Get Video
func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, h.logger, domain.NotFound(domain.MsgVideoNotFound))
		return
	}

	video, err := h.service.GetVideo(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"video": video})
}

// List Videos
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	videos, count, err := h.service.ListVideos(r.Context(), page, limit)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if videos == nil {
		videos = []domain.Video{}
	}

	resp := map[string]interface{}{
		"data":  videos,
		"total": count,
		"page":  page,
		"limit": limit,
	}
	writeJSON(w, http.StatusOK, resp)
}
