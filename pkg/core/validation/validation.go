// Package validation holds the pure request checks used by the video service.
// Every failure is a *domain.Error of kind validation carrying catalog messages.
package validation

import (
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/wadjakorntonsri/go-video-share/pkg/core/domain"
)

// OutputExtension is appended to merge output names that lack it
const OutputExtension = ".mp4"

// Limits are the upload thresholds
type Limits struct {
	MaxFileSize int64
	MinDuration float64
	MaxDuration float64
}

// Window is a resolved trim range in seconds, [Start, End)
type Window struct {
	Start float64
	End   float64
}

func (w Window) Duration() float64 {
	return w.End - w.Start
}

func Size(size, maxSize int64) error {
	if size > maxSize {
		return domain.Validation(domain.MsgFileTooLarge)
	}
	return nil
}

func Duration(duration, minDuration, maxDuration float64) error {
	if duration < minDuration || duration > maxDuration {
		return domain.Validation(durationMessage(minDuration, maxDuration))
	}
	return nil
}

// Upload runs the size and duration checks and reports every failure at once
func Upload(size int64, duration float64, limits Limits) error {
	var msgs []string
	if err := Size(size, limits.MaxFileSize); err != nil {
		msgs = append(msgs, domain.MsgFileTooLarge)
	}
	if err := Duration(duration, limits.MinDuration, limits.MaxDuration); err != nil {
		msgs = append(msgs, durationMessage(limits.MinDuration, limits.MaxDuration))
	}
	if len(msgs) > 0 {
		return domain.ValidationList(msgs...)
	}
	return nil
}

// TrimRequest checks the shape of a trim request and parses the provided
// times. It stops at the first failure.
func TrimRequest(req domain.TrimRequest) (start, end *float64, err error) {
	if strings.TrimSpace(req.VideoID) == "" {
		return nil, nil, domain.Validation(domain.MsgVideoIDRequired)
	}
	if req.StartTime == nil && req.EndTime == nil {
		return nil, nil, domain.Validation(domain.MsgStartOrEndTimeRequired)
	}
	if req.StartTime != nil {
		v, ok := ParseSeconds(*req.StartTime)
		if !ok {
			return nil, nil, domain.Validation(domain.MsgInvalidStartTime)
		}
		start = &v
	}
	if req.EndTime != nil {
		v, ok := ParseSeconds(*req.EndTime)
		if !ok {
			return nil, nil, domain.Validation(domain.MsgInvalidEndTime)
		}
		end = &v
	}
	return start, end, nil
}

// ResolveTrimWindow fills in the missing bound (0 for start, the video
// duration for end) and checks the resulting range.
func ResolveTrimWindow(start, end *float64, videoDuration, minDuration float64) (Window, error) {
	if start == nil && end == nil {
		return Window{}, domain.Validation(domain.MsgStartOrEndTimeRequired)
	}

	w := Window{Start: 0, End: videoDuration}
	if start != nil {
		w.Start = *start
	}
	if end != nil {
		w.End = *end
	}

	if w.Start < 0 || w.Start >= w.End || w.End > videoDuration {
		return Window{}, domain.Validation(domain.MsgInvalidTrimRange)
	}
	if w.Duration() < minDuration {
		return Window{}, domain.Validation(fmt.Sprintf(domain.MsgTrimTooShort, minDuration))
	}
	return w, nil
}

// MergeRequest collects every problem with a merge request. On success it
// returns the normalized output file name.
func MergeRequest(req domain.MergeRequest) (string, error) {
	var msgs []string

	switch {
	case len(req.VideoIDs) == 0:
		msgs = append(msgs, domain.MsgInvalidVideoIDs)
	case len(req.VideoIDs) < 2:
		msgs = append(msgs, domain.MsgMinimumVideoIDsRequired)
	}
	for _, id := range req.VideoIDs {
		if strings.TrimSpace(id) == "" {
			msgs = append(msgs, domain.MsgInvalidVideoIDs)
			break
		}
	}

	name := baseName(req.OutputFileName)
	if name == "" {
		msgs = append(msgs, domain.MsgOutputFileNameRequired)
	}

	if len(msgs) > 0 {
		return "", domain.ValidationList(msgs...)
	}
	return withExtension(name), nil
}

// NormalizeOutputFileName drops any directory part and makes sure the name
// ends with the container extension.
// It returns "" when nothing usable is left, as for "..", "." or "/".
func NormalizeOutputFileName(name string) string {
	base := baseName(name)
	if base == "" {
		return ""
	}
	return withExtension(base)
}

// baseName is the last path element of name, or "" when name has none
func baseName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	base := filepath.Base(filepath.Clean("/" + name))
	switch base {
	case "/", ".", "..":
		return ""
	}
	return base
}

func withExtension(name string) string {
	if !strings.HasSuffix(strings.ToLower(name), OutputExtension) {
		name += OutputExtension
	}
	return name
}

// ParseSeconds accepts a decimal number of seconds. NaN and infinities are rejected.
func ParseSeconds(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func durationMessage(minDuration, maxDuration float64) string {
	return fmt.Sprintf(domain.MsgInvalidDuration, minDuration, maxDuration)
}
