// Package ffmpeg implements the media operations on top of the ffmpeg and
// ffprobe command line tools.
package ffmpeg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/wadjakorntonsri/go-video-share/pkg/core/domain"
	"github.com/wadjakorntonsri/go-video-share/pkg/ports"
)

// Audio is normalized to this format before concatenation
const (
	audioSampleFormat = "fltp"
	audioSampleRate   = 44100
	audioLayout       = "stereo"
)

type Processor struct {
	ffmpegPath  string
	ffprobePath string
	runner      Runner
}

func NewProcessor(ffmpegPath, ffprobePath string) *Processor {
	return NewProcessorWithRunner(ffmpegPath, ffprobePath, ExecRunner{})
}

func NewProcessorWithRunner(ffmpegPath, ffprobePath string, runner Runner) *Processor {
	return &Processor{ffmpegPath: ffmpegPath, ffprobePath: ffprobePath, runner: runner}
}

type probeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
	Streams []struct {
		CodecType string `json:"codec_type"`
		Width     int    `json:"width"`
		Height    int    `json:"height"`
	} `json:"streams"`
}

func (p *Processor) Probe(ctx context.Context, path string) (domain.MediaInfo, error) {
	out, err := p.runner.Run(ctx, p.ffprobePath,
		"-v", "error",
		"-print_format", "json",
		"-show_format", "-show_streams",
		path,
	)
	if err != nil {
		return domain.MediaInfo{}, fmt.Errorf("probe %s: %w", path, err)
	}

	var po probeOutput
	if err := json.Unmarshal(out, &po); err != nil {
		return domain.MediaInfo{}, fmt.Errorf("probe %s: decode output: %w", path, err)
	}
	if po.Format.Duration == "" {
		return domain.MediaInfo{}, fmt.Errorf("probe %s: no duration, not a media container", path)
	}
	duration, err := strconv.ParseFloat(po.Format.Duration, 64)
	if err != nil {
		return domain.MediaInfo{}, fmt.Errorf("probe %s: bad duration %q: %w", path, po.Format.Duration, err)
	}

	info := domain.MediaInfo{Duration: duration}
	for _, s := range po.Streams {
		if s.CodecType == "video" {
			info.Width, info.Height = s.Width, s.Height
			break
		}
	}
	return info, nil
}

// Trim writes [start, end) of path to outPath
func (p *Processor) Trim(ctx context.Context, path string, start, end float64, outPath string) (string, error) {
	if end <= start {
		return "", fmt.Errorf("trim %s: empty window %g..%g", path, start, end)
	}
	args := []string{
		"-y",
		"-ss", formatSeconds(start),
		"-i", path,
		"-t", formatSeconds(end - start),
		outPath,
	}
	if _, err := p.runner.Run(ctx, p.ffmpegPath, args...); err != nil {
		return "", fmt.Errorf("trim %s: %w", path, err)
	}
	return outPath, nil
}

// Merge concatenates paths in order. Every video stream is scaled and padded
// to the largest width and height among the inputs, every audio stream is
// resampled to a common format first.
func (p *Processor) Merge(ctx context.Context, paths []string, outPath string) (string, error) {
	if len(paths) == 0 {
		return "", errors.New("merge: no inputs")
	}

	width, height := 0, 0
	for _, path := range paths {
		info, err := p.Probe(ctx, path)
		if err != nil {
			return "", fmt.Errorf("merge: %w", err)
		}
		width = max(width, info.Width)
		height = max(height, info.Height)
	}
	if width == 0 || height == 0 {
		return "", errors.New("merge: inputs have no video stream")
	}
	// libx264 needs even dimensions
	width += width % 2
	height += height % 2

	args := []string{"-y"}
	for _, path := range paths {
		args = append(args, "-i", path)
	}
	args = append(args,
		"-filter_complex", concatFilter(len(paths), width, height),
		"-map", "[outv]", "-map", "[outa]",
		"-c:v", "libx264", "-c:a", "aac",
		outPath,
	)

	if _, err := p.runner.Run(ctx, p.ffmpegPath, args...); err != nil {
		return "", fmt.Errorf("merge: %w", err)
	}
	return outPath, nil
}

func concatFilter(n, width, height int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b,
			"[%d:v]scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2,setsar=1[v%d];",
			i, width, height, width, height, i)
		fmt.Fprintf(&b,
			"[%d:a]aformat=sample_fmts=%s:sample_rates=%d:channel_layouts=%s[a%d];",
			i, audioSampleFormat, audioSampleRate, audioLayout, i)
	}
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "[v%d][a%d]", i, i)
	}
	fmt.Fprintf(&b, "concat=n=%d:v=1:a=1[outv][outa]", n)
	return b.String()
}

func formatSeconds(s float64) string {
	return strconv.FormatFloat(s, 'f', -1, 64)
}

var _ ports.MediaProcessor = (*Processor)(nil)
