package transcoder

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"crazzzytube/apperror"
	"crazzzytube/constant"
)

type Rendition struct {
	Width     int
	Height    int
	VideoKbps int
	AudioKbps int
}

// ladder is every rendition the encoder knows about, lowest first.
var ladder = []Rendition{
	{Width: 256, Height: 144, VideoKbps: 200, AudioKbps: 64},
	{Width: 640, Height: 360, VideoKbps: 800, AudioKbps: 96},
	{Width: 854, Height: 480, VideoKbps: 1500, AudioKbps: 128},
	{Width: 1280, Height: 720, VideoKbps: 3000, AudioKbps: 192},
	{Width: 1920, Height: 1080, VideoKbps: 5000, AudioKbps: 192},
}

// SelectRenditions picks the ladder entries matching heights, in ladder order.
func SelectRenditions(heights []int) ([]Rendition, error) {
	if len(heights) == 0 {
		return nil, errors.New("no renditions requested")
	}

	wanted := make(map[int]bool, len(heights))
	for _, h := range heights {
		wanted[h] = true
	}

	var selected []Rendition
	for _, r := range ladder {
		if wanted[r.Height] {
			selected = append(selected, r)
			delete(wanted, r.Height)
		}
	}
	if len(wanted) > 0 {
		unknown := make([]string, 0, len(wanted))
		for h := range wanted {
			unknown = append(unknown, strconv.Itoa(h))
		}
		sort.Strings(unknown)
		return nil, fmt.Errorf("unsupported rendition heights: %s", strings.Join(unknown, ","))
	}
	return selected, nil
}

func (r Rendition) playlistName() string {
	return fmt.Sprintf("%dp.m3u8", r.Height)
}

func (r Rendition) segmentPattern() string {
	return fmt.Sprintf("%dp_%%03d.ts", r.Height)
}

type FFmpeg struct {
	binary         string
	segmentSeconds int
	renditions     []Rendition
	prober         Prober
}

var _ Transcoder = (*FFmpeg)(nil)

func NewFFmpeg(binary string, segmentSeconds int, heights []int, prober Prober) (*FFmpeg, error) {
	renditions, err := SelectRenditions(heights)
	if err != nil {
		return nil, err
	}
	if segmentSeconds <= 0 {
		segmentSeconds = 6
	}
	if binary == "" {
		binary = "ffmpeg"
	}
	return &FFmpeg{
		binary:         binary,
		segmentSeconds: segmentSeconds,
		renditions:     renditions,
		prober:         prober,
	}, nil
}

func (f *FFmpeg) Transcode(ctx context.Context, inputPath, outputDir string) (*HLSOutput, error) {
	logger := zerolog.Ctx(ctx)

	duration, err := f.prober.Duration(ctx, inputPath)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, apperror.Transcode("failed to prepare transcoder output", err)
	}

	args := f.buildArgs(inputPath, outputDir)
	logger.Debug().Str("binary", f.binary).Strs("args", args).Msg("executing ffmpeg")

	output, err := exec.CommandContext(ctx, f.binary, args...).CombinedOutput()
	if err != nil {
		logger.Error().Err(err).Str("ffmpeg_output", tail(output, 2048)).Msg("ffmpeg failed")
		return nil, apperror.Transcode("video transcoding failed", err)
	}

	if err := writeMasterPlaylist(outputDir, f.renditions); err != nil {
		return nil, apperror.Transcode("failed to write master playlist", err)
	}

	out, err := collectOutput(outputDir)
	if err != nil {
		return nil, apperror.Transcode("transcoder produced an unexpected layout", err)
	}
	out.Duration = duration

	logger.Info().
		Int("segments", len(out.SegmentPaths)).
		Float64("duration", duration).
		Msg("transcode complete")
	return out, nil
}

// buildArgs renders one ffmpeg invocation producing a VOD HLS playlist per
// rendition, each with the first audio track muxed in when present.
func (f *FFmpeg) buildArgs(inputPath, outputDir string) []string {
	filters := make([]string, 0, len(f.renditions))
	for _, r := range f.renditions {
		filters = append(filters, fmt.Sprintf(
			"[0:v]scale=w=%d:h=%d:force_original_aspect_ratio=decrease:force_divisible_by=2,pad=w=%d:h=%d:x=(ow-iw)/2:y=(oh-ih)/2[v%d]",
			r.Width, r.Height, r.Width, r.Height, r.Height))
	}

	args := []string{
		"-hide_banner",
		"-y",
		"-i", inputPath,
		"-filter_complex", strings.Join(filters, "; "),
	}

	hlsTime := strconv.Itoa(f.segmentSeconds)
	for _, r := range f.renditions {
		videoRate := fmt.Sprintf("%dk", r.VideoKbps)
		args = append(args,
			"-map", fmt.Sprintf("[v%d]", r.Height),
			"-map", "0:a:0?",
			"-c:v", "libx264",
			"-preset", "veryfast",
			"-crf", "22",
			"-b:v", videoRate,
			"-maxrate", videoRate,
			"-bufsize", videoRate,
			"-c:a", "aac",
			"-b:a", fmt.Sprintf("%dk", r.AudioKbps),
			"-f", "hls",
			"-hls_time", hlsTime,
			"-hls_playlist_type", "vod",
			"-hls_segment_filename", filepath.Join(outputDir, r.segmentPattern()),
			filepath.Join(outputDir, r.playlistName()),
		)
	}
	return args
}

// collectOutput lists the produced files. The master playlist must exist and
// at least one segment must have been written.
func collectOutput(outputDir string) (*HLSOutput, error) {
	entries, err := os.ReadDir(outputDir)
	if err != nil {
		return nil, err
	}

	out := &HLSOutput{}
	segments := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		fullPath := filepath.Join(outputDir, name)
		switch {
		case name == constant.ManifestName:
			out.ManifestPath = fullPath
		case strings.HasSuffix(name, ".ts"):
			segments++
			out.SegmentPaths = append(out.SegmentPaths, fullPath)
		case strings.HasSuffix(name, ".m3u8"):
			out.SegmentPaths = append(out.SegmentPaths, fullPath)
		}
	}

	if out.ManifestPath == "" {
		return nil, fmt.Errorf("%s not found in %s", constant.ManifestName, outputDir)
	}
	if segments == 0 {
		return nil, fmt.Errorf("no segments found in %s", outputDir)
	}
	sort.Strings(out.SegmentPaths)
	return out, nil
}

func tail(b []byte, n int) string {
	if len(b) > n {
		b = b[len(b)-n:]
	}
	return string(b)
}
