package transcoder

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"crazzzytube/apperror"
)

type FFprobe struct {
	binary string
}

var _ Prober = (*FFprobe)(nil)

func NewFFprobe(binary string) *FFprobe {
	if binary == "" {
		binary = "ffprobe"
	}
	return &FFprobe{binary: binary}
}

func (p *FFprobe) Duration(ctx context.Context, path string) (float64, error) {
	cmd := exec.CommandContext(ctx, p.binary,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)

	output, err := cmd.Output()
	if err != nil {
		return 0, apperror.Metadata("failed to read video duration", err)
	}

	duration, err := parseDuration(output)
	if err != nil {
		return 0, apperror.Metadata("failed to read video duration", err)
	}
	return duration, nil
}

func parseDuration(output []byte) (float64, error) {
	raw := strings.TrimSpace(string(output))
	if raw == "" || raw == "N/A" {
		return 0, errors.New("no duration reported")
	}

	duration, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", raw, err)
	}
	if duration < 0 {
		return 0, fmt.Errorf("negative duration %v", duration)
	}
	return duration, nil
}

// StaticProber returns a fixed duration without inspecting the file. It is a
// development-only stand-in for FFprobe.
type StaticProber struct {
	Seconds float64
}

var _ Prober = StaticProber{}

func (s StaticProber) Duration(ctx context.Context, path string) (float64, error) {
	zerolog.Ctx(ctx).Warn().
		Str("path", path).
		Float64("seconds", s.Seconds).
		Msg("placeholder duration in use, ffprobe skipped")
	return s.Seconds, nil
}

// NewProber returns FFprobe unless a placeholder duration is set.
func NewProber(ffprobePath string, placeholder float64) Prober {
	if placeholder > 0 {
		return StaticProber{Seconds: placeholder}
	}
	return NewFFprobe(ffprobePath)
}
