package transcoder

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crazzzytube/apperror"
	"crazzzytube/constant"
)

type fixedProber struct {
	seconds float64
	err     error
}

func (p fixedProber) Duration(context.Context, string) (float64, error) {
	return p.seconds, p.err
}

func TestSelectRenditions(t *testing.T) {
	selected, err := SelectRenditions([]int{720, 360})
	require.NoError(t, err)
	require.Len(t, selected, 2)
	assert.Equal(t, 360, selected[0].Height)
	assert.Equal(t, 720, selected[1].Height)

	_, err = SelectRenditions([]int{360, 999})
	assert.ErrorContains(t, err, "999")

	_, err = SelectRenditions(nil)
	assert.Error(t, err)
}

func TestBuildArgs(t *testing.T) {
	f, err := NewFFmpeg("ffmpeg", 10, []int{360, 720}, fixedProber{})
	require.NoError(t, err)

	args := f.buildArgs("in.mp4", "out")
	joined := strings.Join(args, " ")

	assert.Equal(t, "in.mp4", args[indexOf(args, "-i")+1])
	assert.Contains(t, joined, "[v360]")
	assert.Contains(t, joined, "[v720]")
	assert.Contains(t, joined, "-hls_time 10")
	assert.Contains(t, joined, filepath.Join("out", "360p_%03d.ts"))
	assert.Contains(t, joined, filepath.Join("out", "720p.m3u8"))
	assert.NotContains(t, joined, "[v1080]")
}

func TestMasterPlaylist(t *testing.T) {
	renditions, err := SelectRenditions([]int{360, 720})
	require.NoError(t, err)

	content := masterPlaylist(renditions)
	lines := strings.Split(strings.TrimSpace(content), "\n")

	assert.Equal(t, "#EXTM3U", lines[0])
	assert.Contains(t, content, "BANDWIDTH=896000,RESOLUTION=640x360")
	assert.Contains(t, content, "BANDWIDTH=3192000,RESOLUTION=1280x720")
	assert.Equal(t, "720p.m3u8", lines[len(lines)-1])
}

func TestParseDuration(t *testing.T) {
	d, err := parseDuration([]byte("10.023000\n"))
	require.NoError(t, err)
	assert.InDelta(t, 10.023, d, 0.0001)

	for _, bad := range []string{"", "N/A\n", "abc", "-1.5"} {
		_, err := parseDuration([]byte(bad))
		assert.Error(t, err, bad)
	}
}

func TestCollectOutput(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{constant.ManifestName, "360p.m3u8", "360p_000.ts", "360p_001.ts", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}

	out, err := collectOutput(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, constant.ManifestName), out.ManifestPath)
	assert.Equal(t, []string{
		filepath.Join(dir, "360p.m3u8"),
		filepath.Join(dir, "360p_000.ts"),
		filepath.Join(dir, "360p_001.ts"),
	}, out.SegmentPaths)
}

func TestCollectOutputRequiresManifestAndSegments(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "360p_000.ts"), []byte("x"), 0o644))
	_, err := collectOutput(dir)
	assert.ErrorContains(t, err, constant.ManifestName)

	require.NoError(t, os.WriteFile(filepath.Join(dir, constant.ManifestName), []byte("x"), 0o644))
	require.NoError(t, os.Remove(filepath.Join(dir, "360p_000.ts")))
	_, err = collectOutput(dir)
	assert.ErrorContains(t, err, "no segments")
}

func TestTranscodeMissingBinaryIsTranscodeError(t *testing.T) {
	f, err := NewFFmpeg(filepath.Join(t.TempDir(), "missing-ffmpeg"), 6, []int{360}, fixedProber{seconds: 3})
	require.NoError(t, err)

	_, err = f.Transcode(context.Background(), "in.mp4", filepath.Join(t.TempDir(), "out"))
	assert.True(t, apperror.Is(err, apperror.KindTranscode))
}

func TestTranscodeProbeFailureIsMetadataError(t *testing.T) {
	probeErr := apperror.Metadata("failed to read video duration", assert.AnError)
	f, err := NewFFmpeg("ffmpeg", 6, []int{360}, fixedProber{err: probeErr})
	require.NoError(t, err)

	_, err = f.Transcode(context.Background(), "in.mp4", t.TempDir())
	assert.True(t, apperror.Is(err, apperror.KindMetadata))
}

func TestFFprobeMissingBinaryIsMetadataError(t *testing.T) {
	p := NewFFprobe(filepath.Join(t.TempDir(), "missing-ffprobe"))
	_, err := p.Duration(context.Background(), "in.mp4")
	assert.True(t, apperror.Is(err, apperror.KindMetadata))
}

func TestNewProber(t *testing.T) {
	assert.IsType(t, &FFprobe{}, NewProber("ffprobe", 0))

	p := NewProber("ffprobe", 10)
	require.IsType(t, StaticProber{}, p)
	d, err := p.Duration(context.Background(), "anything")
	require.NoError(t, err)
	assert.Equal(t, 10.0, d)
}

func indexOf(args []string, flag string) int {
	for i, a := range args {
		if a == flag {
			return i
		}
	}
	return -1
}
