package media

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// VideoMetadata is the subset of container metadata the asset store needs.
type VideoMetadata struct {
	Duration float64
	Width    int
	Height   int
}

// Extractor is the media-inspection boundary. Implementations are treated as
// opaque services; errors degrade the asset (no duration, no thumbnail), they
// never abort an import.
type Extractor interface {
	ExtractVideoMetadata(ctx context.Context, path string) (VideoMetadata, error)
	GenerateThumbnail(ctx context.Context, path string, offsetSeconds float64) ([]byte, error)
}

// DefaultThumbnailOffsetRatio picks the frame a quarter of the way in, past
// typical fade-ins but well before end credits.
const DefaultThumbnailOffsetRatio = 0.25

// ThumbnailOffset converts a duration and an offset ratio into the seek
// position for thumbnail capture. Ratios outside (0,1) fall back to the
// default.
func ThumbnailOffset(duration, ratio float64) float64 {
	if ratio <= 0 || ratio >= 1 {
		ratio = DefaultThumbnailOffsetRatio
	}
	if duration <= 0 {
		return 0
	}
	return duration * ratio
}

// FFmpegExtractor implements Extractor with ffprobe + ffmpeg subprocesses.
type FFmpegExtractor struct {
	FFprobeBinary string
	FFmpegBinary  string
}

// NewFFmpegExtractor returns an extractor using the given binaries, falling
// back to PATH resolution for empty values.
func NewFFmpegExtractor(ffprobeBinary, ffmpegBinary string) FFmpegExtractor {
	return FFmpegExtractor{FFprobeBinary: ffprobeBinary, FFmpegBinary: ffmpegBinary}
}

type probeStream struct {
	CodecType string `json:"codec_type"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Duration  string `json:"duration"`
}

type probeFormat struct {
	Duration string `json:"duration"`
}

type probeResult struct {
	Streams []probeStream `json:"streams"`
	Format  probeFormat   `json:"format"`
}

func (e FFmpegExtractor) ffprobe() string {
	if strings.TrimSpace(e.FFprobeBinary) == "" {
		return "ffprobe"
	}
	return e.FFprobeBinary
}

func (e FFmpegExtractor) ffmpeg() string {
	if strings.TrimSpace(e.FFmpegBinary) == "" {
		return "ffmpeg"
	}
	return e.FFmpegBinary
}

// ExtractVideoMetadata executes ffprobe against the path and decodes the
// JSON response.
func (e FFmpegExtractor) ExtractVideoMetadata(ctx context.Context, path string) (VideoMetadata, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return VideoMetadata{}, errors.New("ffprobe inspect: empty path")
	}

	cmd := exec.CommandContext(ctx, e.ffprobe(),
		"-v", "error", "-hide_banner",
		"-show_format", "-show_streams",
		"-of", "json", "--", path)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return VideoMetadata{}, fmt.Errorf("ffprobe inspect: %w: %s", err, strings.TrimSpace(string(output)))
	}

	var result probeResult
	if err := json.Unmarshal(output, &result); err != nil {
		return VideoMetadata{}, fmt.Errorf("ffprobe parse: %w", err)
	}

	meta := VideoMetadata{Duration: parseSeconds(result.Format.Duration)}
	for _, stream := range result.Streams {
		if !strings.EqualFold(stream.CodecType, "video") {
			continue
		}
		meta.Width = stream.Width
		meta.Height = stream.Height
		if meta.Duration == 0 {
			meta.Duration = parseSeconds(stream.Duration)
		}
		break
	}
	return meta, nil
}

// GenerateThumbnail extracts a single frame at the given offset and returns
// the encoded image bytes.
func (e FFmpegExtractor) GenerateThumbnail(ctx context.Context, path string, offsetSeconds float64) ([]byte, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("thumbnail: empty path")
	}
	if offsetSeconds < 0 {
		offsetSeconds = 0
	}

	tmp, err := os.CreateTemp("", "scenedeck-thumb-*.jpg")
	if err != nil {
		return nil, fmt.Errorf("thumbnail temp file: %w", err)
	}
	tmpPath := tmp.Name()
	_ = tmp.Close()
	defer os.Remove(tmpPath)

	cmd := exec.CommandContext(ctx, e.ffmpeg(),
		"-v", "error", "-hide_banner",
		"-ss", strconv.FormatFloat(offsetSeconds, 'f', 3, 64),
		"-i", path,
		"-frames:v", "1",
		"-q:v", "3",
		"-y", tmpPath)
	if output, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("ffmpeg thumbnail: %w: %s", err, strings.TrimSpace(string(output)))
	}

	data, err := os.ReadFile(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("read thumbnail: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("ffmpeg produced empty thumbnail for %s", filepath.Base(path))
	}
	return data, nil
}

func parseSeconds(value string) float64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil || parsed < 0 {
		return 0
	}
	return parsed
}
