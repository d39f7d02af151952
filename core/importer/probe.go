package importer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
)

// ffprobeOutput defines the structure for ffprobe JSON output.
type ffprobeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
	Streams []struct {
		CodecType string `json:"codec_type"`
		Width     int    `json:"width"`
		Height    int    `json:"height"`
	} `json:"streams"`
}

// MediaInfo is the probe result the importer needs: duration in
// milliseconds, frame size for video, and whether a video stream exists.
type MediaInfo struct {
	DurationMs int64
	Width      int
	Height     int
	HasVideo   bool
}

// Probe runs ffprobe against a local media file.
func Probe(ffprobePath, inputFile string) (*MediaInfo, error) {
	args := []string{
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		inputFile,
	}
	cmd := exec.Command(ffprobePath, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffprobe execution failed for %s: %w\nFFprobe Error: %s", inputFile, err, stderr.String())
	}

	var out ffprobeOutput
	if err := json.Unmarshal(stdout.Bytes(), &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal ffprobe output: %w", err)
	}

	seconds, err := strconv.ParseFloat(out.Format.Duration, 64)
	if err != nil {
		return nil, fmt.Errorf("failed to parse duration %q: %w", out.Format.Duration, err)
	}

	info := &MediaInfo{DurationMs: int64(seconds * 1000)}
	for _, stream := range out.Streams {
		if stream.CodecType == "video" {
			info.HasVideo = true
			if stream.Width > info.Width {
				info.Width = stream.Width
				info.Height = stream.Height
			}
		}
	}
	return info, nil
}
