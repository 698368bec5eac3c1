// Package ffmpeg locates the external media binaries the pipeline shells
// out to.
package ffmpeg

import (
	"fmt"
	"os"
	"os/exec"
	"sync"
)

type BinaryPaths struct {
	FFmpeg  string
	FFprobe string
}

var (
	ensureOnce sync.Once
	ensureErr  error
	ensurePath BinaryPaths
)

// Ensure resolves the ffmpeg and ffprobe binaries once per process.
// Explicit paths via SUBBURN_FFMPEG_PATH / SUBBURN_FFPROBE_PATH take
// precedence over PATH lookup.
func Ensure() (BinaryPaths, error) {
	ensureOnce.Do(func() {
		ensurePath, ensureErr = resolve()
	})
	return ensurePath, ensureErr
}

func resolve() (BinaryPaths, error) {
	ffmpegPath := os.Getenv("SUBBURN_FFMPEG_PATH")
	ffprobePath := os.Getenv("SUBBURN_FFPROBE_PATH")

	if ffmpegPath == "" {
		if found, err := exec.LookPath("ffmpeg"); err == nil {
			ffmpegPath = found
		}
	}
	if ffprobePath == "" {
		if found, err := exec.LookPath("ffprobe"); err == nil {
			ffprobePath = found
		}
	}

	if ffmpegPath == "" || ffprobePath == "" {
		return BinaryPaths{}, fmt.Errorf(
			"ffmpeg and ffprobe are required: install them or set SUBBURN_FFMPEG_PATH and SUBBURN_FFPROBE_PATH")
	}
	return BinaryPaths{FFmpeg: ffmpegPath, FFprobe: ffprobePath}, nil
}
