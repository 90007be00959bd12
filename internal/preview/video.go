package preview

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"

	"github.com/Ketengan-Diffusion/Haigaku-DatasetManager/internal/logging"
	"github.com/Ketengan-Diffusion/Haigaku-DatasetManager/internal/metrics"

	"github.com/disintegration/imaging"
)

// ffmpegWaitDelay bounds how long Wait blocks on ffmpeg's pipes after the
// process is killed.
const ffmpegWaitDelay = 2 * time.Second

// extractFrame pulls one frame from a video. The first attempt seeks to the
// configured offset; clips shorter than that produce no frame, so a second
// attempt takes the first frame instead.
func (r *FileRenderer) extractFrame(ctx context.Context, path string) (image.Image, error) {
	ffmpegPath, err := exec.LookPath(r.config.FFmpegPath)
	if err != nil {
		return nil, fmt.Errorf("ffmpeg not found: %w", err)
	}
	logging.Debug("Extracting video frame from %s with %s", filepath.Base(path), ffmpegPath)

	start := time.Now()
	defer func() {
		metrics.FFmpegDuration.Observe(time.Since(start).Seconds())
	}()

	out, err := runFFmpeg(ctx, ffmpegPath, frameArgs(path, r.config.VideoFrameOffset))
	if err != nil || len(out) == 0 {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("ffmpeg %s: %w", filepath.Base(path), ctx.Err())
		}
		logging.Debug("FFmpeg first attempt failed for %s: %v, retrying from the first frame", path, err)

		out, err = runFFmpeg(ctx, ffmpegPath, frameArgs(path, 0))
		if err != nil {
			return nil, err
		}
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("ffmpeg produced no output for %s", path)
	}

	logging.Debug("FFmpeg output size: %d bytes", len(out))

	img, err := imaging.Decode(bytes.NewReader(out))
	if err != nil {
		return nil, fmt.Errorf("failed to decode ffmpeg output: %w", err)
	}
	return img, nil
}

// frameArgs builds the ffmpeg arguments for a single PNG frame on stdout.
// A zero offset omits the seek.
func frameArgs(path string, offset time.Duration) []string {
	args := []string{"-hide_banner", "-loglevel", "error"}
	if offset > 0 {
		args = append(args, "-ss", strconv.FormatFloat(offset.Seconds(), 'f', 3, 64))
	}
	return append(args,
		"-i", path,
		"-frames:v", "1",
		"-f", "image2pipe",
		"-vcodec", "png",
		"-",
	)
}

func runFFmpeg(ctx context.Context, ffmpegPath string, args []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, ffmpegPath, args...)
	cmd.WaitDelay = ffmpegWaitDelay

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg failed: %w, stderr: %s", err, stderr.String())
	}
	return stdout.Bytes(), nil
}
