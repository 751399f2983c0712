package media

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/podquote/podquote-backend/internal/platform/logger"
)

// ClipRenderer trims a [startSec, endSec) range out of a source media URL and
// returns a URL for the resulting artifact. Implementations must treat every
// failure as recoverable; callers leave the clip URL unset and move on.
type ClipRenderer interface {
	RenderClip(ctx context.Context, mediaURL string, startSec, endSec float64) (string, error)
}

type Options struct {
	// WorkDir is where rendered clips are written. Defaults to /tmp/podquote-clips.
	WorkDir string
	// PublicBaseURL is prepended to the clip filename to form the returned URL.
	PublicBaseURL string
	// FFmpegPath defaults to "ffmpeg" resolved via PATH.
	FFmpegPath string
	// Timeout bounds a single render. Defaults to 2 minutes.
	Timeout time.Duration
}

type clipper struct {
	log  *logger.Logger
	opts Options
}

func NewClipper(log *logger.Logger, opts Options) (ClipRenderer, error) {
	if opts.WorkDir == "" {
		opts.WorkDir = "/tmp/podquote-clips"
	}
	if opts.FFmpegPath == "" {
		opts.FFmpegPath = "ffmpeg"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 2 * time.Minute
	}
	if _, err := exec.LookPath(opts.FFmpegPath); err != nil {
		return nil, fmt.Errorf("missing required binary %q in PATH: %w", opts.FFmpegPath, err)
	}
	if err := os.MkdirAll(opts.WorkDir, 0o755); err != nil {
		return nil, fmt.Errorf("create clip workDir: %w", err)
	}
	return &clipper{log: log.With("service", "ClipRenderer"), opts: opts}, nil
}

func (c *clipper) RenderClip(ctx context.Context, mediaURL string, startSec, endSec float64) (string, error) {
	mediaURL = strings.TrimSpace(mediaURL)
	if mediaURL == "" {
		return "", fmt.Errorf("mediaURL required")
	}
	if endSec <= startSec {
		return "", fmt.Errorf("invalid clip range [%0.2f, %0.2f)", startSec, endSec)
	}
	if err := os.MkdirAll(c.opts.WorkDir, 0o755); err != nil {
		return "", fmt.Errorf("create clip workDir: %w", err)
	}

	name := clipName(mediaURL, startSec, endSec)
	outPath := filepath.Join(c.opts.WorkDir, name)
	if _, err := os.Stat(outPath); err == nil {
		return c.publicURL(name), nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	// Stream copy first; fall back to re-encode when the container rejects it
	// (seek points in many podcast files do not land on keyframes).
	if err := c.run(ctx, mediaURL, outPath, startSec, endSec, true); err != nil {
		c.log.Warn("clip stream copy failed, re-encoding",
			"media_url", mediaURL,
			"start_sec", startSec,
			"end_sec", endSec,
			"error", err.Error(),
		)
		if err := c.run(ctx, mediaURL, outPath, startSec, endSec, false); err != nil {
			return "", err
		}
	}

	if info, err := os.Stat(outPath); err != nil || info.Size() == 0 {
		_ = os.Remove(outPath)
		return "", fmt.Errorf("clip output missing or empty at %s", outPath)
	}
	return c.publicURL(name), nil
}

func (c *clipper) run(ctx context.Context, mediaURL, outPath string, startSec, endSec float64, streamCopy bool) error {
	args := []string{
		"-y",
		"-ss", fmt.Sprintf("%0.3f", startSec),
		"-to", fmt.Sprintf("%0.3f", endSec),
		"-i", mediaURL,
	}
	if streamCopy {
		args = append(args, "-c", "copy")
	} else {
		args = append(args, "-c:a", "aac", "-b:a", "128k")
	}
	args = append(args, outPath)

	cmd := exec.CommandContext(ctx, c.opts.FFmpegPath, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg clip failed: %w; out=%s", err, truncateOutput(string(out)))
	}
	return nil
}

func (c *clipper) publicURL(name string) string {
	base := strings.TrimRight(c.opts.PublicBaseURL, "/")
	if base == "" {
		return filepath.Join(c.opts.WorkDir, name)
	}
	return base + "/" + name
}

func clipName(mediaURL string, startSec, endSec float64) string {
	h := sha256.Sum256([]byte(fmt.Sprintf("%s|%0.3f|%0.3f", mediaURL, startSec, endSec)))
	return hex.EncodeToString(h[:])[:16] + ".m4a"
}

func truncateOutput(s string) string {
	if len(s) > 800 {
		return s[len(s)-800:]
	}
	return s
}
