// Package premux runs ffmpeg to re-encode a video without long-term
// references so its samples can be shuffled over a wide range.
package premux

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"

	"github.com/ugparu/gomosh/config"
	"github.com/ugparu/gomosh/utils/logger"
)

const temporarySuffix = ".mux.tmp"

// TemporaryPath is the intermediate file written next to the input.
func TemporaryPath(input string) string {
	return input + temporarySuffix
}

// ExitError reports a non-zero exit status of the encoder.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("ffmpeg exited with status %d", e.Code)
}

// CommandFunc is used for mocking.
type CommandFunc func(ctx context.Context, bin string, args ...string) *exec.Cmd

// Remuxer invokes the encoder.
type Remuxer struct {
	bin     string
	keyint  uint64
	command CommandFunc
}

// New returns a Remuxer for the configured binary.
func New(cfg config.FFmpeg) *Remuxer {
	return &Remuxer{
		bin:     cfg.Bin,
		keyint:  cfg.Keyint,
		command: exec.CommandContext,
	}
}

func (r *Remuxer) String() string {
	return "premux"
}

// Args returns the encoder arguments turning in into out.
func (r *Remuxer) Args(in, out string) []string {
	return []string{
		"-i", in,
		"-y",
		"-c:v", "libx264",
		"-x264-params", "keyint=" + strconv.FormatUint(r.keyint, 10) + ":bframes=0",
		"-f", "mp4",
		out,
	}
}

// Run encodes in into out and waits for the encoder to exit. Stdout is
// discarded, stderr lines are logged at debug level.
func (r *Remuxer) Run(ctx context.Context, in, out string) error {
	cmd := r.command(ctx, r.bin, r.Args(in, out)...)
	cmd.Stdout = io.Discard

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("premux: %w", err)
	}
	if err = cmd.Start(); err != nil {
		return fmt.Errorf("premux: start %s: %w", r.bin, err)
	}

	scanner := bufio.NewScanner(stderr)
	for scanner.Scan() {
		logger.Debugf(r, "stderr: %s", scanner.Text())
	}
	_, _ = io.Copy(io.Discard, stderr)

	err = cmd.Wait()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &ExitError{Code: exitErr.ExitCode()}
	}
	if err != nil {
		return fmt.Errorf("premux: %w", err)
	}
	return nil
}
