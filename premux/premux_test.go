package premux

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/ugparu/gomosh/config"
)

func TestFakeProcess(t *testing.T) {
	if os.Getenv("GO_TEST_PROCESS") != "1" {
		return
	}

	args := os.Args
	for i, arg := range args {
		if arg == "--" {
			args = args[i+1:]
			break
		}
	}
	fmt.Fprintf(os.Stdout, "%v", "out")
	fmt.Fprintf(os.Stderr, "frame=1\nframe=2\n")

	code, _ := strconv.Atoi(os.Getenv("EXIT_CODE"))
	if code == 0 {
		if err := os.WriteFile(args[len(args)-1], []byte("premuxed"), 0o600); err != nil {
			os.Exit(3)
		}
	}
	os.Exit(code)
}

func fakeCommand(env ...string) CommandFunc {
	return func(ctx context.Context, _ string, args ...string) *exec.Cmd {
		cs := append([]string{"-test.run=TestFakeProcess", "--"}, args...)
		cmd := exec.CommandContext(ctx, os.Args[0], cs...)
		cmd.Env = append([]string{"GO_TEST_PROCESS=1"}, env...)
		return cmd
	}
}

func TestArgs(t *testing.T) {
	t.Parallel()

	r := New(config.FFmpeg{Bin: "ffmpeg", Keyint: config.DefaultKeyint})
	require.Equal(t, []string{
		"-i", "in.mp4", "-y", "-c:v", "libx264",
		"-x264-params", "keyint=99999999:bframes=0",
		"-f", "mp4", "in.mp4.mux.tmp",
	}, r.Args("in.mp4", TemporaryPath("in.mp4")))
}

func TestRun(t *testing.T) {
	t.Parallel()

	t.Run("ok", func(t *testing.T) {
		t.Parallel()

		out := filepath.Join(t.TempDir(), "out.mp4")
		r := New(config.FFmpeg{Bin: "ffmpeg", Keyint: 250})
		r.command = fakeCommand()

		require.NoError(t, r.Run(context.Background(), "in.mp4", out))
		b, err := os.ReadFile(out)
		require.NoError(t, err)
		require.Equal(t, "premuxed", string(b))
	})
	t.Run("exit_status", func(t *testing.T) {
		t.Parallel()

		r := New(config.FFmpeg{Bin: "ffmpeg", Keyint: 250})
		r.command = fakeCommand("EXIT_CODE=2")

		err := r.Run(context.Background(), "in.mp4", filepath.Join(t.TempDir(), "out.mp4"))
		var exitErr *ExitError
		require.ErrorAs(t, err, &exitErr)
		require.Equal(t, 2, exitErr.Code)
	})
	t.Run("missing_binary", func(t *testing.T) {
		t.Parallel()

		r := New(config.FFmpeg{Bin: filepath.Join(t.TempDir(), "no-ffmpeg"), Keyint: 250})
		err := r.Run(context.Background(), "in.mp4", "out.mp4")
		require.Error(t, err)
		var exitErr *ExitError
		require.NotErrorAs(t, err, &exitErr)
	})
}
