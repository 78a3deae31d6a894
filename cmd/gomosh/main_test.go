package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/ugparu/gomosh"
	"github.com/ugparu/gomosh/format/mp4"
)

func TestParseArgs(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "gomosh.yaml")
	require.NoError(t, os.WriteFile(path, []byte("shuffle:\n  start_fraction: 0.25\n  parallel: true\noutput:\n  atomic: false\n"), 0o600))

	tests := []struct {
		name  string
		args  []string
		check func(t *testing.T, a cliArgs)
	}{
		{
			name: "defaults",
			args: []string{"in.mp4", "out.mp4"},
			check: func(t *testing.T, a cliArgs) {
				require.Equal(t, "in.mp4", a.input)
				require.Equal(t, "out.mp4", a.output)
				require.False(t, a.cfg.Premux.Skip)
				require.True(t, a.cfg.Output.Atomic)
				require.Nil(t, a.cfg.Shuffle.Seed)
			},
		},
		{
			name: "short_flags",
			args: []string{"-p", "-r", "-s", "0.5", "in.mp4", "out.mp4"},
			check: func(t *testing.T, a cliArgs) {
				require.True(t, a.cfg.Premux.Skip)
				require.True(t, a.cfg.Premux.RemoveTemporary)
				require.InDelta(t, 0.5, a.cfg.Shuffle.StartFraction, 0)
			},
		},
		{
			name: "config_file",
			args: []string{"-config", path, "in.mp4", "out.mp4"},
			check: func(t *testing.T, a cliArgs) {
				require.InDelta(t, 0.25, a.cfg.Shuffle.StartFraction, 0)
				require.True(t, a.cfg.Shuffle.Parallel)
				require.False(t, a.cfg.Output.Atomic)
			},
		},
		{
			name: "flags_override_config",
			args: []string{"-config", path, "-shuffle-start-fraction", "0.75", "-atomic", "-seed", "7", "in.mp4", "out.mp4"},
			check: func(t *testing.T, a cliArgs) {
				require.InDelta(t, 0.75, a.cfg.Shuffle.StartFraction, 0)
				require.True(t, a.cfg.Shuffle.Parallel)
				require.True(t, a.cfg.Output.Atomic)
				require.NotNil(t, a.cfg.Shuffle.Seed)
				require.Equal(t, uint64(7), *a.cfg.Shuffle.Seed)
			},
		},
		{
			name: "fraction_clamped",
			args: []string{"-s", "3", "in.mp4", "out.mp4"},
			check: func(t *testing.T, a cliArgs) {
				require.InDelta(t, 1.0, a.cfg.Shuffle.StartFraction, 0)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			a, err := parseArgs(tt.args, io.Discard)
			require.NoError(t, err)
			tt.check(t, a)
		})
	}
}

func TestParseArgsErrors(t *testing.T) {
	t.Parallel()

	for _, args := range [][]string{
		{"in.mp4"},
		{"in.mp4", "out.mp4", "extra"},
		{"-log-level", "chatty", "in.mp4", "out.mp4"},
		{"-config", filepath.Join(t.TempDir(), "absent.yaml"), "in.mp4", "out.mp4"},
		{"-unknown", "in.mp4", "out.mp4"},
	} {
		_, err := parseArgs(args, io.Discard)
		require.Error(t, err, args)
	}
}

func writeInput(t *testing.T, path string) {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w, err := mp4.NewWriter(f, gomosh.Metadata{
		MajorBrand:       gomosh.NewFourCC("isom"),
		MinorVersion:     512,
		CompatibleBrands: []gomosh.FourCC{gomosh.NewFourCC("isom")},
		TimeScale:        1000,
	})
	require.NoError(t, err)
	_, err = w.AddTrack(gomosh.TrackConfig{
		TrackType: gomosh.Video, TimeScale: 12800, Language: "und",
		MediaConf: &gomosh.AvcConfig{
			SeqParamSet: []byte{0x67, 0x42, 0xc0, 0x1e, 0xda, 0x05, 0x07, 0xe4},
			PicParamSet: []byte{0x68, 0xce, 0x3c, 0x80},
		},
	})
	require.NoError(t, err)
	for i := range 30 {
		require.NoError(t, w.WriteSample(1, &gomosh.Sample{Duration: 512, IsSync: i == 0, Data: []byte{byte(i), 0xaa}}))
	}
	require.NoError(t, w.WriteEnd())
}

func TestRunPremuxed(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	in := filepath.Join(dir, "in.mp4")
	out := filepath.Join(dir, "out.mp4")
	writeInput(t, in)

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-p", "-r", "-seed", "1", "-log-level", "error", in, out}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())
	require.Equal(t, "datamoshing video...\nvideo has been datamoshed!\n", stdout.String())

	_, err := os.Stat(in)
	require.NoError(t, err)
	info, err := os.Stat(out)
	require.NoError(t, err)
	require.NotZero(t, info.Size())
}

func TestRunMissingInput(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-p", "-log-level", "fatal", filepath.Join(dir, "absent.mp4"), filepath.Join(dir, "out.mp4")}, &stdout, &stderr)
	require.Equal(t, 1, code)
	require.Contains(t, stderr.String(), "remux")

	_, err := os.Stat(filepath.Join(dir, "out.mp4"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestRunUsage(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	require.Equal(t, 2, run(context.Background(), []string{"only-one"}, &stdout, &stderr))
	require.Contains(t, stderr.String(), "usage: gomosh")
}
