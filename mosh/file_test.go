package mosh

import (
	"bytes"
	"context"
	"crypto/sha256"
	"os"
	"io/fs"
	"path/filepath"
	"runtime"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/ugparu/gomosh"
	"github.com/ugparu/gomosh/format/mp4"
)

var (
	testSPS = []byte{0x67, 0x42, 0xc0, 0x1e, 0xda, 0x05, 0x07, 0xe4}
	testPPS = []byte{0x68, 0xce, 0x3c, 0x80}
)

// writeSource creates an mp4 file with one H.264 and one AAC track.
func writeSource(t *testing.T, dir string, video, audio int) string {
	t.Helper()

	path := filepath.Join(dir, "in.mp4")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w, err := mp4.NewWriter(f, gomosh.Metadata{
		MajorBrand:       gomosh.NewFourCC("isom"),
		MinorVersion:     512,
		CompatibleBrands: []gomosh.FourCC{gomosh.NewFourCC("isom"), gomosh.NewFourCC("avc1")},
		TimeScale:        1000,
	})
	require.NoError(t, err)

	_, err = w.AddTrack(gomosh.TrackConfig{
		TrackType: gomosh.Video, TimeScale: 15360, Language: "und",
		MediaConf: &gomosh.AvcConfig{Width: 320, Height: 240, SeqParamSet: testSPS, PicParamSet: testPPS},
	})
	require.NoError(t, err)
	_, err = w.AddTrack(gomosh.TrackConfig{
		TrackType: gomosh.Audio, TimeScale: 44100, Language: "und",
		MediaConf: &gomosh.AacConfig{Bitrate: 96000, Profile: 2, FreqIndex: 4, ChanConf: 2},
	})
	require.NoError(t, err)

	for i := range video {
		data := bytes.Repeat([]byte{1, byte(i)}, 10+i%7)
		require.NoError(t, w.WriteSample(1, &gomosh.Sample{Duration: 512, IsSync: i%10 == 0, Data: data}))
	}
	for i := range audio {
		data := bytes.Repeat([]byte{2, byte(i)}, 5+i%3)
		require.NoError(t, w.WriteSample(2, &gomosh.Sample{Duration: 1024, IsSync: true, Data: data}))
	}
	require.NoError(t, w.WriteEnd())
	return path
}

func openMP4(t *testing.T, path string) *mp4.Reader {
	t.Helper()

	f, err := os.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	info, err := f.Stat()
	require.NoError(t, err)
	r, err := mp4.NewReader(f, info.Size())
	require.NoError(t, err)
	return r
}

func payloadHashes(t *testing.T, r *mp4.Reader, id uint32) (ordered [][32]byte) {
	t.Helper()

	n, err := r.SampleCount(id)
	require.NoError(t, err)
	for index := uint32(1); index <= n; index++ {
		s, err := r.ReadSample(id, index)
		require.NoError(t, err)
		ordered = append(ordered, sha256.Sum256(s.Data))
	}
	return ordered
}

func sortedHashes(h [][32]byte) [][32]byte {
	h = slices.Clone(h)
	slices.SortFunc(h, func(a, b [32]byte) int { return bytes.Compare(a[:], b[:]) })
	return h
}

func TestFile(t *testing.T) {
	t.Parallel()

	for _, atomic := range []bool{true, false} {
		dir := t.TempDir()
		src := writeSource(t, dir, 100, 60)
		dst := filepath.Join(dir, "out.mp4")
		if !atomic {
			require.NoError(t, os.WriteFile(dst, []byte("stale"), 0o600))
		}

		require.NoError(t, File(context.Background(), src, dst, Options{Fraction: 0.2, Atomic: atomic, Rand: SeededRand(3)}))

		in, out := openMP4(t, src), openMP4(t, dst)
		require.Equal(t, in.Metadata(), out.Metadata())
		require.Equal(t, in.TrackIDs(), out.TrackIDs())

		for _, id := range in.TrackIDs() {
			inCfg, err := in.TrackConfig(id)
			require.NoError(t, err)
			outCfg, err := out.TrackConfig(id)
			require.NoError(t, err)
			require.Equal(t, inCfg, outCfg)

			want, got := payloadHashes(t, in, id), payloadHashes(t, out, id)
			require.Equal(t, sortedHashes(want), sortedHashes(got))

			count, err := in.SampleCount(id)
			require.NoError(t, err)
			fixed := int(SplitIndex(count, 0.2) - 1)
			require.Equal(t, want[:fixed], got[:fixed])
		}

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		require.Len(t, entries, 2)
	}
}

func TestFileUnsupportedLeavesNoOutput(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "in.mp4")
	require.NoError(t, os.WriteFile(src, []byte("not an mp4 file"), 0o600))

	for _, atomic := range []bool{true, false} {
		dst := filepath.Join(dir, "out.mp4")
		err := File(context.Background(), src, dst, Options{Atomic: atomic})
		var malformed *gomosh.MalformedContainerError
		require.ErrorAs(t, err, &malformed)
		require.NoFileExists(t, dst)
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestFileMissingSource(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	err := File(context.Background(), filepath.Join(dir, "absent.mp4"), filepath.Join(dir, "out.mp4"), Options{})
	var ioErr *gomosh.IOError
	require.ErrorAs(t, err, &ioErr)
}

func TestFileAtomicOutputMode(t *testing.T) {
	t.Parallel()
	if runtime.GOOS == "windows" {
		t.Skip("unix permissions")
	}

	tests := []struct {
		name     string
		existing fs.FileMode
		expected fs.FileMode
	}{
		{name: "new_file", expected: outputMode},
		{name: "keeps_replaced_mode", existing: 0o640, expected: 0o640},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			src := writeSource(t, dir, 10, 10)
			dst := filepath.Join(dir, "out.mp4")
			if tt.existing != 0 {
				require.NoError(t, os.WriteFile(dst, []byte("stale"), tt.existing))
				require.NoError(t, os.Chmod(dst, tt.existing))
			}

			require.NoError(t, File(context.Background(), src, dst, Options{Fraction: 0.5, Atomic: true}))
			info, err := os.Stat(dst)
			require.NoError(t, err)
			require.Equal(t, tt.expected, info.Mode().Perm())
		})
	}
}
