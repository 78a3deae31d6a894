package mp4

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/ugparu/gomosh"
	"github.com/ugparu/gomosh/format/mp4/mp4io"
)

func buildFile(atoms ...mp4io.Atom) []byte {
	var buf bytes.Buffer
	for _, atom := range atoms {
		b := make([]byte, atom.Len())
		n := atom.Marshal(b)
		buf.Write(b[:n])
	}
	return buf.Bytes()
}

func rawBox(tag string) *mp4io.Dummy {
	return &mp4io.Dummy{Tag_: mp4io.StringToTag(tag), Data: []byte{0, 0, 0, 8, tag[0], tag[1], tag[2], tag[3]}}
}

func testFileType() *mp4io.FileType {
	return mp4io.NewFileType(uint32(mp4io.StringToTag("isom")), 512, nil)
}

// testTrak builds a trak box describing count samples at offset 0.
func testTrak(t *testing.T, id uint32, cfg gomosh.TrackConfig, count int) *mp4io.Track {
	t.Helper()

	entry, width, height, err := newSampleEntry(id, cfg.MediaConf)
	require.NoError(t, err)
	trk := &writerTrack{id: id, config: cfg, entry: entry, width: width, height: height}
	trk.startChunk(0)
	for i := 1; i <= count; i++ {
		trk.addSample(testSample(int(id), i, 10, 0, true))
	}
	return trk.trackAtom(1000, time.Now())
}

func testMoov(tracks ...*mp4io.Track) *mp4io.Movie {
	return &mp4io.Movie{Header: mp4io.NewMovieHeader(1000), Tracks: tracks}
}

type failingReaderAt struct{}

func (failingReaderAt) ReadAt([]byte, int64) (int, error) {
	return 0, errors.New("device unplugged")
}

func TestNewReaderMalformed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		build func(t *testing.T) []byte
	}{
		{
			name: "missing_ftyp",
			build: func(t *testing.T) []byte {
				return buildFile(testMoov(testTrak(t, 1, avcTrack(), 2)))
			},
		},
		{
			name: "missing_moov",
			build: func(*testing.T) []byte {
				return buildFile(testFileType(), rawBox("free"))
			},
		},
		{
			name: "missing_mvhd",
			build: func(t *testing.T) []byte {
				moov := testMoov(testTrak(t, 1, avcTrack(), 2))
				moov.Header = nil
				return buildFile(testFileType(), moov)
			},
		},
		{
			name: "fragmented",
			build: func(t *testing.T) []byte {
				return buildFile(testFileType(), testMoov(testTrak(t, 1, avcTrack(), 2)), rawBox("moof"))
			},
		},
		{
			name: "duplicate_track_id",
			build: func(t *testing.T) []byte {
				return buildFile(testFileType(), testMoov(testTrak(t, 1, avcTrack(), 2), testTrak(t, 1, aacTrack(), 2)))
			},
		},
		{
			name: "missing_stbl",
			build: func(t *testing.T) []byte {
				trak := testTrak(t, 1, avcTrack(), 2)
				trak.Media.Info.Sample = nil
				return buildFile(testFileType(), testMoov(trak))
			},
		},
		{
			name: "chunk_walk_runs_out",
			build: func(t *testing.T) []byte {
				trak := testTrak(t, 1, avcTrack(), 4)
				trak.Media.Info.Sample.SampleToChunk.Entries[0].SamplesPerChunk = 3
				return buildFile(testFileType(), testMoov(trak))
			},
		},
		{
			name: "stts_too_short",
			build: func(t *testing.T) []byte {
				trak := testTrak(t, 1, avcTrack(), 4)
				trak.Media.Info.Sample.TimeToSample.Entries[0].Count = 2
				return buildFile(testFileType(), testMoov(trak))
			},
		},
		{
			name: "sync_sample_out_of_range",
			build: func(t *testing.T) []byte {
				trak := testTrak(t, 1, avcTrack(), 4)
				trak.Media.Info.Sample.SyncSample = &mp4io.SyncSample{Entries: []uint32{1, 9}}
				return buildFile(testFileType(), testMoov(trak))
			},
		},
		{
			name: "truncated_header",
			build: func(*testing.T) []byte {
				return append(buildFile(testFileType()), 0, 0, 0)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			b := tt.build(t)
			_, err := NewReader(bytes.NewReader(b), int64(len(b)))
			var malformed *gomosh.MalformedContainerError
			require.ErrorAs(t, err, &malformed)
		})
	}
}

func TestNewReaderIOError(t *testing.T) {
	t.Parallel()

	_, err := NewReader(failingReaderAt{}, 1024)
	var ioErr *gomosh.IOError
	require.ErrorAs(t, err, &ioErr)
}

func TestReaderUnsupportedTrackKind(t *testing.T) {
	t.Parallel()

	mp4v := testTrak(t, 1, avcTrack(), 2)
	desc := mp4v.Media.Info.Sample.SampleDesc
	desc.Visual = nil
	desc.Unknowns = []mp4io.Atom{rawBox("mp4v")}

	hint := testTrak(t, 2, aacTrack(), 2)
	copy(hint.Media.Handler.HandlerType[:], "hint")

	opus := testTrak(t, 3, aacTrack(), 2)
	opus.Media.Info.Sample.SampleDesc.Audio.Conf.ObjectType = 0xad

	b := buildFile(testFileType(), testMoov(mp4v, hint, opus, testTrak(t, 4, avcTrack(), 2)))
	r, err := NewReader(bytes.NewReader(b), int64(len(b)))
	require.NoError(t, err)
	require.Equal(t, []uint32{1, 2, 3, 4}, r.TrackIDs())

	tests := []struct {
		id     uint32
		format string
	}{
		{id: 1, format: "mp4v"},
		{id: 2, format: "hint"},
		{id: 3, format: "mp4a.ad"},
	}
	for _, tt := range tests {
		_, err := r.TrackConfig(tt.id)
		var unsupported *gomosh.UnsupportedTrackKindError
		require.ErrorAs(t, err, &unsupported)
		require.Equal(t, tt.id, unsupported.TrackID)
		require.Equal(t, tt.format, unsupported.Format)
	}

	cfg, err := r.TrackConfig(4)
	require.NoError(t, err)
	require.Equal(t, gomosh.H264, cfg.MediaType())

	n, err := r.SampleCount(1)
	require.NoError(t, err)
	require.Equal(t, uint32(2), n)
}

func TestReaderExtraTableEntriesIgnored(t *testing.T) {
	t.Parallel()

	trak := testTrak(t, 1, avcTrack(), 3)
	stbl := trak.Media.Info.Sample
	stbl.TimeToSample.Entries[0].Count = 10
	stbl.ChunkOffset.Entries = append(stbl.ChunkOffset.Entries, 100)

	b := buildFile(testFileType(), testMoov(trak))
	r, err := NewReader(bytes.NewReader(b), int64(len(b)))
	require.NoError(t, err)

	n, err := r.SampleCount(1)
	require.NoError(t, err)
	require.Equal(t, uint32(3), n)
}
