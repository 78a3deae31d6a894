package mp4

import (
	"math"
	"math/bits"
	"time"

	"github.com/ugparu/gomosh"
	"github.com/ugparu/gomosh/format/mp4/mp4io"
)

// writerTrack accumulates the sample table of one destination track.
type writerTrack struct {
	id     uint32
	config gomosh.TrackConfig
	entry  mp4io.Atom // Sample entry of stsd.
	width  uint16
	height uint16

	sizes       []uint32
	stts        []mp4io.TimeToSampleEntry
	ctts        []mp4io.CompositionOffsetEntry
	hasCtts     bool
	negCtts     bool
	syncs       []uint32
	chunks      []uint64
	chunkCounts []uint32

	chunkDur uint64 // Track time covered by the open chunk.
	duration uint64 // Sum of all sample durations.
}

func (t *writerTrack) count() uint32 {
	return uint32(len(t.sizes)) //nolint:gosec
}

func (t *writerTrack) startChunk(pos int64) {
	t.chunks = append(t.chunks, uint64(pos)) //nolint:gosec
	t.chunkCounts = append(t.chunkCounts, 0)
	t.chunkDur = 0
}

// chunkFull reports whether the open chunk already spans one second of track time.
func (t *writerTrack) chunkFull() bool {
	return len(t.chunks) == 0 || t.chunkDur >= uint64(t.config.TimeScale)
}

func (t *writerTrack) addSample(s *gomosh.Sample) {
	t.sizes = append(t.sizes, uint32(len(s.Data))) //nolint:gosec
	t.chunkCounts[len(t.chunkCounts)-1]++
	t.chunkDur += uint64(s.Duration)
	t.duration += uint64(s.Duration)

	if n := len(t.stts); n == 0 || t.stts[n-1].Duration != s.Duration {
		t.stts = append(t.stts, mp4io.TimeToSampleEntry{Duration: s.Duration})
	}
	t.stts[len(t.stts)-1].Count++

	if n := len(t.ctts); n == 0 || t.ctts[n-1].Offset != s.CompositionOffset {
		t.ctts = append(t.ctts, mp4io.CompositionOffsetEntry{Offset: s.CompositionOffset})
	}
	t.ctts[len(t.ctts)-1].Count++
	if s.CompositionOffset != 0 {
		t.hasCtts = true
	}
	if s.CompositionOffset < 0 {
		t.negCtts = true
	}

	if s.IsSync {
		t.syncs = append(t.syncs, t.count())
	}
}

// rescale converts v from one time scale to another, saturating on overflow.
func rescale(v uint64, from, to uint32) uint64 {
	if from == 0 {
		return 0
	}
	hi, lo := bits.Mul64(v, uint64(to))
	if hi >= uint64(from) {
		return math.MaxUint64
	}
	q, _ := bits.Div64(hi, lo, uint64(from))
	return q
}

func version(v uint64) uint8 {
	if v > math.MaxUint32 {
		return 1
	}
	return 0
}

// trackAtom builds the trak box once all samples are written.
func (t *writerTrack) trackAtom(movieTimeScale uint32, now time.Time) *mp4io.Track {
	movieDur := rescale(t.duration, t.config.TimeScale, movieTimeScale)

	header := &mp4io.TrackHeader{
		Version:    version(movieDur),
		Flags:      mp4io.TrackEnabled | mp4io.TrackInMovie,
		CreateTime: now,
		ModifyTime: now,
		TrackId:    t.id,
		Duration:   movieDur,
		Matrix:     mp4io.IdentityMatrix,
	}

	info := &mp4io.MediaInfo{
		Data:   mp4io.NewSelfContainedDataInfo(),
		Sample: t.sampleTable(),
	}

	var handler *mp4io.HandlerRefer
	switch t.config.TrackType {
	case gomosh.Video:
		header.TrackWidth = float64(t.width)
		header.TrackHeight = float64(t.height)
		handler = mp4io.NewHandlerRefer(handlerVideo, "VideoHandler")
		info.Video = &mp4io.VideoMediaInfo{Flags: 1}
	case gomosh.Audio:
		header.Volume = 1
		header.AlternateGroup = 1
		handler = mp4io.NewHandlerRefer(handlerSound, "SoundHandler")
		info.Sound = &mp4io.SoundMediaInfo{}
	default:
		handler = mp4io.NewHandlerRefer(handlerSubtitle, "SubtitleHandler")
		info.Null = &mp4io.NullMediaInfo{}
	}

	language := t.config.Language
	if language == "" {
		language = mp4io.UndeterminedLanguage
	}

	return &mp4io.Track{
		Header: header,
		Media: &mp4io.Media{
			Header: &mp4io.MediaHeader{
				Version:    version(t.duration),
				CreateTime: now,
				ModifyTime: now,
				TimeScale:  t.config.TimeScale,
				Duration:   t.duration,
				Language:   language,
			},
			Handler: handler,
			Info:    info,
		},
	}
}

func (t *writerTrack) sampleTable() *mp4io.SampleTable {
	stbl := &mp4io.SampleTable{
		SampleDesc:    &mp4io.SampleDesc{},
		TimeToSample:  &mp4io.TimeToSample{Entries: t.stts},
		SampleToChunk: &mp4io.SampleToChunk{},
		SampleSize: &mp4io.SampleSize{
			SampleCount: t.count(),
			Entries:     t.sizes,
		},
		ChunkOffset: &mp4io.ChunkOffset{Entries: t.chunks},
	}

	switch entry := t.entry.(type) {
	case *mp4io.VisualSampleEntry:
		stbl.SampleDesc.Visual = entry
	case *mp4io.AudioSampleEntry:
		stbl.SampleDesc.Audio = entry
	case *mp4io.TextSampleEntry:
		stbl.SampleDesc.Text = entry
	}

	if t.hasCtts {
		stbl.CompositionOffset = &mp4io.CompositionOffset{Entries: t.ctts}
		if t.negCtts {
			stbl.CompositionOffset.Version = 1
		}
	}

	if len(t.syncs) != len(t.sizes) {
		stbl.SyncSample = &mp4io.SyncSample{Entries: t.syncs}
	}

	for i, c := range t.chunkCounts {
		entries := stbl.SampleToChunk.Entries
		if n := len(entries); n == 0 || entries[n-1].SamplesPerChunk != c {
			stbl.SampleToChunk.Entries = append(entries, mp4io.SampleToChunkEntry{
				FirstChunk:      uint32(i + 1), //nolint:gosec
				SamplesPerChunk: c,
				SampleDescId:    1,
			})
		}
	}

	if n := len(t.chunks); n > 0 && t.chunks[n-1] > math.MaxUint32 {
		stbl.ChunkOffset.Large = true
	}
	return stbl
}
