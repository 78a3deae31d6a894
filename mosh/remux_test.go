package mosh

import (
	"context"
	"encoding/binary"
	"errors"
	"io"
	"slices"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/ugparu/gomosh"
)

type fakeTrack struct {
	id      uint32
	cfg     gomosh.TrackConfig
	cfgErr  error
	samples []*gomosh.Sample
}

// fakeReader serves samples whose payload encodes track id and index.
type fakeReader struct {
	tracks     []*fakeTrack
	countBonus uint32 // Reported in excess of the real count.
}

func newFakeTrack(id uint32, cfg gomosh.TrackConfig, count int, duration uint32) *fakeTrack {
	trk := &fakeTrack{id: id, cfg: cfg}
	var dts uint64
	for i := 1; i <= count; i++ {
		data := binary.BigEndian.AppendUint32(binary.BigEndian.AppendUint32(nil, id), uint32(i))
		trk.samples = append(trk.samples, &gomosh.Sample{DecodeTime: dts, Duration: duration, IsSync: i == 1, Data: data})
		dts += uint64(duration)
	}
	return trk
}

func (r *fakeReader) track(id uint32) (*fakeTrack, error) {
	for _, trk := range r.tracks {
		if trk.id == id {
			return trk, nil
		}
	}
	return nil, &gomosh.TrackNotFoundError{TrackID: id}
}

func (r *fakeReader) Metadata() gomosh.Metadata {
	return gomosh.Metadata{MajorBrand: gomosh.NewFourCC("isom"), MinorVersion: 512, TimeScale: 1000}
}

func (r *fakeReader) TrackIDs() (ids []uint32) {
	for _, trk := range r.tracks {
		ids = append(ids, trk.id)
	}
	return
}

func (r *fakeReader) TrackConfig(id uint32) (gomosh.TrackConfig, error) {
	trk, err := r.track(id)
	if err != nil {
		return gomosh.TrackConfig{}, err
	}
	return trk.cfg, trk.cfgErr
}

func (r *fakeReader) SampleCount(id uint32) (uint32, error) {
	trk, err := r.track(id)
	if err != nil {
		return 0, err
	}
	return uint32(len(trk.samples)) + r.countBonus, nil
}

func (r *fakeReader) SampleTime(id, index uint32) (uint64, error) {
	s, err := r.ReadSample(id, index)
	if err != nil {
		return 0, err
	}
	return s.DecodeTime, nil
}

func (r *fakeReader) ReadSample(id, index uint32) (*gomosh.Sample, error) {
	trk, err := r.track(id)
	if err != nil {
		return nil, err
	}
	if index < 1 || int(index) > len(trk.samples) {
		return nil, io.EOF
	}
	return trk.samples[index-1], nil
}

// fakeWriter records the payload order per destination track.
type fakeWriter struct {
	mu        sync.Mutex
	metadata  gomosh.Metadata
	configs   []gomosh.TrackConfig
	written   map[uint32][]*gomosh.Sample
	finalized int
}

func (w *fakeWriter) AddTrack(cfg gomosh.TrackConfig) (uint32, error) {
	w.configs = append(w.configs, cfg)
	return uint32(len(w.configs)), nil
}

func (w *fakeWriter) WriteSample(id uint32, s *gomosh.Sample) error {
	if w.finalized > 0 {
		return gomosh.WriterFinalizedError{}
	}
	if !w.mu.TryLock() {
		return errors.New("concurrent write")
	}
	defer w.mu.Unlock()
	w.written[id] = append(w.written[id], s)
	return nil
}

func (w *fakeWriter) WriteEnd() error {
	w.finalized++
	return nil
}

// indices recovers the source indices from the written payloads.
func (w *fakeWriter) indices(id uint32) []uint32 {
	var out []uint32
	for _, s := range w.written[id] {
		out = append(out, binary.BigEndian.Uint32(s.Data[4:]))
	}
	return out
}

func openFake(w *fakeWriter) OpenFunc {
	return func(m gomosh.Metadata) (gomosh.SampleWriter, error) {
		w.metadata = m
		w.written = make(map[uint32][]*gomosh.Sample)
		return w, nil
	}
}

var (
	videoConfig = gomosh.TrackConfig{TrackType: gomosh.Video, TimeScale: 90000, Language: "und", MediaConf: &gomosh.AvcConfig{Width: 320, Height: 240}}
	audioConfig = gomosh.TrackConfig{TrackType: gomosh.Audio, TimeScale: 44100, Language: "eng", MediaConf: &gomosh.AacConfig{Profile: 2, FreqIndex: 4, ChanConf: 2}}
)

func TestRemux(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		fraction float64
		opts     Options
	}{
		{name: "sequential", fraction: 0.2},
		{name: "parallel", fraction: 0.2, opts: Options{Parallel: true}},
		{name: "sync_tracks", fraction: 0.2, opts: Options{SyncTracks: true}},
		{name: "zero_fraction", fraction: 0},
		{name: "identity", fraction: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := &fakeReader{tracks: []*fakeTrack{
				newFakeTrack(7, videoConfig, 100, 3000),
				newFakeTrack(9, audioConfig, 140, 1024),
			}}
			w := new(fakeWriter)
			opts := tt.opts
			opts.Fraction = tt.fraction
			opts.Rand = SeededRand(1)

			require.NoError(t, Remux(context.Background(), r, openFake(w), opts))
			require.Equal(t, 1, w.finalized)
			require.Equal(t, r.Metadata(), w.metadata)
			require.Equal(t, []gomosh.TrackConfig{videoConfig, audioConfig}, w.configs)

			for dst, src := range r.tracks {
				got := w.indices(uint32(dst + 1))
				count := uint32(len(src.samples))
				require.Len(t, got, int(count))

				sorted := slices.Clone(got)
				slices.Sort(sorted)
				require.Equal(t, identity(int(count)), sorted)

				if !tt.opts.SyncTracks || dst == 0 {
					fixed := int(max(SplitIndex(count, tt.fraction), 2) - 1)
					require.Equal(t, identity(fixed), got[:fixed])
				}
				if tt.fraction == 1 {
					require.Equal(t, identity(int(count)), got)
				}
			}
		})
	}
}

func TestRemuxSyncTracksFollowsVideo(t *testing.T) {
	t.Parallel()

	// Two audio samples per video sample, both at 1 kHz.
	video := newFakeTrack(1, gomosh.TrackConfig{TrackType: gomosh.Video, TimeScale: 1000, MediaConf: &gomosh.Vp9Config{}}, 10, 40)
	audio := newFakeTrack(2, gomosh.TrackConfig{TrackType: gomosh.Audio, TimeScale: 1000, MediaConf: &gomosh.AacConfig{}}, 20, 20)
	r := &fakeReader{tracks: []*fakeTrack{audio, video}}
	w := new(fakeWriter)

	require.NoError(t, Remux(context.Background(), r, openFake(w), Options{Fraction: 0.3, SyncTracks: true, Rand: SeededRand(5)}))

	videoOrder := w.indices(2)
	var want []uint32
	for _, v := range videoOrder {
		want = append(want, 2*v-1, 2*v)
	}
	require.Equal(t, want, w.indices(1))
}

func TestRemuxUnsupportedTrackBeforeOpen(t *testing.T) {
	t.Parallel()

	bad := newFakeTrack(2, gomosh.TrackConfig{}, 3, 1)
	bad.cfgErr = &gomosh.UnsupportedTrackKindError{TrackID: 2, Format: "mp4v"}
	r := &fakeReader{tracks: []*fakeTrack{newFakeTrack(1, videoConfig, 3, 1), bad}}

	opened := false
	err := Remux(context.Background(), r, func(gomosh.Metadata) (gomosh.SampleWriter, error) {
		opened = true
		return nil, errors.New("unexpected open")
	}, Options{})

	var unsupported *gomosh.UnsupportedTrackKindError
	require.ErrorAs(t, err, &unsupported)
	require.False(t, opened)
}

func TestRemuxContractViolation(t *testing.T) {
	t.Parallel()

	r := &fakeReader{tracks: []*fakeTrack{newFakeTrack(1, videoConfig, 5, 1)}, countBonus: 1}
	w := new(fakeWriter)

	err := Remux(context.Background(), r, openFake(w), Options{Fraction: 1})
	var violation *gomosh.ContractViolationError
	require.ErrorAs(t, err, &violation)
	require.Equal(t, uint32(6), violation.Index)
	require.Equal(t, uint32(6), violation.Count)
	require.Zero(t, w.finalized)
}

func TestRemuxCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := &fakeReader{tracks: []*fakeTrack{newFakeTrack(1, videoConfig, 5, 1)}}
	err := Remux(ctx, r, openFake(new(fakeWriter)), Options{})
	require.ErrorIs(t, err, context.Canceled)
}

func TestRemuxEmptyTrack(t *testing.T) {
	t.Parallel()

	r := &fakeReader{tracks: []*fakeTrack{newFakeTrack(1, videoConfig, 0, 1), newFakeTrack(2, audioConfig, 4, 1)}}
	w := new(fakeWriter)

	require.NoError(t, Remux(context.Background(), r, openFake(w), Options{SyncTracks: true}))
	require.Empty(t, w.written[1])
	require.Len(t, w.written[2], 4)
}
