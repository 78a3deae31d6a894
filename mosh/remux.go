package mosh

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"math/bits"
	"sync"

	"github.com/ugparu/gomosh"
	"github.com/ugparu/gomosh/utils/logger"
	"golang.org/x/sync/errgroup"
)

// Options tune a remux run.
type Options struct {
	Fraction   float64                  // Shuffle start fraction in [0, 1].
	Rand       func(track int) Shuffler // Generator per track index; FreshRand when nil.
	SyncTracks bool                     // Derive every plan from the reference track.
	Parallel   bool                     // Copy tracks concurrently.
	Atomic     bool                     // Write through a temporary file; used by File.
}

// OpenFunc opens the destination once the source metadata is known.
type OpenFunc func(m gomosh.Metadata) (gomosh.SampleWriter, error)

type track struct {
	index int
	src   uint32
	dst   uint32
	cfg   gomosh.TrackConfig
	count uint32
	plan  []uint32
}

func (t *track) String() string {
	return fmt.Sprintf("track %d", t.src)
}

// Remux copies every track of r into the writer returned by open, emitting
// the samples of each track in its plan order, and finalizes the writer.
// Unsupported tracks abort the run before open is called.
func Remux(ctx context.Context, r gomosh.SampleReader, open OpenFunc, opts Options) (err error) {
	ids := r.TrackIDs()
	tracks := make([]*track, 0, len(ids))
	for i, id := range ids {
		trk := &track{index: i, src: id}
		if trk.cfg, err = r.TrackConfig(id); err != nil {
			return err
		}
		if trk.count, err = r.SampleCount(id); err != nil {
			return err
		}
		tracks = append(tracks, trk)
	}

	if err = makePlans(r, tracks, opts); err != nil {
		return err
	}

	w, err := open(r.Metadata())
	if err != nil {
		return err
	}
	for _, trk := range tracks {
		if trk.dst, err = w.AddTrack(trk.cfg); err != nil {
			return err
		}
	}

	if opts.Parallel {
		err = copyParallel(ctx, r, w, tracks)
	} else {
		for _, trk := range tracks {
			if err = copyTrack(ctx, r, w, trk); err != nil {
				break
			}
		}
	}
	if err != nil {
		return err
	}
	return w.WriteEnd()
}

func makePlans(r gomosh.SampleReader, tracks []*track, opts Options) error {
	newRand := opts.Rand
	if newRand == nil {
		newRand = FreshRand
	}

	var ref *track
	if opts.SyncTracks {
		ref = referenceTrack(tracks)
	}
	if ref == nil {
		for _, trk := range tracks {
			trk.plan = Plan(trk.count, opts.Fraction, newRand(trk.index))
			logger.Debugf(trk, "%d samples, shuffled from %d", trk.count, max(SplitIndex(trk.count, opts.Fraction), 2))
		}
		return nil
	}

	ref.plan = Plan(ref.count, opts.Fraction, newRand(ref.index))
	logger.Debugf(ref, "reference, %d samples, shuffled from %d", ref.count, max(SplitIndex(ref.count, opts.Fraction), 2))

	refTimes, err := sampleTimes(r, ref, ref.cfg.TimeScale)
	if err != nil {
		return err
	}
	for _, trk := range tracks {
		if trk == ref {
			continue
		}
		times, err := sampleTimes(r, trk, ref.cfg.TimeScale)
		if err != nil {
			return err
		}
		trk.plan = FollowPlan(ref.plan, refTimes, times)
		logger.Debugf(trk, "%d samples following %v", trk.count, ref)
	}
	return nil
}

// referenceTrack is the first video track, else the first track.
func referenceTrack(tracks []*track) *track {
	for _, trk := range tracks {
		if trk.cfg.TrackType == gomosh.Video {
			return trk
		}
	}
	if len(tracks) > 0 {
		return tracks[0]
	}
	return nil
}

// sampleTimes returns the decode times of a track in units of timeScale.
func sampleTimes(r gomosh.SampleReader, trk *track, timeScale uint32) ([]uint64, error) {
	times := make([]uint64, trk.count)
	for i := range times {
		index := uint32(i + 1) //nolint:gosec
		tm, err := r.SampleTime(trk.src, index)
		if errors.Is(err, io.EOF) {
			return nil, &gomosh.ContractViolationError{TrackID: trk.src, Index: index, Count: trk.count}
		} else if err != nil {
			return nil, err
		}
		times[i] = rescale(tm, trk.cfg.TimeScale, timeScale)
	}
	return times, nil
}

func copyTrack(ctx context.Context, r gomosh.SampleReader, w gomosh.SampleWriter, trk *track) error {
	for _, index := range trk.plan {
		if err := ctx.Err(); err != nil {
			return err
		}
		s, err := r.ReadSample(trk.src, index)
		if errors.Is(err, io.EOF) {
			return &gomosh.ContractViolationError{TrackID: trk.src, Index: index, Count: trk.count}
		} else if err != nil {
			return err
		}
		if err = w.WriteSample(trk.dst, s); err != nil {
			return err
		}
	}
	return nil
}

// lockedWriter serializes sample writes of concurrent track loops.
type lockedWriter struct {
	sync.Mutex
	gomosh.SampleWriter
}

func (lw *lockedWriter) WriteSample(trackID uint32, s *gomosh.Sample) error {
	lw.Lock()
	defer lw.Unlock()
	return lw.SampleWriter.WriteSample(trackID, s)
}

func copyParallel(ctx context.Context, r gomosh.SampleReader, w gomosh.SampleWriter, tracks []*track) error {
	lw := &lockedWriter{SampleWriter: w}
	g, ctx := errgroup.WithContext(ctx)
	for _, trk := range tracks {
		g.Go(func() error {
			return copyTrack(ctx, r, lw, trk)
		})
	}
	return g.Wait()
}

// rescale converts v between time scales, saturating on overflow.
func rescale(v uint64, from, to uint32) uint64 {
	if from == 0 || from == to {
		return v
	}
	hi, lo := bits.Mul64(v, uint64(to))
	if hi >= uint64(from) {
		return math.MaxUint64
	}
	q, _ := bits.Div64(hi, lo, uint64(from))
	return q
}
