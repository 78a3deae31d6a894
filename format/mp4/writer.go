package mp4

import (
	"bufio"
	"fmt"
	"io"
	"time"

	"github.com/deepch/vdk/utils/bits/pio"
	"github.com/ugparu/gomosh"
	"github.com/ugparu/gomosh/format/mp4/mp4io"
	"github.com/ugparu/gomosh/utils/logger"
)

const (
	defaultMovieTimeScale = 1000
	mdatHeaderSize        = mp4io.ExtendedHeaderSize
)

// Writer builds a progressive mp4 file: ftyp, free, one mdat holding every
// sample in call order, and moov written once by WriteEnd. It is not safe for
// concurrent use.
type Writer struct {
	writer         io.WriteSeeker // The underlying destination.
	bufferedWriter *bufio.Writer  // Buffers sample payloads.
	writePosition  int64          // Absolute position of the next byte.
	mdatPosition   int64          // Absolute position of the mdat header.
	metadata       gomosh.Metadata
	tracks         []*writerTrack
	lastTrack      *writerTrack // Owner of the open chunk.
	finalized      bool
}

// NewWriter writes the file header described by m at the current position of w.
func NewWriter(w io.WriteSeeker, m gomosh.Metadata) (*Writer, error) {
	pos, err := w.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, &gomosh.IOError{Op: "write header", Err: err}
	}

	wr := &Writer{
		writer:         w,
		bufferedWriter: bufio.NewWriterSize(w, pio.RecommendBufioSize),
		writePosition:  pos,
		metadata:       m,
	}

	// Write the ftyp atom.
	compatible := make([]uint32, 0, len(m.CompatibleBrands))
	for _, brand := range m.CompatibleBrands {
		compatible = append(compatible, pio.U32BE(brand[:]))
	}
	ftyp := mp4io.NewFileType(pio.U32BE(m.MajorBrand[:]), m.MinorVersion, compatible)
	free := new(mp4io.FreeType)

	buffer := make([]byte, ftyp.Len()+free.Len()+mdatHeaderSize)
	n := ftyp.Marshal(buffer)
	n += free.Marshal(buffer[n:])

	// The mdat size is patched by WriteEnd.
	wr.mdatPosition = pos + int64(n)
	pio.PutU32BE(buffer[n:], 1)
	pio.PutU32BE(buffer[n+4:], uint32(mp4io.MDAT))
	n += mdatHeaderSize

	if _, err = w.Write(buffer[:n]); err != nil {
		return nil, &gomosh.IOError{Op: "write header", Err: err}
	}
	wr.writePosition += int64(n)
	return wr, nil
}

func (wr *Writer) String() string {
	return "Writer"
}

// AddTrack declares a track and returns its id. Ids are assigned 1..n in call order.
func (wr *Writer) AddTrack(cfg gomosh.TrackConfig) (uint32, error) {
	if wr.finalized {
		return 0, gomosh.WriterFinalizedError{}
	}
	id := uint32(len(wr.tracks) + 1) //nolint:gosec

	if cfg.TimeScale == 0 {
		return 0, fmt.Errorf("mp4: track %d: time scale must be positive", id)
	}
	if cfg.MediaConf != nil && cfg.MediaType().TrackType() != cfg.TrackType {
		return 0, fmt.Errorf("mp4: track %d: %v config declared as %v track", id, cfg.MediaType(), cfg.TrackType)
	}
	entry, width, height, err := newSampleEntry(id, cfg.MediaConf)
	if err != nil {
		return 0, err
	}

	wr.tracks = append(wr.tracks, &writerTrack{
		id:     id,
		config: cfg,
		entry:  entry,
		width:  width,
		height: height,
	})
	logger.Debugf(wr, "track %d: %v, time scale %d", id, cfg.MediaType(), cfg.TimeScale)
	return id, nil
}

// WriteSample appends the payload of s to mdat and records it in the sample
// table of the track. Decode times follow from accumulated durations.
func (wr *Writer) WriteSample(trackID uint32, s *gomosh.Sample) error {
	if wr.finalized {
		return gomosh.WriterFinalizedError{}
	}
	if trackID < 1 || int(trackID) > len(wr.tracks) {
		return &gomosh.TrackNotFoundError{TrackID: trackID}
	}
	trk := wr.tracks[trackID-1]

	if trk != wr.lastTrack || trk.chunkFull() {
		trk.startChunk(wr.writePosition)
		wr.lastTrack = trk
	}

	if _, err := wr.bufferedWriter.Write(s.Data); err != nil {
		return &gomosh.IOError{Op: "write sample", Err: err}
	}
	wr.writePosition += int64(len(s.Data))
	trk.addSample(s)
	return nil
}

// WriteEnd patches the mdat size and writes moov. The writer is unusable
// afterwards, even when WriteEnd fails.
func (wr *Writer) WriteEnd() (err error) {
	if wr.finalized {
		return gomosh.WriterFinalizedError{}
	}
	wr.finalized = true

	if err = wr.bufferedWriter.Flush(); err != nil {
		return &gomosh.IOError{Op: "flush samples", Err: err}
	}

	// Update the size of MDAT in the file.
	tagHdr := make([]byte, 8)
	pio.PutU64BE(tagHdr, uint64(wr.writePosition-wr.mdatPosition)) //nolint:gosec
	if _, err = wr.writer.Seek(wr.mdatPosition+mp4io.HeaderSize, io.SeekStart); err != nil {
		return &gomosh.IOError{Op: "patch mdat", Err: err}
	}
	if _, err = wr.writer.Write(tagHdr); err != nil {
		return &gomosh.IOError{Op: "patch mdat", Err: err}
	}

	// Move to the end of the file and write the MOOV atom.
	if _, err = wr.writer.Seek(wr.writePosition, io.SeekStart); err != nil {
		return &gomosh.IOError{Op: "write moov", Err: err}
	}
	moov := wr.movieAtom()
	b := make([]byte, moov.Len())
	moov.Marshal(b)
	if _, err = wr.writer.Write(b); err != nil {
		return &gomosh.IOError{Op: "write moov", Err: err}
	}
	wr.writePosition += int64(len(b))

	logger.Debugf(wr, "finalized %d tracks, %d bytes", len(wr.tracks), wr.writePosition)
	return nil
}

func (wr *Writer) movieAtom() *mp4io.Movie {
	timeScale := wr.metadata.TimeScale
	if timeScale == 0 {
		timeScale = defaultMovieTimeScale
	}

	moov := new(mp4io.Movie)
	moov.Header = mp4io.NewMovieHeader(timeScale)
	moov.Header.NextTrackID = uint32(len(wr.tracks) + 1) //nolint:gosec

	now := time.Now().UTC()
	var maxDur uint64
	for _, trk := range wr.tracks {
		atrack := trk.trackAtom(timeScale, now)
		maxDur = max(maxDur, atrack.Header.Duration)
		moov.Tracks = append(moov.Tracks, atrack)
	}
	moov.Header.Duration = maxDur
	moov.Header.Version = version(maxDur)
	return moov
}
