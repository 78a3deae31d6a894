// Package mp4 reads and writes progressive ISO-BMFF files sample by sample.
package mp4

import (
	"errors"
	"fmt"
	"io"

	"github.com/ugparu/gomosh"
	"github.com/ugparu/gomosh/format/mp4/mp4io"
	"github.com/ugparu/gomosh/utils/logger"
)

// Reader gives random access to the samples of an mp4 file. Only the moov box
// and the sample index are kept in memory. It is safe for concurrent use.
type Reader struct {
	r        io.ReaderAt
	size     int64
	metadata gomosh.Metadata
	tracks   []*readerTrack
	byID     map[uint32]*readerTrack
}

type readerTrack struct {
	id      uint32
	config  gomosh.TrackConfig
	confErr error
	samples []sampleEntry
}

// NewReader parses the structure of a file of the given size.
func NewReader(r io.ReaderAt, size int64) (*Reader, error) {
	rd := &Reader{
		r:    r,
		size: size,
		byID: make(map[uint32]*readerTrack),
	}
	if err := rd.probe(); err != nil {
		return nil, err
	}
	return rd, nil
}

func (rd *Reader) String() string {
	return "Reader"
}

func (rd *Reader) probe() error {
	atoms, err := mp4io.ReadFileAtoms(rd.r, rd.size)
	if err != nil {
		var pe *mp4io.ParseError
		if errors.As(err, &pe) {
			return &gomosh.MalformedContainerError{Reason: "top-level boxes", Err: err}
		}
		return &gomosh.IOError{Op: "read header", Err: err}
	}

	var moov *mp4io.Movie
	var ftyp *mp4io.FileType
	for _, atom := range atoms {
		switch atom.Tag() {
		case mp4io.MOOV:
			moov, _ = atom.(*mp4io.Movie)
		case mp4io.FTYP:
			ftyp, _ = atom.(*mp4io.FileType)
		case mp4io.MOOF:
			return &gomosh.MalformedContainerError{Reason: "fragmented files are not supported"}
		}
	}
	if ftyp == nil {
		return &gomosh.MalformedContainerError{Reason: "'ftyp' atom not found"}
	}
	if moov == nil {
		return &gomosh.MalformedContainerError{Reason: "'moov' atom not found"}
	}
	if moov.Header == nil {
		return &gomosh.MalformedContainerError{Reason: "'mvhd' atom not found"}
	}
	if moov.Header.TimeScale == 0 {
		return &gomosh.MalformedContainerError{Reason: "movie time scale is zero"}
	}

	rd.metadata = gomosh.Metadata{
		MajorBrand:   fourCC(ftyp.MajorBrand),
		MinorVersion: ftyp.MinorVersion,
		TimeScale:    moov.Header.TimeScale,
	}
	for _, brand := range ftyp.CompatibleBrands {
		rd.metadata.CompatibleBrands = append(rd.metadata.CompatibleBrands, fourCC(brand))
	}

	for i, atrack := range moov.Tracks {
		trk, err := newReaderTrack(atrack)
		if err != nil {
			return &gomosh.MalformedContainerError{Reason: fmt.Sprintf("trak %d", i), Err: err}
		}
		if _, dup := rd.byID[trk.id]; dup {
			return &gomosh.MalformedContainerError{Reason: fmt.Sprintf("duplicate track id %d", trk.id)}
		}
		rd.byID[trk.id] = trk
		rd.tracks = append(rd.tracks, trk)
		logger.Debugf(rd, "track %d: %d samples, time scale %d", trk.id, len(trk.samples), trk.config.TimeScale)
	}
	return nil
}

func newReaderTrack(atrack *mp4io.Track) (*readerTrack, error) {
	switch {
	case atrack.Header == nil:
		return nil, errMissing("tkhd")
	case atrack.Media == nil:
		return nil, errMissing("mdia")
	case atrack.Media.Header == nil:
		return nil, errMissing("mdhd")
	case atrack.Media.Handler == nil:
		return nil, errMissing("hdlr")
	case atrack.Media.Info == nil:
		return nil, errMissing("minf")
	case atrack.Media.Info.Sample == nil:
		return nil, errMissing("stbl")
	case atrack.Media.Info.Sample.SampleDesc == nil:
		return nil, errMissing("stsd")
	case atrack.Media.Header.TimeScale == 0:
		return nil, errors.New("media time scale is zero")
	}

	trk := &readerTrack{
		id: atrack.Header.TrackId,
		config: gomosh.TrackConfig{
			TimeScale: atrack.Media.Header.TimeScale,
			Language:  atrack.Media.Header.Language,
		},
	}

	var err error
	if trk.samples, err = buildIndex(atrack.Media.Info.Sample); err != nil {
		return nil, err
	}

	handler := atrack.Media.Handler.HandlerType
	tt, ok := trackTypeOf(handler)
	if !ok {
		trk.confErr = &gomosh.UnsupportedTrackKindError{TrackID: trk.id, Format: string(handler[:])}
		return trk, nil
	}
	trk.config.TrackType = tt
	trk.config.MediaConf, trk.confErr = parseMediaConf(trk.id, tt, atrack.Media.Info.Sample.SampleDesc)
	return trk, nil
}

func fourCC(v uint32) gomosh.FourCC {
	return gomosh.FourCC{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)}
}

func (rd *Reader) track(id uint32) (*readerTrack, error) {
	trk, ok := rd.byID[id]
	if !ok {
		return nil, &gomosh.TrackNotFoundError{TrackID: id}
	}
	return trk, nil
}

// Metadata returns the brands of ftyp and the movie time scale.
func (rd *Reader) Metadata() gomosh.Metadata {
	m := rd.metadata
	m.CompatibleBrands = append([]gomosh.FourCC(nil), m.CompatibleBrands...)
	return m
}

// TrackIDs returns the ids of all tracks in moov order.
func (rd *Reader) TrackIDs() []uint32 {
	ids := make([]uint32, 0, len(rd.tracks))
	for _, trk := range rd.tracks {
		ids = append(ids, trk.id)
	}
	return ids
}

// TrackConfig returns the declaration of a track, or an UnsupportedTrackKindError
// when its handler or sample entry is outside the supported set.
func (rd *Reader) TrackConfig(id uint32) (gomosh.TrackConfig, error) {
	trk, err := rd.track(id)
	if err != nil {
		return gomosh.TrackConfig{}, err
	}
	if trk.confErr != nil {
		return gomosh.TrackConfig{}, trk.confErr
	}
	return trk.config, nil
}

func (rd *Reader) SampleCount(id uint32) (uint32, error) {
	trk, err := rd.track(id)
	if err != nil {
		return 0, err
	}
	return uint32(len(trk.samples)), nil //nolint:gosec
}

// SampleTime returns the decode time of the sample at a 1-based index.
func (rd *Reader) SampleTime(id, index uint32) (uint64, error) {
	trk, err := rd.track(id)
	if err != nil {
		return 0, err
	}
	if index < 1 || int(index) > len(trk.samples) {
		return 0, io.EOF
	}
	return trk.samples[index-1].dts, nil
}

// ReadSample loads the sample at a 1-based index. It returns io.EOF when the
// index is outside the track.
func (rd *Reader) ReadSample(id, index uint32) (*gomosh.Sample, error) {
	trk, err := rd.track(id)
	if err != nil {
		return nil, err
	}
	if index < 1 || int(index) > len(trk.samples) {
		return nil, io.EOF
	}
	entry := trk.samples[index-1]

	data := make([]byte, entry.size)
	if err = rd.readat(entry.offset, data); err != nil {
		return nil, &gomosh.IOError{Op: fmt.Sprintf("read sample %d of track %d", index, id), Err: err}
	}
	return &gomosh.Sample{
		DecodeTime:        entry.dts,
		Duration:          entry.duration,
		CompositionOffset: entry.cto,
		IsSync:            entry.sync,
		Data:              data,
	}, nil
}

func (rd *Reader) readat(pos int64, b []byte) error {
	if pos < 0 || pos+int64(len(b)) > rd.size {
		return io.ErrUnexpectedEOF
	}
	n, err := rd.r.ReadAt(b, pos)
	if n == len(b) {
		return nil
	}
	if err == nil || errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}
	return err
}
