// Package gomosh defines the data model shared by the container reader, the
// container writer and the shuffling remuxer.
package gomosh

// Metadata describes the format identity of a container.
type Metadata struct {
	MajorBrand       FourCC   // Primary format tag.
	MinorVersion     uint32   // Version of the major brand.
	CompatibleBrands []FourCC // Brands the file also conforms to.
	TimeScale        uint32   // Movie time units per second.
}

// TrackConfig is everything needed to declare a track in a new container.
type TrackConfig struct {
	TrackType TrackType
	TimeScale uint32      // Track time units per second.
	Language  string      // ISO-639-2/T code, "und" when unknown.
	MediaConf MediaConfig // Codec specific payload.
}

// MediaType returns the codec of the track or 0 when no configuration is set.
func (tc TrackConfig) MediaType() MediaType {
	if tc.MediaConf == nil {
		return 0
	}
	return tc.MediaConf.MediaType()
}

// Sample is one encoded access unit of a track. It is copied between
// containers as an indivisible unit.
type Sample struct {
	DecodeTime        uint64 // Decode timestamp in track time units.
	Duration          uint32 // Duration in track time units.
	CompositionOffset int32  // Presentation minus decode time.
	IsSync            bool   // Decodable without prior samples.
	Data              []byte // Encoded payload.
}

// SampleReader gives random access to the tracks and samples of a container.
// Sample indices are 1-based.
type SampleReader interface {
	Metadata() Metadata                                       // Returns the container metadata.
	TrackIDs() []uint32                                       // Returns track ids in container order.
	TrackConfig(trackID uint32) (TrackConfig, error)          // Returns the track declaration.
	SampleCount(trackID uint32) (uint32, error)               // Returns the number of samples in the track.
	SampleTime(trackID uint32, index uint32) (uint64, error)  // Returns the decode time of a sample.
	ReadSample(trackID uint32, index uint32) (*Sample, error) // Returns a sample or io.EOF past the end.
}

// SampleWriter builds a container one sample at a time.
type SampleWriter interface {
	AddTrack(cfg TrackConfig) (uint32, error)        // Declares a track and returns its id.
	WriteSample(trackID uint32, sample *Sample) error // Appends a sample to a track.
	WriteEnd() error                                  // Finalizes the container.
}
