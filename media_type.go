package gomosh

// FourCC is a four character code such as a brand or a box type.
type FourCC [4]byte

// NewFourCC builds a FourCC from the first four bytes of s, padding with spaces.
func NewFourCC(s string) (f FourCC) {
	copy(f[:], "    ")
	copy(f[:], s)
	return
}

// String returns the code as text.
func (f FourCC) String() string {
	return string(f[:])
}

// TrackType is the kind of media carried by a track.
type TrackType uint8

const (
	Video TrackType = iota + 1
	Audio
	Subtitle
)

// String returns the human-readable name of a TrackType.
func (tt TrackType) String() string {
	switch tt {
	case Video:
		return "video"
	case Audio:
		return "audio"
	case Subtitle:
		return "subtitle"
	default:
		return "unknown"
	}
}

// MediaType is the codec of a track, one of a closed set.
type MediaType uint8

const (
	H264 MediaType = iota + 1
	H265
	VP9
	AAC
	TTXT
)

// String returns the human-readable name of a MediaType.
func (mt MediaType) String() string {
	switch mt {
	case H264:
		return "H264"
	case H265:
		return "H265"
	case VP9:
		return "VP9"
	case AAC:
		return "AAC"
	case TTXT:
		return "TTXT"
	default:
		return "UNKNOWN"
	}
}

// TrackType returns the track kind a codec belongs to.
func (mt MediaType) TrackType() TrackType {
	switch mt {
	case H264, H265, VP9:
		return Video
	case AAC:
		return Audio
	case TTXT:
		return Subtitle
	default:
		return 0
	}
}

// MediaConfig is the codec specific part of a TrackConfig.
type MediaConfig interface {
	MediaType() MediaType
}

// AvcConfig carries the H.264 parameter sets of a track.
type AvcConfig struct {
	Width       uint16
	Height      uint16
	SeqParamSet []byte
	PicParamSet []byte
}

func (*AvcConfig) MediaType() MediaType { return H264 }

// HevcConfig carries the picture size and the raw HEVCDecoderConfigurationRecord.
// An empty Record produces an hev1 entry without parameter sets.
type HevcConfig struct {
	Width  uint16
	Height uint16
	Record []byte
}

func (*HevcConfig) MediaType() MediaType { return H265 }

// Vp9Config carries the picture size and the raw vpcC payload.
type Vp9Config struct {
	Width  uint16
	Height uint16
	Record []byte
}

func (*Vp9Config) MediaType() MediaType { return VP9 }

// AacConfig carries the fields of an AudioSpecificConfig plus the stream bitrate.
type AacConfig struct {
	Bitrate   uint32
	Profile   uint8 // Audio object type.
	FreqIndex uint8 // Sampling frequency index.
	ChanConf  uint8 // Channel configuration.
}

func (*AacConfig) MediaType() MediaType { return AAC }

// TtxtConfig marks a 3GPP timed text track.
type TtxtConfig struct{}

func (*TtxtConfig) MediaType() MediaType { return TTXT }
