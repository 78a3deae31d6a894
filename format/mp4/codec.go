package mp4

import (
	"bytes"
	"fmt"

	"github.com/deepch/vdk/codec/aacparser"
	"github.com/deepch/vdk/codec/h264parser"
	"github.com/deepch/vdk/codec/h265parser"
	"github.com/ugparu/gomosh"
	"github.com/ugparu/gomosh/format/mp4/mp4io"
	"github.com/ugparu/gomosh/utils/logger"
)

const (
	handlerVideo    = "vide"
	handlerSound    = "soun"
	handlerSubtitle = "sbtl"

	// Shortest hvcC the parser accepts without its arrays.
	hvccMinSize = 23
	// NAL header, profile, constraint flags and level.
	avcMinSPSSize = 4

	// MPEG-2 AAC object type indications carried by some encoders in esds.
	objectTypeMPEG2AACMain = 0x66
	objectTypeMPEG2AACLC   = 0x67
	objectTypeMPEG2AACSSR  = 0x68
)

// defaultVpcc is a version 1 vpcC payload for profile 0, 8-bit 4:2:0 with
// unspecified colour primaries, transfer and matrix.
var defaultVpcc = []byte{1, 0, 0, 0, 0, 0x1f, 0x80, 2, 2, 2, 0, 0}

func trackTypeOf(handler [4]byte) (gomosh.TrackType, bool) {
	switch string(handler[:]) {
	case handlerVideo:
		return gomosh.Video, true
	case handlerSound:
		return gomosh.Audio, true
	case handlerSubtitle, "text", "subt":
		return gomosh.Subtitle, true
	}
	return 0, false
}

// parseMediaConf translates the sample entry of a track into a media config.
func parseMediaConf(id uint32, tt gomosh.TrackType, desc *mp4io.SampleDesc) (gomosh.MediaConfig, error) {
	entry := desc.Entry()
	if entry == nil {
		return nil, &gomosh.UnsupportedTrackKindError{TrackID: id, Format: "none"}
	}
	unsupported := &gomosh.UnsupportedTrackKindError{TrackID: id, Format: entry.Tag().String()}

	switch tt {
	case gomosh.Video:
		if desc.Visual == nil {
			return nil, unsupported
		}
		return parseVisual(id, desc.Visual, unsupported)
	case gomosh.Audio:
		if desc.Audio == nil {
			return nil, unsupported
		}
		return parseAudio(id, desc.Audio, unsupported)
	case gomosh.Subtitle:
		if desc.Text == nil {
			return nil, unsupported
		}
		return &gomosh.TtxtConfig{}, nil
	}
	return nil, unsupported
}

func parseVisual(id uint32, entry *mp4io.VisualSampleEntry, unsupported error) (gomosh.MediaConfig, error) {
	switch entry.Format {
	case mp4io.AVC1:
		if entry.Conf == nil || entry.Conf.Tag_ != mp4io.AVCC {
			return nil, &gomosh.MalformedContainerError{Reason: fmt.Sprintf("track %d: 'avcC' atom not found", id)}
		}
		codec, err := h264parser.NewCodecDataFromAVCDecoderConfRecord(entry.Conf.Data)
		if err != nil {
			return nil, &gomosh.MalformedContainerError{Reason: fmt.Sprintf("track %d: avcC", id), Err: err}
		}
		return &gomosh.AvcConfig{
			Width:       entry.Width,
			Height:      entry.Height,
			SeqParamSet: bytes.Clone(codec.SPS()),
			PicParamSet: bytes.Clone(codec.PPS()),
		}, nil
	case mp4io.HEV1, mp4io.HVC1:
		conf := &gomosh.HevcConfig{Width: entry.Width, Height: entry.Height}
		if entry.Conf != nil && entry.Conf.Tag_ == mp4io.HVCC {
			conf.Record = bytes.Clone(entry.Conf.Data)
		}
		if len(conf.Record) >= hvccMinSize {
			if codec, err := h265parser.NewCodecDataFromAVCDecoderConfRecord(conf.Record); err != nil {
				logger.Warningf("mp4", "track %d: hvcC not understood: %v", id, err)
			} else {
				logger.Debugf("mp4", "track %d: hvcC %dx%d", id, codec.Width(), codec.Height())
			}
		}
		return conf, nil
	case mp4io.VP09:
		conf := &gomosh.Vp9Config{Width: entry.Width, Height: entry.Height}
		if entry.Conf != nil && entry.Conf.Tag_ == mp4io.VPCC {
			conf.Record = bytes.Clone(entry.Conf.Data)
		}
		return conf, nil
	}
	return nil, unsupported
}

func parseAudio(id uint32, entry *mp4io.AudioSampleEntry, unsupported error) (gomosh.MediaConfig, error) {
	esds := entry.Conf
	if esds == nil {
		return nil, unsupported
	}
	switch esds.ObjectType {
	case mp4io.ObjectTypeAAC, objectTypeMPEG2AACMain, objectTypeMPEG2AACLC, objectTypeMPEG2AACSSR:
	default:
		return nil, &gomosh.UnsupportedTrackKindError{TrackID: id, Format: fmt.Sprintf("mp4a.%02x", esds.ObjectType)}
	}
	cfg, err := aacparser.ParseMPEG4AudioConfigBytes(esds.DecConfig)
	if err != nil {
		return nil, &gomosh.MalformedContainerError{Reason: fmt.Sprintf("track %d: esds", id), Err: err}
	}
	return &gomosh.AacConfig{
		Bitrate:   esds.AvgBitrate,
		Profile:   uint8(cfg.ObjectType),      //nolint:gosec
		FreqIndex: uint8(cfg.SampleRateIndex), //nolint:gosec
		ChanConf:  uint8(cfg.ChannelConfig),   //nolint:gosec
	}, nil
}

// newSampleEntry builds the stsd entry declaring a media config.
func newSampleEntry(id uint32, conf gomosh.MediaConfig) (entry mp4io.Atom, width, height uint16, err error) {
	switch c := conf.(type) {
	case *gomosh.AvcConfig:
		if len(c.SeqParamSet) < avcMinSPSSize || len(c.PicParamSet) == 0 {
			err = fmt.Errorf("mp4: track %d: avc parameter sets too short (sps %d, pps %d bytes)",
				id, len(c.SeqParamSet), len(c.PicParamSet))
			return
		}
		var codec h264parser.CodecData
		if codec, err = h264parser.NewCodecDataFromSPSAndPPS(c.SeqParamSet, c.PicParamSet); err != nil {
			err = fmt.Errorf("mp4: track %d: invalid avc parameter sets: %w", id, err)
			return
		}
		width, height = c.Width, c.Height
		if width == 0 || height == 0 {
			width, height = uint16(codec.Width()), uint16(codec.Height()) //nolint:gosec
		}
		avcc := &mp4io.CodecConf{Tag_: mp4io.AVCC, Data: codec.AVCDecoderConfRecordBytes()}
		entry = mp4io.NewVisualSampleEntry(mp4io.AVC1, width, height, avcc)
	case *gomosh.HevcConfig:
		var hvcc *mp4io.CodecConf
		if len(c.Record) > 0 {
			hvcc = &mp4io.CodecConf{Tag_: mp4io.HVCC, Data: c.Record}
		}
		width, height = c.Width, c.Height
		entry = mp4io.NewVisualSampleEntry(mp4io.HEV1, width, height, hvcc)
	case *gomosh.Vp9Config:
		record := c.Record
		if len(record) == 0 {
			record = defaultVpcc
		}
		width, height = c.Width, c.Height
		entry = mp4io.NewVisualSampleEntry(mp4io.VP09, width, height, &mp4io.CodecConf{Tag_: mp4io.VPCC, Data: record})
	case *gomosh.AacConfig:
		entry, err = newAudioEntry(id, c)
	case *gomosh.TtxtConfig:
		entry = mp4io.NewTextSampleEntry()
	default:
		format := "none"
		if conf != nil {
			format = fmt.Sprintf("%T", conf)
		}
		err = &gomosh.UnsupportedTrackKindError{TrackID: id, Format: format}
	}
	return
}

func newAudioEntry(id uint32, c *gomosh.AacConfig) (*mp4io.AudioSampleEntry, error) {
	cfg := aacparser.MPEG4AudioConfig{
		ObjectType:      uint(c.Profile),
		SampleRateIndex: uint(c.FreqIndex),
		ChannelConfig:   uint(c.ChanConf),
	}
	cfg.Complete()

	buf := new(bytes.Buffer)
	if err := aacparser.WriteMPEG4AudioConfig(buf, cfg); err != nil {
		return nil, fmt.Errorf("mp4: track %d: invalid aac config: %w", id, err)
	}

	entry := &mp4io.AudioSampleEntry{
		DataRefIdx:       1,
		NumberOfChannels: int16(cfg.ChannelLayout.Count()), //nolint:gosec
		SampleSize:       16,
		Conf: &mp4io.ElemStreamDesc{
			ESID:       uint16(id), //nolint:gosec
			ObjectType: mp4io.ObjectTypeAAC,
			StreamType: mp4io.StreamTypeAudio,
			MaxBitrate: c.Bitrate,
			AvgBitrate: c.Bitrate,
			DecConfig:  buf.Bytes(),
		},
	}
	// The entry rate is 16.16 fixed point; higher rates are carried by mdhd only.
	if cfg.SampleRate <= 0xffff {
		entry.SampleRate = float64(cfg.SampleRate)
	}
	if entry.NumberOfChannels == 0 {
		entry.NumberOfChannels = 2
	}
	return entry, nil
}
