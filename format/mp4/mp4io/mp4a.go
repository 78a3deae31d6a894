package mp4io

import "github.com/deepch/vdk/utils/bits/pio"

const (
	MP4A = Tag(0x6d703461)
	WAVE = Tag(0x77617665)

	audioEntrySize = 36
)

// AudioSampleEntry is an mp4a sample entry. QuickTime sound description
// versions 1 and 2 are accepted on read and their extension fields skipped.
// An esds nested in a QuickTime wave box is picked up as Conf.
type AudioSampleEntry struct {
	DataRefIdx       int16
	Version          int16
	RevisionLevel    int16
	Vendor           int32
	NumberOfChannels int16
	SampleSize       int16
	CompressionId    int16
	SampleRate       float64
	Conf             *ElemStreamDesc
	Unknowns         []Atom
	AtomPos
}

func (self AudioSampleEntry) Tag() Tag {
	return MP4A
}

func (self AudioSampleEntry) Marshal(b []byte) (n int) {
	n += HeaderSize
	clear(b[n : n+6])
	n += 6
	pio.PutI16BE(b[n:], self.DataRefIdx)
	n += 2
	pio.PutI16BE(b[n:], 0)
	n += 2
	pio.PutI16BE(b[n:], self.RevisionLevel)
	n += 2
	pio.PutI32BE(b[n:], self.Vendor)
	n += 4
	pio.PutI16BE(b[n:], self.NumberOfChannels)
	n += 2
	pio.PutI16BE(b[n:], self.SampleSize)
	n += 2
	pio.PutI16BE(b[n:], self.CompressionId)
	n += 2
	pio.PutU16BE(b[n:], 0)
	n += 2
	PutFixed32(b[n:], self.SampleRate)
	n += 4
	if self.Conf != nil {
		n += self.Conf.Marshal(b[n:])
	}
	for _, atom := range self.Unknowns {
		n += atom.Marshal(b[n:])
	}
	putHeader(b, MP4A, n)
	return
}

func (self AudioSampleEntry) Len() (n int) {
	n += audioEntrySize
	if self.Conf != nil {
		n += self.Conf.Len()
	}
	for _, atom := range self.Unknowns {
		n += atom.Len()
	}
	return
}

func (self *AudioSampleEntry) Unmarshal(b []byte, offset int) (n int, err error) {
	(&self.AtomPos).setPos(offset, len(b))
	if len(b) < audioEntrySize {
		err = parseErr("AudioSampleEntry", offset, err)
		return
	}
	n += HeaderSize
	n += 6
	self.DataRefIdx = pio.I16BE(b[n:])
	n += 2
	self.Version = pio.I16BE(b[n:])
	n += 2
	self.RevisionLevel = pio.I16BE(b[n:])
	n += 2
	self.Vendor = pio.I32BE(b[n:])
	n += 4
	self.NumberOfChannels = pio.I16BE(b[n:])
	n += 2
	self.SampleSize = pio.I16BE(b[n:])
	n += 2
	self.CompressionId = pio.I16BE(b[n:])
	n += 2
	n += 2
	self.SampleRate = GetFixed32(b[n:])
	n += 4
	switch self.Version {
	case 1:
		n += 16
	case 2:
		n += 36
	}
	if len(b) < n {
		err = parseErr("SoundDescriptionExtension", n+offset, err)
		return
	}
	err = walkChildren(b, n, offset, func(tag Tag, box []byte, offset int) (err error) {
		switch tag {
		case ESDS:
			atom := &ElemStreamDesc{}
			if _, err = atom.Unmarshal(box, offset); err == nil {
				self.Conf = atom
			}
		case WAVE:
			self.Unknowns = append(self.Unknowns, unknownChild(tag, box, offset))
			if self.Conf == nil {
				self.Conf, err = findWaveConf(box, offset)
			}
		default:
			self.Unknowns = append(self.Unknowns, unknownChild(tag, box, offset))
		}
		return
	})
	n = len(b)
	return
}

// findWaveConf returns the esds inside a wave box, or nil if there is none.
func findWaveConf(b []byte, offset int) (conf *ElemStreamDesc, err error) {
	err = walkChildren(b, HeaderSize, offset, func(tag Tag, box []byte, offset int) (err error) {
		if tag != ESDS || conf != nil {
			return
		}
		atom := &ElemStreamDesc{}
		if _, err = atom.Unmarshal(box, offset); err == nil {
			conf = atom
		}
		return
	})
	return
}

func (self AudioSampleEntry) Children() (r []Atom) {
	if self.Conf != nil {
		r = append(r, self.Conf)
	}
	r = append(r, self.Unknowns...)
	return
}
