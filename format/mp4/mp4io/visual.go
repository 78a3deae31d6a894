package mp4io

import "github.com/deepch/vdk/utils/bits/pio"

const (
	AVC1 = Tag(0x61766331)
	HEV1 = Tag(0x68657631)
	HVC1 = Tag(0x68766331)
	VP09 = Tag(0x76703039)

	visualEntrySize = 86

	DefaultDPI   = 72
	DefaultDepth = 24
)

func IsVisualFormat(tag Tag) bool {
	switch tag {
	case AVC1, HEV1, HVC1, VP09:
		return true
	}
	return false
}

// NewVisualSampleEntry returns a sample entry of the given format with the
// usual defaults for resolution fields.
func NewVisualSampleEntry(format Tag, width, height uint16, conf *CodecConf) *VisualSampleEntry {
	return &VisualSampleEntry{
		Format:               format,
		DataRefIdx:           1,
		Width:                width,
		Height:               height,
		HorizontalResolution: DefaultDPI,
		VerticalResolution:   DefaultDPI,
		FrameCount:           1,
		Depth:                DefaultDepth,
		ColorTableId:         -1,
		Conf:                 conf,
	}
}

// VisualSampleEntry is an avc1, hev1, hvc1 or vp09 sample entry.
type VisualSampleEntry struct {
	Format               Tag
	DataRefIdx           int16
	Width                uint16
	Height               uint16
	HorizontalResolution float64
	VerticalResolution   float64
	FrameCount           int16
	CompressorName       [32]byte
	Depth                int16
	ColorTableId         int16
	Conf                 *CodecConf
	Unknowns             []Atom
	AtomPos
}

func (self VisualSampleEntry) Tag() Tag {
	return self.Format
}

func (self VisualSampleEntry) Marshal(b []byte) (n int) {
	n += HeaderSize
	clear(b[n : n+6])
	n += 6
	pio.PutI16BE(b[n:], self.DataRefIdx)
	n += 2
	clear(b[n : n+16])
	n += 16
	pio.PutU16BE(b[n:], self.Width)
	n += 2
	pio.PutU16BE(b[n:], self.Height)
	n += 2
	PutFixed32(b[n:], self.HorizontalResolution)
	n += 4
	PutFixed32(b[n:], self.VerticalResolution)
	n += 4
	pio.PutU32BE(b[n:], 0)
	n += 4
	pio.PutI16BE(b[n:], self.FrameCount)
	n += 2
	copy(b[n:], self.CompressorName[:])
	n += len(self.CompressorName)
	pio.PutI16BE(b[n:], self.Depth)
	n += 2
	pio.PutI16BE(b[n:], self.ColorTableId)
	n += 2
	if self.Conf != nil {
		n += self.Conf.Marshal(b[n:])
	}
	for _, atom := range self.Unknowns {
		n += atom.Marshal(b[n:])
	}
	putHeader(b, self.Format, n)
	return
}

func (self VisualSampleEntry) Len() (n int) {
	n += visualEntrySize
	if self.Conf != nil {
		n += self.Conf.Len()
	}
	for _, atom := range self.Unknowns {
		n += atom.Len()
	}
	return
}

func (self *VisualSampleEntry) Unmarshal(b []byte, offset int) (n int, err error) {
	(&self.AtomPos).setPos(offset, len(b))
	if len(b) < visualEntrySize {
		err = parseErr("VisualSampleEntry", offset, err)
		return
	}
	self.Format = Tag(pio.U32BE(b[4:]))
	n += HeaderSize
	n += 6
	self.DataRefIdx = pio.I16BE(b[n:])
	n += 2
	n += 16
	self.Width = pio.U16BE(b[n:])
	n += 2
	self.Height = pio.U16BE(b[n:])
	n += 2
	self.HorizontalResolution = GetFixed32(b[n:])
	n += 4
	self.VerticalResolution = GetFixed32(b[n:])
	n += 4
	n += 4
	self.FrameCount = pio.I16BE(b[n:])
	n += 2
	copy(self.CompressorName[:], b[n:])
	n += len(self.CompressorName)
	self.Depth = pio.I16BE(b[n:])
	n += 2
	self.ColorTableId = pio.I16BE(b[n:])
	n += 2
	err = walkChildren(b, n, offset, func(tag Tag, box []byte, offset int) (err error) {
		switch tag {
		case AVCC, HVCC, VPCC:
			atom := &CodecConf{}
			if _, err = atom.Unmarshal(box, offset); err == nil {
				self.Conf = atom
			}
		default:
			self.Unknowns = append(self.Unknowns, unknownChild(tag, box, offset))
		}
		return
	})
	n = len(b)
	return
}

func (self VisualSampleEntry) Children() (r []Atom) {
	if self.Conf != nil {
		r = append(r, self.Conf)
	}
	r = append(r, self.Unknowns...)
	return
}
