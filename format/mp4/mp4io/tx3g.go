package mp4io

import "github.com/deepch/vdk/utils/bits/pio"

const (
	TX3G = Tag(0x74783367)
	FTAB = Tag(0x66746162)

	textEntrySize = 46
)

// NewTextSampleEntry returns a tx3g entry with white text on a black
// background and a single "Serif" font.
func NewTextSampleEntry() *TextSampleEntry {
	ftab := []byte{0, 0, 0, 0x12, 'f', 't', 'a', 'b', 0, 1, 0, 1, 5, 'S', 'e', 'r', 'i', 'f'}
	return &TextSampleEntry{
		DataRefIdx:              1,
		HorizontalJustification: 1,
		VerticalJustification:   -1,
		BackgroundColor:         [4]byte{0, 0, 0, 0xff},
		StyleRecord:             [12]byte{0, 0, 0, 0, 0, 1, 0, 0x12, 0xff, 0xff, 0xff, 0xff},
		Unknowns:                []Atom{&Dummy{Tag_: FTAB, Data: ftab}},
	}
}

// TextSampleEntry is a 3GPP timed text sample entry.
type TextSampleEntry struct {
	DataRefIdx              int16
	DisplayFlags            uint32
	HorizontalJustification int8
	VerticalJustification   int8
	BackgroundColor         [4]byte
	BoxRecord               [4]int16
	StyleRecord             [12]byte
	Unknowns                []Atom
	AtomPos
}

func (self TextSampleEntry) Tag() Tag {
	return TX3G
}

func (self TextSampleEntry) Marshal(b []byte) (n int) {
	n += HeaderSize
	clear(b[n : n+6])
	n += 6
	pio.PutI16BE(b[n:], self.DataRefIdx)
	n += 2
	pio.PutU32BE(b[n:], self.DisplayFlags)
	n += 4
	b[n] = byte(self.HorizontalJustification)
	b[n+1] = byte(self.VerticalJustification)
	n += 2
	copy(b[n:], self.BackgroundColor[:])
	n += len(self.BackgroundColor)
	for _, v := range self.BoxRecord {
		pio.PutI16BE(b[n:], v)
		n += 2
	}
	copy(b[n:], self.StyleRecord[:])
	n += len(self.StyleRecord)
	for _, atom := range self.Unknowns {
		n += atom.Marshal(b[n:])
	}
	putHeader(b, TX3G, n)
	return
}

func (self TextSampleEntry) Len() (n int) {
	n += textEntrySize
	for _, atom := range self.Unknowns {
		n += atom.Len()
	}
	return
}

func (self *TextSampleEntry) Unmarshal(b []byte, offset int) (n int, err error) {
	(&self.AtomPos).setPos(offset, len(b))
	if len(b) < textEntrySize {
		err = parseErr("TextSampleEntry", offset, err)
		return
	}
	n += HeaderSize
	n += 6
	self.DataRefIdx = pio.I16BE(b[n:])
	n += 2
	self.DisplayFlags = pio.U32BE(b[n:])
	n += 4
	self.HorizontalJustification = int8(b[n])
	self.VerticalJustification = int8(b[n+1])
	n += 2
	copy(self.BackgroundColor[:], b[n:])
	n += len(self.BackgroundColor)
	for i := range self.BoxRecord {
		self.BoxRecord[i] = pio.I16BE(b[n:])
		n += 2
	}
	copy(self.StyleRecord[:], b[n:])
	n += len(self.StyleRecord)
	err = walkChildren(b, n, offset, func(tag Tag, box []byte, offset int) error {
		self.Unknowns = append(self.Unknowns, unknownChild(tag, box, offset))
		return nil
	})
	n = len(b)
	return
}

func (self TextSampleEntry) Children() (r []Atom) {
	return self.Unknowns
}
