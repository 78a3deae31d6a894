package mp4io

import "github.com/deepch/vdk/utils/bits/pio"

const CTTS = Tag(0x63747473)

// CompositionOffsetEntry holds a run of equal composition offsets. Offsets are
// read as signed for both box versions.
type CompositionOffsetEntry struct {
	Count  uint32
	Offset int32
}

const LenCompositionOffsetEntry = 8

func (self CompositionOffset) Tag() Tag {
	return CTTS
}

type CompositionOffset struct {
	Version uint8
	Flags   uint32
	Entries []CompositionOffsetEntry
	AtomPos
}

func (self CompositionOffset) Marshal(b []byte) (n int) {
	n += HeaderSize
	n += putFullHeader(b[n:], self.Version, self.Flags)
	pio.PutU32BE(b[n:], uint32(len(self.Entries)))
	n += 4
	for _, entry := range self.Entries {
		pio.PutU32BE(b[n:], entry.Count)
		pio.PutI32BE(b[n+4:], entry.Offset)
		n += LenCompositionOffsetEntry
	}
	putHeader(b, CTTS, n)
	return
}

func (self CompositionOffset) Len() (n int) {
	return HeaderSize + 8 + LenCompositionOffsetEntry*len(self.Entries)
}

func (self *CompositionOffset) Unmarshal(b []byte, offset int) (n int, err error) {
	(&self.AtomPos).setPos(offset, len(b))
	n += HeaderSize
	var count int
	if self.Version, self.Flags, count, err = getTableHeader(b, n, offset, LenCompositionOffsetEntry); err != nil {
		return
	}
	n += 8
	self.Entries = make([]CompositionOffsetEntry, count)
	for i := range self.Entries {
		self.Entries[i].Count = pio.U32BE(b[n:])
		self.Entries[i].Offset = pio.I32BE(b[n+4:])
		n += LenCompositionOffsetEntry
	}
	return
}

func (self CompositionOffset) Children() (r []Atom) {
	return
}
