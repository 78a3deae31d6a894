package mp4io

import "github.com/deepch/vdk/utils/bits/pio"

const STSC = Tag(0x73747363)

type SampleToChunkEntry struct {
	FirstChunk      uint32
	SamplesPerChunk uint32
	SampleDescId    uint32
}

const LenSampleToChunkEntry = 12

func (self SampleToChunk) Tag() Tag {
	return STSC
}

type SampleToChunk struct {
	Version uint8
	Flags   uint32
	Entries []SampleToChunkEntry
	AtomPos
}

func (self SampleToChunk) Marshal(b []byte) (n int) {
	n += HeaderSize
	n += putFullHeader(b[n:], self.Version, self.Flags)
	pio.PutU32BE(b[n:], uint32(len(self.Entries)))
	n += 4
	for _, entry := range self.Entries {
		pio.PutU32BE(b[n:], entry.FirstChunk)
		pio.PutU32BE(b[n+4:], entry.SamplesPerChunk)
		pio.PutU32BE(b[n+8:], entry.SampleDescId)
		n += LenSampleToChunkEntry
	}
	putHeader(b, STSC, n)
	return
}

func (self SampleToChunk) Len() (n int) {
	return HeaderSize + 8 + LenSampleToChunkEntry*len(self.Entries)
}

func (self *SampleToChunk) Unmarshal(b []byte, offset int) (n int, err error) {
	(&self.AtomPos).setPos(offset, len(b))
	n += HeaderSize
	var count int
	if self.Version, self.Flags, count, err = getTableHeader(b, n, offset, LenSampleToChunkEntry); err != nil {
		return
	}
	n += 8
	self.Entries = make([]SampleToChunkEntry, count)
	for i := range self.Entries {
		self.Entries[i] = SampleToChunkEntry{
			FirstChunk:      pio.U32BE(b[n:]),
			SamplesPerChunk: pio.U32BE(b[n+4:]),
			SampleDescId:    pio.U32BE(b[n+8:]),
		}
		n += LenSampleToChunkEntry
	}
	return
}

func (self SampleToChunk) Children() (r []Atom) {
	return
}
