package mp4io

import "github.com/deepch/vdk/utils/bits/pio"

const STSS = Tag(0x73747373)

func (self SyncSample) Tag() Tag {
	return STSS
}

// SyncSample lists the 1-based numbers of the sync samples of a track.
type SyncSample struct {
	Version uint8
	Flags   uint32
	Entries []uint32
	AtomPos
}

func (self SyncSample) Marshal(b []byte) (n int) {
	n += HeaderSize
	n += putFullHeader(b[n:], self.Version, self.Flags)
	pio.PutU32BE(b[n:], uint32(len(self.Entries)))
	n += 4
	for _, entry := range self.Entries {
		pio.PutU32BE(b[n:], entry)
		n += 4
	}
	putHeader(b, STSS, n)
	return
}

func (self SyncSample) Len() (n int) {
	return HeaderSize + 8 + 4*len(self.Entries)
}

func (self *SyncSample) Unmarshal(b []byte, offset int) (n int, err error) {
	(&self.AtomPos).setPos(offset, len(b))
	n += HeaderSize
	var count int
	if self.Version, self.Flags, count, err = getTableHeader(b, n, offset, 4); err != nil {
		return
	}
	n += 8
	self.Entries = make([]uint32, count)
	for i := range self.Entries {
		self.Entries[i] = pio.U32BE(b[n:])
		n += 4
	}
	return
}

func (self SyncSample) Children() (r []Atom) {
	return
}
