package mp4io

import "github.com/deepch/vdk/utils/bits/pio"

const (
	STCO = Tag(0x7374636f)
	CO64 = Tag(0x636f3634)
)

// ChunkOffset is an stco box, or a co64 box when Large is set.
type ChunkOffset struct {
	Version uint8
	Flags   uint32
	Large   bool
	Entries []uint64
	AtomPos
}

func (self ChunkOffset) Tag() Tag {
	if self.Large {
		return CO64
	}
	return STCO
}

func (self ChunkOffset) entryLen() int {
	if self.Large {
		return 8
	}
	return 4
}

func (self ChunkOffset) Marshal(b []byte) (n int) {
	n += HeaderSize
	n += putFullHeader(b[n:], self.Version, self.Flags)
	pio.PutU32BE(b[n:], uint32(len(self.Entries)))
	n += 4
	for _, entry := range self.Entries {
		if self.Large {
			pio.PutU64BE(b[n:], entry)
		} else {
			pio.PutU32BE(b[n:], uint32(entry))
		}
		n += self.entryLen()
	}
	putHeader(b, self.Tag(), n)
	return
}

func (self ChunkOffset) Len() (n int) {
	return HeaderSize + 8 + self.entryLen()*len(self.Entries)
}

func (self *ChunkOffset) Unmarshal(b []byte, offset int) (n int, err error) {
	(&self.AtomPos).setPos(offset, len(b))
	if len(b) < HeaderSize {
		err = parseErr("Tag", offset, err)
		return
	}
	self.Large = Tag(pio.U32BE(b[4:])) == CO64
	n += HeaderSize
	var count int
	if self.Version, self.Flags, count, err = getTableHeader(b, n, offset, self.entryLen()); err != nil {
		return
	}
	n += 8
	self.Entries = make([]uint64, count)
	for i := range self.Entries {
		if self.Large {
			self.Entries[i] = pio.U64BE(b[n:])
		} else {
			self.Entries[i] = uint64(pio.U32BE(b[n:]))
		}
		n += self.entryLen()
	}
	return
}

func (self ChunkOffset) Children() (r []Atom) {
	return
}
