package mp4io

import "github.com/deepch/vdk/utils/bits/pio"

const STSZ = Tag(0x7374737a)

func (self SampleSize) Tag() Tag {
	return STSZ
}

// SampleSize holds either one constant SampleSize for SampleCount samples or a
// size per sample in Entries.
type SampleSize struct {
	Version     uint8
	Flags       uint32
	SampleSize  uint32
	SampleCount uint32
	Entries     []uint32
	AtomPos
}

// Count returns the number of samples described by the box.
func (self SampleSize) Count() int {
	if self.SampleSize != 0 {
		return int(self.SampleCount)
	}
	return len(self.Entries)
}

// Size returns the size of the 0-based sample i.
func (self SampleSize) Size(i int) uint32 {
	if self.SampleSize != 0 {
		return self.SampleSize
	}
	return self.Entries[i]
}

func (self SampleSize) Marshal(b []byte) (n int) {
	n += HeaderSize
	n += putFullHeader(b[n:], self.Version, self.Flags)
	pio.PutU32BE(b[n:], self.SampleSize)
	n += 4
	if self.SampleSize != 0 {
		pio.PutU32BE(b[n:], self.SampleCount)
		n += 4
	} else {
		pio.PutU32BE(b[n:], uint32(len(self.Entries)))
		n += 4
		for _, entry := range self.Entries {
			pio.PutU32BE(b[n:], entry)
			n += 4
		}
	}
	putHeader(b, STSZ, n)
	return
}

func (self SampleSize) Len() (n int) {
	n += HeaderSize + 12
	if self.SampleSize == 0 {
		n += 4 * len(self.Entries)
	}
	return
}

func (self *SampleSize) Unmarshal(b []byte, offset int) (n int, err error) {
	(&self.AtomPos).setPos(offset, len(b))
	n += HeaderSize
	if self.Version, self.Flags, err = getFullHeader(b, n, offset); err != nil {
		return
	}
	n += 4
	if len(b) < n+8 {
		err = parseErr("SampleSize", n+offset, err)
		return
	}
	self.SampleSize = pio.U32BE(b[n:])
	n += 4
	self.SampleCount = pio.U32BE(b[n:])
	n += 4
	if self.SampleSize != 0 {
		return
	}
	if (len(b)-n)/4 < int(self.SampleCount) {
		err = parseErr("Entries", n+offset, err)
		return
	}
	self.Entries = make([]uint32, self.SampleCount)
	for i := range self.Entries {
		self.Entries[i] = pio.U32BE(b[n:])
		n += 4
	}
	return
}

func (self SampleSize) Children() (r []Atom) {
	return
}
