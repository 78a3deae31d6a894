package mp4io

import "github.com/deepch/vdk/utils/bits/pio"

const (
	VMHD = Tag(0x766d6864)
	SMHD = Tag(0x736d6864)
	NMHD = Tag(0x6e6d6864)
)

func (self VideoMediaInfo) Tag() Tag {
	return VMHD
}

type VideoMediaInfo struct {
	Version      uint8
	Flags        uint32
	GraphicsMode int16
	Opcolor      [3]int16
	AtomPos
}

func (self VideoMediaInfo) Marshal(b []byte) (n int) {
	n += 8
	n += putFullHeader(b[n:], self.Version, self.Flags)
	pio.PutI16BE(b[n:], self.GraphicsMode)
	n += 2
	for _, entry := range self.Opcolor {
		pio.PutI16BE(b[n:], entry)
		n += 2
	}
	putHeader(b, VMHD, n)
	return
}

func (self VideoMediaInfo) Len() (n int) {
	return 20
}

func (self *VideoMediaInfo) Unmarshal(b []byte, offset int) (n int, err error) {
	(&self.AtomPos).setPos(offset, len(b))
	n += 8
	if self.Version, self.Flags, err = getFullHeader(b, n, offset); err != nil {
		return
	}
	n += 4
	if len(b) < n+2+2*len(self.Opcolor) {
		err = parseErr("GraphicsMode", n+offset, err)
		return
	}
	self.GraphicsMode = pio.I16BE(b[n:])
	n += 2
	for i := range self.Opcolor {
		self.Opcolor[i] = pio.I16BE(b[n:])
		n += 2
	}
	return
}

func (self VideoMediaInfo) Children() (r []Atom) {
	return
}

func (self SoundMediaInfo) Tag() Tag {
	return SMHD
}

type SoundMediaInfo struct {
	Version uint8
	Flags   uint32
	Balance int16
	AtomPos
}

func (self SoundMediaInfo) Marshal(b []byte) (n int) {
	n += 8
	n += putFullHeader(b[n:], self.Version, self.Flags)
	pio.PutI16BE(b[n:], self.Balance)
	n += 2
	pio.PutU16BE(b[n:], 0)
	n += 2
	putHeader(b, SMHD, n)
	return
}

func (self SoundMediaInfo) Len() (n int) {
	return 16
}

func (self *SoundMediaInfo) Unmarshal(b []byte, offset int) (n int, err error) {
	(&self.AtomPos).setPos(offset, len(b))
	n += 8
	if self.Version, self.Flags, err = getFullHeader(b, n, offset); err != nil {
		return
	}
	n += 4
	if len(b) < n+2 {
		err = parseErr("Balance", n+offset, err)
		return
	}
	self.Balance = pio.I16BE(b[n:])
	n += 2
	n += 2
	return
}

func (self SoundMediaInfo) Children() (r []Atom) {
	return
}

// NullMediaInfo is the media header of tracks that are neither sound nor video.
type NullMediaInfo struct {
	Version uint8
	Flags   uint32
	AtomPos
}

func (self NullMediaInfo) Tag() Tag {
	return NMHD
}

func (self NullMediaInfo) Marshal(b []byte) (n int) {
	n += 8
	n += putFullHeader(b[n:], self.Version, self.Flags)
	putHeader(b, NMHD, n)
	return
}

func (self NullMediaInfo) Len() (n int) {
	return 12
}

func (self *NullMediaInfo) Unmarshal(b []byte, offset int) (n int, err error) {
	(&self.AtomPos).setPos(offset, len(b))
	n += 8
	if self.Version, self.Flags, err = getFullHeader(b, n, offset); err != nil {
		return
	}
	n += 4
	return
}

func (self NullMediaInfo) Children() (r []Atom) {
	return
}
