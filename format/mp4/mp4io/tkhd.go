package mp4io

import (
	"time"

	"github.com/deepch/vdk/utils/bits/pio"
)

const (
	TKHD       = Tag(0x746b6864)
	tkhdSize   = 92
	tkhdSizeV1 = 104

	TrackEnabled   = 0x000001
	TrackInMovie   = 0x000002
	TrackInPreview = 0x000004
)

func (self TrackHeader) Tag() Tag {
	return TKHD
}

type TrackHeader struct {
	Version        uint8
	Flags          uint32
	CreateTime     time.Time
	ModifyTime     time.Time
	TrackId        uint32
	Duration       uint64
	Layer          int16
	AlternateGroup int16
	Volume         float64
	Matrix         [9]int32
	TrackWidth     float64
	TrackHeight    float64
	AtomPos
}

func (self TrackHeader) Marshal(b []byte) (n int) {
	n += HeaderSize
	n += putFullHeader(b[n:], self.Version, self.Flags)
	if self.Version == 1 {
		PutTime64(b[n:], self.CreateTime)
		n += 8
		PutTime64(b[n:], self.ModifyTime)
		n += 8
	} else {
		PutTime32(b[n:], self.CreateTime)
		n += 4
		PutTime32(b[n:], self.ModifyTime)
		n += 4
	}
	pio.PutU32BE(b[n:], self.TrackId)
	n += 4
	pio.PutU32BE(b[n:], 0)
	n += 4
	if self.Version == 1 {
		pio.PutU64BE(b[n:], self.Duration)
		n += 8
	} else {
		pio.PutU32BE(b[n:], uint32(self.Duration))
		n += 4
	}
	clear(b[n : n+8])
	n += 8
	pio.PutI16BE(b[n:], self.Layer)
	n += 2
	pio.PutI16BE(b[n:], self.AlternateGroup)
	n += 2
	PutFixed16(b[n:], self.Volume)
	n += 2
	pio.PutU16BE(b[n:], 0)
	n += 2
	for _, entry := range self.Matrix {
		pio.PutI32BE(b[n:], entry)
		n += 4
	}
	PutFixed32(b[n:], self.TrackWidth)
	n += 4
	PutFixed32(b[n:], self.TrackHeight)
	n += 4
	putHeader(b, TKHD, n)
	return
}

func (self TrackHeader) Len() (n int) {
	if self.Version == 1 {
		return tkhdSizeV1
	}
	return tkhdSize
}

func (self *TrackHeader) Unmarshal(b []byte, offset int) (n int, err error) {
	(&self.AtomPos).setPos(offset, len(b))
	n += HeaderSize
	if self.Version, self.Flags, err = getFullHeader(b, n, offset); err != nil {
		return
	}
	n += 4
	size := tkhdSize
	if self.Version == 1 {
		size = tkhdSizeV1
	}
	if len(b) < size {
		err = parseErr("TrackHeader", n+offset, err)
		return
	}
	if self.Version == 1 {
		self.CreateTime = GetTime64(b[n:])
		n += 8
		self.ModifyTime = GetTime64(b[n:])
		n += 8
	} else {
		self.CreateTime = GetTime32(b[n:])
		n += 4
		self.ModifyTime = GetTime32(b[n:])
		n += 4
	}
	self.TrackId = pio.U32BE(b[n:])
	n += 4
	n += 4
	if self.Version == 1 {
		self.Duration = pio.U64BE(b[n:])
		n += 8
	} else {
		self.Duration = uint64(pio.U32BE(b[n:]))
		n += 4
	}
	n += 8
	self.Layer = pio.I16BE(b[n:])
	n += 2
	self.AlternateGroup = pio.I16BE(b[n:])
	n += 2
	self.Volume = GetFixed16(b[n:])
	n += 2
	n += 2
	for i := range self.Matrix {
		self.Matrix[i] = pio.I32BE(b[n:])
		n += 4
	}
	self.TrackWidth = GetFixed32(b[n:])
	n += 4
	self.TrackHeight = GetFixed32(b[n:])
	n += 4
	return
}

func (self TrackHeader) Children() (r []Atom) {
	return
}
