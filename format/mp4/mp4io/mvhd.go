// nolint: all
package mp4io

import (
	"time"

	"github.com/deepch/vdk/utils/bits/pio"
)

const (
	MVHD       = Tag(0x6d766864)
	mvhdSize   = 108
	mvhdSizeV1 = 120
)

// IdentityMatrix is the unity transformation used by mvhd and tkhd.
var IdentityMatrix = [9]int32{
	0x00010000, 0, 0,
	0, 0x00010000, 0,
	0, 0, 0x40000000,
}

func NewMovieHeader(timeScale uint32) *MovieHeader {
	now := time.Now().UTC()
	return &MovieHeader{
		CreateTime:      now,
		ModifyTime:      now,
		TimeScale:       timeScale,
		PreferredRate:   1,
		PreferredVolume: 1,
		Matrix:          IdentityMatrix,
	}
}

type MovieHeader struct {
	Version         byte      // 0 or 1; 1 signals time is 64-bit
	Flags           uint32    // 3 bytes
	CreateTime      time.Time // seconds since midnight, Jan 1, 1904, in UTC
	ModifyTime      time.Time // seconds since midnight, Jan 1, 1904, in UTC
	TimeScale       uint32    // time units per second
	Duration        uint64    // duration of the movie in time units
	PreferredRate   float64   // preferred rate during playback; 1.0 is normal
	PreferredVolume float64   // preferred playback volume; 1.0 is normal
	Matrix          [9]int32  // transformation matrix for the video
	NextTrackID     uint32
	AtomPos
}

func (mvhd MovieHeader) Tag() Tag {
	return MVHD
}

func (mvhd MovieHeader) Marshal(b []byte) (n int) {
	n += HeaderSize
	n += putFullHeader(b[n:], mvhd.Version, mvhd.Flags)
	if mvhd.Version == 1 {
		PutTime64(b[n:], mvhd.CreateTime)
		n += 8
		PutTime64(b[n:], mvhd.ModifyTime)
		n += 8
		pio.PutU32BE(b[n:], mvhd.TimeScale)
		n += 4
		pio.PutU64BE(b[n:], mvhd.Duration)
		n += 8
	} else {
		PutTime32(b[n:], mvhd.CreateTime)
		n += 4
		PutTime32(b[n:], mvhd.ModifyTime)
		n += 4
		pio.PutU32BE(b[n:], mvhd.TimeScale)
		n += 4
		pio.PutU32BE(b[n:], uint32(mvhd.Duration))
		n += 4
	}
	PutFixed32(b[n:], mvhd.PreferredRate)
	n += 4
	PutFixed16(b[n:], mvhd.PreferredVolume)
	n += 2
	clear(b[n : n+10])
	n += 10
	for _, entry := range mvhd.Matrix {
		pio.PutI32BE(b[n:], entry)
		n += 4
	}
	clear(b[n : n+24])
	n += 24
	pio.PutU32BE(b[n:], mvhd.NextTrackID)
	n += 4
	putHeader(b, MVHD, n)
	return
}

func (mvhd MovieHeader) Len() int {
	if mvhd.Version == 1 {
		return mvhdSizeV1
	}
	return mvhdSize
}

func (mvhd *MovieHeader) Unmarshal(b []byte, offset int) (n int, err error) {
	(&mvhd.AtomPos).setPos(offset, len(b))
	n += HeaderSize
	if mvhd.Version, mvhd.Flags, err = getFullHeader(b, n, offset); err != nil {
		return
	}
	n += 4
	size := mvhdSize
	if mvhd.Version == 1 {
		size = mvhdSizeV1
	}
	if len(b) < size {
		err = parseErr("MovieHeader", n+offset, err)
		return
	}
	if mvhd.Version == 1 {
		mvhd.CreateTime = GetTime64(b[n:])
		n += 8
		mvhd.ModifyTime = GetTime64(b[n:])
		n += 8
		mvhd.TimeScale = pio.U32BE(b[n:])
		n += 4
		mvhd.Duration = pio.U64BE(b[n:])
		n += 8
	} else {
		mvhd.CreateTime = GetTime32(b[n:])
		n += 4
		mvhd.ModifyTime = GetTime32(b[n:])
		n += 4
		mvhd.TimeScale = pio.U32BE(b[n:])
		n += 4
		mvhd.Duration = uint64(pio.U32BE(b[n:]))
		n += 4
	}
	mvhd.PreferredRate = GetFixed32(b[n:])
	n += 4
	mvhd.PreferredVolume = GetFixed16(b[n:])
	n += 2
	n += 10
	for i := range mvhd.Matrix {
		mvhd.Matrix[i] = pio.I32BE(b[n:])
		n += 4
	}
	n += 24
	mvhd.NextTrackID = pio.U32BE(b[n:])
	n += 4
	return
}

func (mvhd MovieHeader) Children() (r []Atom) {
	return
}
