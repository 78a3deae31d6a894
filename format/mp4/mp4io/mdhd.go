package mp4io

import (
	"bytes"
	"time"

	"github.com/deepch/vdk/utils/bits/pio"
	"github.com/icza/bitio"
)

const (
	MDHD       = Tag(0x6d646864)
	mdhdSize   = 32
	mdhdSizeV1 = 44

	// UndeterminedLanguage is the ISO-639-2/T code for an unspecified language.
	UndeterminedLanguage = "und"
)

func (self MediaHeader) Tag() Tag {
	return MDHD
}

type MediaHeader struct {
	Version    uint8
	Flags      uint32
	CreateTime time.Time
	ModifyTime time.Time
	TimeScale  uint32
	Duration   uint64
	Language   string
	Quality    int16
	AtomPos
}

func (self MediaHeader) Marshal(b []byte) (n int) {
	n += HeaderSize
	n += putFullHeader(b[n:], self.Version, self.Flags)
	if self.Version == 1 {
		PutTime64(b[n:], self.CreateTime)
		n += 8
		PutTime64(b[n:], self.ModifyTime)
		n += 8
		pio.PutU32BE(b[n:], self.TimeScale)
		n += 4
		pio.PutU64BE(b[n:], self.Duration)
		n += 8
	} else {
		PutTime32(b[n:], self.CreateTime)
		n += 4
		PutTime32(b[n:], self.ModifyTime)
		n += 4
		pio.PutU32BE(b[n:], self.TimeScale)
		n += 4
		pio.PutU32BE(b[n:], uint32(self.Duration))
		n += 4
	}
	pio.PutU16BE(b[n:], PackLanguage(self.Language))
	n += 2
	pio.PutI16BE(b[n:], self.Quality)
	n += 2
	putHeader(b, MDHD, n)
	return
}

func (self MediaHeader) Len() (n int) {
	if self.Version == 1 {
		return mdhdSizeV1
	}
	return mdhdSize
}

func (self *MediaHeader) Unmarshal(b []byte, offset int) (n int, err error) {
	(&self.AtomPos).setPos(offset, len(b))
	n += HeaderSize
	if self.Version, self.Flags, err = getFullHeader(b, n, offset); err != nil {
		return
	}
	n += 4
	size := mdhdSize
	if self.Version == 1 {
		size = mdhdSizeV1
	}
	if len(b) < size {
		err = parseErr("MediaHeader", n+offset, err)
		return
	}
	if self.Version == 1 {
		self.CreateTime = GetTime64(b[n:])
		n += 8
		self.ModifyTime = GetTime64(b[n:])
		n += 8
		self.TimeScale = pio.U32BE(b[n:])
		n += 4
		self.Duration = pio.U64BE(b[n:])
		n += 8
	} else {
		self.CreateTime = GetTime32(b[n:])
		n += 4
		self.ModifyTime = GetTime32(b[n:])
		n += 4
		self.TimeScale = pio.U32BE(b[n:])
		n += 4
		self.Duration = uint64(pio.U32BE(b[n:]))
		n += 4
	}
	self.Language = UnpackLanguage(b[n : n+2])
	n += 2
	self.Quality = pio.I16BE(b[n:])
	n += 2
	return
}

func (self MediaHeader) Children() (r []Atom) {
	return
}

// PackLanguage encodes a three letter ISO-639-2/T code as one pad bit followed by
// three 5-bit characters offset by 0x60. Invalid codes are stored as "und".
func PackLanguage(lang string) uint16 {
	if !validLanguage(lang) {
		lang = UndeterminedLanguage
	}
	var buf bytes.Buffer
	w := bitio.NewWriter(&buf)
	_ = w.WriteBool(false)
	for i := 0; i < 3; i++ {
		_ = w.WriteBits(uint64(lang[i]-0x60), 5)
	}
	_ = w.Close()
	return pio.U16BE(buf.Bytes())
}

// UnpackLanguage decodes the packed mdhd language field.
func UnpackLanguage(b []byte) string {
	r := bitio.NewReader(bytes.NewReader(b))
	if _, err := r.ReadBits(1); err != nil {
		return UndeterminedLanguage
	}
	var lang [3]byte
	for i := range lang {
		c, err := r.ReadBits(5)
		if err != nil {
			return UndeterminedLanguage
		}
		lang[i] = byte(c) + 0x60
	}
	if !validLanguage(string(lang[:])) {
		return UndeterminedLanguage
	}
	return string(lang[:])
}

func validLanguage(lang string) bool {
	if len(lang) != 3 {
		return false
	}
	for i := 0; i < 3; i++ {
		if lang[i] < 'a' || lang[i] > 'z' {
			return false
		}
	}
	return true
}
