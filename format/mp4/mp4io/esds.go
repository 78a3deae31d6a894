package mp4io

import (
	"github.com/deepch/vdk/utils/bits/pio"
)

const (
	MP4ESDescrTag          = 3
	MP4DecConfigDescrTag   = 4
	MP4DecSpecificDescrTag = 5
	MP4SLConfigDescrTag    = 6

	ObjectTypeAAC   = 0x40
	StreamTypeAudio = 0x15

	descrHeaderSize = 5
	decConfigSize   = 13
)

const ESDS = Tag(0x65736473)

// ElemStreamDesc is an esds box holding an MPEG-4 elementary stream descriptor.
type ElemStreamDesc struct {
	Version    uint8
	Flags      uint32
	ESID       uint16
	ObjectType uint8
	StreamType uint8
	BufferSize uint32
	MaxBitrate uint32
	AvgBitrate uint32
	DecConfig  []byte
	AtomPos
}

func (esds ElemStreamDesc) Tag() Tag {
	return ESDS
}

func (esds ElemStreamDesc) Children() []Atom {
	return nil
}

func (esds ElemStreamDesc) decSpecificLen() int {
	return descrHeaderSize + len(esds.DecConfig)
}

func (esds ElemStreamDesc) decConfigLen() int {
	return descrHeaderSize + decConfigSize + esds.decSpecificLen()
}

func (esds ElemStreamDesc) esDescrLen() int {
	return descrHeaderSize + 3 + esds.decConfigLen() + descrHeaderSize + 1
}

func (esds ElemStreamDesc) Len() (n int) {
	return HeaderSize + 4 + esds.esDescrLen()
}

// putDescrHeader writes a descriptor tag followed by a four byte length.
func putDescrHeader(b []byte, tag uint8, length int) int {
	b[0] = tag
	b[1] = 0x80 | byte(length>>21&0x7f)
	b[2] = 0x80 | byte(length>>14&0x7f)
	b[3] = 0x80 | byte(length>>7&0x7f)
	b[4] = byte(length & 0x7f)
	return descrHeaderSize
}

func (esds ElemStreamDesc) Marshal(b []byte) (n int) {
	n += HeaderSize
	n += putFullHeader(b[n:], esds.Version, esds.Flags)

	n += putDescrHeader(b[n:], MP4ESDescrTag, esds.esDescrLen()-descrHeaderSize)
	pio.PutU16BE(b[n:], esds.ESID)
	n += 2
	b[n] = 0
	n++

	n += putDescrHeader(b[n:], MP4DecConfigDescrTag, esds.decConfigLen()-descrHeaderSize)
	b[n] = esds.ObjectType
	b[n+1] = esds.StreamType
	n += 2
	pio.PutU24BE(b[n:], esds.BufferSize)
	n += 3
	pio.PutU32BE(b[n:], esds.MaxBitrate)
	n += 4
	pio.PutU32BE(b[n:], esds.AvgBitrate)
	n += 4

	n += putDescrHeader(b[n:], MP4DecSpecificDescrTag, len(esds.DecConfig))
	copy(b[n:], esds.DecConfig)
	n += len(esds.DecConfig)

	n += putDescrHeader(b[n:], MP4SLConfigDescrTag, 1)
	b[n] = 2
	n++

	putHeader(b, ESDS, n)
	return
}

func (esds *ElemStreamDesc) Unmarshal(b []byte, offset int) (n int, err error) {
	(&esds.AtomPos).setPos(offset, len(b))
	n += HeaderSize
	if esds.Version, esds.Flags, err = getFullHeader(b, n, offset); err != nil {
		return
	}
	n += 4
	if _, err = esds.parseDesc(b[n:], offset+n); err != nil {
		return
	}
	n = len(b)
	return
}

func (esds *ElemStreamDesc) parseDesc(b []byte, offset int) (n int, err error) {
	var hdrlen int
	var datalen int
	var tag uint8
	if hdrlen, tag, datalen, err = esds.parseDescHdr(b, offset); err != nil {
		return
	}
	n += hdrlen

	if len(b) < n+datalen {
		err = parseErr("datalen", offset+n, err)
		return
	}
	data := b[n : n+datalen]

	switch tag {
	case MP4ESDescrTag:
		if len(data) < 3 {
			err = parseErr("MP4ESDescrTag", offset+n, err)
			return
		}
		esds.ESID = pio.U16BE(data)
		flags := data[2]
		skip := 3
		if flags&0x80 != 0 {
			skip += 2
		}
		if flags&0x40 != 0 {
			if len(data) < skip+1 {
				err = parseErr("URLLength", offset+n+skip, err)
				return
			}
			skip += 1 + int(data[skip])
		}
		if flags&0x20 != 0 {
			skip += 2
		}
		if len(data) < skip {
			err = parseErr("MP4ESDescrTag", offset+n, err)
			return
		}
		if err = esds.parseDescList(data[skip:], offset+n+skip); err != nil {
			return
		}

	case MP4DecConfigDescrTag:
		if len(data) < decConfigSize {
			err = parseErr("MP4DecConfigDescrTag", offset+n, err)
			return
		}
		esds.ObjectType = data[0]
		esds.StreamType = data[1]
		esds.BufferSize = pio.U24BE(data[2:])
		esds.MaxBitrate = pio.U32BE(data[5:])
		esds.AvgBitrate = pio.U32BE(data[9:])
		if err = esds.parseDescList(data[decConfigSize:], offset+n+decConfigSize); err != nil {
			return
		}

	case MP4DecSpecificDescrTag:
		esds.DecConfig = data
	}

	n += datalen
	return
}

func (esds *ElemStreamDesc) parseDescList(b []byte, offset int) (err error) {
	for n := 0; n < len(b); {
		var m int
		if m, err = esds.parseDesc(b[n:], offset+n); err != nil {
			return
		}
		n += m
	}
	return
}

func (esds *ElemStreamDesc) parseLength(b []byte, offset int) (n int, length int, err error) {
	for n < 4 {
		if len(b) < n+1 {
			err = parseErr("len", offset+n, err)
			return
		}
		c := b[n]
		n++
		length = (length << 7) | (int(c) & 0x7f)
		if c&0x80 == 0 {
			break
		}
	}
	return
}

func (esds *ElemStreamDesc) parseDescHdr(b []byte, offset int) (n int, tag uint8, datalen int, err error) {
	if len(b) < n+1 {
		err = parseErr("tag", offset+n, err)
		return
	}
	tag = b[n]
	n++
	var lenlen int
	if lenlen, datalen, err = esds.parseLength(b[n:], offset+n); err != nil {
		return
	}
	n += lenlen
	return
}
