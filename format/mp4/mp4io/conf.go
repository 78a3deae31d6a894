package mp4io

import "github.com/deepch/vdk/utils/bits/pio"

const (
	AVCC = Tag(0x61766343)
	HVCC = Tag(0x68766343)
	VPCC = Tag(0x76706343)
)

// CodecConf carries an opaque decoder configuration record (avcC, hvcC or vpcC).
// For vpcC the full box version and flags are part of Data.
type CodecConf struct {
	Tag_ Tag
	Data []byte
	AtomPos
}

func (self CodecConf) Tag() Tag {
	return self.Tag_
}

func (self CodecConf) Marshal(b []byte) (n int) {
	n += HeaderSize
	copy(b[n:], self.Data)
	n += len(self.Data)
	putHeader(b, self.Tag_, n)
	return
}

func (self CodecConf) Len() (n int) {
	return HeaderSize + len(self.Data)
}

func (self *CodecConf) Unmarshal(b []byte, offset int) (n int, err error) {
	(&self.AtomPos).setPos(offset, len(b))
	if len(b) < HeaderSize {
		err = parseErr("CodecConf", offset, err)
		return
	}
	self.Tag_ = Tag(pio.U32BE(b[4:]))
	n += HeaderSize
	self.Data = b[n:]
	n = len(b)
	return
}

func (self CodecConf) Children() (r []Atom) {
	return
}
