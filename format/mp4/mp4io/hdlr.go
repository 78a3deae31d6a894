package mp4io

import "github.com/deepch/vdk/utils/bits/pio"

const HDLR = Tag(0x68646c72)

// NewHandlerRefer builds an hdlr box with a null terminated name.
func NewHandlerRefer(handlerType, name string) *HandlerRefer {
	hdlr := &HandlerRefer{Name: append([]byte(name), 0)}
	copy(hdlr.HandlerType[:], handlerType)
	return hdlr
}

type HandlerRefer struct {
	Version     uint8
	Flags       uint32
	PreDefined  uint32
	HandlerType [4]byte
	Reserved    [3]uint32
	Name        []byte
	AtomPos
}

func (hdlr HandlerRefer) Tag() Tag {
	return HDLR
}

func (hdlr HandlerRefer) Marshal(b []byte) (n int) {
	n += HeaderSize
	n += putFullHeader(b[n:], hdlr.Version, hdlr.Flags)
	pio.PutU32BE(b[n:], hdlr.PreDefined)
	n += 4
	copy(b[n:], hdlr.HandlerType[:])
	n += len(hdlr.HandlerType)
	for _, r := range hdlr.Reserved {
		pio.PutU32BE(b[n:], r)
		n += 4
	}
	copy(b[n:], hdlr.Name)
	n += len(hdlr.Name)
	putHeader(b, HDLR, n)
	return
}

func (hdlr HandlerRefer) Len() (n int) {
	n += HeaderSize
	n += 4
	n += 4
	n += len(hdlr.HandlerType)
	n += 4 * len(hdlr.Reserved)
	n += len(hdlr.Name)
	return
}

func (hdlr *HandlerRefer) Unmarshal(b []byte, offset int) (n int, err error) {
	(&hdlr.AtomPos).setPos(offset, len(b))
	n += HeaderSize
	if hdlr.Version, hdlr.Flags, err = getFullHeader(b, n, offset); err != nil {
		return
	}
	n += 4
	if len(b) < n+4+len(hdlr.HandlerType)+4*len(hdlr.Reserved) {
		err = parseErr("HandlerType", n+offset, err)
		return
	}
	hdlr.PreDefined = pio.U32BE(b[n:])
	n += 4
	copy(hdlr.HandlerType[:], b[n:])
	n += len(hdlr.HandlerType)
	for i := range hdlr.Reserved {
		hdlr.Reserved[i] = pio.U32BE(b[n:])
		n += 4
	}
	hdlr.Name = b[n:]
	n = len(b)
	return
}

func (hdlr HandlerRefer) Children() (r []Atom) {
	return
}
