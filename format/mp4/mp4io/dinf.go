package mp4io

import "github.com/deepch/vdk/utils/bits/pio"

const (
	DINF = Tag(0x64696e66)
	DREF = Tag(0x64726566)
	URL  = Tag(0x75726c20)

	// DataSelfContained marks a data reference pointing into the same file.
	DataSelfContained = 0x000001
)

// NewSelfContainedDataInfo returns a dinf whose only url entry refers to the enclosing file.
func NewSelfContainedDataInfo() *DataInfo {
	return &DataInfo{
		Refer: &DataRefer{
			Url: &DataReferUrl{Flags: DataSelfContained},
		},
	}
}

func (self DataInfo) Tag() Tag {
	return DINF
}

type DataInfo struct {
	Refer    *DataRefer
	Unknowns []Atom
	AtomPos
}

func (self DataInfo) Marshal(b []byte) (n int) {
	n += 8
	if self.Refer != nil {
		n += self.Refer.Marshal(b[n:])
	}
	for _, atom := range self.Unknowns {
		n += atom.Marshal(b[n:])
	}
	putHeader(b, DINF, n)
	return
}

func (self DataInfo) Len() (n int) {
	n += 8
	if self.Refer != nil {
		n += self.Refer.Len()
	}
	for _, atom := range self.Unknowns {
		n += atom.Len()
	}
	return
}

func (self *DataInfo) Unmarshal(b []byte, offset int) (n int, err error) {
	(&self.AtomPos).setPos(offset, len(b))
	err = walkChildren(b, HeaderSize, offset, func(tag Tag, box []byte, offset int) (err error) {
		if tag != DREF {
			self.Unknowns = append(self.Unknowns, unknownChild(tag, box, offset))
			return
		}
		atom := &DataRefer{}
		if _, err = atom.Unmarshal(box, offset); err == nil {
			self.Refer = atom
		}
		return
	})
	n = len(b)
	return
}

func (self DataInfo) Children() (r []Atom) {
	if self.Refer != nil {
		r = append(r, self.Refer)
	}
	r = append(r, self.Unknowns...)
	return
}

func (self DataRefer) Tag() Tag {
	return DREF
}

type DataRefer struct {
	Version uint8
	Flags   uint32
	Url     *DataReferUrl
	AtomPos
}

func (self DataRefer) Marshal(b []byte) (n int) {
	n += 8
	n += putFullHeader(b[n:], self.Version, self.Flags)
	var entries uint32
	if self.Url != nil {
		entries++
	}
	pio.PutU32BE(b[n:], entries)
	n += 4
	if self.Url != nil {
		n += self.Url.Marshal(b[n:])
	}
	putHeader(b, DREF, n)
	return
}

func (self DataRefer) Len() (n int) {
	n += 8
	n += 4
	n += 4
	if self.Url != nil {
		n += self.Url.Len()
	}
	return
}

func (self *DataRefer) Unmarshal(b []byte, offset int) (n int, err error) {
	(&self.AtomPos).setPos(offset, len(b))
	n += 8
	if self.Version, self.Flags, err = getFullHeader(b, n, offset); err != nil {
		return
	}
	n += 4
	n += 4
	err = walkChildren(b, n, offset, func(tag Tag, box []byte, offset int) (err error) {
		if tag == URL {
			atom := &DataReferUrl{}
			if _, err = atom.Unmarshal(box, offset); err == nil {
				self.Url = atom
			}
		}
		return
	})
	n = len(b)
	return
}

func (self DataRefer) Children() (r []Atom) {
	if self.Url != nil {
		r = append(r, self.Url)
	}
	return
}

func (self DataReferUrl) Tag() Tag {
	return URL
}

type DataReferUrl struct {
	Version uint8
	Flags   uint32
	AtomPos
}

func (self DataReferUrl) Marshal(b []byte) (n int) {
	n += 8
	n += putFullHeader(b[n:], self.Version, self.Flags)
	putHeader(b, URL, n)
	return
}

func (self DataReferUrl) Len() (n int) {
	return 12
}

func (self *DataReferUrl) Unmarshal(b []byte, offset int) (n int, err error) {
	(&self.AtomPos).setPos(offset, len(b))
	n += 8
	if self.Version, self.Flags, err = getFullHeader(b, n, offset); err != nil {
		return
	}
	n += 4
	return
}

func (self DataReferUrl) Children() (r []Atom) {
	return
}
