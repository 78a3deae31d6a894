package mp4io

const MINF = Tag(0x6d696e66)

func (self MediaInfo) Tag() Tag {
	return MINF
}

type MediaInfo struct {
	Sound    *SoundMediaInfo
	Video    *VideoMediaInfo
	Null     *NullMediaInfo
	Data     *DataInfo
	Sample   *SampleTable
	Unknowns []Atom
	AtomPos
}

func (self MediaInfo) Marshal(b []byte) (n int) {
	n += self.marshal(b[8:]) + 8
	putHeader(b, MINF, n)
	return
}

func (self MediaInfo) marshal(b []byte) (n int) {
	if self.Sound != nil {
		n += self.Sound.Marshal(b[n:])
	}
	if self.Video != nil {
		n += self.Video.Marshal(b[n:])
	}
	if self.Null != nil {
		n += self.Null.Marshal(b[n:])
	}
	if self.Data != nil {
		n += self.Data.Marshal(b[n:])
	}
	if self.Sample != nil {
		n += self.Sample.Marshal(b[n:])
	}
	for _, atom := range self.Unknowns {
		n += atom.Marshal(b[n:])
	}
	return
}

func (self MediaInfo) Len() (n int) {
	n += 8
	if self.Sound != nil {
		n += self.Sound.Len()
	}
	if self.Video != nil {
		n += self.Video.Len()
	}
	if self.Null != nil {
		n += self.Null.Len()
	}
	if self.Data != nil {
		n += self.Data.Len()
	}
	if self.Sample != nil {
		n += self.Sample.Len()
	}
	for _, atom := range self.Unknowns {
		n += atom.Len()
	}
	return
}

func (self *MediaInfo) Unmarshal(b []byte, offset int) (n int, err error) {
	(&self.AtomPos).setPos(offset, len(b))
	err = walkChildren(b, HeaderSize, offset, func(tag Tag, box []byte, offset int) (err error) {
		switch tag {
		case SMHD:
			atom := &SoundMediaInfo{}
			if _, err = atom.Unmarshal(box, offset); err == nil {
				self.Sound = atom
			}
		case VMHD:
			atom := &VideoMediaInfo{}
			if _, err = atom.Unmarshal(box, offset); err == nil {
				self.Video = atom
			}
		case NMHD:
			atom := &NullMediaInfo{}
			if _, err = atom.Unmarshal(box, offset); err == nil {
				self.Null = atom
			}
		case DINF:
			atom := &DataInfo{}
			if _, err = atom.Unmarshal(box, offset); err == nil {
				self.Data = atom
			}
		case STBL:
			atom := &SampleTable{}
			if _, err = atom.Unmarshal(box, offset); err == nil {
				self.Sample = atom
			}
		default:
			self.Unknowns = append(self.Unknowns, unknownChild(tag, box, offset))
		}
		return
	})
	n = len(b)
	return
}

func (self MediaInfo) Children() (r []Atom) {
	if self.Sound != nil {
		r = append(r, self.Sound)
	}
	if self.Video != nil {
		r = append(r, self.Video)
	}
	if self.Null != nil {
		r = append(r, self.Null)
	}
	if self.Data != nil {
		r = append(r, self.Data)
	}
	if self.Sample != nil {
		r = append(r, self.Sample)
	}
	r = append(r, self.Unknowns...)
	return
}
