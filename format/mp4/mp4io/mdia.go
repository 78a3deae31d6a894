package mp4io

const MDIA = Tag(0x6d646961)

func (self Media) Tag() Tag {
	return MDIA
}

type Media struct {
	Header   *MediaHeader
	Handler  *HandlerRefer
	Info     *MediaInfo
	Unknowns []Atom
	AtomPos
}

func (self Media) Marshal(b []byte) (n int) {
	n += self.marshal(b[8:]) + 8
	putHeader(b, MDIA, n)
	return
}

func (self Media) marshal(b []byte) (n int) {
	if self.Header != nil {
		n += self.Header.Marshal(b[n:])
	}
	if self.Handler != nil {
		n += self.Handler.Marshal(b[n:])
	}
	if self.Info != nil {
		n += self.Info.Marshal(b[n:])
	}
	for _, atom := range self.Unknowns {
		n += atom.Marshal(b[n:])
	}
	return
}

func (self Media) Len() (n int) {
	n += 8
	if self.Header != nil {
		n += self.Header.Len()
	}
	if self.Handler != nil {
		n += self.Handler.Len()
	}
	if self.Info != nil {
		n += self.Info.Len()
	}
	for _, atom := range self.Unknowns {
		n += atom.Len()
	}
	return
}

func (self *Media) Unmarshal(b []byte, offset int) (n int, err error) {
	(&self.AtomPos).setPos(offset, len(b))
	err = walkChildren(b, HeaderSize, offset, func(tag Tag, box []byte, offset int) (err error) {
		switch tag {
		case MDHD:
			atom := &MediaHeader{}
			if _, err = atom.Unmarshal(box, offset); err == nil {
				self.Header = atom
			}
		case HDLR:
			atom := &HandlerRefer{}
			if _, err = atom.Unmarshal(box, offset); err == nil {
				self.Handler = atom
			}
		case MINF:
			atom := &MediaInfo{}
			if _, err = atom.Unmarshal(box, offset); err == nil {
				self.Info = atom
			}
		default:
			self.Unknowns = append(self.Unknowns, unknownChild(tag, box, offset))
		}
		return
	})
	n = len(b)
	return
}

func (self Media) Children() (r []Atom) {
	if self.Header != nil {
		r = append(r, self.Header)
	}
	if self.Handler != nil {
		r = append(r, self.Handler)
	}
	if self.Info != nil {
		r = append(r, self.Info)
	}
	r = append(r, self.Unknowns...)
	return
}
