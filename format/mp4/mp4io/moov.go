package mp4io

const MOOV = Tag(0x6d6f6f76)

func (self Movie) Tag() Tag {
	return MOOV
}

type Movie struct {
	Header   *MovieHeader
	Tracks   []*Track
	Unknowns []Atom
	AtomPos
}

func (self Movie) Marshal(b []byte) (n int) {
	n += self.marshal(b[8:]) + 8
	putHeader(b, MOOV, n)
	return
}

func (self Movie) marshal(b []byte) (n int) {
	if self.Header != nil {
		n += self.Header.Marshal(b[n:])
	}
	for _, atom := range self.Tracks {
		n += atom.Marshal(b[n:])
	}
	for _, atom := range self.Unknowns {
		n += atom.Marshal(b[n:])
	}
	return
}

func (self Movie) Len() (n int) {
	n += 8
	if self.Header != nil {
		n += self.Header.Len()
	}
	for _, atom := range self.Tracks {
		n += atom.Len()
	}
	for _, atom := range self.Unknowns {
		n += atom.Len()
	}
	return
}

func (self *Movie) Unmarshal(b []byte, offset int) (n int, err error) {
	(&self.AtomPos).setPos(offset, len(b))
	err = walkChildren(b, HeaderSize, offset, func(tag Tag, box []byte, offset int) (err error) {
		switch tag {
		case MVHD:
			atom := &MovieHeader{}
			if _, err = atom.Unmarshal(box, offset); err == nil {
				self.Header = atom
			}
		case TRAK:
			atom := &Track{}
			if _, err = atom.Unmarshal(box, offset); err == nil {
				self.Tracks = append(self.Tracks, atom)
			}
		default:
			self.Unknowns = append(self.Unknowns, unknownChild(tag, box, offset))
		}
		return
	})
	n = len(b)
	return
}

func (self Movie) Children() (r []Atom) {
	if self.Header != nil {
		r = append(r, self.Header)
	}
	for _, atom := range self.Tracks {
		r = append(r, atom)
	}
	r = append(r, self.Unknowns...)
	return
}
