package mp4io

const STBL = Tag(0x7374626c)

func (self SampleTable) Tag() Tag {
	return STBL
}

type SampleTable struct {
	SampleDesc        *SampleDesc
	TimeToSample      *TimeToSample
	CompositionOffset *CompositionOffset
	SampleToChunk     *SampleToChunk
	SyncSample        *SyncSample
	ChunkOffset       *ChunkOffset
	SampleSize        *SampleSize
	Unknowns          []Atom
	AtomPos
}

func (self SampleTable) Marshal(b []byte) (n int) {
	n += HeaderSize
	for _, atom := range self.Children() {
		n += atom.Marshal(b[n:])
	}
	putHeader(b, STBL, n)
	return
}

func (self SampleTable) Len() (n int) {
	n += HeaderSize
	for _, atom := range self.Children() {
		n += atom.Len()
	}
	return
}

func (self *SampleTable) Unmarshal(b []byte, offset int) (n int, err error) {
	(&self.AtomPos).setPos(offset, len(b))
	err = walkChildren(b, HeaderSize, offset, func(tag Tag, box []byte, offset int) (err error) {
		switch tag {
		case STSD:
			atom := &SampleDesc{}
			if _, err = atom.Unmarshal(box, offset); err == nil {
				self.SampleDesc = atom
			}
		case STTS:
			atom := &TimeToSample{}
			if _, err = atom.Unmarshal(box, offset); err == nil {
				self.TimeToSample = atom
			}
		case CTTS:
			atom := &CompositionOffset{}
			if _, err = atom.Unmarshal(box, offset); err == nil {
				self.CompositionOffset = atom
			}
		case STSC:
			atom := &SampleToChunk{}
			if _, err = atom.Unmarshal(box, offset); err == nil {
				self.SampleToChunk = atom
			}
		case STSS:
			atom := &SyncSample{}
			if _, err = atom.Unmarshal(box, offset); err == nil {
				self.SyncSample = atom
			}
		case STCO, CO64:
			atom := &ChunkOffset{}
			if _, err = atom.Unmarshal(box, offset); err == nil {
				self.ChunkOffset = atom
			}
		case STSZ:
			atom := &SampleSize{}
			if _, err = atom.Unmarshal(box, offset); err == nil {
				self.SampleSize = atom
			}
		default:
			self.Unknowns = append(self.Unknowns, unknownChild(tag, box, offset))
		}
		return
	})
	n = len(b)
	return
}

func (self SampleTable) Children() (r []Atom) {
	if self.SampleDesc != nil {
		r = append(r, self.SampleDesc)
	}
	if self.TimeToSample != nil {
		r = append(r, self.TimeToSample)
	}
	if self.CompositionOffset != nil {
		r = append(r, self.CompositionOffset)
	}
	if self.SampleToChunk != nil {
		r = append(r, self.SampleToChunk)
	}
	if self.SyncSample != nil {
		r = append(r, self.SyncSample)
	}
	if self.SampleSize != nil {
		r = append(r, self.SampleSize)
	}
	if self.ChunkOffset != nil {
		r = append(r, self.ChunkOffset)
	}
	r = append(r, self.Unknowns...)
	return
}
