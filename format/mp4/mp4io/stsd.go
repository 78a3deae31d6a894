package mp4io

import "github.com/deepch/vdk/utils/bits/pio"

const STSD = Tag(0x73747364)

func (self SampleDesc) Tag() Tag {
	return STSD
}

// SampleDesc keeps the first recognised sample entry of each kind. Entries of
// formats this package does not model end up in Unknowns.
type SampleDesc struct {
	Version  uint8
	Flags    uint32
	Visual   *VisualSampleEntry
	Audio    *AudioSampleEntry
	Text     *TextSampleEntry
	Unknowns []Atom
	AtomPos
}

func (self SampleDesc) Marshal(b []byte) (n int) {
	n += HeaderSize
	n += putFullHeader(b[n:], self.Version, self.Flags)
	children := self.Children()
	pio.PutU32BE(b[n:], uint32(len(children)))
	n += 4
	for _, atom := range children {
		n += atom.Marshal(b[n:])
	}
	putHeader(b, STSD, n)
	return
}

func (self SampleDesc) Len() (n int) {
	n += HeaderSize + 8
	for _, atom := range self.Children() {
		n += atom.Len()
	}
	return
}

func (self *SampleDesc) Unmarshal(b []byte, offset int) (n int, err error) {
	(&self.AtomPos).setPos(offset, len(b))
	n += HeaderSize
	if self.Version, self.Flags, err = getFullHeader(b, n, offset); err != nil {
		return
	}
	n += 4
	n += 4
	err = walkChildren(b, n, offset, func(tag Tag, box []byte, offset int) (err error) {
		switch {
		case IsVisualFormat(tag) && self.Visual == nil:
			atom := &VisualSampleEntry{}
			if _, err = atom.Unmarshal(box, offset); err == nil {
				self.Visual = atom
			}
		case tag == MP4A && self.Audio == nil:
			atom := &AudioSampleEntry{}
			if _, err = atom.Unmarshal(box, offset); err == nil {
				self.Audio = atom
			}
		case tag == TX3G && self.Text == nil:
			atom := &TextSampleEntry{}
			if _, err = atom.Unmarshal(box, offset); err == nil {
				self.Text = atom
			}
		default:
			self.Unknowns = append(self.Unknowns, unknownChild(tag, box, offset))
		}
		return
	})
	n = len(b)
	return
}

// Entry returns the first sample entry regardless of its kind.
func (self SampleDesc) Entry() Atom {
	if children := self.Children(); len(children) > 0 {
		return children[0]
	}
	return nil
}

func (self SampleDesc) Children() (r []Atom) {
	if self.Visual != nil {
		r = append(r, self.Visual)
	}
	if self.Audio != nil {
		r = append(r, self.Audio)
	}
	if self.Text != nil {
		r = append(r, self.Text)
	}
	r = append(r, self.Unknowns...)
	return
}
