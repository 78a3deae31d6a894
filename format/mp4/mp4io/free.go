// nolint: all
package mp4io

const (
	FREE = Tag(0x66726565)
	MDAT = Tag(0x6d646174)
	MOOF = Tag(0x6d6f6f66)
)

type FreeType struct {
	AtomPos
}

func (*FreeType) Tag() Tag {
	return FREE
}

func (*FreeType) Marshal(b []byte) (n int) {
	putHeader(b, FREE, HeaderSize)
	return HeaderSize
}

func (*FreeType) Len() int {
	return HeaderSize
}

func (f *FreeType) Unmarshal(b []byte, offset int) (n int, err error) {
	n = len(b)
	f.AtomPos.setPos(offset, n)
	return n, nil
}

func (*FreeType) Children() []Atom {
	return nil
}
