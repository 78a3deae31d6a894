// nolint: all
package mp4io

import "github.com/deepch/vdk/utils/bits/pio"

const (
	FTYP          = Tag(0x66747970)
	baseFtypSize  = 16
	bytesPerBrand = 4
)

// NewFileType builds an ftyp box carrying the given brands verbatim.
func NewFileType(major, minor uint32, compatible []uint32) *FileType {
	return &FileType{
		MajorBrand:       major,
		MinorVersion:     minor,
		CompatibleBrands: append([]uint32(nil), compatible...),
	}
}

type FileType struct {
	MajorBrand       uint32
	MinorVersion     uint32
	CompatibleBrands []uint32
	AtomPos
}

func (*FileType) Tag() Tag {
	return FTYP
}

func (f *FileType) Marshal(b []byte) (n int) {
	l := f.Len()
	putHeader(b, FTYP, l)
	pio.PutU32BE(b[8:], f.MajorBrand)
	pio.PutU32BE(b[12:], f.MinorVersion)
	for i, v := range f.CompatibleBrands {
		pio.PutU32BE(b[baseFtypSize+bytesPerBrand*i:], v)
	}
	return l
}

func (f *FileType) Len() int {
	return baseFtypSize + bytesPerBrand*len(f.CompatibleBrands)
}

func (f *FileType) Unmarshal(b []byte, offset int) (n int, err error) {
	f.AtomPos.setPos(offset, len(b))
	n = HeaderSize
	if len(b) < n+8 {
		return 0, parseErr("MajorBrand", offset+n, nil)
	}
	f.MajorBrand = pio.U32BE(b[n:])
	n += 4
	f.MinorVersion = pio.U32BE(b[n:])
	n += 4
	for n+bytesPerBrand <= len(b) {
		f.CompatibleBrands = append(f.CompatibleBrands, pio.U32BE(b[n:]))
		n += bytesPerBrand
	}
	return
}

func (*FileType) Children() []Atom {
	return nil
}
