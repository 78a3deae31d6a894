// nolint: all
package mp4io

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"

	"github.com/deepch/vdk/utils/bits/pio"
)

const (
	HeaderSize         = 8
	ExtendedHeaderSize = 16

	// maxMetaBoxSize bounds the size of a metadata box loaded into memory.
	maxMetaBoxSize = 1 << 30
)

var epoch = time.Date(1904, time.January, 1, 0, 0, 0, 0, time.UTC)

func GetTime32(b []byte) (t time.Time) {
	sec := pio.U32BE(b)
	t = epoch.Add(time.Second * time.Duration(sec))
	return
}

func PutTime32(b []byte, t time.Time) {
	var sec uint32
	if t.After(epoch) {
		sec = uint32(t.Sub(epoch) / time.Second)
	}
	pio.PutU32BE(b, sec)
}

func GetTime64(b []byte) (t time.Time) {
	sec := pio.U64BE(b)
	t = epoch.Add(time.Second * time.Duration(sec))
	return
}

func PutTime64(b []byte, t time.Time) {
	var sec uint64
	if t.After(epoch) {
		sec = uint64(t.Sub(epoch) / time.Second)
	}
	pio.PutU64BE(b, sec)
}

func PutFixed16(b []byte, f float64) {
	intpart, fracpart := math.Modf(f)
	b[0] = uint8(intpart)
	b[1] = uint8(fracpart * 256.0)
}

func GetFixed16(b []byte) float64 {
	return float64(b[0]) + float64(b[1])/256.0
}

func PutFixed32(b []byte, f float64) {
	intpart, fracpart := math.Modf(f)
	pio.PutU16BE(b[0:2], uint16(intpart))
	pio.PutU16BE(b[2:4], uint16(fracpart*65536.0))
}

func GetFixed32(b []byte) float64 {
	return float64(pio.U16BE(b[0:2])) + float64(pio.U16BE(b[2:4]))/65536.0
}

type Tag uint32

func (self Tag) String() string {
	var b [4]byte
	pio.PutU32BE(b[:], uint32(self))
	for i := 0; i < 4; i++ {
		if b[i] == 0 {
			b[i] = ' '
		}
	}
	return string(b[:])
}

func StringToTag(tag string) Tag {
	var b [4]byte
	copy(b[:], []byte(tag))
	return Tag(pio.U32BE(b[:]))
}

type Atom interface {
	Pos() (int, int)
	Tag() Tag
	Marshal([]byte) int
	Unmarshal([]byte, int) (int, error)
	Len() int
	Children() []Atom
}

type AtomPos struct {
	Offset int
	Size   int
}

func (self AtomPos) Pos() (int, int) {
	return self.Offset, self.Size
}

func (self *AtomPos) setPos(offset int, size int) {
	self.Offset, self.Size = offset, size
}

// Dummy keeps the raw bytes of a box this package does not model.
type Dummy struct {
	Data []byte
	Tag_ Tag
	AtomPos
}

func (self Dummy) Children() []Atom {
	return nil
}

func (self Dummy) Tag() Tag {
	return self.Tag_
}

func (self Dummy) Len() int {
	return len(self.Data)
}

func (self Dummy) Marshal(b []byte) int {
	copy(b, self.Data)
	return len(self.Data)
}

func (self *Dummy) Unmarshal(b []byte, offset int) (n int, err error) {
	(&self.AtomPos).setPos(offset, len(b))
	self.Data = b
	n = len(b)
	return
}

func FindChildrenByName(root Atom, tag string) Atom {
	return FindChildren(root, StringToTag(tag))
}

func FindChildren(root Atom, tag Tag) Atom {
	if root.Tag() == tag {
		return root
	}
	for _, child := range root.Children() {
		if r := FindChildren(child, tag); r != nil {
			return r
		}
	}
	return nil
}

func putHeader(b []byte, tag Tag, size int) {
	pio.PutU32BE(b[0:], uint32(size))
	pio.PutU32BE(b[4:], uint32(tag))
}

// getFullHeader reads the version byte and 24-bit flags that follow a full box header.
func getFullHeader(b []byte, n, offset int) (version uint8, flags uint32, err error) {
	if len(b) < n+4 {
		err = parseErr("Version", n+offset, err)
		return
	}
	version = pio.U8(b[n:])
	flags = pio.U24BE(b[n+1:])
	return
}

func putFullHeader(b []byte, version uint8, flags uint32) int {
	pio.PutU8(b, version)
	pio.PutU24BE(b[1:], flags)
	return 4
}

// walkChildren calls fn for every child box found in b[n:].
func walkChildren(b []byte, n, offset int, fn func(tag Tag, box []byte, offset int) error) (err error) {
	for n+HeaderSize <= len(b) {
		size := int(pio.U32BE(b[n:]))
		tag := Tag(pio.U32BE(b[n+4:]))
		if size == 0 {
			size = len(b) - n
		}
		if size < HeaderSize || len(b) < n+size {
			err = parseErr("TagSizeInvalid", n+offset, err)
			return
		}
		if err = fn(tag, b[n:n+size], offset+n); err != nil {
			err = parseErr(tag.String(), n+offset, err)
			return
		}
		n += size
	}
	return
}

func unknownChild(tag Tag, box []byte, offset int) Atom {
	atom := &Dummy{Tag_: tag}
	_, _ = atom.Unmarshal(box, offset)
	return atom
}

// ReadFileAtoms scans the top-level boxes of a file of the given size. Only moov
// and ftyp are loaded into memory; every other box is recorded by position.
func ReadFileAtoms(r io.ReaderAt, size int64) (atoms []Atom, err error) {
	var offset int64
	hdr := make([]byte, ExtendedHeaderSize)
	for offset < size {
		if size-offset < HeaderSize {
			err = parseErr("TruncatedHeader", int(offset), nil)
			return
		}
		if _, err = r.ReadAt(hdr[:HeaderSize], offset); err != nil {
			return
		}
		boxSize := int64(pio.U32BE(hdr[0:]))
		tag := Tag(pio.U32BE(hdr[4:]))
		hdrLen := int64(HeaderSize)

		switch boxSize {
		case 0:
			boxSize = size - offset
		case 1:
			if size-offset < ExtendedHeaderSize {
				err = parseErr("TruncatedHeader", int(offset), nil)
				return
			}
			if _, err = r.ReadAt(hdr[HeaderSize:ExtendedHeaderSize], offset+HeaderSize); err != nil {
				return
			}
			boxSize = int64(pio.U64BE(hdr[HeaderSize:]))
			hdrLen = ExtendedHeaderSize
		}
		if boxSize < hdrLen || boxSize > size-offset {
			err = parseErr("TagSizeInvalid", int(offset), nil)
			return
		}

		var atom Atom
		switch tag {
		case MOOV:
			atom = &Movie{}
		case FTYP:
			atom = &FileType{}
		}

		if atom != nil {
			if boxSize > maxMetaBoxSize {
				err = parseErr("TagSizeInvalid", int(offset), nil)
				return
			}
			// Box parsers expect a compact header; a largesize one is rewritten.
			shift := hdrLen - HeaderSize
			b := make([]byte, boxSize-shift)
			if _, err = r.ReadAt(b[HeaderSize:], offset+hdrLen); err != nil {
				return
			}
			putHeader(b, tag, len(b))
			if _, err = atom.Unmarshal(b, int(offset+shift)); err != nil {
				return
			}
			if p, ok := atom.(interface{ setPos(int, int) }); ok {
				p.setPos(int(offset), int(boxSize))
			}
			atoms = append(atoms, atom)
		} else {
			dummy := &Dummy{Tag_: tag}
			dummy.setPos(int(offset), int(boxSize))
			atoms = append(atoms, dummy)
		}
		offset += boxSize
	}
	return
}

func printatom(out io.Writer, root Atom, depth int) {
	offset, size := root.Pos()

	type stringintf interface {
		String() string
	}

	fmt.Fprintf(out,
		"%s%s offset=%d size=%d",
		strings.Repeat(" ", depth*2), root.Tag(), offset, size,
	)
	if str, ok := root.(stringintf); ok {
		fmt.Fprint(out, " ", str.String())
	}
	fmt.Fprintln(out)

	for _, child := range root.Children() {
		printatom(out, child, depth+1)
	}
}

func FprintAtom(out io.Writer, root Atom) {
	printatom(out, root, 0)
}

func PrintAtom(root Atom) {
	FprintAtom(os.Stdout, root)
}

func (self TimeToSample) String() string {
	return fmt.Sprintf("entries=%d", len(self.Entries))
}

func (self SampleToChunk) String() string {
	return fmt.Sprintf("entries=%d", len(self.Entries))
}

func (self SampleSize) String() string {
	return fmt.Sprintf("entries=%d", len(self.Entries))
}

func (self SyncSample) String() string {
	return fmt.Sprintf("entries=%d", len(self.Entries))
}

func (self CompositionOffset) String() string {
	return fmt.Sprintf("entries=%d", len(self.Entries))
}

func (self ChunkOffset) String() string {
	return fmt.Sprintf("entries=%d", len(self.Entries))
}

func (self *Track) GetVisualEntry() (entry *VisualSampleEntry) {
	if desc := self.SampleDesc(); desc != nil {
		entry = desc.Visual
	}
	return
}

func (self *Track) GetAudioEntry() (entry *AudioSampleEntry) {
	if desc := self.SampleDesc(); desc != nil {
		entry = desc.Audio
	}
	return
}

func (self *Track) GetElemStreamDesc() (esds *ElemStreamDesc) {
	atom := FindChildren(self, ESDS)
	esds, _ = atom.(*ElemStreamDesc)
	return
}

// SampleTable returns the stbl box of the track or nil when the chain is incomplete.
func (self *Track) SampleTable() *SampleTable {
	if self.Media == nil || self.Media.Info == nil {
		return nil
	}
	return self.Media.Info.Sample
}

func (self *Track) SampleDesc() *SampleDesc {
	if stbl := self.SampleTable(); stbl != nil {
		return stbl.SampleDesc
	}
	return nil
}
