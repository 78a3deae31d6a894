package mp4io

import "github.com/deepch/vdk/utils/bits/pio"

const STTS = Tag(0x73747473)

type TimeToSampleEntry struct {
	Count    uint32
	Duration uint32
}

const LenTimeToSampleEntry = 8

func (self TimeToSample) Tag() Tag {
	return STTS
}

type TimeToSample struct {
	Version uint8
	Flags   uint32
	Entries []TimeToSampleEntry
	AtomPos
}

func (self TimeToSample) Marshal(b []byte) (n int) {
	n += HeaderSize
	n += putFullHeader(b[n:], self.Version, self.Flags)
	pio.PutU32BE(b[n:], uint32(len(self.Entries)))
	n += 4
	for _, entry := range self.Entries {
		pio.PutU32BE(b[n:], entry.Count)
		pio.PutU32BE(b[n+4:], entry.Duration)
		n += LenTimeToSampleEntry
	}
	putHeader(b, STTS, n)
	return
}

func (self TimeToSample) Len() (n int) {
	return HeaderSize + 8 + LenTimeToSampleEntry*len(self.Entries)
}

func (self *TimeToSample) Unmarshal(b []byte, offset int) (n int, err error) {
	(&self.AtomPos).setPos(offset, len(b))
	n += HeaderSize
	var count int
	if self.Version, self.Flags, count, err = getTableHeader(b, n, offset, LenTimeToSampleEntry); err != nil {
		return
	}
	n += 8
	self.Entries = make([]TimeToSampleEntry, count)
	for i := range self.Entries {
		self.Entries[i] = TimeToSampleEntry{Count: pio.U32BE(b[n:]), Duration: pio.U32BE(b[n+4:])}
		n += LenTimeToSampleEntry
	}
	return
}

func (self TimeToSample) Children() (r []Atom) {
	return
}

// getTableHeader reads the full box header and entry count of a sample table box,
// checking that count entries of entryLen bytes fit into b.
func getTableHeader(b []byte, n, offset, entryLen int) (version uint8, flags uint32, count int, err error) {
	if version, flags, err = getFullHeader(b, n, offset); err != nil {
		return
	}
	n += 4
	if len(b) < n+4 {
		err = parseErr("EntryCount", n+offset, err)
		return
	}
	count = int(pio.U32BE(b[n:]))
	n += 4
	if (len(b)-n)/entryLen < count {
		err = parseErr("Entries", n+offset, err)
	}
	return
}
