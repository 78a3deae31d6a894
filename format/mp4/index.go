package mp4

import (
	"fmt"

	"github.com/ugparu/gomosh/format/mp4/mp4io"
)

// sampleEntry is the location and timing of one sample. Payloads are never
// kept in memory, only this index.
type sampleEntry struct {
	offset   int64
	size     uint32
	dts      uint64
	duration uint32
	cto      int32
	sync     bool
}

// buildIndex flattens the sample table of a track into one entry per sample.
// Tables that describe fewer samples than stsz are rejected; trailing extra
// entries are ignored.
func buildIndex(stbl *mp4io.SampleTable) ([]sampleEntry, error) {
	switch {
	case stbl.SampleSize == nil:
		return nil, errMissing("stsz")
	case stbl.SampleToChunk == nil:
		return nil, errMissing("stsc")
	case stbl.ChunkOffset == nil:
		return nil, errMissing("stco")
	case stbl.TimeToSample == nil:
		return nil, errMissing("stts")
	}

	count := stbl.SampleSize.Count()
	samples := make([]sampleEntry, count)
	for i := range samples {
		samples[i].size = stbl.SampleSize.Size(i)
	}

	if err := walkChunks(samples, stbl.SampleToChunk.Entries, stbl.ChunkOffset.Entries); err != nil {
		return nil, err
	}
	if err := walkTimes(samples, stbl.TimeToSample.Entries); err != nil {
		return nil, err
	}
	if stbl.CompositionOffset != nil {
		if err := walkOffsets(samples, stbl.CompositionOffset.Entries); err != nil {
			return nil, err
		}
	}
	if err := markSync(samples, stbl.SyncSample); err != nil {
		return nil, err
	}
	return samples, nil
}

func walkChunks(samples []sampleEntry, stsc []mp4io.SampleToChunkEntry, chunks []uint64) error {
	si := 0
	for i, entry := range stsc {
		first := int(entry.FirstChunk)
		if first < 1 || first > len(chunks) {
			return fmt.Errorf("stsc entry %d: first chunk %d out of %d chunks", i, first, len(chunks))
		}
		last := len(chunks)
		if i+1 < len(stsc) {
			next := int(stsc[i+1].FirstChunk)
			if next <= first {
				return fmt.Errorf("stsc entry %d: first chunk %d not increasing", i+1, next)
			}
			last = min(next-1, len(chunks))
		}

		for chunk := first; chunk <= last && si < len(samples); chunk++ {
			pos := int64(chunks[chunk-1]) //nolint:gosec
			for k := uint32(0); k < entry.SamplesPerChunk && si < len(samples); k++ {
				samples[si].offset = pos
				pos += int64(samples[si].size)
				si++
			}
		}
	}
	if si < len(samples) {
		return fmt.Errorf("chunk walk covers %d of %d samples", si, len(samples))
	}
	return nil
}

func walkTimes(samples []sampleEntry, stts []mp4io.TimeToSampleEntry) error {
	si := 0
	var dts uint64
	for _, entry := range stts {
		for k := uint32(0); k < entry.Count && si < len(samples); k++ {
			samples[si].dts = dts
			samples[si].duration = entry.Duration
			dts += uint64(entry.Duration)
			si++
		}
	}
	if si < len(samples) {
		return fmt.Errorf("stts covers %d of %d samples", si, len(samples))
	}
	return nil
}

func walkOffsets(samples []sampleEntry, ctts []mp4io.CompositionOffsetEntry) error {
	si := 0
	for _, entry := range ctts {
		for k := uint32(0); k < entry.Count && si < len(samples); k++ {
			samples[si].cto = entry.Offset
			si++
		}
	}
	if si < len(samples) {
		return fmt.Errorf("ctts covers %d of %d samples", si, len(samples))
	}
	return nil
}

// markSync treats every sample as sync when stss is absent.
func markSync(samples []sampleEntry, stss *mp4io.SyncSample) error {
	if stss == nil {
		for i := range samples {
			samples[i].sync = true
		}
		return nil
	}
	for _, idx := range stss.Entries {
		if idx < 1 || int(idx) > len(samples) {
			return fmt.Errorf("stss references sample %d of %d", idx, len(samples))
		}
		samples[idx-1].sync = true
	}
	return nil
}

func errMissing(box string) error {
	return fmt.Errorf("'%s' atom not found", box)
}
