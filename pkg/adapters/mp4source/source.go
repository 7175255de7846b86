// Package mp4source turns the first H.264 video track of an MP4 file into an
// Annex-B byte stream, so MP4 input can go through the same demuxer as raw
// .264 files.
package mp4source

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/Eyevinn/mp4ff/mp4"
)

var (
	// ErrNoVideoTrack is returned when the file has no video track.
	ErrNoVideoTrack = errors.New("mp4source: no video track")

	// ErrUnsupportedCodec is returned when the video track is not H.264.
	ErrUnsupportedCodec = errors.New("mp4source: unsupported codec")
)

// Codec represents a video codec type.
type Codec string

const (
	CodecH264    Codec = "h264"
	CodecH265    Codec = "h265"
	CodecAV1     Codec = "av1"
	CodecUnknown Codec = "unknown"
)

var startCode = []byte{0, 0, 0, 1}

// IsMP4 reports whether data starts like an ISO BMFF file.
func IsMP4(data []byte) bool {
	if len(data) < 8 {
		return false
	}
	switch string(data[4:8]) {
	case "ftyp", "styp", "moov":
		return true
	}
	return false
}

// Options controls Extract.
type Options struct {
	// MaxSamples limits the number of samples converted (0 = all).
	MaxSamples int
}

// Info describes the extracted track.
type Info struct {
	Codec      Codec
	TrackID    uint32
	Width      int
	Height     int
	Fragmented bool
	Samples    int
}

// Extract rebuilds an Annex-B stream from the first video track. The
// parameter sets from the sample description come first, followed by the
// samples in decode order with 4-byte start codes.
func Extract(data []byte, opts Options) ([]byte, Info, error) {
	reader := bytes.NewReader(data)
	mp4File, err := mp4.DecodeFile(reader)
	if err != nil {
		return nil, Info{}, fmt.Errorf("decode mp4: %w", err)
	}

	trak, entry, codec := findVideoTrack(mp4File)
	if trak == nil {
		return nil, Info{}, ErrNoVideoTrack
	}

	info := Info{
		Codec:      codec,
		TrackID:    trak.Tkhd.TrackID,
		Fragmented: mp4File.IsFragmented(),
	}
	if codec != CodecH264 || entry == nil {
		return nil, info, fmt.Errorf("%w: %s", ErrUnsupportedCodec, codec)
	}
	info.Width = int(entry.Width)
	info.Height = int(entry.Height)

	var out []byte
	if entry.AvcC != nil {
		for _, sps := range entry.AvcC.SPSnalus {
			out = appendNALU(out, sps)
		}
		for _, pps := range entry.AvcC.PPSnalus {
			out = appendNALU(out, pps)
		}
	}

	emit := func(sample []byte) bool {
		out = avccToAnnexB(out, sample)
		info.Samples++
		return opts.MaxSamples <= 0 || info.Samples < opts.MaxSamples
	}

	if info.Fragmented {
		err = readFragmented(mp4File, trak.Tkhd.TrackID, emit)
	} else {
		err = readProgressive(trak, reader, emit)
	}
	if err != nil {
		return nil, info, err
	}
	return out, info, nil
}

// Detect reports the codec of the first video track.
func Detect(data []byte) (Codec, error) {
	mp4File, err := mp4.DecodeFile(bytes.NewReader(data))
	if err != nil {
		return CodecUnknown, fmt.Errorf("decode mp4: %w", err)
	}
	trak, _, codec := findVideoTrack(mp4File)
	if trak == nil {
		return CodecUnknown, ErrNoVideoTrack
	}
	return codec, nil
}

func findVideoTrack(mp4File *mp4.File) (*mp4.TrakBox, *mp4.VisualSampleEntryBox, Codec) {
	moov := mp4File.Moov
	if mp4File.IsFragmented() && mp4File.Init != nil {
		moov = mp4File.Init.Moov
	}
	if moov == nil {
		return nil, nil, CodecUnknown
	}

	for _, trak := range moov.Traks {
		if trak.Mdia == nil || trak.Mdia.Hdlr == nil || trak.Mdia.Hdlr.HandlerType != "vide" {
			continue
		}
		if trak.Mdia.Minf == nil || trak.Mdia.Minf.Stbl == nil || trak.Mdia.Minf.Stbl.Stsd == nil {
			continue
		}
		for _, child := range trak.Mdia.Minf.Stbl.Stsd.Children {
			entry, _ := child.(*mp4.VisualSampleEntryBox)
			switch child.Type() {
			case "avc1", "avc3":
				return trak, entry, CodecH264
			case "hvc1", "hev1":
				return trak, entry, CodecH265
			case "av01":
				return trak, entry, CodecAV1
			}
		}
		return trak, nil, CodecUnknown
	}
	return nil, nil, CodecUnknown
}

func readFragmented(mp4File *mp4.File, trackID uint32, emit func([]byte) bool) error {
	var trex *mp4.TrexBox
	if mp4File.Init != nil && mp4File.Init.Moov != nil && mp4File.Init.Moov.Mvex != nil {
		for _, t := range mp4File.Init.Moov.Mvex.Trexs {
			if t.TrackID == trackID {
				trex = t
				break
			}
		}
	}

	for _, seg := range mp4File.Segments {
		for _, frag := range seg.Fragments {
			if frag.Moof == nil {
				continue
			}
			for _, traf := range frag.Moof.Trafs {
				if traf.Tfhd.TrackID != trackID {
					continue
				}
				samples, err := frag.GetFullSamples(trex)
				if err != nil {
					return fmt.Errorf("get samples: %w", err)
				}
				for _, sample := range samples {
					if !emit(sample.Data) {
						return nil
					}
				}
			}
		}
	}
	return nil
}

func readProgressive(trak *mp4.TrakBox, reader io.ReadSeeker, emit func([]byte) bool) error {
	stbl := trak.Mdia.Minf.Stbl
	if stbl.Stsz == nil {
		return fmt.Errorf("no stsz box found")
	}

	for sampleNr := uint32(1); sampleNr <= stbl.Stsz.SampleNumber; sampleNr++ {
		sample, err := sampleData(stbl, reader, sampleNr)
		if err != nil {
			return fmt.Errorf("sample %d: %w", sampleNr, err)
		}
		if !emit(sample) {
			return nil
		}
	}
	return nil
}

// sampleData reads one sample of a progressive file through the chunk tables.
func sampleData(stbl *mp4.StblBox, reader io.ReadSeeker, sampleNr uint32) ([]byte, error) {
	if stbl.Stsc == nil {
		return nil, fmt.Errorf("missing stsc box")
	}

	chunkNr, firstSampleInChunk, err := stbl.Stsc.ChunkNrFromSampleNr(int(sampleNr))
	if err != nil {
		return nil, fmt.Errorf("get chunk nr: %w", err)
	}

	var chunkOffset uint64
	switch {
	case stbl.Stco != nil:
		chunkOffset, err = stbl.Stco.GetOffset(chunkNr)
		if err != nil {
			return nil, fmt.Errorf("get chunk offset: %w", err)
		}
	case stbl.Co64 != nil:
		if chunkNr < 1 || chunkNr > len(stbl.Co64.ChunkOffset) {
			return nil, fmt.Errorf("chunk nr %d out of range", chunkNr)
		}
		chunkOffset = stbl.Co64.ChunkOffset[chunkNr-1]
	default:
		return nil, fmt.Errorf("no stco or co64 box")
	}

	offset := chunkOffset
	for s := uint32(firstSampleInChunk); s < sampleNr; s++ {
		offset += uint64(stbl.Stsz.GetSampleSize(int(s)))
	}

	if _, err := reader.Seek(int64(offset), io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek to sample: %w", err)
	}
	data := make([]byte, stbl.Stsz.GetSampleSize(int(sampleNr)))
	if _, err := io.ReadFull(reader, data); err != nil {
		return nil, fmt.Errorf("read sample: %w", err)
	}
	return data, nil
}

func appendNALU(dst, nalu []byte) []byte {
	dst = append(dst, startCode...)
	return append(dst, nalu...)
}

// avccToAnnexB appends the 4-byte length-prefixed NAL units of sample to dst
// with start codes. A truncated trailing unit is dropped.
func avccToAnnexB(dst, sample []byte) []byte {
	for len(sample) >= 4 {
		n := binary.BigEndian.Uint32(sample)
		sample = sample[4:]
		if uint64(n) > uint64(len(sample)) {
			break
		}
		dst = appendNALU(dst, sample[:n])
		sample = sample[n:]
	}
	return dst
}
