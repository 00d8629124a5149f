package relay

import "encoding/binary"

// CanonicalFrameSize is one 20 ms stereo frame at 48 kHz, 16-bit PCM:
// 960 samples per channel * 2 channels * 2 bytes (1920 interleaved
// samples).
const CanonicalFrameSize = 3840

// CanonicalSampleCount is the number of interleaved int16 samples in a
// canonical frame (960 per channel).
const CanonicalSampleCount = CanonicalFrameSize / 2

// Frame is an immutable-once-shared PCM payload. It is never mutated
// after being handed to a client's send queue; Go's garbage collector
// reclaims it once the last queue holding a reference pops or drops it.
type Frame []byte

// mixInto saturating-adds src's samples onto dst, sample by sample,
// treating both as little-endian int16 PCM. src may be shorter or
// longer than dst; src contributes only the samples it has in common
// with dst (implicit zero for the rest), and any excess in src beyond
// dst's length is ignored (truncated).
func mixInto(dst []byte, src Frame) {
	n := len(dst)
	if len(src) < n {
		n = len(src)
	}
	// Only whole samples participate; a dangling odd byte at the end
	// of a malformed frame contributes nothing.
	n -= n % 2

	for i := 0; i < n; i += 2 {
		a := int16(binary.LittleEndian.Uint16(dst[i : i+2]))
		b := int16(binary.LittleEndian.Uint16(src[i : i+2]))
		binary.LittleEndian.PutUint16(dst[i:i+2], uint16(saturatingAdd(a, b)))
	}
}

// saturatingAdd adds two signed 16-bit samples and clamps the result
// to the representable range instead of wrapping.
func saturatingAdd(a, b int16) int16 {
	sum := int32(a) + int32(b)
	switch {
	case sum > 32767:
		return 32767
	case sum < -32768:
		return -32768
	default:
		return int16(sum)
	}
}
