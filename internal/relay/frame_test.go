package relay

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
)

func sampleFrame(samples ...int16) Frame {
	buf := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(s))
	}
	return buf
}

func readSamples(b []byte) []int16 {
	out := make([]int16, len(b)/2)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(b[i*2:]))
	}
	return out
}

func TestSaturatingAdd(t *testing.T) {
	cases := []struct {
		a, b, want int16
	}{
		{100, 200, 300},
		{32000, 1000, 32767},
		{-32000, -1000, -32768},
		{32767, 0, 32767},
		{-32768, 0, -32768},
		{0, 0, 0},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, saturatingAdd(c.a, c.b))
	}
}

func TestMixInto_SumsTwoContributors(t *testing.T) {
	dst := sampleFrame(100, -100, 0)
	mixInto(dst, sampleFrame(50, -50, 10))

	assert.Equal(t, []int16{150, -150, 10}, readSamples(dst))
}

func TestMixInto_ClampsOverflow(t *testing.T) {
	dst := sampleFrame(32000, -32000)
	mixInto(dst, sampleFrame(1000, -1000))

	assert.Equal(t, []int16{32767, -32768}, readSamples(dst))
}

func TestMixInto_ShorterSourceLeavesRemainderUntouched(t *testing.T) {
	dst := sampleFrame(1, 2, 3, 4)
	mixInto(dst, sampleFrame(10, 10))

	assert.Equal(t, []int16{11, 12, 3, 4}, readSamples(dst))
}

func TestMixInto_LongerSourceIsTruncated(t *testing.T) {
	dst := sampleFrame(1, 2)
	mixInto(dst, sampleFrame(10, 10, 999, 999))

	assert.Equal(t, []int16{11, 12}, readSamples(dst))
}

func TestMixInto_OddTrailingByteContributesNothing(t *testing.T) {
	dst := make([]byte, 3)
	dst[0], dst[1] = 1, 0 // sample 0 = 1
	dst[2] = 0xFF         // dangling odd byte

	mixInto(dst, Frame{5, 0, 0})

	assert.Equal(t, []int16{6}, readSamples(dst[:2]))
	assert.Equal(t, byte(0xFF), dst[2], "dangling byte must be left untouched")
}
