package xcc

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildResultBuffer renders the wire image the promise-result precompile
// returns: u32 count, then per entry a status byte plus the length-prefixed
// output for successful entries.
func buildResultBuffer(results ...PromiseResult) []byte {
	buf := bytes.NewBuffer(nil)
	var u32 [4]byte
	binary.LittleEndian.PutUint32(u32[:], uint32(len(results)))
	buf.Write(u32[:])
	for _, res := range results {
		buf.WriteByte(byte(res.Status))
		if res.Status == Successful {
			binary.LittleEndian.PutUint32(u32[:], uint32(len(res.Output)))
			buf.Write(u32[:])
			buf.Write(res.Output)
		}
	}
	return buf.Bytes()
}

func resultRuntime(results ...PromiseResult) *mockRuntime {
	rt := newMockRuntime()
	buf := buildResultBuffer(results...)
	rt.handlers[PromiseResultPrecompile] = func([]byte) ([]byte, bool) {
		return buf, true
	}
	return rt
}

func TestReadPromiseResultBounds(t *testing.T) {
	results := []PromiseResult{
		{Status: Successful, Output: []byte("ok")},
		{Status: Failed},
		{Status: NotReady},
	}
	rt := resultRuntime(results...)

	for i := range results {
		_, err := ReadPromiseResult(rt, uint32(i))
		require.NoError(t, err, "index %d", i)
	}

	for _, i := range []uint32{3, 4, 1 << 20} {
		_, err := ReadPromiseResult(rt, i)
		var bounds *BoundsError
		require.True(t, errors.As(err, &bounds), "index %d", i)
		assert.Equal(t, i, bounds.Index)
		assert.Equal(t, uint32(3), bounds.Length)
	}
}

func TestReadPromiseResultEmptyBuffer(t *testing.T) {
	rt := resultRuntime()

	_, err := ReadPromiseResult(rt, 0)
	var bounds *BoundsError
	require.True(t, errors.As(err, &bounds))
	assert.Equal(t, uint32(0), bounds.Length)
}

func TestReadPromiseResultSkipScan(t *testing.T) {
	results := []PromiseResult{
		{Status: Successful, Output: []byte("first")},
		{Status: Failed},
		{Status: NotReady},
		{Status: Successful, Output: []byte{0x00, 0x01, 0x02}},
		{Status: Successful, Output: nil},
	}
	rt := resultRuntime(results...)

	// The skip path over mixed preceding entries lands on the same value a
	// full decode of the buffer produces.
	full, err := DecodePromiseResults(buildResultBuffer(results...))
	require.NoError(t, err)
	require.Len(t, full, len(results))

	for i := range results {
		got, err := ReadPromiseResult(rt, uint32(i))
		require.NoError(t, err, "index %d", i)
		assert.Equal(t, full[i], got, "index %d", i)
		assert.Equal(t, results[i].Status, got.Status, "index %d", i)
	}

	assert.Equal(t, []byte{0x00, 0x01, 0x02}, full[3].Output)
}

func TestPromiseResultCount(t *testing.T) {
	rt := resultRuntime(PromiseResult{Status: Failed}, PromiseResult{Status: NotReady})

	count, err := PromiseResultCount(rt)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), count)
}

func TestReadPromiseResultPrecompileFailure(t *testing.T) {
	rt := newMockRuntime()
	rt.handlers[PromiseResultPrecompile] = func([]byte) ([]byte, bool) {
		return []byte("not in a callback"), false
	}

	_, err := ReadPromiseResult(rt, 0)
	var sysErr *SystemInterfaceError
	require.True(t, errors.As(err, &sysErr))
	assert.Equal(t, "not in a callback", err.Error())
}

func TestReadPromiseResultMalformed(t *testing.T) {
	rt := newMockRuntime()
	rt.handlers[PromiseResultPrecompile] = func([]byte) ([]byte, bool) {
		// Count says two entries but the buffer ends after an unknown tag.
		return []byte{0x02, 0x00, 0x00, 0x00, 0x09}, true
	}

	_, err := ReadPromiseResult(rt, 1)
	assert.ErrorIs(t, err, ErrMalformedResultBuffer)

	rt.handlers[PromiseResultPrecompile] = func([]byte) ([]byte, bool) {
		return []byte{0x01, 0x00}, true // truncated count
	}
	_, err = ReadPromiseResult(rt, 0)
	assert.ErrorIs(t, err, ErrMalformedResultBuffer)

	_, err = DecodePromiseResults([]byte{0x01, 0x00, 0x00, 0x00})
	assert.ErrorIs(t, err, ErrMalformedResultBuffer)
}
