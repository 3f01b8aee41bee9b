package protocol

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeFrame(t *testing.T) {
	data, err := EncodeFrame("abc", "hello")
	require.NoError(t, err)
	assert.Equal(t, "abc|hello", string(data))
	assert.Len(t, data, 9)
}

func TestEncodeFrameLowercasesKey(t *testing.T) {
	data, err := EncodeFrame("AbC", "Hello")
	require.NoError(t, err)
	assert.Equal(t, "abc|Hello", string(data))
}

func TestEncodeFrameTooLarge(t *testing.T) {
	_, err := EncodeFrame("k", strings.Repeat("x", MaxFrameSize-1))
	assert.True(t, errors.Is(err, ErrFrameTooLarge))

	data, err := EncodeFrame("k", strings.Repeat("x", MaxFrameSize-2))
	require.NoError(t, err)
	assert.Len(t, data, MaxFrameSize)
}

func TestEncodeFrameRejectsDelimiterInKey(t *testing.T) {
	_, err := EncodeFrame("a|b", "msg")
	assert.True(t, errors.Is(err, ErrInvalidKey))
}

func TestDecodeFrameRoundTrip(t *testing.T) {
	cases := []struct{ key, msg string }{
		{"abc", "hello"},
		{"CAT", "meow|with|pipes"},
		{"dog", ""},
		{"x", strings.Repeat("m", MaxFrameSize-2)},
	}

	for _, c := range cases {
		data, err := EncodeFrame(c.key, c.msg)
		require.NoError(t, err)

		f, err := DecodeFrame(data, len(data))
		require.NoError(t, err)
		assert.Equal(t, strings.ToLower(c.key), f.Key)
		assert.Equal(t, c.msg, f.Message)
	}
}

func TestDecodeFrameIgnoresStaleBytes(t *testing.T) {
	buf := make([]byte, MaxFrameSize)
	copy(buf, "longerkey|an older and longer message")
	n := copy(buf, "ab|hi")

	f, err := DecodeFrame(buf, n)
	require.NoError(t, err)
	assert.Equal(t, Frame{Key: "ab", Message: "hi"}, f)
}

func TestDecodeFrameDelimiterOnlyBeyondLength(t *testing.T) {
	buf := make([]byte, MaxFrameSize)
	copy(buf, "stale|frame")
	n := copy(buf, "nodelim")

	_, err := DecodeFrame(buf, n)
	assert.True(t, errors.Is(err, ErrMalformedFrame))
}

func TestDecodeFrameMalformed(t *testing.T) {
	_, err := DecodeFrame([]byte("no delimiter here"), 17)
	assert.True(t, errors.Is(err, ErrMalformedFrame))

	_, err = DecodeFrame([]byte{}, 0)
	assert.True(t, errors.Is(err, ErrMalformedFrame))

	_, err = DecodeFrame([]byte("a|b"), 4)
	assert.True(t, errors.Is(err, ErrMalformedFrame))

	_, err = DecodeFrame([]byte("a|b"), -1)
	assert.True(t, errors.Is(err, ErrMalformedFrame))
}

func TestDecodeFrameSplitsOnFirstDelimiter(t *testing.T) {
	f, err := DecodeFrame([]byte("|leading"), 8)
	require.NoError(t, err)
	assert.Equal(t, "", f.Key)
	assert.Equal(t, "leading", f.Message)
}

func TestFrameBytes(t *testing.T) {
	f := NewFrame("KEY", "body")
	data, err := f.Bytes()
	require.NoError(t, err)
	assert.Equal(t, "key|body", string(data))
	assert.Equal(t, 8, f.Len())
}
