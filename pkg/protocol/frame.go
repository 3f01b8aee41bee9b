// Kunhua Huang 2026

package protocol

import (
	"bytes"
	"fmt"
	"strings"
)

const (
	// MaxFrameSize is the capacity of the single read/write buffer on both
	// ends of a connection. A frame never spans more than one read.
	MaxFrameSize = 1024
	Delimiter    = '|'
)

// Frame is the wire unit: <lowercased-key>|<message>.
type Frame struct {
	Key     string
	Message string
}

func NewFrame(key, message string) Frame {
	return Frame{Key: strings.ToLower(key), Message: message}
}

// EncodeFrame serializes key and message into one buffer ready for a single write.
func EncodeFrame(key, message string) ([]byte, error) {
	if strings.IndexByte(key, Delimiter) >= 0 {
		return nil, Wrap(ErrorCodeInvalidKey, nil, "key contains frame delimiter %q", Delimiter)
	}

	size := len(key) + 1 + len(message)
	if size > MaxFrameSize {
		return nil, Wrap(ErrorCodeFrameTooLarge, nil, "%d bytes exceeds limit of %d", size, MaxFrameSize)
	}

	buf := make([]byte, 0, size)
	buf = append(buf, strings.ToLower(key)...)
	buf = append(buf, Delimiter)
	buf = append(buf, message...)

	return buf, nil
}

// DecodeFrame parses the first n bytes of buf. Anything past n belongs to an
// earlier read of a reused buffer and is ignored.
func DecodeFrame(buf []byte, n int) (Frame, error) {
	if n < 0 || n > len(buf) {
		return Frame{}, Wrap(ErrorCodeMalformedFrame, nil, "read length %d outside buffer of %d bytes", n, len(buf))
	}

	data := buf[:n]
	idx := bytes.IndexByte(data, Delimiter)
	if idx < 0 {
		return Frame{}, Wrap(ErrorCodeMalformedFrame, nil, "no delimiter in %d bytes", n)
	}

	return Frame{
		Key:     string(data[:idx]),
		Message: string(data[idx+1:]),
	}, nil
}

func (f Frame) Bytes() ([]byte, error) {
	return EncodeFrame(f.Key, f.Message)
}

func (f Frame) Len() int {
	return len(f.Key) + 1 + len(f.Message)
}

func (f Frame) String() string {
	return fmt.Sprintf("Frame{Key=%s, Message=%q, Len=%d}", f.Key, f.Message, f.Len())
}
