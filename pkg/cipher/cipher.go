// Kunhua Huang 2026

// Package cipher implements the keyed transform applied to message bodies: a
// Vigenère substitution over the 26 ASCII letters.
//
// Only ASCII letters are shifted, and only they consume a key letter; every
// other byte is copied through unchanged. Letter case is preserved. With this
// policy Decode(k, Encode(k, m)) == m holds for any byte string m.
//
// The transform offers no secrecy. It exists to make both ends of the
// exchange do keyed work on the payload.
package cipher

import (
	"strings"

	"github.com/ecstasoy/cipherecho/pkg/protocol"
)

// Key is a validated, lowercased key. The zero value is not a valid key.
type Key string

func NewKey(s string) (Key, error) {
	if s == "" {
		return "", protocol.Wrap(protocol.ErrorCodeInvalidKey, nil, "key is empty")
	}

	for i := 0; i < len(s); i++ {
		if !isLetter(s[i]) {
			return "", protocol.Wrap(protocol.ErrorCodeInvalidKey, nil, "non-alphabetic byte %q at position %d", s[i], i)
		}
	}

	return Key(strings.ToLower(s)), nil
}

func (k Key) String() string {
	return string(k)
}

func Encode(key, message string) (string, error) {
	k, err := NewKey(key)
	if err != nil {
		return "", err
	}
	return k.Encode(message), nil
}

func Decode(key, cipherText string) (string, error) {
	k, err := NewKey(key)
	if err != nil {
		return "", err
	}
	return k.Decode(cipherText), nil
}

func (k Key) Encode(message string) string {
	return k.shift(message, 1)
}

func (k Key) Decode(cipherText string) string {
	return k.shift(cipherText, -1)
}

// shift walks s, moving each letter dir*(key letter) positions around the
// alphabet. The key index only advances on letters.
func (k Key) shift(s string, dir int) string {
	if len(k) == 0 {
		return s
	}

	out := make([]byte, len(s))
	j := 0
	for i := 0; i < len(s); i++ {
		c := s[i]

		var base byte
		switch {
		case c >= 'a' && c <= 'z':
			base = 'a'
		case c >= 'A' && c <= 'Z':
			base = 'A'
		default:
			out[i] = c
			continue
		}

		offset := int(k[j%len(k)]-'a') * dir
		j++

		pos := (int(c-base) + offset + 26) % 26
		out[i] = base + byte(pos)
	}

	return string(out)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
